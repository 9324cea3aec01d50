package stats

import (
	"sort"
	"strings"
	"unicode"
)

// NameCount pairs a canonical entity/keyword name with its aggregate
// frequency. Name is the chosen display form of a case-insensitive
// equivalence class; Count sums every merged variant.
type NameCount struct {
	Name       string  `json:"name"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage,omitempty"`
}

// Canonicalize merges case-insensitive duplicate names, summing counts.
// The display name prefers the variant whose first character is upper-case,
// regardless of arrival order, so "OpenAI" wins over "openai". Output keeps
// first-seen order of the equivalence classes; running Canonicalize on its
// own output is a no-op.
func Canonicalize(pairs []NameCount) []NameCount {
	type class struct {
		display string
		count   int
		order   int
	}

	classes := make(map[string]*class, len(pairs))
	ordered := make([]string, 0, len(pairs))

	for _, p := range pairs {
		key := strings.ToLower(p.Name)
		c, ok := classes[key]
		if !ok {
			classes[key] = &class{display: p.Name, count: p.Count, order: len(ordered)}
			ordered = append(ordered, key)
			continue
		}
		c.count += p.Count
		if !startsUpper(c.display) && startsUpper(p.Name) {
			c.display = p.Name
		}
	}

	result := make([]NameCount, 0, len(ordered))
	for _, key := range ordered {
		c := classes[key]
		result = append(result, NameCount{Name: c.display, Count: c.count})
	}
	return result
}

func startsUpper(s string) bool {
	for _, r := range s {
		return unicode.IsUpper(r)
	}
	return false
}

// TopK canonicalizes, ranks descending by count with ties kept in
// first-seen order, and truncates to k. The stable tie-break keeps the
// ranking reproducible for the same corpus. k <= 0 means no truncation.
func TopK(pairs []NameCount, k int) []NameCount {
	merged := Canonicalize(pairs)

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Count > merged[j].Count
	})

	if k > 0 && len(merged) > k {
		merged = merged[:k]
	}
	return merged
}

// CountNames folds occurrence lists into NameCount pairs in first-seen
// order. Each occurrence contributes a count of 1.
func CountNames(lists ...[]string) []NameCount {
	counts := make(map[string]int)
	var order []string

	for _, list := range lists {
		for _, name := range list {
			if _, seen := counts[name]; !seen {
				order = append(order, name)
			}
			counts[name]++
		}
	}

	result := make([]NameCount, 0, len(order))
	for _, name := range order {
		result = append(result, NameCount{Name: name, Count: counts[name]})
	}
	return result
}
