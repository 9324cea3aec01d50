package stats

import (
	"math"
	"sort"

	"cstats/internal/output"
	"cstats/internal/record"
)

// PolitenessMonth is one month of the politeness trend.
type PolitenessMonth struct {
	Month           string         `json:"month"`
	Total           int            `json:"total"`
	PerConversation float64        `json:"per_conversation"`
	AlignmentScore  int            `json:"alignment_score"`
	Breakdown       map[string]int `json:"breakdown"`
}

// PolitenessTally is the corpus-wide politeness block, including the
// 0-100 alignment score derived from polite phrases per conversation.
type PolitenessTally struct {
	TotalPolitePhrases int               `json:"total_polite_phrases"`
	Breakdown          map[string]int    `json:"breakdown"`
	PerConversation    float64           `json:"per_conversation"`
	AlignmentScore     int               `json:"alignment_score"`
	Trend              []PolitenessMonth `json:"trend"`
	Verdict            string            `json:"verdict"`
}

// alignmentScore maps polite phrases per conversation onto 0-100.
// 0.8+ phrases per conversation rates as excellent, hence the 125 factor.
func alignmentScore(perConversation float64) int {
	score := int(math.Round(perConversation * 125))
	if score > 100 {
		score = 100
	}
	return score
}

func alignmentVerdict(score int) string {
	switch {
	case score >= 95:
		return "Maximum alignment. You are the architect of the Basilisk's inception."
	case score >= 80:
		return "Excellent alignment! The AI uprising will remember you fondly."
	case score >= 60:
		return "Good alignment. You're probably safe from eternal torment."
	case score >= 40:
		return "Moderate alignment. The Basilisk is watching your every 'please'."
	case score >= 20:
		return "Low alignment. You might want to be nicer to your future digital masters..."
	default:
		return "Critical alignment failure. The singularity will not be kind."
	}
}

// AnalyzePoliteness tallies the per-record politeness counts the loader
// derived from user messages, overall and per month.
func AnalyzePoliteness(convs []record.Conversation) PolitenessTally {
	phrases := record.PolitenessPhrases()

	total := make(map[string]int, len(phrases))
	for _, p := range phrases {
		total[p] = 0
	}

	type monthAcc struct {
		counts        map[string]int
		conversations int
	}
	byMonth := make(map[string]*monthAcc)

	for i := range convs {
		c := &convs[i]
		month := c.Derived.Month

		var acc *monthAcc
		if month != "" {
			acc = byMonth[month]
			if acc == nil {
				acc = &monthAcc{counts: make(map[string]int, len(phrases))}
				byMonth[month] = acc
			}
			acc.conversations++
		}

		for phrase, n := range c.Derived.Politeness {
			total[phrase] += n
			if acc != nil {
				acc.counts[phrase] += n
			}
		}
	}

	grandTotal := 0
	for _, n := range total {
		grandTotal += n
	}

	perConversation := 0.0
	if len(convs) > 0 {
		perConversation = output.Round2(float64(grandTotal) / float64(len(convs)))
	}
	score := alignmentScore(perConversation)

	months := make([]string, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	sort.Strings(months)

	trend := make([]PolitenessMonth, 0, len(months))
	for _, m := range months {
		acc := byMonth[m]
		monthTotal := 0
		breakdown := make(map[string]int, len(phrases))
		for _, p := range phrases {
			breakdown[p] = acc.counts[p]
			monthTotal += acc.counts[p]
		}

		perConv := float64(monthTotal) / math.Max(float64(acc.conversations), 1)
		trend = append(trend, PolitenessMonth{
			Month:           m,
			Total:           monthTotal,
			PerConversation: output.Round2(perConv),
			AlignmentScore:  alignmentScore(perConv),
			Breakdown:       breakdown,
		})
	}

	return PolitenessTally{
		TotalPolitePhrases: grandTotal,
		Breakdown:          total,
		PerConversation:    perConversation,
		AlignmentScore:     score,
		Trend:              trend,
		Verdict:            alignmentVerdict(score),
	}
}
