// Package stats implements the aggregation primitives: histogram
// distributions, weighted quantile estimation, case-insensitive name
// canonicalization with stable top-K ranking, temporal bucketing with
// streaks and gap-free monthly trends, and per-score analysis.
package stats

import (
	"math"

	"cstats/internal/output"
)

// Bin is one histogram bucket. The interval is half-open [BinStart, BinEnd)
// except the last bin, which is closed so the maximum value lands somewhere.
type Bin struct {
	BinStart   float64 `json:"bin_start"`
	BinEnd     float64 `json:"bin_end"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// Distribution bins values into binCount fixed-width buckets with the width
// adapted to the observed range: width = max(1, ceil((max-min)/binCount)).
// Empty input yields the conventional single zero bin, not an error.
func Distribution(values []float64, binCount int) []Bin {
	if binCount < 1 {
		binCount = 1
	}
	if len(values) == 0 {
		return []Bin{{}}
	}

	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}

	width := math.Max(1, math.Ceil((maxVal-minVal)/float64(binCount)))
	return fixedWidth(values, minVal, width, binCount)
}

// DistributionWidth bins values using a caller-chosen fixed bin width,
// producing as many bins as the observed range needs.
func DistributionWidth(values []float64, width float64) []Bin {
	if len(values) == 0 {
		return []Bin{{}}
	}
	if width <= 0 {
		width = 1
	}

	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}

	binCount := int((maxVal-minVal)/width) + 1
	return fixedWidth(values, minVal, width, binCount)
}

func fixedWidth(values []float64, minVal, width float64, binCount int) []Bin {
	bins := make([]Bin, binCount)
	for i := range bins {
		bins[i].BinStart = minVal + float64(i)*width
		bins[i].BinEnd = minVal + float64(i+1)*width
	}

	for _, v := range values {
		idx := int(math.Floor((v - minVal) / width))
		if idx >= binCount {
			idx = binCount - 1 // last bin is closed
		}
		if idx < 0 {
			idx = 0
		}
		bins[idx].Count++
	}

	total := float64(len(values))
	for i := range bins {
		bins[i].Percentage = output.Round1(100 * float64(bins[i].Count) / total)
	}

	return bins
}

// TotalCount sums the counts of a bin sequence.
func TotalCount(bins []Bin) int {
	total := 0
	for _, b := range bins {
		total += b.Count
	}
	return total
}
