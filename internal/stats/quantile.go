package stats

// Quantiles holds the histogram-derived summary of one measure.
//
// Avg is the count-weighted mean of bin midpoints. Using the midpoint as a
// stand-in for the values inside a bin is an approximation inherent to
// histogram estimation; it is kept deliberately for output compatibility
// with existing snapshots.
type Quantiles struct {
	Avg float64 `json:"avg"`
	Q05 float64 `json:"q05"`
	Q25 float64 `json:"q25"`
	Q75 float64 `json:"q75"`
	Q95 float64 `json:"q95"`
	Q99 float64 `json:"q99"`
}

// EstimateQuantiles derives the weighted average and standard percentiles
// from a bin sequence. A zero total count yields all zeros.
func EstimateQuantiles(bins []Bin) Quantiles {
	total := TotalCount(bins)
	if total == 0 {
		return Quantiles{}
	}

	var weighted float64
	for _, b := range bins {
		mid := (b.BinStart + b.BinEnd) / 2
		weighted += mid * float64(b.Count)
	}

	return Quantiles{
		Avg: weighted / float64(total),
		Q05: Percentile(bins, 0.05),
		Q25: Percentile(bins, 0.25),
		Q75: Percentile(bins, 0.75),
		Q95: Percentile(bins, 0.95),
		Q99: Percentile(bins, 0.99),
	}
}

// Percentile estimates the value at quantile p in (0,1) by accumulating bin
// counts until the running total reaches p*total, then interpolating
// linearly inside that bin. If accumulation never reaches the target due to
// rounding at the tail, the final bin's upper edge is returned.
func Percentile(bins []Bin, p float64) float64 {
	total := TotalCount(bins)
	if total == 0 || len(bins) == 0 {
		return 0
	}

	target := p * float64(total)
	running := 0.0
	for _, b := range bins {
		count := float64(b.Count)
		if running+count >= target && count > 0 {
			positionInBin := (target - running) / count
			return b.BinStart + positionInBin*(b.BinEnd-b.BinStart)
		}
		running += count
	}

	return bins[len(bins)-1].BinEnd
}
