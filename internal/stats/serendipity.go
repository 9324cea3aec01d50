package stats

import (
	"sort"

	"cstats/internal/output"
	"cstats/internal/record"
	"cstats/internal/scores"
)

// SerendipityOptions controls the serendipity block.
type SerendipityOptions struct {
	Bins       int
	Percentile float64 // top fraction selected, e.g. 0.05
	TopN       int
}

// SerendipityDimension summarizes one reference population's scores.
type SerendipityDimension struct {
	Average      float64      `json:"average"`
	Median       float64      `json:"median"`
	Distribution []Bin        `json:"distribution"`
	Trend        []TrendPoint `json:"trend"`
}

// SerendipitousConversation is one entry of the combined top list.
type SerendipitousConversation struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	ScorePublic    float64  `json:"score_public"`
	ScorePower     float64  `json:"score_power"`
	Domain         string   `json:"domain"`
	SubDomain      string   `json:"sub_domain"`
	Keywords       []string `json:"keywords"`
	Summary        string   `json:"summary"`
	Date           string   `json:"date"`
	Messages       int      `json:"messages"`
	UserWords      int      `json:"user_words"`
	AssistantWords int      `json:"assistant_words"`
}

// SerendipityAnalysis is the full serendipity block. The two dimensions are
// computed independently; neither's ranking feeds the other's.
type SerendipityAnalysis struct {
	VsGeneralPublic       SerendipityDimension        `json:"vs_general_public"`
	VsPowerUsers          SerendipityDimension        `json:"vs_power_users"`
	TopSerendipitous      []SerendipitousConversation `json:"top_serendipitous"`
	SerendipitousDomains  []NameCount                 `json:"serendipitous_domains"`
	SerendipitousKeywords []NameCount                 `json:"serendipitous_keywords"`
}

// AnalyzeSerendipity computes both serendipity dimensions and the combined
// top list selected at the configured top percentile of either dimension.
func AnalyzeSerendipity(convs []record.Conversation, opts SerendipityOptions) SerendipityAnalysis {
	analysis := SerendipityAnalysis{
		VsGeneralPublic:       buildDimension(convs, scores.SerendipityPublic, opts.Bins),
		VsPowerUsers:          buildDimension(convs, scores.SerendipityPower, opts.Bins),
		TopSerendipitous:      []SerendipitousConversation{},
		SerendipitousDomains:  []NameCount{},
		SerendipitousKeywords: []NameCount{},
	}

	thresholdPublic := topPercentileThreshold(collectScores(convs, scores.SerendipityPublic), opts.Percentile)
	thresholdPower := topPercentileThreshold(collectScores(convs, scores.SerendipityPower), opts.Percentile)

	var top []SerendipitousConversation
	for i := range convs {
		c := &convs[i]
		// Selection treats an absent score as 0: a record can still make
		// the list on the strength of its other dimension.
		sp, _ := c.Score(scores.SerendipityPublic)
		su, _ := c.Score(scores.SerendipityPower)
		if (thresholdPublic > 0 && sp >= thresholdPublic) || (thresholdPower > 0 && su >= thresholdPower) {
			top = append(top, SerendipitousConversation{
				ID:             c.ID,
				Title:          c.Title,
				ScorePublic:    sp,
				ScorePower:     su,
				Domain:         c.Domain(),
				SubDomain:      c.SubDomain(),
				Keywords:       clipStrings(keywordsOf(c), 7),
				Summary:        summaryOf(c),
				Date:           c.Derived.Date,
				Messages:       c.Meta.TotalMessages,
				UserWords:      c.Derived.UserWordTotal,
				AssistantWords: c.Derived.AssistantWordTotal,
			})
		}
	}

	// Combined score descending; ties go to the most recent conversation,
	// then id, so re-runs produce identical lists.
	sort.SliceStable(top, func(i, j int) bool {
		ci, cj := top[i].ScorePublic+top[i].ScorePower, top[j].ScorePublic+top[j].ScorePower
		if ci != cj {
			return ci > cj
		}
		if top[i].Date != top[j].Date {
			return top[i].Date > top[j].Date
		}
		return top[i].ID < top[j].ID
	})

	// What makes conversations serendipitous: tallied over the top 50.
	analyzed := top
	if len(analyzed) > 50 {
		analyzed = analyzed[:50]
	}
	var domains, keywords []NameCount
	for _, ts := range analyzed {
		domains = append(domains, NameCount{Name: ts.Domain, Count: 1})
		for _, kw := range ts.Keywords {
			keywords = append(keywords, NameCount{Name: kw, Count: 1})
		}
	}
	analysis.SerendipitousDomains = TopK(domains, 0)
	analysis.SerendipitousKeywords = TopK(keywords, 20)

	if len(top) > opts.TopN {
		top = top[:opts.TopN]
	}
	if top != nil {
		analysis.TopSerendipitous = top
	}

	return analysis
}

func buildDimension(convs []record.Conversation, name string, bins int) SerendipityDimension {
	values := collectScores(convs, name)

	dim := SerendipityDimension{
		Distribution: Distribution(values, bins),
		Trend: MonthlyTrend(convs, func(c *record.Conversation) (float64, bool) {
			return c.Score(name)
		}),
	}
	if len(values) > 0 {
		dim.Average = output.Round1(Mean(values))
		dim.Median = output.Round1(Median(values))
	}
	return dim
}

func collectScores(convs []record.Conversation, name string) []float64 {
	var values []float64
	for i := range convs {
		if v, ok := convs[i].Score(name); ok {
			values = append(values, v)
		}
	}
	return values
}

// topPercentileThreshold returns the score at the top `fraction` boundary
// of the sorted values, or 0 when there are no values.
func topPercentileThreshold(values []float64, fraction float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))

	idx := int(float64(len(sorted)) * fraction)
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func summaryOf(c *record.Conversation) string {
	if c.LLMMeta == nil {
		return ""
	}
	return c.LLMMeta.OneLineSummary
}
