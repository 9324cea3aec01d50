package stats

import (
	"math"
	"sort"

	"cstats/internal/output"
	"cstats/internal/record"
	"cstats/internal/scores"
)

// ScoreOptions controls per-score analysis.
type ScoreOptions struct {
	Bins               int
	HighScoreThreshold float64
	TopConversations   int
}

// TopConversation is one ranked entry in a score's top list.
type TopConversation struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Score          float64  `json:"score"`
	Domain         string   `json:"domain"`
	SubDomain      string   `json:"sub_domain"`
	Keywords       []string `json:"keywords"`
	Date           string   `json:"date"`
	Messages       int      `json:"messages"`
	UserWords      int      `json:"user_words"`
	AssistantWords int      `json:"assistant_words"`
}

// ScoreAnalysis is the full statistics block for one named score.
type ScoreAnalysis struct {
	Methodology string  `json:"methodology"`
	Count       int     `json:"count"`
	Average     float64 `json:"average"`
	Median      float64 `json:"median"`
	Stdev       float64 `json:"stdev"`
	Min         float64 `json:"min"`
	Max         float64 `json:"max"`

	Trend        []TrendPoint `json:"trend"`
	Distribution []Bin        `json:"distribution"`
	Quantiles    Quantiles    `json:"quantiles"`

	HighScoreCount         int               `json:"high_score_count"`
	HighScoreTopDomains    []NameCount       `json:"high_score_top_domains"`
	HighScoreTopSubdomains []NameCount       `json:"high_score_top_subdomains"`
	HighScoreTopKeywords   []NameCount       `json:"high_score_top_keywords"`
	TopConversations       []TopConversation `json:"top_conversations"`
}

// AnalyzeScore computes the statistics block for one named score. Records
// missing the score are excluded entirely, absence is not zero. Zero
// qualifying records yield a zero-valued placeholder, never an error.
func AnalyzeScore(convs []record.Conversation, def scores.Definition, opts ScoreOptions) ScoreAnalysis {
	analysis := ScoreAnalysis{
		Methodology:            def.Methodology,
		Trend:                  []TrendPoint{},
		Distribution:           []Bin{{}},
		HighScoreTopDomains:    []NameCount{},
		HighScoreTopSubdomains: []NameCount{},
		HighScoreTopKeywords:   []NameCount{},
		TopConversations:       []TopConversation{},
	}

	var values []float64
	var high []TopConversation
	var highDomains, highSubdomains, highKeywords []NameCount

	for i := range convs {
		c := &convs[i]
		score, ok := c.Score(def.Name)
		if !ok {
			continue
		}
		values = append(values, score)

		if score >= opts.HighScoreThreshold {
			high = append(high, topConversation(c, score, 5))
			highDomains = append(highDomains, NameCount{Name: c.Domain(), Count: 1})
			highSubdomains = append(highSubdomains, NameCount{Name: c.SubDomain(), Count: 1})
			for _, kw := range clipStrings(c.LLMMeta.Keywords, 5) {
				highKeywords = append(highKeywords, NameCount{Name: kw, Count: 1})
			}
		}
	}

	if len(values) == 0 {
		return analysis
	}

	analysis.Count = len(values)
	analysis.Average = output.Round1(Mean(values))
	analysis.Median = output.Round1(Median(values))
	analysis.Stdev = output.Round1(StdevPopulation(values))
	analysis.Min = minOf(values)
	analysis.Max = maxOf(values)
	analysis.Distribution = Distribution(values, opts.Bins)
	analysis.Quantiles = EstimateQuantiles(analysis.Distribution)
	analysis.Trend = MonthlyTrend(convs, func(c *record.Conversation) (float64, bool) {
		return c.Score(def.Name)
	})

	// Highest score first; ties go to the most recent conversation.
	sort.SliceStable(high, func(i, j int) bool {
		if high[i].Score != high[j].Score {
			return high[i].Score > high[j].Score
		}
		return high[i].Date > high[j].Date
	})

	analysis.HighScoreCount = len(high)
	analysis.HighScoreTopDomains = TopK(highDomains, 5)
	analysis.HighScoreTopSubdomains = TopK(highSubdomains, 5)
	analysis.HighScoreTopKeywords = TopK(highKeywords, 10)
	if len(high) > opts.TopConversations {
		high = high[:opts.TopConversations]
	}
	if high != nil {
		analysis.TopConversations = high
	}

	return analysis
}

func topConversation(c *record.Conversation, score float64, keywordCap int) TopConversation {
	return TopConversation{
		ID:             c.ID,
		Title:          c.Title,
		Score:          score,
		Domain:         c.Domain(),
		SubDomain:      c.SubDomain(),
		Keywords:       clipStrings(keywordsOf(c), keywordCap),
		Date:           c.Derived.Date,
		Messages:       c.Meta.TotalMessages,
		UserWords:      c.Derived.UserWordTotal,
		AssistantWords: c.Derived.AssistantWordTotal,
	}
}

func keywordsOf(c *record.Conversation) []string {
	if c.LLMMeta == nil {
		return nil
	}
	return c.LLMMeta.Keywords
}

func clipStrings(s []string, n int) []string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// ModelScore is one model's average for one score.
type ModelScore struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// AnalyzeModelScores averages every score per primary model, keeping only
// model/score cells with at least minSamples qualifying records.
func AnalyzeModelScores(convs []record.Conversation, defs []scores.Definition, minSamples int) map[string]map[string]ModelScore {
	type cell struct {
		sum   float64
		count int
	}
	acc := make(map[string]map[string]*cell)

	for i := range convs {
		c := &convs[i]
		model := c.Meta.PrimaryModel
		for _, def := range defs {
			score, ok := c.Score(def.Name)
			if !ok {
				continue
			}
			if acc[model] == nil {
				acc[model] = make(map[string]*cell)
			}
			if acc[model][def.Name] == nil {
				acc[model][def.Name] = &cell{}
			}
			acc[model][def.Name].sum += score
			acc[model][def.Name].count++
		}
	}

	result := make(map[string]map[string]ModelScore)
	for model, cells := range acc {
		for name, c := range cells {
			if c.count < minSamples {
				continue
			}
			if result[model] == nil {
				result[model] = make(map[string]ModelScore)
			}
			result[model][name] = ModelScore{
				Average: output.Round1(c.sum / float64(c.count)),
				Count:   c.count,
			}
		}
	}
	return result
}

// Mean returns the arithmetic mean, 0 for empty input.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Median returns the middle value (mean of the two middles for even
// counts), 0 for empty input.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// StdevPopulation returns the population standard deviation, 0 for fewer
// than two values.
func StdevPopulation(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := Mean(values)
	var sumSq float64
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)))
}

func minOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maxOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
