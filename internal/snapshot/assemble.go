package snapshot

import (
	"fmt"
	"sync"
	"time"

	"cstats/internal/config"
	"cstats/internal/corpus"
	"cstats/internal/errors"
	"cstats/internal/logging"
	"cstats/internal/output"
	"cstats/internal/record"
	"cstats/internal/scores"
	"cstats/internal/stats"
	"cstats/internal/treemap"
)

const wordsPerBook = 50000

// Assembler reduces a loaded record slice into one Snapshot.
type Assembler struct {
	cfg      *config.Config
	defs     []scores.Definition
	logger   *logging.Logger
	manifest *corpus.Manifest
}

// NewAssembler builds an Assembler. A nil logger discards output.
func NewAssembler(cfg *config.Config, defs []scores.Definition, logger *logging.Logger) *Assembler {
	if logger == nil {
		logger = logging.NewDiscard()
	}
	return &Assembler{cfg: cfg, defs: defs, logger: logger}
}

// WithManifest attaches corpus metadata. The manifest name becomes the
// snapshot's corpus label, and a non-zero manifest year overrides the year
// inferred from the last record. A nil manifest is a no-op.
func (a *Assembler) WithManifest(m *corpus.Manifest) *Assembler {
	a.manifest = m
	return a
}

// Assemble computes every block of the snapshot. The record slice is read
// only; per-score analyses run concurrently with one result slot each.
func (a *Assembler) Assemble(convs []record.Conversation) (*Snapshot, error) {
	if len(convs) == 0 {
		return nil, errors.New(errors.EmptyMetric, "no records to aggregate", nil)
	}

	start := time.Now()

	daily := stats.BuildDailyActivity(convs)
	hourly := stats.BuildHourly(convs)
	nightOwl, earlyBird := stats.DayNightScores(hourly)

	domains := a.buildDomains(convs)
	convTypes := buildConversationTypes(convs)
	dynamics := buildDynamics(convs)
	outcomes := buildOutcomes(convs)
	modelNames := buildModels(convs)

	snap := &Snapshot{
		HeroStats:      buildHero(convs, daily),
		PromptAnalysis: a.buildPromptAnalysis(convs),
		Activity: Activity{
			Daily:          daily,
			Hourly:         hourly,
			Weekday:        stats.BuildWeekday(convs),
			NightOwlScore:  nightOwl,
			EarlyBirdScore: earlyBird,
			MonthlyTrends:  stats.BuildMonthlyActivity(convs),
		},
		Media:               buildMedia(convs),
		Domains:             domains,
		ConversationTypes:   convTypes,
		DomainTypeSynthesis: buildDomainTypeSynthesis(convs),
		RequestTypes:        buildRequestTypes(convs),
		TopCombinations:     buildCombinations(convs, a.cfg.TopLists.Combinations),
		MonthlyBreakdown:    buildMonthlyBreakdown(convs),
		AllTimeTops:         a.buildAllTimeTops(convs),
		GeographicData:      buildGeographic(convs, a.cfg.TopLists.GeoPlaces),
		ScoreAnalysis:       a.analyzeScores(convs),
		ModelScores:         stats.AnalyzeModelScores(convs, a.defs, a.cfg.Selection.MinModelSamples),
		Serendipity: stats.AnalyzeSerendipity(convs, stats.SerendipityOptions{
			Bins:       a.cfg.Bins.Serendipity,
			Percentile: a.cfg.Selection.SerendipityPercentile,
			TopN:       a.cfg.Selection.TopSerendipitous,
		}),
		ConversationDynamics: dynamics,
		Outcomes:             outcomes,
		Politeness:           stats.AnalyzePoliteness(convs),
		Models:               modelNames,
		ModelTimeline:        buildModelTimeline(convs),
		GeneratedAt:          time.Now().UTC().Format(time.RFC3339),
		Year:                 convs[len(convs)-1].Derived.Created.Year(),
	}

	if a.manifest != nil {
		snap.Corpus = a.manifest.Name
		if a.manifest.Year != 0 {
			snap.Year = a.manifest.Year
		}
	}

	snap.TopByMessages, snap.TopByWords = buildVolumeTops(convs, a.cfg.Selection.TopByVolume)
	snap.Treemap = a.buildTreemap(domains)
	snap.Insights = buildInsights(snap)

	a.logger.Info("snapshot assembled", map[string]interface{}{
		"records":     len(convs),
		"scores":      len(a.defs),
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return snap, nil
}

// analyzeScores runs one goroutine per score definition over the read-only
// record slice. A panic inside one metric's analysis is contained: that
// metric gets its empty placeholder and the rest of the snapshot is
// unaffected.
func (a *Assembler) analyzeScores(convs []record.Conversation) map[string]stats.ScoreAnalysis {
	opts := stats.ScoreOptions{
		Bins:               a.cfg.Bins.Score,
		HighScoreThreshold: a.cfg.Selection.HighScoreThreshold,
		TopConversations:   a.cfg.Selection.TopConversations,
	}

	results := make([]stats.ScoreAnalysis, len(a.defs))
	var wg sync.WaitGroup
	for i := range a.defs {
		wg.Add(1)
		go func(i int, def scores.Definition) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					a.logger.Error("score analysis panicked", map[string]interface{}{
						"code":  string(errors.InternalError),
						"score": def.Name,
						"panic": fmt.Sprint(r),
					})
					results[i] = stats.AnalyzeScore(nil, def, opts)
				}
			}()
			results[i] = stats.AnalyzeScore(convs, def, opts)
		}(i, a.defs[i])
	}
	wg.Wait()

	analysis := make(map[string]stats.ScoreAnalysis, len(a.defs))
	for i, def := range a.defs {
		analysis[def.Name] = results[i]
	}
	return analysis
}

func (a *Assembler) buildPromptAnalysis(convs []record.Conversation) PromptAnalysis {
	var firstPrompt, followup, assistant, perConv []float64

	for i := range convs {
		c := &convs[i]
		if c.Derived.HasUserMessages {
			firstPrompt = append(firstPrompt, float64(c.Derived.FirstPromptWords))
		}
		for _, w := range c.Derived.FollowupWords {
			followup = append(followup, float64(w))
		}
		for _, w := range c.Derived.AssistantWords {
			assistant = append(assistant, float64(w))
		}
		perConv = append(perConv, float64(c.Derived.UserMessageCount+c.Derived.AssistantMessageCount))
	}

	firstDist := stats.Distribution(firstPrompt, a.cfg.Bins.FirstPrompt)
	followupDist := stats.Distribution(followup, a.cfg.Bins.Followup)
	assistantDist := stats.Distribution(assistant, a.cfg.Bins.Assistant)
	perConvDist := stats.Distribution(perConv, a.cfg.Bins.MessagesPerCon)

	return PromptAnalysis{
		AvgFirstPromptWords: output.Round1(stats.Mean(firstPrompt)),
		AvgFollowupWords:    output.Round1(stats.Mean(followup)),
		AvgAssistantWords:   output.Round1(stats.Mean(assistant)),
		AvgMessagesPerConv:  output.Round1(stats.Mean(perConv)),

		FirstPromptDistribution:       firstDist,
		FollowupDistribution:          followupDist,
		AssistantResponseDistribution: assistantDist,
		MessagesPerConvDistribution:   perConvDist,

		FirstPromptQuantiles:       stats.EstimateQuantiles(firstDist),
		FollowupQuantiles:          stats.EstimateQuantiles(followupDist),
		AssistantResponseQuantiles: stats.EstimateQuantiles(assistantDist),
		MessagesPerConvQuantiles:   stats.EstimateQuantiles(perConvDist),

		FirstPromptTrend: stats.MonthlyTrend(convs, func(c *record.Conversation) (float64, bool) {
			return float64(c.Derived.FirstPromptWords), c.Derived.HasUserMessages
		}),
		FollowupTrend: stats.MonthlyTrendSamples(convs, func(c *record.Conversation) []float64 {
			return intSamples(c.Derived.FollowupWords)
		}),
		AssistantTrend: stats.MonthlyTrendSamples(convs, func(c *record.Conversation) []float64 {
			return intSamples(c.Derived.AssistantWords)
		}),
		MessagesTrend: stats.MonthlyTrend(convs, func(c *record.Conversation) (float64, bool) {
			return float64(c.Derived.UserMessageCount + c.Derived.AssistantMessageCount), true
		}),
	}
}

func intSamples(words []int) []float64 {
	if len(words) == 0 {
		return nil
	}
	out := make([]float64, len(words))
	for i, w := range words {
		out[i] = float64(w)
	}
	return out
}

func buildHero(convs []record.Conversation, daily []stats.DailyActivity) HeroStats {
	hero := HeroStats{TotalConversations: len(convs)}

	for i := range convs {
		c := &convs[i]
		hero.TotalMessages += c.Meta.TotalMessages
		hero.UserMessages += c.Meta.MessagesByRole["user"]
		hero.AssistantMessages += c.Meta.MessagesByRole["assistant"]
		hero.TotalTokens += c.Meta.TotalTokens
		hero.UserTokens += c.Meta.UserTokens
		hero.AssistantTokens += c.Meta.AssistantTokens
		hero.UserWords += c.Derived.UserWordTotal
		hero.AssistantWords += c.Derived.AssistantWordTotal
	}

	hero.UserBooks = output.Round1(float64(hero.UserWords) / wordsPerBook)
	hero.AssistantBooks = output.Round1(float64(hero.AssistantWords) / wordsPerBook)

	assistantTokens := hero.AssistantTokens
	if assistantTokens < 1 {
		assistantTokens = 1
	}
	hero.UserAITokenRatio = output.Round2(float64(hero.UserTokens) / float64(assistantTokens))

	dates := make([]string, len(daily))
	for i, d := range daily {
		dates[i] = d.Date
	}
	hero.ActiveDays = len(dates)
	hero.MaxStreak = stats.LongestStreak(dates).Length

	return hero
}

func buildMedia(convs []record.Conversation) Media {
	media := Media{}
	monthlyImages := make(map[string]int)

	for i := range convs {
		c := &convs[i]
		media.ImageCount += c.Meta.ImageCount
		media.AudioCount += c.Meta.AudioCount
		if c.Meta.IsVoiceConversation {
			media.VoiceConversations++
		}
		if c.Derived.Month != "" {
			monthlyImages[c.Derived.Month] += c.Meta.ImageCount
		}
	}

	// Highest image count wins; ties go to the earliest month.
	best := -1
	for m, n := range monthlyImages {
		if n > best || (n == best && m < media.MostVisualMonth) {
			best = n
			media.MostVisualMonth = m
		}
	}

	return media
}

// buildTreemap lays the domain/sub-domain hierarchy onto the configured
// canvas. Overflow beyond the node limit is recovered by dropping the
// lowest-ranked domains, logged once.
func (a *Assembler) buildTreemap(domains []Domain) []treemap.Rect {
	nodes := make([]treemap.Node, 0, len(domains))
	for _, d := range domains {
		node := treemap.Node{Name: d.Name, Count: d.Count}
		for _, sd := range d.Subdomains {
			node.Children = append(node.Children, treemap.Node{Name: sd.Name, Count: sd.Count})
		}
		nodes = append(nodes, node)
	}

	result := treemap.Layout(nodes, treemap.Options{
		Width:     a.cfg.Treemap.Width,
		Height:    a.cfg.Treemap.Height,
		Padding:   a.cfg.Treemap.Padding,
		MinWidth:  a.cfg.Treemap.MinWidth,
		MinHeight: a.cfg.Treemap.MinHeight,
		MaxNodes:  a.cfg.Treemap.MaxNodes,
	})
	if result.Dropped > 0 {
		a.logger.Warn("treemap node limit exceeded", map[string]interface{}{
			"code":    string(errors.LayoutOverflow),
			"dropped": result.Dropped,
			"kept":    len(result.Rects),
		})
	}
	return result.Rects
}
