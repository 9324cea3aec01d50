// Package snapshot assembles the aggregate document the dashboard renders.
// The Assembler reduces the loaded record slice into one Snapshot; the
// result is self-contained and never mutated after Assemble returns.
package snapshot

import (
	"cstats/internal/stats"
	"cstats/internal/treemap"
)

// Snapshot is the root aggregate document, one per run.
type Snapshot struct {
	HeroStats      HeroStats      `json:"hero_stats"`
	PromptAnalysis PromptAnalysis `json:"prompt_analysis"`
	Activity       Activity       `json:"activity"`
	Media          Media          `json:"media"`

	Domains             []Domain                  `json:"domains"`
	ConversationTypes   []stats.NameCount         `json:"conversation_types"`
	DomainTypeSynthesis map[string]map[string]int `json:"domain_type_synthesis"`
	RequestTypes        []RequestType             `json:"request_types"`
	TopCombinations     []Combination             `json:"top_combinations"`
	MonthlyBreakdown    []MonthlyBreakdown        `json:"monthly_breakdown"`
	AllTimeTops         AllTimeTops               `json:"all_time_tops"`
	GeographicData      []GeoPlace                `json:"geographic_data"`

	ScoreAnalysis map[string]stats.ScoreAnalysis         `json:"score_analysis"`
	ModelScores   map[string]map[string]stats.ModelScore `json:"model_scores"`
	Serendipity   stats.SerendipityAnalysis              `json:"serendipity"`

	TopByMessages []VolumeEntry `json:"top_by_messages"`
	TopByWords    []VolumeEntry `json:"top_by_words"`

	ConversationDynamics ConversationDynamics  `json:"conversation_dynamics"`
	Outcomes             Outcomes              `json:"outcomes"`
	Politeness           stats.PolitenessTally `json:"politeness"`

	Models        []stats.NameCount `json:"models"`
	ModelTimeline []ModelMonth      `json:"model_timeline"`

	Insights map[string]string `json:"insights"`
	Treemap  []treemap.Rect    `json:"treemap"`

	GeneratedAt string `json:"generated_at"`
	Corpus      string `json:"corpus,omitempty"`
	Year        int    `json:"year"`
}

// HeroStats carries the headline totals.
type HeroStats struct {
	TotalConversations int     `json:"total_conversations"`
	TotalMessages      int     `json:"total_messages"`
	UserMessages       int     `json:"user_messages"`
	AssistantMessages  int     `json:"assistant_messages"`
	TotalTokens        int     `json:"total_tokens"`
	UserTokens         int     `json:"user_tokens"`
	AssistantTokens    int     `json:"assistant_tokens"`
	UserWords          int     `json:"user_words"`
	AssistantWords     int     `json:"assistant_words"`
	UserBooks          float64 `json:"user_books"`
	AssistantBooks     float64 `json:"assistant_books"`
	ActiveDays         int     `json:"active_days"`
	MaxStreak          int     `json:"max_streak"`
	UserAITokenRatio   float64 `json:"user_ai_token_ratio"`
}

// PromptAnalysis describes how the user writes: per-measure averages,
// histograms with quantile summaries, and monthly trends.
type PromptAnalysis struct {
	AvgFirstPromptWords float64 `json:"avg_first_prompt_words"`
	AvgFollowupWords    float64 `json:"avg_followup_words"`
	AvgAssistantWords   float64 `json:"avg_assistant_words"`
	AvgMessagesPerConv  float64 `json:"avg_messages_per_conv"`

	FirstPromptDistribution       []stats.Bin `json:"first_prompt_distribution"`
	FollowupDistribution          []stats.Bin `json:"followup_distribution"`
	AssistantResponseDistribution []stats.Bin `json:"assistant_response_distribution"`
	MessagesPerConvDistribution   []stats.Bin `json:"messages_per_conv_distribution"`

	FirstPromptQuantiles       stats.Quantiles `json:"first_prompt_quantiles"`
	FollowupQuantiles          stats.Quantiles `json:"followup_quantiles"`
	AssistantResponseQuantiles stats.Quantiles `json:"assistant_response_quantiles"`
	MessagesPerConvQuantiles   stats.Quantiles `json:"messages_per_conv_quantiles"`

	FirstPromptTrend []stats.TrendPoint `json:"first_prompt_trend"`
	FollowupTrend    []stats.TrendPoint `json:"followup_trend"`
	AssistantTrend   []stats.TrendPoint `json:"assistant_trend"`
	MessagesTrend    []stats.TrendPoint `json:"messages_trend"`
}

// Activity is the temporal block: heatmap days, hour/weekday histograms,
// the day/night scores, and per-month roll-ups.
type Activity struct {
	Daily          []stats.DailyActivity   `json:"daily"`
	Hourly         []stats.HourlyBucket    `json:"hourly"`
	Weekday        []stats.WeekdayBucket   `json:"weekday"`
	NightOwlScore  float64                 `json:"night_owl_score"`
	EarlyBirdScore float64                 `json:"early_bird_score"`
	MonthlyTrends  []stats.MonthlyActivity `json:"monthly_trends"`
}

// Media tallies non-text content.
type Media struct {
	ImageCount         int    `json:"image_count"`
	AudioCount         int    `json:"audio_count"`
	VoiceConversations int    `json:"voice_conversations"`
	MostVisualMonth    string `json:"most_visual_month"`
}

// Domain is one domain with its top sub-domains. Sub-domain percentages
// are relative to the domain, not the corpus.
type Domain struct {
	Name       string            `json:"name"`
	Count      int               `json:"count"`
	Percentage float64           `json:"percentage"`
	Subdomains []stats.NameCount `json:"subdomains"`
}

// RequestType is one request kind with the domains it appears in most.
type RequestType struct {
	Name       string         `json:"name"`
	Count      int            `json:"count"`
	Percentage float64        `json:"percentage"`
	TopDomains map[string]int `json:"top_domains"`
}

// Combination is one domain|type|request triple.
type Combination struct {
	Combination string `json:"combination"`
	Domain      string `json:"domain"`
	Type        string `json:"type"`
	Request     string `json:"request"`
	Count       int    `json:"count"`
}

// MonthlyBreakdown is one month's volume plus its top entities.
type MonthlyBreakdown struct {
	Month         string `json:"month"`
	Conversations int    `json:"conversations"`
	Messages      int    `json:"messages"`
	Words         int    `json:"words"`

	TopKeywords     []stats.NameCount `json:"top_keywords"`
	TopPeople       []stats.NameCount `json:"top_people"`
	TopCompanies    []stats.NameCount `json:"top_companies"`
	TopProducts     []stats.NameCount `json:"top_products"`
	TopPlaces       []stats.NameCount `json:"top_places"`
	TopTechnologies []stats.NameCount `json:"top_technologies"`
	TopConcepts     []stats.NameCount `json:"top_concepts"`
}

// AllTimeTops holds the corpus-wide canonicalized entity rankings.
type AllTimeTops struct {
	Keywords     []stats.NameCount `json:"keywords"`
	People       []stats.NameCount `json:"people"`
	Companies    []stats.NameCount `json:"companies"`
	Products     []stats.NameCount `json:"products"`
	Places       []stats.NameCount `json:"places"`
	Technologies []stats.NameCount `json:"technologies"`
	Concepts     []stats.NameCount `json:"concepts"`
}

// GeoPlace is one mentioned place with when and in what context it came up.
type GeoPlace struct {
	Place          string   `json:"place"`
	Count          int      `json:"count"`
	Months         []string `json:"months"`
	FirstMentioned string   `json:"first_mentioned"`
	TopDomain      string   `json:"top_domain"`
}

// VolumeEntry is one conversation in the volume rankings.
type VolumeEntry struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Domain         string   `json:"domain"`
	SubDomain      string   `json:"sub_domain"`
	Keywords       []string `json:"keywords"`
	Date           string   `json:"date"`
	Messages       int      `json:"messages"`
	UserWords      int      `json:"user_words"`
	AssistantWords int      `json:"assistant_words"`
	TotalWords     int      `json:"total_words"`
}

// DynamicsDimension holds the overall ranking and per-month top-5 counts
// of one dynamics facet.
type DynamicsDimension struct {
	Overall []stats.NameCount         `json:"overall"`
	Monthly map[string]map[string]int `json:"monthly"`
}

// ConversationDynamics covers how conversations went.
type ConversationDynamics struct {
	Flow DynamicsDimension `json:"flow"`
	Mood DynamicsDimension `json:"mood"`
	Tone DynamicsDimension `json:"tone"`
}

// Outcomes tallies how conversations ended and which way information flowed.
type Outcomes struct {
	OutcomeType          []stats.NameCount `json:"outcome_type"`
	InformationDirection []stats.NameCount `json:"information_direction"`
}

// ModelMonth is one month of the model usage timeline.
type ModelMonth struct {
	Month  string         `json:"month"`
	Models map[string]int `json:"models"`
}
