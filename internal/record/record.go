// Package record defines the per-conversation input record and its loader.
// All defaulting of optional fields happens here, at the loading boundary:
// downstream aggregation components receive fully normalized, read-only
// records and never re-check field presence.
package record

import (
	"encoding/json"
	"time"
)

// Conversation is one conversation's combined deterministic and
// LLM-derived metadata. Immutable after loading.
type Conversation struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Timestamps Timestamps `json:"timestamps"`
	Meta       Meta       `json:"meta"`
	LLMMeta    *LLMMeta   `json:"llm_meta,omitempty"`

	// Mapping is the raw message tree carried over from the export. It is
	// flattened into Derived during normalization and dropped afterwards.
	Mapping map[string]MappingNode `json:"mapping,omitempty"`

	// Derived holds counters computed once at the loader boundary.
	Derived Derived `json:"-"`
}

// Timestamps carries both human-readable and unix forms of the
// conversation's creation and last-update times.
type Timestamps struct {
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
	CreatedUnix float64 `json:"created_unix"`
	UpdatedUnix float64 `json:"updated_unix"`
}

// Meta holds the deterministic per-conversation counters produced by the
// enrichment step.
type Meta struct {
	TotalMessages       int            `json:"total_messages"`
	MessagesByRole      map[string]int `json:"messages_by_role"`
	TotalTokens         int            `json:"total_tokens"`
	UserTokens          int            `json:"user_tokens"`
	AssistantTokens     int            `json:"assistant_tokens"`
	WordCount           int            `json:"word_count"`
	DurationSeconds     float64        `json:"duration_seconds"`
	ModelsUsed          []string       `json:"models_used"`
	PrimaryModel        string         `json:"primary_model"`
	ImageCount          int            `json:"image_count"`
	AudioCount          int            `json:"audio_count"`
	IsVoiceConversation bool           `json:"is_voice_conversation"`
}

// LLMMeta holds the semantic fields extracted by the language model.
// Named 0-100 scores land in Scores keyed by their field name; a missing
// score means the record is excluded from that score's statistics.
type LLMMeta struct {
	Domain               string   `json:"domain"`
	SubDomain            string   `json:"sub_domain"`
	ConversationType     string   `json:"conversation_type"`
	RequestTypes         []string `json:"request_types"`
	Keywords             []string `json:"keywords"`
	EntitiesPeople       []string `json:"entities_people"`
	EntitiesCompanies    []string `json:"entities_companies"`
	EntitiesProducts     []string `json:"entities_products"`
	EntitiesPlaces       []string `json:"entities_places"`
	Technologies         []string `json:"technologies"`
	Concepts             []string `json:"concepts"`
	ConversationFlow     string   `json:"conversation_flow"`
	UserMood             string   `json:"user_mood"`
	ConversationTone     string   `json:"conversation_tone"`
	OutcomeType          string   `json:"outcome_type"`
	InformationDirection string   `json:"information_direction"`
	OneLineSummary       string   `json:"one_line_summary"`

	Scores map[string]float64 `json:"-"`
}

// llmMetaAlias avoids UnmarshalJSON recursion.
type llmMetaAlias LLMMeta

// structuralFields are llm_meta keys that are not scores.
var structuralFields = map[string]bool{
	"domain": true, "sub_domain": true, "conversation_type": true,
	"request_types": true, "keywords": true,
	"entities_people": true, "entities_companies": true,
	"entities_products": true, "entities_places": true,
	"technologies": true, "concepts": true,
	"conversation_flow": true, "user_mood": true,
	"conversation_tone": true, "outcome_type": true,
	"information_direction": true, "one_line_summary": true,
}

// UnmarshalJSON decodes the fixed fields and collects every remaining
// numeric key as a named score.
func (m *LLMMeta) UnmarshalJSON(data []byte) error {
	var alias llmMetaAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	scores := make(map[string]float64)
	for key, value := range raw {
		if structuralFields[key] {
			continue
		}
		var n float64
		if err := json.Unmarshal(value, &n); err == nil {
			scores[key] = n
		}
	}

	*m = LLMMeta(alias)
	m.Scores = scores
	return nil
}

// Score returns the named score and whether it is present.
func (m *LLMMeta) Score(name string) (float64, bool) {
	if m == nil {
		return 0, false
	}
	v, ok := m.Scores[name]
	return v, ok
}

// MappingNode is one node of the raw message tree.
type MappingNode struct {
	Message *MappingMessage `json:"message"`
}

// MappingMessage is the message payload of a tree node.
type MappingMessage struct {
	Author     MessageAuthor   `json:"author"`
	Content    MessageContent  `json:"content"`
	CreateTime float64         `json:"create_time"`
	Metadata   MessageMetadata `json:"metadata"`
}

// MessageAuthor identifies the message sender role.
type MessageAuthor struct {
	Role string `json:"role"`
}

// MessageContent carries the typed content parts of a message.
type MessageContent struct {
	ContentType string            `json:"content_type"`
	Parts       []json.RawMessage `json:"parts"`
}

// MessageMetadata carries the subset of message metadata the loader reads.
type MessageMetadata struct {
	IsVisuallyHidden bool `json:"is_visually_hidden_from_conversation"`
}

// Derived holds loader-computed values used by the aggregation components.
type Derived struct {
	Created time.Time
	Date    string // 2006-01-02 of the recorded timestamp, not re-zoned
	Month   string // 2006-01
	Hour    int
	Weekday int // 0=Monday .. 6=Sunday

	HasUserMessages       bool
	FirstPromptWords      int
	FollowupWords         []int
	AssistantWords        []int
	UserWordTotal         int
	AssistantWordTotal    int
	UserMessageCount      int
	AssistantMessageCount int

	Politeness map[string]int
}

// HasLLMMeta reports whether the record carries LLM-derived fields.
// Records without them contribute to deterministic aggregates only.
func (c *Conversation) HasLLMMeta() bool {
	return c.LLMMeta != nil
}

// Domain returns the record's domain, or "unknown" without llm_meta.
func (c *Conversation) Domain() string {
	if c.LLMMeta == nil {
		return "unknown"
	}
	return c.LLMMeta.Domain
}

// SubDomain returns the record's sub-domain, or "other" without llm_meta.
func (c *Conversation) SubDomain() string {
	if c.LLMMeta == nil {
		return "other"
	}
	return c.LLMMeta.SubDomain
}

// Score returns the named score for this record and whether it is present.
func (c *Conversation) Score(name string) (float64, bool) {
	return c.LLMMeta.Score(name)
}
