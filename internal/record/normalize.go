package record

import (
	"encoding/json"
	"regexp"
	"sort"
	"strings"
	"time"
)

// politenessPatterns are the phrase classes tallied from user messages.
// Word-boundary anchored so "pleased" does not count as "please".
var politenessPatterns = map[string]*regexp.Regexp{
	"please":     regexp.MustCompile(`\bplease\b`),
	"thanks":     regexp.MustCompile(`\bthanks\b`),
	"thank_you":  regexp.MustCompile(`\bthank you\b`),
	"sorry":      regexp.MustCompile(`\bsorry\b`),
	"appreciate": regexp.MustCompile(`\bappreciate\b`),
	"grateful":   regexp.MustCompile(`\bgrateful\b`),
	"pardon":     regexp.MustCompile(`\bpardon\b`),
	"excuse_me":  regexp.MustCompile(`\bexcuse me\b`),
	"hello":      regexp.MustCompile(`\b(hello|hi|hey|good morning|good afternoon|good evening)\b`),
}

// PolitenessPhrases lists the tallied phrase classes in stable order.
func PolitenessPhrases() []string {
	phrases := make([]string, 0, len(politenessPatterns))
	for p := range politenessPatterns {
		phrases = append(phrases, p)
	}
	sort.Strings(phrases)
	return phrases
}

// CountPolitenessPhrases tallies polite phrase occurrences in text.
func CountPolitenessPhrases(text string) map[string]int {
	lower := strings.ToLower(text)
	counts := make(map[string]int, len(politenessPatterns))
	for phrase, pattern := range politenessPatterns {
		counts[phrase] = len(pattern.FindAllStringIndex(lower, -1))
	}
	return counts
}

// timestampLayouts covers both zoned RFC3339 timestamps and the naive
// ISO form the enrichment step emits for local times.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

func parseTimestamp(s string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

type flatMessage struct {
	role       string
	text       string
	wordCount  int
	createTime float64
}

// flattenMessages converts the raw mapping tree into a flat, time-ordered
// list of visible text messages.
func flattenMessages(mapping map[string]MappingNode) []flatMessage {
	var messages []flatMessage

	for _, node := range mapping {
		msg := node.Message
		if msg == nil || msg.Metadata.IsVisuallyHidden {
			continue
		}
		if msg.Content.ContentType != "text" {
			continue
		}

		var parts []string
		for _, raw := range msg.Content.Parts {
			var s string
			if err := json.Unmarshal(raw, &s); err == nil && strings.TrimSpace(s) != "" {
				parts = append(parts, s)
			}
		}
		if len(parts) == 0 {
			continue
		}

		text := strings.Join(parts, "\n")
		messages = append(messages, flatMessage{
			role:       msg.Author.Role,
			text:       text,
			wordCount:  len(strings.Fields(text)),
			createTime: msg.CreateTime,
		})
	}

	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].createTime < messages[j].createTime
	})

	return messages
}

// normalize applies defaulting rules and flattens the message tree into the
// Derived counters. Called exactly once per record, by the loader.
func (c *Conversation) normalize() {
	if c.Meta.MessagesByRole == nil {
		c.Meta.MessagesByRole = map[string]int{}
	}
	if c.Meta.ModelsUsed == nil {
		c.Meta.ModelsUsed = []string{}
	}
	if c.Meta.PrimaryModel == "" {
		c.Meta.PrimaryModel = "unknown"
	}

	if m := c.LLMMeta; m != nil {
		if m.Domain == "" {
			m.Domain = "unknown"
		}
		if m.SubDomain == "" {
			m.SubDomain = "other"
		}
		if m.ConversationType == "" {
			m.ConversationType = "unknown"
		}
		if m.ConversationFlow == "" {
			m.ConversationFlow = "unknown"
		}
		if m.UserMood == "" {
			m.UserMood = "neutral"
		}
		if m.ConversationTone == "" {
			m.ConversationTone = "casual"
		}
		if m.OutcomeType == "" {
			m.OutcomeType = "unknown"
		}
		if m.InformationDirection == "" {
			m.InformationDirection = "user_learning"
		}
		for _, list := range []*[]string{
			&m.RequestTypes, &m.Keywords,
			&m.EntitiesPeople, &m.EntitiesCompanies, &m.EntitiesProducts,
			&m.EntitiesPlaces, &m.Technologies, &m.Concepts,
		} {
			if *list == nil {
				*list = []string{}
			}
		}
		if m.Scores == nil {
			m.Scores = map[string]float64{}
		}
	}

	d := Derived{
		Hour:       12,
		Politeness: make(map[string]int, len(politenessPatterns)),
	}

	if t, ok := parseTimestamp(c.Timestamps.CreatedAt); ok {
		d.Created = t
		d.Date = t.Format("2006-01-02")
		d.Month = t.Format("2006-01")
		d.Hour = t.Hour()
		// Weekday indexed Monday=0 to match the weekday bucket layout.
		d.Weekday = (int(t.Weekday()) + 6) % 7
	}

	for _, msg := range flattenMessages(c.Mapping) {
		switch msg.role {
		case "user":
			d.UserMessageCount++
			d.UserWordTotal += msg.wordCount
			if !d.HasUserMessages {
				d.HasUserMessages = true
				d.FirstPromptWords = msg.wordCount
			} else {
				d.FollowupWords = append(d.FollowupWords, msg.wordCount)
			}
			for phrase, n := range CountPolitenessPhrases(msg.text) {
				d.Politeness[phrase] += n
			}
		case "assistant":
			d.AssistantMessageCount++
			d.AssistantWordTotal += msg.wordCount
			d.AssistantWords = append(d.AssistantWords, msg.wordCount)
		}
	}

	c.Derived = d

	// The tree served its purpose; drop it so a year's corpus fits in memory.
	c.Mapping = nil
}
