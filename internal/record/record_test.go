package record

import (
	"encoding/json"
	"testing"
)

func TestLLMMetaUnmarshal_CollectsScores(t *testing.T) {
	data := []byte(`{
		"domain": "coding",
		"sub_domain": "debugging",
		"keywords": ["go", "sqlite"],
		"complexity_score": 72,
		"urgency_score": 15.5,
		"serendipity_vs_general_public": 88,
		"conversation_flow": "linear"
	}`)

	var m LLMMeta
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if m.Domain != "coding" {
		t.Errorf("Domain = %q, want coding", m.Domain)
	}
	if len(m.Keywords) != 2 {
		t.Errorf("len(Keywords) = %d, want 2", len(m.Keywords))
	}

	tests := []struct {
		score string
		want  float64
		ok    bool
	}{
		{"complexity_score", 72, true},
		{"urgency_score", 15.5, true},
		{"serendipity_vs_general_public", 88, true},
		{"information_density", 0, false},
	}
	for _, tt := range tests {
		got, ok := m.Score(tt.score)
		if ok != tt.ok || got != tt.want {
			t.Errorf("Score(%q) = (%v, %v), want (%v, %v)", tt.score, got, ok, tt.want, tt.ok)
		}
	}

	// Structural string fields never leak into the score map.
	if _, ok := m.Scores["domain"]; ok {
		t.Error("domain should not be collected as a score")
	}
	if _, ok := m.Scores["conversation_flow"]; ok {
		t.Error("conversation_flow should not be collected as a score")
	}
}

func TestNormalize_Defaults(t *testing.T) {
	conv := Conversation{
		ID: "c1",
		Timestamps: Timestamps{
			CreatedAt: "2025-03-05T23:15:00",
		},
		LLMMeta: &LLMMeta{},
	}
	conv.normalize()

	if conv.Meta.PrimaryModel != "unknown" {
		t.Errorf("PrimaryModel = %q, want unknown", conv.Meta.PrimaryModel)
	}
	if conv.LLMMeta.Domain != "unknown" {
		t.Errorf("Domain default = %q, want unknown", conv.LLMMeta.Domain)
	}
	if conv.LLMMeta.SubDomain != "other" {
		t.Errorf("SubDomain default = %q, want other", conv.LLMMeta.SubDomain)
	}
	if conv.LLMMeta.UserMood != "neutral" {
		t.Errorf("UserMood default = %q, want neutral", conv.LLMMeta.UserMood)
	}
	if conv.LLMMeta.InformationDirection != "user_learning" {
		t.Errorf("InformationDirection default = %q, want user_learning", conv.LLMMeta.InformationDirection)
	}
	if conv.LLMMeta.Keywords == nil {
		t.Error("Keywords should default to an empty slice")
	}

	if conv.Derived.Date != "2025-03-05" {
		t.Errorf("Date = %q, want 2025-03-05", conv.Derived.Date)
	}
	if conv.Derived.Month != "2025-03" {
		t.Errorf("Month = %q, want 2025-03", conv.Derived.Month)
	}
	if conv.Derived.Hour != 23 {
		t.Errorf("Hour = %d, want 23", conv.Derived.Hour)
	}
	// 2025-03-05 is a Wednesday; Monday-indexed weekday is 2.
	if conv.Derived.Weekday != 2 {
		t.Errorf("Weekday = %d, want 2", conv.Derived.Weekday)
	}
}

func TestNormalize_NoLLMMeta(t *testing.T) {
	conv := Conversation{ID: "c2"}
	conv.normalize()

	if conv.HasLLMMeta() {
		t.Error("HasLLMMeta() should be false")
	}
	if conv.Domain() != "unknown" {
		t.Errorf("Domain() = %q, want unknown", conv.Domain())
	}
	if conv.SubDomain() != "other" {
		t.Errorf("SubDomain() = %q, want other", conv.SubDomain())
	}
	if _, ok := conv.Score("complexity_score"); ok {
		t.Error("Score() on record without llm_meta should report absent")
	}
	// Missing timestamp falls back to the noon placeholder hour.
	if conv.Derived.Hour != 12 {
		t.Errorf("Hour = %d, want placeholder 12", conv.Derived.Hour)
	}
}

func rawParts(parts ...string) []json.RawMessage {
	out := make([]json.RawMessage, len(parts))
	for i, p := range parts {
		b, _ := json.Marshal(p)
		out[i] = b
	}
	return out
}

func textNode(role, text string, createTime float64) MappingNode {
	return MappingNode{Message: &MappingMessage{
		Author:     MessageAuthor{Role: role},
		Content:    MessageContent{ContentType: "text", Parts: rawParts(text)},
		CreateTime: createTime,
	}}
}

func TestNormalize_FlattensMapping(t *testing.T) {
	conv := Conversation{
		ID: "c3",
		Mapping: map[string]MappingNode{
			"n3": textNode("assistant", "one two three four", 3),
			"n1": textNode("user", "please fix my bug thanks", 1),
			"n2": textNode("user", "still broken", 2),
			"n4": {Message: &MappingMessage{
				Author:   MessageAuthor{Role: "user"},
				Content:  MessageContent{ContentType: "text", Parts: rawParts("hidden")},
				Metadata: MessageMetadata{IsVisuallyHidden: true},
			}},
			"n5": {Message: nil},
		},
	}
	conv.normalize()

	d := conv.Derived
	if !d.HasUserMessages {
		t.Fatal("HasUserMessages should be true")
	}
	if d.FirstPromptWords != 5 {
		t.Errorf("FirstPromptWords = %d, want 5", d.FirstPromptWords)
	}
	if len(d.FollowupWords) != 1 || d.FollowupWords[0] != 2 {
		t.Errorf("FollowupWords = %v, want [2]", d.FollowupWords)
	}
	if len(d.AssistantWords) != 1 || d.AssistantWords[0] != 4 {
		t.Errorf("AssistantWords = %v, want [4]", d.AssistantWords)
	}
	if d.UserWordTotal != 7 {
		t.Errorf("UserWordTotal = %d, want 7", d.UserWordTotal)
	}
	if d.Politeness["please"] != 1 || d.Politeness["thanks"] != 1 {
		t.Errorf("Politeness = %v, want please=1 thanks=1", d.Politeness)
	}

	if conv.Mapping != nil {
		t.Error("Mapping should be dropped after normalization")
	}
}

func TestCountPolitenessPhrases(t *testing.T) {
	tests := []struct {
		name string
		text string
		want map[string]int
	}{
		{
			name: "mixed phrases",
			text: "Hello! Please help me. Thank you so much, thanks!",
			want: map[string]int{"hello": 1, "please": 1, "thank_you": 1, "thanks": 1},
		},
		{
			name: "word boundaries respected",
			text: "I was pleased with the thanksgiving dinner",
			want: map[string]int{},
		},
		{
			name: "case insensitive",
			text: "SORRY, I really APPRECIATE it",
			want: map[string]int{"sorry": 1, "appreciate": 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CountPolitenessPhrases(tt.text)
			for phrase, want := range tt.want {
				if got[phrase] != want {
					t.Errorf("count[%q] = %d, want %d", phrase, got[phrase], want)
				}
			}
			for phrase, n := range got {
				if n > 0 && tt.want[phrase] == 0 {
					t.Errorf("unexpected count[%q] = %d", phrase, n)
				}
			}
		})
	}
}
