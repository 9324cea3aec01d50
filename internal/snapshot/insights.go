package snapshot

import (
	"fmt"
	"strconv"

	"cstats/internal/stats"
)

// buildInsights renders the ready-made dashboard captions from the already
// assembled blocks. Pure string formatting, no new aggregation.
func buildInsights(s *Snapshot) map[string]string {
	hero := s.HeroStats

	ratioTail := "quite verbose in your prompts!"
	switch {
	case hero.UserAITokenRatio < 0.3:
		ratioTail = "concise and efficient!"
	case hero.UserAITokenRatio < 0.6:
		ratioTail = "balanced in your exchanges."
	}

	timing := "You have a balanced schedule across day and night."
	switch {
	case s.Activity.NightOwlScore > s.Activity.EarlyBirdScore+10:
		timing = fmt.Sprintf("You're a night owl with %s%% of activity at night.",
			trimFloat(s.Activity.NightOwlScore))
	case s.Activity.EarlyBirdScore > s.Activity.NightOwlScore+10:
		timing = fmt.Sprintf("You're an early bird with %s%% of activity in the morning.",
			trimFloat(s.Activity.EarlyBirdScore))
	}

	topDomain, topDomainPct := "unknown", 0.0
	if len(s.Domains) > 0 {
		topDomain = s.Domains[0].Name
		topDomainPct = s.Domains[0].Percentage
	}

	commonMood, commonMoodPct := "neutral", 0.0
	if len(s.ConversationDynamics.Mood.Overall) > 0 {
		commonMood = s.ConversationDynamics.Mood.Overall[0].Name
		commonMoodPct = s.ConversationDynamics.Mood.Overall[0].Percentage
	}
	signatureTone, signatureTonePct := "casual", 0.0
	if len(s.ConversationDynamics.Tone.Overall) > 0 {
		signatureTone = s.ConversationDynamics.Tone.Overall[0].Name
		signatureTonePct = s.ConversationDynamics.Tone.Overall[0].Percentage
	}

	learningPct := pct(countOf(s.Outcomes.InformationDirection, "user_learning"), hero.TotalConversations)

	return map[string]string{
		"hero": fmt.Sprintf("You had %s conversations with AI, sending %s messages (%s words).",
			humanInt(hero.TotalConversations), humanInt(hero.UserMessages), humanInt(hero.UserWords)),
		"books": fmt.Sprintf("That's equivalent to %s books written by you, and %s books of AI responses!",
			trimFloat(hero.UserBooks), trimFloat(hero.AssistantBooks)),
		"active_days": fmt.Sprintf("You were active on %d days with a maximum streak of %d consecutive days.",
			hero.ActiveDays, hero.MaxStreak),
		"token_ratio": fmt.Sprintf("Your user:AI token ratio is %.2f, you're %s",
			hero.UserAITokenRatio, ratioTail),
		"timing":     timing,
		"top_domain": fmt.Sprintf("Your top domain: %s (%s%%)", topDomain, trimFloat(topDomainPct)),
		"brainstorming": fmt.Sprintf("You brainstormed %d times this year",
			countOf(s.ConversationTypes, "brainstorming")),
		"troubleshooting": fmt.Sprintf("%d troubleshooting sessions, you fixed a lot of bugs!",
			countOf(s.ConversationTypes, "troubleshooting")),
		"frustrated_count": fmt.Sprintf("You were frustrated %d times, we've all been there",
			countOf(s.ConversationDynamics.Mood.Overall, "frustrated")),
		"common_mood": fmt.Sprintf("Your most common mood: %s (%s%%)",
			commonMood, trimFloat(commonMoodPct)),
		"signature_tone": fmt.Sprintf("Your signature tone: %s (%s%%)",
			signatureTone, trimFloat(signatureTonePct)),
		"tasks_completed": fmt.Sprintf("You completed %d tasks with AI help",
			countOf(s.Outcomes.OutcomeType, "task_completed")),
		"learning_focused": fmt.Sprintf("%s%% of conversations were learning-focused",
			trimFloat(learningPct)),
		"collaborative": fmt.Sprintf("You collaborated on %d conversations, true partnership!",
			countOf(s.Outcomes.InformationDirection, "collaborative")),
		"taught_ai": fmt.Sprintf("You taught the AI something %d times",
			countOf(s.Outcomes.InformationDirection, "user_teaching")),
	}
}

func countOf(pairs []stats.NameCount, name string) int {
	for _, p := range pairs {
		if p.Name == name {
			return p.Count
		}
	}
	return 0
}

func trimFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// humanInt formats with thousands separators: 1234567 -> "1,234,567".
func humanInt(n int) string {
	s := strconv.Itoa(n)
	neg := false
	if len(s) > 0 && s[0] == '-' {
		neg = true
		s = s[1:]
	}

	var out []byte
	for i, digit := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, digit)
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}
