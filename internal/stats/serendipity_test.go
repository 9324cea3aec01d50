package stats

import (
	"fmt"
	"strings"
	"testing"

	"cstats/internal/output"
	"cstats/internal/record"
	"cstats/internal/scores"
)

func TestTopPercentileThreshold(t *testing.T) {
	values := make([]float64, 0, 30)
	for i := 1; i <= 30; i++ {
		values = append(values, float64(i))
	}
	// int(30 * 0.05) = 1: second-highest value.
	if got := topPercentileThreshold(values, 0.05); got != 29 {
		t.Errorf("threshold = %v, want 29", got)
	}
	if got := topPercentileThreshold(nil, 0.05); got != 0 {
		t.Errorf("empty threshold = %v, want 0", got)
	}
}

func TestAnalyzeSerendipitySelectsTopFraction(t *testing.T) {
	convs := make([]record.Conversation, 0, 31)
	for i := 1; i <= 30; i++ {
		convs = append(convs, scoredConv(fmt.Sprintf("c%02d", i), "2025-01-15", map[string]float64{
			scores.SerendipityPublic: float64(i),
			scores.SerendipityPower:  float64(i),
		}))
	}
	// A record without scores never qualifies.
	convs = append(convs, scoredConv("blank", "2025-01-16", nil))

	got := AnalyzeSerendipity(convs, SerendipityOptions{Bins: 10, Percentile: 0.05, TopN: 20})

	if len(got.TopSerendipitous) != 2 {
		t.Fatalf("got %d selected, want 2 (threshold at second-highest)", len(got.TopSerendipitous))
	}
	if got.TopSerendipitous[0].ID != "c30" || got.TopSerendipitous[1].ID != "c29" {
		t.Errorf("selection order = %q, %q; want c30 then c29",
			got.TopSerendipitous[0].ID, got.TopSerendipitous[1].ID)
	}
	if got.VsGeneralPublic.Average != 15.5 {
		t.Errorf("public average = %v, want 15.5", got.VsGeneralPublic.Average)
	}
	if TotalCount(got.VsGeneralPublic.Distribution) != 30 {
		t.Errorf("distribution total = %d, want 30", TotalCount(got.VsGeneralPublic.Distribution))
	}
	if len(got.SerendipitousDomains) != 1 || got.SerendipitousDomains[0].Count != 2 {
		t.Errorf("domains = %v, want technology x2", got.SerendipitousDomains)
	}
}

func TestAnalyzeSerendipityTieBreaks(t *testing.T) {
	mk := func(id, date string, pub, pow float64) record.Conversation {
		return scoredConv(id, date, map[string]float64{
			scores.SerendipityPublic: pub,
			scores.SerendipityPower:  pow,
		})
	}
	convs := []record.Conversation{
		mk("older", "2025-01-01", 90, 90),
		mk("newer", "2025-03-01", 90, 90),
		mk("low", "2025-02-01", 10, 10),
	}
	got := AnalyzeSerendipity(convs, SerendipityOptions{Bins: 10, Percentile: 0.05, TopN: 20})

	if len(got.TopSerendipitous) < 2 {
		t.Fatalf("got %d selected, want at least the two tied records", len(got.TopSerendipitous))
	}
	if got.TopSerendipitous[0].ID != "newer" {
		t.Errorf("top[0] = %q, want newer (equal combined scores rank by recency)",
			got.TopSerendipitous[0].ID)
	}
}

func TestAnalyzeSerendipityNoQualifiersKeepsTopList(t *testing.T) {
	convs := []record.Conversation{scoredConv("blank", "2025-01-01", nil)}
	got := AnalyzeSerendipity(convs, SerendipityOptions{Bins: 10, Percentile: 0.05, TopN: 20})

	if got.TopSerendipitous == nil {
		t.Fatal("TopSerendipitous must stay an empty slice when nothing qualifies")
	}

	encoded, err := output.DeterministicEncode(got)
	if err != nil {
		t.Fatalf("DeterministicEncode() error = %v", err)
	}
	if !strings.Contains(string(encoded), `"top_serendipitous":[]`) {
		t.Errorf("document must carry top_serendipitous as [], got %s", encoded)
	}
}

func TestAnalyzeSerendipityEmpty(t *testing.T) {
	got := AnalyzeSerendipity(nil, SerendipityOptions{Bins: 10, Percentile: 0.05, TopN: 20})

	if len(got.TopSerendipitous) != 0 {
		t.Errorf("empty corpus selected %d records", len(got.TopSerendipitous))
	}
	if got.VsGeneralPublic.Average != 0 {
		t.Errorf("empty average = %v, want 0", got.VsGeneralPublic.Average)
	}
	if len(got.VsGeneralPublic.Distribution) != 1 {
		t.Errorf("empty distribution = %v, want single zero bin", got.VsGeneralPublic.Distribution)
	}
}
