package stats

import (
	"reflect"
	"testing"

	"cstats/internal/record"
)

func dateConv(id, date string, hour, weekday int) record.Conversation {
	c := record.Conversation{ID: id}
	c.Derived.Date = date
	if len(date) >= 7 {
		c.Derived.Month = date[:7]
	}
	c.Derived.Hour = hour
	c.Derived.Weekday = weekday
	return c
}

func TestLongestStreak(t *testing.T) {
	tests := []struct {
		name  string
		dates []string
		want  Streak
	}{
		{
			name:  "gap breaks the run",
			dates: []string{"2025-01-01", "2025-01-02", "2025-01-03", "2025-01-05"},
			want:  Streak{Length: 3, Start: "2025-01-01", End: "2025-01-03"},
		},
		{
			name:  "tie keeps the earliest run",
			dates: []string{"2025-01-01", "2025-01-02", "2025-01-04", "2025-01-05"},
			want:  Streak{Length: 2, Start: "2025-01-01", End: "2025-01-02"},
		},
		{
			name:  "duplicates and order do not matter",
			dates: []string{"2025-03-02", "2025-03-01", "2025-03-02"},
			want:  Streak{Length: 2, Start: "2025-03-01", End: "2025-03-02"},
		},
		{
			name:  "single day",
			dates: []string{"2025-06-15"},
			want:  Streak{Length: 1, Start: "2025-06-15", End: "2025-06-15"},
		},
		{
			name:  "empty",
			dates: nil,
			want:  Streak{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LongestStreak(tt.dates); got != tt.want {
				t.Errorf("LongestStreak() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestMonthlyTrendFillsGaps(t *testing.T) {
	convs := []record.Conversation{
		dateConv("a", "2025-01-10", 9, 0),
		dateConv("b", "2025-01-20", 9, 0),
		dateConv("c", "2025-03-05", 9, 0),
	}
	vals := map[string]float64{"a": 10, "b": 20, "c": 40}

	points := MonthlyTrend(convs, func(c *record.Conversation) (float64, bool) {
		return vals[c.ID], true
	})

	want := []TrendPoint{
		{PeriodLabel: "2025-01", Value: 15, SampleCount: 2},
		{PeriodLabel: "2025-02", Value: 0},
		{PeriodLabel: "2025-03", Value: 40, SampleCount: 1},
	}
	if !reflect.DeepEqual(points, want) {
		t.Errorf("MonthlyTrend() = %v, want %v", points, want)
	}
}

func TestMonthlyTrendExcludesNotCounted(t *testing.T) {
	convs := []record.Conversation{
		dateConv("a", "2025-05-01", 9, 0),
		dateConv("b", "2025-05-02", 9, 0),
	}
	points := MonthlyTrend(convs, func(c *record.Conversation) (float64, bool) {
		return 50, c.ID == "a"
	})

	if len(points) != 1 {
		t.Fatalf("got %d points, want 1", len(points))
	}
	if points[0].Value != 50 || points[0].SampleCount != 1 {
		t.Errorf("point = %+v, want value 50 from 1 sample", points[0])
	}
}

func TestMonthRangeCrossesYear(t *testing.T) {
	got := MonthRange("2024-11", "2025-02")
	want := []string{"2024-11", "2024-12", "2025-01", "2025-02"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("MonthRange() = %v, want %v", got, want)
	}
}

func TestBuildHourlyWeighted(t *testing.T) {
	c := dateConv("a", "2025-01-01", 5, 0)
	c.Meta.MessagesByRole = map[string]int{"user": 4}
	c.Meta.WordCount = 200

	buckets := BuildHourly([]record.Conversation{c})
	if len(buckets) != 24 {
		t.Fatalf("got %d buckets, want 24", len(buckets))
	}
	b := buckets[5]
	if b.Conversations != 1 || b.Messages != 4 {
		t.Errorf("bucket = %+v, want 1 conversation with 4 user messages", b)
	}
	if b.WeightedScore != 6 {
		t.Errorf("weighted score = %v, want 6 (4 messages + 200 words / 100)", b.WeightedScore)
	}
}

func TestDayNightScores(t *testing.T) {
	buckets := make([]HourlyBucket, 24)
	buckets[23].WeightedScore = 30
	buckets[8].WeightedScore = 50
	buckets[13].WeightedScore = 20

	night, morning := DayNightScores(buckets)
	if night != 30.0 {
		t.Errorf("night owl = %v, want 30.0", night)
	}
	if morning != 50.0 {
		t.Errorf("early bird = %v, want 50.0", morning)
	}
}

func TestDayNightScoresEmpty(t *testing.T) {
	night, morning := DayNightScores(make([]HourlyBucket, 24))
	if night != 0 || morning != 0 {
		t.Errorf("empty activity: got %v/%v, want 0/0", night, morning)
	}
}

func TestBuildDailyActivitySorted(t *testing.T) {
	convs := []record.Conversation{
		dateConv("b", "2025-02-01", 9, 0),
		dateConv("a", "2025-01-15", 9, 0),
		dateConv("c", "2025-01-15", 9, 0),
	}
	convs[1].Meta.TotalTokens = 100
	convs[2].Meta.TotalTokens = 50

	days := BuildDailyActivity(convs)
	if len(days) != 2 {
		t.Fatalf("got %d days, want 2", len(days))
	}
	if days[0].Date != "2025-01-15" || days[0].Count != 2 || days[0].Tokens != 150 {
		t.Errorf("first day = %+v, want 2025-01-15 with 2 records and 150 tokens", days[0])
	}
	if days[1].Date != "2025-02-01" {
		t.Errorf("days not sorted: %+v", days)
	}
}

func TestBuildWeekdayMondayIndexed(t *testing.T) {
	convs := []record.Conversation{
		dateConv("a", "2025-01-06", 9, 0), // a Monday
		dateConv("b", "2025-01-12", 9, 6), // a Sunday
	}
	buckets := BuildWeekday(convs)
	if buckets[0].Day != "Monday" || buckets[0].Conversations != 1 {
		t.Errorf("bucket 0 = %+v, want Monday with 1 conversation", buckets[0])
	}
	if buckets[6].Day != "Sunday" || buckets[6].Conversations != 1 {
		t.Errorf("bucket 6 = %+v, want Sunday with 1 conversation", buckets[6])
	}
}

func TestBuildMonthlyActivityPeaks(t *testing.T) {
	convs := []record.Conversation{
		dateConv("a", "2025-01-03", 9, 4),
		dateConv("b", "2025-01-04", 9, 5),
		dateConv("c", "2025-01-05", 21, 5),
		dateConv("d", "2025-02-01", 7, 0),
	}
	months := BuildMonthlyActivity(convs)
	if len(months) != 2 {
		t.Fatalf("got %d months, want 2", len(months))
	}
	jan := months[0]
	if jan.Month != "2025-01" || jan.Conversations != 3 {
		t.Errorf("january = %+v, want 3 conversations", jan)
	}
	if jan.PeakHour != 9 {
		t.Errorf("january peak hour = %d, want 9", jan.PeakHour)
	}
	if jan.PeakWeekday != "Saturday" {
		t.Errorf("january peak weekday = %q, want Saturday", jan.PeakWeekday)
	}
}
