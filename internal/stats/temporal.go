package stats

import (
	"sort"
	"time"

	"cstats/internal/output"
	"cstats/internal/record"
)

// DailyActivity is one calendar day's accumulated totals.
type DailyActivity struct {
	Date     string `json:"date"`
	Count    int    `json:"count"`
	Tokens   int    `json:"tokens"`
	Messages int    `json:"messages"`
}

// BuildDailyActivity buckets records by the calendar date of their recorded
// timestamp (never re-zoned) and returns the buckets sorted by date.
func BuildDailyActivity(convs []record.Conversation) []DailyActivity {
	byDate := make(map[string]*DailyActivity)

	for i := range convs {
		c := &convs[i]
		if c.Derived.Date == "" {
			continue
		}
		d, ok := byDate[c.Derived.Date]
		if !ok {
			d = &DailyActivity{Date: c.Derived.Date}
			byDate[c.Derived.Date] = d
		}
		d.Count++
		d.Tokens += c.Meta.TotalTokens
		d.Messages += c.Meta.TotalMessages
	}

	result := make([]DailyActivity, 0, len(byDate))
	for _, d := range byDate {
		result = append(result, *d)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date < result[j].Date })
	return result
}

// Streak describes a run of consecutive active calendar days.
type Streak struct {
	Length int    `json:"length"`
	Start  string `json:"start,omitempty"`
	End    string `json:"end,omitempty"`
}

// LongestStreak finds the longest run of consecutive days among the given
// active dates (YYYY-MM-DD). Ties resolve to the earliest-starting run.
func LongestStreak(dates []string) Streak {
	if len(dates) == 0 {
		return Streak{}
	}

	parsed := make([]time.Time, 0, len(dates))
	seen := make(map[string]bool, len(dates))
	for _, d := range dates {
		if seen[d] {
			continue
		}
		seen[d] = true
		if t, err := time.Parse("2006-01-02", d); err == nil {
			parsed = append(parsed, t)
		}
	}
	if len(parsed) == 0 {
		return Streak{}
	}
	sort.Slice(parsed, func(i, j int) bool { return parsed[i].Before(parsed[j]) })

	best := Streak{Length: 1, Start: parsed[0].Format("2006-01-02"), End: parsed[0].Format("2006-01-02")}
	runStart := 0
	runLen := 1

	for i := 1; i < len(parsed); i++ {
		if parsed[i].Sub(parsed[i-1]) == 24*time.Hour {
			runLen++
		} else {
			runStart = i
			runLen = 1
		}
		// Strictly greater keeps the earliest run on ties.
		if runLen > best.Length {
			best = Streak{
				Length: runLen,
				Start:  parsed[runStart].Format("2006-01-02"),
				End:    parsed[i].Format("2006-01-02"),
			}
		}
	}

	return best
}

// HourlyBucket accumulates activity for one hour of the day.
type HourlyBucket struct {
	Hour          int     `json:"hour"`
	Conversations int     `json:"conversations"`
	Messages      int     `json:"messages"`
	WeightedScore float64 `json:"weighted_score"`
}

// BuildHourly sums activity into 24 hourly buckets. The weighted score is
// user messages plus word count scaled down, so long written sessions count
// more than drive-by questions.
func BuildHourly(convs []record.Conversation) []HourlyBucket {
	buckets := make([]HourlyBucket, 24)
	for i := range buckets {
		buckets[i].Hour = i
	}

	for i := range convs {
		c := &convs[i]
		h := c.Derived.Hour
		if h < 0 || h > 23 {
			continue
		}
		msgs := c.Meta.MessagesByRole["user"]
		buckets[h].Conversations++
		buckets[h].Messages += msgs
		buckets[h].WeightedScore += float64(msgs) + float64(c.Meta.WordCount)/100
	}

	return buckets
}

// WeekdayNames indexes weekday buckets, Monday first.
var WeekdayNames = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// WeekdayBucket accumulates activity for one day of the week.
type WeekdayBucket struct {
	Day           string  `json:"day"`
	DayIndex      int     `json:"day_index"`
	Conversations int     `json:"conversations"`
	Messages      int     `json:"messages"`
	WeightedScore float64 `json:"weighted_score"`
}

// BuildWeekday sums activity into 7 weekday buckets, Monday-indexed.
func BuildWeekday(convs []record.Conversation) []WeekdayBucket {
	buckets := make([]WeekdayBucket, 7)
	for i := range buckets {
		buckets[i].Day = WeekdayNames[i]
		buckets[i].DayIndex = i
	}

	for i := range convs {
		c := &convs[i]
		wd := c.Derived.Weekday
		if wd < 0 || wd > 6 {
			continue
		}
		msgs := c.Meta.MessagesByRole["user"]
		buckets[wd].Conversations++
		buckets[wd].Messages += msgs
		buckets[wd].WeightedScore += float64(msgs) + float64(c.Meta.WordCount)/100
	}

	return buckets
}

// nightHours and morningHours are the fixed ranges behind the night-owl
// (22:00-04:00) and early-bird (05:00-10:00) scores.
var (
	nightHours   = []int{22, 23, 0, 1, 2, 3, 4}
	morningHours = []int{5, 6, 7, 8, 9, 10}
)

// DayNightScores derives the night-owl and early-bird percentages from the
// hourly buckets' weighted activity.
func DayNightScores(hourly []HourlyBucket) (nightOwl, earlyBird float64) {
	var night, morning, total float64
	for _, b := range hourly {
		total += b.WeightedScore
	}
	for _, h := range nightHours {
		night += hourly[h].WeightedScore
	}
	for _, h := range morningHours {
		morning += hourly[h].WeightedScore
	}

	if total < 1 {
		total = 1
	}
	return output.Round1(night / total * 100), output.Round1(morning / total * 100)
}

// TrendPoint is one temporal bucket of a monthly series. Gap months carry
// value 0 rather than being omitted; the chart x-axis needs every month.
type TrendPoint struct {
	PeriodLabel string  `json:"period_label"`
	Value       float64 `json:"value"`
	SampleCount int     `json:"sample_count,omitempty"`
}

// MetricFunc extracts one scalar from a record; ok=false excludes the
// record from the bucket's mean rather than counting it as zero.
type MetricFunc func(c *record.Conversation) (value float64, ok bool)

// SamplesFunc extracts zero or more sample values from a record, for
// measures with several observations per record (per-message word counts).
type SamplesFunc func(c *record.Conversation) []float64

// MonthlyTrend groups records by year-month and emits the mean of the
// extracted metric for every month between the first and last observed
// record, inclusive. Months with no qualifying records emit value 0.
func MonthlyTrend(convs []record.Conversation, extract MetricFunc) []TrendPoint {
	return MonthlyTrendSamples(convs, func(c *record.Conversation) []float64 {
		if v, ok := extract(c); ok {
			return []float64{v}
		}
		return nil
	})
}

// MonthlyTrendSamples is MonthlyTrend over multi-valued extraction: each
// sample counts individually toward its month's mean.
func MonthlyTrendSamples(convs []record.Conversation, extract SamplesFunc) []TrendPoint {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	var first, last string

	for i := range convs {
		c := &convs[i]
		month := c.Derived.Month
		if month == "" {
			continue
		}
		if first == "" || month < first {
			first = month
		}
		if month > last {
			last = month
		}
		for _, v := range extract(c) {
			sums[month] += v
			counts[month]++
		}
	}

	if first == "" {
		return []TrendPoint{}
	}

	months := MonthRange(first, last)
	points := make([]TrendPoint, 0, len(months))
	for _, m := range months {
		p := TrendPoint{PeriodLabel: m}
		if n := counts[m]; n > 0 {
			p.Value = output.Round1(sums[m] / float64(n))
			p.SampleCount = n
		}
		points = append(points, p)
	}
	return points
}

// MonthRange returns every YYYY-MM label from first to last inclusive.
func MonthRange(first, last string) []string {
	start, err := time.Parse("2006-01", first)
	if err != nil {
		return nil
	}
	end, err := time.Parse("2006-01", last)
	if err != nil {
		return nil
	}

	var months []string
	for t := start; !t.After(end); t = t.AddDate(0, 1, 0) {
		months = append(months, t.Format("2006-01"))
	}
	return months
}

// MonthlyActivity is one month's roll-up used by the activity timeline.
type MonthlyActivity struct {
	Month         string `json:"month"`
	Conversations int    `json:"conversations"`
	Tokens        int    `json:"tokens"`
	Messages      int    `json:"messages"`
	PeakHour      int    `json:"peak_hour"`
	PeakWeekday   string `json:"peak_weekday"`
}

// BuildMonthlyActivity rolls records up per month with the peak hour and
// weekday of each. Peak ties resolve to the earliest hour/day for
// reproducible output.
func BuildMonthlyActivity(convs []record.Conversation) []MonthlyActivity {
	type acc struct {
		conversations int
		tokens        int
		messages      int
		hourly        [24]int
		weekday       [7]int
	}

	byMonth := make(map[string]*acc)
	for i := range convs {
		c := &convs[i]
		if c.Derived.Month == "" {
			continue
		}
		a, ok := byMonth[c.Derived.Month]
		if !ok {
			a = &acc{}
			byMonth[c.Derived.Month] = a
		}
		a.conversations++
		a.tokens += c.Meta.TotalTokens
		a.messages += c.Meta.TotalMessages
		if h := c.Derived.Hour; h >= 0 && h <= 23 {
			a.hourly[h]++
		}
		if wd := c.Derived.Weekday; wd >= 0 && wd <= 6 {
			a.weekday[wd]++
		}
	}

	months := make([]string, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	sort.Strings(months)

	result := make([]MonthlyActivity, 0, len(months))
	for _, m := range months {
		a := byMonth[m]
		peakHour, peakDay := 12, 0
		maxH, maxD := 0, 0
		for h, n := range a.hourly {
			if n > maxH {
				maxH, peakHour = n, h
			}
		}
		for d, n := range a.weekday {
			if n > maxD {
				maxD, peakDay = n, d
			}
		}
		result = append(result, MonthlyActivity{
			Month:         m,
			Conversations: a.conversations,
			Tokens:        a.tokens,
			Messages:      a.messages,
			PeakHour:      peakHour,
			PeakWeekday:   WeekdayNames[peakDay],
		})
	}
	return result
}
