package snapshot

import (
	"sort"
	"strings"

	"cstats/internal/output"
	"cstats/internal/record"
	"cstats/internal/stats"
)

// Per-month entity list sizes of the monthly breakdown rows.
const (
	monthlyKeywords     = 10
	monthlyEntities     = 5
	monthlyTechnologies = 8
	monthlyConcepts     = 8
)

func pct(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return output.Round1(100 * float64(count) / float64(total))
}

// ranked folds raw occurrence pairs through the canonicalizer, ranks them,
// and fills corpus-relative percentages.
func ranked(pairs []stats.NameCount, k, total int) []stats.NameCount {
	top := stats.TopK(pairs, k)
	for i := range top {
		top[i].Percentage = pct(top[i].Count, total)
	}
	return top
}

func (a *Assembler) buildDomains(convs []record.Conversation) []Domain {
	var domainPairs []stats.NameCount
	subPairs := make(map[string][]stats.NameCount)

	for i := range convs {
		c := &convs[i]
		d := c.Domain()
		domainPairs = append(domainPairs, stats.NameCount{Name: d, Count: 1})
		subPairs[d] = append(subPairs[d], stats.NameCount{Name: c.SubDomain(), Count: 1})
	}

	top := stats.TopK(domainPairs, 0)
	domains := make([]Domain, 0, len(top))
	for _, d := range top {
		subs := stats.TopK(subPairs[d.Name], a.cfg.TopLists.Subdomains)
		for i := range subs {
			subs[i].Percentage = pct(subs[i].Count, d.Count)
		}
		domains = append(domains, Domain{
			Name:       d.Name,
			Count:      d.Count,
			Percentage: pct(d.Count, len(convs)),
			Subdomains: subs,
		})
	}
	return domains
}

func buildConversationTypes(convs []record.Conversation) []stats.NameCount {
	var pairs []stats.NameCount
	for i := range convs {
		pairs = append(pairs, stats.NameCount{Name: typeOf(&convs[i]), Count: 1})
	}
	return ranked(pairs, 0, len(convs))
}

func buildDomainTypeSynthesis(convs []record.Conversation) map[string]map[string]int {
	matrix := make(map[string][]stats.NameCount)
	for i := range convs {
		c := &convs[i]
		matrix[c.Domain()] = append(matrix[c.Domain()], stats.NameCount{Name: typeOf(c), Count: 1})
	}

	synthesis := make(map[string]map[string]int, len(matrix))
	for domain, pairs := range matrix {
		synthesis[domain] = toCountMap(stats.TopK(pairs, 5))
	}
	return synthesis
}

func buildRequestTypes(convs []record.Conversation) []RequestType {
	var pairs []stats.NameCount
	domainsByRequest := make(map[string][]stats.NameCount)

	for i := range convs {
		c := &convs[i]
		if c.LLMMeta == nil {
			continue
		}
		for _, rt := range c.LLMMeta.RequestTypes {
			pairs = append(pairs, stats.NameCount{Name: rt, Count: 1})
			domainsByRequest[rt] = append(domainsByRequest[rt], stats.NameCount{Name: c.Domain(), Count: 1})
		}
	}

	top := stats.TopK(pairs, 0)
	result := make([]RequestType, 0, len(top))
	for _, rt := range top {
		result = append(result, RequestType{
			Name:       rt.Name,
			Count:      rt.Count,
			Percentage: pct(rt.Count, len(convs)),
			TopDomains: toCountMap(stats.TopK(domainsByRequest[rt.Name], 3)),
		})
	}
	return result
}

func buildCombinations(convs []record.Conversation, k int) []Combination {
	var pairs []stats.NameCount
	for i := range convs {
		c := &convs[i]
		if c.LLMMeta == nil {
			continue
		}
		for _, rt := range c.LLMMeta.RequestTypes {
			combo := c.Domain() + "|" + typeOf(c) + "|" + rt
			pairs = append(pairs, stats.NameCount{Name: combo, Count: 1})
		}
	}

	top := stats.TopK(pairs, k)
	result := make([]Combination, 0, len(top))
	for _, combo := range top {
		parts := strings.SplitN(combo.Name, "|", 3)
		result = append(result, Combination{
			Combination: combo.Name,
			Domain:      parts[0],
			Type:        parts[1],
			Request:     parts[2],
			Count:       combo.Count,
		})
	}
	return result
}

func buildMonthlyBreakdown(convs []record.Conversation) []MonthlyBreakdown {
	type acc struct {
		conversations int
		messages      int
		words         int

		keywords, people, companies, products []stats.NameCount
		places, technologies, concepts        []stats.NameCount
	}

	byMonth := make(map[string]*acc)
	for i := range convs {
		c := &convs[i]
		if c.Derived.Month == "" {
			continue
		}
		m, ok := byMonth[c.Derived.Month]
		if !ok {
			m = &acc{}
			byMonth[c.Derived.Month] = m
		}
		m.conversations++
		m.messages += c.Meta.TotalMessages
		m.words += c.Meta.WordCount

		if c.LLMMeta == nil {
			continue
		}
		m.keywords = appendOnes(m.keywords, c.LLMMeta.Keywords)
		m.people = appendOnes(m.people, c.LLMMeta.EntitiesPeople)
		m.companies = appendOnes(m.companies, c.LLMMeta.EntitiesCompanies)
		m.products = appendOnes(m.products, c.LLMMeta.EntitiesProducts)
		m.places = appendOnes(m.places, c.LLMMeta.EntitiesPlaces)
		m.technologies = appendOnes(m.technologies, c.LLMMeta.Technologies)
		m.concepts = appendOnes(m.concepts, c.LLMMeta.Concepts)
	}

	months := make([]string, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	sort.Strings(months)

	result := make([]MonthlyBreakdown, 0, len(months))
	for _, month := range months {
		m := byMonth[month]
		result = append(result, MonthlyBreakdown{
			Month:           month,
			Conversations:   m.conversations,
			Messages:        m.messages,
			Words:           m.words,
			TopKeywords:     stats.TopK(m.keywords, monthlyKeywords),
			TopPeople:       stats.TopK(m.people, monthlyEntities),
			TopCompanies:    stats.TopK(m.companies, monthlyEntities),
			TopProducts:     stats.TopK(m.products, monthlyEntities),
			TopPlaces:       stats.TopK(m.places, monthlyEntities),
			TopTechnologies: stats.TopK(m.technologies, monthlyTechnologies),
			TopConcepts:     stats.TopK(m.concepts, monthlyConcepts),
		})
	}
	return result
}

func (a *Assembler) buildAllTimeTops(convs []record.Conversation) AllTimeTops {
	var keywords, people, companies, products []stats.NameCount
	var places, technologies, concepts []stats.NameCount

	for i := range convs {
		c := &convs[i]
		if c.LLMMeta == nil {
			continue
		}
		keywords = appendOnes(keywords, c.LLMMeta.Keywords)
		people = appendOnes(people, c.LLMMeta.EntitiesPeople)
		companies = appendOnes(companies, c.LLMMeta.EntitiesCompanies)
		products = appendOnes(products, c.LLMMeta.EntitiesProducts)
		places = appendOnes(places, c.LLMMeta.EntitiesPlaces)
		technologies = appendOnes(technologies, c.LLMMeta.Technologies)
		concepts = appendOnes(concepts, c.LLMMeta.Concepts)
	}

	limits := a.cfg.TopLists
	return AllTimeTops{
		Keywords:     stats.TopK(keywords, limits.Keywords),
		People:       stats.TopK(people, limits.People),
		Companies:    stats.TopK(companies, limits.Companies),
		Products:     stats.TopK(products, limits.Products),
		Places:       stats.TopK(places, limits.Places),
		Technologies: stats.TopK(technologies, limits.Technologies),
		Concepts:     stats.TopK(concepts, limits.Concepts),
	}
}

func buildGeographic(convs []record.Conversation, limit int) []GeoPlace {
	type acc struct {
		count   int
		months  map[string]bool
		domains []stats.NameCount
	}

	places := make(map[string]*acc)
	for i := range convs {
		c := &convs[i]
		if c.LLMMeta == nil {
			continue
		}
		for _, place := range c.LLMMeta.EntitiesPlaces {
			p, ok := places[place]
			if !ok {
				p = &acc{months: make(map[string]bool)}
				places[place] = p
			}
			p.count++
			if c.Derived.Month != "" {
				p.months[c.Derived.Month] = true
			}
			p.domains = append(p.domains, stats.NameCount{Name: c.Domain(), Count: 1})
		}
	}

	result := make([]GeoPlace, 0, len(places))
	for place, p := range places {
		months := make([]string, 0, len(p.months))
		for m := range p.months {
			months = append(months, m)
		}
		sort.Strings(months)

		first := ""
		if len(months) > 0 {
			first = months[0]
		}
		topDomain := ""
		if top := stats.TopK(p.domains, 1); len(top) > 0 {
			topDomain = top[0].Name
		}

		result = append(result, GeoPlace{
			Place:          place,
			Count:          p.count,
			Months:         months,
			FirstMentioned: first,
			TopDomain:      topDomain,
		})
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Place < result[j].Place
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result
}

func buildVolumeTops(convs []record.Conversation, k int) (byMessages, byWords []VolumeEntry) {
	entries := make([]VolumeEntry, 0, len(convs))
	for i := range convs {
		c := &convs[i]
		entry := VolumeEntry{
			ID:             c.ID,
			Title:          c.Title,
			Domain:         c.Domain(),
			SubDomain:      c.SubDomain(),
			Keywords:       clipKeywords(c, 5),
			Date:           c.Derived.Date,
			Messages:       c.Meta.TotalMessages,
			UserWords:      c.Derived.UserWordTotal,
			AssistantWords: c.Derived.AssistantWordTotal,
		}
		entry.TotalWords = entry.UserWords + entry.AssistantWords
		entries = append(entries, entry)
	}

	byMessages = topVolume(entries, k, func(e *VolumeEntry) int { return e.Messages })
	byWords = topVolume(entries, k, func(e *VolumeEntry) int { return e.TotalWords })
	return byMessages, byWords
}

func topVolume(entries []VolumeEntry, k int, metric func(e *VolumeEntry) int) []VolumeEntry {
	sorted := make([]VolumeEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		mi, mj := metric(&sorted[i]), metric(&sorted[j])
		if mi != mj {
			return mi > mj
		}
		return sorted[i].Date > sorted[j].Date
	})
	if len(sorted) > k {
		sorted = sorted[:k]
	}
	return sorted
}

func buildDynamics(convs []record.Conversation) ConversationDynamics {
	return ConversationDynamics{
		Flow: buildDimension(convs, flowOf),
		Mood: buildDimension(convs, moodOf),
		Tone: buildDimension(convs, toneOf),
	}
}

func buildDimension(convs []record.Conversation, facet func(c *record.Conversation) string) DynamicsDimension {
	var pairs []stats.NameCount
	monthly := make(map[string][]stats.NameCount)

	for i := range convs {
		c := &convs[i]
		v := facet(c)
		pairs = append(pairs, stats.NameCount{Name: v, Count: 1})
		if c.Derived.Month != "" {
			monthly[c.Derived.Month] = append(monthly[c.Derived.Month], stats.NameCount{Name: v, Count: 1})
		}
	}

	dim := DynamicsDimension{
		Overall: ranked(pairs, 0, len(convs)),
		Monthly: make(map[string]map[string]int, len(monthly)),
	}
	for month, mp := range monthly {
		dim.Monthly[month] = toCountMap(stats.TopK(mp, 5))
	}
	return dim
}

func buildOutcomes(convs []record.Conversation) Outcomes {
	var outcomes, directions []stats.NameCount
	for i := range convs {
		c := &convs[i]
		outcomes = append(outcomes, stats.NameCount{Name: outcomeOf(c), Count: 1})
		directions = append(directions, stats.NameCount{Name: directionOf(c), Count: 1})
	}
	return Outcomes{
		OutcomeType:          ranked(outcomes, 0, len(convs)),
		InformationDirection: ranked(directions, 0, len(convs)),
	}
}

func buildModels(convs []record.Conversation) []stats.NameCount {
	var pairs []stats.NameCount
	for i := range convs {
		pairs = append(pairs, stats.NameCount{Name: convs[i].Meta.PrimaryModel, Count: 1})
	}
	return ranked(pairs, 0, len(convs))
}

func buildModelTimeline(convs []record.Conversation) []ModelMonth {
	byMonth := make(map[string][]stats.NameCount)
	for i := range convs {
		c := &convs[i]
		if c.Derived.Month == "" {
			continue
		}
		byMonth[c.Derived.Month] = append(byMonth[c.Derived.Month], stats.NameCount{Name: c.Meta.PrimaryModel, Count: 1})
	}

	months := make([]string, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	sort.Strings(months)

	timeline := make([]ModelMonth, 0, len(months))
	for _, m := range months {
		timeline = append(timeline, ModelMonth{Month: m, Models: toCountMap(stats.TopK(byMonth[m], 0))})
	}
	return timeline
}

func appendOnes(pairs []stats.NameCount, names []string) []stats.NameCount {
	for _, n := range names {
		pairs = append(pairs, stats.NameCount{Name: n, Count: 1})
	}
	return pairs
}

func toCountMap(pairs []stats.NameCount) map[string]int {
	m := make(map[string]int, len(pairs))
	for _, p := range pairs {
		m[p.Name] = p.Count
	}
	return m
}

func clipKeywords(c *record.Conversation, n int) []string {
	if c.LLMMeta == nil {
		return []string{}
	}
	kw := c.LLMMeta.Keywords
	if len(kw) > n {
		kw = kw[:n]
	}
	return kw
}

func typeOf(c *record.Conversation) string {
	if c.LLMMeta == nil {
		return "unknown"
	}
	return c.LLMMeta.ConversationType
}

func flowOf(c *record.Conversation) string {
	if c.LLMMeta == nil {
		return "unknown"
	}
	return c.LLMMeta.ConversationFlow
}

func moodOf(c *record.Conversation) string {
	if c.LLMMeta == nil {
		return "neutral"
	}
	return c.LLMMeta.UserMood
}

func toneOf(c *record.Conversation) string {
	if c.LLMMeta == nil {
		return "casual"
	}
	return c.LLMMeta.ConversationTone
}

func outcomeOf(c *record.Conversation) string {
	if c.LLMMeta == nil {
		return "unknown"
	}
	return c.LLMMeta.OutcomeType
}

func directionOf(c *record.Conversation) string {
	if c.LLMMeta == nil {
		return "user_learning"
	}
	return c.LLMMeta.InformationDirection
}
