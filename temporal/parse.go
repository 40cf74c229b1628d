package temporal

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Range is a half-open-looking but inclusive time interval: events at the
// exact End timestamp still match.
type Range struct {
	Start time.Time
	End   time.Time

	// Phrase is the normalized phrase the range was parsed from, or
	// "default" when no phrase matched.
	Phrase string
}

var (
	lastNDaysRe  = regexp.MustCompile(`(?:last|past)\s+(\d+)\s+days?`)
	lastNWeeksRe = regexp.MustCompile(`(?:last|past)\s+(\d+)\s+weeks?`)
	nDaysAgoRe   = regexp.MustCompile(`(\d+)\s+days?\s+ago`)
	nHoursAgoRe  = regexp.MustCompile(`(\d+)\s+hours?\s+ago`)
)

// ParsePhrase resolves a natural-language time phrase against now.
// Day-based phrases use calendar-day boundaries in now's location, not
// fixed 24-hour multiples: "yesterday" at 9am covers the whole previous
// day. Phrases with no recognized time expression default to the trailing
// 24 hours.
func ParsePhrase(text string, now time.Time) Range {
	phrase := strings.ToLower(strings.TrimSpace(text))
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	endOfPrevDay := startOfDay.Add(-time.Second)

	switch {
	case strings.Contains(phrase, "this morning"):
		return Range{Start: startOfDay, End: now, Phrase: "this morning"}
	case strings.Contains(phrase, "this afternoon"):
		return Range{Start: clampStart(startOfDay.Add(12*time.Hour), now), End: now, Phrase: "this afternoon"}
	case strings.Contains(phrase, "this evening"), strings.Contains(phrase, "tonight"):
		return Range{Start: clampStart(startOfDay.Add(17*time.Hour), now), End: now, Phrase: "this evening"}
	case strings.Contains(phrase, "today"):
		return Range{Start: startOfDay, End: now, Phrase: "today"}
	case strings.Contains(phrase, "yesterday"):
		return Range{Start: startOfDay.AddDate(0, 0, -1), End: endOfPrevDay, Phrase: "yesterday"}
	case strings.Contains(phrase, "this week"):
		return Range{Start: startOfWeek(startOfDay), End: now, Phrase: "this week"}
	case strings.Contains(phrase, "last week"):
		thisWeek := startOfWeek(startOfDay)
		return Range{Start: thisWeek.AddDate(0, 0, -7), End: thisWeek.Add(-time.Second), Phrase: "last week"}
	case strings.Contains(phrase, "this month"):
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return Range{Start: monthStart, End: now, Phrase: "this month"}
	case strings.Contains(phrase, "last month"):
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return Range{Start: monthStart.AddDate(0, -1, 0), End: monthStart.Add(-time.Second), Phrase: "last month"}
	}

	if m := lastNDaysRe.FindStringSubmatch(phrase); m != nil {
		n, _ := strconv.Atoi(m[1])
		// "last 3 days" includes today: today plus the 2 days before it
		return Range{Start: startOfDay.AddDate(0, 0, -(n - 1)), End: now, Phrase: "last " + m[1] + " days"}
	}
	if m := lastNWeeksRe.FindStringSubmatch(phrase); m != nil {
		n, _ := strconv.Atoi(m[1])
		return Range{Start: startOfDay.AddDate(0, 0, -7*n), End: now, Phrase: "last " + m[1] + " weeks"}
	}
	if m := nDaysAgoRe.FindStringSubmatch(phrase); m != nil {
		n, _ := strconv.Atoi(m[1])
		day := startOfDay.AddDate(0, 0, -n)
		return Range{Start: day, End: day.AddDate(0, 0, 1).Add(-time.Second), Phrase: m[1] + " days ago"}
	}
	if m := nHoursAgoRe.FindStringSubmatch(phrase); m != nil {
		n, _ := strconv.Atoi(m[1])
		return Range{Start: now.Add(-time.Duration(n) * time.Hour), End: now, Phrase: m[1] + " hours ago"}
	}

	// Default: the trailing 24 hours
	return Range{Start: now.Add(-24 * time.Hour), End: now, Phrase: "default"}
}

// clampStart keeps day-part ranges valid before the part begins: asking
// for "this afternoon" in the morning yields an empty window, never an
// inverted one.
func clampStart(start, now time.Time) time.Time {
	if start.After(now) {
		return now
	}
	return start
}

// startOfWeek returns the Monday 00:00 of the week containing day.
func startOfWeek(day time.Time) time.Time {
	weekday := int(day.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday belongs to the preceding Monday's week
	}
	return day.AddDate(0, 0, -(weekday - 1))
}
