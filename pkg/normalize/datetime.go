package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/width"
)

// Date layouts tried verbatim after separator cleanup. Platform exports mix
// ISO, dotted, compact, and English month-name forms.
var namedDateLayouts = []string{
	"Jan 2, 2006",
	"January 2, 2006",
	"Jan 2 2006",
	"2 Jan 2006",
	"2 January 2006",
	"2006 Jan 2",
}

var (
	koreanDateRe = regexp.MustCompile(`^(\d{4})년\s*(\d{1,2})월\s*(\d{1,2})일$`)
	ymdRe        = regexp.MustCompile(`^(\d{4})[./-](\d{1,2})[./-](\d{1,2})$`)
	compactRe    = regexp.MustCompile(`^(\d{4})(\d{2})(\d{2})$`)
	slashedRe    = regexp.MustCompile(`^(\d{1,2})[./-](\d{1,2})[./-](\d{4})$`)
)

// normalizeDate coerces a raw date guess to a strict YYYY-MM-DD calendar
// date. A representation whose day/month order cannot be resolved to exactly
// one valid reading yields nil rather than a guess.
func normalizeDate(v any) *string {
	raw, ok := stringValue(v)
	if !ok {
		return nil
	}
	s := strings.TrimSpace(width.Fold.String(raw))
	if s == "" {
		return nil
	}

	if m := koreanDateRe.FindStringSubmatch(s); m != nil {
		return calendarDate(atoi(m[1]), atoi(m[2]), atoi(m[3]))
	}
	if m := ymdRe.FindStringSubmatch(s); m != nil {
		return calendarDate(atoi(m[1]), atoi(m[2]), atoi(m[3]))
	}
	if m := compactRe.FindStringSubmatch(s); m != nil {
		return calendarDate(atoi(m[1]), atoi(m[2]), atoi(m[3]))
	}
	if m := slashedRe.FindStringSubmatch(s); m != nil {
		return resolveSlashedDate(atoi(m[1]), atoi(m[2]), atoi(m[3]))
	}

	for _, layout := range namedDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			formatted := t.Format("2006-01-02")
			return &formatted
		}
	}

	return nil
}

// resolveSlashedDate handles a/b/YYYY, where a and b could be month/day in
// either order. The form resolves only when exactly one reading is a valid
// calendar date; both-valid is ambiguous and yields nil. a/a/YYYY reads the
// same either way and is accepted.
func resolveSlashedDate(a, b, year int) *string {
	asMonthDay := calendarDate(year, a, b)
	asDayMonth := calendarDate(year, b, a)

	switch {
	case asMonthDay != nil && asDayMonth == nil:
		return asMonthDay
	case asMonthDay == nil && asDayMonth != nil:
		return asDayMonth
	case asMonthDay != nil && asDayMonth != nil && a == b:
		return asMonthDay
	default:
		return nil
	}
}

// calendarDate validates year/month/day as a real calendar date and formats
// it, or returns nil. time.Date normalizes overflow (month 13 becomes
// January), so the round trip check catches invalid components.
func calendarDate(year, month, day int) *string {
	if year < 1 || month < 1 || month > 12 || day < 1 || day > 31 {
		return nil
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != time.Month(month) || t.Day() != day {
		return nil
	}
	formatted := t.Format("2006-01-02")
	return &formatted
}

var (
	clockRe      = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)
	compactClock = regexp.MustCompile(`^(\d{2})(\d{2})$`)
	meridiemRe   = regexp.MustCompile(`^(\d{1,2})(?::(\d{2}))?\s*(am|pm)$`)
	koreanTimeRe = regexp.MustCompile(`^(오전|오후)?\s*(\d{1,2})시(?:\s*(\d{1,2})분)?$`)
)

// normalizeTime coerces a raw time guess to strict HH:MM. An out-of-range
// hour or minute yields nil.
func normalizeTime(v any) *string {
	raw, ok := stringValue(v)
	if !ok {
		return nil
	}
	s := strings.ToLower(strings.TrimSpace(width.Fold.String(raw)))
	if s == "" {
		return nil
	}

	if m := clockRe.FindStringSubmatch(s); m != nil {
		return clockTime(atoi(m[1]), atoi(m[2]))
	}
	if m := compactClock.FindStringSubmatch(s); m != nil {
		return clockTime(atoi(m[1]), atoi(m[2]))
	}
	if m := meridiemRe.FindStringSubmatch(s); m != nil {
		hour := atoi(m[1])
		minute := 0
		if m[2] != "" {
			minute = atoi(m[2])
		}
		return clockTime(meridiemHour(hour, m[3] == "pm"), minute)
	}
	if m := koreanTimeRe.FindStringSubmatch(s); m != nil {
		hour := atoi(m[2])
		minute := 0
		if m[3] != "" {
			minute = atoi(m[3])
		}
		if m[1] == "오후" { // PM
			hour = meridiemHour(hour, true)
		} else if m[1] == "오전" { // AM
			hour = meridiemHour(hour, false)
		}
		return clockTime(hour, minute)
	}

	return nil
}

// meridiemHour converts a 12-hour reading to 24-hour. Hours already past 12
// pass through so "15시" and "오후 3시" both land on 15.
func meridiemHour(hour int, pm bool) int {
	if hour > 12 {
		return hour
	}
	if pm {
		if hour == 12 {
			return 12
		}
		return hour + 12
	}
	if hour == 12 {
		return 0
	}
	return hour
}

func clockTime(hour, minute int) *string {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return nil
	}
	formatted := fmt.Sprintf("%02d:%02d", hour, minute)
	return &formatted
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
