package finance

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseMonth accepts an English month name ("March", "mar") or its number ("3").
func ParseMonth(s string) (time.Month, error) {
	s = strings.TrimSpace(s)
	for m := time.January; m <= time.December; m++ {
		name := m.String()
		if strings.EqualFold(s, name) || (len(s) == 3 && strings.EqualFold(s, name[:3])) {
			return m, nil
		}
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 1 && n <= 12 {
		return time.Month(n), nil
	}
	return 0, fmt.Errorf("invalid month %q", s)
}

// MonthRange returns the half-open interval [first of month, first of next month) in loc.
func MonthRange(year int, month time.Month, loc *time.Location) (time.Time, time.Time) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	return from, from.AddDate(0, 1, 0)
}

// CurrentMonth returns the month range containing now.
func CurrentMonth(now time.Time) (time.Time, time.Time) {
	return MonthRange(now.Year(), now.Month(), now.Location())
}

// PreviousMonth returns the month range before the one containing now.
func PreviousMonth(now time.Time) (time.Time, time.Time) {
	from, _ := CurrentMonth(now)
	return from.AddDate(0, -1, 0), from
}
