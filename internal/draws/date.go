package draws

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const isoDate = "2006-01-02"

var (
	ErrBadDate      = errors.New("unparsable draw date")
	ErrWrongWeekday = errors.New("draw date not on target weekday")
)

var monthAbbr = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// ParseCompactDate parses the feed's "16-Aug-2025" form as a UTC calendar date.
func ParseCompactDate(s string) (time.Time, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrBadDate, s)
	}
	ds := strings.TrimSpace(parts[0])
	day, err := strconv.Atoi(ds)
	if err != nil || !digits(ds) || len(ds) > 2 {
		return time.Time{}, fmt.Errorf("%w: day in %q", ErrBadDate, s)
	}
	mon, ok := monthAbbr[strings.ToLower(strings.TrimSpace(parts[1]))]
	if !ok {
		return time.Time{}, fmt.Errorf("%w: month in %q", ErrBadDate, s)
	}
	ys := strings.TrimSpace(parts[2])
	year, err := strconv.Atoi(ys)
	if err != nil || !digits(ys) || len(ys) != 4 {
		return time.Time{}, fmt.Errorf("%w: year in %q", ErrBadDate, s)
	}
	return civilDate(year, mon, day)
}

// ParseISODate parses "2025-08-16" or an RFC 3339 timestamp. Timestamps are
// moved to UTC before the date part is taken.
func ParseISODate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(isoDate, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrBadDate, s)
	}
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// ParseDate accepts either the ISO or the compact form.
func ParseDate(s string) (time.Time, error) {
	if t, err := ParseISODate(s); err == nil {
		return t, nil
	}
	return ParseCompactDate(s)
}

// FormatDate renders t as YYYY-MM-DD in UTC.
func FormatDate(t time.Time) string {
	return t.UTC().Format(isoDate)
}

// CheckWeekday reports ErrWrongWeekday unless t falls on target (UTC).
func CheckWeekday(t time.Time, target time.Weekday) error {
	if wd := t.UTC().Weekday(); wd != target {
		return fmt.Errorf("%w: %s is a %s, want %s", ErrWrongWeekday, FormatDate(t), wd, target)
	}
	return nil
}

// digits reports whether s is non-empty and only ASCII 0-9. strconv.Atoi
// alone lets signs through.
func digits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// civilDate rejects dates time.Date would silently roll over (31-Feb).
func civilDate(year int, mon time.Month, day int) (time.Time, error) {
	if day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("%w: day %d", ErrBadDate, day)
	}
	t := time.Date(year, mon, day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || t.Month() != mon {
		return time.Time{}, fmt.Errorf("%w: %d-%s-%d does not exist", ErrBadDate, day, mon, year)
	}
	return t, nil
}
