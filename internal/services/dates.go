package services

import (
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// parseDate accepts YYYY-MM-DD (local midnight) or RFC3339.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation(dateLayout, s, time.Local); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, ErrInvalidDate
}

// parseOptionalDate returns nil for an empty string.
func parseOptionalDate(s *string) (*time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	t, err := parseDate(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// startOfDay returns local midnight of the local calendar day containing t.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.In(time.Local).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

// endOfDay returns 23:59:59.999 local time of the local calendar day
// containing t, whatever offset t was given in.
func endOfDay(t time.Time) time.Time {
	y, m, d := t.In(time.Local).Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), time.Local)
}

func startOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

func endOfMonth(t time.Time) time.Time {
	return endOfDay(startOfMonth(t).AddDate(0, 1, -1))
}

// dateRange resolves optional start/end strings. A missing start defaults to
// defaultDays before now; a missing end to now. End is always moved to the
// end of its day.
func dateRange(start, end *string, now time.Time, defaultDays int) (time.Time, time.Time, error) {
	e := now
	if end != nil && strings.TrimSpace(*end) != "" {
		t, err := parseDate(*end)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		e = t
	}
	s := now.AddDate(0, 0, -defaultDays)
	if start != nil && strings.TrimSpace(*start) != "" {
		t, err := parseDate(*start)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		s = t
	}
	e = endOfDay(e)
	if s.After(e) {
		return time.Time{}, time.Time{}, ErrInvalidDateRange
	}
	return s, e, nil
}

// OptionalRange parses list filter bounds. Either bound may be missing; a
// present end is moved to the end of its day.
func OptionalRange(start, end *string) (*time.Time, *time.Time, error) {
	s, err := parseOptionalDate(start)
	if err != nil {
		return nil, nil, err
	}
	e, err := parseOptionalDate(end)
	if err != nil {
		return nil, nil, err
	}
	if e != nil {
		eod := endOfDay(*e)
		e = &eod
	}
	if s != nil && e != nil && s.After(*e) {
		return nil, nil, ErrInvalidDateRange
	}
	return s, e, nil
}
