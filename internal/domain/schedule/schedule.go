// Package schedule holds the pure clock and time-slot arithmetic used by the
// booking core. A slot is an opaque token of the form "HH:MM-HH:MM"; no interval
// overlap math is performed anywhere, a slot either matches verbatim or it does not.
package schedule

import (
	"strconv"
	"strings"
	"time"

	"github.com/campus-sports/service-booking/internal/domain"
)

// DateLayout is the canonical calendar-day format used across the service.
const DateLayout = "2006-01-02"

// ParseClock parses an "HH:MM" token into minutes since midnight.
func ParseClock(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, domain.NewValidationError("malformed clock token: " + s)
	}
	h, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, domain.NewValidationError("malformed clock token: " + s)
	}
	m, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, domain.NewValidationError("malformed clock token: " + s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, domain.NewValidationError("clock token out of range: " + s)
	}
	return h*60 + m, nil
}

// slotBounds splits a "HH:MM-HH:MM" slot token into start and end minutes.
func slotBounds(slot string) (start, end int, ok bool) {
	parts := strings.SplitN(slot, "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	s, err := ParseClock(parts[0])
	if err != nil {
		return 0, 0, false
	}
	e, err := ParseClock(parts[1])
	if err != nil {
		return 0, 0, false
	}
	return s, e, true
}

// EarliestStartMinutes returns the minimum start time (minutes since midnight)
// across the given slot tokens. Unparseable tokens are skipped; if nothing
// parses, ok is false.
func EarliestStartMinutes(slots []string) (minutes int, ok bool) {
	minStart := -1
	for _, slot := range slots {
		s, _, valid := slotBounds(slot)
		if !valid {
			continue
		}
		if minStart < 0 || s < minStart {
			minStart = s
		}
	}
	if minStart < 0 {
		return 0, false
	}
	return minStart, true
}

// LatestEndMinutes returns the maximum end time across the given slot tokens.
func LatestEndMinutes(slots []string) (minutes int, ok bool) {
	maxEnd := -1
	for _, slot := range slots {
		_, e, valid := slotBounds(slot)
		if !valid {
			continue
		}
		if e > maxEnd {
			maxEnd = e
		}
	}
	if maxEnd < 0 {
		return 0, false
	}
	return maxEnd, true
}

// NormalizeDate reduces a date-like string to a canonical YYYY-MM-DD day.
// It accepts plain dates and ISO timestamps; timestamps are converted to UTC
// before the calendar day is taken.
func NormalizeDate(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", domain.NewValidationError("date is required")
	}
	if !strings.Contains(raw, "T") {
		if _, err := time.Parse(DateLayout, raw); err != nil {
			return "", domain.NewValidationError("malformed date: " + raw)
		}
		return raw, nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC().Format(DateLayout), nil
		}
	}
	return "", domain.NewValidationError("malformed date: " + raw)
}

// FormatDate reduces an instant to its UTC calendar day.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// MinutesOfDay returns the wall-clock minutes since midnight (UTC) of an instant.
func MinutesOfDay(t time.Time) int {
	u := t.UTC()
	return u.Hour()*60 + u.Minute()
}

// OperationalDate computes the business day an instant belongs to. Quota resets
// happen at boundaryHour:00 rather than midnight, so anything earlier than the
// boundary still counts against yesterday's quota.
func OperationalDate(now time.Time, boundaryHour int) string {
	u := now.UTC()
	boundary := time.Date(u.Year(), u.Month(), u.Day(), boundaryHour, 0, 0, 0, time.UTC)
	if u.Before(boundary) {
		u = u.AddDate(0, 0, -1)
	}
	return u.Format(DateLayout)
}

// NextResetBoundary returns the next instant at which the operational day rolls over.
func NextResetBoundary(now time.Time, boundaryHour int) time.Time {
	u := now.UTC()
	boundary := time.Date(u.Year(), u.Month(), u.Day(), boundaryHour, 0, 0, 0, time.UTC)
	if u.Before(boundary) {
		return boundary
	}
	return boundary.AddDate(0, 0, 1)
}
