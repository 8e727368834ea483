package timeline

import "time"

// Range is the visible time window of the timeline. Start is never after End.
type Range struct {
	Start time.Time `json:"start" yaml:"start"`
	End   time.Time `json:"end" yaml:"end"`
}

// Days returns the number of whole days the range spans.
func (r Range) Days() int {
	return daysBetween(r.Start, r.End)
}

// ResolveRange computes the visible window from the timed events. When no
// event carries a story time it falls back to the calendar month containing
// now, so the result is always usable. The function is pure: identical
// inputs give identical output.
func ResolveRange(events []Event, now time.Time) Range {
	var (
		r     Range
		found bool
	)
	for _, e := range events {
		if !e.Timed() {
			continue
		}
		t := *e.StoryTime
		if !found {
			r = Range{Start: t, End: t}
			found = true
			continue
		}
		if t.Before(r.Start) {
			r.Start = t
		}
		if t.After(r.End) {
			r.End = t
		}
	}
	if !found {
		return monthOf(now)
	}
	return r
}

// monthOf returns the first and last instant of the calendar month of t.
func monthOf(t time.Time) Range {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return Range{Start: start, End: end}
}

// startOfDay truncates t to midnight in its own location.
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

const secondsPerDay = 24 * 60 * 60

// daysBetween counts whole elapsed days from -> to, truncated toward zero.
// It works on Unix seconds: time.Time.Sub saturates past ~292 years.
func daysBetween(from, to time.Time) int {
	secs := to.Unix() - from.Unix()
	nanos := to.Nanosecond() - from.Nanosecond()
	switch {
	case secs > 0 && nanos < 0:
		secs--
	case secs < 0 && nanos > 0:
		secs++
	}
	return int(secs / secondsPerDay)
}
