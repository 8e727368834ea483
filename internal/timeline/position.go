package timeline

import "math"

// ComputePosition maps an event's story time to a pixel offset from the
// range start: whole days elapsed times pixels per unit.
//
// Events without a story time collapse to 0 and therefore overlap whatever
// sits at the range start regardless of narrative order. Callers that cannot
// accept that should filter untimed events out before layout.
func ComputePosition(e Event, r Range, s TimeScale) float64 {
	if !e.Timed() {
		return 0
	}
	return float64(daysBetween(r.Start, *e.StoryTime)) * s.PixelsPerUnit
}

// TrackWidth is the pixel width of a track for the range, never narrower
// than cfg.MinTrackWidth.
func TrackWidth(r Range, s TimeScale, cfg LayoutConfig) float64 {
	cfg = cfg.withDefaults()
	return math.Max(float64(r.Days())*s.PixelsPerUnit, cfg.MinTrackWidth)
}

// Footprint returns the drawn size of an event. An event with a duration is
// as wide as the minutes it spans (at least cfg.MinDurationWidth); otherwise
// both dimensions come from its importance.
func Footprint(e Event, s TimeScale, cfg LayoutConfig) Size {
	cfg = cfg.withDefaults()
	size := importanceSize(e.Importance, cfg.Sizes)
	if e.Duration != nil {
		size.Width = math.Max(*e.Duration*s.PixelsPerUnit/60, cfg.MinDurationWidth)
	}
	return size
}

func importanceSize(i Importance, sizes ImportanceSizes) Size {
	switch i.normalized() {
	case ImportanceCritical:
		return sizes.Critical
	case ImportanceMajor:
		return sizes.Major
	case ImportanceMinor:
		return sizes.Minor
	default:
		return sizes.Normal
	}
}
