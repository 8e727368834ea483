package timeline

import (
	"fmt"
	"time"
)

// Marker is a tick on the time axis. Markers are advisory: they share the
// range and scale with event positions but are not otherwise coupled to them.
type Marker struct {
	X      float64   `json:"x" yaml:"x"`
	Label  string    `json:"label" yaml:"label"`
	IsMain bool      `json:"is_main" yaml:"is_main"`
	Time   time.Time `json:"time" yaml:"time"`
}

// ComputeMarkers produces the ordered axis ticks for a range under a scale.
//
//   - days: one marker per calendar day, start day to end day inclusive,
//     labelled "Jan 2"; the first of each month is a main marker.
//   - weeks: a marker every 7 days anchored on the Sunday on or before the
//     start, labelled "Week N"; only the first week is a main marker.
//   - months: one marker per calendar month, labelled "Jan 2024" and spaced
//     by the fixed DaysPerMonth approximation; January is a main marker.
func ComputeMarkers(r Range, s TimeScale, cfg LayoutConfig) []Marker {
	cfg = cfg.withDefaults()
	switch s.Unit {
	case UnitDays:
		return dayMarkers(r, s)
	case UnitWeeks:
		return weekMarkers(r, s)
	case UnitMonths:
		return monthMarkers(r, s, cfg)
	}
	return nil
}

func dayMarkers(r Range, s TimeScale) []Marker {
	var markers []Marker
	end := startOfDay(r.End)
	for i, d := 0, startOfDay(r.Start); !d.After(end); i, d = i+1, d.AddDate(0, 0, 1) {
		markers = append(markers, Marker{
			X:      float64(i) * s.PixelsPerUnit,
			Label:  d.Format("Jan 2"),
			IsMain: d.Day() == 1,
			Time:   d,
		})
	}
	return markers
}

func weekMarkers(r Range, s TimeScale) []Marker {
	var markers []Marker
	first := startOfDay(r.Start)
	first = first.AddDate(0, 0, -int(first.Weekday()))
	for i, w := 0, first; !w.After(r.End); i, w = i+1, w.AddDate(0, 0, 7) {
		markers = append(markers, Marker{
			X:      float64(i) * s.PixelsPerUnit * 7,
			Label:  fmt.Sprintf("Week %d", i+1),
			IsMain: i == 0,
			Time:   w,
		})
	}
	return markers
}

func monthMarkers(r Range, s TimeScale, cfg LayoutConfig) []Marker {
	var markers []Marker
	first := time.Date(r.Start.Year(), r.Start.Month(), 1, 0, 0, 0, 0, r.Start.Location())
	for i, m := 0, first; !m.After(r.End); i, m = i+1, m.AddDate(0, 1, 0) {
		markers = append(markers, Marker{
			X:      float64(i) * s.PixelsPerUnit * cfg.DaysPerMonth,
			Label:  m.Format("Jan 2006"),
			IsMain: m.Month() == time.January,
			Time:   m,
		})
	}
	return markers
}
