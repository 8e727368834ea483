package timeline

import (
	"math"
	"sort"
)

// Placement is the computed geometry of one event inside its group.
type Placement struct {
	Event  Event   `json:"event" yaml:"event"`
	X      float64 `json:"x" yaml:"x"`
	Row    float64 `json:"row" yaml:"row"` // vertical offset within the group
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// EventGroup is a set of events close enough on the axis to be stacked
// vertically. Position is the anchor: the position of the first member. It
// never shifts as members are added.
type EventGroup struct {
	Position   float64     `json:"position" yaml:"position"`
	Events     []Event     `json:"-" yaml:"-"`
	Placements []Placement `json:"placements" yaml:"placements"`
}

// SortByStoryTime returns a copy of events in ascending story time. Untimed
// events sort first; ties keep their input order.
func SortByStoryTime(events []Event) []Event {
	sorted := make([]Event, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].StoryTime, sorted[j].StoryTime
		if a == nil {
			return b != nil
		}
		if b == nil {
			return false
		}
		return a.Before(*b)
	})
	return sorted
}

// ClusterEvents lays events out in a single greedy pass over story-time
// order. An event joins the first group whose anchor is closer than
// cfg.ClusterTolerance; otherwise it opens a new group anchored at its own
// position. Each member is stacked cfg.RowHeight below the previous one.
//
// This is a placement heuristic, not an optimal packing. Grouping is only
// deterministic for a deterministic input order among equal story times.
func ClusterEvents(events []Event, r Range, s TimeScale, cfg LayoutConfig) []EventGroup {
	cfg = cfg.withDefaults()
	var groups []EventGroup
	for _, e := range SortByStoryTime(events) {
		pos := ComputePosition(e, r, s)
		idx := -1
		for i := range groups {
			if math.Abs(groups[i].Position-pos) < cfg.ClusterTolerance {
				idx = i
				break
			}
		}
		if idx < 0 {
			groups = append(groups, EventGroup{Position: pos})
			idx = len(groups) - 1
		}
		g := &groups[idx]
		size := Footprint(e, s, cfg)
		g.Placements = append(g.Placements, Placement{
			Event:  e,
			X:      pos,
			Row:    float64(len(g.Events)) * cfg.RowHeight,
			Width:  size.Width,
			Height: size.Height,
		})
		g.Events = append(g.Events, e)
	}
	return groups
}
