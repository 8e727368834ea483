package timeline

// ConnectionSegment links the placements of two connected events.
type ConnectionSegment struct {
	FromID  string  `json:"from_id" yaml:"from_id"`
	ToID    string  `json:"to_id" yaml:"to_id"`
	Label   string  `json:"label,omitempty" yaml:"label,omitempty"`
	FromX   float64 `json:"from_x" yaml:"from_x"`
	FromRow float64 `json:"from_row" yaml:"from_row"`
	ToX     float64 `json:"to_x" yaml:"to_x"`
	ToRow   float64 `json:"to_row" yaml:"to_row"`
}

// RouteConnections resolves every event's connections against a computed
// layout. Targets that are not laid out and self references are dropped.
// Segments follow group order, then placement order, then connection order.
func RouteConnections(groups []EventGroup) []ConnectionSegment {
	index := make(map[string]Placement)
	for _, g := range groups {
		for _, p := range g.Placements {
			if _, dup := index[p.Event.ID]; !dup {
				index[p.Event.ID] = p
			}
		}
	}

	var segments []ConnectionSegment
	for _, g := range groups {
		for _, from := range g.Placements {
			for _, c := range from.Event.Connections {
				if c.TargetID == from.Event.ID {
					continue
				}
				to, ok := index[c.TargetID]
				if !ok {
					continue
				}
				segments = append(segments, ConnectionSegment{
					FromID:  from.Event.ID,
					ToID:    to.Event.ID,
					Label:   c.TargetLabel,
					FromX:   from.X,
					FromRow: from.Row,
					ToX:     to.X,
					ToRow:   to.Row,
				})
			}
		}
	}
	return segments
}
