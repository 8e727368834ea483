package timeline

import "sort"

// SelectionSet holds the selected event ids. It changes only through explicit
// calls; recomputing a layout never touches it. The zero value is an empty
// selection ready to use.
type SelectionSet struct {
	ids map[string]struct{}
}

// NewSelectionSet returns an empty selection.
func NewSelectionSet() *SelectionSet {
	return &SelectionSet{ids: make(map[string]struct{})}
}

// Select applies a selection gesture. A plain select makes id the only
// selected event; a multi-select toggles id while keeping the rest.
func (s *SelectionSet) Select(id string, multi bool) {
	if !multi {
		s.ids = map[string]struct{}{id: {}}
		return
	}
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		return
	}
	if s.ids == nil {
		s.ids = make(map[string]struct{})
	}
	s.ids[id] = struct{}{}
}

// Remove deselects id.
func (s *SelectionSet) Remove(id string) {
	delete(s.ids, id)
}

// Clear empties the selection.
func (s *SelectionSet) Clear() {
	s.ids = nil
}

// Contains reports whether id is selected.
func (s *SelectionSet) Contains(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of selected events.
func (s *SelectionSet) Len() int {
	return len(s.ids)
}

// IDs returns the selected ids in sorted order.
func (s *SelectionSet) IDs() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
