package timeline

import (
	"log/slog"
	"sync"
	"time"
)

// EditHandler receives the explicit edit gesture on an event.
type EditHandler func(Event)

// SelectHandler is notified of every selection gesture.
type SelectHandler func(eventID string, multiSelect bool)

// Options wires an Engine to its collaborators. Every field is optional.
type Options struct {
	Layout    LayoutConfig
	Scenes    SceneLookup
	Reorderer SceneReorderer
	OnEdit    EditHandler
	OnSelect  SelectHandler
	Now       func() time.Time
	Logger    *slog.Logger
}

// Layout is the full geometry of one render.
type Layout struct {
	Range       Range               `json:"range" yaml:"range"`
	Scale       TimeScale           `json:"scale" yaml:"scale"`
	Width       float64             `json:"width" yaml:"width"`
	Markers     []Marker            `json:"markers" yaml:"markers"`
	Groups      []EventGroup        `json:"groups" yaml:"groups"`
	Connections []ConnectionSegment `json:"connections" yaml:"connections"`
}

// Engine owns the inputs of the timeline (event list and scale) together with
// the only cross-call state: the selection and the pending relocation
// gesture. Layout is recomputed from scratch on every call; the range is
// always resolved before any position is computed.
//
// Engine is safe for concurrent use. Collaborator callbacks run after the
// internal lock is released.
type Engine struct {
	mu        sync.Mutex
	opts      Options
	scale     TimeScale
	events    []Event
	index     map[string]int
	selection *SelectionSet
	relocator *Relocator
}

// NewEngine returns an engine with no events.
func NewEngine(scale TimeScale, opts Options) (*Engine, error) {
	opts.Layout = opts.Layout.withDefaults()
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	e := &Engine{
		opts:      opts,
		scale:     scale,
		index:     make(map[string]int),
		selection: NewSelectionSet(),
	}
	// The relocator resolves events without locking: it is only ever driven
	// while e.mu is held. Its reorderer is notified after e.mu is released.
	r, err := NewRelocator(scale, EventLookupFunc(e.eventLocked), opts.Reorderer)
	if err != nil {
		return nil, err
	}
	e.relocator = r
	return e, nil
}

// SetEvents replaces the event list. Selection and any pending gesture survive.
func (e *Engine) SetEvents(events []Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = make([]Event, len(events))
	copy(e.events, events)
	e.index = make(map[string]int, len(events))
	for i, ev := range e.events {
		if _, dup := e.index[ev.ID]; !dup {
			e.index[ev.ID] = i
		}
	}
	e.opts.Logger.Debug("timeline events replaced", "events", len(events))
}

// Events returns a copy of the current event list.
func (e *Engine) Events() []Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Event, len(e.events))
	copy(out, e.events)
	return out
}

// Event looks up an event by id.
func (e *Engine) Event(id string) (Event, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.eventLocked(id)
}

func (e *Engine) eventLocked(id string) (Event, bool) {
	i, ok := e.index[id]
	if !ok {
		return Event{}, false
	}
	return e.events[i], true
}

// SetScale switches the time scale. An invalid scale is rejected and the
// previous one kept.
func (e *Engine) SetScale(s TimeScale) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.relocator.SetScale(s); err != nil {
		return err
	}
	e.scale = s
	return nil
}

// Scale returns the current time scale.
func (e *Engine) Scale() TimeScale {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scale
}

// Range resolves the visible window of the current events.
func (e *Engine) Range() Range {
	e.mu.Lock()
	defer e.mu.Unlock()
	return ResolveRange(e.events, e.opts.Now())
}

// Position maps one event under the current range and scale.
func (e *Engine) Position(ev Event) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return ComputePosition(ev, ResolveRange(e.events, e.opts.Now()), e.scale)
}

// Layout computes the complete geometry of the current events.
func (e *Engine) Layout() Layout {
	e.mu.Lock()
	defer e.mu.Unlock()
	r := ResolveRange(e.events, e.opts.Now())
	groups := ClusterEvents(e.events, r, e.scale, e.opts.Layout)
	l := Layout{
		Range:       r,
		Scale:       e.scale,
		Width:       TrackWidth(r, e.scale, e.opts.Layout),
		Markers:     ComputeMarkers(r, e.scale, e.opts.Layout),
		Groups:      groups,
		Connections: RouteConnections(groups),
	}
	e.opts.Logger.Debug("timeline layout computed",
		"start", r.Start, "end", r.End, "width", l.Width,
		"markers", len(l.Markers), "groups", len(l.Groups))
	return l
}

// AnalyzeCharacterArc derives the arc of a character from the current events
// featuring it, positioned on the main timeline's range.
func (e *Engine) AnalyzeCharacterArc(characterID string) []ArcPoint {
	e.mu.Lock()
	defer e.mu.Unlock()
	r := ResolveRange(e.events, e.opts.Now())
	events := EventsForCharacter(characterID, e.events, e.opts.Scenes)
	return AnalyzeCharacterArc(characterID, events, e.opts.Scenes, r, e.scale)
}

// BeginRelocation picks up an event. A gesture already pending is cancelled.
func (e *Engine) BeginRelocation(eventID string, from Track) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.relocator.Begin(eventID, from)
}

// CompleteRelocation drops the pending gesture on targetTrack. A valid drop
// calls the reorderer exactly once; an invalid drop does nothing.
func (e *Engine) CompleteRelocation(dropX, trackOriginX float64, targetTrack Track) DropResult {
	e.mu.Lock()
	res := e.relocator.resolve(dropX, trackOriginX, targetTrack)
	e.mu.Unlock()

	e.relocator.notify(res)
	return res
}

// CancelRelocation drops the pending gesture outside every track.
func (e *Engine) CancelRelocation() DropResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.relocator.DropOutside()
}

// RelocationState returns idle or picked-up.
func (e *Engine) RelocationState() RelocationState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.relocator.State()
}

// SelectEvent applies a selection gesture and notifies the select handler.
func (e *Engine) SelectEvent(eventID string, multiSelect bool) {
	e.mu.Lock()
	e.selection.Select(eventID, multiSelect)
	notify := e.opts.OnSelect
	e.mu.Unlock()

	if notify != nil {
		notify(eventID, multiSelect)
	}
}

// ClearSelection empties the selection. It is the only way the selection is cleared.
func (e *Engine) ClearSelection() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selection.Clear()
}

// Selection returns the selected event ids, sorted.
func (e *Engine) Selection() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selection.IDs()
}

// EditEvent passes the event through to the edit handler. It reports false
// when the event is unknown.
func (e *Engine) EditEvent(eventID string) bool {
	e.mu.Lock()
	ev, ok := e.eventLocked(eventID)
	handler := e.opts.OnEdit
	e.mu.Unlock()

	if !ok {
		return false
	}
	if handler != nil {
		handler(ev)
	}
	return true
}
