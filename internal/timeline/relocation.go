package timeline

import "math"

// RelocationState is a state of the relocation gesture.
type RelocationState string

const (
	StateIdle           RelocationState = "idle"
	StatePickedUp       RelocationState = "picked-up"
	StateDroppedValid   RelocationState = "dropped-valid"
	StateDroppedInvalid RelocationState = "dropped-invalid"
)

// ReorderRequest is the mutation a valid drop asks the story-data
// collaborator to perform.
type ReorderRequest struct {
	SceneID     string `json:"scene_id" yaml:"scene_id"`
	NewPosition int    `json:"new_position" yaml:"new_position"`
	Track       Track  `json:"track" yaml:"track"`
}

// DropResult reports how a gesture ended. State is dropped-valid or
// dropped-invalid; the relocator itself is back in idle when it is returned.
type DropResult struct {
	State     RelocationState `json:"state" yaml:"state"`
	EventID   string          `json:"event_id,omitempty" yaml:"event_id,omitempty"`
	FromTrack Track           `json:"from_track,omitempty" yaml:"from_track,omitempty"`
	Request   *ReorderRequest `json:"request,omitempty" yaml:"request,omitempty"`
}

// Valid reports whether the drop produced a reorder request.
func (d DropResult) Valid() bool {
	return d.State == StateDroppedValid
}

type pickup struct {
	eventID string
	from    Track
}

// Relocator is the pick-up/drop state machine turning pointer gestures into
// scene reorder requests. At most one gesture is pending; picking up while a
// gesture is pending cancels it and starts over.
//
// Invalid drops are absorbed: no error, no callback, no log entry. The only
// side effect of a valid drop is a single ReorderScene call.
//
// A Relocator is not safe for concurrent use; Engine serializes access.
type Relocator struct {
	scale     TimeScale
	events    EventLookup
	reorderer SceneReorderer
	pending   *pickup
}

// NewRelocator builds a Relocator. events resolves a picked-up event to its
// scene; reorderer may be nil, in which case valid drops are only reported.
func NewRelocator(scale TimeScale, events EventLookup, reorderer SceneReorderer) (*Relocator, error) {
	if err := scale.Validate(); err != nil {
		return nil, err
	}
	return &Relocator{scale: scale, events: events, reorderer: reorderer}, nil
}

// SetScale replaces the scale used to convert drop offsets.
func (r *Relocator) SetScale(s TimeScale) error {
	if err := s.Validate(); err != nil {
		return err
	}
	r.scale = s
	return nil
}

// State returns idle or picked-up; the dropped states are transient.
func (r *Relocator) State() RelocationState {
	if r.pending != nil {
		return StatePickedUp
	}
	return StateIdle
}

// Pending returns the gesture currently picked up.
func (r *Relocator) Pending() (eventID string, from Track, ok bool) {
	if r.pending == nil {
		return "", "", false
	}
	return r.pending.eventID, r.pending.from, true
}

// Begin picks up an event from a track.
func (r *Relocator) Begin(eventID string, from Track) {
	r.pending = &pickup{eventID: eventID, from: from}
}

// Complete releases the pending gesture over targetTrack's drop surface at
// dropX, with the surface starting at trackOriginX. The new position is the
// relative offset in scale units, rounded half up.
func (r *Relocator) Complete(dropX, trackOriginX float64, targetTrack Track) DropResult {
	res := r.resolve(dropX, trackOriginX, targetTrack)
	r.notify(res)
	return res
}

// DropOutside releases the pending gesture outside every drop surface.
func (r *Relocator) DropOutside() DropResult {
	res := DropResult{State: StateDroppedInvalid}
	if r.pending != nil {
		res.EventID, res.FromTrack = r.pending.eventID, r.pending.from
	}
	r.pending = nil
	return res
}

// resolve settles the gesture and returns to idle without firing the reorderer.
func (r *Relocator) resolve(dropX, trackOriginX float64, targetTrack Track) DropResult {
	p := r.pending
	r.pending = nil
	if p == nil {
		return DropResult{State: StateDroppedInvalid}
	}
	res := DropResult{State: StateDroppedInvalid, EventID: p.eventID, FromTrack: p.from}
	if !targetTrack.Valid() || r.events == nil {
		return res
	}
	e, ok := r.events.Event(p.eventID)
	if !ok || e.SceneID == "" {
		return res
	}
	relativeX := dropX - trackOriginX
	res.State = StateDroppedValid
	res.Request = &ReorderRequest{
		SceneID:     e.SceneID,
		NewPosition: roundHalfUp(relativeX / r.scale.PixelsPerUnit),
		Track:       targetTrack,
	}
	return res
}

// notify hands a valid drop to the reorderer. It reads only the reorderer,
// which is fixed at construction, so it may run outside the caller's lock.
func (r *Relocator) notify(res DropResult) {
	if res.Valid() && r.reorderer != nil {
		r.reorderer.ReorderScene(res.Request.SceneID, res.Request.NewPosition, res.Request.Track)
	}
}

func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}
