package timeline

import (
	"fmt"
	"strings"
	"time"
)

// EventType classifies a timeline event.
type EventType string

const (
	EventScene     EventType = "scene"
	EventMilestone EventType = "milestone"
	EventNote      EventType = "note"
	EventCustom    EventType = "custom"
)

// Importance controls the footprint of an event without a duration.
type Importance string

const (
	ImportanceCritical Importance = "critical"
	ImportanceMajor    Importance = "major"
	ImportanceNormal   Importance = "normal"
	ImportanceMinor    Importance = "minor"
)

// normalized maps the empty or unknown importance to normal.
func (i Importance) normalized() Importance {
	switch i {
	case ImportanceCritical, ImportanceMajor, ImportanceMinor:
		return i
	}
	return ImportanceNormal
}

// Connection is a non-owning reference from one event to another.
type Connection struct {
	TargetID    string `json:"target_id" yaml:"target_id"`
	TargetLabel string `json:"target_label,omitempty" yaml:"target_label,omitempty"`
}

// EventMetadata is the structured form of the event metadata bag. Every field
// is optional; an empty string means "not set".
type EventMetadata struct {
	Status        string            `json:"status,omitempty" yaml:"status,omitempty"`
	NarrativeType string            `json:"narrative_type,omitempty" yaml:"narrative_type,omitempty"`
	CharacterRole string            `json:"character_role,omitempty" yaml:"character_role,omitempty"`
	Conflict      string            `json:"conflict,omitempty" yaml:"conflict,omitempty"`
	Goal          string            `json:"goal,omitempty" yaml:"goal,omitempty"`
	Extra         map[string]string `json:"extra,omitempty" yaml:"extra,omitempty"`
}

// Event is a single story event as read by the layout engine. Events are
// owned by the story-editing collaborator; the engine never mutates them.
type Event struct {
	ID          string        `json:"id" yaml:"id"`
	Type        EventType     `json:"type" yaml:"type"`
	Title       string        `json:"title,omitempty" yaml:"title,omitempty"`
	Importance  Importance    `json:"importance,omitempty" yaml:"importance,omitempty"`
	StoryTime   *time.Time    `json:"story_time,omitempty" yaml:"story_time,omitempty"`
	Duration    *float64      `json:"duration,omitempty" yaml:"duration,omitempty"` // minutes
	SceneID     string        `json:"scene_id,omitempty" yaml:"scene_id,omitempty"`
	Color       string        `json:"color,omitempty" yaml:"color,omitempty"`
	Connections []Connection  `json:"connections,omitempty" yaml:"connections,omitempty"`
	Metadata    EventMetadata `json:"metadata" yaml:"metadata"`
}

// Timed reports whether the event carries a story timestamp.
func (e Event) Timed() bool {
	return e.StoryTime != nil
}

// Scene is the external scene entity. The engine only ever looks scenes up;
// mutation is requested through a SceneReorderer.
type Scene struct {
	ID         string   `json:"id" yaml:"id"`
	Title      string   `json:"title,omitempty" yaml:"title,omitempty"`
	WordCount  int      `json:"word_count,omitempty" yaml:"word_count,omitempty"`
	Mood       string   `json:"mood,omitempty" yaml:"mood,omitempty"`
	Conflict   string   `json:"conflict,omitempty" yaml:"conflict,omitempty"`
	Characters []string `json:"characters,omitempty" yaml:"characters,omitempty"`
}

// Track identifies one of the two parallel timelines.
type Track string

const (
	TrackStory     Track = "story"
	TrackNarrative Track = "narrative"
)

// Valid reports whether t names a drop surface.
func (t Track) Valid() bool {
	return t == TrackStory || t == TrackNarrative
}

// ParseTrack converts a track name, case-insensitively.
func ParseTrack(s string) (Track, error) {
	t := Track(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("timeline: unknown track %q", s)
	}
	return t, nil
}

// SceneLookup resolves a scene by id.
type SceneLookup interface {
	Scene(id string) (Scene, bool)
}

// SceneLookupFunc adapts a function to SceneLookup.
type SceneLookupFunc func(id string) (Scene, bool)

// Scene implements SceneLookup.
func (f SceneLookupFunc) Scene(id string) (Scene, bool) {
	return f(id)
}

// SceneMap is an in-memory SceneLookup keyed by scene id.
type SceneMap map[string]Scene

// Scene implements SceneLookup.
func (m SceneMap) Scene(id string) (Scene, bool) {
	s, ok := m[id]
	return s, ok
}

// NewSceneMap indexes scenes by id. Later duplicates win.
func NewSceneMap(scenes []Scene) SceneMap {
	m := make(SceneMap, len(scenes))
	for _, s := range scenes {
		m[s.ID] = s
	}
	return m
}

// SceneReorderer receives the mutation requested by a valid drop. The engine
// neither awaits nor verifies the result.
type SceneReorderer interface {
	ReorderScene(sceneID string, newPosition int, track Track)
}

// ReorderFunc adapts a function to SceneReorderer.
type ReorderFunc func(sceneID string, newPosition int, track Track)

// ReorderScene implements SceneReorderer.
func (f ReorderFunc) ReorderScene(sceneID string, newPosition int, track Track) {
	f(sceneID, newPosition, track)
}

// EventLookup resolves an event by id.
type EventLookup interface {
	Event(id string) (Event, bool)
}

// EventLookupFunc adapts a function to EventLookup.
type EventLookupFunc func(id string) (Event, bool)

// Event implements EventLookup.
func (f EventLookupFunc) Event(id string) (Event, bool) {
	return f(id)
}
