package timeline

import "math"

// Phase is the narrative phase of a point on a character arc.
type Phase string

const (
	PhaseIntroduction Phase = "introduction"
	PhaseRising       Phase = "rising"
	PhaseClimax       Phase = "climax"
	PhaseFalling      Phase = "falling"
	PhaseResolution   Phase = "resolution"
)

// Phases lists the phases in narrative order.
var Phases = []Phase{PhaseIntroduction, PhaseRising, PhaseClimax, PhaseFalling, PhaseResolution}

// RelationshipType qualifies a relationship on an arc point.
type RelationshipType string

// RelationshipNeutral is the only type currently derived.
const RelationshipNeutral RelationshipType = "neutral"

// DefaultRelationshipStrength is assigned to every co-appearing character.
// It is a placeholder: no interaction frequency or sentiment feeds it yet.
const DefaultRelationshipStrength = 50

// Relationship is a character's tie to another character at one arc point.
type Relationship struct {
	CharacterID string           `json:"character_id" yaml:"character_id"`
	Strength    int              `json:"strength" yaml:"strength"`
	Type        RelationshipType `json:"type" yaml:"type"`
}

// ArcPoint is one step of a character arc, one per event.
type ArcPoint struct {
	EventID        string         `json:"event_id" yaml:"event_id"`
	Position       float64        `json:"position" yaml:"position"`
	Phase          Phase          `json:"phase" yaml:"phase"`
	EmotionalState int            `json:"emotional_state" yaml:"emotional_state"` // -100..100
	Relationships  []Relationship `json:"relationships" yaml:"relationships"`
	Goals          []string       `json:"goals" yaml:"goals"`
	Conflicts      []string       `json:"conflicts" yaml:"conflicts"`
}

var moodScores = map[string]int{
	"happy":     80,
	"excited":   70,
	"hopeful":   60,
	"neutral":   0,
	"tense":     -30,
	"sad":       -60,
	"angry":     -70,
	"desperate": -80,
}

// MoodScore returns the emotional valence of a scene mood. Unknown and empty
// moods score 0.
func MoodScore(mood string) int {
	return moodScores[mood]
}

// PhaseAt assigns the narrative phase of the index-th of total events.
// The windows are deliberately uneven: climax covers only [0.5, 0.6).
func PhaseAt(index, total int) Phase {
	if total <= 0 {
		return PhaseIntroduction
	}
	progress := float64(index) / float64(total)
	switch {
	case progress < 0.2:
		return PhaseIntroduction
	case progress < 0.5:
		return PhaseRising
	case progress < 0.6:
		return PhaseClimax
	case progress < 0.8:
		return PhaseFalling
	default:
		return PhaseResolution
	}
}

// AnalyzeCharacterArc derives one arc point per event of the character, in
// the order given. Positions use the supplied range and scale so the arc
// lines up with the main timeline. scenes may be nil.
func AnalyzeCharacterArc(characterID string, events []Event, scenes SceneLookup, r Range, s TimeScale) []ArcPoint {
	points := make([]ArcPoint, 0, len(events))
	for i, e := range events {
		p := ArcPoint{
			EventID:       e.ID,
			Position:      ComputePosition(e, r, s),
			Phase:         PhaseAt(i, len(events)),
			Relationships: []Relationship{},
			Goals:         []string{},
			Conflicts:     []string{},
		}
		if scene, ok := lookupScene(scenes, e.SceneID); ok {
			p.EmotionalState = MoodScore(scene.Mood)
			for _, other := range scene.Characters {
				if other == characterID {
					continue
				}
				p.Relationships = append(p.Relationships, Relationship{
					CharacterID: other,
					Strength:    DefaultRelationshipStrength,
					Type:        RelationshipNeutral,
				})
			}
			if scene.Conflict != "" {
				p.Conflicts = append(p.Conflicts, scene.Conflict)
			}
		}
		if c := e.Metadata.Conflict; c != "" && (len(p.Conflicts) == 0 || p.Conflicts[0] != c) {
			p.Conflicts = append(p.Conflicts, c)
		}
		if e.Metadata.Goal != "" {
			p.Goals = append(p.Goals, e.Metadata.Goal)
		}
		points = append(points, p)
	}
	return points
}

// EventsForCharacter selects the events whose scene features the character,
// in story-time order.
func EventsForCharacter(characterID string, events []Event, scenes SceneLookup) []Event {
	var out []Event
	for _, e := range SortByStoryTime(events) {
		scene, ok := lookupScene(scenes, e.SceneID)
		if !ok {
			continue
		}
		for _, c := range scene.Characters {
			if c == characterID {
				out = append(out, e)
				break
			}
		}
	}
	return out
}

// ArcSummary aggregates an arc.
type ArcSummary struct {
	Points      int           `json:"points" yaml:"points"`
	MeanValence float64       `json:"mean_valence" yaml:"mean_valence"`
	MinValence  int           `json:"min_valence" yaml:"min_valence"`
	MaxValence  int           `json:"max_valence" yaml:"max_valence"`
	Phases      map[Phase]int `json:"phases" yaml:"phases"`
}

// SummarizeArc computes valence statistics and per-phase counts.
func SummarizeArc(points []ArcPoint) ArcSummary {
	sum := ArcSummary{Points: len(points), Phases: make(map[Phase]int)}
	if len(points) == 0 {
		return sum
	}
	total := 0
	sum.MinValence, sum.MaxValence = math.MaxInt, math.MinInt
	for _, p := range points {
		total += p.EmotionalState
		sum.MinValence = min(sum.MinValence, p.EmotionalState)
		sum.MaxValence = max(sum.MaxValence, p.EmotionalState)
		sum.Phases[p.Phase]++
	}
	sum.MeanValence = float64(total) / float64(len(points))
	return sum
}

func lookupScene(scenes SceneLookup, id string) (Scene, bool) {
	if scenes == nil || id == "" {
		return Scene{}, false
	}
	return scenes.Scene(id)
}
