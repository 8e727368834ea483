package timeline

import (
	"fmt"
	"testing"
	"time"
)

func TestPhaseAt_TenEvents(t *testing.T) {
	want := []Phase{
		PhaseIntroduction, PhaseIntroduction,
		PhaseRising, PhaseRising, PhaseRising,
		PhaseClimax,
		PhaseFalling, PhaseFalling,
		PhaseResolution, PhaseResolution,
	}
	for i, w := range want {
		if got := PhaseAt(i, 10); got != w {
			t.Errorf("index %d (progress %.1f): expected %s, got %s", i, float64(i)/10, w, got)
		}
	}
}

func TestMoodScore(t *testing.T) {
	table := map[string]int{
		"happy":     80,
		"excited":   70,
		"hopeful":   60,
		"neutral":   0,
		"tense":     -30,
		"sad":       -60,
		"angry":     -70,
		"desperate": -80,
	}
	for mood, want := range table {
		if got := MoodScore(mood); got != want {
			t.Errorf("MoodScore(%q) = %d, want %d", mood, got, want)
		}
	}
	for _, mood := range []string{"", "melancholy", "Happy"} {
		if got := MoodScore(mood); got != 0 {
			t.Errorf("MoodScore(%q) = %d, want 0", mood, got)
		}
	}
}

func TestAnalyzeCharacterArc(t *testing.T) {
	base := *at(2024, time.April, 1)
	scenes := NewSceneMap([]Scene{
		{ID: "s1", Mood: "hopeful", Characters: []string{"Ada", "Brand", "Cole"}},
		{ID: "s2", Mood: "desperate", Conflict: "betrayal", Characters: []string{"Brand", "Ada"}},
		{ID: "s3", Mood: "bewildered", Characters: []string{"Ada"}},
	})
	events := []Event{
		{ID: "e1", SceneID: "s1", StoryTime: daysAfter(base, 0), Metadata: EventMetadata{Goal: "find the map"}},
		{ID: "e2", SceneID: "s2", StoryTime: daysAfter(base, 2), Metadata: EventMetadata{Conflict: "betrayal"}},
		{ID: "e3", SceneID: "s3", StoryTime: daysAfter(base, 4), Metadata: EventMetadata{Conflict: "storm"}},
		{ID: "e4", SceneID: "gone"},
	}
	r := Range{Start: base, End: base.AddDate(0, 0, 4)}

	points := AnalyzeCharacterArc("Ada", events, scenes, r, mustScale(t, UnitDays, 10))
	if len(points) != len(events) {
		t.Fatalf("expected %d points, got %d", len(events), len(points))
	}

	p1 := points[0]
	if p1.EventID != "e1" || p1.EmotionalState != 60 || p1.Phase != PhaseIntroduction {
		t.Errorf("unexpected first point %+v", p1)
	}
	if len(p1.Relationships) != 2 || p1.Relationships[0].CharacterID != "Brand" || p1.Relationships[1].CharacterID != "Cole" {
		t.Errorf("expected relationships to Brand and Cole, got %+v", p1.Relationships)
	}
	for _, rel := range p1.Relationships {
		if rel.Strength != DefaultRelationshipStrength || rel.Type != RelationshipNeutral {
			t.Errorf("expected placeholder relationship, got %+v", rel)
		}
	}
	if len(p1.Goals) != 1 || p1.Goals[0] != "find the map" {
		t.Errorf("expected goal from metadata, got %v", p1.Goals)
	}

	p2 := points[1]
	if p2.EmotionalState != -80 || p2.Position != 20 {
		t.Errorf("unexpected second point %+v", p2)
	}
	if len(p2.Conflicts) != 1 || p2.Conflicts[0] != "betrayal" {
		t.Errorf("expected deduplicated conflict, got %v", p2.Conflicts)
	}

	p3 := points[2]
	if p3.EmotionalState != 0 || len(p3.Relationships) != 0 {
		t.Errorf("unmapped mood with a lone character: got %+v", p3)
	}
	if len(p3.Conflicts) != 1 || p3.Conflicts[0] != "storm" {
		t.Errorf("expected event conflict, got %v", p3.Conflicts)
	}

	p4 := points[3]
	if p4.EmotionalState != 0 || p4.Position != 0 || p4.Relationships == nil || p4.Conflicts == nil {
		t.Errorf("missing scene should fall back to empty values, got %+v", p4)
	}
}

func TestAnalyzeCharacterArc_Empty(t *testing.T) {
	points := AnalyzeCharacterArc("Nobody", nil, nil, Range{}, mustScale(t, UnitDays, 10))
	if points == nil || len(points) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", points)
	}
}

func TestEventsForCharacter(t *testing.T) {
	base := *at(2024, time.April, 1)
	scenes := NewSceneMap([]Scene{
		{ID: "s1", Characters: []string{"Ada"}},
		{ID: "s2", Characters: []string{"Brand"}},
	})
	events := []Event{
		{ID: "late", SceneID: "s1", StoryTime: daysAfter(base, 9)},
		{ID: "other", SceneID: "s2", StoryTime: daysAfter(base, 1)},
		{ID: "early", SceneID: "s1", StoryTime: daysAfter(base, 2)},
		{ID: "loose"},
	}
	got := EventsForCharacter("Ada", events, scenes)
	if len(got) != 2 || got[0].ID != "early" || got[1].ID != "late" {
		t.Errorf("expected [early late], got %+v", got)
	}
}

func TestSummarizeArc(t *testing.T) {
	var points []ArcPoint
	for i, v := range []int{80, -60, 0, -30, 70} {
		points = append(points, ArcPoint{EventID: fmt.Sprint(i), EmotionalState: v, Phase: PhaseAt(i, 5)})
	}
	sum := SummarizeArc(points)
	if sum.Points != 5 || sum.MinValence != -60 || sum.MaxValence != 80 || sum.MeanValence != 12 {
		t.Errorf("unexpected summary %+v", sum)
	}
	if sum.Phases[PhaseIntroduction] != 1 || sum.Phases[PhaseRising] != 2 || sum.Phases[PhaseClimax] != 0 {
		t.Errorf("unexpected phase counts %v", sum.Phases)
	}

	if empty := SummarizeArc(nil); empty.Points != 0 || empty.MinValence != 0 {
		t.Errorf("expected zero summary, got %+v", empty)
	}
}
