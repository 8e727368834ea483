package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"storyline/internal/config"
	"storyline/internal/store"
	"storyline/internal/timeline"
)

const testDocument = `
scenes:
  - id: s1
    title: Harbor
    mood: happy
    characters: [Ada, Brand]
  - id: s2
    title: Storm
    mood: desperate
    conflict: the storm
    characters: [Ada]
events:
  - id: e1
    type: scene
    title: Arrival
    importance: major
    story_time: 2024-01-01
    scene_id: s1
    connections:
      - target_id: e3
        target_label: foreshadows
  - id: e2
    type: note
    title: Same day
    story_time: "2024-01-01 12:00"
  - id: e3
    type: scene
    title: Landfall
    story_time: 2024-01-10
    scene_id: s2
    metadata:
      goal: survive
`

func writeDocument(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "story.yaml")
	if err := os.WriteFile(path, []byte(testDocument), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestLayoutCommand_JSON(t *testing.T) {
	path := writeDocument(t)
	out, err := runCLI(t, "layout", "--events", path)
	if err != nil {
		t.Fatalf("layout: %v", err)
	}

	var got struct {
		Width   float64 `json:"width"`
		Markers []struct {
			Label  string `json:"label"`
			IsMain bool   `json:"is_main"`
		} `json:"markers"`
		Groups []struct {
			Position   float64 `json:"position"`
			Placements []struct {
				X   float64 `json:"x"`
				Row float64 `json:"row"`
			} `json:"placements"`
		} `json:"groups"`
		Connections []struct {
			FromID string `json:"from_id"`
			ToID   string `json:"to_id"`
			Label  string `json:"label"`
		} `json:"connections"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("expected JSON output when not on a terminal: %v\n%s", err, out)
	}

	if got.Width < 1000 {
		t.Errorf("expected width of at least the minimum track width, got %g", got.Width)
	}
	if len(got.Markers) != 10 || got.Markers[0].Label != "Jan 1" || !got.Markers[0].IsMain {
		t.Errorf("unexpected markers %+v", got.Markers)
	}
	if len(got.Groups) != 2 {
		t.Fatalf("expected 2 groups, got %+v", got.Groups)
	}
	if len(got.Groups[0].Placements) != 2 || got.Groups[0].Placements[1].Row != 35 {
		t.Errorf("expected e1 and e2 stacked in the first group, got %+v", got.Groups[0])
	}
	if got.Groups[1].Position != 450 {
		t.Errorf("expected second group at 450, got %g", got.Groups[1].Position)
	}
	if len(got.Connections) != 1 || got.Connections[0].FromID != "e1" || got.Connections[0].Label != "foreshadows" {
		t.Errorf("unexpected connections %+v", got.Connections)
	}
}

func TestLayoutCommand_Table(t *testing.T) {
	path := writeDocument(t)
	out, err := runCLI(t, "layout", "--events", path, "--unit", "weeks", "--format", "table")
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	for _, want := range []string{"Weeks x1", "Week 1", "Week 2", "Arrival", "Major", "foreshadows"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in table output:\n%s", want, out)
		}
	}
}

func TestLayoutCommand_Errors(t *testing.T) {
	path := writeDocument(t)
	tests := []struct {
		name string
		args []string
	}{
		{"missing events", []string{"layout"}},
		{"unknown unit", []string{"layout", "--events", path, "--unit", "years"}},
		{"zero zoom", []string{"layout", "--events", path, "--zoom", "0"}},
		{"unknown format", []string{"layout", "--events", path, "--format", "xml"}},
		{"missing file", []string{"layout", "--events", filepath.Join(t.TempDir(), "none.yaml")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := runCLI(t, tt.args...); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestArcCommand_YAML(t *testing.T) {
	path := writeDocument(t)
	out, err := runCLI(t, "arc", "--events", path, "--character", "Ada", "--format", "yaml")
	if err != nil {
		t.Fatalf("arc: %v", err)
	}

	var got arcReport
	if err := yaml.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("expected YAML output: %v\n%s", err, out)
	}
	if got.Character != "Ada" || len(got.Points) != 2 {
		t.Fatalf("unexpected report %+v", got)
	}
	first, last := got.Points[0], got.Points[1]
	if first.EventID != "e1" || first.EmotionalState != 80 || len(first.Relationships) != 1 || first.Relationships[0].CharacterID != "Brand" {
		t.Errorf("unexpected first point %+v", first)
	}
	if last.EventID != "e3" || last.EmotionalState != -80 || len(last.Goals) != 1 || last.Goals[0] != "survive" {
		t.Errorf("unexpected last point %+v", last)
	}
	if got.Summary.Points != 2 || got.Summary.MeanValence != 0 {
		t.Errorf("unexpected summary %+v", got.Summary)
	}
}

func TestArcCommand_Table(t *testing.T) {
	out, err := runCLI(t, "arc", "--events", writeDocument(t), "--character", "Ada", "--format", "table")
	if err != nil {
		t.Fatalf("arc: %v", err)
	}
	for _, want := range []string{"Character:", "Introduction 1, Climax 1", "Brand", "survive", "the storm"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in table output:\n%s", want, out)
		}
	}
}

func TestArcCommand_StoreWithDocumentFallback(t *testing.T) {
	path := writeDocument(t)
	db := filepath.Join(t.TempDir(), "scenes.db")
	s, err := store.Open(db, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	// The stored s1 overrides the document's mood; s2 comes from the document.
	if err := s.PutScene(context.Background(), timeline.Scene{ID: "s1", Mood: "sad", Characters: []string{"Ada"}}); err != nil {
		t.Fatalf("PutScene: %v", err)
	}
	s.Close()

	out, err := runCLI(t, "arc", "--events", path, "--db", db, "--character", "Ada", "--format", "json")
	if err != nil {
		t.Fatalf("arc: %v", err)
	}
	var got arcReport
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("bad JSON: %v\n%s", err, out)
	}
	if len(got.Points) != 2 || got.Points[0].EmotionalState != -60 || got.Points[1].EmotionalState != -80 {
		t.Errorf("unexpected points %+v", got.Points)
	}
}

func TestArcCommand_RequiresCharacter(t *testing.T) {
	if _, err := runCLI(t, "arc", "--events", writeDocument(t)); err == nil {
		t.Fatal("expected error without --character")
	}
}

func TestImportAndRelocate(t *testing.T) {
	path := writeDocument(t)
	db := filepath.Join(t.TempDir(), "scenes.db")

	out, err := runCLI(t, "import", "--events", path, "--db", db, "--format", "json")
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	var imported importReport
	if err := json.Unmarshal([]byte(out), &imported); err != nil || imported.Scenes != 2 {
		t.Fatalf("unexpected import output %q (%v)", out, err)
	}

	tests := []struct {
		name      string
		args      []string
		wantValid bool
		wantPos   int
	}{
		{"narrative drop rounds half up", []string{"--event", "e1", "--from", "story", "--to", "narrative", "--drop-x", "245", "--origin-x", "20"}, true, 5},
		{"unknown target track", []string{"--event", "e1", "--to", "sidebar", "--drop-x", "100"}, false, 0},
		{"event without scene", []string{"--event", "e2", "--to", "story", "--drop-x", "100"}, false, 0},
		{"unknown event", []string{"--event", "nope", "--to", "story", "--drop-x", "100"}, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"relocate", "--events", path, "--db", db, "--format", "json"}, tt.args...)
			out, err := runCLI(t, args...)
			if err != nil {
				t.Fatalf("relocate: %v", err)
			}
			var got struct {
				Drop struct {
					State   string `json:"state"`
					Request *struct {
						SceneID     string `json:"scene_id"`
						NewPosition int    `json:"new_position"`
					} `json:"request"`
				} `json:"drop"`
				Positions *struct {
					Narrative *int `json:"narrative"`
				} `json:"positions"`
			}
			if err := json.Unmarshal([]byte(out), &got); err != nil {
				t.Fatalf("bad JSON: %v\n%s", err, out)
			}
			if !tt.wantValid {
				if got.Drop.State != "dropped-invalid" || got.Drop.Request != nil || got.Positions != nil {
					t.Errorf("expected invalid drop, got %s", out)
				}
				return
			}
			if got.Drop.State != "dropped-valid" || got.Drop.Request == nil || got.Drop.Request.NewPosition != tt.wantPos {
				t.Fatalf("unexpected drop %s", out)
			}
			if got.Positions == nil || got.Positions.Narrative == nil || *got.Positions.Narrative != tt.wantPos {
				t.Errorf("expected stored narrative position %d, got %s", tt.wantPos, out)
			}
		})
	}
}

func TestRelocate_InvalidSourceTrack(t *testing.T) {
	path := writeDocument(t)
	db := filepath.Join(t.TempDir(), "scenes.db")
	if _, err := runCLI(t, "relocate", "--events", path, "--db", db, "--event", "e1", "--from", "margin", "--drop-x", "1"); err == nil {
		t.Fatal("expected error for unknown --from track")
	}
}

func TestRelocate_TrackNames(t *testing.T) {
	path := writeDocument(t)
	db := filepath.Join(t.TempDir(), "scenes.db")
	if _, err := runCLI(t, "import", "--events", path, "--db", db); err != nil {
		t.Fatalf("import: %v", err)
	}

	tests := []struct {
		name      string
		to        string
		wantState string
	}{
		{"exact target track", "narrative", "dropped-valid"},
		{"target track is case sensitive", "Narrative", "dropped-invalid"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCLI(t, "relocate", "--events", path, "--db", db, "--format", "json",
				"--event", "e1", "--from", "Story", "--to", tt.to, "--drop-x", "100")
			if err != nil {
				t.Fatalf("relocate: %v", err)
			}
			var got struct {
				Drop struct {
					State     string `json:"state"`
					FromTrack string `json:"from_track"`
				} `json:"drop"`
			}
			if err := json.Unmarshal([]byte(out), &got); err != nil {
				t.Fatalf("bad JSON: %v\n%s", err, out)
			}
			if got.Drop.State != tt.wantState {
				t.Errorf("expected %s, got %s", tt.wantState, got.Drop.State)
			}
			if got.Drop.FromTrack != "story" {
				t.Errorf("expected normalized source track \"story\", got %q", got.Drop.FromTrack)
			}
		})
	}
}

func TestRelocate_DropXIsRequired(t *testing.T) {
	path := writeDocument(t)
	db := filepath.Join(t.TempDir(), "scenes.db")
	_, err := runCLI(t, "relocate", "--events", path, "--db", db, "--event", "e1")
	if err == nil || !strings.Contains(err.Error(), "drop-x") {
		t.Fatalf("expected missing --drop-x error, got %v", err)
	}
}

func TestResolveFormat(t *testing.T) {
	var buf bytes.Buffer
	tests := []struct {
		format string
		want   string
	}{
		{config.FormatAuto, config.FormatJSON},
		{config.FormatTable, config.FormatTable},
		{config.FormatYAML, config.FormatYAML},
	}
	for _, tt := range tests {
		if got := resolveFormat(tt.format, &buf); got != tt.want {
			t.Errorf("resolveFormat(%q) = %q, want %q", tt.format, got, tt.want)
		}
	}
}

func TestPixels(t *testing.T) {
	if got := pixels(1234.4); got != "1,234 px" {
		t.Errorf("pixels(1234.4) = %q", got)
	}
	if got := titleCase("resolution"); got != "Resolution" {
		t.Errorf("titleCase = %q", got)
	}
}
