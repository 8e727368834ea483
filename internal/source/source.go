// Package source reads story events and scenes from files: YAML (or JSON)
// documents with events and scenes sections, or CSV files with one event
// per row.
package source

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"storyline/internal/timeline"
)

// timestampFormats are tried in order when parsing a story time. Slash dates
// are month first only; day-first dates are rejected, not guessed.
var timestampFormats = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006",
}

// Document is the content of an events file.
type Document struct {
	Events []timeline.Event
	Scenes []timeline.Scene
}

// SceneMap indexes the document's scenes for lookup.
func (d Document) SceneMap() timeline.SceneMap {
	return timeline.NewSceneMap(d.Scenes)
}

// Options tunes how files are read.
type Options struct {
	// TimestampColumn names the CSV column holding story times (case-insensitive).
	TimestampColumn string
}

// Load reads the file at path. The format follows the extension: .csv for
// CSV, anything else (.yaml, .yml, .json) for a YAML document.
func Load(path string, opts Options) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, fmt.Errorf("error opening events file: %w", err)
	}
	defer f.Close()

	var doc Document
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		doc.Events, err = ParseCSV(f, opts)
	} else {
		var data []byte
		data, err = io.ReadAll(f)
		if err == nil {
			doc, err = ParseDocument(data)
		}
	}
	if err != nil {
		return Document{}, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

type eventRecord struct {
	ID          string                 `yaml:"id"`
	Type        string                 `yaml:"type"`
	Title       string                 `yaml:"title"`
	Importance  string                 `yaml:"importance"`
	StoryTime   string                 `yaml:"story_time"`
	Duration    *float64               `yaml:"duration"`
	SceneID     string                 `yaml:"scene_id"`
	Color       string                 `yaml:"color"`
	Connections []timeline.Connection  `yaml:"connections"`
	Metadata    timeline.EventMetadata `yaml:"metadata"`
}

type documentRecord struct {
	Events []eventRecord    `yaml:"events"`
	Scenes []timeline.Scene `yaml:"scenes"`
}

// ParseDocument decodes a YAML or JSON events document.
func ParseDocument(data []byte) (Document, error) {
	var rec documentRecord
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return Document{}, fmt.Errorf("error parsing events document: %w", err)
	}

	doc := Document{Scenes: make([]timeline.Scene, 0, len(rec.Scenes))}
	for _, s := range rec.Scenes {
		if s.ID == "" {
			s.ID = uuid.NewString()
		}
		doc.Scenes = append(doc.Scenes, s)
	}

	seen := make(map[string]bool, len(rec.Events))
	for i, r := range rec.Events {
		e, err := r.event()
		if err != nil {
			return Document{}, fmt.Errorf("event %d: %w", i+1, err)
		}
		if seen[e.ID] {
			return Document{}, fmt.Errorf("event %d: duplicate id %q", i+1, e.ID)
		}
		seen[e.ID] = true
		doc.Events = append(doc.Events, e)
	}
	return doc, nil
}

func (r eventRecord) event() (timeline.Event, error) {
	e := timeline.Event{
		ID:          strings.TrimSpace(r.ID),
		Title:       r.Title,
		Duration:    r.Duration,
		SceneID:     strings.TrimSpace(r.SceneID),
		Color:       r.Color,
		Connections: r.Connections,
		Metadata:    r.Metadata,
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}

	var err error
	if e.Type, err = parseEventType(r.Type); err != nil {
		return timeline.Event{}, err
	}
	if e.Importance, err = parseImportance(r.Importance); err != nil {
		return timeline.Event{}, err
	}
	if e.StoryTime, err = parseStoryTime(r.StoryTime); err != nil {
		return timeline.Event{}, err
	}
	if e.Duration != nil && *e.Duration < 0 {
		return timeline.Event{}, fmt.Errorf("negative duration %g", *e.Duration)
	}
	return e, nil
}

func parseEventType(s string) (timeline.EventType, error) {
	switch t := timeline.EventType(strings.ToLower(strings.TrimSpace(s))); t {
	case "":
		return timeline.EventCustom, nil
	case timeline.EventScene, timeline.EventMilestone, timeline.EventNote, timeline.EventCustom:
		return t, nil
	}
	return "", fmt.Errorf("unknown event type %q", s)
}

func parseImportance(s string) (timeline.Importance, error) {
	switch i := timeline.Importance(strings.ToLower(strings.TrimSpace(s))); i {
	case "":
		return timeline.ImportanceNormal, nil
	case timeline.ImportanceCritical, timeline.ImportanceMajor, timeline.ImportanceNormal, timeline.ImportanceMinor:
		return i, nil
	}
	return "", fmt.Errorf("unknown importance %q", s)
}

// parseStoryTime returns nil for a blank value: the event is untimed.
func parseStoryTime(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var lastErr error
	for _, format := range timestampFormats {
		t, err := time.Parse(format, s)
		if err == nil {
			return &t, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("unable to parse timestamp '%s': %w", s, lastErr)
}
