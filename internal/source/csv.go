package source

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"storyline/internal/timeline"
)

// DefaultTimestampColumn is used when Options.TimestampColumn is empty.
const DefaultTimestampColumn = "story_time"

// Columns with a dedicated event field. Any other column lands in
// Metadata.Extra under its lower-cased header.
const (
	colID            = "id"
	colType          = "type"
	colTitle         = "title"
	colImportance    = "importance"
	colDuration      = "duration"
	colSceneID       = "scene_id"
	colColor         = "color"
	colConnections   = "connections"
	colStatus        = "status"
	colNarrativeType = "narrative_type"
	colCharacterRole = "character_role"
	colConflict      = "conflict"
	colGoal          = "goal"
)

// ParseCSV reads one event per row. The header row is required; column names
// match case-insensitively. Connections are written as
// "target[:label];target[:label]". A blank timestamp makes the event untimed.
func ParseCSV(r io.Reader, opts Options) ([]timeline.Event, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("error reading CSV header: %w", err)
	}

	columnMap := make(map[string]int, len(header))
	for i, col := range header {
		columnMap[strings.ToLower(strings.TrimSpace(col))] = i
	}

	timestampColumn := strings.ToLower(strings.TrimSpace(opts.TimestampColumn))
	if timestampColumn == "" {
		timestampColumn = DefaultTimestampColumn
	}
	if _, ok := columnMap[timestampColumn]; !ok {
		return nil, fmt.Errorf("timestamp column '%s' not found in CSV. Available columns: %v", timestampColumn, header)
	}

	var events []timeline.Event
	seen := make(map[string]bool)
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}

		event, err := parseCSVRow(record, columnMap, timestampColumn)
		if err != nil {
			return nil, fmt.Errorf("error parsing CSV row %d: %w", line, err)
		}
		if seen[event.ID] {
			return nil, fmt.Errorf("error parsing CSV row %d: duplicate id %q", line, event.ID)
		}
		seen[event.ID] = true
		events = append(events, event)
	}
	return events, nil
}

func parseCSVRow(record []string, columnMap map[string]int, timestampColumn string) (timeline.Event, error) {
	get := func(name string) string {
		i, ok := columnMap[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	rec := eventRecord{
		ID:         get(colID),
		Type:       get(colType),
		Title:      get(colTitle),
		Importance: get(colImportance),
		StoryTime:  get(timestampColumn),
		SceneID:    get(colSceneID),
		Color:      get(colColor),
		Metadata: timeline.EventMetadata{
			Status:        get(colStatus),
			NarrativeType: get(colNarrativeType),
			CharacterRole: get(colCharacterRole),
			Conflict:      get(colConflict),
			Goal:          get(colGoal),
		},
		Connections: parseConnections(get(colConnections)),
	}
	if d := get(colDuration); d != "" {
		minutes, err := strconv.ParseFloat(d, 64)
		if err != nil {
			return timeline.Event{}, fmt.Errorf("invalid duration %q: %w", d, err)
		}
		rec.Duration = &minutes
	}

	for name, i := range columnMap {
		if isKnownColumn(name) || name == timestampColumn || i >= len(record) {
			continue
		}
		if v := strings.TrimSpace(record[i]); v != "" {
			if rec.Metadata.Extra == nil {
				rec.Metadata.Extra = make(map[string]string)
			}
			rec.Metadata.Extra[name] = v
		}
	}

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	return rec.event()
}

func isKnownColumn(name string) bool {
	switch name {
	case colID, colType, colTitle, colImportance, colDuration, colSceneID, colColor,
		colConnections, colStatus, colNarrativeType, colCharacterRole, colConflict, colGoal:
		return true
	}
	return false
}

func parseConnections(s string) []timeline.Connection {
	if s == "" {
		return nil
	}
	var out []timeline.Connection
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		target, label, _ := strings.Cut(part, ":")
		out = append(out, timeline.Connection{
			TargetID:    strings.TrimSpace(target),
			TargetLabel: strings.TrimSpace(label),
		})
	}
	return out
}
