// Package store keeps scenes and their track positions in SQLite. It is the
// story-data collaborator of the layout engine: Store satisfies
// timeline.SceneLookup and timeline.SceneReorderer.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"storyline/internal/timeline"
)

// Schema is applied on every open.
const Schema = `
CREATE TABLE IF NOT EXISTS scenes (
	id                 TEXT PRIMARY KEY,
	title              TEXT NOT NULL DEFAULT '',
	word_count         INTEGER NOT NULL DEFAULT 0,
	mood               TEXT NOT NULL DEFAULT '',
	conflict           TEXT NOT NULL DEFAULT '',
	characters         TEXT NOT NULL DEFAULT '[]',
	story_position     INTEGER,
	narrative_position INTEGER,
	updated_at         DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_scenes_story ON scenes(story_position);
CREATE INDEX IF NOT EXISTS idx_scenes_narrative ON scenes(narrative_position);
`

// ErrSceneNotFound is returned when a scene id is unknown.
var ErrSceneNotFound = errors.New("store: scene not found")

// Positions holds a scene's place on each track. Nil means never placed.
type Positions struct {
	Story     *int `json:"story,omitempty" yaml:"story,omitempty"`
	Narrative *int `json:"narrative,omitempty" yaml:"narrative,omitempty"`
}

var (
	_ timeline.SceneLookup    = (*Store)(nil)
	_ timeline.SceneReorderer = (*Store)(nil)
)

// Store is a SQLite-backed scene store.
type Store struct {
	db      *sql.DB
	logger  *slog.Logger
	timeout time.Duration
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open scene db: %w", err)
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Store{db: db, logger: logger, timeout: 5 * time.Second}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// PutScene inserts or replaces a scene's content. Track positions are kept.
func (s *Store) PutScene(ctx context.Context, scene timeline.Scene) error {
	chars, err := json.Marshal(nonNil(scene.Characters))
	if err != nil {
		return fmt.Errorf("encode characters: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO scenes (id, title, word_count, mood, conflict, characters, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			word_count = excluded.word_count,
			mood = excluded.mood,
			conflict = excluded.conflict,
			characters = excluded.characters,
			updated_at = CURRENT_TIMESTAMP`,
		scene.ID, scene.Title, scene.WordCount, scene.Mood, scene.Conflict, string(chars))
	if err != nil {
		return fmt.Errorf("put scene %s: %w", scene.ID, err)
	}
	return nil
}

// GetScene loads one scene.
func (s *Store) GetScene(ctx context.Context, id string) (timeline.Scene, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, word_count, mood, conflict, characters FROM scenes WHERE id = ?`, id)
	scene, err := scanScene(row)
	if errors.Is(err, sql.ErrNoRows) {
		return timeline.Scene{}, fmt.Errorf("%w: %s", ErrSceneNotFound, id)
	}
	if err != nil {
		return timeline.Scene{}, fmt.Errorf("get scene %s: %w", id, err)
	}
	return scene, nil
}

// ListScenes returns every scene ordered by id.
func (s *Store) ListScenes(ctx context.Context) ([]timeline.Scene, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, word_count, mood, conflict, characters FROM scenes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list scenes: %w", err)
	}
	defer rows.Close()

	var scenes []timeline.Scene
	for rows.Next() {
		scene, err := scanScene(rows)
		if err != nil {
			return nil, fmt.Errorf("list scenes: %w", err)
		}
		scenes = append(scenes, scene)
	}
	return scenes, rows.Err()
}

// SetPosition records a scene's position on a track.
func (s *Store) SetPosition(ctx context.Context, sceneID string, position int, track timeline.Track) error {
	var column string
	switch track {
	case timeline.TrackStory:
		column = "story_position"
	case timeline.TrackNarrative:
		column = "narrative_position"
	default:
		return fmt.Errorf("store: unknown track %q", track)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE scenes SET `+column+` = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, position, sceneID)
	if err != nil {
		return fmt.Errorf("set %s position of %s: %w", track, sceneID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrSceneNotFound, sceneID)
	}
	return nil
}

// Positions returns a scene's track positions.
func (s *Store) Positions(ctx context.Context, sceneID string) (Positions, error) {
	var story, narrative sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT story_position, narrative_position FROM scenes WHERE id = ?`, sceneID).Scan(&story, &narrative)
	if errors.Is(err, sql.ErrNoRows) {
		return Positions{}, fmt.Errorf("%w: %s", ErrSceneNotFound, sceneID)
	}
	if err != nil {
		return Positions{}, fmt.Errorf("positions of %s: %w", sceneID, err)
	}
	var p Positions
	if story.Valid {
		v := int(story.Int64)
		p.Story = &v
	}
	if narrative.Valid {
		v := int(narrative.Int64)
		p.Narrative = &v
	}
	return p, nil
}

// Scene implements timeline.SceneLookup. Lookup failures other than a
// missing scene are logged and reported as not found.
func (s *Store) Scene(id string) (timeline.Scene, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	scene, err := s.GetScene(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrSceneNotFound) {
			s.logger.Error("scene lookup failed", "scene_id", id, "error", err)
		}
		return timeline.Scene{}, false
	}
	return scene, true
}

// ReorderScene implements timeline.SceneReorderer. The engine does not wait
// for a result, so failures are logged.
func (s *Store) ReorderScene(sceneID string, newPosition int, track timeline.Track) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.SetPosition(ctx, sceneID, newPosition, track); err != nil {
		s.logger.Error("scene reorder failed",
			"scene_id", sceneID, "position", newPosition, "track", track, "error", err)
		return
	}
	s.logger.Debug("scene reordered", "scene_id", sceneID, "position", newPosition, "track", track)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanScene(row scanner) (timeline.Scene, error) {
	var (
		scene timeline.Scene
		chars string
	)
	if err := row.Scan(&scene.ID, &scene.Title, &scene.WordCount, &scene.Mood, &scene.Conflict, &chars); err != nil {
		return timeline.Scene{}, err
	}
	if err := json.Unmarshal([]byte(chars), &scene.Characters); err != nil {
		return timeline.Scene{}, fmt.Errorf("decode characters of %s: %w", scene.ID, err)
	}
	return scene, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
