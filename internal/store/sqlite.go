package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/rcliao/vtimeline/internal/history"
	"github.com/rcliao/vtimeline/internal/model"
)

// ErrNotFound is returned when a project does not exist.
var ErrNotFound = errors.New("project not found")

const (
	stackUndo = "undo"
	stackRedo = "redo"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db      *sql.DB
	entropy *rand.Rand
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// NewID returns a new sortable identifier.
func (s *SQLiteStore) NewID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS projects (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_projects_name ON projects(name, updated_at DESC);

	CREATE TABLE IF NOT EXISTS tracks (
		project_id  TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		id          TEXT NOT NULL,
		idx         INTEGER NOT NULL,
		kind        TEXT NOT NULL,
		name        TEXT NOT NULL,
		muted       INTEGER NOT NULL DEFAULT 0,
		visible     INTEGER NOT NULL DEFAULT 1,
		locked      INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (project_id, id)
	);

	CREATE TABLE IF NOT EXISTS clips (
		project_id               TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		id                       TEXT NOT NULL,
		seq                      INTEGER NOT NULL,
		source_url               TEXT NOT NULL,
		kind                     TEXT NOT NULL,
		track_index              INTEGER NOT NULL,
		start_frame              INTEGER NOT NULL,
		duration_frames          INTEGER NOT NULL,
		original_duration_frames INTEGER NOT NULL,
		source_in_frame          INTEGER NOT NULL,
		source_out_frame         INTEGER NOT NULL,
		PRIMARY KEY (project_id, id)
	);

	CREATE TABLE IF NOT EXISTS history (
		project_id   TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		stack        TEXT NOT NULL,
		seq          INTEGER NOT NULL,
		entry_id     TEXT NOT NULL,
		description  TEXT NOT NULL,
		total_frames INTEGER NOT NULL,
		clips        TEXT NOT NULL,
		created_at   TEXT NOT NULL,
		PRIMARY KEY (project_id, stack, seq)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) CreateProject(ctx context.Context, p CreateParams) (*model.Project, error) {
	now := time.Now().UTC()
	proj := &model.Project{
		ID:        s.NewID(),
		Name:      p.Name,
		Tracks:    model.CloneTracks(p.Tracks),
		CreatedAt: now,
		UpdatedAt: now,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO projects (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		proj.ID, proj.Name, now.Format(time.RFC3339Nano), now.Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("insert project: %w", err)
	}
	if err := insertTracks(ctx, tx, proj.ID, proj.Tracks); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return proj, nil
}

func (s *SQLiteStore) ResolveProject(ctx context.Context, ref string) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `SELECT id FROM projects WHERE id = ?`, ref).Scan(&id)
	if err == nil {
		return id, nil
	}
	err = s.db.QueryRowContext(ctx,
		`SELECT id FROM projects WHERE name = ? ORDER BY updated_at DESC LIMIT 1`, ref).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	return id, err
}

func (s *SQLiteStore) LoadProject(ctx context.Context, id string) (*Snapshot, error) {
	snap := &Snapshot{}
	p := &snap.Project

	var createdAt, updatedAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at, updated_at FROM projects WHERE id = ?`, id).
		Scan(&p.ID, &p.Name, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	p.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	p.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)

	if p.Tracks, err = s.loadTracks(ctx, id); err != nil {
		return nil, fmt.Errorf("load tracks: %w", err)
	}
	if p.Clips, err = s.loadClips(ctx, id); err != nil {
		return nil, fmt.Errorf("load clips: %w", err)
	}
	if err := model.ValidateClips(p.Clips); err != nil {
		return nil, fmt.Errorf("project %s: %w", id, err)
	}
	if snap.Undo, err = s.loadHistory(ctx, id, stackUndo); err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	if snap.Redo, err = s.loadHistory(ctx, id, stackRedo); err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return snap, nil
}

func (s *SQLiteStore) SaveProject(ctx context.Context, snap *Snapshot) error {
	p := &snap.Project
	if err := model.ValidateClips(p.Clips); err != nil {
		return err
	}
	now := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE projects SET name = ?, updated_at = ? WHERE id = ?`,
		p.Name, now.Format(time.RFC3339Nano), p.ID)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, p.ID)
	}

	for _, table := range []string{"tracks", "clips", "history"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE project_id = ?`, p.ID); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	if err := insertTracks(ctx, tx, p.ID, p.Tracks); err != nil {
		return err
	}
	for i, c := range p.Clips {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO clips (project_id, id, seq, source_url, kind, track_index, start_frame,
			                    duration_frames, original_duration_frames, source_in_frame, source_out_frame)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, c.ID, i, c.SourceURL, string(c.Kind), c.TrackIndex, c.StartFrame,
			c.DurationFrames, c.OriginalDurationFrames, c.SourceInFrame, c.SourceOutFrame)
		if err != nil {
			return fmt.Errorf("insert clip: %w", err)
		}
	}
	if err := insertHistory(ctx, tx, p.ID, stackUndo, snap.Undo); err != nil {
		return err
	}
	if err := insertHistory(ctx, tx, p.ID, stackRedo, snap.Redo); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	p.UpdatedAt = now
	return nil
}

func (s *SQLiteStore) ListProjects(ctx context.Context, p ListParams) ([]model.Project, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, created_at, updated_at FROM projects ORDER BY updated_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []model.Project
	for rows.Next() {
		var proj model.Project
		var createdAt, updatedAt string
		if err := rows.Scan(&proj.ID, &proj.Name, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		proj.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		proj.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
		projects = append(projects, proj)
	}
	return projects, rows.Err()
}

func (s *SQLiteStore) DeleteProject(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func insertTracks(ctx context.Context, tx *sql.Tx, projectID string, tracks []model.Track) error {
	for _, t := range tracks {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO tracks (project_id, id, idx, kind, name, muted, visible, locked)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			projectID, t.ID, t.Index, string(t.Kind), t.Name, t.Muted, t.Visible, t.Locked)
		if err != nil {
			return fmt.Errorf("insert track: %w", err)
		}
	}
	return nil
}

func insertHistory(ctx context.Context, tx *sql.Tx, projectID, stack string, entries []history.Entry) error {
	for i, e := range entries {
		clipsJSON, err := json.Marshal(e.Clips)
		if err != nil {
			return fmt.Errorf("encode history: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO history (project_id, stack, seq, entry_id, description, total_frames, clips, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			projectID, stack, i, e.ID, e.Description, e.TotalFrames, string(clipsJSON),
			e.Timestamp.UTC().Format(time.RFC3339Nano))
		if err != nil {
			return fmt.Errorf("insert history: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) loadTracks(ctx context.Context, projectID string) ([]model.Track, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, idx, kind, name, muted, visible, locked FROM tracks
		 WHERE project_id = ? ORDER BY idx`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tracks []model.Track
	for rows.Next() {
		var t model.Track
		var kind string
		if err := rows.Scan(&t.ID, &t.Index, &kind, &t.Name, &t.Muted, &t.Visible, &t.Locked); err != nil {
			return nil, err
		}
		t.Kind = model.TrackKind(kind)
		tracks = append(tracks, t)
	}
	return tracks, rows.Err()
}

func (s *SQLiteStore) loadClips(ctx context.Context, projectID string) ([]model.Clip, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source_url, kind, track_index, start_frame, duration_frames,
		        original_duration_frames, source_in_frame, source_out_frame
		 FROM clips WHERE project_id = ? ORDER BY seq`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clips []model.Clip
	for rows.Next() {
		var c model.Clip
		var kind string
		err := rows.Scan(&c.ID, &c.SourceURL, &kind, &c.TrackIndex, &c.StartFrame, &c.DurationFrames,
			&c.OriginalDurationFrames, &c.SourceInFrame, &c.SourceOutFrame)
		if err != nil {
			return nil, err
		}
		c.Kind = model.TrackKind(kind)
		clips = append(clips, c)
	}
	return clips, rows.Err()
}

func (s *SQLiteStore) loadHistory(ctx context.Context, projectID, stack string) ([]history.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT entry_id, description, total_frames, clips, created_at FROM history
		 WHERE project_id = ? AND stack = ? ORDER BY seq`, projectID, stack)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []history.Entry
	for rows.Next() {
		var e history.Entry
		var clipsJSON, createdAt string
		if err := rows.Scan(&e.ID, &e.Description, &e.TotalFrames, &clipsJSON, &createdAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(clipsJSON), &e.Clips); err != nil {
			return nil, fmt.Errorf("decode history %s: %w", e.ID, err)
		}
		e.Timestamp, _ = time.Parse(time.RFC3339Nano, createdAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
