package store

import (
	"context"
	"os"
)

// Stats holds database statistics.
type Stats struct {
	DBPath         string         `json:"db_path"`
	DBSizeBytes    int64          `json:"db_size_bytes"`
	TotalProjects  int            `json:"total_projects"`
	TotalClips     int            `json:"total_clips"`
	TotalTracks    int            `json:"total_tracks"`
	HistoryEntries int            `json:"history_entries"`
	Projects       []ProjectStats `json:"projects"`
}

// ProjectStats holds per-project counts.
type ProjectStats struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Clips       int    `json:"clips"`
	Sources     int    `json:"sources"`
	TotalFrames int    `json:"total_frames"`
}

// Stats returns database statistics.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{DBPath: dbPath}

	// DB file size
	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects`).Scan(&st.TotalProjects)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM clips`).Scan(&st.TotalClips)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tracks`).Scan(&st.TotalTracks)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM history`).Scan(&st.HistoryEntries)

	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.name, COUNT(c.id), COUNT(DISTINCT c.source_url),
		       COALESCE(MAX(c.start_frame + c.duration_frames), 0)
		FROM projects p LEFT JOIN clips c ON c.project_id = p.id
		GROUP BY p.id ORDER BY p.updated_at DESC`)
	if err != nil {
		return st, err
	}
	defer rows.Close()

	for rows.Next() {
		var ps ProjectStats
		rows.Scan(&ps.ID, &ps.Name, &ps.Clips, &ps.Sources, &ps.TotalFrames)
		st.Projects = append(st.Projects, ps)
	}

	return st, nil
}
