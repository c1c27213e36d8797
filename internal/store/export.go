package store

import (
	"context"
	"fmt"

	"github.com/rcliao/vtimeline/internal/model"
)

// DocumentVersion is the current export format version.
const DocumentVersion = 1

// Document is the portable form of a project produced by Export.
type Document struct {
	Version int `json:"version"`
	Snapshot
}

// Export returns the project with id and its history as a Document.
func (s *SQLiteStore) Export(ctx context.Context, id string) (*Document, error) {
	snap, err := s.LoadProject(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Document{Version: DocumentVersion, Snapshot: *snap}, nil
}

// Import stores doc as a new project and returns it. The project gets a
// fresh id; its name, tracks, clips and history are kept.
func (s *SQLiteStore) Import(ctx context.Context, doc *Document) (*model.Project, error) {
	if doc.Version != DocumentVersion {
		return nil, fmt.Errorf("unsupported document version %d", doc.Version)
	}
	if err := model.ValidateClips(doc.Project.Clips); err != nil {
		return nil, fmt.Errorf("import: %w", err)
	}

	proj, err := s.CreateProject(ctx, CreateParams{Name: doc.Project.Name})
	if err != nil {
		return nil, err
	}
	proj.Tracks = model.CloneTracks(doc.Project.Tracks)
	proj.Clips = model.CloneClips(doc.Project.Clips)

	snap := &Snapshot{Project: *proj, Undo: doc.Undo, Redo: doc.Redo}
	if err := s.SaveProject(ctx, snap); err != nil {
		s.DeleteProject(ctx, proj.ID)
		return nil, fmt.Errorf("import: %w", err)
	}
	return &snap.Project, nil
}
