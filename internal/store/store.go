// Package store persists projects, their tracks and clips, and the undo
// history of each project.
package store

import (
	"context"

	"github.com/rcliao/vtimeline/internal/history"
	"github.com/rcliao/vtimeline/internal/model"
)

// CreateParams holds parameters for creating a project.
type CreateParams struct {
	Name   string
	Tracks []model.Track
}

// ListParams holds parameters for listing projects.
type ListParams struct {
	Limit int
}

// Snapshot is a project together with its history stacks.
type Snapshot struct {
	Project model.Project   `json:"project"`
	Undo    []history.Entry `json:"undo,omitempty"`
	Redo    []history.Entry `json:"redo,omitempty"`
}

// Store defines the project storage interface.
type Store interface {
	// CreateProject stores an empty project with the given tracks.
	CreateProject(ctx context.Context, p CreateParams) (*model.Project, error)

	// ResolveProject maps an id or a name to a project id. Names resolve
	// to the most recently updated match.
	ResolveProject(ctx context.Context, ref string) (string, error)

	// LoadProject reads a project with its history.
	LoadProject(ctx context.Context, id string) (*Snapshot, error)

	// SaveProject replaces the stored tracks, clips and history.
	SaveProject(ctx context.Context, s *Snapshot) error

	// ListProjects lists projects without their clips.
	ListProjects(ctx context.Context, p ListParams) ([]model.Project, error)

	// DeleteProject removes a project and everything it owns.
	DeleteProject(ctx context.Context, id string) error

	// Close closes the store.
	Close() error
}
