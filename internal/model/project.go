package model

import "time"

// Project is a saved composition: its lanes and the clips on them.
type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Tracks    []Track   `json:"tracks"`
	Clips     []Clip    `json:"clips"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TotalFrames is the project's composition length.
func (p Project) TotalFrames() int {
	return TotalFrames(p.Clips)
}
