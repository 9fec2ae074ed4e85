package knowledge

import (
	"context"
	"time"
)

// Entry is one distilled past resolution usable as retrieval context.
type Entry struct {
	ID         string    `json:"id"`
	Summary    string    `json:"summary"`
	Resolution string    `json:"resolution"`
	Team       string    `json:"team,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Store persists and retrieves resolution knowledge.
type Store interface {
	Save(ctx context.Context, entry Entry) error
	Search(ctx context.Context, query string, limit int) ([]Entry, error)
	Close() error
}
