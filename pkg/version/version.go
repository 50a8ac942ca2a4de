// Package version persists immutable chapter text snapshots. Version 1 is
// implicitly the original chapter file; writers only ever create versions 2
// and up and never touch earlier snapshots.
package version

import (
	"context"
	"time"
)

// Version is one immutable snapshot of a chapter's text.
type Version struct {
	Chapter   int       `json:"chapter"`
	Number    int       `json:"version"`
	Location  string    `json:"location,omitempty"`
	Text      string    `json:"-"`
	Current   bool      `json:"current"`
	CreatedAt time.Time `json:"createdAt"`
}

// Repository abstracts where snapshots live. The reconciler never knows
// which backend is in use.
type Repository interface {
	// Create persists text as the next free version number >= 2 for the
	// chapter and marks it current.
	Create(ctx context.Context, chapter int, text string) (Version, error)
	// ListForChapter returns all stored versions ordered by number.
	ListForChapter(ctx context.Context, chapter int) ([]Version, error)
	// GetCurrent returns the current version, or nil when only the
	// original (implicit version 1) exists.
	GetCurrent(ctx context.Context, chapter int) (*Version, error)
}
