// Package store provides the session-scoped document collection.
package store

import (
	"context"
	"errors"

	"github.com/metrodocs/kiroku/internal/models"
)

// ErrNotFound is returned when an operation references a non-existent document id.
var ErrNotFound = errors.New("document not found")

// Store defines the document collection operations. Implementations must
// serialize mutations with respect to Snapshot so that a snapshot never
// observes a partially-applied mutation.
type Store interface {
	// Create assigns an id, inserts, and returns the persisted record.
	// Insertion order is preserved for Snapshot iteration.
	Create(ctx context.Context, input *models.DocumentInput) (*models.Document, error)
	// Update merges non-nil fields into the document.
	Update(ctx context.Context, id string, patch *models.DocumentUpdate) (*models.Document, error)
	// Delete removes the document immediately and irreversibly.
	Delete(ctx context.Context, id string) error
	// AddVersion appends to the version history and advances the current
	// version tag and last-modified timestamp.
	AddVersion(ctx context.Context, id string, entry models.VersionEntry) (*models.Document, error)
	// AddComment appends to the comment sequence and bumps last-modified.
	AddComment(ctx context.Context, id string, comment models.Comment) (*models.Document, error)
	// ByID returns a copy of the document.
	ByID(ctx context.Context, id string) (*models.Document, error)
	// Snapshot returns a point-in-time copy of all documents in insertion
	// order. Later mutations do not propagate into a taken snapshot.
	Snapshot(ctx context.Context) ([]*models.Document, error)
	// Count returns the number of stored documents.
	Count(ctx context.Context) (int, error)
}
