// Package store persists upload records and their accepted column mappings.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/plantmetrics/schemamap/internal/mapping"
)

// ErrNotFound is returned when an upload id does not exist.
var ErrNotFound = errors.New("upload not found")

// Upload is one registered spreadsheet upload and its current mapping state.
type Upload struct {
	ID         uuid.UUID         `json:"id"`
	Filename   string            `json:"filename"`
	Headers    []string          `json:"headers"`
	Tier       int               `json:"tier"`
	Confidence float64           `json:"confidence"`
	Mappings   []mapping.Mapping `json:"mappings"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// Store is the interface for reading and writing upload records.
type Store interface {
	// CreateUpload persists a new upload with its initial auto-mapping.
	CreateUpload(ctx context.Context, u *Upload) error

	// GetUpload returns one upload with its mappings, or ErrNotFound.
	GetUpload(ctx context.Context, id uuid.UUID) (*Upload, error)

	// ListUploads returns uploads ordered by creation time descending.
	ListUploads(ctx context.Context, limit, offset int) ([]*Upload, error)

	// SaveMappings replaces an upload's mappings after user confirmation
	// and records the resulting tier.
	SaveMappings(ctx context.Context, id uuid.UUID, mappings []mapping.Mapping, tier int) error
}
