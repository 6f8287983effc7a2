package repository

import (
	"context"

	"github.com/transientskp/tkpcat/internal/datastore/entities"
)

// ExtractedSourceRepository manages extracted sources.
type ExtractedSourceRepository interface {
	// CreateBatch inserts all rows and fills in their IDs. An empty slice is a no-op.
	CreateBatch(ctx context.Context, rows []entities.ExtractedSource) error
	// Unassociated returns the sources of an image without an association, ordered by id.
	Unassociated(ctx context.Context, imageID int64) ([]entities.ExtractedSource, error)
	// ListByRuncat returns every source associated with a running-catalog entry, ordered by id.
	ListByRuncat(ctx context.Context, runcatID int64) ([]entities.ExtractedSource, error)
	// ReassignForcedRuncat repoints forced-fit sources from one running-catalog entry to another.
	ReassignForcedRuncat(ctx context.Context, fromID, intoID int64) error
}
