package repository

import (
	"context"

	"github.com/transientskp/tkpcat/internal/datastore/entities"
	"github.com/transientskp/tkpcat/internal/spatial"
)

// RunningCatalogRepository manages running-catalog sources.
type RunningCatalogRepository interface {
	// Create inserts a source and fills in its ID.
	Create(ctx context.Context, rc *entities.RunningCatalog) error
	// GetByID returns ErrRunningCatalogNotFound for an unknown id. The row is
	// locked for the rest of the transaction when the backend supports it.
	GetByID(ctx context.Context, id int64) (*entities.RunningCatalog, error)
	// Update writes every column of rc.
	Update(ctx context.Context, rc *entities.RunningCatalog) error
	// Delete removes a source.
	Delete(ctx context.Context, id int64) error
	// ExistingIDs returns the subset of ids that exist, in ascending order.
	ExistingIDs(ctx context.Context, ids []int64) ([]int64, error)
	// MaxUncertainty returns the largest weighted-mean positional uncertainty
	// (degrees, either axis) of a dataset, or 0 for an empty catalog.
	MaxUncertainty(ctx context.Context, datasetID int64) (float64, error)
	// Index returns a spatial index over the sources of a dataset.
	Index(datasetID int64) spatial.Index
}
