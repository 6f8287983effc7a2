package repository

import (
	"context"

	"github.com/transientskp/tkpcat/internal/datastore/entities"
)

// ConfigRepository manages the per-dataset configuration snapshot.
type ConfigRepository interface {
	// Replace deletes the stored configuration of a dataset and inserts rows.
	Replace(ctx context.Context, datasetID int64, rows []entities.Config) error
	// ListByDataset returns the stored configuration ordered by section, then key.
	ListByDataset(ctx context.Context, datasetID int64) ([]entities.Config, error)
}
