package repository

import (
	"context"
	"time"

	"github.com/transientskp/tkpcat/internal/datastore/entities"
)

// DatasetRepository manages processing datasets.
type DatasetRepository interface {
	// Create inserts a dataset and fills in its ID.
	Create(ctx context.Context, dataset *entities.Dataset) error
	// GetByID returns ErrDatasetNotFound for an unknown id.
	GetByID(ctx context.Context, id int64) (*entities.Dataset, error)
	// MarkComplete records the processing end time.
	MarkComplete(ctx context.Context, id int64, end time.Time) error
	// NextRerun returns the rerun number for a new dataset with this description.
	NextRerun(ctx context.Context, description string) (int, error)
}
