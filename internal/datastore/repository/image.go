package repository

import (
	"context"

	"github.com/transientskp/tkpcat/internal/datastore/entities"
)

// ImageRepository manages images.
type ImageRepository interface {
	// Create inserts an image and fills in its ID.
	Create(ctx context.Context, image *entities.Image) error
	// GetByID returns ErrImageNotFound for an unknown id.
	GetByID(ctx context.Context, id int64) (*entities.Image, error)
	// ListByDataset returns the images of a dataset ordered by start time, then id.
	ListByDataset(ctx context.Context, datasetID int64) ([]entities.Image, error)
}
