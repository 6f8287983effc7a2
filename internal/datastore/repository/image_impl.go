package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/transientskp/tkpcat/internal/datastore/entities"
	"github.com/transientskp/tkpcat/internal/errors"
)

// imageRepository implements ImageRepository.
type imageRepository struct {
	db *gorm.DB
}

// NewImageRepository creates a new ImageRepository.
func NewImageRepository(db *gorm.DB) ImageRepository {
	return &imageRepository{db: db}
}

func (r *imageRepository) tableName() string {
	return tableImage
}

func (r *imageRepository) Create(ctx context.Context, image *entities.Image) error {
	return r.db.WithContext(ctx).Table(r.tableName()).Create(image).Error
}

func (r *imageRepository) GetByID(ctx context.Context, id int64) (*entities.Image, error) {
	var image entities.Image
	err := r.db.WithContext(ctx).Table(r.tableName()).
		Where("id = ?", id).
		First(&image).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrImageNotFound
	}
	if err != nil {
		return nil, err
	}
	return &image, nil
}

func (r *imageRepository) ListByDataset(ctx context.Context, datasetID int64) ([]entities.Image, error) {
	var images []entities.Image
	err := r.db.WithContext(ctx).Table(r.tableName()).
		Where("dataset = ?", datasetID).
		Order("taustart_ts, id").
		Find(&images).Error
	return images, err
}
