package repository

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"

	"github.com/transientskp/tkpcat/internal/datastore/entities"
	"github.com/transientskp/tkpcat/internal/errors"
)

// datasetRepository implements DatasetRepository.
type datasetRepository struct {
	db *gorm.DB
}

// NewDatasetRepository creates a new DatasetRepository.
func NewDatasetRepository(db *gorm.DB) DatasetRepository {
	return &datasetRepository{db: db}
}

func (r *datasetRepository) tableName() string {
	return tableDataset
}

func (r *datasetRepository) Create(ctx context.Context, dataset *entities.Dataset) error {
	return r.db.WithContext(ctx).Table(r.tableName()).Create(dataset).Error
}

func (r *datasetRepository) GetByID(ctx context.Context, id int64) (*entities.Dataset, error) {
	var dataset entities.Dataset
	err := r.db.WithContext(ctx).Table(r.tableName()).
		Where("id = ?", id).
		First(&dataset).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDatasetNotFound
	}
	if err != nil {
		return nil, err
	}
	return &dataset, nil
}

func (r *datasetRepository) MarkComplete(ctx context.Context, id int64, end time.Time) error {
	result := r.db.WithContext(ctx).Table(r.tableName()).
		Where("id = ?", id).
		Update("process_end_ts", end)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrDatasetNotFound
	}
	return nil
}

func (r *datasetRepository) NextRerun(ctx context.Context, description string) (int, error) {
	var maxRerun sql.NullInt64
	err := r.db.WithContext(ctx).Table(r.tableName()).
		Select("MAX(rerun)").
		Where("description = ?", description).
		Row().Scan(&maxRerun)
	if err != nil {
		return 0, err
	}
	if !maxRerun.Valid {
		return 0, nil
	}
	return int(maxRerun.Int64) + 1, nil
}
