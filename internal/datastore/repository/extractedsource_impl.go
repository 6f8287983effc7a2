package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/transientskp/tkpcat/internal/datastore/entities"
)

// extractedSourceRepository implements ExtractedSourceRepository.
type extractedSourceRepository struct {
	db *gorm.DB
}

// NewExtractedSourceRepository creates a new ExtractedSourceRepository.
func NewExtractedSourceRepository(db *gorm.DB) ExtractedSourceRepository {
	return &extractedSourceRepository{db: db}
}

func (r *extractedSourceRepository) tableName() string {
	return tableExtractedSource
}

func (r *extractedSourceRepository) CreateBatch(ctx context.Context, rows []entities.ExtractedSource) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Table(r.tableName()).
		CreateInBatches(&rows, defaultBatchSize).Error
}

func (r *extractedSourceRepository) Unassociated(ctx context.Context, imageID int64) ([]entities.ExtractedSource, error) {
	var rows []entities.ExtractedSource
	err := r.db.WithContext(ctx).Table(r.tableName()).
		Select(tableExtractedSource+".*").
		Joins("LEFT JOIN "+tableAssocXtrSource+" ax ON ax.xtrsrc = "+tableExtractedSource+".id").
		Where(tableExtractedSource+".image = ? AND ax.id IS NULL", imageID).
		Order(tableExtractedSource + ".id").
		Find(&rows).Error
	return rows, err
}

func (r *extractedSourceRepository) ListByRuncat(ctx context.Context, runcatID int64) ([]entities.ExtractedSource, error) {
	var rows []entities.ExtractedSource
	err := r.db.WithContext(ctx).Table(r.tableName()).
		Select(tableExtractedSource+".*").
		Joins("JOIN "+tableAssocXtrSource+" ax ON ax.xtrsrc = "+tableExtractedSource+".id").
		Where("ax.runcat = ?", runcatID).
		Order(tableExtractedSource + ".id").
		Find(&rows).Error
	return rows, err
}

func (r *extractedSourceRepository) ReassignForcedRuncat(ctx context.Context, fromID, intoID int64) error {
	return r.db.WithContext(ctx).Table(r.tableName()).
		Where("ff_runcat = ?", fromID).
		Update("ff_runcat", intoID).Error
}
