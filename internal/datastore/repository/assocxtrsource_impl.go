package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/transientskp/tkpcat/internal/datastore/entities"
	"github.com/transientskp/tkpcat/internal/errors"
)

// associationRepository implements AssociationRepository.
type associationRepository struct {
	db *gorm.DB
}

// NewAssociationRepository creates a new AssociationRepository.
func NewAssociationRepository(db *gorm.DB) AssociationRepository {
	return &associationRepository{db: db}
}

func (r *associationRepository) tableName() string {
	return tableAssocXtrSource
}

func (r *associationRepository) CreateBatch(ctx context.Context, rows []entities.AssocXtrSource) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Table(r.tableName()).
		CreateInBatches(&rows, defaultBatchSize).Error
}

func (r *associationRepository) RuncatOf(ctx context.Context, xtrsrcID int64) (int64, bool, error) {
	var assoc entities.AssocXtrSource
	err := r.db.WithContext(ctx).Table(r.tableName()).
		Where("xtrsrc = ?", xtrsrcID).
		First(&assoc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return assoc.Runcat, true, nil
}

func (r *associationRepository) Reassign(ctx context.Context, fromID, intoID int64) (int64, error) {
	result := r.db.WithContext(ctx).Table(r.tableName()).
		Where("runcat = ?", fromID).
		Update("runcat", intoID)
	return result.RowsAffected, result.Error
}
