package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/transientskp/tkpcat/internal/datastore/entities"
)

// rejectionRepository implements RejectionRepository.
type rejectionRepository struct {
	db *gorm.DB
}

// NewRejectionRepository creates a new RejectionRepository.
func NewRejectionRepository(db *gorm.DB) RejectionRepository {
	return &rejectionRepository{db: db}
}

func (r *rejectionRepository) tableName() string {
	return tableRejection
}

func (r *rejectionRepository) Create(ctx context.Context, rejection *entities.Rejection) error {
	return r.db.WithContext(ctx).Table(r.tableName()).Create(rejection).Error
}

func (r *rejectionRepository) DeleteByImage(ctx context.Context, imageID int64) (int64, error) {
	result := r.db.WithContext(ctx).Table(r.tableName()).
		Where("image = ?", imageID).
		Delete(&entities.Rejection{})
	return result.RowsAffected, result.Error
}

func (r *rejectionRepository) ListByImage(ctx context.Context, imageID int64) ([]RejectionEntry, error) {
	var entries []RejectionEntry
	err := r.db.WithContext(ctx).Table(r.tableName()+" rj").
		Select("rj.id AS id, rj.image AS image, rj.rejectreason AS reason_id, rr.description AS description, rj.comment AS comment").
		Joins("JOIN "+tableRejectReason+" rr ON rr.id = rj.rejectreason").
		Where("rj.image = ?", imageID).
		Order("rj.id").
		Scan(&entries).Error
	return entries, err
}

func (r *rejectionRepository) Reasons(ctx context.Context) ([]entities.RejectReason, error) {
	var reasons []entities.RejectReason
	err := r.db.WithContext(ctx).Table(tableRejectReason).
		Order("id").
		Find(&reasons).Error
	return reasons, err
}
