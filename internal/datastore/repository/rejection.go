package repository

import (
	"context"

	"github.com/transientskp/tkpcat/internal/datastore/entities"
)

// RejectionEntry is a rejection joined with its reason description.
type RejectionEntry struct {
	ID          int64  `gorm:"column:id"`
	Image       int64  `gorm:"column:image"`
	ReasonID    int64  `gorm:"column:reason_id"`
	Description string `gorm:"column:description"`
	Comment     string `gorm:"column:comment"`
}

// RejectionRepository manages image rejections.
type RejectionRepository interface {
	// Create inserts a rejection.
	Create(ctx context.Context, rejection *entities.Rejection) error
	// DeleteByImage removes every rejection of an image and returns how many were removed.
	DeleteByImage(ctx context.Context, imageID int64) (int64, error)
	// ListByImage returns the rejections of an image ordered by id.
	ListByImage(ctx context.Context, imageID int64) ([]RejectionEntry, error)
	// Reasons returns the seeded reject reasons ordered by id.
	Reasons(ctx context.Context) ([]entities.RejectReason, error)
}
