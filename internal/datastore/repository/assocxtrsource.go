package repository

import (
	"context"

	"github.com/transientskp/tkpcat/internal/datastore/entities"
)

// AssociationRepository manages assocxtrsource rows.
type AssociationRepository interface {
	// CreateBatch inserts associations. An empty slice is a no-op.
	CreateBatch(ctx context.Context, rows []entities.AssocXtrSource) error
	// RuncatOf returns the running-catalog id a source is associated with,
	// or 0 and false when the source has no association.
	RuncatOf(ctx context.Context, xtrsrcID int64) (int64, bool, error)
	// Reassign moves every association of one running-catalog entry to another.
	Reassign(ctx context.Context, fromID, intoID int64) (int64, error)
}
