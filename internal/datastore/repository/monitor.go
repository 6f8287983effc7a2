package repository

import (
	"context"

	"github.com/transientskp/tkpcat/internal/datastore/entities"
)

// MonitorRepository manages monitor positions.
type MonitorRepository interface {
	// CreateBatch inserts monitor positions and fills in their IDs.
	CreateBatch(ctx context.Context, rows []entities.Monitor) error
	// GetByID returns ErrMonitorNotFound for an unknown id.
	GetByID(ctx context.Context, id int64) (*entities.Monitor, error)
	// ListByDataset returns the monitor positions of a dataset ordered by id.
	ListByDataset(ctx context.Context, datasetID int64) ([]entities.Monitor, error)
	// ExistingIDs returns the subset of ids that exist, in ascending order.
	ExistingIDs(ctx context.Context, ids []int64) ([]int64, error)
	// SetRuncat links a monitor position to its running-catalog entry.
	SetRuncat(ctx context.Context, id, runcatID int64) error
	// ReassignRuncat repoints monitors from one running-catalog entry to another.
	ReassignRuncat(ctx context.Context, fromID, intoID int64) error
}
