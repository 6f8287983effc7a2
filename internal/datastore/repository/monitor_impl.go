package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/transientskp/tkpcat/internal/datastore/entities"
	"github.com/transientskp/tkpcat/internal/errors"
)

// monitorRepository implements MonitorRepository.
type monitorRepository struct {
	db *gorm.DB
}

// NewMonitorRepository creates a new MonitorRepository.
func NewMonitorRepository(db *gorm.DB) MonitorRepository {
	return &monitorRepository{db: db}
}

func (r *monitorRepository) tableName() string {
	return tableMonitor
}

func (r *monitorRepository) CreateBatch(ctx context.Context, rows []entities.Monitor) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Table(r.tableName()).
		CreateInBatches(&rows, defaultBatchSize).Error
}

func (r *monitorRepository) GetByID(ctx context.Context, id int64) (*entities.Monitor, error) {
	var monitor entities.Monitor
	err := r.db.WithContext(ctx).Table(r.tableName()).
		Where("id = ?", id).
		First(&monitor).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMonitorNotFound
	}
	if err != nil {
		return nil, err
	}
	return &monitor, nil
}

func (r *monitorRepository) ListByDataset(ctx context.Context, datasetID int64) ([]entities.Monitor, error) {
	var monitors []entities.Monitor
	err := r.db.WithContext(ctx).Table(r.tableName()).
		Where("dataset = ?", datasetID).
		Order("id").
		Find(&monitors).Error
	return monitors, err
}

func (r *monitorRepository) ExistingIDs(ctx context.Context, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var found []int64
	err := r.db.WithContext(ctx).Table(r.tableName()).
		Where("id IN ?", ids).
		Order("id").
		Pluck("id", &found).Error
	return found, err
}

func (r *monitorRepository) SetRuncat(ctx context.Context, id, runcatID int64) error {
	result := r.db.WithContext(ctx).Table(r.tableName()).
		Where("id = ?", id).
		Update("runcat", runcatID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMonitorNotFound
	}
	return nil
}

func (r *monitorRepository) ReassignRuncat(ctx context.Context, fromID, intoID int64) error {
	return r.db.WithContext(ctx).Table(r.tableName()).
		Where("runcat = ?", fromID).
		Update("runcat", intoID).Error
}
