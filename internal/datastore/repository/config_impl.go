package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/transientskp/tkpcat/internal/datastore/entities"
)

// configRepository implements ConfigRepository.
type configRepository struct {
	db *gorm.DB
}

// NewConfigRepository creates a new ConfigRepository.
func NewConfigRepository(db *gorm.DB) ConfigRepository {
	return &configRepository{db: db}
}

func (r *configRepository) tableName() string {
	return tableConfig
}

func (r *configRepository) Replace(ctx context.Context, datasetID int64, rows []entities.Config) error {
	err := r.db.WithContext(ctx).Table(r.tableName()).
		Where("dataset = ?", datasetID).
		Delete(&entities.Config{}).Error
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	for i := range rows {
		rows[i].Dataset = datasetID
	}
	return r.db.WithContext(ctx).Table(r.tableName()).
		CreateInBatches(&rows, defaultBatchSize).Error
}

func (r *configRepository) ListByDataset(ctx context.Context, datasetID int64) ([]entities.Config, error) {
	var rows []entities.Config
	// key is reserved in MySQL, so ordering goes through quoted clause columns
	err := r.db.WithContext(ctx).Table(r.tableName()).
		Where("dataset = ?", datasetID).
		Order(clause.OrderBy{Columns: []clause.OrderByColumn{
			{Column: clause.Column{Name: "section"}},
			{Column: clause.Column{Name: "key"}},
		}}).
		Find(&rows).Error
	return rows, err
}
