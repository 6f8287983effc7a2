// Package configstore persists the run configuration of a dataset in the
// config table as (section, key, value, type) rows.
package configstore

import (
	"context"
	"maps"
	"slices"

	"gorm.io/gorm"

	"github.com/transientskp/tkpcat/internal/datastore"
	"github.com/transientskp/tkpcat/internal/datastore/entities"
	"github.com/transientskp/tkpcat/internal/datastore/repository"
	"github.com/transientskp/tkpcat/internal/errors"
	"github.com/transientskp/tkpcat/internal/logger"
	"github.com/transientskp/tkpcat/internal/observability/metrics"
)

// skippedKey is never persisted.
const skippedKey = "password"

// Store reads and writes dataset configurations.
type Store struct {
	store   datastore.Manager
	metrics *metrics.CatalogMetrics
	log     logger.Logger
}

// NewStore creates a Store. metrics may be nil.
func NewStore(store datastore.Manager, m *metrics.CatalogMetrics, log logger.Logger) *Store {
	return &Store{store: store, metrics: m, log: log.Module("configstore")}
}

// StoreConfig saves cfg, a [section][key] mapping, as the configuration of
// a dataset, replacing whatever was stored before. Keys named "password"
// are skipped. A value of unsupported type fails with ErrConfigType before
// anything is written.
func (s *Store) StoreConfig(ctx context.Context, cfg map[string]map[string]any, datasetID int64) error {
	var rows []entities.Config
	for _, section := range slices.Sorted(maps.Keys(cfg)) {
		for _, key := range slices.Sorted(maps.Keys(cfg[section])) {
			if key == skippedKey {
				s.log.Debug("not storing password", logger.String("section", section))
				continue
			}
			v, err := ValueOf(cfg[section][key])
			if err != nil {
				s.log.Error("cannot store configuration value",
					logger.String("section", section),
					logger.String("key", key),
					logger.Error(err))
				return errors.New(err).
					Component("configstore").
					Category(errors.CategoryConfigType).
					Context("section", section).
					Context("key", key).
					Build()
			}
			rows = append(rows, entities.Config{
				Dataset: datasetID,
				Section: section,
				Key:     key,
				Value:   v.Encode(),
				Type:    v.Tag(),
			})
		}
	}

	err := s.store.Transaction(ctx, "store_config", func(tx *gorm.DB) error {
		if _, err := repository.NewDatasetRepository(tx).GetByID(ctx, datasetID); err != nil {
			if errors.Is(err, repository.ErrDatasetNotFound) {
				return errors.New(err).
					Component("configstore").
					Category(errors.CategoryNotFound).
					Context("dataset_id", datasetID).
					Build()
			}
			return err
		}
		return repository.NewConfigRepository(tx).Replace(ctx, datasetID, rows)
	})
	if err != nil {
		return err
	}

	s.metrics.RecordConfigValues("store", len(rows))
	s.log.Info("stored configuration",
		logger.Int64("dataset_id", datasetID),
		logger.Int("values", len(rows)))
	return nil
}

// FetchConfig returns the stored configuration of a dataset. A dataset
// without stored configuration yields an empty mapping. A stored type tag
// outside str, int, float and bool fails with ErrConfigType.
func (s *Store) FetchConfig(ctx context.Context, datasetID int64) (map[string]map[string]Value, error) {
	rows, err := repository.NewConfigRepository(s.store.DB()).ListByDataset(ctx, datasetID)
	if err != nil {
		return nil, errors.New(err).
			Component("configstore").
			Category(errors.CategoryDatabase).
			Context("dataset_id", datasetID).
			Build()
	}

	cfg := make(map[string]map[string]Value)
	for _, row := range rows {
		v, err := Decode(row.Value, row.Type)
		if err != nil {
			s.log.Error("cannot read stored configuration value",
				logger.String("section", row.Section),
				logger.String("key", row.Key),
				logger.Error(err))
			return nil, err
		}
		if cfg[row.Section] == nil {
			cfg[row.Section] = make(map[string]Value)
		}
		cfg[row.Section][row.Key] = v
	}

	s.metrics.RecordConfigValues("fetch", len(rows))
	s.log.Info("fetched configuration",
		logger.Int64("dataset_id", datasetID),
		logger.Int("values", len(rows)))
	return cfg, nil
}

// Native converts a fetched configuration back to plain Go values
// (string, int64, float64 or bool).
func Native(cfg map[string]map[string]Value) map[string]map[string]any {
	out := make(map[string]map[string]any, len(cfg))
	for section, values := range cfg {
		out[section] = make(map[string]any, len(values))
		for key, v := range values {
			out[section][key] = v.Interface()
		}
	}
	return out
}
