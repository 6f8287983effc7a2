// Package transfer copies a catalog between two databases, typically from a
// SQLite working catalog into a shared MySQL server. Row ids are preserved,
// so associations, forced-fit references and light curves stay intact.
package transfer

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/transientskp/tkpcat/internal/datastore"
	"github.com/transientskp/tkpcat/internal/datastore/entities"
	"github.com/transientskp/tkpcat/internal/errors"
	"github.com/transientskp/tkpcat/internal/logger"
)

// DefaultBatchSize is used when Options.BatchSize is zero.
const DefaultBatchSize = 1000

// maxBatchSize keeps multi-row inserts below MySQL's placeholder limit for
// the widest table.
const maxBatchSize = 10000

// Options controls a copy.
type Options struct {
	BatchSize int
	// Clean empties the target tables first.
	Clean bool
}

// TableStats counts what happened to one table.
type TableStats struct {
	Table    string        `yaml:"table"`
	Copied   int64         `yaml:"copied"`
	Skipped  int64         `yaml:"skipped"`
	Duration time.Duration `yaml:"duration"`
}

// Stats is the outcome of a Copy.
type Stats struct {
	Tables   []TableStats  `yaml:"tables"`
	Duration time.Duration `yaml:"duration"`
}

// Total returns the number of copied rows over all tables.
func (s *Stats) Total() int64 {
	var n int64
	for _, t := range s.Tables {
		n += t.Copied
	}
	return n
}

// table pairs a table name with its copy function.
type table struct {
	name string
	copy func(ctx context.Context, c *copier) (TableStats, error)
}

// tables lists the catalog in dependency order.
var tables = []table{
	{"dataset", copyTable[entities.Dataset]},
	{"frequencyband", copyTable[entities.FrequencyBand]},
	{"image", copyTable[entities.Image]},
	{"extractedsource", copyTable[entities.ExtractedSource]},
	{"runningcatalog", copyTable[entities.RunningCatalog]},
	{"assocxtrsource", copyTable[entities.AssocXtrSource]},
	{"monitor", copyTable[entities.Monitor]},
	{"rejectreason", copyTable[entities.RejectReason]},
	{"rejection", copyTable[entities.Rejection]},
	{"config", copyTable[entities.Config]},
}

type copier struct {
	source    *gorm.DB
	target    *gorm.DB
	batchSize int
	log       logger.Logger
}

// Copy migrates the target schema and copies every catalog row from source
// into it. Rows whose id already exists in the target are skipped, so an
// interrupted copy can be rerun.
func Copy(ctx context.Context, source, target datastore.Manager, opts Options, log logger.Logger) (*Stats, error) {
	batchSize := opts.BatchSize
	switch {
	case batchSize == 0:
		batchSize = DefaultBatchSize
	case batchSize < 0 || batchSize > maxBatchSize:
		return nil, errors.Newf("batch size %d outside 1..%d", batchSize, maxBatchSize).
			Component("transfer").
			Category(errors.CategoryValidation).
			Build()
	}

	start := time.Now()
	log = log.Module("transfer")

	if err := target.Migrate(ctx); err != nil {
		return nil, err
	}
	if opts.Clean {
		if err := clean(ctx, target); err != nil {
			return nil, err
		}
	}

	c := &copier{
		source:    source.DB().WithContext(ctx),
		target:    target.DB().WithContext(ctx),
		batchSize: batchSize,
		log:       log,
	}

	stats := &Stats{}
	for _, t := range tables {
		ts, err := t.copy(ctx, c)
		if err != nil {
			return stats, errors.New(err).
				Component("transfer").
				Category(errors.CategoryDatabase).
				Context("table", t.name).
				Build()
		}
		stats.Tables = append(stats.Tables, ts)
	}
	stats.Duration = time.Since(start)

	log.Info("catalog copied",
		logger.String("source", source.Path()),
		logger.String("target", target.Path()),
		logger.Int64("rows", stats.Total()),
		logger.Duration("duration", stats.Duration))
	return stats, nil
}

// clean deletes every row of the target. The reject reasons are seeded by
// Migrate and stay.
func clean(ctx context.Context, target datastore.Manager) error {
	return target.Transaction(ctx, "transfer_clean", func(tx *gorm.DB) error {
		for i := len(tables) - 1; i >= 0; i-- {
			name := tables[i].name
			if name == "rejectreason" {
				continue
			}
			if err := tx.Exec(fmt.Sprintf("DELETE FROM %s", name)).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// copyTable copies one table in id order using batched inserts.
func copyTable[T any](ctx context.Context, c *copier) (TableStats, error) {
	start := time.Now()
	var model T
	stmt := &gorm.Statement{DB: c.source}
	if err := stmt.Parse(&model); err != nil {
		return TableStats{}, err
	}
	stats := TableStats{Table: stmt.Table}

	var batch []T
	err := c.source.Model(&model).FindInBatches(&batch, c.batchSize, func(_ *gorm.DB, n int) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		result := c.target.Clauses(clause.OnConflict{DoNothing: true}).Create(&batch)
		if result.Error != nil {
			return result.Error
		}
		stats.Copied += result.RowsAffected
		stats.Skipped += int64(len(batch)) - result.RowsAffected

		c.log.Debug("batch copied",
			logger.String("table", stats.Table),
			logger.Int("batch", n),
			logger.Int("rows", len(batch)))
		return nil
	}).Error
	stats.Duration = time.Since(start)
	return stats, err
}
