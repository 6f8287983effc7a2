// Package datastore opens the catalog database and runs catalog transactions.
//
// Two backends are supported: SQLite for single-host processing and tests,
// MySQL for shared deployments. Both hand out the same Manager; repositories
// and catalog services only ever see *gorm.DB handles passed into
// Transaction callbacks.
package datastore

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/transientskp/tkpcat/internal/conf"
	"github.com/transientskp/tkpcat/internal/datastore/entities"
	"github.com/transientskp/tkpcat/internal/logger"
	"github.com/transientskp/tkpcat/internal/observability/metrics"
)

// Dialect identifies the SQL backend behind a Manager.
type Dialect string

const (
	DialectSQLite Dialect = "sqlite"
	DialectMySQL  Dialect = "mysql"
)

// SupportsRowLocks reports whether SELECT ... FOR UPDATE is available.
// SQLite serializes writers on the database file instead.
func (d Dialect) SupportsRowLocks() bool {
	return d == DialectMySQL
}

// defaultSlowQueryThreshold is used when Options.SlowThreshold is zero.
const defaultSlowQueryThreshold = 200 * time.Millisecond

// Manager defines the interface for catalog database operations.
type Manager interface {
	// Migrate creates the schema and seeds the reject reasons.
	Migrate(ctx context.Context) error
	// DB returns the underlying GORM database.
	DB() *gorm.DB
	// Transaction runs fn in one database transaction. Any error rolls the
	// transaction back; storage failures are returned as CategoryDatabase.
	Transaction(ctx context.Context, operation string, fn func(tx *gorm.DB) error) error
	// Dialect returns the SQL backend.
	Dialect() Dialect
	// Path returns the database location (file path for SQLite, host:port/name for MySQL).
	Path() string
	// Close closes the database connection.
	Close() error
}

// Options configures logging and metrics of a Manager. All fields are optional.
type Options struct {
	Logger        logger.Logger
	Metrics       *metrics.DatastoreMetrics
	SlowThreshold time.Duration
}

// Open opens the backend selected in cfg.
func Open(cfg *conf.DatabaseConfig, opts Options) (Manager, error) {
	switch cfg.Type {
	case conf.DatabaseSQLite:
		m, err := OpenSQLite(cfg.Path, opts)
		if err != nil {
			return nil, err
		}
		return m, nil
	case conf.DatabaseMySQL:
		m, err := OpenMySQL(&MySQLConfig{
			Host:     cfg.Host,
			Port:     cfg.Port,
			Username: cfg.User,
			Password: cfg.Password,
			Database: cfg.Name,
		}, opts)
		if err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, validationError("unsupported database type", "database.type", cfg.Type)
	}
}

// baseManager holds what both backends share.
type baseManager struct {
	db       *gorm.DB
	dialect  Dialect
	location string
	log      logger.Logger
	metrics  *metrics.DatastoreMetrics
}

func newGormConfig(opts Options) (*gorm.Config, logger.Logger) {
	log := opts.Logger
	if log == nil {
		log = logger.NewSlogLogger(nil, logger.LogLevelInfo, nil)
	}
	log = log.Module("datastore")

	threshold := opts.SlowThreshold
	if threshold == 0 {
		threshold = defaultSlowQueryThreshold
	}

	var observer logger.QueryObserver
	if opts.Metrics != nil {
		observer = &metricsObserver{metrics: opts.Metrics}
	}

	return &gorm.Config{
		Logger: logger.NewGormLoggerAdapter(log, threshold, observer),
	}, log
}

// Migrate creates the schema and seeds the reject reasons.
func (m *baseManager) Migrate(ctx context.Context) error {
	db := m.db.WithContext(ctx)
	if err := db.AutoMigrate(entities.All()...); err != nil {
		return dbError(err, "migrate", "", "dialect", string(m.dialect))
	}

	// FirstOrCreate keeps seeding idempotent across restarts
	for _, reason := range entities.RejectReasons {
		row := reason
		if err := db.Where("id = ?", row.ID).FirstOrCreate(&row).Error; err != nil {
			return dbError(err, "seed_reject_reasons", "", "reason_id", reason.ID)
		}
	}

	m.log.Info("catalog schema ready",
		logger.String("dialect", string(m.dialect)),
		logger.String("location", m.location))
	return nil
}

// DB returns the underlying GORM database.
func (m *baseManager) DB() *gorm.DB {
	return m.db
}

// Transaction runs fn inside one database transaction.
func (m *baseManager) Transaction(ctx context.Context, operation string, fn func(tx *gorm.DB) error) error {
	start := time.Now()
	err := m.db.WithContext(ctx).Transaction(fn)

	status := metrics.StatusSuccess
	if err != nil {
		status = metrics.StatusError
	}
	if m.metrics != nil {
		m.metrics.RecordTransaction(operation, status, time.Since(start).Seconds())
	}

	if err != nil {
		m.log.Debug("transaction rolled back",
			logger.String("operation", operation),
			logger.Duration("elapsed", time.Since(start)),
			logger.Error(err))
		return transactionError(ctx, err, operation)
	}
	return nil
}

// Dialect returns the SQL backend.
func (m *baseManager) Dialect() Dialect {
	return m.dialect
}

// Path returns the database location.
func (m *baseManager) Path() string {
	return m.location
}

// Close closes the database connection.
func (m *baseManager) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying database: %w", err)
	}
	return sqlDB.Close()
}
