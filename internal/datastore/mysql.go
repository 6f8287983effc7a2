package datastore

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// mysqlDialTimeout bounds connection establishment.
const mysqlDialTimeout = 10 * time.Second

// MySQLConfig holds MySQL connection settings.
type MySQLConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Database string
}

// MySQLManager handles the catalog database for MySQL.
type MySQLManager struct {
	baseManager
}

// OpenMySQL connects to the MySQL catalog database.
func OpenMySQL(cfg *MySQLConfig, opts Options) (*MySQLManager, error) {
	// mysql.Config escapes credentials
	driverCfg := mysql.NewConfig()
	driverCfg.User = cfg.Username
	driverCfg.Passwd = cfg.Password
	driverCfg.Net = "tcp"
	driverCfg.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	driverCfg.DBName = cfg.Database
	driverCfg.ParseTime = true
	driverCfg.Loc = time.UTC
	driverCfg.Timeout = mysqlDialTimeout
	driverCfg.Params = map[string]string{"charset": "utf8mb4"}

	gormConfig, log := newGormConfig(opts)
	db, err := gorm.Open(gormmysql.Open(driverCfg.FormatDSN()), gormConfig)
	if err != nil {
		return nil, dbError(err, "open", "", "host", cfg.Host, "database", cfg.Database)
	}

	// Configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying database: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return &MySQLManager{baseManager{
		db:       db,
		dialect:  DialectMySQL,
		location: fmt.Sprintf("%s:%d/%s", cfg.Host, cfg.Port, cfg.Database),
		log:      log,
		metrics:  opts.Metrics,
	}}, nil
}
