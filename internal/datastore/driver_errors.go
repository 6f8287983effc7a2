package datastore

import (
	"github.com/go-sql-driver/mysql"
	"github.com/mattn/go-sqlite3"

	"github.com/transientskp/tkpcat/internal/errors"
)

// MySQL server error numbers
const (
	mysqlErrDuplicateEntry   = 1062
	mysqlErrNullViolation    = 1048
	mysqlErrLockWaitTimeout  = 1205
	mysqlErrDeadlock         = 1213
	mysqlErrRowIsReferenced  = 1451
	mysqlErrNoReferencedRow  = 1452
	mysqlErrNoSuchTable      = 1146
	mysqlErrParse            = 1064
	mysqlErrServerGoneAway   = 2006
	mysqlErrServerLostDuring = 2013
)

// driverErrorCategory maps typed driver errors to metric categories.
// ok is false when err carries no driver error.
func driverErrorCategory(err error) (category string, ok bool) {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteCategory(sqliteErr), true
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlCategory(mysqlErr.Number), true
	}
	return "", false
}

func sqliteCategory(err sqlite3.Error) string {
	switch err.ExtendedCode {
	case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
		return "constraint_violation"
	case sqlite3.ErrConstraintForeignKey:
		return "foreign_key_violation"
	case sqlite3.ErrConstraintNotNull:
		return "null_violation"
	}

	switch err.Code {
	case sqlite3.ErrBusy, sqlite3.ErrLocked:
		return "database_locked"
	case sqlite3.ErrConstraint:
		return "constraint_violation"
	case sqlite3.ErrCantOpen:
		return "connection_error"
	default:
		return "other"
	}
}

func mysqlCategory(number uint16) string {
	switch number {
	case mysqlErrDuplicateEntry:
		return "constraint_violation"
	case mysqlErrDeadlock:
		return "deadlock"
	case mysqlErrRowIsReferenced, mysqlErrNoReferencedRow:
		return "foreign_key_violation"
	case mysqlErrNullViolation:
		return "null_violation"
	case mysqlErrLockWaitTimeout:
		return "timeout"
	case mysqlErrNoSuchTable:
		return "missing_table"
	case mysqlErrParse:
		return "syntax_error"
	case mysqlErrServerGoneAway, mysqlErrServerLostDuring:
		return "connection_error"
	default:
		return "other"
	}
}
