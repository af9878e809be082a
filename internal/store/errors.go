package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
)

var ErrNotFound = errors.New("submission not found")

// Kind groups database failures by what the caller can do about them.
type Kind int

const (
	KindUnknown Kind = iota
	// KindSchemaMismatch means the table or one of the columns does not exist.
	KindSchemaMismatch
	KindConstraintViolation
	KindPermission
	KindConnectivity
)

func (k Kind) String() string {
	switch k {
	case KindSchemaMismatch:
		return "schema_mismatch"
	case KindConstraintViolation:
		return "constraint_violation"
	case KindPermission:
		return "permission"
	case KindConnectivity:
		return "connectivity"
	default:
		return "unknown"
	}
}

// Error is returned by every Store operation that reaches the database.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return "store: " + e.Op + " (" + e.Kind.String() + "): " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind recorded on a *Error, classifying err otherwise.
func KindOf(err error) Kind {
	var storeErr *Error
	if errors.As(err, &storeErr) {
		return storeErr.Kind
	}
	return Classify(err)
}

// MySQL server error numbers.
const (
	mysqlBadFieldError      = 1054
	mysqlNoSuchTable        = 1146
	mysqlBadNull            = 1048
	mysqlDupEntry           = 1062
	mysqlNoDefaultForField  = 1364
	mysqlRowIsReferenced    = 1451
	mysqlNoReferencedRow    = 1452
	mysqlCheckConstraint    = 3819
	mysqlDBAccessDenied     = 1044
	mysqlAccessDenied       = 1045
	mysqlTableAccessDenied  = 1142
	mysqlColumnAccessDenied = 1143
)

// Classify maps a driver error onto a Kind using the driver's structured
// error codes.
func Classify(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case mysqlBadFieldError, mysqlNoSuchTable:
			return KindSchemaMismatch
		case mysqlBadNull, mysqlDupEntry, mysqlNoDefaultForField, mysqlRowIsReferenced, mysqlNoReferencedRow, mysqlCheckConstraint:
			return KindConstraintViolation
		case mysqlDBAccessDenied, mysqlAccessDenied, mysqlTableAccessDenied, mysqlColumnAccessDenied:
			return KindPermission
		}
		return KindUnknown
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case pqErr.Code == "42703" || pqErr.Code == "42P01":
			return KindSchemaMismatch
		case pqErr.Code.Class() == "23":
			return KindConstraintViolation
		case pqErr.Code == "42501" || pqErr.Code.Class() == "28":
			return KindPermission
		case pqErr.Code.Class() == "08":
			return KindConnectivity
		}
		return KindUnknown
	}

	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, mysql.ErrInvalidConn) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) {
		return KindConnectivity
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindConnectivity
	}
	return KindUnknown
}
