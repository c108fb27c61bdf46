// internal/storage/errors.go
package storage

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/mattn/go-sqlite3"
)

// Specific errors for storage operations
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserExists        = errors.New("user name already exists")
	ErrDataSetNotFound   = errors.New("data set not found")
	ErrCommentNotFound   = errors.New("comment not found")
	ErrUnknownCommentKey = errors.New("unknown comment kind")
	ErrNoSequences       = errors.New("no sequences given")
	ErrNotOwner          = errors.New("data set belongs to another user")
)

// QueryError carries the diagnostic of a failed statement as reported by the
// database: the driver error number and message, plus the statement text.
type QueryError struct {
	Code    int
	Message string
	SQL     string
	Err     error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query failed (%d): %s", e.Code, e.Message)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// asQueryError converts a driver error into a *QueryError.
func asQueryError(err error, query string) *QueryError {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return &QueryError{Code: int(myErr.Number), Message: myErr.Message, SQL: query, Err: err}
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return &QueryError{Code: int(liteErr.ExtendedCode), Message: liteErr.Error(), SQL: query, Err: err}
	}
	return &QueryError{Message: err.Error(), SQL: query, Err: err}
}

func isUniqueViolation(err error) bool {
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code == sqlite3.ErrConstraint && liteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == 1062
}
