package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation signals a malformed value object (bad price range, empty
	// required string, inconsistent derived fields).
	ErrValidation = errors.New("validation failed")
	// ErrExtractionFailed signals that constraint extraction produced nothing
	// and the regex fallback was disabled.
	ErrExtractionFailed = errors.New("query extraction failed")
	// ErrEmbeddingProvider signals an embedding provider failure.
	ErrEmbeddingProvider = errors.New("embedding provider error")
	// ErrQueryExecution signals a datastore failure while running the search query.
	ErrQueryExecution = errors.New("query execution failed")
)

// maxSQLInError limits how much SQL text a QueryExecutionError carries.
const maxSQLInError = 200

// QueryExecutionError wraps a datastore failure with truncated SQL and the
// parameter count. Parameter values are never included.
type QueryExecutionError struct {
	SQL        string
	ParamCount int
	Err        error
}

func (e *QueryExecutionError) Error() string {
	return fmt.Sprintf("%s: %v (sql: %s, params: %d)",
		ErrQueryExecution.Error(), e.Err, e.SQL, e.ParamCount)
}

func (e *QueryExecutionError) Unwrap() error { return ErrQueryExecution }

// NewQueryExecutionError creates a QueryExecutionError, truncating the SQL text.
func NewQueryExecutionError(sql string, paramCount int, err error) error {
	if len(sql) > maxSQLInError {
		sql = sql[:maxSQLInError] + "..."
	}
	return &QueryExecutionError{SQL: sql, ParamCount: paramCount, Err: err}
}
