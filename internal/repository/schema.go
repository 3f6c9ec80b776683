package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	appErrors "github.com/mingshu/tutor-api/pkg/errors"
)

// Postgres error codes that indicate the expected tables or columns
// have not been migrated yet.
const (
	pgUndefinedTable  = "42P01"
	pgUndefinedColumn = "42703"
)

// isMissingSchema reports whether err comes from querying a table or
// column that the current database does not have.
func isMissingSchema(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pgUndefinedTable || string(pqErr.Code) == pgUndefinedColumn
	}
	return strings.Contains(strings.ToLower(err.Error()), "does not exist")
}

// storeErr wraps a database failure, translating missing-schema
// conditions into the typed error callers can surface as 503.
func storeErr(op string, err error) error {
	if isMissingSchema(err) {
		return appErrors.Wrap(err, appErrors.ErrMissingSchema.Code, appErrors.ErrMissingSchema.Status, appErrors.ErrMissingSchema.Message)
	}
	return fmt.Errorf("%s: %w", op, err)
}
