package db

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL SQLSTATE codes the document backend reacts to.
const (
	codeUniqueViolation = "23505"
	codeUndefinedTable  = "42P01"
)

// ErrNotMigrated is returned when the document tables are missing.
var ErrNotMigrated = errors.New("document tables missing, run the migrations")

func sqlState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsUniqueViolation reports whether err is a unique constraint violation,
// which NewDocumentStore treats as "the document row already exists".
func IsUniqueViolation(err error) bool {
	return sqlState(err) == codeUniqueViolation
}

// IsUndefinedTable reports whether err names a table that does not exist.
func IsUndefinedTable(err error) bool {
	return sqlState(err) == codeUndefinedTable
}

// documentErr wraps a query failure for op, mapping a missing table to ErrNotMigrated.
func documentErr(op string, err error) error {
	if IsUndefinedTable(err) {
		return fmt.Errorf("failed to %s document: %w", op, ErrNotMigrated)
	}
	return fmt.Errorf("failed to %s document: %w", op, err)
}
