package repositories

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes the repositories translate into their own errors.
const (
	pgUndefinedTable  = "42P01"
	pgUniqueViolation = "23505"
)

// isUndefinedTable reports a query against a table that was never created,
// which the audit log reads as empty.
func isUndefinedTable(err error) bool {
	return hasPgCode(err, pgUndefinedTable)
}

// isUniqueViolation reports a duplicate conversion id.
func isUniqueViolation(err error) bool {
	return hasPgCode(err, pgUniqueViolation)
}

func hasPgCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
