package pgstore

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres SQLSTATE codes this adapter treats as retryable races on the
// per-name document, analogous to a document store's duplicate-key error on
// a racing upsert.
const (
	sqlStateUniqueViolation     = "23505"
	sqlStateSerializationFailed = "40001"
	sqlStateDeadlockDetected    = "40P01"
)

func isRetryableConflict(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case sqlStateUniqueViolation, sqlStateSerializationFailed, sqlStateDeadlockDetected:
		return true
	default:
		return false
	}
}
