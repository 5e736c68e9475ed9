package apperror

import (
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation = "23505"
	pgSerialization   = "40001"
	pgDeadlock        = "40P01"
)

// FromPG maps recognizable Postgres driver errors to the taxonomy. Unique
// violations become conflicts (duplicate id, replayed insert); serialization
// and deadlock failures are retryable conflicts too. Anything else is
// returned unchanged.
func FromPG(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		return Wrap(err, CodeConflict, "A conflicting record already exists", http.StatusConflict)
	case pgSerialization, pgDeadlock:
		return Wrap(err, CodeConflict, "Concurrent update detected, retry the request", http.StatusConflict)
	default:
		return err
	}
}
