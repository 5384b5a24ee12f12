package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned when no row matches the lookup.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert or update hits a unique constraint.
	ErrDuplicate = errors.New("duplicate record")
	// ErrReferenced is returned when a row cannot be removed because other rows point at it.
	ErrReferenced = errors.New("record is referenced")
	// ErrStale is returned when a conditional update found the row already changed.
	ErrStale = errors.New("record was modified concurrently")
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// mapError translates driver errors into repository sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return ErrDuplicate
		case pgForeignKeyViolation:
			return ErrReferenced
		}
	}
	return err
}
