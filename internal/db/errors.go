package db

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

var (
	ErrNotFound            = errors.New("db: record not found")
	ErrDuplicateKey        = errors.New("db: duplicate key")
	ErrForeignKeyViolation = errors.New("db: foreign key violation")
)

// Error keeps the driver error next to the sentinel it was classified as.
type Error struct {
	Sentinel error
	Cause    error
}

func (e *Error) Error() string { return e.Sentinel.Error() + ": " + e.Cause.Error() }

func (e *Error) Is(target error) bool { return target == e.Sentinel }

func (e *Error) Unwrap() error { return e.Cause }

// MapError classifies driver errors into the package sentinels. Errors it
// does not recognise are returned unchanged.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return &Error{Sentinel: ErrNotFound, Cause: err}
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		switch liteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return &Error{Sentinel: ErrDuplicateKey, Cause: err}
		case sqlite3.ErrConstraintForeignKey:
			return &Error{Sentinel: ErrForeignKeyViolation, Cause: err}
		}
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return &Error{Sentinel: ErrDuplicateKey, Cause: err}
		case "23503":
			return &Error{Sentinel: ErrForeignKeyViolation, Cause: err}
		}
	}
	return err
}
