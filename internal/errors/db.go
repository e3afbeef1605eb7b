package errors

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// MapDBError maps database errors to AppError instances:
// - pgx.ErrNoRows → NotFound
// - context deadline / cancellation → Database (the caller gave up mid-query)
// - recognized Postgres errors → Database with a classified internal message
// Unrecognized errors pass through unchanged.
func MapDBError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &AppError{Code: ErrCodeDatabase, Message: "database operation interrupted", Cause: err}
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return &AppError{Code: ErrCodeNotFound, Message: "resource not found", Cause: err}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return mapPgError(pgErr)
	}

	return err
}

// mapPgError classifies Postgres errors. Every class lands on ErrCodeDatabase;
// the classified message is for logs only and never reaches API clients.
func mapPgError(pgErr *pgconn.PgError) error {
	var message string
	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		message = "duplicate row violates a unique constraint"
	case pgerrcode.ForeignKeyViolation:
		message = "referenced row does not exist"
	case pgerrcode.CheckViolation, pgerrcode.NotNullViolation:
		message = "row violates a schema constraint"
	case pgerrcode.InvalidTextRepresentation:
		message = "value has an invalid representation for its column type"
	default:
		message = "database error"
	}
	return &AppError{Code: ErrCodeDatabase, Message: message, Cause: pgErr}
}
