package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrFlowNotFound        = errors.New("flow not found")
	ErrFlowAlreadyExists   = errors.New("flow already exists")
	ErrConcurrentUpdate    = errors.New("flow was modified concurrently")
	ErrDatabaseConnection  = errors.New("database connection error")
	ErrInvalidData         = errors.New("invalid data provided")
	ErrConstraintViolation = errors.New("database constraint violation")
)

// RepositoryError records which storage operation failed.
type RepositoryError struct {
	Op  string
	Err error
}

func (e *RepositoryError) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *RepositoryError) Unwrap() error {
	return e.Err
}

func WrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &RepositoryError{Op: op, Err: err}
}

// pgErrors maps SQLSTATE codes to repository sentinels. Codes not listed
// here keep the driver message.
var pgErrors = map[string]error{
	"23505": ErrFlowAlreadyExists,
	"23502": ErrConstraintViolation,
	"23503": ErrConstraintViolation,
	"23514": ErrConstraintViolation,
	"22P02": ErrInvalidData,
	"40001": ErrConcurrentUpdate,
	"40P01": ErrConcurrentUpdate,
	"57P01": ErrDatabaseConnection,
}

func HandlePgxError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		return WrapError(op, ErrFlowNotFound)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return WrapError(op, err)
	}
	if sentinel, ok := pgErrors[pgErr.Code]; ok {
		return WrapError(op, sentinel)
	}
	// class 08 is every connection exception
	if strings.HasPrefix(pgErr.Code, "08") {
		return WrapError(op, ErrDatabaseConnection)
	}
	return WrapError(op, fmt.Errorf("database error [%s]: %s", pgErr.Code, pgErr.Message))
}

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrFlowNotFound)
}

func IsConstraintError(err error) bool {
	return errors.Is(err, ErrConstraintViolation) || errors.Is(err, ErrFlowAlreadyExists)
}

func IsConflictError(err error) bool {
	return errors.Is(err, ErrConcurrentUpdate)
}

func IsConnectionError(err error) bool {
	return errors.Is(err, ErrDatabaseConnection)
}
