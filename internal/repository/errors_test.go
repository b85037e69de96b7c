package repository

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestHandlePgxError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"no rows", pgx.ErrNoRows, ErrFlowNotFound},
		{"unique", &pgconn.PgError{Code: "23505"}, ErrFlowAlreadyExists},
		{"not null", &pgconn.PgError{Code: "23502"}, ErrConstraintViolation},
		{"connection", &pgconn.PgError{Code: "08006"}, ErrDatabaseConnection},
		{"bad text", &pgconn.PgError{Code: "22P02"}, ErrInvalidData},
		{"serialization", &pgconn.PgError{Code: "40001"}, ErrConcurrentUpdate},
		{"admin shutdown", &pgconn.PgError{Code: "57P01"}, ErrDatabaseConnection},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, HandlePgxError("op", tt.err), tt.want)
		})
	}

	assert.Nil(t, HandlePgxError("op", nil))

	other := HandlePgxError("op", &pgconn.PgError{Code: "42P01", Message: "relation missing"})
	assert.Contains(t, other.Error(), "42P01")

	plain := errors.New("boom")
	assert.ErrorIs(t, HandlePgxError("op", plain), plain)
}
