package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestToDomainError(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
	}{
		{
			name:       "domain error passes through",
			err:        NewConflict("duplicate", nil),
			wantCode:   "CONFLICT",
			wantStatus: http.StatusConflict,
		},
		{
			name:       "wrapped domain error unwraps",
			err:        fmt.Errorf("context: %w", NewNotFound("order")),
			wantCode:   "NOT_FOUND",
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "no rows maps to 404",
			err:        pgx.ErrNoRows,
			wantCode:   "NOT_FOUND",
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "unique violation maps to 409",
			err:        &pgconn.PgError{Code: "23505"},
			wantCode:   "CONFLICT",
			wantStatus: http.StatusConflict,
		},
		{
			name:       "foreign key violation maps to 409",
			err:        &pgconn.PgError{Code: "23503"},
			wantCode:   "CONFLICT",
			wantStatus: http.StatusConflict,
		},
		{
			name:       "other pg error collapses to 500",
			err:        &pgconn.PgError{Code: "42P01"},
			wantCode:   "INTERNAL_ERROR",
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "unknown error collapses to 500",
			err:        errors.New("boom"),
			wantCode:   "INTERNAL_ERROR",
			wantStatus: http.StatusInternalServerError,
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := ToDomainError(tc.err)
			require.Equal(t, tc.wantCode, got.Code)
			require.Equal(t, tc.wantStatus, got.HTTPStatus)
		})
	}
}

func TestToDomainError_Nil(t *testing.T) {
	t.Parallel()

	require.Nil(t, ToDomainError(nil))
}

func TestConstraintViolationHelpers(t *testing.T) {
	t.Parallel()

	unique := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	require.True(t, IsUniqueViolation(unique))
	require.False(t, IsForeignKeyViolation(unique))

	fk := fmt.Errorf("delete: %w", &pgconn.PgError{Code: "23503"})
	require.True(t, IsForeignKeyViolation(fk))
	require.False(t, IsUniqueViolation(fk))

	require.False(t, IsUniqueViolation(errors.New("boom")))
}

func TestIsNotFound(t *testing.T) {
	t.Parallel()

	require.True(t, IsNotFound(pgx.ErrNoRows))
	require.True(t, IsNotFound(NewNotFound("user")))
	require.False(t, IsNotFound(NewConflict("duplicate", nil)))
}
