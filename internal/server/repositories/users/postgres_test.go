package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userColumns = []string{"id", "email", "password_hash", "name", "is_active", "roles", "created_at"}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok, "expected oops error, got %T", err)
	assert.Equal(t, code, oopsErr.Code())
}

func sampleUser() *models.User {
	return &models.User{
		ID:           "u-1",
		Email:        "a@x.com",
		PasswordHash: "$2a$04$hash",
		Name:         "Alice",
		IsActive:     true,
		Roles:        []string{"user"},
		CreatedAt:    time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC),
	}
}

func userRow(u *models.User) *pgxmock.Rows {
	return pgxmock.NewRows(userColumns).
		AddRow(u.ID, u.Email, u.PasswordHash, u.Name, u.IsActive, u.Roles, u.CreatedAt)
}

func TestPostgresRepository_Insert(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface, u *models.User)
		wantErr   error
		wantCode  string
	}{
		{
			name: "success",
			setupMock: func(mock pgxmock.PgxPoolIface, u *models.User) {
				mock.ExpectQuery(`INSERT INTO users`).
					WithArgs(u.ID, u.Email, u.PasswordHash, u.Name, u.IsActive, u.Roles, u.CreatedAt).
					WillReturnRows(userRow(u))
			},
		},
		{
			name: "unique violation",
			setupMock: func(mock pgxmock.PgxPoolIface, u *models.User) {
				mock.ExpectQuery(`INSERT INTO users`).
					WithArgs(u.ID, u.Email, u.PasswordHash, u.Name, u.IsActive, u.Roles, u.CreatedAt).
					WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_email_key"})
			},
			wantErr:  common.ErrConflict,
			wantCode: "USER_CONFLICT",
		},
		{
			name: "other database error",
			setupMock: func(mock pgxmock.PgxPoolIface, u *models.User) {
				mock.ExpectQuery(`INSERT INTO users`).
					WithArgs(u.ID, u.Email, u.PasswordHash, u.Name, u.IsActive, u.Roles, u.CreatedAt).
					WillReturnError(errors.New("connection refused"))
			},
			wantCode: "USER_INSERT_FAILED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			u := sampleUser()
			tt.setupMock(mock, u)

			got, err := NewPostgresRepository(mock).Insert(context.Background(), u)
			if tt.wantCode != "" {
				require.Error(t, err)
				assertCode(t, err, tt.wantCode)
				if tt.wantErr != nil {
					assert.ErrorIs(t, err, tt.wantErr)
				} else {
					assert.False(t, errors.Is(err, common.ErrConflict))
				}
			} else {
				require.NoError(t, err)
				assert.Equal(t, u, got)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgresRepository_FindByEmail(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	u := sampleUser()
	mock.ExpectQuery(`SELECT .+ FROM users WHERE email = \$1`).
		WithArgs("a@x.com").
		WillReturnRows(userRow(u))
	mock.ExpectQuery(`SELECT .+ FROM users WHERE email = \$1`).
		WithArgs("ghost@x.com").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(`SELECT .+ FROM users WHERE email = \$1`).
		WithArgs("a@x.com").
		WillReturnError(errors.New("timeout"))

	repo := NewPostgresRepository(mock)

	got, err := repo.FindByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, u, got)

	_, err = repo.FindByEmail(context.Background(), "ghost@x.com")
	assert.ErrorIs(t, err, common.ErrNotFound)
	assertCode(t, err, "USER_NOT_FOUND")

	_, err = repo.FindByEmail(context.Background(), "a@x.com")
	require.Error(t, err)
	assert.False(t, errors.Is(err, common.ErrNotFound))
	assertCode(t, err, "USER_GET_BY_EMAIL_FAILED")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_FindByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	u := sampleUser()
	mock.ExpectQuery(`SELECT .+ FROM users WHERE id = \$1`).
		WithArgs("u-1").
		WillReturnRows(userRow(u))
	mock.ExpectQuery(`SELECT .+ FROM users WHERE id = \$1`).
		WithArgs("nope").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(`SELECT .+ FROM users WHERE id = \$1`).
		WithArgs("u-1").
		WillReturnError(errors.New("broken pipe"))

	repo := NewPostgresRepository(mock)

	got, err := repo.FindByID(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, u, got)

	_, err = repo.FindByID(context.Background(), "nope")
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = repo.FindByID(context.Background(), "u-1")
	assertCode(t, err, "USER_GET_BY_ID_FAILED")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_List(t *testing.T) {
	t.Run("rows", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		a := sampleUser()
		b := sampleUser()
		b.ID, b.Email, b.Roles = "u-2", "b@x.com", []string{"admin"}

		rows := pgxmock.NewRows(userColumns).
			AddRow(a.ID, a.Email, a.PasswordHash, a.Name, a.IsActive, a.Roles, a.CreatedAt).
			AddRow(b.ID, b.Email, b.PasswordHash, b.Name, b.IsActive, b.Roles, b.CreatedAt)
		mock.ExpectQuery(`SELECT .+ FROM users ORDER BY created_at, id`).WillReturnRows(rows)

		got, err := NewPostgresRepository(mock).List(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []*models.User{a, b}, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`SELECT .+ FROM users`).WillReturnRows(pgxmock.NewRows(userColumns))

		got, err := NewPostgresRepository(mock).List(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("query error", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`SELECT .+ FROM users`).WillReturnError(errors.New("connection refused"))

		_, err = NewPostgresRepository(mock).List(context.Background())
		assertCode(t, err, "USER_LIST_FAILED")
		assert.Contains(t, err.Error(), "connection refused")
	})
}
