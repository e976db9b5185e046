package users

import (
	"context"
	"database/sql"
	"io/fs"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/migrations"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func newSQLiteRepo(t *testing.T) (*SQLiteRepository, *sql.DB) {
	t.Helper()

	db, err := sql.Open("sqlite", "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	dir, err := fs.Sub(migrations.FS, migrations.SQLiteDir)
	require.NoError(t, err)
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, dir)
	require.NoError(t, err)
	_, err = provider.Up(context.Background())
	require.NoError(t, err)

	return NewSQLiteRepository(db), db
}

func TestSQLiteRepository_InsertAndFind(t *testing.T) {
	repo, _ := newSQLiteRepo(t)
	ctx := context.Background()

	u := sampleUser()
	got, err := repo.Insert(ctx, u)
	require.NoError(t, err)
	assert.Equal(t, u, got)

	byEmail, err := repo.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, u, byEmail)

	byID, err := repo.FindByID(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, u, byID)
}

func TestSQLiteRepository_NotFound(t *testing.T) {
	repo, _ := newSQLiteRepo(t)
	ctx := context.Background()

	_, err := repo.FindByEmail(ctx, "ghost@x.com")
	assert.ErrorIs(t, err, common.ErrNotFound)
	assertCode(t, err, "USER_NOT_FOUND")

	_, err = repo.FindByID(ctx, "ghost")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSQLiteRepository_DuplicateEmail(t *testing.T) {
	repo, db := newSQLiteRepo(t)
	ctx := context.Background()

	_, err := repo.Insert(ctx, sampleUser())
	require.NoError(t, err)

	dup := sampleUser()
	dup.ID = "u-2"
	_, err = repo.Insert(ctx, dup)
	assert.ErrorIs(t, err, common.ErrConflict)
	assertCode(t, err, "USER_CONFLICT")

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestSQLiteRepository_InactiveAndEmptyRoles(t *testing.T) {
	repo, _ := newSQLiteRepo(t)
	ctx := context.Background()

	u := sampleUser()
	u.IsActive = false
	u.Roles = nil
	_, err := repo.Insert(ctx, u)
	require.NoError(t, err)

	got, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	assert.Equal(t, []string{}, got.Roles)
}

func TestSQLiteRepository_List(t *testing.T) {
	repo, _ := newSQLiteRepo(t)
	ctx := context.Background()

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"z", "y"} {
		u := sampleUser()
		u.ID = id
		u.Email = id + "@x.com"
		u.CreatedAt = base.Add(time.Duration(i) * time.Second)
		_, err := repo.Insert(ctx, u)
		require.NoError(t, err)
	}

	list, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "z", list[0].ID)
	assert.Equal(t, "y", list[1].ID)
}

func TestSQLiteRepository_ClosedDB(t *testing.T) {
	repo, db := newSQLiteRepo(t)
	require.NoError(t, db.Close())

	_, err := repo.Insert(context.Background(), sampleUser())
	require.Error(t, err)
	assertCode(t, err, "USER_INSERT_FAILED")

	_, err = repo.FindByID(context.Background(), "u-1")
	assertCode(t, err, "USER_GET_BY_ID_FAILED")

	_, err = repo.List(context.Background())
	assertCode(t, err, "USER_LIST_FAILED")
}
