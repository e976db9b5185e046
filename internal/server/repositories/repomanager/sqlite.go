package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/filex"
	"github.com/dmitrijs2005/gophauth/internal/server/migrations"
	repo "github.com/dmitrijs2005/gophauth/internal/server/repositories/users"
	"github.com/dmitrijs2005/gophauth/internal/server/users"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

type SQLiteRepositoryManager struct {
	db *sql.DB
}

// NewSQLiteRepositoryManager opens the database file at path. SQLite allows
// one writer at a time, so the pool is limited to a single connection.
func NewSQLiteRepositoryManager(path string) (*SQLiteRepositoryManager, error) {
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}
	if _, err := filex.EnsureParentDir(path); err != nil {
		return nil, fmt.Errorf("prepare sqlite dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	return &SQLiteRepositoryManager{db: db}, nil
}

func (m *SQLiteRepositoryManager) RunMigrations(ctx context.Context) error {
	return migrate(ctx, goose.DialectSQLite3, m.db, migrations.SQLiteDir)
}

func (m *SQLiteRepositoryManager) Ping(ctx context.Context) error {
	return m.db.PingContext(ctx)
}

func (m *SQLiteRepositoryManager) Users() users.Repository {
	return repo.NewSQLiteRepository(m.db)
}

func (m *SQLiteRepositoryManager) Close() error {
	return m.db.Close()
}
