package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/server/migrations"
	repo "github.com/dmitrijs2005/gophauth/internal/server/repositories/users"
	"github.com/dmitrijs2005/gophauth/internal/server/users"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager serves repositories from a pgx pool. Goose
// runs over a database/sql handle sharing the same pool.
type PostgresRepositoryManager struct {
	querier repo.Querier
	db      *sql.DB
	close   func()
}

func NewPostgresRepositoryManager(ctx context.Context, dsn string) (*PostgresRepositoryManager, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return newPostgresRepositoryManager(pool, stdlib.OpenDBFromPool(pool), pool.Close), nil
}

func newPostgresRepositoryManager(q repo.Querier, db *sql.DB, closeFn func()) *PostgresRepositoryManager {
	return &PostgresRepositoryManager{querier: q, db: db, close: closeFn}
}

func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context) error {
	return migrate(ctx, goose.DialectPostgres, m.db, migrations.PostgresDir)
}

func (m *PostgresRepositoryManager) Ping(ctx context.Context) error {
	return m.db.PingContext(ctx)
}

func (m *PostgresRepositoryManager) Users() users.Repository {
	return repo.NewPostgresRepository(m.querier)
}

func (m *PostgresRepositoryManager) Close() error {
	err := m.db.Close()
	if m.close != nil {
		m.close()
	}
	return err
}
