package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// Migrator wraps goose over the pgx pool.
type Migrator struct {
	db             *sql.DB
	migrationsPath string
}

func NewMigrator(pool *pgxpool.Pool, migrationsPath string) (*Migrator, error) {
	if err := goose.SetDialect("postgres"); err != nil {
		return nil, fmt.Errorf("set goose dialect: %w", err)
	}

	// Goose drives *sql.DB, so borrow one from the pool config.
	db := stdlib.OpenDBFromPool(pool)

	return &Migrator{
		db:             db,
		migrationsPath: migrationsPath,
	}, nil
}

// Run applies all pending migrations.
func (mg *Migrator) Run(ctx context.Context) error {
	if err := goose.UpContext(ctx, mg.db, mg.migrationsPath); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Version reports the current migration version.
func (mg *Migrator) Version(ctx context.Context) (int64, error) {
	version, err := goose.GetDBVersionContext(ctx, mg.db)
	if err != nil {
		return 0, fmt.Errorf("get version: %w", err)
	}
	return version, nil
}

// Close releases the migrator's sql.DB without touching the pool itself.
func (mg *Migrator) Close() error {
	if mg.db != nil {
		return mg.db.Close()
	}
	return nil
}
