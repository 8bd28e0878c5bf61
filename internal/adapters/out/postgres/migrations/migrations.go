// Package migrations holds the database schema as embedded goose migrations.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	// Registers the "postgres" database/sql driver used by goose.
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
)

//go:embed sql/*.sql
var files embed.FS

const dir = "sql"

// Up applies every pending migration.
func Up(ctx context.Context, db *sql.DB) error {
	if err := configure(); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db, dir); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// UpDSN opens a short-lived connection through lib/pq and applies every
// pending migration.
func UpDSN(ctx context.Context, dsn string) error {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}
	defer db.Close()

	if err = db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return Up(ctx, db)
}

// Version reports the current schema version.
func Version(ctx context.Context, db *sql.DB) (int64, error) {
	if err := configure(); err != nil {
		return 0, err
	}
	return goose.GetDBVersionContext(ctx, db)
}

func configure() error {
	goose.SetBaseFS(files)
	goose.SetLogger(goose.NopLogger())
	return goose.SetDialect("postgres")
}
