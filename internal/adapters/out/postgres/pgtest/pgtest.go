// Package pgtest starts a disposable PostgreSQL container with the schema
// applied, for repository integration suites.
package pgtest

import (
	"context"
	"time"

	"github.com/fxavier/mozdelivery-api-sub003/internal/adapters/out/postgres/migrations"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Tables lists every application table, for TRUNCATE between tests.
const Tables = "orders, delivery_codes, courier_validation_attempts, courier_lockouts, merchant_workflows"

// Start runs postgres:15-alpine, applies the migrations and opens GORM on it.
func Start(ctx context.Context) (*postgres.PostgresContainer, *gorm.DB, error) {
	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, nil, err
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return container, nil, err
	}
	if err = migrations.UpDSN(ctx, dsn); err != nil {
		return container, nil, err
	}

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return container, nil, err
	}
	return container, db, nil
}
