package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fxavier/mozdelivery-api-sub003/cmd"
	"github.com/fxavier/mozdelivery-api-sub003/internal/adapters/out/postgres/migrations"
	"github.com/fxavier/mozdelivery-api-sub003/internal/pkg/logger"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	configs, err := cmd.LoadConfig()
	if err != nil {
		return err
	}

	log, err := logger.New(configs.LogLevel, configs.Env)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err = migrations.UpDSN(ctx, configs.DSN()); err != nil {
		return err
	}

	gormDB, err := gorm.Open(postgres.Open(configs.DSN()), &gorm.Config{Logger: gormLogLevel(log)})
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}

	app, err := cmd.NewCompositionRoot(ctx, configs, gormDB, log)
	if err != nil {
		return err
	}

	router, err := app.CreateRouter(ctx)
	if err != nil {
		return err
	}

	jobManager := app.CreateJobManager()
	if err = jobManager.StartAll(); err != nil {
		return err
	}
	defer jobManager.StopAll()

	serverErr := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("port", configs.HTTPPort))
		serverErr <- router.Start(fmt.Sprintf("0.0.0.0:%s", configs.HTTPPort))
	}()

	select {
	case err = <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return router.Shutdown(shutdownCtx)
}

// gormLogLevel keeps SQL tracing out of production logs.
func gormLogLevel(log *zap.Logger) gormlogger.Interface {
	if log.Core().Enabled(zapcore.DebugLevel) {
		return gormlogger.Default.LogMode(gormlogger.Info)
	}
	return gormlogger.Default.LogMode(gormlogger.Warn)
}
