// Package server wires the remote store together: PostgreSQL, optional S3
// payload storage, the services and the gRPC endpoint.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/healthlog/internal/logging"
	"github.com/dmitrijs2005/healthlog/internal/server/blobstore"
	"github.com/dmitrijs2005/healthlog/internal/server/config"
	"github.com/dmitrijs2005/healthlog/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/healthlog/internal/server/services"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/sethvargo/go-retry"

	gs "github.com/dmitrijs2005/healthlog/internal/server/grpc"
)

const dbConnectAttempts = 5

var (
	dbConnectBackoff = 500 * time.Millisecond

	openDB = func(dsn string) (*sql.DB, error) {
		return sql.Open("pgx", dsn)
	}
	newS3Store = func(ctx context.Context, opts blobstore.Options) (blobstore.Store, error) {
		return blobstore.NewS3Store(ctx, opts)
	}
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *gs.GRPCServer
}

// NewApp connects to the database, applies migrations and builds the
// services. Logs go to stdout as JSON.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, slog.LevelInfo)

	db, err := openDB(cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	app, err := newApp(ctx, cfg, logger, db, repomanager.NewPostgresRepositoryManager())
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return app, nil
}

func newApp(ctx context.Context, cfg *config.Config, logger logging.Logger, db *sql.DB, rm repomanager.RepositoryManager) (*App, error) {
	if err := waitForDB(ctx, db, logger); err != nil {
		return nil, fmt.Errorf("db connect error: %w", err)
	}

	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	var blobs blobstore.Store
	if cfg.UseObjectStorage() {
		st, err := newS3Store(ctx, blobstore.Options{
			Bucket:       cfg.S3Bucket,
			Region:       cfg.S3Region,
			AccessKey:    cfg.S3RootUser,
			SecretKey:    cfg.S3RootPassword,
			BaseEndpoint: cfg.S3BaseEndpoint,
		})
		if err != nil {
			return nil, fmt.Errorf("s3 init error: %w", err)
		}
		blobs = st
		logger.Info(ctx, "Payloads go to object storage", "bucket", cfg.S3Bucket)
	}

	us := services.NewUserService(db, rm, cfg, logger)
	hs := services.NewHealthLogService(db, rm, blobs, logger)

	return &App{
		config: cfg,
		logger: logger,
		db:     db,
		server: gs.NewGRPCServer(cfg.EndpointAddrGRPC, logger, us, hs),
	}, nil
}

// waitForDB pings db with exponential backoff; the database container may
// still be starting.
func waitForDB(ctx context.Context, db *sql.DB, logger logging.Logger) error {
	b := retry.WithMaxRetries(dbConnectAttempts-1, retry.NewExponential(dbConnectBackoff))
	return retry.Do(ctx, b, func(ctx context.Context) error {
		if err := db.PingContext(ctx); err != nil {
			logger.Warn(ctx, "database not ready", "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves until ctx is cancelled or a termination signal arrives, then
// closes the database.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(cancelFunc)

	err := app.server.Run(ctx)
	if err != nil {
		app.logger.Error(ctx, "grpc server stopped", "error", err)
	}

	if cerr := app.db.Close(); cerr != nil {
		app.logger.Warn(ctx, "db close", "error", cerr)
	}

	app.logger.Info(ctx, "App stopped")
	return err
}
