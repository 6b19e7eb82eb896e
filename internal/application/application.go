// Package application turns a loaded configuration into a ready service.
//
// Both the HTTP server and the command-line client start here so they read
// and write the same store the same way.
package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/JonMunkholm/liftlog/internal/backup"
	"github.com/JonMunkholm/liftlog/internal/config"
	"github.com/JonMunkholm/liftlog/internal/core"
	"github.com/JonMunkholm/liftlog/internal/store/memory"
	"github.com/JonMunkholm/liftlog/internal/store/postgres"
)

// App holds the service and the resources behind it.
type App struct {
	Service *core.Service
	Backend string

	closers []func()
}

// Options tunes Open. A nil Registerer leaves metrics unregistered.
type Options struct {
	Registerer prometheus.Registerer
	Logger     *slog.Logger
}

// Open connects the configured store and backup storage and builds the
// service over them.
func Open(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	app := &App{Backend: cfg.Store.Backend}

	repo, err := app.openRepository(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}

	var backups core.BackupStore
	if cfg.Backup.Enabled {
		s3, err := backup.NewS3Store(ctx, backup.Config{
			Endpoint:        cfg.Backup.Endpoint,
			Region:          cfg.Backup.Region,
			Bucket:          cfg.Backup.Bucket,
			AccessKeyID:     cfg.Backup.AccessKeyID,
			SecretAccessKey: cfg.Backup.SecretAccessKey,
		})
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("open backup storage: %w", err)
		}
		backups = s3
		slog.Info("backup storage configured", "bucket", cfg.Backup.Bucket, "prefix", cfg.Backup.Prefix)
	}

	app.Service = core.NewService(repo, core.Options{
		ImportTimeout:   cfg.Import.Timeout,
		LeaseWait:       cfg.Import.LeaseWait,
		MaxDocumentSize: cfg.Import.MaxDocumentSize,
		Backups:         backups,
		BackupPrefix:    cfg.Backup.Prefix,
		Metrics:         core.NewMetrics(opts.Registerer),
		Audit:           core.NewAuditTrail(cfg.Audit.Capacity),
		Logger:          opts.Logger,
	})
	return app, nil
}

func (a *App) openRepository(ctx context.Context, cfg *config.Config) (core.Repository, error) {
	switch cfg.Store.Backend {
	case config.BackendMemory:
		store, err := memory.Open(cfg.Store.SnapshotPath)
		if err != nil {
			return nil, fmt.Errorf("open snapshot store: %w", err)
		}
		slog.Info("using snapshot store", "path", store.Path())
		return store, nil

	case config.BackendPostgres:
		pool, err := postgres.Connect(ctx, postgres.PoolConfig{
			URL:             cfg.Database.URL,
			MaxConns:        int32(cfg.Database.MaxConns),
			MinConns:        int32(cfg.Database.MinConns),
			MaxConnLifetime: cfg.Database.MaxConnLifetime,
			MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
		})
		if err != nil {
			return nil, err
		}
		store := postgres.NewStore(pool)
		a.closers = append(a.closers, store.Close)

		if err := store.Migrate(ctx); err != nil {
			return nil, err
		}
		return store, nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// Close releases the store. It is safe to call more than once.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
