// Package application assembles the storage backends selected by configuration.
// The HTTP server and the admin tool share it.
package application

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/parshv1234/ChemicalVisualizer/internal/auth"
	"github.com/parshv1234/ChemicalVisualizer/internal/config"
	"github.com/parshv1234/ChemicalVisualizer/internal/core"
	"github.com/parshv1234/ChemicalVisualizer/internal/db/migrate"
	"github.com/parshv1234/ChemicalVisualizer/internal/filestore"
	"github.com/parshv1234/ChemicalVisualizer/internal/store/memory"
	"github.com/parshv1234/ChemicalVisualizer/internal/store/postgres"
)

// UserRepository is a user store that can also remove accounts.
type UserRepository interface {
	auth.UserStore
	DeleteUser(ctx context.Context, id string) ([]string, error)
}

// Backends holds the opened stores. Call Close when done.
type Backends struct {
	Datasets core.Repository
	Users    UserRepository
	Files    core.FileStore

	pool *pgxpool.Pool
}

// Open connects the dataset store and file store named in cfg.
func Open(ctx context.Context, cfg *config.Config) (*Backends, error) {
	b := &Backends{}

	switch cfg.Database.Backend {
	case config.BackendMemory:
		store := memory.New()
		b.Datasets, b.Users = store, store
		slog.Warn("using in-memory dataset store; data is lost on exit")

	case config.BackendPostgres:
		if cfg.Database.AutoMigrate {
			if err := migrate.Run(cfg.Database.URL, migrate.Up); err != nil {
				return nil, fmt.Errorf("auto-migrate: %w", err)
			}
			slog.Info("database migrations applied")
		}

		pool, err := openPool(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		store := postgres.NewStore(pool)
		b.pool = pool
		b.Datasets, b.Users = store, store

	default:
		return nil, fmt.Errorf("unknown database backend %q", cfg.Database.Backend)
	}

	files, err := openFiles(ctx, cfg.Files)
	if err != nil {
		b.Close()
		return nil, err
	}
	b.Files = files

	return b, nil
}

// Ping checks the database connection. It is a no-op for the memory backend.
func (b *Backends) Ping(ctx context.Context) error {
	if b.pool == nil {
		return nil
	}
	return b.pool.Ping(ctx)
}

// Close releases the database pool.
func (b *Backends) Close() {
	if b.pool != nil {
		b.pool.Close()
	}
}

func openPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	// Parse and configure connection pool
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// Apply pool configuration from config
	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Log which database we connected to
	if u, err := url.Parse(cfg.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		slog.Info("connected to database")
	}
	return pool, nil
}

func openFiles(ctx context.Context, cfg config.FileStoreConfig) (core.FileStore, error) {
	switch cfg.Backend {
	case config.FilesLocal:
		local, err := filestore.NewLocal(cfg.Dir)
		if err != nil {
			return nil, err
		}
		slog.Info("file store ready", "backend", "local", "dir", local.Root())
		return local, nil

	case config.FilesS3:
		s3, err := filestore.NewS3(filestore.S3Options{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			UseSSL:    cfg.S3UseSSL,
		})
		if err != nil {
			return nil, err
		}
		if err := s3.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		slog.Info("file store ready", "backend", "s3", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
		return s3, nil
	}
	return nil, fmt.Errorf("unknown file store backend %q", cfg.Backend)
}
