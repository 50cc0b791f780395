package persistence

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/crmkit/crm-authz/internal/config"
)

const directoryApplicationName = "crm-authz-directory"

// ErrDirectoryNotConfigured is returned by Ping when no DSN was given.
var ErrDirectoryNotConfigured = errors.New("directory database not configured")

// Directory owns the pgx pool behind the identity and team tables.
type Directory struct {
	Pool   *pgxpool.Pool
	logger *zap.Logger
}

// OpenDirectory connects when a DSN is configured. Without one the host still
// starts and every principal is rejected.
func OpenDirectory(ctx context.Context, cfg config.PostgresConfig, logger *zap.Logger) (*Directory, error) {
	logger = logger.Named("directory")
	if cfg.DSN == "" {
		logger.Warn("POSTGRES_DSN not provided; every principal will be rejected")
		return &Directory{logger: logger}, nil
	}

	poolCfg, err := directoryPoolConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("parse directory dsn: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("open directory pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping directory: %w", err)
	}

	logger.Info("directory connected",
		zap.Int32("max_conns", poolCfg.MaxConns),
		zap.Int32("min_conns", poolCfg.MinConns),
	)
	return &Directory{Pool: pool, logger: logger}, nil
}

func directoryPoolConfig(cfg config.PostgresConfig) (*pgxpool.Config, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, err
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.ConnMaxIdleSec > 0 {
		poolCfg.MaxConnIdleTime = time.Duration(cfg.ConnMaxIdleSec) * time.Second
	}
	if cfg.ConnMaxLifeSec > 0 {
		poolCfg.MaxConnLifetime = time.Duration(cfg.ConnMaxLifeSec) * time.Second
	}
	if _, ok := poolCfg.ConnConfig.RuntimeParams["application_name"]; !ok {
		poolCfg.ConnConfig.RuntimeParams["application_name"] = directoryApplicationName
	}
	return poolCfg, nil
}

// Configured reports whether a pool is open.
func (d *Directory) Configured() bool {
	return d != nil && d.Pool != nil
}

// Migrate applies the schema in fsys when enabled and a pool is open.
func (d *Directory) Migrate(ctx context.Context, fsys fs.FS, enabled bool) error {
	if !enabled || !d.Configured() {
		return nil
	}
	return RunMigrations(ctx, d.Pool, fsys, d.logger)
}

// Close releases pool resources.
func (d *Directory) Close() {
	if d.Configured() {
		d.Pool.Close()
	}
}

// Ping verifies the directory is reachable.
func (d *Directory) Ping(ctx context.Context) error {
	if !d.Configured() {
		return ErrDirectoryNotConfigured
	}
	return d.Pool.Ping(ctx)
}
