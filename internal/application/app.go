// Package application wires configuration into a ready-to-use import
// service: store, result history, limiter and metrics.
package application

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/JonMunkholm/salesimport/internal/config"
	"github.com/JonMunkholm/salesimport/internal/core"
	db "github.com/JonMunkholm/salesimport/internal/database"
	"github.com/JonMunkholm/salesimport/internal/history"
	"github.com/JonMunkholm/salesimport/internal/observability"
	"github.com/JonMunkholm/salesimport/internal/web"
)

// App holds the long-lived collaborators of a running process.
type App struct {
	Config   *config.Config
	Service  *core.Service
	Store    core.Store
	History  history.Store
	Limiter  *core.ImportLimiter
	Recorder *observability.Recorder

	// Pool is nil with the memory store driver.
	Pool  *pgxpool.Pool
	redis *redis.Client
}

// New builds an App from cfg. Close releases its connections.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{
		Config:  cfg,
		Limiter: core.NewImportLimiter(cfg.Import.MaxConcurrent, cfg.Import.MaxWaitTime),
	}

	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		a.Store = core.NewMemoryStoreWithFallback(cfg.Import.FallbackCategoryID)
		slog.Warn("using in-memory store, imported data is lost on exit")
	default:
		pool, err := OpenPool(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		a.Pool = pool
		if cfg.Database.AutoMigrate {
			if err := db.Migrate(ctx, pool); err != nil {
				a.Close()
				return nil, err
			}
			slog.Info("database schema up to date")
		}
		a.Store = core.NewPostgresStore(pool)
	}

	if cfg.Redis.URL != "" {
		client, err := history.Connect(ctx, cfg.Redis.URL)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.redis = client
		a.History = history.NewRedisStore(client, cfg.Redis.ResultTTL)
		slog.Info("import results kept in redis", "ttl", cfg.Redis.ResultTTL)
	} else {
		a.History = history.NewMemoryStore(cfg.Redis.ResultTTL)
	}

	opts := core.Options{
		Engine: core.EngineOptions{
			TaxRate:            cfg.Import.TaxRate,
			FallbackCategoryID: cfg.Import.FallbackCategoryID,
		},
		Logger: slog.Default(),
	}
	if cfg.Metrics.Enabled {
		a.Recorder = observability.NewRecorder(a.Limiter.ActiveCount)
		opts.Observer = a.Recorder
	}
	a.Service = core.NewService(a.Store, opts)

	return a, nil
}

// OpenPool connects to PostgreSQL with the configured pool limits and
// verifies the connection.
func OpenPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if u, err := url.Parse(cfg.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		slog.Info("connected to database")
	}
	return pool, nil
}

// ServerDeps returns the collaborators for web.NewServer.
func (a *App) ServerDeps() web.Deps {
	d := web.Deps{
		Config:  a.Config,
		Service: a.Service,
		History: a.History,
		Limiter: a.Limiter,
	}
	if a.Recorder != nil {
		d.Metrics = a.Recorder.Handler()
	}
	if a.Pool != nil {
		d.Ping = a.Pool.Ping
	}
	return d
}

// Close releases the database pool and redis client.
func (a *App) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			slog.Warn("close redis", "error", err)
		}
	}
	if a.Pool != nil {
		a.Pool.Close()
	}
}
