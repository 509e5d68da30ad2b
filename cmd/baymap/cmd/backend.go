package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"baymap/internal/adapters/filestore"
	natsadapter "baymap/internal/adapters/nats"
	"baymap/internal/adapters/postgres"
	"baymap/internal/adapters/remote"
	"baymap/internal/adapters/valkey"
	"baymap/internal/bay"
	"baymap/internal/config"
)

const poolStatsInterval = 15 * time.Second

// backend is the configured bay store with its decorators applied, plus
// readiness checks and the resources to release.
type backend struct {
	store   bay.Store
	db      *postgres.DB
	checks  map[string]func(ctx context.Context) error
	closers []func()
}

// openBackend builds the store named by store.driver, then wraps it with
// the Valkey list cache and, when publish is set, NATS change events.
// Cache and NATS are optional: when unreachable the store runs without them.
func openBackend(ctx context.Context, cfg *config.Config, publish bool) (*backend, error) {
	b := &backend{checks: map[string]func(ctx context.Context) error{}}

	switch cfg.Store.Driver {
	case config.DriverFile:
		b.store = filestore.New(cfg.Store.Path)
	case config.DriverPostgres:
		db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
		if err != nil {
			return nil, fmt.Errorf("database: %w", err)
		}
		b.db = db
		b.closers = append(b.closers, db.Close)
		b.checks["database"] = func(ctx context.Context) error { return db.Pool.Ping(ctx) }
		go db.ReportStats(ctx, poolStatsInterval)
		b.store = postgres.NewBayRepo(db)
	case config.DriverRemote:
		r := remote.New(cfg.Remote.BaseURL, time.Duration(cfg.Remote.Timeout)*time.Second)
		b.checks["remote"] = r.Ping
		b.store = r
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}

	if cfg.Valkey.Addr != "" {
		cache, err := valkey.New(cfg.Valkey.Addr)
		if err != nil {
			slog.Warn("valkey unavailable", "error", err)
		} else {
			b.closers = append(b.closers, cache.Close)
			b.checks["cache"] = cache.Ping
			b.store = valkey.NewCachedStore(b.store, cache, time.Duration(cfg.Valkey.TTL)*time.Second)
		}
	}

	if publish && cfg.NATS.URL != "" {
		pub, err := natsadapter.NewPublisher(cfg.NATS.URL, cfg.NATS.Subject)
		if err != nil {
			slog.Warn("nats unavailable", "error", err)
		} else {
			b.closers = append(b.closers, pub.Close)
			b.checks["nats"] = func(context.Context) error {
				if !pub.Conn().IsConnected() {
					return errors.New("not connected")
				}
				return nil
			}
			b.store = bay.WithEvents(b.store, pub)
		}
	}

	slog.Debug("backend_ready", "driver", cfg.Store.Driver, "checks", len(b.checks))
	return b, nil
}

// Close releases resources in reverse order of acquisition.
func (b *backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}
