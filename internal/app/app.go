package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/saadjs/pantry-cli/internal/db"
	"github.com/saadjs/pantry-cli/internal/metrics"
	"github.com/saadjs/pantry-cli/internal/proximity"
	"github.com/saadjs/pantry-cli/internal/store"
)

// App owns the open database, the blob backend and the three loaded stores
// for the lifetime of one command.
type App struct {
	Config    Config
	DBPath    string
	DB        *sql.DB
	Log       *slog.Logger
	Metrics   *metrics.Collector
	Inventory *store.Inventory
	Grocery   *store.Grocery
	Shops     *store.Shops

	redis *db.RedisBlobs
}

type OpenOptions struct {
	Log     *slog.Logger
	Metrics *metrics.Collector
	Now     func() time.Time
}

// Open creates the database directory if needed, migrates the schema and
// loads every collection from the configured backend.
func Open(ctx context.Context, cfg Config, dbPath string, opts OpenOptions) (*App, error) {
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	if err := EnsureDBDir(dbPath); err != nil {
		return nil, err
	}
	sqldb, err := db.OpenMigrated(dbPath)
	if err != nil {
		return nil, err
	}
	a := &App{Config: cfg, DBPath: dbPath, DB: sqldb, Log: log, Metrics: opts.Metrics}

	var blobs store.Blobs = db.NewSQLiteBlobs(sqldb)
	if strings.EqualFold(cfg.Storage.Backend, BackendRedis) {
		rb, err := db.OpenRedis(ctx, db.RedisOptions{
			Addr:   cfg.Storage.RedisAddr,
			DB:     cfg.Storage.RedisDB,
			Prefix: cfg.Storage.KeyPrefix,
		})
		if err != nil {
			_ = sqldb.Close()
			return nil, err
		}
		a.redis = rb
		blobs = rb
	}
	log.Debug("opened pantry", "db", dbPath, "backend", cfg.Storage.Backend)

	storeOpts := []store.Option{store.WithLogger(log), store.WithMetrics(opts.Metrics)}
	if opts.Now != nil {
		storeOpts = append(storeOpts, store.WithClock(opts.Now))
	}
	a.Inventory = store.NewInventory(blobs, storeOpts...)
	a.Grocery = store.NewGrocery(blobs, storeOpts...)
	a.Shops = store.NewShops(blobs, storeOpts...)

	if err := a.Reload(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

// Reload reads every collection again from the backend. Subscribers only
// run for collections another process changed.
func (a *App) Reload(ctx context.Context) error {
	for _, c := range []struct {
		name string
		load func(context.Context) error
	}{
		{store.IngredientsKey, a.Inventory.Load},
		{store.GroceryKey, a.Grocery.Load},
		{store.ShopsKey, a.Shops.Load},
	} {
		if err := c.load(ctx); err != nil {
			return fmt.Errorf("load %s: %w", c.name, err)
		}
	}
	return nil
}

// Locator picks the location source from the config: a fixed point, a
// location file, or none at all.
func (a *App) Locator() proximity.Locator {
	if p, ok := a.Config.Location.Point(); ok {
		return proximity.StaticLocator{At: p}
	}
	if strings.TrimSpace(a.Config.Location.File) != "" {
		return proximity.NewFileLocator(a.Config.Location.File, 10*time.Minute)
	}
	return proximity.DeniedLocator{}
}

func (a *App) UsesRedis() bool {
	return a.redis != nil
}

func (a *App) Close() error {
	var errs []error
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	return errors.Join(errs...)
}
