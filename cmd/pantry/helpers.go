package pantry

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/saadjs/pantry-cli/internal/app"
	"github.com/saadjs/pantry-cli/internal/db"
	"github.com/saadjs/pantry-cli/internal/metrics"
	"github.com/saadjs/pantry-cli/internal/model"
	"github.com/saadjs/pantry-cli/internal/service"
	"github.com/saadjs/pantry-cli/internal/timeutil"
)

// nowFunc is replaced in tests.
var nowFunc = time.Now

// collector is shared by every App opened in this process so watch can serve
// what the stores record.
var collector = metrics.New()

func loadConfig() (app.Config, error) {
	path := configPath
	if path == "" {
		var err error
		if path, err = app.DefaultConfigPath(); err != nil {
			return app.Config{}, err
		}
	}
	return app.LoadConfig(path, envFile)
}

func resolveDBPath(cfg app.Config) (string, error) {
	if dbPath != "" {
		return dbPath, nil
	}
	if cfg.DBPath != "" {
		return cfg.DBPath, nil
	}
	return app.DefaultDBPath()
}

// withApp opens the database and loads every store for the duration of run.
func withApp(cmd *cobra.Command, run func(context.Context, *app.App) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	path, err := resolveDBPath(cfg)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := app.Open(ctx, cfg, path, app.OpenOptions{Log: slog.Default(), Metrics: collector, Now: nowFunc})
	if err != nil {
		return err
	}
	defer a.Close()
	return run(ctx, a)
}

// withDB is for commands that only touch the sqlite tables.
func withDB(run func(*sql.DB) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	path, err := resolveDBPath(cfg)
	if err != nil {
		return err
	}
	if err := app.EnsureDBDir(path); err != nil {
		return err
	}
	sqldb, err := db.OpenMigrated(path)
	if err != nil {
		return err
	}
	defer sqldb.Close()
	return run(sqldb)
}

func stores(a *app.App) service.Stores {
	return service.Stores{Inventory: a.Inventory, Grocery: a.Grocery, Shops: a.Shops}
}

func lookupOptions(cfg app.Config) service.ProductLookupOptions {
	return service.ProductLookupOptions{
		USDAAPIKey:       cfg.Lookup.USDAAPIKey,
		UPCItemDBKey:     cfg.Lookup.UPCItemDBKey,
		UPCItemDBKeyType: cfg.Lookup.UPCItemDBKeyType,
		Metrics:          collector,
		Now:              nowFunc,
	}
}

// parseExpiry resolves --expires and --expires-in. Both empty means no date.
func parseExpiry(expires, expiresIn string, now time.Time) (*time.Time, error) {
	expires = strings.TrimSpace(expires)
	expiresIn = strings.ToLower(strings.TrimSpace(expiresIn))
	if expires != "" && expiresIn != "" {
		return nil, fmt.Errorf("use either --expires or --expires-in")
	}
	if expires != "" {
		t, err := timeutil.ParseDate(expires)
		if err != nil {
			return nil, fmt.Errorf("invalid --expires %q (expected YYYY-MM-DD)", expires)
		}
		return &t, nil
	}
	if expiresIn == "" {
		return nil, nil
	}
	days, err := parseShelfLife(expiresIn)
	if err != nil {
		return nil, err
	}
	t := timeutil.AddDays(now, days)
	return &t, nil
}

func parseShelfLife(v string) (int, error) {
	for _, est := range model.ExpiryEstimates {
		if strings.EqualFold(v, est.Label) {
			return est.Days, nil
		}
	}
	switch v {
	case "1w":
		return 7, nil
	case "2w":
		return 14, nil
	case "1m":
		return 30, nil
	}
	n, err := strconv.Atoi(strings.TrimSuffix(v, "d"))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid --expires-in %q (expected 1w, 10d, 2w, 1m or <N>d)", v)
	}
	return n, nil
}

func parseAmount(value, kind, unit string) (model.Amount, error) {
	if strings.TrimSpace(value) == "" {
		if strings.TrimSpace(kind) != "" || strings.TrimSpace(unit) != "" {
			return nil, fmt.Errorf("--amount is required with --amount-kind or --unit")
		}
		return nil, nil
	}
	if strings.TrimSpace(kind) == "" && strings.TrimSpace(unit) != "" {
		kind = string(model.AmountCustom)
	}
	return model.NewAmount(model.AmountKind(kind), value, unit)
}

func parseFieldList(v string) []string {
	out := make([]string, 0)
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
