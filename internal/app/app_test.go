package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saadjs/pantry-cli/internal/model"
	"github.com/saadjs/pantry-cli/internal/proximity"
)

func TestLoadConfigLayers(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "pantry.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
proximity:
  radius_km: 1.2
  watch_interval: 30s
location:
  latitude: 48.8566
  longitude: 2.3522
lookup:
  providers: [usda, off]
`), 0o644))
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("PANTRY_USDA_API_KEY=from-dotenv\n"), 0o644))

	t.Setenv(EnvDB, filepath.Join(dir, "custom.db"))
	t.Setenv(EnvUSDAAPIKey, "")
	os.Unsetenv(EnvUSDAAPIKey)

	cfg, err := LoadConfig(cfgPath, envPath)
	require.NoError(t, err)
	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
	assert.InDelta(t, 1.2, cfg.Proximity.RadiusKm, 1e-9)
	assert.Equal(t, 30*time.Second, cfg.Proximity.WatchInterval)
	assert.Equal(t, []string{"usda", "off"}, cfg.Lookup.Providers)
	assert.Equal(t, filepath.Join(dir, "custom.db"), cfg.DBPath)
	assert.Equal(t, "from-dotenv", cfg.Lookup.USDAAPIKey)

	p, ok := cfg.Location.Point()
	require.True(t, ok)
	assert.Equal(t, proximity.Point{Latitude: 48.8566, Longitude: 2.3522}, p)
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"), "")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Proximity, cfg.Proximity)
}

func TestConfigValidate(t *testing.T) {
	lat := 10.0
	cases := map[string]Config{
		"unknown backend":  {Storage: StorageConfig{Backend: "etcd"}},
		"redis no addr":    {Storage: StorageConfig{Backend: BackendRedis}},
		"radius too large": {Proximity: ProximityConfig{RadiusKm: 12}},
		"half location":    {Location: LocationConfig{Latitude: &lat}},
	}
	for name, cfg := range cases {
		assert.Error(t, cfg.Validate(), name)
	}
	assert.NoError(t, DefaultConfig().Validate())
}

func TestOpenLoadsStoresAndPersists(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "pantry.db")
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	var logs bytes.Buffer
	opts := OpenOptions{Log: NewLogger(&logs, true), Now: func() time.Time { return now }}

	a, err := Open(context.Background(), DefaultConfig(), dbPath, opts)
	require.NoError(t, err)
	_, err = a.Inventory.Add(context.Background(), model.IngredientDraft{Name: "Butter"})
	require.NoError(t, err)
	require.NoError(t, a.Close())

	b, err := Open(context.Background(), DefaultConfig(), dbPath, opts)
	require.NoError(t, err)
	defer b.Close()
	require.Equal(t, 1, b.Inventory.Len())
	assert.Equal(t, now, b.Inventory.List()[0].AddedDate)
	assert.False(t, b.UsesRedis())
	assert.True(t, strings.Contains(logs.String(), "opened pantry"))
}

func TestWatcherSeesShopsAddedByAnotherApp(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "pantry.db")
	lat, lon := 48.8566, 2.3522
	cfg := DefaultConfig()
	cfg.Location = LocationConfig{Latitude: &lat, Longitude: &lon}

	watching, err := Open(ctx, cfg, dbPath, OpenOptions{})
	require.NoError(t, err)
	defer watching.Close()

	var changes, rendered int
	cancel := watching.Shops.Subscribe(func([]model.Shop) { changes++ })
	defer cancel()
	nav := proximity.NewViewTracker("pantry", func(context.Context, string) error {
		rendered = watching.Grocery.Len()
		return nil
	})
	w := proximity.NewWatcher(watching.Shops, watching.Locator(), nav, proximity.WriterNotifier{W: &bytes.Buffer{}}, nil,
		proximity.WithRefresh(watching.Reload))

	outcome, err := w.Check(ctx)
	require.NoError(t, err)
	assert.Equal(t, proximity.OutcomeNone, outcome)
	assert.Zero(t, changes, "reloading unchanged data does not notify")

	other, err := Open(ctx, cfg, dbPath, OpenOptions{})
	require.NoError(t, err)
	_, err = other.Shops.Add(ctx, model.Shop{Name: "Marché", Latitude: lat, Longitude: lon})
	require.NoError(t, err)
	_, err = other.Grocery.Add(ctx, model.IngredientDraft{Name: "Leeks"})
	require.NoError(t, err)
	require.NoError(t, other.Close())

	outcome, err = w.Check(ctx)
	require.NoError(t, err)
	assert.Equal(t, proximity.OutcomeAlerted, outcome)
	assert.Equal(t, 1, watching.Shops.Len())
	assert.Equal(t, 1, changes)
	assert.Equal(t, 1, rendered, "grocery list is current when the alert renders it")
}

func TestOpenWithRedisBackend(t *testing.T) {
	ctx := context.Background()
	srv := miniredis.RunT(t)
	cfg := DefaultConfig()
	cfg.Storage.Backend = BackendRedis
	cfg.Storage.RedisAddr = srv.Addr()
	cfg.Storage.KeyPrefix = "kitchen:"
	require.NoError(t, cfg.Validate())
	dbPath := filepath.Join(t.TempDir(), "pantry.db")

	a, err := Open(ctx, cfg, dbPath, OpenOptions{})
	require.NoError(t, err)
	assert.True(t, a.UsesRedis())
	_, err = a.Inventory.Add(ctx, model.IngredientDraft{Name: "Tahini"})
	require.NoError(t, err)
	require.NoError(t, a.Close())

	stored, err := srv.Get("kitchen:ingredients")
	require.NoError(t, err)
	assert.Contains(t, stored, "Tahini")

	b, err := Open(ctx, cfg, dbPath, OpenOptions{})
	require.NoError(t, err)
	defer b.Close()
	require.Equal(t, 1, b.Inventory.Len())
	assert.Equal(t, "Tahini", b.Inventory.List()[0].Name)

	local, err := Open(ctx, DefaultConfig(), dbPath, OpenOptions{})
	require.NoError(t, err)
	defer local.Close()
	assert.Zero(t, local.Inventory.Len(), "collections live in redis, not sqlite")
}

func TestOpenFailsWhenRedisIsDown(t *testing.T) {
	srv := miniredis.RunT(t)
	addr := srv.Addr()
	srv.Close()
	cfg := DefaultConfig()
	cfg.Storage.Backend = BackendRedis
	cfg.Storage.RedisAddr = addr

	_, err := Open(context.Background(), cfg, filepath.Join(t.TempDir(), "pantry.db"), OpenOptions{})
	assert.Error(t, err)
}

func TestAppLocator(t *testing.T) {
	lat, lon := 1.0, 2.0
	a := &App{Config: Config{Location: LocationConfig{Latitude: &lat, Longitude: &lon}}}
	assert.IsType(t, proximity.StaticLocator{}, a.Locator())

	a.Config.Location = LocationConfig{File: "where.yaml"}
	assert.IsType(t, &proximity.FileLocator{}, a.Locator())

	a.Config.Location = LocationConfig{}
	assert.IsType(t, proximity.DeniedLocator{}, a.Locator())
}

func TestNewLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, false).Debug("hidden")
	assert.Empty(t, buf.String())
	NewLogger(&buf, true).Debug("shown")
	assert.Contains(t, buf.String(), "shown")
}
