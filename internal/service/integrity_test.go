package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saadjs/pantry-cli/internal/db"
	"github.com/saadjs/pantry-cli/internal/model"
	"github.com/saadjs/pantry-cli/internal/provider"
	"github.com/saadjs/pantry-cli/internal/timeutil"
)

func TestBackupAndRestore(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "pantry.db")
	sqldb, err := db.OpenMigrated(dbPath)
	require.NoError(t, err)
	s := newServiceStores(t, sqldb, fixedNow)
	_, err = s.Inventory.Add(context.Background(), model.IngredientDraft{Name: "Honey"})
	require.NoError(t, err)

	backupPath := filepath.Join(dir, "backups", "pantry-1.db")
	info, err := CreateBackup(sqldb, dbPath, backupPath)
	require.NoError(t, err)
	assert.NotEmpty(t, info.Checksum)
	require.NoError(t, sqldb.Close())

	backups, err := ListBackups(filepath.Dir(backupPath))
	require.NoError(t, err)
	require.Len(t, backups, 1)
	assert.Equal(t, info.Checksum, backups[0].Checksum)

	restored := filepath.Join(dir, "restored.db")
	require.NoError(t, RestoreBackup(backupPath, restored, false))
	assert.Error(t, RestoreBackup(backupPath, restored, false), "existing target needs force")

	rdb, err := db.Open(restored)
	require.NoError(t, err)
	defer rdb.Close()
	rs := newServiceStores(t, rdb, fixedNow)
	require.Equal(t, 1, rs.Inventory.Len())
	assert.Equal(t, "Honey", rs.Inventory.List()[0].Name)
}

func TestRestoreRejectsChecksumMismatch(t *testing.T) {
	dir := t.TempDir()
	backup := filepath.Join(dir, "b.db")
	require.NoError(t, os.WriteFile(backup, []byte("data"), 0o644))
	require.NoError(t, os.WriteFile(backup+".sha256", []byte("deadbeef\n"), 0o644))
	assert.Error(t, RestoreBackup(backup, filepath.Join(dir, "out.db"), true))
}

func TestDoctorFindsAndFixesProblems(t *testing.T) {
	sqldb := newServiceDB(t)
	now := fixedNow()
	s := newServiceStores(t, sqldb, func() time.Time { return now })
	ctx := context.Background()

	exp := timeutil.AddMonths(now, 6)
	left := 4
	require.NoError(t, s.Inventory.Replace(ctx, []model.Ingredient{
		{ID: "a", Name: "Peas", ConfectionType: model.ConfectionCanned, ExpirationDate: &exp, Frozen: &left, AddedDate: now, Maturity: model.Maturity{Level: model.RipenessNone}},
		{ID: "a", Name: "Peas again", AddedDate: now, Maturity: model.Maturity{Level: model.RipenessNone}},
		{ID: "b", Name: "Avocado", AddedDate: now, Maturity: model.Maturity{Level: model.RipenessGreen}},
		{ID: "c", Name: "Pear", AddedDate: now, Maturity: model.Maturity{Level: model.RipenessRipe, Edited: now.Add(48 * time.Hour)}},
	}))
	require.NoError(t, s.Grocery.Replace(ctx, []model.GroceryListItem{{ID: "g1", Item: model.IngredientDraft{Name: ""}}}))
	require.NoError(t, s.Shops.Replace(ctx, []model.Shop{{ID: "s1", Name: "Nowhere", Latitude: 120}}))

	client := &fakeProductClient{product: provider.Product{Name: "Stale"}}
	old := now.Add(-60 * 24 * time.Hour)
	_, err := lookupProductWithClient(ctx, sqldb, ProviderOpenFoodFacts, client, "12345670", ProductLookupOptions{Now: func() time.Time { return old }})
	require.NoError(t, err)

	report, err := RunDoctor(ctx, sqldb, s, false, now)
	require.NoError(t, err)
	assert.Equal(t, 1, report.DuplicateIDs)
	assert.Equal(t, 1, report.FrozenNotFresh)
	assert.Equal(t, 2, report.BadMaturityStamps)
	assert.Equal(t, 1, report.BlankGroceryNames)
	assert.Equal(t, 1, report.InvalidShops)
	assert.Equal(t, 1, report.ExpiredCacheRows)
	assert.Equal(t, 7, report.Problems())
	assert.Equal(t, 4, s.Inventory.Len(), "check-only run must not write")

	fixed, err := RunDoctor(ctx, sqldb, s, true, now)
	require.NoError(t, err)
	assert.Equal(t, 3, fixed.FixedIngredients)
	assert.Equal(t, 1, fixed.PurgedCacheRows)

	assert.Equal(t, 3, s.Inventory.Len())
	peas, _ := s.Inventory.Get("a")
	assert.Nil(t, peas.Frozen)
	assert.Equal(t, 4, timeutil.DayDifference(*peas.ExpirationDate, now))
	avocado, _ := s.Inventory.Get("b")
	assert.Equal(t, now, avocado.Maturity.Edited)
	assert.Equal(t, 0, s.Grocery.Len())
	assert.Equal(t, 0, s.Shops.Len())

	again, err := RunDoctor(ctx, sqldb, s, false, now)
	require.NoError(t, err)
	assert.Zero(t, again.Problems())
}
