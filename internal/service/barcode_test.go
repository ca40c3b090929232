package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/saadjs/pantry-cli/internal/db"
	"github.com/saadjs/pantry-cli/internal/model"
	"github.com/saadjs/pantry-cli/internal/provider"
)

type fakeProductClient struct {
	calls   int
	product provider.Product
	err     error
}

func (f *fakeProductClient) LookupBarcode(ctx context.Context, barcode string) (provider.Product, []byte, error) {
	_ = ctx
	f.calls++
	if f.err != nil {
		return provider.Product{}, nil, f.err
	}
	p := f.product
	p.Barcode = barcode
	return p, []byte(`{"ok":true}`), nil
}

func TestLookupProductUsesCache(t *testing.T) {
	sqldb := newServiceDB(t)

	client := &fakeProductClient{product: provider.Product{
		Name:       "Greek Yogurt",
		Brand:      "Fage",
		Categories: []string{"dairies", "fermented milk products", "yogurts"},
	}}
	opts := ProductLookupOptions{Now: fixedNow}

	first, err := lookupProductWithClient(context.Background(), sqldb, ProviderOpenFoodFacts, client, "5201054017456", opts)
	if err != nil {
		t.Fatalf("first lookup: %v", err)
	}
	if first.SourceTier != SourceProvider || first.Category != model.CategoryDairy {
		t.Fatalf("unexpected first result: %+v", first)
	}
	second, err := lookupProductWithClient(context.Background(), sqldb, ProviderOpenFoodFacts, client, "5201054017456", opts)
	if err != nil {
		t.Fatalf("second lookup: %v", err)
	}
	if client.calls != 1 {
		t.Fatalf("expected 1 provider call due to cache hit, got %d", client.calls)
	}
	if second.SourceTier != SourceCache || second.Name != "Greek Yogurt" || len(second.CategoryTags) != 3 {
		t.Fatalf("unexpected cached result: %+v", second)
	}
}

func TestLookupProductCacheExpires(t *testing.T) {
	sqldb := newServiceDB(t)
	client := &fakeProductClient{product: provider.Product{Name: "Oats"}}

	now := fixedNow()
	opts := ProductLookupOptions{Now: func() time.Time { return now }}
	if _, err := lookupProductWithClient(context.Background(), sqldb, ProviderUSDA, client, "012345678905", opts); err != nil {
		t.Fatalf("first lookup: %v", err)
	}
	now = now.Add(defaultProductTTL + time.Hour)
	if _, err := lookupProductWithClient(context.Background(), sqldb, ProviderUSDA, client, "012345678905", opts); err != nil {
		t.Fatalf("second lookup: %v", err)
	}
	if client.calls != 2 {
		t.Fatalf("expected expired cache to refetch, got %d calls", client.calls)
	}
}

func TestLookupProductValidation(t *testing.T) {
	sqldb := newServiceDB(t)

	client := &fakeProductClient{}
	if _, err := lookupProductWithClient(context.Background(), sqldb, ProviderUSDA, client, "abc", ProductLookupOptions{}); err == nil {
		t.Fatalf("expected invalid barcode to fail")
	}
	if client.calls != 0 {
		t.Fatalf("invalid barcode must not reach the provider")
	}
}

func TestLookupProductOverrideWins(t *testing.T) {
	sqldb := newServiceDB(t)
	if err := SetProductOverride(sqldb, "4006381333931", ProductOverrideInput{Name: "House Pesto", Brand: "Mine", Category: "spice"}, fixedNow()); err != nil {
		t.Fatalf("set override: %v", err)
	}
	client := &fakeProductClient{product: provider.Product{Name: "Pesto alla Genovese"}}
	got, err := lookupProductWithClient(context.Background(), sqldb, ProviderOpenFoodFacts, client, "4006381333931", ProductLookupOptions{Now: fixedNow})
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got.SourceTier != SourceOverride || got.Name != "House Pesto" || got.Category != model.CategorySpice {
		t.Fatalf("unexpected override result: %+v", got)
	}
	if client.calls != 0 {
		t.Fatalf("override should short-circuit the provider")
	}

	if err := DeleteProductOverride(sqldb, "4006381333931"); err != nil {
		t.Fatalf("delete override: %v", err)
	}
	if err := DeleteProductOverride(sqldb, "4006381333931"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestLookupProductWithFallbackUsesNextProvider(t *testing.T) {
	sqldb := newServiceDB(t)

	off := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer off.Close()
	upc := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"code":"OK","total":1,"items":[{"ean":"0049000028911","title":"Cola Classic","brand":"Fizz","category":"Food, Beverages & Tobacco > Beverages > Soda"}]}`)
	}))
	defer upc.Close()

	opts := ProductLookupOptions{
		BaseURLs: map[string]string{ProviderOpenFoodFacts: off.URL, ProviderUPCItemDB: upc.URL},
		Now:      fixedNow,
	}
	got, err := LookupProductWithFallback(context.Background(), sqldb, "0049000028911", []string{ProviderOpenFoodFacts, ProviderUPCItemDB}, opts)
	if err != nil {
		t.Fatalf("fallback lookup: %v", err)
	}
	if got.Provider != ProviderUPCItemDB || got.Name != "Cola Classic" {
		t.Fatalf("unexpected fallback result: %+v", got)
	}
	if got.Category != model.CategoryLiquid {
		t.Fatalf("expected soda to map to liquid, got %q", got.Category)
	}
	if strings.Join(got.LookupTrail, ",") != "openfoodfacts,upcitemdb" {
		t.Fatalf("unexpected lookup trail: %v", got.LookupTrail)
	}
}

func TestLookupProductWithFallbackReportsAllFailures(t *testing.T) {
	sqldb := newServiceDB(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	opts := ProductLookupOptions{BaseURLs: map[string]string{ProviderOpenFoodFacts: srv.URL}}
	_, err := LookupProductWithFallback(context.Background(), sqldb, "0049000028911", []string{"off", ProviderUSDA}, opts)
	if err == nil {
		t.Fatalf("expected every provider to fail")
	}
	if !strings.Contains(err.Error(), "openfoodfacts:") || !strings.Contains(err.Error(), "usda:") {
		t.Fatalf("expected per-provider errors, got %v", err)
	}
}

func TestResolveProviderOrder(t *testing.T) {
	sqldb := newServiceDB(t)

	order, err := ResolveProviderOrder(sqldb, "")
	if err != nil {
		t.Fatalf("default order: %v", err)
	}
	if strings.Join(order, ",") != "openfoodfacts,upcitemdb,usda" {
		t.Fatalf("unexpected default order: %v", order)
	}

	if err := SetConfig(sqldb, ConfigBarcodeFallbackOrder, "usda,off"); err != nil {
		t.Fatalf("set fallback order: %v", err)
	}
	order, err = ResolveProviderOrder(sqldb, "upc")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if strings.Join(order, ",") != "upcitemdb,usda,openfoodfacts" {
		t.Fatalf("unexpected order: %v", order)
	}

	if _, err := ResolveProviderOrder(sqldb, "nope"); err == nil {
		t.Fatalf("expected unknown provider to fail")
	}
}

func TestMapCategoryTags(t *testing.T) {
	cases := []struct {
		tags []string
		want model.Category
	}{
		{[]string{"plant based foods", "fruits", "apples"}, model.CategoryFruit},
		{[]string{"meats", "poultries", "chicken breasts"}, model.CategoryMeat},
		{[]string{"seafood", "smoked salmon"}, model.CategoryFish},
		{[]string{"groceries", "pastas"}, model.CategoryPantryStaple},
		{[]string{"dairy"}, model.CategoryDairy},
		{[]string{"mystery"}, ""},
		{nil, ""},
	}
	for _, tc := range cases {
		if got := MapCategoryTags(tc.tags); got != tc.want {
			t.Fatalf("MapCategoryTags(%v) = %q, want %q", tc.tags, got, tc.want)
		}
	}
}

func TestProductCacheListAndPurge(t *testing.T) {
	sqldb := newServiceDB(t)
	client := &fakeProductClient{product: provider.Product{Name: "Rice"}}
	for _, code := range []string{"11111111", "22222222"} {
		if _, err := lookupProductWithClient(context.Background(), sqldb, ProviderOpenFoodFacts, client, code, ProductLookupOptions{Now: fixedNow}); err != nil {
			t.Fatalf("seed cache: %v", err)
		}
	}
	items, err := ListProductCache(sqldb, "", 10)
	if err != nil {
		t.Fatalf("list cache: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 cache rows, got %d", len(items))
	}
	n, err := PurgeProductCache(sqldb, ProviderOpenFoodFacts, "11111111", false)
	if err != nil || n != 1 {
		t.Fatalf("purge one: n=%d err=%v", n, err)
	}
	n, err = PurgeProductCache(sqldb, "", "", true)
	if err != nil || n != 1 {
		t.Fatalf("purge all: n=%d err=%v", n, err)
	}
}

func newServiceDB(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pantry.db")
	sqldb, err := db.Open(path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.ApplyMigrations(sqldb); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	t.Cleanup(func() { _ = sqldb.Close() })
	return sqldb
}

func fixedNow() time.Time {
	return time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
}
