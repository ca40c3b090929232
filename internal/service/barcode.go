package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/saadjs/pantry-cli/internal/metrics"
	"github.com/saadjs/pantry-cli/internal/model"
	"github.com/saadjs/pantry-cli/internal/provider"
	"github.com/saadjs/pantry-cli/internal/provider/openfoodfacts"
	"github.com/saadjs/pantry-cli/internal/provider/upcitemdb"
	"github.com/saadjs/pantry-cli/internal/provider/usda"
)

const (
	ProviderOpenFoodFacts = "openfoodfacts"
	ProviderUPCItemDB     = "upcitemdb"
	ProviderUSDA          = "usda"

	SourceOverride = "override"
	SourceCache    = "cache"
	SourceProvider = "provider"

	defaultProductTTL    = 30 * 24 * time.Hour
	defaultLookupTimeout = 15 * time.Second
)

// DefaultProviderOrder is tried when no fallback order is configured.
var DefaultProviderOrder = []string{ProviderOpenFoodFacts, ProviderUPCItemDB, ProviderUSDA}

var barcodePattern = regexp.MustCompile(`^\d{8,14}$`)

type ProductLookupResult struct {
	Provider     string         `json:"provider"`
	Barcode      string         `json:"barcode"`
	Name         string         `json:"name"`
	Brand        string         `json:"brand"`
	Category     model.Category `json:"category,omitempty"`
	CategoryTags []string       `json:"category_tags,omitempty"`
	SourceTier   string         `json:"source_tier"`
	LookupTrail  []string       `json:"lookup_trail,omitempty"`
}

// Draft turns the lookup into the initial values of a new ingredient.
func (r ProductLookupResult) Draft() model.IngredientDraft {
	return model.IngredientDraft{Name: r.Name, Brand: r.Brand, Category: r.Category}
}

type ProductLookupOptions struct {
	USDAAPIKey       string
	UPCItemDBKey     string
	UPCItemDBKeyType string
	HTTPClient       *http.Client
	// BaseURLs overrides provider endpoints by provider name.
	BaseURLs map[string]string
	Metrics  *metrics.Collector
	Timeout  time.Duration
	Now      func() time.Time
}

func (o ProductLookupOptions) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

type ProductOverrideInput struct {
	Name     string
	Brand    string
	Category string
	Notes    string
}

type ProductCacheItem struct {
	Provider  string    `json:"provider"`
	Barcode   string    `json:"barcode"`
	Name      string    `json:"name"`
	Brand     string    `json:"brand"`
	ExpiresAt time.Time `json:"expires_at"`
}

type productClient interface {
	LookupBarcode(ctx context.Context, barcode string) (provider.Product, []byte, error)
}

// One limiter per provider for the life of the process.
var limiters = map[string]*limiterEntry{
	ProviderOpenFoodFacts: {perMinute: openfoodfacts.RequestsPerMinute},
	ProviderUPCItemDB:     {perMinute: upcitemdb.TrialRequestsPerMinute},
	ProviderUSDA:          {perMinute: usda.RequestsPerMinute},
}

func newProductClient(name string, opts ProductLookupOptions) (productClient, error) {
	base := opts.BaseURLs[name]
	switch name {
	case ProviderOpenFoodFacts:
		return &openfoodfacts.Client{BaseURL: base, HTTPClient: opts.HTTPClient, Limiter: limiters[name].get()}, nil
	case ProviderUPCItemDB:
		return &upcitemdb.Client{BaseURL: base, APIKey: opts.UPCItemDBKey, APIKeyType: opts.UPCItemDBKeyType, HTTPClient: opts.HTTPClient, Limiter: limiters[name].get()}, nil
	case ProviderUSDA:
		return &usda.Client{BaseURL: base, APIKey: opts.USDAAPIKey, HTTPClient: opts.HTTPClient, Limiter: limiters[name].get()}, nil
	default:
		return nil, fmt.Errorf("unsupported barcode provider %q", name)
	}
}

// LookupProduct resolves a barcode through one provider: local override,
// then unexpired cache, then the provider itself.
func LookupProduct(ctx context.Context, db *sql.DB, providerName, barcode string, opts ProductLookupOptions) (ProductLookupResult, error) {
	name := normalizeProvider(providerName)
	if name == "" {
		name = ProviderOpenFoodFacts
	}
	client, err := newProductClient(name, opts)
	if err != nil {
		return ProductLookupResult{}, err
	}
	return lookupProductWithClient(ctx, db, name, client, barcode, opts)
}

// LookupProductWithFallback tries each provider in order and returns the
// first hit.
func LookupProductWithFallback(ctx context.Context, db *sql.DB, barcode string, providers []string, opts ProductLookupOptions) (ProductLookupResult, error) {
	if len(providers) == 0 {
		return ProductLookupResult{}, fmt.Errorf("no lookup providers configured")
	}
	attempts := make([]string, 0, len(providers))
	errs := make([]string, 0, len(providers))
	for _, p := range providers {
		name := normalizeProvider(p)
		if name == "" {
			continue
		}
		attempts = append(attempts, name)
		result, err := LookupProduct(ctx, db, name, barcode, opts)
		if err == nil {
			result.LookupTrail = attempts
			return result, nil
		}
		if ctx.Err() != nil {
			return ProductLookupResult{}, fmt.Errorf("lookup %q: %w", barcode, ctx.Err())
		}
		errs = append(errs, fmt.Sprintf("%s: %v", name, err))
	}
	return ProductLookupResult{}, fmt.Errorf("lookup failed for %q across providers [%s]", barcode, strings.Join(errs, "; "))
}

func lookupProductWithClient(ctx context.Context, db *sql.DB, name string, client productClient, barcode string, opts ProductLookupOptions) (ProductLookupResult, error) {
	barcode = strings.TrimSpace(barcode)
	if !isValidBarcode(barcode) {
		return ProductLookupResult{}, fmt.Errorf("invalid barcode %q (expected 8-14 digits)", barcode)
	}
	overridden, found, err := GetProductOverride(db, barcode)
	if err != nil {
		return ProductLookupResult{}, err
	}
	if found {
		opts.Metrics.Lookup(name, SourceOverride)
		return overridden, nil
	}

	cached, found, err := lookupProductCache(db, name, barcode, opts.now())
	if err != nil {
		return ProductLookupResult{}, err
	}
	if found {
		opts.Metrics.Lookup(name, SourceCache)
		return cached, nil
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultLookupTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	product, raw, err := client.LookupBarcode(ctx, barcode)
	if err != nil {
		return ProductLookupResult{}, err
	}
	opts.Metrics.Lookup(name, SourceProvider)
	result := ProductLookupResult{
		Provider:     name,
		Barcode:      barcode,
		Name:         strings.TrimSpace(product.Name),
		Brand:        strings.TrimSpace(product.Brand),
		Category:     MapCategoryTags(product.Categories),
		CategoryTags: product.Categories,
		SourceTier:   SourceProvider,
	}
	now := opts.now()
	if err := upsertProductCache(db, result, raw, now, now.Add(defaultProductTTL)); err != nil {
		return ProductLookupResult{}, err
	}
	return result, nil
}

// ParseProviderOrder parses a comma separated provider list.
func ParseProviderOrder(value string) ([]string, error) {
	out := make([]string, 0, len(DefaultProviderOrder))
	seen := map[string]bool{}
	for _, part := range strings.Split(value, ",") {
		name := normalizeProvider(part)
		if name == "" {
			continue
		}
		if !isKnownProvider(name) {
			return nil, fmt.Errorf("unsupported barcode provider %q", part)
		}
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("provider order is empty")
	}
	return out, nil
}

// ResolveProviderOrder puts the preferred provider first, followed by the
// configured fallback order or DefaultProviderOrder.
func ResolveProviderOrder(db *sql.DB, preferred string) ([]string, error) {
	order := append([]string(nil), DefaultProviderOrder...)
	raw, found, err := GetConfig(db, ConfigBarcodeFallbackOrder)
	if err != nil {
		return nil, err
	}
	if found {
		if order, err = ParseProviderOrder(raw); err != nil {
			return nil, err
		}
	}
	if strings.TrimSpace(preferred) == "" {
		if preferred, _, err = GetConfig(db, ConfigBarcodeProvider); err != nil {
			return nil, err
		}
	}
	first := normalizeProvider(preferred)
	if first == "" {
		return order, nil
	}
	if !isKnownProvider(first) {
		return nil, fmt.Errorf("unsupported barcode provider %q", preferred)
	}
	out := []string{first}
	for _, p := range order {
		if p != first {
			out = append(out, p)
		}
	}
	return out, nil
}

var categoryKeywords = []struct {
	category model.Category
	words    []string
}{
	{model.CategoryFish, []string{"fish", "seafood", "salmon", "tuna", "shrimp"}},
	{model.CategoryMeat, []string{"meat", "poultry", "beef", "pork", "chicken", "sausage", "ham"}},
	{model.CategoryDairy, []string{"dair", "milk", "cheese", "yogurt", "yoghurt", "butter", "cream"}},
	{model.CategoryFruit, []string{"fruit", "apple", "banana", "berries"}},
	{model.CategoryVegetable, []string{"vegetable", "salad", "legume", "tomato"}},
	{model.CategorySpice, []string{"spice", "herb", "seasoning", "pepper", "salt"}},
	{model.CategoryLiquid, []string{"beverage", "drink", "juice", "water", "soda", "coffee", "tea"}},
	{model.CategoryPantryStaple, []string{"cereal", "pasta", "rice", "flour", "grain", "bread", "snack", "spread", "sauce", "canned", "oil", "sugar"}},
}

// MapCategoryTags picks a category from provider tags. Tags run from general
// to specific, so the most specific matching tag wins.
func MapCategoryTags(tags []string) model.Category {
	for i := len(tags) - 1; i >= 0; i-- {
		tag := strings.ToLower(tags[i])
		if c, err := model.ParseCategory(tag); err == nil && c != "" {
			return c
		}
		for _, kw := range categoryKeywords {
			for _, w := range kw.words {
				if strings.Contains(tag, w) {
					return kw.category
				}
			}
		}
	}
	return ""
}

func SetProductOverride(db *sql.DB, barcode string, in ProductOverrideInput, now time.Time) error {
	barcode = strings.TrimSpace(barcode)
	if !isValidBarcode(barcode) {
		return fmt.Errorf("invalid barcode %q (expected 8-14 digits)", barcode)
	}
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("name is required")
	}
	category, err := model.ParseCategory(in.Category)
	if err != nil {
		return err
	}
	_, err = db.Exec(`
INSERT INTO product_overrides(barcode, name, brand, category, notes, updated_at)
VALUES(?, ?, ?, ?, ?, ?)
ON CONFLICT(barcode) DO UPDATE SET
  name=excluded.name,
  brand=excluded.brand,
  category=excluded.category,
  notes=excluded.notes,
  updated_at=excluded.updated_at
`, barcode, strings.TrimSpace(in.Name), strings.TrimSpace(in.Brand), string(category), strings.TrimSpace(in.Notes), now.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("set product override: %w", err)
	}
	return nil
}

func GetProductOverride(db *sql.DB, barcode string) (ProductLookupResult, bool, error) {
	var row ProductLookupResult
	var category string
	err := db.QueryRow(`SELECT barcode, name, brand, category FROM product_overrides WHERE barcode = ?`, strings.TrimSpace(barcode)).
		Scan(&row.Barcode, &row.Name, &row.Brand, &category)
	if err == sql.ErrNoRows {
		return ProductLookupResult{}, false, nil
	}
	if err != nil {
		return ProductLookupResult{}, false, fmt.Errorf("lookup product override: %w", err)
	}
	row.Provider = SourceOverride
	row.Category = model.Category(category)
	row.SourceTier = SourceOverride
	return row, true, nil
}

func DeleteProductOverride(db *sql.DB, barcode string) error {
	barcode = strings.TrimSpace(barcode)
	res, err := db.Exec(`DELETE FROM product_overrides WHERE barcode = ?`, barcode)
	if err != nil {
		return fmt.Errorf("delete product override: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete product override rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: product override for barcode %s", ErrNotFound, barcode)
	}
	return nil
}

func ListProductCache(db *sql.DB, providerName string, limit int) ([]ProductCacheItem, error) {
	name := normalizeProvider(providerName)
	if limit <= 0 {
		limit = 100
	}
	base := `SELECT provider, barcode, name, brand, expires_at FROM product_cache`
	args := make([]any, 0, 2)
	if name != "" {
		base += ` WHERE provider = ?`
		args = append(args, name)
	}
	base += ` ORDER BY fetched_at DESC LIMIT ?`
	args = append(args, limit)
	rows, err := db.Query(base, args...)
	if err != nil {
		return nil, fmt.Errorf("list product cache: %w", err)
	}
	defer rows.Close()
	out := make([]ProductCacheItem, 0)
	for rows.Next() {
		var item ProductCacheItem
		var expires string
		if err := rows.Scan(&item.Provider, &item.Barcode, &item.Name, &item.Brand, &expires); err != nil {
			return nil, fmt.Errorf("scan product cache: %w", err)
		}
		item.ExpiresAt, _ = time.Parse(time.RFC3339, expires)
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product cache: %w", err)
	}
	return out, nil
}

func PurgeProductCache(db *sql.DB, providerName, barcode string, purgeAll bool) (int64, error) {
	name := normalizeProvider(providerName)
	barcode = strings.TrimSpace(barcode)

	var (
		res sql.Result
		err error
	)
	switch {
	case purgeAll:
		res, err = db.Exec(`DELETE FROM product_cache`)
	case name != "" && barcode != "":
		res, err = db.Exec(`DELETE FROM product_cache WHERE provider = ? AND barcode = ?`, name, barcode)
	case name != "":
		res, err = db.Exec(`DELETE FROM product_cache WHERE provider = ?`, name)
	case barcode != "":
		res, err = db.Exec(`DELETE FROM product_cache WHERE barcode = ?`, barcode)
	default:
		return 0, fmt.Errorf("specify --all, --provider, --barcode, or provider+barcode")
	}
	if err != nil {
		return 0, fmt.Errorf("purge product cache: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge product cache rows affected: %w", err)
	}
	return affected, nil
}

func lookupProductCache(db *sql.DB, name, barcode string, now time.Time) (ProductLookupResult, bool, error) {
	var row ProductLookupResult
	var category, tagsRaw, expiresAtRaw string
	err := db.QueryRow(`
SELECT provider, barcode, name, brand, category, category_tags, expires_at
FROM product_cache
WHERE provider = ? AND barcode = ?
`, name, barcode).Scan(&row.Provider, &row.Barcode, &row.Name, &row.Brand, &category, &tagsRaw, &expiresAtRaw)
	if err == sql.ErrNoRows {
		return ProductLookupResult{}, false, nil
	}
	if err != nil {
		return ProductLookupResult{}, false, fmt.Errorf("lookup product cache: %w", err)
	}
	expiresAt, err := time.Parse(time.RFC3339, expiresAtRaw)
	if err != nil {
		return ProductLookupResult{}, false, fmt.Errorf("parse product cache expiry: %w", err)
	}
	if now.After(expiresAt) {
		return ProductLookupResult{}, false, nil
	}
	if tagsRaw != "" {
		if err := json.Unmarshal([]byte(tagsRaw), &row.CategoryTags); err != nil {
			return ProductLookupResult{}, false, fmt.Errorf("decode product cache tags: %w", err)
		}
	}
	row.Category = model.Category(category)
	row.SourceTier = SourceCache
	return row, true, nil
}

func upsertProductCache(db *sql.DB, result ProductLookupResult, raw []byte, fetchedAt, expiresAt time.Time) error {
	rawStr := ""
	if json.Valid(raw) {
		rawStr = string(raw)
	}
	tags := ""
	if len(result.CategoryTags) > 0 {
		b, err := json.Marshal(result.CategoryTags)
		if err != nil {
			return fmt.Errorf("encode product cache tags: %w", err)
		}
		tags = string(b)
	}
	_, err := db.Exec(`
INSERT INTO product_cache(provider, barcode, name, brand, category, category_tags, raw_json, fetched_at, expires_at)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(provider, barcode) DO UPDATE SET
  name=excluded.name,
  brand=excluded.brand,
  category=excluded.category,
  category_tags=excluded.category_tags,
  raw_json=excluded.raw_json,
  fetched_at=excluded.fetched_at,
  expires_at=excluded.expires_at
`, result.Provider, result.Barcode, result.Name, result.Brand, string(result.Category), tags, rawStr, fetchedAt.Format(time.RFC3339), expiresAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("upsert product cache: %w", err)
	}
	return nil
}

func isValidBarcode(code string) bool {
	return barcodePattern.MatchString(code)
}

func normalizeProvider(name string) string {
	p := strings.ToLower(strings.TrimSpace(name))
	switch p {
	case "off":
		return ProviderOpenFoodFacts
	case "upc":
		return ProviderUPCItemDB
	default:
		return p
	}
}

func isKnownProvider(name string) bool {
	switch name {
	case ProviderOpenFoodFacts, ProviderUPCItemDB, ProviderUSDA:
		return true
	}
	return false
}
