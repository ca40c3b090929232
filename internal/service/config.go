package service

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/saadjs/pantry-cli/internal/proximity"
)

const (
	ConfigBarcodeProvider      = "barcode_provider"
	ConfigBarcodeFallbackOrder = "barcode_fallback_order"
	ConfigProximityRadius      = "proximity_radius_km"
	ConfigExpiringDefaultDays  = "expiring_default_days"
)

// ConfigKeys lists the keys understood by the application. Unknown keys may
// still be stored.
var ConfigKeys = []string{
	ConfigBarcodeProvider,
	ConfigBarcodeFallbackOrder,
	ConfigProximityRadius,
	ConfigExpiringDefaultDays,
}

func SetConfig(db *sql.DB, key, value string) error {
	key = strings.TrimSpace(strings.ToLower(key))
	if key == "" {
		return fmt.Errorf("config key is required")
	}
	value = strings.TrimSpace(value)
	if err := validateConfig(key, value); err != nil {
		return err
	}
	_, err := db.Exec(`
INSERT INTO app_config(key, value, updated_at)
VALUES(?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at
`, key, value)
	if err != nil {
		return fmt.Errorf("set config %q: %w", key, err)
	}
	return nil
}

func GetConfig(db *sql.DB, key string) (string, bool, error) {
	key = strings.TrimSpace(strings.ToLower(key))
	if key == "" {
		return "", false, fmt.Errorf("config key is required")
	}
	var value string
	err := db.QueryRow(`SELECT value FROM app_config WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get config %q: %w", key, err)
	}
	return value, true, nil
}

func ListConfig(db *sql.DB) (map[string]string, error) {
	rows, err := db.Query(`SELECT key, value FROM app_config ORDER BY key ASC`)
	if err != nil {
		return nil, fmt.Errorf("list config: %w", err)
	}
	defer rows.Close()
	out := map[string]string{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan config: %w", err)
		}
		out[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate config: %w", err)
	}
	return out, nil
}

// ConfigFloat returns the stored value of key, or def when unset.
func ConfigFloat(db *sql.DB, key string, def float64) (float64, error) {
	raw, found, err := GetConfig(db, key)
	if err != nil || !found {
		return def, err
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def, fmt.Errorf("config %q: invalid number %q", key, raw)
	}
	return v, nil
}

// ConfigInt returns the stored value of key, or def when unset.
func ConfigInt(db *sql.DB, key string, def int) (int, error) {
	raw, found, err := GetConfig(db, key)
	if err != nil || !found {
		return def, err
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def, fmt.Errorf("config %q: invalid integer %q", key, raw)
	}
	return v, nil
}

func validateConfig(key, value string) error {
	switch key {
	case ConfigBarcodeProvider:
		if normalizeProvider(value) == "" || !isKnownProvider(normalizeProvider(value)) {
			return fmt.Errorf("unsupported barcode provider %q (expected openfoodfacts, upcitemdb or usda)", value)
		}
	case ConfigBarcodeFallbackOrder:
		if _, err := ParseProviderOrder(value); err != nil {
			return err
		}
	case ConfigProximityRadius:
		v, err := strconv.ParseFloat(value, 64)
		if err != nil || v <= 0 || v > proximity.MaxRadiusKm {
			return fmt.Errorf("%s must be a number in (0, %.1f]", key, proximity.MaxRadiusKm)
		}
	case ConfigExpiringDefaultDays:
		v, err := strconv.Atoi(value)
		if err != nil || v < -1 {
			return fmt.Errorf("%s must be an integer >= -1", key)
		}
	}
	return nil
}
