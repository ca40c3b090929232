package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/saadjs/pantry-cli/internal/model"
	"github.com/saadjs/pantry-cli/internal/store"
)

const ExportVersion = 1

type ExportData struct {
	Version     int                     `json:"version"`
	ExportedAt  time.Time               `json:"exportedAt"`
	Ingredients []model.Ingredient      `json:"ingredients"`
	Grocery     []model.GroceryListItem `json:"grocery"`
	Shops       []model.Shop            `json:"shops"`
}

type ImportMode string

const (
	ImportModeSkip    ImportMode = "skip"
	ImportModeMerge   ImportMode = "merge"
	ImportModeReplace ImportMode = "replace"
)

type ImportOptions struct {
	Mode   ImportMode
	DryRun bool
}

type ImportReport struct {
	Inserted int      `json:"inserted"`
	Updated  int      `json:"updated"`
	Skipped  int      `json:"skipped"`
	Warnings []string `json:"warnings,omitempty"`
}

// Stores groups the three collections for whole-dataset operations.
type Stores struct {
	Inventory *store.Inventory
	Grocery   *store.Grocery
	Shops     *store.Shops
}

func ExportDataSnapshot(s Stores, now time.Time) ExportData {
	return ExportData{
		Version:     ExportVersion,
		ExportedAt:  now,
		Ingredients: s.Inventory.List(),
		Grocery:     s.Grocery.List(),
		Shops:       s.Shops.List(),
	}
}

func WriteExport(w io.Writer, data ExportData) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("encode export: %w", err)
	}
	return nil
}

func ReadExport(r io.Reader) (ExportData, error) {
	var data ExportData
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return ExportData{}, fmt.Errorf("decode export: %w", err)
	}
	if data.Version > ExportVersion {
		return ExportData{}, fmt.Errorf("export version %d is newer than supported version %d", data.Version, ExportVersion)
	}
	return data, nil
}

// ImportDataSnapshot loads an export into the stores. Replace swaps each
// collection wholesale; merge overwrites records with the same id and
// appends the rest; skip only appends unknown ids. Records with a blank name
// are skipped with a warning.
func ImportDataSnapshot(ctx context.Context, s Stores, data ExportData, opts ImportOptions) (ImportReport, error) {
	mode := normalizeImportMode(opts.Mode)
	report := ImportReport{}

	ingredients := make([]model.Ingredient, 0, len(data.Ingredients))
	for _, ing := range data.Ingredients {
		if model.ValidateName(ing.Name) != nil || ing.ID == "" {
			report.Warnings = append(report.Warnings, fmt.Sprintf("ingredient %q skipped: missing id or name", ing.ID))
			report.Skipped++
			continue
		}
		if ing.Amount == nil {
			ing.Amount = model.DefaultAmount()
		}
		ingredients = append(ingredients, ing)
	}
	grocery := make([]model.GroceryListItem, 0, len(data.Grocery))
	for _, g := range data.Grocery {
		if model.ValidateName(g.Item.Name) != nil || g.ID == "" {
			report.Warnings = append(report.Warnings, fmt.Sprintf("grocery item %q skipped: missing id or name", g.ID))
			report.Skipped++
			continue
		}
		grocery = append(grocery, g)
	}
	shops := make([]model.Shop, 0, len(data.Shops))
	for _, sh := range data.Shops {
		if sh.ID == "" || model.ValidateCoordinates(sh.Latitude, sh.Longitude) != nil {
			report.Warnings = append(report.Warnings, fmt.Sprintf("shop %q skipped: missing id or invalid coordinates", sh.ID))
			report.Skipped++
			continue
		}
		shops = append(shops, sh)
	}

	mergedIngredients := mergeByID(s.Inventory.List(), ingredients, func(i model.Ingredient) string { return i.ID }, mode, &report)
	mergedGrocery := mergeByID(s.Grocery.List(), grocery, func(g model.GroceryListItem) string { return g.ID }, mode, &report)
	mergedShops := mergeByID(s.Shops.List(), shops, func(sh model.Shop) string { return sh.ID }, mode, &report)
	if opts.DryRun {
		return report, nil
	}

	if err := s.Inventory.Replace(ctx, mergedIngredients); err != nil {
		return report, fmt.Errorf("import ingredients: %w", err)
	}
	if err := s.Grocery.Replace(ctx, mergedGrocery); err != nil {
		return report, fmt.Errorf("import grocery list: %w", err)
	}
	if err := s.Shops.Replace(ctx, mergedShops); err != nil {
		return report, fmt.Errorf("import shops: %w", err)
	}
	return report, nil
}

func mergeByID[T any](existing, incoming []T, idOf func(T) string, mode ImportMode, report *ImportReport) []T {
	if mode == ImportModeReplace {
		report.Inserted += len(incoming)
		return dedupeByID(incoming, idOf, report)
	}
	out := append([]T(nil), existing...)
	index := make(map[string]int, len(out))
	for i, it := range out {
		index[idOf(it)] = i
	}
	for _, it := range incoming {
		id := idOf(it)
		if i, ok := index[id]; ok {
			if mode == ImportModeSkip {
				report.Skipped++
				continue
			}
			out[i] = it
			report.Updated++
			continue
		}
		index[id] = len(out)
		out = append(out, it)
		report.Inserted++
	}
	return out
}

func dedupeByID[T any](items []T, idOf func(T) string, report *ImportReport) []T {
	seen := make(map[string]bool, len(items))
	out := make([]T, 0, len(items))
	for _, it := range items {
		id := idOf(it)
		if seen[id] {
			report.Inserted--
			report.Skipped++
			report.Warnings = append(report.Warnings, fmt.Sprintf("duplicate id %q skipped", id))
			continue
		}
		seen[id] = true
		out = append(out, it)
	}
	return out
}

func normalizeImportMode(mode ImportMode) ImportMode {
	switch mode {
	case ImportModeSkip, ImportModeMerge, ImportModeReplace:
		return mode
	default:
		return ImportModeMerge
	}
}

// ParseImportMode validates a user supplied mode.
func ParseImportMode(value string) (ImportMode, error) {
	switch m := ImportMode(value); m {
	case ImportModeSkip, ImportModeMerge, ImportModeReplace:
		return m, nil
	case "":
		return ImportModeMerge, nil
	default:
		return "", fmt.Errorf("invalid import mode %q (expected replace, merge or skip)", value)
	}
}
