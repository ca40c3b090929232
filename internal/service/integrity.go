package service

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/saadjs/pantry-cli/internal/freshness"
	"github.com/saadjs/pantry-cli/internal/model"
)

type BackupInfo struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	CreatedAt time.Time `json:"created_at"`
	SizeBytes int64     `json:"size_bytes"`
}

type DoctorReport struct {
	DuplicateIDs        int `json:"duplicate_ids"`
	FrozenNotFresh      int `json:"frozen_not_fresh"`
	BadMaturityStamps   int `json:"bad_maturity_stamps"`
	BlankGroceryNames   int `json:"blank_grocery_names"`
	InvalidShops        int `json:"invalid_shops"`
	ExpiredCacheRows    int `json:"expired_cache_rows"`
	FixedIngredients    int `json:"fixed_ingredients,omitempty"`
	RemovedGroceryItems int `json:"removed_grocery_items,omitempty"`
	RemovedShops        int `json:"removed_shops,omitempty"`
	PurgedCacheRows     int `json:"purged_cache_rows,omitempty"`
}

// Problems is the number of issues found, fixed or not.
func (r DoctorReport) Problems() int {
	return r.DuplicateIDs + r.FrozenNotFresh + r.BadMaturityStamps + r.BlankGroceryNames + r.InvalidShops + r.ExpiredCacheRows
}

// CreateBackup copies the sqlite file to outPath and writes a sha256 sidecar.
// The WAL is checkpointed first so the copy holds every committed write.
func CreateBackup(db *sql.DB, dbPath, outPath string) (BackupInfo, error) {
	if strings.TrimSpace(dbPath) == "" {
		return BackupInfo{}, fmt.Errorf("db path is required")
	}
	if strings.TrimSpace(outPath) == "" {
		return BackupInfo{}, fmt.Errorf("backup output path is required")
	}
	if db != nil {
		if _, err := db.Exec(`PRAGMA wal_checkpoint(TRUNCATE)`); err != nil {
			return BackupInfo{}, fmt.Errorf("checkpoint wal: %w", err)
		}
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return BackupInfo{}, fmt.Errorf("create backup directory: %w", err)
	}
	if err := copyFile(dbPath, outPath); err != nil {
		return BackupInfo{}, err
	}
	checksum, err := fileSHA256(outPath)
	if err != nil {
		return BackupInfo{}, err
	}
	if err := os.WriteFile(outPath+".sha256", []byte(checksum+"\n"), 0o644); err != nil {
		return BackupInfo{}, fmt.Errorf("write checksum file: %w", err)
	}
	st, err := os.Stat(outPath)
	if err != nil {
		return BackupInfo{}, fmt.Errorf("stat backup: %w", err)
	}
	return BackupInfo{Path: outPath, Checksum: checksum, CreatedAt: st.ModTime(), SizeBytes: st.Size()}, nil
}

func RestoreBackup(backupPath, dbPath string, force bool) error {
	if strings.TrimSpace(backupPath) == "" || strings.TrimSpace(dbPath) == "" {
		return fmt.Errorf("backup path and db path are required")
	}
	if !force {
		if _, err := os.Stat(dbPath); err == nil {
			return fmt.Errorf("target db already exists; use --force to overwrite")
		}
	}
	if expected, err := os.ReadFile(backupPath + ".sha256"); err == nil {
		actual, err := fileSHA256(backupPath)
		if err != nil {
			return err
		}
		if strings.TrimSpace(string(expected)) != actual {
			return fmt.Errorf("backup checksum mismatch")
		}
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("create db directory: %w", err)
	}
	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Remove(dbPath + suffix); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove stale %s file: %w", suffix, err)
		}
	}
	return copyFile(backupPath, dbPath)
}

func ListBackups(dir string) ([]BackupInfo, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read backup dir: %w", err)
	}
	out := make([]BackupInfo, 0)
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".db") {
			continue
		}
		full := filepath.Join(dir, f.Name())
		st, err := os.Stat(full)
		if err != nil {
			continue
		}
		checksum := ""
		if b, err := os.ReadFile(full + ".sha256"); err == nil {
			checksum = strings.TrimSpace(string(b))
		}
		out = append(out, BackupInfo{Path: full, Checksum: checksum, CreatedAt: st.ModTime(), SizeBytes: st.Size()})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// RunDoctor checks the collections and the product cache for records the
// engines would mishandle. With fix set, repairable records are rewritten
// through the stores and expired cache rows are purged.
func RunDoctor(ctx context.Context, db *sql.DB, s Stores, fix bool, now time.Time) (DoctorReport, error) {
	report := DoctorReport{}

	ingredients := s.Inventory.List()
	seen := make(map[string]bool, len(ingredients))
	fixed := make([]model.Ingredient, 0, len(ingredients))
	changed := false
	for _, ing := range ingredients {
		if seen[ing.ID] {
			report.DuplicateIDs++
			changed = true
			continue
		}
		seen[ing.ID] = true
		repaired := false
		if ing.IsFrozen() && ing.ConfectionType != "" && ing.ConfectionType != model.ConfectionFresh {
			report.FrozenNotFresh++
			if thawed, ok := freshness.Unfreeze(ing, now); ok {
				ing = thawed
			} else {
				ing.Frozen = nil
			}
			repaired = true
		}
		if ing.Maturity.Level != model.RipenessNone && (ing.Maturity.Edited.IsZero() || ing.Maturity.Edited.After(now)) {
			report.BadMaturityStamps++
			ing.Maturity.Edited = now
			repaired = true
		}
		if repaired {
			report.FixedIngredients++
			changed = true
		}
		fixed = append(fixed, ing)
	}

	grocery := s.Grocery.List()
	keptGrocery := make([]model.GroceryListItem, 0, len(grocery))
	for _, g := range grocery {
		if model.ValidateName(g.Item.Name) != nil {
			report.BlankGroceryNames++
			continue
		}
		keptGrocery = append(keptGrocery, g)
	}

	shops := s.Shops.List()
	keptShops := make([]model.Shop, 0, len(shops))
	for _, sh := range shops {
		if model.ValidateCoordinates(sh.Latitude, sh.Longitude) != nil {
			report.InvalidShops++
			continue
		}
		keptShops = append(keptShops, sh)
	}

	expired, err := expiredCacheRows(db, now)
	if err != nil {
		return report, err
	}
	report.ExpiredCacheRows = len(expired)

	if !fix {
		return report, nil
	}
	if changed {
		if err := s.Inventory.Replace(ctx, fixed); err != nil {
			return report, fmt.Errorf("doctor fix ingredients: %w", err)
		}
	}
	if report.BlankGroceryNames > 0 {
		if err := s.Grocery.Replace(ctx, keptGrocery); err != nil {
			return report, fmt.Errorf("doctor fix grocery list: %w", err)
		}
		report.RemovedGroceryItems = report.BlankGroceryNames
	}
	if report.InvalidShops > 0 {
		if err := s.Shops.Replace(ctx, keptShops); err != nil {
			return report, fmt.Errorf("doctor fix shops: %w", err)
		}
		report.RemovedShops = report.InvalidShops
	}
	if len(expired) > 0 {
		tx, err := db.Begin()
		if err != nil {
			return report, fmt.Errorf("doctor fix begin tx: %w", err)
		}
		for _, key := range expired {
			if _, err := tx.Exec(`DELETE FROM product_cache WHERE provider = ? AND barcode = ?`, key[0], key[1]); err != nil {
				_ = tx.Rollback()
				return report, fmt.Errorf("doctor purge cache row %s/%s: %w", key[0], key[1], err)
			}
			report.PurgedCacheRows++
		}
		if err := tx.Commit(); err != nil {
			return report, fmt.Errorf("doctor fix commit: %w", err)
		}
	}
	return report, nil
}

func expiredCacheRows(db *sql.DB, now time.Time) ([][2]string, error) {
	rows, err := db.Query(`SELECT provider, barcode, expires_at FROM product_cache`)
	if err != nil {
		return nil, fmt.Errorf("doctor cache query: %w", err)
	}
	defer rows.Close()
	out := make([][2]string, 0)
	for rows.Next() {
		var provider, barcode, expiresRaw string
		if err := rows.Scan(&provider, &barcode, &expiresRaw); err != nil {
			return nil, fmt.Errorf("doctor cache scan: %w", err)
		}
		expiresAt, err := time.Parse(time.RFC3339, expiresRaw)
		if err != nil || now.After(expiresAt) {
			out = append(out, [2]string{provider, barcode})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("doctor cache rows: %w", err)
	}
	return out, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source file: %w", err)
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create destination file: %w", err)
	}
	defer out.Close()
	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy file: %w", err)
	}
	if err := out.Sync(); err != nil {
		return fmt.Errorf("sync destination file: %w", err)
	}
	return nil
}

func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file for checksum: %w", err)
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash file: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
