package service

import (
	"errors"
	"testing"

	"github.com/saadjs/pantry-cli/internal/model"
)

func TestBarcodeLocksProtectIdentity(t *testing.T) {
	res := ProductLookupResult{Name: "Greek Yogurt", Brand: "Fage", Category: model.CategoryDairy}
	form := Form{Initial: res.Draft(), Locks: BarcodeLocks(res)}

	if _, err := form.Apply(model.IngredientDraft{Name: "Skyr"}, fixedNow()); !errors.Is(err, ErrFieldLocked) {
		t.Fatalf("expected locked name edit to fail, got %v", err)
	}
	if _, err := form.Apply(model.IngredientDraft{Brand: "Other"}, fixedNow()); !errors.Is(err, ErrFieldLocked) {
		t.Fatalf("expected locked brand edit to fail, got %v", err)
	}

	got, err := form.Apply(model.IngredientDraft{Name: "greek yogurt", Location: model.LocationFridge, Category: model.CategoryOther}, fixedNow())
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got.Name != "greek yogurt" {
		t.Fatalf("unexpected name %q", got.Name)
	}
	if got.Location != model.LocationFridge || got.Category != model.CategoryOther {
		t.Fatalf("unlocked fields should take edits: %+v", got)
	}
	if got.Open == nil || got.Maturity == nil || got.Amount == nil {
		t.Fatalf("expected defaults on applied draft: %+v", got)
	}
}

func TestBarcodeLocksSkipEmptyFields(t *testing.T) {
	locks := BarcodeLocks(ProductLookupResult{Name: "Oats"})
	if !locks.Name || locks.Brand {
		t.Fatalf("unexpected locks: %+v", locks)
	}
}

func TestFieldLocksUnlock(t *testing.T) {
	locks := FieldLocks{Name: true, Brand: true, Expiration: true}
	locks, err := locks.Unlock([]string{"brand", " Expiration "})
	if err != nil {
		t.Fatalf("unlock: %v", err)
	}
	if !locks.Name || locks.Brand || locks.Expiration {
		t.Fatalf("unexpected locks after unlock: %+v", locks)
	}
	if _, err := locks.Unlock([]string{"colour"}); err == nil {
		t.Fatalf("expected unknown field to fail")
	}
}

func TestFormRequiresName(t *testing.T) {
	form := Form{}
	if _, err := form.Apply(model.IngredientDraft{Brand: "x"}, fixedNow()); !errors.Is(err, model.ErrNameRequired) {
		t.Fatalf("expected ErrNameRequired, got %v", err)
	}
}
