package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/saadjs/pantry-cli/internal/model"
)

// FieldLocks marks form fields as read-only. The policy is chosen by the
// caller when the form is built; it is never inferred from which initial
// values happen to be present.
type FieldLocks struct {
	Name       bool
	Brand      bool
	Category   bool
	Location   bool
	Confection bool
	Expiration bool
	Amount     bool
}

// Lockable field names accepted by ParseFieldList.
const (
	FieldName       = "name"
	FieldBrand      = "brand"
	FieldCategory   = "category"
	FieldLocation   = "location"
	FieldConfection = "confection"
	FieldExpiration = "expiration"
	FieldAmount     = "amount"
)

// BarcodeLocks is the policy for forms pre-filled from a product lookup:
// the identity of the product comes from the barcode.
func BarcodeLocks(r ProductLookupResult) FieldLocks {
	return FieldLocks{
		Name:  strings.TrimSpace(r.Name) != "",
		Brand: strings.TrimSpace(r.Brand) != "",
	}
}

// Unlock clears the named fields.
func (l FieldLocks) Unlock(fields []string) (FieldLocks, error) {
	for _, f := range fields {
		switch strings.ToLower(strings.TrimSpace(f)) {
		case FieldName:
			l.Name = false
		case FieldBrand:
			l.Brand = false
		case FieldCategory:
			l.Category = false
		case FieldLocation:
			l.Location = false
		case FieldConfection:
			l.Confection = false
		case FieldExpiration:
			l.Expiration = false
		case FieldAmount:
			l.Amount = false
		case "":
		default:
			return l, fmt.Errorf("unknown field %q", f)
		}
	}
	return l, nil
}

// Form holds the initial values of an ingredient form and its lock policy.
type Form struct {
	Initial model.IngredientDraft
	Locks   FieldLocks
}

// Apply merges the user's edits over the initial values. Editing a locked
// field to a different value fails with ErrFieldLocked. The result is
// validated and carries defaults.
func (f Form) Apply(edits model.IngredientDraft, now time.Time) (model.IngredientDraft, error) {
	out := f.Initial.Clone()
	if edits.Name != "" {
		if f.Locks.Name && !strings.EqualFold(strings.TrimSpace(edits.Name), strings.TrimSpace(out.Name)) {
			return model.IngredientDraft{}, fmt.Errorf("%w: %s", ErrFieldLocked, FieldName)
		}
		out.Name = edits.Name
	}
	if edits.Brand != "" {
		if f.Locks.Brand && !strings.EqualFold(strings.TrimSpace(edits.Brand), strings.TrimSpace(out.Brand)) {
			return model.IngredientDraft{}, fmt.Errorf("%w: %s", ErrFieldLocked, FieldBrand)
		}
		out.Brand = edits.Brand
	}
	if edits.Category != "" {
		if f.Locks.Category && edits.Category != out.Category {
			return model.IngredientDraft{}, fmt.Errorf("%w: %s", ErrFieldLocked, FieldCategory)
		}
		out.Category = edits.Category
	}
	if edits.Location != "" {
		if f.Locks.Location && edits.Location != out.Location {
			return model.IngredientDraft{}, fmt.Errorf("%w: %s", ErrFieldLocked, FieldLocation)
		}
		out.Location = edits.Location
	}
	if edits.ConfectionType != "" {
		if f.Locks.Confection && edits.ConfectionType != out.ConfectionType {
			return model.IngredientDraft{}, fmt.Errorf("%w: %s", ErrFieldLocked, FieldConfection)
		}
		out.ConfectionType = edits.ConfectionType
	}
	if edits.ExpirationDate != nil {
		if f.Locks.Expiration {
			return model.IngredientDraft{}, fmt.Errorf("%w: %s", ErrFieldLocked, FieldExpiration)
		}
		exp := *edits.ExpirationDate
		out.ExpirationDate = &exp
	}
	if edits.Amount != nil {
		if f.Locks.Amount {
			return model.IngredientDraft{}, fmt.Errorf("%w: %s", ErrFieldLocked, FieldAmount)
		}
		out.Amount = edits.Amount
	}
	if edits.Open != nil {
		open := *edits.Open
		out.Open = &open
	}
	if edits.Maturity != nil {
		m := *edits.Maturity
		out.Maturity = &m
	}
	if err := model.ValidateName(out.Name); err != nil {
		return model.IngredientDraft{}, err
	}
	return out.WithDefaults(now), nil
}
