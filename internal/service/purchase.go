package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/saadjs/pantry-cli/internal/freshness"
	"github.com/saadjs/pantry-cli/internal/model"
	"github.com/saadjs/pantry-cli/internal/store"
)

type BuyOptions struct {
	// ExpirationDate replaces the projected expiry when set.
	ExpirationDate *time.Time
	// Merge adds the amount to an existing ingredient with the same name,
	// brand and measure instead of creating a new one.
	Merge bool
}

type BuyResult struct {
	Ingredient model.Ingredient
	Merged     bool
}

// Buy moves a grocery list item into the pantry. The ingredient is written
// first; the list entry is only removed once that write succeeded, so a
// failed purchase leaves the item on the list.
func Buy(ctx context.Context, inv *store.Inventory, groc *store.Grocery, id string, opts BuyOptions, now time.Time) (BuyResult, error) {
	entry, ok := groc.Get(id)
	if !ok {
		return BuyResult{}, fmt.Errorf("%w: grocery item %s", ErrNotFound, id)
	}
	draft := purchaseDraft(entry.Item, opts.ExpirationDate, now)
	if err := model.ValidateName(draft.Name); err != nil {
		return BuyResult{}, err
	}

	result, err := addOrMerge(ctx, inv, draft, opts.Merge)
	if err != nil {
		return BuyResult{}, fmt.Errorf("add purchased %q to pantry: %w", draft.Name, err)
	}
	if _, err := groc.Delete(ctx, id); err != nil {
		return result, fmt.Errorf("remove %q from grocery list: %w", draft.Name, err)
	}
	return result, nil
}

// purchaseDraft is what a bought list item becomes: the projected expiry,
// a fresh ripeness stamp and no frozen interval.
func purchaseDraft(item model.IngredientDraft, exp *time.Time, now time.Time) model.IngredientDraft {
	draft := item.Clone()
	switch {
	case exp != nil:
		e := *exp
		draft.ExpirationDate = &e
	default:
		if projected := freshness.ExpectedExpiry(item, now); projected != nil {
			draft.ExpirationDate = projected
		}
	}
	draft.AddedDate = nil
	draft.Frozen = nil
	if draft.Maturity != nil {
		draft.Maturity = &model.Maturity{Level: draft.Maturity.Level, Edited: now}
	}
	return draft
}

func addOrMerge(ctx context.Context, inv *store.Inventory, draft model.IngredientDraft, merge bool) (BuyResult, error) {
	if merge {
		if existing, ok := findMergeTarget(inv.List(), draft); ok {
			sum, _ := model.AddAmounts(existing.Amount, amountOrDefault(draft.Amount))
			existing.Amount = sum
			if draft.ExpirationDate != nil {
				existing.ExpirationDate = draft.ExpirationDate
			}
			found, err := inv.Update(ctx, existing)
			if err != nil {
				return BuyResult{}, err
			}
			if found {
				return BuyResult{Ingredient: existing, Merged: true}, nil
			}
		}
	}
	ing, err := inv.Add(ctx, draft)
	if err != nil {
		return BuyResult{}, err
	}
	return BuyResult{Ingredient: ing}, nil
}

func findMergeTarget(items []model.Ingredient, draft model.IngredientDraft) (model.Ingredient, bool) {
	name := freshness.FoldName(draft.Name)
	brand := freshness.FoldName(draft.Brand)
	amount := amountOrDefault(draft.Amount)
	for _, it := range items {
		if it.IsFrozen() {
			continue
		}
		if freshness.FoldName(it.Name) != name || freshness.FoldName(it.Brand) != brand {
			continue
		}
		if model.SameMeasure(it.Amount, amount) {
			return it, true
		}
	}
	return model.Ingredient{}, false
}

func amountOrDefault(a model.Amount) model.Amount {
	if a == nil {
		return model.DefaultAmount()
	}
	return a
}

// AddToGrocery puts a copy of a pantry ingredient on the grocery list. The
// amount resets to a single piece and the new package starts closed with
// no ripeness reading. A frozen ingredient is thawed in the copy so the
// shelf life projected at purchase is the original one.
func AddToGrocery(ctx context.Context, groc *store.Grocery, ing model.Ingredient, now time.Time) (model.GroceryListItem, error) {
	ing, thawed := freshness.Unfreeze(ing, now)
	draft := model.DraftOf(ing)
	if thawed {
		draft.AddedDate = &now
	}
	draft.Amount = model.DefaultAmount()
	draft.Open = nil
	draft.Maturity = nil
	draft.Frozen = nil
	draft.Name = strings.TrimSpace(draft.Name)
	return groc.Add(ctx, draft)
}
