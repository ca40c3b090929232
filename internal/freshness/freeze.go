package freshness

import (
	"time"

	"github.com/saadjs/pantry-cli/internal/model"
	"github.com/saadjs/pantry-cli/internal/timeutil"
)

// FrozenShelfMonths is the flat shelf life given to anything put in the
// freezer.
const FrozenShelfMonths = 6

const OpenedNotice = "Opened products may not last until the printed expiration date."

// Freeze stores the days left until the current expiration date and replaces
// the date with now plus FrozenShelfMonths. It reports false, leaving ing
// unchanged, when there is no date, the item is not fresh or it is already
// frozen.
func Freeze(ing model.Ingredient, now time.Time) (model.Ingredient, bool) {
	if ing.ExpirationDate == nil || ing.IsFrozen() {
		return ing, false
	}
	if ing.ConfectionType != "" && ing.ConfectionType != model.ConfectionFresh {
		return ing, false
	}
	left := timeutil.DayDifference(*ing.ExpirationDate, now)
	exp := timeutil.AddMonths(now, FrozenShelfMonths)
	ing.Frozen = &left
	ing.ExpirationDate = &exp
	return ing, true
}

// Unfreeze projects the remaining shelf life recorded at freezing time from
// now and clears the frozen interval. It reports false when the item has no
// date or is not frozen.
func Unfreeze(ing model.Ingredient, now time.Time) (model.Ingredient, bool) {
	if ing.ExpirationDate == nil || ing.Frozen == nil {
		return ing, false
	}
	exp := timeutil.AddDays(now, *ing.Frozen)
	ing.ExpirationDate = &exp
	ing.Frozen = nil
	return ing, true
}

// SetConfection changes the confection type. Leaving Fresh thaws a frozen
// item first.
func SetConfection(ing model.Ingredient, c model.Confection, now time.Time) model.Ingredient {
	if c != model.ConfectionFresh {
		ing, _ = Unfreeze(ing, now)
	}
	ing.ConfectionType = c
	return ing
}

func SetOpen(ing model.Ingredient, open bool) (out model.Ingredient, notice bool) {
	notice = open && !ing.Open
	ing.Open = open
	return ing, notice
}

// ExpectedExpiry projects a planned purchase's shelf life from now: the
// interval between the item's added and expiration dates, counted from
// today. It returns nil unless both dates are present.
func ExpectedExpiry(item model.IngredientDraft, now time.Time) *time.Time {
	if item.ExpirationDate == nil || item.AddedDate == nil {
		return nil
	}
	exp := timeutil.AddDays(now, timeutil.DayDifference(*item.ExpirationDate, *item.AddedDate))
	return &exp
}
