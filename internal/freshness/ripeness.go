package freshness

import (
	"time"

	"github.com/saadjs/pantry-cli/internal/model"
	"github.com/saadjs/pantry-cli/internal/timeutil"
)

// StaleAfterDays is how long a ripeness reading stays trusted.
const StaleAfterDays = 3

// NeedsCheck reports whether a ripening item's stage has gone unconfirmed
// for StaleAfterDays or more.
func NeedsCheck(ing model.Ingredient, now time.Time) bool {
	if ing.Maturity.Level == model.RipenessNone {
		return false
	}
	return timeutil.DayDifference(now, ing.Maturity.Edited) >= StaleAfterDays
}

func Confirm(ing model.Ingredient, now time.Time) model.Ingredient {
	ing.Maturity.Edited = now
	return ing
}

func SetRipeness(ing model.Ingredient, lvl model.Ripeness, now time.Time) model.Ingredient {
	ing.Maturity = model.Maturity{Level: lvl, Edited: now}
	return ing
}

func NeedingCheck(items []model.Ingredient, now time.Time) []model.Ingredient {
	out := make([]model.Ingredient, 0)
	for _, ing := range items {
		if NeedsCheck(ing, now) {
			out = append(out, ing)
		}
	}
	return out
}
