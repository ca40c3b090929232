package freshness

import (
	"sort"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/saadjs/pantry-cli/internal/model"
	"github.com/saadjs/pantry-cli/internal/timeutil"
)

// Query combines the secondary filters of the query view. Zero fields do not
// filter.
type Query struct {
	Missing    bool
	Recent     bool
	WithinDays int
	Location   model.Location
	Category   model.Category
	Confection model.Confection
	Search     string
}

// Apply returns the matching items. Recent orders the result by added date,
// newest first; otherwise insertion order is kept.
func (q Query) Apply(items []model.Ingredient, now time.Time) []model.Ingredient {
	search := FoldName(q.Search)
	out := make([]model.Ingredient, 0)
	for _, ing := range items {
		if q.Missing && !MissingData(ing) {
			continue
		}
		if q.Recent && q.WithinDays > 0 && timeutil.DayDifference(now, ing.AddedDate) > q.WithinDays {
			continue
		}
		if q.Location != "" && ing.Location != q.Location {
			continue
		}
		if q.Category != "" && ing.Category != q.Category {
			continue
		}
		if q.Confection != "" && ing.ConfectionType != q.Confection {
			continue
		}
		if search != "" && !strings.Contains(FoldName(ing.Name), search) {
			continue
		}
		out = append(out, ing)
	}
	if q.Recent {
		sort.SliceStable(out, func(i, j int) bool { return out[i].AddedDate.After(out[j].AddedDate) })
	}
	return out
}

// MissingData reports whether any of category, location, confection type or
// expiration date is unset.
func MissingData(ing model.Ingredient) bool {
	return ing.Category == "" || ing.Location == "" || ing.ConfectionType == "" || ing.ExpirationDate == nil
}

func MatchName(name, search string) bool {
	return strings.Contains(FoldName(name), FoldName(search))
}

// FoldName normalises a name for comparison: trimmed, accents stripped and
// case folded.
func FoldName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	return cases.Fold().String(stripped)
}
