// Package freshness holds the pure rules over an ingredient collection:
// expiry bucketing, the threshold filter, ripeness staleness and the
// freeze/unfreeze transform. Every function takes the reference time
// explicitly.
package freshness

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/saadjs/pantry-cli/internal/model"
	"github.com/saadjs/pantry-cli/internal/timeutil"
)

const (
	RipeBucket         = "Ripe"
	NoExpirationBucket = "No expiration"
	OverdueBucket      = "Overdue"

	// Overdue is the threshold sentinel selecting items already past their date.
	Overdue = -1
)

type Mode int

const (
	// ByThreshold groups items under the named ranges in Thresholds.
	ByThreshold Mode = iota
	ByDay
)

// Threshold is an inclusive upper bound on days left. Each range starts one
// day after the previous threshold.
type Threshold struct {
	Label string
	Days  int
}

var Thresholds = []Threshold{
	{Label: OverdueBucket, Days: Overdue},
	{Label: "Next 3 Days", Days: 3},
	{Label: "Next 7 Days", Days: 7},
	{Label: "Next 14 Days", Days: 14},
	{Label: "Next 30 Days", Days: 30},
	{Label: "Later", Days: math.MaxInt},
}

// Bucket is one group of the expiring view. Days is the sort key for dated
// buckets and is meaningless for the Ripe and No expiration buckets.
type Bucket struct {
	Label   string
	Days    int
	Special bool
	Items   []model.Ingredient
}

func DaysLeft(ing model.Ingredient, now time.Time) (days int, ok bool) {
	if ing.ExpirationDate == nil {
		return 0, false
	}
	return timeutil.DayDifference(*ing.ExpirationDate, now), true
}

func IsRipe(ing model.Ingredient) bool {
	return ing.Maturity.Level >= model.RipenessRipe
}

func ThresholdFor(days int) Threshold {
	if days < 0 {
		return Thresholds[0]
	}
	for _, t := range Thresholds[1:] {
		if days <= t.Days {
			return t
		}
	}
	return Thresholds[len(Thresholds)-1]
}

// Group partitions items into buckets. Ripe items go to the Ripe bucket
// whatever their date, undated items to No expiration. Ripe sorts first,
// dated buckets follow in ascending day order and No expiration is last.
// Inside a bucket items are ordered by days left, then by insertion order.
func Group(items []model.Ingredient, now time.Time, mode Mode) []Bucket {
	var ripe, undated []model.Ingredient
	dated := map[string]*Bucket{}
	for _, ing := range items {
		if IsRipe(ing) {
			ripe = append(ripe, ing)
			continue
		}
		days, ok := DaysLeft(ing, now)
		if !ok {
			undated = append(undated, ing)
			continue
		}
		label, key := bucketKey(days, mode)
		b, exists := dated[label]
		if !exists {
			b = &Bucket{Label: label, Days: key}
			dated[label] = b
		}
		b.Items = append(b.Items, ing)
	}

	out := make([]Bucket, 0, len(dated)+2)
	if len(ripe) > 0 {
		out = append(out, Bucket{Label: RipeBucket, Special: true, Items: sortByDays(ripe, now)})
	}
	numbered := make([]Bucket, 0, len(dated))
	for _, b := range dated {
		b.Items = sortByDays(b.Items, now)
		numbered = append(numbered, *b)
	}
	sort.Slice(numbered, func(i, j int) bool { return numbered[i].Days < numbered[j].Days })
	out = append(out, numbered...)
	if len(undated) > 0 {
		out = append(out, Bucket{Label: NoExpirationBucket, Special: true, Items: undated})
	}
	return out
}

func bucketKey(days int, mode Mode) (string, int) {
	if mode == ByDay {
		return DayLabel(days), days
	}
	t := ThresholdFor(days)
	return t.Label, t.Days
}

func DayLabel(days int) string {
	switch {
	case days < -1:
		return fmt.Sprintf("Expired %d days ago", -days)
	case days == -1:
		return "Expired yesterday"
	case days == 0:
		return "Expiring today"
	case days == 1:
		return "Expiring in 1 day"
	default:
		return fmt.Sprintf("Expiring in %d days", days)
	}
}

func sortByDays(items []model.Ingredient, now time.Time) []model.Ingredient {
	out := append([]model.Ingredient(nil), items...)
	sort.SliceStable(out, func(i, j int) bool {
		di, oki := DaysLeft(out[i], now)
		dj, okj := DaysLeft(out[j], now)
		if oki != okj {
			return oki
		}
		return di < dj
	})
	return out
}

// Filter returns the dated, non-ripe items inside threshold. Overdue selects
// items past their date; any other value selects 0 <= days <= threshold.
func Filter(items []model.Ingredient, threshold int, now time.Time) []model.Ingredient {
	out := make([]model.Ingredient, 0)
	for _, ing := range items {
		if IsRipe(ing) {
			continue
		}
		days, ok := DaysLeft(ing, now)
		if !ok {
			continue
		}
		if threshold == Overdue {
			if days < 0 {
				out = append(out, ing)
			}
			continue
		}
		if days >= 0 && days <= threshold {
			out = append(out, ing)
		}
	}
	return sortByDays(out, now)
}
