package freshness

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saadjs/pantry-cli/internal/model"
	"github.com/saadjs/pantry-cli/internal/timeutil"
)

var now = time.Date(2026, 3, 10, 15, 4, 0, 0, time.UTC)

func dated(name string, days int) model.Ingredient {
	exp := timeutil.AddDays(now, days)
	return model.Ingredient{
		ID:             name,
		Name:           name,
		ExpirationDate: &exp,
		AddedDate:      now.AddDate(0, 0, -1),
		Maturity:       model.Maturity{Level: model.RipenessNone, Edited: now},
		Amount:         model.DefaultAmount(),
	}
}

func labels(buckets []Bucket) []string {
	out := make([]string, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, b.Label)
	}
	return out
}

func names(items []model.Ingredient) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Name)
	}
	return out
}

func TestThresholdFor(t *testing.T) {
	cases := map[int]string{
		-5: "Overdue", -1: "Overdue", 0: "Next 3 Days", 3: "Next 3 Days", 4: "Next 7 Days",
		7: "Next 7 Days", 8: "Next 14 Days", 14: "Next 14 Days", 15: "Next 30 Days",
		30: "Next 30 Days", 31: "Later", 400: "Later",
	}
	for days, want := range cases {
		assert.Equal(t, want, ThresholdFor(days).Label, "days=%d", days)
	}
}

func TestGroupByThresholdOrdersBuckets(t *testing.T) {
	ripe := dated("Banana", 20)
	ripe.Maturity.Level = model.RipenessRipe
	undated := model.Ingredient{ID: "salt", Name: "Salt"}
	items := []model.Ingredient{
		dated("Yogurt", 10),
		undated,
		dated("Milk", 2),
		ripe,
		dated("Cheese", -2),
		dated("Cream", 0),
		dated("Rice", 90),
	}

	buckets := Group(items, now, ByThreshold)
	assert.Equal(t, []string{"Ripe", "Overdue", "Next 3 Days", "Next 14 Days", "Later", "No expiration"}, labels(buckets))
	assert.Equal(t, []string{"Cream", "Milk"}, names(buckets[2].Items))
	assert.Equal(t, []string{"Banana"}, names(buckets[0].Items))
	assert.True(t, buckets[0].Special)
	assert.True(t, buckets[len(buckets)-1].Special)
}

func TestGroupByDay(t *testing.T) {
	items := []model.Ingredient{dated("A", 5), dated("B", -1), dated("C", 5), dated("D", 1), dated("E", 0)}
	buckets := Group(items, now, ByDay)
	assert.Equal(t, []string{"Expired yesterday", "Expiring today", "Expiring in 1 day", "Expiring in 5 days"}, labels(buckets))
	assert.Equal(t, []string{"A", "C"}, names(buckets[3].Items))
	assert.Equal(t, "Expired 4 days ago", DayLabel(-4))
}

func TestGroupIsIdempotent(t *testing.T) {
	items := []model.Ingredient{dated("A", 3), dated("B", 3), dated("C", -1), dated("D", 12), {ID: "x", Name: "X"}}
	first := Group(items, now, ByThreshold)
	second := Group(items, now, ByThreshold)
	assert.Equal(t, first, second)
	assert.Equal(t, Group(items, now, ByDay), Group(items, now, ByDay))
}

func TestFilterBoundaries(t *testing.T) {
	ripe := dated("Avocado", 1)
	ripe.Maturity.Level = model.RipenessAdvanced
	items := []model.Ingredient{dated("Seven", 7), dated("Eight", 8), dated("Zero", 0), dated("Past", -1), ripe, {ID: "n", Name: "Undated"}}

	assert.Equal(t, []string{"Zero", "Seven"}, names(Filter(items, 7, now)))
	assert.Equal(t, []string{"Past"}, names(Filter(items, Overdue, now)))
	assert.Empty(t, Filter([]model.Ingredient{{Name: "Undated"}}, 30, now))
}

func TestNeedsCheckBoundary(t *testing.T) {
	ing := dated("Pear", 5)
	ing.Maturity = model.Maturity{Level: model.RipenessRipe, Edited: now.AddDate(0, 0, -3)}
	assert.True(t, NeedsCheck(ing, now))

	ing.Maturity.Edited = now.AddDate(0, 0, -2)
	assert.False(t, NeedsCheck(ing, now))

	ing.Maturity = model.Maturity{Level: model.RipenessNone, Edited: now.AddDate(0, 0, -30)}
	assert.False(t, NeedsCheck(ing, now), "non-ripening items are never stale")
}

func TestConfirmKeepsLevel(t *testing.T) {
	ing := dated("Mango", 5)
	ing.Maturity = model.Maturity{Level: model.RipenessGreen, Edited: now.AddDate(0, 0, -5)}
	got := Confirm(ing, now)
	assert.Equal(t, model.RipenessGreen, got.Maturity.Level)
	assert.Equal(t, now, got.Maturity.Edited)

	got = SetRipeness(got, model.RipenessOverripe, now.Add(time.Hour))
	assert.Equal(t, model.RipenessOverripe, got.Maturity.Level)
	assert.Equal(t, now.Add(time.Hour), got.Maturity.Edited)
}

func TestFreezeUnfreezeRoundTrip(t *testing.T) {
	ing := dated("Chicken", 10)
	ing.ConfectionType = model.ConfectionFresh

	frozen, ok := Freeze(ing, now)
	require.True(t, ok)
	require.NotNil(t, frozen.Frozen)
	assert.Equal(t, 10, *frozen.Frozen)
	assert.Equal(t, timeutil.AddMonths(now, FrozenShelfMonths), *frozen.ExpirationDate)
	assert.Equal(t, timeutil.AddDays(now, 10), *ing.ExpirationDate, "input is not modified")

	_, ok = Freeze(frozen, now)
	assert.False(t, ok, "already frozen")

	thawed, ok := Unfreeze(frozen, now)
	require.True(t, ok)
	assert.Nil(t, thawed.Frozen)
	assert.Equal(t, 10, timeutil.DayDifference(*thawed.ExpirationDate, now))
}

func TestUnfreezeProjectsFromThawDay(t *testing.T) {
	ing := dated("Fish", 4)
	frozen, ok := Freeze(ing, now)
	require.True(t, ok)

	later := now.AddDate(0, 2, 0)
	thawed, ok := Unfreeze(frozen, later)
	require.True(t, ok)
	assert.Equal(t, 4, timeutil.DayDifference(*thawed.ExpirationDate, later))
}

func TestFreezeNoops(t *testing.T) {
	undated := model.Ingredient{Name: "Bread"}
	_, ok := Freeze(undated, now)
	assert.False(t, ok)

	canned := dated("Beans", 100)
	canned.ConfectionType = model.ConfectionCanned
	_, ok = Freeze(canned, now)
	assert.False(t, ok)

	_, ok = Unfreeze(dated("Peas", 3), now)
	assert.False(t, ok)

	left := 3
	noDate := model.Ingredient{Name: "Odd", Frozen: &left}
	_, ok = Unfreeze(noDate, now)
	assert.False(t, ok)
}

func TestSetConfectionThawsFirst(t *testing.T) {
	frozen, ok := Freeze(dated("Beef", 6), now)
	require.True(t, ok)

	cooked := SetConfection(frozen, model.ConfectionCooked, now)
	assert.Nil(t, cooked.Frozen)
	assert.Equal(t, model.ConfectionCooked, cooked.ConfectionType)
	assert.Equal(t, 6, timeutil.DayDifference(*cooked.ExpirationDate, now))

	stillFrozen := SetConfection(frozen, model.ConfectionFresh, now)
	assert.NotNil(t, stillFrozen.Frozen)
}

func TestSetOpenNotice(t *testing.T) {
	ing := dated("Juice", 20)
	opened, notice := SetOpen(ing, true)
	assert.True(t, notice)
	assert.True(t, opened.Open)

	_, notice = SetOpen(opened, true)
	assert.False(t, notice)
	_, notice = SetOpen(opened, false)
	assert.False(t, notice)
}

func TestExpectedExpiry(t *testing.T) {
	added := now.AddDate(0, 0, -20)
	exp := added.AddDate(0, 0, 7)
	item := model.IngredientDraft{Name: "Milk", AddedDate: &added, ExpirationDate: &exp}

	got := ExpectedExpiry(item, now)
	require.NotNil(t, got)
	assert.Equal(t, 7, timeutil.DayDifference(*got, now))

	assert.Nil(t, ExpectedExpiry(model.IngredientDraft{Name: "Milk", ExpirationDate: &exp}, now))
}

func TestQueryMissingData(t *testing.T) {
	complete := dated("Complete", 5)
	complete.Category = model.CategoryDairy
	complete.Location = model.LocationFridge
	complete.ConfectionType = model.ConfectionFresh
	missing := complete
	missing.ID, missing.Name, missing.Category = "m", "Missing", ""

	got := Query{Missing: true}.Apply([]model.Ingredient{complete, missing}, now)
	assert.Equal(t, []string{"Missing"}, names(got))
	assert.False(t, MissingData(complete))
}

func TestQueryRecentAndFilters(t *testing.T) {
	old := dated("Old Cheese", 5)
	old.AddedDate = now.AddDate(0, 0, -10)
	old.Location = model.LocationFridge
	fresh := dated("Crème fraîche", 5)
	fresh.AddedDate = now.AddDate(0, 0, -1)
	fresh.Location = model.LocationFridge
	pantry := dated("Pasta", 200)
	pantry.AddedDate = now
	pantry.Location = model.LocationPantry

	items := []model.Ingredient{old, fresh, pantry}
	assert.Equal(t, []string{"Pasta", "Crème fraîche", "Old Cheese"}, names(Query{Recent: true}.Apply(items, now)))
	assert.Equal(t, []string{"Pasta", "Crème fraîche"}, names(Query{Recent: true, WithinDays: 7}.Apply(items, now)))
	assert.Equal(t, []string{"Old Cheese", "Crème fraîche"}, names(Query{Location: model.LocationFridge}.Apply(items, now)))
	assert.Equal(t, []string{"Crème fraîche"}, names(Query{Search: "CREME"}.Apply(items, now)))
	assert.Equal(t, []string{"Old Cheese"}, names(Query{Location: model.LocationFridge, Search: "chee"}.Apply(items, now)))
}

func TestAppleScenario(t *testing.T) {
	apple := dated("Apple", 3)
	apple.Maturity = model.Maturity{Level: model.RipenessNone, Edited: now}
	items := []model.Ingredient{apple}

	assert.Equal(t, []string{"Apple"}, names(Filter(items, 3, now)))
	assert.Empty(t, Filter(items, Overdue, now))
	buckets := Group(items, now, ByThreshold)
	require.Len(t, buckets, 1)
	assert.Equal(t, "Next 3 Days", buckets[0].Label)

	apple.Maturity = model.Maturity{Level: model.RipenessRipe, Edited: now.AddDate(0, 0, -5)}
	assert.True(t, NeedsCheck(apple, now))
	apple = Confirm(apple, now)
	assert.Equal(t, now, apple.Maturity.Edited)
	assert.False(t, NeedsCheck(apple, now))

	later := now.AddDate(0, 0, 4)
	assert.True(t, NeedsCheck(apple, later))
}
