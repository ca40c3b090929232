package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatAmountHandlesEveryKind(t *testing.T) {
	for _, kind := range AmountKinds {
		a, err := NewAmount(kind, "2", "ml")
		require.NoError(t, err, kind)
		assert.Equal(t, kind, a.Kind())
		assert.NotEmpty(t, FormatAmount(a), kind)
	}
}

func TestNewAmountValidation(t *testing.T) {
	_, err := NewAmount(AmountCustom, "2", " ")
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = NewAmount(AmountFraction, "120", "")
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = NewAmount(AmountCount, "lots", "")
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = NewAmount("bags", "1", "")
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestAddAmounts(t *testing.T) {
	sum, ok := AddAmounts(Count{Value: decimal.NewFromInt(2)}, Count{Value: decimal.RequireFromString("1.5")})
	require.True(t, ok)
	assert.Equal(t, "3.5 pcs", FormatAmount(sum))

	sum, ok = AddAmounts(Fraction{Percent: decimal.NewFromInt(70)}, Fraction{Percent: decimal.NewFromInt(50)})
	require.True(t, ok)
	assert.Equal(t, "100%", FormatAmount(sum))

	_, ok = AddAmounts(Custom{Value: decimal.NewFromInt(1), Unit: "ml"}, Custom{Value: decimal.NewFromInt(1), Unit: "g"})
	assert.False(t, ok)
	assert.False(t, SameMeasure(Count{}, Fraction{}))
}

func TestIngredientJSONRestoresDatesAndAmount(t *testing.T) {
	exp := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	frozen := 4
	in := Ingredient{
		ID:             "a",
		Name:           "Milk",
		Category:       CategoryDairy,
		ExpirationDate: &exp,
		AddedDate:      time.Date(2026, 3, 20, 9, 0, 0, 0, time.UTC),
		Maturity:       Maturity{Level: RipenessNone, Edited: time.Date(2026, 3, 20, 9, 0, 0, 0, time.UTC)},
		Frozen:         &frozen,
		Amount:         Custom{Value: decimal.NewFromInt(500), Unit: "ml"},
	}
	b, err := json.Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"expirationDate":"2026-04-01T00:00:00Z"`)
	assert.Contains(t, string(b), `"amount":{"kind":"custom","value":"500","unit":"ml"}`)

	var out Ingredient
	require.NoError(t, json.Unmarshal(b, &out))
	require.NotNil(t, out.ExpirationDate)
	assert.True(t, exp.Equal(*out.ExpirationDate))
	assert.True(t, in.Maturity.Edited.Equal(out.Maturity.Edited))
	assert.Equal(t, 4, *out.Frozen)
	assert.Equal(t, "500 ml", FormatAmount(out.Amount))
}

func TestDraftDefaults(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	ing := IngredientDraft{Name: "  Apple "}.Ingredient("id-1", now)
	assert.Equal(t, "Apple", ing.Name)
	assert.False(t, ing.Open)
	assert.Equal(t, RipenessNone, ing.Maturity.Level)
	assert.Equal(t, now, ing.Maturity.Edited)
	assert.Equal(t, now, ing.AddedDate)
	assert.Equal(t, "1 pcs", FormatAmount(ing.Amount))

	d := DraftOf(ing)
	require.NotNil(t, d.Open)
	assert.Equal(t, ing.Name, d.Name)
}

func TestParseVocabulariesAreCaseInsensitive(t *testing.T) {
	c, err := ParseCategory("pantry staple")
	require.NoError(t, err)
	assert.Equal(t, CategoryPantryStaple, c)

	empty, err := ParseLocation("")
	require.NoError(t, err)
	assert.Equal(t, Location(""), empty)

	_, err = ParseConfection("smoked")
	assert.ErrorIs(t, err, ErrInvalidConfection)

	cats, err := ParseCategories("fruit, Vegetable,fruit")
	require.NoError(t, err)
	assert.Equal(t, []Category{CategoryFruit, CategoryVegetable}, cats)
}

func TestParseRipeness(t *testing.T) {
	r, err := ParseRipeness("Ripe")
	require.NoError(t, err)
	assert.Equal(t, RipenessRipe, r)
	assert.Equal(t, "overripe", RipenessOverripe.String())
	_, err = ParseRipeness("mushy")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	assert.ErrorIs(t, ValidateName("   "), ErrNameRequired)
	assert.NoError(t, ValidateName("Eggs"))
	assert.ErrorIs(t, ValidateCoordinates(91, 0), ErrInvalidCoordinate)
	assert.NoError(t, ValidateCoordinates(48.1, 11.5))
}
