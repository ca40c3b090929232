package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNameRequired      = errors.New("ingredient name is required")
	ErrInvalidCoordinate = errors.New("invalid coordinate")
)

// Ripeness is an ordered freshness stage for ripening produce.
type Ripeness int

const (
	RipenessNone     Ripeness = -1
	RipenessGreen    Ripeness = 0
	RipenessRipe     Ripeness = 1
	RipenessAdvanced Ripeness = 2
	RipenessOverripe Ripeness = 3
)

var ripenessNames = map[Ripeness]string{
	RipenessNone:     "none",
	RipenessGreen:    "green",
	RipenessRipe:     "ripe",
	RipenessAdvanced: "advanced",
	RipenessOverripe: "overripe",
}

func (r Ripeness) String() string {
	if name, ok := ripenessNames[r]; ok {
		return name
	}
	return fmt.Sprintf("ripeness(%d)", int(r))
}

func ParseRipeness(value string) (Ripeness, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	for lvl, name := range ripenessNames {
		if name == value {
			return lvl, nil
		}
	}
	return RipenessNone, fmt.Errorf("invalid ripeness %q (expected none, green, ripe, advanced or overripe)", value)
}

// Maturity records a ripeness level and when it was last confirmed.
type Maturity struct {
	Level  Ripeness  `json:"lvl"`
	Edited time.Time `json:"edited"`
}

// Ingredient is a pantry item.
type Ingredient struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Category       Category   `json:"category,omitempty"`
	Location       Location   `json:"location,omitempty"`
	ConfectionType Confection `json:"confectionType,omitempty"`
	Brand          string     `json:"brand,omitempty"`
	ExpirationDate *time.Time `json:"expirationDate,omitempty"`
	AddedDate      time.Time  `json:"addedDate"`
	Open           bool       `json:"open"`
	Maturity       Maturity   `json:"maturity"`
	// Frozen is the number of days that were left before the original
	// expiration date when the item went into the freezer. Nil when thawed.
	Frozen *int   `json:"frozen,omitempty"`
	Amount Amount `json:"-"`
}

func (i Ingredient) IsFrozen() bool {
	return i.Frozen != nil
}

func (i Ingredient) MarshalJSON() ([]byte, error) {
	type alias Ingredient
	return json.Marshal(struct {
		alias
		Amount *amountJSON `json:"amount,omitempty"`
	}{alias: alias(i), Amount: encodeAmount(i.Amount)})
}

func (i *Ingredient) UnmarshalJSON(data []byte) error {
	type alias Ingredient
	var raw struct {
		alias
		Amount *amountJSON `json:"amount,omitempty"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	amount, err := decodeAmount(raw.Amount)
	if err != nil {
		return err
	}
	*i = Ingredient(raw.alias)
	i.Amount = amount
	return nil
}

// IngredientDraft carries the known fields of an ingredient that does not
// exist yet. Zero strings, nil pointers and a nil Amount mean "not set".
type IngredientDraft struct {
	Name           string     `json:"name,omitempty"`
	Category       Category   `json:"category,omitempty"`
	Location       Location   `json:"location,omitempty"`
	ConfectionType Confection `json:"confectionType,omitempty"`
	Brand          string     `json:"brand,omitempty"`
	ExpirationDate *time.Time `json:"expirationDate,omitempty"`
	AddedDate      *time.Time `json:"addedDate,omitempty"`
	Open           *bool      `json:"open,omitempty"`
	Maturity       *Maturity  `json:"maturity,omitempty"`
	Frozen         *int       `json:"frozen,omitempty"`
	Amount         Amount     `json:"-"`
}

func (d IngredientDraft) MarshalJSON() ([]byte, error) {
	type alias IngredientDraft
	return json.Marshal(struct {
		alias
		Amount *amountJSON `json:"amount,omitempty"`
	}{alias: alias(d), Amount: encodeAmount(d.Amount)})
}

func (d *IngredientDraft) UnmarshalJSON(data []byte) error {
	type alias IngredientDraft
	var raw struct {
		alias
		Amount *amountJSON `json:"amount,omitempty"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	amount, err := decodeAmount(raw.Amount)
	if err != nil {
		return err
	}
	*d = IngredientDraft(raw.alias)
	d.Amount = amount
	return nil
}

// WithDefaults fills open, maturity and amount when they are missing.
func (d IngredientDraft) WithDefaults(now time.Time) IngredientDraft {
	if d.Open == nil {
		open := false
		d.Open = &open
	}
	if d.Maturity == nil {
		d.Maturity = &Maturity{Level: RipenessNone, Edited: now}
	} else if d.Maturity.Edited.IsZero() {
		m := *d.Maturity
		m.Edited = now
		d.Maturity = &m
	}
	if d.Amount == nil {
		d.Amount = DefaultAmount()
	}
	return d
}

// Ingredient materialises the draft under a new identity. AddedDate is always
// now: a purchase is a new arrival in the pantry.
func (d IngredientDraft) Ingredient(id string, now time.Time) Ingredient {
	d = d.WithDefaults(now)
	return Ingredient{
		ID:             id,
		Name:           strings.TrimSpace(d.Name),
		Category:       d.Category,
		Location:       d.Location,
		ConfectionType: d.ConfectionType,
		Brand:          strings.TrimSpace(d.Brand),
		ExpirationDate: copyTime(d.ExpirationDate),
		AddedDate:      now,
		Open:           *d.Open,
		Maturity:       *d.Maturity,
		Frozen:         copyInt(d.Frozen),
		Amount:         d.Amount,
	}
}

// DraftOf converts a stored ingredient back into a draft.
func DraftOf(i Ingredient) IngredientDraft {
	open := i.Open
	maturity := i.Maturity
	added := i.AddedDate
	return IngredientDraft{
		Name:           i.Name,
		Category:       i.Category,
		Location:       i.Location,
		ConfectionType: i.ConfectionType,
		Brand:          i.Brand,
		ExpirationDate: copyTime(i.ExpirationDate),
		AddedDate:      &added,
		Open:           &open,
		Maturity:       &maturity,
		Frozen:         copyInt(i.Frozen),
		Amount:         i.Amount,
	}
}

// GroceryListItem is a planned purchase.
type GroceryListItem struct {
	ID   string          `json:"id"`
	Item IngredientDraft `json:"item"`
}

// Shop is a registered physical store.
type Shop struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Type       ShopType   `json:"type"`
	Categories []Category `json:"categories"`
	Latitude   float64    `json:"latitude"`
	Longitude  float64    `json:"longitude"`
}

// Sells reports whether the shop lists the category.
func (s Shop) Sells(c Category) bool {
	for _, sc := range s.Categories {
		if sc == c {
			return true
		}
	}
	return false
}

// ValidateName enforces the one hard rule on ingredients: a non-blank name.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrNameRequired
	}
	return nil
}

func ValidateCoordinates(lat, lon float64) error {
	if lat < -90 || lat > 90 {
		return fmt.Errorf("%w: latitude %v out of range [-90, 90]", ErrInvalidCoordinate, lat)
	}
	if lon < -180 || lon > 180 {
		return fmt.Errorf("%w: longitude %v out of range [-180, 180]", ErrInvalidCoordinate, lon)
	}
	return nil
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func copyInt(n *int) *int {
	if n == nil {
		return nil
	}
	v := *n
	return &v
}

// Clone returns a copy that shares no pointers with i.
func (i Ingredient) Clone() Ingredient {
	i.ExpirationDate = copyTime(i.ExpirationDate)
	i.Frozen = copyInt(i.Frozen)
	return i
}

func (d IngredientDraft) Clone() IngredientDraft {
	d.ExpirationDate = copyTime(d.ExpirationDate)
	d.AddedDate = copyTime(d.AddedDate)
	d.Frozen = copyInt(d.Frozen)
	if d.Open != nil {
		open := *d.Open
		d.Open = &open
	}
	if d.Maturity != nil {
		m := *d.Maturity
		d.Maturity = &m
	}
	return d
}

func (s Shop) Clone() Shop {
	s.Categories = append([]Category(nil), s.Categories...)
	if s.Categories == nil {
		s.Categories = []Category{}
	}
	return s
}
