package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("invalid amount")

type AmountKind string

const (
	AmountCount    AmountKind = "count"
	AmountFraction AmountKind = "fraction"
	AmountCustom   AmountKind = "custom"
)

var AmountKinds = []AmountKind{AmountCount, AmountFraction, AmountCustom}

// Amount is a tagged quantity. The concrete variants are Count, Fraction and
// Custom; the unexported method keeps the set closed to this package.
type Amount interface {
	Kind() AmountKind
	isAmount()
}

// Count is a number of discrete units.
type Count struct {
	Value decimal.Decimal
}

// Fraction is the remaining percentage of a container.
type Fraction struct {
	Percent decimal.Decimal
}

// Custom is a value in a free-form unit such as "ml" or "slices".
type Custom struct {
	Value decimal.Decimal
	Unit  string
}

func (Count) Kind() AmountKind    { return AmountCount }
func (Fraction) Kind() AmountKind { return AmountFraction }
func (Custom) Kind() AmountKind   { return AmountCustom }

func (Count) isAmount()    {}
func (Fraction) isAmount() {}
func (Custom) isAmount()   {}

// DefaultAmount is one piece.
func DefaultAmount() Amount {
	return Count{Value: decimal.NewFromInt(1)}
}

// NewAmount builds the variant named by kind. unit is only read for custom
// amounts and is required there.
func NewAmount(kind AmountKind, value, unit string) (Amount, error) {
	v, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return nil, fmt.Errorf("%w: value %q is not a number", ErrInvalidAmount, value)
	}
	if v.IsNegative() {
		return nil, fmt.Errorf("%w: value must be >= 0", ErrInvalidAmount)
	}
	switch AmountKind(strings.ToLower(strings.TrimSpace(string(kind)))) {
	case "", AmountCount:
		return Count{Value: v}, nil
	case AmountFraction:
		if v.GreaterThan(decimal.NewFromInt(100)) {
			return nil, fmt.Errorf("%w: fraction must be <= 100", ErrInvalidAmount)
		}
		return Fraction{Percent: v}, nil
	case AmountCustom:
		unit = strings.TrimSpace(unit)
		if unit == "" {
			return nil, fmt.Errorf("%w: custom amount needs a unit", ErrInvalidAmount)
		}
		return Custom{Value: v, Unit: unit}, nil
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidAmount, kind)
	}
}

// FormatAmount renders an amount for display.
func FormatAmount(a Amount) string {
	switch v := a.(type) {
	case nil:
		return ""
	case Count:
		return v.Value.String() + " pcs"
	case Fraction:
		return v.Percent.String() + "%"
	case Custom:
		return v.Value.String() + " " + v.Unit
	default:
		panic(fmt.Sprintf("unhandled amount variant %T", a))
	}
}

// AddAmounts sums two amounts of the same kind (and unit, for custom).
// Fractions are capped at 100 percent.
func AddAmounts(a, b Amount) (Amount, bool) {
	switch x := a.(type) {
	case Count:
		y, ok := b.(Count)
		if !ok {
			return nil, false
		}
		return Count{Value: x.Value.Add(y.Value)}, true
	case Fraction:
		y, ok := b.(Fraction)
		if !ok {
			return nil, false
		}
		sum := x.Percent.Add(y.Percent)
		if max := decimal.NewFromInt(100); sum.GreaterThan(max) {
			sum = max
		}
		return Fraction{Percent: sum}, true
	case Custom:
		y, ok := b.(Custom)
		if !ok || !strings.EqualFold(x.Unit, y.Unit) {
			return nil, false
		}
		return Custom{Value: x.Value.Add(y.Value), Unit: x.Unit}, true
	default:
		return nil, false
	}
}

// SameMeasure reports whether two amounts can be summed.
func SameMeasure(a, b Amount) bool {
	_, ok := AddAmounts(a, b)
	return ok
}

type amountJSON struct {
	Kind  AmountKind `json:"kind"`
	Value string     `json:"value"`
	Unit  string     `json:"unit,omitempty"`
}

func encodeAmount(a Amount) *amountJSON {
	switch v := a.(type) {
	case nil:
		return nil
	case Count:
		return &amountJSON{Kind: AmountCount, Value: v.Value.String()}
	case Fraction:
		return &amountJSON{Kind: AmountFraction, Value: v.Percent.String()}
	case Custom:
		return &amountJSON{Kind: AmountCustom, Value: v.Value.String(), Unit: v.Unit}
	default:
		panic(fmt.Sprintf("unhandled amount variant %T", a))
	}
}

func decodeAmount(raw *amountJSON) (Amount, error) {
	if raw == nil {
		return nil, nil
	}
	return NewAmount(raw.Kind, raw.Value, raw.Unit)
}

// MarshalAmount encodes an amount as {"kind","value","unit"}.
func MarshalAmount(a Amount) ([]byte, error) {
	return json.Marshal(encodeAmount(a))
}

func UnmarshalAmount(data []byte) (Amount, error) {
	var raw *amountJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode amount: %w", err)
	}
	return decodeAmount(raw)
}
