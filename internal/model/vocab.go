package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidCategory   = errors.New("invalid category")
	ErrInvalidLocation   = errors.New("invalid location")
	ErrInvalidConfection = errors.New("invalid confection type")
	ErrInvalidShopType   = errors.New("invalid shop type")
)

type Category string

const (
	CategoryFruit        Category = "Fruit"
	CategoryVegetable    Category = "Vegetable"
	CategoryDairy        Category = "Dairy"
	CategoryFish         Category = "Fish"
	CategoryMeat         Category = "Meat"
	CategoryLiquid       Category = "Liquid"
	CategoryPantryStaple Category = "Pantry Staple"
	CategorySpice        Category = "Spice"
	CategoryOther        Category = "Other"
)

var Categories = []Category{
	CategoryFruit, CategoryVegetable, CategoryDairy, CategoryFish, CategoryMeat,
	CategoryLiquid, CategoryPantryStaple, CategorySpice, CategoryOther,
}

type Location string

const (
	LocationFridge  Location = "Fridge"
	LocationFreezer Location = "Freezer"
	LocationPantry  Location = "Pantry"
	LocationCounter Location = "Counter"
	LocationOther   Location = "Other"
)

var Locations = []Location{LocationFridge, LocationFreezer, LocationPantry, LocationCounter, LocationOther}

type Confection string

const (
	ConfectionFresh  Confection = "Fresh"
	ConfectionCanned Confection = "Canned"
	ConfectionFrozen Confection = "Frozen"
	ConfectionCured  Confection = "Cured"
	ConfectionDried  Confection = "Dried"
	ConfectionCooked Confection = "Cooked"
	ConfectionOther  Confection = "Other"
)

var Confections = []Confection{
	ConfectionFresh, ConfectionCanned, ConfectionFrozen, ConfectionCured,
	ConfectionDried, ConfectionCooked, ConfectionOther,
}

type ShopType string

const (
	ShopSupermarket ShopType = "Supermarket"
	ShopButcher     ShopType = "Butcher"
	ShopBakery      ShopType = "Bakery"
	ShopFishmonger  ShopType = "Fishmonger"
	ShopGreengrocer ShopType = "Greengrocer"
	ShopOther       ShopType = "Other"
)

var ShopTypes = []ShopType{ShopSupermarket, ShopButcher, ShopBakery, ShopFishmonger, ShopGreengrocer, ShopOther}

// ExpiryEstimate is a preset shelf life offered when no printed date is known.
type ExpiryEstimate struct {
	Label string
	Days  int
}

var ExpiryEstimates = []ExpiryEstimate{
	{Label: "1 Week", Days: 7},
	{Label: "10 Days", Days: 10},
	{Label: "2 Weeks", Days: 14},
	{Label: "1 Month", Days: 30},
}

// ParseCategory accepts any casing and returns the canonical value. An empty
// input yields the zero Category, meaning "not set".
func ParseCategory(value string) (Category, error) {
	v, ok := matchVocab(value, Categories)
	if !ok {
		return "", fmt.Errorf("%w %q (expected one of %s)", ErrInvalidCategory, value, joinVocab(Categories))
	}
	return v, nil
}

func ParseLocation(value string) (Location, error) {
	v, ok := matchVocab(value, Locations)
	if !ok {
		return "", fmt.Errorf("%w %q (expected one of %s)", ErrInvalidLocation, value, joinVocab(Locations))
	}
	return v, nil
}

func ParseConfection(value string) (Confection, error) {
	v, ok := matchVocab(value, Confections)
	if !ok {
		return "", fmt.Errorf("%w %q (expected one of %s)", ErrInvalidConfection, value, joinVocab(Confections))
	}
	return v, nil
}

func ParseShopType(value string) (ShopType, error) {
	v, ok := matchVocab(value, ShopTypes)
	if !ok {
		return "", fmt.Errorf("%w %q (expected one of %s)", ErrInvalidShopType, value, joinVocab(ShopTypes))
	}
	return v, nil
}

// ParseCategories splits a comma-separated list, dropping duplicates.
func ParseCategories(value string) ([]Category, error) {
	out := make([]Category, 0)
	seen := map[Category]bool{}
	for _, part := range strings.Split(value, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		c, err := ParseCategory(part)
		if err != nil {
			return nil, err
		}
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out, nil
}

func matchVocab[T ~string](value string, vocab []T) (T, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", true
	}
	for _, v := range vocab {
		if strings.EqualFold(string(v), value) {
			return v, true
		}
	}
	return "", false
}

func joinVocab[T ~string](vocab []T) string {
	parts := make([]string, 0, len(vocab))
	for _, v := range vocab {
		parts = append(parts, string(v))
	}
	return strings.Join(parts, ", ")
}
