// Package proximity relates the user's position to registered shops: great
// circle distances, the shops inside a radius, the grocery items those shops
// can supply and the ambient watcher that surfaces the list when a shop is
// near.
package proximity

import (
	"math"
	"sort"

	"github.com/saadjs/pantry-cli/internal/model"
)

const (
	EarthRadiusKm   = 6371.0
	DefaultRadiusKm = 0.5
	// MaxRadiusKm bounds the adjustable search radius.
	MaxRadiusKm = 5.0
)

type Point struct {
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
}

func ShopPoint(s model.Shop) Point {
	return Point{Latitude: s.Latitude, Longitude: s.Longitude}
}

// Distance is the haversine distance between a and b in kilometres.
func Distance(a, b Point) float64 {
	dLat := radians(b.Latitude - a.Latitude)
	dLon := radians(b.Longitude - a.Longitude)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(a.Latitude))*math.Cos(radians(b.Latitude))*math.Sin(dLon/2)*math.Sin(dLon/2)
	if h > 1 {
		h = 1
	}
	return 2 * EarthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// NearbyShop is a shop with its distance from the query point.
type NearbyShop struct {
	Shop       model.Shop
	DistanceKm float64
}

// ShopsWithin returns the shops strictly closer than radiusKm, nearest first.
// A non-positive radius uses DefaultRadiusKm.
func ShopsWithin(shops []model.Shop, at Point, radiusKm float64) []NearbyShop {
	if radiusKm <= 0 {
		radiusKm = DefaultRadiusKm
	}
	out := make([]NearbyShop, 0)
	for _, s := range shops {
		d := Distance(at, ShopPoint(s))
		if d < radiusKm {
			out = append(out, NearbyShop{Shop: s, DistanceKm: d})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DistanceKm < out[j].DistanceKm })
	return out
}

// AvailableItems returns the grocery items at least one nearby shop sells.
// A shop without categories is taken to sell everything. showAll bypasses
// the filter and returns the whole list.
func AvailableItems(items []model.GroceryListItem, nearby []NearbyShop, showAll bool) []model.GroceryListItem {
	if showAll {
		return append([]model.GroceryListItem(nil), items...)
	}
	out := make([]model.GroceryListItem, 0)
	for _, it := range items {
		for _, n := range nearby {
			if len(n.Shop.Categories) == 0 || (it.Item.Category != "" && n.Shop.Sells(it.Item.Category)) {
				out = append(out, it)
				break
			}
		}
	}
	return out
}

// ClampRadius keeps a user supplied radius inside (0, MaxRadiusKm].
func ClampRadius(km float64) float64 {
	switch {
	case km <= 0 || math.IsNaN(km):
		return DefaultRadiusKm
	case km > MaxRadiusKm:
		return MaxRadiusKm
	default:
		return km
	}
}
