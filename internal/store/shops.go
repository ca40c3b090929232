package store

import (
	"context"
	"strings"

	"github.com/saadjs/pantry-cli/internal/model"
)

const DefaultShopName = "New Shop"

type Shops struct {
	c *collection[model.Shop]
}

func NewShops(blobs Blobs, opts ...Option) *Shops {
	o := buildOptions(opts)
	return &Shops{c: newCollection("shops", ShopsKey, blobs, o,
		func(s model.Shop) string { return s.ID },
		model.Shop.Clone,
	)}
}

func (s *Shops) Load(ctx context.Context) error {
	return s.c.load(ctx, func(sh *model.Shop) {
		if sh.Type == "" {
			sh.Type = model.ShopOther
		}
		if sh.Categories == nil {
			sh.Categories = []model.Category{}
		}
	})
}

// Add registers a shop. Any id on the input is ignored. Missing fields take
// a placeholder name, type Other, no categories and zero coordinates.
func (s *Shops) Add(ctx context.Context, shop model.Shop) (model.Shop, error) {
	if err := model.ValidateCoordinates(shop.Latitude, shop.Longitude); err != nil {
		return model.Shop{}, err
	}
	shop = shop.Clone()
	shop.ID = s.c.opts.newID()
	shop.Name = strings.TrimSpace(shop.Name)
	if shop.Name == "" {
		shop.Name = DefaultShopName
	}
	if shop.Type == "" {
		shop.Type = model.ShopOther
	}
	_, err := s.c.mutate(ctx, "add", func(items []model.Shop) ([]model.Shop, bool) {
		return append(append(make([]model.Shop, 0, len(items)+1), items...), shop), true
	})
	return shop.Clone(), err
}

func (s *Shops) Delete(ctx context.Context, id string) (bool, error) {
	return s.c.mutate(ctx, "delete", func(items []model.Shop) ([]model.Shop, bool) {
		idx := indexOf(items, id, s.c.idOf)
		if idx < 0 {
			return items, false
		}
		next := make([]model.Shop, 0, len(items)-1)
		next = append(next, items[:idx]...)
		return append(next, items[idx+1:]...), true
	})
}

func (s *Shops) Replace(ctx context.Context, items []model.Shop) error {
	next := make([]model.Shop, 0, len(items))
	for _, it := range items {
		next = append(next, it.Clone())
	}
	_, err := s.c.mutate(ctx, "replace", func([]model.Shop) ([]model.Shop, bool) {
		return next, true
	})
	return err
}

func (s *Shops) Get(id string) (model.Shop, bool) {
	return s.c.get(id)
}

func (s *Shops) List() []model.Shop {
	return s.c.list()
}

func (s *Shops) Len() int {
	return s.c.len()
}

func (s *Shops) Subscribe(fn func([]model.Shop)) func() {
	return s.c.subscribe(fn)
}
