package store

import (
	"context"

	"github.com/saadjs/pantry-cli/internal/model"
)

type Grocery struct {
	c *collection[model.GroceryListItem]
}

func NewGrocery(blobs Blobs, opts ...Option) *Grocery {
	o := buildOptions(opts)
	return &Grocery{c: newCollection("grocery", GroceryKey, blobs, o,
		func(g model.GroceryListItem) string { return g.ID },
		cloneGrocery,
	)}
}

func cloneGrocery(g model.GroceryListItem) model.GroceryListItem {
	g.Item = g.Item.Clone()
	return g
}

func (s *Grocery) Load(ctx context.Context) error {
	return s.c.load(ctx, func(g *model.GroceryListItem) {
		if g.Item.Amount == nil {
			g.Item.Amount = model.DefaultAmount()
		}
	})
}

// Add stores a planned purchase. Open, maturity, amount and the added date
// of the nested item are defaulted when missing.
func (s *Grocery) Add(ctx context.Context, draft model.IngredientDraft) (model.GroceryListItem, error) {
	if err := model.ValidateName(draft.Name); err != nil {
		return model.GroceryListItem{}, err
	}
	now := s.c.opts.now()
	item := draft.Clone().WithDefaults(now)
	if item.AddedDate == nil {
		item.AddedDate = &now
	}
	entry := model.GroceryListItem{ID: s.c.opts.newID(), Item: item}
	_, err := s.c.mutate(ctx, "add", func(items []model.GroceryListItem) ([]model.GroceryListItem, bool) {
		return append(append(make([]model.GroceryListItem, 0, len(items)+1), items...), entry), true
	})
	return cloneGrocery(entry), err
}

func (s *Grocery) Update(ctx context.Context, entry model.GroceryListItem) (bool, error) {
	if err := model.ValidateName(entry.Item.Name); err != nil {
		return false, err
	}
	entry = cloneGrocery(entry)
	return s.c.mutate(ctx, "update", func(items []model.GroceryListItem) ([]model.GroceryListItem, bool) {
		idx := indexOf(items, entry.ID, s.c.idOf)
		if idx < 0 {
			return items, false
		}
		next := append([]model.GroceryListItem(nil), items...)
		next[idx] = entry
		return next, true
	})
}

func (s *Grocery) Delete(ctx context.Context, id string) (bool, error) {
	return s.c.mutate(ctx, "delete", func(items []model.GroceryListItem) ([]model.GroceryListItem, bool) {
		idx := indexOf(items, id, s.c.idOf)
		if idx < 0 {
			return items, false
		}
		next := make([]model.GroceryListItem, 0, len(items)-1)
		next = append(next, items[:idx]...)
		return append(next, items[idx+1:]...), true
	})
}

// Clear empties the list. Clearing an empty list still deletes the stored key.
func (s *Grocery) Clear(ctx context.Context) error {
	_, err := s.c.mutate(ctx, "clear", func([]model.GroceryListItem) ([]model.GroceryListItem, bool) {
		return make([]model.GroceryListItem, 0), true
	})
	return err
}

func (s *Grocery) Replace(ctx context.Context, items []model.GroceryListItem) error {
	next := make([]model.GroceryListItem, 0, len(items))
	for _, it := range items {
		next = append(next, cloneGrocery(it))
	}
	_, err := s.c.mutate(ctx, "replace", func([]model.GroceryListItem) ([]model.GroceryListItem, bool) {
		return next, true
	})
	return err
}

func (s *Grocery) Get(id string) (model.GroceryListItem, bool) {
	return s.c.get(id)
}

func (s *Grocery) List() []model.GroceryListItem {
	return s.c.list()
}

func (s *Grocery) Len() int {
	return s.c.len()
}

func (s *Grocery) Subscribe(fn func([]model.GroceryListItem)) func() {
	return s.c.subscribe(fn)
}
