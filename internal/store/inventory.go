package store

import (
	"context"
	"strings"

	"github.com/saadjs/pantry-cli/internal/model"
)

type Inventory struct {
	c *collection[model.Ingredient]
}

func NewInventory(blobs Blobs, opts ...Option) *Inventory {
	o := buildOptions(opts)
	return &Inventory{c: newCollection("ingredients", IngredientsKey, blobs, o,
		func(i model.Ingredient) string { return i.ID },
		model.Ingredient.Clone,
	)}
}

// Load replaces the in-memory list with the persisted one. Records written
// before amounts or maturity existed get defaults.
func (s *Inventory) Load(ctx context.Context) error {
	return s.c.load(ctx, func(i *model.Ingredient) {
		if i.Amount == nil {
			i.Amount = model.DefaultAmount()
		}
		if i.Maturity.Edited.IsZero() {
			i.Maturity.Edited = i.AddedDate
		}
	})
}

// Add stores a new ingredient built from draft. The name must be non-blank.
func (s *Inventory) Add(ctx context.Context, draft model.IngredientDraft) (model.Ingredient, error) {
	if err := model.ValidateName(draft.Name); err != nil {
		return model.Ingredient{}, err
	}
	ing := draft.Ingredient(s.c.opts.newID(), s.c.opts.now())
	_, err := s.c.mutate(ctx, "add", func(items []model.Ingredient) ([]model.Ingredient, bool) {
		return append(append(make([]model.Ingredient, 0, len(items)+1), items...), ing), true
	})
	return ing.Clone(), err
}

// Update replaces the ingredient with the same id. It reports false when no
// such ingredient exists. The added date is immutable and the maturity
// timestamp moves whenever the level changes.
func (s *Inventory) Update(ctx context.Context, ing model.Ingredient) (bool, error) {
	if err := model.ValidateName(ing.Name); err != nil {
		return false, err
	}
	ing = ing.Clone()
	ing.Name = strings.TrimSpace(ing.Name)
	if ing.Amount == nil {
		ing.Amount = model.DefaultAmount()
	}
	return s.c.mutate(ctx, "update", func(items []model.Ingredient) ([]model.Ingredient, bool) {
		idx := indexOf(items, ing.ID, s.c.idOf)
		if idx < 0 {
			return items, false
		}
		prev := items[idx]
		ing.AddedDate = prev.AddedDate
		if ing.Maturity.Level != prev.Maturity.Level && ing.Maturity.Edited.Equal(prev.Maturity.Edited) {
			ing.Maturity.Edited = s.c.opts.now()
		}
		next := append([]model.Ingredient(nil), items...)
		next[idx] = ing
		return next, true
	})
}

func (s *Inventory) Delete(ctx context.Context, id string) (bool, error) {
	return s.c.mutate(ctx, "delete", func(items []model.Ingredient) ([]model.Ingredient, bool) {
		idx := indexOf(items, id, s.c.idOf)
		if idx < 0 {
			return items, false
		}
		next := make([]model.Ingredient, 0, len(items)-1)
		next = append(next, items[:idx]...)
		return append(next, items[idx+1:]...), true
	})
}

func (s *Inventory) Replace(ctx context.Context, items []model.Ingredient) error {
	next := make([]model.Ingredient, 0, len(items))
	for _, it := range items {
		next = append(next, it.Clone())
	}
	_, err := s.c.mutate(ctx, "replace", func([]model.Ingredient) ([]model.Ingredient, bool) {
		return next, true
	})
	return err
}

func (s *Inventory) Get(id string) (model.Ingredient, bool) {
	return s.c.get(id)
}

func (s *Inventory) List() []model.Ingredient {
	return s.c.list()
}

func (s *Inventory) Len() int {
	return s.c.len()
}

// Subscribe registers fn to receive the list after every change. The
// returned func cancels the subscription.
func (s *Inventory) Subscribe(fn func([]model.Ingredient)) func() {
	return s.c.subscribe(fn)
}
