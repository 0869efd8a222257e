// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package draft edits recipe drafts: adding, removing and re-quantifying
// ingredients, with totals, additives and score recomputed after every
// change to the ingredient list.
//
// Operations never mutate the recipe they are given. Each returns a new
// value that the caller stores in place of the old one.
package draft

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/recipe-engine/internal/aggregate"
	"github.com/pdiddy/recipe-engine/internal/scale"
	"github.com/pdiddy/recipe-engine/pkg/types"
)

var (
	// ErrIngredientNotFound is returned when an ingredient ID is not in the draft.
	ErrIngredientNotFound = errors.New("ingredient not found")

	// ErrNoIngredients is returned when submitting a draft without ingredients.
	ErrNoIngredients = errors.New("no ingredients selected")
)

// Status describes how far a draft has progressed. Every status can be
// re-entered: removing the last ingredient returns a draft to StatusNamed.
type Status string

const (
	StatusEmpty          Status = "empty"
	StatusNamed          Status = "named"
	StatusHasIngredients Status = "has-ingredients"
	StatusScored         Status = "scored"
)

// StatusOf reports the status of r.
func StatusOf(r types.Recipe) Status {
	switch {
	case r.Score.IsSet() && len(r.Ingredients) > 0:
		return StatusScored
	case len(r.Ingredients) > 0:
		return StatusHasIngredients
	case strings.TrimSpace(r.Name) != "":
		return StatusNamed
	default:
		return StatusEmpty
	}
}

// Editor applies draft operations.
type Editor struct {
	agg   *aggregate.Aggregator
	newID func() string
}

// Option configures an Editor.
type Option func(*Editor)

// WithIDFunc replaces the ingredient ID generator (default: random UUIDs).
func WithIDFunc(f func() string) Option {
	return func(e *Editor) { e.newID = f }
}

// NewEditor returns an Editor that recomputes drafts with agg.
func NewEditor(agg *aggregate.Aggregator, opts ...Option) *Editor {
	e := &Editor{agg: agg, newID: uuid.NewString}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// New returns an empty draft.
func (e *Editor) New(name string) types.Recipe {
	return types.Recipe{
		Name:        strings.TrimSpace(name),
		Ingredients: []types.RecipeIngredient{},
		Additives:   []string{},
	}
}

// Rename returns r with a new name.
func (e *Editor) Rename(r types.Recipe, name string) types.Recipe {
	out := r
	out.Name = strings.TrimSpace(name)
	return out
}

// AddIngredient appends rec as a new ingredient without a quantity.
// Totals, additives and score are unchanged until a quantity is set.
func (e *Editor) AddIngredient(r types.Recipe, rec types.SourceRecord) (types.Recipe, types.RecipeIngredient) {
	ing := scale.Unscaled(types.RecipeIngredient{
		ID:              e.newID(),
		ProductName:     rec.ProductName,
		Brand:           rec.Brand,
		Source:          rec.Source,
		CaloriesPer100:  rec.Calories,
		NutrientSamples: rec.Nutriments,
		AdditiveTags:    rec.AdditiveTags,
	})

	out := r
	out.Ingredients = append(cloneIngredients(r.Ingredients), ing)
	return out, ing
}

// RemoveIngredient drops the ingredient with the given ID and recomputes
// the draft over what remains.
func (e *Editor) RemoveIngredient(ctx context.Context, r types.Recipe, id string) (types.Recipe, error) {
	kept := make([]types.RecipeIngredient, 0, len(r.Ingredients))
	found := false
	for _, ing := range r.Ingredients {
		if ing.ID == id {
			found = true
			continue
		}
		kept = append(kept, ing)
	}
	if !found {
		return r, fmt.Errorf("%w: %s", ErrIngredientNotFound, id)
	}

	out := r
	out.Ingredients = kept
	return e.agg.Recompute(ctx, out), nil
}

// UpdateQuantity re-scales the ingredient with the given ID to quantity,
// replaces it in place and recomputes the draft.
func (e *Editor) UpdateQuantity(ctx context.Context, r types.Recipe, id string, quantity float64) (types.Recipe, error) {
	updated := cloneIngredients(r.Ingredients)
	found := false
	for i, ing := range updated {
		if ing.ID == id {
			updated[i] = scale.Scale(ing, quantity)
			found = true
			break
		}
	}
	if !found {
		return r, fmt.Errorf("%w: %s", ErrIngredientNotFound, id)
	}

	out := r
	out.Ingredients = updated
	return e.agg.Recompute(ctx, out), nil
}

// Refresh re-derives every ingredient from its samples and quantity, then
// recomputes the draft. Drafts edited outside the engine go through here
// so that stale derived values are never trusted.
func (e *Editor) Refresh(ctx context.Context, r types.Recipe) types.Recipe {
	refreshed := make([]types.RecipeIngredient, len(r.Ingredients))
	for i, ing := range r.Ingredients {
		if ing.Quantity == nil {
			refreshed[i] = scale.Unscaled(ing)
			continue
		}
		refreshed[i] = scale.Scale(ing, *ing.Quantity)
	}

	out := r
	out.Ingredients = refreshed
	if len(refreshed) == 0 {
		out.Ingredients = []types.RecipeIngredient{}
	}
	return e.agg.Recompute(ctx, out)
}

// ValidateForSubmit checks that r can be handed to the store.
func ValidateForSubmit(r types.Recipe) error {
	if len(r.Ingredients) == 0 {
		return ErrNoIngredients
	}
	return nil
}

func cloneIngredients(in []types.RecipeIngredient) []types.RecipeIngredient {
	out := make([]types.RecipeIngredient, len(in), len(in)+1)
	copy(out, in)
	return out
}

// Load reads a draft from a YAML file.
func Load(path string) (types.Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Recipe{}, fmt.Errorf("reading draft: %w", err)
	}
	var r types.Recipe
	if err := yaml.Unmarshal(data, &r); err != nil {
		return types.Recipe{}, fmt.Errorf("parsing draft %s: %w", filepath.Base(path), err)
	}
	if r.Ingredients == nil {
		r.Ingredients = []types.RecipeIngredient{}
	}
	if r.Additives == nil {
		r.Additives = []string{}
	}
	return r, nil
}

// Save writes r to path as YAML, creating parent directories as needed.
func Save(path string, r types.Recipe) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating draft directory: %w", err)
		}
	}
	data, err := yaml.Marshal(&r)
	if err != nil {
		return fmt.Errorf("marshaling draft: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
