// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/recipe-engine/pkg/types"
)

// ExportEntry is a stored recipe as written by the exporters. Ingredients
// carry their per-100 samples and chosen quantity; derived ingredient
// fields are left out because an importer recomputes them.
type ExportEntry struct {
	ID          string                     `json:"id" yaml:"id"`
	Name        string                     `json:"name" yaml:"name"`
	Quantity    float64                    `json:"quantity" yaml:"quantity"`
	Nutriments  types.RecipeNutrientTotals `json:"nutriments" yaml:"nutriments"`
	Additives   []string                   `json:"additives" yaml:"additives"`
	Score       string                     `json:"nutriscore,omitempty" yaml:"nutriscore,omitempty"`
	UpdatedAt   string                     `json:"updated_at" yaml:"updated_at"`
	Ingredients []ExportIngredient         `json:"ingredients" yaml:"ingredients"`
}

// ExportIngredient holds the source fields of one ingredient.
type ExportIngredient struct {
	ProductName    string             `json:"product_name" yaml:"product_name"`
	Brand          string             `json:"brand,omitempty" yaml:"brand,omitempty"`
	CaloriesPer100 *float64           `json:"calories_100,omitempty" yaml:"calories_100,omitempty"`
	Quantity       *float64           `json:"quantity,omitempty" yaml:"quantity,omitempty"`
	Nutriments     types.NutrientList `json:"nutriments" yaml:"nutriments"`
	AdditiveTags   []string           `json:"additives_tags,omitempty" yaml:"additives_tags,omitempty"`
}

const exportLimit = 100000

// ExportYAML writes the recipes matching opts to w as a YAML list.
func (s *Store) ExportYAML(ctx context.Context, w io.Writer, opts ListOptions) error {
	entries, err := s.exportEntries(ctx, opts)
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return enc.Close()
}

// ExportJSON writes the recipes matching opts to w as an indented JSON array.
func (s *Store) ExportJSON(ctx context.Context, w io.Writer, opts ListOptions) error {
	entries, err := s.exportEntries(ctx, opts)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return nil
}

func (s *Store) exportEntries(ctx context.Context, opts ListOptions) ([]ExportEntry, error) {
	if opts.Limit <= 0 {
		opts.Limit = exportLimit
	}
	recipes, err := s.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}

	entries := make([]ExportEntry, len(recipes))
	for i, r := range recipes {
		entries[i] = ExportEntry{
			ID:          r.ID,
			Name:        r.Name,
			Quantity:    r.Quantity,
			Nutriments:  r.NutrientTotals,
			Additives:   r.Additives,
			Score:       string(r.Score),
			UpdatedAt:   formatTime(r.UpdatedAt),
			Ingredients: make([]ExportIngredient, len(r.Ingredients)),
		}
		for j, ing := range r.Ingredients {
			entries[i].Ingredients[j] = ExportIngredient{
				ProductName:    ing.ProductName,
				Brand:          ing.Brand,
				CaloriesPer100: ing.CaloriesPer100,
				Quantity:       ing.Quantity,
				Nutriments:     ing.NutrientSamples,
				AdditiveTags:   ing.AdditiveTags,
			}
		}
	}
	return entries, nil
}
