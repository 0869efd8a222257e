// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the recipe-engine:
// ingredient records, scaled nutrient vectors, recipe totals and the
// configuration structs consumed by each stage.
package types

import "time"

// Nutrient keys as emitted by the ingredient source. The naming is not
// uniform (hyphenated vs. plain) and must match the source exactly: a key
// that matches nothing contributes zero.
const (
	NutrientFat           = "fat"
	NutrientSaturatedFat  = "saturated-fat"
	NutrientCarbohydrates = "carbohydrates"
	NutrientSugars        = "sugars"
	NutrientProteins      = "proteins"
	NutrientSalt          = "salt"
	NutrientEnergyKcal    = "energy-kcal"
	NutrientFibers        = "fibers"
)

// ScaledNutrient is one nutrient of an ingredient scaled to the quantity
// currently used in the recipe.
type ScaledNutrient struct {
	// Name is the nutrient key (e.g. "fat", "saturated-fat").
	Name string `json:"name" yaml:"name"`

	// QuantityAtCurrentAmount is QuantityPer100 / 100 * quantity.
	QuantityAtCurrentAmount float64 `json:"quantity_current" yaml:"quantity_current"`
}

// RecipeIngredient is one ingredient instance within a recipe draft.
// A nil pointer field means the value is unset.
type RecipeIngredient struct {
	// ID is stable for the lifetime of the recipe draft.
	ID string `json:"id" yaml:"id"`

	ProductName string `json:"product_name" yaml:"product_name"`
	Brand       string `json:"brand,omitempty" yaml:"brand,omitempty"`
	Source      string `json:"source,omitempty" yaml:"source,omitempty"`

	// CaloriesPer100 is the energy per 100 units of the ingredient.
	CaloriesPer100 *float64 `json:"calories_100,omitempty" yaml:"calories_100,omitempty"`

	// Quantity is the amount used, in the same unit basis as CaloriesPer100.
	Quantity *float64 `json:"quantity,omitempty" yaml:"quantity,omitempty"`

	// CaloriesForQuantity is derived by the scaler; never set it directly.
	CaloriesForQuantity *float64 `json:"calories_current,omitempty" yaml:"calories_current,omitempty"`

	// NutrientSamples are the per-100 values from the ingredient source.
	NutrientSamples NutrientList `json:"nutriments" yaml:"nutriments"`

	// ScaledNutrients is derived by the scaler from NutrientSamples and Quantity.
	ScaledNutrients []ScaledNutrient `json:"scaled_nutriments,omitempty" yaml:"scaled_nutriments,omitempty"`

	// AdditiveTags are raw additive codes, each with a 3-character prefix
	// (e.g. "en:e330").
	AdditiveTags []string `json:"additives_tags,omitempty" yaml:"additives_tags,omitempty"`
}

// HasQuantity reports whether a quantity has been chosen for the ingredient.
func (i RecipeIngredient) HasQuantity() bool {
	return i.Quantity != nil
}

// RecipeNutrientTotals aggregates every ingredient of a recipe. Nutrient
// sums are rounded to 2 decimals; TotalQuantity is not.
type RecipeNutrientTotals struct {
	TotalQuantity float64 `json:"total_quantity" yaml:"total_quantity"`
	TotalCalories float64 `json:"calories" yaml:"calories"`
	Fat           float64 `json:"fat" yaml:"fat"`
	SaturatedFat  float64 `json:"saturated_fat" yaml:"saturated_fat"`
	Carbohydrates float64 `json:"carbohydrates" yaml:"carbohydrates"`
	Sugars        float64 `json:"sugars" yaml:"sugars"`
	Proteins      float64 `json:"proteins" yaml:"proteins"`
	Salt          float64 `json:"salt" yaml:"salt"`
}

// Score is a class label produced by a classifier. The empty Score is unset.
type Score string

// IsSet reports whether the score holds a label.
func (s Score) IsSet() bool {
	return s != ""
}

// String returns the label, or "-" when unset.
func (s Score) String() string {
	if s == "" {
		return "-"
	}
	return string(s)
}

// Recipe is a named list of ingredients with its derived totals, additive
// set and score. The derived fields are recomputed after every change to
// the ingredient list.
type Recipe struct {
	// ID is empty until the recipe has been persisted.
	ID   string `json:"id,omitempty" yaml:"id,omitempty"`
	Name string `json:"name" yaml:"name"`

	// Quantity mirrors NutrientTotals.TotalQuantity.
	Quantity float64 `json:"quantity" yaml:"quantity"`

	Ingredients    []RecipeIngredient   `json:"ingredients" yaml:"ingredients"`
	NutrientTotals RecipeNutrientTotals `json:"nutriments" yaml:"nutriments"`

	// Additives holds stripped additive codes, each with one trailing space,
	// in order of first appearance.
	Additives []string `json:"additives" yaml:"additives"`

	Score Score `json:"nutriscore,omitempty" yaml:"nutriscore,omitempty"`

	CreatedAt time.Time `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

// Ingredient returns the ingredient with the given ID.
func (r Recipe) Ingredient(id string) (RecipeIngredient, bool) {
	for _, ing := range r.Ingredients {
		if ing.ID == id {
			return ing, true
		}
	}
	return RecipeIngredient{}, false
}

// SourceRecord is an ingredient as delivered by the ingredient lookup
// service, before it joins a recipe.
type SourceRecord struct {
	ProductName  string       `json:"product_name" yaml:"product_name"`
	Brand        string       `json:"brands,omitempty" yaml:"brands,omitempty"`
	Calories     *float64     `json:"calories,omitempty" yaml:"calories,omitempty"`
	Nutriments   NutrientList `json:"nutriments,omitempty" yaml:"nutriments,omitempty"`
	AdditiveTags []string     `json:"additives_tags,omitempty" yaml:"additives_tags,omitempty"`
	Source       string       `json:"source,omitempty" yaml:"source,omitempty"`
}
