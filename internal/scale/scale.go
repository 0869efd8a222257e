// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scale converts an ingredient's per-100 nutrient samples into
// values for the quantity actually used in a recipe.
package scale

import (
	"strings"

	"github.com/pdiddy/recipe-engine/internal/numeric"
	"github.com/pdiddy/recipe-engine/pkg/types"
)

// SaltTokens are the product-name fragments that mark an ingredient as salt
// when its source record carries no nutrient samples. Matching is
// case-insensitive. The fallback is a heuristic for sources that omit salt
// content.
var SaltTokens = []string{"salt", "sare"}

// Scale returns a copy of ing with Quantity set to quantity and every
// derived field recomputed:
//
//   - CaloriesForQuantity = CaloriesPer100 / 100 * quantity (unset calories count as 0)
//   - ScaledNutrients from NutrientSamples, or the salt fallback
//
// A non-finite quantity leaves Quantity unset and resolves every derived
// value to 0. The sign of quantity is not validated.
func Scale(ing types.RecipeIngredient, quantity float64) types.RecipeIngredient {
	out := ing
	out.NutrientSamples = append(types.NutrientList(nil), ing.NutrientSamples...)
	out.AdditiveTags = append([]string(nil), ing.AdditiveTags...)

	q := quantity
	if numeric.Finite(quantity) {
		out.Quantity = numeric.Ptr(quantity)
	} else {
		out.Quantity = nil
		q = 0
	}

	out.CaloriesForQuantity = numeric.Ptr(numeric.Per100(numeric.OrZero(ing.CaloriesPer100), q))
	out.ScaledNutrients = scaledNutrients(ing, q)
	return out
}

// Unscaled returns a copy of ing with quantity and every derived field
// cleared. Ingredients enter a recipe in this state.
func Unscaled(ing types.RecipeIngredient) types.RecipeIngredient {
	out := ing
	out.NutrientSamples = append(types.NutrientList(nil), ing.NutrientSamples...)
	out.AdditiveTags = append([]string(nil), ing.AdditiveTags...)
	out.Quantity = nil
	out.CaloriesForQuantity = nil
	out.ScaledNutrients = nil
	return out
}

func scaledNutrients(ing types.RecipeIngredient, quantity float64) []types.ScaledNutrient {
	if len(ing.NutrientSamples) == 0 {
		if IsSalt(ing.ProductName) {
			return []types.ScaledNutrient{{Name: types.NutrientSalt, QuantityAtCurrentAmount: quantity}}
		}
		return []types.ScaledNutrient{}
	}

	scaled := make([]types.ScaledNutrient, len(ing.NutrientSamples))
	for i, s := range ing.NutrientSamples {
		scaled[i] = types.ScaledNutrient{
			Name:                    s.Name,
			QuantityAtCurrentAmount: numeric.Per100(s.QuantityPer100, quantity),
		}
	}
	return scaled
}

// IsSalt reports whether a product name contains one of SaltTokens.
func IsSalt(productName string) bool {
	name := strings.ToLower(productName)
	for _, token := range SaltTokens {
		if strings.Contains(name, token) {
			return true
		}
	}
	return false
}
