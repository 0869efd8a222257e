// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package aggregate rolls scaled ingredients up into recipe totals, the
// recipe additive set and the recipe score.
//
// Nutrient sums round the running total to 2 decimals after every
// addition. The result can differ from rounding once at the end.
package aggregate

import (
	"context"
	"unicode/utf8"

	"github.com/pdiddy/recipe-engine/internal/classify"
	"github.com/pdiddy/recipe-engine/internal/log"
	"github.com/pdiddy/recipe-engine/internal/numeric"
	"github.com/pdiddy/recipe-engine/pkg/types"
)

const (
	// kcalToKJ converts kilocalories to kilojoules.
	kcalToKJ = 4.184

	// saltToSodium approximates mg of sodium per unit of salt.
	saltToSodium = 400

	// additivePrefixLen is the length of the language prefix on additive
	// tags ("en:").
	additivePrefixLen = 3
)

// totalsKeys lists the nutrient keys summed into RecipeNutrientTotals.
var totalsKeys = []string{
	types.NutrientFat,
	types.NutrientSaturatedFat,
	types.NutrientCarbohydrates,
	types.NutrientSugars,
	types.NutrientProteins,
	types.NutrientSalt,
}

// SumNutrient sums the scaled amount of nutrient name over ingredients.
// Only ingredients carrying scaled nutrients take part; an ingredient that
// lacks the nutrient contributes 0. Names match exactly. The running total
// is rounded to 2 decimals after each addition.
func SumNutrient(ingredients []types.RecipeIngredient, name string) float64 {
	total := 0.0
	for _, ing := range ingredients {
		if len(ing.ScaledNutrients) == 0 {
			continue
		}
		v, _ := lookup(ing, name)
		total = numeric.Round2(total + v)
	}
	return total
}

// lookup finds the scaled amount of name in ing.
func lookup(ing types.RecipeIngredient, name string) (float64, bool) {
	for _, n := range ing.ScaledNutrients {
		if n.Name == name {
			if !numeric.Finite(n.QuantityAtCurrentAmount) {
				return 0, true
			}
			return n.QuantityAtCurrentAmount, true
		}
	}
	return 0, false
}

// ComputeTotals derives the recipe nutrient totals from ingredients.
// TotalQuantity is a plain sum; every other field is rounded step-wise.
func ComputeTotals(ingredients []types.RecipeIngredient) types.RecipeNutrientTotals {
	var totals types.RecipeNutrientTotals
	for _, ing := range ingredients {
		totals.TotalQuantity += numeric.OrZero(ing.Quantity)
		totals.TotalCalories = numeric.Round2(totals.TotalCalories + numeric.OrZero(ing.CaloriesForQuantity))
	}

	totals.Fat = SumNutrient(ingredients, types.NutrientFat)
	totals.SaturatedFat = SumNutrient(ingredients, types.NutrientSaturatedFat)
	totals.Carbohydrates = SumNutrient(ingredients, types.NutrientCarbohydrates)
	totals.Sugars = SumNutrient(ingredients, types.NutrientSugars)
	totals.Proteins = SumNutrient(ingredients, types.NutrientProteins)
	totals.Salt = SumNutrient(ingredients, types.NutrientSalt)
	return totals
}

// MissingKeys returns the totals keys that no scaled ingredient carries.
// A non-empty result on a recipe with scaled ingredients usually means the
// ingredient source renamed a nutrient key.
func MissingKeys(ingredients []types.RecipeIngredient) []string {
	var missing []string
	for _, key := range totalsKeys {
		found := false
		for _, ing := range ingredients {
			if _, ok := lookup(ing, key); ok {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, key)
		}
	}
	return missing
}

// ComputeAdditives collects the additive tags of every ingredient, strips
// the 3-character prefix, appends one trailing space and removes
// duplicates while keeping first-seen order. Tags with nothing after the
// prefix are skipped.
func ComputeAdditives(ingredients []types.RecipeIngredient) []string {
	additives := []string{}
	seen := make(map[string]bool)
	for _, ing := range ingredients {
		for _, tag := range ing.AdditiveTags {
			code := stripPrefix(tag)
			if code == "" {
				continue
			}
			entry := code + " "
			if seen[entry] {
				continue
			}
			seen[entry] = true
			additives = append(additives, entry)
		}
	}
	return additives
}

// stripPrefix drops the first additivePrefixLen runes of tag.
func stripPrefix(tag string) string {
	for i := 0; i < additivePrefixLen; i++ {
		if tag == "" {
			return ""
		}
		_, size := utf8.DecodeRuneInString(tag)
		tag = tag[size:]
	}
	return tag
}

// BuildVector assembles the classifier input from ingredient sums. Fruit
// and vegetable share is not tracked and is always 0.
func BuildVector(ingredients []types.RecipeIngredient) classify.Vector {
	return classify.Vector{
		Energy:          SumNutrient(ingredients, types.NutrientEnergyKcal) * kcalToKJ,
		Fibers:          SumNutrient(ingredients, types.NutrientFibers),
		FruitPercentage: 0,
		Proteins:        SumNutrient(ingredients, types.NutrientProteins),
		SaturatedFats:   SumNutrient(ingredients, types.NutrientSaturatedFat),
		Sodium:          SumNutrient(ingredients, types.NutrientSalt) * saltToSodium,
		Sugar:           SumNutrient(ingredients, types.NutrientSugars),
	}
}

// ComputeScore classifies the ingredient list. A list with no scaled
// ingredient (empty, or nothing quantified yet) is never sent to the
// classifier: an all-zero vector would still produce a class. A classifier
// failure leaves the score unset.
func ComputeScore(ctx context.Context, ingredients []types.RecipeIngredient, c classify.Classifier) types.Score {
	if scaledCount(ingredients) == 0 || c == nil {
		return ""
	}
	score, err := c.Classify(ctx, BuildVector(ingredients))
	if err != nil {
		log.Warn(ctx, "classification failed, score left unset", "error", err)
		return ""
	}
	return score
}

// Aggregator recomputes the derived fields of a recipe using one classifier.
type Aggregator struct {
	classifier classify.Classifier
}

// New returns an Aggregator that scores with c.
func New(c classify.Classifier) *Aggregator {
	return &Aggregator{classifier: c}
}

// Recompute returns a copy of r with Quantity, NutrientTotals, Additives
// and Score derived from its ingredients.
func (a *Aggregator) Recompute(ctx context.Context, r types.Recipe) types.Recipe {
	out := r
	out.NutrientTotals = ComputeTotals(r.Ingredients)
	out.Quantity = out.NutrientTotals.TotalQuantity
	out.Additives = ComputeAdditives(r.Ingredients)
	out.Score = ComputeScore(ctx, r.Ingredients, a.classifier)

	if scaled := scaledCount(r.Ingredients); scaled > 0 {
		if missing := MissingKeys(r.Ingredients); len(missing) > 0 {
			log.Debug(ctx, "nutrient keys absent from every ingredient",
				"recipe", r.Name, "keys", missing, "scaled_ingredients", scaled)
		}
	}
	return out
}

func scaledCount(ingredients []types.RecipeIngredient) int {
	n := 0
	for _, ing := range ingredients {
		if len(ing.ScaledNutrients) > 0 {
			n++
		}
	}
	return n
}
