// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package aggregate

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/recipe-engine/internal/classify"
	"github.com/pdiddy/recipe-engine/internal/numeric"
	"github.com/pdiddy/recipe-engine/internal/scale"
	"github.com/pdiddy/recipe-engine/pkg/types"
)

// --- test helpers ---

func ingredient(id, name string, kcal float64, samples types.NutrientList, tags ...string) types.RecipeIngredient {
	return types.RecipeIngredient{
		ID:              id,
		ProductName:     name,
		CaloriesPer100:  numeric.Ptr(kcal),
		NutrientSamples: samples,
		AdditiveTags:    tags,
	}
}

func scaled(name string, amounts map[string]float64) types.RecipeIngredient {
	ing := types.RecipeIngredient{ID: name, ProductName: name}
	for _, key := range []string{"fat", "saturated-fat", "carbohydrates", "sugars", "proteins", "salt", "energy-kcal", "fibers"} {
		if v, ok := amounts[key]; ok {
			ing.ScaledNutrients = append(ing.ScaledNutrients, types.ScaledNutrient{Name: key, QuantityAtCurrentAmount: v})
		}
	}
	return ing
}

// countingClassifier records how often it was called.
type countingClassifier struct {
	calls int
	last  classify.Vector
	score types.Score
	err   error
}

func (c *countingClassifier) Classify(_ context.Context, v classify.Vector) (types.Score, error) {
	c.calls++
	c.last = v
	return c.score, c.err
}

// --- SumNutrient ---

func TestSumNutrientEmpty(t *testing.T) {
	assert.Equal(t, 0.0, SumNutrient(nil, "fat"))
	assert.Equal(t, 0.0, SumNutrient([]types.RecipeIngredient{}, "salt"))
}

func TestSumNutrientSalt(t *testing.T) {
	a := scaled("a", map[string]float64{"salt": 1.2})
	b := scaled("b", map[string]float64{"salt": 0.3})

	assert.Equal(t, 1.5, SumNutrient([]types.RecipeIngredient{a, b}, "salt"))
}

func TestSumNutrientExactKeyMatch(t *testing.T) {
	a := scaled("a", map[string]float64{"saturated-fat": 2.5})

	assert.Equal(t, 2.5, SumNutrient([]types.RecipeIngredient{a}, "saturated-fat"))
	assert.Equal(t, 0.0, SumNutrient([]types.RecipeIngredient{a}, "saturated_fat"), "underscore key must not match")
	assert.Equal(t, 0.0, SumNutrient([]types.RecipeIngredient{a}, "Saturated-Fat"), "match is case-sensitive")
}

func TestSumNutrientSkipsUnscaledIngredients(t *testing.T) {
	unscaled := ingredient("u", "Faina", 340, types.NutrientList{{Name: "fat", QuantityPer100: 1}})
	a := scaled("a", map[string]float64{"fat": 4})

	assert.Equal(t, 4.0, SumNutrient([]types.RecipeIngredient{unscaled, a}, "fat"))
}

func TestSumNutrientStepwiseRounding(t *testing.T) {
	ings := []types.RecipeIngredient{
		scaled("a", map[string]float64{"sugars": 0.004}),
		scaled("b", map[string]float64{"sugars": 0.004}),
		scaled("c", map[string]float64{"sugars": 0.004}),
	}

	// Each partial sum rounds back to 0, unlike a single final rounding (0.01).
	assert.Equal(t, 0.0, SumNutrient(ings, "sugars"))
	assert.Equal(t, 0.01, numeric.Round2(0.004*3))
}

func TestSumNutrientIgnoresNaN(t *testing.T) {
	a := scaled("a", map[string]float64{"fat": math.NaN()})
	b := scaled("b", map[string]float64{"fat": 1.25})

	assert.Equal(t, 1.25, SumNutrient([]types.RecipeIngredient{a, b}, "fat"))
}

// --- ComputeTotals ---

func TestComputeTotalsEmpty(t *testing.T) {
	assert.Equal(t, types.RecipeNutrientTotals{}, ComputeTotals(nil))
}

func TestComputeTotals(t *testing.T) {
	butter := scale.Scale(ingredient("1", "Unt", 200, types.NutrientList{
		{Name: "fat", QuantityPer100: 10},
		{Name: "saturated-fat", QuantityPer100: 6},
	}), 50)
	flour := scale.Scale(ingredient("2", "Faina alba", 364, types.NutrientList{
		{Name: "carbohydrates", QuantityPer100: 76},
		{Name: "sugars", QuantityPer100: 0.3},
		{Name: "proteins", QuantityPer100: 10.3},
		{Name: "fat", QuantityPer100: 1},
	}), 250)
	salt := scale.Scale(types.RecipeIngredient{ID: "3", ProductName: "Sare de mare"}, 4)
	unset := ingredient("4", "Drojdie", 105, nil)

	got := ComputeTotals([]types.RecipeIngredient{butter, flour, salt, unset})

	assert.Equal(t, 304.0, got.TotalQuantity)
	assert.Equal(t, 1010.0, got.TotalCalories)
	assert.Equal(t, 7.5, got.Fat)
	assert.Equal(t, 3.0, got.SaturatedFat)
	assert.Equal(t, 190.0, got.Carbohydrates)
	assert.Equal(t, 0.75, got.Sugars)
	assert.Equal(t, 25.75, got.Proteins)
	assert.Equal(t, 4.0, got.Salt)
}

func TestComputeTotalsQuantityNotRounded(t *testing.T) {
	a := scale.Scale(ingredient("a", "Lapte", 0, nil), 0.333)
	b := scale.Scale(ingredient("b", "Apa", 0, nil), 0.333)

	got := ComputeTotals([]types.RecipeIngredient{a, b})
	assert.InDelta(t, 0.666, got.TotalQuantity, 1e-12)
}

func TestComputeTotalsRemoveThenReAdd(t *testing.T) {
	a := scale.Scale(ingredient("a", "Unt", 717, types.NutrientList{{Name: "fat", QuantityPer100: 81}}), 30)
	b := scale.Scale(ingredient("b", "Zahar", 400, types.NutrientList{{Name: "sugars", QuantityPer100: 100}}), 120)
	c := scale.Scale(ingredient("c", "Oua", 143, types.NutrientList{{Name: "proteins", QuantityPer100: 12.6}, {Name: "fat", QuantityPer100: 9.5}}), 110)

	before := ComputeTotals([]types.RecipeIngredient{a, b, c})

	// Remove b, then re-add an equivalent ingredient at the end.
	b2 := scale.Scale(ingredient("b2", "Zahar", 400, types.NutrientList{{Name: "sugars", QuantityPer100: 100}}), 120)
	after := ComputeTotals([]types.RecipeIngredient{a, c, b2})

	assert.InDelta(t, before.TotalCalories, after.TotalCalories, 0.01)
	assert.InDelta(t, before.Fat, after.Fat, 0.01)
	assert.InDelta(t, before.Sugars, after.Sugars, 0.01)
	assert.InDelta(t, before.Proteins, after.Proteins, 0.01)
	assert.Equal(t, before.TotalQuantity, after.TotalQuantity)
}

func TestMissingKeys(t *testing.T) {
	a := scaled("a", map[string]float64{"fat": 1, "saturated-fat": 1, "carbohydrates": 1, "sugars": 1, "proteins": 1})
	assert.Equal(t, []string{"salt"}, MissingKeys([]types.RecipeIngredient{a}))

	// A source emitting underscore keys leaves the hyphenated key unmatched.
	drifted := types.RecipeIngredient{ScaledNutrients: []types.ScaledNutrient{{Name: "saturated_fat", QuantityAtCurrentAmount: 2}}}
	assert.Contains(t, MissingKeys([]types.RecipeIngredient{drifted}), "saturated-fat")
}

// --- ComputeAdditives ---

func TestComputeAdditives(t *testing.T) {
	tests := []struct {
		name string
		ings []types.RecipeIngredient
		want []string
	}{
		{
			name: "empty list",
			want: []string{},
		},
		{
			name: "strips prefix and appends a space",
			ings: []types.RecipeIngredient{{AdditiveTags: []string{"en:e330", "en:e300"}}},
			want: []string{"e330 ", "e300 "},
		},
		{
			name: "deduplicates across ingredients in first-seen order",
			ings: []types.RecipeIngredient{
				{AdditiveTags: []string{"en:e330", "en:e471"}},
				{AdditiveTags: nil},
				{AdditiveTags: []string{"en:e322", "en:e330"}},
			},
			want: []string{"e330 ", "e471 ", "e322 "},
		},
		{
			name: "content after prefix is kept verbatim",
			ings: []types.RecipeIngredient{{AdditiveTags: []string{"E330antioxidant"}}},
			want: []string{"0antioxidant "},
		},
		{
			name: "tags no longer than the prefix are skipped",
			ings: []types.RecipeIngredient{{AdditiveTags: []string{"en:", "e3"}}},
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeAdditives(tt.ings))
		})
	}
}

func TestComputeAdditivesIdempotent(t *testing.T) {
	ings := []types.RecipeIngredient{
		{AdditiveTags: []string{"en:e330", "en:e412"}},
		{AdditiveTags: []string{"en:e412", "en:e150d"}},
	}
	first := ComputeAdditives(ings)
	second := ComputeAdditives(ings)
	assert.Equal(t, first, second)
	assert.Equal(t, []string{"e330 ", "e412 ", "e150d "}, first)
}

// --- BuildVector / ComputeScore ---

func TestBuildVector(t *testing.T) {
	ings := []types.RecipeIngredient{
		scaled("a", map[string]float64{"energy-kcal": 100, "proteins": 4, "saturated-fat": 1.5, "salt": 0.5, "sugars": 12}),
		scaled("b", map[string]float64{"energy-kcal": 50, "fibers": 2.2}),
	}

	v := BuildVector(ings)
	assert.InDelta(t, 150*4.184, v.Energy, 1e-9)
	assert.Equal(t, 2.2, v.Fibers)
	assert.Equal(t, 0.0, v.FruitPercentage)
	assert.Equal(t, 4.0, v.Proteins)
	assert.Equal(t, 1.5, v.SaturatedFats)
	assert.Equal(t, 200.0, v.Sodium)
	assert.Equal(t, 12.0, v.Sugar)
}

func TestComputeScoreEmptySkipsClassifier(t *testing.T) {
	c := &countingClassifier{score: "B"}

	score := ComputeScore(context.Background(), nil, c)

	assert.False(t, score.IsSet())
	assert.Zero(t, c.calls)
}

func TestComputeScoreUnquantifiedSkipsClassifier(t *testing.T) {
	c := &countingClassifier{score: "B"}
	ings := []types.RecipeIngredient{
		ingredient("1", "Unt", 745, types.NutrientList{{Name: "fat", QuantityPer100: 82}}),
	}

	score := ComputeScore(context.Background(), ings, c)

	assert.False(t, score.IsSet())
	assert.Zero(t, c.calls)
}

func TestComputeScoreReturnsLabelUnmodified(t *testing.T) {
	c := &countingClassifier{score: "C"}
	ings := []types.RecipeIngredient{scaled("a", map[string]float64{"salt": 1})}

	score := ComputeScore(context.Background(), ings, c)

	assert.Equal(t, types.Score("C"), score)
	assert.Equal(t, 1, c.calls)
	assert.Equal(t, 400.0, c.last.Sodium)
}

func TestComputeScoreClassifierFailure(t *testing.T) {
	c := &countingClassifier{err: errors.New("scoring service down")}
	ings := []types.RecipeIngredient{scaled("a", map[string]float64{"fat": 1})}

	assert.False(t, ComputeScore(context.Background(), ings, c).IsSet())
}

// --- Aggregator ---

func TestRecompute(t *testing.T) {
	c := &countingClassifier{score: "D"}
	agg := New(c)

	r := types.Recipe{
		Name: "Cozonac",
		Ingredients: []types.RecipeIngredient{
			scale.Scale(ingredient("1", "Unt", 200, types.NutrientList{{Name: "fat", QuantityPer100: 10}}, "en:e160a"), 50),
			scale.Scale(types.RecipeIngredient{ID: "2", ProductName: "Sare", AdditiveTags: []string{"en:e536"}}, 4),
		},
	}

	got := agg.Recompute(context.Background(), r)

	assert.Equal(t, 54.0, got.Quantity)
	assert.Equal(t, got.NutrientTotals.TotalQuantity, got.Quantity)
	assert.Equal(t, 100.0, got.NutrientTotals.TotalCalories)
	assert.Equal(t, 5.0, got.NutrientTotals.Fat)
	assert.Equal(t, 4.0, got.NutrientTotals.Salt)
	assert.Equal(t, []string{"e160a ", "e536 "}, got.Additives)
	assert.Equal(t, types.Score("D"), got.Score)

	// Input is left untouched.
	assert.Empty(t, r.Additives)
	assert.False(t, r.Score.IsSet())
}

func TestRecomputeEmptyRecipe(t *testing.T) {
	c := &countingClassifier{score: "A"}
	got := New(c).Recompute(context.Background(), types.Recipe{Name: "Gol"})

	assert.Equal(t, types.RecipeNutrientTotals{}, got.NutrientTotals)
	assert.Equal(t, []string{}, got.Additives)
	assert.False(t, got.Score.IsSet())
	assert.Zero(t, c.calls)
}

func TestRecomputeWithNutriScore(t *testing.T) {
	agg := New(classify.NutriScore{})
	r := types.Recipe{Ingredients: []types.RecipeIngredient{
		scale.Scale(ingredient("1", "Piept de pui", 120, types.NutrientList{
			{Name: "energy-kcal", QuantityPer100: 120},
			{Name: "proteins", QuantityPer100: 23},
			{Name: "fat", QuantityPer100: 2.6},
		}), 100),
	}}

	got := agg.Recompute(context.Background(), r)
	require.True(t, got.Score.IsSet())
	assert.True(t, classify.ValidGrade(got.Score))
}
