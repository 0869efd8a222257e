// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package draft

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/recipe-engine/internal/aggregate"
	"github.com/pdiddy/recipe-engine/internal/classify"
	"github.com/pdiddy/recipe-engine/internal/numeric"
	"github.com/pdiddy/recipe-engine/pkg/types"
)

// --- test helpers ---

// fixedClassifier always answers with the same grade and counts calls.
type fixedClassifier struct {
	grade types.Score
	calls int
}

func (f *fixedClassifier) Classify(context.Context, classify.Vector) (types.Score, error) {
	f.calls++
	return f.grade, nil
}

func testEditor(t *testing.T) (*Editor, *fixedClassifier) {
	t.Helper()
	c := &fixedClassifier{grade: "B"}
	n := 0
	e := NewEditor(aggregate.New(c), WithIDFunc(func() string {
		n++
		return fmt.Sprintf("ing-%d", n)
	}))
	return e, c
}

func butterRecord() types.SourceRecord {
	return types.SourceRecord{
		ProductName:  "Unt",
		Brand:        "Napolact",
		Calories:     numeric.Ptr(200),
		Nutriments:   types.NutrientList{{Name: "fat", QuantityPer100: 10}},
		AdditiveTags: []string{"en:e160a"},
		Source:       "openfoodfacts",
	}
}

func saltRecord() types.SourceRecord {
	return types.SourceRecord{ProductName: "Sare de mare", AdditiveTags: []string{"en:e536", "en:e160a"}}
}

// --- tests ---

func TestNew(t *testing.T) {
	e, _ := testEditor(t)
	r := e.New("  Cozonac ")

	assert.Equal(t, "Cozonac", r.Name)
	assert.Empty(t, r.ID)
	assert.Empty(t, r.Ingredients)
	assert.Equal(t, types.RecipeNutrientTotals{}, r.NutrientTotals)
	assert.False(t, r.Score.IsSet())
	assert.Equal(t, StatusNamed, StatusOf(r))
	assert.Equal(t, StatusEmpty, StatusOf(e.New("")))
}

func TestAddIngredientLeavesTotalsAlone(t *testing.T) {
	e, c := testEditor(t)
	r := e.New("Cozonac")

	r2, ing := e.AddIngredient(r, butterRecord())

	require.Len(t, r2.Ingredients, 1)
	assert.Equal(t, "ing-1", ing.ID)
	assert.Equal(t, ing, r2.Ingredients[0])
	assert.Equal(t, "Napolact", ing.Brand)
	assert.Equal(t, 200.0, *ing.CaloriesPer100)
	assert.False(t, ing.HasQuantity())
	assert.Nil(t, ing.CaloriesForQuantity)
	assert.Nil(t, ing.ScaledNutrients)

	assert.Equal(t, types.RecipeNutrientTotals{}, r2.NutrientTotals)
	assert.False(t, r2.Score.IsSet())
	assert.Zero(t, c.calls)
	assert.Equal(t, StatusHasIngredients, StatusOf(r2))

	// The original draft is not modified.
	assert.Empty(t, r.Ingredients)
}

func TestUpdateQuantity(t *testing.T) {
	e, c := testEditor(t)
	r, butter := e.AddIngredient(e.New("Cozonac"), butterRecord())
	r, salt := e.AddIngredient(r, saltRecord())

	r, err := e.UpdateQuantity(context.Background(), r, butter.ID, 50)
	require.NoError(t, err)

	assert.Equal(t, butter.ID, r.Ingredients[0].ID, "replaced in place")
	assert.Equal(t, 100.0, *r.Ingredients[0].CaloriesForQuantity)
	assert.Equal(t, 5.0, r.Ingredients[0].ScaledNutrients[0].QuantityAtCurrentAmount)
	assert.Equal(t, 50.0, r.Quantity)
	assert.Equal(t, 100.0, r.NutrientTotals.TotalCalories)
	assert.Equal(t, 5.0, r.NutrientTotals.Fat)
	assert.Equal(t, []string{"e160a ", "e536 "}, r.Additives)
	assert.Equal(t, types.Score("B"), r.Score)
	assert.Equal(t, StatusScored, StatusOf(r))

	r, err = e.UpdateQuantity(context.Background(), r, salt.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 54.0, r.Quantity)
	assert.Equal(t, 4.0, r.NutrientTotals.Salt)
	assert.Equal(t, []types.ScaledNutrient{{Name: "salt", QuantityAtCurrentAmount: 4}}, r.Ingredients[1].ScaledNutrients)
	assert.Equal(t, 2, c.calls)
}

func TestUpdateQuantityUnknownIngredient(t *testing.T) {
	e, _ := testEditor(t)
	r, _ := e.AddIngredient(e.New("Cozonac"), butterRecord())

	got, err := e.UpdateQuantity(context.Background(), r, "missing", 10)
	assert.ErrorIs(t, err, ErrIngredientNotFound)
	assert.Equal(t, r, got)
}

func TestUpdateQuantityDoesNotMutateInput(t *testing.T) {
	e, _ := testEditor(t)
	r, butter := e.AddIngredient(e.New("Cozonac"), butterRecord())

	_, err := e.UpdateQuantity(context.Background(), r, butter.ID, 80)
	require.NoError(t, err)

	assert.False(t, r.Ingredients[0].HasQuantity())
	assert.Zero(t, r.NutrientTotals.TotalCalories)
}

func TestRemoveLastQuantifiedIngredientClearsScore(t *testing.T) {
	e, c := testEditor(t)
	ctx := context.Background()
	r, butter := e.AddIngredient(e.New("Cozonac"), butterRecord())
	r, _ = e.AddIngredient(r, saltRecord())
	r, _ = e.UpdateQuantity(ctx, r, butter.ID, 50)
	require.True(t, r.Score.IsSet())

	r, err := e.RemoveIngredient(ctx, r, butter.ID)
	require.NoError(t, err)

	require.Len(t, r.Ingredients, 1)
	assert.False(t, r.Score.IsSet())
	assert.Equal(t, 1, c.calls)
}

func TestRemoveIngredient(t *testing.T) {
	e, _ := testEditor(t)
	ctx := context.Background()
	r, butter := e.AddIngredient(e.New("Cozonac"), butterRecord())
	r, salt := e.AddIngredient(r, saltRecord())
	r, _ = e.UpdateQuantity(ctx, r, butter.ID, 50)
	r, _ = e.UpdateQuantity(ctx, r, salt.ID, 4)

	r, err := e.RemoveIngredient(ctx, r, butter.ID)
	require.NoError(t, err)

	require.Len(t, r.Ingredients, 1)
	assert.Equal(t, salt.ID, r.Ingredients[0].ID)
	assert.Equal(t, 4.0, r.Quantity)
	assert.Zero(t, r.NutrientTotals.Fat)
	assert.Equal(t, []string{"e536 ", "e160a "}, r.Additives)

	// Removing the last ingredient returns the draft to the named state.
	r, err = e.RemoveIngredient(ctx, r, salt.ID)
	require.NoError(t, err)
	assert.Empty(t, r.Ingredients)
	assert.Equal(t, types.RecipeNutrientTotals{}, r.NutrientTotals)
	assert.Equal(t, []string{}, r.Additives)
	assert.False(t, r.Score.IsSet())
	assert.Equal(t, StatusNamed, StatusOf(r))
}

func TestRemoveIngredientUnknown(t *testing.T) {
	e, _ := testEditor(t)
	_, err := e.RemoveIngredient(context.Background(), e.New("x"), "nope")
	assert.ErrorIs(t, err, ErrIngredientNotFound)
}

func TestRemoveThenReAddReproducesTotals(t *testing.T) {
	e, _ := testEditor(t)
	ctx := context.Background()
	r, butter := e.AddIngredient(e.New("Cozonac"), butterRecord())
	r, salt := e.AddIngredient(r, saltRecord())
	r, _ = e.UpdateQuantity(ctx, r, butter.ID, 50)
	r, _ = e.UpdateQuantity(ctx, r, salt.ID, 4)
	before := r.NutrientTotals

	r, err := e.RemoveIngredient(ctx, r, butter.ID)
	require.NoError(t, err)
	r, again := e.AddIngredient(r, butterRecord())
	r, err = e.UpdateQuantity(ctx, r, again.ID, 50)
	require.NoError(t, err)

	assert.Equal(t, before, r.NutrientTotals)
}

func TestRename(t *testing.T) {
	e, _ := testEditor(t)
	r := e.Rename(e.New("Cozonac"), "Cozonac cu nuca")
	assert.Equal(t, "Cozonac cu nuca", r.Name)
}

func TestRefreshRederivesStaleValues(t *testing.T) {
	e, _ := testEditor(t)
	stale := types.Recipe{
		Name: "Editat de mana",
		Ingredients: []types.RecipeIngredient{
			{
				ID:                  "a",
				ProductName:         "Unt",
				CaloriesPer100:      numeric.Ptr(200),
				Quantity:            numeric.Ptr(50),
				CaloriesForQuantity: numeric.Ptr(9999),
				NutrientSamples:     types.NutrientList{{Name: "fat", QuantityPer100: 10}},
				ScaledNutrients:     []types.ScaledNutrient{{Name: "fat", QuantityAtCurrentAmount: 123}},
			},
			{ID: "b", ProductName: "Zahar", CaloriesForQuantity: numeric.Ptr(5)},
		},
		NutrientTotals: types.RecipeNutrientTotals{Fat: 123},
	}

	got := e.Refresh(context.Background(), stale)

	assert.Equal(t, 100.0, *got.Ingredients[0].CaloriesForQuantity)
	assert.Equal(t, 5.0, got.NutrientTotals.Fat)
	assert.Nil(t, got.Ingredients[1].CaloriesForQuantity)
	assert.Equal(t, 100.0, got.NutrientTotals.TotalCalories)
}

func TestValidateForSubmit(t *testing.T) {
	e, _ := testEditor(t)
	assert.ErrorIs(t, ValidateForSubmit(e.New("Gol")), ErrNoIngredients)

	r, _ := e.AddIngredient(e.New("Plin"), butterRecord())
	assert.NoError(t, ValidateForSubmit(r))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	e, _ := testEditor(t)
	ctx := context.Background()
	r, butter := e.AddIngredient(e.New("Cozonac"), butterRecord())
	r, _ = e.AddIngredient(r, saltRecord())
	r, _ = e.UpdateQuantity(ctx, r, butter.ID, 50)

	path := filepath.Join(t.TempDir(), "drafts", "cozonac.yaml")
	require.NoError(t, Save(path, r))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, r.Name, loaded.Name)
	assert.Equal(t, r.NutrientTotals, loaded.NutrientTotals)
	assert.Equal(t, r.Additives, loaded.Additives)
	assert.Equal(t, r.Score, loaded.Score)
	require.Len(t, loaded.Ingredients, 2)
	assert.Equal(t, 50.0, *loaded.Ingredients[0].Quantity)
	assert.False(t, loaded.Ingredients[1].HasQuantity())
}

func TestLoadKeyedNutriments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "draft.yaml")
	content := `name: Clatite
ingredients:
  - id: a
    product_name: Lapte
    calories_100: 46
    quantity: 200
    nutriments:
      fat: 1.5
      sugars:
        name: sugars
        quantity_100: 4.8
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	r, err := Load(path)
	require.NoError(t, err)

	e, _ := testEditor(t)
	r = e.Refresh(context.Background(), r)
	assert.Equal(t, []string{"fat", "sugars"}, r.Ingredients[0].NutrientSamples.Names())
	assert.Equal(t, 3.0, r.NutrientTotals.Fat)
	assert.Equal(t, 9.6, r.NutrientTotals.Sugars)
	assert.Equal(t, 92.0, r.NutrientTotals.TotalCalories)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("ingredients: {{{"), 0o644))
	_, err = Load(bad)
	assert.ErrorContains(t, err, "parsing draft")
}
