// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/recipe-engine/pkg/types"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printRecipe writes the ingredient table and totals of r.
func printRecipe(w io.Writer, r types.Recipe) {
	name := r.Name
	if name == "" {
		name = "(unnamed)"
	}
	if r.ID != "" {
		fmt.Fprintf(w, "%s  [%s]\n", name, r.ID)
	} else {
		fmt.Fprintln(w, name)
	}
	fmt.Fprintln(w)

	if len(r.Ingredients) == 0 {
		fmt.Fprintln(w, "No ingredients.")
	} else {
		fmt.Fprintf(w, "%-8s  %-32s  %10s  %10s\n", "ID", "Ingredient", "Quantity", "kcal")
		fmt.Fprintln(w, strings.Repeat("-", 66))
		for _, ing := range r.Ingredients {
			fmt.Fprintf(w, "%-8s  %-32s  %10s  %10s\n",
				idPrefix(ing.ID), shorten(ing.ProductName, 32),
				formatOptional(ing.Quantity), formatOptional(ing.CaloriesForQuantity))
		}
	}

	t := r.NutrientTotals
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Quantity %.2f  Calories %.2f\n", t.TotalQuantity, t.TotalCalories)
	fmt.Fprintf(w, "Fat %.2f (saturated %.2f)  Carbohydrates %.2f (sugars %.2f)  Proteins %.2f  Salt %.2f\n",
		t.Fat, t.SaturatedFat, t.Carbohydrates, t.Sugars, t.Proteins, t.Salt)
	if len(r.Additives) > 0 {
		fmt.Fprintf(w, "Additives: %s\n", strings.TrimSpace(strings.Join(r.Additives, "")))
	}
	fmt.Fprintf(w, "Score: %s\n", r.Score)
}

// idPrefix returns the first 8 characters of id, enough to address an
// ingredient on the command line.
func idPrefix(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatOptional(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *v)
}

// shorten truncates s to at most n runes, marking the cut with "...".
func shorten(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
