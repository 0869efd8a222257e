// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/recipe-engine/internal/classify"
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Score an explicit nutrient vector with the configured classifier",
	Long: `Classify sends one nutrient vector to the configured classifier and
prints the resulting class. Energy is in kJ and sodium in mg; the other
values are in grams. With the nutriscore backend the point breakdown is
printed as well.`,
	Args: cobra.NoArgs,
	RunE: runClassify,
}

func runClassify(cmd *cobra.Command, args []string) error {
	cfg, err := engineConfig()
	if err != nil {
		return err
	}
	c, err := classify.New(cfg.Classifier)
	if err != nil {
		return err
	}

	f := cmd.Flags()
	var v classify.Vector
	v.Energy, _ = f.GetFloat64("energy")
	v.Fibers, _ = f.GetFloat64("fibers")
	v.FruitPercentage, _ = f.GetFloat64("fruit")
	v.Proteins, _ = f.GetFloat64("proteins")
	v.SaturatedFats, _ = f.GetFloat64("saturated-fats")
	v.Sodium, _ = f.GetFloat64("sodium")
	v.Sugar, _ = f.GetFloat64("sugar")

	score, err := c.Classify(cmd.Context(), v)
	if err != nil {
		return fmt.Errorf("classifying: %w", err)
	}

	if jsonOutput, _ := f.GetBool("json"); jsonOutput {
		return writeJSON(cmd.OutOrStdout(), map[string]any{"vector": v, "class": score})
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Score: %s\n", score)
	if _, local := c.(classify.NutriScore); local {
		p := classify.ComputePoints(v)
		fmt.Fprintf(w, "Points: %d (negative %d, positive %d)\n", p.Score(), p.Negative(), p.Positive())
	}
	return nil
}

func init() {
	f := classifyCmd.Flags()
	f.Float64("energy", 0, "energy in kJ")
	f.Float64("fibers", 0, "fibers in g")
	f.Float64("fruit", 0, "fruit and vegetable percentage")
	f.Float64("proteins", 0, "proteins in g")
	f.Float64("saturated-fats", 0, "saturated fats in g")
	f.Float64("sodium", 0, "sodium in mg")
	f.Float64("sugar", 0, "sugars in g")
	f.Bool("json", false, "output the vector and class as JSON")

	rootCmd.AddCommand(classifyCmd)
}
