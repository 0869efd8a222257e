// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package classify

import (
	"context"

	"github.com/pdiddy/recipe-engine/pkg/types"
)

// Thresholds of the 2017 Nutri-Score table for solid foods. A component
// earns one point for every threshold its value strictly exceeds.
var (
	energyThresholds       = []float64{335, 670, 1005, 1340, 1675, 2010, 2345, 2680, 3015, 3350}
	sugarThresholds        = []float64{4.5, 9, 13.5, 18, 22.5, 27, 31, 36, 40, 45}
	saturatedFatThresholds = []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	sodiumThresholds       = []float64{90, 180, 270, 360, 450, 540, 630, 720, 810, 900}

	// Repeating 80 makes anything above 80% worth the full 5 points.
	fruitThresholds   = []float64{40, 60, 80, 80, 80}
	fiberThresholds   = []float64{0.9, 1.9, 2.8, 3.7, 4.7}
	proteinThresholds = []float64{1.6, 3.2, 4.8, 6.4, 8.0}
)

// proteinCutoff is the negative-points level above which proteins stop
// counting, unless fruit points are maxed out.
const proteinCutoff = 11

// Points is the per-component breakdown of a Nutri-Score computation.
type Points struct {
	Energy       int `json:"energy"`
	Sugar        int `json:"sugar"`
	SaturatedFat int `json:"saturated_fats"`
	Sodium       int `json:"sodium"`
	Fruit        int `json:"fruit_percentage"`
	Fibers       int `json:"fibers"`
	Proteins     int `json:"proteins"`
}

// Negative is the sum of the unfavourable components.
func (p Points) Negative() int {
	return p.Energy + p.Sugar + p.SaturatedFat + p.Sodium
}

// Positive is the sum of the favourable components.
func (p Points) Positive() int {
	return p.Fruit + p.Fibers + p.Proteins
}

// Score is the final Nutri-Score value; lower is better.
func (p Points) Score() int {
	neg := p.Negative()
	if neg >= proteinCutoff && p.Fruit < 5 {
		return neg - p.Fibers - p.Fruit
	}
	return neg - p.Positive()
}

// NutriScore classifies vectors with the local solid-food table.
type NutriScore struct{}

// Classify implements Classifier. It never fails.
func (NutriScore) Classify(_ context.Context, v Vector) (types.Score, error) {
	return gradeFor(ComputePoints(v).Score()), nil
}

// ComputePoints evaluates each vector component against its threshold table.
func ComputePoints(v Vector) Points {
	return Points{
		Energy:       countAbove(v.Energy, energyThresholds),
		Sugar:        countAbove(v.Sugar, sugarThresholds),
		SaturatedFat: countAbove(v.SaturatedFats, saturatedFatThresholds),
		Sodium:       countAbove(v.Sodium, sodiumThresholds),
		Fruit:        countAbove(v.FruitPercentage, fruitThresholds),
		Fibers:       countAbove(v.Fibers, fiberThresholds),
		Proteins:     countAbove(v.Proteins, proteinThresholds),
	}
}

func countAbove(value float64, thresholds []float64) int {
	n := 0
	for _, t := range thresholds {
		if value > t {
			n++
		}
	}
	return n
}

func gradeFor(score int) types.Score {
	switch {
	case score <= -1:
		return "A"
	case score <= 2:
		return "B"
	case score <= 10:
		return "C"
	case score <= 18:
		return "D"
	default:
		return "E"
	}
}
