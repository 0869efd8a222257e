// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package classify turns an aggregate nutrient vector into a score class.
//
// The scoring table is treated as a black box behind the Classifier
// interface. Two implementations are provided: NutriScore, a local table
// evaluated in-process, and Remote, which asks an HTTP service.
package classify

import (
	"context"
	"fmt"

	"github.com/pdiddy/recipe-engine/pkg/types"
)

// Vector is the classifier input. Field names on the wire follow the
// scoring service: energy, fibers, fruit_percentage, proteins,
// saturated_fats, sodium, sugar.
type Vector struct {
	// Energy is in kJ.
	Energy          float64 `json:"energy" yaml:"energy"`
	Fibers          float64 `json:"fibers" yaml:"fibers"`
	FruitPercentage float64 `json:"fruit_percentage" yaml:"fruit_percentage"`
	Proteins        float64 `json:"proteins" yaml:"proteins"`
	SaturatedFats   float64 `json:"saturated_fats" yaml:"saturated_fats"`
	// Sodium is in mg.
	Sodium float64 `json:"sodium" yaml:"sodium"`
	Sugar  float64 `json:"sugar" yaml:"sugar"`
}

// Classifier maps a nutrient vector to a label from Grades.
type Classifier interface {
	Classify(ctx context.Context, v Vector) (types.Score, error)
}

// Func adapts a plain function to the Classifier interface.
type Func func(ctx context.Context, v Vector) (types.Score, error)

// Classify calls f.
func (f Func) Classify(ctx context.Context, v Vector) (types.Score, error) {
	return f(ctx, v)
}

// Grades is the ordered output alphabet, best first.
var Grades = []types.Score{"A", "B", "C", "D", "E"}

// ValidGrade reports whether s is one of Grades.
func ValidGrade(s types.Score) bool {
	for _, g := range Grades {
		if g == s {
			return true
		}
	}
	return false
}

// New returns the classifier selected by cfg.Backend. An empty backend
// selects the local NutriScore table.
func New(cfg types.ClassifierConfig) (Classifier, error) {
	switch cfg.Backend {
	case "", types.ClassifierNutriScore:
		return NutriScore{}, nil
	case types.ClassifierHTTP:
		if cfg.URL == "" {
			return nil, fmt.Errorf("classifier backend %q requires a url", cfg.Backend)
		}
		return NewRemote(cfg, nil), nil
	default:
		return nil, fmt.Errorf("unsupported classifier backend %q: use nutriscore or http", cfg.Backend)
	}
}
