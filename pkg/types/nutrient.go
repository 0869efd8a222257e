// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"math"

	"go.yaml.in/yaml/v3"
)

// NutrientSample is one nutrient's amount per 100 units of an ingredient.
type NutrientSample struct {
	Name           string  `json:"name" yaml:"name"`
	QuantityPer100 float64 `json:"quantity_100" yaml:"quantity_100"`
}

// NutrientList is the canonical ordered form of an ingredient's nutrients.
//
// Ingredient sources deliver nutrients either as a sequence of samples or
// as a mapping keyed by nutrient name. UnmarshalYAML accepts both and keeps
// document order, so nothing downstream needs to know which shape arrived.
// Non-finite amounts (.nan, .inf) decode as 0.
type NutrientList []NutrientSample

// Names returns the nutrient names in order.
func (l NutrientList) Names() []string {
	names := make([]string, len(l))
	for i, s := range l {
		names[i] = s.Name
	}
	return names
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *NutrientList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		var samples []NutrientSample
		if err := value.Decode(&samples); err != nil {
			return fmt.Errorf("decoding nutrient list: %w", err)
		}
		*l = zeroNonFinite(samples)
		return nil

	case yaml.MappingNode:
		out := make(NutrientList, 0, len(value.Content)/2)
		for i := 0; i+1 < len(value.Content); i += 2 {
			key, val := value.Content[i], value.Content[i+1]
			sample, err := decodeKeyedSample(key.Value, val)
			if err != nil {
				return err
			}
			out = append(out, sample)
		}
		*l = zeroNonFinite(out)
		return nil

	case yaml.ScalarNode:
		if value.Tag == "!!null" {
			*l = nil
			return nil
		}
	}
	return fmt.Errorf("line %d: nutriments must be a list or a mapping", value.Line)
}

// decodeKeyedSample reads one entry of the mapping form. The value is either
// a sample object (whose name wins over the key when present) or a bare number.
func decodeKeyedSample(key string, val *yaml.Node) (NutrientSample, error) {
	sample := NutrientSample{Name: key}
	switch val.Kind {
	case yaml.ScalarNode:
		if err := val.Decode(&sample.QuantityPer100); err != nil {
			return NutrientSample{}, fmt.Errorf("nutrient %q: %w", key, err)
		}
	case yaml.MappingNode:
		var s NutrientSample
		if err := val.Decode(&s); err != nil {
			return NutrientSample{}, fmt.Errorf("nutrient %q: %w", key, err)
		}
		if s.Name != "" {
			sample.Name = s.Name
		}
		sample.QuantityPer100 = s.QuantityPer100
	default:
		return NutrientSample{}, fmt.Errorf("nutrient %q: unsupported value at line %d", key, val.Line)
	}
	return sample, nil
}

func zeroNonFinite(l NutrientList) NutrientList {
	for i, s := range l {
		if math.IsNaN(s.QuantityPer100) || math.IsInf(s.QuantityPer100, 0) {
			l[i].QuantityPer100 = 0
		}
	}
	return l
}
