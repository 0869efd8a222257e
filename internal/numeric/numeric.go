// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package numeric holds the small rounding and NaN-guard helpers shared by
// the scaler and the aggregator. Every helper maps non-finite input to 0 so
// that no NaN reaches a total.
package numeric

import "math"

// Finite reports whether x is neither NaN nor an infinity.
func Finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// Round2 rounds x to 2 decimal places, half away from zero.
// Non-finite values round to 0.
func Round2(x float64) float64 {
	if !Finite(x) {
		return 0
	}
	return math.Round(x*100) / 100
}

// OrZero dereferences p, treating nil and non-finite values as 0.
func OrZero(p *float64) float64 {
	if p == nil || !Finite(*p) {
		return 0
	}
	return *p
}

// Per100 scales a per-100-units amount to quantity units.
func Per100(per100, quantity float64) float64 {
	if !Finite(per100) || !Finite(quantity) {
		return 0
	}
	v := per100 / 100 * quantity
	if !Finite(v) {
		return 0
	}
	return v
}

// Ptr returns a pointer to v.
func Ptr(v float64) *float64 {
	return &v
}
