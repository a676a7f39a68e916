package algo

import (
	"math"

	"github.com/huangsam/greenplate/schema"
)

// penalize returns weight reduced by weight*deviation, floored at 0.
func penalize(weight, deviation float64) float64 {
	if math.IsNaN(deviation) {
		return 0
	}
	return weight - math.Min(weight, weight*deviation)
}

// Interval gives full weight for lower <= value <= upper and otherwise reduces the weight
// by the distance outside the interval relative to its width.
// A zero-width interval is scored like an RDI target at lower.
func Interval(weight, value, lower, upper float64) float64 {
	if weight <= 0 {
		return 0
	}
	if value >= lower && value <= upper {
		return weight
	}
	width := upper - lower
	if width <= 0 {
		return RDI(weight, value, lower)
	}
	distance := lower - value
	if value > upper {
		distance = value - upper
	}
	return penalize(weight, distance/width)
}

// UpperLimit gives full weight up to the limit and penalizes (value-limit)/limit above it.
func UpperLimit(weight, value, limit float64) float64 {
	if weight <= 0 {
		return 0
	}
	if value <= limit {
		return weight
	}
	if limit <= 0 {
		return 0
	}
	return penalize(weight, (value-limit)/limit)
}

// RDI gives full weight at the target and penalizes the relative absolute deviation symmetrically.
func RDI(weight, value, target float64) float64 {
	if weight <= 0 {
		return 0
	}
	if value == target {
		return weight
	}
	if target <= 0 {
		return 0
	}
	return penalize(weight, math.Abs(value-target)/target)
}

// RDIWithUL gives full weight between the recommended intake and the upper limit.
// Below the intake the penalty is (rdi-value)/rdi, above the limit it is (value-ul)/(ul-rdi).
func RDIWithUL(weight, value, rdi, ul float64) float64 {
	if weight <= 0 {
		return 0
	}
	if value >= rdi && value <= ul {
		return weight
	}
	if value < rdi {
		if rdi <= 0 {
			return 0
		}
		return penalize(weight, (rdi-value)/rdi)
	}
	// value > ul
	if ul <= rdi {
		return 0
	}
	return penalize(weight, (value-ul)/(ul-rdi))
}

// Contribution dispatches to the scoring function of the shape using per-meal bounds.
func Contribution(shape schema.Shape, weight, value float64, target schema.Target) float64 {
	switch shape {
	case schema.IntervalShape:
		return Interval(weight, value, target.Lower, target.Upper)
	case schema.UpperShape:
		return UpperLimit(weight, value, target.Upper)
	case schema.RDIShape:
		return RDI(weight, value, target.Lower)
	case schema.RDIWithULShape:
		return RDIWithUL(weight, value, target.Lower, target.Upper)
	default:
		return 0
	}
}
