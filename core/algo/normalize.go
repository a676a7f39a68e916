package algo

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"

	"github.com/huangsam/greenplate/schema"
	"gonum.org/v1/gonum/floats"
)

// ErrAllExcluded is returned when every metric of a normalization group has a zero factor.
var ErrAllExcluded = errors.New("all metrics in the group are excluded")

// Normalize computes effective weights: base[m] * factor(importance[m]), rescaled so the
// group sums to total. Metrics without an importance entry use the default level.
// The result depends only on its inputs, so repeated calls are identical.
func Normalize(base map[schema.MetricKey]float64, importance map[schema.MetricKey]schema.Importance, total float64) (map[schema.MetricKey]float64, error) {
	if total <= 0 || math.IsNaN(total) || math.IsInf(total, 0) {
		return nil, fmt.Errorf("normalized sum must be a positive number (got %g)", total)
	}

	// Fixed key order keeps floating-point summation reproducible.
	keys := slices.Sorted(maps.Keys(base))
	raw := make([]float64, len(keys))
	for i, k := range keys {
		b := base[k]
		if b < 0 || math.IsNaN(b) || math.IsInf(b, 0) {
			return nil, fmt.Errorf("base weight for %s must be a finite non-negative number (got %g)", k, b)
		}
		level, ok := importance[k]
		if !ok {
			level = schema.DefaultImportance
		}
		raw[i] = b * level.Factor()
	}

	sum := floats.Sum(raw)
	if sum <= 0 {
		return nil, ErrAllExcluded
	}
	floats.Scale(total/sum, raw)

	out := make(map[schema.MetricKey]float64, len(keys))
	for i, k := range keys {
		out[k] = raw[i]
	}
	return out, nil
}
