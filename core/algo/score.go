package algo

import (
	"errors"
	"fmt"

	"github.com/huangsam/greenplate/schema"
	"gonum.org/v1/gonum/floats"
)

// ErrMissingMeasurement is returned when a recipe lacks a weighted measurement under the exclude policy.
var ErrMissingMeasurement = errors.New("missing measurement")

// ScoreRecipe scores one recipe against a preferences snapshot.
// Measurements are per serving and compared against per-meal targets.
// Under the partial policy a missing metric contributes 0 and marks the result partial;
// under the exclude policy the recipe fails with ErrMissingMeasurement.
func ScoreRecipe(r schema.Recipe, p Preferences, policy schema.MissingPolicy) (schema.ScoreResult, error) {
	contributions := make(map[schema.MetricKey]float64, len(schema.Metrics))
	var health, environment []float64
	var missing []schema.MetricKey

	for _, m := range schema.Metrics {
		weight := p.Weight(m.Key)
		value, ok := r.Measurement(m.Key)
		if !ok {
			if weight <= 0 {
				contributions[m.Key] = 0
				continue
			}
			if policy == schema.ExcludePolicy {
				return schema.ScoreResult{}, fmt.Errorf("recipe %d: %s: %w", r.ID, m.Key, ErrMissingMeasurement)
			}
			missing = append(missing, m.Key)
			contributions[m.Key] = 0
			continue
		}

		c := Contribution(m.Shape, weight, value, p.MealTarget(m.Key))
		contributions[m.Key] = c
		if m.Category.IsHealth() {
			health = append(health, c)
		} else {
			environment = append(environment, c)
		}
	}

	healthScore := floats.Sum(health) * 100
	envScore := floats.Sum(environment) * 100

	return schema.ScoreResult{
		RecipeID:      r.ID,
		Title:         r.Title,
		Rating:        r.Rating,
		Contributions: contributions,
		Health:        healthScore,
		Environment:   envScore,
		Final:         FinalScore(healthScore, envScore, p.Split()),
		Partial:       len(missing) > 0,
		Missing:       missing,
	}, nil
}

// FinalScore blends the health and environment scores where split is the environment share (0-100).
func FinalScore(health, environment float64, split int) float64 {
	envShare := float64(split) / 100
	return (1-envShare)*health + envShare*environment
}
