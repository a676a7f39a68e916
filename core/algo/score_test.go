package algo

import (
	"math"
	"testing"

	"github.com/huangsam/greenplate/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// idealRecipe returns a recipe whose every measurement sits in the full-weight zone.
func idealRecipe(p Preferences) schema.Recipe {
	m := make(map[schema.MetricKey]float64, len(schema.Metrics))
	for _, def := range schema.Metrics {
		target := p.MealTarget(def.Key)
		switch def.Shape {
		case schema.UpperShape:
			m[def.Key] = target.Upper / 2
		default:
			m[def.Key] = target.Lower
		}
	}
	return schema.Recipe{ID: 1, Title: "Ideal", Measurements: m}
}

func TestScoreRecipeIdeal(t *testing.T) {
	p := DefaultPreferences()
	res, err := ScoreRecipe(idealRecipe(p), p, schema.PartialPolicy)
	require.NoError(t, err)

	assert.InDelta(t, 100.0, res.Health, 1e-6)
	assert.InDelta(t, 100.0, res.Environment, 1e-6)
	assert.InDelta(t, 100.0, res.Final, 1e-6)
	assert.False(t, res.Partial)
	assert.Empty(t, res.Missing)
	assert.Len(t, res.Contributions, len(schema.Metrics))
	assert.Equal(t, "Ideal", res.Title)
}

func TestScoreRecipeSplit(t *testing.T) {
	p := DefaultPreferences()
	r := idealRecipe(p)
	// Blow every environment threshold so the environment score is 0.
	for _, def := range schema.MetricsIn(schema.EnvironmentCategory) {
		r.Measurements[def.Key] = p.MealTarget(def.Key).Upper * 10
	}

	for _, split := range []int{0, 25, 50, 100} {
		q, err := p.WithSplit(split)
		require.NoError(t, err)
		res, err := ScoreRecipe(r, q, schema.PartialPolicy)
		require.NoError(t, err)
		assert.InDelta(t, 0.0, res.Environment, 1e-9)
		assert.InDelta(t, float64(100-split), res.Final, 1e-6, "split %d", split)
	}
}

func TestScoreRecipeMissingPartial(t *testing.T) {
	p := DefaultPreferences()
	r := idealRecipe(p)
	delete(r.Measurements, "protein")
	r.Measurements["climate_change"] = math.NaN()

	res, err := ScoreRecipe(r, p, schema.PartialPolicy)
	require.NoError(t, err)
	assert.True(t, res.Partial)
	assert.Equal(t, []schema.MetricKey{"protein", "climate_change"}, res.Missing)
	assert.Equal(t, 0.0, res.Contributions["protein"])
	assert.InDelta(t, 85.0, res.Health, 1e-6)
	assert.InDelta(t, 100.0-100.0/11, res.Environment, 1e-6)
}

func TestScoreRecipeMissingExcludedMetricIsNotPartial(t *testing.T) {
	p, err := DefaultPreferences().WithImportance("protein", schema.ExcludeImportance)
	require.NoError(t, err)
	r := idealRecipe(p)
	delete(r.Measurements, "protein")

	res, err := ScoreRecipe(r, p, schema.ExcludePolicy)
	require.NoError(t, err)
	assert.False(t, res.Partial)
	assert.InDelta(t, 100.0, res.Health, 1e-6)
}

func TestScoreRecipeMissingExclude(t *testing.T) {
	p := DefaultPreferences()
	r := idealRecipe(p)
	delete(r.Measurements, "salt")

	_, err := ScoreRecipe(r, p, schema.ExcludePolicy)
	assert.ErrorIs(t, err, ErrMissingMeasurement)
	assert.Contains(t, err.Error(), "salt")
}

func TestFinalScore(t *testing.T) {
	assert.InDelta(t, 70.0, FinalScore(80, 60, 50), 1e-9)
	assert.InDelta(t, 80.0, FinalScore(80, 60, 0), 1e-9)
	assert.InDelta(t, 60.0, FinalScore(80, 60, 100), 1e-9)
}

// BenchmarkScoreRecipe measures scoring of one fully measured recipe.
func BenchmarkScoreRecipe(b *testing.B) {
	p := DefaultPreferences()
	r := idealRecipe(p)
	for b.Loop() {
		_, _ = ScoreRecipe(r, p, schema.PartialPolicy)
	}
}
