package algo

import (
	"math"
	"testing"

	"github.com/huangsam/greenplate/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPreferences(t *testing.T) {
	p := DefaultPreferences()
	assert.Equal(t, schema.DefaultMeals, p.Meals())
	assert.Equal(t, schema.DefaultSplit, p.Split())
	assert.Equal(t, 50, p.HealthWeight())

	// Base weights already sum to 1 per group, so defaults are unchanged.
	for _, m := range schema.Metrics {
		assert.InDelta(t, m.BaseWeight, p.Weight(m.Key), 1e-9, m.Key)
		assert.Equal(t, schema.DefaultImportance, p.Importance(m.Key))
	}

	protein := p.MealTarget("protein")
	assert.InDelta(t, 50.0/3, protein.Lower, 1e-9)
	assert.InDelta(t, 175.0/3, protein.Upper, 1e-9)
	assert.Equal(t, schema.Target{Lower: 50, Upper: 175}, p.Target("protein"))
}

func TestNewPreferencesValidation(t *testing.T) {
	tests := []struct {
		name string
		in   PreferenceInput
	}{
		{"negative meals", PreferenceInput{Meals: -1}},
		{"split too high", PreferenceInput{Split: 101}},
		{"split negative", PreferenceInput{Split: -5}},
		{"unknown importance key", PreferenceInput{Importance: map[schema.MetricKey]schema.Importance{"unicorn": schema.VeryImportance}}},
		{"unknown target key", PreferenceInput{Targets: map[schema.MetricKey]schema.Target{"unicorn": {Lower: 1, Upper: 2}}}},
		{"inverted interval", PreferenceInput{Targets: map[schema.MetricKey]schema.Target{"protein": {Lower: 90, Upper: 10}}}},
		{"nan interval bound", PreferenceInput{Targets: map[schema.MetricKey]schema.Target{"protein": {Lower: math.NaN(), Upper: 80}}}},
		{"nan upper limit", PreferenceInput{Targets: map[schema.MetricKey]schema.Target{"sugar": {Upper: math.NaN()}}}},
		{"infinite upper limit", PreferenceInput{Targets: map[schema.MetricKey]schema.Target{"sugar": {Upper: math.Inf(1)}}}},
		{"zero upper limit", PreferenceInput{Targets: map[schema.MetricKey]schema.Target{"sugar": {Upper: 0}}}},
		{"zero intake", PreferenceInput{Targets: map[schema.MetricKey]schema.Target{"fiber": {Lower: 0}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPreferences(tt.in)
			assert.Error(t, err)
		})
	}
}

func TestNewPreferencesZeroMealsDefaults(t *testing.T) {
	p, err := NewPreferences(PreferenceInput{})
	require.NoError(t, err)
	assert.Equal(t, schema.DefaultMeals, p.Meals())
	assert.Equal(t, 0, p.Split())
}

func TestPreferencesAllEnvironmentExcluded(t *testing.T) {
	levels := make(map[schema.MetricKey]schema.Importance)
	for _, m := range schema.MetricsIn(schema.EnvironmentCategory) {
		levels[m.Key] = schema.ExcludeImportance
	}
	_, err := NewPreferences(PreferenceInput{Importance: levels})
	assert.ErrorIs(t, err, ErrAllExcluded)
}

func TestWithImportanceDoesNotMutate(t *testing.T) {
	p := DefaultPreferences()
	before := p.Weights()

	q, err := p.WithImportance("protein", schema.VeryImportance)
	require.NoError(t, err)

	assert.Equal(t, before, p.Weights())
	assert.Equal(t, schema.DefaultImportance, p.Importance("protein"))
	assert.Equal(t, schema.VeryImportance, q.Importance("protein"))
	assert.Greater(t, q.Weight("protein"), p.Weight("protein"))
	assert.InDelta(t, 1.0, sumWeights(groupWeights(q, schema.MacrosCategory, schema.MicrosCategory)), 1e-9)
	assert.InDelta(t, 1.0, sumWeights(groupWeights(q, schema.EnvironmentCategory)), 1e-9)
}

func TestWithImportanceRecomputesFromBase(t *testing.T) {
	p := DefaultPreferences()
	q, err := p.WithImportance("sugar", schema.VeryImportance)
	require.NoError(t, err)
	r, err := q.WithImportance("sugar", schema.VeryImportance)
	require.NoError(t, err)
	for k, v := range q.Weights() {
		assert.InDelta(t, v, r.Weight(k), 1e-9, k)
	}

	back, err := r.WithImportance("sugar", schema.DefaultImportance)
	require.NoError(t, err)
	for k, v := range p.Weights() {
		assert.InDelta(t, v, back.Weight(k), 1e-9, k)
	}
}

func TestWithImportancesFailureKeepsReceiver(t *testing.T) {
	p := DefaultPreferences()
	levels := make(map[schema.MetricKey]schema.Importance)
	for _, m := range schema.MetricsIn(schema.MacrosCategory, schema.MicrosCategory) {
		levels[m.Key] = schema.ExcludeImportance
	}
	_, err := p.WithImportances(levels)
	require.ErrorIs(t, err, ErrAllExcluded)
	assert.InDelta(t, 0.15, p.Weight("protein"), 1e-9)
}

func TestWithSplitAndMeals(t *testing.T) {
	p := DefaultPreferences()

	q, err := p.WithSplit(30)
	require.NoError(t, err)
	assert.Equal(t, 30, q.Split())
	assert.Equal(t, 70, q.HealthWeight())
	assert.Equal(t, 50, p.Split())

	_, err = p.WithSplit(120)
	assert.Error(t, err)

	r, err := q.WithMeals(1)
	require.NoError(t, err)
	assert.Equal(t, schema.Target{Lower: 50, Upper: 175}, r.MealTarget("protein"))
	assert.Equal(t, 30, r.Split())

	_, err = q.WithMeals(0)
	assert.Error(t, err)
}

func TestWithTarget(t *testing.T) {
	p := DefaultPreferences()
	q, err := p.WithTarget("sugar", schema.Target{Upper: 30})
	require.NoError(t, err)
	assert.InDelta(t, 10.0, q.MealTarget("sugar").Upper, 1e-9)
	assert.InDelta(t, 50.0, p.Target("sugar").Upper, 1e-9)

	_, err = p.WithTarget("sugar", schema.Target{Upper: -1})
	assert.Error(t, err)
}

func TestWeightsReturnsCopy(t *testing.T) {
	p := DefaultPreferences()
	w := p.Weights()
	w["protein"] = 42
	assert.InDelta(t, 0.15, p.Weight("protein"), 1e-9)
}

func TestWeightRows(t *testing.T) {
	p := DefaultPreferences()
	rows := p.WeightRows()
	require.Len(t, rows, len(schema.Metrics))
	assert.Equal(t, schema.MetricKey("protein"), rows[0].Key)
	assert.Equal(t, schema.MacrosCategory, rows[0].Category)
	assert.InDelta(t, 0.15, rows[0].Effective, 1e-9)
	assert.InDelta(t, 50.0/3, rows[0].MealTarget.Lower, 1e-9)
}

func groupWeights(p Preferences, categories ...schema.Category) map[schema.MetricKey]float64 {
	out := make(map[schema.MetricKey]float64)
	for _, m := range schema.MetricsIn(categories...) {
		out[m.Key] = p.Weight(m.Key)
	}
	return out
}
