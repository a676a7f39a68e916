package algo

import (
	"fmt"
	"maps"

	"github.com/huangsam/greenplate/schema"
)

// Normalization groups and their target sums.
const (
	nutritionTotal   = 1.0
	environmentTotal = 1.0
)

// PreferenceInput is the raw material for a Preferences snapshot.
// Zero Meals and nil maps fall back to defaults.
type PreferenceInput struct {
	Meals      int
	Split      int
	Importance map[schema.MetricKey]schema.Importance
	Targets    map[schema.MetricKey]schema.Target
}

// Preferences is an immutable snapshot of one user's preferences and the effective
// weights derived from them. Every With* method returns a new snapshot.
type Preferences struct {
	meals      int
	split      int
	importance map[schema.MetricKey]schema.Importance
	targets    map[schema.MetricKey]schema.Target
	weights    map[schema.MetricKey]float64
}

// DefaultPreferences returns the snapshot built from default targets and importances.
func DefaultPreferences() Preferences {
	p, err := NewPreferences(PreferenceInput{Meals: schema.DefaultMeals, Split: schema.DefaultSplit})
	if err != nil {
		panic(fmt.Sprintf("default preferences are invalid: %v", err)) // static data
	}
	return p
}

// NewPreferences validates the input and computes effective weights.
func NewPreferences(in PreferenceInput) (Preferences, error) {
	meals := in.Meals
	if meals == 0 {
		meals = schema.DefaultMeals
	}
	if meals < 1 {
		return Preferences{}, fmt.Errorf("meals must be at least 1 (received %d)", in.Meals)
	}
	if in.Split < 0 || in.Split > 100 {
		return Preferences{}, fmt.Errorf("split must be between 0 and 100 (received %d)", in.Split)
	}

	importance := make(map[schema.MetricKey]schema.Importance, len(schema.Metrics))
	targets := schema.DefaultTargets()
	for _, m := range schema.Metrics {
		importance[m.Key] = schema.DefaultImportance
	}
	for k, level := range in.Importance {
		if _, ok := schema.LookupMetric(k); !ok {
			return Preferences{}, fmt.Errorf("unknown metric '%s'", k)
		}
		importance[k] = level
	}
	for k, t := range in.Targets {
		def, ok := schema.LookupMetric(k)
		if !ok {
			return Preferences{}, fmt.Errorf("unknown metric '%s'", k)
		}
		if err := t.Validate(def.Shape); err != nil {
			return Preferences{}, fmt.Errorf("invalid target for %s: %w", k, err)
		}
		targets[k] = t
	}

	weights, err := effectiveWeights(importance)
	if err != nil {
		return Preferences{}, err
	}

	return Preferences{
		meals:      meals,
		split:      in.Split,
		importance: importance,
		targets:    targets,
		weights:    weights,
	}, nil
}

// effectiveWeights normalizes nutrition (macros and micros together) and environment separately.
func effectiveWeights(importance map[schema.MetricKey]schema.Importance) (map[schema.MetricKey]float64, error) {
	nutrition, err := Normalize(schema.BaseWeights(schema.MacrosCategory, schema.MicrosCategory), importance, nutritionTotal)
	if err != nil {
		return nil, fmt.Errorf("nutrition weights: %w", err)
	}
	environment, err := Normalize(schema.BaseWeights(schema.EnvironmentCategory), importance, environmentTotal)
	if err != nil {
		return nil, fmt.Errorf("environment weights: %w", err)
	}
	maps.Copy(nutrition, environment)
	return nutrition, nil
}

// input returns the snapshot as a PreferenceInput for rebuilding.
func (p Preferences) input() PreferenceInput {
	return PreferenceInput{
		Meals:      p.meals,
		Split:      p.split,
		Importance: maps.Clone(p.importance),
		Targets:    maps.Clone(p.targets),
	}
}

// WithImportance returns a snapshot with one importance level changed.
func (p Preferences) WithImportance(key schema.MetricKey, level schema.Importance) (Preferences, error) {
	return p.WithImportances(map[schema.MetricKey]schema.Importance{key: level})
}

// WithImportances returns a snapshot with several importance levels changed at once.
func (p Preferences) WithImportances(levels map[schema.MetricKey]schema.Importance) (Preferences, error) {
	in := p.input()
	if in.Importance == nil {
		in.Importance = make(map[schema.MetricKey]schema.Importance, len(levels))
	}
	maps.Copy(in.Importance, levels)
	return NewPreferences(in)
}

// WithSplit returns a snapshot with a new health/environment split.
func (p Preferences) WithSplit(split int) (Preferences, error) {
	in := p.input()
	in.Split = split
	return NewPreferences(in)
}

// WithMeals returns a snapshot with a new number of meals per day.
func (p Preferences) WithMeals(meals int) (Preferences, error) {
	if meals < 1 {
		return Preferences{}, fmt.Errorf("meals must be at least 1 (received %d)", meals)
	}
	in := p.input()
	in.Meals = meals
	return NewPreferences(in)
}

// WithTarget returns a snapshot with one daily target replaced.
func (p Preferences) WithTarget(key schema.MetricKey, target schema.Target) (Preferences, error) {
	in := p.input()
	if in.Targets == nil {
		in.Targets = make(map[schema.MetricKey]schema.Target, 1)
	}
	in.Targets[key] = target
	return NewPreferences(in)
}

// Meals returns the number of meals per day.
func (p Preferences) Meals() int { return p.meals }

// Split returns the environment share (0-100) of the final score.
func (p Preferences) Split() int { return p.split }

// HealthWeight returns the health share (0-100) of the final score.
func (p Preferences) HealthWeight() int { return 100 - p.split }

// Importance returns the importance level of a metric.
func (p Preferences) Importance(key schema.MetricKey) schema.Importance {
	if level, ok := p.importance[key]; ok {
		return level
	}
	return schema.DefaultImportance
}

// Weight returns the effective weight of a metric.
func (p Preferences) Weight(key schema.MetricKey) float64 {
	return p.weights[key]
}

// Weights returns a copy of all effective weights.
func (p Preferences) Weights() map[schema.MetricKey]float64 {
	return maps.Clone(p.weights)
}

// Target returns the daily target of a metric.
func (p Preferences) Target(key schema.MetricKey) schema.Target {
	return p.targets[key]
}

// MealTarget returns the daily target divided by the number of meals.
func (p Preferences) MealTarget(key schema.MetricKey) schema.Target {
	return p.targets[key].Scale(p.meals)
}

// WeightRows returns the effective weights report in catalog order.
func (p Preferences) WeightRows() []schema.WeightRow {
	rows := make([]schema.WeightRow, 0, len(schema.Metrics))
	for _, m := range schema.Metrics {
		rows = append(rows, schema.WeightRow{
			Key:        m.Key,
			Name:       m.Name,
			Category:   m.Category,
			Shape:      m.Shape,
			Unit:       m.Unit,
			Importance: p.Importance(m.Key),
			Base:       m.BaseWeight,
			Effective:  p.Weight(m.Key),
			MealTarget: p.MealTarget(m.Key),
		})
	}
	return rows
}
