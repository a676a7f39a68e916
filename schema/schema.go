// Package schema has configs, models and global variables for all parts of greenplate.
package schema

import (
	"math"
	"slices"
	"strings"
)

// Ingredient is one ingredient line of a recipe with its reference data provenance.
type Ingredient struct {
	Quantity       string `json:"quantity"`
	Name           string `json:"ingredient"`
	NevoCode       string `json:"nevo_code,omitempty"`       // nutritional reference code, empty when unknown
	AgribalyseCode string `json:"agribalyse_code,omitempty"` // environmental reference code, empty when unknown
}

// Label returns "quantity name" trimmed.
func (i Ingredient) Label() string {
	return strings.TrimSpace(strings.TrimSpace(i.Quantity) + " " + strings.TrimSpace(i.Name))
}

// Step is one numbered instruction step.
type Step struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
}

// Recipe is an immutable snapshot of one catalog recipe: identity, display fields and
// per-serving measurements keyed by metric.
type Recipe struct {
	ID              int                   `json:"recipe_id"`
	Title           string                `json:"title"`
	Rating          float64               `json:"rating"`
	NumberOfRatings int                   `json:"number_of_ratings"`
	Servings        string                `json:"servings,omitempty"`
	Difficulty      string                `json:"difficulty,omitempty"`
	PrepTime        string                `json:"prep_time,omitempty"`
	CookTime        string                `json:"cook_time,omitempty"`
	URL             string                `json:"url,omitempty"`
	ImageURL        string                `json:"image_url,omitempty"`
	Kcal            float64               `json:"kcal"`
	Ingredients     []Ingredient          `json:"ingredients,omitempty"`
	Steps           []Step                `json:"instructions,omitempty"`
	Measurements    map[MetricKey]float64 `json:"measurements"`
}

// Measurement returns the value of a metric and whether it is present and numeric.
func (r Recipe) Measurement(key MetricKey) (float64, bool) {
	v, ok := r.Measurements[key]
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// SortedSteps returns the steps ordered by step number.
func (r Recipe) SortedSteps() []Step {
	steps := slices.Clone(r.Steps)
	slices.SortStableFunc(steps, func(a, b Step) int { return a.Number - b.Number })
	return steps
}

// Provenance summarizes which ingredients lack reference data.
type Provenance struct {
	MissingNutrition   []string `json:"missing_nutrition"`
	MissingEnvironment []string `json:"missing_environment"`
}

// Provenance lists ingredients without NEVO (nutrition) or Agribalyse (environment) codes.
func (r Recipe) Provenance() Provenance {
	var p Provenance
	for _, ing := range r.Ingredients {
		if strings.TrimSpace(ing.NevoCode) == "" {
			p.MissingNutrition = append(p.MissingNutrition, ing.Label())
		}
		if strings.TrimSpace(ing.AgribalyseCode) == "" {
			p.MissingEnvironment = append(p.MissingEnvironment, ing.Label())
		}
	}
	return p
}
