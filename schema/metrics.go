package schema

import (
	"fmt"
	"math"
)

// Target is a daily target specification for a metric. How the bounds are read
// depends on the metric shape:
//   - interval:  Lower..Upper
//   - ul:        Upper is the ceiling
//   - rdi:       Lower is the recommended intake
//   - rdi_ul:    Lower is the recommended intake, Upper the tolerable upper limit
type Target struct {
	Lower float64 `json:"lower" mapstructure:"lower"`
	Upper float64 `json:"upper" mapstructure:"upper"`
}

// Scale divides both bounds by n (daily to per-meal).
func (t Target) Scale(n int) Target {
	if n <= 1 {
		return t
	}
	return Target{Lower: t.Lower / float64(n), Upper: t.Upper / float64(n)}
}

// Validate checks that the bounds make sense for the shape.
// UL limits and RDI intakes must be positive: both scale their penalty by that bound.
func (t Target) Validate(shape Shape) error {
	if !isFinite(t.Lower) || !isFinite(t.Upper) {
		return fmt.Errorf("bounds must be finite numbers (got %g..%g)", t.Lower, t.Upper)
	}
	switch shape {
	case IntervalShape, RDIWithULShape:
		if t.Lower < 0 || t.Upper < t.Lower {
			return fmt.Errorf("bounds must satisfy 0 <= lower <= upper (got %g..%g)", t.Lower, t.Upper)
		}
	case UpperShape:
		if t.Upper <= 0 {
			return fmt.Errorf("upper limit must be > 0 (got %g)", t.Upper)
		}
	case RDIShape:
		if t.Lower <= 0 {
			return fmt.Errorf("recommended intake must be > 0 (got %g)", t.Lower)
		}
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// MetricDef describes one scored metric.
type MetricDef struct {
	Key        MetricKey
	Name       string
	Category   Category
	Shape      Shape
	Unit       string
	Column     string  // catalog column holding the per-serving value
	BaseWeight float64 // static default weight before importance and normalization
	Default    Target  // default daily target
}

// DefaultMeals is the default number of meals per day.
const DefaultMeals = 3

// DefaultSplit is the default environment share of the final score.
const DefaultSplit = 50

// DefaultDailyCalories is the default caloric intake per day, used for display only.
const DefaultDailyCalories = 2000.0

const microWeight = 1.0 / 60.0

const envWeight = 1.0 / 11.0

// Metrics is the ordered metric catalog. Order is display order and summation order.
var Metrics = []MetricDef{
	// Macros
	{"protein", "Protein", MacrosCategory, IntervalShape, "g", "protein", 0.15, Target{50, 175}},
	{"carbohydrates", "Carbohydrates", MacrosCategory, IntervalShape, "g", "carbs", 0.15, Target{225, 325}},
	{"sugar", "Sugar", MacrosCategory, UpperShape, "g", "sugars", 0.10, Target{0, 50}},
	{"fat", "Fat", MacrosCategory, IntervalShape, "g", "fat", 0.15, Target{44, 78}},
	{"saturated_fat", "Saturated Fat", MacrosCategory, UpperShape, "g", "saturates", 0.05, Target{0, 20}},
	{"trans_fat", "Trans Fat", MacrosCategory, UpperShape, "g", "Trans Fat (g)", 0.05, Target{0, 2.2}},
	{"fiber", "Fiber", MacrosCategory, RDIShape, "g", "fibre", 0.05, Target{30, 0}},

	// Micros with a tolerable upper limit
	{"calcium", "Calcium", MicrosCategory, RDIWithULShape, "mg", "Calcium (mg)", microWeight, Target{1000, 2500}},
	{"iodine", "Iodine", MicrosCategory, RDIWithULShape, "µg", "Iodine (µg)", microWeight, Target{150, 1100}},
	{"iron", "Iron", MicrosCategory, RDIWithULShape, "mg", "Iron (mg)", microWeight, Target{18, 45}},
	{"selenium", "Selenium", MicrosCategory, RDIWithULShape, "µg", "Selenium (µg)", microWeight, Target{55, 400}},
	{"zinc", "Zinc", MicrosCategory, RDIWithULShape, "mg", "Zinc (mg)", microWeight, Target{11, 40}},
	{"vitamin_a", "Vitamin A", MicrosCategory, RDIWithULShape, "µg", "Vitamin A RE (µg)", microWeight, Target{900, 3000}},
	{"vitamin_d", "Vitamin D", MicrosCategory, RDIWithULShape, "µg", "Vitamin D (µg)", microWeight, Target{15, 100}},
	{"vitamin_e", "Vitamin E", MicrosCategory, RDIWithULShape, "mg", "Vitamin E (mg)", microWeight, Target{15, 1000}},

	// Micros scored against the recommended intake only
	{"magnesium", "Magnesium", MicrosCategory, RDIShape, "mg", "Magnesium (mg)", microWeight, Target{400, 0}},
	{"salt", "Salt", MicrosCategory, RDIShape, "g", "salt", microWeight, Target{6, 0}},
	{"vitamin_b1", "Vitamin B1", MicrosCategory, RDIShape, "mg", "Vitamin B1 (mg)", microWeight, Target{1.2, 0}},
	{"vitamin_b2", "Vitamin B2", MicrosCategory, RDIShape, "mg", "Vitamin B2 (mg)", microWeight, Target{1.3, 0}},
	{"vitamin_b3", "Vitamin B3", MicrosCategory, RDIShape, "mg", "Vitamin B3 (mg)", microWeight, Target{16, 0}},
	{"vitamin_b6", "Vitamin B6", MicrosCategory, RDIShape, "mg", "Vitamin B6 (mg)", microWeight, Target{1.3, 0}},
	{"vitamin_b9", "Vitamin B9", MicrosCategory, RDIShape, "µg", "Vitamin B9 (µg)", microWeight, Target{400, 0}},
	{"vitamin_b12", "Vitamin B12", MicrosCategory, RDIShape, "µg", "Vitamin B12 (µg)", microWeight, Target{2.4, 0}},
	{"vitamin_c", "Vitamin C", MicrosCategory, RDIShape, "mg", "Vitamin C (mg)", microWeight, Target{90, 0}},
	{"vitamin_k", "Vitamin K", MicrosCategory, RDIShape, "µg", "Vitamin K (µg)", microWeight, Target{120, 0}},

	// Environment
	{"climate_change", "Climate Change", EnvironmentCategory, UpperShape, "kg CO2-eq", "Total - Co2 eq", envWeight, Target{0, 2.0}},
	{"ozone_depletion", "Ozone Layer Depletion", EnvironmentCategory, UpperShape, "kg CFC11-eq", "Total - CFC11 eq", envWeight, Target{0, 1.5e-7}},
	{"particulate_matter", "Particulate Matter", EnvironmentCategory, UpperShape, "disease inc.", "Total - disease inc.", envWeight, Target{0, 1e-7}},
	{"toxicity_non_carcinogenic", "Toxicological Effects", EnvironmentCategory, UpperShape, "CTUh", "Total - NC CTUh", envWeight, Target{0, 1e-8}},
	{"toxicity_carcinogenic", "Toxicological Effects (carcinogenic)", EnvironmentCategory, UpperShape, "CTUh", "Total - C CTUh", envWeight, Target{0, 1e-9}},
	{"acidification", "Acidification", EnvironmentCategory, UpperShape, "mol H+-eq", "Total - mol H+ eq", envWeight, Target{0, 0.03}},
	{"freshwater_eutrophication", "Freshwater Eutrophication", EnvironmentCategory, UpperShape, "kg P-eq", "Total - P eq", envWeight, Target{0, 0.001}},
	{"marine_eutrophication", "Marine Eutrophication", EnvironmentCategory, UpperShape, "kg N-eq", "Total - N eq", envWeight, Target{0, 0.01}},
	{"land_use", "Land Use", EnvironmentCategory, UpperShape, "pt", "Total - pt dimensionless", envWeight, Target{0, 300}},
	{"water_use", "Water Use", EnvironmentCategory, UpperShape, "m³", "Total - m3", envWeight, Target{0, 2.0}},
	{"energy_use", "Energy Use", EnvironmentCategory, UpperShape, "MJ", "Total - MJ", envWeight, Target{0, 20}},
}

var metricIndex = func() map[MetricKey]int {
	idx := make(map[MetricKey]int, len(Metrics))
	for i, m := range Metrics {
		idx[m.Key] = i
	}
	return idx
}()

// LookupMetric returns the definition of a metric key.
func LookupMetric(key MetricKey) (MetricDef, bool) {
	i, ok := metricIndex[key]
	if !ok {
		return MetricDef{}, false
	}
	return Metrics[i], true
}

// MetricsIn returns the metric definitions of the given categories, in catalog order.
func MetricsIn(categories ...Category) []MetricDef {
	want := make(map[Category]bool, len(categories))
	for _, c := range categories {
		want[c] = true
	}
	var out []MetricDef
	for _, m := range Metrics {
		if want[m.Category] {
			out = append(out, m)
		}
	}
	return out
}

// DefaultTargets returns a fresh map of the default daily targets.
func DefaultTargets() map[MetricKey]Target {
	out := make(map[MetricKey]Target, len(Metrics))
	for _, m := range Metrics {
		out[m.Key] = m.Default
	}
	return out
}

// BaseWeights returns the base weights of the given categories.
func BaseWeights(categories ...Category) map[MetricKey]float64 {
	defs := MetricsIn(categories...)
	out := make(map[MetricKey]float64, len(defs))
	for _, m := range defs {
		out[m.Key] = m.BaseWeight
	}
	return out
}

// IsHealth reports whether the category feeds the health score.
func (c Category) IsHealth() bool {
	return c == MacrosCategory || c == MicrosCategory
}
