package algo

import (
	"math"
	"testing"

	"github.com/huangsam/greenplate/schema"
	"pgregory.net/rapid"
)

func drawBounds(t *rapid.T) (lower, upper float64) {
	lower = rapid.Float64Range(0, 1000).Draw(t, "lower")
	upper = lower + rapid.Float64Range(0, 1000).Draw(t, "width")
	return lower, upper
}

func TestPropertyContributionWithinWeight(t *testing.T) {
	shapes := []schema.Shape{schema.IntervalShape, schema.UpperShape, schema.RDIShape, schema.RDIWithULShape}
	rapid.Check(t, func(t *rapid.T) {
		shape := rapid.SampledFrom(shapes).Draw(t, "shape")
		weight := rapid.Float64Range(0, 1).Draw(t, "weight")
		value := rapid.Float64Range(0, 1e6).Draw(t, "value")
		lower, upper := drawBounds(t)

		c := Contribution(shape, weight, value, schema.Target{Lower: lower, Upper: upper})
		if c < 0 || c > weight {
			t.Fatalf("contribution %g outside [0, %g]", c, weight)
		}
	})
}

func TestPropertyZeroWeight(t *testing.T) {
	shapes := []schema.Shape{schema.IntervalShape, schema.UpperShape, schema.RDIShape, schema.RDIWithULShape}
	rapid.Check(t, func(t *rapid.T) {
		shape := rapid.SampledFrom(shapes).Draw(t, "shape")
		value := rapid.Float64Range(-1e6, 1e6).Draw(t, "value")
		lower, upper := drawBounds(t)
		if c := Contribution(shape, 0, value, schema.Target{Lower: lower, Upper: upper}); c != 0 {
			t.Fatalf("excluded metric contributed %g", c)
		}
	})
}

func TestPropertyIntervalFullInside(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		weight := rapid.Float64Range(0.001, 1).Draw(t, "weight")
		lower, upper := drawBounds(t)
		frac := rapid.Float64Range(0, 1).Draw(t, "frac")
		value := lower + frac*(upper-lower)
		if value > upper {
			value = upper
		}
		if c := Interval(weight, value, lower, upper); c != weight {
			t.Fatalf("value %g inside [%g, %g] scored %g, want %g", value, lower, upper, c, weight)
		}
	})
}

func TestPropertyUpperLimitMonotone(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		weight := rapid.Float64Range(0.001, 1).Draw(t, "weight")
		limit := rapid.Float64Range(0.001, 1000).Draw(t, "limit")
		a := limit + rapid.Float64Range(0, 1e6).Draw(t, "a")
		b := a + rapid.Float64Range(0, 1e6).Draw(t, "b")
		ca, cb := UpperLimit(weight, a, limit), UpperLimit(weight, b, limit)
		if cb > ca {
			t.Fatalf("contribution increased from %g to %g as value went %g -> %g", ca, cb, a, b)
		}
		if cb < 0 {
			t.Fatalf("negative contribution %g", cb)
		}
	})
}

func TestPropertyRDISymmetric(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		weight := rapid.Float64Range(0.001, 1).Draw(t, "weight")
		target := rapid.Float64Range(0.001, 1000).Draw(t, "target")
		dev := rapid.Float64Range(0, 1).Draw(t, "dev")
		if c := RDI(weight, target, target); c != weight {
			t.Fatalf("exact match scored %g, want %g", c, weight)
		}
		hi := RDI(weight, target*(1+dev), target)
		lo := RDI(weight, target*(1-dev), target)
		if math.Abs(hi-lo) > 1e-9 {
			t.Fatalf("asymmetric penalty: %g vs %g", hi, lo)
		}
	})
}

func TestPropertyNormalizeSum(t *testing.T) {
	levels := schema.AllImportances
	rapid.Check(t, func(t *rapid.T) {
		base := schema.BaseWeights(schema.MacrosCategory, schema.MicrosCategory)
		imp := make(map[schema.MetricKey]schema.Importance, len(base))
		for _, m := range schema.MetricsIn(schema.MacrosCategory, schema.MicrosCategory) {
			imp[m.Key] = rapid.SampledFrom(levels).Draw(t, string(m.Key))
		}
		total := rapid.Float64Range(0.1, 10).Draw(t, "total")

		first, err := Normalize(base, imp, total)
		if err != nil {
			for _, level := range imp {
				if level.Factor() > 0 {
					t.Fatalf("unexpected error with a non-excluded metric: %v", err)
				}
			}
			return
		}
		if s := sumWeights(first); math.Abs(s-total) > 1e-9 {
			t.Fatalf("weights sum to %g, want %g", s, total)
		}
		second, _ := Normalize(base, imp, total)
		for k, v := range first {
			if math.Abs(v-second[k]) > 1e-9 {
				t.Fatalf("normalize not idempotent for %s: %g vs %g", k, v, second[k])
			}
		}
	})
}

func TestPropertyFinalScoreBounded(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := DefaultPreferences()
		split := rapid.IntRange(0, 100).Draw(t, "split")
		p, err := p.WithSplit(split)
		if err != nil {
			t.Fatal(err)
		}
		m := make(map[schema.MetricKey]float64, len(schema.Metrics))
		for _, def := range schema.Metrics {
			m[def.Key] = rapid.Float64Range(0, 1e4).Draw(t, string(def.Key))
		}
		res, err := ScoreRecipe(schema.Recipe{ID: 1, Measurements: m}, p, schema.ExcludePolicy)
		if err != nil {
			t.Fatal(err)
		}
		const eps = 1e-9
		if res.Final < -eps || res.Final > 100+eps {
			t.Fatalf("final score %g outside [0, 100]", res.Final)
		}
	})
}
