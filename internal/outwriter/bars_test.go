package outwriter

import (
	"testing"

	"github.com/huangsam/greenplate/core/algo"
	"github.com/huangsam/greenplate/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func metric(t *testing.T, key schema.MetricKey) schema.MetricDef {
	t.Helper()
	def, ok := schema.LookupMetric(key)
	require.True(t, ok)
	return def
}

func TestBarStatus(t *testing.T) {
	prefs := algo.DefaultPreferences()
	tests := []struct {
		name   string
		key    schema.MetricKey
		value  float64
		status string
	}{
		{"interval below", "protein", 10, StatusAlert},
		{"interval inside", "protein", 30, StatusSafe},
		{"interval above", "protein", 70, StatusDanger},
		{"ul under limit", "sugar", 10, StatusSafe},
		{"ul over limit", "sugar", 20, StatusDanger},
		{"rdi inside band", "fiber", 10.5, StatusSafe},
		{"rdi outside band", "fiber", 5, StatusAlert},
		{"rdi above band", "fiber", 15, StatusAlert},
		{"rdi_ul below band", "calcium", 200, StatusAlert},
		{"rdi_ul inside band", "calcium", 350, StatusSafe},
		{"rdi_ul between band and limit", "calcium", 500, StatusAlert},
		{"rdi_ul over limit", "calcium", 900, StatusDanger},
		{"environment over threshold", "climate_change", 0.7, StatusDanger},
		{"environment low", "climate_change", 0.05, StatusSafe},
		{"environment near threshold", "climate_change", 0.6, StatusAlert},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := barStatus(metric(t, tt.key), tt.value, prefs.MealTarget(tt.key))
			assert.Equal(t, tt.status, status)
		})
	}
}

func TestEnvironmentColorBlend(t *testing.T) {
	_, color := environmentStatus(0, 1)
	assert.Equal(t, SafeColor, color)

	_, color = environmentStatus(1, 1)
	assert.Equal(t, DangerColor, color)

	_, mid := environmentStatus(0.5, 1)
	assert.NotEqual(t, SafeColor, mid)
	assert.NotEqual(t, AlertColor, mid)

	status, color := environmentStatus(1, 0)
	assert.Equal(t, StatusDanger, status)
	assert.Equal(t, DangerColor, color)
}

func TestBlendColors(t *testing.T) {
	assert.Equal(t, SafeColor, BlendColors(SafeColor, AlertColor, 0))
	assert.Equal(t, AlertColor, BlendColors(SafeColor, AlertColor, 1))
	assert.Equal(t, AlertColor, BlendColors(SafeColor, AlertColor, 3))
	assert.Equal(t, "#808080", BlendColors("#000000", "#FFFFFF", 0.5))
	assert.Equal(t, "nope", BlendColors("nope", AlertColor, 0.5))
}

func TestBarFill(t *testing.T) {
	assert.InDelta(t, 0.5, barFill(schema.UpperShape, 5, schema.Target{Upper: 10}), 1e-9)
	assert.InDelta(t, 1.0, barFill(schema.UpperShape, 50, schema.Target{Upper: 10}), 1e-9)
	assert.InDelta(t, 0.25, barFill(schema.RDIShape, 5, schema.Target{Lower: 10}), 1e-9)
	assert.InDelta(t, 0.0, barFill(schema.UpperShape, 0, schema.Target{}), 1e-9)
	assert.InDelta(t, 1.0, barFill(schema.UpperShape, 1, schema.Target{}), 1e-9)
}

func TestMetricBars(t *testing.T) {
	bars := MetricBars(sampleRecipe(), algo.DefaultPreferences())
	require.Len(t, bars, len(schema.Metrics))

	assert.Equal(t, schema.MetricKey("protein"), bars[0].Key)
	assert.True(t, bars[0].Present)
	assert.Equal(t, StatusSafe, bars[0].Status)

	for _, b := range bars {
		if b.Key == "iodine" {
			assert.False(t, b.Present)
			assert.Equal(t, StatusMissing, b.Status)
		}
	}
}

func TestRenderBar(t *testing.T) {
	bar := MetricBar{Fill: 0.5, Color: SafeColor}
	assert.Equal(t, "██████████░░░░░░░░░░", renderBar(bar, false))
}
