package outwriter

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/huangsam/greenplate/core/algo"
	"github.com/huangsam/greenplate/schema"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Status colours of the metric bars.
const (
	SafeColor   = "#2ECC71"
	AlertColor  = "#FFA500"
	DangerColor = "#FF4136"
	MutedColor  = "#7F8C8D"
)

// Bar statuses.
const (
	StatusSafe    = "safe"
	StatusAlert   = "alert"
	StatusDanger  = "danger"
	StatusMissing = "missing"
)

// rdiBand is the relative tolerance around a recommended intake.
const rdiBand = 0.15

// barWidth is the number of cells of a rendered bar.
const barWidth = 20

// MetricBar is the per-meal status of one measurement of a recipe.
type MetricBar struct {
	Key      schema.MetricKey `json:"key"`
	Name     string           `json:"name"`
	Category schema.Category  `json:"category"`
	Unit     string           `json:"unit"`
	Value    float64          `json:"value"`
	Present  bool             `json:"present"`
	Target   schema.Target    `json:"meal_target"`
	Status   string           `json:"status"`
	Color    string           `json:"color"`
	Fill     float64          `json:"fill"` // 0..1 share of the bar scale
}

// MetricBars computes a bar for every metric in catalog order against per-meal targets.
func MetricBars(r schema.Recipe, p algo.Preferences) []MetricBar {
	bars := make([]MetricBar, 0, len(schema.Metrics))
	for _, m := range schema.Metrics {
		bar := MetricBar{
			Key:      m.Key,
			Name:     m.Name,
			Category: m.Category,
			Unit:     m.Unit,
			Target:   p.MealTarget(m.Key),
		}
		value, ok := r.Measurement(m.Key)
		if !ok {
			bar.Status = StatusMissing
			bar.Color = MutedColor
			bars = append(bars, bar)
			continue
		}
		bar.Value = value
		bar.Present = true
		bar.Status, bar.Color = barStatus(m, value, bar.Target)
		bar.Fill = barFill(m.Shape, value, bar.Target)
		bars = append(bars, bar)
	}
	return bars
}

// barStatus classifies a per-meal value against its target.
func barStatus(m schema.MetricDef, v float64, t schema.Target) (status, color string) {
	if m.Category == schema.EnvironmentCategory {
		return environmentStatus(v, t.Upper)
	}

	switch m.Shape {
	case schema.IntervalShape:
		switch {
		case v < t.Lower:
			return StatusAlert, AlertColor
		case v > t.Upper:
			return StatusDanger, DangerColor
		}
		return StatusSafe, SafeColor
	case schema.UpperShape:
		if v <= t.Upper {
			return StatusSafe, SafeColor
		}
		return StatusDanger, DangerColor
	case schema.RDIShape:
		if math.Abs(v-t.Lower) <= rdiBand*t.Lower {
			return StatusSafe, SafeColor
		}
		return StatusAlert, AlertColor
	case schema.RDIWithULShape:
		switch {
		case v > t.Upper:
			return StatusDanger, DangerColor
		case v < (1-rdiBand)*t.Lower:
			return StatusAlert, AlertColor
		case v > (1+rdiBand)*t.Lower:
			return StatusAlert, AlertColor
		}
		return StatusSafe, SafeColor
	}
	return StatusSafe, SafeColor
}

// environmentStatus is danger at or past the threshold and otherwise blends
// from safe to alert as the value approaches it.
func environmentStatus(v, threshold float64) (status, color string) {
	if threshold <= 0 {
		if v > 0 {
			return StatusDanger, DangerColor
		}
		return StatusSafe, SafeColor
	}
	if v >= threshold {
		return StatusDanger, DangerColor
	}
	t := math.Pow(math.Max(v, 0)/threshold, 1.5)
	status = StatusSafe
	if t >= 0.5 {
		status = StatusAlert
	}
	return status, BlendColors(SafeColor, AlertColor, t)
}

// BlendColors interpolates linearly in RGB between two hex colours; t is clamped to [0, 1].
func BlendColors(from, to string, t float64) string {
	c1, err := colorful.Hex(from)
	if err != nil {
		return from
	}
	c2, err := colorful.Hex(to)
	if err != nil {
		return from
	}
	t = math.Min(math.Max(t, 0), 1)
	return strings.ToUpper(c1.BlendRgb(c2, t).Clamped().Hex())
}

// barFill returns the share of the bar a value fills. The scale ends at the
// upper bound, or at twice the recommended intake for RDI metrics.
func barFill(shape schema.Shape, v float64, t schema.Target) float64 {
	scale := t.Upper
	if shape == schema.RDIShape {
		scale = 2 * t.Lower
	}
	if scale <= 0 {
		if v > 0 {
			return 1
		}
		return 0
	}
	return math.Min(math.Max(v/scale, 0), 1)
}

// renderBar draws a bar in its status colour. Colours are left out when disabled.
func renderBar(bar MetricBar, useColors bool) string {
	filled := int(math.Round(bar.Fill * barWidth))
	cells := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
	if !useColors {
		return cells
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(bar.Color)).Render(cells)
}
