package algo

import (
	"math"
	"testing"

	"github.com/huangsam/greenplate/schema"
	"github.com/stretchr/testify/assert"
)

func TestInterval(t *testing.T) {
	tests := []struct {
		name     string
		weight   float64
		value    float64
		lower    float64
		upper    float64
		expected float64
	}{
		{"inside", 1.0, 70, 60, 80, 1.0},
		{"at lower bound", 1.0, 60, 60, 80, 1.0},
		{"at upper bound", 1.0, 80, 60, 80, 1.0},
		{"one width below", 1.0, 40, 60, 80, 0.0},
		{"half width below", 1.0, 50, 60, 80, 0.5},
		{"quarter width above", 0.4, 85, 60, 80, 0.3},
		{"far above clamps", 1.0, 1000, 60, 80, 0.0},
		{"zero weight", 0.0, 70, 60, 80, 0.0},
		{"zero width scored as target", 1.0, 15, 10, 10, 0.5},
		{"zero width exact", 1.0, 10, 10, 10, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Interval(tt.weight, tt.value, tt.lower, tt.upper), 1e-9)
		})
	}
}

func TestUpperLimit(t *testing.T) {
	tests := []struct {
		name     string
		weight   float64
		value    float64
		limit    float64
		expected float64
	}{
		{"below limit", 0.5, 5, 10, 0.5},
		{"at limit", 0.5, 10, 10, 0.5},
		{"half over", 0.5, 15, 10, 0.25},
		{"double the limit", 0.5, 20, 10, 0.0},
		{"way over", 0.5, 1e9, 10, 0.0},
		// Target.Validate rejects zero limits; direct calls still score 0 above the limit.
		{"zero limit with value", 0.5, 1, 0, 0.0},
		{"zero limit zero value", 0.5, 0, 0, 0.5},
		{"zero weight", 0.0, 15, 10, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, UpperLimit(tt.weight, tt.value, tt.limit), 1e-9)
		})
	}
}

func TestRDI(t *testing.T) {
	tests := []struct {
		name     string
		weight   float64
		value    float64
		target   float64
		expected float64
	}{
		{"exact", 1.0, 30, 30, 1.0},
		{"half over", 1.0, 45, 30, 0.5},
		{"half under", 1.0, 15, 30, 0.5},
		{"none", 1.0, 0, 30, 0.0},
		{"triple", 1.0, 90, 30, 0.0},
		{"zero target", 1.0, 5, 0, 0.0},
		{"zero weight", 0.0, 30, 30, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, RDI(tt.weight, tt.value, tt.target), 1e-9)
		})
	}
}

func TestRDIWithUL(t *testing.T) {
	tests := []struct {
		name     string
		weight   float64
		value    float64
		rdi      float64
		ul       float64
		expected float64
	}{
		{"at rdi", 1.0, 100, 100, 300, 1.0},
		{"between", 1.0, 200, 100, 300, 1.0},
		{"at ul", 1.0, 300, 100, 300, 1.0},
		{"below rdi", 1.0, 75, 100, 300, 0.75},
		{"above ul", 1.0, 350, 100, 300, 0.75},
		{"far above ul", 1.0, 600, 100, 300, 0.0},
		{"ul equals rdi above", 1.0, 101, 100, 100, 0.0},
		{"zero weight", 0.0, 200, 100, 300, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, RDIWithUL(tt.weight, tt.value, tt.rdi, tt.ul), 1e-9)
		})
	}
}

func TestContribution(t *testing.T) {
	target := schema.Target{Lower: 60, Upper: 80}
	assert.InDelta(t, 1.0, Contribution(schema.IntervalShape, 1.0, 70, target), 1e-9)
	assert.InDelta(t, 0.25, Contribution(schema.UpperShape, 0.5, 120, target), 1e-9)
	assert.InDelta(t, 0.5, Contribution(schema.RDIShape, 1.0, 90, target), 1e-9)
	assert.InDelta(t, 0.5, Contribution(schema.RDIWithULShape, 1.0, 30, target), 1e-9)
	assert.Equal(t, 0.0, Contribution(schema.Shape("unknown"), 1.0, 70, target))
}

func TestPenalizeNaN(t *testing.T) {
	assert.Equal(t, 0.0, penalize(1.0, math.NaN()))
	assert.Equal(t, 0.0, Interval(1.0, math.NaN(), 60, 80))
}
