package schema_test

import (
	"testing"

	"github.com/huangsam/greenplate/schema"
	"github.com/stretchr/testify/assert"
)

func TestGetPlainLabel(t *testing.T) {
	tests := []struct {
		name     string
		score    float64
		expected string
	}{
		{"Excellent Score Upper", 100.0, "Excellent"},
		{"Excellent Score Lower", 80.0, "Excellent"},
		{"Good Score Upper", 79.9, "Good"},
		{"Good Score Lower", 60.0, "Good"},
		{"Fair Score Upper", 59.9, "Fair"},
		{"Fair Score Lower", 40.0, "Fair"},
		{"Poor Score Upper", 39.9, "Poor"},
		{"Poor Score Lower", 0.0, "Poor"},
		{"Negative Score", -10.0, "Poor"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, schema.GetPlainLabel(tt.score))
		})
	}
}

func TestEnrichResults(t *testing.T) {
	results := []schema.ScoreResult{
		{RecipeID: 12, Final: 85.0},
		{RecipeID: 7, Final: 65.0},
		{RecipeID: 3, Final: 20.0},
	}

	enriched := schema.EnrichResults(results)

	assert.Len(t, enriched, 3)
	assert.Equal(t, 1, enriched[0].Rank)
	assert.Equal(t, "Excellent", enriched[0].Label)
	assert.Equal(t, 12, enriched[0].RecipeID)
	assert.Equal(t, 2, enriched[1].Rank)
	assert.Equal(t, "Good", enriched[1].Label)
	assert.Equal(t, 3, enriched[2].Rank)
	assert.Equal(t, "Poor", enriched[2].Label)
}

func TestEnrichResultsEmpty(t *testing.T) {
	assert.Empty(t, schema.EnrichResults(nil))
}
