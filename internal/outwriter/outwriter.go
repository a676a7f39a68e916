// Package outwriter has output and writer logic.
package outwriter

import (
	"time"

	"github.com/huangsam/greenplate/internal/contract"
	"github.com/huangsam/greenplate/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteRanking prints ranked recipes using the configured output format.
func (ow *OutWriter) WriteRanking(results []schema.ScoreResult, report schema.RankReport, cfg *contract.Config, duration time.Duration) error {
	return PrintRankResults(results, report, cfg, duration)
}

// WriteWeights prints the effective weights of the configured preferences.
func (ow *OutWriter) WriteWeights(cfg *contract.Config) error {
	return PrintWeights(cfg)
}

// WriteRecipe prints the detail view of one recipe.
func (ow *OutWriter) WriteRecipe(view RecipeView, cfg *contract.Config) error {
	return PrintRecipeDetail(view, cfg)
}
