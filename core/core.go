// Package core has core logic for ranking and scoring candidate recipes.
package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/huangsam/greenplate/core/algo"
	"github.com/huangsam/greenplate/internal/catalog"
	"github.com/huangsam/greenplate/internal/contract"
	"github.com/huangsam/greenplate/internal/outwriter"
	"github.com/huangsam/greenplate/internal/suggest"
	"github.com/huangsam/greenplate/internal/telemetry"
	"github.com/huangsam/greenplate/schema"
)

// NewPipeline loads the configured catalog and wires the suggestion source.
// A missing suggestion source is only an error once Rank is called.
func NewPipeline(cfg *contract.Config, mgr contract.CacheManager, metrics *telemetry.Metrics) (*Pipeline, error) {
	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}
	p := &Pipeline{Catalog: cat, Cache: mgr, Metrics: metrics}
	if s, err := suggest.FromConfig(cfg); err == nil {
		p.Suggester = s
	} else {
		contract.LogDebug("suggestion source unavailable", "err", err)
	}
	return p, nil
}

// ExecuteRank runs the full pipeline for a description and prints the ranking.
// It serves as the main entry point for the 'rank' command.
func ExecuteRank(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, description string) error {
	start := time.Now()
	metrics := telemetry.New()
	defer writeMetrics(metrics, cfg)

	p, err := NewPipeline(cfg, mgr, metrics)
	if err != nil {
		return err
	}
	outcome, err := p.Rank(ctx, cfg, description)
	return printOutcome(outcome, err, cfg, time.Since(start))
}

// ExecuteScore ranks an explicit id list and prints the ranking.
// It serves as the main entry point for the 'score' command.
func ExecuteScore(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, idList string) error {
	start := time.Now()
	metrics := telemetry.New()
	defer writeMetrics(metrics, cfg)

	p, err := NewPipeline(cfg, mgr, metrics)
	if err != nil {
		return err
	}
	outcome, err := p.Score(ctx, cfg, idList)
	return printOutcome(outcome, err, cfg, time.Since(start))
}

// ExecuteShow prints the detail view of one catalog recipe.
func ExecuteShow(_ context.Context, cfg *contract.Config, id int) error {
	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return err
	}
	view, err := RecipeDetail(cat, cfg.Preferences, id)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteRecipe(view, cfg)
}

// RecipeDetail scores a catalog recipe for display. Missing measurements never
// hide a recipe here, so the partial policy always applies.
func RecipeDetail(cat contract.Catalog, prefs algo.Preferences, id int) (outwriter.RecipeView, error) {
	recipe, ok := cat.Get(id)
	if !ok {
		return outwriter.RecipeView{}, fmt.Errorf("recipe %d not found in catalog", id)
	}
	score, err := algo.ScoreRecipe(recipe, prefs, schema.PartialPolicy)
	if err != nil {
		return outwriter.RecipeView{}, fmt.Errorf("scoring recipe %d: %w", id, err)
	}
	return outwriter.NewRecipeView(recipe, score, prefs), nil
}

// ExecuteWeights prints the effective weights of the configured preferences.
func ExecuteWeights(_ context.Context, cfg *contract.Config) error {
	return outwriter.NewOutWriter().WriteWeights(cfg)
}

// ExecuteCatalogConvert writes the configured catalog to a Parquet file.
func ExecuteCatalogConvert(_ context.Context, cfg *contract.Config) error {
	if cfg.OutputFile == "" {
		return errors.New("--output-file is required")
	}
	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return err
	}
	if err := catalog.ConvertToParquet(cat, cfg.OutputFile); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "💾 Wrote %d recipes to %s\n", cat.Len(), cfg.OutputFile)
	return nil
}

// printOutcome reports candidate conditions on stderr and prints the ranking, or
// returns a message that names the failure condition.
func printOutcome(outcome RankOutcome, err error, cfg *contract.Config, duration time.Duration) error {
	outwriter.PrintRankReport(os.Stderr, outcome.Report)
	switch {
	case err == nil:
		return outwriter.NewOutWriter().WriteRanking(outcome.Results, outcome.Report, cfg, duration)
	case errors.Is(err, ErrNoSuggestions):
		return fmt.Errorf("no recipes were suggested, try rephrasing the description: %w", err)
	case errors.Is(err, ErrNoCatalogMatches):
		return fmt.Errorf("%d recipe(s) were suggested but none is in the catalog: %w", outcome.Report.Candidates, err)
	case errors.Is(err, ErrAllCandidatesFailed):
		return fmt.Errorf("%d matching recipe(s) could not be scored: %w", outcome.Report.Matched(), err)
	default:
		return err
	}
}

// writeMetrics flushes telemetry to the configured textfile.
func writeMetrics(metrics *telemetry.Metrics, cfg *contract.Config) {
	if err := metrics.WriteToTextfile(cfg.MetricsFile); err != nil {
		contract.LogWarn("Failed to write metrics file", err)
	}
}
