package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/huangsam/greenplate/core/algo"
	"github.com/huangsam/greenplate/internal/contract"
	"github.com/huangsam/greenplate/internal/telemetry"
	"github.com/huangsam/greenplate/schema"
)

// Ranking failures that end a request without results.
var (
	// ErrNoSuggestions means the suggestion service failed or returned no recipe ids.
	ErrNoSuggestions = errors.New("no suggestions returned")

	// ErrNoCatalogMatches means suggestions were returned but none is in the catalog.
	ErrNoCatalogMatches = errors.New("suggestions returned but none present in catalog")

	// ErrAllCandidatesFailed means every matched candidate failed to score.
	ErrAllCandidatesFailed = errors.New("every candidate recipe failed to score")
)

// RankOutcome is the result of a ranking request.
type RankOutcome struct {
	Results []schema.ScoreResult
	Report  schema.RankReport
}

// Pipeline ranks candidate recipes. Cache and Metrics are optional.
type Pipeline struct {
	Catalog   contract.Catalog
	Suggester contract.Suggester
	Cache     contract.CacheManager
	Metrics   *telemetry.Metrics
}

// Rank runs the full pipeline: prompt, suggestions, catalog lookup, scoring and ranking.
func (p *Pipeline) Rank(ctx context.Context, cfg *contract.Config, description string) (RankOutcome, error) {
	if strings.TrimSpace(description) == "" {
		return RankOutcome{}, errors.New("a recipe description is required")
	}
	if p.Suggester == nil {
		return RankOutcome{}, errors.New("no suggestion source configured")
	}

	start := time.Now()
	prompt := BuildPrompt(description, cfg.Allergies)
	run := p.beginRun(ctx, cfg, prompt)

	var report schema.RankReport
	text, hit, err := p.cachedSuggest(ctx, cfg, prompt)
	report.CacheHit = hit
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrNoSuggestions, err)
		return p.finish("rank", start, run, RankOutcome{Report: report}, err)
	}

	ids, unparseable, duplicates := algo.ParseCandidateIDs(text)
	report.Unparseable = unparseable
	report.Duplicates = duplicates
	p.Metrics.RecordCandidates(telemetry.CandidateUnparseable, len(unparseable))
	p.Metrics.RecordCandidates(telemetry.CandidateDuplicate, len(duplicates))
	if len(ids) == 0 {
		err = fmt.Errorf("%w: response held no recipe ids", ErrNoSuggestions)
		return p.finish("rank", start, run, RankOutcome{Report: report}, err)
	}

	outcome, err := p.scoreCandidates(cfg, ids, report)
	return p.finish("rank", start, run, outcome, err)
}

// Score ranks an explicit comma-separated id list, skipping the suggestion service.
func (p *Pipeline) Score(ctx context.Context, cfg *contract.Config, idList string) (RankOutcome, error) {
	start := time.Now()
	run := p.beginRun(ctx, cfg, "ids: "+idList)

	var report schema.RankReport
	ids, unparseable, duplicates := algo.ParseCandidateIDs(idList)
	report.Unparseable = unparseable
	report.Duplicates = duplicates
	if len(ids) == 0 {
		err := fmt.Errorf("no valid recipe ids in %q", idList)
		return p.finish("score", start, run, RankOutcome{Report: report}, err)
	}

	outcome, err := p.scoreCandidates(cfg, ids, report)
	return p.finish("score", start, run, outcome, err)
}

// scoreCandidates looks up, scores and ranks candidate ids in their given order.
func (p *Pipeline) scoreCandidates(cfg *contract.Config, ids []int, report schema.RankReport) (RankOutcome, error) {
	report.Candidates = len(ids)

	var results []schema.ScoreResult
	for _, id := range ids {
		recipe, ok := p.Catalog.Get(id)
		if !ok {
			report.CatalogMisses = append(report.CatalogMisses, id)
			continue
		}
		result, err := algo.ScoreRecipe(recipe, cfg.Preferences, cfg.MissingPolicy)
		if err != nil {
			contract.LogDebug("candidate failed to score", "recipe", id, "err", err)
			report.Failed = append(report.Failed, schema.FailedCandidate{RecipeID: id, Reason: err.Error()})
			continue
		}
		if result.Partial {
			report.Partial = append(report.Partial, id)
		}
		results = append(results, result)
	}

	p.Metrics.RecordCandidates(telemetry.CandidateMissing, len(report.CatalogMisses))
	p.Metrics.RecordCandidates(telemetry.CandidateMatched, report.Matched())
	p.Metrics.RecordCandidates(telemetry.CandidateFailed, len(report.Failed))
	p.Metrics.RecordCandidates(telemetry.CandidatePartial, len(report.Partial))

	if report.Matched() == 0 {
		return RankOutcome{Report: report}, ErrNoCatalogMatches
	}
	if len(results) == 0 {
		return RankOutcome{Report: report}, ErrAllCandidatesFailed
	}

	report.Scored = len(results)
	return RankOutcome{
		Results: algo.RankResults(results, cfg.ResultLimit),
		Report:  report,
	}, nil
}

// outcomeOf maps a pipeline error to its recorded outcome.
func outcomeOf(err error) string {
	switch {
	case err == nil:
		return schema.OutcomeOK
	case errors.Is(err, ErrNoSuggestions):
		return schema.OutcomeNoSuggestions
	case errors.Is(err, ErrNoCatalogMatches):
		return schema.OutcomeNoCatalogMatches
	case errors.Is(err, ErrAllCandidatesFailed):
		return schema.OutcomeAllCandidatesFailed
	default:
		return schema.OutcomeError
	}
}

// finish records history and telemetry for a request and passes its result through.
func (p *Pipeline) finish(command string, start time.Time, run historyRun, outcome RankOutcome, err error) (RankOutcome, error) {
	status := outcomeOf(err)
	run.end(outcome, status)
	p.Metrics.RecordRanking(command, status, time.Since(start))
	return outcome, err
}
