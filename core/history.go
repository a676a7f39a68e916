package core

import (
	"context"
	"fmt"
	"time"

	"github.com/huangsam/greenplate/internal/contract"
	"github.com/huangsam/greenplate/schema"
)

// historyRun tracks one ranking request in the history store. The zero value records nothing.
type historyRun struct {
	store contract.HistoryStore
	id    int64
}

// beginRun opens a history run when a history store is configured. Tracking
// errors are logged and never fail the request.
func (p *Pipeline) beginRun(ctx context.Context, cfg *contract.Config, prompt string) historyRun {
	if p.Cache == nil {
		return historyRun{}
	}
	store := p.Cache.GetHistoryStore()
	if store == nil {
		return historyRun{}
	}

	id, err := store.BeginRun(sessionIDFrom(ctx), time.Now(), prompt, configParams(cfg))
	if err != nil {
		contract.LogWarn("History tracking initialization failed", err)
		return historyRun{}
	}
	if id <= 0 {
		return historyRun{}
	}
	return historyRun{store: store, id: id}
}

// end records the ranked results and closes the run.
func (r historyRun) end(outcome RankOutcome, status string) {
	if r.store == nil {
		return
	}
	for i, result := range outcome.Results {
		if err := r.store.RecordResult(r.id, i+1, result); err != nil {
			contract.LogWarn(fmt.Sprintf("History tracking failed for recipe %d", result.RecipeID), err)
		}
	}
	if err := r.store.EndRun(r.id, time.Now(), outcome.Report.Candidates, len(outcome.Results), status); err != nil {
		contract.LogWarn("Failed to finalize history tracking", err)
	}
}

// configParams captures the preferences that shaped a run.
func configParams(cfg *contract.Config) map[string]any {
	importance := make(map[string]string)
	for _, m := range schema.Metrics {
		if imp := cfg.Preferences.Importance(m.Key); imp != schema.DefaultImportance {
			importance[string(m.Key)] = string(imp)
		}
	}
	return map[string]any{
		"meals":          cfg.Preferences.Meals(),
		"split":          cfg.Preferences.Split(),
		"missing_policy": string(cfg.MissingPolicy),
		"limit":          cfg.ResultLimit,
		"allergies":      cfg.Allergies,
		"importance":     importance,
	}
}
