// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/greenplate/schema"
)

// Suggester asks an external service for candidate recipes.
// The response is free text which is expected to hold comma-separated recipe ids.
type Suggester interface {
	Suggest(ctx context.Context, prompt string) (string, error)
}

// Catalog provides recipes with their per-serving measurements by id.
type Catalog interface {
	Get(id int) (schema.Recipe, bool)
	Len() int
}

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetSuggestionStore() CacheStore
	GetHistoryStore() HistoryStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// HistoryStore defines the interface for tracking ranking runs and their results.
type HistoryStore interface {
	// BeginRun creates a new ranking run and returns its unique ID
	BeginRun(sessionID string, startTime time.Time, prompt string, configParams map[string]any) (int64, error)

	// EndRun updates the ranking run with completion data
	EndRun(runID int64, endTime time.Time, totalCandidates, totalRanked int, outcome string) error

	// RecordResult stores one ranked recipe of a run
	RecordResult(runID int64, rank int, result schema.ScoreResult) error

	// GetStatus returns status information about the history store
	GetStatus() (schema.HistoryStatus, error)

	// GetAllRankingRuns retrieves every recorded run ordered by id
	GetAllRankingRuns() ([]schema.RankingRunRecord, error)

	// GetAllRankingResults retrieves every recorded result ordered by run and rank
	GetAllRankingResults() ([]schema.RankingResultRecord, error)

	// Close closes the underlying connection
	Close() error
}
