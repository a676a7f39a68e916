package schema

import "time"

// CacheStatus represents the status of the suggestion cache store.
type CacheStatus struct {
	Backend         string    `json:"backend"`
	Connected       bool      `json:"connected"`
	TotalEntries    int       `json:"total_entries"`
	LastEntryTime   time.Time `json:"last_entry_time"`
	OldestEntryTime time.Time `json:"oldest_entry_time"`
	TableSizeBytes  int64     `json:"table_size_bytes"`
}

// HistoryStatus represents the status of the ranking history store.
type HistoryStatus struct {
	Backend           string           `json:"backend"`
	Connected         bool             `json:"connected"`
	TotalRuns         int              `json:"total_runs"`
	LastRunID         int64            `json:"last_run_id"`
	LastRunTime       time.Time        `json:"last_run_time"`
	OldestRunTime     time.Time        `json:"oldest_run_time"`
	TotalRecipesRated int              `json:"total_recipes_rated"`
	TableSizes        map[string]int64 `json:"table_sizes"`
}

// RankingRunRecord represents a row from the greenplate_ranking_runs table.
type RankingRunRecord struct {
	RunID           int64
	SessionID       string
	StartTime       time.Time
	EndTime         *time.Time
	RunDurationMs   *int32
	Prompt          string
	TotalCandidates int32
	TotalRanked     int32
	Outcome         string
	ConfigParams    *string
}

// RankingResultRecord represents a row from the greenplate_ranking_results table.
type RankingResultRecord struct {
	RunID            int64
	RecipeID         int64
	Rank             int32
	Title            string
	HealthScore      float64
	EnvironmentScore float64
	FinalScore       float64
	Partial          bool
	ScoreLabel       string
}
