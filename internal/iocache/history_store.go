package iocache

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/huangsam/greenplate/internal/contract"
	"github.com/huangsam/greenplate/schema"
)

// Table names for ranking history.
const (
	rankingRunsTable    = "greenplate_ranking_runs"
	rankingResultsTable = "greenplate_ranking_results"
)

// historyTables lists the history tables in dependency order.
var historyTables = []string{rankingRunsTable, rankingResultsTable}

// HistoryStoreImpl records ranking runs and their ranked recipes.
type HistoryStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.HistoryStore = &HistoryStoreImpl{} // Compile-time check

// NewHistoryStore opens the backend and migrates its schema to the latest version.
// The none backend returns a no-op store.
func NewHistoryStore(backend schema.DatabaseBackend, connStr string) (*HistoryStoreImpl, error) {
	if backend == schema.NoneBackend {
		return &HistoryStoreImpl{backend: backend}, nil
	}

	db, err := openDB(backend, connStr, GetHistoryDBFilePath())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize history store: %w", err)
	}

	// The migrator shares db, so it is not closed here.
	m, err := newMigrator(db, backend)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, _, _, err := migrateTo(m, -1); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate history tables: %w", err)
	}

	return &HistoryStoreImpl{db: db, backend: backend}, nil
}

func (hs *HistoryStoreImpl) table(name string) string {
	return quoteTableName(name, hs.backend)
}

// BeginRun creates a new ranking run and returns its unique ID.
func (hs *HistoryStoreImpl) BeginRun(sessionID string, startTime time.Time, prompt string, configParams map[string]any) (int64, error) {
	if hs.db == nil {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	var runID int64
	switch hs.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (session_id, start_time, prompt, config_params) VALUES ($1, $2, $3, $4) RETURNING run_id`, hs.table(rankingRunsTable))
		err = hs.db.QueryRow(query, sessionID, startTime, prompt, string(configJSON)).Scan(&runID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (session_id, start_time, prompt, config_params) VALUES (?, ?, ?, ?)`, hs.table(rankingRunsTable))
		var result sql.Result
		result, err = hs.db.Exec(query, sessionID, formatTime(startTime, hs.backend), prompt, string(configJSON))
		if err == nil {
			runID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert ranking run: %w", err)
	}
	return runID, nil
}

// EndRun stores the completion time, duration, counts and outcome of a run.
func (hs *HistoryStoreImpl) EndRun(runID int64, endTime time.Time, totalCandidates, totalRanked int, outcome string) error {
	if hs.db == nil {
		return nil
	}

	query := fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = %s`, hs.table(rankingRunsTable), placeholder(hs.backend, 1))
	start := timeScanner{backend: hs.backend}
	if err := hs.db.QueryRow(query, runID).Scan(start.dest()); err != nil {
		return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
	}
	startTime, err := start.value()
	if err != nil {
		return err
	}
	var durationMs int64
	if startTime != nil {
		durationMs = endTime.Sub(*startTime).Milliseconds()
	}

	p := func(n int) string { return placeholder(hs.backend, n) }
	update := fmt.Sprintf(`UPDATE %s SET end_time = %s, run_duration_ms = %s, total_candidates = %s, total_ranked = %s, outcome = %s WHERE run_id = %s`,
		hs.table(rankingRunsTable), p(1), p(2), p(3), p(4), p(5), p(6))
	if _, err := hs.db.Exec(update, formatTime(endTime, hs.backend), durationMs, totalCandidates, totalRanked, outcome, runID); err != nil {
		return fmt.Errorf("failed to update ranking run: %w", err)
	}
	return nil
}

// RecordResult stores one ranked recipe of a run.
func (hs *HistoryStoreImpl) RecordResult(runID int64, rank int, result schema.ScoreResult) error {
	if hs.db == nil {
		return nil
	}

	p := func(n int) string { return placeholder(hs.backend, n) }
	query := fmt.Sprintf(`INSERT INTO %s (run_id, result_rank, recipe_id, title, health_score, environment_score, final_score, partial, score_label)
		VALUES (%s, %s, %s, %s, %s, %s, %s, %s, %s)`,
		hs.table(rankingResultsTable), p(1), p(2), p(3), p(4), p(5), p(6), p(7), p(8), p(9))
	_, err := hs.db.Exec(query, runID, rank, result.RecipeID, result.Title, result.Health, result.Environment,
		result.Final, result.Partial, schema.GetPlainLabel(result.Final))
	if err != nil {
		return fmt.Errorf("failed to insert ranking result: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (hs *HistoryStoreImpl) Close() error {
	if hs.db != nil {
		return hs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the history store.
func (hs *HistoryStoreImpl) GetStatus() (schema.HistoryStatus, error) {
	status := schema.HistoryStatus{
		Backend:    string(hs.backend),
		Connected:  hs.db != nil,
		TableSizes: make(map[string]int64),
	}
	if hs.db == nil {
		return status, nil
	}

	runs := hs.table(rankingRunsTable)
	if err := hs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", runs)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		last := timeScanner{backend: hs.backend}
		row := hs.db.QueryRow(fmt.Sprintf("SELECT run_id, start_time FROM %s ORDER BY run_id DESC LIMIT 1", runs))
		if err := row.Scan(&status.LastRunID, last.dest()); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		if t, err := last.value(); err != nil {
			return status, err
		} else if t != nil {
			status.LastRunTime = *t
		}

		oldest := timeScanner{backend: hs.backend}
		row = hs.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id ASC LIMIT 1", runs))
		if err := row.Scan(oldest.dest()); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		if t, err := oldest.value(); err != nil {
			return status, err
		} else if t != nil {
			status.OldestRunTime = *t
		}

		row = hs.db.QueryRow(fmt.Sprintf("SELECT COUNT(DISTINCT recipe_id) FROM %s", hs.table(rankingResultsTable)))
		if err := row.Scan(&status.TotalRecipesRated); err != nil {
			return status, fmt.Errorf("failed to count rated recipes: %w", err)
		}
	}

	for _, table := range historyTables {
		var count int64
		if err := hs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", hs.table(table))).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}
	return status, nil
}

// GetAllRankingRuns retrieves every ranking run ordered by id.
func (hs *HistoryStoreImpl) GetAllRankingRuns() ([]schema.RankingRunRecord, error) {
	if hs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, session_id, start_time, end_time, run_duration_ms, prompt,
		total_candidates, total_ranked, outcome, config_params FROM %s ORDER BY run_id`, hs.table(rankingRunsTable))
	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query ranking runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RankingRunRecord
	for rows.Next() {
		var record schema.RankingRunRecord
		start := timeScanner{backend: hs.backend}
		end := timeScanner{backend: hs.backend}
		if err := rows.Scan(&record.RunID, &record.SessionID, start.dest(), end.dest(), &record.RunDurationMs,
			&record.Prompt, &record.TotalCandidates, &record.TotalRanked, &record.Outcome, &record.ConfigParams); err != nil {
			return nil, fmt.Errorf("failed to scan ranking run: %w", err)
		}
		startTime, err := start.value()
		if err != nil {
			return nil, err
		}
		if startTime != nil {
			record.StartTime = *startTime
		}
		if record.EndTime, err = end.value(); err != nil {
			return nil, err
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ranking runs: %w", err)
	}
	return results, nil
}

// GetAllRankingResults retrieves every ranked recipe ordered by run and rank.
func (hs *HistoryStoreImpl) GetAllRankingResults() ([]schema.RankingResultRecord, error) {
	if hs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, recipe_id, result_rank, title, health_score, environment_score,
		final_score, partial, score_label FROM %s ORDER BY run_id, result_rank`, hs.table(rankingResultsTable))
	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query ranking results: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RankingResultRecord
	for rows.Next() {
		var r schema.RankingResultRecord
		if err := rows.Scan(&r.RunID, &r.RecipeID, &r.Rank, &r.Title, &r.HealthScore, &r.EnvironmentScore,
			&r.FinalScore, &r.Partial, &r.ScoreLabel); err != nil {
			return nil, fmt.Errorf("failed to scan ranking result: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ranking results: %w", err)
	}
	return results, nil
}
