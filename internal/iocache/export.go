package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/greenplate/internal/contract"
	"github.com/huangsam/greenplate/internal/parquet"
)

// ExportHistory writes every ranking run and result to two Parquet files derived from outputFile.
func ExportHistory(store contract.HistoryStore, outputFile string, w io.Writer) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("history store is not initialized: set --history-backend")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get history status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no ranking history found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)

	runs, err := store.GetAllRankingRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve ranking runs: %w", err)
	}
	results, err := store.GetAllRankingResults()
	if err != nil {
		return fmt.Errorf("failed to retrieve ranking results: %w", err)
	}

	runsFile := outputFile + ".ranking_runs.parquet"
	if err := parquet.WriteRankingRunsParquet(parquet.ConvertRankingRunRecords(runs), runsFile); err != nil {
		return fmt.Errorf("failed to write ranking runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d ranking runs to: %s\n", len(runs), runsFile)

	resultsFile := outputFile + ".ranking_results.parquet"
	if err := parquet.WriteRankingResultsParquet(parquet.ConvertRankingResultRecords(results), resultsFile); err != nil {
		return fmt.Errorf("failed to write ranking results: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d ranking results to: %s\n", len(results), resultsFile)

	return nil
}
