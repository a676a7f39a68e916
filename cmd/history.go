package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/huangsam/greenplate/internal/contract"
	"github.com/huangsam/greenplate/internal/iocache"
	"github.com/huangsam/greenplate/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// historyBackendFromConfig resolves and validates the history backend settings.
func historyBackendFromConfig() (schema.DatabaseBackend, string, error) {
	if err := loadConfigFile(); err != nil {
		return "", "", err
	}

	// Handle empty backend as NoneBackend
	backend := schema.DatabaseBackend(viper.GetString("history-backend"))
	if backend == "" {
		backend = schema.NoneBackend
	}
	if _, ok := schema.ValidHistoryBackends[backend]; !ok {
		return "", "", fmt.Errorf("invalid history backend '%s'", backend)
	}
	connStr := viper.GetString("history-db-connect")

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// historySetup loads minimal configuration needed for history operations.
// This is used by commands that need history access without full shared setup.
func historySetup() error {
	backend, connStr, err := historyBackendFromConfig()
	if err != nil {
		return err
	}

	// Initialize stores with the loaded config (no suggestion cache for history commands)
	if err := iocache.InitCaching("", "", 0, backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize history: %w", err)
	}

	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")
	return nil
}

// historySetupWrapper wraps historySetup to provide PreRunE for history commands.
func historySetupWrapper(_ *cobra.Command, _ []string) error {
	return historySetup()
}

// historyMigrateSetup loads configuration for migrations without opening the store,
// so migrations can run against a fresh or downgraded database.
func historyMigrateSetup(_ *cobra.Command, _ []string) error {
	backend, connStr, err := historyBackendFromConfig()
	if err != nil {
		return err
	}
	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr
	return nil
}

// historyCmd focused on ranking history management.
//
// Note: History subcommands use minimal initialization (historySetup) instead of
// the full sharedSetup used by ranking commands.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage ranking history tracking and exports",
	Long: `Manage the history of ranking runs.

When enabled with --history-backend, greenplate records every rank and score run:
- Run metadata (session, prompt, configuration, duration, outcome)
- Every ranked recipe with its health, environment and final scores

Supported backends: SQLite, MySQL, PostgreSQL, or None (disabled, default)

Subcommands:
  status  - Show history statistics
  export  - Export data to Parquet for analytics
  clear   - Remove all history data
  migrate - Run database schema migrations

Examples:
  # Check tracking status
  greenplate history status --history-backend sqlite

  # Export for analysis in pandas/DuckDB
  greenplate history export --history-backend sqlite --output-file history`,
}

// historyClearCmd clears the ranking history.
var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all ranking history",
	Long: `Delete all stored ranking runs and ranked results.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  greenplate history export --output-file backup
  greenplate history clear`,
	PreRunE: historyMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearHistory(cfg.HistoryBackend, contract.GetHistoryDBFilePath(), cfg.HistoryDBConnect); err != nil {
			contract.LogFatal("Failed to clear history", err)
		}
		fmt.Println("Ranking history cleared successfully.")
	},
}

// historyStatusCmd shows history status.
var historyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display ranking history statistics and connection details",
	Long: `Show detailed information about ranking history tracking.

Displays:
- Backend type and connection status
- Total number of runs and ranked results
- Last and oldest run timestamps

Examples:
  greenplate history status --history-backend sqlite`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := iocache.Manager.GetHistoryStore()
		if store == nil {
			contract.LogFatal("Failed to get history status", errors.New("history store is not initialized"))
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get history status", err)
		}
		iocache.PrintHistoryStatus(os.Stdout, status)
	},
}

// historyExportCmd exports ranking history to Parquet files.
var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export ranking history to Parquet for BI tools and analytics",
	Long: `Export all stored ranking history to Parquet.

Writes two files next to --output-file:
- <output-file>.ranking_runs.parquet    - one row per run
- <output-file>.ranking_results.parquet - one row per ranked recipe

Requires: --output-file parameter

Examples:
  greenplate history export --output-file history
  duckdb -c "SELECT * FROM read_parquet('history.ranking_results.parquet') LIMIT 10"`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExportHistory(iocache.Manager.GetHistoryStore(), cfg.OutputFile, os.Stdout); err != nil {
			contract.LogFatal("Failed to export ranking history", err)
		}
	},
}

// historyMigrateCmd runs database migrations for the history store.
var historyMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the ranking history store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  greenplate history migrate --history-backend sqlite

  # Rollback to the initial state
  greenplate history migrate --history-backend sqlite --target-version 0`,
	PreRunE: historyMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateHistory(cfg.HistoryBackend, cfg.HistoryDBConnect, targetVersion, os.Stdout); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
