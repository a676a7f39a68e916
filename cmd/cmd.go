// Package cmd defines the command-line interface for greenplate.
package cmd

import (
	"github.com/huangsam/greenplate/internal/contract"
	"github.com/huangsam/greenplate/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(rankCmd)
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(weightsCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the catalog subcommands to the parent catalog command
	catalogCmd.AddCommand(catalogConvertCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Add the history subcommands to the parent history command
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyStatusCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("catalog", "", "Path to the recipe catalog (.json, .csv or .parquet)")
	rootCmd.PersistentFlags().Int("meals", schema.DefaultMeals, "Meals per day used to derive per-meal targets")
	rootCmd.PersistentFlags().Int("split", schema.DefaultSplit, "Environment share of the final score (0-100)")
	rootCmd.PersistentFlags().String("missing-policy", string(schema.PartialPolicy), "Missing measurement policy: partial or exclude")
	rootCmd.PersistentFlags().String("allergies", "", "Comma-separated allergies and intolerances passed to the suggestion service")
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultResultLimit, "Number of results to display")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("log-level", contract.DefaultLogLevel, "Log level: debug or info or warn or error")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("suggest-endpoint", "", "URL of the recipe suggestion service")
	rootCmd.PersistentFlags().String("suggest-token", "", "Bearer token for the suggestion service")
	rootCmd.PersistentFlags().Int("suggest-results", contract.DefaultSuggestResults, "Number of candidates requested from the suggestion service")
	rootCmd.PersistentFlags().String("suggest-timeout", contract.DefaultSuggestTimeout.String(), "Timeout for one suggestion request")
	rootCmd.PersistentFlags().String("suggest-ids", "", "Static comma-separated suggestion used instead of the service")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Suggestion cache backend: sqlite or mysql or postgresql or redis or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Connection string for mysql/postgresql/redis cache backends")
	rootCmd.PersistentFlags().String("cache-ttl", contract.DefaultCacheTTL.String(), "Lifetime of a cached suggestion")
	rootCmd.PersistentFlags().String("history-backend", "", "Ranking history backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("history-db-connect", "", "Connection string for ranking history (must differ from cache-db-connect)")
	rootCmd.PersistentFlags().String("metrics-file", "", "Write Prometheus metrics in textfile format to this path")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of historyMigrateCmd to Viper
	historyMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(historyMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding history migrate flags", err)
	}
}
