package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/greenplate/internal/contract"
	"github.com/huangsam/greenplate/internal/iocache"
	"github.com/huangsam/greenplate/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// cacheSetup loads minimal configuration needed for cache operations.
// This is used by commands that need cache access without full shared setup.
func cacheSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	// Get cache-related config values
	backend := schema.DatabaseBackend(viper.GetString("cache-backend"))
	connStr := viper.GetString("cache-db-connect")

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	ttl := contract.DefaultCacheTTL
	if raw := viper.GetString("cache-ttl"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("invalid cache-ttl %q: %w", raw, err)
		}
		ttl = parsed
	}

	// Initialize caching with the loaded config (no history tracking for cache commands)
	if err := iocache.InitCaching(backend, connStr, ttl, "", ""); err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}

	cfg.CacheBackend = backend
	cfg.CacheDBConnect = connStr
	cfg.CacheTTL = ttl

	return nil
}

// cacheSetupWrapper wraps cacheSetup to provide PreRunE for cache commands.
func cacheSetupWrapper(_ *cobra.Command, _ []string) error {
	return cacheSetup()
}

// cacheCmd focused on cache management.
//
// Note: Cache subcommands use minimal initialization (cacheSetup) instead of
// the full sharedSetup used by ranking commands. This avoids catalog and
// preference validation for simple cache operations.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the suggestion cache",
	Long: `Manage the cache of suggestion service responses.

Greenplate caches the raw suggestion for each prompt so repeated descriptions
skip the remote service until the entry expires (see --cache-ttl).

Supported backends: SQLite (default), MySQL, PostgreSQL, Redis, or None

Subcommands:
  status - Show cache statistics and connection info
  clear  - Remove all cached data

Examples:
  # Check cache status
  greenplate cache status

  # Clear cache after the suggestion service changed
  greenplate cache clear`,
}

// cacheClearCmd clears the cache.
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached suggestions",
	Long: `Delete all cached suggestions from the configured backend.

Use this when:
- The suggestion service or its model changed
- The catalog was replaced with different ids

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the cache table
For Redis: Deletes every greenplate key

Examples:
  # Clear SQLite cache (default)
  greenplate cache clear

  # Clear Redis cache (set connection string via env variable)
  GREENPLATE_CACHE_BACKEND=redis GREENPLATE_CACHE_DB_CONNECT="redis://localhost:6379/0" greenplate cache clear`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearCache(cfg.CacheBackend, contract.GetCacheDBFilePath(), cfg.CacheDBConnect); err != nil {
			contract.LogFatal("Failed to clear cache", err)
		}
		fmt.Println("Cache cleared successfully.")
	},
}

// cacheStatusCmd shows cache status.
var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display cache statistics and connection details",
	Long: `Show detailed information about the suggestion cache.

Displays:
- Backend type and connection status
- Total number of cached entries
- Last and oldest cache entry timestamps
- Cache size

Examples:
  # Check cache status
  greenplate cache status`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := iocache.Manager.GetSuggestionStore()
		if store == nil {
			fmt.Println("Suggestion cache is disabled (backend: none).")
			return
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get cache status", err)
		}
		iocache.PrintCacheStatus(os.Stdout, status)
	},
}
