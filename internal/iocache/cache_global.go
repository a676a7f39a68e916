package iocache

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/huangsam/greenplate/internal/contract"
	"github.com/huangsam/greenplate/schema"
)

// suggestionTable is the name of the table for suggestion caching.
const suggestionTable = "suggestion_cache"

// CacheStoreManager holds the suggestion cache and the ranking history store.
type CacheStoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	suggestions  contract.CacheStore
	history      contract.HistoryStore
}

var _ contract.CacheManager = &CacheStoreManager{} // Compile-time check

// GetSuggestionStore returns the suggestion CacheStore, or nil when caching is not initialized.
func (mgr *CacheStoreManager) GetSuggestionStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.suggestions
}

// GetHistoryStore returns the HistoryStore, or nil when history is not initialized.
func (mgr *CacheStoreManager) GetHistoryStore() contract.HistoryStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.history
}

// Global Manager instance for main logic.
var (
	Manager   = &CacheStoreManager{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// GetDBFilePath returns the path to the SQLite DB file for suggestion caching.
func GetDBFilePath() string {
	return contract.GetCacheDBFilePath()
}

// GetHistoryDBFilePath returns the path to the SQLite DB file for ranking history.
func GetHistoryDBFilePath() string {
	return contract.GetHistoryDBFilePath()
}

// NewSuggestionStore opens the suggestion cache for any supported backend.
func NewSuggestionStore(backend schema.DatabaseBackend, connStr string, ttl time.Duration) (contract.CacheStore, error) {
	if backend == schema.RedisBackend {
		store, err := NewRedisCacheStore(connStr, ttl)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	store, err := NewCacheStore(suggestionTable, backend, connStr)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// InitCaching initializes the global manager. An empty backend leaves that store disabled.
func InitCaching(cacheBackend schema.DatabaseBackend, cacheConnStr string, cacheTTL time.Duration, historyBackend schema.DatabaseBackend, historyConnStr string) error {
	var initErr error

	initOnce.Do(func() {
		var suggestions contract.CacheStore
		if cacheBackend != "" {
			store, err := NewSuggestionStore(cacheBackend, cacheConnStr, cacheTTL)
			if err != nil {
				initErr = fmt.Errorf("failed to initialize suggestion caching: %w", err)
				return
			}
			suggestions = store
		}

		var history contract.HistoryStore
		if historyBackend != "" {
			store, err := NewHistoryStore(historyBackend, historyConnStr)
			if err != nil {
				if suggestions != nil {
					_ = suggestions.Close()
				}
				initErr = fmt.Errorf("failed to initialize history store: %w", err)
				return
			}
			history = store
		}

		Manager.Lock()
		defer Manager.Unlock()
		Manager.suggestions = suggestions
		Manager.history = history
		contract.LogDebug("caching initialized", "cache", cacheBackend, "history", historyBackend)
	})

	return initErr
}

// CloseCaching should be called on application shutdown.
func CloseCaching() {
	closeOnce.Do(func() {
		Manager.Lock()
		defer Manager.Unlock()
		if Manager.suggestions != nil {
			_ = Manager.suggestions.Close()
		}
		if Manager.history != nil {
			_ = Manager.history.Close()
		}
	})
}

// ClearCache removes every cached suggestion for the backend.
// SQLite deletes the database file, MySQL and PostgreSQL drop the table,
// Redis deletes the greenplate keys and none does nothing.
func ClearCache(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		return removeSQLiteFile(dbFilePath)
	case schema.MySQLBackend, schema.PostgreSQLBackend:
		return dropSQLTables(backend, connStr, suggestionTable)
	case schema.RedisBackend:
		store, err := NewRedisCacheStore(connStr, 0)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
		ctx, cancel := context.WithTimeout(context.Background(), 4*redisOpTimeout)
		defer cancel()
		deleted, err := store.clear(ctx)
		if err != nil {
			return fmt.Errorf("failed to clear redis cache: %w", err)
		}
		contract.LogDebug("redis cache cleared", "keys", deleted)
		return nil
	case schema.NoneBackend:
		return nil
	default:
		return fmt.Errorf("unsupported cache backend for clearing: %s", backend)
	}
}

// ClearHistory removes every recorded run for the backend, including the migration state.
func ClearHistory(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		return removeSQLiteFile(dbFilePath)
	case schema.MySQLBackend, schema.PostgreSQLBackend:
		return dropSQLTables(backend, connStr, rankingResultsTable, rankingRunsTable, migrationsTable)
	case schema.NoneBackend:
		return nil
	default:
		return fmt.Errorf("unsupported history backend for clearing: %s", backend)
	}
}

func removeSQLiteFile(dbFilePath string) error {
	if dbFilePath == "" {
		return fmt.Errorf("dbFilePath cannot be empty for SQLite backend")
	}
	if err := os.Remove(dbFilePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove SQLite database file %s: %w", dbFilePath, err)
	}
	return nil
}

// dropSQLTables connects to the SQL database and drops the tables if they exist.
func dropSQLTables(backend schema.DatabaseBackend, connStr string, tables ...string) error {
	db, err := openDB(backend, connStr, "")
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	for _, table := range tables {
		query := fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteTableName(table, backend))
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}
	return nil
}
