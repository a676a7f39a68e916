package iocache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/greenplate/internal/contract"
	"github.com/huangsam/greenplate/schema"
	"github.com/redis/go-redis/v9"
)

// redisKeyPrefix namespaces suggestion entries inside a shared Redis database.
const redisKeyPrefix = "greenplate:suggestion:"

// redisOpTimeout bounds every Redis round trip.
const redisOpTimeout = 5 * time.Second

// RedisCacheStore stores suggestion responses as Redis hashes that expire after the cache TTL.
type RedisCacheStore struct {
	client *redis.Client
	ttl    time.Duration
}

var _ contract.CacheStore = &RedisCacheStore{} // Compile-time check

// parseRedisOptions accepts host:port or a redis:// / rediss:// URL. Empty means localhost:6379.
func parseRedisOptions(connStr string) (*redis.Options, error) {
	switch {
	case connStr == "":
		return &redis.Options{Addr: "localhost:6379"}, nil
	case strings.HasPrefix(connStr, "redis://"), strings.HasPrefix(connStr, "rediss://"):
		return redis.ParseURL(connStr)
	default:
		return &redis.Options{Addr: connStr}, nil
	}
}

// NewRedisCacheStore connects to Redis and verifies the connection.
// A ttl of zero keeps entries until they are cleared.
func NewRedisCacheStore(connStr string, ttl time.Duration) (*RedisCacheStore, error) {
	opts, err := parseRedisOptions(connStr)
	if err != nil {
		return nil, fmt.Errorf("invalid redis connection string: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.Addr, err)
	}
	return &RedisCacheStore{client: client, ttl: ttl}, nil
}

// Get retrieves a value by key. A missing key returns redis.Nil.
func (rs *RedisCacheStore) Get(key string) ([]byte, int, int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	fields, err := rs.client.HGetAll(ctx, redisKeyPrefix+key).Result()
	if err != nil {
		return nil, 0, 0, err
	}
	if len(fields) == 0 {
		return nil, 0, 0, redis.Nil
	}
	version, err := strconv.Atoi(fields["version"])
	if err != nil {
		return nil, 0, 0, fmt.Errorf("corrupt cache entry %s: %w", key, err)
	}
	ts, err := strconv.ParseInt(fields["timestamp"], 10, 64)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("corrupt cache entry %s: %w", key, err)
	}
	return []byte(fields["value"]), version, ts, nil
}

// Set writes the entry and refreshes its expiry in one transaction.
func (rs *RedisCacheStore) Set(key string, value []byte, version int, timestamp int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	fullKey := redisKeyPrefix + key
	_, err := rs.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, fullKey, "value", value, "version", version, "timestamp", timestamp)
		if rs.ttl > 0 {
			pipe.Expire(ctx, fullKey, rs.ttl)
		}
		return nil
	})
	return err
}

// Close closes the Redis client.
func (rs *RedisCacheStore) Close() error {
	return rs.client.Close()
}

// GetStatus scans the greenplate keys and reports their count, age range and memory usage.
func (rs *RedisCacheStore) GetStatus() (schema.CacheStatus, error) {
	status := schema.CacheStatus{Backend: string(schema.RedisBackend), Connected: true}

	ctx, cancel := context.WithTimeout(context.Background(), 4*redisOpTimeout)
	defer cancel()

	var lastTs, oldestTs int64
	iter := rs.client.Scan(ctx, 0, redisKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		status.TotalEntries++

		ts, err := rs.client.HGet(ctx, key, "timestamp").Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return status, fmt.Errorf("failed to read timestamp of %s: %w", key, err)
		}
		if ts > lastTs {
			lastTs = ts
		}
		if oldestTs == 0 || ts < oldestTs {
			oldestTs = ts
		}
		if size, err := rs.client.MemoryUsage(ctx, key).Result(); err == nil {
			status.TableSizeBytes += size
		}
	}
	if err := iter.Err(); err != nil {
		return status, fmt.Errorf("failed to scan cache keys: %w", err)
	}

	if status.TotalEntries > 0 {
		status.LastEntryTime = time.Unix(lastTs, 0)
		status.OldestEntryTime = time.Unix(oldestTs, 0)
	}
	return status, nil
}

// clear deletes every greenplate suggestion key.
func (rs *RedisCacheStore) clear(ctx context.Context) (int, error) {
	var deleted int
	iter := rs.client.Scan(ctx, 0, redisKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := rs.client.Del(ctx, iter.Val()).Err(); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, iter.Err()
}
