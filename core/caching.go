package core

import (
	"context"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/huangsam/greenplate/core/algo"
	"github.com/huangsam/greenplate/internal/contract"
)

// suggestionCacheVersion defines the version of cached suggestion entries.
const suggestionCacheVersion = 1

// suggestionCacheKey identifies a prompt and the number of requested results.
func suggestionCacheKey(prompt string, results int) string {
	return fmt.Sprintf("%x", sha256.Sum256(fmt.Appendf(nil, "%s:%d", prompt, results)))
}

// hasCandidateIDs reports whether a response parses to at least one recipe id.
func hasCandidateIDs(text string) bool {
	ids, _, _ := algo.ParseCandidateIDs(text)
	return len(ids) > 0
}

// checkCacheHit returns a cached response that matches the version, is younger
// than ttl and still holds recipe ids.
func checkCacheHit(store contract.CacheStore, key string, ttl time.Duration) (string, bool) {
	data, version, ts, err := store.Get(key)
	if err != nil {
		return "", false // Cache miss
	}
	if version != suggestionCacheVersion || len(data) == 0 {
		return "", false
	}
	if ttl > 0 && time.Since(time.Unix(ts, 0)) > ttl {
		return "", false
	}
	if !hasCandidateIDs(string(data)) {
		return "", false
	}
	return string(data), true
}

// cachedSuggest asks the cache first and the suggester on a miss. Only responses
// holding at least one recipe id are stored. Static id lists are never cached.
// The suggester call is bounded by cfg.SuggestTimeout.
func (p *Pipeline) cachedSuggest(ctx context.Context, cfg *contract.Config, prompt string) (text string, hit bool, err error) {
	var store contract.CacheStore
	if p.Cache != nil && cfg.SuggestIDs == "" {
		store = p.Cache.GetSuggestionStore()
	}

	key := suggestionCacheKey(prompt, cfg.SuggestResults)
	if store != nil {
		if cached, ok := checkCacheHit(store, key, cfg.CacheTTL); ok {
			p.Metrics.RecordCacheLookup(true)
			contract.LogDebug("suggestion cache hit", "key", key[:12])
			return cached, true, nil
		}
		p.Metrics.RecordCacheLookup(false)
	}

	callCtx := ctx
	if cfg.SuggestTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, cfg.SuggestTimeout)
		defer cancel()
	}

	start := time.Now()
	text, err = p.Suggester.Suggest(callCtx, prompt)
	p.Metrics.RecordSuggestion(time.Since(start))
	if err != nil {
		return "", false, err
	}

	if store != nil && hasCandidateIDs(text) {
		if err := store.Set(key, []byte(text), suggestionCacheVersion, time.Now().Unix()); err != nil {
			contract.LogWarn("Failed to cache suggestion response", err)
		}
	}
	return text, false, nil
}
