package algo

import (
	"sort"
	"strconv"
	"strings"

	"github.com/huangsam/greenplate/schema"
)

// ParseCandidateIDs splits a comma-delimited suggestion response into recipe ids.
// Tokens that are not integers are returned as unparseable; repeated ids keep
// their first position and are returned as duplicates.
func ParseCandidateIDs(text string) (ids []int, unparseable []string, duplicates []int) {
	seen := make(map[int]struct{})
	for token := range strings.SplitSeq(text, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		id, err := strconv.Atoi(token)
		if err != nil {
			unparseable = append(unparseable, token)
			continue
		}
		if _, dup := seen[id]; dup {
			duplicates = append(duplicates, id)
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, unparseable, duplicates
}

// RankResults sorts results by final score in descending order and returns
// the top 'limit' results. Equal scores keep their input order.
// A limit of 0 or less returns every result.
func RankResults(results []schema.ScoreResult, limit int) []schema.ScoreResult {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Final > results[j].Final
	})
	if limit > 0 && len(results) > limit {
		return results[:limit]
	}
	return results
}
