package schema

// Run outcomes recorded in the history store and telemetry.
const (
	OutcomeOK                  = "ok"
	OutcomeNoSuggestions       = "no_suggestions"
	OutcomeNoCatalogMatches    = "no_catalog_matches"
	OutcomeAllCandidatesFailed = "all_candidates_failed"
	OutcomeError               = "error"
)

// FailedCandidate is a candidate recipe that could not be scored.
type FailedCandidate struct {
	RecipeID int    `json:"recipe_id"`
	Reason   string `json:"reason"`
}

// RankReport describes what happened to every candidate of a ranking request.
type RankReport struct {
	CacheHit      bool              `json:"cache_hit"`
	Candidates    int               `json:"candidates"` // distinct parsed ids
	Unparseable   []string          `json:"unparseable,omitempty"`
	Duplicates    []int             `json:"duplicates,omitempty"`
	CatalogMisses []int             `json:"catalog_misses,omitempty"`
	Failed        []FailedCandidate `json:"failed,omitempty"`
	Partial       []int             `json:"partial,omitempty"`
	Scored        int               `json:"scored"`
}

// Matched returns the number of candidates found in the catalog.
func (r RankReport) Matched() int {
	return r.Candidates - len(r.CatalogMisses)
}
