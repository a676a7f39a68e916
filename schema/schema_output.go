package schema

// Score labels, best first.
const (
	ExcellentLabel = "Excellent"
	GoodLabel      = "Good"
	FairLabel      = "Fair"
	PoorLabel      = "Poor"
)

// ScoreResult is the per-recipe output of the scoring engine.
type ScoreResult struct {
	RecipeID      int                   `json:"recipe_id"`
	Title         string                `json:"title"`
	Rating        float64               `json:"rating"`
	Contributions map[MetricKey]float64 `json:"contributions"`
	Health        float64               `json:"health_score"`
	Environment   float64               `json:"environment_score"`
	Final         float64               `json:"final_score"`
	Partial       bool                  `json:"partial"`
	Missing       []MetricKey           `json:"missing,omitempty"`
}

// EnrichedScoreResult adds presentation data to a ScoreResult.
type EnrichedScoreResult struct {
	Rank  int    `json:"rank"`
	Label string `json:"label"`
	ScoreResult
}

// GetPlainLabel returns a plain text label for a 0-100 score where higher is better.
func GetPlainLabel(score float64) string {
	switch {
	case score >= 80:
		return ExcellentLabel
	case score >= 60:
		return GoodLabel
	case score >= 40:
		return FairLabel
	default:
		return PoorLabel
	}
}

// EnrichResults adds rank and label to a list of ranked results.
func EnrichResults(results []ScoreResult) []EnrichedScoreResult {
	output := make([]EnrichedScoreResult, len(results))
	for i, r := range results {
		output[i] = EnrichedScoreResult{
			Rank:        i + 1,
			Label:       GetPlainLabel(r.Final),
			ScoreResult: r,
		}
	}
	return output
}

// WeightRow is one line of the effective weights report.
type WeightRow struct {
	Key        MetricKey  `json:"key"`
	Name       string     `json:"name"`
	Category   Category   `json:"category"`
	Shape      Shape      `json:"shape"`
	Unit       string     `json:"unit"`
	Importance Importance `json:"importance"`
	Base       float64    `json:"base_weight"`
	Effective  float64    `json:"effective_weight"`
	MealTarget Target     `json:"meal_target"`
}
