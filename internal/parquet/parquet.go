// Package parquet provides data structures and functions for reading and writing
// greenplate data as Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/greenplate/schema"
	"github.com/parquet-go/parquet-go"
)

// RankingRun represents a single ranking request with metadata.
// This struct maps to the greenplate_ranking_runs database table.
type RankingRun struct {
	// RunID is the unique identifier for this ranking run
	RunID int64 `parquet:"run_id,snappy"`

	// SessionID groups runs of one CLI invocation or MCP session
	SessionID string `parquet:"session_id,snappy"`

	// StartTime is when the ranking began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the ranking completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	// Prompt is the text sent to the suggestion service
	Prompt string `parquet:"prompt,snappy"`

	// TotalCandidates is the number of candidate ids found in the catalog
	TotalCandidates int32 `parquet:"total_candidates,snappy"`

	// TotalRanked is the number of recipes that were scored
	TotalRanked int32 `parquet:"total_ranked,snappy"`

	// Outcome is ok or the failure condition of the run
	Outcome string `parquet:"outcome,snappy"`

	// ConfigParams contains the JSON-encoded preferences (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// RankingResult represents one ranked recipe of a run.
// This struct maps to the greenplate_ranking_results database table.
type RankingResult struct {
	RunID            int64   `parquet:"run_id,snappy"`
	RecipeID         int64   `parquet:"recipe_id,snappy"`
	Rank             int32   `parquet:"rank,snappy"`
	Title            string  `parquet:"title,snappy"`
	HealthScore      float64 `parquet:"health_score,snappy"`
	EnvironmentScore float64 `parquet:"environment_score,snappy"`
	FinalScore       float64 `parquet:"final_score,snappy"`
	Partial          bool    `parquet:"partial,snappy"`
	ScoreLabel       string  `parquet:"score_label,snappy"`
}

// ScoreRow is one line of ranked output, with every metric contribution as a column pair.
type ScoreRow struct {
	Rank             int32          `parquet:"rank,snappy"`
	RecipeID         int64          `parquet:"recipe_id,snappy"`
	Title            string         `parquet:"title,snappy"`
	Rating           float64        `parquet:"rating,snappy"`
	HealthScore      float64        `parquet:"health_score,snappy"`
	EnvironmentScore float64        `parquet:"environment_score,snappy"`
	FinalScore       float64        `parquet:"final_score,snappy"`
	Label            string         `parquet:"label,snappy"`
	Partial          bool           `parquet:"partial,snappy"`
	Missing          []string       `parquet:"missing,list"`
	Contributions    []KeyValueItem `parquet:"contributions"`
}

// KeyValueItem is a metric key and its value.
type KeyValueItem struct {
	Key   string  `parquet:"key,snappy,dict"`
	Value float64 `parquet:"value,snappy"`
}

// IngredientItem is one recipe ingredient with its reference-data codes.
type IngredientItem struct {
	Quantity       string `parquet:"quantity,snappy"`
	Name           string `parquet:"ingredient,snappy"`
	NevoCode       string `parquet:"nevo_code,snappy"`
	AgribalyseCode string `parquet:"agribalyse_code,snappy"`
}

// StepItem is one numbered instruction.
type StepItem struct {
	Number int32  `parquet:"number,snappy"`
	Text   string `parquet:"text,snappy"`
}

// RecipeRow is one catalog recipe. Measurements are stored as key/value items so
// the file schema does not change when a metric is added.
type RecipeRow struct {
	RecipeID        int64            `parquet:"recipe_id,snappy"`
	Title           string           `parquet:"title,snappy"`
	Rating          float64          `parquet:"rating,snappy"`
	NumberOfRatings int32            `parquet:"number_of_ratings,snappy"`
	Servings        string           `parquet:"servings,snappy"`
	Difficulty      string           `parquet:"difficulty,snappy"`
	PrepTime        string           `parquet:"prep_time,snappy"`
	CookTime        string           `parquet:"cook_time,snappy"`
	URL             string           `parquet:"url,snappy"`
	ImageURL        string           `parquet:"image_url,snappy"`
	Kcal            float64          `parquet:"kcal,snappy"`
	Ingredients     []IngredientItem `parquet:"ingredients"`
	Steps           []StepItem       `parquet:"instructions"`
	Measurements    []KeyValueItem   `parquet:"measurements"`
}

// writeParquet writes rows of any schema-tagged struct to a Parquet file.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	if err := writeRows(file, data); err != nil {
		return err
	}
	return file.Close()
}

// writeRows writes rows to any writer. The schema is derived from the struct tags.
func writeRows[T any](w io.Writer, data []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// readParquet reads every row of a Parquet file.
func readParquet[T any](inputPath string) ([]T, error) {
	file, err := os.Open(inputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer func() { _ = file.Close() }()

	reader := parquet.NewGenericReader[T](file)
	defer func() { _ = reader.Close() }()

	rows := make([]T, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read parquet rows: %w", err)
	}
	return rows[:n], nil
}

// WriteRankingRunsParquet writes a slice of RankingRun structs to a Parquet file.
func WriteRankingRunsParquet(data []RankingRun, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteRankingResultsParquet writes a slice of RankingResult structs to a Parquet file.
func WriteRankingResultsParquet(data []RankingResult, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteScoreRows writes ranked output rows to w.
func WriteScoreRows(w io.Writer, data []ScoreRow) error {
	return writeRows(w, data)
}

// WriteRecipesParquet writes catalog rows to a Parquet file.
func WriteRecipesParquet(data []RecipeRow, outputPath string) error {
	return writeParquet(data, outputPath)
}

// ReadRecipesParquet reads catalog rows from a Parquet file.
func ReadRecipesParquet(inputPath string) ([]RecipeRow, error) {
	return readParquet[RecipeRow](inputPath)
}

// ConvertRankingRunRecords converts schema.RankingRunRecord to RankingRun for Parquet export.
func ConvertRankingRunRecords(records []schema.RankingRunRecord) []RankingRun {
	result := make([]RankingRun, len(records))
	for i, record := range records {
		result[i] = RankingRun{
			RunID:           record.RunID,
			SessionID:       record.SessionID,
			StartTime:       record.StartTime,
			EndTime:         record.EndTime,
			RunDurationMs:   record.RunDurationMs,
			Prompt:          record.Prompt,
			TotalCandidates: record.TotalCandidates,
			TotalRanked:     record.TotalRanked,
			Outcome:         record.Outcome,
			ConfigParams:    record.ConfigParams,
		}
	}
	return result
}

// ConvertRankingResultRecords converts schema.RankingResultRecord to RankingResult for Parquet export.
func ConvertRankingResultRecords(records []schema.RankingResultRecord) []RankingResult {
	result := make([]RankingResult, len(records))
	for i, record := range records {
		result[i] = RankingResult(record)
	}
	return result
}

// ConvertScoreResults converts enriched results to output rows. Contributions follow catalog order.
func ConvertScoreResults(results []schema.EnrichedScoreResult) []ScoreRow {
	rows := make([]ScoreRow, len(results))
	for i, r := range results {
		contributions := make([]KeyValueItem, 0, len(r.Contributions))
		for _, m := range schema.Metrics {
			if v, ok := r.Contributions[m.Key]; ok {
				contributions = append(contributions, KeyValueItem{Key: string(m.Key), Value: v})
			}
		}
		missing := make([]string, len(r.Missing))
		for j, k := range r.Missing {
			missing[j] = string(k)
		}
		rows[i] = ScoreRow{
			Rank:             int32(r.Rank),
			RecipeID:         int64(r.RecipeID),
			Title:            r.Title,
			Rating:           r.Rating,
			HealthScore:      r.Health,
			EnvironmentScore: r.Environment,
			FinalScore:       r.Final,
			Label:            r.Label,
			Partial:          r.Partial,
			Missing:          missing,
			Contributions:    contributions,
		}
	}
	return rows
}

// RecipeToRow converts a catalog recipe to its Parquet row. Measurements follow catalog order.
func RecipeToRow(r schema.Recipe) RecipeRow {
	row := RecipeRow{
		RecipeID:        int64(r.ID),
		Title:           r.Title,
		Rating:          r.Rating,
		NumberOfRatings: int32(r.NumberOfRatings),
		Servings:        r.Servings,
		Difficulty:      r.Difficulty,
		PrepTime:        r.PrepTime,
		CookTime:        r.CookTime,
		URL:             r.URL,
		ImageURL:        r.ImageURL,
		Kcal:            r.Kcal,
	}
	for _, ing := range r.Ingredients {
		row.Ingredients = append(row.Ingredients, IngredientItem(ing))
	}
	for _, s := range r.Steps {
		row.Steps = append(row.Steps, StepItem{Number: int32(s.Number), Text: s.Text})
	}
	for _, m := range schema.Metrics {
		if v, ok := r.Measurements[m.Key]; ok {
			row.Measurements = append(row.Measurements, KeyValueItem{Key: string(m.Key), Value: v})
		}
	}
	return row
}

// RowToRecipe converts a Parquet row back to a catalog recipe.
func RowToRecipe(row RecipeRow) schema.Recipe {
	r := schema.Recipe{
		ID:              int(row.RecipeID),
		Title:           row.Title,
		Rating:          row.Rating,
		NumberOfRatings: int(row.NumberOfRatings),
		Servings:        row.Servings,
		Difficulty:      row.Difficulty,
		PrepTime:        row.PrepTime,
		CookTime:        row.CookTime,
		URL:             row.URL,
		ImageURL:        row.ImageURL,
		Kcal:            row.Kcal,
		Measurements:    make(map[schema.MetricKey]float64, len(row.Measurements)),
	}
	for _, ing := range row.Ingredients {
		r.Ingredients = append(r.Ingredients, schema.Ingredient(ing))
	}
	for _, s := range row.Steps {
		r.Steps = append(r.Steps, schema.Step{Number: int(s.Number), Text: s.Text})
	}
	for _, kv := range row.Measurements {
		r.Measurements[schema.MetricKey(kv.Key)] = kv.Value
	}
	return r
}
