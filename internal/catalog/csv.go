package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/huangsam/greenplate/schema"
)

// Display columns of the recipes CSV.
const (
	colID              = "recipe_id"
	colTitle           = "Title"
	colRating          = "Rating"
	colNumberOfRatings = "Number_of_ratings"
	colServings        = "Servings"
	colDifficulty      = "Difficulty"
	colPrepTime        = "Prep_time"
	colCookTime        = "Cook_time"
	colURL             = "Url"
	colImageURL        = "Image_url"
	colKcal            = "kcal"
	colIngredients     = "Ingredients"
	colInstructions    = "Instructions"
)

// Columns of the ingredient provenance CSV.
const (
	colQuantity       = "quantity"
	colIngredient     = "ingredient"
	colNevoCode       = "NEVO Code"
	colAgribalyseCode = "Agribalyse Code"
)

// IngredientsPath returns the provenance file that sits next to a recipes CSV.
func IngredientsPath(recipesPath string) string {
	return strings.TrimSuffix(recipesPath, ".csv") + "_ingredients.csv"
}

// LoadCSV reads a recipes CSV. When a sibling *_ingredients.csv exists, its rows
// replace each recipe's ingredient list and carry the reference-data codes.
func LoadCSV(path string) ([]schema.Recipe, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	recipes, err := ReadRecipesCSV(f)
	if err != nil {
		return nil, err
	}

	ing, err := os.Open(IngredientsPath(path))
	if errors.Is(err, os.ErrNotExist) {
		return recipes, nil
	}
	if err != nil {
		return nil, err
	}
	defer func() { _ = ing.Close() }()

	byRecipe, err := ReadIngredientsCSV(ing)
	if err != nil {
		return nil, fmt.Errorf("reading ingredient provenance: %w", err)
	}
	for i := range recipes {
		if items, ok := byRecipe[recipes[i].ID]; ok {
			recipes[i].Ingredients = items
		}
	}
	return recipes, nil
}

// header maps column names to their index.
type header map[string]int

func newHeader(row []string) header {
	h := make(header, len(row))
	for i, name := range row {
		h[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	return h
}

// cell returns the trimmed value of a column, or "" when the column is absent.
func (h header) cell(record []string, name string) string {
	i, ok := h[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// number parses a numeric cell. Empty and non-numeric cells report false.
func (h header) number(record []string, name string) (float64, bool) {
	v, err := strconv.ParseFloat(h.cell(record, name), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ReadRecipesCSV parses recipes from CSV. Measurement cells that are empty or
// non-numeric are left out so the recipe reports them as missing.
func ReadRecipesCSV(r io.Reader) ([]schema.Recipe, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	first, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	h := newHeader(first)
	if _, ok := h[colID]; !ok {
		return nil, fmt.Errorf("missing required column '%s'", colID)
	}

	var recipes []schema.Recipe
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		recipe, err := parseRecipe(h, record)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		recipes = append(recipes, recipe)
	}
	return recipes, nil
}

func parseRecipe(h header, record []string) (schema.Recipe, error) {
	id, err := strconv.Atoi(h.cell(record, colID))
	if err != nil {
		return schema.Recipe{}, fmt.Errorf("invalid recipe id: %w", err)
	}
	r := schema.Recipe{
		ID:           id,
		Title:        h.cell(record, colTitle),
		Servings:     h.cell(record, colServings),
		Difficulty:   h.cell(record, colDifficulty),
		PrepTime:     h.cell(record, colPrepTime),
		CookTime:     h.cell(record, colCookTime),
		URL:          h.cell(record, colURL),
		ImageURL:     h.cell(record, colImageURL),
		Measurements: make(map[schema.MetricKey]float64),
	}
	r.Rating, _ = h.number(record, colRating)
	if n, ok := h.number(record, colNumberOfRatings); ok {
		r.NumberOfRatings = int(n)
	}
	r.Kcal, _ = h.number(record, colKcal)

	for _, m := range schema.Metrics {
		if v, ok := h.number(record, m.Column); ok {
			r.Measurements[m.Key] = v
		}
	}

	if raw := h.cell(record, colIngredients); raw != "" {
		if err := json.Unmarshal([]byte(raw), &r.Ingredients); err != nil {
			return schema.Recipe{}, fmt.Errorf("recipe %d: invalid ingredients: %w", id, err)
		}
	}
	if raw := h.cell(record, colInstructions); raw != "" {
		steps, err := parseSteps(raw)
		if err != nil {
			return schema.Recipe{}, fmt.Errorf("recipe %d: invalid instructions: %w", id, err)
		}
		r.Steps = steps
	}
	return r, nil
}

// parseSteps accepts [{"1": "Chop"}, ...] as well as [{"number": 1, "text": "Chop"}, ...].
func parseSteps(raw string) ([]schema.Step, error) {
	var items []map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, err
	}
	steps := make([]schema.Step, 0, len(items))
	for i, item := range items {
		if text, ok := item["text"]; ok {
			var s schema.Step
			if err := json.Unmarshal(text, &s.Text); err != nil {
				return nil, fmt.Errorf("step %d: %w", i+1, err)
			}
			if num, ok := item["number"]; ok {
				if err := json.Unmarshal(num, &s.Number); err != nil {
					return nil, fmt.Errorf("step %d: %w", i+1, err)
				}
			} else {
				s.Number = i + 1
			}
			steps = append(steps, s)
			continue
		}
		if len(item) != 1 {
			return nil, fmt.Errorf("step %d: expected a single numbered entry", i+1)
		}
		for key, value := range item {
			n, err := strconv.Atoi(strings.TrimSpace(key))
			if err != nil {
				return nil, fmt.Errorf("step %d: invalid step number '%s'", i+1, key)
			}
			var text string
			if err := json.Unmarshal(value, &text); err != nil {
				return nil, fmt.Errorf("step %d: %w", i+1, err)
			}
			steps = append(steps, schema.Step{Number: n, Text: text})
		}
	}
	return steps, nil
}

// ReadIngredientsCSV parses ingredient provenance rows grouped by recipe id, in file order.
func ReadIngredientsCSV(r io.Reader) (map[int][]schema.Ingredient, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	first, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	h := newHeader(first)
	for _, col := range []string{colID, colIngredient} {
		if _, ok := h[col]; !ok {
			return nil, fmt.Errorf("missing required column '%s'", col)
		}
	}

	out := make(map[int][]schema.Ingredient)
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		id, err := strconv.Atoi(h.cell(record, colID))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid recipe id: %w", line, err)
		}
		out[id] = append(out[id], schema.Ingredient{
			Quantity:       h.cell(record, colQuantity),
			Name:           h.cell(record, colIngredient),
			NevoCode:       normalizeCode(h.cell(record, colNevoCode)),
			AgribalyseCode: normalizeCode(h.cell(record, colAgribalyseCode)),
		})
	}
	return out, nil
}

// normalizeCode treats spreadsheet null markers as missing codes.
func normalizeCode(code string) string {
	switch strings.ToLower(code) {
	case "nan", "null", "none", "n/a":
		return ""
	}
	return code
}
