// Package catalog loads recipe catalogs into memory and converts them between formats.
package catalog

import (
	"errors"
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"github.com/huangsam/greenplate/internal/contract"
	"github.com/huangsam/greenplate/internal/parquet"
	"github.com/huangsam/greenplate/schema"
)

// ErrUnsupportedFormat is returned for catalog files with an unknown extension.
var ErrUnsupportedFormat = errors.New("unsupported catalog format")

// Memory is an in-memory catalog keyed by recipe id.
type Memory struct {
	recipes map[int]schema.Recipe
}

var _ contract.Catalog = (*Memory)(nil)

// NewMemory builds a catalog from recipes. Duplicate ids are rejected.
func NewMemory(recipes []schema.Recipe) (*Memory, error) {
	m := &Memory{recipes: make(map[int]schema.Recipe, len(recipes))}
	for _, r := range recipes {
		if _, dup := m.recipes[r.ID]; dup {
			return nil, fmt.Errorf("duplicate recipe id %d", r.ID)
		}
		m.recipes[r.ID] = r
	}
	return m, nil
}

// Get returns the recipe with the given id.
func (m *Memory) Get(id int) (schema.Recipe, bool) {
	r, ok := m.recipes[id]
	return r, ok
}

// Len returns the number of recipes.
func (m *Memory) Len() int {
	return len(m.recipes)
}

// IDs returns every recipe id in ascending order.
func (m *Memory) IDs() []int {
	return slices.Sorted(maps.Keys(m.recipes))
}

// Recipes returns every recipe ordered by id.
func (m *Memory) Recipes() []schema.Recipe {
	ids := m.IDs()
	out := make([]schema.Recipe, len(ids))
	for i, id := range ids {
		out[i] = m.recipes[id]
	}
	return out
}

// Load reads a catalog file, picking the format from its extension (.csv, .json, .parquet).
func Load(path string) (*Memory, error) {
	if path == "" {
		return nil, errors.New("no catalog configured: set --catalog")
	}
	var (
		recipes []schema.Recipe
		err     error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		recipes, err = LoadCSV(path)
	case ".json":
		recipes, err = LoadJSON(path)
	case ".parquet":
		recipes, err = LoadParquet(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return nil, fmt.Errorf("loading catalog %s: %w", path, err)
	}
	contract.LogDebug("catalog loaded", "path", path, "recipes", len(recipes))
	return NewMemory(recipes)
}

// LoadParquet reads a catalog written by ConvertToParquet.
func LoadParquet(path string) ([]schema.Recipe, error) {
	rows, err := parquet.ReadRecipesParquet(path)
	if err != nil {
		return nil, err
	}
	recipes := make([]schema.Recipe, len(rows))
	for i, row := range rows {
		recipes[i] = parquet.RowToRecipe(row)
	}
	return recipes, nil
}

// ConvertToParquet writes the catalog to a Parquet file ordered by recipe id.
func ConvertToParquet(m *Memory, outputPath string) error {
	recipes := m.Recipes()
	rows := make([]parquet.RecipeRow, len(recipes))
	for i, r := range recipes {
		rows[i] = parquet.RecipeToRow(r)
	}
	return parquet.WriteRecipesParquet(rows, outputPath)
}
