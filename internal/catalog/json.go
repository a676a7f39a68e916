package catalog

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/huangsam/greenplate/schema"
)

// LoadJSON reads an array of recipes. Measurements are keyed by metric key.
func LoadJSON(path string) ([]schema.Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var recipes []schema.Recipe
	if err := json.Unmarshal(data, &recipes); err != nil {
		return nil, fmt.Errorf("decoding recipes: %w", err)
	}
	for i := range recipes {
		for key := range recipes[i].Measurements {
			if _, ok := schema.LookupMetric(key); !ok {
				return nil, fmt.Errorf("recipe %d: unknown metric '%s'", recipes[i].ID, key)
			}
		}
	}
	return recipes, nil
}
