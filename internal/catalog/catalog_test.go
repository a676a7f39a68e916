package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/huangsam/greenplate/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const recipesCSV = `recipe_id,Title,Rating,Number_of_ratings,Servings,Difficulty,Prep_time,Cook_time,Url,Image_url,kcal,Ingredients,Instructions,protein,carbs,Total - Co2 eq
12,Lentil soup,4.5,120,4,Easy,10 mins,30 mins,https://example.com/12,,350,"[{""quantity"":""200g"",""ingredient"":""red lentils""}]","[{""1"":""Rinse lentils""},{""2"":""Simmer""}]",18.5,45,0.4
7,Pasta bake,3.9,40,2,Medium,,,,,610,,,22,,abc
`

const ingredientsCSV = `recipe_id,quantity,ingredient,NEVO Code,Agribalyse Code
12,200g,red lentils,1234,20501
12,1,onion,nan,
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadRecipesCSV(t *testing.T) {
	recipes, err := ReadRecipesCSV(strings.NewReader(recipesCSV))
	require.NoError(t, err)
	require.Len(t, recipes, 2)

	soup := recipes[0]
	assert.Equal(t, 12, soup.ID)
	assert.Equal(t, "Lentil soup", soup.Title)
	assert.InDelta(t, 4.5, soup.Rating, 1e-9)
	assert.Equal(t, 120, soup.NumberOfRatings)
	assert.Equal(t, "4", soup.Servings)
	assert.InDelta(t, 350, soup.Kcal, 1e-9)
	assert.Equal(t, []schema.Ingredient{{Quantity: "200g", Name: "red lentils"}}, soup.Ingredients)
	assert.Equal(t, []schema.Step{{Number: 1, Text: "Rinse lentils"}, {Number: 2, Text: "Simmer"}}, soup.Steps)

	v, ok := soup.Measurement("protein")
	assert.True(t, ok)
	assert.InDelta(t, 18.5, v, 1e-9)
	v, ok = soup.Measurement("climate_change")
	assert.True(t, ok)
	assert.InDelta(t, 0.4, v, 1e-9)
	_, ok = soup.Measurement("fat")
	assert.False(t, ok, "absent column is missing")

	bake := recipes[1]
	_, ok = bake.Measurement("carbohydrates")
	assert.False(t, ok, "empty cell is missing")
	_, ok = bake.Measurement("climate_change")
	assert.False(t, ok, "non-numeric cell is missing")
	assert.Empty(t, bake.Steps)
}

func TestReadRecipesCSVErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"empty", "", "reading header"},
		{"no id column", "Title\nSoup\n", "missing required column 'recipe_id'"},
		{"bad id", "recipe_id,Title\nx,Soup\n", "line 2: invalid recipe id"},
		{"bad ingredients", "recipe_id,Ingredients\n1,\"[{'quantity': '1'}]\"\n", "invalid ingredients"},
		{"bad step number", "recipe_id,Instructions\n1,\"[{\"\"first\"\":\"\"Chop\"\"}]\"\n", "invalid step number"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadRecipesCSV(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseStepsObjectForm(t *testing.T) {
	steps, err := parseSteps(`[{"number": 2, "text": "Bake"}, {"text": "Serve"}]`)
	require.NoError(t, err)
	assert.Equal(t, []schema.Step{{Number: 2, Text: "Bake"}, {Number: 2, Text: "Serve"}}, steps)
}

func TestLoadCSVWithIngredientProvenance(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "recipes.csv", recipesCSV)
	writeFile(t, dir, "recipes_ingredients.csv", ingredientsCSV)

	recipes, err := LoadCSV(path)
	require.NoError(t, err)
	require.Len(t, recipes, 2)

	assert.Equal(t, []schema.Ingredient{
		{Quantity: "200g", Name: "red lentils", NevoCode: "1234", AgribalyseCode: "20501"},
		{Quantity: "1", Name: "onion"},
	}, recipes[0].Ingredients)
	prov := recipes[0].Provenance()
	assert.Equal(t, []string{"1 onion"}, prov.MissingNutrition)
	assert.Equal(t, []string{"1 onion"}, prov.MissingEnvironment)

	assert.Empty(t, recipes[1].Ingredients, "recipes without provenance rows keep their own list")
}

func TestIngredientsPath(t *testing.T) {
	assert.Equal(t, "data/recipes_ingredients.csv", IngredientsPath("data/recipes.csv"))
}

func TestLoadDispatch(t *testing.T) {
	dir := t.TempDir()

	_, err := Load("")
	assert.Error(t, err)

	_, err = Load(writeFile(t, dir, "recipes.txt", "x"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	m, err := Load(writeFile(t, dir, "recipes.csv", recipesCSV))
	require.NoError(t, err)
	assert.Equal(t, 2, m.Len())
	assert.Equal(t, []int{7, 12}, m.IDs())

	jsonPath := writeFile(t, dir, "recipes.json", `[{"recipe_id": 5, "title": "Salad", "measurements": {"protein": 9}}]`)
	m, err = Load(jsonPath)
	require.NoError(t, err)
	r, ok := m.Get(5)
	require.True(t, ok)
	assert.Equal(t, "Salad", r.Title)
}

func TestLoadJSONRejectsUnknownMetric(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "recipes.json", `[{"recipe_id": 5, "measurements": {"umami": 1}}]`)
	_, err := LoadJSON(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "umami")
}

func TestNewMemoryRejectsDuplicates(t *testing.T) {
	_, err := NewMemory([]schema.Recipe{{ID: 1}, {ID: 1}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate recipe id 1")
}

func TestMemoryGet(t *testing.T) {
	m, err := NewMemory([]schema.Recipe{{ID: 3, Title: "C"}, {ID: 1, Title: "A"}})
	require.NoError(t, err)

	r, ok := m.Get(3)
	assert.True(t, ok)
	assert.Equal(t, "C", r.Title)
	_, ok = m.Get(99)
	assert.False(t, ok)

	recipes := m.Recipes()
	require.Len(t, recipes, 2)
	assert.Equal(t, "A", recipes[0].Title)
}

func TestConvertToParquetRoundTrip(t *testing.T) {
	recipes, err := ReadRecipesCSV(strings.NewReader(recipesCSV))
	require.NoError(t, err)
	m, err := NewMemory(recipes)
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "recipes.parquet")
	require.NoError(t, ConvertToParquet(m, out))

	loaded, err := Load(out)
	require.NoError(t, err)
	assert.Equal(t, m.IDs(), loaded.IDs())

	soup, ok := loaded.Get(12)
	require.True(t, ok)
	assert.Equal(t, recipes[0].Steps, soup.Steps)
	v, ok := soup.Measurement("protein")
	assert.True(t, ok)
	assert.InDelta(t, 18.5, v, 1e-9)
}
