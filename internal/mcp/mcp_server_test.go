package mcp_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/huangsam/greenplate/core/algo"
	"github.com/huangsam/greenplate/internal/contract"
	mcp_internal "github.com/huangsam/greenplate/internal/mcp"
	"github.com/huangsam/greenplate/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogJSON = `[
  {"recipe_id": 12, "title": "Lentil Soup", "measurements": {"protein": 30, "sugar": 5, "climate_change": 0.2}},
  {"recipe_id": 7, "title": "Sugar Pie", "measurements": {"sugar": 40, "climate_change": 0.9}}
]`

func newTestServer(t *testing.T) *mcp_internal.Server {
	t.Helper()
	path := filepath.Join(t.TempDir(), "recipes.json")
	require.NoError(t, os.WriteFile(path, []byte(catalogJSON), 0o644))

	baseCfg := &contract.Config{
		CatalogPath:   path,
		Preferences:   algo.DefaultPreferences(),
		MissingPolicy: schema.PartialPolicy,
		ResultLimit:   10,
		SuggestIDs:    "12, 99, abc, 7",
	}
	// A nil manager disables caching and history
	return mcp_internal.NewMCPServer(baseCfg, nil)
}

func call(t *testing.T, s *mcp_internal.Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	tool := s.GetTool(name)
	require.NotNil(t, tool, "Tool %s should exist", name)

	res, err := tool.Handler(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: name, Arguments: args},
	})
	require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
	require.NotEmpty(t, res.Content)
	return res
}

func text(res *mcp.CallToolResult) string {
	return res.Content[0].(mcp.TextContent).Text
}

func createSession(t *testing.T, s *mcp_internal.Server) string {
	t.Helper()
	res := call(t, s, "create_session", nil)
	require.False(t, res.IsError)
	var payload map[string]string
	require.NoError(t, json.Unmarshal([]byte(text(res)), &payload))
	require.NotEmpty(t, payload["session_id"])
	return payload["session_id"]
}

func TestMCPServerRankRecipes(t *testing.T) {
	s := newTestServer(t)

	res := call(t, s, "rank_recipes", map[string]any{"description": "a warm soup", "limit": 1.0})
	require.False(t, res.IsError, text(res))

	var payload struct {
		Results []schema.EnrichedScoreResult `json:"results"`
		Report  schema.RankReport            `json:"report"`
	}
	require.NoError(t, json.Unmarshal([]byte(text(res)), &payload))
	require.Len(t, payload.Results, 1)
	assert.Equal(t, 12, payload.Results[0].RecipeID)
	assert.Equal(t, []int{99}, payload.Report.CatalogMisses)
	assert.Equal(t, []string{"abc"}, payload.Report.Unparseable)
}

func TestMCPServerScoreAndShow(t *testing.T) {
	s := newTestServer(t)

	res := call(t, s, "score_recipes", map[string]any{"ids": "7"})
	require.False(t, res.IsError, text(res))
	assert.Contains(t, text(res), "Sugar Pie")

	res = call(t, s, "score_recipes", map[string]any{"ids": "404"})
	assert.True(t, res.IsError)
	assert.Contains(t, text(res), "none present in catalog")

	res = call(t, s, "show_recipe", map[string]any{"id": 12.0})
	require.False(t, res.IsError, text(res))
	assert.Contains(t, text(res), "\"metrics\"")
	assert.Contains(t, text(res), "Lentil Soup")

	res = call(t, s, "show_recipe", map[string]any{"id": 404.0})
	assert.True(t, res.IsError)
}

func TestMCPServerSessions(t *testing.T) {
	s := newTestServer(t)
	first := createSession(t, s)
	second := createSession(t, s)
	assert.NotEqual(t, first, second)

	res := call(t, s, "set_importance", map[string]any{"session_id": first, "metric": "protein", "importance": "very"})
	require.False(t, res.IsError, text(res))

	weightOf := func(session string) float64 {
		res := call(t, s, "get_weights", map[string]any{"session_id": session})
		require.False(t, res.IsError, text(res))
		var report struct {
			Metrics []schema.WeightRow `json:"metrics"`
		}
		require.NoError(t, json.Unmarshal([]byte(text(res)), &report))
		for _, row := range report.Metrics {
			if row.Key == "protein" {
				return row.Effective
			}
		}
		t.Fatal("protein missing from weights")
		return 0
	}

	assert.Greater(t, weightOf(first), weightOf(second), "sessions must not share preferences")
}

func TestMCPServerDeleteSession(t *testing.T) {
	s := newTestServer(t)

	t.Run("deleted session is unknown", func(t *testing.T) {
		session := createSession(t, s)
		res := call(t, s, "delete_session", map[string]any{"session_id": session})
		require.False(t, res.IsError, text(res))

		res = call(t, s, "get_weights", map[string]any{"session_id": session})
		assert.True(t, res.IsError)
		assert.Contains(t, text(res), "unknown session")

		res = call(t, s, "delete_session", map[string]any{"session_id": session})
		assert.True(t, res.IsError)
	})

	t.Run("session count is capped", func(t *testing.T) {
		s := newTestServer(t)
		var last string
		for range mcp_internal.MaxSessions {
			last = createSession(t, s)
		}
		res := call(t, s, "create_session", nil)
		assert.True(t, res.IsError)
		assert.Contains(t, text(res), "session limit")

		res = call(t, s, "delete_session", map[string]any{"session_id": last})
		require.False(t, res.IsError, text(res))
		createSession(t, s)
	})
}

func TestMCPServerValidationErrors(t *testing.T) {
	s := newTestServer(t)
	session := createSession(t, s)

	t.Run("unknown session", func(t *testing.T) {
		res := call(t, s, "get_weights", map[string]any{"session_id": "nope"})
		assert.True(t, res.IsError)
		assert.Contains(t, text(res), "unknown session")
	})

	t.Run("unknown metric", func(t *testing.T) {
		res := call(t, s, "set_importance", map[string]any{"session_id": session, "metric": "umami", "importance": "very"})
		assert.True(t, res.IsError)
		assert.Contains(t, text(res), "unknown metric")
	})

	t.Run("invalid importance", func(t *testing.T) {
		res := call(t, s, "set_importance", map[string]any{"session_id": session, "metric": "protein", "importance": "extreme"})
		assert.True(t, res.IsError)
		assert.Contains(t, text(res), "invalid importance")
	})

	t.Run("split out of range keeps previous snapshot", func(t *testing.T) {
		res := call(t, s, "set_split", map[string]any{"session_id": session, "split": 80.0})
		require.False(t, res.IsError, text(res))

		res = call(t, s, "set_split", map[string]any{"session_id": session, "split": 150.0})
		assert.True(t, res.IsError)
		assert.Contains(t, text(res), "split not changed")

		res = call(t, s, "get_weights", map[string]any{"session_id": session})
		assert.Contains(t, text(res), `"environment_share": 80`)
	})

	t.Run("excluding every environment metric fails atomically", func(t *testing.T) {
		for _, m := range schema.MetricsIn(schema.EnvironmentCategory)[1:] {
			res := call(t, s, "set_importance", map[string]any{"session_id": session, "metric": string(m.Key), "importance": "exclude"})
			require.False(t, res.IsError, text(res))
		}
		res := call(t, s, "set_importance", map[string]any{"session_id": session, "metric": "climate_change", "importance": "exclude"})
		assert.True(t, res.IsError)

		res = call(t, s, "get_weights", map[string]any{"session_id": session})
		assert.Contains(t, text(res), `"importance": "default"`)
	})

	t.Run("missing description", func(t *testing.T) {
		res := call(t, s, "rank_recipes", map[string]any{"description": ""})
		assert.True(t, res.IsError)
		assert.Contains(t, text(res), "description is required")
	})
}
