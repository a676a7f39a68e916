package mcp

import (
	"context"
	"fmt"
	"sync"

	"github.com/goccy/go-json"
	"github.com/huangsam/greenplate/core"
	"github.com/huangsam/greenplate/core/algo"
	"github.com/huangsam/greenplate/internal/contract"
	"github.com/huangsam/greenplate/internal/outwriter"
	"github.com/huangsam/greenplate/internal/telemetry"
	"github.com/huangsam/greenplate/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg  *contract.Config
	mgr      contract.CacheManager
	metrics  *telemetry.Metrics
	sessions *sessionStore

	mu   sync.Mutex
	pipe *core.Pipeline
}

// rankingPayload is the JSON answer of the ranking tools.
type rankingPayload struct {
	Results []schema.EnrichedScoreResult `json:"results"`
	Report  schema.RankReport            `json:"report"`
}

// pipeline loads the catalog on first use. A failed load is retried on the next call.
func (h *toolHandler) pipeline() (*core.Pipeline, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.pipe != nil {
		return h.pipe, nil
	}
	p, err := core.NewPipeline(h.baseCfg, h.mgr, h.metrics)
	if err != nil {
		return nil, err
	}
	h.pipe = p
	return p, nil
}

// sessionConfig clones the base config with the preferences of the requested session.
func (h *toolHandler) sessionConfig(ctx context.Context, request mcp.CallToolRequest) (context.Context, *contract.Config, error) {
	sessionID := request.GetString("session_id", "")
	prefs, err := h.sessions.get(sessionID)
	if err != nil {
		return ctx, nil, err
	}
	cfg := h.baseCfg.Clone()
	cfg.Preferences = prefs
	if l := request.GetInt("limit", 0); l > 0 {
		cfg.ResultLimit = min(l, contract.MaxResultLimit)
	}
	if sessionID != "" {
		ctx = core.WithSessionID(ctx, sessionID)
	}
	return ctx, cfg, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (h *toolHandler) handleCreateSession(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := h.sessions.create()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]string{"session_id": id})
}

func (h *toolHandler) handleDeleteSession(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := request.GetString("session_id", "")
	if err := h.sessions.delete(id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]string{"deleted": id})
}

func (h *toolHandler) handleGetWeights(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prefs, err := h.sessions.get(request.GetString("session_id", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(outwriter.NewWeightsReport(prefs))
}

func (h *toolHandler) handleSetImportance(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key := schema.MetricKey(request.GetString("metric", ""))
	level, err := schema.ParseImportance(request.GetString("importance", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if _, ok := schema.LookupMetric(key); !ok {
		return mcp.NewToolResultError(fmt.Sprintf("unknown metric '%s'", key)), nil
	}

	prefs, err := h.sessions.update(request.GetString("session_id", ""), func(p algo.Preferences) (algo.Preferences, error) {
		return p.WithImportance(key, level)
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("importance not changed: %v", err)), nil
	}
	return jsonResult(outwriter.NewWeightsReport(prefs))
}

func (h *toolHandler) handleSetSplit(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	split := request.GetInt("split", -1)
	meals := request.GetInt("meals", 0)

	prefs, err := h.sessions.update(request.GetString("session_id", ""), func(p algo.Preferences) (algo.Preferences, error) {
		next, err := p.WithSplit(split)
		if err != nil || meals == 0 {
			return next, err
		}
		return next.WithMeals(meals)
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("split not changed: %v", err)), nil
	}
	return jsonResult(outwriter.NewWeightsReport(prefs))
}

func (h *toolHandler) handleRankRecipes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, cfg, err := h.sessionConfig(ctx, request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if a := request.GetString("allergies", ""); a != "" {
		cfg.Allergies = contract.SplitList(a)
	}
	p, err := h.pipeline()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("catalog unavailable: %v", err)), nil
	}

	outcome, err := p.Rank(ctx, cfg, request.GetString("description", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("ranking failed: %v", err)), nil
	}
	return jsonResult(rankingPayload{Results: schema.EnrichResults(outcome.Results), Report: outcome.Report})
}

func (h *toolHandler) handleScoreRecipes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, cfg, err := h.sessionConfig(ctx, request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	p, err := h.pipeline()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("catalog unavailable: %v", err)), nil
	}

	outcome, err := p.Score(ctx, cfg, request.GetString("ids", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("scoring failed: %v", err)), nil
	}
	return jsonResult(rankingPayload{Results: schema.EnrichResults(outcome.Results), Report: outcome.Report})
}

func (h *toolHandler) handleShowRecipe(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	_, cfg, err := h.sessionConfig(ctx, request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	p, err := h.pipeline()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("catalog unavailable: %v", err)), nil
	}

	view, err := core.RecipeDetail(p.Catalog, cfg.Preferences, request.GetInt("id", 0))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(view)
}
