// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/greenplate/internal/contract"
	"github.com/huangsam/greenplate/internal/telemetry"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Server couples the MCP server with the metrics its handlers record.
type Server struct {
	*server.MCPServer
	Metrics *telemetry.Metrics
}

// NewMCPServer initializes and configures the greenplate MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager) *Server {
	s := server.NewMCPServer(
		"Greenplate Recipe Server",
		"1.0.0",
		server.WithLogging(),
	)

	metrics := telemetry.New()
	h := &toolHandler{
		baseCfg:  baseCfg,
		mgr:      mgr,
		metrics:  metrics,
		sessions: newSessionStore(baseCfg.Preferences),
	}

	// --- 1. Tool: create_session ---
	s.AddTool(mcp.NewTool("create_session",
		mcp.WithDescription("Create a preference session seeded from the server configuration. Returns the session id."),
	), h.handleCreateSession)

	// --- 1b. Tool: delete_session ---
	s.AddTool(mcp.NewTool("delete_session",
		mcp.WithDescription("Close a preference session and free its slot."),
		mcp.WithString("session_id", mcp.Description("Session id from create_session."), mcp.Required()),
	), h.handleDeleteSession)

	// --- 2. Tool: get_weights ---
	s.AddTool(mcp.NewTool("get_weights",
		mcp.WithDescription("Show effective metric weights, importance levels and per-meal targets."),
		mcp.WithString("session_id", mcp.Description("Session id from create_session. Defaults to the server preferences.")),
	), h.handleGetWeights)

	// --- 3. Tool: set_importance ---
	s.AddTool(mcp.NewTool("set_importance",
		mcp.WithDescription("Change how much one metric matters. Weights are renormalized."),
		mcp.WithString("session_id", mcp.Description("Session id from create_session."), mcp.Required()),
		mcp.WithString("metric", mcp.Description("Metric key, e.g. protein, sugar, climate_change."), mcp.Required()),
		mcp.WithString("importance", mcp.Description("Importance level."), mcp.Required(),
			mcp.Enum("default", "somewhat", "important", "very", "exclude")),
	), h.handleSetImportance)

	// --- 4. Tool: set_split ---
	s.AddTool(mcp.NewTool("set_split",
		mcp.WithDescription("Set the environment share (0-100) of the final score and optionally the meals per day."),
		mcp.WithString("session_id", mcp.Description("Session id from create_session."), mcp.Required()),
		mcp.WithNumber("split", mcp.Description("Environment share of the final score (0-100)."), mcp.Required()),
		mcp.WithNumber("meals", mcp.Description("Meals per day.")),
	), h.handleSetSplit)

	// --- 5. Tool: rank_recipes ---
	s.AddTool(mcp.NewTool("rank_recipes",
		mcp.WithDescription("Ask the suggestion service for recipes matching a description and rank them."),
		mcp.WithString("description", mcp.Description("What the user would like to eat."), mcp.Required()),
		mcp.WithString("allergies", mcp.Description("Comma-separated allergies and intolerances.")),
		mcp.WithNumber("limit", mcp.Description("Limit the number of results returned.")),
		mcp.WithString("session_id", mcp.Description("Session id from create_session.")),
	), h.handleRankRecipes)

	// --- 6. Tool: score_recipes ---
	s.AddTool(mcp.NewTool("score_recipes",
		mcp.WithDescription("Rank an explicit comma-separated list of catalog recipe ids."),
		mcp.WithString("ids", mcp.Description("Comma-separated recipe ids."), mcp.Required()),
		mcp.WithNumber("limit", mcp.Description("Limit the number of results returned.")),
		mcp.WithString("session_id", mcp.Description("Session id from create_session.")),
	), h.handleScoreRecipes)

	// --- 7. Tool: show_recipe ---
	s.AddTool(mcp.NewTool("show_recipe",
		mcp.WithDescription("Show one recipe with its score, per-meal metric status and data provenance."),
		mcp.WithNumber("id", mcp.Description("Catalog recipe id."), mcp.Required()),
		mcp.WithString("session_id", mcp.Description("Session id from create_session.")),
	), h.handleShowRecipe)

	return &Server{MCPServer: s, Metrics: metrics}
}

// StartMCPServer starts the greenplate MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager) error {
	s := NewMCPServer(baseCfg, mgr)
	defer func() {
		if err := s.Metrics.WriteToTextfile(baseCfg.MetricsFile); err != nil {
			contract.LogWarn("Failed to write metrics file", err)
		}
	}()
	return server.ServeStdio(s.MCPServer)
}
