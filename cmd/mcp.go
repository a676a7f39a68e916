package cmd

import (
	"github.com/huangsam/greenplate/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the greenplate MCP server",
	Long: `Launch an MCP server on stdio that lets AI agents rank recipes, inspect
weights and keep per-session preferences through standard tools.`,
	Args: cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// stdout carries the protocol, so setup must only log to stderr.
		return sharedSetup(rootCtx, cmd, args)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, cacheManager)
	},
}
