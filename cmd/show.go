package cmd

import (
	"fmt"
	"strconv"

	"github.com/huangsam/greenplate/core"
	"github.com/spf13/cobra"
)

// showCmd prints one recipe with its per-meal metric status.
var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one recipe with its score and metric bars",
	Long: `Show a single catalog recipe: ingredients, steps, score, one bar per
metric against the per-meal target, and which ingredients lack reference data.

Examples:
  greenplate show 12
  greenplate show 12 --meals 4 --output json`,
	Args:    cobra.ExactArgs(1),
	PreRunE: configSetupWrapper,
	RunE: func(_ *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid recipe id %q", args[0])
		}
		return core.ExecuteShow(rootCtx, cfg, id)
	},
}
