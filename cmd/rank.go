package cmd

import (
	"strings"

	"github.com/huangsam/greenplate/core"
	"github.com/spf13/cobra"
)

// rankCmd asks the suggestion service for candidates and ranks them.
var rankCmd = &cobra.Command{
	Use:   "rank <description>",
	Short: "Suggest and rank recipes for a meal description",
	Long: `Send a meal description to the recipe suggestion service, look up every
suggested id in the catalog and rank the matches by health and environmental impact.

Suggestions are cached by prompt so repeated descriptions skip the service.

Examples:
  # Rank suggestions for a description
  greenplate rank "something warm with lentils"

  # Pass allergies and favour the environment
  greenplate rank --allergies "peanut, gluten" --split 80 "quick lunch"

  # Export the ranking for later analysis
  greenplate rank --output json --output-file ranking.json "pasta"`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, args []string) error {
		return core.ExecuteRank(rootCtx, cfg, cacheManager, strings.Join(args, " "))
	},
}
