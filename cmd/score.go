package cmd

import (
	"strings"

	"github.com/huangsam/greenplate/core"
	"github.com/spf13/cobra"
)

// scoreCmd ranks an explicit list of catalog ids without asking the suggestion service.
var scoreCmd = &cobra.Command{
	Use:   "score <id>[,<id>...]",
	Short: "Rank an explicit list of catalog recipe ids",
	Long: `Rank recipe ids taken straight from the catalog. Ids may be given as separate
arguments or as one comma-separated list. Entries that are not integers are
reported and ignored.

Examples:
  greenplate score 12,7,31
  greenplate score 12 7 31 --missing-policy exclude`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, args []string) error {
		return core.ExecuteScore(rootCtx, cfg, cacheManager, strings.Join(args, ","))
	},
}
