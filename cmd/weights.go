package cmd

import (
	"github.com/huangsam/greenplate/core"
	"github.com/spf13/cobra"
)

// weightsCmd prints the effective metric weights.
var weightsCmd = &cobra.Command{
	Use:   "weights",
	Short: "Show effective metric weights and per-meal targets",
	Long: `Show how the configured importance levels, split and meals per day turn
into effective weights and per-meal targets for every metric.

Importance levels are set in the config file:

  importance:
    protein: very
    sugar: important
    land_use: exclude

Examples:
  greenplate weights
  greenplate weights --split 70 --meals 4 --output csv`,
	Args:    cobra.NoArgs,
	PreRunE: configSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return core.ExecuteWeights(rootCtx, cfg)
	},
}
