package cmd

import (
	"github.com/huangsam/greenplate/core"
	"github.com/spf13/cobra"
)

// catalogCmd groups catalog maintenance.
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the recipe catalog",
	Long: `Manage the recipe catalog used for lookups.

Subcommands:
  convert - Rewrite the catalog as Parquet`,
}

// catalogConvertCmd rewrites the catalog in another format.
var catalogConvertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert the catalog to Parquet",
	Long: `Load the catalog from --catalog and write it to --output-file as Parquet.
Parquet catalogs load faster and can be queried with standard data tools.

Examples:
  greenplate catalog convert --catalog recipes.json --output-file recipes.parquet`,
	Args:    cobra.NoArgs,
	PreRunE: configSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return core.ExecuteCatalogConvert(rootCtx, cfg)
	},
}
