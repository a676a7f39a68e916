package cmd

import (
	"runtime"

	"github.com/huangsam/greenplate/internal/contract"
	"github.com/spf13/cobra"
)

// versionCmd shows the verbose version for diagnostic purposes.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of greenplate.",
	Long: `Display version information including build details and the default
locations of the local SQLite stores.

Useful when reporting bugs or checking which cache file a run is using.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("greenplate CLI\n")
		cmd.Printf("  Version: %s\n", version)
		cmd.Printf("  Commit:  %s\n", commit)
		cmd.Printf("  Built:   %s\n", date)
		cmd.Printf("  Runtime: %s\n", runtime.Version())
		cmd.Printf("  Cache:   %s\n", contract.GetCacheDBFilePath())
		cmd.Printf("  History: %s\n", contract.GetHistoryDBFilePath())
	},
}
