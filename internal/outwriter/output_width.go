package outwriter

import (
	"os"

	"github.com/huangsam/greenplate/internal/contract"
	"golang.org/x/term"
)

// terminalWidth returns the width override or the detected terminal width.
func terminalWidth(cfg *contract.Config) int {
	if cfg.Width > 0 {
		return cfg.Width
	}
	detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || detectedWidth <= 0 {
		return 80 // Conservative default for narrow terminals and CI
	}
	return detectedWidth
}

// getMaxTableTitleWidth calculates the maximum width for recipe titles in table output
// based on terminal width and the fixed score columns.
func getMaxTableTitleWidth(cfg *contract.Config) int {
	// Rank + ID + Health + Env + Final + Label with borders/padding
	baseWidth := 60

	available := terminalWidth(cfg) - baseWidth
	if available < 15 {
		return 15
	}
	if available > 60 {
		return 60
	}
	return available
}
