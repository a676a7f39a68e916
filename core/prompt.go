package core

import (
	"fmt"
	"strings"
)

// BuildPrompt turns a recipe description into the suggestion prompt.
// The allergy clause is added only when allergies are given.
func BuildPrompt(description string, allergies []string) string {
	prompt := strings.TrimRight(strings.TrimSpace(description), ".")
	var kept []string
	for _, a := range allergies {
		if a = strings.TrimSpace(a); a != "" {
			kept = append(kept, a)
		}
	}
	if len(kept) == 0 {
		return prompt
	}
	return fmt.Sprintf("%s. Please exclude any recipes containing ingredients I'm allergic or intolerant to. "+
		"Allergies & Intolerances: %s, Make sure the recipes are completely free from these, "+
		"including hidden or derivative ingredients.", prompt, strings.Join(kept, ", "))
}
