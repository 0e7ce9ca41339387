package prompt

import (
	"fmt"
	"strings"
)

// Render substitutes {{name}} placeholders in the template and fails if any
// placeholder is left unresolved, so a half-filled prompt can never reach a
// model.
func Render(templateText string, vars map[string]string) (string, error) {
	result := templateText
	for key, value := range vars {
		result = strings.ReplaceAll(result, "{{"+key+"}}", value)
	}

	if unresolved := findUnresolvedPlaceholders(result); len(unresolved) > 0 {
		return "", fmt.Errorf("prompt: unresolved template placeholders: %v", unresolved)
	}
	return result, nil
}

// findUnresolvedPlaceholders extracts remaining {{name}} spans for error
// reporting.
func findUnresolvedPlaceholders(text string) []string {
	var placeholders []string
	for i := 0; i+1 < len(text); i++ {
		if text[i:i+2] != "{{" {
			continue
		}
		for j := i + 2; j+1 < len(text); j++ {
			if text[j:j+2] == "}}" {
				placeholders = append(placeholders, text[i:j+2])
				i = j + 1
				break
			}
		}
	}
	return placeholders
}
