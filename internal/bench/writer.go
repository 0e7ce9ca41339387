package bench

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// OutputFilename derives the report filename from the role, replacing spaces
// with underscores. Untrained runs get a distinguishing suffix so the two
// modes never overwrite each other.
func OutputFilename(role string, promptOnly bool) string {
	name := "evaluation_results_" + strings.ReplaceAll(role, " ", "_")
	if promptOnly {
		name += "_prompt_only"
	}
	return name + ".json"
}

// WriteResults renders the batch result as indented JSON under dir and
// returns the written path.
func WriteResults(dir string, result BatchResult, promptOnly bool) (string, error) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("bench: marshal results: %w", err)
	}

	path := filepath.Join(dir, OutputFilename(result.Role, promptOnly))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("bench: write results: %w", err)
	}
	return path, nil
}
