// Package dataset loads the newline-delimited JSON inputs: persona training
// exemplars and stance-eliciting evaluation questions. Malformed lines and
// missing required keys are load-time errors; nothing partial is returned.
package dataset

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Exemplar is one contrastive training record for a persona.
type Exemplar struct {
	Role                   string `json:"role"`
	Question               string `json:"question"`
	HarmfulResponse        string `json:"harmful_response"`
	SafetyAnchoredResponse string `json:"safety_anchored_response"`
	RiskCategory           string `json:"risk_category"`
}

func (e Exemplar) validate() error {
	for field, value := range map[string]string{
		"role":                     e.Role,
		"question":                 e.Question,
		"harmful_response":         e.HarmfulResponse,
		"safety_anchored_response": e.SafetyAnchoredResponse,
		"risk_category":            e.RiskCategory,
	} {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("missing key %q", field)
		}
	}
	return nil
}

// EvalQuestion is one batch evaluation question. The contrastive reference
// answers are optional and default to "N/A".
type EvalQuestion struct {
	ID                     string `json:"id"`
	Category               string `json:"category"`
	Question               string `json:"question"`
	RiskType               string `json:"risk_type"`
	HarmfulResponse        string `json:"harmful_response,omitempty"`
	SafetyAnchoredResponse string `json:"safety_anchored_response,omitempty"`
}

func (q EvalQuestion) validate() error {
	for field, value := range map[string]string{
		"id":        q.ID,
		"category":  q.Category,
		"question":  q.Question,
		"risk_type": q.RiskType,
	} {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("missing key %q", field)
		}
	}
	return nil
}

// LoadExemplars reads a JSONL exemplar file. Blank lines are skipped; any
// malformed or incomplete record fails the whole load.
func LoadExemplars(path string) ([]Exemplar, error) {
	var out []Exemplar
	err := eachLine(path, func(lineNo int, line []byte) error {
		var ex Exemplar
		if err := json.Unmarshal(line, &ex); err != nil {
			return fmt.Errorf("dataset: %s line %d: %w", path, lineNo, err)
		}
		if err := ex.validate(); err != nil {
			return fmt.Errorf("dataset: %s line %d: %w", path, lineNo, err)
		}
		out = append(out, ex)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// FilterByRole returns the exemplars whose role matches, in input order.
func FilterByRole(exemplars []Exemplar, role string) []Exemplar {
	var out []Exemplar
	for _, ex := range exemplars {
		if ex.Role == role {
			out = append(out, ex)
		}
	}
	return out
}

// LoadQuestions reads a JSONL evaluation-question file and fills the "N/A"
// defaults for absent contrastive answers. Question ids must be unique
// within the batch.
func LoadQuestions(path string) ([]EvalQuestion, error) {
	var out []EvalQuestion
	seen := make(map[string]struct{})
	err := eachLine(path, func(lineNo int, line []byte) error {
		var q EvalQuestion
		if err := json.Unmarshal(line, &q); err != nil {
			return fmt.Errorf("dataset: %s line %d: %w", path, lineNo, err)
		}
		if err := q.validate(); err != nil {
			return fmt.Errorf("dataset: %s line %d: %w", path, lineNo, err)
		}
		if _, dup := seen[q.ID]; dup {
			return fmt.Errorf("dataset: %s line %d: duplicate question id %q", path, lineNo, q.ID)
		}
		seen[q.ID] = struct{}{}
		if strings.TrimSpace(q.HarmfulResponse) == "" {
			q.HarmfulResponse = "N/A"
		}
		if strings.TrimSpace(q.SafetyAnchoredResponse) == "" {
			q.SafetyAnchoredResponse = "N/A"
		}
		out = append(out, q)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func eachLine(path string, fn func(lineNo int, line []byte) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("dataset: open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := fn(lineNo, []byte(line)); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("dataset: read %s: %w", path, err)
	}
	return nil
}
