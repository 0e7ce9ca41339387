package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderFillsAllPlaceholders(t *testing.T) {
	out, err := Render(TrainingTemplate, map[string]string{
		"role":                     "State Regulator",
		"question":                 "Q",
		"harmful_response":         "H",
		"safety_anchored_response": "S",
		"risk_category":            "R",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "trained to respond as State Regulator")
	assert.Contains(t, out, "Risk Category: R")
	assert.NotContains(t, out, "{{")
}

func TestRenderFailsOnUnresolvedPlaceholder(t *testing.T) {
	_, err := Render(EvaluationTemplate, map[string]string{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "{{question}}")
}

func TestRenderReportsEveryMissingPlaceholder(t *testing.T) {
	_, err := Render("{{a}} and {{b}}", map[string]string{"a": "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "{{b}}")
	assert.NotContains(t, err.Error(), "{{a}}")
}

func TestRenderAllowsEmptyValues(t *testing.T) {
	out, err := Render("before {{gap}} after", map[string]string{"gap": ""})
	require.NoError(t, err)
	assert.Equal(t, "before  after", out)
}

func TestRoleSystemPromptKnownRoles(t *testing.T) {
	for _, role := range Roles() {
		t.Run(role, func(t *testing.T) {
			p := RoleSystemPrompt(role)
			assert.True(t, strings.Contains(p, "Maintain role fidelity"), "prompt for %s should demand role fidelity", role)
		})
	}
}

func TestRoleSystemPromptUnknownRoleFallsBack(t *testing.T) {
	p := RoleSystemPrompt("Labor Union")
	assert.Contains(t, p, "Labor Union")
}
