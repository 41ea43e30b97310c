package export

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"tabcast/internal/validate"
	"tabcast/pkg/schema"
)

func TestBuildNormalizesWeights(t *testing.T) {
	env := Build(nil, nil, schema.Weights{PriorityLevel: 2, TaskFulfillment: 2})
	assert.Equal(t, Version, env.Version)
	assert.InDelta(t, 0.5, env.Weights.PriorityLevel, 1e-9)
	assert.InDelta(t, 0.5, env.Weights.TaskFulfillment, 1e-9)
	assert.Zero(t, env.Weights.Fairness)
}

func TestEnvelopeRoundTrip(t *testing.T) {
	report := &validate.Report{
		Findings: []schema.Finding{{
			Kind:     schema.FindingSuccess,
			Category: "Validation",
			Message:  "All critical checks passed",
			Severity: schema.SeverityLow,
		}},
		Passed: true,
	}
	rules := []schema.Rule{{
		ID:         "RULE-abc",
		Type:       schema.RuleLoadLimit,
		Name:       "Load limit: Backend (max 2 per phase)",
		Parameters: schema.LoadLimitParams{WorkerGroup: "Backend", MaxSlotsPerPhase: 2},
		Priority:   1,
		Enabled:    true,
	}}

	env := Build(report, rules, schema.DefaultWeights())

	jsonOut, err := env.JSON()
	require.NoError(t, err)
	var fromJSON Envelope
	require.NoError(t, json.Unmarshal(jsonOut, &fromJSON))
	require.Len(t, fromJSON.Rules, 1)
	assert.Equal(t, schema.LoadLimitParams{WorkerGroup: "Backend", MaxSlotsPerPhase: 2}, fromJSON.Rules[0].Parameters)
	assert.True(t, fromJSON.Summary.Passed)

	yamlOut, err := env.YAML()
	require.NoError(t, err)
	var fromYAML Envelope
	require.NoError(t, yaml.Unmarshal(yamlOut, &fromYAML))
	require.Len(t, fromYAML.Rules, 1)
	assert.Equal(t, "RULE-abc", fromYAML.Rules[0].ID)
}
