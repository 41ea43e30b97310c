package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabcast/pkg/schema"
)

func ruleDataset() *schema.Dataset {
	clients := schema.NewCollection(schema.KindClients)
	clients.Records = append(clients.Records, schema.Record{
		schema.FieldClientID: schema.Text("C1"),
		schema.FieldGroupTag: schema.Text("Alpha"),
	})

	workers := schema.NewCollection(schema.KindWorkers)
	workers.Records = append(workers.Records, schema.Record{
		schema.FieldWorkerID:    schema.Text("W1"),
		schema.FieldWorkerGroup: schema.Text("Backend"),
	})

	tasks := schema.NewCollection(schema.KindTasks)
	for _, tt := range []struct {
		id     string
		phases string
	}{
		{"T1", "[1,2]"},
		{"T2", "[2,3]"},
		{"T3", "[5]"},
	} {
		tasks.Records = append(tasks.Records, schema.Record{
			schema.FieldTaskID:          schema.Text(tt.id),
			schema.FieldPreferredPhases: schema.Text(tt.phases),
		})
	}

	return schema.NewDataset(clients, workers, tasks)
}

func TestConvertCoRun(t *testing.T) {
	parsed := Convert("Tasks T1 and T2 must run together in the same phase", ruleDataset())
	require.NotNil(t, parsed)
	assert.Equal(t, schema.RuleCoRun, parsed.Type)
	assert.Equal(t, schema.CoRunParams{Tasks: []string{"T1", "T2"}}, parsed.Parameters)
	assert.Equal(t, "Co-run: T1 + T2", parsed.Name)
	assert.InDelta(t, 1.0, parsed.Confidence, 1e-9)
	assert.Empty(t, parsed.Warnings)
	require.Len(t, parsed.Suggestions, 1)
	assert.Contains(t, parsed.Suggestions[0], "2")
	assert.True(t, parsed.Acceptable())
}

func TestConvertCoRunPhaseOverlapWarning(t *testing.T) {
	parsed := Convert("T1 and T3 should run together", ruleDataset())
	require.NotNil(t, parsed)
	require.Len(t, parsed.Warnings, 1)
	assert.Contains(t, parsed.Warnings[0], "overlapping preferred phases")
	assert.False(t, parsed.Acceptable())
}

func TestConvertCoRunNeedsTwoTasks(t *testing.T) {
	// T99 is not in the dataset, so only one valid ID remains.
	parsed := Convert("Co-run tasks T1 and T99", ruleDataset())
	require.NotNil(t, parsed)
	require.Len(t, parsed.Warnings, 1)
	assert.InDelta(t, 0.75, parsed.Confidence, 1e-9)
	assert.Equal(t, schema.CoRunParams{Tasks: []string{"T1"}}, parsed.Parameters)
}

func TestConvertSlotRestriction(t *testing.T) {
	parsed := Convert("Alpha clients need at least 3 common slots", ruleDataset())
	require.NotNil(t, parsed)
	assert.Equal(t, schema.RuleSlotRestriction, parsed.Type)
	assert.Equal(t, schema.SlotRestrictionParams{
		GroupType:      "client",
		Group:          "Alpha",
		MinCommonSlots: 3,
	}, parsed.Parameters)
	assert.InDelta(t, 0.85, parsed.Confidence, 1e-9)
	assert.True(t, parsed.Acceptable())
}

func TestConvertSlotRestrictionMissingDetails(t *testing.T) {
	parsed := Convert("Apply a slot restriction here", ruleDataset())
	require.NotNil(t, parsed)
	// Unknown group costs confidence and leaves a suggestion; a missing
	// count is a warning with its own penalty.
	require.Len(t, parsed.Suggestions, 1)
	assert.Contains(t, parsed.Suggestions[0], "Available groups")
	require.Len(t, parsed.Warnings, 1)
	assert.InDelta(t, 0.75, parsed.Confidence, 1e-9)
	assert.False(t, parsed.Acceptable())
}

func TestConvertLoadLimit(t *testing.T) {
	parsed := Convert("Backend workers get no more than 3 tasks per phase", ruleDataset())
	require.NotNil(t, parsed)
	assert.Equal(t, schema.RuleLoadLimit, parsed.Type)
	assert.Equal(t, schema.LoadLimitParams{
		WorkerGroup:      "Backend",
		MaxSlotsPerPhase: 3,
	}, parsed.Parameters)
	assert.Equal(t, "Load limit: Backend (max 3 per phase)", parsed.Name)
	assert.InDelta(t, 0.9, parsed.Confidence, 1e-9)
	assert.True(t, parsed.Acceptable())
}

func TestConvertLoadLimitUnknownGroupIsWarningOnly(t *testing.T) {
	parsed := Convert("Set a load limit of 2 tasks for the ghost team", ruleDataset())
	require.NotNil(t, parsed)
	assert.Equal(t, schema.RuleLoadLimit, parsed.Type)
	require.Len(t, parsed.Warnings, 1)
	assert.Contains(t, parsed.Warnings[0], "Available groups")
	// Only the missing group warning fires; the number extracted fine and
	// the warning itself carries no confidence penalty.
	assert.InDelta(t, 0.95, parsed.Confidence, 1e-9)
	assert.Equal(t, schema.LoadLimitParams{MaxSlotsPerPhase: 2}, parsed.Parameters)
}

func TestConvertPhaseWindow(t *testing.T) {
	parsed := Convert("Task T1 may run only in phases 1-3", ruleDataset())
	require.NotNil(t, parsed)
	assert.Equal(t, schema.RulePhaseWindow, parsed.Type)
	assert.Equal(t, schema.PhaseWindowParams{Task: "T1", Phases: []int{1, 2, 3}}, parsed.Parameters)
	assert.Equal(t, "Phase window: T1 in phases 1, 2, 3", parsed.Name)
	assert.InDelta(t, 0.95, parsed.Confidence, 1e-9)
	assert.True(t, parsed.Acceptable())
}

func TestConvertPatternMatch(t *testing.T) {
	parsed := Convert(`Exclude tasks starting with "PRE"`, ruleDataset())
	require.NotNil(t, parsed)
	assert.Equal(t, schema.RulePatternMatch, parsed.Type)
	assert.Equal(t, schema.PatternMatchParams{Regex: "^PRE", Action: schema.ActionExclude}, parsed.Parameters)

	parsed = Convert("Tasks ending with _v2", ruleDataset())
	require.NotNil(t, parsed)
	assert.Equal(t, schema.PatternMatchParams{Regex: "_v2$", Action: schema.ActionInclude}, parsed.Parameters)

	parsed = Convert(`Flag tasks matching "^T[0-9]+"`, ruleDataset())
	require.NotNil(t, parsed)
	assert.Equal(t, schema.PatternMatchParams{Regex: "^T[0-9]+", Action: schema.ActionFlag}, parsed.Parameters)
}

func TestConvertPrecedenceOverride(t *testing.T) {
	parsed := Convert("Specific rules override global ones", ruleDataset())
	require.NotNil(t, parsed)
	assert.Equal(t, schema.RulePrecedenceOverride, parsed.Type)
	assert.Equal(t, schema.PrecedenceOverrideParams{Scope: "specific"}, parsed.Parameters)

	parsed = Convert("Emergency precedence for these rules", ruleDataset())
	require.NotNil(t, parsed)
	assert.Equal(t, schema.PrecedenceOverrideParams{Scope: "specific"}, parsed.Parameters)
	assert.Equal(t, "Precedence override: specific scope", parsed.Name)
}

func TestConvertHighestWeightWinsAcrossGroups(t *testing.T) {
	parsed := Convert("Tasks must run together under the Backend load limit of 2 tasks", ruleDataset())
	require.NotNil(t, parsed)
	// "load limit" (0.95) outweighs "run together" (0.9).
	assert.Equal(t, schema.RuleLoadLimit, parsed.Type)
}

func TestConvertUnclassifiable(t *testing.T) {
	assert.Nil(t, Convert("Make everything nicer please", ruleDataset()))
}
