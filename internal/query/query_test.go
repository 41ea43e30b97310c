package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabcast/pkg/schema"
)

func TestParseNumericComparator(t *testing.T) {
	tests := []struct {
		query string
		kind  schema.CollectionKind
		want  schema.Condition
	}{
		{
			"all clients with priority level greater than 3",
			schema.KindClients,
			schema.NumericCondition(schema.FieldPriorityLevel, schema.OpGT, 3),
		},
		{
			"duration at least 2",
			schema.KindTasks,
			schema.NumericCondition(schema.FieldDuration, schema.OpGTE, 2),
		},
		{
			"workers with load at most 4",
			schema.KindWorkers,
			schema.NumericCondition(schema.FieldMaxLoadPerPhase, schema.OpLTE, 4),
		},
		{
			"clients with importance below 2",
			schema.KindClients,
			schema.NumericCondition(schema.FieldPriorityLevel, schema.OpLT, 2),
		},
	}
	for _, tt := range tests {
		conds := Parse(tt.query, tt.kind)
		require.Len(t, conds, 1, "query %q", tt.query)
		assert.Equal(t, tt.want, conds[0], "query %q", tt.query)
	}
}

func TestParseBareNumberFallback(t *testing.T) {
	conds := Parse("priority 3", schema.KindClients)
	require.Len(t, conds, 1)
	assert.Equal(t, schema.NumericCondition(schema.FieldPriorityLevel, schema.OpEQ, 3), conds[0])

	// The fallback must cover the whole query; a trailing phase list is an
	// array query, not an equality.
	conds = Parse("workers available in phases 1, 2, and 3", schema.KindWorkers)
	require.Len(t, conds, 1)
	assert.Equal(t, schema.ArrayCondition(schema.FieldAvailableSlots, []string{"1", "2", "3"}), conds[0])
}

func TestParseStringFamily(t *testing.T) {
	conds := Parse("tasks requiring welding", schema.KindTasks)
	require.Len(t, conds, 1)
	assert.Equal(t, schema.StringCondition(schema.FieldRequiredSkills, schema.OpContains, "welding"), conds[0])

	conds = Parse(`workers named "ada"`, schema.KindWorkers)
	require.Len(t, conds, 1)
	assert.Equal(t, schema.StringCondition(schema.FieldWorkerName, schema.OpContains, "ada"), conds[0])

	conds = Parse("workers in alpha group", schema.KindWorkers)
	require.Len(t, conds, 1)
	assert.Equal(t, schema.StringCondition(schema.FieldWorkerGroup, schema.OpContains, "alpha"), conds[0])

	conds = Parse(`category contains "polish"`, schema.KindTasks)
	require.Len(t, conds, 1)
	assert.Equal(t, schema.StringCondition(schema.FieldCategory, schema.OpContains, "polish"), conds[0])
}

func TestParseArrayFamily(t *testing.T) {
	conds := Parse("tasks preferred during phases 2-4", schema.KindTasks)
	require.Len(t, conds, 1)
	assert.Equal(t, schema.ArrayCondition(schema.FieldPreferredPhases, []string{"2", "3", "4"}), conds[0])

	conds = Parse("clients requesting tasks t1, t2 and t9", schema.KindClients)
	require.Len(t, conds, 1)
	assert.Equal(t, schema.ArrayCondition(schema.FieldRequestedTaskIDs, []string{"t1", "t2", "t9"}), conds[0])

	conds = Parse("workers with skills welding and painting", schema.KindWorkers)
	require.Len(t, conds, 1)
	assert.Equal(t, schema.ArrayCondition(schema.FieldSkills, []string{"welding", "painting"}), conds[0])
}

func TestParseBooleanFamily(t *testing.T) {
	conds := Parse("show me vip clients", schema.KindClients)
	require.Len(t, conds, 1)
	assert.Equal(t, schema.BooleanCondition(schema.FieldGroupTag, "vip"), conds[0])

	conds = Parse("urgent tasks", schema.KindTasks)
	require.Len(t, conds, 1)
	assert.Equal(t, schema.BooleanCondition(schema.FieldCategory, "urgent"), conds[0])
}

func TestParseUnresolvableIsSilent(t *testing.T) {
	assert.Empty(t, Parse("gibberish mystery above 7", schema.KindClients))
	assert.Empty(t, Parse("", schema.KindWorkers))
}

func TestNumberList(t *testing.T) {
	assert.Equal(t, []string{"1", "2", "3"}, NumberList("1, 2, and 3"))
	assert.Equal(t, []string{"1", "2", "3"}, NumberList("1-3"))
	assert.Equal(t, []string{"5"}, NumberList("5 and banana"))
	assert.Empty(t, NumberList("none"))
}

func clientCollection(records ...schema.Record) *schema.Collection {
	col := schema.NewCollection(schema.KindClients)
	col.Records = append(col.Records, records...)
	return col
}

func TestExecuteConjunction(t *testing.T) {
	col := clientCollection(
		schema.Record{schema.FieldPriorityLevel: schema.Number(4), schema.FieldGroupTag: schema.Text("vip")},
		schema.Record{schema.FieldPriorityLevel: schema.Number(5), schema.FieldGroupTag: schema.Text("standard")},
		schema.Record{schema.FieldPriorityLevel: schema.Number(2), schema.FieldGroupTag: schema.Text("vip")},
	)
	conds := []schema.Condition{
		schema.NumericCondition(schema.FieldPriorityLevel, schema.OpGT, 3),
		schema.BooleanCondition(schema.FieldGroupTag, "vip"),
	}
	result := Execute(conds, col)
	require.Equal(t, []int{0}, result.Indices)
	assert.Equal(t, []CellMark{
		{Row: 0, Field: schema.FieldPriorityLevel},
		{Row: 0, Field: schema.FieldGroupTag},
	}, result.Marks)
}

func TestExecuteMissingDataFails(t *testing.T) {
	col := clientCollection(
		schema.Record{schema.FieldClientName: schema.Text("Acme")},
		schema.Record{schema.FieldPriorityLevel: schema.Number(4)},
	)
	conds := []schema.Condition{schema.NumericCondition(schema.FieldPriorityLevel, schema.OpGT, 3)}
	result := Execute(conds, col)
	assert.Equal(t, []int{1}, result.Indices)
}

func TestExecuteFieldResolutionFallbacks(t *testing.T) {
	conds := []schema.Condition{schema.NumericCondition(schema.FieldPriorityLevel, schema.OpGTE, 3)}

	// Reverse header mapping.
	mapped := clientCollection(schema.Record{"pref": schema.Number(4)})
	mapped.Headers.Mapped["pref"] = schema.FieldPriorityLevel
	result := Execute(conds, mapped)
	require.Equal(t, []int{0}, result.Indices)
	assert.Equal(t, "pref", result.Marks[0].Field)

	// Alternative spelling table, no header mapping recorded.
	alt := clientCollection(schema.Record{"priority": schema.Number(4)})
	result = Execute(conds, alt)
	require.Equal(t, []int{0}, result.Indices)
	assert.Equal(t, "priority", result.Marks[0].Field)

	// Case-insensitive scan as the last resort.
	cased := clientCollection(schema.Record{"prioritylevel": schema.Number(4)})
	result = Execute(conds, cased)
	require.Equal(t, []int{0}, result.Indices)
}

func TestExecuteArrayAndTextMatching(t *testing.T) {
	col := schema.NewCollection(schema.KindWorkers)
	col.Records = append(col.Records,
		schema.Record{schema.FieldAvailableSlots: schema.Text("[1,2]"), schema.FieldSkills: schema.Text("Welding, Painting")},
		schema.Record{schema.FieldAvailableSlots: schema.Text("3, 4"), schema.FieldSkills: schema.Text("plumbing")},
	)

	result := Execute([]schema.Condition{
		schema.ArrayCondition(schema.FieldAvailableSlots, []string{"2", "5"}),
	}, col)
	assert.Equal(t, []int{0}, result.Indices)

	result = Execute([]schema.Condition{
		schema.StringCondition(schema.FieldSkills, schema.OpContains, "welding"),
	}, col)
	assert.Equal(t, []int{0}, result.Indices)
}

func TestRoundTripParseExecute(t *testing.T) {
	col := clientCollection(
		schema.Record{schema.FieldClientID: schema.Text("C1"), schema.FieldPriorityLevel: schema.Number(4)},
		schema.Record{schema.FieldClientID: schema.Text("C2"), schema.FieldPriorityLevel: schema.Number(2)},
	)
	conds := Parse("all clients with priority level greater than 3", schema.KindClients)
	require.Len(t, conds, 1)
	result := Execute(conds, col)
	require.Len(t, result.Records, 1)
	assert.Equal(t, "C1", result.Records[0][schema.FieldClientID].String())
}
