package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabcast/pkg/schema"
)

func TestField(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		kind  schema.CollectionKind
		want  string
		found bool
	}{
		{"exact canonical", "PriorityLevel", schema.KindClients, schema.FieldPriorityLevel, true},
		{"snake case", "priority_level", schema.KindClients, schema.FieldPriorityLevel, true},
		{"pref variant", "pref", schema.KindClients, schema.FieldPriorityLevel, true},
		{"importance variant", "Importance", schema.KindClients, schema.FieldPriorityLevel, true},
		{"worker team", "team", schema.KindWorkers, schema.FieldWorkerGroup, true},
		{"worker slots", "Available_Slots", schema.KindWorkers, schema.FieldAvailableSlots, true},
		{"task skills", "skills", schema.KindTasks, schema.FieldRequiredSkills, true},
		{"prefix similarity", "durat", schema.KindTasks, schema.FieldDuration, true},
		{"no mapping", "zzz", schema.KindClients, "", false},
		{"empty", "  ", schema.KindWorkers, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Field(tt.raw, tt.kind)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMapHeaders(t *testing.T) {
	mapping := MapHeaders([]string{"client_id", "Name", "pref", "mystery"}, schema.KindClients)
	assert.Equal(t, schema.FieldClientID, mapping.Mapped["client_id"])
	assert.Equal(t, schema.FieldClientName, mapping.Mapped["Name"])
	assert.Equal(t, schema.FieldPriorityLevel, mapping.Mapped["pref"])
	assert.Equal(t, []string{"mystery"}, mapping.Unmapped)
}

func TestCollectionIngestion(t *testing.T) {
	rows := []map[string]any{
		{"client_id": "C1", "pref": 3, "mystery": "x"},
		{"client_id": "C2", "pref": "4", "mystery": "y"},
	}
	col := Collection(schema.KindClients, rows)
	require.Len(t, col.Records, 2)

	// Mapped headers are rewritten to canonical names.
	cell := col.Value(col.Records[0], schema.FieldPriorityLevel)
	n, ok := cell.Number()
	require.True(t, ok)
	assert.Equal(t, 3.0, n)

	// Unmapped headers stay verbatim.
	_, hasMystery := col.Records[0]["mystery"]
	assert.True(t, hasMystery)
	assert.Contains(t, col.Headers.Unmapped, "mystery")
}

func TestArrayCells(t *testing.T) {
	tests := []struct {
		name string
		cell schema.Cell
		want []string
	}{
		{"native list", schema.List(schema.Number(1), schema.Number(2)), []string{"1", "2"}},
		{"json array string", schema.Text("[1,2,3]"), []string{"1", "2", "3"}},
		{"malformed json array", schema.Text("[1,2,"), []string{}},
		{"comma list", schema.Text("a, b , c"), []string{"a", "b", "c"}},
		{"missing", schema.Missing, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ArrayCells(tt.cell)
			rendered := make([]string, 0, len(got))
			for _, c := range got {
				rendered = append(rendered, c.String())
			}
			if tt.want == nil {
				assert.Empty(t, rendered)
				return
			}
			assert.Equal(t, tt.want, rendered)
		})
	}
}

func TestPositiveInts(t *testing.T) {
	values, bad := PositiveInts(schema.Text("[1,2,5]"))
	assert.Equal(t, []int{1, 2, 5}, values)
	assert.Empty(t, bad)

	values, bad = PositiveInts(schema.Text("1, x, 0, 2.5, 3"))
	assert.Equal(t, []int{1, 3}, values)
	assert.Equal(t, []string{"x", "0", "2.5"}, bad)
}

func TestJSONObject(t *testing.T) {
	obj, ok := JSONObject(schema.Text(`{"vip": true}`))
	require.True(t, ok)
	assert.Equal(t, true, obj["vip"])

	obj, ok = JSONObject(schema.Text("{bad json"))
	assert.False(t, ok)
	assert.Nil(t, obj)

	obj, ok = JSONObject(schema.Object(map[string]any{"a": 1}))
	require.True(t, ok)
	assert.Equal(t, 1, obj["a"])
}
