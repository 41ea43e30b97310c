package query

import (
	"strconv"
	"strings"

	"tabcast/internal/normalize"
	"tabcast/pkg/schema"
)

// CellMark points at a matched cell for grid highlighting.
type CellMark struct {
	Row   int    `json:"row"`
	Field string `json:"field"`
}

// SearchResult is the matching subset of a collection plus the cells that
// satisfied a condition.
type SearchResult struct {
	Records []schema.Record `json:"records"`
	Indices []int           `json:"indices"`
	Marks   []CellMark      `json:"marks"`
}

// Alternative spellings tried when a condition's field is not a record key
// and the header mapping has no answer either.
var altSpellings = map[string][]string{
	schema.FieldPriorityLevel:    {"priority", "priority_level", "pref"},
	schema.FieldRequestedTaskIDs: {"requested_tasks", "task_ids", "requests"},
	schema.FieldGroupTag:         {"group", "tag"},
	schema.FieldAttributesJSON:   {"attributes", "attrs"},
	schema.FieldSkills:           {"skill", "capabilities"},
	schema.FieldAvailableSlots:   {"slots", "availability"},
	schema.FieldMaxLoadPerPhase:  {"max_load", "load"},
	schema.FieldWorkerGroup:      {"group", "team"},
	schema.FieldRequiredSkills:   {"skills", "needs"},
	schema.FieldPreferredPhases:  {"phases", "phase_window"},
	schema.FieldDuration:         {"length"},
	schema.FieldMaxConcurrent:    {"concurrency"},
}

// Execute returns the records for which every condition holds. Missing
// field data fails the condition; it is never a wildcard match.
func Execute(conds []schema.Condition, col *schema.Collection) *SearchResult {
	result := &SearchResult{}
	for i, r := range col.Records {
		marks := make([]CellMark, 0, len(conds))
		matched := true
		for _, cond := range conds {
			cell, key, ok := resolveCell(col, r, cond.Field)
			if !ok || !matchCondition(cond, cell) {
				matched = false
				break
			}
			marks = append(marks, CellMark{Row: i, Field: key})
		}
		if !matched {
			continue
		}
		result.Records = append(result.Records, r)
		result.Indices = append(result.Indices, i)
		result.Marks = append(result.Marks, marks...)
	}
	return result
}

// resolveCell finds a condition field's actual value: direct key, reverse
// header mapping, alternative spellings, then a case-insensitive key scan.
func resolveCell(col *schema.Collection, r schema.Record, field string) (schema.Cell, string, bool) {
	if v, ok := r[field]; ok {
		return v, field, true
	}
	for original, canonical := range col.Headers.Mapped {
		if canonical == field {
			if v, ok := r[original]; ok {
				return v, original, true
			}
		}
	}
	for _, alt := range altSpellings[field] {
		if v, ok := r[alt]; ok {
			return v, alt, true
		}
	}
	lower := strings.ToLower(field)
	for key, v := range r {
		if strings.ToLower(key) == lower {
			return v, key, true
		}
	}
	return schema.Missing, "", false
}

func matchCondition(cond schema.Condition, cell schema.Cell) bool {
	switch cond.Type {
	case schema.CondNumeric:
		return matchNumeric(cond, cell)
	case schema.CondString:
		return matchString(cond, cell)
	case schema.CondArray:
		return matchArray(cond, cell)
	case schema.CondBoolean:
		return matchBoolean(cond, cell)
	}
	return false
}

func matchNumeric(cond schema.Condition, cell schema.Cell) bool {
	n, ok := cell.Number()
	if !ok {
		return false
	}
	switch cond.Operator {
	case schema.OpGT:
		return n > cond.Number
	case schema.OpLT:
		return n < cond.Number
	case schema.OpGTE:
		return n >= cond.Number
	case schema.OpLTE:
		return n <= cond.Number
	case schema.OpEQ:
		return n == cond.Number
	case schema.OpNot:
		return n != cond.Number
	}
	return false
}

func matchString(cond schema.Condition, cell schema.Cell) bool {
	value := strings.ToLower(cell.String())
	want := strings.ToLower(cond.Text)
	switch cond.Operator {
	case schema.OpEQ:
		return value == want
	case schema.OpContains:
		return strings.Contains(value, want)
	case schema.OpStartsWith:
		return strings.HasPrefix(value, want)
	case schema.OpEndsWith:
		return strings.HasSuffix(value, want)
	case schema.OpNot:
		return !strings.Contains(value, want)
	}
	return false
}

// matchArray checks intersection between the coerced field list and the
// condition values, comparing numerically when both sides parse and
// case-insensitively otherwise.
func matchArray(cond schema.Condition, cell schema.Cell) bool {
	items := normalize.ArrayCells(cell)
	if len(items) == 0 {
		return false
	}
	for _, want := range cond.List {
		wantNum, err := strconv.ParseFloat(want, 64)
		wantIsNum := err == nil
		for _, item := range items {
			if n, ok := item.Number(); ok && wantIsNum && n == wantNum {
				return true
			}
			if strings.EqualFold(item.String(), want) {
				return true
			}
		}
	}
	return false
}

func matchBoolean(cond schema.Condition, cell schema.Cell) bool {
	value := strings.ToLower(strings.TrimSpace(cell.String()))
	want := strings.ToLower(cond.Text)
	if value == want {
		return true
	}
	if want == "true" {
		return value == "true" || value == "yes" || value == "1"
	}
	return false
}
