package normalize

import (
	"encoding/json"
	"strings"

	"tabcast/pkg/schema"
)

// ArrayCells coerces a cell into a list. Lists pass through; strings shaped
// like JSON arrays are parsed (empty list on failure); anything else splits
// on commas. Never fails: malformed input degrades to an empty list and the
// validation catalog reports it separately.
func ArrayCells(c schema.Cell) []schema.Cell {
	if items, ok := c.List(); ok {
		return items
	}
	text, ok := c.Text()
	if !ok {
		return nil
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	if strings.HasPrefix(text, "[") {
		var raw []any
		if err := json.Unmarshal([]byte(text), &raw); err != nil {
			return []schema.Cell{}
		}
		items := make([]schema.Cell, 0, len(raw))
		for _, v := range raw {
			items = append(items, schema.CellOf(v))
		}
		return items
	}

	parts := strings.Split(text, ",")
	items := make([]schema.Cell, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		items = append(items, schema.Text(p))
	}
	return items
}

// StringList coerces a cell into trimmed strings.
func StringList(c schema.Cell) []string {
	cells := ArrayCells(c)
	out := make([]string, 0, len(cells))
	for _, cell := range cells {
		s := strings.TrimSpace(cell.String())
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// PositiveInts coerces a cell into positive integers, returning the
// entries that refused to coerce so callers can report them.
func PositiveInts(c schema.Cell) (values []int, bad []string) {
	for _, cell := range ArrayCells(c) {
		n, ok := cell.Number()
		if !ok || n < 1 || n != float64(int(n)) {
			bad = append(bad, cell.String())
			continue
		}
		values = append(values, int(n))
	}
	return values, bad
}

// JSONObject coerces a cell into an object. Objects pass through; strings
// are parsed as JSON. The nil/false return distinguishes malformed input
// from a genuinely absent cell, which callers turn into a finding.
func JSONObject(c schema.Cell) (map[string]any, bool) {
	if obj, ok := c.Object(); ok {
		return obj, true
	}
	text, ok := c.Text()
	if !ok {
		return nil, false
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(text), &obj); err != nil {
		return nil, false
	}
	return obj, true
}
