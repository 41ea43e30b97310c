package schema

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// CellKind discriminates the closed value union a record cell can hold.
type CellKind int

const (
	CellMissing CellKind = iota
	CellNumber
	CellText
	CellList
	CellObject
)

// Cell is one record value: a number, text, a list, a JSON object, or
// nothing at all. Ingested data is loosely typed, so every consumer goes
// through the kind accessors instead of assuming a shape.
type Cell struct {
	kind CellKind
	num  float64
	text string
	list []Cell
	obj  map[string]any
}

// Missing is the absent-value sentinel.
var Missing = Cell{kind: CellMissing}

// Number builds a numeric cell.
func Number(v float64) Cell { return Cell{kind: CellNumber, num: v} }

// Text builds a text cell.
func Text(v string) Cell { return Cell{kind: CellText, text: v} }

// List builds a list cell.
func List(items ...Cell) Cell { return Cell{kind: CellList, list: items} }

// Object builds an object cell.
func Object(v map[string]any) Cell { return Cell{kind: CellObject, obj: v} }

// CellOf converts an arbitrary ingested value into a Cell. Unknown shapes
// degrade to their string rendering rather than being rejected.
func CellOf(v any) Cell {
	switch t := v.(type) {
	case nil:
		return Missing
	case Cell:
		return t
	case float64:
		return Number(t)
	case float32:
		return Number(float64(t))
	case int:
		return Number(float64(t))
	case int64:
		return Number(float64(t))
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return Number(f)
		}
		return Text(t.String())
	case string:
		return Text(t)
	case bool:
		if t {
			return Text("true")
		}
		return Text("false")
	case []any:
		items := make([]Cell, 0, len(t))
		for _, item := range t {
			items = append(items, CellOf(item))
		}
		return List(items...)
	case map[string]any:
		return Object(t)
	default:
		return Text(fmt.Sprintf("%v", t))
	}
}

// Kind returns the cell's discriminator.
func (c Cell) Kind() CellKind { return c.kind }

// IsMissing reports whether the cell holds no value.
func (c Cell) IsMissing() bool { return c.kind == CellMissing }

// Number returns the numeric value. Text cells are parsed on the fly so
// "3" and 3 behave identically downstream.
func (c Cell) Number() (float64, bool) {
	switch c.kind {
	case CellNumber:
		return c.num, true
	case CellText:
		f, err := strconv.ParseFloat(strings.TrimSpace(c.text), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Text returns the textual value. Numbers render without a trailing ".0"
// when integral.
func (c Cell) Text() (string, bool) {
	switch c.kind {
	case CellText:
		return c.text, true
	case CellNumber:
		return strconv.FormatFloat(c.num, 'f', -1, 64), true
	default:
		return "", false
	}
}

// List returns the list items.
func (c Cell) List() ([]Cell, bool) {
	if c.kind != CellList {
		return nil, false
	}
	return c.list, true
}

// Object returns the object value.
func (c Cell) Object() (map[string]any, bool) {
	if c.kind != CellObject {
		return nil, false
	}
	return c.obj, true
}

// String renders the cell for findings and rule names.
func (c Cell) String() string {
	switch c.kind {
	case CellMissing:
		return ""
	case CellNumber:
		return strconv.FormatFloat(c.num, 'f', -1, 64)
	case CellText:
		return c.text
	case CellList:
		parts := make([]string, 0, len(c.list))
		for _, item := range c.list {
			parts = append(parts, item.String())
		}
		return strings.Join(parts, ",")
	case CellObject:
		b, err := json.Marshal(c.obj)
		if err != nil {
			return "{}"
		}
		return string(b)
	}
	return ""
}

// MarshalJSON emits the underlying value, not the union wrapper.
func (c Cell) MarshalJSON() ([]byte, error) {
	switch c.kind {
	case CellMissing:
		return []byte("null"), nil
	case CellNumber:
		return json.Marshal(c.num)
	case CellText:
		return json.Marshal(c.text)
	case CellList:
		return json.Marshal(c.list)
	case CellObject:
		return json.Marshal(c.obj)
	}
	return []byte("null"), nil
}

// UnmarshalJSON maps any JSON value into the union.
func (c *Cell) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	*c = CellOf(raw)
	return nil
}
