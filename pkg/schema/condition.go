package schema

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Operator is a condition comparison operator.
type Operator string

const (
	OpGT         Operator = ">"
	OpLT         Operator = "<"
	OpEQ         Operator = "="
	OpGTE        Operator = ">="
	OpLTE        Operator = "<="
	OpContains   Operator = "contains"
	OpIn         Operator = "in"
	OpNot        Operator = "not"
	OpStartsWith Operator = "startswith"
	OpEndsWith   Operator = "endswith"
)

// ConditionType selects the comparison semantics.
type ConditionType string

const (
	CondNumeric ConditionType = "numeric"
	CondString  ConditionType = "string"
	CondArray   ConditionType = "array"
	CondBoolean ConditionType = "boolean"
)

// Condition is one typed predicate extracted from a natural-language query.
// Exactly one of Number, Text, List is meaningful, selected by Type.
type Condition struct {
	Field    string
	Operator Operator
	Number   float64
	Text     string
	List     []string
	Type     ConditionType
}

// NumericCondition builds a numeric predicate.
func NumericCondition(field string, op Operator, value float64) Condition {
	return Condition{Field: field, Operator: op, Number: value, Type: CondNumeric}
}

// StringCondition builds a string predicate.
func StringCondition(field string, op Operator, value string) Condition {
	return Condition{Field: field, Operator: op, Text: value, Type: CondString}
}

// ArrayCondition builds an array-membership predicate.
func ArrayCondition(field string, values []string) Condition {
	return Condition{Field: field, Operator: OpIn, List: values, Type: CondArray}
}

// BooleanCondition builds a boolean/tag predicate.
func BooleanCondition(field string, value string) Condition {
	return Condition{Field: field, Operator: OpEQ, Text: value, Type: CondBoolean}
}

type conditionWire struct {
	Field    string          `json:"field"`
	Operator Operator        `json:"operator"`
	Value    json.RawMessage `json:"value"`
	Type     ConditionType   `json:"type"`
}

// MarshalJSON emits the {field, operator, value, type} wire shape shared
// with the external assist endpoint. Array entries that parse as numbers
// are emitted as numbers.
func (c Condition) MarshalJSON() ([]byte, error) {
	var value any
	switch c.Type {
	case CondNumeric:
		value = c.Number
	case CondArray:
		items := make([]any, 0, len(c.List))
		for _, s := range c.List {
			if n, err := strconv.ParseFloat(s, 64); err == nil {
				items = append(items, n)
			} else {
				items = append(items, s)
			}
		}
		value = items
	default:
		value = c.Text
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return json.Marshal(conditionWire{Field: c.Field, Operator: c.Operator, Value: raw, Type: c.Type})
}

// UnmarshalJSON decodes the wire shape back into the typed union.
func (c *Condition) UnmarshalJSON(data []byte) error {
	var w conditionWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	out := Condition{Field: w.Field, Operator: w.Operator, Type: w.Type}
	switch w.Type {
	case CondNumeric:
		if err := json.Unmarshal(w.Value, &out.Number); err != nil {
			return fmt.Errorf("numeric condition value: %w", err)
		}
	case CondArray:
		var items []any
		if err := json.Unmarshal(w.Value, &items); err != nil {
			return fmt.Errorf("array condition value: %w", err)
		}
		for _, item := range items {
			out.List = append(out.List, CellOf(item).String())
		}
	case CondString, CondBoolean:
		if err := json.Unmarshal(w.Value, &out.Text); err != nil {
			return fmt.Errorf("string condition value: %w", err)
		}
	default:
		return fmt.Errorf("unknown condition type: %q", w.Type)
	}
	*c = out
	return nil
}
