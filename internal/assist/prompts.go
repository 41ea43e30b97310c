package assist

import (
	"fmt"
	"strings"

	"tabcast/pkg/schema"
)

// BuildConditionsPrompt asks the model for the condition-list wire shape.
func BuildConditionsPrompt(query string, kind schema.CollectionKind) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You translate a search query over the %s collection into filter conditions.\n\n", kind)
	fmt.Fprintf(&b, "Known fields: %s\n\n", strings.Join(schema.CanonicalFields(kind), ", "))
	b.WriteString("Return ONLY a JSON array of objects shaped as\n")
	b.WriteString(`{"field": "<canonical field>", "operator": ">|<|=|>=|<=|contains|in|not|startswith|endswith", "value": <number|string|array>, "type": "numeric|string|array|boolean"}` + "\n\n")
	fmt.Fprintf(&b, "Query: %s\n", query)
	return b.String()
}

// BuildRulePrompt asks the model for the parsed-rule wire shape.
func BuildRulePrompt(sentence string, ds *schema.Dataset) string {
	var b strings.Builder
	b.WriteString("You translate one sentence into a scheduling business rule.\n\n")
	fmt.Fprintf(&b, "Rule types: %s\n", joinRuleTypes())
	fmt.Fprintf(&b, "Known task IDs: %s\n", strings.Join(ds.Tasks.IDs(), ", "))
	b.WriteString("Return ONLY a JSON object shaped as\n")
	b.WriteString(`{"type": "<rule type>", "name": "...", "description": "...", "parameters": {...}, "confidence": 0.0-1.0, "suggestions": [], "warnings": []}` + "\n\n")
	fmt.Fprintf(&b, "Sentence: %s\n", sentence)
	return b.String()
}

func joinRuleTypes() string {
	parts := make([]string, len(schema.RuleTypes))
	for i, t := range schema.RuleTypes {
		parts[i] = string(t)
	}
	return strings.Join(parts, ", ")
}
