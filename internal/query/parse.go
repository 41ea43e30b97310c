// Package query turns a natural-language search string into typed
// conditions and applies them to a collection. The parser is best-effort:
// field phrases that do not resolve are dropped silently, never errored.
package query

import (
	"regexp"
	"strconv"
	"strings"

	"tabcast/internal/normalize"
	"tabcast/pkg/schema"
)

// Synonym tables consulted before header normalization when resolving a
// field phrase. Keyed by cleaned-up lowercase phrase.
var fieldAliases = map[schema.CollectionKind]map[string]string{
	schema.KindClients: {
		"priority":       schema.FieldPriorityLevel,
		"priority level": schema.FieldPriorityLevel,
		"importance":     schema.FieldPriorityLevel,
		"tasks":          schema.FieldRequestedTaskIDs,
		"requested":      schema.FieldRequestedTaskIDs,
		"group":          schema.FieldGroupTag,
		"tag":            schema.FieldGroupTag,
		"attributes":     schema.FieldAttributesJSON,
	},
	schema.KindWorkers: {
		"skills":       schema.FieldSkills,
		"slots":        schema.FieldAvailableSlots,
		"phases":       schema.FieldAvailableSlots,
		"availability": schema.FieldAvailableSlots,
		"load":         schema.FieldMaxLoadPerPhase,
		"max load":     schema.FieldMaxLoadPerPhase,
		"capacity":     schema.FieldMaxLoadPerPhase,
		"group":        schema.FieldWorkerGroup,
		"team":         schema.FieldWorkerGroup,
		"level":        schema.FieldQualificationLevel,
		"seniority":    schema.FieldQualificationLevel,
	},
	schema.KindTasks: {
		"skills":      schema.FieldRequiredSkills,
		"phases":      schema.FieldPreferredPhases,
		"duration":    schema.FieldDuration,
		"length":      schema.FieldDuration,
		"category":    schema.FieldCategory,
		"concurrency": schema.FieldMaxConcurrent,
		"concurrent":  schema.FieldMaxConcurrent,
	},
}

// Per-collection defaults for the string and array families.
var (
	skillFields = map[schema.CollectionKind]string{
		schema.KindWorkers: schema.FieldSkills,
		schema.KindTasks:   schema.FieldRequiredSkills,
	}
	nameFields = map[schema.CollectionKind]string{
		schema.KindClients: schema.FieldClientName,
		schema.KindWorkers: schema.FieldWorkerName,
		schema.KindTasks:   schema.FieldTaskName,
	}
	groupFields = map[schema.CollectionKind]string{
		schema.KindClients: schema.FieldGroupTag,
		schema.KindWorkers: schema.FieldWorkerGroup,
	}
	phaseFields = map[schema.CollectionKind]string{
		schema.KindWorkers: schema.FieldAvailableSlots,
		schema.KindTasks:   schema.FieldPreferredPhases,
	}
)

// Adjective-noun tags for the boolean family: the adjective selects an
// enum-valued attribute field and doubles as the expected value.
var tagFields = map[schema.CollectionKind]map[string]string{
	schema.KindClients: {
		"vip":     schema.FieldGroupTag,
		"premium": schema.FieldGroupTag,
	},
	schema.KindWorkers: {
		"senior": schema.FieldQualificationLevel,
		"junior": schema.FieldQualificationLevel,
		"mid":    schema.FieldQualificationLevel,
	},
	schema.KindTasks: {
		"urgent":   schema.FieldCategory,
		"critical": schema.FieldCategory,
	},
}

const fieldPhrase = `([a-z]+(?:\s+[a-z]+){0,2})`

type comparator struct {
	re *regexp.Regexp
	op schema.Operator
}

func numericComparator(phrases string, op schema.Operator) comparator {
	return comparator{
		re: regexp.MustCompile(fieldPhrase + `\s+(?:` + phrases + `)\s+(\d+(?:\.\d+)?)\b`),
		op: op,
	}
}

// Comparator phrases, longest first so ">=" never half-matches as ">".
var comparators = []comparator{
	numericComparator(`greater than or equal to|at least|no less than`, schema.OpGTE),
	numericComparator(`less than or equal to|at most|no more than`, schema.OpLTE),
	numericComparator(`greater than|more than|above|over|exceeding`, schema.OpGT),
	numericComparator(`less than|below|under`, schema.OpLT),
	numericComparator(`equal to|equals|is|of`, schema.OpEQ),
}

var (
	bareNumberRe = regexp.MustCompile(`^` + fieldPhrase + `\s+(\d+(?:\.\d+)?)$`)

	containsQuotedRe = regexp.MustCompile(fieldPhrase + `\s+(?:contains|includes|has|with)\s+"([^"]+)"`)
	containsBareRe   = regexp.MustCompile(fieldPhrase + `\s+(?:contains|includes)\s+([a-z0-9+#_-]+)`)
	requiringRe      = regexp.MustCompile(`(?:requiring|needing)\s+([a-z0-9+#_-]+)`)
	namedRe          = regexp.MustCompile(`(?:named|called)\s+"?([a-z0-9][a-z0-9 _-]*?)"?(?:$|,|\s+(?:and|or)\b)`)
	groupRe          = regexp.MustCompile(`(?:in|from)\s+(group[a-z0-9]+|[a-z0-9]+\s+group)\b`)

	phaseListRe  = regexp.MustCompile(`(?:in|during)\s+(?:phases?|slots?)\s+([0-9](?:[0-9,\s-]|and\s)*)`)
	requestingRe = regexp.MustCompile(`requesting\s+tasks?\s+([a-z0-9]+(?:\s*,\s*[a-z0-9]+|\s+and\s+[a-z0-9]+)*)`)
	withSkillsRe = regexp.MustCompile(`with\s+skills?\s+([a-z0-9+#_-]+(?:\s*,\s*[a-z0-9+#_-]+|\s+and\s+[a-z0-9+#_-]+)*)`)
)

// Parse converts a query into typed conditions against the collection.
// The four pattern families run independently; conditions from all of
// them are kept and ANDed by the executor.
func Parse(query string, kind schema.CollectionKind) []schema.Condition {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	var conds []schema.Condition
	conds = append(conds, numericConditions(q, kind)...)
	conds = append(conds, stringConditions(q, kind)...)
	conds = append(conds, arrayConditions(q, kind)...)
	conds = append(conds, booleanConditions(q, kind)...)
	return conds
}

// resolveField maps a captured field phrase to a canonical field, trimming
// leading filler words until something resolves.
func resolveField(phrase string, kind schema.CollectionKind) (string, bool) {
	words := strings.Fields(strings.TrimSpace(phrase))
	for i := 0; i < len(words); i++ {
		candidate := strings.Join(words[i:], " ")
		if field, ok := fieldAliases[kind][candidate]; ok {
			return field, true
		}
		if field, ok := normalize.Field(candidate, kind); ok {
			return field, true
		}
	}
	return "", false
}

func numericConditions(q string, kind schema.CollectionKind) []schema.Condition {
	var conds []schema.Condition
	for _, c := range comparators {
		for _, m := range c.re.FindAllStringSubmatch(q, -1) {
			field, ok := resolveField(m[1], kind)
			if !ok {
				continue
			}
			value, err := strconv.ParseFloat(m[2], 64)
			if err != nil {
				continue
			}
			conds = append(conds, schema.NumericCondition(field, c.op, value))
		}
	}
	if len(conds) > 0 {
		return conds
	}

	// Bare "<field> <number>" fallback, only when no comparator matched.
	for _, m := range bareNumberRe.FindAllStringSubmatch(q, -1) {
		field, ok := resolveField(m[1], kind)
		if !ok {
			continue
		}
		value, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			continue
		}
		conds = append(conds, schema.NumericCondition(field, schema.OpEQ, value))
	}
	return conds
}

func stringConditions(q string, kind schema.CollectionKind) []schema.Condition {
	var conds []schema.Condition

	for _, re := range []*regexp.Regexp{containsQuotedRe, containsBareRe} {
		for _, m := range re.FindAllStringSubmatch(q, -1) {
			field, ok := resolveField(m[1], kind)
			if !ok {
				continue
			}
			conds = append(conds, schema.StringCondition(field, schema.OpContains, m[2]))
		}
	}

	if field, ok := skillFields[kind]; ok {
		for _, m := range requiringRe.FindAllStringSubmatch(q, -1) {
			conds = append(conds, schema.StringCondition(field, schema.OpContains, m[1]))
		}
	}

	if field, ok := nameFields[kind]; ok {
		for _, m := range namedRe.FindAllStringSubmatch(q, -1) {
			conds = append(conds, schema.StringCondition(field, schema.OpContains, strings.TrimSpace(m[1])))
		}
	}

	if field, ok := groupFields[kind]; ok {
		for _, m := range groupRe.FindAllStringSubmatch(q, -1) {
			value := strings.TrimSuffix(strings.TrimSpace(m[1]), " group")
			conds = append(conds, schema.StringCondition(field, schema.OpContains, value))
		}
	}

	return conds
}

func arrayConditions(q string, kind schema.CollectionKind) []schema.Condition {
	var conds []schema.Condition

	if field, ok := phaseFields[kind]; ok {
		for _, m := range phaseListRe.FindAllStringSubmatch(q, -1) {
			if values := NumberList(m[1]); len(values) > 0 {
				conds = append(conds, schema.ArrayCondition(field, values))
			}
		}
	}

	if kind == schema.KindClients {
		for _, m := range requestingRe.FindAllStringSubmatch(q, -1) {
			if values := tokenList(m[1]); len(values) > 0 {
				conds = append(conds, schema.ArrayCondition(schema.FieldRequestedTaskIDs, values))
			}
		}
	}

	if field, ok := skillFields[kind]; ok {
		for _, m := range withSkillsRe.FindAllStringSubmatch(q, -1) {
			if values := tokenList(m[1]); len(values) > 0 {
				conds = append(conds, schema.ArrayCondition(field, values))
			}
		}
	}

	return conds
}

func booleanConditions(q string, kind schema.CollectionKind) []schema.Condition {
	noun := string(kind) // collection kinds read as plural nouns
	var conds []schema.Condition
	for adjective, field := range tagFields[kind] {
		re := regexp.MustCompile(`\b` + adjective + `\s+` + noun[:len(noun)-1] + `s?\b`)
		if re.MatchString(q) {
			conds = append(conds, schema.BooleanCondition(field, adjective))
		}
	}
	return conds
}

var numberSplitRe = regexp.MustCompile(`[,\s]+|\band\b`)

// NumberList parses "1, 2, and 3" or "1-3" into string number tokens,
// expanding inclusive ranges.
func NumberList(text string) []string {
	var out []string
	for _, tok := range numberSplitRe.Split(text, -1) {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		if lo, hi, ok := parseRange(tok); ok {
			for n := lo; n <= hi; n++ {
				out = append(out, strconv.Itoa(n))
			}
			continue
		}
		if _, err := strconv.Atoi(tok); err == nil {
			out = append(out, tok)
		}
	}
	return out
}

func parseRange(tok string) (lo, hi int, ok bool) {
	parts := strings.SplitN(tok, "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	lo, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	hi, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil || hi < lo {
		return 0, 0, false
	}
	return lo, hi, true
}

func tokenList(text string) []string {
	var out []string
	for _, tok := range numberSplitRe.Split(text, -1) {
		tok = strings.TrimSpace(tok)
		if tok != "" {
			out = append(out, tok)
		}
	}
	return out
}
