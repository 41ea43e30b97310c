// Package normalize canonicalizes loosely-typed headers, phrases, and cell
// values into the fixed domain vocabulary. Everything here is pure
// computation over static tables.
package normalize

import (
	"regexp"
	"strings"

	"tabcast/pkg/schema"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// clean strips non-alphanumerics and lowercases, so "Priority_Level " and
// "priorityLevel" compare equal.
func clean(token string) string {
	return nonAlnum.ReplaceAllString(strings.ToLower(token), "")
}

type variant struct {
	re    *regexp.Regexp
	field string
}

// Regex variants per canonical field, matched against the cleaned token.
var fieldVariants = map[schema.CollectionKind][]variant{
	schema.KindClients: {
		{regexp.MustCompile(`^client_?id$`), schema.FieldClientID},
		{regexp.MustCompile(`^(id|cid)$`), schema.FieldClientID},
		{regexp.MustCompile(`^client_?name$`), schema.FieldClientName},
		{regexp.MustCompile(`^(name|customer)$`), schema.FieldClientName},
		{regexp.MustCompile(`^priority_?level$`), schema.FieldPriorityLevel},
		{regexp.MustCompile(`^(pref|priority|importance|prio)$`), schema.FieldPriorityLevel},
		{regexp.MustCompile(`^requested_?task_?ids?$`), schema.FieldRequestedTaskIDs},
		{regexp.MustCompile(`^(tasks?requested|requests?|taskids?)$`), schema.FieldRequestedTaskIDs},
		{regexp.MustCompile(`^group_?tag$`), schema.FieldGroupTag},
		{regexp.MustCompile(`^(group|tag|segment)$`), schema.FieldGroupTag},
		{regexp.MustCompile(`^attributes_?(json)?$`), schema.FieldAttributesJSON},
		{regexp.MustCompile(`^(attrs?|metadata)$`), schema.FieldAttributesJSON},
	},
	schema.KindWorkers: {
		{regexp.MustCompile(`^worker_?id$`), schema.FieldWorkerID},
		{regexp.MustCompile(`^(id|wid)$`), schema.FieldWorkerID},
		{regexp.MustCompile(`^worker_?name$`), schema.FieldWorkerName},
		{regexp.MustCompile(`^(name|employee)$`), schema.FieldWorkerName},
		{regexp.MustCompile(`^skills?$`), schema.FieldSkills},
		{regexp.MustCompile(`^(capabilit(y|ies)|expertise)$`), schema.FieldSkills},
		{regexp.MustCompile(`^available_?slots?$`), schema.FieldAvailableSlots},
		{regexp.MustCompile(`^(slots?|availability|phases?available)$`), schema.FieldAvailableSlots},
		{regexp.MustCompile(`^max_?load_?(per_?phase)?$`), schema.FieldMaxLoadPerPhase},
		{regexp.MustCompile(`^(load|capacity)$`), schema.FieldMaxLoadPerPhase},
		{regexp.MustCompile(`^worker_?group$`), schema.FieldWorkerGroup},
		{regexp.MustCompile(`^(group|team|squad)$`), schema.FieldWorkerGroup},
		{regexp.MustCompile(`^qualification_?(level)?$`), schema.FieldQualificationLevel},
		{regexp.MustCompile(`^(level|seniority|grade)$`), schema.FieldQualificationLevel},
	},
	schema.KindTasks: {
		{regexp.MustCompile(`^task_?id$`), schema.FieldTaskID},
		{regexp.MustCompile(`^(id|tid)$`), schema.FieldTaskID},
		{regexp.MustCompile(`^task_?name$`), schema.FieldTaskName},
		{regexp.MustCompile(`^(name|title)$`), schema.FieldTaskName},
		{regexp.MustCompile(`^categor(y|ies)$`), schema.FieldCategory},
		{regexp.MustCompile(`^(type|kind)$`), schema.FieldCategory},
		{regexp.MustCompile(`^duration$`), schema.FieldDuration},
		{regexp.MustCompile(`^(length|phasecount|phases?needed)$`), schema.FieldDuration},
		{regexp.MustCompile(`^required_?skills?$`), schema.FieldRequiredSkills},
		{regexp.MustCompile(`^(skills?|needs?)$`), schema.FieldRequiredSkills},
		{regexp.MustCompile(`^preferred_?phases?$`), schema.FieldPreferredPhases},
		{regexp.MustCompile(`^(phases?|window)$`), schema.FieldPreferredPhases},
		{regexp.MustCompile(`^max_?concurrent$`), schema.FieldMaxConcurrent},
		{regexp.MustCompile(`^(concurrency|parallel)$`), schema.FieldMaxConcurrent},
	},
}

// Field maps a raw header or phrase token to a canonical field name.
// Resolution order: exact canonical match, regex variants, then a
// prefix-similarity fallback. Ambiguous tokens stay unmapped rather than
// being forced onto a field.
func Field(raw string, kind schema.CollectionKind) (string, bool) {
	token := clean(raw)
	if token == "" {
		return "", false
	}

	for _, canonical := range schema.CanonicalFields(kind) {
		if token == clean(canonical) {
			return canonical, true
		}
	}

	for _, v := range fieldVariants[kind] {
		if v.re.MatchString(token) {
			return v.field, true
		}
	}

	// Prefix similarity: the first 4 characters of either side appearing in
	// the other is enough to claim the mapping.
	if len(token) >= 4 {
		prefix := token[:4]
		for _, canonical := range schema.CanonicalFields(kind) {
			cleaned := clean(canonical)
			if strings.Contains(cleaned, prefix) || (len(cleaned) >= 4 && strings.Contains(token, cleaned[:4])) {
				return canonical, true
			}
		}
	}

	return "", false
}

// MapHeaders applies upload-time header correction to a raw header list.
func MapHeaders(headers []string, kind schema.CollectionKind) schema.HeaderMapping {
	mapping := schema.HeaderMapping{Mapped: map[string]string{}}
	for _, h := range headers {
		if canonical, ok := Field(h, kind); ok {
			mapping.Mapped[h] = canonical
		} else {
			mapping.Unmapped = append(mapping.Unmapped, h)
		}
	}
	return mapping
}

// Collection ingests host-parsed rows into a collection, rewriting mapped
// headers to canonical names and recording the mapping. Unmapped headers
// are kept verbatim; the core never guesses.
func Collection(kind schema.CollectionKind, rows []map[string]any) *schema.Collection {
	col := schema.NewCollection(kind)
	if len(rows) == 0 {
		return col
	}

	headers := make([]string, 0, len(rows[0]))
	for h := range rows[0] {
		headers = append(headers, h)
	}
	col.Headers = MapHeaders(headers, kind)

	for _, row := range rows {
		record := schema.Record{}
		for key, value := range row {
			if canonical, ok := col.Headers.Mapped[key]; ok {
				key = canonical
			} else if canonical, ok := Field(key, kind); ok {
				// Header not seen in the first row; map it on the fly.
				col.Headers.Mapped[key] = canonical
				key = canonical
			}
			record[key] = schema.CellOf(value)
		}
		col.Records = append(col.Records, record)
	}
	return col
}
