package validate

import (
	"fmt"
	"sort"
	"strings"

	"tabcast/internal/normalize"
	"tabcast/pkg/schema"
)

// Finding categories.
const (
	CategoryRequiredColumns = "Required Columns"
	CategoryMalformedData   = "Malformed Data"
	CategoryDuplicateIDs    = "Duplicate IDs"
	CategoryInvalidRange    = "Invalid Range"
	CategoryBrokenJSON      = "Broken JSON"
	CategoryReference       = "Unknown Reference"
	CategorySkillCoverage   = "Skill Coverage"
	CategoryWorkerCapacity  = "Worker Capacity"
	CategoryPhaseSaturation = "Phase Saturation"
	CategoryInsight         = "Insight"
)

// checkRequiredColumns compares each collection's minimal column set
// against the keys of its first record.
func checkRequiredColumns(ds *schema.Dataset) []schema.Finding {
	var findings []schema.Finding
	for _, kind := range []schema.CollectionKind{schema.KindClients, schema.KindWorkers, schema.KindTasks} {
		col := ds.Collection(kind)
		if len(col.Records) == 0 {
			continue
		}
		first := col.Records[0]
		for _, field := range schema.RequiredFields(kind) {
			if col.Value(first, field).IsMissing() {
				findings = append(findings, schema.Finding{
					Kind:       schema.FindingError,
					Category:   CategoryRequiredColumns,
					Message:    fmt.Sprintf("%s is missing required column %s", kind, field),
					Suggestion: fmt.Sprintf("Add a %s column or rename an existing header to it", field),
					Severity:   schema.SeverityCritical,
				})
			}
		}
	}
	return findings
}

// checkWorkerSlots flags AvailableSlots entries that do not coerce to a
// number >= 1.
func checkWorkerSlots(ds *schema.Dataset) []schema.Finding {
	return checkPhaseList(ds.Workers, schema.FieldAvailableSlots)
}

// checkTaskPhases flags PreferredPhases entries that do not coerce to a
// number >= 1.
func checkTaskPhases(ds *schema.Dataset) []schema.Finding {
	return checkPhaseList(ds.Tasks, schema.FieldPreferredPhases)
}

func checkPhaseList(col *schema.Collection, field string) []schema.Finding {
	var findings []schema.Finding
	for i, r := range col.Records {
		cell := col.Value(r, field)
		if cell.IsMissing() {
			continue
		}
		_, bad := normalize.PositiveInts(cell)
		if len(bad) == 0 {
			continue
		}
		findings = append(findings, schema.Finding{
			Kind:       schema.FindingError,
			Category:   CategoryMalformedData,
			Message:    fmt.Sprintf("%s contains non-numeric or non-positive entries: %s", field, strings.Join(bad, ", ")),
			Location:   schema.Location(col.Kind, i),
			Suggestion: fmt.Sprintf("%s must hold positive phase numbers, e.g. [1,2,3]", field),
			Severity:   schema.SeverityHigh,
		})
	}
	return findings
}

// checkDuplicateIDs emits one critical finding per collection listing the
// distinct duplicated ID values.
func checkDuplicateIDs(ds *schema.Dataset) []schema.Finding {
	var findings []schema.Finding
	for _, kind := range []schema.CollectionKind{schema.KindClients, schema.KindWorkers, schema.KindTasks} {
		col := ds.Collection(kind)
		seen := map[string]int{}
		var dups []string
		for _, id := range col.IDs() {
			if id == "" {
				continue
			}
			seen[id]++
			if seen[id] == 2 {
				dups = append(dups, id)
			}
		}
		if len(dups) == 0 {
			continue
		}
		findings = append(findings, schema.Finding{
			Kind:       schema.FindingError,
			Category:   CategoryDuplicateIDs,
			Message:    fmt.Sprintf("%s has duplicate %s values: %s", kind, schema.IDField(kind), strings.Join(dups, ", ")),
			Suggestion: "Every record needs a unique ID",
			Severity:   schema.SeverityCritical,
		})
	}
	return findings
}

// checkValueRanges enforces PriorityLevel in [1,5], Duration >= 1 and
// MaxLoadPerPhase >= 1, one finding per offending record.
func checkValueRanges(ds *schema.Dataset) []schema.Finding {
	var findings []schema.Finding

	for i, r := range ds.Clients.Records {
		cell := ds.Clients.Value(r, schema.FieldPriorityLevel)
		if cell.IsMissing() {
			continue
		}
		if n, ok := cell.Number(); !ok || n != float64(int(n)) || n < 1 || n > 5 {
			findings = append(findings, schema.Finding{
				Kind:       schema.FindingError,
				Category:   CategoryInvalidRange,
				Message:    fmt.Sprintf("PriorityLevel %q must be an integer between 1 and 5", cell.String()),
				Location:   schema.Location(schema.KindClients, i),
				Suggestion: "Set PriorityLevel to a whole number from 1 to 5",
				Severity:   schema.SeverityHigh,
			})
		}
	}

	for i, r := range ds.Tasks.Records {
		cell := ds.Tasks.Value(r, schema.FieldDuration)
		if cell.IsMissing() {
			continue
		}
		if n, ok := cell.Number(); !ok || n != float64(int(n)) || n < 1 {
			findings = append(findings, schema.Finding{
				Kind:       schema.FindingError,
				Category:   CategoryInvalidRange,
				Message:    fmt.Sprintf("Duration %q must be an integer of at least 1", cell.String()),
				Location:   schema.Location(schema.KindTasks, i),
				Severity:   schema.SeverityHigh,
			})
		}
	}

	for i, r := range ds.Workers.Records {
		cell := ds.Workers.Value(r, schema.FieldMaxLoadPerPhase)
		if cell.IsMissing() {
			continue
		}
		if n, ok := cell.Number(); !ok || n != float64(int(n)) || n < 1 {
			findings = append(findings, schema.Finding{
				Kind:       schema.FindingError,
				Category:   CategoryInvalidRange,
				Message:    fmt.Sprintf("MaxLoadPerPhase %q must be an integer of at least 1", cell.String()),
				Location:   schema.Location(schema.KindWorkers, i),
				Severity:   schema.SeverityHigh,
			})
		}
	}

	return findings
}

// checkAttributesJSON flags AttributesJSON cells that are present but do
// not parse.
func checkAttributesJSON(ds *schema.Dataset) []schema.Finding {
	var findings []schema.Finding
	for i, r := range ds.Clients.Records {
		cell := ds.Clients.Value(r, schema.FieldAttributesJSON)
		if cell.IsMissing() || cell.String() == "" {
			continue
		}
		if _, ok := normalize.JSONObject(cell); !ok {
			findings = append(findings, schema.Finding{
				Kind:       schema.FindingError,
				Category:   CategoryBrokenJSON,
				Message:    "AttributesJSON does not parse as a JSON object",
				Location:   schema.Location(schema.KindClients, i),
				Suggestion: `Wrap attributes in valid JSON, e.g. {"vip": true}`,
				Severity:   schema.SeverityMedium,
			})
		}
	}
	return findings
}

// checkCrossReferences verifies every RequestedTaskIDs entry names an
// existing task.
func checkCrossReferences(ds *schema.Dataset) []schema.Finding {
	known := map[string]bool{}
	for _, id := range ds.Tasks.IDs() {
		known[id] = true
	}

	var findings []schema.Finding
	for i, r := range ds.Clients.Records {
		clientID := ds.Clients.Value(r, schema.FieldClientID).String()
		for _, taskID := range normalize.StringList(ds.Clients.Value(r, schema.FieldRequestedTaskIDs)) {
			if known[taskID] {
				continue
			}
			findings = append(findings, schema.Finding{
				Kind:       schema.FindingError,
				Category:   CategoryReference,
				Message:    fmt.Sprintf("Client %s requests unknown task %s", clientID, taskID),
				Location:   schema.Location(schema.KindClients, i),
				Suggestion: "Remove the reference or add the task",
				Severity:   schema.SeverityHigh,
			})
		}
	}
	return findings
}

// checkSkillCoverage emits a single critical finding listing skills
// required by tasks that no worker provides.
func checkSkillCoverage(ds *schema.Dataset) []schema.Finding {
	provided := map[string]bool{}
	for _, r := range ds.Workers.Records {
		for _, s := range normalize.StringList(ds.Workers.Value(r, schema.FieldSkills)) {
			provided[strings.ToLower(s)] = true
		}
	}

	seen := map[string]bool{}
	var uncovered []string
	for _, r := range ds.Tasks.Records {
		for _, s := range normalize.StringList(ds.Tasks.Value(r, schema.FieldRequiredSkills)) {
			key := strings.ToLower(s)
			if provided[key] || seen[key] {
				continue
			}
			seen[key] = true
			uncovered = append(uncovered, s)
		}
	}
	if len(uncovered) == 0 {
		return nil
	}
	return []schema.Finding{{
		Kind:       schema.FindingError,
		Category:   CategorySkillCoverage,
		Message:    fmt.Sprintf("No worker covers required skills: %s", strings.Join(uncovered, ", ")),
		Suggestion: "Add the skills to at least one worker or drop the requirement",
		Severity:   schema.SeverityCritical,
	}}
}

// checkWorkerCapacity is a defensive sanity check on the slots*load
// product.
func checkWorkerCapacity(ds *schema.Dataset) []schema.Finding {
	var findings []schema.Finding
	for i, r := range ds.Workers.Records {
		slots, _ := normalize.PositiveInts(ds.Workers.Value(r, schema.FieldAvailableSlots))
		load, ok := ds.Workers.Value(r, schema.FieldMaxLoadPerPhase).Number()
		if !ok {
			continue
		}
		if len(slots) > 0 && load > 0 && len(slots)*int(load) == 0 {
			findings = append(findings, schema.Finding{
				Kind:     schema.FindingWarning,
				Category: CategoryWorkerCapacity,
				Message:  "Worker has slots and load but zero effective capacity",
				Location: schema.Location(schema.KindWorkers, i),
				Severity: schema.SeverityMedium,
			})
		}
	}
	return findings
}

// checkPhaseSaturation compares per-phase worker capacity against task
// demand and warns where demand exceeds capacity.
func checkPhaseSaturation(ds *schema.Dataset) []schema.Finding {
	capacity := map[int]int{}
	for _, r := range ds.Workers.Records {
		slots, _ := normalize.PositiveInts(ds.Workers.Value(r, schema.FieldAvailableSlots))
		load, ok := ds.Workers.Value(r, schema.FieldMaxLoadPerPhase).Number()
		if !ok || load < 1 {
			continue
		}
		for _, phase := range slots {
			capacity[phase] += int(load)
		}
	}

	demand := map[int]int{}
	for _, r := range ds.Tasks.Records {
		phases, _ := normalize.PositiveInts(ds.Tasks.Value(r, schema.FieldPreferredPhases))
		duration, ok := ds.Tasks.Value(r, schema.FieldDuration).Number()
		if !ok || duration < 1 {
			continue
		}
		for _, phase := range phases {
			demand[phase] += int(duration)
		}
	}

	phases := make([]int, 0, len(demand))
	for phase := range demand {
		phases = append(phases, phase)
	}
	sort.Ints(phases)

	var findings []schema.Finding
	for _, phase := range phases {
		if demand[phase] <= capacity[phase] {
			continue
		}
		findings = append(findings, schema.Finding{
			Kind:       schema.FindingWarning,
			Category:   CategoryPhaseSaturation,
			Message:    fmt.Sprintf("Phase %d demand %d exceeds worker capacity %d", phase, demand[phase], capacity[phase]),
			Suggestion: "Spread PreferredPhases or add worker availability for this phase",
			Severity:   schema.SeverityHigh,
		})
	}
	return findings
}

// checkInsights emits advisory findings; these never become errors.
func checkInsights(ds *schema.Dataset) []schema.Finding {
	var findings []schema.Finding

	if workers := len(ds.Workers.Records); workers > 0 {
		if ratio := float64(len(ds.Tasks.Records)) / float64(workers); ratio > 5 {
			findings = append(findings, schema.Finding{
				Kind:     schema.FindingWarning,
				Category: CategoryInsight,
				Message:  fmt.Sprintf("Task-to-worker ratio is %.1f; allocation may leave tasks unassigned", ratio),
				Severity: schema.SeverityMedium,
			})
		}
	}

	if tasks := len(ds.Tasks.Records); tasks > 0 {
		counts := map[string]int{}
		names := map[string]string{}
		for _, r := range ds.Tasks.Records {
			for _, s := range normalize.StringList(ds.Tasks.Value(r, schema.FieldRequiredSkills)) {
				key := strings.ToLower(s)
				counts[key]++
				if _, ok := names[key]; !ok {
					names[key] = s
				}
			}
		}
		keys := make([]string, 0, len(counts))
		for key := range counts {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			if float64(counts[key])/float64(tasks) > 0.5 {
				findings = append(findings, schema.Finding{
					Kind:     schema.FindingWarning,
					Category: CategoryInsight,
					Message:  fmt.Sprintf("Skill %q is required by more than half of all tasks", names[key]),
					Severity: schema.SeverityMedium,
				})
			}
		}
	}

	if clients := len(ds.Clients.Records); clients > 0 {
		highPriority := 0
		for _, r := range ds.Clients.Records {
			if n, ok := ds.Clients.Value(r, schema.FieldPriorityLevel).Number(); ok && n >= 4 {
				highPriority++
			}
		}
		if float64(highPriority)/float64(clients) > 0.7 {
			findings = append(findings, schema.Finding{
				Kind:     schema.FindingWarning,
				Category: CategoryInsight,
				Message:  "Over 70% of clients sit at priority 4-5; priority loses its signal",
				Severity: schema.SeverityLow,
			})
		}
	}

	return findings
}
