// Package rules maps natural-language sentences to typed business rules
// and owns the persisted rule collection.
package rules

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"tabcast/internal/normalize"
	"tabcast/internal/query"
	"tabcast/pkg/schema"
)

type weightedPattern struct {
	re     *regexp.Regexp
	weight float64
}

type patternGroup struct {
	ruleType schema.RuleType
	patterns []weightedPattern
}

func wp(pattern string, weight float64) weightedPattern {
	return weightedPattern{re: regexp.MustCompile(pattern), weight: weight}
}

// Classification tables, in rule-type declaration order. The winning type
// is the group holding the single highest-weight match; ties keep the
// earlier group.
var typePatterns = []patternGroup{
	{schema.RuleCoRun, []weightedPattern{
		wp(`co-?run`, 0.95),
		wp(`run together`, 0.9),
		wp(`together in the same phase`, 0.9),
		wp(`same phase`, 0.7),
		wp(`simultaneous`, 0.6),
	}},
	{schema.RuleSlotRestriction, []weightedPattern{
		wp(`slot restriction`, 0.95),
		wp(`common slots?`, 0.85),
		wp(`at least \d+ slots?`, 0.85),
		wp(`shared availability`, 0.7),
	}},
	{schema.RuleLoadLimit, []weightedPattern{
		wp(`load limit`, 0.95),
		wp(`no more than \d+ (?:tasks?|loads?)`, 0.9),
		wp(`max(?:imum)?\s+(?:load|tasks?)`, 0.8),
		wp(`overload`, 0.6),
	}},
	{schema.RulePhaseWindow, []weightedPattern{
		wp(`phase window`, 0.95),
		wp(`only (?:in|during) phases?`, 0.85),
		wp(`restrict(?:ed)? to phases?`, 0.8),
		wp(`between phases?`, 0.7),
	}},
	{schema.RulePatternMatch, []weightedPattern{
		wp(`starting with`, 0.85),
		wp(`ending with`, 0.85),
		wp(`matching`, 0.8),
		wp(`containing`, 0.75),
		wp(`\bpattern\b`, 0.9),
	}},
	{schema.RulePrecedenceOverride, []weightedPattern{
		wp(`precedence`, 0.9),
		wp(`override`, 0.85),
		wp(`priority over`, 0.8),
		wp(`takes? priority`, 0.75),
	}},
}

var (
	taskIDRe   = regexp.MustCompile(`(?i)\bT\d+\b`)
	slotsRe    = regexp.MustCompile(`(\d+)\s+(?:common\s+)?slots?`)
	loadRe     = regexp.MustCompile(`(\d+)\s+(?:tasks?|loads?)`)
	phaseSetRe = regexp.MustCompile(`phases?\s+(\d+(?:\s*-\s*\d+)?(?:(?:\s*,\s*|\s+and\s+)\d+(?:\s*-\s*\d+)?)*)`)
	fragmentRe = regexp.MustCompile(`(?i)(starting with|ending with|containing|matching)\s+(?:"([^"]+)"|'([^']+)'|(\S+))`)
	actionRe   = regexp.MustCompile(`\b(prioritize|exclude|include|flag)\b`)
	scopeRe    = regexp.MustCompile(`\b(global|specific|priority|client|worker)\b`)
)

// Convert classifies one sentence into a typed business rule. A nil return
// means no rule-type pattern matched at all, which callers must surface as
// "could not understand", never as a zero-confidence rule.
func Convert(sentence string, ds *schema.Dataset) *schema.ParsedRule {
	lower := strings.ToLower(sentence)

	var (
		found      bool
		bestType   schema.RuleType
		bestWeight float64
	)
	for _, group := range typePatterns {
		for _, p := range group.patterns {
			if p.re.MatchString(lower) && (!found || p.weight > bestWeight) {
				found = true
				bestType = group.ruleType
				bestWeight = p.weight
			}
		}
	}
	if !found {
		return nil
	}

	parsed := &schema.ParsedRule{
		Type:        bestType,
		Description: strings.TrimSpace(sentence),
		Confidence:  bestWeight,
	}

	switch bestType {
	case schema.RuleCoRun:
		extractCoRun(sentence, ds, parsed)
	case schema.RuleSlotRestriction:
		extractSlotRestriction(lower, ds, parsed)
	case schema.RuleLoadLimit:
		extractLoadLimit(lower, ds, parsed)
	case schema.RulePhaseWindow:
		extractPhaseWindow(sentence, lower, ds, parsed)
	case schema.RulePatternMatch:
		extractPatternMatch(sentence, lower, parsed)
	case schema.RulePrecedenceOverride:
		extractPrecedenceOverride(lower, parsed)
	}

	parsed.Name = ruleName(parsed)
	if parsed.Confidence < 0 {
		parsed.Confidence = 0
	}
	if parsed.Confidence > 1 {
		parsed.Confidence = 1
	}
	return parsed
}

// validTaskIDs returns sentence tokens shaped like task IDs that name an
// existing task, in order of appearance without duplicates.
func validTaskIDs(sentence string, ds *schema.Dataset) []string {
	known := map[string]bool{}
	for _, id := range ds.Tasks.IDs() {
		known[strings.ToUpper(id)] = true
	}
	seen := map[string]bool{}
	var out []string
	for _, tok := range taskIDRe.FindAllString(sentence, -1) {
		id := strings.ToUpper(tok)
		if known[id] && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func extractCoRun(sentence string, ds *schema.Dataset, parsed *schema.ParsedRule) {
	tasks := validTaskIDs(sentence, ds)
	if len(tasks) < 2 {
		parsed.Warnings = append(parsed.Warnings, "Need at least two valid task IDs for a co-run rule")
		parsed.Confidence -= 0.2
		parsed.Parameters = schema.CoRunParams{Tasks: tasks}
		return
	}

	parsed.Parameters = schema.CoRunParams{Tasks: tasks}
	parsed.Confidence += 0.1

	// The one semantic cross-check: co-running tasks should share at least
	// one preferred phase.
	common := commonPreferredPhases(tasks, ds)
	if len(common) == 0 {
		parsed.Warnings = append(parsed.Warnings, "Selected tasks have no overlapping preferred phases")
		return
	}
	parts := make([]string, len(common))
	for i, p := range common {
		parts[i] = strconv.Itoa(p)
	}
	parsed.Suggestions = append(parsed.Suggestions,
		fmt.Sprintf("Tasks share preferred phases: %s", strings.Join(parts, ", ")))
}

func commonPreferredPhases(taskIDs []string, ds *schema.Dataset) []int {
	var common map[int]bool
	for _, id := range taskIDs {
		phases := map[int]bool{}
		for _, r := range ds.Tasks.Records {
			if !strings.EqualFold(ds.Tasks.Value(r, schema.FieldTaskID).String(), id) {
				continue
			}
			values, _ := normalize.PositiveInts(ds.Tasks.Value(r, schema.FieldPreferredPhases))
			for _, p := range values {
				phases[p] = true
			}
			break
		}
		if common == nil {
			common = phases
			continue
		}
		for p := range common {
			if !phases[p] {
				delete(common, p)
			}
		}
	}
	out := make([]int, 0, len(common))
	for p := range common {
		out = append(out, p)
	}
	sort.Ints(out)
	return out
}

// groupNames collects the distinct values of a group column in record
// order.
func groupNames(col *schema.Collection, field string) []string {
	seen := map[string]bool{}
	var out []string
	for _, r := range col.Records {
		name := col.Value(r, field).String()
		key := strings.ToLower(name)
		if name == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, name)
	}
	return out
}

func findGroup(lower string, groups []string) (string, bool) {
	for _, g := range groups {
		if strings.Contains(lower, strings.ToLower(g)) {
			return g, true
		}
	}
	return "", false
}

func extractSlotRestriction(lower string, ds *schema.Dataset, parsed *schema.ParsedRule) {
	clientGroups := groupNames(ds.Clients, schema.FieldGroupTag)
	workerGroups := groupNames(ds.Workers, schema.FieldWorkerGroup)

	params := schema.SlotRestrictionParams{}
	if g, ok := findGroup(lower, clientGroups); ok {
		params.GroupType, params.Group = "client", g
	} else if g, ok := findGroup(lower, workerGroups); ok {
		params.GroupType, params.Group = "worker", g
	} else {
		available := append(append([]string{}, clientGroups...), workerGroups...)
		parsed.Suggestions = append(parsed.Suggestions,
			fmt.Sprintf("No known group found in the sentence. Available groups: %s", strings.Join(available, ", ")))
		parsed.Confidence -= 0.1
	}

	if m := slotsRe.FindStringSubmatch(lower); m != nil {
		params.MinCommonSlots, _ = strconv.Atoi(m[1])
	} else {
		parsed.Warnings = append(parsed.Warnings, "No minimum slot count found in the sentence")
		parsed.Confidence -= 0.1
	}

	parsed.Parameters = params
}

func extractLoadLimit(lower string, ds *schema.Dataset, parsed *schema.ParsedRule) {
	workerGroups := groupNames(ds.Workers, schema.FieldWorkerGroup)

	params := schema.LoadLimitParams{}
	if g, ok := findGroup(lower, workerGroups); ok {
		params.WorkerGroup = g
	} else {
		// Unlike slot restrictions, a missing group costs no confidence here.
		parsed.Warnings = append(parsed.Warnings,
			fmt.Sprintf("No known worker group found. Available groups: %s", strings.Join(workerGroups, ", ")))
	}

	if m := loadRe.FindStringSubmatch(lower); m != nil {
		params.MaxSlotsPerPhase, _ = strconv.Atoi(m[1])
	} else {
		parsed.Warnings = append(parsed.Warnings, "No load limit number found in the sentence")
		parsed.Confidence -= 0.1
	}

	parsed.Parameters = params
}

func extractPhaseWindow(sentence, lower string, ds *schema.Dataset, parsed *schema.ParsedRule) {
	params := schema.PhaseWindowParams{}

	tasks := validTaskIDs(sentence, ds)
	if len(tasks) > 0 {
		params.Task = tasks[0]
	} else {
		parsed.Warnings = append(parsed.Warnings, "No valid task ID found in the sentence")
		parsed.Confidence -= 0.2
	}

	if m := phaseSetRe.FindStringSubmatch(lower); m != nil {
		for _, tok := range query.NumberList(m[1]) {
			if n, err := strconv.Atoi(tok); err == nil {
				params.Phases = append(params.Phases, n)
			}
		}
	}
	if len(params.Phases) == 0 {
		parsed.Warnings = append(parsed.Warnings, "No phase numbers found in the sentence")
		parsed.Confidence -= 0.1
	} else if params.Task != "" {
		parsed.Confidence += 0.1
	}

	parsed.Parameters = params
}

func extractPatternMatch(sentence, lower string, parsed *schema.ParsedRule) {
	params := schema.PatternMatchParams{Action: schema.ActionInclude}

	if m := fragmentRe.FindStringSubmatch(sentence); m != nil {
		fragment := m[2]
		if fragment == "" {
			fragment = m[3]
		}
		if fragment == "" {
			fragment = strings.Trim(m[4], `.,;:"'`)
		}
		switch strings.ToLower(m[1]) {
		case "starting with":
			params.Regex = "^" + regexp.QuoteMeta(fragment)
		case "ending with":
			params.Regex = regexp.QuoteMeta(fragment) + "$"
		case "containing":
			params.Regex = regexp.QuoteMeta(fragment)
		case "matching":
			params.Regex = fragment // taken as a literal regex
		}
	} else {
		parsed.Warnings = append(parsed.Warnings, "No pattern fragment found in the sentence")
		parsed.Confidence -= 0.1
	}

	if m := actionRe.FindStringSubmatch(lower); m != nil {
		params.Action = m[1]
	}

	parsed.Parameters = params
}

func extractPrecedenceOverride(lower string, parsed *schema.ParsedRule) {
	params := schema.PrecedenceOverrideParams{Scope: "specific"}
	if m := scopeRe.FindStringSubmatch(lower); m != nil {
		params.Scope = m[1]
	}
	parsed.Parameters = params
}

// ruleName synthesizes a display name from the type and parameters. Names
// are templated, never free text.
func ruleName(parsed *schema.ParsedRule) string {
	switch p := parsed.Parameters.(type) {
	case schema.CoRunParams:
		if len(p.Tasks) > 0 {
			return "Co-run: " + strings.Join(p.Tasks, " + ")
		}
		return "Co-run rule"
	case schema.SlotRestrictionParams:
		if p.Group != "" {
			return fmt.Sprintf("Slot restriction: %s (min %d common slots)", p.Group, p.MinCommonSlots)
		}
		return "Slot restriction rule"
	case schema.LoadLimitParams:
		if p.WorkerGroup != "" {
			return fmt.Sprintf("Load limit: %s (max %d per phase)", p.WorkerGroup, p.MaxSlotsPerPhase)
		}
		return "Load limit rule"
	case schema.PhaseWindowParams:
		if p.Task != "" && len(p.Phases) > 0 {
			parts := make([]string, len(p.Phases))
			for i, ph := range p.Phases {
				parts[i] = strconv.Itoa(ph)
			}
			return fmt.Sprintf("Phase window: %s in phases %s", p.Task, strings.Join(parts, ", "))
		}
		return "Phase window rule"
	case schema.PatternMatchParams:
		if p.Regex != "" {
			return fmt.Sprintf("Pattern %s: /%s/", p.Action, p.Regex)
		}
		return "Pattern match rule"
	case schema.PrecedenceOverrideParams:
		return fmt.Sprintf("Precedence override: %s scope", p.Scope)
	}
	return string(parsed.Type) + " rule"
}
