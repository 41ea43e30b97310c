// Package validate runs the data-quality catalog over a dataset snapshot.
// Every run recomputes the full finding list; checks are independent and
// never suppress each other.
package validate

import "tabcast/pkg/schema"

type stage struct {
	name  string
	check func(*schema.Dataset) []schema.Finding
}

// The catalog in execution order. Order is part of the contract: findings
// come out in stage order on every run.
var stages = []stage{
	{"required-columns", checkRequiredColumns},
	{"worker-slots", checkWorkerSlots},
	{"task-phases", checkTaskPhases},
	{"duplicate-ids", checkDuplicateIDs},
	{"value-ranges", checkValueRanges},
	{"attributes-json", checkAttributesJSON},
	{"cross-references", checkCrossReferences},
	{"skill-coverage", checkSkillCoverage},
	{"worker-capacity", checkWorkerCapacity},
	{"phase-saturation", checkPhaseSaturation},
	{"insights", checkInsights},
}

// StageNames lists the catalog stages, for progress display.
func StageNames() []string {
	names := make([]string, len(stages))
	for i, s := range stages {
		names[i] = s.name
	}
	return names
}

// Report aggregates one validation run.
type Report struct {
	Findings []schema.Finding `json:"findings" yaml:"findings"`
	Errors   int              `json:"errors" yaml:"errors"`
	Warnings int              `json:"warnings" yaml:"warnings"`
	Passed   bool             `json:"passed" yaml:"passed"`
}

// Progress observes stage completion. It is purely observational: the
// report is identical whether or not a callback is installed.
type Progress func(stage string, index, total int)

// Run executes the full catalog over the dataset.
func Run(ds *schema.Dataset) *Report {
	return RunWithProgress(ds, nil)
}

// RunWithProgress executes the catalog, reporting each completed stage.
// All stages run unconditionally; one stage's findings never short-circuit
// another's. When no critical error exists a synthetic success finding is
// prepended.
func RunWithProgress(ds *schema.Dataset, progress Progress) *Report {
	report := &Report{}
	for i, s := range stages {
		report.Findings = append(report.Findings, s.check(ds)...)
		if progress != nil {
			progress(s.name, i+1, len(stages))
		}
	}

	critical := false
	for _, f := range report.Findings {
		switch f.Kind {
		case schema.FindingError:
			report.Errors++
			if f.Severity == schema.SeverityCritical {
				critical = true
			}
		case schema.FindingWarning:
			report.Warnings++
		}
	}
	report.Passed = !critical

	if !critical {
		report.Findings = append([]schema.Finding{{
			Kind:     schema.FindingSuccess,
			Category: "Validation",
			Message:  "All critical checks passed",
			Severity: schema.SeverityLow,
		}}, report.Findings...)
	}

	return report
}
