package schema

import "fmt"

// FindingKind classifies a validation outcome.
type FindingKind string

const (
	FindingError   FindingKind = "error"
	FindingWarning FindingKind = "warning"
	FindingSuccess FindingKind = "success"
)

// Severity ranks how blocking a finding is.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Finding is one validation outcome. Findings are transient: every run
// recomputes the full list, nothing is diffed against a previous run.
type Finding struct {
	Kind       FindingKind `json:"kind" yaml:"kind"`
	Category   string      `json:"category" yaml:"category"`
	Message    string      `json:"message" yaml:"message"`
	Location   string      `json:"location,omitempty" yaml:"location,omitempty"`
	Suggestion string      `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`
	Severity   Severity    `json:"severity" yaml:"severity"`
}

// Location renders a collection[index] pointer for a finding.
func Location(kind CollectionKind, index int) string {
	return fmt.Sprintf("%s[%d]", kind, index)
}

// IsCritical reports whether the finding blocks export.
func (f Finding) IsCritical() bool {
	return f.Kind == FindingError && f.Severity == SeverityCritical
}
