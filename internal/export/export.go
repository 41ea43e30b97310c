// Package export builds the versioned configuration envelope consumed by
// the downstream allocation system.
package export

import (
	"encoding/json"
	"time"

	"gopkg.in/yaml.v3"

	"tabcast/internal/validate"
	"tabcast/pkg/schema"
)

// Version of the envelope format.
const Version = "1.0"

// Summary condenses the validation report for the envelope header.
type Summary struct {
	Errors   int  `json:"errors" yaml:"errors"`
	Warnings int  `json:"warnings" yaml:"warnings"`
	Passed   bool `json:"passed" yaml:"passed"`
}

// Envelope is the exported configuration artifact: findings, accepted
// rules, and the normalized prioritization weights.
type Envelope struct {
	Version     string           `json:"version" yaml:"version"`
	GeneratedAt time.Time        `json:"generatedAt" yaml:"generatedAt"`
	Summary     Summary          `json:"summary" yaml:"summary"`
	Findings    []schema.Finding `json:"findings" yaml:"findings"`
	Rules       []schema.Rule    `json:"rules" yaml:"rules"`
	Weights     schema.Weights   `json:"weights" yaml:"weights"`
}

// Build assembles an envelope from the current run state.
func Build(report *validate.Report, ruleList []schema.Rule, weights schema.Weights) *Envelope {
	env := &Envelope{
		Version:     Version,
		GeneratedAt: time.Now().UTC(),
		Rules:       ruleList,
		Weights:     weights.Normalized(),
	}
	if report != nil {
		env.Summary = Summary{Errors: report.Errors, Warnings: report.Warnings, Passed: report.Passed}
		env.Findings = report.Findings
	}
	return env
}

// JSON renders the envelope as indented JSON.
func (e *Envelope) JSON() ([]byte, error) {
	return json.MarshalIndent(e, "", "  ")
}

// YAML renders the envelope as YAML.
func (e *Envelope) YAML() ([]byte, error) {
	return yaml.Marshal(e)
}
