package schema

import (
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// RuleType is one of the six supported business-rule shapes.
type RuleType string

const (
	RuleCoRun              RuleType = "coRun"
	RuleSlotRestriction    RuleType = "slotRestriction"
	RuleLoadLimit          RuleType = "loadLimit"
	RulePhaseWindow        RuleType = "phaseWindow"
	RulePatternMatch       RuleType = "patternMatch"
	RulePrecedenceOverride RuleType = "precedenceOverride"
)

// RuleTypes lists the six types in declaration order. Classification ties
// break in this order.
var RuleTypes = []RuleType{
	RuleCoRun, RuleSlotRestriction, RuleLoadLimit,
	RulePhaseWindow, RulePatternMatch, RulePrecedenceOverride,
}

// Pattern-match actions.
const (
	ActionPrioritize = "prioritize"
	ActionExclude    = "exclude"
	ActionInclude    = "include"
	ActionFlag       = "flag"
)

// MinAcceptableConfidence is the promotion gate: a parsed rule below it (or
// carrying any warning) needs an explicit user override before persisting.
const MinAcceptableConfidence = 0.5

// RuleParams is the type-specific parameter object of a rule.
type RuleParams interface {
	RuleType() RuleType
}

// CoRunParams groups tasks that must run in the same phase.
type CoRunParams struct {
	Tasks []string `json:"tasks" yaml:"tasks"`
}

func (CoRunParams) RuleType() RuleType { return RuleCoRun }

// SlotRestrictionParams requires a group to share a minimum slot count.
type SlotRestrictionParams struct {
	GroupType      string `json:"groupType" yaml:"groupType"` // client or worker
	Group          string `json:"group" yaml:"group"`
	MinCommonSlots int    `json:"minCommonSlots" yaml:"minCommonSlots"`
}

func (SlotRestrictionParams) RuleType() RuleType { return RuleSlotRestriction }

// LoadLimitParams caps a worker group's per-phase load.
type LoadLimitParams struct {
	WorkerGroup      string `json:"workerGroup" yaml:"workerGroup"`
	MaxSlotsPerPhase int    `json:"maxSlotsPerPhase" yaml:"maxSlotsPerPhase"`
}

func (LoadLimitParams) RuleType() RuleType { return RuleLoadLimit }

// PhaseWindowParams restricts a task to a set of phases.
type PhaseWindowParams struct {
	Task   string `json:"task" yaml:"task"`
	Phases []int  `json:"phases" yaml:"phases"`
}

func (PhaseWindowParams) RuleType() RuleType { return RulePhaseWindow }

// PatternMatchParams applies an action to entities matching a regex.
type PatternMatchParams struct {
	Regex  string `json:"regex" yaml:"regex"`
	Action string `json:"action" yaml:"action"`
}

func (PatternMatchParams) RuleType() RuleType { return RulePatternMatch }

// PrecedenceOverrideParams sets the rule-ordering scope.
type PrecedenceOverrideParams struct {
	Scope string `json:"scope" yaml:"scope"` // global, specific, priority, client, worker
}

func (PrecedenceOverrideParams) RuleType() RuleType { return RulePrecedenceOverride }

// ParsedRule is a candidate rule derived from one natural-language
// sentence, pending user acceptance.
type ParsedRule struct {
	Type        RuleType   `json:"type"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Parameters  RuleParams `json:"parameters"`
	Confidence  float64    `json:"confidence"`
	Suggestions []string   `json:"suggestions,omitempty"`
	Warnings    []string   `json:"warnings,omitempty"`
}

// Acceptable reports whether the rule may be promoted without an explicit
// user override. Any warning, or confidence below the gate, blocks it.
func (p *ParsedRule) Acceptable() bool {
	return len(p.Warnings) == 0 && p.Confidence >= MinAcceptableConfidence
}

// Rule is a persisted, user-accepted business rule.
type Rule struct {
	ID          string     `json:"id" yaml:"id"`
	Type        RuleType   `json:"type" yaml:"type"`
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description" yaml:"description"`
	Parameters  RuleParams `json:"parameters" yaml:"parameters"`
	Priority    int        `json:"priority" yaml:"priority"`
	Enabled     bool       `json:"enabled" yaml:"enabled"`
	CreatedAt   time.Time  `json:"createdAt" yaml:"createdAt"`
}

func decodeParamsJSON(t RuleType, raw json.RawMessage) (RuleParams, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("missing parameters for rule type %q", t)
	}
	switch t {
	case RuleCoRun:
		var p CoRunParams
		return p, json.Unmarshal(raw, &p)
	case RuleSlotRestriction:
		var p SlotRestrictionParams
		return p, json.Unmarshal(raw, &p)
	case RuleLoadLimit:
		var p LoadLimitParams
		return p, json.Unmarshal(raw, &p)
	case RulePhaseWindow:
		var p PhaseWindowParams
		return p, json.Unmarshal(raw, &p)
	case RulePatternMatch:
		var p PatternMatchParams
		return p, json.Unmarshal(raw, &p)
	case RulePrecedenceOverride:
		var p PrecedenceOverrideParams
		return p, json.Unmarshal(raw, &p)
	}
	return nil, fmt.Errorf("unknown rule type: %q", t)
}

func decodeParamsYAML(t RuleType, node *yaml.Node) (RuleParams, error) {
	switch t {
	case RuleCoRun:
		var p CoRunParams
		return p, node.Decode(&p)
	case RuleSlotRestriction:
		var p SlotRestrictionParams
		return p, node.Decode(&p)
	case RuleLoadLimit:
		var p LoadLimitParams
		return p, node.Decode(&p)
	case RulePhaseWindow:
		var p PhaseWindowParams
		return p, node.Decode(&p)
	case RulePatternMatch:
		var p PatternMatchParams
		return p, node.Decode(&p)
	case RulePrecedenceOverride:
		var p PrecedenceOverrideParams
		return p, node.Decode(&p)
	}
	return nil, fmt.Errorf("unknown rule type: %q", t)
}

// UnmarshalJSON decodes a rule, selecting the parameter struct by type.
func (r *Rule) UnmarshalJSON(data []byte) error {
	type ruleAlias struct {
		ID          string          `json:"id"`
		Type        RuleType        `json:"type"`
		Name        string          `json:"name"`
		Description string          `json:"description"`
		Parameters  json.RawMessage `json:"parameters"`
		Priority    int             `json:"priority"`
		Enabled     bool            `json:"enabled"`
		CreatedAt   time.Time       `json:"createdAt"`
	}
	var tmp ruleAlias
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}
	params, err := decodeParamsJSON(tmp.Type, tmp.Parameters)
	if err != nil {
		return err
	}
	r.ID = tmp.ID
	r.Type = tmp.Type
	r.Name = tmp.Name
	r.Description = tmp.Description
	r.Parameters = params
	r.Priority = tmp.Priority
	r.Enabled = tmp.Enabled
	r.CreatedAt = tmp.CreatedAt
	return nil
}

// UnmarshalYAML decodes a rule from the persisted store, selecting the
// parameter struct by type.
func (r *Rule) UnmarshalYAML(node *yaml.Node) error {
	type ruleAlias struct {
		ID          string    `yaml:"id"`
		Type        RuleType  `yaml:"type"`
		Name        string    `yaml:"name"`
		Description string    `yaml:"description"`
		Parameters  yaml.Node `yaml:"parameters"`
		Priority    int       `yaml:"priority"`
		Enabled     bool      `yaml:"enabled"`
		CreatedAt   time.Time `yaml:"createdAt"`
	}
	var tmp ruleAlias
	if err := node.Decode(&tmp); err != nil {
		return err
	}
	params, err := decodeParamsYAML(tmp.Type, &tmp.Parameters)
	if err != nil {
		return err
	}
	r.ID = tmp.ID
	r.Type = tmp.Type
	r.Name = tmp.Name
	r.Description = tmp.Description
	r.Parameters = params
	r.Priority = tmp.Priority
	r.Enabled = tmp.Enabled
	r.CreatedAt = tmp.CreatedAt
	return nil
}

// UnmarshalJSON decodes a parsed rule, selecting the parameter struct by
// type. Used when the external assist path returns a rule as JSON.
func (p *ParsedRule) UnmarshalJSON(data []byte) error {
	type parsedAlias struct {
		Type        RuleType        `json:"type"`
		Name        string          `json:"name"`
		Description string          `json:"description"`
		Parameters  json.RawMessage `json:"parameters"`
		Confidence  float64         `json:"confidence"`
		Suggestions []string        `json:"suggestions"`
		Warnings    []string        `json:"warnings"`
	}
	var tmp parsedAlias
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}
	params, err := decodeParamsJSON(tmp.Type, tmp.Parameters)
	if err != nil {
		return err
	}
	p.Type = tmp.Type
	p.Name = tmp.Name
	p.Description = tmp.Description
	p.Parameters = params
	p.Confidence = tmp.Confidence
	p.Suggestions = tmp.Suggestions
	p.Warnings = tmp.Warnings
	return nil
}
