package rules

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"tabcast/internal/core"
	"tabcast/pkg/schema"
)

const storeVersion = "1.0"

type storeDoc struct {
	Version string        `yaml:"version"`
	Rules   []schema.Rule `yaml:"rules"`
}

// Store owns the persisted, user-accepted rule collection. The collection
// is append-only apart from explicit deletes and enable toggles.
type Store struct {
	path  string
	rules []schema.Rule
}

// OpenStore loads the rule collection from a YAML file. A missing file
// yields an empty store.
func OpenStore(path string) (*Store, error) {
	s := &Store{path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("read rule store: %w", err)
	}
	var doc storeDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse rule store: %w", err)
	}
	s.rules = doc.Rules
	return s, nil
}

// Add promotes a parsed rule into a persisted rule. Unless override is
// set, rules that are not directly acceptable (any warning, or confidence
// below the gate) are refused; this is the last automated gate before a
// rule reaches the exported configuration.
func (s *Store) Add(parsed *schema.ParsedRule, priority int, override bool) (schema.Rule, error) {
	if parsed == nil {
		return schema.Rule{}, fmt.Errorf("nil parsed rule")
	}
	if !parsed.Acceptable() && !override {
		return schema.Rule{}, &core.PromotionError{
			Confidence: parsed.Confidence,
			Warnings:   parsed.Warnings,
		}
	}

	id, err := schema.NewRuleID()
	if err != nil {
		return schema.Rule{}, fmt.Errorf("generate rule ID: %w", err)
	}

	rule := schema.Rule{
		ID:          id,
		Type:        parsed.Type,
		Name:        parsed.Name,
		Description: parsed.Description,
		Parameters:  parsed.Parameters,
		Priority:    priority,
		Enabled:     true,
		CreatedAt:   time.Now().UTC(),
	}
	s.rules = append(s.rules, rule)
	if err := s.save(); err != nil {
		s.rules = s.rules[:len(s.rules)-1]
		return schema.Rule{}, err
	}
	return rule, nil
}

// Remove deletes a rule by ID.
func (s *Store) Remove(id string) error {
	for i, r := range s.rules {
		if r.ID == id {
			s.rules = append(s.rules[:i], s.rules[i+1:]...)
			return s.save()
		}
	}
	return &core.NotFoundError{Kind: "rule", ID: id}
}

// Toggle flips a rule's enabled flag, returning the new state.
func (s *Store) Toggle(id string) (bool, error) {
	for i := range s.rules {
		if s.rules[i].ID == id {
			s.rules[i].Enabled = !s.rules[i].Enabled
			if err := s.save(); err != nil {
				s.rules[i].Enabled = !s.rules[i].Enabled
				return false, err
			}
			return s.rules[i].Enabled, nil
		}
	}
	return false, &core.NotFoundError{Kind: "rule", ID: id}
}

// List returns the rules ordered by descending priority, then creation
// time.
func (s *Store) List() []schema.Rule {
	out := make([]schema.Rule, len(s.rules))
	copy(out, s.rules)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Enabled returns only the enabled rules, in List order.
func (s *Store) Enabled() []schema.Rule {
	var out []schema.Rule
	for _, r := range s.List() {
		if r.Enabled {
			out = append(out, r)
		}
	}
	return out
}

// save writes the store atomically: marshal to a temp file in the same
// directory, then rename over the target.
func (s *Store) save() error {
	doc := storeDoc{Version: storeVersion, Rules: s.rules}
	data, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("marshal rule store: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create rule store directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".rules-*.yaml")
	if err != nil {
		return fmt.Errorf("create temp rule store: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp rule store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp rule store: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace rule store: %w", err)
	}
	return nil
}
