package assist

import (
	"context"
	"encoding/json"

	"tabcast/internal/core"
	"tabcast/internal/query"
	"tabcast/internal/rules"
	"tabcast/pkg/schema"
)

// Service chains the external strategy in front of the local heuristics.
// Each strategy either fully succeeds or contributes nothing; outputs are
// never merged across strategies.
type Service struct {
	completer Completer // nil when no API key is configured
	log       core.Logger
}

// NewService builds the chain. A nil completer disables the external
// strategy entirely; the local path is unaffected.
func NewService(completer Completer, log core.Logger) *Service {
	if log == nil {
		log = core.NopLogger()
	}
	return &Service{completer: completer, log: log}
}

// ParseConditions tries the external strategy first, then the local
// condition parser. The fallback is silent towards the caller: an assist
// failure is logged, never returned.
func (s *Service) ParseConditions(ctx context.Context, q string, kind schema.CollectionKind) []schema.Condition {
	if s.completer != nil {
		conds, err := s.remoteConditions(ctx, q, kind)
		if err == nil {
			return conds
		}
		s.log.Warn("assist condition parse failed, using local parser", "error", err.Error())
	}
	return query.Parse(q, kind)
}

// ConvertRule tries the external strategy first, then the local rule
// converter. Nil means neither path could classify the sentence.
func (s *Service) ConvertRule(ctx context.Context, sentence string, ds *schema.Dataset) *schema.ParsedRule {
	if s.completer != nil {
		parsed, err := s.remoteRule(ctx, sentence, ds)
		if err == nil {
			return parsed
		}
		s.log.Warn("assist rule conversion failed, using local converter", "error", err.Error())
	}
	return rules.Convert(sentence, ds)
}

func (s *Service) remoteConditions(ctx context.Context, q string, kind schema.CollectionKind) ([]schema.Condition, error) {
	text, err := s.completer.Complete(ctx, BuildConditionsPrompt(q, kind))
	if err != nil {
		return nil, err
	}
	var conds []schema.Condition
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &conds); err != nil {
		return nil, newParseError(text, err)
	}
	// Reject conditions naming fields outside the collection's schema; a
	// partially-usable response still falls back wholesale.
	known := map[string]bool{}
	for _, f := range schema.CanonicalFields(kind) {
		known[f] = true
	}
	for _, c := range conds {
		if !known[c.Field] {
			return nil, newShapeError("unknown field in assist response: " + c.Field)
		}
	}
	return conds, nil
}

func (s *Service) remoteRule(ctx context.Context, sentence string, ds *schema.Dataset) (*schema.ParsedRule, error) {
	text, err := s.completer.Complete(ctx, BuildRulePrompt(sentence, ds))
	if err != nil {
		return nil, err
	}
	var parsed schema.ParsedRule
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &parsed); err != nil {
		return nil, newParseError(text, err)
	}
	if parsed.Confidence < 0 {
		parsed.Confidence = 0
	}
	if parsed.Confidence > 1 {
		parsed.Confidence = 1
	}
	return &parsed, nil
}
