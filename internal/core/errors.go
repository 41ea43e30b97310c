package core

import "fmt"

// NotFoundError reports an unknown ID against the rule collection.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// PromotionError reports an attempt to persist a parsed rule that is not
// directly acceptable and carried no explicit override.
type PromotionError struct {
	Confidence float64
	Warnings   []string
}

func (e *PromotionError) Error() string {
	if len(e.Warnings) > 0 {
		return fmt.Sprintf("rule has %d warning(s) and needs an explicit override", len(e.Warnings))
	}
	return fmt.Sprintf("rule confidence %.2f is below the acceptance gate", e.Confidence)
}
