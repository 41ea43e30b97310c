package schema

// Weights is the prioritization configuration exported alongside rules.
// Values are relative; Normalized rescales them to sum to 1.
type Weights struct {
	PriorityLevel   float64 `json:"priorityLevel" yaml:"priorityLevel"`
	TaskFulfillment float64 `json:"taskFulfillment" yaml:"taskFulfillment"`
	Fairness        float64 `json:"fairness" yaml:"fairness"`
	Workload        float64 `json:"workload" yaml:"workload"`
	SkillMatch      float64 `json:"skillMatch" yaml:"skillMatch"`
}

// DefaultWeights returns the balanced profile.
func DefaultWeights() Weights {
	return Weights{
		PriorityLevel:   0.25,
		TaskFulfillment: 0.25,
		Fairness:        0.2,
		Workload:        0.15,
		SkillMatch:      0.15,
	}
}

// WeightPresets maps preset names to weight profiles.
func WeightPresets() map[string]Weights {
	return map[string]Weights{
		"balanced": DefaultWeights(),
		"maximize-fulfillment": {
			PriorityLevel:   0.2,
			TaskFulfillment: 0.45,
			Fairness:        0.1,
			Workload:        0.1,
			SkillMatch:      0.15,
		},
		"fair-distribution": {
			PriorityLevel:   0.15,
			TaskFulfillment: 0.2,
			Fairness:        0.4,
			Workload:        0.15,
			SkillMatch:      0.1,
		},
		"minimize-workload": {
			PriorityLevel:   0.15,
			TaskFulfillment: 0.15,
			Fairness:        0.15,
			Workload:        0.45,
			SkillMatch:      0.1,
		},
	}
}

// Normalized returns a copy rescaled so the weights sum to 1. A zero
// profile falls back to the default instead of dividing by zero.
func (w Weights) Normalized() Weights {
	sum := w.PriorityLevel + w.TaskFulfillment + w.Fairness + w.Workload + w.SkillMatch
	if sum <= 0 {
		return DefaultWeights()
	}
	return Weights{
		PriorityLevel:   w.PriorityLevel / sum,
		TaskFulfillment: w.TaskFulfillment / sum,
		Fairness:        w.Fairness / sum,
		Workload:        w.Workload / sum,
		SkillMatch:      w.SkillMatch / sum,
	}
}
