// Package generator expands parameter sweeps and drives the external text
// generation service, one combination at a time.
package generator

import "fmt"

// Domain bounds for the sampling parameters the service accepts.
const (
	MinTemperature = 0.0
	MaxTemperature = 2.0
	MinTopP        = 0.0
	MaxTopP        = 1.0
)

// Defaults applied when a combination leaves a discrete parameter unset.
const (
	DefaultTemperature     = 0.7
	DefaultTopP            = 0.95
	DefaultTopK            = 40
	DefaultMaxOutputTokens = 2048
)

// ParameterRanges is the user-supplied sweep: one list of candidate values per
// sampling parameter. Every list must be non-empty.
type ParameterRanges struct {
	Temperature     []float64 `json:"temperature"`
	TopP            []float64 `json:"top_p"`
	TopK            []int     `json:"top_k"`
	MaxOutputTokens []int     `json:"max_output_tokens"`
}

// Combination is one concrete point of the sweep.
type Combination struct {
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"top_p"`
	TopK            int     `json:"top_k"`
	MaxOutputTokens int     `json:"max_output_tokens"`
}

// withDefaults fills unset discrete parameters. Zero is not a valid value for
// either, so it doubles as the unset marker.
func (c Combination) withDefaults() Combination {
	if c.TopK == 0 {
		c.TopK = DefaultTopK
	}
	if c.MaxOutputTokens == 0 {
		c.MaxOutputTokens = DefaultMaxOutputTokens
	}
	return c
}

// ValidationError reports a rejected parameter range.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ExpandCombinations validates the ranges and returns their full cartesian
// product. Temperature varies slowest and max_output_tokens fastest, so the
// output order is deterministic for a given input.
func ExpandCombinations(ranges ParameterRanges) ([]Combination, error) {
	if err := validateRanges(ranges); err != nil {
		return nil, err
	}

	combos := make([]Combination, 0,
		len(ranges.Temperature)*len(ranges.TopP)*len(ranges.TopK)*len(ranges.MaxOutputTokens))
	for _, temp := range ranges.Temperature {
		for _, topP := range ranges.TopP {
			for _, topK := range ranges.TopK {
				for _, maxTokens := range ranges.MaxOutputTokens {
					combos = append(combos, Combination{
						Temperature:     temp,
						TopP:            topP,
						TopK:            topK,
						MaxOutputTokens: maxTokens,
					})
				}
			}
		}
	}
	return combos, nil
}

func validateRanges(ranges ParameterRanges) error {
	if len(ranges.Temperature) == 0 {
		return &ValidationError{Field: "temperature", Reason: "at least one value required"}
	}
	if len(ranges.TopP) == 0 {
		return &ValidationError{Field: "top_p", Reason: "at least one value required"}
	}
	if len(ranges.TopK) == 0 {
		return &ValidationError{Field: "top_k", Reason: "at least one value required"}
	}
	if len(ranges.MaxOutputTokens) == 0 {
		return &ValidationError{Field: "max_output_tokens", Reason: "at least one value required"}
	}

	for _, t := range ranges.Temperature {
		if t < MinTemperature || t > MaxTemperature {
			return &ValidationError{Field: "temperature", Reason: fmt.Sprintf("%v outside [%v, %v]", t, MinTemperature, MaxTemperature)}
		}
	}
	for _, p := range ranges.TopP {
		if p < MinTopP || p > MaxTopP {
			return &ValidationError{Field: "top_p", Reason: fmt.Sprintf("%v outside [%v, %v]", p, MinTopP, MaxTopP)}
		}
	}
	for _, k := range ranges.TopK {
		if k < 1 {
			return &ValidationError{Field: "top_k", Reason: fmt.Sprintf("%d must be positive", k)}
		}
	}
	for _, m := range ranges.MaxOutputTokens {
		if m < 1 {
			return &ValidationError{Field: "max_output_tokens", Reason: fmt.Sprintf("%d must be positive", m)}
		}
	}
	return nil
}
