// Package scorer maps distances and deprivation attributes to sub-scores
// and combines them into the composite total used for ranking.
package scorer

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// Weights defines the contribution of each sub-score to the composite
// total. The scorer trusts the caller that weights sum as intended; no
// normalization is performed internally.
type Weights struct {
	Need       float64 `json:"need" yaml:"need" mapstructure:"need"`
	Healthcare float64 `json:"healthcare" yaml:"healthcare" mapstructure:"healthcare"`
	Research   float64 `json:"research" yaml:"research" mapstructure:"research"`
}

// DefaultWeights returns the standard weight distribution.
func DefaultWeights() Weights {
	return Weights{
		Need:       0.5,
		Healthcare: 0.25,
		Research:   0.25,
	}
}

// Validate rejects negative weights and an all-zero weight set.
func (w Weights) Validate() error {
	var errs []string

	named := map[string]float64{
		"need":       w.Need,
		"healthcare": w.Healthcare,
		"research":   w.Research,
	}
	for name, v := range named {
		if v < 0 {
			errs = append(errs, fmt.Sprintf("%s_weight must be >= 0", name))
		}
	}
	if w.Need == 0 && w.Healthcare == 0 && w.Research == 0 {
		errs = append(errs, "at least one weight must be positive")
	}

	if len(errs) > 0 {
		return eris.Errorf("scorer: weight validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
