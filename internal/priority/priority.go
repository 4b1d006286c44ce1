// Package priority scores trains for dispatch. Higher scores win.
package priority

import (
	"errors"
	"fmt"
	"math"

	"corridor_dispatch/internal/models"
)

var ErrInvalidWeights = errors.New("invalid priority weights")

// Score returns baseWeight(type) + delayMinutes*delaySensitivity. Weights are
// passed on every call; nothing is cached.
func Score(t models.Train, w models.PriorityWeights) float64 {
	return BaseWeight(t.Type, w) + float64(t.DelayMinutes)*w.DelaySensitivity
}

// BaseWeight looks up the type weight, falling back to the freight weight.
func BaseWeight(tt models.TrainType, w models.PriorityWeights) float64 {
	switch tt {
	case models.TrainExpress:
		return w.Express
	case models.TrainPassenger:
		return w.Passenger
	default:
		return w.Freight
	}
}

// Validate rejects weights that would poison score comparisons.
func Validate(w models.PriorityWeights) error {
	fields := []struct {
		name string
		v    float64
	}{
		{"express", w.Express},
		{"passenger", w.Passenger},
		{"freight", w.Freight},
		{"delay_sensitivity", w.DelaySensitivity},
	}
	for _, f := range fields {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%w: %s is not a finite number", ErrInvalidWeights, f.name)
		}
		if f.v < 0 {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidWeights, f.name)
		}
	}
	return nil
}
