package channels

import (
	"errors"
	"fmt"
	"math"
)

// ErrCoherence is returned for non-physical coherence times.
var ErrCoherence = errors.New("channels: invalid coherence times")

// DampingFromCoherence converts relaxation time t1, dephasing time t2 and a
// gate duration (all in the same unit) into the amp and phase rates of
// GeneralizedPhaseAmplitudeDampingChannel. Requires t2 <= 2*t1.
func DampingFromCoherence(t1, t2, duration float64) (amp, phase float64, err error) {
	if t1 <= 0 || t2 <= 0 || duration < 0 {
		return 0, 0, fmt.Errorf("%w: t1=%g t2=%g duration=%g", ErrCoherence, t1, t2, duration)
	}
	if t2 > 2*t1 {
		return 0, 0, fmt.Errorf("%w: t2=%g exceeds 2*t1=%g", ErrCoherence, t2, 2*t1)
	}

	amp = 1 - math.Exp(-duration/t1)
	// Off-diagonal decay is sqrt(1-amp-phase) = exp(-duration/t2).
	phase = 1 - amp - math.Exp(-2*duration/t2)
	if phase < 0 {
		phase = 0
	}
	return amp, phase, nil
}
