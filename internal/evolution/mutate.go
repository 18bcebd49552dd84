package evolution

import (
	"math/rand"
	"time"
)

// Mutator applies an independent uniform perturbation to each gain and
// clamps the result into the gain's valid interval. The random source is
// injected so tests can pin down exact mutated values.
type Mutator struct {
	rng *rand.Rand
}

func NewMutator(rng *rand.Rand) *Mutator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Mutator{rng: rng}
}

func (m *Mutator) Mutate(params PidParams) PidParams {
	return PidParams{
		Kp: clamp(params.Kp+m.jitter(kpStep), kpMin, kpMax),
		Ki: clamp(params.Ki+m.jitter(kiStep), kiMin, kiMax),
		Kd: clamp(params.Kd+m.jitter(kdStep), kdMin, kdMax),
	}
}

// jitter draws uniformly from (-step, +step).
func (m *Mutator) jitter(step float64) float64 {
	return (m.rng.Float64()*2 - 1) * step
}
