package evolution

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMutateStaysInBounds(t *testing.T) {
	mutator := NewMutator(rand.New(rand.NewSource(1)))

	params := DefaultParams()
	for i := 0; i < 1000; i++ {
		params = mutator.Mutate(params)

		assert.GreaterOrEqual(t, params.Kp, kpMin)
		assert.LessOrEqual(t, params.Kp, kpMax)
		assert.GreaterOrEqual(t, params.Ki, kiMin)
		assert.LessOrEqual(t, params.Ki, kiMax)
		assert.GreaterOrEqual(t, params.Kd, kdMin)
		assert.LessOrEqual(t, params.Kd, kdMax)
	}
}

func TestMutateStepSize(t *testing.T) {
	mutator := NewMutator(rand.New(rand.NewSource(2)))

	// away from the interval edges a single mutation moves at most one step
	params := DefaultParams()
	for i := 0; i < 100; i++ {
		mutated := mutator.Mutate(params)

		assert.LessOrEqual(t, math.Abs(mutated.Kp-params.Kp), kpStep)
		assert.LessOrEqual(t, math.Abs(mutated.Ki-params.Ki), kiStep)
		assert.LessOrEqual(t, math.Abs(mutated.Kd-params.Kd), kdStep)
	}
}

func TestMutateIsDeterministicPerSeed(t *testing.T) {
	first := NewMutator(rand.New(rand.NewSource(42))).Mutate(DefaultParams())
	second := NewMutator(rand.New(rand.NewSource(42))).Mutate(DefaultParams())

	assert.Equal(t, first, second)
}

func TestNewMutatorDefaultsRNG(t *testing.T) {
	mutator := NewMutator(nil)
	assert.NotNil(t, mutator.rng)
}
