package evolution

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fitnessEvaluator hands out a perfect window for every gain set except the
// incumbent, which gets the configured frame duration.
type fitnessEvaluator struct {
	incumbent          PidParams
	incumbentFrametime time.Duration
	candidateFrametime time.Duration
	calls              int
}

func (e *fitnessEvaluator) RunWindow(_ context.Context, params PidParams) (*Window, error) {
	e.calls++
	frametime := e.candidateFrametime
	if params == e.incumbent {
		frametime = e.incumbentFrametime
	}
	return &Window{
		Buffer:         Buffer{TargetFPS: 100, Frametimes: frametimes(500, frametime)},
		ControlHistory: make([]int64, 30),
	}, nil
}

func newTestTuner(t *testing.T, eval Evaluator) (*Tuner, *Store) {
	t.Helper()
	store, _ := newTestStore(t)
	mutator := NewMutator(rand.New(rand.NewSource(1)))

	return NewTuner(store, mutator, eval, 0, logr.Discard()), store
}

func TestStepAcceptsBetterCandidate(t *testing.T) {
	eval := &fitnessEvaluator{
		incumbent:          DefaultParams(),
		incumbentFrametime: 11 * time.Millisecond,
		candidateFrametime: 10 * time.Millisecond,
	}
	tuner, store := newTestTuner(t, eval)

	require.NoError(t, tuner.Step(context.Background(), "com.example.game"))

	winner, err := store.Load("com.example.game")
	require.NoError(t, err)
	assert.NotEqual(t, DefaultParams(), winner)
	assert.Equal(t, 2, eval.calls)
}

func TestStepKeepsIncumbentOverWorseCandidate(t *testing.T) {
	eval := &fitnessEvaluator{
		incumbent:          DefaultParams(),
		incumbentFrametime: 10 * time.Millisecond,
		candidateFrametime: 11 * time.Millisecond,
	}
	tuner, store := newTestTuner(t, eval)

	require.NoError(t, tuner.Step(context.Background(), "com.example.game"))

	winner, err := store.Load("com.example.game")
	require.NoError(t, err)
	assert.Equal(t, DefaultParams(), winner)
}

func TestStepResumesFromStoredIncumbent(t *testing.T) {
	stored := PidParams{Kp: 0.0007, Ki: 0.00002, Kd: 0.00005}
	eval := &fitnessEvaluator{
		incumbent:          stored,
		incumbentFrametime: 10 * time.Millisecond,
		candidateFrametime: 11 * time.Millisecond,
	}
	tuner, store := newTestTuner(t, eval)
	require.NoError(t, store.Save("com.example.game", stored))

	require.NoError(t, tuner.Step(context.Background(), "com.example.game"))

	winner, err := store.Load("com.example.game")
	require.NoError(t, err)
	assert.Equal(t, stored, winner)
}

type shortWindowEvaluator struct {
	calls int
}

func (e *shortWindowEvaluator) RunWindow(context.Context, PidParams) (*Window, error) {
	e.calls++
	return &Window{
		Buffer:         Buffer{TargetFPS: 100, Frametimes: frametimes(10, 10*time.Millisecond)},
		ControlHistory: make([]int64, 30),
	}, nil
}

func TestStepSkipsUnjudgeableWindow(t *testing.T) {
	eval := &shortWindowEvaluator{}
	tuner, store := newTestTuner(t, eval)

	require.NoError(t, tuner.Step(context.Background(), "com.example.game"))

	// the incumbent was never judged, so nothing was mutated or persisted
	assert.Equal(t, 1, eval.calls)
	_, err := store.Load("com.example.game")
	assert.ErrorIs(t, err, ErrNotFound)
}

type failingEvaluator struct {
	err error
}

func (e *failingEvaluator) RunWindow(context.Context, PidParams) (*Window, error) {
	return nil, e.err
}

func TestStepPropagatesEvaluatorError(t *testing.T) {
	windowErr := errors.New("pipeline gone")
	tuner, _ := newTestTuner(t, &failingEvaluator{err: windowErr})

	err := tuner.Step(context.Background(), "com.example.game")
	assert.ErrorIs(t, err, windowErr)
}

type cancellingEvaluator struct {
	cancel context.CancelFunc
}

func (e *cancellingEvaluator) RunWindow(ctx context.Context, _ PidParams) (*Window, error) {
	e.cancel()
	return nil, ctx.Err()
}

func TestRunStopsOnContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	tuner, _ := newTestTuner(t, &cancellingEvaluator{cancel: cancel})

	done := make(chan struct{})
	go func() {
		tuner.Run(ctx, "com.example.game")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("tuner did not stop")
	}
}
