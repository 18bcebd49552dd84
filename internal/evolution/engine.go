package evolution

import (
	"context"
	"errors"
	"time"

	"github.com/go-logr/logr"
)

// Window is what one evaluation window observed under a fixed gain set.
type Window struct {
	Buffer         Buffer
	ControlHistory []int64
}

// Evaluator runs the external controller with the supplied gains for one
// evaluation window and reports what it observed. Implemented by the frame
// pipeline; injected here so the tuner is testable without one.
type Evaluator interface {
	RunWindow(ctx context.Context, params PidParams) (*Window, error)
}

// Tuner performs elitist (1+1) search over PID gains per application:
// evaluate the incumbent, evaluate a mutated candidate, persist whichever
// scored higher. There is no crossover and no annealing schedule, only a
// bounded random walk that never loses ground.
type Tuner struct {
	store   *Store
	mutator *Mutator
	eval    Evaluator
	margin  time.Duration
	log     logr.Logger
}

func NewTuner(store *Store, mutator *Mutator, eval Evaluator, margin time.Duration, log logr.Logger) *Tuner {
	return &Tuner{
		store:   store,
		mutator: mutator,
		eval:    eval,
		margin:  margin,
		log:     log,
	}
}

// Step runs one mutate-evaluate-select round for pkg and persists the
// winner. A window without enough samples is skipped without judging it.
// Persistence failures discard the round instead of stopping the tuner.
func (t *Tuner) Step(ctx context.Context, pkg string) error {
	incumbent, err := t.store.Load(pkg)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			t.log.Error(err, "falling back to default pid params", "package", pkg)
		}
		incumbent = DefaultParams()
	}

	incumbentFitness, judged, err := t.runWindow(ctx, incumbent)
	if err != nil {
		return err
	}
	if !judged {
		t.log.V(5).Info("not enough samples to judge incumbent", "package", pkg)
		return nil
	}

	candidate := t.mutator.Mutate(incumbent)
	candidateFitness, judged, err := t.runWindow(ctx, candidate)
	if err != nil {
		return err
	}
	if !judged {
		t.log.V(5).Info("not enough samples to judge candidate", "package", pkg)
		return nil
	}

	winner := incumbent
	if candidateFitness > incumbentFitness {
		winner = candidate
		t.log.V(4).Info("accepting mutated pid params", "package", pkg,
			"fitness", candidateFitness, "incumbentFitness", incumbentFitness)
	}

	if err := t.store.Save(pkg, winner); err != nil {
		t.log.Error(err, "discarding window result", "package", pkg)
	}

	return nil
}

func (t *Tuner) runWindow(ctx context.Context, params PidParams) (float64, bool, error) {
	window, err := t.eval.RunWindow(ctx, params)
	if err != nil {
		return 0, false, err
	}
	fitness, ok := EvaluateFitness(window.Buffer, t.margin, window.ControlHistory)
	return fitness, ok, nil
}

// Run keeps stepping for pkg until ctx is done. Step errors are logged and
// retried with the next window; they never tear the tuner down.
func (t *Tuner) Run(ctx context.Context, pkg string) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := t.Step(ctx, pkg); err != nil {
			if ctx.Err() != nil {
				return
			}
			t.log.Error(err, "tuning step failed", "package", pkg)
		}
	}
}
