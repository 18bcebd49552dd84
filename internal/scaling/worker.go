package scaling

import (
	"context"
	"sync"

	"github.com/go-logr/logr"

	"github.com/AmirulAndalib/fas-rs/internal/cycles"
)

var (
	testHookStopLoop func() bool
)

// sampler produces one smoothed diff per blocking sampling window.
type sampler interface {
	Sample(curFreq cycles.Cycles) (cycles.Cycles, error)
}

// Worker owns one cluster's sampling and scheduling loop.
type Worker interface {
	Schedule() *Schedule
	Stop()
}

type workerImpl struct {
	cluster    *Cluster
	schedule   *Schedule
	sampler    sampler
	cancelFunc func()
	waitGroup  sync.WaitGroup
	log        logr.Logger
}

func NewWorker(cluster *Cluster, schedule *Schedule, smp sampler, log logr.Logger) (Worker, error) {
	ctx, cancelFunc := context.WithCancel(context.Background())

	worker := &workerImpl{
		cluster:    cluster,
		schedule:   schedule,
		sampler:    smp,
		cancelFunc: cancelFunc,
		waitGroup:  sync.WaitGroup{},
		log:        log,
	}

	if err := schedule.Init(); err != nil {
		cancelFunc()
		return nil, err
	}

	worker.waitGroup.Add(1)
	go worker.runLoop(ctx)

	return worker, nil
}

func (w *workerImpl) Schedule() *Schedule {
	return w.schedule
}

func (w *workerImpl) Stop() {
	w.cancelFunc()
	w.waitGroup.Wait()
}

// runLoop is the only goroutine allowed to block on this cluster's sampling
// window. The ctx poll sits between blocking steps so shutdown is picked up
// within one sampling interval. Errors stay local to this cluster: they
// abort this loop and never touch other clusters.
func (w *workerImpl) runLoop(ctx context.Context) {
	defer w.waitGroup.Done()

	for {
		if testHookStopLoop != nil {
			if testHookStopLoop() {
				return
			}
		}

		select {
		case <-ctx.Done():
			return
		default:
		}

		cur := cycles.FromHz(w.schedule.CurCycles().Load())
		diff, err := w.sampler.Sample(cur)
		if err != nil {
			w.log.Error(err, "cycle counter read failed, aborting cluster loop", "cluster", w.cluster.Name())
			return
		}

		if err := w.schedule.Run(diff); err != nil {
			w.log.Error(err, "aborting cluster scheduling loop", "cluster", w.cluster.Name())
			return
		}
	}
}
