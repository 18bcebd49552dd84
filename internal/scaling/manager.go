package scaling

import (
	"context"
	"sync"
	"time"

	"github.com/go-logr/logr"

	"github.com/AmirulAndalib/fas-rs/internal/config"
	"github.com/AmirulAndalib/fas-rs/internal/cycles"
	"github.com/AmirulAndalib/fas-rs/internal/touch"
	"github.com/AmirulAndalib/fas-rs/internal/writer"
)

const writeFlushTimeout = time.Second

// Func definitions for unit testing
var (
	newWorkerFunc = NewWorker

	newDiffSamplerFunc = func(cores []int, cfg config.Provider, log logr.Logger) (sampler, error) {
		return cycles.NewDiffSampler(cores, cfg, log)
	}
)

// Manager runs one Worker per cluster and tears them down together.
type Manager interface {
	Start(ctx context.Context) error
	Schedules() map[string]*Schedule
}

type managerImpl struct {
	workers sync.Map
	pool    *writer.Pool
	log     logr.Logger
}

// NewManager builds a sampler, schedule and worker per cluster. A cluster
// that fails to come up aborts construction and stops the workers already
// started.
func NewManager(clusters []*Cluster, cfg config.Provider, node config.NodeReader,
	touchListener touch.Listener, pool *writer.Pool, log logr.Logger,
) (Manager, error) {
	mgr := &managerImpl{
		pool: pool,
		log:  log,
	}

	for _, cluster := range clusters {
		clusterLog := log.WithName(cluster.Name())

		cores, err := cluster.AffectedCPUs()
		if err != nil {
			mgr.stop()
			return nil, err
		}

		smp, err := newDiffSamplerFunc(cores, cfg, clusterLog)
		if err != nil {
			mgr.stop()
			return nil, err
		}

		schedule, err := NewSchedule(cluster, cfg, node, touchListener, pool, clusterLog)
		if err != nil {
			mgr.stop()
			return nil, err
		}

		worker, err := newWorkerFunc(cluster, schedule, smp, clusterLog)
		if err != nil {
			mgr.stop()
			return nil, err
		}

		mgr.workers.Store(cluster.Name(), worker)
	}

	return mgr, nil
}

// Start blocks until ctx is done, then stops all cluster workers and
// flushes pending control-node writes.
func (m *managerImpl) Start(ctx context.Context) error {
	<-ctx.Done()
	m.stop()
	return nil
}

func (m *managerImpl) stop() {
	m.log.V(5).Info("stopping all cluster workers")

	m.workers.Range(func(key, value any) bool {
		worker := value.(Worker)
		worker.Stop()
		m.workers.Delete(key)
		m.log.V(5).Info("worker stopped successfully", "cluster", key)
		return true
	})

	m.pool.Close(writeFlushTimeout)
	m.log.V(5).Info("successfully stopped all")
}

// Schedules exposes the per-cluster schedules so the external controller
// loop and the metrics collectors can reach the shared cells.
func (m *managerImpl) Schedules() map[string]*Schedule {
	schedules := make(map[string]*Schedule)
	m.workers.Range(func(key, value any) bool {
		schedules[key.(string)] = value.(Worker).Schedule()
		return true
	})

	return schedules
}
