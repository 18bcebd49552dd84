// Package writer offloads control-node writes to a small worker pool so a
// slow or blocking sysfs write never stalls a scheduling decision. Writes
// are fire and forget: a failed or dropped write is self-correcting because
// the next scheduling cycle rewrites fresh data.
package writer

import (
	"os"
	"sync"
	"time"

	"github.com/go-logr/logr"
)

const queueDepthPerWorker = 16

type request struct {
	path  string
	value string
}

type Pool struct {
	requests chan request
	wg       sync.WaitGroup
	once     sync.Once
	log      logr.Logger
}

// NewPool starts workers goroutines draining the write queue. Sizing below
// two workers is rounded up so one stuck write cannot block the queue alone.
func NewPool(workers int, log logr.Logger) *Pool {
	if workers < 2 {
		workers = 2
	}

	p := &Pool{
		requests: make(chan request, workers*queueDepthPerWorker),
		log:      log,
	}

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.run()
	}

	return p
}

func (p *Pool) run() {
	defer p.wg.Done()

	for req := range p.requests {
		if err := os.WriteFile(req.path, []byte(req.value), 0644); err != nil {
			p.log.V(4).Info("dropping failed control node write", "path", req.path, "error", err.Error())
		}
	}
}

// Write queues value for path without blocking the caller. If the queue is
// full the request is dropped and logged.
func (p *Pool) Write(path, value string) {
	select {
	case p.requests <- request{path: path, value: value}:
	default:
		p.log.V(4).Info("write queue full, dropping request", "path", path)
	}
}

// Close stops accepting writes and waits up to timeout for pending ones to
// land before the workers are torn down.
func (p *Pool) Close(timeout time.Duration) {
	p.once.Do(func() { close(p.requests) })

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
		p.log.Info("timed out waiting for pending control node writes")
	}
}
