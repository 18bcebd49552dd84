package cycles

import (
	"fmt"
	"math"
	"time"

	"github.com/go-logr/logr"

	"github.com/AmirulAndalib/fas-rs/internal/config"
	"github.com/AmirulAndalib/fas-rs/internal/filter"
)

const defaultSampleInterval = 50 * time.Millisecond

// clusterReader abstracts Reader for unit testing.
type clusterReader interface {
	Read() (map[int]uint64, error)
}

// DiffSampler converts raw cycle counters into a smoothed frequency-headroom
// signal for one cluster.
//
// Sample blocks the calling goroutine for the whole sampling interval, so a
// DiffSampler must run on a dedicated goroutine per cluster.
type DiffSampler struct {
	cores    []int
	reader   clusterReader
	smooth   filter.Filter
	interval time.Duration
	log      logr.Logger
}

// NewDiffSampler validates the smoothing configuration, then enables the
// hardware counters for the given cores. A counter that cannot be opened is
// fatal here; the caller has no safe fallback.
func NewDiffSampler(cores []int, cfg config.Provider, log logr.Logger) (*DiffSampler, error) {
	window, err := cfg.GetInt("EMA_WIN")
	if err != nil {
		return nil, fmt.Errorf("failed to read EMA_WIN: %w", err)
	}
	kind, err := cfg.GetString("EMA_TYPE")
	if err != nil {
		return nil, fmt.Errorf("failed to read EMA_TYPE: %w", err)
	}
	smooth, err := filter.New(kind, int(window), 0.0)
	if err != nil {
		return nil, err
	}

	reader, err := NewReader(cores, log)
	if err != nil {
		return nil, err
	}

	return &DiffSampler{
		cores:    cores,
		reader:   reader,
		smooth:   smooth,
		interval: defaultSampleInterval,
		log:      log,
	}, nil
}

// Sample measures the cycle delta of the busiest core over one sampling
// interval and returns it as smoothed frequency headroom under curFreq.
// The call blocks for the whole interval.
func (s *DiffSampler) Sample(curFreq Cycles) (Cycles, error) {
	start := time.Now()
	former, err := s.reader.Read()
	if err != nil {
		return 0, err
	}

	time.Sleep(s.interval)

	later, err := s.reader.Read()
	if err != nil {
		return 0, err
	}
	elapsed := time.Since(start)

	// The busiest core dominates: throttling must still cover it.
	var maxDelta uint64
	for _, cpu := range s.cores {
		l, f := later[cpu], former[cpu]
		if l < f {
			// counter wrapped, skip this core for the window
			continue
		}
		if delta := l - f; delta > maxDelta {
			maxDelta = delta
		}
	}

	diff := Cycles(maxDelta).AsDiff(elapsed, curFreq)
	smoothed := FromHz(int64(math.Round(s.smooth.Next(float64(diff.AsHz())))))
	s.log.V(5).Info("sampled cycle diff", "raw", diff.AsHz(), "smoothed", smoothed.AsHz())

	return smoothed, nil
}

func (s *DiffSampler) Close() {
	if reader, ok := s.reader.(*Reader); ok {
		reader.Close()
	}
}
