package scaling

import (
	"fmt"
	"math"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/go-logr/logr"

	"github.com/AmirulAndalib/fas-rs/internal/config"
	"github.com/AmirulAndalib/fas-rs/internal/cycles"
	"github.com/AmirulAndalib/fas-rs/internal/filter"
	"github.com/AmirulAndalib/fas-rs/internal/touch"
	"github.com/AmirulAndalib/fas-rs/internal/writer"
)

// Schedule navigates one cluster's frequency table toward the shared target
// diff and writes the selected max frequency to the control node.
//
// targetDiff and curCycles cross goroutine boundaries: the external
// controller loop is the sole writer of targetDiff, Schedule is the sole
// writer of curCycles, and each side only reads the other's cell.
type Schedule struct {
	cluster *Cluster
	table   []cycles.Cycles
	pos     int
	burst   int
	smooth  *filter.SMA

	targetDiff atomic.Int64
	curCycles  atomic.Int64

	touchListener touch.Listener
	touchTimer    time.Time

	cfg  config.Provider
	node config.NodeReader
	pool *writer.Pool
	log  logr.Logger
}

func NewSchedule(cluster *Cluster, cfg config.Provider, node config.NodeReader,
	touchListener touch.Listener, pool *writer.Pool, log logr.Logger,
) (*Schedule, error) {
	table, err := cluster.FrequencyTable()
	if err != nil {
		return nil, err
	}
	log.V(4).Info("got cluster frequency table", "cluster", cluster.Name(), "table", table)

	// Fail safe fast: start at the top of the table.
	pos := len(table) - 1
	smooth, err := filter.NewSMA(smoothCount, float64(pos))
	if err != nil {
		return nil, err
	}

	s := &Schedule{
		cluster:       cluster,
		table:         table,
		pos:           pos,
		burst:         burstDefault,
		smooth:        smooth,
		touchListener: touchListener,
		touchTimer:    time.Now(),
		cfg:           cfg,
		node:          node,
		pool:          pool,
		log:           log,
	}
	s.targetDiff.Store(cycles.FromMHz(200).AsHz())
	s.curCycles.Store(table[pos].AsHz())

	return s, nil
}

// TargetDiff is the shared target-headroom cell. The external controller
// loop is its sole writer; Schedule only reads it.
func (s *Schedule) TargetDiff() *atomic.Int64 {
	return &s.targetDiff
}

// CurCycles is the shared frequency-ceiling cell. Schedule is its sole
// writer; the sampling and controller loops only read it.
func (s *Schedule) CurCycles() *atomic.Int64 {
	return &s.curCycles
}

// Init switches the cluster to direct frequency control and resets the
// scheduling state. Direct writes to scaling_max_freq only take effect under
// a manual governor mode.
func (s *Schedule) Init() error {
	s.pool.Write(s.cluster.node(governorNode), performanceGovernor)
	return s.reset()
}

func (s *Schedule) reset() error {
	s.burst = burstDefault
	s.pos = len(s.table) - 1
	smooth, err := filter.NewSMA(smoothCount, float64(s.pos))
	if err != nil {
		return err
	}
	s.smooth = smooth

	return s.write()
}

// Run consumes one smoothed diff sample and moves the table position.
// Negative diffs are ignored; upstream clamps at the source, so a negative
// value here only happens on a misbehaving sampler.
func (s *Schedule) Run(diff cycles.Cycles) error {
	if diff < 0 {
		return nil
	}

	target := cycles.FromHz(s.targetDiff.Load())
	// The target can never ask for more headroom than the currently
	// selected ceiling allows.
	if cur := cycles.FromHz(s.curCycles.Load()); target > cur {
		target = cur
	}
	if target < 0 {
		return fmt.Errorf("%w: got %dhz", ErrNegativeTargetDiff, target.AsHz())
	}

	s.log.V(5).Info("scheduling cluster",
		"cluster", s.cluster.Name(), "targetDiff", target.AsHz(), "diff", diff.AsHz())

	switch {
	case target < diff:
		// demand exceeds target headroom, back off one step
		if s.pos > 0 {
			s.pos--
		}
		s.burst = burstDefault
	case target > diff:
		// headroom available, ramp up with accelerating burst
		s.pos = min(s.pos+s.burst, len(s.table)-1)
		s.burst = min(s.burst+1, burstMax)
	default:
		s.burst = burstDefault
	}

	s.smooth.Next(float64(s.pos))

	return s.write()
}

func (s *Schedule) smoothedPos() int {
	pos := int(math.Round(math.Max(s.smooth.Peek(), 0)))
	return min(pos, len(s.table)-1)
}

// posClamp bounds pos by the max_freq_per node value. The node is read on
// every write so runtime changes take effect immediately.
func (s *Schedule) posClamp(pos int) (int, error) {
	raw, err := s.node.ReadNode("max_freq_per")
	if err != nil {
		return 0, fmt.Errorf("failed to read max_freq_per: %w", err)
	}
	percent, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("failed to parse max_freq_per %q: %w", raw, err)
	}
	if percent < 0 || percent > 100 {
		return 0, fmt.Errorf("%w: got %d", ErrMaxFreqPercent, percent)
	}

	top := float64(len(s.table) - 1)
	maxPos := int(math.Round(top * float64(percent) / 100.0))
	s.log.V(5).Info("clamping position",
		"cluster", s.cluster.Name(), "percent", percent, "maxFreq", s.table[maxPos])

	return max(min(pos, maxPos), 0), nil
}

// write applies the input-responsiveness boosts on top of the smoothed
// position, clamps by max_freq_per and queues the frequency for the control
// node. An active slide wins over a tap; a recent slide keeps the boost
// alive for the configured slide_timer window.
func (s *Schedule) write() error {
	touchBoost, err := s.cfg.GetInt("touch_boost")
	if err != nil {
		return fmt.Errorf("failed to read touch_boost: %w", err)
	}
	slideBoost, err := s.cfg.GetInt("slide_boost")
	if err != nil {
		return fmt.Errorf("failed to read slide_boost: %w", err)
	}
	slideTimer, err := s.cfg.GetDuration("slide_timer")
	if err != nil {
		return fmt.Errorf("failed to read slide_timer: %w", err)
	}

	pos := s.smoothedPos()
	slide, tap := s.touchListener.Status()
	switch {
	case slide || time.Since(s.touchTimer) <= slideTimer:
		s.touchTimer = time.Now()
		pos += int(slideBoost)
	case tap:
		pos += int(touchBoost)
	}

	pos, err = s.posClamp(pos)
	if err != nil {
		return err
	}

	freq := s.table[pos]
	s.pool.Write(s.cluster.node(maxFreqNode), strconv.FormatInt(freq.AsKHz(), 10))
	// Publish the new ceiling for the next sampling cycle.
	s.curCycles.Store(freq.AsHz())

	return nil
}
