// Package filter provides the smoothing filters used on diff samples and
// frequency-table positions. Filters are stateful, order-dependent and not
// safe for concurrent use; each owner keeps its own instance.
package filter

import (
	"errors"
	"fmt"
)

// Supported filter kinds, matching the EMA_TYPE configuration key.
const (
	KindEMA  = "EMA"
	KindDEMA = "DEMA"
	KindSMA  = "SMA"
	KindNone = "None"
)

var (
	ErrUnknownKind   = errors.New("unknown smoothing filter type")
	ErrInvalidWindow = errors.New("smoothing window must be at least 1")
)

// Filter consumes one scalar per call and returns the smoothed value.
type Filter interface {
	Next(value float64) float64
}

// New validates kind and window once, so no invalid filter state can be
// reached after construction.
func New(kind string, window int, initial float64) (Filter, error) {
	switch kind {
	case KindEMA:
		return NewEMA(window, initial)
	case KindDEMA:
		return NewDEMA(window, initial)
	case KindSMA:
		return NewSMA(window, initial)
	case KindNone:
		return identity{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

type identity struct{}

func (identity) Next(value float64) float64 { return value }

// EMA is an exponential moving average with alpha = 2/(window+1).
type EMA struct {
	alpha float64
	value float64
}

func NewEMA(window int, initial float64) (*EMA, error) {
	if window < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWindow, window)
	}
	return &EMA{alpha: 2.0 / float64(window+1), value: initial}, nil
}

func (e *EMA) Next(value float64) float64 {
	e.value += e.alpha * (value - e.value)
	return e.value
}

// DEMA is a double exponential moving average: 2*EMA - EMA(EMA).
// It tracks trends faster than a plain EMA at the cost of overshoot.
type DEMA struct {
	inner *EMA
	outer *EMA
}

func NewDEMA(window int, initial float64) (*DEMA, error) {
	inner, err := NewEMA(window, initial)
	if err != nil {
		return nil, err
	}
	outer, err := NewEMA(window, initial)
	if err != nil {
		return nil, err
	}
	return &DEMA{inner: inner, outer: outer}, nil
}

func (d *DEMA) Next(value float64) float64 {
	e := d.inner.Next(value)
	ee := d.outer.Next(e)
	return 2*e - ee
}

// SMA is a simple moving average over a fixed window, seeded with an initial
// value so early outputs stay near the seed instead of zero.
type SMA struct {
	window []float64
	idx    int
	sum    float64
}

func NewSMA(window int, initial float64) (*SMA, error) {
	if window < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWindow, window)
	}
	w := make([]float64, window)
	for i := range w {
		w[i] = initial
	}
	return &SMA{window: w, sum: initial * float64(window)}, nil
}

func (s *SMA) Next(value float64) float64 {
	s.sum += value - s.window[s.idx]
	s.window[s.idx] = value
	s.idx = (s.idx + 1) % len(s.window)
	return s.Peek()
}

// Peek returns the current mean without consuming a sample.
func (s *SMA) Peek() float64 {
	return s.sum / float64(len(s.window))
}
