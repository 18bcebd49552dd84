package cycles

import (
	"fmt"
	"time"
)

// Cycles is an amount of CPU work expressed in hertz-equivalent units.
// A Cycles value doubles as a frequency: one unit is one cycle per second.
type Cycles int64

func FromHz(hz int64) Cycles   { return Cycles(hz) }
func FromKHz(khz int64) Cycles { return Cycles(khz * 1_000) }
func FromMHz(mhz int64) Cycles { return Cycles(mhz * 1_000_000) }

func (c Cycles) AsHz() int64  { return int64(c) }
func (c Cycles) AsKHz() int64 { return int64(c) / 1_000 }
func (c Cycles) AsMHz() int64 { return int64(c) / 1_000_000 }

func (c Cycles) String() string {
	return fmt.Sprintf("%dkHz", c.AsKHz())
}

// AsDiff converts a cycle delta observed over elapsed into the frequency
// headroom left under curFreq: curFreq minus the equivalent frequency that
// was actually consumed. The result is floored at zero so that counter wrap
// or a zero-length window never produces a negative or undefined diff.
func (c Cycles) AsDiff(elapsed time.Duration, curFreq Cycles) Cycles {
	if elapsed <= 0 || c < 0 {
		return 0
	}
	consumed := Cycles(float64(c) / elapsed.Seconds())
	diff := curFreq - consumed
	if diff < 0 {
		diff = 0
	}
	return diff
}
