// Package evolution tunes the gains of the external frame-time PID
// controller per application: bounded random-walk mutation, fitness scoring
// over an evaluation window and an elitist keep-the-better selection, with
// accepted gains persisted across runs.
package evolution

// PidParams are the gains supplied to the external PID controller,
// identified by application package name.
type PidParams struct {
	Kp float64
	Ki float64
	Kd float64
}

// Valid intervals and mutation step per gain. Mutation is a random walk
// clamped into these intervals, so repeated application stays bounded.
const (
	kpMin, kpMax = 0.0004, 0.0008
	kiMin, kiMax = 0.000015, 0.00008
	kdMin, kdMax = 0.00005, 0.00008

	kpStep = 0.0001
	kiStep = 0.00001
	kdStep = 0.00001
)

// DefaultParams seed the search for packages with no stored record.
func DefaultParams() PidParams {
	return PidParams{
		Kp: 0.0006,
		Ki: 0.00004,
		Kd: 0.00006,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
