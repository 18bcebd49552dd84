// Package touch defines the boundary to the input-event pipeline. Decoding
// touchscreen events is handled outside the governor; the scheduler only
// needs the current gesture state.
package touch

// Listener reports the touchscreen state decoded by the external input
// pipeline.
type Listener interface {
	// Status returns whether a slide gesture and whether a tap are
	// currently active.
	Status() (slide bool, touch bool)
}

type nopListener struct{}

func (nopListener) Status() (bool, bool) { return false, false }

// NopListener reports no input activity, for devices without a usable
// touchscreen event source.
func NopListener() Listener { return nopListener{} }
