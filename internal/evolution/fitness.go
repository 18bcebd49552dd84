package evolution

import "time"

const (
	// Minimum sample counts before a window may be judged. Below these the
	// fitness signal is too noisy to accept or reject a mutation.
	frametimeWindowSeconds = 5
	minControlSamples      = 30

	// Control effort is penalized but subordinate to frame-time accuracy.
	controlEffortWeight = 0.01
)

// Buffer is the rolling frame-time history for one application.
type Buffer struct {
	// TargetFPS is the frame rate the governor is asked to hold. Zero
	// means no target is known yet.
	TargetFPS int
	// Frametimes may cover multi-frame windows; fitness normalizes each
	// entry by TargetFPS to a single-frame-equivalent duration.
	Frametimes []time.Duration
}

// EvaluateFitness scores one evaluation window. Higher is better; the score
// is the negated mean squared frame-time deviation from the target period
// plus a small penalty on control effort. ok is false until the buffer
// holds at least 5*TargetFPS frametimes and the control history holds at
// least 30 samples.
func EvaluateFitness(buf Buffer, margin time.Duration, controlHistory []int64) (fitness float64, ok bool) {
	if buf.TargetFPS <= 0 {
		return 0, false
	}
	if len(buf.Frametimes) < buf.TargetFPS*frametimeWindowSeconds ||
		len(controlHistory) < minControlSamples {
		return 0, false
	}

	target := float64((time.Second + margin).Nanoseconds())

	var frametimeErr float64
	for _, frametime := range buf.Frametimes {
		scaled := float64((frametime * time.Duration(buf.TargetFPS)).Nanoseconds())
		deviation := scaled - target
		frametimeErr += deviation * deviation
	}
	fitnessFrametime := -frametimeErr / float64(len(buf.Frametimes))

	var controlErr float64
	for _, control := range controlHistory {
		controlErr += float64(control) * float64(control)
	}
	fitnessControl := -controlErr / float64(len(controlHistory)) * controlEffortWeight

	return fitnessFrametime + fitnessControl, true
}
