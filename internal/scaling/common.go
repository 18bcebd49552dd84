package scaling

import "errors"

const (
	burstDefault = 0
	burstMax     = 2
	smoothCount  = 2

	performanceGovernor = "performance"

	affectedCPUsNode  = "affected_cpus"
	availableFreqNode = "scaling_available_frequencies"
	governorNode      = "scaling_governor"
	maxFreqNode       = "scaling_max_freq"
)

var (
	// ErrEmptyFreqTable means the cluster reported no usable frequencies.
	// Scheduling cannot proceed without a table.
	ErrEmptyFreqTable = errors.New("cluster reports empty frequency table")

	// ErrNegativeTargetDiff means the shared target cell held a negative
	// value after clamping. The upstream controller contract forbids this,
	// so the affected cluster loop is aborted instead of continuing with
	// undefined state.
	ErrNegativeTargetDiff = errors.New("target diff is negative")

	// ErrMaxFreqPercent means the max_freq_per node held a value outside
	// 0-100.
	ErrMaxFreqPercent = errors.New("max_freq_per must be between 0 and 100")
)
