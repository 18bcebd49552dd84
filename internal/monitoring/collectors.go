package monitoring

import (
	"fmt"

	"golang.org/x/exp/constraints"

	"github.com/go-logr/logr"
	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/AmirulAndalib/fas-rs/internal/scaling"
)

// Helper constants for prom Collectors
const (
	promNamespace string = "fas"

	LogTopName         string = "monitoring"
	schedulerSubsystem string = "scheduler"
)

type collectorImpl struct {
	collectFunc  func(ch chan<- prom.Metric)
	describeFunc func(ch chan<- *prom.Desc)
}

func (c collectorImpl) Collect(ch chan<- prom.Metric) {
	c.collectFunc(ch)
}

func (c collectorImpl) Describe(ch chan<- *prom.Desc) {
	c.describeFunc(ch)
}

type number interface {
	constraints.Integer | constraints.Float
}

// newPerClusterCollector is a generic factory of prometheus Collectors for
// values readable from a cluster's Schedule.
// readFunc must only touch the schedule's shared atomic cells, since
// collection runs concurrently with the scheduling loops.
func newPerClusterCollector[T number](metricName, metricDesc string,
	schedules map[string]*scaling.Schedule, readFunc func(*scaling.Schedule) T, log logr.Logger,
) prom.Collector {
	desc := prom.NewDesc(
		metricName,
		metricDesc,
		[]string{"cluster"},
		nil,
	)

	return collectorImpl{
		collectFunc: func(ch chan<- prom.Metric) {
			for name, schedule := range schedules {
				log.V(5).Info("Collecting metrics for prometheus", "cluster", name, "metric", metricName)
				ch <- prom.MustNewConstMetric(desc, prom.GaugeValue, float64(readFunc(schedule)), name)
			}
		},
		describeFunc: func(ch chan<- *prom.Desc) {
			ch <- desc
		},
	}
}

// RegisterClusterCollectors registers gauges for the selected frequency and
// the target headroom of every cluster.
func RegisterClusterCollectors(reg prom.Registerer, schedules map[string]*scaling.Schedule, log logr.Logger) error {
	collectors := []prom.Collector{
		newPerClusterCollector(
			prom.BuildFQName(promNamespace, schedulerSubsystem, "selected_frequency_khz"),
			"Currently selected max frequency of the cluster in kHz",
			schedules,
			func(s *scaling.Schedule) int64 { return s.CurCycles().Load() / 1000 },
			log,
		),
		newPerClusterCollector(
			prom.BuildFQName(promNamespace, schedulerSubsystem, "target_diff_hz"),
			"Target frequency headroom of the cluster in Hz",
			schedules,
			func(s *scaling.Schedule) int64 { return s.TargetDiff().Load() },
			log,
		),
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			return fmt.Errorf("failed to register cluster collector: %w", err)
		}
	}

	return nil
}
