package scaling

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/AmirulAndalib/fas-rs/internal/cycles"
)

// Cluster is one cpufreq policy domain, identified by its sysfs control
// directory.
type Cluster struct {
	path string
}

func NewCluster(path string) *Cluster {
	return &Cluster{path: path}
}

func (c *Cluster) Name() string {
	return filepath.Base(c.path)
}

func (c *Cluster) node(resource string) string {
	return filepath.Join(c.path, resource)
}

// AffectedCPUs returns the logical core ids belonging to this cluster.
func (c *Cluster) AffectedCPUs() ([]int, error) {
	data, err := os.ReadFile(c.node(affectedCPUsNode))
	if err != nil {
		return nil, fmt.Errorf("failed to read affected cpus for cluster %s: %w", c.Name(), err)
	}

	fields := strings.Fields(string(data))
	cpus := make([]int, 0, len(fields))
	for _, field := range fields {
		cpu, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("failed to parse cpu id %q for cluster %s: %w", field, c.Name(), err)
		}
		cpus = append(cpus, cpu)
	}

	return cpus, nil
}

// FrequencyTable returns the hardware-reported frequencies sorted strictly
// ascending, regardless of the order sysfs lists them in.
func (c *Cluster) FrequencyTable() ([]cycles.Cycles, error) {
	data, err := os.ReadFile(c.node(availableFreqNode))
	if err != nil {
		return nil, fmt.Errorf("failed to read frequency table for cluster %s: %w", c.Name(), err)
	}

	fields := strings.Fields(string(data))
	table := make([]cycles.Cycles, 0, len(fields))
	for _, field := range fields {
		khz, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse frequency %q for cluster %s: %w", field, c.Name(), err)
		}
		table = append(table, cycles.FromKHz(khz))
	}

	slices.Sort(table)
	table = slices.Compact(table)

	if len(table) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFreqTable, c.Name())
	}

	return table, nil
}
