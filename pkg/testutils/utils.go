package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// WriteClusterFiles creates a fake cpufreq policy directory with the nodes
// the governor reads and writes.
func WriteClusterFiles(t *testing.T, cpus string, freqs string) string {
	t.Helper()
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "affected_cpus"), []byte(cpus+"\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scaling_available_frequencies"), []byte(freqs+"\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scaling_governor"), []byte("schedutil\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scaling_max_freq"), []byte(""), 0644))

	return dir
}

// WriteNodeFiles creates a fake tunable-node directory.
func WriteNodeFiles(t *testing.T, nodes map[string]string) string {
	t.Helper()
	dir := t.TempDir()

	for name, value := range nodes {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(value+"\n"), 0644))
	}

	return dir
}
