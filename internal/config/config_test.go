package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"target_fps: 120\nEMA_TYPE: EMA\ntouch_boost: 2\nslide_timer: 100\n",
	), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	fps, err := cfg.GetInt("target_fps")
	require.NoError(t, err)
	assert.Equal(t, int64(120), fps)

	kind, err := cfg.GetString("EMA_TYPE")
	require.NoError(t, err)
	assert.Equal(t, "EMA", kind)

	timer, err := cfg.GetDuration("slide_timer")
	require.NoError(t, err)
	assert.Equal(t, 100*time.Millisecond, timer)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("target_fps: [unclosed"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestGetIntErrors(t *testing.T) {
	cfg := NewStatic(map[string]any{"name": "governor"})

	_, err := cfg.GetInt("absent")
	assert.ErrorIs(t, err, ErrKeyMissing)

	_, err = cfg.GetInt("name")
	assert.ErrorIs(t, err, ErrWrongType)
}

func TestGetStringErrors(t *testing.T) {
	cfg := NewStatic(map[string]any{"count": 3})

	_, err := cfg.GetString("absent")
	assert.ErrorIs(t, err, ErrKeyMissing)

	_, err = cfg.GetString("count")
	assert.ErrorIs(t, err, ErrWrongType)
}

func TestGetDurationErrors(t *testing.T) {
	cfg := NewStatic(map[string]any{"slide_timer": "soon"})

	_, err := cfg.GetDuration("slide_timer")
	assert.ErrorIs(t, err, ErrWrongType)
}
