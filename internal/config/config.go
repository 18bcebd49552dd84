// Package config exposes the governor's tuning parameters. The static part
// comes from a YAML file loaded once at startup; hot tunables such as
// max_freq_per are published as single-value node files and read on every
// use. Both are passed into constructors explicitly so tests never touch
// real device files.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	ErrKeyMissing = errors.New("config key missing")
	ErrWrongType  = errors.New("config key has wrong type")
)

// Provider gives typed access to static configuration keys.
type Provider interface {
	GetInt(key string) (int64, error)
	GetString(key string) (string, error)
	// GetDuration reads an integer key holding milliseconds.
	GetDuration(key string) (time.Duration, error)
}

type Config struct {
	values map[string]any
}

// Load parses the YAML config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	values := map[string]any{}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return &Config{values: values}, nil
}

// NewStatic wraps an in-memory key set, mainly for tests and defaults.
func NewStatic(values map[string]any) *Config {
	return &Config{values: values}
}

func (c *Config) GetInt(key string) (int64, error) {
	raw, ok := c.values[key]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrKeyMissing, key)
	}
	switch v := raw.(type) {
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case uint64:
		return int64(v), nil
	default:
		return 0, fmt.Errorf("%w: %s is %T, want integer", ErrWrongType, key, raw)
	}
}

func (c *Config) GetString(key string) (string, error) {
	raw, ok := c.values[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrKeyMissing, key)
	}
	v, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s is %T, want string", ErrWrongType, key, raw)
	}
	return v, nil
}

func (c *Config) GetDuration(key string) (time.Duration, error) {
	ms, err := c.GetInt(key)
	if err != nil {
		return 0, err
	}
	return time.Duration(ms) * time.Millisecond, nil
}
