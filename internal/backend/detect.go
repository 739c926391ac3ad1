package backend

import (
	"fmt"
	"os/exec"

	"github.com/firefly-engineering/snapbox/internal/logging"
	"github.com/firefly-engineering/snapbox/internal/system"
)

// Type identifies which backend to use
type Type string

const (
	TypeMultipass Type = "multipass"
	TypeDocker    Type = "docker"
	TypePodman    Type = "podman"
	TypeAuto      Type = "auto"
)

// Config holds backend configuration
type Config struct {
	// Type specifies which backend to use (or "auto" for auto-detection)
	Type Type

	// Images overrides the default image per snap base
	Images map[string]string

	// Executor runs the backend CLI (defaults to the system executor)
	Executor system.CommandExecutor
}

// DefaultConfig returns the default backend configuration
func DefaultConfig() *Config {
	return &Config{
		Type: TypeAuto,
	}
}

// lookPath is swapped in tests
var lookPath = exec.LookPath

// Detect determines which backend is available on the system.
// Multipass is preferred because it gives builds a full VM with snapd.
func Detect() (Type, error) {
	for _, t := range []Type{TypeMultipass, TypePodman, TypeDocker} {
		if _, err := lookPath(string(t)); err == nil {
			logging.Debug("detected backend", "type", t)
			return t, nil
		}
	}
	return "", fmt.Errorf("no supported backend found (tried: multipass, podman, docker)")
}

// New creates a new Backend based on the configuration.
// If Type is TypeAuto, it auto-detects the best backend.
func New(cfg *Config) (Backend, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	backendType := cfg.Type
	if backendType == "" || backendType == TypeAuto {
		detected, err := Detect()
		if err != nil {
			return nil, err
		}
		backendType = detected
	}

	logging.Debug("creating backend", "type", backendType)

	switch backendType {
	case TypeMultipass:
		return NewMultipassBackend(cfg.Images, cfg.Executor), nil
	case TypeDocker, TypePodman:
		return NewDockerBackend(string(backendType), cfg.Images, cfg.Executor), nil
	default:
		return nil, fmt.Errorf("unknown backend type: %s", backendType)
	}
}

// Available returns the backends installed on this system
func Available() []Type {
	var available []Type
	for _, t := range []Type{TypeMultipass, TypePodman, TypeDocker} {
		if _, err := lookPath(string(t)); err == nil {
			available = append(available, t)
		}
	}
	return available
}
