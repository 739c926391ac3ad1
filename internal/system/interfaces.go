// Package system provides abstractions for OS operations to enable testing.
package system

import (
	"context"
	"errors"
)

// CommandExecutor abstracts command execution for testability.
// Backends drive their CLI tools (docker, podman, multipass) through it.
type CommandExecutor interface {
	// Execute runs a command and returns its combined output.
	// A non-zero exit is reported as an error implementing ExitCode() int.
	Execute(ctx context.Context, name string, args ...string) ([]byte, error)

	// ExecuteInteractive runs a command with stdin/stdout/stderr connected to the terminal.
	ExecuteInteractive(ctx context.Context, name string, args ...string) error
}

var defaultExecutor CommandExecutor = &osExecutor{}

// DefaultExecutor returns the default CommandExecutor implementation.
func DefaultExecutor() CommandExecutor {
	return defaultExecutor
}

// SetDefaultExecutor sets the default CommandExecutor (useful for testing).
func SetDefaultExecutor(exec CommandExecutor) {
	defaultExecutor = exec
}

// ResetDefaults restores the default OS implementations.
func ResetDefaults() {
	defaultExecutor = &osExecutor{}
}

// ExitCode extracts a process exit code from err. ok is false when err
// did not come from a process that ran and exited.
func ExitCode(err error) (code int, ok bool) {
	var coded interface{ ExitCode() int }
	if errors.As(err, &coded) {
		return coded.ExitCode(), true
	}
	return 0, false
}
