package errors

import (
	"errors"
	"fmt"
)

// Exit codes for snapbox
const (
	ExitSuccess          = 0
	ExitGeneralError     = 1
	ExitInstanceNotFound = 2
	ExitBackendFailed    = 3
	ExitInjectionFailed  = 4
	ExitCommandFailed    = 5
	ExitConfigError      = 6
	ExitProjectError     = 7
)

// Sentinels for errors.Is matching.
var (
	// ErrProvider matches every provider-level failure.
	ErrProvider = errors.New("provider error")

	// ErrInstanceNotFound matches InstanceNotFoundError.
	ErrInstanceNotFound = errors.New("instance not found")
)

// ProviderError is the base error type for snapbox
type ProviderError struct {
	Code    int
	Message string
	Cause   error
}

func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is ErrProvider.
func (e *ProviderError) Is(target error) bool {
	return target == ErrProvider
}

// ExitCode returns the exit code for this error
func (e *ProviderError) ExitCode() int {
	return e.Code
}

// InstanceNotFoundError signals that the backend has no instance with the
// requested name. It is the only error that triggers the launch fallback.
type InstanceNotFoundError struct {
	InstanceName string
}

func (e *InstanceNotFoundError) Error() string {
	return fmt.Sprintf("instance not found: %s", e.InstanceName)
}

// Is matches both ErrInstanceNotFound and ErrProvider.
func (e *InstanceNotFoundError) Is(target error) bool {
	return target == ErrInstanceNotFound || target == ErrProvider
}

// ExitCode returns the exit code for this error
func (e *InstanceNotFoundError) ExitCode() int {
	return ExitInstanceNotFound
}

// New creates a new ProviderError
func New(code int, message string) *ProviderError {
	return &ProviderError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with a ProviderError
func Wrap(code int, message string, cause error) *ProviderError {
	return &ProviderError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Common error constructors

// InstanceNotFound returns an error for a missing instance
func InstanceNotFound(name string) *InstanceNotFoundError {
	return &InstanceNotFoundError{InstanceName: name}
}

// BackendFailed returns an error for a failed backend operation
func BackendFailed(op string, cause error) *ProviderError {
	return Wrap(ExitBackendFailed, fmt.Sprintf("backend %s failed", op), cause)
}

// InjectionFailed returns an error for a snap that could not be injected
func InjectionFailed(snap string, cause error) *ProviderError {
	return Wrap(ExitInjectionFailed, fmt.Sprintf("failed to inject snap %s", snap), cause)
}

// MountFailed returns an error for a failed snap directory mount
func MountFailed(target string, cause error) *ProviderError {
	return Wrap(ExitInjectionFailed, fmt.Sprintf("failed to mount %s", target), cause)
}

// UnmountFailed returns an error for a failed snap directory unmount
func UnmountFailed(target string, cause error) *ProviderError {
	return Wrap(ExitInjectionFailed, fmt.Sprintf("failed to unmount %s", target), cause)
}

// PushFailed returns an error for a file that could not be pushed into an instance
func PushFailed(dst string, cause error) *ProviderError {
	return Wrap(ExitInjectionFailed, fmt.Sprintf("failed to push %s", dst), cause)
}

// CommandFailed returns an error for a command that exited non-zero inside an instance
func CommandFailed(command string, exitCode int, output string) *ProviderError {
	msg := fmt.Sprintf("command %q exited with status %d", command, exitCode)
	if output != "" {
		msg += ": " + output
	}
	return New(ExitCommandFailed, msg)
}

// ConfigError returns an error for configuration issues
func ConfigError(message string, cause error) *ProviderError {
	return Wrap(ExitConfigError, message, cause)
}

// ProjectError returns an error for invalid project metadata
func ProjectError(message string, cause error) *ProviderError {
	return Wrap(ExitProjectError, message, cause)
}

// IsInstanceNotFound reports whether err signals a missing instance.
func IsInstanceNotFound(err error) bool {
	return errors.Is(err, ErrInstanceNotFound)
}

// GetExitCode extracts the exit code from an error
func GetExitCode(err error) int {
	var coded interface{ ExitCode() int }
	if errors.As(err, &coded) {
		return coded.ExitCode()
	}
	return ExitGeneralError
}

// Is checks if an error is of a specific type
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Join combines errors, dropping nils
func Join(errs ...error) error {
	return errors.Join(errs...)
}
