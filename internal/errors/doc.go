// Package errors provides typed provider errors with exit codes for snapbox.
//
// # Error Types
//
// ProviderError is the root of all provider-level failures:
//
//	type ProviderError struct {
//	    Code    int    // Exit code
//	    Message string // User-facing message
//	    Cause   error  // Wrapped error
//	}
//
// InstanceNotFoundError signals that a backend has no instance with a given
// name. The lifecycle manager treats it as the cue to create one; every
// other error is fatal.
//
// Both types match ErrProvider with errors.Is, and InstanceNotFoundError
// also matches ErrInstanceNotFound, so callers can test the class of an
// error without caring how deeply it was wrapped:
//
//	if errors.IsInstanceNotFound(err) {
//	    // launch a new instance
//	}
//
// # Exit Codes
//
//	ExitSuccess          = 0  // Success
//	ExitGeneralError     = 1  // General/unknown errors
//	ExitInstanceNotFound = 2  // Instance does not exist
//	ExitBackendFailed    = 3  // Backend operation failed
//	ExitInjectionFailed  = 4  // Snap injection, mount or push failed
//	ExitCommandFailed    = 5  // Command exited non-zero inside the instance
//	ExitConfigError      = 6  // Configuration error
//	ExitProjectError     = 7  // Invalid project metadata
//
// # Cleanup Failures
//
// Cleanup failures (destroy, unmount) are combined with the original error
// using Join so they are reported without hiding what went wrong first.
package errors
