package backend

import (
	"context"
)

// InstancePrefix is the name prefix shared by every instance snapbox creates.
// Listing commands use it to filter out unrelated containers and VMs.
const InstancePrefix = "snapcraft-"

// InstanceStatus represents the state of an instance
type InstanceStatus string

const (
	StatusRunning InstanceStatus = "running"
	StatusStopped InstanceStatus = "stopped"
	StatusUnknown InstanceStatus = "unknown"
)

// InstanceInfo holds information about an instance
type InstanceInfo struct {
	Name   string
	Status InstanceStatus
}

// ExecResult holds the result of running a command in an instance
type ExecResult struct {
	ExitCode int
	Output   string
}

// LaunchOptions holds options for creating an instance
type LaunchOptions struct {
	Base     string // snap base of the project (core16, core18)
	Image    string // overrides the backend's image for Base
	CPUs     int
	MemoryMB int
}

// ExecOptions holds options for running a command in an instance
type ExecOptions struct {
	User       string
	WorkingDir string
	Env        []string
}

// Mount describes a host directory made visible inside an instance
type Mount struct {
	Source string // host path
	Target string // instance path
}

// Backend is the interface that instance backends must implement.
// Operations block until the backend tool finishes.
type Backend interface {
	// Name returns the backend identifier (e.g., "multipass", "docker").
	// It is also the last element of the provider project directory.
	Name() string

	// Launch creates a new instance but does not start it
	Launch(ctx context.Context, name string, opts LaunchOptions) error

	// Start starts an existing instance. It returns an
	// errors.InstanceNotFoundError when no instance has that name.
	Start(ctx context.Context, name string) error

	// Stop stops a running instance
	Stop(ctx context.Context, name string) error

	// Destroy stops and removes an instance. Removing a missing instance succeeds.
	Destroy(ctx context.Context, name string) error

	// Run executes a command inside an instance as root.
	// A non-zero exit is reported in ExecResult, not as an error.
	Run(ctx context.Context, name string, command []string, opts ExecOptions) (*ExecResult, error)

	// Shell opens an interactive shell in a running instance
	Shell(ctx context.Context, name string) error

	// Mount makes a host directory available inside an instance
	Mount(ctx context.Context, name string, m Mount) error

	// Unmount removes a mount created by Mount
	Unmount(ctx context.Context, name string, target string) error

	// PushFile copies a host file into an instance
	PushFile(ctx context.Context, name, src, dst string) error

	// PullFile copies a file out of an instance onto the host
	PullFile(ctx context.Context, name, src, dst string) error

	// List returns the instances created by snapbox
	List(ctx context.Context) ([]*InstanceInfo, error)
}

// SharedMounter is implemented by backends whose mounts expose the host
// directory itself rather than a copy of it
type SharedMounter interface {
	SharesMounts() bool
}

// SharesMounts reports whether files written under a mount target of b
// appear in the host directory
func SharesMounts(b Backend) bool {
	sm, ok := b.(SharedMounter)
	return ok && sm.SharesMounts()
}
