// Package backend defines the build instance backend interface for snapbox.
// Each backend drives one virtualization or container technology, and the
// provider only ever holds the interface.
//
// Supported backends:
//   - multipass: Ubuntu VMs managed by the multipass CLI
//   - docker, podman: long-running containers driven through the CLI
//   - mock: in-memory backend for tests
//
// Backends shell out through system.CommandExecutor so their command lines
// can be verified with system.MockExecutor.
//
// # Instance Not Found
//
// Start is the only operation whose failure mode is part of the contract:
// when the instance does not exist it returns errors.InstanceNotFoundError,
// which the provider uses to decide between reusing and launching an
// instance. Each backend recognizes its tool's "does not exist" output and
// maps it to that error.
//
// # Mounts
//
// Multipass supports real host mounts. A running container cannot gain a
// bind mount, so the container backend copies the source directory into the
// instance on Mount and deletes the copy on Unmount.
package backend
