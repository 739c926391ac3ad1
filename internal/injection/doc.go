// Package injection installs host snaps into a running build instance.
//
// The Injector never talks to a backend directly. It is handed four side
// effects as function values (run a command, mount the host snap cache,
// unmount it, push a file) so the same code serves every backend and can be
// tested with plain closures.
//
// # Transaction
//
// Apply performs one injection pass:
//
//  1. Mount the host snap cache at SnapDir inside the instance.
//  2. For each queued snap, skip it if the registry already records the
//     host's revision for this instance; otherwise push and acknowledge its
//     assertion, then install it from SnapDir.
//  3. Save the registry, even after a failure, so completed injections
//     are not repeated.
//  4. Unmount. This always runs, and its failure is joined to any earlier
//     failure instead of replacing it.
//
// Snaps are injected in queue order and the first failure stops the pass,
// since later snaps depend on earlier ones.
package injection
