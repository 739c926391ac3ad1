// Package provider manages the build instance of one snapcraft project.
//
// A Provider ties a project to a backend. It derives the instance name and
// the per-project state directory, decides whether an instance can be
// reused, and provisions fresh instances with the snaps snapcraft needs.
//
// # Launch or Reuse
//
// LaunchInstance first tries to start an existing instance. Only an
// InstanceNotFoundError from the backend leads to creating a new one:
//
//	Start ok            -> reuse, nothing else happens
//	Start not found     -> Launch, Start, create state dir, new instance ID,
//	                       snapcraft refresh
//	Start other error   -> returned unchanged
//
// # Scoped Acquisition
//
// Acquire pairs Create with Destroy:
//
//	err := provider.Acquire(ctx, p, func(ctx context.Context) error {
//	    return p.Build(ctx, opts)
//	})
//
// Destroy runs whether Create fails, the body fails or panics, or ctx is
// cancelled. It runs with a context detached from ctx's cancellation, and
// its own error is joined to the original one rather than replacing it.
package provider
