package injection

import (
	"context"
	"fmt"
	"path"
	"path/filepath"

	"github.com/firefly-engineering/snapbox/internal/errors"
	"github.com/firefly-engineering/snapbox/internal/hostsnaps"
	"github.com/firefly-engineering/snapbox/internal/logging"
	"github.com/firefly-engineering/snapbox/internal/project"
	"github.com/firefly-engineering/snapbox/internal/registry"
)

// Snap names every build instance needs
const (
	SnapCore      = "core"
	SnapSnapcraft = "snapcraft"
)

// AssertionDir is where assertions are pushed inside the instance
const AssertionDir = "/var/tmp"

// Runner executes a command inside the instance. A non-zero exit is an error.
type Runner func(ctx context.Context, command []string) error

// Mounter makes the host snap cache available at SnapDir
type Mounter func(ctx context.Context) error

// Unmounter removes the mount created by Mounter
type Unmounter func(ctx context.Context) error

// FilePusher copies a host file to a path inside the instance
type FilePusher func(ctx context.Context, src, dst string) error

// Options configures an Injector
type Options struct {
	// SnapDir is the mount point of the host snap cache inside the instance
	SnapDir string

	// RegistryPath is the host path of the registry file
	RegistryPath string

	// Arch is the instance architecture. Host snaps only fit instances of
	// the host architecture.
	Arch string

	// InstanceID identifies the current incarnation of the instance
	InstanceID string

	Runner     Runner
	Mounter    Mounter
	Unmounter  Unmounter
	FilePusher FilePusher

	// Inventory resolves host snaps
	Inventory hostsnaps.Inventory
}

// Injector queues snaps and injects them with Apply
type Injector struct {
	opts  Options
	queue []string
}

// SnapSet returns the snaps a build instance for base needs, in install
// order. Classic confinement needs the same set; the flag is kept so callers
// state the project's confinement.
func SnapSet(base string, _ bool) []string {
	return []string{SnapCore, SnapSnapcraft, base}
}

// New creates an Injector. All four callbacks and the inventory are required.
func New(opts Options) (*Injector, error) {
	if opts.Runner == nil || opts.Mounter == nil || opts.Unmounter == nil || opts.FilePusher == nil {
		return nil, fmt.Errorf("injector requires runner, mounter, unmounter and file pusher")
	}
	if opts.Inventory == nil {
		return nil, fmt.Errorf("injector requires a host snap inventory")
	}
	if opts.SnapDir == "" || opts.RegistryPath == "" {
		return nil, fmt.Errorf("injector requires a snap dir and a registry path")
	}
	return &Injector{opts: opts}, nil
}

// Add queues a snap. It performs no I/O, and a snap already queued is ignored.
func (i *Injector) Add(name string) {
	for _, queued := range i.queue {
		if queued == name {
			return
		}
	}
	i.queue = append(i.queue, name)
}

// Queued returns the queued snaps in order
func (i *Injector) Queued() []string {
	queued := make([]string, len(i.queue))
	copy(queued, i.queue)
	return queued
}

// Apply injects every queued snap. See the package documentation for the
// exact sequence and failure handling.
func (i *Injector) Apply(ctx context.Context) (err error) {
	if len(i.queue) == 0 {
		return nil
	}
	if host := project.HostArch(); i.opts.Arch != "" && i.opts.Arch != host {
		return errors.New(errors.ExitInjectionFailed,
			fmt.Sprintf("cannot inject %s host snaps into a %s instance", host, i.opts.Arch))
	}

	if err := i.opts.Mounter(ctx); err != nil {
		return errors.MountFailed(i.opts.SnapDir, err)
	}
	defer func() {
		if uerr := i.opts.Unmounter(context.WithoutCancel(ctx)); uerr != nil {
			err = errors.Join(err, errors.UnmountFailed(i.opts.SnapDir, uerr))
		}
	}()

	reg, err := registry.Load(i.opts.RegistryPath)
	if err != nil {
		return errors.Wrap(errors.ExitInjectionFailed, "failed to load snap registry", err)
	}

	var injectErr error
	for _, name := range i.queue {
		if err := ctx.Err(); err != nil {
			injectErr = err
			break
		}
		if err := i.inject(ctx, reg, name); err != nil {
			injectErr = err
			break
		}
	}

	if err := reg.Save(); err != nil {
		injectErr = errors.Join(injectErr, errors.Wrap(errors.ExitInjectionFailed, "failed to save snap registry", err))
	}

	return injectErr
}

func (i *Injector) inject(ctx context.Context, reg *registry.Registry, name string) error {
	snap, err := i.opts.Inventory.Lookup(name)
	if err != nil {
		return errors.InjectionFailed(name, err)
	}

	if reg.IsFresh(name, snap.Revision, i.opts.InstanceID) {
		logging.Debug("snap already injected", "snap", name, "revision", snap.Revision)
		return nil
	}

	logging.Info("injecting snap", "snap", name, "revision", snap.Revision, "arch", i.opts.Arch)

	if snap.AssertionFile != "" {
		dst := path.Join(AssertionDir, filepath.Base(snap.AssertionFile))
		if err := i.opts.FilePusher(ctx, snap.AssertionFile, dst); err != nil {
			return errors.InjectionFailed(name, errors.PushFailed(dst, err))
		}
		if err := i.opts.Runner(ctx, []string{"snap", "ack", dst}); err != nil {
			return errors.InjectionFailed(name, err)
		}
	}

	if err := i.opts.Runner(ctx, installCommand(i.opts.SnapDir, snap)); err != nil {
		return errors.InjectionFailed(name, err)
	}

	reg.Record(name, registry.Record{
		Revision:   snap.Revision,
		InstanceID: i.opts.InstanceID,
	})
	return nil
}

func installCommand(snapDir string, snap *hostsnaps.Snap) []string {
	cmd := []string{"snap", "install"}
	if snap.Classic() {
		cmd = append(cmd, "--classic")
	}
	if snap.AssertionFile == "" {
		cmd = append(cmd, "--dangerous")
	}
	return append(cmd, path.Join(snapDir, snap.SnapFile))
}
