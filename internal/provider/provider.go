package provider

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/kballard/go-shellquote"

	"github.com/firefly-engineering/snapbox/internal/audit"
	"github.com/firefly-engineering/snapbox/internal/backend"
	"github.com/firefly-engineering/snapbox/internal/config"
	"github.com/firefly-engineering/snapbox/internal/errors"
	"github.com/firefly-engineering/snapbox/internal/hostsnaps"
	"github.com/firefly-engineering/snapbox/internal/logging"
	"github.com/firefly-engineering/snapbox/internal/project"
	"github.com/firefly-engineering/snapbox/internal/registry"
)

// Options configures a Provider
type Options struct {
	Project *project.Project
	Backend backend.Backend

	// Paths locates the state root
	Paths *config.Paths

	// Inventory resolves the host snaps to inject
	Inventory hostsnaps.Inventory

	// KeepInstance stops the instance on Destroy instead of removing it,
	// so the next session reuses it
	KeepInstance bool

	// Audit receives lifecycle events. Nil disables auditing.
	Audit *audit.Logger

	// Launch holds resource and image settings for new instances.
	// Base is always taken from the project.
	Launch backend.LaunchOptions
}

// Provider manages the build instance of one project on one backend
type Provider struct {
	project   *project.Project
	backend   backend.Backend
	inventory hostsnaps.Inventory
	audit     *audit.Logger
	keep      bool
	launch    backend.LaunchOptions

	instanceName string
	projectDir   string
	session      string
	instanceID   string

	// provisioning is set from launch until SetupSnapcraft succeeds.
	// A kept instance in that state is destroyed, not stopped.
	provisioning bool

	newInjector injectorFactory
}

// New creates a Provider for a validated project
func New(opts Options) (*Provider, error) {
	if opts.Project == nil || opts.Backend == nil || opts.Paths == nil {
		return nil, fmt.Errorf("provider requires a project, a backend and paths")
	}
	if err := opts.Project.Validate(); err != nil {
		return nil, err
	}

	projectDir, err := opts.Paths.ProviderProjectDir(opts.Project.Name, opts.Backend.Name())
	if err != nil {
		return nil, errors.ConfigError("failed to derive provider project directory", err)
	}

	inventory := opts.Inventory
	if inventory == nil {
		inventory = hostsnaps.NewDirInventory()
	}

	return &Provider{
		project:      opts.Project,
		backend:      opts.Backend,
		inventory:    inventory,
		audit:        opts.Audit,
		keep:         opts.KeepInstance,
		launch:       opts.Launch,
		instanceName: InstanceName(opts.Project.Name, opts.Project.Arch),
		projectDir:   projectDir,
		session:      uuid.NewString(),
		newInjector:  defaultInjectorFactory,
	}, nil
}

// InstanceName returns the instance name for a project built for arch
func InstanceName(projectName, arch string) string {
	return backend.InstancePrefix + projectName + "-" + arch
}

// ParseInstanceName splits an instance name into project and arch.
// ok is false for names this tool did not create.
func ParseInstanceName(name string) (projectName, arch string, ok bool) {
	rest, found := strings.CutPrefix(name, backend.InstancePrefix)
	if !found {
		return "", "", false
	}
	i := strings.LastIndex(rest, "-")
	if i <= 0 || i == len(rest)-1 {
		return "", "", false
	}
	return rest[:i], rest[i+1:], true
}

// SnapFilename returns the artifact name for a project.
// The version segment is omitted when version is empty.
func SnapFilename(name, version, arch string) string {
	if version == "" {
		return fmt.Sprintf("%s_%s.snap", name, arch)
	}
	return fmt.Sprintf("%s_%s_%s.snap", name, version, arch)
}

// InstanceName returns the deterministic name of the build instance
func (p *Provider) InstanceName() string {
	return p.instanceName
}

// ProviderProjectDir returns <state-root>/projects/<project>/<backend>.
// The directory is created only when a new instance is launched.
func (p *Provider) ProviderProjectDir() string {
	return p.projectDir
}

// SnapFilename returns the name of the artifact the build produces
func (p *Provider) SnapFilename() string {
	return SnapFilename(p.project.Name, p.project.Version, p.project.Arch)
}

// RegistryPath returns the snap registry file of this project and backend
func (p *Provider) RegistryPath() string {
	return filepath.Join(p.projectDir, registry.FileName)
}

// Session returns the ID tagging this provider's audit events
func (p *Provider) Session() string {
	return p.session
}

// Project returns the project the provider builds
func (p *Provider) Project() *project.Project {
	return p.project
}

// Backend returns the backend the provider drives
func (p *Provider) Backend() backend.Backend {
	return p.backend
}

func (p *Provider) event(t audit.EventType, details string) {
	if p.audit == nil {
		return
	}
	if err := p.audit.LogEvent(t, p.instanceName, p.session, details); err != nil {
		logging.Debug("failed to write audit event", "type", t, "error", err)
	}
}

// LaunchInstance makes sure a running instance exists. It reports whether
// the instance was newly created.
func (p *Provider) LaunchInstance(ctx context.Context) (bool, error) {
	if host := project.HostArch(); p.project.Arch != host {
		return false, errors.ProjectError(
			fmt.Sprintf("cannot build for %s on a %s host: host snaps are injected into the instance", p.project.Arch, host), nil)
	}

	err := p.backend.Start(ctx, p.instanceName)
	if err == nil {
		logging.Debug("reusing instance", "instance", p.instanceName)
		p.event(audit.EventStart, "reused")
		return false, nil
	}
	if !errors.IsInstanceNotFound(err) {
		return false, err
	}

	logging.Debug("instance not found, launching", "instance", p.instanceName, "backend", p.backend.Name())

	opts := p.launch
	opts.Base = p.project.Base
	p.provisioning = true
	if err := p.backend.Launch(ctx, p.instanceName, opts); err != nil {
		p.event(audit.EventError, "launch: "+err.Error())
		var pe *errors.ProviderError
		if errors.As(err, &pe) {
			return false, err
		}
		return false, errors.BackendFailed("launch", err)
	}
	p.event(audit.EventLaunch, "base="+opts.Base)

	if err := p.backend.Start(ctx, p.instanceName); err != nil {
		p.event(audit.EventError, "start: "+err.Error())
		return false, errors.BackendFailed("start", err)
	}
	p.event(audit.EventStart, "launched")

	if err := os.MkdirAll(p.projectDir, 0755); err != nil {
		return false, errors.Wrap(errors.ExitGeneralError, "failed to create provider project directory", err)
	}
	if err := p.writeInstanceID(uuid.NewString()); err != nil {
		return false, err
	}

	refresh := []string{"snapcraft", "refresh"}
	if err := p.Run(ctx, refresh); err != nil {
		return false, err
	}
	p.event(audit.EventRefresh, shellquote.Join(refresh...))

	return true, nil
}

func (p *Provider) instanceIDPath() string {
	return filepath.Join(p.projectDir, config.InstanceIDFile)
}

func (p *Provider) writeInstanceID(id string) error {
	if err := os.WriteFile(p.instanceIDPath(), []byte(id+"\n"), 0644); err != nil {
		return errors.Wrap(errors.ExitGeneralError, "failed to record instance ID", err)
	}
	p.instanceID = id
	return nil
}

// InstanceID returns the ID of the current instance incarnation. A missing
// ID file means the incarnation is unknown, so a new ID is recorded and
// every registry entry for the instance counts as stale.
func (p *Provider) InstanceID() (string, error) {
	if p.instanceID != "" {
		return p.instanceID, nil
	}
	data, err := os.ReadFile(p.instanceIDPath())
	if err == nil && strings.TrimSpace(string(data)) != "" {
		p.instanceID = strings.TrimSpace(string(data))
		return p.instanceID, nil
	}
	if err != nil && !os.IsNotExist(err) {
		return "", errors.Wrap(errors.ExitGeneralError, "failed to read instance ID", err)
	}
	if err := os.MkdirAll(p.projectDir, 0755); err != nil {
		return "", errors.Wrap(errors.ExitGeneralError, "failed to create provider project directory", err)
	}
	if err := p.writeInstanceID(uuid.NewString()); err != nil {
		return "", err
	}
	return p.instanceID, nil
}

// Create launches or reuses the instance, and sets up snapcraft in it
// when it was newly created
func (p *Provider) Create(ctx context.Context) error {
	created, err := p.LaunchInstance(ctx)
	if err != nil {
		return err
	}
	if !created {
		return nil
	}
	if err := p.SetupSnapcraft(ctx); err != nil {
		return err
	}
	p.provisioning = false
	return nil
}

// Destroy removes the instance, or only stops it when KeepInstance is set.
// An instance launched in this session whose setup did not finish is
// always removed, so the next session starts from a fresh one.
// A missing instance is not an error.
func (p *Provider) Destroy(ctx context.Context) error {
	if p.keep && !p.provisioning {
		logging.Debug("stopping instance", "instance", p.instanceName)
		err := p.backend.Stop(ctx, p.instanceName)
		if err != nil && !errors.IsInstanceNotFound(err) {
			p.event(audit.EventError, "stop: "+err.Error())
			return errors.BackendFailed("stop", err)
		}
		p.event(audit.EventStop, "")
		return nil
	}

	logging.Debug("destroying instance", "instance", p.instanceName, "provisioning", p.provisioning)
	if err := p.backend.Destroy(ctx, p.instanceName); err != nil {
		p.event(audit.EventError, "destroy: "+err.Error())
		return errors.BackendFailed("destroy", err)
	}
	p.provisioning = false
	p.event(audit.EventDestroy, "")
	return nil
}

// Clean removes the instance and the provider project directory,
// regardless of KeepInstance
func (p *Provider) Clean(ctx context.Context) error {
	if err := p.backend.Destroy(ctx, p.instanceName); err != nil {
		return errors.BackendFailed("destroy", err)
	}
	p.event(audit.EventDestroy, "clean")

	if err := os.RemoveAll(p.projectDir); err != nil {
		return errors.Wrap(errors.ExitGeneralError, "failed to remove provider project directory", err)
	}
	p.instanceID = ""
	return nil
}

// Shell opens an interactive shell in the running instance
func (p *Provider) Shell(ctx context.Context) error {
	if err := p.backend.Shell(ctx, p.instanceName); err != nil {
		return errors.BackendFailed("shell", err)
	}
	return nil
}

// Run executes a command in the instance. A non-zero exit is an error.
func (p *Provider) Run(ctx context.Context, command []string) error {
	return p.Exec(ctx, command, backend.ExecOptions{})
}

// Exec executes a command in the instance with options
func (p *Provider) Exec(ctx context.Context, command []string, opts backend.ExecOptions) error {
	line := shellquote.Join(command...)
	logging.Debug("running in instance", "instance", p.instanceName, "command", line)

	result, err := p.backend.Run(ctx, p.instanceName, command, opts)
	if err != nil {
		return errors.BackendFailed("run", err)
	}
	if result.ExitCode != 0 {
		return errors.CommandFailed(line, result.ExitCode, strings.TrimSpace(result.Output))
	}
	return nil
}

// Mount makes a host directory available at target inside the instance
func (p *Provider) Mount(ctx context.Context, hostPath, target string) error {
	if err := p.backend.Mount(ctx, p.instanceName, backend.Mount{Source: hostPath, Target: target}); err != nil {
		return errors.MountFailed(target, err)
	}
	return nil
}

// Unmount removes the mount at target
func (p *Provider) Unmount(ctx context.Context, target string) error {
	if err := p.backend.Unmount(ctx, p.instanceName, target); err != nil {
		return errors.UnmountFailed(target, err)
	}
	return nil
}

// PushFile copies a host file into the instance
func (p *Provider) PushFile(ctx context.Context, src, dst string) error {
	if err := p.backend.PushFile(ctx, p.instanceName, src, dst); err != nil {
		return errors.PushFailed(dst, err)
	}
	return nil
}

// PullFile copies a file from the instance to the host
func (p *Provider) PullFile(ctx context.Context, src, dst string) error {
	if err := p.backend.PullFile(ctx, p.instanceName, src, dst); err != nil {
		return errors.BackendFailed("pull "+src, err)
	}
	return nil
}
