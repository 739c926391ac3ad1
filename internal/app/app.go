package app

import (
	"github.com/firefly-engineering/snapbox/internal/audit"
	"github.com/firefly-engineering/snapbox/internal/backend"
	"github.com/firefly-engineering/snapbox/internal/config"
	"github.com/firefly-engineering/snapbox/internal/errors"
	"github.com/firefly-engineering/snapbox/internal/hostsnaps"
	"github.com/firefly-engineering/snapbox/internal/logging"
	"github.com/firefly-engineering/snapbox/internal/project"
	"github.com/firefly-engineering/snapbox/internal/provider"
)

// App holds the application dependencies
type App struct {
	// Paths holds the configured paths
	Paths *config.Paths

	// HostConfig is the loaded host configuration
	HostConfig *config.HostConfig

	// Backend runs build instances. Nil when none could be detected.
	Backend backend.Backend

	// Inventory resolves host snaps for injection
	Inventory hostsnaps.Inventory

	// Audit records lifecycle events per instance
	Audit *audit.Logger

	backendType backend.Type
	stateRoot   string
	backendErr  error
}

// Option is a function that configures the App
type Option func(*App)

// WithPaths sets custom paths
func WithPaths(paths *config.Paths) Option {
	return func(a *App) {
		a.Paths = paths
	}
}

// WithHostConfig sets a custom host config
func WithHostConfig(cfg *config.HostConfig) Option {
	return func(a *App) {
		a.HostConfig = cfg
	}
}

// WithBackend sets a custom backend
func WithBackend(b backend.Backend) Option {
	return func(a *App) {
		a.Backend = b
	}
}

// WithBackendType overrides the backend named in the host config
func WithBackendType(t backend.Type) Option {
	return func(a *App) {
		a.backendType = t
	}
}

// WithStateRoot overrides the state root named in the host config
func WithStateRoot(dir string) Option {
	return func(a *App) {
		a.stateRoot = dir
	}
}

// WithInventory sets a custom host snap inventory
func WithInventory(inv hostsnaps.Inventory) Option {
	return func(a *App) {
		a.Inventory = inv
	}
}

// New creates a new App with the given options.
// The host config is loaded from the config directory unless one is
// provided. A backend that cannot be detected is not an error here; it
// only fails the commands that need one.
func New(opts ...Option) (*App, error) {
	a := &App{}
	for _, opt := range opts {
		opt(a)
	}

	if a.Paths == nil {
		a.Paths = config.DefaultPaths()
	}

	if a.HostConfig == nil {
		cfg, err := config.LoadHostConfig(a.Paths.ConfigDir)
		if err != nil {
			return nil, err
		}
		a.HostConfig = cfg
	}

	stateRoot := a.stateRoot
	if stateRoot == "" {
		stateRoot = a.HostConfig.StateRoot
	}
	a.Paths = a.Paths.WithStateRoot(stateRoot)

	if a.Backend == nil {
		backendType := a.backendType
		if backendType == "" {
			backendType = backend.Type(a.HostConfig.Backend)
		}
		b, err := backend.New(&backend.Config{
			Type:   backendType,
			Images: a.HostConfig.Images,
		})
		if err != nil {
			logging.Debug("failed to initialize backend", "error", err)
			a.backendErr = err
		} else {
			a.Backend = b
		}
	}

	if a.Inventory == nil {
		inv := hostsnaps.NewDirInventory()
		if a.HostConfig.SnapMountDir != "" {
			inv.MountDir = a.HostConfig.SnapMountDir
		}
		if a.HostConfig.SnapsDir != "" {
			inv.Snaps = a.HostConfig.SnapsDir
		}
		inv.AssertionsDir = a.HostConfig.AssertionsDir
		a.Inventory = inv
	}

	if a.Audit == nil {
		a.Audit = audit.NewLogger(a.Paths.LogsDir)
	}

	return a, nil
}

// RequireBackend returns the backend or the reason there is none
func (a *App) RequireBackend() (backend.Backend, error) {
	if a.Backend != nil {
		return a.Backend, nil
	}
	if a.backendErr != nil {
		return nil, errors.BackendFailed("detection", a.backendErr)
	}
	return nil, errors.New(errors.ExitBackendFailed, "no backend configured")
}

// NewProvider creates a provider for proj on the app's backend.
// keep is OR-ed with the host config's keep_instance.
func (a *App) NewProvider(proj *project.Project, keep bool) (*provider.Provider, error) {
	b, err := a.RequireBackend()
	if err != nil {
		return nil, err
	}
	return provider.New(provider.Options{
		Project:      proj,
		Backend:      b,
		Paths:        a.Paths,
		Inventory:    a.Inventory,
		KeepInstance: keep || a.HostConfig.KeepInstance,
		Audit:        a.Audit,
		Launch: backend.LaunchOptions{
			CPUs:     a.HostConfig.CPUs,
			MemoryMB: a.HostConfig.MemoryMB,
		},
	})
}

// Default is the application instance used by the commands. It is built
// on first use by the root command; tests replace it with SetDefault.
var Default *App

// SetDefault sets the default application instance (used for testing)
func SetDefault(app *App) {
	Default = app
}

// ResetDefault clears the default so the next command builds a fresh one
func ResetDefault() {
	Default = nil
}
