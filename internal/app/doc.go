// Package app provides the application context for snapbox.
//
// This package wires the host configuration, the backend, the host snap
// inventory and the audit log together using the functional options
// pattern, so commands can be tested against mocks.
//
// # App Context
//
//	type App struct {
//	    Paths      *config.Paths        // Config dir and state root
//	    HostConfig *config.HostConfig   // Loaded config.toml
//	    Backend    backend.Backend      // Multipass, Docker or Podman
//	    Inventory  hostsnaps.Inventory  // Installed host snaps
//	    Audit      *audit.Logger        // Per-instance event log
//	}
//
// # Creating an App
//
//	// Production usage
//	a, err := app.New(app.WithBackendType(backend.TypeDocker))
//
//	// Testing with custom dependencies
//	a, err := app.New(
//	    app.WithPaths(testPaths),
//	    app.WithHostConfig(config.DefaultHostConfig()),
//	    app.WithBackend(backend.NewMockBackend()),
//	    app.WithInventory(hostsnaps.NewMapInventory(dir, snaps...)),
//	)
//
// # Providers
//
// NewProvider builds a provider.Provider for a loaded project, carrying
// the app's backend, inventory, audit log and resource settings.
package app
