// Package testutil provides test utilities for command and integration tests
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/firefly-engineering/snapbox/internal/app"
	"github.com/firefly-engineering/snapbox/internal/backend"
	"github.com/firefly-engineering/snapbox/internal/config"
	"github.com/firefly-engineering/snapbox/internal/hostsnaps"
	"github.com/firefly-engineering/snapbox/internal/registry"
)

// TestEnv holds the test environment
type TestEnv struct {
	T          *testing.T
	TmpDir     string
	Paths      *config.Paths
	HostConfig *config.HostConfig
	Backend    *backend.MockBackend
	Inventory  *hostsnaps.MapInventory
	App        *app.App
	cleanup    func()
}

// DefaultSnaps returns the host snaps a build needs for every base
func DefaultSnaps() []*hostsnaps.Snap {
	return []*hostsnaps.Snap{
		{Name: "core", Revision: "6673", Confinement: "strict", SnapFile: "core_6673.snap"},
		{Name: "snapcraft", Revision: "1871", Confinement: "classic", SnapFile: "snapcraft_1871.snap"},
		{Name: "core16", Revision: "100", Confinement: "strict", SnapFile: "core16_100.snap"},
		{Name: "core18", Revision: "200", Confinement: "strict", SnapFile: "core18_200.snap"},
	}
}

// NewTestEnv creates a new test environment with a mock backend and an
// in-memory snap inventory, installed as the default app
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	tmpDir := t.TempDir()

	paths := (&config.Paths{
		ConfigDir: filepath.Join(tmpDir, "config"),
		StateRoot: filepath.Join(tmpDir, "state"),
	}).WithStateRoot("")

	for _, dir := range []string{paths.ConfigDir, paths.ProjectsDir, paths.LogsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}

	snapsDir := filepath.Join(tmpDir, "snaps")
	if err := os.MkdirAll(snapsDir, 0755); err != nil {
		t.Fatalf("Failed to create snaps dir: %v", err)
	}

	hostConfig := config.DefaultHostConfig()
	hostConfig.StateRoot = paths.StateRoot
	hostConfig.SnapsDir = snapsDir

	mock := backend.NewMockBackend()
	inventory := hostsnaps.NewMapInventory(snapsDir, DefaultSnaps()...)

	testApp, err := app.New(
		app.WithPaths(paths),
		app.WithHostConfig(hostConfig),
		app.WithBackend(mock),
		app.WithInventory(inventory),
	)
	if err != nil {
		t.Fatalf("Failed to create app: %v", err)
	}

	// Save original default and set test app
	originalDefault := app.Default
	app.SetDefault(testApp)

	env := &TestEnv{
		T:          t,
		TmpDir:     tmpDir,
		Paths:      testApp.Paths,
		HostConfig: hostConfig,
		Backend:    mock,
		Inventory:  inventory,
		App:        testApp,
		cleanup: func() {
			app.SetDefault(originalDefault)
		},
	}
	t.Cleanup(env.Cleanup)

	return env
}

// Cleanup restores the original app default
func (e *TestEnv) Cleanup() {
	if e.cleanup != nil {
		e.cleanup()
		e.cleanup = nil
	}
}

// WriteProject writes a snap/snapcraft.yaml for a project and returns its directory
func (e *TestEnv) WriteProject(name, base, confinement string) string {
	e.T.Helper()

	dir := filepath.Join(e.TmpDir, "projects", name)
	if err := os.MkdirAll(filepath.Join(dir, "snap"), 0755); err != nil {
		e.T.Fatalf("Failed to create project: %v", err)
	}

	data := "name: " + name + "\nversion: '1.0'\nsummary: test\ndescription: test\n"
	if base != "" {
		data += "base: " + base + "\n"
	}
	if confinement != "" {
		data += "confinement: " + confinement + "\n"
	}

	if err := os.WriteFile(filepath.Join(dir, "snap", "snapcraft.yaml"), []byte(data), 0644); err != nil {
		e.T.Fatalf("Failed to write snapcraft.yaml: %v", err)
	}
	return dir
}

// AddProjectState creates a provider project directory for project on the mock backend
func (e *TestEnv) AddProjectState(project string) string {
	e.T.Helper()

	dir, err := e.Paths.ProviderProjectDir(project, e.Backend.Name())
	if err != nil {
		e.T.Fatalf("Failed to derive project dir: %v", err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		e.T.Fatalf("Failed to create project dir: %v", err)
	}
	return dir
}

// Registry loads the snap registry of project on the mock backend
func (e *TestEnv) Registry(project string) *registry.Registry {
	e.T.Helper()

	dir, err := e.Paths.ProviderProjectDir(project, e.Backend.Name())
	if err != nil {
		e.T.Fatalf("Failed to derive project dir: %v", err)
	}
	reg, err := registry.Load(filepath.Join(dir, registry.FileName))
	if err != nil {
		e.T.Fatalf("Failed to load registry: %v", err)
	}
	return reg
}

// ProjectStateExists checks if a provider project directory exists
func (e *TestEnv) ProjectStateExists(project string) bool {
	dir, err := e.Paths.ProviderProjectDir(project, e.Backend.Name())
	if err != nil {
		return false
	}
	_, err = os.Stat(dir)
	return err == nil
}
