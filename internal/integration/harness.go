package integration

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/firefly-engineering/snapbox/internal/backend"
	"github.com/firefly-engineering/snapbox/internal/config"
	"github.com/firefly-engineering/snapbox/internal/project"
)

const (
	envEnable  = "SNAPBOX_INTEGRATION_TESTS"
	envBackend = "SNAPBOX_BACKEND"
	envImage   = "SNAPBOX_IMAGE"
)

// TestHarness provides utilities for integration testing with real instances.
type TestHarness struct {
	t         *testing.T
	tempDir   string
	paths     *config.Paths
	backend   backend.Backend
	instances []string // Track created instances for cleanup
}

// Enabled reports whether integration tests were requested
func Enabled() bool {
	return os.Getenv(envEnable) == "1"
}

// NewHarness creates a new test harness.
// It will skip the test if integration tests are disabled or no backend is available.
func NewHarness(t *testing.T) *TestHarness {
	t.Helper()

	if !Enabled() {
		t.Skip("integration tests disabled (set " + envEnable + "=1 to enable)")
	}

	backendType := backend.Type(os.Getenv(envBackend))
	if backendType == "" {
		backendType = backend.TypeAuto
	}
	images := imagesFromEnv()
	b, err := backend.New(&backend.Config{Type: backendType, Images: images})
	if err != nil {
		t.Skipf("backend not available: %v", err)
	}
	if b.Name() != string(backend.TypeMultipass) && images == nil {
		t.Skipf("%s needs %s naming an image with snapd and snapcraft", b.Name(), envImage)
	}

	tempDir := t.TempDir()
	paths := (&config.Paths{
		ConfigDir: filepath.Join(tempDir, "config"),
		StateRoot: filepath.Join(tempDir, "state"),
	}).WithStateRoot("")

	h := &TestHarness{
		t:       t,
		tempDir: tempDir,
		paths:   paths,
		backend: b,
	}
	t.Cleanup(h.Cleanup)
	return h
}

// imagesFromEnv uses SNAPBOX_IMAGE for every base, or nil when unset
func imagesFromEnv() map[string]string {
	image := os.Getenv(envImage)
	if image == "" {
		return nil
	}
	return map[string]string{
		project.BaseCore16: image,
		project.BaseCore18: image,
	}
}

// Paths returns the harness paths
func (h *TestHarness) Paths() *config.Paths {
	return h.paths
}

// Backend returns the backend under test
func (h *TestHarness) Backend() backend.Backend {
	return h.backend
}

// ProjectName returns a project name unique to this run
func ProjectName(prefix string) string {
	return prefix + "-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8] + "x"
}

// InstanceName returns a tracked instance name unique to this run
func (h *TestHarness) InstanceName(prefix string) string {
	name := backend.InstancePrefix + ProjectName(prefix)
	h.TrackInstance(name)
	return name
}

// TrackInstance tracks an instance for cleanup.
func (h *TestHarness) TrackInstance(name string) {
	h.instances = append(h.instances, name)
}

// Cleanup destroys all tracked instances.
func (h *TestHarness) Cleanup() {
	ctx := context.Background()
	for _, name := range h.instances {
		if err := h.backend.Destroy(ctx, name); err != nil {
			h.t.Logf("Warning: failed to destroy instance %s: %v", name, err)
		}
	}
	h.instances = nil
}

// Status returns the listed status of an instance, and false when it is not listed
func (h *TestHarness) Status(name string) (backend.InstanceStatus, bool) {
	h.t.Helper()

	infos, err := h.backend.List(context.Background())
	if err != nil {
		h.t.Fatalf("List failed: %v", err)
	}
	for _, info := range infos {
		if info.Name == name {
			return info.Status, true
		}
	}
	return "", false
}

// WriteProject writes a minimal snapcraft project and returns its directory
func (h *TestHarness) WriteProject(name, base string) string {
	h.t.Helper()

	dir := filepath.Join(h.tempDir, "projects", name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		h.t.Fatalf("Failed to create project: %v", err)
	}
	data := "name: " + name + "\nversion: '0.1'\nbase: " + base + "\nsummary: t\ndescription: t\n"
	if err := os.WriteFile(filepath.Join(dir, "snapcraft.yaml"), []byte(data), 0644); err != nil {
		h.t.Fatalf("Failed to write snapcraft.yaml: %v", err)
	}
	return dir
}
