package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/firefly-engineering/snapbox/internal/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestLoadHostConfig_Missing(t *testing.T) {
	cfg, err := LoadHostConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadHostConfig() error: %v", err)
	}

	want := DefaultHostConfig()
	if cfg.Backend != want.Backend || cfg.SnapsDir != want.SnapsDir || cfg.SnapMountDir != want.SnapMountDir {
		t.Errorf("LoadHostConfig() = %+v, want defaults %+v", cfg, want)
	}
}

func TestLoadHostConfig(t *testing.T) {
	dir := writeConfig(t, `
state_root = "/srv/snapbox"
backend = "podman"
keep_instance = true
assertions_dir = "/srv/assertions"
cpus = 4
memory_mb = 4096

[images]
core18 = "registry.local/ubuntu:18.04"
`)

	cfg, err := LoadHostConfig(dir)
	if err != nil {
		t.Fatalf("LoadHostConfig() error: %v", err)
	}

	if cfg.StateRoot != "/srv/snapbox" {
		t.Errorf("StateRoot = %q", cfg.StateRoot)
	}
	if cfg.Backend != "podman" || !cfg.KeepInstance {
		t.Errorf("Backend = %q, KeepInstance = %v", cfg.Backend, cfg.KeepInstance)
	}
	if cfg.CPUs != 4 || cfg.MemoryMB != 4096 {
		t.Errorf("CPUs = %d, MemoryMB = %d", cfg.CPUs, cfg.MemoryMB)
	}
	if cfg.Images["core18"] != "registry.local/ubuntu:18.04" {
		t.Errorf("Images = %v", cfg.Images)
	}
	if cfg.SnapsDir != DefaultSnapsDir {
		t.Errorf("unset keys should keep defaults, SnapsDir = %q", cfg.SnapsDir)
	}
}

func TestLoadHostConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantMsg string
	}{
		{"invalid toml", "backend = ", "failed to parse"},
		{"unknown key", "backnd = \"docker\"\n", "backnd"},
		{"bad backend", "backend = \"lxd\"\n", "invalid backend"},
		{"relative state root", "state_root = \"state\"\n", "absolute"},
		{"negative cpus", "cpus = -1\n", "cpus"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadHostConfig(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %v, want it to mention %q", err, tt.wantMsg)
			}
			if errors.GetExitCode(err) != errors.ExitConfigError {
				t.Errorf("exit code = %d, want %d", errors.GetExitCode(err), errors.ExitConfigError)
			}
		})
	}
}

func TestDefaultPaths_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg/config")
	t.Setenv("XDG_DATA_HOME", "/xdg/data")

	paths := DefaultPaths()
	if paths.ConfigDir != "/xdg/config/snapbox" {
		t.Errorf("ConfigDir = %q", paths.ConfigDir)
	}
	if paths.StateRoot != "/xdg/data/snapbox" {
		t.Errorf("StateRoot = %q", paths.StateRoot)
	}
}

func TestWithStateRoot(t *testing.T) {
	base := &Paths{ConfigDir: "/c", StateRoot: "/s"}

	p := base.WithStateRoot("/other")
	if p.StateRoot != "/other" || p.ProjectsDir != "/other/projects" || p.LogsDir != "/other/logs" {
		t.Errorf("WithStateRoot() = %+v", p)
	}
	if base.StateRoot != "/s" {
		t.Error("WithStateRoot must not modify the receiver")
	}

	p = base.WithStateRoot("")
	if p.StateRoot != "/s" || p.ProjectsDir != "/s/projects" {
		t.Errorf("WithStateRoot(\"\") = %+v", p)
	}
}

func TestProviderProjectDir(t *testing.T) {
	root := t.TempDir()
	p := (&Paths{StateRoot: root}).WithStateRoot("")

	tests := []struct {
		project string
		backend string
		want    string
	}{
		{"hello", "multipass", filepath.Join(root, "projects", "hello", "multipass")},
		{"hello", "docker", filepath.Join(root, "projects", "hello", "docker")},
		{"../../etc", "mock", filepath.Join(root, "projects", "etc", "mock")},
	}

	for _, tt := range tests {
		t.Run(tt.project+"/"+tt.backend, func(t *testing.T) {
			got, err := p.ProviderProjectDir(tt.project, tt.backend)
			if err != nil {
				t.Fatalf("ProviderProjectDir() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ProviderProjectDir() = %q, want %q", got, tt.want)
			}
		})
	}

	if _, err := p.ProviderProjectDir("", "mock"); err == nil {
		t.Error("expected error for empty project name")
	}
}

func TestAuditLogPath(t *testing.T) {
	p := &Paths{StateRoot: "/state"}
	got, err := p.AuditLogPath("snapcraft-hello-amd64")
	if err != nil {
		t.Fatalf("AuditLogPath() error: %v", err)
	}
	if got != "/state/logs/snapcraft-hello-amd64.events.jsonl" {
		t.Errorf("AuditLogPath() = %q", got)
	}
}

func TestListProjectStates(t *testing.T) {
	root := t.TempDir()
	p := &Paths{StateRoot: root}

	states, err := ListProjectStates(p)
	if err != nil || states != nil {
		t.Fatalf("ListProjectStates() on empty root = %v, %v", states, err)
	}

	for _, d := range []string{"projects/b/docker", "projects/a/multipass", "projects/a/docker"} {
		if err := os.MkdirAll(filepath.Join(root, d), 0755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(root, "projects", "stray"), nil, 0644); err != nil {
		t.Fatal(err)
	}

	states, err = ListProjectStates(p)
	if err != nil {
		t.Fatalf("ListProjectStates() error: %v", err)
	}

	var got []string
	for _, s := range states {
		got = append(got, s.Project+"/"+s.Backend)
	}
	want := "a/docker a/multipass b/docker"
	if strings.Join(got, " ") != want {
		t.Errorf("ListProjectStates() = %v, want %s", got, want)
	}
}
