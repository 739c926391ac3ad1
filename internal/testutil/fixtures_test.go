package testutil

import (
	"testing"

	"github.com/firefly-engineering/snapbox/internal/errors"
	"github.com/firefly-engineering/snapbox/internal/project"
)

func TestLoadValidHostConfig(t *testing.T) {
	cfg, err := ValidHostConfig()
	if err != nil {
		t.Fatalf("ValidHostConfig() error: %v", err)
	}

	if cfg.Backend != "multipass" {
		t.Errorf("Backend = %q, want %q", cfg.Backend, "multipass")
	}
	if !cfg.KeepInstance {
		t.Error("KeepInstance should be true")
	}
	if cfg.Images["core18"] != "snapcraft:core18" {
		t.Errorf("Images[core18] = %q", cfg.Images["core18"])
	}
	// Keys absent from the file keep their defaults
	if cfg.SnapMountDir != "/snap" {
		t.Errorf("SnapMountDir = %q, want default", cfg.SnapMountDir)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Valid config should pass validation: %v", err)
	}
}

func TestLoadInvalidHostConfig(t *testing.T) {
	cfg, err := InvalidHostConfig()
	if err != nil {
		t.Fatalf("InvalidHostConfig() error: %v", err)
	}

	if err := cfg.Validate(); err == nil {
		t.Error("Invalid config should fail validation")
	}
}

func TestStrictProject(t *testing.T) {
	p, err := StrictProject()
	if err != nil {
		t.Fatalf("StrictProject() error: %v", err)
	}

	if p.Name != "hello" || p.Version != "2.10" {
		t.Errorf("got %s %s, want hello 2.10", p.Name, p.Version)
	}
	if p.Base != project.BaseCore16 {
		t.Errorf("Base = %q, want default %q", p.Base, project.BaseCore16)
	}
	if p.Classic() {
		t.Error("strict project should not be classic")
	}
}

func TestClassicProject(t *testing.T) {
	p, err := ClassicProject()
	if err != nil {
		t.Fatalf("ClassicProject() error: %v", err)
	}

	if p.Version != "1.0" {
		t.Errorf("Version = %q, want %q", p.Version, "1.0")
	}
	if p.Base != project.BaseCore18 {
		t.Errorf("Base = %q, want %q", p.Base, project.BaseCore18)
	}
	if !p.Classic() {
		t.Error("project should be classic")
	}
}

func TestInvalidProject(t *testing.T) {
	_, err := LoadProjectFixture("snapcraft_invalid.yaml")
	if err == nil {
		t.Fatal("invalid project should fail to load")
	}
	if errors.GetExitCode(err) != errors.ExitProjectError {
		t.Errorf("exit code = %d, want %d", errors.GetExitCode(err), errors.ExitProjectError)
	}
}

func TestLoadFixture_NotFound(t *testing.T) {
	_, err := LoadFixture("nonexistent.toml")
	if err == nil {
		t.Error("LoadFixture should error for nonexistent file")
	}
}

func TestNewTestEnv(t *testing.T) {
	env := NewTestEnv(t)

	if env.App == nil || env.App.Backend != env.Backend {
		t.Fatal("app should use the mock backend")
	}

	dir := env.WriteProject("hello", project.BaseCore18, "")
	p, err := project.Load(dir, "")
	if err != nil {
		t.Fatalf("project.Load() error: %v", err)
	}
	if p.Name != "hello" || p.Base != project.BaseCore18 {
		t.Errorf("project = %+v", p)
	}

	if env.ProjectStateExists("hello") {
		t.Error("project state should not exist yet")
	}
	env.AddProjectState("hello")
	if !env.ProjectStateExists("hello") {
		t.Error("project state should exist")
	}

	if names := env.Registry("hello").Names(); len(names) != 0 {
		t.Errorf("fresh registry should be empty, got %v", names)
	}
}
