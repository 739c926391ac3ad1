package integration

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/firefly-engineering/snapbox/internal/backend"
	"github.com/firefly-engineering/snapbox/internal/errors"
	"github.com/firefly-engineering/snapbox/internal/project"
)

func TestBackend_InstanceLifecycle(t *testing.T) {
	h := NewHarness(t)
	b := h.Backend()
	ctx := context.Background()
	name := h.InstanceName("life")

	if err := b.Start(ctx, name); !errors.IsInstanceNotFound(err) {
		t.Fatalf("Start on a missing instance = %v, want InstanceNotFound", err)
	}

	t.Log("Launching instance...")
	if err := b.Launch(ctx, name, backend.LaunchOptions{Base: project.BaseCore18}); err != nil {
		t.Fatalf("Launch failed: %v", err)
	}
	if err := b.Start(ctx, name); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if status, ok := h.Status(name); !ok || status != backend.StatusRunning {
		t.Errorf("status = %q (listed %v), want running", status, ok)
	}

	result, err := b.Run(ctx, name, []string{"echo", "hello"}, backend.ExecOptions{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.ExitCode != 0 || strings.TrimSpace(result.Output) != "hello" {
		t.Errorf("Run = %d %q, want 0 hello", result.ExitCode, result.Output)
	}

	result, err = b.Run(ctx, name, []string{"sh", "-c", "exit 3"}, backend.ExecOptions{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", result.ExitCode)
	}

	t.Log("Stopping instance...")
	if err := b.Stop(ctx, name); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if status, _ := h.Status(name); status == backend.StatusRunning {
		t.Error("instance should not be running after Stop")
	}

	t.Log("Destroying instance...")
	if err := b.Destroy(ctx, name); err != nil {
		t.Fatalf("Destroy failed: %v", err)
	}
	if _, ok := h.Status(name); ok {
		t.Error("instance should not be listed after Destroy")
	}
	if err := b.Destroy(ctx, name); err != nil {
		t.Errorf("Destroy of a missing instance should succeed: %v", err)
	}
}

func TestBackend_FileTransfer(t *testing.T) {
	h := NewHarness(t)
	b := h.Backend()
	ctx := context.Background()
	name := h.InstanceName("files")

	if err := b.Launch(ctx, name, backend.LaunchOptions{Base: project.BaseCore18}); err != nil {
		t.Fatalf("Launch failed: %v", err)
	}
	if err := b.Start(ctx, name); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	src := t.TempDir()
	if err := os.WriteFile(filepath.Join(src, "marker"), []byte("mounted"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := b.Mount(ctx, name, backend.Mount{Source: src, Target: "/mnt/snaps"}); err != nil {
		t.Fatalf("Mount failed: %v", err)
	}
	result, err := b.Run(ctx, name, []string{"cat", "/mnt/snaps/marker"}, backend.ExecOptions{})
	if err != nil || strings.TrimSpace(result.Output) != "mounted" {
		t.Errorf("cat after mount = %v, %v", result, err)
	}
	if err := b.Unmount(ctx, name, "/mnt/snaps"); err != nil {
		t.Errorf("Unmount failed: %v", err)
	}
	result, err = b.Run(ctx, name, []string{"test", "-e", "/mnt/snaps/marker"}, backend.ExecOptions{})
	if err != nil || result.ExitCode == 0 {
		t.Errorf("marker should be gone after Unmount (%v, %v)", result, err)
	}

	pushed := filepath.Join(src, "pushed")
	if err := os.WriteFile(pushed, []byte("pushed"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := b.PushFile(ctx, name, pushed, "/tmp/pushed"); err != nil {
		t.Fatalf("PushFile failed: %v", err)
	}
	pulled := filepath.Join(t.TempDir(), "pulled")
	if err := b.PullFile(ctx, name, "/tmp/pushed", pulled); err != nil {
		t.Fatalf("PullFile failed: %v", err)
	}
	data, err := os.ReadFile(pulled)
	if err != nil || string(data) != "pushed" {
		t.Errorf("pulled = %q, %v", data, err)
	}
}
