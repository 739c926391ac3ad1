package backend

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/firefly-engineering/snapbox/internal/errors"
	"github.com/firefly-engineering/snapbox/internal/system"
)

var testImages = map[string]string{
	"core16": "registry.local/builder:16.04",
	"core18": "registry.local/builder:18.04",
}

func newTestDocker(command string) (*DockerBackend, *system.MockExecutor) {
	exec := system.NewMockExecutor()
	return NewDockerBackend(command, testImages, exec), exec
}

func TestDockerBackend_Name(t *testing.T) {
	b, _ := newTestDocker("docker")
	if b.Name() != "docker" {
		t.Errorf("Name() = %q, want %q", b.Name(), "docker")
	}

	b, _ = newTestDocker("podman")
	if b.Name() != "podman" {
		t.Errorf("Name() = %q, want %q", b.Name(), "podman")
	}
}

func TestDockerBackend_Launch(t *testing.T) {
	tests := []struct {
		name string
		opts LaunchOptions
		want string
	}{
		{
			name: "core16",
			opts: LaunchOptions{Base: "core16"},
			want: "docker create --name snapcraft-hello-amd64 --hostname snapcraft-hello-amd64 --privileged registry.local/builder:16.04 sleep infinity",
		},
		{
			name: "core18 with resources",
			opts: LaunchOptions{Base: "core18", CPUs: 2, MemoryMB: 2048},
			want: "docker create --name snapcraft-hello-amd64 --hostname snapcraft-hello-amd64 --privileged --cpus 2 --memory 2048m registry.local/builder:18.04 sleep infinity",
		},
		{
			name: "explicit image",
			opts: LaunchOptions{Base: "core18", Image: "registry.local/bionic"},
			want: "docker create --name snapcraft-hello-amd64 --hostname snapcraft-hello-amd64 --privileged registry.local/bionic sleep infinity",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, exec := newTestDocker("docker")
			if err := b.Launch(context.Background(), "snapcraft-hello-amd64", tt.opts); err != nil {
				t.Fatalf("Launch() error: %v", err)
			}
			cmd, _ := exec.LastCommand()
			if cmd.String() != tt.want {
				t.Errorf("command = %q\nwant      %q", cmd.String(), tt.want)
			}
		})
	}
}

func TestDockerBackend_Launch_NoImage(t *testing.T) {
	tests := []struct {
		name   string
		images map[string]string
		base   string
	}{
		{"no images configured", nil, "core18"},
		{"base not configured", map[string]string{"core16": "registry.local/builder:16.04"}, "core18"},
		{"unknown base", testImages, "core99"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := system.NewMockExecutor()
			b := NewDockerBackend("podman", tt.images, exec)

			err := b.Launch(context.Background(), "x", LaunchOptions{Base: tt.base})
			if errors.GetExitCode(err) != errors.ExitConfigError {
				t.Fatalf("Launch() error = %v, want a config error", err)
			}
			if !strings.Contains(err.Error(), "[images]") {
				t.Errorf("error should point at the images setting: %v", err)
			}
			if len(exec.Commands) != 0 {
				t.Errorf("no command should run, got %v", exec.CommandLines())
			}
		})
	}
}

func TestDockerBackend_Launch_ImageOverride(t *testing.T) {
	exec := system.NewMockExecutor()
	b := NewDockerBackend("podman", map[string]string{"core16": "docker.io/library/ubuntu:xenial"}, exec)

	if err := b.Launch(context.Background(), "x", LaunchOptions{Base: "core16"}); err != nil {
		t.Fatalf("Launch() error: %v", err)
	}
	cmd, _ := exec.LastCommand()
	if cmd.Args[len(cmd.Args)-3] != "docker.io/library/ubuntu:xenial" {
		t.Errorf("image = %q", cmd.Args[len(cmd.Args)-3])
	}
}

func TestDockerBackend_Start_NotFound(t *testing.T) {
	tests := []struct {
		command string
		output  string
	}{
		{"docker", "Error response from daemon: No such container: snapcraft-x-amd64"},
		{"podman", "Error: no such container snapcraft-x-amd64"},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			b, exec := newTestDocker(tt.command)
			exec.AddResponse(tt.command+" start", []byte(tt.output), &system.MockExitError{Code: 1})

			err := b.Start(context.Background(), "snapcraft-x-amd64")
			if !errors.IsInstanceNotFound(err) {
				t.Errorf("Start() error = %v, want InstanceNotFound", err)
			}
		})
	}
}

func TestDockerBackend_Start_OtherError(t *testing.T) {
	b, exec := newTestDocker("docker")
	exec.AddResponse("docker start", []byte("Cannot connect to the Docker daemon"), &system.MockExitError{Code: 1})

	err := b.Start(context.Background(), "snapcraft-x-amd64")
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.IsInstanceNotFound(err) {
		t.Error("daemon failure must not be reported as InstanceNotFound")
	}
}

func TestDockerBackend_Destroy_IgnoresMissing(t *testing.T) {
	b, exec := newTestDocker("docker")
	exec.AddResponse("docker rm", []byte("Error: No such container: x"), &system.MockExitError{Code: 1})

	if err := b.Destroy(context.Background(), "x"); err != nil {
		t.Errorf("Destroy() of missing container should succeed, got %v", err)
	}
}

func TestDockerBackend_Run(t *testing.T) {
	b, exec := newTestDocker("docker")
	exec.AddResponse("docker exec", []byte("done\n"), nil)

	result, err := b.Run(context.Background(), "box", []string{"snap", "ack", "/var/tmp/core.assert"}, ExecOptions{
		WorkingDir: "/root/project",
		Env:        []string{"SNAPCRAFT_BUILD_ENVIRONMENT=host"},
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if result.ExitCode != 0 || result.Output != "done\n" {
		t.Errorf("result = %+v", result)
	}

	cmd, _ := exec.LastCommand()
	want := []string{"exec", "-w", "/root/project", "-e", "SNAPCRAFT_BUILD_ENVIRONMENT=host", "box", "snap", "ack", "/var/tmp/core.assert"}
	if !reflect.DeepEqual(cmd.Args, want) {
		t.Errorf("args = %v, want %v", cmd.Args, want)
	}
}

func TestDockerBackend_Run_ExitCode(t *testing.T) {
	b, exec := newTestDocker("docker")
	exec.AddResponse("docker exec box false", []byte("boom"), &system.MockExitError{Code: 7})

	result, err := b.Run(context.Background(), "box", []string{"false"}, ExecOptions{})
	if err != nil {
		t.Fatalf("non-zero exit should not be an error, got %v", err)
	}
	if result.ExitCode != 7 {
		t.Errorf("ExitCode = %d, want 7", result.ExitCode)
	}
}

func TestDockerBackend_Run_ExecFailure(t *testing.T) {
	b, exec := newTestDocker("docker")
	exec.AddResponse("docker exec", nil, fmt.Errorf("executable not found"))

	if _, err := b.Run(context.Background(), "box", []string{"true"}, ExecOptions{}); err == nil {
		t.Error("expected error when the CLI cannot run")
	}
}

func TestDockerBackend_MountCopiesDirectory(t *testing.T) {
	b, exec := newTestDocker("docker")
	ctx := context.Background()

	if err := b.Mount(ctx, "box", Mount{Source: "/var/lib/snapd/snaps", Target: "/var/cache/snapcraft/snaps"}); err != nil {
		t.Fatalf("Mount() error: %v", err)
	}
	if err := b.Unmount(ctx, "box", "/var/cache/snapcraft/snaps"); err != nil {
		t.Fatalf("Unmount() error: %v", err)
	}

	want := []string{
		"docker exec box mkdir -p /var/cache/snapcraft/snaps",
		"docker cp /var/lib/snapd/snaps/. box:/var/cache/snapcraft/snaps",
		"docker exec box rm -rf /var/cache/snapcraft/snaps",
	}
	if got := exec.CommandLines(); !reflect.DeepEqual(got, want) {
		t.Errorf("commands = %v\nwant %v", got, want)
	}
}

func TestDockerBackend_PushPull(t *testing.T) {
	b, exec := newTestDocker("podman")
	ctx := context.Background()

	_ = b.PushFile(ctx, "box", "/host/core.assert", "/var/tmp/core.assert")
	_ = b.PullFile(ctx, "box", "/root/project/hello_amd64.snap", "/home/u/hello_amd64.snap")

	want := []string{
		"podman cp /host/core.assert box:/var/tmp/core.assert",
		"podman cp box:/root/project/hello_amd64.snap /home/u/hello_amd64.snap",
	}
	if got := exec.CommandLines(); !reflect.DeepEqual(got, want) {
		t.Errorf("commands = %v\nwant %v", got, want)
	}
}

func TestDockerBackend_List(t *testing.T) {
	b, exec := newTestDocker("docker")
	exec.AddResponse("docker ps", []byte("snapcraft-a-amd64\trunning\nsnapcraft-b-arm64\texited\nother\trunning\n"), nil)

	instances, err := b.List(context.Background())
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(instances) != 2 {
		t.Fatalf("List() returned %d instances, want 2", len(instances))
	}
	if instances[0].Status != StatusRunning || instances[1].Status != StatusStopped {
		t.Errorf("statuses = %s, %s", instances[0].Status, instances[1].Status)
	}
}

func TestDockerBackend_Interface(t *testing.T) {
	var _ Backend = (*DockerBackend)(nil)
}
