package backend

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/firefly-engineering/snapbox/internal/errors"
	"github.com/firefly-engineering/snapbox/internal/logging"
	"github.com/firefly-engineering/snapbox/internal/system"
)

// DockerBackend implements the Backend interface using Docker or Podman.
type DockerBackend struct {
	// Command is the container command to use (docker or podman)
	Command string

	// Images maps snap bases to container images. Stock distribution images
	// lack snapd and snapcraft, so there are no defaults.
	Images map[string]string

	exec system.CommandExecutor
}

// NewDockerBackend creates a backend driving the given container command.
// A nil executor uses the system default.
func NewDockerBackend(command string, images map[string]string, executor system.CommandExecutor) *DockerBackend {
	if executor == nil {
		executor = system.DefaultExecutor()
	}
	return &DockerBackend{
		Command: command,
		Images:  images,
		exec:    executor,
	}
}

// Name returns the backend identifier
func (b *DockerBackend) Name() string {
	return b.Command
}

// runCmd executes a docker/podman command
func (b *DockerBackend) runCmd(ctx context.Context, args ...string) (string, error) {
	out, err := b.exec.Execute(ctx, b.Command, args...)
	if err != nil {
		return string(out), fmt.Errorf("%s %s failed: %s: %w", b.Command, args[0], strings.TrimSpace(string(out)), err)
	}
	return string(out), nil
}

func isNoSuchContainer(output string) bool {
	return strings.Contains(strings.ToLower(output), "no such container")
}

func (b *DockerBackend) image(opts LaunchOptions) (string, error) {
	if opts.Image != "" {
		return opts.Image, nil
	}
	if img, ok := b.Images[opts.Base]; ok {
		return img, nil
	}
	return "", errors.ConfigError(fmt.Sprintf(
		"no %s image configured for base %q: set %s under [images] in config.toml to an image with snapd and snapcraft",
		b.Command, opts.Base, opts.Base), nil)
}

// Launch creates a long-running container for the instance
func (b *DockerBackend) Launch(ctx context.Context, name string, opts LaunchOptions) error {
	image, err := b.image(opts)
	if err != nil {
		return err
	}
	logging.Debug("creating container", "name", name, "image", image, "backend", b.Command)

	args := []string{"create", "--name", name, "--hostname", name, "--privileged"}
	if opts.CPUs > 0 {
		args = append(args, "--cpus", strconv.Itoa(opts.CPUs))
	}
	if opts.MemoryMB > 0 {
		args = append(args, "--memory", fmt.Sprintf("%dm", opts.MemoryMB))
	}
	args = append(args, image, "sleep", "infinity")

	_, err = b.runCmd(ctx, args...)
	return err
}

// Start starts an existing container
func (b *DockerBackend) Start(ctx context.Context, name string) error {
	logging.Debug("starting container", "container", name)

	out, err := b.runCmd(ctx, "start", name)
	if err != nil && isNoSuchContainer(out) {
		return errors.InstanceNotFound(name)
	}
	return err
}

// Stop stops a running container
func (b *DockerBackend) Stop(ctx context.Context, name string) error {
	logging.Debug("stopping container", "container", name)

	_, err := b.runCmd(ctx, "stop", name)
	return err
}

// Destroy removes a container, running or not
func (b *DockerBackend) Destroy(ctx context.Context, name string) error {
	logging.Debug("destroying container", "container", name)

	out, err := b.runCmd(ctx, "rm", "-f", name)
	if err != nil && isNoSuchContainer(out) {
		return nil
	}
	return err
}

// Run executes a command inside a container
func (b *DockerBackend) Run(ctx context.Context, name string, command []string, opts ExecOptions) (*ExecResult, error) {
	args := []string{"exec"}

	if opts.User != "" {
		args = append(args, "-u", opts.User)
	}

	if opts.WorkingDir != "" {
		args = append(args, "-w", opts.WorkingDir)
	}

	for _, env := range opts.Env {
		args = append(args, "-e", env)
	}

	args = append(args, name)
	args = append(args, command...)

	out, err := b.exec.Execute(ctx, b.Command, args...)
	result := &ExecResult{Output: string(out)}
	if err != nil {
		code, ok := system.ExitCode(err)
		if !ok {
			return result, fmt.Errorf("exec failed: %w", err)
		}
		result.ExitCode = code
	}

	return result, nil
}

// Shell opens an interactive bash session in the container
func (b *DockerBackend) Shell(ctx context.Context, name string) error {
	return b.exec.ExecuteInteractive(ctx, b.Command, "exec", "-it", name, "/bin/bash", "-l")
}

// Mount copies the source directory into the container. Running containers
// cannot gain bind mounts, so the copy stands in for one until Unmount.
func (b *DockerBackend) Mount(ctx context.Context, name string, m Mount) error {
	if _, err := b.runCmd(ctx, "exec", name, "mkdir", "-p", m.Target); err != nil {
		return err
	}
	_, err := b.runCmd(ctx, "cp", m.Source+"/.", name+":"+m.Target)
	return err
}

// Unmount deletes the directory copied in by Mount
func (b *DockerBackend) Unmount(ctx context.Context, name string, target string) error {
	_, err := b.runCmd(ctx, "exec", name, "rm", "-rf", target)
	return err
}

// PushFile copies a host file into the container
func (b *DockerBackend) PushFile(ctx context.Context, name, src, dst string) error {
	_, err := b.runCmd(ctx, "cp", src, name+":"+dst)
	return err
}

// PullFile copies a file out of the container
func (b *DockerBackend) PullFile(ctx context.Context, name, src, dst string) error {
	_, err := b.runCmd(ctx, "cp", name+":"+src, dst)
	return err
}

// List returns all containers whose name carries InstancePrefix
func (b *DockerBackend) List(ctx context.Context) ([]*InstanceInfo, error) {
	output, err := b.runCmd(ctx, "ps", "-a", "--format", "{{.Names}}\t{{.State}}", "--filter", "name="+InstancePrefix)
	if err != nil {
		return nil, err
	}

	var instances []*InstanceInfo
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		name, state, _ := strings.Cut(line, "\t")
		if !strings.HasPrefix(name, InstancePrefix) {
			continue
		}

		info := &InstanceInfo{Name: name, Status: StatusUnknown}
		switch strings.ToLower(strings.TrimSpace(state)) {
		case "running":
			info.Status = StatusRunning
		case "exited", "stopped", "created":
			info.Status = StatusStopped
		}
		instances = append(instances, info)
	}

	return instances, nil
}

var _ Backend = (*DockerBackend)(nil)
