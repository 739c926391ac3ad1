package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/firefly-engineering/snapbox/internal/errors"
	"github.com/firefly-engineering/snapbox/internal/logging"
	"github.com/firefly-engineering/snapbox/internal/system"
)

// DefaultMultipassImages maps snap bases to images from the snapcraft
// remote, which ship snapd and snapcraft preinstalled
var DefaultMultipassImages = map[string]string{
	"core16": "snapcraft:core16",
	"core18": "snapcraft:core18",
}

// MultipassBackend implements the Backend interface with multipass VMs.
type MultipassBackend struct {
	// Command is the multipass binary
	Command string

	// Images overrides DefaultMultipassImages per base
	Images map[string]string

	exec system.CommandExecutor
}

// NewMultipassBackend creates a multipass backend.
// A nil executor uses the system default.
func NewMultipassBackend(images map[string]string, executor system.CommandExecutor) *MultipassBackend {
	if executor == nil {
		executor = system.DefaultExecutor()
	}
	return &MultipassBackend{
		Command: "multipass",
		Images:  images,
		exec:    executor,
	}
}

// Name returns the backend identifier
func (b *MultipassBackend) Name() string {
	return "multipass"
}

func (b *MultipassBackend) runCmd(ctx context.Context, args ...string) (string, error) {
	out, err := b.exec.Execute(ctx, b.Command, args...)
	if err != nil {
		return string(out), fmt.Errorf("multipass %s failed: %s: %w", args[0], strings.TrimSpace(string(out)), err)
	}
	return string(out), nil
}

func isMissingVM(output string) bool {
	return strings.Contains(output, "does not exist")
}

func (b *MultipassBackend) image(opts LaunchOptions) (string, error) {
	if opts.Image != "" {
		return opts.Image, nil
	}
	if img, ok := b.Images[opts.Base]; ok {
		return img, nil
	}
	if img, ok := DefaultMultipassImages[opts.Base]; ok {
		return img, nil
	}
	return "", fmt.Errorf("no multipass image for base %q", opts.Base)
}

// Launch creates and boots a VM. A later Start on the running VM is a no-op.
func (b *MultipassBackend) Launch(ctx context.Context, name string, opts LaunchOptions) error {
	image, err := b.image(opts)
	if err != nil {
		return err
	}
	logging.Debug("launching vm", "name", name, "image", image)

	args := []string{"launch", "--name", name}
	if opts.CPUs > 0 {
		args = append(args, "--cpus", strconv.Itoa(opts.CPUs))
	}
	if opts.MemoryMB > 0 {
		args = append(args, "--memory", fmt.Sprintf("%dM", opts.MemoryMB))
	}
	args = append(args, image)

	_, err = b.runCmd(ctx, args...)
	return err
}

// Start starts an existing VM
func (b *MultipassBackend) Start(ctx context.Context, name string) error {
	logging.Debug("starting vm", "name", name)

	out, err := b.runCmd(ctx, "start", name)
	if err != nil && isMissingVM(out) {
		return errors.InstanceNotFound(name)
	}
	return err
}

// Stop stops a running VM
func (b *MultipassBackend) Stop(ctx context.Context, name string) error {
	logging.Debug("stopping vm", "name", name)

	_, err := b.runCmd(ctx, "stop", name)
	return err
}

// Destroy deletes and purges a VM
func (b *MultipassBackend) Destroy(ctx context.Context, name string) error {
	logging.Debug("destroying vm", "name", name)

	out, err := b.runCmd(ctx, "delete", "--purge", name)
	if err != nil && isMissingVM(out) {
		return nil
	}
	return err
}

// Run executes a command inside the VM through sudo
func (b *MultipassBackend) Run(ctx context.Context, name string, command []string, opts ExecOptions) (*ExecResult, error) {
	args := []string{"exec"}
	if opts.WorkingDir != "" {
		args = append(args, "--working-directory", opts.WorkingDir)
	}
	args = append(args, name, "--", "sudo", "-H")
	if opts.User != "" {
		args = append(args, "-u", opts.User)
	}
	if len(opts.Env) > 0 {
		args = append(args, "env")
		args = append(args, opts.Env...)
	}
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

// Shell opens an interactive shell in the VM
func (b *MultipassBackend) Shell(ctx context.Context, name string) error {
	return b.exec.ExecuteInteractive(ctx, b.Command, "shell", name)
}

// Mount mounts a host directory into the VM
func (b *MultipassBackend) Mount(ctx context.Context, name string, m Mount) error {
	_, err := b.runCmd(ctx, "mount", m.Source, name+":"+m.Target)
	return err
}

// SharesMounts reports true: multipass mounts are live views of the host directory
func (b *MultipassBackend) SharesMounts() bool {
	return true
}

// Unmount removes a mount from the VM
func (b *MultipassBackend) Unmount(ctx context.Context, name string, target string) error {
	_, err := b.runCmd(ctx, "umount", name+":"+target)
	return err
}

// PushFile copies a host file into the VM
func (b *MultipassBackend) PushFile(ctx context.Context, name, src, dst string) error {
	_, err := b.runCmd(ctx, "transfer", src, name+":"+dst)
	return err
}

// PullFile copies a file out of the VM
func (b *MultipassBackend) PullFile(ctx context.Context, name, src, dst string) error {
	_, err := b.runCmd(ctx, "transfer", name+":"+src, dst)
	return err
}

// multipassList holds the relevant fields from multipass list --format json
type multipassList struct {
	List []struct {
		Name  string `json:"name"`
		State string `json:"state"`
	} `json:"list"`
}

// List returns all VMs whose name carries InstancePrefix
func (b *MultipassBackend) List(ctx context.Context) ([]*InstanceInfo, error) {
	output, err := b.runCmd(ctx, "list", "--format", "json")
	if err != nil {
		return nil, err
	}

	var parsed multipassList
	if err := json.Unmarshal([]byte(output), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse multipass list: %w", err)
	}

	var instances []*InstanceInfo
	for _, vm := range parsed.List {
		if !strings.HasPrefix(vm.Name, InstancePrefix) {
			continue
		}
		info := &InstanceInfo{Name: vm.Name, Status: StatusUnknown}
		switch vm.State {
		case "Running":
			info.Status = StatusRunning
		case "Stopped", "Suspended":
			info.Status = StatusStopped
		}
		instances = append(instances, info)
	}

	return instances, nil
}

var _ Backend = (*MultipassBackend)(nil)
