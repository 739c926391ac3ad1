package provider

import (
	"context"
	"path"
	"path/filepath"

	"github.com/kballard/go-shellquote"
	cp "github.com/otiai10/copy"

	"github.com/firefly-engineering/snapbox/internal/audit"
	"github.com/firefly-engineering/snapbox/internal/backend"
	"github.com/firefly-engineering/snapbox/internal/errors"
	"github.com/firefly-engineering/snapbox/internal/logging"
)

// ProjectMountpoint is where the project directory appears in the instance
const ProjectMountpoint = "/root/project"

// BuildOptions configures Build
type BuildOptions struct {
	// Command overrides the build command. The default builds the snap
	// with snapcraft.
	Command []string

	// OutputDir receives the artifact. Empty skips retrieval.
	OutputDir string
}

// samePath reports whether a and b name the same host path
func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}

// Build runs the build command in the instance with the project mounted,
// then copies the artifact into OutputDir. It returns the artifact's host
// path, or "" when nothing was retrieved.
func (p *Provider) Build(ctx context.Context, opts BuildOptions) (artifact string, err error) {
	if p.project.Dir == "" {
		return "", errors.ProjectError("project has no directory to build", nil)
	}

	command := opts.Command
	if len(command) == 0 {
		command = []string{"snapcraft", "snap", "--output", p.SnapFilename()}
	}

	if err := p.Mount(ctx, p.project.Dir, ProjectMountpoint); err != nil {
		return "", err
	}
	defer func() {
		if uerr := p.Unmount(context.WithoutCancel(ctx), ProjectMountpoint); uerr != nil {
			err = errors.Join(err, uerr)
		}
	}()

	p.event(audit.EventRun, shellquote.Join(command...))
	err = p.Exec(ctx, command, backend.ExecOptions{
		WorkingDir: ProjectMountpoint,
		Env:        []string{"SNAPCRAFT_BUILD_ENVIRONMENT=host"},
	})
	if err != nil {
		return "", err
	}

	if opts.OutputDir == "" {
		return "", nil
	}

	artifact = filepath.Join(opts.OutputDir, p.SnapFilename())

	// A shared mount already put the artifact in the project directory on
	// the host. Pulling it through the instance would copy it onto itself.
	if backend.SharesMounts(p.backend) {
		built := filepath.Join(p.project.Dir, p.SnapFilename())
		if samePath(built, artifact) {
			logging.Info("artifact written through project mount", "path", artifact)
			return artifact, nil
		}
		if err := cp.Copy(built, artifact); err != nil {
			return "", errors.Wrap(errors.ExitGeneralError, "failed to copy artifact", err)
		}
		logging.Info("copied artifact", "from", built, "path", artifact)
		return artifact, nil
	}

	if err := p.PullFile(ctx, path.Join(ProjectMountpoint, p.SnapFilename()), artifact); err != nil {
		return "", err
	}
	logging.Info("retrieved artifact", "path", artifact)
	return artifact, nil
}
