package provider

import (
	"context"
	"strings"

	"github.com/firefly-engineering/snapbox/internal/audit"
	"github.com/firefly-engineering/snapbox/internal/injection"
)

// SnapsMountpoint is where the host snap cache is mounted in the instance
const SnapsMountpoint = "/var/cache/snapcraft/snaps"

// snapInjector is the part of injection.Injector the provider drives
type snapInjector interface {
	Add(name string)
	Apply(ctx context.Context) error
}

type injectorFactory func(opts injection.Options) (snapInjector, error)

func defaultInjectorFactory(opts injection.Options) (snapInjector, error) {
	inj, err := injection.New(opts)
	if err != nil {
		return nil, err
	}
	return inj, nil
}

// SnapsToInject returns the snaps the project's instance needs, in order
func (p *Provider) SnapsToInject() []string {
	return injection.SnapSet(p.project.Base, p.project.Classic())
}

// SetupSnapcraft injects core, snapcraft and the project's base into the
// instance from the host
func (p *Provider) SetupSnapcraft(ctx context.Context) error {
	instanceID, err := p.InstanceID()
	if err != nil {
		return err
	}

	inj, err := p.newInjector(injection.Options{
		SnapDir:      SnapsMountpoint,
		RegistryPath: p.RegistryPath(),
		Arch:         p.project.Arch,
		InstanceID:   instanceID,
		Runner:       p.Run,
		Mounter: func(ctx context.Context) error {
			return p.Mount(ctx, p.inventory.SnapsDir(), SnapsMountpoint)
		},
		Unmounter: func(ctx context.Context) error {
			return p.Unmount(ctx, SnapsMountpoint)
		},
		FilePusher: p.PushFile,
		Inventory:  p.inventory,
	})
	if err != nil {
		return err
	}

	snaps := p.SnapsToInject()
	for _, name := range snaps {
		inj.Add(name)
	}

	if err := inj.Apply(ctx); err != nil {
		p.event(audit.EventError, "inject: "+err.Error())
		return err
	}
	p.event(audit.EventInject, strings.Join(snaps, " "))
	return nil
}
