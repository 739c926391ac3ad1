// Package config provides configuration types and loading for snapbox.
//
// # Host Configuration
//
// HostConfig is read from $XDG_CONFIG_HOME/snapbox/config.toml. Every key
// is optional:
//
//	state_root     = "/home/me/.local/share/snapbox"
//	backend        = "auto"        # auto, multipass, docker or podman
//	keep_instance  = false         # stop instead of destroy after a build
//	snap_mount_dir = "/snap"
//	snaps_dir      = "/var/lib/snapd/snaps"
//	assertions_dir = ""            # <name>_<rev>.assert files, if any
//	cpus           = 2
//	memory_mb      = 2048
//
//	[images]                       # required for docker and podman
//	core16 = "registry.local/snapcraft-builder:16.04"
//	core18 = "registry.local/snapcraft-builder:18.04"
//
// # State Layout
//
//	<state-root>/projects/<project>/<backend>/snap-registry.yaml
//	<state-root>/projects/<project>/<backend>/instance-id
//	<state-root>/logs/<instance>.events.jsonl
//
// Paths under the state root are built with filepath-securejoin.
package config
