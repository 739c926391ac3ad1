// Package logging carries snapbox's two output channels: slog records for
// the lifecycle and plain styled lines for the person running a build.
//
// Setup is called once from the root command. --verbose lowers the level to
// debug, which is where the provider reports each lifecycle step (reuse,
// launch, every command run in the instance) and the injector reports
// snaps it skipped.
// --json switches the handler so CI can parse the records. Attributes
// follow one vocabulary across packages: instance, backend, snap,
// revision, command, path.
//
//	log := logging.With("instance", p.InstanceName())
//	log.Debug("snap already injected", "snap", "core18", "revision", "200")
//
// The User* helpers are for the CLI only. Info and success lines go to
// Stdout, warnings and errors to Stderr; tests swap both writers.
package logging
