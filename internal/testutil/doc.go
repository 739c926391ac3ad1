// Package testutil provides test fixtures and utilities.
//
// # Fixtures
//
// Fixtures are embedded using go:embed:
//
//	fixtures/host_config.toml
//	fixtures/invalid_host_config.toml
//	fixtures/snapcraft_strict.yaml
//	fixtures/snapcraft_classic.yaml
//	fixtures/snapcraft_invalid.yaml
//
// Helpers parse them into typed objects:
//
//	cfg, err := testutil.ValidHostConfig()
//	proj, err := testutil.ClassicProject()
//
// # Test Environment
//
// NewTestEnv builds an app.App backed by a backend.MockBackend and an
// in-memory snap inventory holding core, snapcraft, core16 and core18,
// with all state under t.TempDir(). It installs the app as app.Default
// and restores the previous default when the test ends.
//
//	env := testutil.NewTestEnv(t)
//	dir := env.WriteProject("hello", "core18", "classic")
//	// run a command, then inspect env.Backend.CallLog
//	reg := env.Registry("hello")
package testutil
