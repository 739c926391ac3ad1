// Package integration provides a test harness for integration tests
// that require a real backend.
//
// Integration tests are skipped unless SNAPBOX_INTEGRATION_TESTS=1 is set.
// They require one of:
//   - multipass, with permission to launch VMs from the snapcraft: remote
//   - docker or podman, able to run privileged containers, with
//     SNAPBOX_IMAGE naming an image that ships snapd and snapcraft
//
// SNAPBOX_BACKEND picks one explicitly; otherwise the backend is detected.
// Workflow tests inject the host's own core, snapcraft and core18 snaps and
// are skipped when the host does not have them.
//
// # Test Harness
//
//	func TestMyIntegration(t *testing.T) {
//	    h := integration.NewHarness(t) // Skips if disabled
//
//	    name := h.InstanceName("demo") // Destroyed by t.Cleanup
//	    err := h.Backend().Launch(ctx, name, backend.LaunchOptions{Base: "core18"})
//	    ...
//	}
//
// # Running Integration Tests
//
//	SNAPBOX_INTEGRATION_TESTS=1 SNAPBOX_BACKEND=multipass go test -v ./internal/integration/...
package integration
