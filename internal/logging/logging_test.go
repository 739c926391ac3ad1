package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

// captureLogs points the global logger at a buffer for the rest of the test
func captureLogs(t *testing.T, verbose, jsonOutput bool) *bytes.Buffer {
	t.Helper()
	origLogger, origVerbose := Logger, Verbose
	t.Cleanup(func() { Logger, Verbose = origLogger, origVerbose })

	var buf bytes.Buffer
	Setup(verbose, jsonOutput, &buf)
	return &buf
}

func TestLevels(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		log     func(msg string, args ...any)
		want    bool
	}{
		{"debug hidden", false, Debug, false},
		{"debug verbose", true, Debug, true},
		{"info", false, Info, true},
		{"warn", false, Warn, true},
		{"error", false, Error, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureLogs(t, tt.verbose, false)

			tt.log("reusing instance", "instance", "snapcraft-hello-amd64")

			got := strings.Contains(buf.String(), "reusing instance")
			if got != tt.want {
				t.Errorf("logged = %v, want %v (output: %q)", got, tt.want, buf.String())
			}
		})
	}
}

func TestSetup_Verbose(t *testing.T) {
	captureLogs(t, true, false)
	if !Verbose {
		t.Error("Verbose should be true after Setup(true, ...)")
	}

	captureLogs(t, false, false)
	if Verbose {
		t.Error("Verbose should be false after Setup(false, ...)")
	}
}

func TestSetup_TextAttributes(t *testing.T) {
	buf := captureLogs(t, false, false)

	Info("retrieved artifact", "path", "/src/hello/hello_1.0_amd64.snap")

	out := buf.String()
	if !strings.Contains(out, "path=/src/hello/hello_1.0_amd64.snap") {
		t.Errorf("text output should carry key=value attributes, got: %s", out)
	}
}

func TestSetup_JSONAttributes(t *testing.T) {
	buf := captureLogs(t, true, true)

	Debug("instance not found, launching", "instance", "snapcraft-hello-amd64", "backend", "multipass")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not one JSON object: %v (%q)", err, buf.String())
	}
	want := map[string]string{
		"level":    "DEBUG",
		"msg":      "instance not found, launching",
		"instance": "snapcraft-hello-amd64",
		"backend":  "multipass",
	}
	for k, v := range want {
		if entry[k] != v {
			t.Errorf("%s = %v, want %q", k, entry[k], v)
		}
	}
}

func TestWith_InjectorAttributes(t *testing.T) {
	buf := captureLogs(t, false, false)

	logger := With("instance", "snapcraft-hello-amd64")
	logger.Info("injecting snap", "snap", "core18", "revision", "200")
	logger.Warn("failed to unmount", "target", "/var/cache/snapcraft/snaps")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %q", len(lines), buf.String())
	}
	for _, line := range lines {
		if !strings.Contains(line, "instance=snapcraft-hello-amd64") {
			t.Errorf("line missing the bound instance: %s", line)
		}
	}
	if !strings.Contains(lines[0], "snap=core18") || !strings.Contains(lines[0], "revision=200") {
		t.Errorf("first line = %s", lines[0])
	}
}

func TestSetup_NilWriter(t *testing.T) {
	captureLogs(t, false, false)
	Setup(false, false, nil)

	if Logger == nil {
		t.Error("Logger should not be nil after Setup with nil writer")
	}
}

func TestUserOutput_Destinations(t *testing.T) {
	var out, errOut bytes.Buffer
	origOut, origErr := Stdout, Stderr
	Stdout, Stderr = &out, &errOut
	defer func() { Stdout, Stderr = origOut, origErr }()

	UserInfo("launching %s", "snapcraft-hello-amd64")
	UserSuccess("built %s", "hello_1.0_amd64.snap")
	UserWarning("keeping %s", "snapcraft-hello-amd64")
	UserError("failed: %v", "boom")

	stdout := out.String()
	stderr := errOut.String()

	for _, want := range []string{"ℹ", "launching snapcraft-hello-amd64", "✓", "built hello_1.0_amd64.snap"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("stdout missing %q, got: %s", want, stdout)
		}
	}
	for _, want := range []string{"⚠", "keeping snapcraft-hello-amd64", "✗", "failed: boom"} {
		if !strings.Contains(stderr, want) {
			t.Errorf("stderr missing %q, got: %s", want, stderr)
		}
	}
	if strings.Contains(stdout, "failed") {
		t.Errorf("errors should not go to stdout, got: %s", stdout)
	}
}
