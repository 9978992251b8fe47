package cli

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"catalogdebug/internal/flags"
)

func withoutEnv(key string) []string {
	out := make([]string, 0, len(os.Environ()))
	prefix := key + "="
	for _, e := range os.Environ() {
		if strings.HasPrefix(e, prefix) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func repoRoot(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	// internal/cli -> repo root
	return filepath.Clean(filepath.Join(wd, "..", ".."))
}

func goExe() string {
	if runtime.GOOS == "windows" {
		return "go.exe"
	}
	return "go"
}

func buildBinary(t *testing.T) string {
	t.Helper()

	outPath := filepath.Join(t.TempDir(), "catalogdebug-test")
	if runtime.GOOS == "windows" {
		outPath += ".exe"
	}

	cmd := exec.Command(goExe(), "build", "-o", outPath, "./cmd/catalogdebug")
	cmd.Dir = repoRoot(t)
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("failed to build catalogdebug binary: %v; output=%s", err, string(out))
	}

	return outPath
}

func TestStart_ExitCode1_WhenConfigMissing(t *testing.T) {
	binary := buildBinary(t)
	cmd := exec.Command(binary, "start", "--"+flags.FlagConfig, filepath.Join(t.TempDir(), "missing.yaml"))

	out, err := cmd.CombinedOutput()
	if err == nil {
		t.Fatalf("expected non-zero exit; output=%s", string(out))
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected ExitError, got %T: %v; output=%s", err, err, string(out))
	}
	if code := exitErr.ProcessState.ExitCode(); code != 1 {
		t.Fatalf("expected exit code 1, got %d; output=%s", code, string(out))
	}
	if !strings.Contains(string(out), "missing.yaml") {
		t.Fatalf("expected error to name the config file; output=%s", string(out))
	}
}

func TestStart_ExitCode1_WhenLogFormatInvalid(t *testing.T) {
	binary := buildBinary(t)
	cmd := exec.Command(binary, "start", "--"+flags.FlagLogFormat, "xml")

	out, err := cmd.CombinedOutput()
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected ExitError, got %T: %v; output=%s", err, err, string(out))
	}
	if code := exitErr.ProcessState.ExitCode(); code != 1 {
		t.Fatalf("expected exit code 1, got %d; output=%s", code, string(out))
	}
	if !strings.Contains(string(out), "unsupported --log-format") {
		t.Fatalf("expected validation message; output=%s", string(out))
	}
}

func TestStart_WarnsWhenGitHubTokenMissing(t *testing.T) {
	binary := buildBinary(t)
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "app-config.yaml")
	if err := os.WriteFile(cfgPath, []byte("catalog:\n  locations:\n    - type: url\n      target: https://github.com/acme/x\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cmd := exec.Command(binary, "start", "--"+flags.FlagConfig, cfgPath, "--"+flags.FlagEnvFile, filepath.Join(dir, "none.env"))
	cmd.Env = withoutEnv("GITHUB_TOKEN")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		t.Fatalf("expected zero exit; err=%v; stderr=%s", err, stderr.String())
	}
	if !strings.Contains(stderr.String(), "GITHUB_TOKEN not set") {
		t.Fatalf("expected token warning on stderr; stderr=%s", stderr.String())
	}
}

func TestVersion_PrintsBuildInfo(t *testing.T) {
	binary := buildBinary(t)
	out, err := exec.Command(binary, "version").CombinedOutput()
	if err != nil {
		t.Fatalf("expected zero exit; err=%v; output=%s", err, string(out))
	}
	if !strings.HasPrefix(string(out), "catalogdebug dev\n") {
		t.Fatalf("unexpected version output: %s", string(out))
	}
}
