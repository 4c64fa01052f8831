package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Host != defaultHost || cfg.Port != defaultPort {
		t.Fatalf("target = %s:%d, want %s:%d", cfg.Host, cfg.Port, defaultHost, defaultPort)
	}
	if cfg.NumRetries != 10 || cfg.RetryInterval != time.Second || cfg.RequestTimeout != 2500*time.Millisecond {
		t.Fatalf("retry options = %d/%v/%v, want 10/1s/2.5s", cfg.NumRetries, cfg.RetryInterval, cfg.RequestTimeout)
	}
	if cfg.MonitorFrequency != 0 {
		t.Fatalf("MonitorFrequency = %v, want 0", cfg.MonitorFrequency)
	}
	if cfg.Log.Level != defaultLogLevel {
		t.Fatalf("Log.Level = %q, want %q", cfg.Log.Level, defaultLogLevel)
	}
}

func TestLoad_DefaultPathUsesHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".config", "wait-for-rs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(`host = "render01"`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Host != "render01" {
		t.Fatalf("Host = %q, want render01", cfg.Host)
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := writeConfig(t, `
host = "  10.0.0.5  "
port = 9999
num_retries = 3
retry_interval_ms = 250
request_timeout_ms = 800
monitor_frequency_ms = 500
secure = true
insecure_skip_verify = true

[log]
level = " DEBUG "
file = "  ~/logs/wait.log  "
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Host != "10.0.0.5" || cfg.Port != 9999 {
		t.Fatalf("target = %s:%d, want 10.0.0.5:9999", cfg.Host, cfg.Port)
	}
	opts := cfg.HandshakeOptions()
	if opts.NumRetries != 3 || opts.RetryInterval != 250*time.Millisecond || opts.RequestTimeout != 800*time.Millisecond {
		t.Fatalf("HandshakeOptions = %#v, want 3/250ms/800ms", opts)
	}
	if opts.MonitorFrequency != 500*time.Millisecond || !opts.Secure || !opts.InsecureSkipVerify {
		t.Fatalf("HandshakeOptions = %#v, want monitor 500ms secure insecure", opts)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("Log.Level = %q, want debug", cfg.Log.Level)
	}
	if cfg.Log.File != filepath.Join(home, "logs", "wait.log") {
		t.Fatalf("Log.File = %q, want it expanded under HOME", cfg.Log.File)
	}
}

func TestLoad_ExplicitZeroIsKept(t *testing.T) {
	path := writeConfig(t, `
num_retries = 0
retry_interval_ms = 0
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.NumRetries != 0 || cfg.RetryInterval != 0 {
		t.Fatalf("explicit zeros replaced: %d/%v", cfg.NumRetries, cfg.RetryInterval)
	}
	if err := cfg.HandshakeOptions().Validate(); err == nil {
		t.Fatalf("Validate returned nil error for num_retries = 0")
	}
}

func TestLoad_EmptyValuesUseDefaults(t *testing.T) {
	path := writeConfig(t, `
host = "   "

[log]
level = ""
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Host != defaultHost {
		t.Fatalf("Host = %q, want %q", cfg.Host, defaultHost)
	}
	if cfg.Log.Level != defaultLogLevel {
		t.Fatalf("Log.Level = %q, want %q", cfg.Log.Level, defaultLogLevel)
	}
}

func TestLoad_InvalidTOMLFails(t *testing.T) {
	path := writeConfig(t, `host = [`)
	_, err := Load(path)
	if err == nil {
		t.Fatalf("Load returned nil error, want parse error")
	}
	if !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("Load error = %q, want it to mention parse config", err.Error())
	}
}

func TestLogPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	var cfg Config
	if got := cfg.LogPath(false); got != "" {
		t.Fatalf("LogPath(false) = %q, want empty for stderr", got)
	}
	got := cfg.LogPath(true)
	if !strings.HasPrefix(got, home) || !strings.HasSuffix(got, filepath.FromSlash("/wait-for-rs.log")) {
		t.Fatalf("LogPath(true) = %q, want default file under HOME", got)
	}

	cfg.Log.File = "/var/log/wait.log"
	if got := cfg.LogPath(true); got != "/var/log/wait.log" {
		t.Fatalf("LogPath = %q, want configured file", got)
	}
}

func TestExpandPath_ExpandsTildeAndReturnsAbs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := expandPath("~/a/b")
	if err != nil {
		t.Fatalf("expandPath returned error: %v", err)
	}
	want := filepath.Join(home, "a/b")
	if got != want {
		t.Fatalf("expandPath = %q, want %q", got, want)
	}
}

func TestExpandPath_EmptyErrors(t *testing.T) {
	if _, err := expandPath("   "); err == nil {
		t.Fatalf("expandPath returned nil error, want error")
	}
}
