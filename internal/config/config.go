package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/migenius/wait-for-realityserver/internal/handshake"
)

// Config captures everything wait-for-rs reads from its config file.
type Config struct {
	Host               string
	Port               int
	NumRetries         int
	RetryInterval      time.Duration
	RequestTimeout     time.Duration
	MonitorFrequency   time.Duration
	Secure             bool
	InsecureSkipVerify bool
	Log                LogConfig
}

// LogConfig selects log verbosity and destination.
type LogConfig struct {
	Level string
	File  string
}

const (
	defaultConfigPath = "~/.config/wait-for-rs/config.toml"
	defaultLogDir     = "~/.local/state/wait-for-rs"
	defaultHost       = "127.0.0.1"
	defaultPort       = 8080
	defaultLogLevel   = "info"
)

type rawConfig struct {
	Host               string `toml:"host"`
	Port               *int   `toml:"port"`
	NumRetries         *int   `toml:"num_retries"`
	RetryIntervalMS    *int64 `toml:"retry_interval_ms"`
	RequestTimeoutMS   *int64 `toml:"request_timeout_ms"`
	MonitorFrequencyMS *int64 `toml:"monitor_frequency_ms"`
	Secure             bool   `toml:"secure"`
	InsecureSkipVerify bool   `toml:"insecure_skip_verify"`
	Log                struct {
		Level string `toml:"level"`
		File  string `toml:"file"`
	} `toml:"log"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	opts := handshake.DefaultOptions()
	return Config{
		Host:             defaultHost,
		Port:             defaultPort,
		NumRetries:       opts.NumRetries,
		RetryInterval:    opts.RetryInterval,
		RequestTimeout:   opts.RequestTimeout,
		MonitorFrequency: opts.MonitorFrequency,
		Log:              LogConfig{Level: defaultLogLevel},
	}
}

// Load locates and parses the config, falling back to defaults when missing.
// Keys that are absent keep their defaults; keys that are present are kept
// as written, so an explicit zero still fails validation later.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw rawConfig
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if host := strings.TrimSpace(raw.Host); host != "" {
		cfg.Host = host
	}
	if raw.Port != nil {
		cfg.Port = *raw.Port
	}
	if raw.NumRetries != nil {
		cfg.NumRetries = *raw.NumRetries
	}
	if raw.RetryIntervalMS != nil {
		cfg.RetryInterval = millis(*raw.RetryIntervalMS)
	}
	if raw.RequestTimeoutMS != nil {
		cfg.RequestTimeout = millis(*raw.RequestTimeoutMS)
	}
	if raw.MonitorFrequencyMS != nil {
		cfg.MonitorFrequency = millis(*raw.MonitorFrequencyMS)
	}
	cfg.Secure = raw.Secure
	cfg.InsecureSkipVerify = raw.InsecureSkipVerify

	if level := strings.TrimSpace(raw.Log.Level); level != "" {
		cfg.Log.Level = strings.ToLower(level)
	}
	if logFile := strings.TrimSpace(raw.Log.File); logFile != "" {
		cfg.Log.File = mustExpand(logFile)
	}

	return cfg, nil
}

// HandshakeOptions converts the config into handshake options.
func (c Config) HandshakeOptions() handshake.Options {
	return handshake.Options{
		NumRetries:         c.NumRetries,
		RetryInterval:      c.RetryInterval,
		RequestTimeout:     c.RequestTimeout,
		MonitorFrequency:   c.MonitorFrequency,
		Secure:             c.Secure,
		InsecureSkipVerify: c.InsecureSkipVerify,
	}
}

// LogPath returns the configured log file, or the default file when fallback
// is set and none is configured. An empty result means stderr.
func (c Config) LogPath(fallback bool) string {
	if strings.TrimSpace(c.Log.File) != "" {
		return c.Log.File
	}
	if !fallback {
		return ""
	}
	return mustExpand(defaultLogDir + "/wait-for-rs.log")
}

func millis(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
