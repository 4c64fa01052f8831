package logging

import (
	"fmt"
	"io"
	stdlog "log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	EnvLogLevel   = "WFRS_LOG_LEVEL"
	EnvLogNoColor = "WFRS_LOG_NOCOLOR"
)

type Profile int

const (
	ProfileRuntime Profile = iota
	ProfileTest
)

// Config selects what the global logger writes and where.
type Config struct {
	Level     zerolog.Level
	Timestamp bool
	NoColor   bool
	// File receives the log instead of stderr when set.
	File string
}

// Options are the user supplied settings layered over a profile.
type Options struct {
	Level string
	File  string
}

// Configure installs the global logger for profile. The returned closer
// releases the log file, if one was opened.
func Configure(profile Profile, opts Options) (io.Closer, error) {
	cfg := defaultConfig(profile)
	if lvl, ok := parseLevel(opts.Level); ok {
		cfg.Level = lvl
	} else if strings.TrimSpace(opts.Level) != "" {
		return nil, fmt.Errorf("unknown log level %q", opts.Level)
	}
	cfg.File = strings.TrimSpace(opts.File)
	applyEnvOverrides(&cfg)

	out, closer, err := openOutput(cfg)
	if err != nil {
		return nil, err
	}
	logger := newLogger(out, cfg)
	setGlobalLogger(logger)
	return closer, nil
}

func ConfigureTests() {
	cfg := defaultConfig(ProfileTest)
	applyEnvOverrides(&cfg)
	setGlobalLogger(newLogger(os.Stderr, cfg))
}

func defaultConfig(profile Profile) Config {
	switch profile {
	case ProfileTest:
		return Config{Level: zerolog.DebugLevel, Timestamp: false}
	default:
		return Config{Level: zerolog.InfoLevel, Timestamp: true}
	}
}

func applyEnvOverrides(cfg *Config) {
	if lvl, ok := parseLevel(os.Getenv(EnvLogLevel)); ok {
		cfg.Level = lvl
	}
	if v, ok := parseBool(os.Getenv(EnvLogNoColor)); ok {
		cfg.NoColor = v
	}
}

func openOutput(cfg Config) (io.Writer, io.Closer, error) {
	if cfg.File == "" {
		return os.Stderr, nopCloser{}, nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	file, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return file, file, nil
}

func newLogger(out io.Writer, cfg Config) zerolog.Logger {
	writer := zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    cfg.NoColor || cfg.File != "",
		TimeFormat: time.RFC3339,
	}
	if !cfg.Timestamp {
		writer.PartsExclude = []string{zerolog.TimestampFieldName}
	}
	ctx := zerolog.New(writer).Level(cfg.Level).With()
	if cfg.Timestamp {
		ctx = ctx.Timestamp()
	}
	return ctx.Logger()
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func setGlobalLogger(logger zerolog.Logger) {
	log.Logger = logger
	stdlog.SetFlags(0)
	stdlog.SetOutput(log.Logger)
}

func parseLevel(raw string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return zerolog.InfoLevel, false
	case "trace":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "disabled", "disable", "off", "none":
		return zerolog.Disabled, true
	default:
		return zerolog.InfoLevel, false
	}
}

func parseBool(raw string) (bool, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
