package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/migenius/wait-for-realityserver/internal/config"
	"github.com/migenius/wait-for-realityserver/internal/handshake"
	"github.com/migenius/wait-for-realityserver/internal/logging"
	"github.com/migenius/wait-for-realityserver/internal/prefs"
	"github.com/migenius/wait-for-realityserver/internal/realityserver"
	"github.com/migenius/wait-for-realityserver/internal/ui"
)

// Options configure a wait-for-rs run.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/wait-for-rs/prefs.toml
	Watch      bool
	Overrides  Overrides
	Stdout     io.Writer // nil uses os.Stdout
}

// Overrides carry command line values that win over the config file. A nil
// field leaves the configured value alone.
type Overrides struct {
	Host               *string
	Port               *int
	NumRetries         *int
	RetryInterval      *time.Duration
	RequestTimeout     *time.Duration
	MonitorFrequency   *time.Duration
	Secure             *bool
	InsecureSkipVerify *bool
	LogLevel           *string
	LogFile            *string
}

// Apply writes the set overrides into cfg.
func (o Overrides) Apply(cfg *config.Config) {
	if o.Host != nil {
		cfg.Host = *o.Host
	}
	if o.Port != nil {
		cfg.Port = *o.Port
	}
	if o.NumRetries != nil {
		cfg.NumRetries = *o.NumRetries
	}
	if o.RetryInterval != nil {
		cfg.RetryInterval = *o.RetryInterval
	}
	if o.RequestTimeout != nil {
		cfg.RequestTimeout = *o.RequestTimeout
	}
	if o.MonitorFrequency != nil {
		cfg.MonitorFrequency = *o.MonitorFrequency
	}
	if o.Secure != nil {
		cfg.Secure = *o.Secure
	}
	if o.InsecureSkipVerify != nil {
		cfg.InsecureSkipVerify = *o.InsecureSkipVerify
	}
	if o.LogLevel != nil {
		cfg.Log.Level = *o.LogLevel
	}
	if o.LogFile != nil {
		cfg.Log.File = *o.LogFile
	}
}

// Run waits for the configured RealityServer and, when monitoring is
// enabled, follows its connectivity until ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	opts.Overrides.Apply(&cfg)

	hsOpts := cfg.HandshakeOptions()
	if err := hsOpts.Validate(); err != nil {
		return err
	}

	closer, err := logging.Configure(logging.ProfileRuntime, logging.Options{
		Level: cfg.Log.Level,
		File:  cfg.LogPath(opts.Watch),
	})
	if err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}
	defer func() { _ = closer.Close() }()

	out := opts.Stdout
	if out == nil {
		out = os.Stdout
	}

	if opts.Watch {
		return runWatch(ctx, cfg, hsOpts, opts.PrefsPath)
	}

	result, err := handshake.Run(ctx, cfg.Host, cfg.Port, &hsOpts, logProgress)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, result.Version)

	if !result.Monitoring() {
		return nil
	}
	return followEvents(ctx, result.Monitor, out)
}

func runWatch(ctx context.Context, cfg config.Config, hsOpts handshake.Options, prefsPath string) error {
	userPrefs := prefs.Load(prefsPath)
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	target := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	if u, err := realityserver.ServerURL(cfg.Host, cfg.Port, cfg.Secure); err == nil {
		target = u
	}

	return ui.Run(ui.Options{
		Context:    ctx,
		Target:     target,
		NumRetries: hsOpts.NumRetries,
		Connect: func(ctx context.Context, progress handshake.ProgressFunc) (*handshake.Result, error) {
			return handshake.Run(ctx, cfg.Host, cfg.Port, &hsOpts, func(p handshake.Progress) {
				logProgress(p)
				progress(p)
			})
		},
		LogPath:   cfg.LogPath(true),
		ThemeName: userPrefs.Theme,
		ShowHelp:  userPrefs.ShowHelp,
		PrefsPath: prefsPath,
	})
}

func logProgress(p handshake.Progress) {
	log.Info().
		Int("remaining", p.RetriesRemaining).
		Int("retries", p.NumRetries).
		Dur("interval", p.RetryInterval).
		Msg("Waiting for RealityServer")
}
