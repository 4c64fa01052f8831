package main

import (
	"time"

	"github.com/urfave/cli/v2"

	"github.com/migenius/wait-for-realityserver/internal/app"
)

const (
	flagConfig         = "config"
	flagHost           = "host"
	flagPort           = "port"
	flagRetries        = "retries"
	flagRetryInterval  = "retry-interval"
	flagRequestTimeout = "request-timeout"
	flagMonitor        = "monitor"
	flagSecure         = "secure"
	flagInsecure       = "insecure"
	flagLogLevel       = "log-level"
	flagLogFile        = "log-file"
	flagWatch          = "watch"
	flagPrefs          = "prefs"
)

// newFlags returns fresh flag values; cli flags record whether they were set,
// so they are not shared between apps.
func newFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  flagConfig,
			Usage: "path to config file (default ~/.config/wait-for-rs/config.toml)",
		},
		&cli.StringFlag{
			Name:    flagHost,
			Usage:   "RealityServer host",
			EnvVars: []string{"WFRS_HOST"},
		},
		&cli.IntFlag{
			Name:    flagPort,
			Usage:   "RealityServer port",
			EnvVars: []string{"WFRS_PORT"},
		},
		&cli.IntFlag{
			Name:  flagRetries,
			Usage: "number of handshake attempts before giving up",
		},
		&cli.DurationFlag{
			Name:  flagRetryInterval,
			Usage: `wait between attempts { "500ms", "2s" }`,
		},
		&cli.DurationFlag{
			Name:  flagRequestTimeout,
			Usage: "timeout for each HTTP request",
		},
		&cli.DurationFlag{
			Name:  flagMonitor,
			Usage: "probe the server at this interval after the handshake (0 disables)",
		},
		&cli.BoolFlag{
			Name:  flagSecure,
			Usage: "use https",
		},
		&cli.BoolFlag{
			Name:  flagInsecure,
			Usage: "skip TLS certificate verification",
		},
		&cli.StringFlag{
			Name:  flagLogLevel,
			Usage: "trace, debug, info, warn, error or off",
		},
		&cli.StringFlag{
			Name:  flagLogFile,
			Usage: "write the log to this file instead of stderr",
		},
		&cli.BoolFlag{
			Name:  flagWatch,
			Usage: "show the interactive status view",
		},
		&cli.StringFlag{
			Name:  flagPrefs,
			Usage: "path to UI preferences (default ~/.config/wait-for-rs/prefs.toml)",
		},
	}
}

// parseOptions builds app options from the parsed flags. Only flags the user
// set become overrides.
func parseOptions(ctx *cli.Context) app.Options {
	return app.Options{
		ConfigPath: ctx.String(flagConfig),
		PrefsPath:  ctx.String(flagPrefs),
		Watch:      ctx.Bool(flagWatch),
		Overrides: app.Overrides{
			Host:               stringIfSet(ctx, flagHost),
			Port:               intIfSet(ctx, flagPort),
			NumRetries:         intIfSet(ctx, flagRetries),
			RetryInterval:      durationIfSet(ctx, flagRetryInterval),
			RequestTimeout:     durationIfSet(ctx, flagRequestTimeout),
			MonitorFrequency:   durationIfSet(ctx, flagMonitor),
			Secure:             boolIfSet(ctx, flagSecure),
			InsecureSkipVerify: boolIfSet(ctx, flagInsecure),
			LogLevel:           stringIfSet(ctx, flagLogLevel),
			LogFile:            stringIfSet(ctx, flagLogFile),
		},
	}
}

func stringIfSet(ctx *cli.Context, name string) *string {
	if !ctx.IsSet(name) {
		return nil
	}
	v := ctx.String(name)
	return &v
}

func intIfSet(ctx *cli.Context, name string) *int {
	if !ctx.IsSet(name) {
		return nil
	}
	v := ctx.Int(name)
	return &v
}

func durationIfSet(ctx *cli.Context, name string) *time.Duration {
	if !ctx.IsSet(name) {
		return nil
	}
	v := ctx.Duration(name)
	return &v
}

func boolIfSet(ctx *cli.Context, name string) *bool {
	if !ctx.IsSet(name) {
		return nil
	}
	v := ctx.Bool(name)
	return &v
}
