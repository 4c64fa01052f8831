package handshake

import (
	"fmt"
	"strings"
	"time"
)

const (
	DefaultNumRetries     = 10
	DefaultRetryInterval  = 1000 * time.Millisecond
	DefaultRequestTimeout = 2500 * time.Millisecond
)

// Options tune the handshake and the optional monitor.
type Options struct {
	// NumRetries is the total number of handshake attempts.
	NumRetries     int
	RetryInterval  time.Duration
	RequestTimeout time.Duration
	// MonitorFrequency enables the connectivity monitor when positive.
	MonitorFrequency   time.Duration
	Secure             bool
	InsecureSkipVerify bool
}

// DefaultOptions returns the options used when none are supplied.
func DefaultOptions() Options {
	return Options{
		NumRetries:     DefaultNumRetries,
		RetryInterval:  DefaultRetryInterval,
		RequestTimeout: DefaultRequestTimeout,
	}
}

// OptionError reports an option that failed validation.
type OptionError struct {
	Option string
	Value  any
}

func (e *OptionError) Error() string {
	return fmt.Sprintf("invalid value for option %q: %v", e.Option, e.Value)
}

// Validate checks every option and returns the first violation.
func (o Options) Validate() error {
	switch {
	case o.NumRetries <= 0:
		return &OptionError{Option: "numRetries", Value: o.NumRetries}
	case o.RetryInterval <= 0:
		return &OptionError{Option: "retryInterval", Value: o.RetryInterval}
	case o.RequestTimeout <= 0:
		return &OptionError{Option: "requestTimeout", Value: o.RequestTimeout}
	case o.MonitorFrequency < 0:
		return &OptionError{Option: "monitorFrequency", Value: o.MonitorFrequency}
	}
	return nil
}

func validateTarget(host string, port int) error {
	if strings.TrimSpace(host) == "" {
		return &OptionError{Option: "host", Value: host}
	}
	if port <= 0 || port > 65535 {
		return &OptionError{Option: "port", Value: port}
	}
	return nil
}

// resolve applies defaults for a nil opts and validates everything.
func resolve(host string, port int, opts *Options) (Options, error) {
	resolved := DefaultOptions()
	if opts != nil {
		resolved = *opts
	}
	if err := validateTarget(host, port); err != nil {
		return Options{}, err
	}
	if err := resolved.Validate(); err != nil {
		return Options{}, err
	}
	return resolved, nil
}
