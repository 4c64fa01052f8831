package handshake

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/migenius/wait-for-realityserver/internal/monitor"
	"github.com/migenius/wait-for-realityserver/internal/realityserver"
)

// ErrRetryLimit is returned once every attempt has failed.
var ErrRetryLimit = errors.New("retry limit reached, RealityServer not available")

// client is what one handshake invocation talks to.
type client interface {
	realityserver.Session
	realityserver.Prober
}

// attemptState is the retry budget of one invocation. It is a value: each
// failed attempt produces the next state.
type attemptState struct {
	numRetries int
	remaining  int
}

func newAttemptState(numRetries int) attemptState {
	return attemptState{numRetries: numRetries, remaining: numRetries}
}

func (s attemptState) failed() attemptState {
	s.remaining--
	return s
}

func (s attemptState) exhausted() bool {
	return s.remaining <= 0
}

// attempt is the 1-based number of the attempt about to run.
func (s attemptState) attempt() int {
	return s.numRetries - s.remaining + 1
}

func (s attemptState) progress(interval time.Duration) Progress {
	return Progress{
		NumRetries:       s.numRetries,
		RetriesRemaining: s.remaining,
		RetryInterval:    interval,
	}
}

// Run performs the handshake against host:port and blocks until it succeeds,
// the retry budget is spent, or ctx ends. A nil opts uses DefaultOptions.
// Option errors are returned before any request is made.
func Run(ctx context.Context, host string, port int, opts *Options, progress ProgressFunc) (*Result, error) {
	inv, err := prepare(host, port, opts)
	if err != nil {
		return nil, err
	}
	return inv.run(ctx, progress)
}

type invocation struct {
	client client
	opts   Options
	logger zerolog.Logger
}

func prepare(host string, port int, opts *Options) (*invocation, error) {
	resolved, err := resolve(host, port, opts)
	if err != nil {
		return nil, err
	}
	c, err := realityserver.NewClient(realityserver.ClientOptions{
		Host:               host,
		Port:               port,
		Secure:             resolved.Secure,
		InsecureSkipVerify: resolved.InsecureSkipVerify,
		RequestTimeout:     resolved.RequestTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("init realityserver client: %w", err)
	}
	return newInvocation(c, resolved, c.BaseURL()), nil
}

func newInvocation(c client, opts Options, server string) *invocation {
	return &invocation{
		client: c,
		opts:   opts,
		logger: log.With().
			Str("conn", uuid.NewString()).
			Str("server", server).
			Logger(),
	}
}

func (inv *invocation) run(ctx context.Context, progress ProgressFunc) (*Result, error) {
	opts := inv.opts
	state := newAttemptState(opts.NumRetries)

	var version string
	operation := func() error {
		attemptNo := state.attempt()
		v, step, err := inv.attempt(ctx)
		if err == nil {
			version = v
			inv.logger.Info().Str("version", v).Int("attempt", attemptNo).Msg("RealityServer available")
			return nil
		}
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}

		state = state.failed()
		inv.logger.Debug().
			Err(err).
			Str("step", step).
			Int("attempt", attemptNo).
			Int("remaining", state.remaining).
			Msg("Handshake attempt failed")
		if progress != nil {
			progress(state.progress(opts.RetryInterval))
		}
		if state.exhausted() {
			inv.logger.Warn().Int("attempts", opts.NumRetries).Msg("Retry limit reached")
			return backoff.Permanent(ErrRetryLimit)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		inv.logger.Trace().Dur("wait", wait).Msg("Retrying handshake")
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(opts.RetryInterval), uint64(opts.NumRetries-1)),
		ctx,
	)
	err := backoff.RetryNotify(operation, policy, notify)
	switch {
	case err == nil:
		return inv.succeed(version)
	case errors.Is(err, ErrRetryLimit):
		return nil, ErrRetryLimit
	case ctx.Err() != nil:
		return nil, fmt.Errorf("handshake cancelled: %w", ctx.Err())
	default:
		return nil, ErrRetryLimit
	}
}

// attempt runs one full handshake. Each step starts only after the previous
// one succeeded; the failing step is named for logging.
func (inv *invocation) attempt(ctx context.Context) (version, step string, err error) {
	if err := inv.client.CreateSession(ctx); err != nil {
		return "", "create session", err
	}
	version, err = inv.client.Version(ctx)
	if err != nil {
		return "", "get version", err
	}
	if err := inv.client.DestroySession(ctx); err != nil {
		return "", "destroy session", err
	}
	return version, "", nil
}

func (inv *invocation) succeed(version string) (*Result, error) {
	result := &Result{Version: version}
	if inv.opts.MonitorFrequency <= 0 {
		return result, nil
	}
	mon, err := monitor.New(inv.client, monitor.Options{
		Frequency:      inv.opts.MonitorFrequency,
		RequestTimeout: inv.opts.RequestTimeout,
		Version:        version,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("init monitor: %w", err)
	}
	result.Monitor = mon
	return result, nil
}
