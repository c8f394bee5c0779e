package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-client/internal/config"
	"github.com/vovakirdan/wirechat-client/internal/credential"
	"github.com/vovakirdan/wirechat-client/internal/session"
	"github.com/vovakirdan/wirechat-client/internal/view"
)

// Options configure the client application.
type Options struct {
	Config config.Config
	// Credentials supplied on the command line. They are stored before every
	// session, so they survive the clear that follows a disconnect.
	Credentials credential.Credentials
	// Source overrides the credential source. When nil the SQLite store at
	// Config.CredentialsPath is used and missing values are asked for.
	Source credential.Source

	In      io.Reader
	Out     io.Writer
	NoColor bool
}

// App wires together credentials, sessions and the terminal view.
type App struct {
	cfg    config.Config
	preset credential.Credentials
	source credential.Source
	store  io.Closer
	term   *view.Terminal
	log    *zerolog.Logger
}

// New constructs the application with provided options.
func New(opts Options, logger *zerolog.Logger) (*App, error) {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	in, out := opts.In, opts.Out
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}

	a := &App{
		cfg:    opts.Config,
		preset: opts.Credentials,
		source: opts.Source,
		term:   view.NewTerminal(in, out, opts.NoColor),
		log:    logger,
	}

	if a.source == nil {
		st, err := credential.OpenSQLite(opts.Config.CredentialsPath)
		if err != nil {
			return nil, fmt.Errorf("init credential store: %w", err)
		}
		logger.Debug().Str("path", opts.Config.CredentialsPath).Msg("credential store opened")
		a.store = st
		a.source = credential.NewPrompt(st, a.term)
	}
	return a, nil
}

// Run runs sessions until the user leaves, ctx is cancelled, or the
// connection is lost with reconnect disabled or exhausted. The error that
// ended the last session is returned; leaving is not an error.
func (a *App) Run(ctx context.Context) error {
	rc := a.cfg.Reconnect
	tries := uint(1)
	if rc.Enabled && rc.MaxAttempts > 0 {
		tries += uint(rc.MaxAttempts)
	}

	policy := backoff.NewExponentialBackOff()
	if rc.InitialInterval > 0 {
		policy.InitialInterval = rc.InitialInterval
	}
	if rc.MaxInterval > 0 {
		policy.MaxInterval = rc.MaxInterval
	}

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, a.runSession(ctx)
	},
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(tries),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, next time.Duration) {
			a.log.Warn().Err(err).Dur("retry_in", next).Msg("connection lost, reconnecting")
		}),
	)

	var perm *backoff.PermanentError
	if errors.As(err, &perm) {
		err = perm.Err
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// runSession runs one session to its end. Only a lost connection is worth
// another attempt; everything else is returned as permanent.
func (a *App) runSession(ctx context.Context) error {
	if !a.preset.Empty() {
		if err := a.source.Set(ctx, a.preset); err != nil {
			return backoff.Permanent(fmt.Errorf("store credentials: %w", err))
		}
	}

	s, err := session.New(ctx, a.source, session.Options{
		Server: a.cfg.Server,
		Secure: a.cfg.Secure,
	}, a.log)
	if err != nil {
		return backoff.Permanent(err)
	}

	a.log.Info().Str("session_id", s.ID()).Str("server", a.cfg.Server).Msg("connecting")
	if err := s.Start(ctx); err != nil {
		a.log.Warn().Err(err).Str("session_id", s.ID()).Msg("connect failed")
	}

	if err := a.term.Run(ctx, s); err != nil {
		_ = s.Close()
		return backoff.Permanent(err)
	}
	<-s.Done()

	if ctx.Err() != nil {
		return backoff.Permanent(ctx.Err())
	}
	return s.Err()
}

// Close releases the credential store.
func (a *App) Close() error {
	if a.store == nil {
		return nil
	}
	if err := a.store.Close(); err != nil {
		a.log.Warn().Err(err).Msg("failed to close credential store")
		return err
	}
	a.log.Debug().Msg("credential store closed")
	return nil
}
