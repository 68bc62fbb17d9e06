package tunnel

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/kfsoftware/ssh-ip-tunnel/pkg/config"
	"github.com/kfsoftware/ssh-ip-tunnel/pkg/process"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const stabilizeDelay = 500 * time.Millisecond

// Request is a single provisioning run against one device.
type Request struct {
	Host            string
	User            string
	Port            uint16
	KeyPath         string
	SkipKeyTransfer bool
}

type Manager struct {
	cfg   config.Config
	exec  process.Executor
	log   zerolog.Logger
	retry RetryPolicy
	sleep func(ctx context.Context, d time.Duration) error
}

type Option func(*Manager)

func WithLogger(logger zerolog.Logger) Option {
	return func(m *Manager) {
		m.log = logger
	}
}

func WithRetryPolicy(policy RetryPolicy) Option {
	return func(m *Manager) {
		m.retry = policy
	}
}

func NewManager(cfg config.Config, exec process.Executor, opts ...Option) *Manager {
	m := &Manager{
		cfg:   cfg,
		exec:  exec,
		log:   log.Logger,
		retry: RetryPolicy{MaxElapsed: cfg.TunnelTimeout()},
		sleep: sleepContext,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run creates the tunnel, validates it and the remote architecture, then
// deploys the key. The first failing step ends the run and its error is
// returned as is. The forward keeps running whatever the outcome.
func (m *Manager) Run(ctx context.Context, req Request) error {
	scoped := *m
	scoped.log = m.log.With().Str("run", uuid.New().String()).Logger()
	return scoped.run(ctx, req)
}

func (m *Manager) run(ctx context.Context, req Request) error {
	if err := m.CreateTunnel(ctx, req.Host, req.User, req.Port); err != nil {
		return err
	}
	if err := m.sleep(ctx, stabilizeDelay); err != nil {
		return err
	}
	if err := m.ValidateTunnel(ctx, req.User, req.Port); err != nil {
		return err
	}
	if err := m.ValidateARMArchitecture(ctx, req.User, req.Port); err != nil {
		return err
	}
	if !req.SkipKeyTransfer {
		if err := m.TransferKey(ctx, req.KeyPath, req.User, req.Port); err != nil {
			return err
		}
	}

	m.log.Info().Msgf("Tunnel established on localhost:%d", req.Port)
	if !req.SkipKeyTransfer {
		m.log.Info().Msg("SSH key deployment completed successfully!")
	}
	return nil
}
