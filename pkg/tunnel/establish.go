package tunnel

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/kfsoftware/ssh-ip-tunnel/pkg/process"
	"github.com/pkg/errors"
)

type outcome int

const (
	outcomeSuccess outcome = iota
	outcomeTransient
	outcomePermanent
)

type attemptResult struct {
	outcome outcome
	msg     string
}

// RetryPolicy bounds the exponential backoff used while creating the tunnel.
type RetryPolicy struct {
	InitialInterval time.Duration
	MaxElapsed      time.Duration
}

// classifyForward decides whether a forward attempt is worth repeating. A
// remote rejection may clear up; a missing ssh binary will not.
func classifyForward(res process.Result, err error) attemptResult {
	if process.IsTimeout(err) {
		return attemptResult{outcome: outcomeTransient, msg: "Timed out waiting for SSH to connect"}
	}
	if err != nil {
		return attemptResult{outcome: outcomePermanent, msg: fmt.Sprintf("Failed to execute SSH: %v", err)}
	}
	if !res.Success {
		return attemptResult{outcome: outcomeTransient, msg: res.Stderr}
	}
	return attemptResult{outcome: outcomeSuccess}
}

// retry runs attempt until it succeeds, fails permanently or the policy's
// elapsed time budget would be exceeded by the next wait. The returned error
// carries the last attempt's message.
func retry(ctx context.Context, policy RetryPolicy, attempt func() attemptResult, notify func(msg string, wait time.Duration)) error {
	b := backoff.NewExponentialBackOff()
	if policy.InitialInterval > 0 {
		b.InitialInterval = policy.InitialInterval
	}
	b.MaxElapsedTime = policy.MaxElapsed
	b.Reset()

	op := func() error {
		r := attempt()
		switch r.outcome {
		case outcomeSuccess:
			return nil
		case outcomePermanent:
			return backoff.Permanent(errors.New(r.msg))
		default:
			return errors.New(r.msg)
		}
	}
	return backoff.RetryNotify(op, backoff.WithContext(b, ctx), func(err error, wait time.Duration) {
		if notify != nil {
			notify(err.Error(), wait)
		}
	})
}

// CreateTunnel starts the background forward from localhost:<port> to
// port 22 on host. Only the launcher's exit status is checked; the
// connectivity check confirms the forward actually works.
func (m *Manager) CreateTunnel(ctx context.Context, host, user string, port uint16) error {
	m.log.Info().Msgf("Creating SSH tunnel to %s@%s...", user, host)
	args := ForwardArgs(user, host, port)
	m.log.Debug().Msgf("Running SSH with args: %q", args)
	m.log.Debug().Msgf("Retrying for up to %v (max_retries=%d is informational)", m.retry.MaxElapsed, m.cfg.MaxRetries)

	// A hung attempt may only use what is left of the budget.
	start := time.Now()
	last := attemptResult{outcome: outcomeTransient, msg: "Tunnel creation budget exhausted"}
	attempt := func() attemptResult {
		var timeout time.Duration
		if m.retry.MaxElapsed > 0 {
			timeout = m.retry.MaxElapsed - time.Since(start)
			if timeout <= 0 {
				return last
			}
		}
		res, err := m.exec.Run(ctx, sshBinary, args, timeout)
		last = classifyForward(res, err)
		return last
	}
	err := retry(ctx, m.retry, attempt, func(msg string, wait time.Duration) {
		m.log.Warn().Msgf("SSH tunnel creation attempt failed: %s (retrying in %v)", msg, wait)
	})
	if err != nil {
		return newError(KindTunnelCreation, "%s", err.Error())
	}
	m.log.Info().Msg("SSH tunnel created successfully")
	return nil
}
