package tunnel

import (
	"context"
	"time"

	"github.com/kfsoftware/ssh-ip-tunnel/pkg/process"
)

const remoteTimeout = 10 * time.Second

// ValidateTunnel runs a no-op remote command through the forward. A check
// that never answers is KindTunnelTimeout; one that answers with an error is
// KindConnectionValidation.
func (m *Manager) ValidateTunnel(ctx context.Context, user string, port uint16) error {
	m.log.Info().Msg("Validating tunnel connectivity...")
	res, err := m.exec.Run(ctx, sshBinary, RemoteArgs(user, port, connectivityCommand), remoteTimeout)
	switch {
	case process.IsTimeout(err):
		return &Error{Kind: KindTunnelTimeout}
	case err != nil:
		return newError(KindConnectionValidation, "Failed to execute validation command: %v", err)
	case !res.Success:
		return newError(KindConnectionValidation, "Tunnel validation failed: %s", res.Stderr)
	}
	m.log.Info().Msg("Tunnel validation successful")
	return nil
}
