package tunnel

import (
	"context"
	"strings"

	"github.com/kfsoftware/ssh-ip-tunnel/pkg/process"
)

// IsARM reports whether a `uname -m` string names an ARM-family CPU.
func IsARM(arch string) bool {
	arch = strings.ToLower(strings.TrimSpace(arch))
	if strings.HasPrefix(arch, "arm") ||
		strings.HasPrefix(arch, "aarch64") ||
		strings.HasPrefix(arch, "armv") {
		return true
	}
	// FIXME: this also accepts strings such as "x86_64-armature". Kept so
	// existing deployments classify the same way; the prefixes above are the
	// intended rule.
	return strings.Contains(arch, "arm")
}

// DetectArchitecture returns the remote machine's trimmed `uname -m` output.
func (m *Manager) DetectArchitecture(ctx context.Context, user string, port uint16) (string, error) {
	m.log.Info().Msg("Detecting CPU architecture...")
	res, err := m.exec.Run(ctx, sshBinary, RemoteArgs(user, port, architectureCommand), remoteTimeout)
	switch {
	case process.IsTimeout(err):
		return "", newError(KindArchitectureDetection, "Timeout while detecting architecture")
	case err != nil:
		return "", newError(KindArchitectureDetection, "Failed to execute architecture detection: %v", err)
	case !res.Success:
		return "", newError(KindArchitectureDetection, "Failed to detect architecture: %s", res.Stderr)
	}
	arch := strings.TrimSpace(res.Stdout)
	m.log.Info().Msgf("Detected architecture: %s", arch)
	return arch, nil
}

// ValidateARMArchitecture fails with KindNonArmCpu unless the remote CPU is
// ARM. The check is bypassed entirely when skip_arch_validation is set.
func (m *Manager) ValidateARMArchitecture(ctx context.Context, user string, port uint16) error {
	if m.cfg.SkipArchValidation {
		m.log.Warn().Msg("Skipping ARM architecture validation as requested")
		return nil
	}
	arch, err := m.DetectArchitecture(ctx, user, port)
	if err != nil {
		return err
	}
	if !IsARM(arch) {
		return newError(KindNonArmCpu, "Detected architecture '%s' is not ARM-based. Use --skip-arch-validation to override", arch)
	}
	m.log.Info().Msgf("Confirmed ARM architecture: %s", arch)
	return nil
}
