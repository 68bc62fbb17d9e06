package tunnel

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
)

// ResolveKeyPath expands a leading "~/" and checks that the key exists.
func ResolveKeyPath(keyPath string) (string, error) {
	resolved := keyPath
	if strings.HasPrefix(keyPath, "~/") {
		home, err := homedir.Dir()
		if err != nil || home == "" {
			return "", &Error{Kind: KindInvalidKeyPath, Path: keyPath}
		}
		resolved = filepath.Join(home, keyPath[2:])
	}
	if _, err := os.Stat(resolved); err != nil {
		return "", &Error{Kind: KindInvalidKeyPath, Path: resolved}
	}
	return resolved, nil
}

// TransferKey installs the public key at keyPath into the remote user's
// authorized keys through the forward. The path is checked before any
// process is started.
func (m *Manager) TransferKey(ctx context.Context, keyPath, user string, port uint16) error {
	resolved, err := ResolveKeyPath(keyPath)
	if err != nil {
		return err
	}
	m.log.Info().Msgf("Transferring SSH key: %s", resolved)

	res, err := m.exec.Run(ctx, copyIDBinary, CopyIDArgs(resolved, user, port), 0)
	if err != nil {
		return newError(KindKeyTransfer, "Failed to execute ssh-copy-id: %v", err)
	}
	if !res.Success {
		return &Error{Kind: KindKeyTransfer, Msg: res.Stderr}
	}
	m.log.Info().Msg("SSH key transferred successfully")
	return nil
}
