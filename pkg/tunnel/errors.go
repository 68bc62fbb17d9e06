package tunnel

import (
	"fmt"

	"github.com/pkg/errors"
)

type Kind int

const (
	KindTunnelCreation Kind = iota
	KindKeyTransfer
	KindConnectionValidation
	KindTunnelTimeout
	KindInvalidKeyPath
	KindArchitectureDetection
	KindNonArmCpu
)

func (k Kind) String() string {
	switch k {
	case KindTunnelCreation:
		return "TunnelCreation"
	case KindKeyTransfer:
		return "KeyTransfer"
	case KindConnectionValidation:
		return "ConnectionValidation"
	case KindTunnelTimeout:
		return "TunnelTimeout"
	case KindInvalidKeyPath:
		return "InvalidKeyPath"
	case KindArchitectureDetection:
		return "ArchitectureDetection"
	case KindNonArmCpu:
		return "NonArmCpu"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error is the terminal failure of one orchestration step. Path is only set
// for KindInvalidKeyPath.
type Error struct {
	Kind Kind
	Msg  string
	Path string
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindTunnelCreation:
		return "SSH tunnel creation failed: " + e.Msg
	case KindKeyTransfer:
		return "SSH key transfer failed: " + e.Msg
	case KindConnectionValidation:
		return "Connection validation failed: " + e.Msg
	case KindTunnelTimeout:
		return "Timeout waiting for tunnel to be ready"
	case KindInvalidKeyPath:
		return "Invalid SSH key path: " + e.Path
	case KindArchitectureDetection:
		return "Architecture detection failed: " + e.Msg
	case KindNonArmCpu:
		return fmt.Sprintf("Non-ARM CPU detected: %s. This tool is designed for ARM CPUs only", e.Msg)
	default:
		return e.Msg
	}
}

func newError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// IsKind reports whether err carries a tunnel error of the given kind.
func IsKind(err error, kind Kind) bool {
	var tErr *Error
	if !errors.As(err, &tErr) {
		return false
	}
	return tErr.Kind == kind
}
