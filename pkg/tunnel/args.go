package tunnel

import (
	"fmt"
	"strconv"
)

const (
	sshBinary    = "ssh"
	copyIDBinary = "ssh-copy-id"

	connectivityCommand = "echo 'tunnel_test'"
	architectureCommand = "uname -m"
)

// trustOptions disable host key verification. Provisioned devices are
// usually freshly flashed, so their keys are never known in advance.
var trustOptions = []string{
	"-o", "StrictHostKeyChecking=no",
	"-o", "UserKnownHostsFile=/dev/null",
}

// ForwardArgs builds the ssh arguments for a background forward of
// localhost:<port> to port 22 on host.
func ForwardArgs(user, host string, port uint16) []string {
	args := []string{
		"-fN",
		"-L", fmt.Sprintf("%d:localhost:22", port),
		fmt.Sprintf("%s@%s", user, host),
	}
	args = append(args, trustOptions...)
	return append(args, "-o", "LogLevel=ERROR")
}

// RemoteArgs builds the ssh arguments that run remoteCmd through the forward.
func RemoteArgs(user string, port uint16, remoteCmd string) []string {
	args := []string{
		"-p", strconv.Itoa(int(port)),
		fmt.Sprintf("%s@localhost", user),
		"-o", "ConnectTimeout=5",
	}
	args = append(args, trustOptions...)
	return append(args, "-o", "LogLevel=ERROR", remoteCmd)
}

func CopyIDArgs(keyPath, user string, port uint16) []string {
	args := []string{
		"-i", keyPath,
		fmt.Sprintf("-p%d", port),
		fmt.Sprintf("%s@localhost", user),
	}
	return append(args, trustOptions...)
}
