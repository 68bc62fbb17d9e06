package process

import (
	"bytes"
	"context"
	"os/exec"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ErrTimeout is returned when a command does not finish before its deadline.
// The child process is not killed.
var ErrTimeout = errors.New("command timed out")

// Result is the captured outcome of a command that ran to completion.
type Result struct {
	Success  bool
	ExitCode int
	Stdout   string
	Stderr   string
}

// LaunchError means the program could not be started at all.
type LaunchError struct {
	Name string
	Err  error
}

func (e *LaunchError) Error() string {
	return e.Err.Error()
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

// Executor runs a single external command. A zero timeout waits for as
// long as the context allows.
type Executor interface {
	Run(ctx context.Context, name string, args []string, timeout time.Duration) (Result, error)
}

type LocalExecutor struct {
	Logger zerolog.Logger
	// WaitDelay bounds how long output copying may outlive the process.
	// A program that forks into the background, like `ssh -f`, keeps the
	// pipes open, so every successful launch of one waits this long.
	WaitDelay time.Duration
}

func NewLocalExecutor() *LocalExecutor {
	return &LocalExecutor{
		Logger:    log.Logger,
		WaitDelay: 500 * time.Millisecond,
	}
}

func (e *LocalExecutor) Run(ctx context.Context, name string, args []string, timeout time.Duration) (Result, error) {
	e.Logger.Debug().Msgf("Running %s with args: %q", name, args)
	cmd := exec.Command(name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = e.WaitDelay
	if err := cmd.Start(); err != nil {
		return Result{}, &LaunchError{Name: name, Err: err}
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	var deadline <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	select {
	case err := <-done:
		return collect(cmd, err, &stdout, &stderr)
	case <-deadline:
		e.Logger.Debug().Msgf("%s did not finish within %v", name, timeout)
		return Result{}, ErrTimeout
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

func collect(cmd *exec.Cmd, waitErr error, stdout, stderr *bytes.Buffer) (Result, error) {
	res := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) && !errors.Is(waitErr, exec.ErrWaitDelay) {
			return res, errors.Wrapf(waitErr, "waiting for %s", cmd.Path)
		}
	}
	res.ExitCode = cmd.ProcessState.ExitCode()
	res.Success = cmd.ProcessState.Success()
	return res, nil
}

func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

func IsLaunchError(err error) bool {
	var launchErr *LaunchError
	return errors.As(err, &launchErr)
}
