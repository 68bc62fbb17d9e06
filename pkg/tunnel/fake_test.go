package tunnel

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/kfsoftware/ssh-ip-tunnel/pkg/config"
	"github.com/kfsoftware/ssh-ip-tunnel/pkg/process"
	"github.com/rs/zerolog"
)

type call struct {
	name    string
	args    []string
	timeout time.Duration
}

func (c call) step() string {
	switch {
	case c.name == copyIDBinary:
		return "copy-id"
	case len(c.args) > 0 && c.args[0] == "-fN":
		return "forward"
	case len(c.args) > 0 && c.args[len(c.args)-1] == connectivityCommand:
		return "check"
	case len(c.args) > 0 && c.args[len(c.args)-1] == architectureCommand:
		return "arch"
	default:
		return "unknown"
	}
}

type response struct {
	res process.Result
	err error
	// hang makes the call block this long, or until its timeout expires.
	hang time.Duration
}

var succeeded = response{res: process.Result{Success: true}}

func failed(stderr string) response {
	return response{res: process.Result{Success: false, ExitCode: 255, Stderr: stderr}}
}

func stdout(out string) response {
	return response{res: process.Result{Success: true, Stdout: out}}
}

// fakeExecutor answers each step with a fixed response and records every
// call in order. Steps without a configured response succeed.
type fakeExecutor struct {
	mu        sync.Mutex
	calls     []call
	responses map[string]response
}

func newFakeExecutor(responses map[string]response) *fakeExecutor {
	if responses == nil {
		responses = map[string]response{}
	}
	return &fakeExecutor{responses: responses}
}

func (f *fakeExecutor) Run(_ context.Context, name string, args []string, timeout time.Duration) (process.Result, error) {
	f.mu.Lock()
	c := call{name: name, args: append([]string(nil), args...), timeout: timeout}
	f.calls = append(f.calls, c)
	r, found := f.responses[c.step()]
	f.mu.Unlock()
	if !found {
		return process.Result{Success: true}, nil
	}
	if r.hang > 0 {
		if timeout > 0 && timeout < r.hang {
			time.Sleep(timeout)
			return process.Result{}, process.ErrTimeout
		}
		time.Sleep(r.hang)
	}
	return r.res, r.err
}

func (f *fakeExecutor) steps() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.step())
	}
	return out
}

func (f *fakeExecutor) callsFor(step string) []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []call
	for _, c := range f.calls {
		if c.step() == step {
			out = append(out, c)
		}
	}
	return out
}

type testManager struct {
	*Manager
	exec  *fakeExecutor
	slept []time.Duration
}

func newTestManager(cfg config.Config, responses map[string]response) *testManager {
	exec := newFakeExecutor(responses)
	tm := &testManager{exec: exec}
	tm.Manager = NewManager(cfg, exec,
		WithLogger(zerolog.New(io.Discard)),
		WithRetryPolicy(RetryPolicy{InitialInterval: 5 * time.Millisecond, MaxElapsed: 100 * time.Millisecond}),
	)
	tm.Manager.sleep = func(_ context.Context, d time.Duration) error {
		tm.slept = append(tm.slept, d)
		return nil
	}
	return tm
}
