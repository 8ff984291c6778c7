// Package agent invokes the external coding agent as a guarded subprocess.
//
// The prompt is always delivered over the subprocess's standard input, never
// as a command-line token: reference documents concatenated into the prompt
// routinely exceed platform argument-length ceilings (≈8,000 characters on
// some platforms). Both output streams are drained concurrently with the
// wait, otherwise the agent deadlocks once it fills an output pipe buffer.
package agent

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/robertgumeny/warden/internal/guard"
	"github.com/robertgumeny/warden/internal/types"
)

// ErrCancelled is returned when the invocation was terminated by the
// caller's context rather than by the agent itself. Callers distinguish
// cancellation from agent failure via errors.Is.
var ErrCancelled = errors.New("agent invocation cancelled")

// Invocation describes one guarded subprocess run.
type Invocation struct {
	Command guard.Command
	WorkDir string
	Prompt  string
}

// Runner is the cancellable-task capability the orchestrator depends on.
// The process implementation guarantees cancellation terminates all
// descendant work; tests substitute a fake.
type Runner interface {
	Invoke(ctx context.Context, inv Invocation) (*types.InvocationResult, error)
}

// ProcessRunner runs the agent as a real subprocess.
type ProcessRunner struct{}

// Invoke spawns the guarded command, writes the prompt to its stdin, and
// captures both output streams plus the exit status.
//
// A non-zero exit code is not an error: it is recorded in the result and
// interpreted by the caller. Failure to start the subprocess is a fatal
// error. On context cancellation the entire process group is killed and the
// returned error wraps ErrCancelled.
func (ProcessRunner) Invoke(ctx context.Context, inv Invocation) (*types.InvocationResult, error) {
	cmd := exec.CommandContext(ctx, inv.Command.Path, inv.Command.Args...)
	cmd.Dir = inv.WorkDir
	setProcessGroup(cmd)
	// The agent may spawn helpers; kill the whole group, not just the leader.
	cmd.Cancel = func() error { return killProcessGroup(cmd) }
	cmd.WaitDelay = 5 * time.Second

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("open agent stdin: %w", err)
	}
	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("open agent stdout: %w", err)
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("open agent stderr: %w", err)
	}

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start agent %q: %w", inv.Command.Path, err)
	}

	// A broken-pipe on stdin is not an invocation failure: an agent may
	// legitimately exit before consuming the whole prompt.
	go func() {
		defer stdin.Close()
		_, _ = io.WriteString(stdin, inv.Prompt)
	}()

	var stdout, stderr bytes.Buffer
	var g errgroup.Group
	g.Go(func() error {
		_, err := io.Copy(&stdout, stdoutPipe)
		return err
	})
	g.Go(func() error {
		_, err := io.Copy(&stderr, stderrPipe)
		return err
	})

	// Drain both streams to EOF before waiting, then let the wait error be
	// authoritative; copy errors are expected when the process is killed.
	copyErr := g.Wait()
	waitErr := cmd.Wait()
	duration := time.Since(start)

	result := &types.InvocationResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: duration,
	}

	if ctx.Err() != nil {
		return result, fmt.Errorf("%w: %v", ErrCancelled, ctx.Err())
	}

	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return result, fmt.Errorf("wait for agent: %w", waitErr)
	}

	if copyErr != nil {
		return result, fmt.Errorf("stream agent output: %w", copyErr)
	}

	return result, nil
}
