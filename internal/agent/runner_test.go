package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/robertgumeny/warden/internal/guard"
)

// TestMain manages subprocess mode. When TEST_AGENT_MODE is set, the test
// binary acts as a controllable agent instead of running the suite:
//
//	echo  — copy stdin to stdout with a prefix, write to stderr, exit 0
//	fail  — write to stderr, exit 3
//	sleep — block for 30s (used by cancellation tests)
func TestMain(m *testing.M) {
	switch os.Getenv("TEST_AGENT_MODE") {
	case "echo":
		data, _ := io.ReadAll(os.Stdin)
		fmt.Printf("received prompt of %d bytes\n%s", len(data), data)
		fmt.Fprintln(os.Stderr, "agent log line")
		os.Exit(0)
	case "fail":
		fmt.Fprintln(os.Stderr, "agent blew up")
		os.Exit(3)
	case "sleep":
		time.Sleep(30 * time.Second)
		os.Exit(0)
	}
	os.Exit(m.Run())
}

// testCommand returns a guard.Command wrapping the test binary itself.
func testCommand() guard.Command {
	return guard.Command{Path: os.Args[0], Args: []string{"-test.run=^$"}}
}

func TestProcessRunnerInvoke(t *testing.T) {
	var runner ProcessRunner

	t.Run("prompt is delivered over stdin, streams are captured", func(t *testing.T) {
		t.Setenv("TEST_AGENT_MODE", "echo")
		prompt := "## Task Spec\n" + strings.Repeat("reference document content ", 500)

		res, err := runner.Invoke(context.Background(), Invocation{
			Command: testCommand(),
			WorkDir: t.TempDir(),
			Prompt:  prompt,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.ExitCode != 0 {
			t.Errorf("ExitCode = %d, want 0", res.ExitCode)
		}
		if !strings.Contains(res.Stdout, "## Task Spec") {
			t.Error("stdout should contain the echoed prompt")
		}
		if !strings.Contains(res.Stdout, fmt.Sprintf("received prompt of %d bytes", len(prompt))) {
			t.Errorf("agent did not receive the full prompt:\n%.200s", res.Stdout)
		}
		if !strings.Contains(res.Stderr, "agent log line") {
			t.Errorf("stderr not captured: %q", res.Stderr)
		}
		if res.Duration <= 0 {
			t.Errorf("duration should be positive, got %v", res.Duration)
		}
	})

	t.Run("non-zero exit is a result, not an error", func(t *testing.T) {
		t.Setenv("TEST_AGENT_MODE", "fail")
		res, err := runner.Invoke(context.Background(), Invocation{
			Command: testCommand(),
			WorkDir: t.TempDir(),
			Prompt:  "hello",
		})
		if err != nil {
			t.Fatalf("non-zero exit must not be an error, got: %v", err)
		}
		if res.ExitCode != 3 {
			t.Errorf("ExitCode = %d, want 3", res.ExitCode)
		}
		if !strings.Contains(res.Stderr, "agent blew up") {
			t.Errorf("stderr not captured: %q", res.Stderr)
		}
	})

	t.Run("cancellation is distinguishable from failure", func(t *testing.T) {
		t.Setenv("TEST_AGENT_MODE", "sleep")
		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer cancel()

		start := time.Now()
		_, err := runner.Invoke(ctx, Invocation{
			Command: testCommand(),
			WorkDir: t.TempDir(),
			Prompt:  "hello",
		})
		if !errors.Is(err, ErrCancelled) {
			t.Fatalf("expected ErrCancelled, got: %v", err)
		}
		if elapsed := time.Since(start); elapsed > 10*time.Second {
			t.Errorf("cancellation took too long: %v", elapsed)
		}
	})

	t.Run("start failure is a fatal error", func(t *testing.T) {
		_, err := runner.Invoke(context.Background(), Invocation{
			Command: guard.Command{Path: "definitely-not-a-real-binary-9a8b7c"},
			WorkDir: t.TempDir(),
			Prompt:  "hello",
		})
		if err == nil {
			t.Fatal("expected error when the agent binary does not exist")
		}
		if errors.Is(err, ErrCancelled) {
			t.Error("start failure must not look like cancellation")
		}
	})
}
