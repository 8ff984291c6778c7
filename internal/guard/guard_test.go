package guard

import (
	"reflect"
	"strings"
	"testing"
)

func TestFlags(t *testing.T) {
	t.Run("returns the fixed flag set in order", func(t *testing.T) {
		want := []string{"--dry-run-default", "--max-commit-files=20", "--no-force", "--max-diff-lines=1500"}
		if got := Flags(); !reflect.DeepEqual(got, want) {
			t.Errorf("Flags() = %v, want %v", got, want)
		}
	})

	t.Run("mutating the returned slice does not affect later calls", func(t *testing.T) {
		first := Flags()
		first[0] = "--force"
		second := Flags()
		if second[0] != "--dry-run-default" {
			t.Errorf("guard flags were mutated through a returned copy: %v", second)
		}
	})
}

func TestBuild(t *testing.T) {
	t.Run("guard flags come after all caller arguments", func(t *testing.T) {
		cmd, err := Build("agent -p \"be careful\"", []string{"panel", "--round=2"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cmd.Path != "agent" {
			t.Errorf("Path = %q, want agent", cmd.Path)
		}
		want := []string{"-p", "be careful", "panel", "--round=2",
			"--dry-run-default", "--max-commit-files=20", "--no-force", "--max-diff-lines=1500"}
		if !reflect.DeepEqual(cmd.Args, want) {
			t.Errorf("Args = %v, want %v", cmd.Args, want)
		}
	})

	t.Run("guard flags are appended even with no extra args", func(t *testing.T) {
		cmd, err := Build("agent", nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(cmd.Args) != len(Flags()) {
			t.Errorf("expected exactly the guard flags, got %v", cmd.Args)
		}
	})

	t.Run("empty command is rejected", func(t *testing.T) {
		if _, err := Build("   \t ", nil); err == nil {
			t.Fatal("expected error for whitespace-only command")
		}
	})

	t.Run("unterminated quote is rejected", func(t *testing.T) {
		if _, err := Build("agent 'oops", nil); err == nil {
			t.Fatal("expected error for unterminated quote")
		}
	})
}

func TestSplitShellArgs(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  []string
	}{
		{"plain words", "a b c", []string{"a", "b", "c"}},
		{"double quoted", `claude -p "Refer to CLAUDE.md"`, []string{"claude", "-p", "Refer to CLAUDE.md"}},
		{"single quoted", "x 'a b' y", []string{"x", "a b", "y"}},
		{"escaped space", `a\ b c`, []string{"a b", "c"}},
		{"escaped quote in double quotes", `say "\"hi\""`, []string{"say", `"hi"`}},
		{"collapsed whitespace", "a \t  b", []string{"a", "b"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := SplitShellArgs(tc.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("SplitShellArgs(%q) = %v, want %v", tc.input, got, tc.want)
			}
		})
	}
}

func TestCommandString(t *testing.T) {
	cmd := Command{Path: "agent", Args: []string{"-p", "two words", "--no-force"}}
	s := cmd.String()
	if !strings.Contains(s, `"two words"`) {
		t.Errorf("String() should quote args with spaces: %q", s)
	}
}
