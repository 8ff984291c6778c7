// Package guard defines the immutable safety-flag set appended to every
// agent invocation and builds guarded command lines.
//
// The flag set is fixed at build time and is never user-overridable. Every
// mutating agent invocation must go through Build; there is no code path
// that produces an agent command without the guard flags.
package guard

import (
	"fmt"
	"strings"
)

// guardFlags is the fixed, ordered safety flag set. Order matters: the
// safety property under test is that these appear after all caller-supplied
// arguments, in this order, every time.
var guardFlags = [...]string{
	"--dry-run-default",
	"--max-commit-files=20",
	"--no-force",
	"--max-diff-lines=1500",
}

// Flags returns a copy of the guard flag set. Callers cannot mutate the
// underlying array through the returned slice.
func Flags() []string {
	out := make([]string, len(guardFlags))
	copy(out, guardFlags[:])
	return out
}

// Command is a fully resolved, guarded invocation: an executable path and
// its complete argument list.
type Command struct {
	Path string
	Args []string
}

// String renders the command for logging. Arguments containing whitespace
// are quoted.
func (c Command) String() string {
	parts := []string{c.Path}
	for _, a := range c.Args {
		if strings.ContainsAny(a, " \t") {
			parts = append(parts, fmt.Sprintf("%q", a))
		} else {
			parts = append(parts, a)
		}
	}
	return strings.Join(parts, " ")
}

// Build tokenizes baseCommand shell-style, appends extraArgs and then the
// guard flags, in that fixed order, with no conditional omission.
func Build(baseCommand string, extraArgs []string) (Command, error) {
	trimmed := strings.TrimSpace(baseCommand)
	if trimmed == "" {
		return Command{}, fmt.Errorf("agent command must not be empty or whitespace")
	}

	parts, err := SplitShellArgs(trimmed)
	if err != nil {
		return Command{}, fmt.Errorf("parse agent command: %w", err)
	}

	args := append([]string(nil), parts[1:]...)
	args = append(args, extraArgs...)
	args = append(args, Flags()...)

	return Command{Path: parts[0], Args: args}, nil
}

// SplitShellArgs tokenizes s like a POSIX shell, respecting single and double
// quotes and backslash escapes outside quotes. No variable expansion or
// globbing is performed. This allows agent commands in warden.yaml such as:
//
//	claude -p "use the decision panel"
//
// to be parsed correctly instead of being fragmented by whitespace splitting.
func SplitShellArgs(s string) ([]string, error) {
	var args []string
	var cur strings.Builder
	inSingle := false
	inDouble := false

	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case inSingle:
			if ch == '\'' {
				inSingle = false
			} else {
				cur.WriteByte(ch)
			}
		case inDouble:
			if ch == '\\' && i+1 < len(s) {
				next := s[i+1]
				// Characters escapable inside double quotes per POSIX
				if next == '"' || next == '\\' || next == '$' || next == '`' || next == '\n' {
					cur.WriteByte(next)
					i++
				} else {
					cur.WriteByte(ch)
				}
			} else if ch == '"' {
				inDouble = false
			} else {
				cur.WriteByte(ch)
			}
		case ch == '\\':
			if i+1 < len(s) {
				cur.WriteByte(s[i+1])
				i++
			}
		case ch == '\'':
			inSingle = true
		case ch == '"':
			inDouble = true
		case ch == ' ' || ch == '\t':
			if cur.Len() > 0 {
				args = append(args, cur.String())
				cur.Reset()
			}
		default:
			cur.WriteByte(ch)
		}
	}

	if inSingle {
		return nil, fmt.Errorf("unterminated single quote in agent command")
	}
	if inDouble {
		return nil, fmt.Errorf("unterminated double quote in agent command")
	}
	if cur.Len() > 0 {
		args = append(args, cur.String())
	}

	return args, nil
}
