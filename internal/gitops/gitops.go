// Package gitops provides the read-only git probes used by preflight.
// All probes shell out to the git CLI with explicit argument slices; none of
// them mutate the repository.
package gitops

import (
	"fmt"
	"os/exec"
	"strings"
)

// Available reports whether the git CLI is on PATH.
func Available() bool {
	_, err := exec.LookPath("git")
	return err == nil
}

// IsWorkTreeClean reports whether the working tree at repoRoot has no
// uncommitted changes (staged, unstaged, or untracked).
func IsWorkTreeClean(repoRoot string) (bool, error) {
	cmd := exec.Command("git", "status", "--porcelain")
	cmd.Dir = repoRoot
	out, err := cmd.Output()
	if err != nil {
		return false, fmt.Errorf("git status: %w", err)
	}
	return strings.TrimSpace(string(out)) == "", nil
}

// HasRemote reports whether the repository at repoRoot has at least one
// configured remote.
func HasRemote(repoRoot string) (bool, error) {
	cmd := exec.Command("git", "remote")
	cmd.Dir = repoRoot
	out, err := cmd.Output()
	if err != nil {
		return false, fmt.Errorf("git remote: %w", err)
	}
	return strings.TrimSpace(string(out)) != "", nil
}

// CurrentBranch returns the name of the currently checked-out branch.
func CurrentBranch(repoRoot string) (string, error) {
	cmd := exec.Command("git", "rev-parse", "--abbrev-ref", "HEAD")
	cmd.Dir = repoRoot
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git rev-parse: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

// IsRepository reports whether repoRoot is inside a git working tree.
func IsRepository(repoRoot string) bool {
	cmd := exec.Command("git", "rev-parse", "--is-inside-work-tree")
	cmd.Dir = repoRoot
	out, err := cmd.Output()
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(out)) == "true"
}
