// Package preflight validates environment and repository preconditions
// before any agent invocation is attempted.
//
// Every check runs even when an earlier one fails, so the result surfaces
// all blocking conditions at once. The single exception: when git itself is
// missing, the git-dependent checks are skipped and recorded as warnings
// rather than reported as false. All checks are read-only with respect to
// the target repository.
package preflight

import (
	"os"
	"os/exec"
	"strings"

	"github.com/robertgumeny/warden/internal/gitops"
	"github.com/robertgumeny/warden/internal/guard"
	"github.com/robertgumeny/warden/internal/types"
)

// Params carries everything Validate needs. SpecPath and ReferenceDocPath
// may be empty; an empty path marks that check as not applicable.
type Params struct {
	RepoRoot         string
	SpecPath         string
	ReferenceDocPath string

	// AgentCommand is the configured agent invocation (shell-style); its
	// executable is resolved on PATH and probed with AuthProbeArgs.
	AgentCommand  string
	AuthProbeArgs []string
}

// Validate runs every precondition check and returns the collected result.
// Expected failure conditions become error or warning entries; Validate
// itself never fails. Even probe-subprocess spawn failures are converted
// into error entries rather than propagated.
func Validate(p Params) *types.PreflightResult {
	r := &types.PreflightResult{}

	checkGit(p, r)
	checkAgent(p, r)
	checkSpec(p, r)
	checkReferenceDoc(p, r)

	return r
}

// checkGit verifies the git CLI is present, the working tree is clean, and a
// remote is configured. A dirty tree is a warning (the agent commits on a
// fresh branch regardless); a missing remote is an error because the agent
// cannot push or open a change request without one.
func checkGit(p Params, r *types.PreflightResult) {
	if !gitops.Available() {
		r.AddError("git not found on PATH")
		r.AddWarning("skipping working-tree check: git unavailable")
		r.AddWarning("skipping remote check: git unavailable")
		return
	}
	r.GitPresent = true

	if !gitops.IsRepository(p.RepoRoot) {
		r.AddError("%s is not a git repository", p.RepoRoot)
		return
	}

	clean, err := gitops.IsWorkTreeClean(p.RepoRoot)
	switch {
	case err != nil:
		r.AddError("working-tree check failed: %v", err)
	case clean:
		r.WorkTreeClean = true
	default:
		r.AddWarning("working tree has uncommitted changes")
	}

	hasRemote, err := gitops.HasRemote(p.RepoRoot)
	switch {
	case err != nil:
		r.AddError("remote check failed: %v", err)
	case hasRemote:
		r.RemoteConfigured = true
	default:
		r.AddError("no git remote configured")
	}
}

// checkAgent resolves the agent executable on PATH and runs the
// authentication probe. With no probe args configured, PATH resolution alone
// counts as authenticated (degraded probe).
func checkAgent(p Params, r *types.PreflightResult) {
	parts, err := guard.SplitShellArgs(strings.TrimSpace(p.AgentCommand))
	if err != nil || len(parts) == 0 {
		r.AddError("agent command %q is not parseable", p.AgentCommand)
		return
	}

	bin := parts[0]
	if _, err := exec.LookPath(bin); err != nil {
		r.AddError("agent binary %q not found on PATH", bin)
		return
	}

	if len(p.AuthProbeArgs) == 0 {
		r.AgentAuthenticated = true
		return
	}

	probe := exec.Command(bin, p.AuthProbeArgs...)
	probe.Dir = p.RepoRoot
	out, err := probe.CombinedOutput()
	if err != nil {
		if _, ok := err.(*exec.ExitError); ok {
			r.AddError("agent is not authenticated (probe %q exited non-zero): %s",
				strings.Join(p.AuthProbeArgs, " "), strings.TrimSpace(string(out)))
		} else {
			// Probe could not be spawned at all. Still an error entry, not a panic.
			r.AddError("agent auth probe failed to start: %v", err)
		}
		return
	}
	r.AgentAuthenticated = true
}

// checkSpec verifies the spec file exists. An empty SpecPath (freeform
// question mode) marks the check as not applicable.
func checkSpec(p Params, r *types.PreflightResult) {
	if p.SpecPath == "" {
		r.SpecExists = true
		return
	}
	if _, err := os.Stat(p.SpecPath); err != nil {
		r.AddError("spec file %s does not exist", p.SpecPath)
		return
	}
	r.SpecExists = true
}

// checkReferenceDoc verifies the reference document exists. Specs may list
// aspirational documentation, so absence is a warning, not an error.
func checkReferenceDoc(p Params, r *types.PreflightResult) {
	if p.ReferenceDocPath == "" {
		r.ReferenceDocExists = true
		return
	}
	if _, err := os.Stat(p.ReferenceDocPath); err != nil {
		r.AddWarning("reference doc %s does not exist", p.ReferenceDocPath)
		return
	}
	r.ReferenceDocExists = true
}
