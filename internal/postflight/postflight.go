// Package postflight decides whether an invocation's side effects satisfy
// the deterministic output contract: exit status, expected artifacts on
// disk, and workflow evidence in the captured output.
package postflight

import (
	"fmt"
	"os"
	"regexp"

	"github.com/robertgumeny/warden/internal/types"
)

// Textual patterns the agent's workflow instructions require in stdout.
var (
	// branchPattern matches the "branch: <token>" marker.
	branchPattern = regexp.MustCompile(`(?m)branch:\s+(\S+)`)

	// prURLPattern matches a change-request URL on the hosting provider.
	prURLPattern = regexp.MustCompile(`https?://\S+/(?:pull|pr|merge_requests)/\d+`)

	// Workflow-stage evidence. All three must be present for the output
	// format to count as valid; partial evidence is invalid.
	commitEvidence = regexp.MustCompile(`(?i)\bcommit(ted|ting)?\b`)
	pushEvidence   = regexp.MustCompile(`(?i)\bpush(ed|ing)?\b`)
)

// Params carries the inputs to Validate. ExpectedArtifactPath may be empty
// when the workflow produces no on-disk artifact (freeform question mode).
type Params struct {
	Result *types.InvocationResult

	// ExpectedArtifactPath, when non-empty, must exist on disk.
	ExpectedArtifactPath string

	// RequirePRURL promotes a missing change-request URL from an advisory
	// issue to a hard error.
	RequirePRURL bool
}

// Validate derives a PostflightResult purely from the invocation result and
// the expected-artifact path.
//
// CommandSucceeded is exactly exit code zero. When it is false every further
// check is skipped, not failed: a failed command has no obligation to have
// produced artifacts, and artifacts left over from prior runs must never be
// attributed to this one.
func Validate(p Params) *types.PostflightResult {
	r := &types.PostflightResult{}

	if p.Result.ExitCode != 0 {
		r.Errors = append(r.Errors, fmt.Sprintf("agent exited with code %d", p.Result.ExitCode))
		return r
	}
	r.CommandSucceeded = true

	if p.ExpectedArtifactPath != "" {
		if _, err := os.Stat(p.ExpectedArtifactPath); err == nil {
			r.DecisionFileCreated = true
		} else {
			r.Errors = append(r.Errors, fmt.Sprintf("expected decision file %s was not created", p.ExpectedArtifactPath))
		}
	}

	stdout := p.Result.Stdout

	if m := branchPattern.FindStringSubmatch(stdout); m != nil {
		r.BranchCreated = true
		r.BranchName = m[1]
	} else {
		r.Issues = append(r.Issues, "no branch marker found in agent output")
	}

	if m := prURLPattern.FindString(stdout); m != "" {
		r.PRCreated = true
		r.PRURL = m
	} else if p.RequirePRURL {
		r.Errors = append(r.Errors, "no change-request URL found in agent output")
	} else {
		r.Issues = append(r.Issues, "no change-request URL found in agent output")
	}

	r.OutputFormatValid = checkWorkflowEvidence(stdout, r)

	return r
}

// checkWorkflowEvidence requires independent evidence of every workflow
// stage: branch creation, commit, push. Missing stages are recorded as
// advisory issues and make the output format invalid.
func checkWorkflowEvidence(stdout string, r *types.PostflightResult) bool {
	valid := true
	if !branchPattern.MatchString(stdout) {
		r.Issues = append(r.Issues, "output missing branch-creation evidence")
		valid = false
	}
	if !commitEvidence.MatchString(stdout) {
		r.Issues = append(r.Issues, "output missing commit evidence")
		valid = false
	}
	if !pushEvidence.MatchString(stdout) {
		r.Issues = append(r.Issues, "output missing push evidence")
		valid = false
	}
	return valid
}
