// Package types defines the shared structs and typed constants used by the
// warden protocol packages: run states, validation results, the captured
// subprocess result, and the structured artifacts derived from agent output.
package types

import (
	"fmt"
	"time"
)

// ---------------------------------------------------------------------------
// Typed constants
// ---------------------------------------------------------------------------

// RunState is the lifecycle state of one guarded invocation run.
type RunState string

const (
	StateIdle          RunState = "IDLE"
	StatePreflighting  RunState = "PREFLIGHTING"
	StateBlocked       RunState = "BLOCKED"
	StateInvoking      RunState = "INVOKING"
	StateCancelled     RunState = "CANCELLED"
	StateInvoked       RunState = "INVOKED"
	StatePostflighting RunState = "POSTFLIGHTING"
	StateRejected      RunState = "REJECTED"
	StateAccepted      RunState = "ACCEPTED"
)

// IsTerminal reports whether no further transition is possible from s.
func (s RunState) IsTerminal() bool {
	switch s {
	case StateBlocked, StateCancelled, StateRejected, StateAccepted:
		return true
	}
	return false
}

// ReportStatus is the status field of the agent's structured report.
type ReportStatus string

const (
	ReportSuccess ReportStatus = "success"
	ReportFailed  ReportStatus = "failed"
)

// ---------------------------------------------------------------------------
// Request and validation results
// ---------------------------------------------------------------------------

// PanelRequest is the immutable input to prompt assembly: either a spec file
// or a freeform question, plus the phase parameters.
type PanelRequest struct {
	SpecPath string
	Question string
	Rounds   int
	Scope    string
	RepoRoot string
}

// PreflightResult collects every precondition check outcome for one
// invocation attempt. It is created fresh per attempt and never persisted.
//
// Errors are blocking; Warnings are not. Both lists preserve check order so
// the caller can surface every violation at once.
type PreflightResult struct {
	GitPresent         bool
	WorkTreeClean      bool
	RemoteConfigured   bool
	AgentAuthenticated bool
	SpecExists         bool
	ReferenceDocExists bool

	Errors   []string
	Warnings []string
}

// IsValid reports whether the invocation may proceed. Warnings never block.
func (r *PreflightResult) IsValid() bool {
	return len(r.Errors) == 0
}

// AddError appends a blocking error to the result.
func (r *PreflightResult) AddError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// AddWarning appends a non-blocking warning to the result.
func (r *PreflightResult) AddWarning(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// ---------------------------------------------------------------------------
// Invocation capture
// ---------------------------------------------------------------------------

// InvocationResult is the atomically captured outcome of one agent
// subprocess: exit code, both output streams in full, and wall-clock time.
type InvocationResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// ---------------------------------------------------------------------------
// Postflight
// ---------------------------------------------------------------------------

// PostflightResult is derived purely from an InvocationResult and an
// optional expected-artifact path. Errors invalidate the run; Issues are
// advisory and preserved for display.
type PostflightResult struct {
	CommandSucceeded    bool
	DecisionFileCreated bool
	BranchCreated       bool
	BranchName          string
	PRCreated           bool
	PRURL               string
	OutputFormatValid   bool

	Errors []string
	Issues []string
}

// IsValid reports whether the invocation's side effects satisfy the output
// contract. Advisory issues never invalidate the result.
func (r *PostflightResult) IsValid() bool {
	return len(r.Errors) == 0
}

// ---------------------------------------------------------------------------
// Agent report
// ---------------------------------------------------------------------------

// AgentReport is the known schema for the structured payload embedded in the
// agent's free-form stdout.
type AgentReport struct {
	Status        ReportStatus `json:"status"`
	Summary       string       `json:"summary"`
	DecisionFile  string       `json:"decision_file,omitempty"`
	Branch        string       `json:"branch,omitempty"`
	PRURL         string       `json:"pr_url,omitempty"`
	FilesModified []string     `json:"files_modified,omitempty"`
}

// Validate checks that the required fields are present and well-formed.
func (r *AgentReport) Validate() error {
	if r.Status == "" {
		return fmt.Errorf("status is required")
	}
	if r.Status != ReportSuccess && r.Status != ReportFailed {
		return fmt.Errorf("status must be %q or %q, got %q", ReportSuccess, ReportFailed, r.Status)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Decision summary
// ---------------------------------------------------------------------------

// Risk is one row of the decision document's risk table.
type Risk struct {
	Description string
	Level       string
	Mitigation  string
}

// DecisionSummary holds the structured fields parsed from a decision
// document. Any field may be empty when the document deviates from the
// template; partial parses are a recoverable condition, not an error.
type DecisionSummary struct {
	Decision  string
	Why       []string
	Checklist []string
	Tests     []string
	Risks     []Risk
}

// IsEmpty reports whether nothing at all was recovered from the document.
func (s *DecisionSummary) IsEmpty() bool {
	return s.Decision == "" && len(s.Why) == 0 && len(s.Checklist) == 0 &&
		len(s.Tests) == 0 && len(s.Risks) == 0
}
