// Package orchestrator drives one guarded invocation run through its
// lifecycle: preflight, prompt assembly, subprocess invocation, payload
// extraction, decision persistence, and postflight validation.
//
// Each phase transition is recorded on the returned RunReport. A run ends in
// exactly one of four terminal states: BLOCKED (preflight refused), CANCELLED
// (caller deadline or interrupt), REJECTED (postflight refused), or ACCEPTED.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/robertgumeny/warden/internal/agent"
	"github.com/robertgumeny/warden/internal/config"
	"github.com/robertgumeny/warden/internal/decision"
	"github.com/robertgumeny/warden/internal/extract"
	"github.com/robertgumeny/warden/internal/guard"
	"github.com/robertgumeny/warden/internal/ledger"
	"github.com/robertgumeny/warden/internal/log"
	"github.com/robertgumeny/warden/internal/postflight"
	"github.com/robertgumeny/warden/internal/preflight"
	"github.com/robertgumeny/warden/internal/prompt"
	"github.com/robertgumeny/warden/internal/specdoc"
	"github.com/robertgumeny/warden/internal/types"
)

// Orchestrator runs guarded invocations against one repository.
type Orchestrator struct {
	Config   *config.Config
	RepoRoot string
	Runner   agent.Runner
}

// New returns an Orchestrator using the real subprocess runner.
func New(cfg *config.Config, repoRoot string) *Orchestrator {
	return &Orchestrator{Config: cfg, RepoRoot: repoRoot, Runner: agent.ProcessRunner{}}
}

// Request is the immutable input to one run. Exactly one of SpecPath or
// Question must be set. Zero Rounds falls back to the configured default.
type Request struct {
	SpecPath string
	Question string
	Rounds   int
	Scope    string

	// Resume skips the invocation when a decision for the spec already
	// exists, accepting the run on the strength of the prior artifact.
	Resume bool
}

// RunReport is the full record of one run: the terminal state, every phase
// result that was reached, and the reasons behind a non-accepted outcome.
type RunReport struct {
	State        types.RunState
	Preflight    *types.PreflightResult
	Invocation   *types.InvocationResult
	Payload      *extract.Payload
	Postflight   *types.PostflightResult
	DecisionPath string
	Reasons      []string
	Duration     time.Duration
}

// addReason appends a formatted reason to the report.
func (r *RunReport) addReason(format string, args ...any) {
	r.Reasons = append(r.Reasons, fmt.Sprintf(format, args...))
}

// Run executes the full lifecycle for req. The report is always non-nil and
// carries a terminal state unless the returned error is non-nil, in which
// case the run failed for an infrastructure reason (the agent could not be
// started, an artifact could not be written) rather than a protocol one.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*RunReport, error) {
	start := time.Now()
	report := &RunReport{State: types.StateIdle}
	defer func() {
		report.Duration = time.Since(start)
		o.record(req, report, start)
	}()

	if req.SpecPath == "" && req.Question == "" {
		return report, fmt.Errorf("either a spec path or a question is required")
	}

	// The spec is loaded ahead of preflight so its first referenced document
	// can be checked there too. A load failure is deferred: preflight reports
	// a missing file with the rest of the precondition findings.
	var spec *specdoc.Spec
	if req.SpecPath != "" {
		spec, _ = specdoc.Load(req.SpecPath)
	}
	referenceDoc := ""
	if spec != nil && len(spec.RequiredDocs) > 0 {
		referenceDoc = filepath.Join(o.RepoRoot, spec.RequiredDocs[0])
	}

	report.State = types.StatePreflighting
	report.Preflight = preflight.Validate(preflight.Params{
		RepoRoot:         o.RepoRoot,
		SpecPath:         req.SpecPath,
		ReferenceDocPath: referenceDoc,
		AgentCommand:     o.Config.AgentCommand,
		AuthProbeArgs:    o.Config.AuthProbeArgs,
	})
	if !report.Preflight.IsValid() {
		report.State = types.StateBlocked
		report.Reasons = append(report.Reasons, report.Preflight.Errors...)
		return report, nil
	}
	if req.SpecPath != "" && spec == nil {
		report.State = types.StateBlocked
		report.addReason("spec %s could not be read", req.SpecPath)
		return report, nil
	}

	store := decision.NewStore(filepath.Join(o.RepoRoot, o.Config.DecisionsDir))

	if req.Resume && spec != nil {
		return o.resume(report, store, req.SpecPath)
	}

	bundle := prompt.BuildBundle(o.RepoRoot, filepath.Join(o.RepoRoot, o.Config.DocsDir), spec)
	rounds := req.Rounds
	if rounds < 1 {
		rounds = o.Config.Rounds
	}
	promptText := prompt.Build(bundle, types.PanelRequest{
		SpecPath: req.SpecPath,
		Question: req.Question,
		Rounds:   rounds,
		Scope:    req.Scope,
		RepoRoot: o.RepoRoot,
	})

	var extraArgs []string
	if o.Config.AgentSubcommand != "" {
		extraArgs = append(extraArgs, o.Config.AgentSubcommand)
	}
	cmd, err := guard.Build(o.Config.AgentCommand, extraArgs)
	if err != nil {
		report.State = types.StateBlocked
		report.addReason("build agent command: %v", err)
		return report, nil
	}

	report.State = types.StateInvoking
	log.Info("invoking agent: " + cmd.String())
	result, err := o.Runner.Invoke(ctx, agent.Invocation{
		Command: cmd,
		WorkDir: o.RepoRoot,
		Prompt:  promptText,
	})
	report.Invocation = result
	if err != nil {
		if errors.Is(err, agent.ErrCancelled) {
			report.State = types.StateCancelled
			report.addReason("invocation cancelled: %v", err)
			return report, nil
		}
		return report, err
	}
	report.State = types.StateInvoked

	if payload, ok := extract.Extract(result.Stdout); ok {
		report.Payload = payload
	} else {
		report.addReason("no structured payload found in agent output")
	}

	artifactPath := ""
	if spec != nil {
		artifactPath = store.PathFor(req.SpecPath)
		if result.ExitCode == 0 {
			if body, ok := decision.FromOutput(result.Stdout); ok {
				content := decision.Header(req.SpecPath) + body
				if err := store.Write(artifactPath, content); err != nil {
					return report, fmt.Errorf("persist decision: %w", err)
				}
				report.DecisionPath = artifactPath
			}
		}
	}

	report.State = types.StatePostflighting
	report.Postflight = postflight.Validate(postflight.Params{
		Result:               result,
		ExpectedArtifactPath: artifactPath,
		RequirePRURL:         o.Config.RequirePRURL,
	})

	if report.Postflight.IsValid() {
		report.State = types.StateAccepted
	} else {
		report.State = types.StateRejected
		report.Reasons = append(report.Reasons, report.Postflight.Errors...)
	}
	report.Reasons = append(report.Reasons, report.Postflight.Issues...)

	return report, nil
}

// resume accepts the run when a prior decision for the spec exists, and
// blocks it when none does. No subprocess is spawned either way.
func (o *Orchestrator) resume(report *RunReport, store *decision.Store, specPath string) (*RunReport, error) {
	_, found, err := store.Read(specPath)
	if err != nil {
		return report, fmt.Errorf("read prior decision: %w", err)
	}
	if found {
		report.State = types.StateAccepted
		report.addReason("existing decision found; invocation skipped")
		return report, nil
	}
	report.State = types.StateBlocked
	report.addReason("resume requested but no decision exists for %s", specPath)
	return report, nil
}

// record appends the finished run to the ledger. Ledger failures never
// affect the run outcome.
func (o *Orchestrator) record(req Request, report *RunReport, start time.Time) {
	if !report.State.IsTerminal() {
		return
	}
	slug := "question"
	if req.SpecPath != "" {
		slug = specdoc.Slug(req.SpecPath)
	}
	rec := ledger.NewRecord(slug, report.State, start, report.Duration)
	if report.Postflight != nil {
		rec.Branch = report.Postflight.BranchName
		rec.PRURL = report.Postflight.PRURL
	}
	if err := ledger.Append(ledger.Path(o.RepoRoot), rec); err != nil {
		log.Warning(fmt.Sprintf("could not record run in ledger: %v", err))
	}
}
