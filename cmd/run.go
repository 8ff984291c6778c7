package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/robertgumeny/warden/internal/config"
	"github.com/robertgumeny/warden/internal/log"
	"github.com/robertgumeny/warden/internal/orchestrator"
	"github.com/robertgumeny/warden/internal/types"
)

// runFlags holds CLI flag values that override warden.yaml config settings.
// Only flags explicitly changed by the user are applied (checked via cmd.Flags().Changed).
var runFlags struct {
	agentCommand string
	question     string
	rounds       int
	scope        string
	timeout      int
	resume       bool
	requirePRURL bool
}

var runCmd = &cobra.Command{
	Use:   "run [spec]",
	Short: "Run one guarded agent invocation",
	Long: "Run one guarded invocation against a task spec, or against a freeform\n" +
		"question when --question is given instead of a spec argument.",
	Args: cobra.MaximumNArgs(1),
	RunE: runGuarded,
}

func init() {
	runCmd.Flags().StringVar(&runFlags.agentCommand, "agent", "", "override agent_command from warden.yaml")
	runCmd.Flags().StringVar(&runFlags.question, "question", "", "freeform question to put to the panel instead of a spec")
	runCmd.Flags().IntVar(&runFlags.rounds, "rounds", 0, "override the panel round count")
	runCmd.Flags().StringVar(&runFlags.scope, "scope", "", "restrict the panel's attention to a path prefix")
	runCmd.Flags().IntVar(&runFlags.timeout, "timeout", 0, "override timeout_minutes from warden.yaml")
	runCmd.Flags().BoolVar(&runFlags.resume, "resume", false, "accept an existing decision instead of invoking the agent")
	runCmd.Flags().BoolVar(&runFlags.requirePRURL, "require-pr-url", false, "override require_pr_url from warden.yaml")
}

// runGuarded drives one full run: config, preflight, invocation, postflight.
// A non-accepted terminal state returns an error so cobra exits with code 1.
func runGuarded(cmd *cobra.Command, args []string) error {
	repoRoot, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	cfg, err := config.Load(filepath.Join(repoRoot, "warden.yaml"))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Apply CLI flag overrides — only when the user explicitly set the flag.
	if cmd.Flags().Changed("agent") {
		cfg.AgentCommand = runFlags.agentCommand
	}
	if cmd.Flags().Changed("timeout") {
		cfg.TimeoutMinutes = runFlags.timeout
	}
	if cmd.Flags().Changed("require-pr-url") {
		cfg.RequirePRURL = runFlags.requirePRURL
	}

	req := orchestrator.Request{
		Question: runFlags.question,
		Rounds:   runFlags.rounds,
		Scope:    runFlags.scope,
		Resume:   runFlags.resume,
	}
	if len(args) == 1 {
		req.SpecPath = resolveSpecPath(repoRoot, cfg.SpecsDir, args[0])
	}
	if req.SpecPath == "" && req.Question == "" {
		return fmt.Errorf("a spec argument or --question is required")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	if cfg.TimeoutMinutes > 0 {
		var tcancel context.CancelFunc
		ctx, tcancel = context.WithTimeout(ctx, time.Duration(cfg.TimeoutMinutes)*time.Minute)
		defer tcancel()
	}

	report, err := orchestrator.New(cfg, repoRoot).Run(ctx, req)
	if err != nil {
		return err
	}
	return renderReport(report)
}

// resolveSpecPath resolves a spec argument: an existing path is used as
// given; a bare name is looked up under the specs directory.
func resolveSpecPath(repoRoot, specsDir, arg string) string {
	if _, err := os.Stat(arg); err == nil {
		return arg
	}
	if !strings.ContainsRune(arg, os.PathSeparator) {
		candidate := filepath.Join(repoRoot, specsDir, arg)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return arg
}

// renderReport prints the run outcome and converts non-accepted terminal
// states into an error so the process exits non-zero.
func renderReport(report *orchestrator.RunReport) error {
	if report.Preflight != nil {
		for _, w := range report.Preflight.Warnings {
			log.Warning(w)
		}
	}

	log.Section(fmt.Sprintf("RUN %s — %s", report.State, report.Duration.Round(time.Second)))

	if report.DecisionPath != "" {
		log.Info("decision written to " + report.DecisionPath)
	}
	if report.Payload != nil && report.Payload.Report != nil {
		log.Info("agent report: " + string(report.Payload.Report.Status) + " — " + report.Payload.Report.Summary)
	}

	if report.State == types.StateAccepted {
		log.Success("run accepted")
		return nil
	}

	for _, reason := range report.Reasons {
		log.Error(reason)
	}
	if report.Invocation != nil && report.Invocation.Stderr != "" {
		log.Error("agent stderr: " + strings.TrimSpace(report.Invocation.Stderr))
	}
	return fmt.Errorf("run ended %s", report.State)
}
