// Package config provides warden configuration loading. Config is read from
// warden.yaml in the repository root. A missing file returns sane defaults
// without error. CLI flags (bound via cobra) override config file values at
// the highest precedence by mutating the returned struct after loading.
package config

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

// Default values for Config fields.
const (
	DefaultAgentCommand   = "claude"
	DefaultSpecsDir       = "docs/specs"
	DefaultDecisionsDir   = "docs/decisions"
	DefaultDocsDir        = "docs/warden"
	DefaultRounds         = 1
	DefaultTimeoutMinutes = 30
	DefaultRequirePRURL   = false
)

// DefaultAuthProbeArgs is the argument list appended to the agent command to
// probe authentication during preflight. Exit 0 means authenticated.
var DefaultAuthProbeArgs = []string{"auth", "status"}

// Config holds all configuration for the warden CLI.
// It is read from warden.yaml in the repository root.
type Config struct {
	// AgentCommand is the external agent invocation, parsed shell-style
	// (quoted arguments are respected), e.g. `claude -p "use the panel"`.
	AgentCommand string `yaml:"agent_command"`

	// AgentSubcommand is the sub-command token inserted before the guard
	// flags, e.g. "exec". Empty means the agent takes no sub-command.
	AgentSubcommand string `yaml:"agent_subcommand"`

	// AuthProbeArgs replaces the agent command's arguments when probing
	// authentication during preflight.
	AuthProbeArgs []string `yaml:"auth_probe_args"`

	SpecsDir     string `yaml:"specs_dir"`
	DecisionsDir string `yaml:"decisions_dir"`

	// DocsDir holds the on-disk protocol/guardrails/role documents. Files
	// absent from it fall back to the embedded defaults.
	DocsDir string `yaml:"docs_dir"`

	// Rounds is the default panel round count; always at least 1.
	Rounds int `yaml:"rounds"`

	// TimeoutMinutes is the caller-owned deadline for one invocation.
	TimeoutMinutes int `yaml:"timeout_minutes"`

	// RequirePRURL promotes a missing change-request URL in agent output
	// from an advisory issue to a hard rejection.
	RequirePRURL bool `yaml:"require_pr_url"`
}

// defaults returns a Config populated with sane defaults.
func defaults() Config {
	return Config{
		AgentCommand:   DefaultAgentCommand,
		AuthProbeArgs:  append([]string(nil), DefaultAuthProbeArgs...),
		SpecsDir:       DefaultSpecsDir,
		DecisionsDir:   DefaultDecisionsDir,
		DocsDir:        DefaultDocsDir,
		Rounds:         DefaultRounds,
		TimeoutMinutes: DefaultTimeoutMinutes,
		RequirePRURL:   DefaultRequirePRURL,
	}
}

// partialConfig is used during YAML parsing to distinguish between a field
// being absent (nil pointer) and a field being explicitly set to its zero value.
type partialConfig struct {
	AgentCommand    *string   `yaml:"agent_command"`
	AgentSubcommand *string   `yaml:"agent_subcommand"`
	AuthProbeArgs   *[]string `yaml:"auth_probe_args"`
	SpecsDir        *string   `yaml:"specs_dir"`
	DecisionsDir    *string   `yaml:"decisions_dir"`
	DocsDir         *string   `yaml:"docs_dir"`
	Rounds          *int      `yaml:"rounds"`
	TimeoutMinutes  *int      `yaml:"timeout_minutes"`
	RequirePRURL    *bool     `yaml:"require_pr_url"`
}

// Load reads warden.yaml at path and returns a Config.
// If the file does not exist, defaults are returned without error.
// Fields absent from the file are filled with their default values.
// Fields present in the file override the corresponding default.
//
// CLI flag override pattern: cobra binds flags to the returned *Config after
// this call, giving flags the highest precedence automatically.
func Load(path string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &cfg, nil
		}
		return nil, err
	}

	var partial partialConfig
	if err := yaml.Unmarshal(data, &partial); err != nil {
		return nil, err
	}

	if partial.AgentCommand != nil {
		cfg.AgentCommand = *partial.AgentCommand
	}
	if partial.AgentSubcommand != nil {
		cfg.AgentSubcommand = *partial.AgentSubcommand
	}
	if partial.AuthProbeArgs != nil {
		cfg.AuthProbeArgs = *partial.AuthProbeArgs
	}
	if partial.SpecsDir != nil {
		cfg.SpecsDir = *partial.SpecsDir
	}
	if partial.DecisionsDir != nil {
		cfg.DecisionsDir = *partial.DecisionsDir
	}
	if partial.DocsDir != nil {
		cfg.DocsDir = *partial.DocsDir
	}
	if partial.Rounds != nil {
		cfg.Rounds = *partial.Rounds
	}
	if partial.TimeoutMinutes != nil {
		cfg.TimeoutMinutes = *partial.TimeoutMinutes
	}
	if partial.RequirePRURL != nil {
		cfg.RequirePRURL = *partial.RequirePRURL
	}

	if cfg.Rounds < 1 {
		cfg.Rounds = 1
	}

	return &cfg, nil
}
