// Package ledger records one entry per orchestrator run in
// .warden/runs.yaml and renders the run history for `warden status`.
//
// All writes are atomic: data is marshalled to a .tmp file in the same
// directory, then os.Rename replaces the target in a single kernel call.
package ledger

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"

	"github.com/robertgumeny/warden/internal/types"
)

// Record is one completed orchestrator run.
type Record struct {
	ID              string `yaml:"id"`
	SpecSlug        string `yaml:"spec_slug"`
	State           string `yaml:"state"`
	DurationSeconds int    `yaml:"duration_seconds"`
	StartedAt       string `yaml:"started_at"`
	Branch          string `yaml:"branch,omitempty"`
	PRURL           string `yaml:"pr_url,omitempty"`
}

// File mirrors the full structure of runs.yaml.
type File struct {
	Runs []Record `yaml:"runs"`
}

// Path returns the ledger location for a repository root.
func Path(repoRoot string) string {
	return filepath.Join(repoRoot, ".warden", "runs.yaml")
}

// NewRecord builds a Record for a finished run.
func NewRecord(slug string, state types.RunState, startedAt time.Time, duration time.Duration) Record {
	return Record{
		ID:              uuid.NewString(),
		SpecSlug:        slug,
		State:           string(state),
		DurationSeconds: int(duration.Seconds()),
		StartedAt:       startedAt.UTC().Format(time.RFC3339),
	}
}

// Load reads the ledger at path. A missing file is an empty ledger, not an
// error.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &File{}, nil
		}
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse ledger %s: %w", path, err)
	}
	return &f, nil
}

// Append loads the ledger, appends rec, and writes it back atomically.
func Append(path string, rec Record) error {
	f, err := Load(path)
	if err != nil {
		return err
	}
	f.Runs = append(f.Runs, rec)

	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshal ledger: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create ledger directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename %s -> %s: %w", tmp, path, err)
	}
	return nil
}

// Render returns the run history as a text table, newest run last.
func Render(f *File) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Run", "Spec", "State", "Duration", "Started", "Branch", "PR"})
	for _, r := range f.Runs {
		t.AppendRow(table.Row{
			shortID(r.ID), r.SpecSlug, r.State,
			fmt.Sprintf("%ds", r.DurationSeconds),
			r.StartedAt, r.Branch, r.PRURL,
		})
	}
	return t.Render()
}

// shortID truncates a run id for display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
