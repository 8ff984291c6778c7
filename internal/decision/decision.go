// Package decision persists and parses decision documents.
//
// A decision document lives under the decisions directory as
// <8-digit-date>-<slug>.md: the slug is shared with the spec it answers,
// the date is the UTC write date. Lookup prefers the most recent file
// matching the slug so the agent always sees exactly one current decision
// per spec.
package decision

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/robertgumeny/warden/internal/specdoc"
	"github.com/robertgumeny/warden/internal/types"
)

// Now is the clock used for path derivation and headers.
// It is a package-level variable so tests can pin the date.
var Now = time.Now

// datedName matches <8-digit-date>-<rest>.
var datedName = regexp.MustCompile(`^\d{8}-`)

// fencedDecision matches the fenced block labeled decision in agent output.
var fencedDecision = regexp.MustCompile("(?s)```decision\\s*\\n(.*?)```")

// Store reads and writes decision documents under a fixed directory.
type Store struct {
	Dir string
}

// NewStore returns a Store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{Dir: dir}
}

// PathFor derives the deterministic decision path for a spec: the spec's
// slug (date prefix stripped, so dated and undated spec names derive the
// same slug) combined with today's UTC date under the decisions directory.
func (s *Store) PathFor(specPath string) string {
	slug := specdoc.Slug(specPath)
	name := Now().UTC().Format("20060102") + "-" + slug + ".md"
	return filepath.Join(s.Dir, name)
}

// Header renders the fixed header block written above every decision body:
// the spec reference and the generation timestamp.
func Header(specRef string) string {
	return fmt.Sprintf("Spec: %s\nGenerated: %s\n\n", specRef, Now().UTC().Format(time.RFC3339))
}

// Write persists content at path, creating parent directories and
// overwriting any previous file. The write is atomic: a sibling tmp file is
// renamed over the target in a single call, so writing identical content
// twice is idempotent and a crashed write never leaves a partial document.
func (s *Store) Write(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create decisions directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write temp file %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp) // best-effort cleanup on rename failure
		return fmt.Errorf("rename %s -> %s: %w", tmp, path, err)
	}
	return nil
}

// Read returns the content of the current decision for specPath, preferring
// the most recent dated file matching the slug; two files sharing a date
// fall back to lexicographic order. The boolean is false when no decision
// exists — a normal condition, not an error.
func (s *Store) Read(specPath string) (string, bool, error) {
	slug := specdoc.Slug(specPath)

	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read decisions directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		stripped := strings.TrimSuffix(datedName.ReplaceAllString(name, ""), ".md")
		if stripped == slug && strings.HasSuffix(name, ".md") {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return "", false, nil
	}

	// Dated files outrank undated ones; among dated files the newest date
	// wins; equal dates fall back to lexicographic descending.
	sort.Slice(names, func(i, j int) bool {
		di, dj := sortDate(names[i]), sortDate(names[j])
		if di != dj {
			return di > dj
		}
		return names[i] > names[j]
	})

	data, err := os.ReadFile(filepath.Join(s.Dir, names[0]))
	if err != nil {
		return "", false, fmt.Errorf("read decision %s: %w", names[0], err)
	}
	return string(data), true, nil
}

// sortDate returns the 8-digit date prefix of name, or a sentinel ranking
// undated files below every dated one.
func sortDate(name string) string {
	if datedName.MatchString(name) {
		return name[:8]
	}
	return "00000000"
}

// FromOutput extracts the decision document body from raw agent output: the
// contents of the fenced block labeled decision.
func FromOutput(raw string) (string, bool) {
	m := fencedDecision.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	body := strings.TrimSpace(m[1])
	if body == "" {
		return "", false
	}
	return body + "\n", true
}

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

// sectionNames are the fixed decision document headers, in template order.
var sectionNames = []string{"Decision", "Why", "Checklist", "Tests", "Risks"}

// bulletMarker matches leading list markers on section item lines.
var bulletMarker = regexp.MustCompile(`^(?:[-*+]|\d+[.)])\s+`)

// Parse splits content into the structured decision summary using its fixed
// section headers. Each region runs until the next header. A missing
// section leaves the corresponding field empty rather than failing: partial
// parses are a recoverable condition.
func Parse(content string) *types.DecisionSummary {
	summary := &types.DecisionSummary{}
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")

	current := ""
	var region []string

	flush := func() {
		if current != "" {
			fillSection(summary, current, region)
		}
		region = region[:0]
	}

	for _, line := range lines {
		if name, rest, ok := matchHeader(line); ok {
			flush()
			current = name
			if rest != "" {
				region = append(region, rest)
			}
			continue
		}
		if current != "" {
			region = append(region, line)
		}
	}
	flush()

	return summary
}

// matchHeader reports whether line opens one of the fixed sections,
// returning the section name and any content after the colon.
func matchHeader(line string) (name, rest string, ok bool) {
	trimmed := strings.TrimSpace(line)
	trimmed = strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
	for _, n := range sectionNames {
		if !strings.HasPrefix(trimmed, n+":") {
			continue
		}
		return n, strings.TrimSpace(trimmed[len(n)+1:]), true
	}
	return "", "", false
}

// fillSection stores one region's lines into the matching summary field.
func fillSection(summary *types.DecisionSummary, name string, region []string) {
	switch name {
	case "Decision":
		summary.Decision = strings.TrimSpace(strings.Join(region, "\n"))
	case "Why":
		summary.Why = bulletItems(region)
	case "Checklist":
		summary.Checklist = bulletItems(region)
	case "Tests":
		summary.Tests = bulletItems(region)
	case "Risks":
		summary.Risks = riskRows(region)
	}
}

// bulletItems returns the non-empty lines of region with list markers
// stripped.
func bulletItems(region []string) []string {
	var items []string
	for _, line := range region {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		items = append(items, bulletMarker.ReplaceAllString(line, ""))
	}
	return items
}

// riskRows parses a markdown table of (risk, level, mitigation) triples,
// skipping the header and separator rows.
func riskRows(region []string) []types.Risk {
	var risks []types.Risk
	for _, line := range region {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "|") {
			continue
		}
		cells := splitTableRow(line)
		if len(cells) < 3 {
			continue
		}
		if isSeparatorRow(cells) || strings.EqualFold(cells[0], "risk") {
			continue
		}
		risks = append(risks, types.Risk{
			Description: cells[0],
			Level:       cells[1],
			Mitigation:  cells[2],
		})
	}
	return risks
}

// splitTableRow returns the trimmed cells of a markdown table row.
func splitTableRow(line string) []string {
	line = strings.Trim(line, "|")
	parts := strings.Split(line, "|")
	cells := make([]string, 0, len(parts))
	for _, p := range parts {
		cells = append(cells, strings.TrimSpace(p))
	}
	return cells
}

// isSeparatorRow reports whether every cell is a dash run (|---|---|---|).
func isSeparatorRow(cells []string) bool {
	for _, c := range cells {
		if strings.Trim(c, "-: ") != "" {
			return false
		}
	}
	return true
}
