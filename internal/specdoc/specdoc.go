// Package specdoc reads task spec documents and derives their identity.
//
// Specs live under the specs directory, named <8-digit-date>-<slug>.<ext>,
// with fixed section headers (Scope Paths, Required Docs, Summary,
// Acceptance Criteria, Non-Goals, Test Plan, Notes). Parsing is tolerant:
// section items may be comma- or newline-separated, with optional leading
// bullet markers, and any section may be absent.
package specdoc

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// datePrefix matches the leading 8-digit date in spec file names.
var datePrefix = regexp.MustCompile(`^\d{8}-`)

// bulletMarker matches optional leading list markers on section item lines.
var bulletMarker = regexp.MustCompile(`^(?:[-*+]|\d+[.)])\s+`)

// Spec is one loaded task specification.
type Spec struct {
	Path    string
	Slug    string
	Content string

	Summary      string
	ScopePaths   []string
	RequiredDocs []string
}

// Slug derives the normalized identifier from a spec path. A leading
// 8-digit date prefix is stripped so that re-deriving the slug from either
// a dated or undated spec name is idempotent.
func Slug(specPath string) string {
	base := filepath.Base(specPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return datePrefix.ReplaceAllString(base, "")
}

// Load reads and parses the spec at path.
func Load(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read spec %s: %w", path, err)
	}

	content := strings.ReplaceAll(string(data), "\r\n", "\n")
	s := &Spec{
		Path:    path,
		Slug:    Slug(path),
		Content: content,
	}

	s.Summary = strings.TrimSpace(strings.Join(sectionLines(content, "Summary"), "\n"))
	s.ScopePaths = sectionItems(content, "Scope Paths")
	s.RequiredDocs = sectionItems(content, "Required Docs")

	return s, nil
}

// ResolveRequiredDocs resolves each Required Docs entry relative to
// repoRoot, silently skipping entries that do not resolve to an existing
// file. Missing referenced docs are a soft condition: specs are allowed to
// list aspirational documentation.
func (s *Spec) ResolveRequiredDocs(repoRoot string) []string {
	var out []string
	for _, rel := range s.RequiredDocs {
		abs := filepath.Join(repoRoot, rel)
		if info, err := os.Stat(abs); err == nil && !info.IsDir() {
			out = append(out, abs)
		}
	}
	return out
}

// isHeader reports whether line opens the named section: the section name
// with an optional colon, optionally behind markdown heading markers.
func isHeader(line, name string) bool {
	trimmed := strings.TrimSpace(line)
	trimmed = strings.TrimLeft(trimmed, "#")
	trimmed = strings.TrimSpace(trimmed)
	trimmed = strings.TrimSuffix(trimmed, ":")
	return strings.EqualFold(trimmed, name)
}

// isAnyHeader reports whether line opens any known spec section.
func isAnyHeader(line string) bool {
	for _, name := range []string{
		"Scope Paths", "Required Docs", "Summary",
		"Acceptance Criteria", "Non-Goals", "Test Plan", "Notes",
	} {
		if isHeader(line, name) {
			return true
		}
	}
	return false
}

// sectionLines returns the raw lines of the named section, ending at the
// next known header. Returns nil when the section is absent.
func sectionLines(content, name string) []string {
	lines := strings.Split(content, "\n")
	var out []string
	inSection := false
	for _, line := range lines {
		if isHeader(line, name) {
			inSection = true
			continue
		}
		if inSection && isAnyHeader(line) {
			break
		}
		if inSection {
			out = append(out, line)
		}
	}
	return out
}

// sectionItems splits the named section into individual entries: one per
// line or comma-separated, with bullet markers stripped.
func sectionItems(content, name string) []string {
	var items []string
	for _, line := range sectionLines(content, name) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		line = bulletMarker.ReplaceAllString(line, "")
		for _, part := range strings.Split(line, ",") {
			if part = strings.TrimSpace(part); part != "" {
				items = append(items, part)
			}
		}
	}
	return items
}
