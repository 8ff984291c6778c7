// Package prompt assembles the panel prompt from heterogeneous documents.
//
// Assembly order is deterministic: protocol, roles (stable order),
// guardrails, project context, the spec, the documents the spec references,
// the parameter block, the workflow instructions, and the required output
// template. The bundle is built once per invocation and discarded after
// assembly.
package prompt

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/robertgumeny/warden/internal/specdoc"
	"github.com/robertgumeny/warden/internal/templates"
	"github.com/robertgumeny/warden/internal/types"
)

// Bundle is an insertion-ordered mapping from a human-readable label to
// document text.
type Bundle struct {
	entries []entry
}

type entry struct {
	label string
	text  string
}

// Add appends a labeled document. Empty documents are dropped.
func (b *Bundle) Add(label, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	b.entries = append(b.entries, entry{label: label, text: text})
}

// Len returns the number of documents in the bundle.
func (b *Bundle) Len() int { return len(b.entries) }

// Labels returns the document labels in insertion order.
func (b *Bundle) Labels() []string {
	out := make([]string, len(b.entries))
	for i, e := range b.entries {
		out[i] = e.label
	}
	return out
}

// BuildBundle assembles the context bundle for one request. Repository
// copies of the protocol documents under docsDir take precedence over the
// embedded defaults; a missing project-context document is skipped silently.
// spec may be nil in freeform question mode.
func BuildBundle(repoRoot, docsDir string, spec *specdoc.Spec) *Bundle {
	b := &Bundle{}

	b.Add("Panel Protocol", readOrFallback(filepath.Join(docsDir, "protocol.md"), templates.Protocol))

	for _, name := range roleNames(docsDir) {
		text := readOrFallback(filepath.Join(docsDir, "roles", name+".md"), templates.Role(name))
		b.Add("Role: "+name, text)
	}

	b.Add("Guardrails", readOrFallback(filepath.Join(docsDir, "guardrails.md"), templates.Guardrails))

	if data, err := os.ReadFile(filepath.Join(docsDir, "CONTEXT.md")); err == nil {
		b.Add("Project Context", string(data))
	}

	if spec != nil {
		b.Add("Task Spec", spec.Content)
		for _, abs := range spec.ResolveRequiredDocs(repoRoot) {
			if data, err := os.ReadFile(abs); err == nil {
				rel, relErr := filepath.Rel(repoRoot, abs)
				if relErr != nil {
					rel = abs
				}
				b.Add("Referenced: "+rel, string(data))
			}
		}
	}

	return b
}

// roleNames returns the role set in stable order: on-disk roles sorted by
// file name when the repository carries any, otherwise the embedded
// defaults in their fixed order.
func roleNames(docsDir string) []string {
	dirEntries, err := os.ReadDir(filepath.Join(docsDir, "roles"))
	if err != nil {
		return templates.RoleNames
	}
	var names []string
	for _, e := range dirEntries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".md"))
	}
	if len(names) == 0 {
		return templates.RoleNames
	}
	sort.Strings(names)
	return names
}

// readOrFallback returns the file's contents, or fallback when it is absent.
func readOrFallback(path, fallback string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return fallback
	}
	return string(data)
}

// Build renders the final prompt text: every bundle document under its
// label, then the parameter block, the workflow instructions, and the
// required output template.
func Build(b *Bundle, req types.PanelRequest) string {
	var sb strings.Builder

	for _, e := range b.entries {
		sb.WriteString("## " + e.label + "\n\n")
		sb.WriteString(strings.TrimRight(e.text, "\n"))
		sb.WriteString("\n\n")
	}

	rounds := req.Rounds
	if rounds < 1 {
		rounds = 1
	}

	sb.WriteString("## Parameters\n\n")
	if req.Question != "" {
		sb.WriteString(fmt.Sprintf("Question: %s\n", req.Question))
	}
	sb.WriteString(fmt.Sprintf("Rounds: %d\n", rounds))
	if req.Scope != "" {
		sb.WriteString(fmt.Sprintf("Scope: %s\n", req.Scope))
	}
	sb.WriteString("\n")

	sb.WriteString(strings.TrimRight(templates.Workflow, "\n"))
	sb.WriteString("\n\n")
	sb.WriteString(strings.TrimRight(templates.OutputTemplate, "\n"))
	sb.WriteString("\n")

	return sb.String()
}
