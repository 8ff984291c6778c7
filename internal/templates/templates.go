// Package templates holds the embedded documents used by the warden CLI.
// All files are compiled into the binary at build time via //go:embed.
//
// Two subdirectories serve different purposes:
//
//   - runtime/ — the default protocol, guardrails, role, and output-template
//     documents used for prompt assembly when the repository does not carry
//     its own copies under the docs directory.
//
//   - init/ — files stamped into a repository by `warden init`. Copied as-is.
package templates

import "embed"

// Runtime holds the default prompt-assembly documents.
//
//go:embed runtime
var Runtime embed.FS

// Init holds files copied to the target repository by `warden init`.
//
//go:embed init
var Init embed.FS

// Protocol is the fixed panel protocol definition.
//
//go:embed runtime/protocol.md
var Protocol string

// Guardrails is the fixed guardrails policy document.
//
//go:embed runtime/guardrails.md
var Guardrails string

// Workflow is the stage-by-stage workflow instruction block appended to
// every prompt.
//
//go:embed runtime/workflow.md
var Workflow string

// OutputTemplate is the required output format appended to every prompt.
//
//go:embed runtime/output_template.md
var OutputTemplate string

// RoleNames lists the embedded default roles in their fixed prompt order.
var RoleNames = []string{"architect", "reviewer"}

// Role returns the embedded role document for name, or "" if unknown.
func Role(name string) string {
	data, err := Runtime.ReadFile("runtime/roles/" + name + ".md")
	if err != nil {
		return ""
	}
	return string(data)
}
