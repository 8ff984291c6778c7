package templates

import (
	"strings"
	"testing"
)

func TestEmbeddedDocuments(t *testing.T) {
	docs := map[string]string{
		"Protocol":       Protocol,
		"Guardrails":     Guardrails,
		"Workflow":       Workflow,
		"OutputTemplate": OutputTemplate,
	}
	for name, content := range docs {
		if strings.TrimSpace(content) == "" {
			t.Errorf("%s is empty", name)
		}
	}
}

func TestRoles(t *testing.T) {
	for _, name := range RoleNames {
		if Role(name) == "" {
			t.Errorf("embedded role %q is empty", name)
		}
	}
	if Role("no-such-role") != "" {
		t.Error("unknown role should return empty string")
	}
}

func TestOutputTemplateShape(t *testing.T) {
	// The postflight and decision parsers key on these markers; keep the
	// template in sync with them.
	for _, marker := range []string{"```decision", "```json", "Decision:", "Why:", "Checklist:", "Tests:", "Risks:"} {
		if !strings.Contains(OutputTemplate, marker) {
			t.Errorf("output template missing %q", marker)
		}
	}
}

func TestInitFiles(t *testing.T) {
	data, err := Init.ReadFile("init/warden.yaml")
	if err != nil {
		t.Fatalf("read init/warden.yaml: %v", err)
	}
	if !strings.Contains(string(data), "agent_command") {
		t.Error("init warden.yaml missing agent_command")
	}
}
