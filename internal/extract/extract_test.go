package extract

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/robertgumeny/warden/internal/types"
)

func TestExtract(t *testing.T) {
	t.Run("labeled fenced block wins", func(t *testing.T) {
		raw := "Working...\n```json\n{\"ok\":true}\n```\nDone. branch: task/12-add-auth https://host/pr/12\n"
		p, ok := Extract(raw)
		if !ok {
			t.Fatal("expected a payload")
		}
		if p.Raw != `{"ok":true}` {
			t.Errorf("Raw = %q", p.Raw)
		}
		if p.Fields["ok"] != true {
			t.Errorf("Fields = %v", p.Fields)
		}
		if p.Report != nil {
			t.Error("payload without a status field must stay opaque")
		}
	})

	t.Run("payload is byte-for-byte equivalent to direct parsing", func(t *testing.T) {
		payload := `{"status":"success","summary":"added auth","branch":"task/12-add-auth"}`
		raw := "Thinking hard about it.\n\n" + payload + "\n\nAll done."
		p, ok := Extract(raw)
		if !ok {
			t.Fatal("expected a payload")
		}
		if p.Raw != payload {
			t.Errorf("Raw = %q, want %q", p.Raw, payload)
		}

		var direct map[string]any
		if err := json.Unmarshal([]byte(payload), &direct); err != nil {
			t.Fatalf("direct parse: %v", err)
		}
		if !reflect.DeepEqual(p.Fields, direct) {
			t.Errorf("Fields = %v, want %v", p.Fields, direct)
		}
	})

	t.Run("report schema binds when status is present", func(t *testing.T) {
		raw := `prefix {"status":"success","summary":"done","pr_url":"https://host/pr/9"} suffix`
		p, ok := Extract(raw)
		if !ok {
			t.Fatal("expected a payload")
		}
		if p.Report == nil {
			t.Fatal("expected the report schema to bind")
		}
		if p.Report.Status != types.ReportSuccess || p.Report.PRURL != "https://host/pr/9" {
			t.Errorf("Report = %+v", p.Report)
		}
	})

	t.Run("depth counter extracts the outer span of nested structures", func(t *testing.T) {
		raw := `note {"status":"failed","summary":"x","nested":{"a":{"b":1}}} trailing } brace`
		p, ok := Extract(raw)
		if !ok {
			t.Fatal("expected a payload")
		}

		// Round-trip property: re-serializing and reparsing the extracted
		// span yields the same structured value.
		reserialized, err := json.Marshal(p.Fields)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		var again map[string]any
		if err := json.Unmarshal(reserialized, &again); err != nil {
			t.Fatalf("reparse: %v", err)
		}
		if !reflect.DeepEqual(again, p.Fields) {
			t.Error("round trip changed the structured value")
		}

		nested, ok := p.Fields["nested"].(map[string]any)
		if !ok {
			t.Fatal("outer span should include the nested object")
		}
		if _, ok := nested["a"]; !ok {
			t.Error("nested object lost inner keys")
		}
	})

	t.Run("braces inside strings do not confuse the depth counter", func(t *testing.T) {
		raw := `{"summary":"uses {braces} and \"quotes\"","status":"success"}`
		p, ok := Extract(raw)
		if !ok {
			t.Fatal("expected a payload")
		}
		if p.Fields["summary"] != `uses {braces} and "quotes"` {
			t.Errorf("summary = %v", p.Fields["summary"])
		}
	})

	t.Run("near-JSON is repaired", func(t *testing.T) {
		raw := "result: {\"status\": \"success\", \"summary\": \"trailing comma\",}\n"
		p, ok := Extract(raw)
		if !ok {
			t.Fatal("expected repair to rescue the candidate")
		}
		if p.Report == nil || p.Report.Summary != "trailing comma" {
			t.Errorf("payload = %+v", p)
		}
	})

	t.Run("prose with no payload returns none", func(t *testing.T) {
		if _, ok := Extract("I could not complete the task, sorry."); ok {
			t.Error("expected no payload")
		}
	})

	t.Run("empty input returns none", func(t *testing.T) {
		if _, ok := Extract(""); ok {
			t.Error("expected no payload")
		}
	})

	t.Run("arrays are not valid payloads", func(t *testing.T) {
		if _, ok := Extract(`[1, 2, 3]`); ok {
			t.Error("payload contract requires an object")
		}
	})
}

func TestBalancedSpan(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"simple", `x {"a":1} y`, `{"a":1}`},
		{"nested", `{"a":{"b":2}} }`, `{"a":{"b":2}}`},
		{"unterminated", `{"a":1`, ""},
		{"no brace", "plain text", ""},
		{"brace in string", `{"a":"}"} tail`, `{"a":"}"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := balancedSpan(tc.input); got != tc.want {
				t.Errorf("balancedSpan(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}
