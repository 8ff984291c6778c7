// Package extract recovers the structured payload embedded in the agent's
// free-form stdout.
//
// Agent output is prose with a JSON block somewhere inside it. Extraction is
// layered: a fenced block explicitly labeled json, then the first balanced
// top-level brace span found by a running depth counter, then a naive
// first-to-last brace span. Each candidate is attempted against the target
// schema; the first that deserializes wins. Candidates that are close to
// JSON but malformed get one repair pass before being discarded.
package extract

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"github.com/robertgumeny/warden/internal/types"
)

// Payload is the tagged union of "known schema" vs "opaque object". Raw
// always holds the exact extracted span; Report is non-nil only when the
// span binds to the agent report schema and passes validation.
type Payload struct {
	Raw    string
	Fields map[string]any
	Report *types.AgentReport
}

// fencedJSON matches the first fenced block explicitly labeled json.
var fencedJSON = regexp.MustCompile("(?s)```json\\s*\\n(.*?)```")

// Extract returns the best structured payload candidate found in raw, or
// (nil, false) when nothing parses. A false return is a normal, expected
// outcome: the caller must surface the raw text for manual inspection, not
// retry silently.
func Extract(raw string) (*Payload, bool) {
	for _, candidate := range candidates(raw) {
		if p := attempt(candidate); p != nil {
			return p, true
		}
	}
	return nil, false
}

// candidates returns the extraction attempts in strategy order, skipping
// empty spans.
func candidates(raw string) []string {
	var out []string
	if m := fencedJSON.FindStringSubmatch(raw); m != nil {
		out = append(out, strings.TrimSpace(m[1]))
	}
	if span := balancedSpan(raw); span != "" {
		out = append(out, span)
	}
	if span := naiveSpan(raw); span != "" {
		out = append(out, span)
	}
	return out
}

// attempt parses candidate into a JSON object, repairing once on failure,
// then tries to bind the agent report schema on top of the generic form.
func attempt(candidate string) *Payload {
	fields, ok := parseObject(candidate)
	if !ok {
		repaired, err := jsonrepair.JSONRepair(candidate)
		if err != nil {
			return nil
		}
		if fields, ok = parseObject(repaired); !ok {
			return nil
		}
		candidate = repaired
	}

	p := &Payload{Raw: candidate, Fields: fields}

	var report types.AgentReport
	if err := json.Unmarshal([]byte(candidate), &report); err == nil {
		if report.Validate() == nil {
			p.Report = &report
		}
	}
	return p
}

// parseObject unmarshals s and requires the result to be a JSON object.
// Scalars and arrays are rejected: the payload contract is an object.
func parseObject(s string) (map[string]any, bool) {
	var fields map[string]any
	if err := json.Unmarshal([]byte(s), &fields); err != nil {
		return nil, false
	}
	return fields, true
}

// balancedSpan returns the first top-level balanced brace span in s, found
// with a running depth counter that is string- and escape-aware. Unlike
// naive first/last matching, this extracts the outer object even when the
// surrounding prose contains stray braces after it.
func balancedSpan(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

// naiveSpan is the last-resort strategy: everything from the first opening
// brace to the last closing brace.
func naiveSpan(s string) string {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}
