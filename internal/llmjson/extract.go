// Package llmjson recovers a JSON object from noisy model output: fenced
// code blocks, surrounding prose, and stray control characters that
// commonly corrupt streamed completions.
package llmjson

import (
  "encoding/json"
  "fmt"
  "regexp"
  "strings"
)

var (
  jsonFenceRe = regexp.MustCompile("(?s)```json\\s*(.+?)\\s*```")
  anyFenceRe  = regexp.MustCompile("(?s)```\\s*(.+?)\\s*```")
  braceSpanRe = regexp.MustCompile(`(?s)(\{.*\})`)
  // C0 controls except \t \n \r, plus DEL. Whitespace inside string
  // values survives; the bytes that break json.Unmarshal do not.
  controlRe = regexp.MustCompile("[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]")
)

// candidate picks the most promising JSON substring. Fenced blocks win
// over brute-force brace scanning so that example objects embedded in
// prose outside the fence are skipped.
func candidate(raw string) string {
  if m := jsonFenceRe.FindStringSubmatch(raw); m != nil {
    return strings.TrimSpace(m[1])
  }
  if m := anyFenceRe.FindStringSubmatch(raw); m != nil {
    return strings.TrimSpace(m[1])
  }
  trimmed := strings.TrimSpace(raw)
  if strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}") {
    return trimmed
  }
  if m := braceSpanRe.FindStringSubmatch(raw); m != nil {
    return m[1]
  }
  // No candidate found: parse the raw text so the caller gets a real
  // syntax error instead of a silent nil.
  return raw
}

func clean(s string) string {
  return controlRe.ReplaceAllString(s, "")
}

// Extract locates and parses a JSON object inside raw model output.
// It never re-prompts; deciding whether a failed parse warrants another
// model call belongs to the orchestrator.
func Extract(raw string) (map[string]any, error) {
  var obj map[string]any
  if err := json.Unmarshal([]byte(clean(candidate(raw))), &obj); err != nil {
    return nil, fmt.Errorf("parse model JSON: %w", err)
  }
  return obj, nil
}

// Decode is Extract for a typed destination.
func Decode(raw string, out any) error {
  if err := json.Unmarshal([]byte(clean(candidate(raw))), out); err != nil {
    return fmt.Errorf("parse model JSON: %w", err)
  }
  return nil
}
