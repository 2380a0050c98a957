// Package sanitize turns raw model answers into JSON objects the rest of the
// pipeline can trust. Models wrap answers in markdown fences, add prose
// around the payload, and occasionally emit no JSON at all; every path out of
// this package still yields a decodable object.
package sanitize

import (
	"encoding/json"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// EmptyObject is the sentinel returned when no JSON object can be carved out
// of an answer. Downstream sections treat it as "nothing extracted".
const EmptyObject = "{}"

// Clean reduces a raw model answer to its JSON object payload:
//
//  1. trim surrounding whitespace
//  2. strip a leading ```json / ``` fence and a trailing ``` fence
//  3. keep the span from the first '{' to the last '}' inclusive
//
// The brace scan is deliberately greedy so that prose before and after the
// object is dropped while nested objects survive intact. When no such span
// exists, Clean returns EmptyObject.
func Clean(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```json") {
		s = strings.TrimSpace(s[len("```json"):])
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimSpace(s[len("```"):])
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSpace(s[:len(s)-len("```")])
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return EmptyObject
	}
	return s[start : end+1]
}

// ParseObject cleans a raw answer and decodes it into a generic object.
// Decoding tries standard JSON first, then json-repair, then Hjson as the
// most lenient fallback. Any answer that defeats all three collapses to an
// empty object; extraction failures are per-section data gaps, not fatal
// errors.
func ParseObject(raw string) map[string]interface{} {
	cleaned := Clean(raw)

	var out map[string]interface{}
	if err := json.Unmarshal([]byte(cleaned), &out); err == nil {
		return out
	}

	if repaired, err := jsonrepair.RepairJSON(cleaned); err == nil {
		if err := json.Unmarshal([]byte(repaired), &out); err == nil && out != nil {
			return out
		}
	}

	var lenient map[string]interface{}
	if err := hjson.Unmarshal([]byte(cleaned), &lenient); err == nil && lenient != nil {
		return lenient
	}

	return map[string]interface{}{}
}
