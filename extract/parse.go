package extract

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/clinscrape/clinscrape"
)

// fencedBlockPattern matches a fenced code block, optionally tagged json.
var fencedBlockPattern = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// braceSpanPattern grabs the largest brace-delimited span in free text.
var braceSpanPattern = regexp.MustCompile(`(?s)\{.*\}`)

// trailingCommaPattern matches a comma directly before a closing bracket or
// brace, a frequent LLM output defect.
var trailingCommaPattern = regexp.MustCompile(`,\s*([}\]])`)

// payload mirrors the JSON object the extraction prompt requests.
// Numeric and list-ish fields are declared loosely because models return
// numbers as strings, strings as arrays, and everything in between; mapping
// coerces them.
type payload struct {
	ClinicName  string           `json:"clinic_name"`
	Category    string           `json:"category"`
	Description string           `json:"description"`
	Products    []productPayload `json:"products"`
}

type productPayload struct {
	Name          string             `json:"product_name"`
	OriginalPrice any                `json:"product_original_price"`
	EventPrice    any                `json:"product_event_price"`
	Description   string             `json:"product_description"`
	Treatments    []treatmentPayload `json:"treatments"`
}

type treatmentPayload struct {
	Name         string `json:"name"`
	Dosage       any    `json:"dosage"`
	Unit         string `json:"unit"`
	Equipments   any    `json:"equipments"`
	Medications  any    `json:"medications"`
	Type         string `json:"treatment_type"`
	Description  string `json:"description"`
	Duration     any    `json:"duration"`
	TargetAreas  any    `json:"target_area"`
	Benefits     any    `json:"benefits"`
	RecoveryTime string `json:"recovery_time"`
}

// parseResponse locates the JSON object in a raw model response and decodes
// it, applying one repair pass if the strict parse fails.
func parseResponse(raw string) (*payload, error) {
	span := extractJSONSpan(raw)
	if span == "" {
		return nil, clinscrape.Errorf(clinscrape.EINVALID, "no JSON object in response")
	}

	var p payload
	if err := json.Unmarshal([]byte(span), &p); err == nil {
		return &p, nil
	}

	repaired := RepairJSON(span)
	if err := json.Unmarshal([]byte(repaired), &p); err != nil {
		return nil, clinscrape.Errorf(clinscrape.EINVALID, "unparseable JSON after repair: %v", err)
	}
	return &p, nil
}

// extractJSONSpan finds the most likely JSON object: a fenced code block
// first, else the largest brace-delimited span.
func extractJSONSpan(raw string) string {
	if m := fencedBlockPattern.FindStringSubmatch(raw); m != nil {
		if inner := strings.TrimSpace(m[1]); strings.HasPrefix(inner, "{") {
			return inner
		}
	}
	return braceSpanPattern.FindString(raw)
}

// RepairJSON applies the two recoveries worth having for LLM output:
// structural truncation (recovers responses cut off mid-generation) and
// trailing comma removal.
func RepairJSON(s string) string {
	s = truncateBalanced(s)
	return trailingCommaPattern.ReplaceAllString(s, "$1")
}

// truncateBalanced walks the input tracking brace/bracket nesting (string
// and escape aware). If the input contains a fully balanced prefix, cut
// there. Otherwise the response was cut off mid-generation: cut back to the
// last complete value, then close the still-open braces and brackets.
func truncateBalanced(s string) string {
	depth := 0
	inString := false
	escaped := false
	lastBalanced := -1

	// stack holds currently open containers; safe/prevSafe mark positions
	// that end a complete value, with the stack depth captured there.
	var stack []byte
	safe, prevSafe := -1, -1
	var safeStack, prevSafeStack []byte

	markSafe := func(i int) {
		prevSafe, prevSafeStack = safe, safeStack
		safe = i
		safeStack = append([]byte(nil), stack...)
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		if inString {
			switch c {
			case '\\':
				escaped = true
			case '"':
				inString = false
				markSafe(i)
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case ':':
			// The quote just marked ended an object key, not a value.
			if safe >= 0 && strings.TrimSpace(s[safe+1:i]) == "" {
				safe, safeStack = prevSafe, prevSafeStack
			}
		case '{', '[':
			depth++
			stack = append(stack, c)
		case '}', ']':
			depth--
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			markSafe(i)
			if depth == 0 {
				lastBalanced = i
			}
		}
	}

	if lastBalanced != -1 {
		return s[:lastBalanced+1]
	}
	if safe == -1 {
		return s
	}

	var b strings.Builder
	b.WriteString(s[:safe+1])
	for i := len(safeStack) - 1; i >= 0; i-- {
		if safeStack[i] == '{' {
			b.WriteByte('}')
		} else {
			b.WriteByte(']')
		}
	}
	return b.String()
}
