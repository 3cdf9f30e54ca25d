package analysis

import (
	"encoding/json"
	"strings"
)

// maxDiagnosticChars bounds the raw text kept inside UnparsableReplyError.
const maxDiagnosticChars = 500

// Recover extracts a best-effort decoded value from raw model text. Model
// output is not guaranteed well-formed JSON even when explicitly instructed,
// so each step trades precision for permissiveness, cheapest and most
// precise first:
//
//  1. strip BOM, whitespace and code fences
//  2. direct parse after a normalization pass (straight quotes, trailing
//     commas, comments)
//  3. string-literal-aware balanced bracket walk from the first opener
//  4. naive first-to-last boundary extraction
//
// If every attempt fails, an *UnparsableReplyError carrying the truncated
// original text is returned.
func Recover(raw string) (any, error) {
	text := strings.TrimSpace(strings.TrimPrefix(raw, "\uFEFF"))
	text = stripFences(text)

	if value, err := parseJSON(sanitizeJSON(text)); err == nil {
		return value, nil
	}

	if span, ok := balancedSpan(text); ok {
		if value, err := parseJSON(sanitizeJSON(span)); err == nil {
			return value, nil
		}
	}

	if span, ok := naiveSpan(text); ok {
		if value, err := parseJSON(sanitizeJSON(span)); err == nil {
			return value, nil
		}
	}

	return nil, &UnparsableReplyError{Raw: capRunes(raw, maxDiagnosticChars)}
}

func parseJSON(text string) (any, error) {
	var value any
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	if err := dec.Decode(&value); err != nil {
		return nil, err
	}
	return value, nil
}

// stripFences removes a leading code fence (with optional language tag) and
// its closing counterpart.
func stripFences(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	rest := text[3:]
	if idx := strings.IndexByte(rest, '\n'); idx >= 0 {
		// Drop the fence line together with any language tag on it.
		rest = rest[idx+1:]
	} else {
		rest = strings.TrimPrefix(rest, "json")
	}
	rest = strings.TrimSpace(rest)
	rest = strings.TrimSuffix(rest, "```")
	return strings.TrimSpace(rest)
}

var quoteReplacer = strings.NewReplacer(
	"“", `"`,
	"”", `"`,
	"„", `"`,
	"‘", `'`,
	"’", `'`,
)

// sanitizeJSON applies the normalization pass: typographic quotes become
// straight quotes, comments are stripped and trailing commas removed. The
// comment and comma passes are string-literal aware.
func sanitizeJSON(text string) string {
	text = quoteReplacer.Replace(text)
	text = stripComments(text)
	return stripTrailingCommas(text)
}

func stripComments(text string) string {
	var out strings.Builder
	out.Grow(len(text))
	inString := false
	escaped := false
	for i := 0; i < len(text); i++ {
		ch := text[i]
		if inString {
			out.WriteByte(ch)
			if escaped {
				escaped = false
			} else if ch == '\\' {
				escaped = true
			} else if ch == '"' {
				inString = false
			}
			continue
		}
		switch {
		case ch == '"':
			inString = true
			out.WriteByte(ch)
		case ch == '/' && i+1 < len(text) && text[i+1] == '/':
			for i < len(text) && text[i] != '\n' {
				i++
			}
			if i < len(text) {
				out.WriteByte('\n')
			}
		case ch == '/' && i+1 < len(text) && text[i+1] == '*':
			i += 2
			for i+1 < len(text) && !(text[i] == '*' && text[i+1] == '/') {
				i++
			}
			i++ // skip the closing slash; loop increment skips the star
		default:
			out.WriteByte(ch)
		}
	}
	return out.String()
}

func stripTrailingCommas(text string) string {
	var out strings.Builder
	out.Grow(len(text))
	inString := false
	escaped := false
	for i := 0; i < len(text); i++ {
		ch := text[i]
		if inString {
			out.WriteByte(ch)
			if escaped {
				escaped = false
			} else if ch == '\\' {
				escaped = true
			} else if ch == '"' {
				inString = false
			}
			continue
		}
		if ch == '"' {
			inString = true
			out.WriteByte(ch)
			continue
		}
		if ch == ',' {
			j := i + 1
			for j < len(text) && isJSONSpace(text[j]) {
				j++
			}
			if j < len(text) && (text[j] == '}' || text[j] == ']') {
				continue // drop the comma, keep scanning from the whitespace
			}
		}
		out.WriteByte(ch)
	}
	return out.String()
}

func isJSONSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

// balancedSpan scans for the first opening brace or bracket and walks forward
// tracking nesting depth while respecting string-literal boundaries, until
// depth returns to zero. A naive first-to-last extraction fails whenever the
// surrounding prose contains stray braces inside string values; this walk
// does not.
func balancedSpan(text string) (string, bool) {
	start := strings.IndexAny(text, "{[")
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			if escaped {
				escaped = false
			} else if ch == '\\' {
				escaped = true
			} else if ch == '"' {
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

// naiveSpan takes the substring between the first { and the last } (or the
// bracket pair when no brace pair exists). Last-resort boundary extraction.
func naiveSpan(text string) (string, bool) {
	first := strings.IndexByte(text, '{')
	last := strings.LastIndexByte(text, '}')
	if first >= 0 && last > first {
		return text[first : last+1], true
	}
	first = strings.IndexByte(text, '[')
	last = strings.LastIndexByte(text, ']')
	if first >= 0 && last > first {
		return text[first : last+1], true
	}
	return "", false
}

func capRunes(text string, max int) string {
	runes := []rune(text)
	if max <= 0 || len(runes) <= max {
		return text
	}
	return string(runes[:max])
}
