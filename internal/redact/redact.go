// Package redact masks credential-shaped substrings before text is persisted.
package redact

import "regexp"

// Marker replaces every redacted substring. It must never itself match any
// pattern below, which is what makes Redact idempotent.
const Marker = "[REDACTED]"

// Whole-match patterns, applied in order. PEM blocks go first so their inner
// base64 lines are not chewed up piecemeal by the later run patterns.
var wholePatterns = []*regexp.Regexp{
	// PEM-style key and certificate blocks.
	regexp.MustCompile(`(?s)-----BEGIN [A-Z0-9 ]+-----.*?-----END [A-Z0-9 ]+-----`),
	// Vendor-prefixed key literals: fixed prefix plus a long body.
	regexp.MustCompile(`\bsk-[A-Za-z0-9_-]{20,}`),
	regexp.MustCompile(`\bgithub_pat_[A-Za-z0-9_]{20,}`),
	regexp.MustCompile(`\bgh[pousr]_[A-Za-z0-9]{20,}`),
	regexp.MustCompile(`\bglpat-[A-Za-z0-9_-]{20,}`),
	regexp.MustCompile(`\bxox[abprs]-[A-Za-z0-9-]{10,}`),
	regexp.MustCompile(`\bAKIA[A-Z0-9]{16}\b`),
	regexp.MustCompile(`\bAIza[A-Za-z0-9_-]{30,}`),
	// Bearer-token strings.
	regexp.MustCompile(`(?i)\bbearer\s+[A-Za-z0-9._~+/-]{20,}={0,2}`),
}

// Labeled secret assignments keep the label and mask only the value.
var labeledPattern = regexp.MustCompile(
	`(?i)\b((?:api[_ -]?key|client[_ -]?secret|secret|token|password|passwd)\s*[:=]\s*)["']?[A-Za-z0-9._~+/=-]{8,}["']?`)

// Long runs need non-alphanumeric context on both sides so ordinary prose is
// not clipped. Go regexp has no lookaround, so the boundary characters are
// captured and restored.
var (
	hexRunPattern    = regexp.MustCompile(`(^|[^A-Za-z0-9])([A-Fa-f0-9]{40,})($|[^A-Za-z0-9])`)
	base64RunPattern = regexp.MustCompile(`(^|[^A-Za-z0-9+/=])([A-Za-z0-9+/]{48,}={0,2})($|[^A-Za-z0-9+/=])`)
)

// Redact returns text with every credential-shaped substring replaced by
// Marker. It is idempotent and never fails: unredactable input comes back
// unchanged.
func Redact(text string) string {
	if text == "" {
		return text
	}
	for _, p := range wholePatterns {
		text = p.ReplaceAllString(text, Marker)
	}
	text = labeledPattern.ReplaceAllString(text, "${1}"+Marker)
	// Run twice: adjacent runs can share a single boundary character, and
	// the capture consumes it on the first pass.
	for i := 0; i < 2; i++ {
		text = hexRunPattern.ReplaceAllString(text, "${1}"+Marker+"${3}")
		text = base64RunPattern.ReplaceAllString(text, "${1}"+Marker+"${3}")
	}
	return text
}
