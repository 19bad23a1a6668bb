package services

import (
	"strings"
)

var textEscaper = strings.NewReplacer(
	"\n", "\\n",
	"\r", "\\r",
	"\t", "\\t",
	"\"", "\\\"",
	"\b", "\\b",
	"\f", "\\f",
)

// EscapeText escapes control characters and quotes in stored free text
// so it can be embedded safely in structured responses.
func EscapeText(text string) string {
	if text == "" {
		return text
	}
	return strings.TrimSpace(textEscaper.Replace(text))
}

// trimmedQuery normalizes a search query; anything shorter than two
// characters yields "" and the caller returns no results.
func trimmedQuery(q string) string {
	q = strings.TrimSpace(q)
	if len(q) < 2 {
		return ""
	}
	return q
}

var textFlattener = strings.NewReplacer(
	"\n", " ",
	"\r", " ",
	"\t", " ",
)

// FlattenText collapses control characters to spaces for single-line
// listing output. Empty input comes back as "N/A".
func FlattenText(text string) string {
	if text == "" {
		return "N/A"
	}
	return strings.TrimSpace(textFlattener.Replace(text))
}
