package app

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// TextExtractor turns uploaded bytes into raw text. Parsing internals are a
// collaborator concern; the service only sees the extracted string.
type TextExtractor interface {
	Extract(data []byte, kind string) (string, error)
}

// ParseError marks a failed or unsupported extraction.
type ParseError struct {
	Kind string
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %s", e.Kind, e.Msg)
}

// PlainTextExtractor handles txt and md uploads. Binary formats need a real
// parser wired in its place.
type PlainTextExtractor struct{}

func (PlainTextExtractor) Extract(data []byte, kind string) (string, error) {
	switch kind {
	case "txt", "md":
		return string(data), nil
	default:
		return "", &ParseError{Kind: kind, Msg: "no extractor for this format"}
	}
}

var (
	spaceRuns   = regexp.MustCompile(`[ \t]+`)
	newlineRuns = regexp.MustCompile(`\n{3,}`)
)

// NormalizeText cleans extracted text before it is sized for generation:
// NUL bytes dropped, CRLF folded to LF, space runs collapsed, 3+ blank
// lines reduced to one, surrounding whitespace trimmed.
func NormalizeText(text string) string {
	text = strings.ReplaceAll(text, "\x00", "")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = spaceRuns.ReplaceAllString(text, " ")
	text = newlineRuns.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// TruncationMarker flags content cut at the generation size limit;
// truncation is never silent.
const TruncationMarker = "\n\n[Content truncated...]"

// TruncateContent caps text at maxChars bytes, appending the truncation
// marker when anything was dropped. The cut backs off to a rune boundary.
func TruncateContent(text string, maxChars int) string {
	if maxChars <= 0 || len(text) <= maxChars {
		return text
	}
	cut := maxChars
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + TruncationMarker
}
