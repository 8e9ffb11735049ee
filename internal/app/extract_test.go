package app_test

import (
	"strings"
	"testing"

	"github.com/0x3st/quizit/internal/app"
)

func TestNormalizeText(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"a\r\nb", "a\nb"},
		{"a\x00b", "ab"},
		{"a  \t b", "a b"},
		{"a\n\n\n\nb", "a\n\nb"},
		{"  padded  ", "padded"},
		{"a\n\nb", "a\n\nb"},
	}
	for _, tc := range cases {
		if got := app.NormalizeText(tc.in); got != tc.want {
			t.Fatalf("NormalizeText(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTruncateContent(t *testing.T) {
	if got := app.TruncateContent("short", 100); got != "short" {
		t.Fatalf("under the limit must pass through, got %q", got)
	}

	long := strings.Repeat("x", 50)
	got := app.TruncateContent(long, 10)
	if !strings.HasSuffix(got, app.TruncationMarker) {
		t.Fatalf("truncated content must carry the marker, got %q", got)
	}
	if !strings.HasPrefix(got, strings.Repeat("x", 10)) {
		t.Fatalf("expected 10 chars kept, got %q", got)
	}
}

func TestTruncateContentKeepsRunesIntact(t *testing.T) {
	// 4 three-byte runes; a cut at 10 bytes lands mid-rune.
	text := strings.Repeat("日", 4)
	got := app.TruncateContent(text, 10)
	kept := strings.TrimSuffix(got, app.TruncationMarker)
	if kept != strings.Repeat("日", 3) {
		t.Fatalf("cut must back off to a rune boundary, got %q", kept)
	}
}

func TestPlainTextExtractorRejectsBinaryFormats(t *testing.T) {
	ex := app.PlainTextExtractor{}
	if _, err := ex.Extract([]byte("hello"), "txt"); err != nil {
		t.Fatalf("txt: %v", err)
	}
	if _, err := ex.Extract([]byte("# hi"), "md"); err != nil {
		t.Fatalf("md: %v", err)
	}
	if _, err := ex.Extract([]byte("%PDF"), "pdf"); err == nil {
		t.Fatal("pdf should need a dedicated extractor")
	}
}
