package llm_test

import (
	"strings"
	"testing"

	"github.com/0x3st/quizit/internal/domain"
	"github.com/0x3st/quizit/internal/llm"
)

func TestParseQuizResultValid(t *testing.T) {
	raw := `{
		"title": "Geography",
		"description": "Capitals",
		"questions": [
			{"type": "SINGLE_CHOICE", "content": "Capital of France?",
			 "options": ["Paris", "Lyon"], "correctAnswer": "Paris",
			 "explanation": "Paris is the capital", "points": 1},
			{"type": "MULTIPLE_CHOICE", "content": "EU members?",
			 "options": ["France", "Norway", "Spain"], "correctAnswer": ["France", "Spain"],
			 "points": 2},
			{"type": "MATCHING", "content": "Match country to capital",
			 "options": ["Paris", "Madrid"],
			 "correctAnswer": {"France": "Paris", "Spain": "Madrid"}, "points": 3},
			{"type": "FILL_BLANK", "content": "The capital of Spain is ___",
			 "correctAnswer": "Madrid", "points": 1},
			{"type": "SHORT_ANSWER", "content": "Describe the EU",
			 "correctAnswer": "a political union", "points": 2}
		]
	}`

	result, err := llm.ParseQuizResult(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if result.Title != "Geography" || len(result.Questions) != 5 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if got := result.Questions[1].CorrectAnswer.List(); len(got) != 2 {
		t.Fatalf("expected 2 correct options, got %v", got)
	}
	if pairs := result.Questions[2].CorrectAnswer.Pairs(); pairs["France"] != "Paris" {
		t.Fatalf("expected matching pairs, got %v", pairs)
	}
	if result.Questions[3].Options != nil {
		t.Fatal("fill blank must not carry options")
	}
}

func TestParseQuizResultRejections(t *testing.T) {
	cases := []struct {
		name, raw, wantErr string
	}{
		{"not json", `a quiz about birds`, "parse LLM response"},
		{"missing title", `{"questions": [{"type": "TRUE_FALSE", "content": "c", "options": ["True","False"], "correctAnswer": "True", "points": 1}]}`, "missing title"},
		{"no questions", `{"title": "T", "questions": []}`, "no questions"},
		{"unknown type", `{"title": "T", "questions": [{"type": "ESSAY", "content": "c", "correctAnswer": "x", "points": 1}]}`, "unknown type"},
		{"empty content", `{"title": "T", "questions": [{"type": "SHORT_ANSWER", "content": "", "correctAnswer": "x", "points": 1}]}`, "empty content"},
		{"points too low", `{"title": "T", "questions": [{"type": "SHORT_ANSWER", "content": "c", "correctAnswer": "x", "points": 0}]}`, "out of range"},
		{"points too high", `{"title": "T", "questions": [{"type": "SHORT_ANSWER", "content": "c", "correctAnswer": "x", "points": 4}]}`, "out of range"},
		{"missing answer", `{"title": "T", "questions": [{"type": "SHORT_ANSWER", "content": "c", "points": 1}]}`, "missing correct answer"},
		{"answer wrong shape", `{"title": "T", "questions": [{"type": "MULTIPLE_CHOICE", "content": "c", "options": ["a"], "correctAnswer": "a", "points": 1}]}`, "string array"},
		{"answer not among options", `{"title": "T", "questions": [{"type": "SINGLE_CHOICE", "content": "c", "options": ["a", "b"], "correctAnswer": "z", "points": 1}]}`, "not among options"},
		{"choice without options", `{"title": "T", "questions": [{"type": "SINGLE_CHOICE", "content": "c", "correctAnswer": "a", "points": 1}]}`, "requires options"},
		{"matching value missing", `{"title": "T", "questions": [{"type": "MATCHING", "content": "c", "options": ["x"], "correctAnswer": {"a": "y"}, "points": 1}]}`, "not among options"},
	}
	for _, tc := range cases {
		_, err := llm.ParseQuizResult(tc.raw)
		if err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
		if !strings.Contains(err.Error(), tc.wantErr) {
			t.Fatalf("%s: expected %q in error, got %v", tc.name, tc.wantErr, err)
		}
	}
}

func TestParseQuizResultStripsFreeTextOptions(t *testing.T) {
	raw := `{"title": "T", "questions": [
		{"type": "SHORT_ANSWER", "content": "c", "options": ["stray"], "correctAnswer": "x", "points": 1}
	]}`
	result, err := llm.ParseQuizResult(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if result.Questions[0].Options != nil {
		t.Fatal("free-text question options must be dropped")
	}
	if result.Questions[0].Type != domain.ShortAnswer {
		t.Fatalf("unexpected type %s", result.Questions[0].Type)
	}
}
