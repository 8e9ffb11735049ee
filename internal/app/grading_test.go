package app_test

import (
	"testing"

	"github.com/0x3st/quizit/internal/app"
	"github.com/0x3st/quizit/internal/domain"
)

func question(t domain.QuestionType, correct domain.AnswerValue, points int) domain.Question {
	return domain.Question{
		ID:            "q1",
		QuizID:        "quiz-1",
		Type:          t,
		Content:       "question",
		CorrectAnswer: correct,
		Points:        points,
	}
}

func TestGradeSingleChoice(t *testing.T) {
	q := question(domain.SingleChoice, domain.TextAnswer("Paris"), 2)

	got := app.Grade(q, domain.TextAnswer("Paris"))
	if got.Correct == nil || !*got.Correct || got.Points != 2 {
		t.Fatalf("exact match should award full points, got %+v", got)
	}

	got = app.Grade(q, domain.TextAnswer("paris"))
	if got.Correct == nil || *got.Correct || got.Points != 0 {
		t.Fatalf("single choice is case sensitive, got %+v", got)
	}
}

func TestGradeTrueFalse(t *testing.T) {
	q := question(domain.TrueFalse, domain.TextAnswer("True"), 1)

	if got := app.Grade(q, domain.TextAnswer("True")); got.Correct == nil || !*got.Correct {
		t.Fatalf("expected correct, got %+v", got)
	}
	if got := app.Grade(q, domain.TextAnswer("False")); got.Correct == nil || *got.Correct {
		t.Fatalf("expected incorrect, got %+v", got)
	}
}

func TestGradeMultipleChoiceSetSemantics(t *testing.T) {
	q := question(domain.MultipleChoice, domain.ListAnswer("a", "c"), 3)

	got := app.Grade(q, domain.ListAnswer("c", "a"))
	if got.Correct == nil || !*got.Correct || got.Points != 3 {
		t.Fatalf("order must not matter, got %+v", got)
	}

	got = app.Grade(q, domain.ListAnswer("a", "c", "a"))
	if got.Correct == nil || !*got.Correct {
		t.Fatalf("duplicates must not matter, got %+v", got)
	}

	if got := app.Grade(q, domain.ListAnswer("a")); *got.Correct {
		t.Fatalf("missing selection must grade wrong, got %+v", got)
	}
	if got := app.Grade(q, domain.ListAnswer("a", "c", "b")); *got.Correct {
		t.Fatalf("extra selection must grade wrong, got %+v", got)
	}
}

func TestGradeFillBlank(t *testing.T) {
	q := question(domain.FillBlank, domain.TextAnswer("Photosynthesis"), 2)

	got := app.Grade(q, domain.TextAnswer("  photosynthesis "))
	if got.Correct == nil || !*got.Correct || got.Points != 2 {
		t.Fatalf("fill blank trims and ignores case, got %+v", got)
	}
	if got := app.Grade(q, domain.TextAnswer("photo synthesis")); *got.Correct {
		t.Fatalf("different answer must grade wrong, got %+v", got)
	}
}

func TestGradeMatching(t *testing.T) {
	q := question(domain.Matching, domain.PairsAnswer(map[string]string{
		"H2O": "water",
		"NaCl": "salt",
	}), 3)

	got := app.Grade(q, domain.PairsAnswer(map[string]string{"NaCl": "salt", "H2O": "water"}))
	if got.Correct == nil || !*got.Correct || got.Points != 3 {
		t.Fatalf("all pairs matched should be correct, got %+v", got)
	}

	got = app.Grade(q, domain.PairsAnswer(map[string]string{"H2O": "water", "NaCl": "water"}))
	if *got.Correct || got.Points != 0 {
		t.Fatalf("one wrong pair fails the whole question, got %+v", got)
	}

	got = app.Grade(q, domain.PairsAnswer(map[string]string{"H2O": "water"}))
	if *got.Correct {
		t.Fatalf("missing pair fails the whole question, got %+v", got)
	}
}

func TestGradeShortAnswerNeedsReview(t *testing.T) {
	q := question(domain.ShortAnswer, domain.TextAnswer("reference"), 2)

	got := app.Grade(q, domain.TextAnswer("my own words"))
	if got.Correct != nil {
		t.Fatalf("answered short answer must stay ungraded, got %+v", got)
	}
	if got.Points != 0 {
		t.Fatalf("ungraded answer awards no points, got %d", got.Points)
	}
}

func TestGradeEmptyAnswer(t *testing.T) {
	for _, typ := range []domain.QuestionType{
		domain.SingleChoice, domain.MultipleChoice, domain.TrueFalse,
		domain.FillBlank, domain.ShortAnswer, domain.Matching,
	} {
		q := question(typ, domain.TextAnswer("x"), 1)
		got := app.Grade(q, domain.AnswerValue{})
		if got.Correct == nil || *got.Correct || got.Points != 0 {
			t.Fatalf("%s: unanswered must grade wrong with 0 points, got %+v", typ, got)
		}
	}

	q := question(domain.FillBlank, domain.TextAnswer("x"), 1)
	if got := app.Grade(q, domain.TextAnswer("")); got.Correct == nil || *got.Correct {
		t.Fatalf("empty string counts as unanswered, got %+v", got)
	}
}

func TestGradeMismatchedShape(t *testing.T) {
	// A list answer against a single-choice question can never match.
	q := question(domain.SingleChoice, domain.TextAnswer("a"), 1)
	got := app.Grade(q, domain.ListAnswer("a"))
	if got.Correct == nil || *got.Correct {
		t.Fatalf("shape mismatch must grade wrong, got %+v", got)
	}
}

func TestGradeDeterministic(t *testing.T) {
	q := question(domain.MultipleChoice, domain.ListAnswer("a", "b"), 2)
	first := app.Grade(q, domain.ListAnswer("b", "a"))
	for i := 0; i < 10; i++ {
		again := app.Grade(q, domain.ListAnswer("b", "a"))
		if *again.Correct != *first.Correct || again.Points != first.Points {
			t.Fatalf("grading must be deterministic: %+v vs %+v", first, again)
		}
	}
}
