package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/0x3st/quizit/internal/app"
	"github.com/0x3st/quizit/internal/domain"
	"github.com/0x3st/quizit/internal/infra/memory"
	"github.com/0x3st/quizit/internal/llm"
)

const validOutput = `{
	"title": "Biology Basics",
	"description": "Cell structure questions",
	"questions": [
		{"type": "SINGLE_CHOICE", "content": "Powerhouse of the cell?",
		 "options": ["Mitochondria", "Nucleus"], "correctAnswer": "Mitochondria",
		 "explanation": "ATP production", "points": 1},
		{"type": "TRUE_FALSE", "content": "Plants photosynthesize.",
		 "options": ["True", "False"], "correctAnswer": "True",
		 "explanation": "", "points": 1}
	]
}`

// fakeCompleter fails a set number of times before returning its output.
type fakeCompleter struct {
	failures int
	output   string
	calls    int
}

func (f *fakeCompleter) Complete(_ context.Context, _ llm.Prompt) (string, llm.Usage, error) {
	f.calls++
	if f.calls <= f.failures {
		return "", llm.Usage{}, fmt.Errorf("provider unavailable (call %d)", f.calls)
	}
	return f.output, llm.Usage{InputTokens: 100, OutputTokens: 50}, nil
}

func (f *fakeCompleter) Provider() string { return "fake" }
func (f *fakeCompleter) Model() string    { return "fake-model" }

func newGeneratingQuiz(t *testing.T, store *memory.Store) domain.Quiz {
	t.Helper()
	quiz := domain.Quiz{
		ID:               "quiz-1",
		MaterialID:       "mat-1",
		Title:            "Quiz from notes.txt",
		QuestionCount:    10,
		Difficulty:       domain.DifficultyMedium,
		GenerationStatus: domain.GenerationGenerating,
	}
	if err := store.CreateQuiz(context.Background(), &quiz); err != nil {
		t.Fatalf("create quiz: %v", err)
	}
	return quiz
}

func runGeneration(t *testing.T, store *memory.Store, completer app.Completer) []time.Duration {
	t.Helper()
	var sleeps []time.Duration
	gen := app.NewGeneratorWithClock(store, completer, app.GeneratorConfig{},
		func(d time.Duration) { sleeps = append(sleeps, d) },
		time.Now,
	)
	quiz := newGeneratingQuiz(t, store)
	gen.Run(context.Background(), app.GenerateRequest{
		Quiz:    quiz,
		Types:   []domain.QuestionType{domain.SingleChoice, domain.TrueFalse},
		Content: "cells and photosynthesis",
	})
	return sleeps
}

func TestGenerationSucceedsAfterTransientFailures(t *testing.T) {
	store := memory.NewStore()
	completer := &fakeCompleter{failures: 2, output: validOutput}

	sleeps := runGeneration(t, store, completer)

	quiz, err := store.GetQuiz(context.Background(), "quiz-1")
	if err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if quiz.GenerationStatus != domain.GenerationReady {
		t.Fatalf("expected READY, got %s (%s)", quiz.GenerationStatus, quiz.GenerationError)
	}
	if len(quiz.Questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(quiz.Questions))
	}
	if quiz.Title != "Biology Basics" {
		t.Fatalf("title should come from the result, got %q", quiz.Title)
	}
	if quiz.Provider != "fake" || quiz.Model != "fake-model" || quiz.PromptVersion != "v1" {
		t.Fatalf("missing generation provenance: %+v", quiz)
	}
	if completer.calls != 3 {
		t.Fatalf("expected 3 calls, got %d", completer.calls)
	}
	want := []time.Duration{time.Second, 2 * time.Second}
	if len(sleeps) != len(want) || sleeps[0] != want[0] || sleeps[1] != want[1] {
		t.Fatalf("expected backoff %v, got %v", want, sleeps)
	}
}

func TestGenerationFailsAfterExhaustedAttempts(t *testing.T) {
	store := memory.NewStore()
	completer := &fakeCompleter{failures: 10, output: validOutput}

	sleeps := runGeneration(t, store, completer)

	quiz, err := store.GetQuiz(context.Background(), "quiz-1")
	if err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if quiz.GenerationStatus != domain.GenerationFailed {
		t.Fatalf("expected FAILED, got %s", quiz.GenerationStatus)
	}
	if quiz.GenerationError == "" {
		t.Fatal("expected a recorded failure reason")
	}
	if completer.calls != 3 {
		t.Fatalf("expected exactly 3 attempts, got %d", completer.calls)
	}
	if len(sleeps) != 2 {
		t.Fatalf("expected 2 backoff sleeps, got %v", sleeps)
	}
	if len(quiz.Questions) != 0 {
		t.Fatalf("failed quiz must have no questions, got %d", len(quiz.Questions))
	}
}

func TestGenerationRetriesSchemaViolations(t *testing.T) {
	store := memory.NewStore()
	// Valid JSON but schema-invalid: points out of range.
	bad := `{"title": "T", "questions": [{"type": "TRUE_FALSE", "content": "c",
		"options": ["True","False"], "correctAnswer": "True", "points": 9}]}`
	completer := &badThenGoodCompleter{bad: bad, good: validOutput}

	runGeneration(t, store, completer)

	quiz, _ := store.GetQuiz(context.Background(), "quiz-1")
	if quiz.GenerationStatus != domain.GenerationReady {
		t.Fatalf("schema failure must be retried, got %s (%s)", quiz.GenerationStatus, quiz.GenerationError)
	}
	if completer.calls != 2 {
		t.Fatalf("expected 2 calls, got %d", completer.calls)
	}
}

type badThenGoodCompleter struct {
	bad, good string
	calls     int
}

func (c *badThenGoodCompleter) Complete(_ context.Context, _ llm.Prompt) (string, llm.Usage, error) {
	c.calls++
	if c.calls == 1 {
		return c.bad, llm.Usage{}, nil
	}
	return c.good, llm.Usage{}, nil
}

func (c *badThenGoodCompleter) Provider() string { return "fake" }
func (c *badThenGoodCompleter) Model() string    { return "fake-model" }

// readyFailStore forces MarkQuizReady to fail so persistence failures can be
// observed turning the quiz FAILED.
type readyFailStore struct {
	*memory.Store
}

func (s *readyFailStore) MarkQuizReady(context.Context, string, app.ReadyQuiz) error {
	return errors.New("disk full")
}

func TestGenerationPersistenceFailureTurnsQuizFailed(t *testing.T) {
	inner := memory.NewStore()
	store := &readyFailStore{Store: inner}
	completer := &fakeCompleter{output: validOutput}

	gen := app.NewGeneratorWithClock(store, completer, app.GeneratorConfig{},
		func(time.Duration) {}, time.Now)
	quiz := newGeneratingQuiz(t, inner)
	gen.Run(context.Background(), app.GenerateRequest{
		Quiz:    quiz,
		Types:   []domain.QuestionType{domain.SingleChoice},
		Content: "content",
	})

	got, _ := inner.GetQuiz(context.Background(), "quiz-1")
	if got.GenerationStatus != domain.GenerationFailed {
		t.Fatalf("expected FAILED after persistence failure, got %s", got.GenerationStatus)
	}
}

func TestGeneratedQuestionsAreOrdered(t *testing.T) {
	store := memory.NewStore()
	completer := &fakeCompleter{output: validOutput}
	runGeneration(t, store, completer)

	quiz, _ := store.GetQuiz(context.Background(), "quiz-1")
	for i, q := range quiz.Questions {
		if q.Order != i+1 {
			t.Fatalf("question %d has order %d", i, q.Order)
		}
		if q.QuizID != quiz.ID {
			t.Fatalf("question %d not bound to quiz", i)
		}
		var raw json.RawMessage
		data, err := json.Marshal(q.CorrectAnswer)
		if err != nil || json.Unmarshal(data, &raw) != nil {
			t.Fatalf("correct answer must round-trip as JSON: %v", err)
		}
	}
}
