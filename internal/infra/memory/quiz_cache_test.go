package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/0x3st/quizit/internal/domain"
	"github.com/0x3st/quizit/internal/infra/memory"
)

type countingLoader struct {
	quizzes map[string]domain.Quiz
	calls   int
}

func (l *countingLoader) LoadQuiz(_ context.Context, quizID string) (domain.Quiz, error) {
	l.calls++
	quiz, ok := l.quizzes[quizID]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return quiz, nil
}

func TestQuizCacheServesReadyFromMemory(t *testing.T) {
	loader := &countingLoader{quizzes: map[string]domain.Quiz{
		"quiz-1": {ID: "quiz-1", GenerationStatus: domain.GenerationReady},
	}}
	cache := memory.NewQuizCache(loader, time.Minute)

	if _, err := cache.GetQuiz(context.Background(), "quiz-1"); err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if _, err := cache.GetQuiz(context.Background(), "quiz-1"); err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected one load, got %d", loader.calls)
	}

	cache.Invalidate(context.Background(), "quiz-1")
	if _, err := cache.GetQuiz(context.Background(), "quiz-1"); err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if loader.calls != 2 {
		t.Fatalf("invalidate must force a reload, got %d", loader.calls)
	}
}

func TestQuizCacheDoesNotCacheGenerating(t *testing.T) {
	loader := &countingLoader{quizzes: map[string]domain.Quiz{
		"quiz-1": {ID: "quiz-1", GenerationStatus: domain.GenerationGenerating},
	}}
	cache := memory.NewQuizCache(loader, time.Minute)

	_, _ = cache.GetQuiz(context.Background(), "quiz-1")
	_, _ = cache.GetQuiz(context.Background(), "quiz-1")
	if loader.calls != 2 {
		t.Fatalf("non-READY quiz must stay live, got %d loads", loader.calls)
	}
}
