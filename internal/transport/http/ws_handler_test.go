package http_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/0x3st/quizit/internal/app"
	"github.com/0x3st/quizit/internal/domain"
	"github.com/0x3st/quizit/internal/infra/memory"
	transport "github.com/0x3st/quizit/internal/transport/http"
)

type statusEvent struct {
	QuizID string `json:"quizId"`
	Status string `json:"status"`
	Error  string `json:"error"`
}

func newWSServer(t *testing.T, store *memory.Store) *httptest.Server {
	t.Helper()
	generator := app.NewGeneratorWithClock(store, &stubCompleter{output: generationOutput},
		app.GeneratorConfig{}, func(time.Duration) {}, time.Now)
	quizzes := app.NewQuizService(store, store, generator, store)

	r := chi.NewRouter()
	r.Get("/ws/quizzes/{id}/status", transport.NewWSHandler(quizzes).ServeStatus)
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return server
}

func dialStatus(t *testing.T, server *httptest.Server, quizID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/quizzes/" + quizID + "/status"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestStatusStreamTerminalQuiz(t *testing.T) {
	store := memory.NewStore()
	quiz := domain.Quiz{ID: "quiz-1", GenerationStatus: domain.GenerationGenerating}
	_ = store.CreateQuiz(context.Background(), &quiz)
	_ = store.MarkQuizReady(context.Background(), "quiz-1", app.ReadyQuiz{
		Title: "Done",
		Questions: []domain.Question{
			{ID: "q1", QuizID: "quiz-1", Order: 1, Points: 1, CorrectAnswer: domain.TextAnswer("a")},
		},
	})

	server := newWSServer(t, store)
	conn := dialStatus(t, server, "quiz-1")

	var event statusEvent
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&event); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if event.QuizID != "quiz-1" || event.Status != string(domain.GenerationReady) {
		t.Fatalf("unexpected event: %+v", event)
	}

	// Terminal status closes the stream.
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&event); err == nil {
		t.Fatal("expected stream to close after terminal status")
	}
}

func TestStatusStreamObservesTransition(t *testing.T) {
	store := memory.NewStore()
	quiz := domain.Quiz{ID: "quiz-2", GenerationStatus: domain.GenerationGenerating}
	_ = store.CreateQuiz(context.Background(), &quiz)

	server := newWSServer(t, store)
	conn := dialStatus(t, server, "quiz-2")

	var event statusEvent
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&event); err != nil {
		t.Fatalf("read initial event: %v", err)
	}
	if event.Status != string(domain.GenerationGenerating) {
		t.Fatalf("expected initial GENERATING, got %+v", event)
	}

	_ = store.MarkQuizFailed(context.Background(), "quiz-2", "model unavailable")

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&event); err != nil {
		t.Fatalf("read transition event: %v", err)
	}
	if event.Status != string(domain.GenerationFailed) || event.Error != "model unavailable" {
		t.Fatalf("expected FAILED with reason, got %+v", event)
	}
}

func TestStatusStreamUnknownQuiz(t *testing.T) {
	server := newWSServer(t, memory.NewStore())
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/quizzes/missing/status"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("expected dial failure for unknown quiz")
	}
	if resp == nil || resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %+v", resp)
	}
}
