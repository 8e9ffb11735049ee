package http

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/0x3st/quizit/internal/app"
	"github.com/0x3st/quizit/internal/domain"
)

// WSHandler streams quiz generation status over a websocket so clients do
// not have to poll the REST endpoint. It only observes the persisted status
// field; terminal states close the stream.
type WSHandler struct {
	quizzes  *app.QuizService
	upgrader websocket.Upgrader
	interval time.Duration
}

func NewWSHandler(quizzes *app.QuizService) *WSHandler {
	return &WSHandler{
		quizzes: quizzes,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		interval: time.Second,
	}
}

type statusEvent struct {
	QuizID string `json:"quizId"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// ServeStatus upgrades the request and pushes a status event on every
// observed transition until the quiz reaches READY or FAILED.
func (h *WSHandler) ServeStatus(w http.ResponseWriter, r *http.Request) {
	quizID := chi.URLParam(r, "id")
	if quizID == "" {
		http.Error(w, "missing quiz id", http.StatusBadRequest)
		return
	}

	quiz, err := h.quizzes.Get(r.Context(), quizID)
	if err != nil {
		http.Error(w, "quiz not found", http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	// Reader goroutine: its only job is to notice the peer going away.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	last := quiz.GenerationStatus
	if err := conn.WriteJSON(statusEvent{QuizID: quizID, Status: string(last), Error: quiz.GenerationError}); err != nil {
		return
	}
	if terminal(last) {
		return
	}

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-gone:
			return
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}

		quiz, err := h.quizzes.Get(r.Context(), quizID)
		if err != nil {
			return
		}
		if quiz.GenerationStatus == last {
			continue
		}
		last = quiz.GenerationStatus
		if err := conn.WriteJSON(statusEvent{QuizID: quizID, Status: string(last), Error: quiz.GenerationError}); err != nil {
			return
		}
		if terminal(last) {
			return
		}
	}
}

func terminal(s domain.GenerationStatus) bool {
	return s == domain.GenerationReady || s == domain.GenerationFailed
}
