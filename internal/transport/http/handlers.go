package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/0x3st/quizit/internal/app"
	"github.com/0x3st/quizit/internal/domain"
)

// Handler wires the REST surface onto the application services.
type Handler struct {
	materials *app.MaterialService
	quizzes   *app.QuizService
	attempts  *app.AttemptService
}

func NewHandler(materials *app.MaterialService, quizzes *app.QuizService, attempts *app.AttemptService) *Handler {
	return &Handler{materials: materials, quizzes: quizzes, attempts: attempts}
}

// Routes mounts all REST endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/materials", func(r chi.Router) {
		r.Post("/", h.uploadMaterial)
		r.Get("/", h.listMaterials)
		r.Get("/{id}", h.getMaterial)
		r.Post("/{id}/reparse", h.reparseMaterial)
		r.Delete("/{id}", h.deleteMaterial)
	})
	r.Route("/quizzes", func(r chi.Router) {
		r.Post("/", h.generateQuiz)
		r.Get("/", h.listQuizzes)
		r.Get("/{id}", h.getQuiz)
		r.Delete("/{id}", h.deleteQuiz)
		r.Get("/{id}/export", h.exportQuiz)
		r.Post("/{id}/attempts", h.startAttempt)
		r.Get("/{id}/attempts", h.listAttempts)
	})
	r.Route("/attempts", func(r chi.Router) {
		r.Get("/{id}", h.getAttempt)
		r.Post("/{id}/complete", h.completeAttempt)
	})
	r.Get("/stats", h.stats)
}

func (h *Handler) uploadMaterial(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		fail(w, http.StatusBadRequest, "NO_FILE", "no file provided")
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		fail(w, http.StatusBadRequest, "NO_FILE", "reading upload failed")
		return
	}

	material, err := h.materials.Register(r.Context(), app.Upload{
		Filename: header.Filename,
		MimeType: header.Header.Get("Content-Type"),
		Data:     data,
	})
	if err != nil {
		failErr(w, err)
		return
	}
	ok(w, http.StatusCreated, material)
}

func (h *Handler) listMaterials(w http.ResponseWriter, r *http.Request) {
	p := pageFromQuery(r)
	materials, total, err := h.materials.List(r.Context(), p)
	if err != nil {
		failErr(w, err)
		return
	}
	// content can be large; the list view omits it
	for i := range materials {
		materials[i].Content = ""
	}
	okPaged(w, materials, p, total)
}

func (h *Handler) getMaterial(w http.ResponseWriter, r *http.Request) {
	material, err := h.materials.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		failErr(w, err)
		return
	}
	ok(w, http.StatusOK, material)
}

func (h *Handler) reparseMaterial(w http.ResponseWriter, r *http.Request) {
	material, err := h.materials.Reparse(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		failErr(w, err)
		return
	}
	ok(w, http.StatusAccepted, material)
}

func (h *Handler) deleteMaterial(w http.ResponseWriter, r *http.Request) {
	if err := h.materials.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		failErr(w, err)
		return
	}
	ok(w, http.StatusOK, nil)
}

type generateRequest struct {
	MaterialID    string   `json:"materialId"`
	Title         string   `json:"title"`
	QuestionCount int      `json:"questionCount"`
	QuestionTypes []string `json:"questionTypes"`
	Difficulty    string   `json:"difficulty"`
}

func (h *Handler) generateQuiz(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "VALIDATION", "invalid JSON body")
		return
	}
	types := make([]domain.QuestionType, 0, len(req.QuestionTypes))
	for _, t := range req.QuestionTypes {
		types = append(types, domain.QuestionType(t))
	}
	quiz, err := h.quizzes.Generate(r.Context(), app.QuizConfig{
		MaterialID:    req.MaterialID,
		Title:         req.Title,
		QuestionCount: req.QuestionCount,
		Types:         types,
		Difficulty:    domain.Difficulty(req.Difficulty),
	})
	if err != nil {
		failErr(w, err)
		return
	}
	ok(w, http.StatusCreated, quiz)
}

func (h *Handler) listQuizzes(w http.ResponseWriter, r *http.Request) {
	p := pageFromQuery(r)
	quizzes, total, err := h.quizzes.List(r.Context(), p)
	if err != nil {
		failErr(w, err)
		return
	}
	okPaged(w, quizzes, p, total)
}

func (h *Handler) getQuiz(w http.ResponseWriter, r *http.Request) {
	quiz, err := h.quizzes.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		failErr(w, err)
		return
	}
	ok(w, http.StatusOK, quiz)
}

func (h *Handler) deleteQuiz(w http.ResponseWriter, r *http.Request) {
	if err := h.quizzes.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		failErr(w, err)
		return
	}
	ok(w, http.StatusOK, nil)
}

func (h *Handler) exportQuiz(w http.ResponseWriter, r *http.Request) {
	quiz, err := h.quizzes.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		failErr(w, err)
		return
	}
	if r.URL.Query().Get("format") == "markdown" {
		w.Header().Set("Content-Type", "text/markdown")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", quiz.Title+".md"))
		_, _ = io.WriteString(w, app.ExportMarkdown(quiz))
		return
	}
	ok(w, http.StatusOK, quiz)
}

func (h *Handler) startAttempt(w http.ResponseWriter, r *http.Request) {
	attempt, err := h.attempts.Start(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		failErr(w, err)
		return
	}
	ok(w, http.StatusCreated, attempt)
}

func (h *Handler) listAttempts(w http.ResponseWriter, r *http.Request) {
	attempts, err := h.attempts.ListForQuiz(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		failErr(w, err)
		return
	}
	ok(w, http.StatusOK, attempts)
}

func (h *Handler) getAttempt(w http.ResponseWriter, r *http.Request) {
	attempt, err := h.attempts.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		failErr(w, err)
		return
	}
	ok(w, http.StatusOK, attempt)
}

type completeRequest struct {
	Answers []struct {
		QuestionID string          `json:"questionId"`
		UserAnswer json.RawMessage `json:"userAnswer"`
	} `json:"answers"`
}

func (h *Handler) completeAttempt(w http.ResponseWriter, r *http.Request) {
	var req completeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "VALIDATION", "invalid JSON body")
		return
	}
	submissions := make([]app.AnswerSubmission, 0, len(req.Answers))
	for _, a := range req.Answers {
		submissions = append(submissions, app.AnswerSubmission{
			QuestionID: a.QuestionID,
			Value:      a.UserAnswer,
		})
	}
	result, err := h.attempts.Complete(r.Context(), chi.URLParam(r, "id"), submissions)
	if err != nil {
		failErr(w, err)
		return
	}
	ok(w, http.StatusOK, result)
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.quizzes.Stats(r.Context())
	if err != nil {
		failErr(w, err)
		return
	}
	ok(w, http.StatusOK, stats)
}
