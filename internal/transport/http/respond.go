package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/0x3st/quizit/internal/app"
	"github.com/0x3st/quizit/internal/domain"
)

// envelope is the uniform JSON response shape.
type envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *errBody   `json:"error,omitempty"`
	Meta    *pagerMeta `json:"meta,omitempty"`
}

type errBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type pagerMeta struct {
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
	Total    int `json:"total"`
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("write response: %v", err)
	}
}

func ok(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

func okPaged(w http.ResponseWriter, data any, p app.Page, total int) {
	writeJSON(w, http.StatusOK, envelope{
		Success: true,
		Data:    data,
		Meta:    &pagerMeta{Page: p.Page, PageSize: p.PageSize, Total: total},
	})
}

func fail(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, envelope{Success: false, Error: &errBody{Code: code, Message: message}})
}

// failErr maps domain errors onto HTTP statuses and stable error codes.
func failErr(w http.ResponseWriter, err error) {
	switch {
	case domain.IsValidation(err):
		fail(w, http.StatusBadRequest, "VALIDATION", err.Error())
	case errors.Is(err, domain.ErrMaterialNotFound),
		errors.Is(err, domain.ErrQuizNotFound),
		errors.Is(err, domain.ErrAttemptNotFound):
		fail(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, domain.ErrQuizNotReady):
		fail(w, http.StatusBadRequest, "NOT_READY", err.Error())
	case errors.Is(err, domain.ErrMaterialNotParsed):
		fail(w, http.StatusBadRequest, "NOT_PARSED", err.Error())
	case errors.Is(err, domain.ErrAttemptCompleted):
		fail(w, http.StatusConflict, "ALREADY_COMPLETED", err.Error())
	case errors.Is(err, domain.ErrQuestionNotInQuiz):
		fail(w, http.StatusBadRequest, "VALIDATION", err.Error())
	case errors.Is(err, domain.ErrDuplicateMaterial):
		fail(w, http.StatusConflict, "DUPLICATE", err.Error())
	default:
		log.Printf("internal error: %v", err)
		fail(w, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
}

func pageFromQuery(r *http.Request) app.Page {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	size, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	return app.Page{Page: page, PageSize: size}.Clamped()
}
