package llm

import (
	"encoding/json"
	"fmt"

	"github.com/0x3st/quizit/internal/domain"
)

// QuizResult is a generation result that passed schema validation. Questions
// are fully typed; IDs and order are assigned by the caller at persistence.
type QuizResult struct {
	Title       string
	Description string
	Questions   []GeneratedQuestion
}

// GeneratedQuestion is one validated question from the model output.
type GeneratedQuestion struct {
	Type          domain.QuestionType
	Content       string
	Options       []string
	CorrectAnswer domain.AnswerValue
	Explanation   string
	Points        int
}

type rawQuiz struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Questions   []rawQuestion `json:"questions"`
}

type rawQuestion struct {
	Type          string          `json:"type"`
	Content       string          `json:"content"`
	Options       []string        `json:"options"`
	CorrectAnswer json.RawMessage `json:"correctAnswer"`
	Explanation   string          `json:"explanation"`
	Points        int             `json:"points"`
}

// ParseQuizResult validates the raw model output against the quiz schema:
// non-empty title, at least one question, and the per-type shape contract
// for options and correct answers. Any violation fails the whole result.
func ParseQuizResult(raw string) (*QuizResult, error) {
	var rq rawQuiz
	if err := json.Unmarshal([]byte(raw), &rq); err != nil {
		return nil, fmt.Errorf("parse LLM response: %w", err)
	}
	if rq.Title == "" {
		return nil, fmt.Errorf("invalid quiz output: missing title")
	}
	if len(rq.Questions) == 0 {
		return nil, fmt.Errorf("invalid quiz output: no questions")
	}

	out := &QuizResult{Title: rq.Title, Description: rq.Description}
	for i, q := range rq.Questions {
		gq, err := validateQuestion(q)
		if err != nil {
			return nil, fmt.Errorf("invalid question %d: %w", i+1, err)
		}
		out.Questions = append(out.Questions, gq)
	}
	return out, nil
}

func validateQuestion(q rawQuestion) (GeneratedQuestion, error) {
	t := domain.QuestionType(q.Type)
	if !domain.KnownQuestionType(t) {
		return GeneratedQuestion{}, fmt.Errorf("unknown type %q", q.Type)
	}
	if q.Content == "" {
		return GeneratedQuestion{}, fmt.Errorf("empty content")
	}
	if q.Points < 1 || q.Points > 3 {
		return GeneratedQuestion{}, fmt.Errorf("points %d out of range 1..3", q.Points)
	}

	answer, err := domain.DecodeCorrectAnswer(t, q.CorrectAnswer)
	if err != nil {
		return GeneratedQuestion{}, err
	}

	options := q.Options
	switch t {
	case domain.SingleChoice, domain.TrueFalse:
		if len(options) == 0 {
			return GeneratedQuestion{}, fmt.Errorf("%s requires options", t)
		}
		if !contains(options, answer.Text()) {
			return GeneratedQuestion{}, fmt.Errorf("correct answer %q not among options", answer.Text())
		}
	case domain.MultipleChoice:
		if len(options) == 0 {
			return GeneratedQuestion{}, fmt.Errorf("%s requires options", t)
		}
		for _, a := range answer.List() {
			if !contains(options, a) {
				return GeneratedQuestion{}, fmt.Errorf("correct answer %q not among options", a)
			}
		}
	case domain.Matching:
		if len(options) == 0 {
			return GeneratedQuestion{}, fmt.Errorf("%s requires right-column options", t)
		}
		for left, right := range answer.Pairs() {
			if !contains(options, right) {
				return GeneratedQuestion{}, fmt.Errorf("mapping %q -> %q not among options", left, right)
			}
		}
	case domain.FillBlank, domain.ShortAnswer:
		// options are absent for free-text types
		options = nil
	}

	return GeneratedQuestion{
		Type:          t,
		Content:       q.Content,
		Options:       options,
		CorrectAnswer: answer,
		Explanation:   q.Explanation,
		Points:        q.Points,
	}, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
