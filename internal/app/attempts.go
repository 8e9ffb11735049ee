package app

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/0x3st/quizit/internal/domain"
)

// AnswerSubmission is one submitted answer; Value stays raw until the
// question's type picks its decoded shape.
type AnswerSubmission struct {
	QuestionID string
	Value      json.RawMessage
}

// CompletionResult summarizes a finished attempt.
type CompletionResult struct {
	AttemptID   string `json:"attemptId"`
	Score       int    `json:"score"`
	TotalPoints int    `json:"totalPoints"`
}

// AttemptService owns the attempt state machine: creation, answer intake,
// and exactly-once scoring. Attempt and answer rows are mutated only here.
type AttemptService struct {
	attempts AttemptStore
	quizzes  QuizReader
	clock    func() time.Time
}

func NewAttemptService(attempts AttemptStore, quizzes QuizReader) *AttemptService {
	return &AttemptService{attempts: attempts, quizzes: quizzes, clock: time.Now}
}

// NewAttemptServiceWithClock is test-only for deterministic timestamps.
func NewAttemptServiceWithClock(attempts AttemptStore, quizzes QuizReader, clock func() time.Time) *AttemptService {
	return &AttemptService{attempts: attempts, quizzes: quizzes, clock: clock}
}

// Start creates an independent IN_PROGRESS attempt on a READY quiz. Total
// points are frozen at the current sum of question points.
func (s *AttemptService) Start(ctx context.Context, quizID string) (domain.QuizAttempt, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.QuizAttempt{}, err
	}
	if quiz.GenerationStatus != domain.GenerationReady {
		return domain.QuizAttempt{}, domain.ErrQuizNotReady
	}

	total := 0
	for _, q := range quiz.Questions {
		total += q.Points
	}
	attempt := domain.QuizAttempt{
		ID:          uuid.NewString(),
		QuizID:      quizID,
		Status:      domain.AttemptInProgress,
		TotalPoints: total,
		StartedAt:   s.clock(),
	}
	if err := s.attempts.CreateAttempt(ctx, &attempt); err != nil {
		return domain.QuizAttempt{}, err
	}
	return attempt, nil
}

// Complete grades every submitted answer and commits score plus answer rows
// in one transaction. It is not idempotent: a second call is rejected with
// domain.ErrAttemptCompleted. An answer referencing a question outside the
// attempt's quiz aborts the whole completion with nothing persisted; a
// transaction failure leaves the attempt IN_PROGRESS and retryable.
func (s *AttemptService) Complete(ctx context.Context, attemptID string, submissions []AnswerSubmission) (CompletionResult, error) {
	if len(submissions) == 0 {
		return CompletionResult{}, domain.Validationf("at least one answer required")
	}
	seen := make(map[string]struct{}, len(submissions))
	for _, sub := range submissions {
		if sub.QuestionID == "" {
			return CompletionResult{}, domain.Validationf("answer missing questionId")
		}
		// One answer per question; a duplicate would be graded twice.
		if _, dup := seen[sub.QuestionID]; dup {
			return CompletionResult{}, domain.Validationf("duplicate answer for question %s", sub.QuestionID)
		}
		seen[sub.QuestionID] = struct{}{}
	}

	attempt, err := s.attempts.GetAttempt(ctx, attemptID)
	if err != nil {
		return CompletionResult{}, err
	}
	if attempt.Status != domain.AttemptInProgress {
		return CompletionResult{}, domain.ErrAttemptCompleted
	}

	quiz, err := s.quizzes.GetQuiz(ctx, attempt.QuizID)
	if err != nil {
		return CompletionResult{}, err
	}
	questions := make(map[string]domain.Question, len(quiz.Questions))
	for _, q := range quiz.Questions {
		questions[q.ID] = q
	}

	// Grade everything before touching the store.
	score := 0
	answers := make([]domain.Answer, 0, len(submissions))
	for _, sub := range submissions {
		question, ok := questions[sub.QuestionID]
		if !ok {
			return CompletionResult{}, domain.ErrQuestionNotInQuiz
		}
		value := domain.DecodeAnswer(question.Type, sub.Value)
		grade := Grade(question, value)
		score += grade.Points
		answers = append(answers, domain.Answer{
			ID:         uuid.NewString(),
			AttemptID:  attempt.ID,
			QuestionID: question.ID,
			UserAnswer: value,
			IsCorrect:  grade.Correct,
			Points:     grade.Points,
		})
	}

	if err := s.attempts.CompleteAttempt(ctx, attempt.ID, score, s.clock(), answers); err != nil {
		return CompletionResult{}, err
	}
	return CompletionResult{
		AttemptID:   attempt.ID,
		Score:       score,
		TotalPoints: attempt.TotalPoints,
	}, nil
}

// Get returns an attempt with its answers.
func (s *AttemptService) Get(ctx context.Context, id string) (domain.QuizAttempt, error) {
	return s.attempts.GetAttempt(ctx, id)
}

// ListForQuiz returns all attempts on a quiz, newest first.
func (s *AttemptService) ListForQuiz(ctx context.Context, quizID string) ([]domain.QuizAttempt, error) {
	return s.attempts.ListAttempts(ctx, quizID)
}
