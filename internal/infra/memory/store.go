package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/0x3st/quizit/internal/app"
	"github.com/0x3st/quizit/internal/domain"
)

// Store is an in-memory implementation of the app store interfaces with the
// same transactional guarantees the postgres store gives (single-writer
// sections under one mutex). Used in tests and for running without a database.
type Store struct {
	mu        sync.RWMutex
	materials map[string]domain.Material
	quizzes   map[string]domain.Quiz
	attempts  map[string]domain.QuizAttempt
	answers   map[string][]domain.Answer // by attempt ID
}

func NewStore() *Store {
	return &Store{
		materials: make(map[string]domain.Material),
		quizzes:   make(map[string]domain.Quiz),
		attempts:  make(map[string]domain.QuizAttempt),
		answers:   make(map[string][]domain.Answer),
	}
}

var (
	_ app.MaterialStore = (*Store)(nil)
	_ app.QuizStore     = (*Store)(nil)
	_ app.AttemptStore  = (*Store)(nil)
	_ app.StatsStore    = (*Store)(nil)
)

func (s *Store) CreateMaterial(_ context.Context, m *domain.Material) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.materials[m.ID] = *m
	return nil
}

func (s *Store) GetMaterial(_ context.Context, id string) (domain.Material, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.materials[id]
	if !ok {
		return domain.Material{}, domain.ErrMaterialNotFound
	}
	return m, nil
}

func (s *Store) FindMaterialBySHA256(_ context.Context, sha string) (*domain.Material, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.materials {
		if m.SHA256 == sha {
			m := m
			return &m, nil
		}
	}
	return nil, nil
}

func (s *Store) ListMaterials(_ context.Context, p app.Page) ([]domain.Material, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := make([]domain.Material, 0, len(s.materials))
	for _, m := range s.materials {
		all = append(all, m)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return paginate(all, p), len(all), nil
}

func (s *Store) SetMaterialParsing(_ context.Context, id string) error {
	return s.updateMaterial(id, func(m *domain.Material) {
		m.ParseStatus = domain.ParseParsing
		m.ParseError = ""
	})
}

func (s *Store) SetMaterialParsed(_ context.Context, id, content string) error {
	return s.updateMaterial(id, func(m *domain.Material) {
		m.ParseStatus = domain.ParseParsed
		m.Content = content
		m.ParseError = ""
	})
}

func (s *Store) SetMaterialParseFailed(_ context.Context, id, msg string) error {
	return s.updateMaterial(id, func(m *domain.Material) {
		m.ParseStatus = domain.ParseFailed
		m.ParseError = msg
	})
}

func (s *Store) DeleteMaterial(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.materials[id]; !ok {
		return domain.ErrMaterialNotFound
	}
	delete(s.materials, id)
	// cascade to quizzes, questions, attempts, answers
	for quizID, quiz := range s.quizzes {
		if quiz.MaterialID == id {
			s.deleteQuizLocked(quizID)
		}
	}
	return nil
}

func (s *Store) updateMaterial(id string, f func(*domain.Material)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.materials[id]
	if !ok {
		return domain.ErrMaterialNotFound
	}
	f(&m)
	m.UpdatedAt = time.Now()
	s.materials[id] = m
	return nil
}

func (s *Store) CreateQuiz(_ context.Context, q *domain.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now()
	}
	s.quizzes[q.ID] = *q
	return nil
}

func (s *Store) GetQuiz(_ context.Context, id string) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.quizzes[id]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	questions := append([]domain.Question(nil), q.Questions...)
	sort.Slice(questions, func(i, j int) bool { return questions[i].Order < questions[j].Order })
	q.Questions = questions
	return q, nil
}

func (s *Store) ListQuizzes(_ context.Context, p app.Page) ([]domain.Quiz, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := make([]domain.Quiz, 0, len(s.quizzes))
	for _, q := range s.quizzes {
		q.Questions = nil
		all = append(all, q)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return paginate(all, p), len(all), nil
}

func (s *Store) DeleteQuiz(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.quizzes[id]; !ok {
		return domain.ErrQuizNotFound
	}
	s.deleteQuizLocked(id)
	return nil
}

func (s *Store) deleteQuizLocked(id string) {
	delete(s.quizzes, id)
	for attemptID, attempt := range s.attempts {
		if attempt.QuizID == id {
			delete(s.attempts, attemptID)
			delete(s.answers, attemptID)
		}
	}
}

func (s *Store) MarkQuizReady(_ context.Context, quizID string, ready app.ReadyQuiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.quizzes[quizID]
	if !ok {
		return domain.ErrQuizNotFound
	}
	q.Title = ready.Title
	q.Description = ready.Description
	q.GenerationStatus = domain.GenerationReady
	q.Provider = ready.Meta.Provider
	q.Model = ready.Meta.Model
	q.PromptVersion = ready.Meta.PromptVersion
	q.InputTokens = ready.Meta.InputTokens
	q.OutputTokens = ready.Meta.OutputTokens
	q.GenerationMs = ready.Meta.Duration.Milliseconds()
	q.QuestionCount = len(ready.Questions)
	q.Questions = append([]domain.Question(nil), ready.Questions...)
	s.quizzes[quizID] = q
	return nil
}

func (s *Store) MarkQuizFailed(_ context.Context, quizID, msg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.quizzes[quizID]
	if !ok {
		return domain.ErrQuizNotFound
	}
	q.GenerationStatus = domain.GenerationFailed
	q.GenerationError = msg
	s.quizzes[quizID] = q
	return nil
}

func (s *Store) CreateAttempt(_ context.Context, a *domain.QuizAttempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts[a.ID] = *a
	return nil
}

func (s *Store) GetAttempt(_ context.Context, id string) (domain.QuizAttempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.attempts[id]
	if !ok {
		return domain.QuizAttempt{}, domain.ErrAttemptNotFound
	}
	a.Answers = append([]domain.Answer(nil), s.answers[id]...)
	return a, nil
}

func (s *Store) ListAttempts(_ context.Context, quizID string) ([]domain.QuizAttempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.QuizAttempt
	for _, a := range s.attempts {
		if a.QuizID == quizID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	return out, nil
}

func (s *Store) CompleteAttempt(_ context.Context, attemptID string, score int, completedAt time.Time, answers []domain.Answer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.attempts[attemptID]
	if !ok {
		return domain.ErrAttemptNotFound
	}
	if a.Status != domain.AttemptInProgress {
		return domain.ErrAttemptCompleted
	}
	a.Status = domain.AttemptCompleted
	a.Score = &score
	a.CompletedAt = &completedAt
	s.attempts[attemptID] = a
	s.answers[attemptID] = append([]domain.Answer(nil), answers...)
	return nil
}

func (s *Store) Stats(_ context.Context) (domain.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := domain.Stats{
		Materials: len(s.materials),
		Quizzes:   len(s.quizzes),
		Attempts:  len(s.attempts),
	}
	var ratioSum float64
	var completed int
	for _, a := range s.attempts {
		if a.Status == domain.AttemptCompleted && a.Score != nil && a.TotalPoints > 0 {
			ratioSum += float64(*a.Score) / float64(a.TotalPoints)
			completed++
		}
	}
	if completed > 0 {
		stats.AvgScoreRatio = ratioSum / float64(completed)
	}
	return stats, nil
}

func paginate[T any](all []T, p app.Page) []T {
	start := p.Offset()
	if start >= len(all) {
		return nil
	}
	end := start + p.PageSize
	if end > len(all) {
		end = len(all)
	}
	return append([]T(nil), all[start:end]...)
}
