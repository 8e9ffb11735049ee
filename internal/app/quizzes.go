package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/0x3st/quizit/internal/domain"
)

// QuizConfig is a validated generation request.
type QuizConfig struct {
	MaterialID    string
	Title         string
	QuestionCount int
	Types         []domain.QuestionType
	Difficulty    domain.Difficulty
}

func (c *QuizConfig) validate() error {
	if c.MaterialID == "" {
		return domain.Validationf("materialId is required")
	}
	if c.QuestionCount == 0 {
		c.QuestionCount = 10
	}
	if c.QuestionCount < 5 || c.QuestionCount > 30 {
		return domain.Validationf("questionCount must be between 5 and 30")
	}
	if len(c.Types) == 0 {
		return domain.Validationf("select at least one question type")
	}
	for _, t := range c.Types {
		if !domain.KnownQuestionType(t) {
			return domain.Validationf("unknown question type %q", t)
		}
	}
	switch c.Difficulty {
	case "":
		c.Difficulty = domain.DifficultyMedium
	case domain.DifficultyEasy, domain.DifficultyMedium, domain.DifficultyHard:
	default:
		return domain.Validationf("unknown difficulty %q", c.Difficulty)
	}
	return nil
}

// QuizCacheInvalidator drops a cached quiz after a mutation so the read
// path stops serving it.
type QuizCacheInvalidator interface {
	Invalidate(ctx context.Context, quizID string)
}

// QuizService owns quiz intake and read projections. Generation itself runs
// detached in the Generator; the caller of Generate gets the GENERATING row
// back immediately.
type QuizService struct {
	quizzes   QuizStore
	materials MaterialStore
	generator *Generator
	stats     StatsStore
	cache     QuizCacheInvalidator

	// spawn runs the detached generation task; tests replace it to run inline.
	spawn func(func())
}

func NewQuizService(quizzes QuizStore, materials MaterialStore, generator *Generator, stats StatsStore) *QuizService {
	return &QuizService{
		quizzes:   quizzes,
		materials: materials,
		generator: generator,
		stats:     stats,
		spawn:     func(f func()) { go f() },
	}
}

// SetSpawner is test-only: it makes the detached generation task synchronous.
func (s *QuizService) SetSpawner(spawn func(func())) { s.spawn = spawn }

// SetQuizCache wires the cache that Delete must invalidate.
func (s *QuizService) SetQuizCache(cache QuizCacheInvalidator) { s.cache = cache }

// Generate accepts a generation request: it persists a GENERATING quiz row,
// kicks off the detached generation task, and returns the row. Failures of
// the task are observed through the quiz's status, never through this call.
func (s *QuizService) Generate(ctx context.Context, cfg QuizConfig) (domain.Quiz, error) {
	if err := cfg.validate(); err != nil {
		return domain.Quiz{}, err
	}

	material, err := s.materials.GetMaterial(ctx, cfg.MaterialID)
	if err != nil {
		return domain.Quiz{}, err
	}
	if material.ParseStatus != domain.ParseParsed || material.Content == "" {
		return domain.Quiz{}, domain.ErrMaterialNotParsed
	}

	title := cfg.Title
	if title == "" {
		title = fmt.Sprintf("Quiz from %s", material.OriginalName)
	}
	quiz := domain.Quiz{
		ID:               uuid.NewString(),
		MaterialID:       material.ID,
		Title:            title,
		QuestionCount:    cfg.QuestionCount,
		Difficulty:       cfg.Difficulty,
		GenerationStatus: domain.GenerationGenerating,
	}
	if err := s.quizzes.CreateQuiz(ctx, &quiz); err != nil {
		return domain.Quiz{}, err
	}

	req := GenerateRequest{Quiz: quiz, Types: cfg.Types, Content: material.Content}
	s.spawn(func() {
		// The request context dies with the HTTP call; the detached task
		// keeps its own lifetime.
		s.generator.Run(context.Background(), req)
	})
	return quiz, nil
}

// Get returns a quiz with its questions in presentation order.
func (s *QuizService) Get(ctx context.Context, id string) (domain.Quiz, error) {
	return s.quizzes.GetQuiz(ctx, id)
}

// List returns a page of quizzes, newest first, plus the total count.
func (s *QuizService) List(ctx context.Context, p Page) ([]domain.Quiz, int, error) {
	return s.quizzes.ListQuizzes(ctx, p.Clamped())
}

// Delete removes a quiz; questions and attempts cascade. The cached copy is
// dropped so the read path cannot keep serving a deleted quiz.
func (s *QuizService) Delete(ctx context.Context, id string) error {
	if err := s.quizzes.DeleteQuiz(ctx, id); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, id)
	}
	return nil
}

// Stats returns the dashboard counts.
func (s *QuizService) Stats(ctx context.Context) (domain.Stats, error) {
	return s.stats.Stats(ctx)
}
