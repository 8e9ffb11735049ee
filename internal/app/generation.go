package app

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/0x3st/quizit/internal/domain"
	"github.com/0x3st/quizit/internal/llm"
)

// Completer is the structured-completion boundary to the external model.
type Completer interface {
	Complete(ctx context.Context, prompt llm.Prompt) (raw string, usage llm.Usage, err error)
	Provider() string
	Model() string
}

// GeneratorConfig bounds a generation run.
type GeneratorConfig struct {
	PromptVersion   string
	MaxContentChars int
	MaxAttempts     int
	BackoffBase     time.Duration
	CallTimeout     time.Duration
}

func (c GeneratorConfig) withDefaults() GeneratorConfig {
	if c.PromptVersion == "" {
		c.PromptVersion = llm.DefaultPromptVersion
	}
	if c.MaxContentChars <= 0 {
		c.MaxContentChars = 60000
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.BackoffBase <= 0 {
		c.BackoffBase = time.Second
	}
	if c.CallTimeout <= 0 {
		c.CallTimeout = 2 * time.Minute
	}
	return c
}

// Generator owns the quiz generation state machine:
// PENDING -> GENERATING -> {READY, FAILED}. READY and FAILED are terminal;
// re-generation is a new quiz.
type Generator struct {
	quizzes   QuizStore
	completer Completer
	cfg       GeneratorConfig

	sleep func(time.Duration)
	clock func() time.Time
}

// NewGenerator wires the orchestrator. Config zeroes fall back to the
// defaults (3 attempts, 1s backoff base, 60k char limit).
func NewGenerator(quizzes QuizStore, completer Completer, cfg GeneratorConfig) *Generator {
	return &Generator{
		quizzes:   quizzes,
		completer: completer,
		cfg:       cfg.withDefaults(),
		sleep:     time.Sleep,
		clock:     time.Now,
	}
}

// NewGeneratorWithClock is test-only: it injects deterministic sleep and clock.
func NewGeneratorWithClock(quizzes QuizStore, completer Completer, cfg GeneratorConfig, sleep func(time.Duration), clock func() time.Time) *Generator {
	g := NewGenerator(quizzes, completer, cfg)
	g.sleep = sleep
	g.clock = clock
	return g
}

// GenerateRequest carries a persisted GENERATING quiz together with the
// requested types and the material content to generate from.
type GenerateRequest struct {
	Quiz    domain.Quiz
	Types   []domain.QuestionType
	Content string
}

// Run drives one generation for an already-persisted GENERATING quiz. It is
// detached from the triggering request: completion is observed only through
// the quiz's persisted status. Run never returns an error to a caller; every
// terminal outcome is written to the store.
func (g *Generator) Run(ctx context.Context, req GenerateRequest) {
	quiz := req.Quiz
	start := g.clock()

	prompt := llm.BuildQuizPrompt(g.cfg.PromptVersion, llm.PromptParams{
		Content:       TruncateContent(req.Content, g.cfg.MaxContentChars),
		QuestionCount: quiz.QuestionCount,
		Types:         req.Types,
		Difficulty:    quiz.Difficulty,
		Title:         quiz.Title,
	})

	var lastErr error
	for attempt := 0; attempt < g.cfg.MaxAttempts; attempt++ {
		if attempt > 0 {
			g.sleep(g.cfg.BackoffBase << (attempt - 1))
		}

		result, usage, err := g.completeOnce(ctx, prompt)
		if err != nil {
			lastErr = err
			log.Printf("quiz %s: generation attempt %d/%d failed: %v", quiz.ID, attempt+1, g.cfg.MaxAttempts, err)
			continue
		}

		ready := g.buildReady(quiz, result, usage, prompt.Version, g.clock().Sub(start))
		if err := g.quizzes.MarkQuizReady(ctx, quiz.ID, ready); err != nil {
			// A READY quiz with no questions must never exist; persistence
			// failure after a good result turns the quiz FAILED.
			log.Printf("quiz %s: persisting generated questions failed: %v", quiz.ID, err)
			g.fail(ctx, quiz.ID, err)
			return
		}
		log.Printf("quiz %s: ready with %d questions", quiz.ID, len(ready.Questions))
		return
	}

	g.fail(ctx, quiz.ID, lastErr)
}

// completeOnce makes a single bounded model call and validates the result.
// Schema validation failure is retryable exactly like a provider failure.
func (g *Generator) completeOnce(ctx context.Context, prompt llm.Prompt) (*llm.QuizResult, llm.Usage, error) {
	callCtx, cancel := context.WithTimeout(ctx, g.cfg.CallTimeout)
	defer cancel()

	raw, usage, err := g.completer.Complete(callCtx, prompt)
	if err != nil {
		return nil, llm.Usage{}, err
	}
	result, err := llm.ParseQuizResult(raw)
	if err != nil {
		return nil, llm.Usage{}, err
	}
	return result, usage, nil
}

func (g *Generator) buildReady(quiz domain.Quiz, result *llm.QuizResult, usage llm.Usage, promptVersion string, elapsed time.Duration) ReadyQuiz {
	questions := make([]domain.Question, 0, len(result.Questions))
	for i, q := range result.Questions {
		questions = append(questions, domain.Question{
			ID:            uuid.NewString(),
			QuizID:        quiz.ID,
			Type:          q.Type,
			Content:       q.Content,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   q.Explanation,
			Points:        q.Points,
			Order:         i + 1,
		})
	}
	return ReadyQuiz{
		Title:       result.Title,
		Description: result.Description,
		Meta: domain.GenerationMeta{
			Provider:      g.completer.Provider(),
			Model:         g.completer.Model(),
			PromptVersion: promptVersion,
			InputTokens:   usage.InputTokens,
			OutputTokens:  usage.OutputTokens,
			Duration:      elapsed,
		},
		Questions: questions,
	}
}

func (g *Generator) fail(ctx context.Context, quizID string, cause error) {
	msg := "quiz generation failed"
	if cause != nil {
		msg = cause.Error()
	}
	if err := g.quizzes.MarkQuizFailed(ctx, quizID, msg); err != nil {
		log.Printf("quiz %s: recording failure: %v", quizID, err)
	} else {
		log.Printf("quiz %s: failed: %s", quizID, msg)
	}
}
