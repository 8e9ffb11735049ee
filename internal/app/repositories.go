package app

import (
	"context"
	"time"

	"github.com/0x3st/quizit/internal/domain"
)

// Page is a 1-based pagination request.
type Page struct {
	Page     int
	PageSize int
}

// Clamped normalizes out-of-range values to sane defaults.
func (p Page) Clamped() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 || p.PageSize > 100 {
		p.PageSize = 10
	}
	return p
}

// Offset returns the row offset for the page.
func (p Page) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// MaterialStore persists uploaded materials. Material content is written only
// by the material service.
type MaterialStore interface {
	CreateMaterial(ctx context.Context, m *domain.Material) error
	GetMaterial(ctx context.Context, id string) (domain.Material, error)
	// FindMaterialBySHA256 returns nil when no material has that digest.
	FindMaterialBySHA256(ctx context.Context, sha string) (*domain.Material, error)
	ListMaterials(ctx context.Context, p Page) ([]domain.Material, int, error)
	SetMaterialParsing(ctx context.Context, id string) error
	SetMaterialParsed(ctx context.Context, id, content string) error
	SetMaterialParseFailed(ctx context.Context, id, msg string) error
	DeleteMaterial(ctx context.Context, id string) error
}

// ReadyQuiz is everything MarkQuizReady persists atomically with the READY
// transition.
type ReadyQuiz struct {
	Title       string
	Description string
	Meta        domain.GenerationMeta
	Questions   []domain.Question
}

// QuizStore persists quizzes and their questions. Generation status and
// question rows are mutated only through it, and only by the generator.
type QuizStore interface {
	CreateQuiz(ctx context.Context, q *domain.Quiz) error
	// GetQuiz returns the quiz with its questions in presentation order.
	GetQuiz(ctx context.Context, id string) (domain.Quiz, error)
	ListQuizzes(ctx context.Context, p Page) ([]domain.Quiz, int, error)
	DeleteQuiz(ctx context.Context, id string) error
	// MarkQuizReady flips the quiz to READY and creates its questions in a
	// single transaction; on error the quiz must not be left READY.
	MarkQuizReady(ctx context.Context, quizID string, ready ReadyQuiz) error
	MarkQuizFailed(ctx context.Context, quizID, msg string) error
}

// QuizReader is the read side used by attempt handling; the redis cache
// implements it in front of a QuizStore.
type QuizReader interface {
	GetQuiz(ctx context.Context, id string) (domain.Quiz, error)
}

// AttemptStore persists attempts and answers. Answer rows exist only for
// COMPLETED attempts.
type AttemptStore interface {
	CreateAttempt(ctx context.Context, a *domain.QuizAttempt) error
	// GetAttempt returns the attempt with its answers, when completed.
	GetAttempt(ctx context.Context, id string) (domain.QuizAttempt, error)
	ListAttempts(ctx context.Context, quizID string) ([]domain.QuizAttempt, error)
	// CompleteAttempt atomically flips an IN_PROGRESS attempt to COMPLETED and
	// inserts all answer rows. It returns domain.ErrAttemptCompleted when the
	// attempt was already completed (including a concurrent completion racing
	// this one) and leaves the attempt untouched on any failure.
	CompleteAttempt(ctx context.Context, attemptID string, score int, completedAt time.Time, answers []domain.Answer) error
}

// StatsStore aggregates dashboard counts.
type StatsStore interface {
	Stats(ctx context.Context) (domain.Stats, error)
}
