package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/0x3st/quizit/internal/app"
	"github.com/0x3st/quizit/internal/domain"
)

// Store implements the app store interfaces on Postgres via bun. Lifecycle
// transitions that must be atomic (READY + questions, COMPLETED + answers)
// run in a single transaction with a conditional status update so a racing
// writer loses cleanly.
type Store struct {
	db *bun.DB
}

func NewStore(db *bun.DB) *Store {
	return &Store{db: db}
}

var (
	_ app.MaterialStore = (*Store)(nil)
	_ app.QuizStore     = (*Store)(nil)
	_ app.AttemptStore  = (*Store)(nil)
	_ app.StatsStore    = (*Store)(nil)
)

func (s *Store) CreateMaterial(ctx context.Context, m *domain.Material) error {
	row := fromMaterial(*m)
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return fmt.Errorf("insert material: %w", err)
	}
	return nil
}

func (s *Store) GetMaterial(ctx context.Context, id string) (domain.Material, error) {
	var row materialRow
	err := s.db.NewSelect().Model(&row).Where("m.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Material{}, domain.ErrMaterialNotFound
	}
	if err != nil {
		return domain.Material{}, fmt.Errorf("load material: %w", err)
	}
	return toMaterial(row), nil
}

func (s *Store) FindMaterialBySHA256(ctx context.Context, sha string) (*domain.Material, error) {
	var row materialRow
	err := s.db.NewSelect().Model(&row).Where("m.sha256 = ?", sha).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find material by digest: %w", err)
	}
	m := toMaterial(row)
	return &m, nil
}

func (s *Store) ListMaterials(ctx context.Context, p app.Page) ([]domain.Material, int, error) {
	var rows []materialRow
	total, err := s.db.NewSelect().Model(&rows).
		Order("created_at DESC").
		Limit(p.PageSize).Offset(p.Offset()).
		ScanAndCount(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("list materials: %w", err)
	}
	out := make([]domain.Material, 0, len(rows))
	for _, r := range rows {
		out = append(out, toMaterial(r))
	}
	return out, total, nil
}

func (s *Store) SetMaterialParsing(ctx context.Context, id string) error {
	return s.updateMaterial(ctx, id, map[string]any{
		"parse_status": string(domain.ParseParsing),
		"parse_error":  "",
	})
}

func (s *Store) SetMaterialParsed(ctx context.Context, id, content string) error {
	return s.updateMaterial(ctx, id, map[string]any{
		"parse_status": string(domain.ParseParsed),
		"content":      content,
		"parse_error":  "",
	})
}

func (s *Store) SetMaterialParseFailed(ctx context.Context, id, msg string) error {
	return s.updateMaterial(ctx, id, map[string]any{
		"parse_status": string(domain.ParseFailed),
		"parse_error":  msg,
	})
}

func (s *Store) updateMaterial(ctx context.Context, id string, set map[string]any) error {
	q := s.db.NewUpdate().Model((*materialRow)(nil)).Where("id = ?", id).Set("updated_at = now()")
	for col, val := range set {
		q = q.Set("? = ?", bun.Ident(col), val)
	}
	res, err := q.Exec(ctx)
	if err != nil {
		return fmt.Errorf("update material: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrMaterialNotFound
	}
	return nil
}

func (s *Store) DeleteMaterial(ctx context.Context, id string) error {
	res, err := s.db.NewDelete().Model((*materialRow)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete material: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrMaterialNotFound
	}
	return nil
}

func (s *Store) CreateQuiz(ctx context.Context, q *domain.Quiz) error {
	row := quizRow{
		ID:               q.ID,
		MaterialID:       q.MaterialID,
		Title:            q.Title,
		Description:      q.Description,
		QuestionCount:    q.QuestionCount,
		Difficulty:       string(q.Difficulty),
		GenerationStatus: string(q.GenerationStatus),
	}
	if _, err := s.db.NewInsert().Model(&row).Returning("created_at").Exec(ctx); err != nil {
		return fmt.Errorf("insert quiz: %w", err)
	}
	q.CreatedAt = row.CreatedAt
	return nil
}

func (s *Store) GetQuiz(ctx context.Context, id string) (domain.Quiz, error) {
	var row quizRow
	err := s.db.NewSelect().Model(&row).Where("q.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}

	var qrows []questionRow
	if err := s.db.NewSelect().Model(&qrows).Where("quiz_id = ?", id).Order("ord ASC").Scan(ctx); err != nil {
		return domain.Quiz{}, fmt.Errorf("load questions: %w", err)
	}
	quiz := toQuiz(row)
	for _, qr := range qrows {
		question, err := toQuestion(qr)
		if err != nil {
			return domain.Quiz{}, fmt.Errorf("decode question %s: %w", qr.ID, err)
		}
		quiz.Questions = append(quiz.Questions, question)
	}
	return quiz, nil
}

func (s *Store) ListQuizzes(ctx context.Context, p app.Page) ([]domain.Quiz, int, error) {
	var rows []quizRow
	total, err := s.db.NewSelect().Model(&rows).
		Order("created_at DESC").
		Limit(p.PageSize).Offset(p.Offset()).
		ScanAndCount(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("list quizzes: %w", err)
	}
	out := make([]domain.Quiz, 0, len(rows))
	for _, r := range rows {
		out = append(out, toQuiz(r))
	}
	return out, total, nil
}

func (s *Store) DeleteQuiz(ctx context.Context, id string) error {
	res, err := s.db.NewDelete().Model((*quizRow)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete quiz: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrQuizNotFound
	}
	return nil
}

func (s *Store) MarkQuizReady(ctx context.Context, quizID string, ready app.ReadyQuiz) error {
	rows := make([]questionRow, 0, len(ready.Questions))
	for _, q := range ready.Questions {
		row, err := fromQuestion(q)
		if err != nil {
			return fmt.Errorf("encode question: %w", err)
		}
		rows = append(rows, row)
	}

	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().Model((*quizRow)(nil)).
			Set("title = ?", ready.Title).
			Set("description = ?", ready.Description).
			Set("generation_status = ?", string(domain.GenerationReady)).
			Set("provider = ?", ready.Meta.Provider).
			Set("model = ?", ready.Meta.Model).
			Set("prompt_version = ?", ready.Meta.PromptVersion).
			Set("input_tokens = ?", ready.Meta.InputTokens).
			Set("output_tokens = ?", ready.Meta.OutputTokens).
			Set("generation_ms = ?", ready.Meta.Duration.Milliseconds()).
			Set("question_count = ?", len(ready.Questions)).
			Where("id = ? AND generation_status IN (?, ?)",
				quizID, string(domain.GenerationPending), string(domain.GenerationGenerating)).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("flip quiz ready: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return domain.ErrQuizNotFound
		}
		if _, err := tx.NewInsert().Model(&rows).Exec(ctx); err != nil {
			return fmt.Errorf("insert questions: %w", err)
		}
		return nil
	})
}

func (s *Store) MarkQuizFailed(ctx context.Context, quizID, msg string) error {
	res, err := s.db.NewUpdate().Model((*quizRow)(nil)).
		Set("generation_status = ?", string(domain.GenerationFailed)).
		Set("generation_error = ?", msg).
		Where("id = ? AND generation_status IN (?, ?)",
			quizID, string(domain.GenerationPending), string(domain.GenerationGenerating)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("flip quiz failed: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrQuizNotFound
	}
	return nil
}

func (s *Store) CreateAttempt(ctx context.Context, a *domain.QuizAttempt) error {
	row := attemptRow{
		ID:          a.ID,
		QuizID:      a.QuizID,
		Status:      string(a.Status),
		TotalPoints: a.TotalPoints,
		StartedAt:   a.StartedAt,
	}
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

func (s *Store) GetAttempt(ctx context.Context, id string) (domain.QuizAttempt, error) {
	var row attemptRow
	err := s.db.NewSelect().Model(&row).Where("a.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.QuizAttempt{}, domain.ErrAttemptNotFound
	}
	if err != nil {
		return domain.QuizAttempt{}, fmt.Errorf("load attempt: %w", err)
	}
	attempt := toAttempt(row)

	var arows []answerRow
	if err := s.db.NewSelect().Model(&arows).Where("attempt_id = ?", id).Scan(ctx); err != nil {
		return domain.QuizAttempt{}, fmt.Errorf("load answers: %w", err)
	}
	for _, ar := range arows {
		answer, err := toAnswer(ar)
		if err != nil {
			return domain.QuizAttempt{}, fmt.Errorf("decode answer %s: %w", ar.ID, err)
		}
		attempt.Answers = append(attempt.Answers, answer)
	}
	return attempt, nil
}

func (s *Store) ListAttempts(ctx context.Context, quizID string) ([]domain.QuizAttempt, error) {
	var rows []attemptRow
	if err := s.db.NewSelect().Model(&rows).Where("quiz_id = ?", quizID).Order("started_at DESC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	out := make([]domain.QuizAttempt, 0, len(rows))
	for _, r := range rows {
		out = append(out, toAttempt(r))
	}
	return out, nil
}

func (s *Store) CompleteAttempt(ctx context.Context, attemptID string, score int, completedAt time.Time, answers []domain.Answer) error {
	rows := make([]answerRow, 0, len(answers))
	for _, a := range answers {
		row, err := fromAnswer(a)
		if err != nil {
			return fmt.Errorf("encode answer: %w", err)
		}
		rows = append(rows, row)
	}

	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		// The conditional update serializes concurrent completions: the loser
		// matches zero rows and observes ALREADY_COMPLETED.
		res, err := tx.NewUpdate().Model((*attemptRow)(nil)).
			Set("status = ?", string(domain.AttemptCompleted)).
			Set("score = ?", score).
			Set("completed_at = ?", completedAt).
			Where("id = ? AND status = ?", attemptID, string(domain.AttemptInProgress)).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("flip attempt completed: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			exists, err := tx.NewSelect().Model((*attemptRow)(nil)).Where("id = ?", attemptID).Exists(ctx)
			if err != nil {
				return fmt.Errorf("check attempt: %w", err)
			}
			if !exists {
				return domain.ErrAttemptNotFound
			}
			return domain.ErrAttemptCompleted
		}
		if _, err := tx.NewInsert().Model(&rows).Exec(ctx); err != nil {
			return fmt.Errorf("insert answers: %w", err)
		}
		return nil
	})
}

func (s *Store) Stats(ctx context.Context) (domain.Stats, error) {
	var stats domain.Stats
	var err error
	if stats.Materials, err = s.db.NewSelect().Model((*materialRow)(nil)).Count(ctx); err != nil {
		return stats, fmt.Errorf("count materials: %w", err)
	}
	if stats.Quizzes, err = s.db.NewSelect().Model((*quizRow)(nil)).Count(ctx); err != nil {
		return stats, fmt.Errorf("count quizzes: %w", err)
	}
	if stats.Attempts, err = s.db.NewSelect().Model((*attemptRow)(nil)).Count(ctx); err != nil {
		return stats, fmt.Errorf("count attempts: %w", err)
	}
	var ratio sql.NullFloat64
	err = s.db.NewSelect().Model((*attemptRow)(nil)).
		ColumnExpr("AVG(score::float / total_points)").
		Where("status = ? AND total_points > 0", string(domain.AttemptCompleted)).
		Scan(ctx, &ratio)
	if err != nil {
		return stats, fmt.Errorf("average score: %w", err)
	}
	if ratio.Valid {
		stats.AvgScoreRatio = ratio.Float64
	}
	return stats, nil
}
