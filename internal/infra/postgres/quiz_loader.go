package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/0x3st/quizit/internal/domain"
)

// QuizLoader serves the hot read path for attempts: quiz plus ordered
// questions straight from Postgres over a pgx pool, feeding the cache layer.
type QuizLoader struct {
	pool *pgxpool.Pool
}

func NewQuizLoader(pool *pgxpool.Pool) *QuizLoader {
	return &QuizLoader{pool: pool}
}

func (l *QuizLoader) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	var quiz domain.Quiz
	var status, difficulty string
	err := l.pool.QueryRow(ctx, `
		SELECT id, material_id, title, description, question_count, difficulty,
		       generation_status, generation_error, created_at
		FROM quizzes WHERE id=$1`, quizID).
		Scan(&quiz.ID, &quiz.MaterialID, &quiz.Title, &quiz.Description,
			&quiz.QuestionCount, &difficulty, &status, &quiz.GenerationError, &quiz.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}
	quiz.Difficulty = domain.Difficulty(difficulty)
	quiz.GenerationStatus = domain.GenerationStatus(status)

	rows, err := l.pool.Query(ctx, `
		SELECT id, type, content, options, correct_answer, explanation, points, ord
		FROM questions WHERE quiz_id=$1 ORDER BY ord ASC`, quizID)
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var q domain.Question
		var qtype string
		var options, correct []byte
		if err := rows.Scan(&q.ID, &qtype, &q.Content, &options, &correct, &q.Explanation, &q.Points, &q.Order); err != nil {
			return domain.Quiz{}, fmt.Errorf("scan question: %w", err)
		}
		q.QuizID = quizID
		q.Type = domain.QuestionType(qtype)
		if len(options) > 0 {
			if err := json.Unmarshal(options, &q.Options); err != nil {
				return domain.Quiz{}, fmt.Errorf("unmarshal options: %w", err)
			}
		}
		if err := q.CorrectAnswer.UnmarshalJSON(correct); err != nil {
			return domain.Quiz{}, fmt.Errorf("unmarshal correct answer: %w", err)
		}
		quiz.Questions = append(quiz.Questions, q)
	}
	if err := rows.Err(); err != nil {
		return domain.Quiz{}, fmt.Errorf("iterate questions: %w", err)
	}
	return quiz, nil
}
