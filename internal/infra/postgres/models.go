package postgres

import (
	"encoding/json"
	"time"

	"github.com/uptrace/bun"

	"github.com/0x3st/quizit/internal/domain"
)

type materialRow struct {
	bun.BaseModel `bun:"table:materials,alias:m"`

	ID           string    `bun:"id,pk"`
	Filename     string    `bun:"filename"`
	OriginalName string    `bun:"original_name"`
	Extension    string    `bun:"extension"`
	MimeType     string    `bun:"mime_type"`
	FileSize     int64     `bun:"file_size"`
	SHA256       string    `bun:"sha256"`
	Content      string    `bun:"content"`
	ParseStatus  string    `bun:"parse_status"`
	ParseError   string    `bun:"parse_error"`
	CreatedAt    time.Time `bun:"created_at"`
	UpdatedAt    time.Time `bun:"updated_at"`
}

type quizRow struct {
	bun.BaseModel `bun:"table:quizzes,alias:q"`

	ID               string    `bun:"id,pk"`
	MaterialID       string    `bun:"material_id"`
	Title            string    `bun:"title"`
	Description      string    `bun:"description"`
	QuestionCount    int       `bun:"question_count"`
	Difficulty       string    `bun:"difficulty"`
	GenerationStatus string    `bun:"generation_status"`
	GenerationError  string    `bun:"generation_error"`
	Provider         string    `bun:"provider"`
	Model            string    `bun:"model"`
	PromptVersion    string    `bun:"prompt_version"`
	InputTokens      int       `bun:"input_tokens"`
	OutputTokens     int       `bun:"output_tokens"`
	GenerationMs     int64     `bun:"generation_ms"`
	CreatedAt        time.Time `bun:"created_at,nullzero,default:now()"`
}

type questionRow struct {
	bun.BaseModel `bun:"table:questions,alias:qs"`

	ID            string          `bun:"id,pk"`
	QuizID        string          `bun:"quiz_id"`
	Type          string          `bun:"type"`
	Content       string          `bun:"content"`
	Options       json.RawMessage `bun:"options,type:jsonb,nullzero"`
	CorrectAnswer json.RawMessage `bun:"correct_answer,type:jsonb"`
	Explanation   string          `bun:"explanation"`
	Points        int             `bun:"points"`
	Order         int             `bun:"ord"`
}

type attemptRow struct {
	bun.BaseModel `bun:"table:quiz_attempts,alias:a"`

	ID          string     `bun:"id,pk"`
	QuizID      string     `bun:"quiz_id"`
	Status      string     `bun:"status"`
	TotalPoints int        `bun:"total_points"`
	Score       *int       `bun:"score"`
	StartedAt   time.Time  `bun:"started_at"`
	CompletedAt *time.Time `bun:"completed_at"`
}

type answerRow struct {
	bun.BaseModel `bun:"table:answers,alias:ans"`

	ID         string          `bun:"id,pk"`
	AttemptID  string          `bun:"attempt_id"`
	QuestionID string          `bun:"question_id"`
	UserAnswer json.RawMessage `bun:"user_answer,type:jsonb,nullzero"`
	IsCorrect  *bool           `bun:"is_correct"`
	Points     int             `bun:"points"`
}

func toMaterial(r materialRow) domain.Material {
	return domain.Material{
		ID:           r.ID,
		Filename:     r.Filename,
		OriginalName: r.OriginalName,
		Extension:    r.Extension,
		MimeType:     r.MimeType,
		FileSize:     r.FileSize,
		SHA256:       r.SHA256,
		Content:      r.Content,
		ParseStatus:  domain.ParseStatus(r.ParseStatus),
		ParseError:   r.ParseError,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func fromMaterial(m domain.Material) materialRow {
	return materialRow{
		ID:           m.ID,
		Filename:     m.Filename,
		OriginalName: m.OriginalName,
		Extension:    m.Extension,
		MimeType:     m.MimeType,
		FileSize:     m.FileSize,
		SHA256:       m.SHA256,
		Content:      m.Content,
		ParseStatus:  string(m.ParseStatus),
		ParseError:   m.ParseError,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func toQuiz(r quizRow) domain.Quiz {
	return domain.Quiz{
		ID:               r.ID,
		MaterialID:       r.MaterialID,
		Title:            r.Title,
		Description:      r.Description,
		QuestionCount:    r.QuestionCount,
		Difficulty:       domain.Difficulty(r.Difficulty),
		GenerationStatus: domain.GenerationStatus(r.GenerationStatus),
		GenerationError:  r.GenerationError,
		Provider:         r.Provider,
		Model:            r.Model,
		PromptVersion:    r.PromptVersion,
		InputTokens:      r.InputTokens,
		OutputTokens:     r.OutputTokens,
		GenerationMs:     r.GenerationMs,
		CreatedAt:        r.CreatedAt,
	}
}

func toQuestion(r questionRow) (domain.Question, error) {
	var options []string
	if len(r.Options) > 0 {
		if err := json.Unmarshal(r.Options, &options); err != nil {
			return domain.Question{}, err
		}
	}
	var answer domain.AnswerValue
	if err := answer.UnmarshalJSON(r.CorrectAnswer); err != nil {
		return domain.Question{}, err
	}
	return domain.Question{
		ID:            r.ID,
		QuizID:        r.QuizID,
		Type:          domain.QuestionType(r.Type),
		Content:       r.Content,
		Options:       options,
		CorrectAnswer: answer,
		Explanation:   r.Explanation,
		Points:        r.Points,
		Order:         r.Order,
	}, nil
}

func fromQuestion(q domain.Question) (questionRow, error) {
	var options json.RawMessage
	if len(q.Options) > 0 {
		b, err := json.Marshal(q.Options)
		if err != nil {
			return questionRow{}, err
		}
		options = b
	}
	answer, err := q.CorrectAnswer.MarshalJSON()
	if err != nil {
		return questionRow{}, err
	}
	return questionRow{
		ID:            q.ID,
		QuizID:        q.QuizID,
		Type:          string(q.Type),
		Content:       q.Content,
		Options:       options,
		CorrectAnswer: answer,
		Explanation:   q.Explanation,
		Points:        q.Points,
		Order:         q.Order,
	}, nil
}

func toAttempt(r attemptRow) domain.QuizAttempt {
	return domain.QuizAttempt{
		ID:          r.ID,
		QuizID:      r.QuizID,
		Status:      domain.AttemptStatus(r.Status),
		TotalPoints: r.TotalPoints,
		Score:       r.Score,
		StartedAt:   r.StartedAt,
		CompletedAt: r.CompletedAt,
	}
}

func toAnswer(r answerRow) (domain.Answer, error) {
	var value domain.AnswerValue
	if len(r.UserAnswer) > 0 {
		if err := value.UnmarshalJSON(r.UserAnswer); err != nil {
			return domain.Answer{}, err
		}
	}
	return domain.Answer{
		ID:         r.ID,
		AttemptID:  r.AttemptID,
		QuestionID: r.QuestionID,
		UserAnswer: value,
		IsCorrect:  r.IsCorrect,
		Points:     r.Points,
	}, nil
}

func fromAnswer(a domain.Answer) (answerRow, error) {
	value, err := a.UserAnswer.MarshalJSON()
	if err != nil {
		return answerRow{}, err
	}
	if string(value) == "null" {
		value = nil
	}
	return answerRow{
		ID:         a.ID,
		AttemptID:  a.AttemptID,
		QuestionID: a.QuestionID,
		UserAnswer: value,
		IsCorrect:  a.IsCorrect,
		Points:     a.Points,
	}, nil
}
