package domain

import "time"

// ParseStatus tracks a material through text extraction.
type ParseStatus string

const (
	ParseUploaded ParseStatus = "UPLOADED"
	ParseParsing  ParseStatus = "PARSING"
	ParseParsed   ParseStatus = "PARSED"
	ParseFailed   ParseStatus = "FAILED"
)

// GenerationStatus is the quiz generation lifecycle. READY and FAILED are terminal.
type GenerationStatus string

const (
	GenerationPending    GenerationStatus = "PENDING"
	GenerationGenerating GenerationStatus = "GENERATING"
	GenerationReady      GenerationStatus = "READY"
	GenerationFailed     GenerationStatus = "FAILED"
)

// AttemptStatus is the attempt lifecycle. COMPLETED is terminal.
type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "IN_PROGRESS"
	AttemptCompleted  AttemptStatus = "COMPLETED"
)

// Difficulty of the generated questions.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
)

// QuestionType discriminates the answer shape of a question.
type QuestionType string

const (
	SingleChoice   QuestionType = "SINGLE_CHOICE"
	MultipleChoice QuestionType = "MULTIPLE_CHOICE"
	TrueFalse      QuestionType = "TRUE_FALSE"
	FillBlank      QuestionType = "FILL_BLANK"
	ShortAnswer    QuestionType = "SHORT_ANSWER"
	Matching       QuestionType = "MATCHING"
)

// KnownQuestionType reports whether t is one of the supported types.
func KnownQuestionType(t QuestionType) bool {
	switch t {
	case SingleChoice, MultipleChoice, TrueFalse, FillBlank, ShortAnswer, Matching:
		return true
	}
	return false
}

// Material is an uploaded courseware document and its extracted text.
// Content is immutable once PARSED except by an explicit re-parse.
type Material struct {
	ID           string      `json:"id"`
	Filename     string      `json:"filename"`
	OriginalName string      `json:"originalName"`
	Extension    string      `json:"extension"`
	MimeType     string      `json:"mimeType"`
	FileSize     int64       `json:"fileSize"`
	SHA256       string      `json:"sha256"`
	Content      string      `json:"content,omitempty"`
	ParseStatus  ParseStatus `json:"parseStatus"`
	ParseError   string      `json:"parseError,omitempty"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// Quiz references a material and owns its questions. Once READY or FAILED
// it is never mutated again.
type Quiz struct {
	ID               string           `json:"id"`
	MaterialID       string           `json:"materialId"`
	Title            string           `json:"title"`
	Description      string           `json:"description,omitempty"`
	QuestionCount    int              `json:"questionCount"`
	Difficulty       Difficulty       `json:"difficulty"`
	GenerationStatus GenerationStatus `json:"generationStatus"`
	GenerationError  string           `json:"generationError,omitempty"`
	Provider         string           `json:"provider,omitempty"`
	Model            string           `json:"model,omitempty"`
	PromptVersion    string           `json:"promptVersion,omitempty"`
	InputTokens      int              `json:"inputTokens,omitempty"`
	OutputTokens     int              `json:"outputTokens,omitempty"`
	GenerationMs     int64            `json:"generationMs,omitempty"`
	CreatedAt        time.Time        `json:"createdAt"`

	Questions []Question `json:"questions,omitempty"`
}

// Question is immutable after creation and owned exclusively by its quiz.
// Order is 1-based and unique within the quiz.
type Question struct {
	ID            string       `json:"id"`
	QuizID        string       `json:"quizId"`
	Type          QuestionType `json:"type"`
	Content       string       `json:"content"`
	Options       []string     `json:"options,omitempty"`
	CorrectAnswer AnswerValue  `json:"correctAnswer"`
	Explanation   string       `json:"explanation,omitempty"`
	Points        int          `json:"points"`
	Order         int          `json:"order"`
}

// QuizAttempt freezes totalPoints at creation time; score stays nil until
// the attempt is completed.
type QuizAttempt struct {
	ID          string        `json:"id"`
	QuizID      string        `json:"quizId"`
	Status      AttemptStatus `json:"status"`
	TotalPoints int           `json:"totalPoints"`
	Score       *int          `json:"score"`
	StartedAt   time.Time     `json:"startedAt"`
	CompletedAt *time.Time    `json:"completedAt,omitempty"`

	Answers []Answer `json:"answers,omitempty"`
}

// Answer records the graded submission for one (attempt, question) pair.
// IsCorrect nil means the answer needs manual review.
type Answer struct {
	ID         string      `json:"id"`
	AttemptID  string      `json:"attemptId"`
	QuestionID string      `json:"questionId"`
	UserAnswer AnswerValue `json:"userAnswer"`
	IsCorrect  *bool       `json:"isCorrect"`
	Points     int         `json:"points"`
}

// GenerationMeta captures provenance for a successful generation run.
type GenerationMeta struct {
	Provider      string
	Model         string
	PromptVersion string
	InputTokens   int
	OutputTokens  int
	Duration      time.Duration
}

// Stats is the dashboard projection over the whole store.
type Stats struct {
	Materials     int     `json:"materials"`
	Quizzes       int     `json:"quizzes"`
	Attempts      int     `json:"attempts"`
	AvgScoreRatio float64 `json:"avgScoreRatio"`
}
