package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMaterialNotFound is returned when a referenced material does not exist.
	ErrMaterialNotFound = errors.New("material not found")
	// ErrQuizNotFound indicates the quiz could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrAttemptNotFound indicates a submitted attempt ID is invalid.
	ErrAttemptNotFound = errors.New("attempt not found")
	// ErrQuizNotReady is returned when starting an attempt on a quiz that is
	// not READY yet (or failed generation).
	ErrQuizNotReady = errors.New("quiz is not ready")
	// ErrMaterialNotParsed is returned when generating a quiz from a material
	// whose text has not been extracted.
	ErrMaterialNotParsed = errors.New("material not yet parsed")
	// ErrAttemptCompleted rejects a second completion of the same attempt.
	ErrAttemptCompleted = errors.New("attempt already completed")
	// ErrQuestionNotInQuiz aborts a completion referencing a foreign question.
	ErrQuestionNotInQuiz = errors.New("question does not belong to the attempt's quiz")
	// ErrDuplicateMaterial is returned when the same file content was already uploaded.
	ErrDuplicateMaterial = errors.New("file already uploaded")
)

// ValidationError marks malformed caller input. It is never retried and is
// surfaced to the caller immediately.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Validationf builds a ValidationError with a formatted message.
func Validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
