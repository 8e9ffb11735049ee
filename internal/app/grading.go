package app

import (
	"strings"

	"github.com/0x3st/quizit/internal/domain"
)

// GradeResult is the outcome of grading one answer. Correct is nil when the
// answer needs manual review.
type GradeResult struct {
	Correct *bool
	Points  int
}

func verdict(ok bool, points int) GradeResult {
	if ok {
		return GradeResult{Correct: boolPtr(true), Points: points}
	}
	return GradeResult{Correct: boolPtr(false), Points: 0}
}

func boolPtr(b bool) *bool { return &b }

// Grade scores a submitted answer against a question. It is pure and
// deterministic; callers invoke it exactly once per (question, answer) pair
// during attempt completion.
//
// An absent or empty answer grades as wrong for every type, including
// SHORT_ANSWER. Answered SHORT_ANSWER questions are never auto-graded: they
// return a nil verdict with zero points and are left for manual review.
func Grade(q domain.Question, answer domain.AnswerValue) GradeResult {
	if answer.IsEmpty() {
		return verdict(false, 0)
	}

	switch q.Type {
	case domain.SingleChoice, domain.TrueFalse:
		return verdict(answer.Text() == q.CorrectAnswer.Text(), q.Points)

	case domain.MultipleChoice:
		return verdict(sameSet(answer.List(), q.CorrectAnswer.List()), q.Points)

	case domain.FillBlank:
		user := strings.TrimSpace(answer.Text())
		want := strings.TrimSpace(q.CorrectAnswer.Text())
		return verdict(strings.EqualFold(user, want), q.Points)

	case domain.Matching:
		user := answer.Pairs()
		for left, right := range q.CorrectAnswer.Pairs() {
			if user[left] != right {
				return verdict(false, 0)
			}
		}
		return verdict(true, q.Points)

	case domain.ShortAnswer:
		return GradeResult{Correct: nil, Points: 0}

	default:
		// fail safe on unrecognized types
		return verdict(false, 0)
	}
}

// sameSet compares two string slices with set semantics: order-independent,
// duplicates ignored.
func sameSet(a, b []string) bool {
	as := make(map[string]struct{}, len(a))
	for _, v := range a {
		as[v] = struct{}{}
	}
	bs := make(map[string]struct{}, len(b))
	for _, v := range b {
		bs[v] = struct{}{}
	}
	if len(as) != len(bs) {
		return false
	}
	for v := range as {
		if _, ok := bs[v]; !ok {
			return false
		}
	}
	return true
}
