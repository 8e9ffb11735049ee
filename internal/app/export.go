package app

import (
	"fmt"
	"strings"

	"github.com/0x3st/quizit/internal/domain"
)

// ExportMarkdown renders a quiz as a human-readable document: every
// question's content and point value, with lettered options where present.
// Correct answers are deliberately omitted.
func ExportMarkdown(quiz domain.Quiz) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", quiz.Title)
	if quiz.Description != "" {
		sb.WriteString(quiz.Description + "\n\n")
	}
	for i, q := range quiz.Questions {
		fmt.Fprintf(&sb, "## Question %d (%dpt)\n\n%s\n\n", i+1, q.Points, q.Content)
		for j, opt := range q.Options {
			fmt.Fprintf(&sb, "%c. %s\n", 'A'+j, opt)
		}
		if len(q.Options) > 0 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
