package llm

import (
	"fmt"
	"strings"

	"github.com/0x3st/quizit/internal/domain"
)

// DefaultPromptVersion is used when the config does not pin a version.
const DefaultPromptVersion = "v1"

// Prompt is a rendered instruction pair plus the template version it came from.
type Prompt struct {
	Version string
	System  string
	User    string
}

// PromptParams feed the quiz prompt template. Rendering is deterministic:
// the same params always produce the same prompt.
type PromptParams struct {
	Content       string
	QuestionCount int
	Types         []domain.QuestionType
	Difficulty    domain.Difficulty
	Title         string
}

var typeDescriptions = map[domain.QuestionType]string{
	domain.SingleChoice:   "Single choice (one correct answer from options)",
	domain.MultipleChoice: "Multiple choice (multiple correct answers from options)",
	domain.TrueFalse:      "True or False",
	domain.FillBlank:      "Fill in the blank (short exact answer)",
	domain.ShortAnswer:    "Short answer (open-ended, 1-3 sentences)",
	domain.Matching:       "Matching (pair items from two columns)",
}

// BuildQuizPrompt renders the versioned quiz generation prompt.
func BuildQuizPrompt(version string, p PromptParams) Prompt {
	if version == "" {
		version = DefaultPromptVersion
	}

	var types strings.Builder
	for _, t := range p.Types {
		fmt.Fprintf(&types, "- %s: %s\n", t, typeDescriptions[t])
	}

	var sb strings.Builder
	sb.WriteString("Generate a quiz from the following courseware content.\n\n")
	if p.Title != "" {
		fmt.Fprintf(&sb, "Suggested title: %s\n\n", p.Title)
	}
	sb.WriteString("Requirements:\n")
	fmt.Fprintf(&sb, "- Number of questions: %d\n", p.QuestionCount)
	fmt.Fprintf(&sb, "- Difficulty: %s\n", p.Difficulty)
	sb.WriteString("- Allowed question types (distribute evenly):\n")
	sb.WriteString(types.String())
	sb.WriteString("\nRules:\n")
	sb.WriteString("- Each question must be directly based on the provided content\n")
	sb.WriteString("- Provide clear, unambiguous questions\n")
	sb.WriteString(`- For SINGLE_CHOICE: "options" is string[], "correctAnswer" is the correct option string` + "\n")
	sb.WriteString(`- For MULTIPLE_CHOICE: "options" is string[], "correctAnswer" is string[] of correct options` + "\n")
	sb.WriteString(`- For TRUE_FALSE: "options" is ["True", "False"], "correctAnswer" is "True" or "False"` + "\n")
	sb.WriteString(`- For FILL_BLANK: "options" is null, "correctAnswer" is string (the answer)` + "\n")
	sb.WriteString(`- For SHORT_ANSWER: "options" is null, "correctAnswer" is string (reference answer)` + "\n")
	sb.WriteString(`- For MATCHING: "options" is string[] (right column), "correctAnswer" is an object mapping left to right` + "\n")
	sb.WriteString("- Include a brief explanation for each question\n")
	sb.WriteString("- Points: 1 for easy, 2 for medium, 3 for hard\n")
	sb.WriteString("\nRespond ONLY with a JSON object:\n")
	sb.WriteString(`{"title": "<quiz title>", "description": "<one-sentence description>", "questions": [{"type": "<type>", "content": "<question>", "options": <string[] or null>, "correctAnswer": <per-type shape>, "explanation": "<why>", "points": <1-3>}]}`)
	sb.WriteString("\n\nContent:\n---\n")
	sb.WriteString(p.Content)
	sb.WriteString("\n---")

	return Prompt{
		Version: version,
		System:  "You are an expert quiz generator. Generate high-quality quiz questions from educational content. Output valid JSON only.",
		User:    sb.String(),
	}
}
