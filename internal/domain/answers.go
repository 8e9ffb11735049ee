package domain

import (
	"bytes"
	"encoding/json"
	"strings"
)

type answerKind uint8

const (
	answerNone answerKind = iota
	answerText
	answerList
	answerPairs
)

// AnswerValue is a tagged union over the answer shapes a question type can
// carry: a single string (SINGLE_CHOICE, TRUE_FALSE, FILL_BLANK,
// SHORT_ANSWER), a string sequence (MULTIPLE_CHOICE), or a left-to-right
// mapping (MATCHING). The zero value is the absent answer.
type AnswerValue struct {
	kind  answerKind
	text  string
	list  []string
	pairs map[string]string
}

// TextAnswer wraps a single-string answer.
func TextAnswer(s string) AnswerValue {
	return AnswerValue{kind: answerText, text: s}
}

// ListAnswer wraps a string-sequence answer.
func ListAnswer(items ...string) AnswerValue {
	return AnswerValue{kind: answerList, list: items}
}

// PairsAnswer wraps a matching answer (left item to right item).
func PairsAnswer(pairs map[string]string) AnswerValue {
	return AnswerValue{kind: answerPairs, pairs: pairs}
}

// IsEmpty reports whether the value counts as unanswered: absent, or an
// empty string.
func (v AnswerValue) IsEmpty() bool {
	return v.kind == answerNone || (v.kind == answerText && v.text == "")
}

// Text returns the single-string payload ("" when the value is not a string).
func (v AnswerValue) Text() string {
	if v.kind != answerText {
		return ""
	}
	return v.text
}

// List returns the string-sequence payload (nil when not a sequence).
func (v AnswerValue) List() []string {
	if v.kind != answerList {
		return nil
	}
	return v.list
}

// Pairs returns the mapping payload (nil when not a mapping).
func (v AnswerValue) Pairs() map[string]string {
	if v.kind != answerPairs {
		return nil
	}
	return v.pairs
}

// MarshalJSON emits the payload in its natural JSON shape; the absent answer
// marshals as null.
func (v AnswerValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case answerText:
		return json.Marshal(v.text)
	case answerList:
		return json.Marshal(v.list)
	case answerPairs:
		return json.Marshal(v.pairs)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON infers the variant from the JSON shape. Used when reading
// stored answers back; typed decoding of submissions goes through
// DecodeAnswer instead.
func (v *AnswerValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*v = AnswerValue{}
		return nil
	}
	switch data[0] {
	case '[':
		var list []string
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*v = ListAnswer(list...)
	case '{':
		var pairs map[string]string
		if err := json.Unmarshal(data, &pairs); err != nil {
			return err
		}
		*v = PairsAnswer(pairs)
	default:
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = TextAnswer(s)
	}
	return nil
}

// DecodeAnswer decodes a submitted raw answer into the shape the question
// type expects. Decoding is lenient: a mismatched shape yields the absent
// answer, which grades as incorrect rather than erroring.
func DecodeAnswer(t QuestionType, raw json.RawMessage) AnswerValue {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return AnswerValue{}
	}
	switch t {
	case MultipleChoice:
		var list []string
		if err := json.Unmarshal(raw, &list); err != nil {
			return AnswerValue{}
		}
		return ListAnswer(list...)
	case Matching:
		var pairs map[string]string
		if err := json.Unmarshal(raw, &pairs); err != nil {
			return AnswerValue{}
		}
		return PairsAnswer(pairs)
	default:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return AnswerValue{}
		}
		return TextAnswer(s)
	}
}

// DecodeCorrectAnswer strictly decodes a correct answer for the question
// type; generated output that does not match the per-type shape contract is
// rejected.
func DecodeCorrectAnswer(t QuestionType, raw json.RawMessage) (AnswerValue, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return AnswerValue{}, Validationf("missing correct answer")
	}
	switch t {
	case MultipleChoice:
		var list []string
		if err := json.Unmarshal(raw, &list); err != nil {
			return AnswerValue{}, Validationf("%s correct answer must be a string array", t)
		}
		if len(list) == 0 {
			return AnswerValue{}, Validationf("%s correct answer must not be empty", t)
		}
		return ListAnswer(list...), nil
	case Matching:
		var pairs map[string]string
		if err := json.Unmarshal(raw, &pairs); err != nil {
			return AnswerValue{}, Validationf("%s correct answer must be a string mapping", t)
		}
		if len(pairs) == 0 {
			return AnswerValue{}, Validationf("%s correct answer must not be empty", t)
		}
		return PairsAnswer(pairs), nil
	case SingleChoice, TrueFalse, FillBlank, ShortAnswer:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return AnswerValue{}, Validationf("%s correct answer must be a string", t)
		}
		if strings.TrimSpace(s) == "" {
			return AnswerValue{}, Validationf("%s correct answer must not be blank", t)
		}
		return TextAnswer(s), nil
	default:
		return AnswerValue{}, Validationf("unknown question type %q", t)
	}
}
