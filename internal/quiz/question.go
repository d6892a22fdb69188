package quiz

import "strings"

// Question types understood by the evaluator. Anything else falls back
// to a case-insensitive text comparison.
const (
	TypeMultipleChoice = "multiple_choice"
	TypeFillInTheBlank = "fill_in_the_blank"
	TypeCoding         = "coding"
)

// Question is a single quiz item as loaded from a quiz or question-pool
// file. Immutable once loaded for an attempt.
type Question struct {
	ID         string   `json:"id,omitempty"`
	Text       string   `json:"question"`
	Type       string   `json:"type"`
	Options    []string `json:"options,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	Difficulty string   `json:"difficulty,omitempty"`

	// Exactly one of the following resolves the correct answer,
	// checked in this order.
	CorrectAnswer     string   `json:"correct_answer,omitempty"`
	AnswerIndex       *int     `json:"answer_index,omitempty"`
	AcceptableAnswers []string `json:"acceptable_answers,omitempty"`
	CorrectAnswers    []string `json:"correct_answers,omitempty"`
}

// NormalizedType returns the question type trimmed and lower-cased,
// defaulting to multiple_choice when unset.
func (q Question) NormalizedType() string {
	t := strings.ToLower(strings.TrimSpace(q.Type))
	if t == "" {
		return TypeMultipleChoice
	}
	return t
}

// Key returns a stable identity for deduplication: the ID when present,
// otherwise the question text.
func (q Question) Key() string {
	if q.ID != "" {
		return q.ID
	}
	return q.Text
}

// ResolveCorrectAnswer returns the canonical correct answer text for a
// question, or "" when none is resolvable (such a question is never
// answered correctly in the rule-based path).
func (q Question) ResolveCorrectAnswer() string {
	if q.CorrectAnswer != "" {
		return q.CorrectAnswer
	}
	if q.AnswerIndex != nil && *q.AnswerIndex >= 0 && *q.AnswerIndex < len(q.Options) {
		return q.Options[*q.AnswerIndex]
	}
	if len(q.AcceptableAnswers) > 0 {
		return q.AcceptableAnswers[0]
	}
	if len(q.CorrectAnswers) > 0 {
		return q.CorrectAnswers[0]
	}
	return ""
}

// acceptableAnswers returns every answer accepted for a fill-in-the-blank
// question, lower-cased: the comma-split primary answer merged with the
// acceptable/correct answer lists.
func (q Question) acceptableAnswers() []string {
	var out []string
	if primary := q.ResolveCorrectAnswer(); primary != "" {
		for _, part := range strings.Split(primary, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, strings.ToLower(p))
			}
		}
	}
	for _, list := range [][]string{q.CorrectAnswers, q.AcceptableAnswers} {
		for _, item := range list {
			if s := strings.TrimSpace(item); s != "" {
				out = append(out, strings.ToLower(s))
			}
		}
	}
	return out
}
