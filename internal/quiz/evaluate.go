package quiz

import "strings"

// evaluator decides correctness for one question type.
type evaluator interface {
	IsCorrect(q Question, answer string) bool
}

// Evaluator routes by question type to the matching rule. A blank answer
// is always incorrect, and a question with no resolvable correct answer
// never raises; it just grades as incorrect.
type Evaluator struct {
	byType   map[string]evaluator
	fallback evaluator
}

// NewEvaluator installs the built-in per-type rules.
func NewEvaluator() *Evaluator {
	return &Evaluator{
		byType: map[string]evaluator{
			TypeMultipleChoice: multipleChoiceRule{},
			TypeFillInTheBlank: fillInTheBlankRule{},
			TypeCoding:         codingRule{},
		},
		fallback: looseTextRule{},
	}
}

// IsCorrect reports whether the raw answer satisfies the question's rule.
// Pure function of its inputs.
func (e *Evaluator) IsCorrect(q Question, answer string) bool {
	if strings.TrimSpace(answer) == "" {
		return false
	}
	rule, ok := e.byType[q.NormalizedType()]
	if !ok {
		rule = e.fallback
	}
	return rule.IsCorrect(q, answer)
}

// multipleChoiceRule matches the trimmed answer against the resolved
// option text. Case-sensitive: options are canonical strings the client
// posts back verbatim.
type multipleChoiceRule struct{}

func (multipleChoiceRule) IsCorrect(q Question, answer string) bool {
	correct := strings.TrimSpace(q.ResolveCorrectAnswer())
	if correct == "" {
		return false
	}
	return strings.TrimSpace(answer) == correct
}

// fillInTheBlankRule accepts any of the question's acceptable answers,
// case-insensitively.
type fillInTheBlankRule struct{}

func (fillInTheBlankRule) IsCorrect(q Question, answer string) bool {
	acceptable := q.acceptableAnswers()
	if len(acceptable) == 0 {
		return false
	}
	user := strings.ToLower(strings.TrimSpace(answer))
	for _, a := range acceptable {
		if user == a {
			return true
		}
	}
	return false
}

// codingRule never auto-grades: code submissions need AI or human review,
// so in the rule-based path they always count as incorrect and contribute
// their tags to the weak-topic candidates.
type codingRule struct{}

func (codingRule) IsCorrect(Question, string) bool { return false }

// looseTextRule handles unknown types with a case-insensitive comparison
// against the resolved correct answer.
type looseTextRule struct{}

func (looseTextRule) IsCorrect(q Question, answer string) bool {
	correct := strings.TrimSpace(q.ResolveCorrectAnswer())
	if correct == "" {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(answer), correct)
}
