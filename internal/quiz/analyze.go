package quiz

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

// Analysis stages. Basic is rule-based; enhanced means the result carries
// validated LLM output on top of the basic analysis.
const (
	StageBasic    = "basic"
	StageEnhanced = "enhanced"
)

// Fixed tags appended by rule when a question of the matching shape is
// answered incorrectly.
const (
	tagProgrammingLogic = "programming logic"
	tagAdvancedPractice = "advanced practice"
)

const submissionPreviewLimit = 500

// Score is the aggregate result of one submission.
type Score struct {
	Correct    int `json:"correct"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// Insight records why one incorrect question contributed weak topics.
type Insight struct {
	QuestionIndex int      `json:"question_index"`
	Question      string   `json:"question"`
	Tags          []string `json:"tags"`
	Type          string   `json:"type"`
	Note          string   `json:"note,omitempty"`
}

// Analysis is the outcome of analyzing one quiz submission. Created per
// submission, stored keyed by (subject, subtopic) and superseded by the
// next submission for the same key.
type Analysis struct {
	Subject  string `json:"subject"`
	Subtopic string `json:"subtopic"`

	Score           Score    `json:"score"`
	WeakTopics      []string `json:"weak_topics"`
	Feedback        string   `json:"feedback"`
	Recommendations []string `json:"recommendations"`
	AllowedTags     []string `json:"allowed_tags"`
	UsedAI          bool     `json:"used_ai"`
	Stage           string   `json:"analysis_stage"`

	RuleBasedInsights []Insight `json:"rule_based_insights"`
	WrongIndices      []int     `json:"wrong_question_indices"`

	// SubmissionDetails is the per-question transcript used to build the
	// enrichment prompt. SubmissionPreview is its truncated head, safe to
	// persist.
	SubmissionDetails []string `json:"submission_details,omitempty"`
	SubmissionPreview string   `json:"submission_preview,omitempty"`
}

// Analyzer computes rule-based quiz analyses.
type Analyzer struct {
	eval *Evaluator
}

func NewAnalyzer() *Analyzer {
	return &Analyzer{eval: NewEvaluator()}
}

// Analyze evaluates every question in order and derives score, weak
// topics and feedback. Answers are positional; a missing or blank answer
// counts as incorrect. A zero-question quiz scores 0, not an error.
func (a *Analyzer) Analyze(questions []Question, answers []string, subject, subtopic string, allowedTags []string) Analysis {
	var (
		correct      int
		wrongIndices []int
		candidates   []string
		insights     []Insight
		details      []string
	)

	for i, q := range questions {
		answer := ""
		if i < len(answers) {
			answer = answers[i]
		}

		status := "Incorrect"
		if a.eval.IsCorrect(q, answer) {
			status = "Correct"
			correct++
		} else {
			wrongIndices = append(wrongIndices, i)
			enriched := ruleBasedTags(q)
			candidates = append(candidates, enriched...)
			insight := Insight{
				QuestionIndex: i,
				Question:      q.Text,
				Tags:          NormalizeTags(enriched),
				Type:          q.NormalizedType(),
			}
			if q.NormalizedType() == TypeCoding && strings.TrimSpace(answer) == "" {
				insight.Note = "No code submitted for review."
			}
			insights = append(insights, insight)
		}

		details = append(details, submissionDetail(i, q, answer, status))
	}

	score := Score{
		Correct:    correct,
		Total:      len(questions),
		Percentage: percentage(correct, len(questions)),
	}

	lookup := AllowedTagLookup(allowedTags)
	weakTopics := FilterAllowedTags(candidates, lookup)
	if len(weakTopics) == 0 {
		weakTopics = NormalizeTags(candidates)
	}

	feedback := basicFeedback(score.Percentage, weakTopics)

	preview := TruncateToRune(strings.Join(details, ""), submissionPreviewLimit)

	return Analysis{
		Subject:           subject,
		Subtopic:          subtopic,
		Score:             score,
		WeakTopics:        weakTopics,
		Feedback:          feedback,
		Recommendations:   Recommendations(score.Percentage, weakTopics),
		AllowedTags:       allowedTags,
		UsedAI:            false,
		Stage:             StageBasic,
		RuleBasedInsights: insights,
		WrongIndices:      wrongIndices,
		SubmissionDetails: details,
		SubmissionPreview: preview,
	}
}

// TruncateToRune shortens s to at most max bytes, backing up so the cut
// never splits a multi-byte UTF-8 rune.
func TruncateToRune(s string, max int) string {
	if max < 0 {
		max = 0
	}
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

func percentage(correct, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}

// ruleBasedTags returns an incorrect question's tags plus the fixed
// augmentations for coding and advanced questions.
func ruleBasedTags(q Question) []string {
	enriched := make([]string, 0, len(q.Tags)+2)
	enriched = append(enriched, q.Tags...)
	if q.NormalizedType() == TypeCoding {
		enriched = append(enriched, tagProgrammingLogic)
	}
	if strings.EqualFold(strings.TrimSpace(q.Difficulty), "advanced") {
		enriched = append(enriched, tagAdvancedPractice)
	}
	return enriched
}

func submissionDetail(index int, q Question, answer, status string) string {
	shown := answer
	if shown == "" {
		shown = "[No answer provided]"
	}
	parts := []string{
		fmt.Sprintf("Question %d (Type: %s): %s", index+1, q.NormalizedType(), q.Text),
		"Student's Answer:",
		"---",
		shown,
		"---",
	}
	if correct := q.ResolveCorrectAnswer(); correct != "" {
		parts = append(parts, "Correct Answer: "+correct)
	}
	parts = append(parts, "Status: "+status)
	return strings.Join(parts, "\n") + "\n"
}

// basicFeedback picks one of four fixed tiers and appends up to five weak
// topic names to bound the message length.
func basicFeedback(scorePercentage int, weakTopics []string) string {
	var base string
	switch {
	case scorePercentage >= 85:
		base = "Excellent work! You're mastering this material."
	case scorePercentage >= 70:
		base = "Great job! A little more practice will make these concepts stick."
	case scorePercentage >= 50:
		base = "Good effort. Target the topics below to boost your understanding."
	default:
		base = "Let's reinforce the fundamentals. Review the weak areas highlighted below."
	}
	if len(weakTopics) == 0 {
		return base
	}
	capped := weakTopics
	if len(capped) > 5 {
		capped = capped[:5]
	}
	return fmt.Sprintf("%s Focus on: %s.", base, strings.Join(capped, ", "))
}

// Recommendations derives study suggestions from the score band and weak
// areas.
func Recommendations(scorePercentage int, weakAreas []string) []string {
	var recs []string
	switch {
	case scorePercentage >= 80:
		recs = append(recs,
			"Great job! You have a strong understanding of this topic.",
			"Consider advancing to more challenging topics.")
	case scorePercentage >= 60:
		recs = append(recs, "Good progress! Focus on reviewing the areas you missed.")
		if len(weakAreas) > 0 {
			recs = append(recs, "Pay special attention to: "+strings.Join(weakAreas, ", "))
		}
	default:
		recs = append(recs,
			"Consider reviewing the lesson materials before retaking the quiz.",
			"Practice exercises might help strengthen your understanding.")
		if len(weakAreas) > 0 {
			recs = append(recs, "Focus your study on: "+strings.Join(weakAreas, ", "))
		}
	}
	return recs
}
