// Package enrich refines a rule-based quiz analysis with an LLM
// classification of weak concepts, constrained to the subject's allowed
// tag vocabulary. Every failure path falls back to the basic analysis;
// enrichment is never fatal to a quiz submission.
package enrich

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pathwise/pathwise/internal/llm"
	"github.com/pathwise/pathwise/internal/quiz"
)

// Fallback reasons reported in an Outcome when enrichment did not apply.
const (
	ReasonNotConfigured  = "not_configured"
	ReasonProviderError  = "provider_error"
	ReasonInvalidPayload = "invalid_payload"
	ReasonNoValidTags    = "no_valid_tags"
)

// Outcome distinguishes an enhanced analysis from a basic fallback
// without making callers inspect logs.
type Outcome struct {
	Analysis quiz.Analysis
	// Enhanced is true when validated LLM output was merged in.
	Enhanced bool
	// FallbackReason is set when Enhanced is false and enrichment was
	// attempted or skipped.
	FallbackReason string
	// FromCache is true when the enrichment came from the analysis cache
	// rather than a fresh call.
	FromCache bool
}

// classification is the payload shape requested from the model.
type classification struct {
	DetailedFeedback string   `json:"detailed_feedback"`
	WeakConceptTags  []string `json:"weak_concept_tags"`
}

var classifySchema = &llm.Schema{
	Name:        "weak-concepts",
	Description: "Weak concept classification for a quiz submission",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"detailed_feedback": map[string]any{"type": "string"},
			"weak_concept_tags": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"required":             []any{"detailed_feedback", "weak_concept_tags"},
		"additionalProperties": false,
	},
}

// Enricher wraps an optional LLM provider with caching and vocabulary
// validation. A nil provider disables enrichment entirely.
type Enricher struct {
	provider llm.Provider
	cache    *analysisCache
	log      *slog.Logger
}

// Option configures an Enricher.
type Option func(*Enricher)

// WithCacheSize bounds the analysis cache.
func WithCacheSize(n int) Option {
	return func(e *Enricher) { e.cache = newAnalysisCache(n) }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Enricher) { e.log = l }
}

// New creates an Enricher. The provider should already carry retry
// behavior (llm.WithRetry); the Enricher issues exactly one logical
// request per cache miss.
func New(provider llm.Provider, opts ...Option) *Enricher {
	e := &Enricher{
		provider: provider,
		cache:    newAnalysisCache(0),
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Available reports whether an LLM provider is configured.
func (e *Enricher) Available() bool { return e.provider != nil }

// Enrich refines the basic analysis. Identical resubmissions hit the
// content-hash cache and never trigger a second call.
func (e *Enricher) Enrich(ctx context.Context, basic quiz.Analysis, questions []quiz.Question, answers []string) Outcome {
	if e.provider == nil {
		return Outcome{Analysis: basic, FallbackReason: ReasonNotConfigured}
	}

	key := cacheKey(basic.Subject, basic.Subtopic, questions, answers)
	if entry, ok := e.cache.Get(key); ok {
		return Outcome{Analysis: merge(basic, entry), Enhanced: true, FromCache: true}
	}

	resp, err := e.provider.Complete(ctx, llm.Request{
		System: "You are an expert instructor. Analyze quiz performance, classify errors " +
			"against allowed topics, and provide supportive feedback.",
		Prompt:      buildPrompt(basic),
		Schema:      classifySchema,
		MaxTokens:   1200,
		Temperature: 0.1,
	})
	if err != nil {
		e.log.Warn("enrichment unavailable, using basic analysis",
			"subject", basic.Subject, "subtopic", basic.Subtopic, "error", err)
		return Outcome{Analysis: basic, FallbackReason: ReasonProviderError}
	}

	var parsed classification
	if err := json.Unmarshal(resp.Content, &parsed); err != nil {
		e.log.Warn("enrichment payload unparsable, using basic analysis", "error", err)
		return Outcome{Analysis: basic, FallbackReason: ReasonInvalidPayload}
	}

	// Any tag outside the allowed vocabulary is discarded; zero usable
	// tags means the classification is worthless and the basic weak
	// topics stand.
	lookup := quiz.AllowedTagLookup(basic.AllowedTags)
	validated := quiz.FilterAllowedTags(parsed.WeakConceptTags, lookup)
	if len(basic.AllowedTags) > 0 && len(validated) == 0 {
		e.log.Warn("enrichment returned no tags from the allowed vocabulary",
			"subject", basic.Subject, "subtopic", basic.Subtopic)
		return Outcome{Analysis: basic, FallbackReason: ReasonNoValidTags}
	}
	if len(validated) == 0 {
		return Outcome{Analysis: basic, FallbackReason: ReasonNoValidTags}
	}

	feedback := strings.TrimSpace(parsed.DetailedFeedback)
	if feedback == "" {
		feedback = basic.Feedback
	}

	entry := cacheEntry{WeakTopics: validated, Feedback: feedback, Model: resp.Model}
	// Written only after full validation.
	e.cache.Set(key, entry)

	return Outcome{Analysis: merge(basic, entry), Enhanced: true}
}

// merge applies validated enrichment fields over a basic analysis.
func merge(basic quiz.Analysis, entry cacheEntry) quiz.Analysis {
	enhanced := basic
	enhanced.WeakTopics = entry.WeakTopics
	enhanced.Feedback = entry.Feedback
	enhanced.UsedAI = true
	enhanced.Stage = quiz.StageEnhanced
	enhanced.Recommendations = quiz.Recommendations(basic.Score.Percentage, entry.WeakTopics)
	return enhanced
}

// cacheKey hashes the submission identity: subject, subtopic, question
// identities and the exact answers.
func cacheKey(subject, subtopic string, questions []quiz.Question, answers []string) string {
	ids := make([]string, len(questions))
	for i, q := range questions {
		ids[i] = q.Key()
	}
	payload, _ := json.Marshal(struct {
		Subject   string   `json:"subject"`
		Subtopic  string   `json:"subtopic"`
		Questions []string `json:"questions"`
		Answers   []string `json:"answers"`
	}{subject, subtopic, ids, answers})
	sum := sha1.Sum(payload)
	return hex.EncodeToString(sum[:])
}

func buildPrompt(basic quiz.Analysis) string {
	allowed, _ := json.Marshal(basic.AllowedTags)
	transcript := strings.Join(basic.SubmissionDetails, "")
	if transcript == "" {
		transcript = "[No submission details available]"
	}
	parts := []string{
		"You are analyzing a student's quiz submission which includes multiple choice, fill-in-the-blank, and coding questions.",
		"Based on the incorrect answers and their submitted code, identify the concepts they are weak in.",
		fmt.Sprintf("You MUST choose the weak concepts from this predefined list ONLY: %s", allowed),
		"For coding questions, comment on syntax, logic, and understanding.",
		"Provide your analysis as a JSON object with keys 'detailed_feedback' and 'weak_concept_tags'.",
		fmt.Sprintf("Overall score: %d/%d correct (%d%%).",
			basic.Score.Correct, basic.Score.Total, basic.Score.Percentage),
		"Here is the student's submission:",
		"--- START OF SUBMISSION ---",
		transcript,
		"--- END OF SUBMISSION ---",
	}
	return strings.Join(parts, "\n")
}
