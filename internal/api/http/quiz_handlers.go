package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pathwise/pathwise/internal/content"
	"github.com/pathwise/pathwise/internal/eventlog"
	"github.com/pathwise/pathwise/internal/quiz"
)

// GET /api/quiz/{subject}/{subtopic}?type=initial|remedial
//
// The initial quiz is gated on the subtopic's own lessons and videos;
// the remedial quiz is whatever set was last generated for the session.
func GetQuizHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subject := chi.URLParam(r, "subject")
		subtopic := chi.URLParam(r, "subtopic")
		quizType := r.URL.Query().Get("type")
		if quizType == "" {
			quizType = "initial"
		}

		tracker, _ := d.tracker(r)

		if quizType == "remedial" {
			questions, ok, err := tracker.RemedialQuestions(r.Context(), subject, subtopic)
			if err != nil {
				d.logger().Error("load remedial quiz", "error", err)
				writeError(w, http.StatusInternalServerError, "quiz load failed")
				return
			}
			if !ok {
				writeError(w, http.StatusNotFound, "no remedial quiz generated")
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{
				"quiz_title": d.Content.QuizTitle(subject, subtopic) + " (Remedial)",
				"quiz_type":  quizType,
				"questions":  viewQuestions(questions),
			})
			return
		}

		gate, err := d.resolver(tracker).CheckQuizPrerequisites(r.Context(), subject, subtopic)
		if err != nil {
			d.logger().Error("quiz gate", "error", err)
			writeError(w, http.StatusInternalServerError, "prerequisite check failed")
			return
		}
		if !gate.CanTakeQuiz {
			writeJSON(w, http.StatusForbidden, gate)
			return
		}

		data, err := d.Content.QuizData(subject, subtopic)
		if err != nil {
			writeError(w, http.StatusNotFound, "quiz not found")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"quiz_title": d.Content.QuizTitle(subject, subtopic),
			"quiz_type":  quizType,
			"questions":  viewQuestions(data.Questions),
		})
	}
}

type analyzeQuizReq struct {
	Subject  string   `json:"subject"`
	Subtopic string   `json:"subtopic"`
	QuizType string   `json:"quiz_type"` // "initial" (default) or "remedial"
	Answers  []string `json:"answers"`
}

// POST /api/analyze-quiz evaluates the submission, optionally enriches
// it and stores analysis plus weak topics in the session.
func AnalyzeQuizHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req analyzeQuizReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}
		if req.Subject == "" || req.Subtopic == "" {
			writeError(w, http.StatusBadRequest, "subject and subtopic are required")
			return
		}

		tracker, sid := d.tracker(r)

		var questions []quiz.Question
		if req.QuizType == "remedial" {
			stored, ok, err := tracker.RemedialQuestions(r.Context(), req.Subject, req.Subtopic)
			if err != nil {
				d.logger().Error("load remedial questions", "error", err)
				writeError(w, http.StatusInternalServerError, "analysis failed")
				return
			}
			if !ok {
				writeError(w, http.StatusNotFound, "no remedial quiz to analyze")
				return
			}
			questions = stored
		} else {
			data, err := d.Content.QuizData(req.Subject, req.Subtopic)
			if err != nil {
				writeError(w, http.StatusNotFound, "quiz not found")
				return
			}
			questions = data.Questions
		}

		allowedTags := d.Content.AllowedTags(req.Subject)
		basic := d.Analyzer.Analyze(questions, req.Answers, req.Subject, req.Subtopic, allowedTags)

		outcome := d.Enricher.Enrich(r.Context(), basic, questions, req.Answers)
		analysis := outcome.Analysis

		if err := tracker.StoreQuizAnalysis(r.Context(), req.Subject, req.Subtopic, analysis); err != nil {
			d.logger().Warn("store analysis", "error", err)
		}
		if err := tracker.SetWeakTopics(r.Context(), req.Subject, req.Subtopic, analysis.WeakTopics); err != nil {
			d.logger().Warn("store weak topics", "error", err)
		}
		if err := d.Events.Append(r.Context(), sid, eventlog.TypeQuizAnalyzed,
			req.Subject, req.Subtopic, map[string]any{
				"score":       analysis.Score,
				"weak_topics": analysis.WeakTopics,
				"stage":       analysis.Stage,
			}); err != nil {
			d.logger().Warn("event append", "error", err)
		}

		// The transcript feeds the enrichment prompt only; never echo it.
		analysis.SubmissionDetails = nil

		writeJSON(w, http.StatusOK, map[string]any{
			"analysis":        analysis,
			"enhanced":        outcome.Enhanced,
			"fallback_reason": outcome.FallbackReason,
			"from_cache":      outcome.FromCache,
		})
	}
}

// GET /api/recommendations/{subject}/{subtopic}
//
// Post-quiz follow-ups for the session: videos matched against the
// stored weak topics and whether a remedial quiz should be offered
// (score below 70).
func RecommendationsHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subject := chi.URLParam(r, "subject")
		subtopic := chi.URLParam(r, "subtopic")

		tracker, _ := d.tracker(r)
		analysis, ok, err := tracker.QuizAnalysis(r.Context(), subject, subtopic)
		if err != nil {
			d.logger().Error("load analysis", "error", err)
			writeError(w, http.StatusInternalServerError, "recommendations failed")
			return
		}
		if !ok {
			writeError(w, http.StatusNotFound, "no quiz analysis for this subtopic")
			return
		}
		weakTopics, err := tracker.WeakTopics(r.Context(), subject, subtopic)
		if err != nil {
			d.logger().Error("load weak topics", "error", err)
			writeError(w, http.StatusInternalServerError, "recommendations failed")
			return
		}

		var videos []content.Video
		if set, err := d.Content.Videos(subject, subtopic); err == nil {
			videos = set.Videos
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"recommendations": analysis.Recommendations,
			"videos":          content.RecommendVideos(videos, weakTopics),
			"weak_topics":     weakTopics,
			"show_remedial":   analysis.Score.Percentage < 70,
		})
	}
}

type remedialReq struct {
	Subject  string `json:"subject"`
	Subtopic string `json:"subtopic"`
}

// POST /api/generate-remedial-quiz selects a remedial set from the
// subtopic's question pool against the stored weak topics.
func GenerateRemedialHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req remedialReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}
		if req.Subject == "" || req.Subtopic == "" {
			writeError(w, http.StatusBadRequest, "subject and subtopic are required")
			return
		}

		tracker, sid := d.tracker(r)
		weakTopics, err := tracker.WeakTopics(r.Context(), req.Subject, req.Subtopic)
		if err != nil {
			d.logger().Error("load weak topics", "error", err)
			writeError(w, http.StatusInternalServerError, "remedial generation failed")
			return
		}

		var pool []quiz.Question
		if poolData, err := d.Content.QuestionPool(req.Subject, req.Subtopic); err == nil {
			pool = poolData.Questions
		}

		selected, err := quiz.SelectRemedial(pool, weakTopics, quiz.DefaultRemedialMin, quiz.DefaultRemedialMax)
		if err != nil {
			if errors.Is(err, quiz.ErrEmptyPool) {
				writeError(w, http.StatusNotFound, "no question pool available")
				return
			}
			d.logger().Error("select remedial", "error", err)
			writeError(w, http.StatusInternalServerError, "remedial generation failed")
			return
		}

		if err := tracker.SetRemedialQuestions(r.Context(), req.Subject, req.Subtopic, selected); err != nil {
			d.logger().Warn("store remedial set", "error", err)
		}
		if err := d.Events.Append(r.Context(), sid, eventlog.TypeRemedialServed,
			req.Subject, req.Subtopic, map[string]any{
				"count":       len(selected),
				"weak_topics": weakTopics,
			}); err != nil {
			d.logger().Warn("event append", "error", err)
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"quiz_title":  d.Content.QuizTitle(req.Subject, req.Subtopic) + " (Remedial)",
			"quiz_type":   "remedial",
			"weak_topics": weakTopics,
			"questions":   viewQuestions(selected),
		})
	}
}
