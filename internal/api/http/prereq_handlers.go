package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// GET /api/subtopic-prerequisites/{subject}/{subtopic}
func SubtopicPrerequisitesHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subject := chi.URLParam(r, "subject")
		subtopic := chi.URLParam(r, "subtopic")

		tracker, _ := d.tracker(r)
		status, err := d.resolver(tracker).CheckSubtopicPrerequisites(r.Context(), subject, subtopic)
		if err != nil {
			d.logger().Error("subtopic prerequisites", "error", err)
			writeError(w, http.StatusInternalServerError, "prerequisite check failed")
			return
		}
		writeJSON(w, http.StatusOK, status)
	}
}

// GET /api/quiz-prerequisites/{subject}/{subtopic}
func QuizPrerequisitesHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subject := chi.URLParam(r, "subject")
		subtopic := chi.URLParam(r, "subtopic")

		tracker, _ := d.tracker(r)
		status, err := d.resolver(tracker).CheckQuizPrerequisites(r.Context(), subject, subtopic)
		if err != nil {
			d.logger().Error("quiz prerequisites", "error", err)
			writeError(w, http.StatusInternalServerError, "prerequisite check failed")
			return
		}
		writeJSON(w, http.StatusOK, status)
	}
}
