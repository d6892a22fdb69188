package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pathwise/pathwise/internal/eventlog"
)

type updateProgressReq struct {
	Subject  string `json:"subject"`
	Subtopic string `json:"subtopic"`
	ItemID   string `json:"item_id"`
	ItemType string `json:"item_type"` // "lesson" or "video"
}

// POST /api/update-progress
func UpdateProgressHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateProgressReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}
		if req.Subject == "" || req.Subtopic == "" || req.ItemID == "" {
			writeError(w, http.StatusBadRequest, "subject, subtopic and item_id are required")
			return
		}

		tracker, sid := d.tracker(r)
		var (
			err       error
			eventType string
		)
		switch req.ItemType {
		case "lesson":
			err = tracker.MarkLessonComplete(r.Context(), req.Subject, req.Subtopic, req.ItemID)
			eventType = eventlog.TypeLessonComplete
		case "video":
			err = tracker.MarkVideoComplete(r.Context(), req.Subject, req.Subtopic, req.ItemID)
			eventType = eventlog.TypeVideoComplete
		default:
			writeError(w, http.StatusBadRequest, "item_type must be lesson or video")
			return
		}
		if err != nil {
			d.logger().Error("update progress", "error", err)
			writeError(w, http.StatusInternalServerError, "progress update failed")
			return
		}

		if err := d.Events.Append(r.Context(), sid, eventType, req.Subject, req.Subtopic,
			map[string]string{"item_id": req.ItemID}); err != nil {
			d.logger().Warn("event append", "error", err)
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"success":   true,
			"subject":   req.Subject,
			"subtopic":  req.Subtopic,
			"item_id":   req.ItemID,
			"item_type": req.ItemType,
		})
	}
}

// GET /api/check-progress/{subject}/{subtopic}
func CheckProgressHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subject := chi.URLParam(r, "subject")
		subtopic := chi.URLParam(r, "subtopic")

		tracker, _ := d.tracker(r)
		stats, err := tracker.CheckSubtopicProgress(r.Context(), subject, subtopic,
			d.Content.LessonIDs(subject, subtopic),
			d.Content.VideoIDs(subject, subtopic))
		if err != nil {
			d.logger().Error("check progress", "error", err)
			writeError(w, http.StatusInternalServerError, "progress check failed")
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

type clearProgressReq struct {
	Subject  string `json:"subject"`
	Subtopic string `json:"subtopic"`
}

// POST /api/clear-progress clears one subtopic's session state, used
// when a learner restarts its initial quiz.
func ClearProgressHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req clearProgressReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}
		if req.Subject == "" || req.Subtopic == "" {
			writeError(w, http.StatusBadRequest, "subject and subtopic are required")
			return
		}

		tracker, sid := d.tracker(r)
		if err := tracker.ClearSessionData(r.Context(), req.Subject, req.Subtopic); err != nil {
			d.logger().Error("clear progress", "error", err)
			writeError(w, http.StatusInternalServerError, "clear failed")
			return
		}
		if err := d.Events.Append(r.Context(), sid, eventlog.TypeSessionCleared,
			req.Subject, req.Subtopic, map[string]string{}); err != nil {
			d.logger().Warn("event append", "error", err)
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	}
}
