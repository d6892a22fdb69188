package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	authmw "github.com/pathwise/pathwise/internal/auth/middleware"
	"github.com/pathwise/pathwise/internal/eventlog"
)

// GET /api/admin/override-status
func OverrideStatusHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tracker, _ := d.tracker(r)
		override, err := tracker.AdminOverride(r.Context())
		if err != nil {
			d.logger().Error("override status", "error", err)
			writeError(w, http.StatusInternalServerError, "override lookup failed")
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"admin_override": override})
	}
}

// POST /api/admin/toggle-override flips the session's gating bypass and
// returns the new state. The acting admin is recorded in the event log.
func ToggleOverrideHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tracker, sid := d.tracker(r)
		current, err := tracker.AdminOverride(r.Context())
		if err != nil {
			d.logger().Error("override toggle", "error", err)
			writeError(w, http.StatusInternalServerError, "override toggle failed")
			return
		}
		if err := tracker.SetAdminOverride(r.Context(), !current); err != nil {
			d.logger().Error("override toggle", "error", err)
			writeError(w, http.StatusInternalServerError, "override toggle failed")
			return
		}
		if err := d.Events.Append(r.Context(), sid, eventlog.TypeOverrideSet, "", "",
			map[string]any{
				"enabled": !current,
				"actor":   authmw.SubjectFromContext(r.Context()),
			}); err != nil {
			d.logger().Warn("event append", "error", err)
		}
		writeJSON(w, http.StatusOK, map[string]bool{"admin_override": !current})
	}
}

// POST /api/admin/reload-content drops the content cache so edited data
// files are picked up without a restart.
func ReloadContentHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d.Content.ClearCache()
		writeJSON(w, http.StatusOK, map[string]bool{"reloaded": true})
	}
}

// GET /api/admin/progress-events/{session}?since=<seq>&limit=<n>
//
// Cursor read over a learner session's event log, oldest first. Pass
// the last seen seq as "since" to page.
func ProgressEventsHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := chi.URLParam(r, "session")
		since, _ := strconv.ParseInt(r.URL.Query().Get("since"), 10, 64)
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

		events, err := d.Events.Since(r.Context(), sessionID, since, limit)
		if err != nil {
			d.logger().Error("read events", "error", err)
			writeError(w, http.StatusInternalServerError, "event read failed")
			return
		}
		if events == nil {
			events = []eventlog.Event{}
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"session_id": sessionID,
			"events":     events,
		})
	}
}
