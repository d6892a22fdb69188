// Package http carries the portal's HTTP handlers. Every handler is a
// constructor taking its collaborators and returning an http.HandlerFunc,
// mounted by cmd/portal.
package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	authmw "github.com/pathwise/pathwise/internal/auth/middleware"
	"github.com/pathwise/pathwise/internal/content"
	"github.com/pathwise/pathwise/internal/enrich"
	"github.com/pathwise/pathwise/internal/eventlog"
	"github.com/pathwise/pathwise/internal/prereq"
	"github.com/pathwise/pathwise/internal/progress"
	"github.com/pathwise/pathwise/internal/quiz"
)

// Deps bundles the collaborators the handlers share.
type Deps struct {
	Sessions progress.Sessions
	Content  *content.Store
	Analyzer *quiz.Analyzer
	Enricher *enrich.Enricher
	Events   *eventlog.Repo
	Log      *slog.Logger
}

// tracker resolves the request's progress tracker from its session
// claim. Requests without a session get an in-memory fallback store, so
// nothing here can fail.
func (d Deps) tracker(r *http.Request) (*progress.Tracker, string) {
	sid := authmw.SessionIDFromContext(r.Context())
	if sid == "" || d.Sessions == nil {
		return progress.NewTracker(nil), sid
	}
	return progress.NewTracker(d.Sessions.Session(sid)), sid
}

func (d Deps) resolver(tracker *progress.Tracker) *prereq.Resolver {
	return prereq.NewResolver(d.Content, tracker)
}

func (d Deps) logger() *slog.Logger {
	if d.Log != nil {
		return d.Log
	}
	return slog.Default()
}

// ReadyzHandler reports ready only when every dependency check passes.
// Backends register their own checks (db ping, redis ping) at mount.
func ReadyzHandler(checks ...func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for _, check := range checks {
			if check == nil {
				continue
			}
			if err := check(r.Context()); err != nil {
				writeError(w, http.StatusServiceUnavailable, err.Error())
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// questionView is a question as served to learners: answer key fields
// stripped.
type questionView struct {
	ID         string   `json:"id,omitempty"`
	Text       string   `json:"question"`
	Type       string   `json:"type"`
	Options    []string `json:"options,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	Difficulty string   `json:"difficulty,omitempty"`
}

func viewQuestions(questions []quiz.Question) []questionView {
	views := make([]questionView, len(questions))
	for i, q := range questions {
		views[i] = questionView{
			ID:         q.ID,
			Text:       q.Text,
			Type:       q.NormalizedType(),
			Options:    q.Options,
			Tags:       q.Tags,
			Difficulty: q.Difficulty,
		}
	}
	return views
}
