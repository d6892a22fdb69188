package http

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/pathwise/pathwise/internal/content"
)

// GET /api/subjects
func ListSubjectsHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, d.Content.DiscoverSubjects())
	}
}

// GET /api/subjects/{subject}/tags
func SubjectTagsHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subject := chi.URLParam(r, "subject")
		if _, err := d.Content.SubjectConfig(subject); err != nil {
			writeError(w, http.StatusNotFound, "subject not found")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"subject":      subject,
			"allowed_tags": d.Content.AllowedTags(subject),
		})
	}
}

// GET /api/subjects/{subject}/subtopics
func SubjectSubtopicsHandler(d Deps) http.HandlerFunc {
	type subtopicView struct {
		ID            string   `json:"id"`
		Name          string   `json:"name"`
		Description   string   `json:"description,omitempty"`
		Prerequisites []string `json:"prerequisites"`
		Order         int      `json:"order"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		subject := chi.URLParam(r, "subject")
		cfg, err := d.Content.SubjectConfig(subject)
		if err != nil {
			writeError(w, http.StatusNotFound, "subject not found")
			return
		}

		views := make([]subtopicView, 0, len(cfg.Subtopics))
		for id, sub := range cfg.Subtopics {
			prereqs := sub.Prerequisites
			if prereqs == nil {
				prereqs = []string{}
			}
			views = append(views, subtopicView{
				ID:            id,
				Name:          sub.Name,
				Description:   sub.Description,
				Prerequisites: prereqs,
				Order:         sub.Order,
			})
		}
		sort.Slice(views, func(i, j int) bool {
			if views[i].Order != views[j].Order {
				return views[i].Order < views[j].Order
			}
			return views[i].ID < views[j].ID
		})
		writeJSON(w, http.StatusOK, map[string]any{"subject": subject, "subtopics": views})
	}
}

type findLessonsReq struct {
	Subject    string   `json:"subject"`
	Tags       []string `json:"tags"`
	LessonType string   `json:"lesson_type"` // "", "initial" or "remedial"
}

// POST /api/find-lessons-by-tags
func FindLessonsByTagsHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req findLessonsReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}
		if req.Subject == "" {
			writeError(w, http.StatusBadRequest, "subject is required")
			return
		}

		matches := d.Content.FindLessonsByTags(req.Subject, req.Tags, req.LessonType)
		if matches == nil {
			matches = []content.LessonMatch{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"lessons": matches, "count": len(matches)})
	}
}
