// Package prereq computes prerequisite gate decisions for subtopics and
// their quizzes. Both checks are derived fresh on every call from the
// progress tracker and subject configuration; nothing is stored.
package prereq

import (
	"context"

	"github.com/pathwise/pathwise/internal/content"
	"github.com/pathwise/pathwise/internal/progress"
)

// ReasonNotFound marks a configured prerequisite ID that is not a
// recognized subtopic; it counts as missing rather than crashing.
const ReasonNotFound = "not_found"

// Catalog is the subject-configuration surface the resolver reads.
// *content.Store satisfies it.
type Catalog interface {
	SubjectConfig(subject string) (*content.SubjectConfig, error)
	LessonIDs(subject, subtopic string) []string
	VideoIDs(subject, subtopic string) []string
}

// Status is the aggregate gate decision for one subtopic.
type Status struct {
	HasPrerequisites       bool     `json:"has_prerequisites"`
	PrerequisiteIDs        []string `json:"prerequisite_ids"`
	MissingPrerequisiteIDs []string `json:"missing_prerequisite_ids"`
	// MissingPrerequisites carries display names for the missing IDs,
	// aligned index-for-index with MissingPrerequisiteIDs.
	MissingPrerequisites []string          `json:"missing_prerequisites"`
	MissingReasons       map[string]string `json:"missing_reasons,omitempty"`
	CompletedCount       int               `json:"completed_prerequisites"`
	TotalCount           int               `json:"total_prerequisites"`
	AdminOverride        bool              `json:"admin_override"`
	CanAccessSubtopic    bool              `json:"can_access_subtopic"`
}

// QuizStatus reports whether a subtopic's own quiz may be taken.
type QuizStatus struct {
	MissingLessonIDs []string `json:"missing_lesson_ids"`
	MissingVideoIDs  []string `json:"missing_video_ids"`
	AdminOverride    bool     `json:"admin_override"`
	CanTakeQuiz      bool     `json:"can_take_quiz"`
}

// Resolver walks prerequisite edges and asks the progress tracker
// whether each prerequisite subtopic is fully complete.
type Resolver struct {
	catalog Catalog
	tracker *progress.Tracker
}

func NewResolver(catalog Catalog, tracker *progress.Tracker) *Resolver {
	return &Resolver{catalog: catalog, tracker: tracker}
}

// CheckSubtopicPrerequisites computes the gate decision for subtopic.
// A subject or subtopic with no configuration has no prerequisites and
// is accessible.
func (r *Resolver) CheckSubtopicPrerequisites(ctx context.Context, subject, subtopic string) (Status, error) {
	override, err := r.tracker.AdminOverride(ctx)
	if err != nil {
		return Status{}, err
	}

	status := Status{
		MissingPrerequisiteIDs: []string{},
		MissingPrerequisites:   []string{},
		AdminOverride:          override,
		CanAccessSubtopic:      true,
	}

	cfg, err := r.catalog.SubjectConfig(subject)
	if err != nil {
		return status, nil
	}
	target, ok := cfg.Subtopics[subtopic]
	if !ok || len(target.Prerequisites) == 0 {
		return status, nil
	}

	status.HasPrerequisites = true
	status.PrerequisiteIDs = target.Prerequisites
	status.TotalCount = len(target.Prerequisites)
	status.MissingReasons = make(map[string]string)

	for _, prereqID := range target.Prerequisites {
		prereqCfg, known := cfg.Subtopics[prereqID]
		if !known {
			status.MissingPrerequisiteIDs = append(status.MissingPrerequisiteIDs, prereqID)
			status.MissingPrerequisites = append(status.MissingPrerequisites, prereqID)
			status.MissingReasons[prereqID] = ReasonNotFound
			continue
		}

		complete, err := r.subtopicComplete(ctx, subject, prereqID)
		if err != nil {
			return Status{}, err
		}
		if complete {
			status.CompletedCount++
			continue
		}

		name := prereqCfg.Name
		if name == "" {
			name = prereqID
		}
		status.MissingPrerequisiteIDs = append(status.MissingPrerequisiteIDs, prereqID)
		status.MissingPrerequisites = append(status.MissingPrerequisites, name)
		status.MissingReasons[prereqID] = "incomplete"
	}
	if len(status.MissingReasons) == 0 {
		status.MissingReasons = nil
	}

	status.CanAccessSubtopic = override || len(status.MissingPrerequisiteIDs) == 0
	return status, nil
}

// CheckQuizPrerequisites applies the all-lessons/all-videos rule to the
// target subtopic itself.
func (r *Resolver) CheckQuizPrerequisites(ctx context.Context, subject, subtopic string) (QuizStatus, error) {
	override, err := r.tracker.AdminOverride(ctx)
	if err != nil {
		return QuizStatus{}, err
	}

	status := QuizStatus{
		MissingLessonIDs: []string{},
		MissingVideoIDs:  []string{},
		AdminOverride:    override,
	}

	for _, id := range r.catalog.LessonIDs(subject, subtopic) {
		done, err := r.tracker.IsLessonComplete(ctx, subject, subtopic, id)
		if err != nil {
			return QuizStatus{}, err
		}
		if !done {
			status.MissingLessonIDs = append(status.MissingLessonIDs, id)
		}
	}
	for _, id := range r.catalog.VideoIDs(subject, subtopic) {
		watched, err := r.tracker.IsVideoWatched(ctx, subject, subtopic, id)
		if err != nil {
			return QuizStatus{}, err
		}
		if !watched {
			status.MissingVideoIDs = append(status.MissingVideoIDs, id)
		}
	}

	status.CanTakeQuiz = override ||
		(len(status.MissingLessonIDs) == 0 && len(status.MissingVideoIDs) == 0)
	return status, nil
}

// subtopicComplete reports whether every lesson and every video of the
// subtopic is done. Zero lessons or videos are vacuously complete for
// that dimension.
func (r *Resolver) subtopicComplete(ctx context.Context, subject, subtopic string) (bool, error) {
	for _, id := range r.catalog.LessonIDs(subject, subtopic) {
		done, err := r.tracker.IsLessonComplete(ctx, subject, subtopic, id)
		if err != nil || !done {
			return false, err
		}
	}
	for _, id := range r.catalog.VideoIDs(subject, subtopic) {
		watched, err := r.tracker.IsVideoWatched(ctx, subject, subtopic, id)
		if err != nil || !watched {
			return false, err
		}
	}
	return true, nil
}
