package progress

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pathwise/pathwise/internal/quiz"
)

// Session fields, combined with subject and subtopic into the key scheme
// "<subject>_<subtopic>_<field>". The admin override is session-wide and
// uses its bare key.
const (
	fieldCompletedLessons  = "completed_lessons"
	fieldWatchedVideos     = "watched_videos"
	fieldQuizAnalysis      = "quiz_analysis"
	fieldWeakTopics        = "weak_topics"
	fieldRemedialQuestions = "remedial_questions"

	keyAdminOverride = "admin_override"
)

const previewStorageLimit = 500

// Tracker is the per-session progress state: completed lessons, watched
// videos, quiz analyses, weak topics, remedial sets and the admin
// override flag. All reads default to empty for unknown keys.
type Tracker struct {
	store Store
}

// NewTracker builds a Tracker over a session Store. A nil store falls
// back to an in-memory store so the tracker stays usable outside a live
// session.
func NewTracker(store Store) *Tracker {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Tracker{store: store}
}

func scopedKey(subject, subtopic, field string) string {
	return fmt.Sprintf("%s_%s_%s", subject, subtopic, field)
}

func (t *Tracker) getStrings(ctx context.Context, key string) ([]string, error) {
	raw, ok, err := t.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode %q: %w", key, err)
	}
	return out, nil
}

func (t *Tracker) setJSON(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	return t.store.Set(ctx, key, raw)
}

// appendUnique inserts id into the string set at key. Inserting an
// existing member is a no-op success.
func (t *Tracker) appendUnique(ctx context.Context, key, id string) error {
	ids, err := t.getStrings(ctx, key)
	if err != nil {
		return err
	}
	for _, existing := range ids {
		if existing == id {
			return nil
		}
	}
	return t.setJSON(ctx, key, append(ids, id))
}

func contains(ids []string, id string) bool {
	for _, existing := range ids {
		if existing == id {
			return true
		}
	}
	return false
}

// MarkLessonComplete records a completed lesson. Idempotent.
func (t *Tracker) MarkLessonComplete(ctx context.Context, subject, subtopic, lessonID string) error {
	return t.appendUnique(ctx, scopedKey(subject, subtopic, fieldCompletedLessons), lessonID)
}

// MarkVideoComplete records a watched video. Idempotent.
func (t *Tracker) MarkVideoComplete(ctx context.Context, subject, subtopic, videoID string) error {
	return t.appendUnique(ctx, scopedKey(subject, subtopic, fieldWatchedVideos), videoID)
}

func (t *Tracker) IsLessonComplete(ctx context.Context, subject, subtopic, lessonID string) (bool, error) {
	ids, err := t.CompletedLessons(ctx, subject, subtopic)
	if err != nil {
		return false, err
	}
	return contains(ids, lessonID), nil
}

func (t *Tracker) IsVideoWatched(ctx context.Context, subject, subtopic, videoID string) (bool, error) {
	ids, err := t.WatchedVideos(ctx, subject, subtopic)
	if err != nil {
		return false, err
	}
	return contains(ids, videoID), nil
}

func (t *Tracker) CompletedLessons(ctx context.Context, subject, subtopic string) ([]string, error) {
	return t.getStrings(ctx, scopedKey(subject, subtopic, fieldCompletedLessons))
}

func (t *Tracker) WatchedVideos(ctx context.Context, subject, subtopic string) ([]string, error) {
	return t.getStrings(ctx, scopedKey(subject, subtopic, fieldWatchedVideos))
}

// StoreQuizAnalysis replaces any prior analysis for the key. The
// per-question transcript is dropped and the preview truncated before
// storage to keep session payloads small.
func (t *Tracker) StoreQuizAnalysis(ctx context.Context, subject, subtopic string, analysis quiz.Analysis) error {
	sanitized := analysis
	sanitized.SubmissionDetails = nil
	sanitized.SubmissionPreview = quiz.TruncateToRune(sanitized.SubmissionPreview, previewStorageLimit)
	return t.setJSON(ctx, scopedKey(subject, subtopic, fieldQuizAnalysis), sanitized)
}

// QuizAnalysis returns the stored analysis for the key, if any.
func (t *Tracker) QuizAnalysis(ctx context.Context, subject, subtopic string) (*quiz.Analysis, bool, error) {
	raw, ok, err := t.store.Get(ctx, scopedKey(subject, subtopic, fieldQuizAnalysis))
	if err != nil || !ok {
		return nil, false, err
	}
	var analysis quiz.Analysis
	if err := json.Unmarshal(raw, &analysis); err != nil {
		return nil, false, fmt.Errorf("decode quiz analysis: %w", err)
	}
	return &analysis, true, nil
}

// SetWeakTopics stores the normalized weak-topic set, independent of the
// analysis record so remedial generation survives an analysis clear.
func (t *Tracker) SetWeakTopics(ctx context.Context, subject, subtopic string, topics []string) error {
	return t.setJSON(ctx, scopedKey(subject, subtopic, fieldWeakTopics), quiz.NormalizeTags(topics))
}

func (t *Tracker) WeakTopics(ctx context.Context, subject, subtopic string) ([]string, error) {
	return t.getStrings(ctx, scopedKey(subject, subtopic, fieldWeakTopics))
}

// SetRemedialQuestions stores the active remedial set, replacing the
// prior quiz context for the key.
func (t *Tracker) SetRemedialQuestions(ctx context.Context, subject, subtopic string, questions []quiz.Question) error {
	return t.setJSON(ctx, scopedKey(subject, subtopic, fieldRemedialQuestions), questions)
}

func (t *Tracker) RemedialQuestions(ctx context.Context, subject, subtopic string) ([]quiz.Question, bool, error) {
	raw, ok, err := t.store.Get(ctx, scopedKey(subject, subtopic, fieldRemedialQuestions))
	if err != nil || !ok {
		return nil, false, err
	}
	var questions []quiz.Question
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, false, fmt.Errorf("decode remedial questions: %w", err)
	}
	return questions, true, nil
}

// ClearSessionData removes every key scoped to (subject, subtopic):
// lessons, videos, analysis, weak topics and the remedial set. Other
// subtopics are untouched.
func (t *Tracker) ClearSessionData(ctx context.Context, subject, subtopic string) error {
	prefix := fmt.Sprintf("%s_%s_", subject, subtopic)
	keys, err := t.store.Keys(ctx, prefix)
	if err != nil {
		return err
	}
	for _, key := range keys {
		if err := t.store.Pop(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

// SetAdminOverride toggles the session-wide gating bypass. Explicit
// set only; never inferred from other state.
func (t *Tracker) SetAdminOverride(ctx context.Context, enabled bool) error {
	return t.setJSON(ctx, keyAdminOverride, enabled)
}

func (t *Tracker) AdminOverride(ctx context.Context) (bool, error) {
	raw, ok, err := t.store.Get(ctx, keyAdminOverride)
	if err != nil || !ok {
		return false, err
	}
	var enabled bool
	if err := json.Unmarshal(raw, &enabled); err != nil {
		return false, fmt.Errorf("decode admin override: %w", err)
	}
	return enabled, nil
}

// SubtopicStats summarizes completion for one subtopic against its
// configured lesson and video ID lists.
type SubtopicStats struct {
	Subject          string   `json:"subject"`
	Subtopic         string   `json:"subtopic"`
	CompletedLessons []string `json:"completed_lessons"`
	WatchedVideos    []string `json:"watched_videos"`
	TotalLessons     int      `json:"total_lessons"`
	TotalVideos      int      `json:"total_videos"`
	QuizTaken        bool     `json:"quiz_taken"`
	PercentComplete  int      `json:"percent_complete"`
	Complete         bool     `json:"complete"`
}

// CheckSubtopicProgress computes fresh stats for the subtopic. A
// subtopic with no lessons and no videos is vacuously complete.
func (t *Tracker) CheckSubtopicProgress(ctx context.Context, subject, subtopic string, lessonIDs, videoIDs []string) (SubtopicStats, error) {
	completed, err := t.CompletedLessons(ctx, subject, subtopic)
	if err != nil {
		return SubtopicStats{}, err
	}
	watched, err := t.WatchedVideos(ctx, subject, subtopic)
	if err != nil {
		return SubtopicStats{}, err
	}
	_, quizTaken, err := t.QuizAnalysis(ctx, subject, subtopic)
	if err != nil {
		return SubtopicStats{}, err
	}

	var doneLessons []string
	for _, id := range lessonIDs {
		if contains(completed, id) {
			doneLessons = append(doneLessons, id)
		}
	}
	var doneVideos []string
	for _, id := range videoIDs {
		if contains(watched, id) {
			doneVideos = append(doneVideos, id)
		}
	}

	total := len(lessonIDs) + len(videoIDs)
	done := len(doneLessons) + len(doneVideos)
	percent := 100
	if total > 0 {
		percent = done * 100 / total
	}

	return SubtopicStats{
		Subject:          subject,
		Subtopic:         subtopic,
		CompletedLessons: doneLessons,
		WatchedVideos:    doneVideos,
		TotalLessons:     len(lessonIDs),
		TotalVideos:      len(videoIDs),
		QuizTaken:        quizTaken,
		PercentComplete:  percent,
		Complete:         done == total,
	}, nil
}
