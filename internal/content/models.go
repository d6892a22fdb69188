// Package content loads subject, lesson, video and quiz data from a
// directory tree:
//
//	<root>/subjects/<subject>/subject_info.{json,yaml}
//	<root>/subjects/<subject>/subject_config.{json,yaml}
//	<root>/subjects/<subject>/<subtopic>/quiz_data.{json,yaml}
//	<root>/subjects/<subject>/<subtopic>/question_pool.{json,yaml}
//	<root>/subjects/<subject>/<subtopic>/lesson_plans.{json,yaml}
//	<root>/subjects/<subject>/<subtopic>/videos.{json,yaml}
//
// The store only reads; editing tooling writes these files out of band.
package content

import "github.com/pathwise/pathwise/internal/quiz"

// SubjectInfo is the learner-facing description of a subject.
type SubjectInfo struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Icon        string `json:"icon" yaml:"icon"`
	Status      string `json:"status" yaml:"status"`
	CreatedDate string `json:"created_date" yaml:"created_date"`

	// SubtopicCount is filled in during discovery, not read from disk.
	SubtopicCount int `json:"subtopic_count" yaml:"-"`
}

// SubjectConfig carries the authoritative tag vocabulary and the
// subtopic graph, including prerequisite edges.
type SubjectConfig struct {
	AllowedTags []string                  `json:"allowed_tags" yaml:"allowed_tags"`
	Subtopics   map[string]SubtopicConfig `json:"subtopics" yaml:"subtopics"`
}

// SubtopicConfig describes one subtopic's metadata and its prerequisite
// subtopic IDs.
type SubtopicConfig struct {
	Name          string   `json:"name" yaml:"name"`
	Description   string   `json:"description" yaml:"description"`
	Prerequisites []string `json:"prerequisites" yaml:"prerequisites"`
	Order         int      `json:"order" yaml:"order"`
}

// Lesson is one lesson plan entry. Type distinguishes initial lessons
// from remedial ones targeted at weak topics.
type Lesson struct {
	Title   string   `json:"title" yaml:"title"`
	Type    string   `json:"type" yaml:"type"`
	Tags    []string `json:"tags" yaml:"tags"`
	Content string   `json:"content" yaml:"content"`
}

// LessonPlans is the lesson_plans file shape: lessons keyed by ID.
type LessonPlans struct {
	Lessons map[string]Lesson `json:"lessons" yaml:"lessons"`
}

// Video is one video entry for a subtopic.
type Video struct {
	ID          string   `json:"id" yaml:"id"`
	Title       string   `json:"title" yaml:"title"`
	URL         string   `json:"url" yaml:"url"`
	Description string   `json:"description" yaml:"description"`
	Tags        []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// VideoSet is the videos file shape.
type VideoSet struct {
	Videos []Video `json:"videos" yaml:"videos"`
}

// QuizData is the quiz_data file shape: the initial quiz for a subtopic.
type QuizData struct {
	QuizTitle string          `json:"quiz_title" yaml:"quiz_title"`
	Questions []quiz.Question `json:"questions" yaml:"questions"`
}

// QuestionPool is the question_pool file shape: the remedial pool.
type QuestionPool struct {
	Questions []quiz.Question `json:"questions" yaml:"questions"`
}

// LessonMatch is one hit from a tag-based lesson search.
type LessonMatch struct {
	Subject      string   `json:"subject"`
	Subtopic     string   `json:"subtopic"`
	LessonID     string   `json:"lesson_id"`
	Title        string   `json:"title"`
	Type         string   `json:"type"`
	Tags         []string `json:"tags"`
	MatchingTags []string `json:"matching_tags"`
}
