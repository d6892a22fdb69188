package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"unicode"

	"gopkg.in/yaml.v3"
)

// ErrNotFound reports a missing subject, subtopic or data file.
var ErrNotFound = errors.New("content not found")

// Store reads subject data from a directory tree and caches parsed
// files keyed by (subject, subtopic, kind). Safe for concurrent use.
type Store struct {
	root string
	log  *slog.Logger

	mu    sync.Mutex
	cache map[string]any
}

// StoreOption configures a Store.
type StoreOption func(*Store)

func WithStoreLogger(l *slog.Logger) StoreOption {
	return func(s *Store) { s.log = l }
}

// NewStore builds a Store rooted at dir. Relative roots are resolved
// against the working directory.
func NewStore(dir string, opts ...StoreOption) *Store {
	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = dir
	}
	s := &Store{
		root:  abs,
		log:   slog.Default(),
		cache: make(map[string]any),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) subjectDir(subject string) string {
	return filepath.Join(s.root, "subjects", subject)
}

func (s *Store) subtopicDir(subject, subtopic string) string {
	return filepath.Join(s.subjectDir(subject), subtopic)
}

// decodeFile parses one data file into dst. YAML documents are bridged
// through JSON so both formats honor the same field names.
func decodeFile(path string, dst any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		var intermediate any
		if err := yaml.Unmarshal(raw, &intermediate); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		bridged, err := json.Marshal(intermediate)
		if err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		raw = bridged
		fallthrough
	default:
		if err := json.Unmarshal(raw, dst); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	}
	return nil
}

// loadCached loads the first existing candidate file for key, caching
// the parsed value. A missing file yields ErrNotFound; a corrupt file is
// logged and reported as ErrNotFound so one bad file cannot take down
// requests for its siblings.
func loadCached[T any](s *Store, key string, dir, base string) (*T, error) {
	s.mu.Lock()
	if cached, ok := s.cache[key]; ok {
		s.mu.Unlock()
		return cached.(*T), nil
	}
	s.mu.Unlock()

	for _, ext := range []string{".json", ".yaml", ".yml"} {
		path := filepath.Join(dir, base+ext)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		value := new(T)
		if err := decodeFile(path, value); err != nil {
			s.log.Error("unreadable content file", "path", path, "error", err)
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		s.mu.Lock()
		s.cache[key] = value
		s.mu.Unlock()
		return value, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
}

// SubjectConfig loads a subject's vocabulary and subtopic graph.
func (s *Store) SubjectConfig(subject string) (*SubjectConfig, error) {
	return loadCached[SubjectConfig](s, subject+"_config", s.subjectDir(subject), "subject_config")
}

// SubjectInfo loads a subject's learner-facing metadata.
func (s *Store) SubjectInfo(subject string) (*SubjectInfo, error) {
	return loadCached[SubjectInfo](s, subject+"_info", s.subjectDir(subject), "subject_info")
}

// QuizData loads the initial quiz for a subtopic.
func (s *Store) QuizData(subject, subtopic string) (*QuizData, error) {
	key := fmt.Sprintf("%s_%s_quiz", subject, subtopic)
	return loadCached[QuizData](s, key, s.subtopicDir(subject, subtopic), "quiz_data")
}

// QuestionPool loads the remedial pool for a subtopic.
func (s *Store) QuestionPool(subject, subtopic string) (*QuestionPool, error) {
	key := fmt.Sprintf("%s_%s_questions", subject, subtopic)
	return loadCached[QuestionPool](s, key, s.subtopicDir(subject, subtopic), "question_pool")
}

// LessonPlans loads the lesson plans for a subtopic.
func (s *Store) LessonPlans(subject, subtopic string) (*LessonPlans, error) {
	key := fmt.Sprintf("%s_%s_lessons", subject, subtopic)
	return loadCached[LessonPlans](s, key, s.subtopicDir(subject, subtopic), "lesson_plans")
}

// Videos loads the video set for a subtopic.
func (s *Store) Videos(subject, subtopic string) (*VideoSet, error) {
	key := fmt.Sprintf("%s_%s_videos", subject, subtopic)
	return loadCached[VideoSet](s, key, s.subtopicDir(subject, subtopic), "videos")
}

// AllowedTags returns the subject's tag vocabulary, lower-cased. An
// unknown subject yields an empty vocabulary, not an error.
func (s *Store) AllowedTags(subject string) []string {
	cfg, err := s.SubjectConfig(subject)
	if err != nil {
		return nil
	}
	tags := make([]string, 0, len(cfg.AllowedTags))
	for _, tag := range cfg.AllowedTags {
		tags = append(tags, strings.ToLower(tag))
	}
	return tags
}

// LessonIDs returns a subtopic's lesson IDs in sorted order. Missing
// lesson plans mean zero lessons, not an error.
func (s *Store) LessonIDs(subject, subtopic string) []string {
	plans, err := s.LessonPlans(subject, subtopic)
	if err != nil {
		return nil
	}
	ids := make([]string, 0, len(plans.Lessons))
	for id := range plans.Lessons {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// VideoIDs returns a subtopic's video IDs in file order.
func (s *Store) VideoIDs(subject, subtopic string) []string {
	set, err := s.Videos(subject, subtopic)
	if err != nil {
		return nil
	}
	ids := make([]string, 0, len(set.Videos))
	for _, v := range set.Videos {
		ids = append(ids, v.ID)
	}
	return ids
}

// QuizTitle returns the configured quiz title or a generated default.
func (s *Store) QuizTitle(subject, subtopic string) string {
	if data, err := s.QuizData(subject, subtopic); err == nil && data.QuizTitle != "" {
		return data.QuizTitle
	}
	return fmt.Sprintf("%s %s Quiz", titleCase(subject), titleCase(subtopic))
}

// ValidateSubtopic reports whether the (subject, subtopic) pair has any
// known data file on disk.
func (s *Store) ValidateSubtopic(subject, subtopic string) bool {
	dir := s.subtopicDir(subject, subtopic)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return false
	}
	for _, base := range []string{"quiz_data", "lesson_plans", "question_pool", "videos"} {
		for _, ext := range []string{".json", ".yaml", ".yml"} {
			if _, err := os.Stat(filepath.Join(dir, base+ext)); err == nil {
				return true
			}
		}
	}
	return false
}

// FindLessonsByTags scans every subtopic's lesson plans for lessons
// whose tag set intersects targetTags, optionally filtered by lesson
// type ("initial", "remedial" or "" for all). Results are ordered by
// subtopic then lesson ID for determinism.
func (s *Store) FindLessonsByTags(subject string, targetTags []string, lessonType string) []LessonMatch {
	cfg, err := s.SubjectConfig(subject)
	if err != nil {
		return nil
	}

	want := make(map[string]bool, len(targetTags))
	for _, tag := range targetTags {
		want[strings.ToLower(strings.TrimSpace(tag))] = true
	}

	subtopics := make([]string, 0, len(cfg.Subtopics))
	for id := range cfg.Subtopics {
		subtopics = append(subtopics, id)
	}
	sort.Strings(subtopics)

	var matches []LessonMatch
	for _, subtopicID := range subtopics {
		plans, err := s.LessonPlans(subject, subtopicID)
		if err != nil {
			continue
		}
		lessonIDs := make([]string, 0, len(plans.Lessons))
		for id := range plans.Lessons {
			lessonIDs = append(lessonIDs, id)
		}
		sort.Strings(lessonIDs)

		for _, lessonID := range lessonIDs {
			lesson := plans.Lessons[lessonID]
			if lessonType != "" && !strings.EqualFold(lesson.Type, lessonType) {
				continue
			}
			var matching []string
			for _, tag := range lesson.Tags {
				if want[strings.ToLower(strings.TrimSpace(tag))] {
					matching = append(matching, tag)
				}
			}
			if len(matching) == 0 {
				continue
			}
			matches = append(matches, LessonMatch{
				Subject:      subject,
				Subtopic:     subtopicID,
				LessonID:     lessonID,
				Title:        lesson.Title,
				Type:         lesson.Type,
				Tags:         lesson.Tags,
				MatchingTags: matching,
			})
		}
	}
	return matches
}

// DiscoverSubjects scans the subjects directory for folders carrying
// both subject_info and subject_config files.
func (s *Store) DiscoverSubjects() map[string]SubjectInfo {
	subjects := make(map[string]SubjectInfo)
	entries, err := os.ReadDir(filepath.Join(s.root, "subjects"))
	if err != nil {
		s.log.Warn("subjects directory unreadable", "root", s.root, "error", err)
		return subjects
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		id := entry.Name()
		info, err := s.SubjectInfo(id)
		if err != nil {
			continue
		}
		cfg, err := s.SubjectConfig(id)
		if err != nil {
			continue
		}
		discovered := *info
		discovered.SubtopicCount = len(cfg.Subtopics)
		if discovered.Status == "" {
			discovered.Status = "active"
		}
		subjects[id] = discovered
	}
	return subjects
}

// ClearCache drops every cached file.
func (s *Store) ClearCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string]any)
}

// ClearSubjectCache drops cached files for one subject.
func (s *Store) ClearSubjectCache(subject string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.cache {
		if key == subject || strings.HasPrefix(key, subject+"_") {
			delete(s.cache, key)
		}
	}
}

// ClearSubtopicCache drops cached files for one (subject, subtopic).
func (s *Store) ClearSubtopicCache(subject, subtopic string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prefix := fmt.Sprintf("%s_%s_", subject, subtopic)
	for key := range s.cache {
		if strings.HasPrefix(key, prefix) {
			delete(s.cache, key)
		}
	}
}

func titleCase(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
