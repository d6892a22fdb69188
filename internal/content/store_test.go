package content

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func fixtureStore(t *testing.T) *Store {
	t.Helper()
	root := t.TempDir()
	python := filepath.Join(root, "subjects", "python")

	writeFile(t, filepath.Join(python, "subject_info.json"),
		`{"name":"Python","description":"Intro to Python","icon":"snake"}`)
	writeFile(t, filepath.Join(python, "subject_config.json"), `{
		"allowed_tags": ["Loops", "lists", "functions"],
		"subtopics": {
			"basics":    {"name": "Python Basics", "prerequisites": []},
			"functions": {"name": "Python Functions", "prerequisites": ["basics"]},
			"arrays":    {"name": "Python Arrays", "prerequisites": ["functions"]}
		}
	}`)
	writeFile(t, filepath.Join(python, "basics", "quiz_data.json"), `{
		"quiz_title": "Basics Check",
		"questions": [
			{"id":"q1","question":"What keyword starts a loop?","type":"fill_in_the_blank","correct_answer":"for, while","tags":["loops"]}
		]
	}`)
	writeFile(t, filepath.Join(python, "basics", "question_pool.json"), `{
		"questions": [
			{"id":"p1","question":"pool one","tags":["loops"]},
			{"id":"p2","question":"pool two","tags":["lists"]}
		]
	}`)
	writeFile(t, filepath.Join(python, "basics", "lesson_plans.json"), `{
		"lessons": {
			"l2": {"title":"While Loops","type":"remedial","tags":["loops"]},
			"l1": {"title":"For Loops","type":"initial","tags":["loops"]}
		}
	}`)
	writeFile(t, filepath.Join(python, "basics", "videos.json"), `{
		"videos": [{"id":"v1","title":"Loop walkthrough","url":"https://example.test/v1"}]
	}`)
	// A YAML-configured subtopic next to the JSON ones.
	writeFile(t, filepath.Join(python, "functions", "lesson_plans.yaml"), `
lessons:
  f1:
    title: Defining Functions
    type: initial
    tags: [functions]
`)
	return NewStore(root)
}

func TestSubjectConfig(t *testing.T) {
	s := fixtureStore(t)

	cfg, err := s.SubjectConfig("python")
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if len(cfg.Subtopics) != 3 {
		t.Errorf("subtopics = %d, want 3", len(cfg.Subtopics))
	}
	if !reflect.DeepEqual(cfg.Subtopics["arrays"].Prerequisites, []string{"functions"}) {
		t.Errorf("arrays prerequisites = %v", cfg.Subtopics["arrays"].Prerequisites)
	}
}

func TestSubjectConfig_UnknownSubject(t *testing.T) {
	s := fixtureStore(t)
	if _, err := s.SubjectConfig("klingon"); err == nil {
		t.Fatal("expected error for unknown subject")
	}
}

func TestAllowedTags_Lowercased(t *testing.T) {
	s := fixtureStore(t)
	tags := s.AllowedTags("python")
	if !reflect.DeepEqual(tags, []string{"loops", "lists", "functions"}) {
		t.Errorf("allowed tags = %v", tags)
	}
	if tags := s.AllowedTags("klingon"); len(tags) != 0 {
		t.Errorf("unknown subject should yield no tags, got %v", tags)
	}
}

func TestQuizData(t *testing.T) {
	s := fixtureStore(t)

	data, err := s.QuizData("python", "basics")
	if err != nil {
		t.Fatalf("quiz: %v", err)
	}
	if data.QuizTitle != "Basics Check" || len(data.Questions) != 1 {
		t.Errorf("quiz = %+v", data)
	}
	if data.Questions[0].Text != "What keyword starts a loop?" {
		t.Errorf("question text = %q", data.Questions[0].Text)
	}
}

func TestQuizTitle_Default(t *testing.T) {
	s := fixtureStore(t)
	if title := s.QuizTitle("python", "functions"); title != "Python Functions Quiz" {
		t.Errorf("default title = %q", title)
	}
}

func TestLessonIDs_Sorted(t *testing.T) {
	s := fixtureStore(t)
	if ids := s.LessonIDs("python", "basics"); !reflect.DeepEqual(ids, []string{"l1", "l2"}) {
		t.Errorf("lesson ids = %v", ids)
	}
	if ids := s.LessonIDs("python", "arrays"); len(ids) != 0 {
		t.Errorf("subtopic without lesson plans should have no lessons: %v", ids)
	}
}

func TestVideoIDs(t *testing.T) {
	s := fixtureStore(t)
	if ids := s.VideoIDs("python", "basics"); !reflect.DeepEqual(ids, []string{"v1"}) {
		t.Errorf("video ids = %v", ids)
	}
}

func TestYAMLLessonPlans(t *testing.T) {
	s := fixtureStore(t)

	plans, err := s.LessonPlans("python", "functions")
	if err != nil {
		t.Fatalf("yaml lesson plans: %v", err)
	}
	lesson, ok := plans.Lessons["f1"]
	if !ok || lesson.Title != "Defining Functions" {
		t.Errorf("lesson = %+v ok=%v", lesson, ok)
	}
}

func TestValidateSubtopic(t *testing.T) {
	s := fixtureStore(t)
	if !s.ValidateSubtopic("python", "basics") {
		t.Error("basics should validate")
	}
	if s.ValidateSubtopic("python", "nonexistent") {
		t.Error("missing subtopic should not validate")
	}
	if s.ValidateSubtopic("python", "arrays") {
		t.Error("subtopic directory without data files should not validate")
	}
}

func TestFindLessonsByTags(t *testing.T) {
	s := fixtureStore(t)

	matches := s.FindLessonsByTags("python", []string{"loops"}, "")
	if len(matches) != 2 {
		t.Fatalf("matches = %d, want 2", len(matches))
	}
	if matches[0].LessonID != "l1" || matches[1].LessonID != "l2" {
		t.Errorf("match order = %s, %s", matches[0].LessonID, matches[1].LessonID)
	}
	if !reflect.DeepEqual(matches[0].MatchingTags, []string{"loops"}) {
		t.Errorf("matching tags = %v", matches[0].MatchingTags)
	}

	remedial := s.FindLessonsByTags("python", []string{"loops"}, "remedial")
	if len(remedial) != 1 || remedial[0].LessonID != "l2" {
		t.Errorf("remedial matches = %+v", remedial)
	}

	if none := s.FindLessonsByTags("python", []string{"recursion"}, ""); len(none) != 0 {
		t.Errorf("unexpected matches: %+v", none)
	}
}

func TestDiscoverSubjects(t *testing.T) {
	s := fixtureStore(t)

	subjects := s.DiscoverSubjects()
	info, ok := subjects["python"]
	if !ok {
		t.Fatalf("python not discovered: %v", subjects)
	}
	if info.Name != "Python" || info.SubtopicCount != 3 || info.Status != "active" {
		t.Errorf("info = %+v", info)
	}
}

func TestCacheServesStaleUntilCleared(t *testing.T) {
	s := fixtureStore(t)

	first, _ := s.QuizData("python", "basics")
	path := filepath.Join(s.root, "subjects", "python", "basics", "quiz_data.json")
	writeFile(t, path, `{"quiz_title":"Rewritten","questions":[]}`)

	cached, _ := s.QuizData("python", "basics")
	if cached.QuizTitle != first.QuizTitle {
		t.Error("second read should come from cache")
	}

	s.ClearSubtopicCache("python", "basics")
	fresh, _ := s.QuizData("python", "basics")
	if fresh.QuizTitle != "Rewritten" {
		t.Errorf("after cache clear title = %q", fresh.QuizTitle)
	}
}
