package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	authmw "github.com/pathwise/pathwise/internal/auth/middleware"
	"github.com/pathwise/pathwise/internal/content"
	"github.com/pathwise/pathwise/internal/enrich"
	"github.com/pathwise/pathwise/internal/progress"
	"github.com/pathwise/pathwise/internal/quiz"
)

func fixtureDeps(t *testing.T) Deps {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "subjects", "python", "basics")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}

	config := `{
		"allowed_tags": ["loops", "lists", "functions"],
		"subtopics": {"basics": {"name": "Python Basics"}}
	}`
	if err := os.WriteFile(filepath.Join(root, "subjects", "python", "subject_config.json"), []byte(config), 0o644); err != nil {
		t.Fatal(err)
	}

	// Five questions, all tagged "loops".
	questions := make([]map[string]any, 5)
	for i := range questions {
		questions[i] = map[string]any{
			"id":             fmt.Sprintf("q%d", i+1),
			"question":       fmt.Sprintf("loop question %d", i+1),
			"type":           "multiple_choice",
			"correct_answer": "for",
			"tags":           []string{"loops"},
		}
	}
	quizData, _ := json.Marshal(map[string]any{"quiz_title": "Basics", "questions": questions})
	if err := os.WriteFile(filepath.Join(dir, "quiz_data.json"), quizData, 0o644); err != nil {
		t.Fatal(err)
	}

	// Pool of 9: 3 tagged "loops", 6 with other tags.
	pool := make([]map[string]any, 9)
	for i := range pool {
		tag := "functions"
		if i < 3 {
			tag = "loops"
		}
		pool[i] = map[string]any{
			"id":       fmt.Sprintf("p%d", i+1),
			"question": fmt.Sprintf("pool question %d", i+1),
			"tags":     []string{tag},
		}
	}
	poolData, _ := json.Marshal(map[string]any{"questions": pool})
	if err := os.WriteFile(filepath.Join(dir, "question_pool.json"), poolData, 0o644); err != nil {
		t.Fatal(err)
	}

	videos := `{"videos": [
		{"id": "v1", "title": "Mastering Loops", "url": "u1"},
		{"id": "v2", "title": "List Slicing", "url": "u2", "tags": ["lists"]}
	]}`
	if err := os.WriteFile(filepath.Join(dir, "videos.json"), []byte(videos), 0o644); err != nil {
		t.Fatal(err)
	}

	return Deps{
		Sessions: progress.NewMemorySessions(),
		Content:  content.NewStore(root),
		Analyzer: quiz.NewAnalyzer(),
		Enricher: enrich.New(nil),
	}
}

func newTestRouter(d Deps) chi.Router {
	r := chi.NewRouter()
	r.Get("/api/quiz/{subject}/{subtopic}", GetQuizHandler(d))
	r.Get("/api/recommendations/{subject}/{subtopic}", RecommendationsHandler(d))
	return r
}

func sessionRequest(method, target string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	return req.WithContext(authmw.WithSessionID(req.Context(), "test-session"))
}

func TestZeroScoreRemedialFlow(t *testing.T) {
	d := fixtureDeps(t)

	// All-blank submission to a 5-question quiz.
	rec := httptest.NewRecorder()
	AnalyzeQuizHandler(d).ServeHTTP(rec, sessionRequest(http.MethodPost, "/api/analyze-quiz",
		map[string]any{
			"subject":  "python",
			"subtopic": "basics",
			"answers":  []string{"", "", "", "", ""},
		}))
	if rec.Code != http.StatusOK {
		t.Fatalf("analyze status = %d body = %s", rec.Code, rec.Body.String())
	}

	var analyzed struct {
		Analysis quiz.Analysis `json:"analysis"`
		Enhanced bool          `json:"enhanced"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &analyzed); err != nil {
		t.Fatalf("decode analysis: %v", err)
	}
	if analyzed.Analysis.Score.Percentage != 0 {
		t.Errorf("percentage = %d, want 0", analyzed.Analysis.Score.Percentage)
	}
	if len(analyzed.Analysis.WeakTopics) == 0 {
		t.Fatal("weak topics must be non-empty for an all-blank submission")
	}
	if analyzed.Enhanced {
		t.Error("no provider configured, analysis must stay basic")
	}

	// Remedial generation against the 9-question pool with 3 relevant.
	rec = httptest.NewRecorder()
	GenerateRemedialHandler(d).ServeHTTP(rec, sessionRequest(http.MethodPost, "/api/generate-remedial-quiz",
		map[string]any{"subject": "python", "subtopic": "basics"}))
	if rec.Code != http.StatusOK {
		t.Fatalf("remedial status = %d body = %s", rec.Code, rec.Body.String())
	}

	var remedial struct {
		Questions []struct {
			ID   string   `json:"id"`
			Tags []string `json:"tags"`
		} `json:"questions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &remedial); err != nil {
		t.Fatalf("decode remedial: %v", err)
	}
	if n := len(remedial.Questions); n < 7 || n > 9 {
		t.Errorf("remedial size = %d, want 7..9", n)
	}
	got := map[string]bool{}
	for _, q := range remedial.Questions {
		got[q.ID] = true
	}
	for _, id := range []string{"p1", "p2", "p3"} {
		if !got[id] {
			t.Errorf("relevant question %s missing from remedial set", id)
		}
	}

	// Recommendations after a failing score: remedial offered, videos
	// matched on the weak topic.
	rec = httptest.NewRecorder()
	newTestRouter(d).ServeHTTP(rec, sessionRequest(http.MethodGet, "/api/recommendations/python/basics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("recommendations status = %d body = %s", rec.Code, rec.Body.String())
	}
	var recs struct {
		ShowRemedial bool `json:"show_remedial"`
		Videos       []struct {
			ID string `json:"id"`
		} `json:"videos"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &recs); err != nil {
		t.Fatalf("decode recommendations: %v", err)
	}
	if !recs.ShowRemedial {
		t.Error("show_remedial must be true for a zero score")
	}
	if len(recs.Videos) != 1 || recs.Videos[0].ID != "v1" {
		t.Errorf("videos = %+v, want only v1", recs.Videos)
	}
}

func TestAnalyzeQuiz_UnknownSubtopic(t *testing.T) {
	d := fixtureDeps(t)

	rec := httptest.NewRecorder()
	AnalyzeQuizHandler(d).ServeHTTP(rec, sessionRequest(http.MethodPost, "/api/analyze-quiz",
		map[string]any{"subject": "python", "subtopic": "ghost", "answers": []string{}}))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestGenerateRemedial_EmptyPool(t *testing.T) {
	d := fixtureDeps(t)

	rec := httptest.NewRecorder()
	GenerateRemedialHandler(d).ServeHTTP(rec, sessionRequest(http.MethodPost, "/api/generate-remedial-quiz",
		map[string]any{"subject": "python", "subtopic": "ghost"}))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	var body map[string]string
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body["error"] != "no question pool available" {
		t.Errorf("error = %q", body["error"])
	}
}

func TestGetQuiz_ServesStrippedQuestions(t *testing.T) {
	d := fixtureDeps(t)

	// The initial quiz is gated on the subtopic's videos; watch them
	// for the test session so the gate admits the request.
	tracker := progress.NewTracker(d.Sessions.Session("test-session"))
	for _, id := range []string{"v1", "v2"} {
		if err := tracker.MarkVideoComplete(context.Background(), "python", "basics", id); err != nil {
			t.Fatal(err)
		}
	}

	router := newTestRouter(d)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, sessionRequest(http.MethodGet, "/api/quiz/python/basics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	if bytes.Contains(rec.Body.Bytes(), []byte("correct_answer")) {
		t.Error("served quiz must not leak answer keys")
	}
}
