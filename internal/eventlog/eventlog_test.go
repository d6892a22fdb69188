package eventlog

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/pathwise/pathwise/internal/db"
)

func newTestRepo(t *testing.T) *Repo {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "events.db")
	h, err := db.Open(context.Background(), db.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { h.Close() })
	return NewRepo(h)
}

func TestAppendAndSince(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, typ := range []string{TypeLessonComplete, TypeVideoComplete, TypeQuizAnalyzed} {
		if err := repo.Append(ctx, "s1", typ, "python", "basics", map[string]string{"t": typ}); err != nil {
			t.Fatalf("append %s: %v", typ, err)
		}
	}
	if err := repo.Append(ctx, "s2", TypeLessonComplete, "python", "basics", nil); err != nil {
		t.Fatalf("append other session: %v", err)
	}

	events, err := repo.Since(ctx, "s1", 0, 10)
	if err != nil {
		t.Fatalf("since: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	if events[0].Type != TypeLessonComplete || events[2].Type != TypeQuizAnalyzed {
		t.Errorf("events out of order: %s .. %s", events[0].Type, events[2].Type)
	}
	for i := 1; i < len(events); i++ {
		if events[i].Seq <= events[i-1].Seq {
			t.Errorf("seq not increasing at %d: %d <= %d", i, events[i].Seq, events[i-1].Seq)
		}
	}

	// Cursor: resume after the first event.
	rest, err := repo.Since(ctx, "s1", events[0].Seq, 10)
	if err != nil {
		t.Fatalf("since cursor: %v", err)
	}
	if len(rest) != 2 {
		t.Fatalf("cursor read returned %d events, want 2", len(rest))
	}
	if rest[0].Seq != events[1].Seq {
		t.Errorf("cursor read starts at seq %d, want %d", rest[0].Seq, events[1].Seq)
	}

	// Limit caps the page.
	page, err := repo.Since(ctx, "s1", 0, 2)
	if err != nil {
		t.Fatalf("since limit: %v", err)
	}
	if len(page) != 2 {
		t.Errorf("limited read returned %d events, want 2", len(page))
	}
}

func TestNilRepoIsNoOp(t *testing.T) {
	var repo *Repo
	ctx := context.Background()
	if err := repo.Append(ctx, "s1", TypeLessonComplete, "python", "basics", nil); err != nil {
		t.Errorf("nil append: %v", err)
	}
	events, err := repo.Since(ctx, "s1", 0, 10)
	if err != nil || events != nil {
		t.Errorf("nil since = %v, %v", events, err)
	}
}
