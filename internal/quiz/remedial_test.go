package quiz

import (
	"errors"
	"fmt"
	"testing"
)

func makePool(n int, tagged map[int][]string) []Question {
	pool := make([]Question, n)
	for i := range pool {
		pool[i] = Question{
			ID:   fmt.Sprintf("p%d", i),
			Text: fmt.Sprintf("pool question %d", i),
			Tags: tagged[i],
		}
	}
	return pool
}

func TestSelectRemedial_EmptyPool(t *testing.T) {
	_, err := SelectRemedial(nil, []string{"loops"}, 7, 10)
	if !errors.Is(err, ErrEmptyPool) {
		t.Fatalf("expected ErrEmptyPool, got %v", err)
	}
}

func TestSelectRemedial_RelevantFirstThenFiller(t *testing.T) {
	// 9 questions, 3 tagged with the weak topic.
	pool := makePool(9, map[int][]string{
		1: {"loops"},
		4: {"Loops"},
		7: {"loops", "lists"},
	})
	selected, err := SelectRemedial(pool, []string{"LOOPS"}, 7, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(selected) < 7 || len(selected) > 9 {
		t.Fatalf("selected %d questions, want between 7 and 9", len(selected))
	}

	// All three relevant questions included, ahead of filler.
	wantFirst := []string{"p1", "p4", "p7"}
	for i, id := range wantFirst {
		if selected[i].ID != id {
			t.Errorf("selected[%d] = %s, want %s", i, selected[i].ID, id)
		}
	}
}

func TestSelectRemedial_Bounds(t *testing.T) {
	cases := []struct {
		poolSize int
		wantMin  int
		wantMax  int
	}{
		{3, 3, 3},
		{7, 7, 7},
		{9, 7, 9},
		{15, 7, 10},
	}
	for _, tc := range cases {
		pool := makePool(tc.poolSize, nil)
		selected, err := SelectRemedial(pool, []string{"untagged"}, 7, 10)
		if err != nil {
			t.Fatal(err)
		}
		if len(selected) < tc.wantMin || len(selected) > tc.wantMax {
			t.Errorf("pool %d: selected %d, want [%d,%d]", tc.poolSize, len(selected), tc.wantMin, tc.wantMax)
		}
	}
}

func TestSelectRemedial_NoRelevantFallsBackToPoolOrder(t *testing.T) {
	pool := makePool(12, map[int][]string{0: {"lists"}, 1: {"dicts"}})
	selected, err := SelectRemedial(pool, []string{"recursion"}, 7, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(selected) != 10 {
		t.Fatalf("selected %d, want first 10 pool questions", len(selected))
	}
	for i, q := range selected {
		if q.ID != fmt.Sprintf("p%d", i) {
			t.Errorf("selected[%d] = %s, want pool order", i, q.ID)
		}
	}
}

func TestSelectRemedial_DedupesByIdentity(t *testing.T) {
	pool := makePool(8, map[int][]string{0: {"loops"}})
	// Duplicate of p0 by ID and an ID-less duplicate by text.
	pool = append(pool, pool[0], Question{Text: "pool question 3"}, Question{Text: "pool question 3"})

	selected, err := SelectRemedial(pool, []string{"loops"}, 7, 10)
	if err != nil {
		t.Fatal(err)
	}
	seen := map[string]bool{}
	for _, q := range selected {
		if seen[q.Key()] {
			t.Errorf("duplicate question %q in selection", q.Key())
		}
		seen[q.Key()] = true
	}
}

func TestSelectRemedial_Deterministic(t *testing.T) {
	pool := makePool(20, map[int][]string{2: {"a"}, 5: {"a"}, 11: {"a"}})
	first, _ := SelectRemedial(pool, []string{"a"}, 7, 10)
	second, _ := SelectRemedial(pool, []string{"a"}, 7, 10)
	if len(first) != len(second) {
		t.Fatal("selection size not deterministic")
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Fatalf("selection order not deterministic at %d", i)
		}
	}
}

func TestSelectRemedial_MembersComeFromPool(t *testing.T) {
	pool := makePool(9, map[int][]string{1: {"x"}})
	byID := map[string]bool{}
	for _, q := range pool {
		byID[q.ID] = true
	}
	selected, err := SelectRemedial(pool, []string{"x"}, 7, 10)
	if err != nil {
		t.Fatal(err)
	}
	for _, q := range selected {
		if !byID[q.ID] {
			t.Errorf("question %q not from pool", q.ID)
		}
	}
}
