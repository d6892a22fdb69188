package quiz

import (
	"errors"
	"strings"
)

// Default remedial quiz size bounds.
const (
	DefaultRemedialMin = 7
	DefaultRemedialMax = 10
)

// ErrEmptyPool reports remedial generation against an empty question
// pool. Distinct from "pool present but nothing relevant", which falls
// back to filler questions instead.
var ErrEmptyPool = errors.New("no question pool available")

// SelectRemedial deterministically picks a bounded remedial question set
// from the pool. Questions whose tags intersect the weak-topic set come
// first, in pool order; filler questions top up the remainder. The result
// size is clamped to [min(minCount,pool), min(maxCount,pool)] over the
// deduplicated pool. With zero relevant questions the first maxCount pool
// questions are returned, so a non-empty pool never yields an empty set.
func SelectRemedial(pool []Question, weakTopics []string, minCount, maxCount int) ([]Question, error) {
	if len(pool) == 0 {
		return nil, ErrEmptyPool
	}
	if minCount <= 0 {
		minCount = DefaultRemedialMin
	}
	if maxCount < minCount {
		maxCount = DefaultRemedialMax
	}

	weak := make(map[string]struct{}, len(weakTopics))
	for _, t := range weakTopics {
		if s := strings.ToLower(strings.TrimSpace(t)); s != "" {
			weak[s] = struct{}{}
		}
	}

	// Dedupe by identity, partition into relevant and filler, both in
	// pool order.
	var relevant, filler []Question
	seen := make(map[string]struct{}, len(pool))
	for _, q := range pool {
		key := q.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		if intersectsWeak(q, weak) {
			relevant = append(relevant, q)
		} else {
			filler = append(filler, q)
		}
	}

	poolSize := len(relevant) + len(filler)
	lo := min(minCount, poolSize)
	hi := min(maxCount, poolSize)

	if len(relevant) == 0 {
		return filler[:hi], nil
	}

	target := len(relevant)
	if target < lo {
		target = lo
	}
	if target > hi {
		target = hi
	}

	selected := make([]Question, 0, target)
	selected = append(selected, relevant...)
	if len(selected) > target {
		selected = selected[:target]
	}
	for _, q := range filler {
		if len(selected) >= target {
			break
		}
		selected = append(selected, q)
	}
	return selected, nil
}

func intersectsWeak(q Question, weak map[string]struct{}) bool {
	for _, tag := range q.Tags {
		if _, ok := weak[strings.ToLower(strings.TrimSpace(tag))]; ok {
			return true
		}
	}
	return false
}
