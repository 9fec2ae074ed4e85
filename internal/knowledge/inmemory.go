package knowledge

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryStore is a simple in-process knowledge store for local/dev use.
// Search scores entries by overlapping query terms.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries []Entry
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Save(_ context.Context, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	s.entries = append(s.entries, entry)
	return nil
}

func (s *InMemoryStore) Search(_ context.Context, query string, limit int) ([]Entry, error) {
	if limit <= 0 {
		return nil, nil
	}

	terms := queryTerms(query)
	if len(terms) == 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	type scored struct {
		entry Entry
		score int
	}
	matches := make([]scored, 0, len(s.entries))
	for _, e := range s.entries {
		text := strings.ToLower(e.Summary + " " + e.Resolution)
		score := 0
		for _, term := range terms {
			if strings.Contains(text, term) {
				score++
			}
		}
		if score > 0 {
			matches = append(matches, scored{entry: e, score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].score != matches[j].score {
			return matches[i].score > matches[j].score
		}
		return matches[i].entry.CreatedAt.After(matches[j].entry.CreatedAt)
	})

	if limit > len(matches) {
		limit = len(matches)
	}
	out := make([]Entry, 0, limit)
	for _, m := range matches[:limit] {
		out = append(out, m.entry)
	}
	return out, nil
}

func (s *InMemoryStore) Close() error { return nil }

func queryTerms(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".,;:!?\"'()")
		// Short tokens ("a", "the", "to") match everything and add noise.
		if len(f) < 4 {
			continue
		}
		terms = append(terms, f)
	}
	return terms
}
