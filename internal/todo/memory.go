package todo

import (
	"context"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
)

// InMemory implements Store with in-process concurrency safety. Used in
// tests and when no database DSN is configured.
type InMemory struct {
	mu    sync.RWMutex
	todos map[string]*Todo // id -> record
	seq   atomic.Int64     // creation order tiebreaker
	order map[string]int64 // id -> insertion sequence
}

var _ Store = (*InMemory)(nil)

// NewInMemory creates an empty store.
func NewInMemory() *InMemory {
	return &InMemory{
		todos: make(map[string]*Todo),
		order: make(map[string]int64),
	}
}

func (s *InMemory) Create(ctx context.Context, t *Todo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *t
	s.todos[t.ID] = &cp
	s.order[t.ID] = s.seq.Add(1)
	return nil
}

func (s *InMemory) Find(ctx context.Context, userID, id string) (*Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.todos[id]
	if !ok || t.UserID != userID {
		return nil, ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *InMemory) List(ctx context.Context, userID string, f Filter) ([]*Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var res []*Todo
	for _, t := range s.todos {
		if t.UserID != userID || !matches(t, f) {
			continue
		}
		cp := *t
		res = append(res, &cp)
	}
	// Newest first; fall back to insertion order for equal timestamps.
	sort.Slice(res, func(i, j int) bool {
		if !res[i].CreatedAt.Equal(res[j].CreatedAt) {
			return res[i].CreatedAt.After(res[j].CreatedAt)
		}
		return s.order[res[i].ID] > s.order[res[j].ID]
	})
	return res, nil
}

func (s *InMemory) Update(ctx context.Context, t *Todo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.todos[t.ID]
	if !ok || existing.UserID != t.UserID {
		return ErrNotFound
	}
	cp := *t
	s.todos[t.ID] = &cp
	return nil
}

func (s *InMemory) Delete(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.todos[id]
	if !ok || t.UserID != userID {
		return ErrNotFound
	}
	delete(s.todos, id)
	delete(s.order, id)
	return nil
}

func (s *InMemory) DeleteMany(ctx context.Context, userID string, ids []string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, id := range ids {
		t, ok := s.todos[id]
		if !ok || t.UserID != userID {
			continue
		}
		delete(s.todos, id)
		delete(s.order, id)
		n++
	}
	return n, nil
}

func (s *InMemory) DeleteCompleted(ctx context.Context, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, t := range s.todos {
		if t.UserID == userID && t.Completed {
			delete(s.todos, id)
			delete(s.order, id)
			n++
		}
	}
	return n, nil
}

func (s *InMemory) SetDisplayOrder(ctx context.Context, userID, id string, order int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.todos[id]
	if !ok || t.UserID != userID {
		return ErrNotFound
	}
	t.DisplayOrder = &order
	return nil
}

func (s *InMemory) Categories(ctx context.Context, userID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]struct{})
	for _, t := range s.todos {
		if t.UserID != userID {
			continue
		}
		cat := strings.TrimSpace(t.Category)
		if cat == "" {
			continue
		}
		seen[cat] = struct{}{}
	}
	res := make([]string, 0, len(seen))
	for cat := range seen {
		res = append(res, cat)
	}
	sort.Strings(res)
	return res, nil
}

func matches(t *Todo, f Filter) bool {
	if f.Completed != nil && t.Completed != *f.Completed {
		return false
	}
	if f.Priority != nil && t.Priority != *f.Priority {
		return false
	}
	if f.Category != "" && t.Category != f.Category {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(t.Title), needle) &&
			!strings.Contains(strings.ToLower(t.Description), needle) {
			return false
		}
	}
	return true
}
