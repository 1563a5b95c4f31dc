package todo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tasknest.org/internal/ids"
)

const (
	maxTitleLen       = 200
	maxDescriptionLen = 1000
	maxCategoryLen    = 100
)

// Input carries client-supplied todo fields. The owner id never comes from
// input; it is always taken from the authenticated principal.
type Input struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    Priority   `json:"priority"`
	Category    string     `json:"category"`
	DueDate     *time.Time `json:"due_date"`
	Completed   *bool      `json:"completed"`
}

func (in *Input) validate() error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if len(in.Title) > maxTitleLen {
		return fmt.Errorf("%w: title must be at most %d characters", ErrInvalidInput, maxTitleLen)
	}
	if len(in.Description) > maxDescriptionLen {
		return fmt.Errorf("%w: description must be at most %d characters", ErrInvalidInput, maxDescriptionLen)
	}
	if len(in.Category) > maxCategoryLen {
		return fmt.Errorf("%w: category must be at most %d characters", ErrInvalidInput, maxCategoryLen)
	}
	if in.Priority == "" {
		in.Priority = PriorityMedium
	}
	if !in.Priority.Valid() {
		return fmt.Errorf("%w: priority must be low, medium or high", ErrInvalidInput)
	}
	return nil
}

// Service applies todo business rules on top of a Store.
type Service struct {
	store Store
	now   func() time.Time
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service)

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewService constructs a Service.
func NewService(store Store, opts ...ServiceOption) *Service {
	svc := &Service{store: store, now: time.Now}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// List returns the user's todos matching the filter, newest first.
func (s *Service) List(ctx context.Context, userID string, f Filter) ([]*Todo, error) {
	return s.store.List(ctx, userID, f)
}

// Get fetches one todo owner-scoped.
func (s *Service) Get(ctx context.Context, userID, id string) (*Todo, error) {
	return s.store.Find(ctx, userID, id)
}

// Create validates input and persists a new todo for the user.
func (s *Service) Create(ctx context.Context, userID string, in Input) (*Todo, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	t := &Todo{
		ID:        ids.New(),
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.apply(t, in, now)
	if err := s.store.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Update replaces the mutable fields of an owned todo.
func (s *Service) Update(ctx context.Context, userID, id string, in Input) (*Todo, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	t, err := s.store.Find(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	s.apply(t, in, now)
	t.UpdatedAt = now
	if err := s.store.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Delete removes one owned todo.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	return s.store.Delete(ctx, userID, id)
}

// Toggle flips completion and maintains the completion timestamp.
func (s *Service) Toggle(ctx context.Context, userID, id string) (*Todo, error) {
	t, err := s.store.Find(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	s.setCompleted(t, !t.Completed, now)
	t.UpdatedAt = now
	if err := s.store.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// BulkDelete removes the given ids that belong to the user and reports how
// many were deleted; ids owned by others are silently skipped.
func (s *Service) BulkDelete(ctx context.Context, userID string, todoIDs []string) (int64, error) {
	if len(todoIDs) == 0 {
		return 0, nil
	}
	return s.store.DeleteMany(ctx, userID, todoIDs)
}

// Reorder assigns display orders for drag-and-drop. Items referencing todos
// the user does not own are skipped, not errors.
func (s *Service) Reorder(ctx context.Context, userID string, items []ReorderItem) error {
	for _, item := range items {
		if item.ID == "" {
			continue
		}
		err := s.store.SetDisplayOrder(ctx, userID, item.ID, item.Order)
		if err != nil && err != ErrNotFound {
			return err
		}
	}
	return nil
}

// Categories returns the user's distinct non-empty categories, sorted.
func (s *Service) Categories(ctx context.Context, userID string) ([]string, error) {
	return s.store.Categories(ctx, userID)
}

// Stats counts the user's todos by state.
func (s *Service) Stats(ctx context.Context, userID string) (Stats, error) {
	todos, err := s.store.List(ctx, userID, Filter{})
	if err != nil {
		return Stats{}, err
	}
	now := s.now().UTC()
	var stats Stats
	stats.Total = int64(len(todos))
	for _, t := range todos {
		if t.Completed {
			stats.Completed++
			continue
		}
		stats.Active++
		if t.Overdue(now) {
			stats.Overdue++
		}
	}
	return stats, nil
}

// Overdue lists open todos whose due date has passed.
func (s *Service) Overdue(ctx context.Context, userID string) ([]*Todo, error) {
	todos, err := s.store.List(ctx, userID, Filter{})
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	res := make([]*Todo, 0)
	for _, t := range todos {
		if t.Overdue(now) {
			res = append(res, t)
		}
	}
	return res, nil
}

// DeleteCompleted removes all completed todos and reports the count.
func (s *Service) DeleteCompleted(ctx context.Context, userID string) (int64, error) {
	return s.store.DeleteCompleted(ctx, userID)
}

func (s *Service) apply(t *Todo, in Input, now time.Time) {
	t.Title = in.Title
	t.Description = in.Description
	t.Priority = in.Priority
	t.Category = strings.TrimSpace(in.Category)
	t.DueDate = in.DueDate
	if in.Completed != nil {
		s.setCompleted(t, *in.Completed, now)
	}
}

func (s *Service) setCompleted(t *Todo, completed bool, now time.Time) {
	t.Completed = completed
	if completed {
		if t.CompletedAt == nil {
			ts := now
			t.CompletedAt = &ts
		}
	} else {
		t.CompletedAt = nil
	}
}
