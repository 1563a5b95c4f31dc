package todo

import "context"

// Store defines persistence for todos. Every operation takes the owning
// user's id as a mandatory filter; lookups by id are owner-scoped in the
// query itself, never filtered after the fact.
type Store interface {
	Create(ctx context.Context, t *Todo) error
	// Find returns ErrNotFound for a missing id and for an id owned by a
	// different user, identically.
	Find(ctx context.Context, userID, id string) (*Todo, error)
	// List returns the user's todos matching the filter, newest first.
	List(ctx context.Context, userID string, f Filter) ([]*Todo, error)
	// Update persists a previously loaded todo, keyed by id and owner.
	Update(ctx context.Context, t *Todo) error
	Delete(ctx context.Context, userID, id string) error
	// DeleteMany removes the listed ids that belong to the user and
	// reports how many were actually deleted.
	DeleteMany(ctx context.Context, userID string, ids []string) (int64, error)
	DeleteCompleted(ctx context.Context, userID string) (int64, error)
	SetDisplayOrder(ctx context.Context, userID, id string, order int) error
	// Categories returns the user's distinct non-empty categories, sorted.
	Categories(ctx context.Context, userID string) ([]string, error)
}
