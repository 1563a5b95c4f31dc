package auth

import (
	"context"
	"strings"
)

// Resolver turns a trusted token subject into an authorization-usable
// principal snapshot. Read-only; no side effects.
type Resolver struct {
	users UserStore
}

// NewResolver builds a resolver over the given store.
func NewResolver(users UserStore) *Resolver {
	return &Resolver{users: users}
}

// Resolve looks up an active account by email. A deactivated account fails
// with the same ErrNotFound as a nonexistent one; the store query checks
// both conditions at once.
func (r *Resolver) Resolve(ctx context.Context, email string) (User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return User{}, ErrNotFound
	}
	user, err := r.users.FindActiveByEmail(ctx, email)
	if err != nil {
		return User{}, err
	}
	return *user, nil
}
