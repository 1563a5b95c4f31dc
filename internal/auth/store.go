package auth

import "context"

// UserStore describes persistence operations required by the auth subsystem.
type UserStore interface {
	// Create persists a new user. ErrAlreadyExists on duplicate email.
	Create(ctx context.Context, u *User) error
	Find(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	// FindActiveByEmail resolves only active accounts; a deactivated
	// account yields ErrNotFound, indistinguishable from a missing one.
	FindActiveByEmail(ctx context.Context, email string) (*User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ListActive(ctx context.Context) ([]*User, error)
	Update(ctx context.Context, u *User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	SetActive(ctx context.Context, id string, active bool) error
}
