package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tasknest.org/internal/ids"
)

// Service provides account lifecycle operations and credential-based token
// issuance on top of a UserStore and a TokenService.
type Service struct {
	users  UserStore
	tokens *TokenService
	now    func() time.Time
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
func NewService(users UserStore, tokens *TokenService, opts ...ServiceOption) *Service {
	svc := &Service{
		users:  users,
		tokens: tokens,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Tokens exposes the underlying token service.
func (s *Service) Tokens() *TokenService { return s.tokens }

// Register creates a new active account with the standard role and issues an
// initial token pair. Email comparison is exact; no case folding.
func (s *Service) Register(ctx context.Context, name, email, password string) (User, TokenPair, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return User{}, TokenPair{}, fmt.Errorf("%w: name, email and password are required", ErrInvalidInput)
	}
	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return User{}, TokenPair{}, err
	}
	if exists {
		return User{}, TokenPair{}, ErrAlreadyExists
	}
	hash, err := HashPassword(password)
	if err != nil {
		return User{}, TokenPair{}, err
	}
	now := s.now().UTC()
	user := &User{
		ID:           ids.New(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         RoleUser,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return User{}, TokenPair{}, err
	}
	pair, err := s.mintPair(user.Email)
	if err != nil {
		return User{}, TokenPair{}, err
	}
	return *user, pair, nil
}

// Login authenticates credentials against an active account and issues a
// token pair. Unknown email, deactivated account, and wrong password all
// fail with the same ErrUnauthorized.
func (s *Service) Login(ctx context.Context, email, password string) (User, TokenPair, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return User{}, TokenPair{}, ErrUnauthorized
	}
	user, err := s.users.FindActiveByEmail(ctx, email)
	if err != nil {
		return User{}, TokenPair{}, ErrUnauthorized
	}
	if err := VerifyPassword(user.PasswordHash, password); err != nil {
		return User{}, TokenPair{}, ErrUnauthorized
	}
	pair, err := s.mintPair(user.Email)
	if err != nil {
		return User{}, TokenPair{}, err
	}
	return *user, pair, nil
}

// Refresh exchanges a valid refresh token for a new access token. An access
// token presented here is rejected with ErrNotRefreshToken; every other
// failure is the uniform ErrUnauthorized.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, time.Time, User, error) {
	if !s.tokens.Validate(refreshToken) {
		return "", time.Time{}, User{}, ErrUnauthorized
	}
	if !s.tokens.IsRefreshToken(refreshToken) {
		return "", time.Time{}, User{}, ErrNotRefreshToken
	}
	email, err := s.tokens.Subject(refreshToken)
	if err != nil {
		return "", time.Time{}, User{}, ErrUnauthorized
	}
	user, err := s.users.FindActiveByEmail(ctx, email)
	if err != nil {
		return "", time.Time{}, User{}, ErrUnauthorized
	}
	access, exp, err := s.tokens.IssueAccessToken(user.Email)
	if err != nil {
		return "", time.Time{}, User{}, err
	}
	return access, exp, *user, nil
}

// ChangePassword verifies the current password before storing a new hash.
func (s *Service) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if currentPassword == "" || newPassword == "" {
		return fmt.Errorf("%w: current and new passwords are required", ErrInvalidInput)
	}
	user, err := s.users.Find(ctx, userID)
	if err != nil {
		return err
	}
	if err := VerifyPassword(user.PasswordHash, currentPassword); err != nil {
		return ErrUnauthorized
	}
	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, userID, hash)
}

// UpdateProfile changes name and email, guarding email uniqueness.
func (s *Service) UpdateProfile(ctx context.Context, userID, name, email string) (User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" {
		return User{}, fmt.Errorf("%w: name and email are required", ErrInvalidInput)
	}
	user, err := s.users.Find(ctx, userID)
	if err != nil {
		return User{}, err
	}
	if user.Email != email {
		exists, err := s.users.ExistsByEmail(ctx, email)
		if err != nil {
			return User{}, err
		}
		if exists {
			return User{}, ErrAlreadyExists
		}
	}
	user.Name = name
	user.Email = email
	user.UpdatedAt = s.now().UTC()
	if err := s.users.Update(ctx, user); err != nil {
		return User{}, err
	}
	return *user, nil
}

// Deactivate flags an account inactive; it stops authenticating immediately.
func (s *Service) Deactivate(ctx context.Context, userID string) error {
	return s.users.SetActive(ctx, userID, false)
}

// Activate re-enables a deactivated account.
func (s *Service) Activate(ctx context.Context, userID string) error {
	return s.users.SetActive(ctx, userID, true)
}

// ListActive returns all active accounts.
func (s *Service) ListActive(ctx context.Context) ([]*User, error) {
	return s.users.ListActive(ctx)
}

func (s *Service) mintPair(email string) (TokenPair, error) {
	access, accessExp, err := s.tokens.IssueAccessToken(email)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, refreshExp, err := s.tokens.IssueRefreshToken(email)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}
