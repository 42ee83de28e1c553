package auth

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/talinda-pos/talinda-pos/internal/shared"
)

// Service wraps authentication business rules.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Authenticate validates username/password credentials. A successful login
// clears any pending forced re-authentication flag.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if user.ForceReauth {
		if err := s.repo.SetForceReauth(ctx, user.ID, false); err != nil {
			return nil, fmt.Errorf("clear reauth flag: %w", err)
		}
		user.ForceReauth = false
	}
	return user, nil
}

// VerifyPassword re-checks a user's password. Used by shift closure, which
// requires the cashier to confirm their identity.
func (s *Service) VerifyPassword(ctx context.Context, userID int64, password string) error {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return shared.ErrAuthentication
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return shared.ErrAuthentication
	}
	return nil
}

// FlagReauth marks the user so the next login demands fresh credentials.
func (s *Service) FlagReauth(ctx context.Context, userID int64) error {
	return s.repo.SetForceReauth(ctx, userID, true)
}

// Get returns the user for the given id.
func (s *Service) Get(ctx context.Context, userID int64) (*User, error) {
	return s.repo.FindByID(ctx, userID)
}
