package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"megaplatform/store"
	"time"
)

var (
	ErrMissingFields      = errors.New("username and password are required")
	ErrUserExists         = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrPasswordMismatch   = errors.New("new passwords do not match")
)

const timeLayout = "2006-01-02 15:04:05"

type Service struct {
	store   store.Store
	session *SessionManager
}

func NewService(store store.Store, sessionManager *SessionManager) *Service {
	return &Service{
		store:   store,
		session: sessionManager,
	}
}

// HashPassword is deliberately unsalted: the stored hash must be a pure
// function of the password so credential checks reduce to string equality.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

func (s *Service) Register(username, password, bio string) error {
	if username == "" || password == "" {
		return ErrMissingFields
	}

	existingUser, err := s.store.GetUserByUsername(username)
	if err != nil {
		return fmt.Errorf("failed to check existing user: %w", err)
	}
	if existingUser != nil {
		return ErrUserExists
	}

	createdAt := time.Now().Format(timeLayout)
	if _, err := s.store.CreateUser(username, HashPassword(password), bio, createdAt); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (s *Service) Login(username, password string) (string, error) {
	user, err := s.store.GetUserByUsername(username)
	if err != nil {
		return "", fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return "", ErrInvalidCredentials
	}

	if user.PasswordHash != HashPassword(password) {
		return "", ErrInvalidCredentials
	}

	return s.session.CreateSession(user.Username), nil
}

func (s *Service) Logout(sessionID string) {
	s.session.DeleteSession(sessionID)
}

func (s *Service) ValidateSession(sessionID string) (string, bool) {
	return s.session.GetUsername(sessionID)
}

func (s *Service) GetSessionManager() *SessionManager {
	return s.session
}

// Profile returns the public profile row, or nil when the user is unknown.
func (s *Service) Profile(username string) (*store.User, error) {
	user, err := s.store.GetUserByUsername(username)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return user, nil
}

func (s *Service) UpdateBio(username, bio string) error {
	if err := s.store.UpdateUserBio(username, bio); err != nil {
		return fmt.Errorf("failed to update bio: %w", err)
	}
	return nil
}

func (s *Service) ChangePassword(username, current, newPassword, confirm string) error {
	user, err := s.store.GetUserByUsername(username)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || user.PasswordHash != HashPassword(current) {
		return ErrInvalidCredentials
	}

	if newPassword == "" {
		return ErrMissingFields
	}
	if newPassword != confirm {
		return ErrPasswordMismatch
	}

	if err := s.store.UpdateUserPassword(username, HashPassword(newPassword)); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}
