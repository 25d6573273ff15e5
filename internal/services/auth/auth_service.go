package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/truekeo/truekeo-api/internal/cache"
	"github.com/truekeo/truekeo-api/internal/models"
	"github.com/truekeo/truekeo-api/internal/security"
	"github.com/truekeo/truekeo-api/internal/store"
	"github.com/truekeo/truekeo-api/internal/utils"
)

// AuthService handles sign-up, login and the current-user profile.
type AuthService struct {
	users      store.UserStore
	profiles   *cache.ProfileCache
	jwtService *utils.JWTService
	log        *zap.Logger
}

// NewAuthService wires the service over its dependencies.
func NewAuthService(users store.UserStore, profiles *cache.ProfileCache, jwtService *utils.JWTService, log *zap.Logger) *AuthService {
	return &AuthService{users: users, profiles: profiles, jwtService: jwtService, log: log}
}

// JWTService exposes the token service for middleware wiring.
func (s *AuthService) JWTService() *utils.JWTService {
	return s.jwtService
}

// SignUp registers a new account and returns the profile plus a token.
func (s *AuthService) SignUp(ctx context.Context, username, email, password string) (*models.User, string, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	if username == "" || email == "" || password == "" {
		return nil, "", models.Preconditionf("username, email and password are required")
	}

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil, "", models.Preconditionf("username %q is taken", username)
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, "", err
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, "", models.Preconditionf("an account with that email already exists")
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, "", err
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, "", err
	}

	user := &models.User{Username: username, Email: email, PasswordHash: hash}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.jwtService.GenerateToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	s.profiles.Set(ctx, user)
	return user, token, nil
}

// Login authenticates by email or username plus password. A username is
// first resolved to its account, then the password is checked.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*models.User, string, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, "", models.Preconditionf("login and password are required")
	}

	var (
		user *models.User
		err  error
	)
	if strings.Contains(identifier, "@") {
		user, err = s.users.GetByEmail(ctx, strings.ToLower(identifier))
	} else {
		user, err = s.users.GetByUsername(ctx, identifier)
	}
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, "", models.ErrNotAuthenticated
		}
		return nil, "", err
	}

	if err := security.CheckPassword(user.PasswordHash, password); err != nil {
		return nil, "", models.ErrNotAuthenticated
	}

	token, err := s.jwtService.GenerateToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	s.profiles.Set(ctx, user)
	return user, token, nil
}

// Profile returns the caller's profile, served from the cache when fresh.
func (s *AuthService) Profile(ctx context.Context, callerID uuid.UUID) (*models.User, error) {
	if callerID == uuid.Nil {
		return nil, models.ErrNotAuthenticated
	}

	if u, ok := s.profiles.Get(ctx, callerID); ok {
		return u, nil
	}

	user, err := s.users.GetByID(ctx, callerID)
	if err != nil {
		return nil, err
	}
	s.profiles.Set(ctx, user)
	return user, nil
}

// UpdateProfile edits the caller's username and avatar and refreshes the
// cached copy.
func (s *AuthService) UpdateProfile(ctx context.Context, callerID uuid.UUID, username, avatarURL string) (*models.User, error) {
	if callerID == uuid.Nil {
		return nil, models.ErrNotAuthenticated
	}

	if username = strings.TrimSpace(username); username != "" {
		existing, err := s.users.GetByUsername(ctx, username)
		if err == nil && existing.ID != callerID {
			return nil, models.Preconditionf("username %q is taken", username)
		}
		if err != nil && !errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
	}

	user, err := s.users.UpdateProfile(ctx, callerID, username, avatarURL)
	if err != nil {
		return nil, err
	}
	s.profiles.Set(ctx, user)
	return user, nil
}
