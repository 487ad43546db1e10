// Package auth registers accounts, verifies credentials and issues the
// bearer tokens the API turns into a viewer.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/foodshare/foodshare/internal/db"
	"github.com/foodshare/foodshare/internal/donation"
	"github.com/foodshare/foodshare/internal/models"
	"github.com/foodshare/foodshare/pkg/config"
	"github.com/foodshare/foodshare/pkg/logging"
)

// Identity is a verified account
type Identity struct {
	ID    int64       `json:"id"`
	Email string      `json:"email,omitempty"`
	Role  models.Role `json:"role"`
}

// Viewer converts the identity into the caller passed to donation operations
func (i *Identity) Viewer() donation.Viewer {
	if i == nil {
		return donation.Viewer{}
	}
	return donation.Viewer{ID: i.ID, Role: i.Role}
}

// Service handles account operations
type Service struct {
	repo   *db.Repository
	tokens *TokenService
	cost   int
	logger *zap.Logger
}

// New creates an auth service
func New(repo *db.Repository, cfg *config.AuthConfig) *Service {
	return &Service{
		repo:   repo,
		tokens: NewTokenService(cfg.JWTSecret, cfg.Issuer, cfg.TokenTTL),
		cost:   cfg.BcryptCost,
		logger: logging.WithComponent("auth"),
	}
}

// Tokens returns the token service used to sign and validate viewer tokens
func (s *Service) Tokens() *TokenService {
	return s.tokens
}

// Register creates an account. accountType "donor" yields a DONOR, anything else a USER.
func (s *Service) Register(ctx context.Context, email, password, accountType string) (*Identity, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, donation.Validation("email and password are required")
	}

	role := models.RoleUser
	if strings.EqualFold(strings.TrimSpace(accountType), "donor") {
		role = models.RoleDonor
	}

	hash, err := HashPassword(password, s.cost)
	if err != nil {
		return nil, donation.Storage(err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	if err := db.NewUserRepository(s.repo).Create(ctx, user); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return nil, donation.Validation("an account with this email already exists")
		}
		s.logger.Error("Creating user failed", zap.Error(err))
		return nil, donation.Storage(err)
	}

	s.logger.Info("Account registered", zap.Int64("user_id", user.ID), zap.String("role", string(role)))
	return &Identity{ID: user.ID, Email: user.Email, Role: user.Role}, nil
}

// Verify checks credentials. Returns (nil, nil) for an unknown email or a
// mismatching password.
func (s *Service) Verify(ctx context.Context, email, password string) (*Identity, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, nil
	}

	user, err := db.NewUserRepository(s.repo).GetByEmail(ctx, email)
	if err != nil {
		return nil, donation.Storage(err)
	}
	if user == nil {
		return nil, nil
	}
	if err := CheckPassword(password, user.PasswordHash); err != nil {
		return nil, nil
	}
	return &Identity{ID: user.ID, Email: user.Email, Role: user.Role}, nil
}

// Login verifies credentials and returns a signed viewer token
func (s *Service) Login(ctx context.Context, email, password string) (string, *Identity, error) {
	id, err := s.Verify(ctx, email, password)
	if err != nil {
		s.logger.Error("Verifying credentials failed", zap.Error(errors.Unwrap(err)))
		return "", nil, err
	}
	if id == nil {
		return "", nil, donation.InvalidCredentials()
	}

	token, err := s.tokens.Generate(id)
	if err != nil {
		s.logger.Error("Signing token failed", zap.Error(err))
		return "", nil, donation.Storage(err)
	}
	return token, id, nil
}

// ResolveToken validates a bearer token and loads the account it names. The
// role comes from the stored account, not the token. A token for an account
// that no longer exists is an ErrInvalidToken.
func (s *Service) ResolveToken(ctx context.Context, token string) (*Identity, error) {
	claimed, err := s.tokens.Validate(token)
	if err != nil {
		return nil, err
	}

	user, err := db.NewUserRepository(s.repo).GetByID(ctx, claimed.ID)
	if err != nil {
		return nil, fmt.Errorf("load user %d: %w", claimed.ID, err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: unknown user %d", ErrInvalidToken, claimed.ID)
	}
	return &Identity{ID: user.ID, Email: user.Email, Role: user.Role}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
