package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yukikurage/rbac-task-api/internal/cache"
	"github.com/yukikurage/rbac-task-api/internal/config"
	"github.com/yukikurage/rbac-task-api/internal/constants"
	"github.com/yukikurage/rbac-task-api/internal/models"
	"github.com/yukikurage/rbac-task-api/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles authentication related business logic.
type AuthService struct {
	userRepo  repository.UserRepository
	tokens    *TokenService
	blacklist cache.TokenBlacklist
	cfg       config.AuthConfig
	log       zerolog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, tokens *TokenService, blacklist cache.TokenBlacklist, cfg config.AuthConfig, log zerolog.Logger) *AuthService {
	if blacklist == nil {
		blacklist = cache.NoopTokenBlacklist{}
	}
	return &AuthService{
		userRepo:  userRepo,
		tokens:    tokens,
		blacklist: blacklist,
		cfg:       cfg,
		log:       log.With().Str("component", "auth_service").Logger(),
	}
}

// RegisterInput represents the required information to create a new user.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     models.UserRole
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// AuthResult is a user together with a freshly issued token.
type AuthResult struct {
	User      *models.User
	Token     string
	ExpiresAt time.Time
}

// Register creates a user with the user role. A requested role is honored only when role signup is enabled.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	role := models.RoleUser
	if input.Role != "" && s.cfg.AllowRoleSignup {
		role = input.Role
	}

	user, err := s.createUser(ctx, input.Name, input.Email, input.Password, role)
	if err != nil {
		return nil, err
	}

	return s.issue(user)
}

// Login verifies credentials and returns the authenticated user.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issue(user)
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrInvalidID) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// Authenticate verifies a bearer token and rejects revoked ones.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*TokenClaims, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}

	revoked, err := s.blacklist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check token revocation: %w", err)
	}
	if revoked {
		return nil, ErrTokenRevoked
	}

	return claims, nil
}

// Logout revokes the token until it would have expired.
func (s *AuthService) Logout(ctx context.Context, claims *TokenClaims) error {
	if err := s.blacklist.Revoke(ctx, claims.ID, s.tokens.Remaining(claims)); err != nil {
		return fmt.Errorf("failed to logout: %w", err)
	}
	return nil
}

// AdminInput describes the bootstrap administrator account.
type AdminInput struct {
	Name     string
	Email    string
	Password string
}

// EnsureAdmin creates the bootstrap admin unless a user with that email already exists.
// It reports whether an account was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, input AdminInput) (bool, error) {
	email := normalizeEmail(input.Email)
	if email == "" {
		return false, nil
	}

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil {
		if existing.Role != models.RoleAdmin {
			s.log.Warn().Str("email", email).Msg("bootstrap admin email belongs to a non-admin user")
		}
		return false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return false, fmt.Errorf("failed to look up admin: %w", err)
	}

	if _, err := s.createUser(ctx, input.Name, email, input.Password, models.RoleAdmin); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return false, nil
		}
		return false, err
	}

	s.log.Info().Str("email", email).Msg("bootstrap admin created")
	return true, nil
}

func (s *AuthService) createUser(ctx context.Context, name, email, password string, role models.UserRole) (*models.User, error) {
	if len(password) < constants.MinPasswordLength {
		return nil, fieldError("password", fmt.Sprintf("must be at least %d characters", constants.MinPasswordLength))
	}

	user := &models.User{
		Name:  strings.TrimSpace(name),
		Email: normalizeEmail(email),
		Role:  role,
	}
	if err := validateModel(user); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost())
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = string(hashedPassword)

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

func (s *AuthService) bcryptCost() int {
	if s.cfg.BCryptCost < bcrypt.MinCost || s.cfg.BCryptCost > bcrypt.MaxCost {
		return bcrypt.DefaultCost
	}
	return s.cfg.BCryptCost
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, claims, err := s.tokens.Generate(user)
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		User:      user,
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
