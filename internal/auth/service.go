package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/hkaneko/taskboard/internal/model"
	"github.com/hkaneko/taskboard/internal/repository"
)

// Service handles registration, login, and token validation. Tokens are
// self-contained JWTs; logout is a client-side discard.
type Service struct {
	users  *repository.UserRepository
	hasher *PasswordHasher
	jwt    *JWTManager
}

// NewService creates an auth Service.
func NewService(users *repository.UserRepository, hasher *PasswordHasher, jwt *JWTManager) *Service {
	return &Service{
		users:  users,
		hasher: hasher,
		jwt:    jwt,
	}
}

// LoginResult is the payload returned after a successful login.
type LoginResult struct {
	User      *model.User
	Token     string
	ExpiresIn int64
}

// Register creates a new user account. A duplicate email surfaces as a
// field-level validation failure, matching the request validation shape.
func (s *Service) Register(ctx context.Context, req model.RegisterRequest) (*model.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.New().String(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, model.ErrEmailTaken) {
			v := model.NewValidationError()
			v.Add("email", "email already registered")
			return nil, v
		}
		return nil, err
	}

	return user, nil
}

// Login authenticates a user and mints an access token. A missing user
// and a wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, req model.LoginRequest) (*LoginResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, model.ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.hasher.Verify(req.Password, user.PasswordHash) {
		return nil, model.ErrInvalidCredentials
	}

	token, err := s.jwt.Generate(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &LoginResult{
		User:      user,
		Token:     token,
		ExpiresIn: s.jwt.TTL(),
	}, nil
}

// ValidateToken checks an access token and returns its claims.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	return s.jwt.Validate(tokenString)
}

// GetUser retrieves a user by ID.
func (s *Service) GetUser(ctx context.Context, id string) (*model.User, error) {
	return s.users.FindByID(ctx, id)
}
