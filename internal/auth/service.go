package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/parshv1234/ChemicalVisualizer/internal/core"
)

// Token is the result of a successful login.
type Token struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Service logs users in and resolves tokens to identities.
type Service struct {
	users    UserStore
	hasher   *Hasher
	tokens   *TokenIssuer
	validate *validator.Validate

	// dummyHash is compared against for unknown usernames.
	dummyHash string
}

// NewService creates a new Service instance.
func NewService(users UserStore, hasher *Hasher, tokens *TokenIssuer) *Service {
	dummy, err := hasher.Hash("not-a-real-password")
	if err != nil {
		slog.Warn("could not prepare dummy password hash", "error", err)
	}
	return &Service{
		users:     users,
		hasher:    hasher,
		tokens:    tokens,
		validate:  NewValidator(),
		dummyHash: dummy,
	}
}

// Login checks the credentials and returns a new token.
// Unknown users and wrong passwords both yield ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*Token, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, newRequestError(err)
	}

	user, err := s.users.GetUserByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			_ = s.hasher.Compare(s.dummyHash, req.Password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(core.Identity{ID: user.ID, Username: user.Username})
	if err != nil {
		return nil, err
	}

	return &Token{Token: token, ExpiresAt: expiresAt}, nil
}

// Authenticate verifies token and checks that its user still exists.
func (s *Service) Authenticate(ctx context.Context, token string) (*core.Identity, error) {
	id, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByID(ctx, id.ID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	return &core.Identity{ID: user.ID, Username: user.Username}, nil
}

// CreateUser validates the request, hashes the password and stores the user.
func (s *Service) CreateUser(ctx context.Context, req CreateUserRequest) (*User, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, newRequestError(err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.CreateUser(ctx, req.Username, hash)
	if err != nil {
		return nil, fmt.Errorf("create user %q: %w", req.Username, err)
	}
	return user, nil
}
