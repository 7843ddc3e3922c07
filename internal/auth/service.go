package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"conferent-backend/internal/model"
	"conferent-backend/internal/store"
)

// Session is the result of a successful sign-in.
type Session struct {
	User      *model.User
	Token     string
	ExpiresAt time.Time
}

// Service registers accounts and signs them in.
type Service struct {
	users  store.UserStore
	tokens *TokenIssuer
	cost   int
}

// NewService returns a Service hashing passwords at bcrypt cost.
func NewService(users store.UserStore, tokens *TokenIssuer, cost int) *Service {
	return &Service{users: users, tokens: tokens, cost: cost}
}

// Register creates a USER account and signs it in. A taken email yields
// store.ErrDuplicate.
func (s *Service) Register(ctx context.Context, name, email, password string) (*Session, error) {
	hash, err := HashPassword(password, s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	u := &model.User{
		Name:         strings.TrimSpace(name),
		Email:        normalizeEmail(email),
		PasswordHash: hash,
		Role:         model.RoleUser,
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	log.Printf("Registered user %d (%s)", u.ID, u.Email)
	return s.session(u)
}

// Login checks the credentials and returns a fresh token.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.users.GetUserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !CheckPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return s.session(u)
}

// Authenticate resolves a bearer token to its account.
func (s *Service) Authenticate(ctx context.Context, token string) (*model.User, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	u, err := s.users.GetUser(ctx, claims.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: account %d no longer exists", ErrInvalidToken, claims.UserID)
	}
	return u, err
}

func (s *Service) session(u *model.User) (*Session, error) {
	token, exp, err := s.tokens.Issue(u)
	if err != nil {
		return nil, err
	}
	return &Session{User: u, Token: token, ExpiresAt: exp}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
