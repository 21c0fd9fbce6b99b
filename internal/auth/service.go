// Package auth handles username/password authentication and token issuance.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/radif/uploads/internal/user"
)

// MaxPasswordLen is the longest password bcrypt can hash, in bytes.
const MaxPasswordLen = 72

var (
	// ErrInvalidCredentials is returned when the username or password is wrong.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrPasswordTooLong is returned by Register for passwords over MaxPasswordLen bytes.
	ErrPasswordTooLong = errors.New("password must be at most 72 bytes")
)

// Users is the subset of user.Service the auth flow needs.
type Users interface {
	Create(ctx context.Context, username, passwordHash string) (*user.User, error)
	GetByUsername(ctx context.Context, username string) (*user.User, error)
}

// Service contains the business logic for authentication.
type Service struct {
	users    Users
	secret   []byte
	tokenTTL time.Duration
	now      func() time.Time
	cost     int
}

// NewService creates a new auth Service.
func NewService(users Users, jwtSecret string, tokenTTL time.Duration) *Service {
	return &Service{
		users:    users,
		secret:   []byte(jwtSecret),
		tokenTTL: tokenTTL,
		now:      time.Now,
		cost:     bcrypt.DefaultCost,
	}
}

// Register creates a new account and issues a token for it.
func (s *Service) Register(ctx context.Context, username, password string) (string, *user.User, error) {
	if len(password) > MaxPasswordLen {
		return "", nil, ErrPasswordTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", nil, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.users.Create(ctx, username, string(hash))
	if err != nil {
		return "", nil, err
	}

	token, err := s.issueToken(u)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	return token, u, nil
}

// Login checks the credentials and issues a token.
func (s *Service) Login(ctx context.Context, username, password string) (string, *user.User, error) {
	if len(password) > MaxPasswordLen {
		return "", nil, ErrInvalidCredentials
	}
	u, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, user.ErrNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, fmt.Errorf("get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.issueToken(u)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	return token, u, nil
}

// issueToken creates a signed JWT for the given user. The username claim is
// what clients use as their storage prefix and record user_id.
func (s *Service) issueToken(u *user.User) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":      u.ID,
		"username": u.Username,
		"iat":      now.Unix(),
		"exp":      now.Add(s.tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}
