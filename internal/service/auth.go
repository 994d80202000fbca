package service

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/beanpath/coffee-directory/internal/auth"
	"github.com/beanpath/coffee-directory/internal/repository"
)

// ErrInvalidCredentials is returned for any unverifiable email/password pair.
var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthService coordinates credential validation and token issuance.
type AuthService struct {
	users repository.UsersRepository
	jwt   *auth.JWTManager
}

// NewAuthService constructs a new AuthService.
func NewAuthService(users repository.UsersRepository, jwtManager *auth.JWTManager) *AuthService {
	return &AuthService{users: users, jwt: jwtManager}
}

// Register creates a user account and returns a JWT.
func (s *AuthService) Register(ctx context.Context, email, password string, name *string) (string, error) {
	if email == "" || password == "" {
		return "", ValidationError{Message: "email and password must not be empty"}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	user, err := s.users.Create(ctx, email, string(hashed), name, "user")
	if err != nil {
		return "", err
	}

	return s.jwt.GenerateToken(user.ID.String(), user.Email, user.Role)
}

// Login validates credentials and returns a JWT.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", ValidationError{Message: "email and password must not be empty"}
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return s.jwt.GenerateToken(user.ID.String(), user.Email, user.Role)
}
