package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/beanpath/coffee-directory/internal/dto"
	"github.com/beanpath/coffee-directory/internal/entity"
	"github.com/beanpath/coffee-directory/internal/repository"
)

// UserService encapsulates profile updates and administrative account
// operations.
type UserService struct {
	repo repository.UsersRepository
}

// NewUserService builds a new UserService instance.
func NewUserService(repo repository.UsersRepository) *UserService {
	return &UserService{repo: repo}
}

// Get returns a single account.
func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return s.repo.FindByID(ctx, id)
}

// List returns all accounts for the admin screens.
func (s *UserService) List(ctx context.Context) ([]entity.User, error) {
	return s.repo.List(ctx)
}

// UpdateProfile lets a user change their own display name and password.
func (s *UserService) UpdateProfile(ctx context.Context, id uuid.UUID, req dto.UpdateProfileRequest) (*entity.User, error) {
	var passwordPtr *string
	if req.Password != nil {
		if strings.TrimSpace(*req.Password) == "" {
			return nil, ValidationError{Message: "password cannot be empty"}
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		pwd := string(hashed)
		passwordPtr = &pwd
	}

	return s.repo.Update(ctx, id, nil, passwordPtr, trimmedOrNil(req.Name), nil)
}

// CreateUser creates an account with the supplied role (admin operation).
func (s *UserService) CreateUser(ctx context.Context, req dto.UserAdminInput) (*entity.User, error) {
	if req.Email == nil || strings.TrimSpace(*req.Email) == "" || req.Password == nil || *req.Password == "" {
		return nil, ValidationError{Message: "email and password are required"}
	}

	email := strings.TrimSpace(*req.Email)
	role := "user"
	if req.Role != nil && strings.TrimSpace(*req.Role) != "" {
		role = strings.TrimSpace(*req.Role)
	}
	if role != "user" && role != "admin" {
		return nil, ValidationError{Message: fmt.Sprintf("unknown role %q", role)}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	return s.repo.Create(ctx, email, string(hashed), trimmedOrNil(req.Name), role)
}

// UpdateUser mutates selected account fields (admin operation).
func (s *UserService) UpdateUser(ctx context.Context, id uuid.UUID, req dto.UserAdminInput) (*entity.User, error) {
	var emailPtr *string
	if req.Email != nil {
		trimmed := strings.TrimSpace(*req.Email)
		if trimmed == "" {
			return nil, ValidationError{Message: "email cannot be empty"}
		}
		emailPtr = &trimmed
	}

	var rolePtr *string
	if req.Role != nil {
		trimmed := strings.TrimSpace(*req.Role)
		if trimmed != "user" && trimmed != "admin" {
			return nil, ValidationError{Message: fmt.Sprintf("unknown role %q", trimmed)}
		}
		rolePtr = &trimmed
	}

	var passwordPtr *string
	if req.Password != nil {
		if strings.TrimSpace(*req.Password) == "" {
			return nil, ValidationError{Message: "password cannot be empty"}
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		pwd := string(hashed)
		passwordPtr = &pwd
	}

	return s.repo.Update(ctx, id, emailPtr, passwordPtr, trimmedOrNil(req.Name), rolePtr)
}

// DeleteUser removes an account (admin operation).
func (s *UserService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
