package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/beanpath/coffee-directory/internal/auth"
	"github.com/beanpath/coffee-directory/internal/entity"
	"github.com/beanpath/coffee-directory/internal/repository"
)

type mockUsersRepository struct {
	findByEmail func(ctx context.Context, email string) (*entity.User, error)
	findByID    func(ctx context.Context, id uuid.UUID) (*entity.User, error)
	create      func(ctx context.Context, email, passwordHash string, name *string, role string) (*entity.User, error)
	list        func(ctx context.Context) ([]entity.User, error)
	update      func(ctx context.Context, id uuid.UUID, email, passwordHash, name, role *string) (*entity.User, error)
	delete      func(ctx context.Context, id uuid.UUID) error
}

func (m *mockUsersRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	if m.findByEmail != nil {
		return m.findByEmail(ctx, email)
	}
	return nil, errors.New("FindByEmail not implemented")
}

func (m *mockUsersRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	if m.findByID != nil {
		return m.findByID(ctx, id)
	}
	return nil, errors.New("FindByID not implemented")
}

func (m *mockUsersRepository) Create(ctx context.Context, email, passwordHash string, name *string, role string) (*entity.User, error) {
	if m.create != nil {
		return m.create(ctx, email, passwordHash, name, role)
	}
	return nil, errors.New("Create not implemented")
}

func (m *mockUsersRepository) List(ctx context.Context) ([]entity.User, error) {
	if m.list != nil {
		return m.list(ctx)
	}
	return nil, errors.New("List not implemented")
}

func (m *mockUsersRepository) Update(ctx context.Context, id uuid.UUID, email, passwordHash, name, role *string) (*entity.User, error) {
	if m.update != nil {
		return m.update(ctx, id, email, passwordHash, name, role)
	}
	return nil, errors.New("Update not implemented")
}

func (m *mockUsersRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if m.delete != nil {
		return m.delete(ctx, id)
	}
	return errors.New("Delete not implemented")
}

func TestAuthService_Register(t *testing.T) {
	manager := auth.NewJWTManager("test-secret", 0)

	t.Run("requires credentials", func(t *testing.T) {
		svc := NewAuthService(&mockUsersRepository{}, manager)
		if _, err := svc.Register(context.Background(), "", "", nil); err == nil {
			t.Fatalf("expected validation error")
		}
	})

	t.Run("hashes password and assigns user role", func(t *testing.T) {
		repo := &mockUsersRepository{
			create: func(ctx context.Context, email, passwordHash string, name *string, role string) (*entity.User, error) {
				if role != "user" {
					t.Fatalf("expected role user, got %q", role)
				}
				if passwordHash == "hunter2" {
					t.Fatalf("expected hashed password")
				}
				if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte("hunter2")); err != nil {
					t.Fatalf("hash does not verify: %v", err)
				}
				if name == nil || *name != "Sam" {
					t.Fatalf("expected name to be forwarded, got %v", name)
				}
				return &entity.User{ID: uuid.New(), Email: email, Role: role, Name: name}, nil
			},
		}
		svc := NewAuthService(repo, manager)

		displayName := "Sam"
		token, err := svc.Register(context.Background(), "sam@example.com", "hunter2", &displayName)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if token == "" {
			t.Fatalf("expected access token")
		}
	})

	t.Run("duplicate email bubbles up", func(t *testing.T) {
		repo := &mockUsersRepository{
			create: func(ctx context.Context, email, passwordHash string, name *string, role string) (*entity.User, error) {
				return nil, repository.ErrEmailDuplicate
			},
		}
		svc := NewAuthService(repo, manager)
		if _, err := svc.Register(context.Background(), "sam@example.com", "hunter2", nil); !errors.Is(err, repository.ErrEmailDuplicate) {
			t.Fatalf("expected duplicate email error, got %v", err)
		}
	})
}

func TestAuthService_Login(t *testing.T) {
	manager := auth.NewJWTManager("test-secret", 0)
	hashed, err := bcrypt.GenerateFromPassword([]byte("super-secret"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("unexpected bcrypt error: %v", err)
	}

	tests := map[string]struct {
		email     string
		password  string
		repo      repository.UsersRepository
		expectErr error
	}{
		"user not found": {
			email:    "sam@example.com",
			password: "whatever",
			repo: &mockUsersRepository{
				findByEmail: func(ctx context.Context, email string) (*entity.User, error) {
					return nil, repository.ErrUserNotFound
				},
			},
			expectErr: ErrInvalidCredentials,
		},
		"password mismatch": {
			email:    "sam@example.com",
			password: "wrong",
			repo: &mockUsersRepository{
				findByEmail: func(ctx context.Context, email string) (*entity.User, error) {
					return &entity.User{ID: uuid.New(), Email: email, PasswordHash: string(hashed), Role: "user"}, nil
				},
			},
			expectErr: ErrInvalidCredentials,
		},
		"success": {
			email:    "sam@example.com",
			password: "super-secret",
			repo: &mockUsersRepository{
				findByEmail: func(ctx context.Context, email string) (*entity.User, error) {
					return &entity.User{ID: uuid.New(), Email: email, PasswordHash: string(hashed), Role: "admin"}, nil
				},
			},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			svc := NewAuthService(tc.repo, manager)
			token, err := svc.Login(context.Background(), tc.email, tc.password)
			if tc.expectErr != nil {
				if !errors.Is(err, tc.expectErr) {
					t.Fatalf("expected %v, got %v", tc.expectErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			claims, err := manager.ParseToken(token)
			if err != nil {
				t.Fatalf("token does not parse: %v", err)
			}
			if claims.Role != "admin" {
				t.Fatalf("expected role claim admin, got %q", claims.Role)
			}
		})
	}
}
