package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/baharkarakas/accounts-backend/internal/auth"
	"github.com/baharkarakas/accounts-backend/internal/models"
	repo "github.com/baharkarakas/accounts-backend/internal/repository"
)

type AccountService struct {
	users repo.Users
}

func NewAccountService(users repo.Users) *AccountService {
	return &AccountService{users: users}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	// Role is the raw requested role, empty when the field was omitted.
	// Only an admin caller may set it.
	Role string
}

// Register validates in order (first failure wins), hashes the password and
// creates the account. callerRole is the authenticated caller's role, or
// empty for anonymous registration.
func (s *AccountService) Register(ctx context.Context, in RegisterInput, callerRole models.Role) (models.User, error) {
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return models.User{}, invalid("Please provide name, email and password")
	}
	name := strings.TrimSpace(in.Name)
	if len(name) < 2 {
		return models.User{}, invalid("Name must be at least 2 characters long")
	}
	if len(in.Password) < 6 {
		return models.User{}, invalid("Password must be at least 6 characters long")
	}

	role := models.RoleUser
	if in.Role != "" && in.Role != string(models.RoleUser) {
		// Explicit rejection rather than a silent downgrade.
		if callerRole != models.RoleAdmin {
			return models.User{}, ErrRoleNotAllowed
		}
		parsed, err := models.ParseRole(in.Role)
		if err != nil {
			return models.User{}, err
		}
		role = parsed
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return models.User{}, ErrDuplicateAccount
	} else if !errors.Is(err, repo.ErrNotFound) {
		return models.User{}, fmt.Errorf("lookup email: %w", err)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.users.Create(ctx, models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	})
	if err != nil {
		// The store's unique index is the authority under concurrent
		// registration; its violation equals the pre-check failure.
		if errors.Is(err, repo.ErrEmailTaken) {
			return models.User{}, ErrDuplicateAccount
		}
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// Login authenticates by email and password. Unknown email and wrong
// password are indistinguishable to the caller.
func (s *AccountService) Login(ctx context.Context, email, password string) (models.User, error) {
	u, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, fmt.Errorf("lookup email: %w", err)
	}
	if auth.VerifyPassword(password, u.PasswordHash) != nil {
		return models.User{}, ErrInvalidCredentials
	}
	return u, nil
}

func (s *AccountService) Get(ctx context.Context, userID string) (models.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

type ProfileUpdate struct {
	Phone   *string
	Bio     *string
	Picture *string
}

// UpdateProfile applies the supplied fields only; nil members are left as
// stored.
func (s *AccountService) UpdateProfile(ctx context.Context, userID string, in ProfileUpdate) (models.User, error) {
	patch := repo.ProfilePatch{Picture: in.Picture}
	if in.Phone != nil {
		phone := strings.TrimSpace(*in.Phone)
		if len(phone) < 10 {
			return models.User{}, invalid("Phone number must be at least 10 characters")
		}
		patch.Phone = &phone
	}
	if in.Bio != nil {
		if len(*in.Bio) > 500 {
			return models.User{}, invalid("Bio must be less than 500 characters")
		}
		bio := strings.TrimSpace(*in.Bio)
		patch.Bio = &bio
	}

	u, err := s.users.UpdateProfile(ctx, userID, patch)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("update profile: %w", err)
	}
	return u, nil
}
