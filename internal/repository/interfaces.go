package repository

import (
	"context"
	"errors"
	"time"

	"github.com/baharkarakas/accounts-backend/internal/models"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrEmailTaken = errors.New("email already taken")
)

// ProfilePatch carries the optional fields of a partial profile update.
// Nil means "leave unchanged".
type ProfilePatch struct {
	Phone   *string
	Bio     *string
	Picture *string
}

type Users interface {
	Create(ctx context.Context, u models.User) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	List(ctx context.Context, limit, offset int) ([]models.User, error)
	Count(ctx context.Context) (int, error)
	CountByRole(ctx context.Context, role models.Role) (int, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int, error)
	UpdateProfile(ctx context.Context, id string, patch ProfilePatch) (models.User, error)
	UpdateRole(ctx context.Context, id string, role models.Role) (models.User, error)
	Delete(ctx context.Context, id string) error
}

type AuditLogs interface {
	Create(ctx context.Context, l models.AuditLog) error
}
