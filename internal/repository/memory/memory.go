// Package memory provides map-backed implementations of the repository
// interfaces. They mirror the postgres behavior (email uniqueness, not-found
// sentinels, createdAt ordering) and back the service and HTTP tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/baharkarakas/accounts-backend/internal/models"
	"github.com/baharkarakas/accounts-backend/internal/repository"
	"github.com/google/uuid"
)

type UsersRepo struct {
	mu    sync.Mutex
	users map[string]models.User
}

func NewUsers() *UsersRepo {
	return &UsersRepo{users: make(map[string]models.User)}
}

func (r *UsersRepo) Create(_ context.Context, u models.User) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return models.User{}, repository.ErrEmailTaken
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	u.UpdatedAt = u.CreatedAt
	r.users[u.ID] = u
	return u, nil
}

func (r *UsersRepo) GetByID(_ context.Context, id string) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return models.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (r *UsersRepo) GetByEmail(_ context.Context, email string) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return models.User{}, repository.ErrNotFound
}

func (r *UsersRepo) sorted() []models.User {
	out := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (r *UsersRepo) List(_ context.Context, limit, offset int) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.sorted()
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *UsersRepo) Count(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users), nil
}

func (r *UsersRepo) CountByRole(_ context.Context, role models.Role) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, u := range r.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

func (r *UsersRepo) CountCreatedSince(_ context.Context, since time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, u := range r.users {
		if !u.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (r *UsersRepo) UpdateProfile(_ context.Context, id string, patch repository.ProfilePatch) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return models.User{}, repository.ErrNotFound
	}
	if patch.Phone != nil {
		u.Phone = *patch.Phone
	}
	if patch.Bio != nil {
		u.Bio = *patch.Bio
	}
	if patch.Picture != nil {
		u.Picture = *patch.Picture
	}
	u.UpdatedAt = time.Now()
	r.users[id] = u
	return u, nil
}

func (r *UsersRepo) UpdateRole(_ context.Context, id string, role models.Role) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return models.User{}, repository.ErrNotFound
	}
	u.Role = role
	u.UpdatedAt = time.Now()
	r.users[id] = u
	return u, nil
}

func (r *UsersRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

type AuditRepo struct {
	mu   sync.Mutex
	logs []models.AuditLog
}

func NewAuditLogs() *AuditRepo {
	return &AuditRepo{}
}

func (r *AuditRepo) Create(_ context.Context, l models.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	l.CreatedAt = time.Now()
	r.logs = append(r.logs, l)
	return nil
}

func (r *AuditRepo) All() []models.AuditLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.AuditLog, len(r.logs))
	copy(out, r.logs)
	return out
}
