package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/baharkarakas/accounts-backend/internal/metrics"
	"github.com/baharkarakas/accounts-backend/internal/models"
	repo "github.com/baharkarakas/accounts-backend/internal/repository"
	"github.com/baharkarakas/accounts-backend/internal/worker"
)

type AdminService struct {
	users repo.Users
	audit repo.AuditLogs
	wp    *worker.Pool
}

func NewAdminService(users repo.Users, audit repo.AuditLogs, wp *worker.Pool) *AdminService {
	return &AdminService{users: users, audit: audit, wp: wp}
}

type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	TotalUsers  int  `json:"totalUsers"`
	HasNext     bool `json:"hasNext"`
	HasPrev     bool `json:"hasPrev"`
}

type Stats struct {
	TotalUsers     int `json:"totalUsers"`
	AdminCount     int `json:"adminCount"`
	ModeratorCount int `json:"moderatorCount"`
	UserCount      int `json:"userCount"`
	RecentUsers    int `json:"recentUsers"`
}

// List returns one page of users, most recent first.
func (s *AdminService) List(ctx context.Context, page, limit int) ([]models.User, Pagination, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	users, err := s.users.List(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("list users: %w", err)
	}
	total, err := s.users.Count(ctx)
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("count users: %w", err)
	}

	totalPages := (total + limit - 1) / limit
	return users, Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalUsers:  total,
		HasNext:     page < totalPages,
		HasPrev:     page > 1,
	}, nil
}

func (s *AdminService) GetByID(ctx context.Context, id string) (models.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// UpdateRole sets the target's role. An admin cannot strip their own admin
// role. The existence check and the mutation are one statement; zero rows
// means the target is gone.
func (s *AdminService) UpdateRole(ctx context.Context, callerID, targetID string, role models.Role) (models.User, error) {
	if callerID == targetID && role != models.RoleAdmin {
		return models.User{}, ErrSelfDemotion
	}
	u, err := s.users.UpdateRole(ctx, targetID, role)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("update role: %w", err)
	}
	metrics.AdminActionsTotal.WithLabelValues("role_change").Inc()
	s.recordAudit(callerID, targetID, "role_change", map[string]any{"role": role})
	return u, nil
}

// Delete removes the target permanently. Admins cannot delete themselves.
func (s *AdminService) Delete(ctx context.Context, callerID, targetID string) error {
	if callerID == targetID {
		return ErrSelfDelete
	}
	if err := s.users.Delete(ctx, targetID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}
	metrics.AdminActionsTotal.WithLabelValues("user_delete").Inc()
	s.recordAudit(callerID, targetID, "user_delete", nil)
	return nil
}

func (s *AdminService) Stats(ctx context.Context) (Stats, error) {
	var (
		st  Stats
		err error
	)
	if st.TotalUsers, err = s.users.Count(ctx); err != nil {
		return Stats{}, fmt.Errorf("count users: %w", err)
	}
	if st.AdminCount, err = s.users.CountByRole(ctx, models.RoleAdmin); err != nil {
		return Stats{}, fmt.Errorf("count admins: %w", err)
	}
	if st.ModeratorCount, err = s.users.CountByRole(ctx, models.RoleModerator); err != nil {
		return Stats{}, fmt.Errorf("count moderators: %w", err)
	}
	if st.UserCount, err = s.users.CountByRole(ctx, models.RoleUser); err != nil {
		return Stats{}, fmt.Errorf("count users by role: %w", err)
	}
	since := time.Now().AddDate(0, 0, -30)
	if st.RecentUsers, err = s.users.CountCreatedSince(ctx, since); err != nil {
		return Stats{}, fmt.Errorf("count recent users: %w", err)
	}
	return st, nil
}

// recordAudit writes the trail entry off the request path; failures are
// logged, never surfaced.
func (s *AdminService) recordAudit(actorID, targetID, action string, details map[string]any) {
	l := models.AuditLog{ActorID: actorID, TargetID: targetID, Action: action, Details: details}
	s.wp.Submit(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.audit.Create(ctx, l); err != nil {
			slog.Error("audit write", "action", action, "err", err)
		}
	})
}
