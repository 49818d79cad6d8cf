package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/baharkarakas/accounts-backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestRequireAnyOf(t *testing.T) {
	handler := RequireAnyOf(models.RoleModerator, models.RoleAdmin)(okHandler(nil))

	cases := []struct {
		name string
		role models.Role
		want int
	}{
		{"admin allowed", models.RoleAdmin, http.StatusOK},
		{"moderator allowed", models.RoleModerator, http.StatusOK},
		{"user forbidden", models.RoleUser, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r = r.WithContext(WithIdentity(r.Context(), Identity{UserID: "u1", Role: tc.role}))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, r)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestRequireAnyOf_FailsClosed(t *testing.T) {
	// no identity at all: 401, not 403, even though the gate should have run
	handler := RequireAnyOf(models.RoleAdmin)(okHandler(nil))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAnyOf_AdminOnly(t *testing.T) {
	handler := RequireAnyOf(models.RoleAdmin)(okHandler(nil))

	r := httptest.NewRequest(http.MethodDelete, "/", nil)
	r = r.WithContext(WithIdentity(r.Context(), Identity{UserID: "m1", Role: models.RoleModerator}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
