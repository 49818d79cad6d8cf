package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/baharkarakas/accounts-backend/internal/api/handlers"
	"github.com/baharkarakas/accounts-backend/internal/auth"
	"github.com/baharkarakas/accounts-backend/internal/config"
	"github.com/baharkarakas/accounts-backend/internal/middleware"
	"github.com/baharkarakas/accounts-backend/internal/models"
	"github.com/baharkarakas/accounts-backend/internal/repository/memory"
	"github.com/baharkarakas/accounts-backend/internal/services"
	"github.com/baharkarakas/accounts-backend/internal/storage"
	"github.com/baharkarakas/accounts-backend/internal/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	srv   *httptest.Server
	users *memory.UsersRepo
	tm    *auth.TokenManager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	users := memory.NewUsers()
	audit := memory.NewAuditLogs()
	wp := worker.NewPool(1)
	t.Cleanup(wp.Stop)

	tm := auth.NewTokenManager("test-secret", time.Hour)
	blobs, err := storage.NewDiskStore(t.TempDir())
	require.NoError(t, err)

	cfg := config.Config{Env: "dev", CORSOrigin: "http://localhost:3000", RateRPS: 0}
	r := NewRouter(RouterDeps{
		Cfg:       cfg,
		Gate:      middleware.NewGate(tm, users),
		Auth:      handlers.NewAuthHandler(services.NewAccountService(users), tm, blobs, time.Hour),
		Admin:     handlers.NewAdminHandler(services.NewAdminService(users, audit, wp)),
		UploadDir: blobs.Dir(),
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &testEnv{srv: srv, users: users, tm: tm}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, e.srv.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: token})
	}
	resp, err := e.srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func (e *testEnv) seed(t *testing.T, email string, role models.Role) (models.User, string) {
	t.Helper()
	hash, err := auth.HashPassword("hunter22")
	require.NoError(t, err)
	u, err := e.users.Create(context.Background(), models.User{
		Name: "Seed " + string(role), Email: email, PasswordHash: hash, Role: role,
	})
	require.NoError(t, err)
	tok, err := e.tm.Issue(u.ID)
	require.NoError(t, err)
	return u, tok
}

func sessionCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == middleware.SessionCookie {
			return c
		}
	}
	return nil
}

func TestRegisterLoginFlow(t *testing.T) {
	e := newTestEnv(t)

	resp := e.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Ada", "email": "Ada@Example.com", "password": "hunter22",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	c := sessionCookie(resp)
	require.NotNil(t, c, "register must set the session cookie")
	assert.True(t, c.HttpOnly)
	assert.NotEmpty(t, c.Value)

	u := decode[models.PublicUser](t, resp)
	assert.Equal(t, "ada@example.com", u.Email)
	assert.Equal(t, models.RoleUser, u.Role)

	// the cookie works against the gate
	resp = e.do(t, http.MethodGet, "/api/auth/user", c.Value, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	me := decode[models.PublicUser](t, resp)
	assert.Equal(t, u.ID, me.ID)

	// a fresh login works too
	resp = e.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "ada@example.com", "password": "hunter22",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, sessionCookie(resp))
}

func TestLogin_UniformErrorBody(t *testing.T) {
	e := newTestEnv(t)
	e.seed(t, "ada@x.io", models.RoleUser)

	wrongPass := e.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ada@x.io", "password": "nope-nope"})
	noUser := e.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ghost@x.io", "password": "hunter22"})

	require.Equal(t, http.StatusUnauthorized, wrongPass.StatusCode)
	require.Equal(t, http.StatusUnauthorized, noUser.StatusCode)

	a := decode[map[string]any](t, wrongPass)
	b := decode[map[string]any](t, noUser)
	assert.Equal(t, a, b, "login failures must be indistinguishable")
}

func TestRegister_RoleRequiresAdmin(t *testing.T) {
	e := newTestEnv(t)
	_, adminTok := e.seed(t, "root@x.io", models.RoleAdmin)

	// anonymous caller asking for admin is rejected outright
	resp := e.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Eve", "email": "eve@x.io", "password": "hunter22", "role": "admin",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// admin session unlocks the role field
	resp = e.do(t, http.MethodPost, "/api/auth/register", adminTok, map[string]string{
		"name": "Modi", "email": "modi@x.io", "password": "hunter22", "role": "moderator",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	u := decode[models.PublicUser](t, resp)
	assert.Equal(t, models.RoleModerator, u.Role)
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	e := newTestEnv(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/auth/user"},
		{http.MethodPut, "/api/auth/profile"},
		{http.MethodGet, "/api/admin/users"},
		{http.MethodGet, "/api/admin/stats"},
		{http.MethodDelete, "/api/admin/users/some-id"},
	} {
		resp := e.do(t, tc.method, tc.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "%s %s", tc.method, tc.path)
	}
}

func TestAdminRoutes_RoleEnforcement(t *testing.T) {
	e := newTestEnv(t)
	target, _ := e.seed(t, "target@x.io", models.RoleUser)
	_, userTok := e.seed(t, "user@x.io", models.RoleUser)
	_, modTok := e.seed(t, "mod@x.io", models.RoleModerator)
	admin, adminTok := e.seed(t, "root@x.io", models.RoleAdmin)

	// plain users see nothing under /admin
	resp := e.do(t, http.MethodGet, "/api/admin/users", userTok, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// moderators read
	resp = e.do(t, http.MethodGet, "/api/admin/users", modTok, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp = e.do(t, http.MethodGet, "/api/admin/stats", modTok, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp = e.do(t, http.MethodGet, "/api/admin/users/"+target.ID, modTok, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// but never write, regardless of request validity
	resp = e.do(t, http.MethodPut, "/api/admin/users/"+target.ID+"/role", modTok, map[string]string{"role": "moderator"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp = e.do(t, http.MethodDelete, "/api/admin/users/"+target.ID, modTok, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// admin writes work
	resp = e.do(t, http.MethodPut, "/api/admin/users/"+target.ID+"/role", adminTok, map[string]string{"role": "moderator"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// self guards
	resp = e.do(t, http.MethodPut, "/api/admin/users/"+admin.ID+"/role", adminTok, map[string]string{"role": "user"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp = e.do(t, http.MethodDelete, "/api/admin/users/"+admin.ID, adminTok, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// deletion of someone else sticks
	resp = e.do(t, http.MethodDelete, "/api/admin/users/"+target.ID, adminTok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = e.do(t, http.MethodGet, "/api/admin/users/"+target.ID, adminTok, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeletedUserTokenRejected(t *testing.T) {
	e := newTestEnv(t)
	victim, victimTok := e.seed(t, "victim@x.io", models.RoleUser)
	_, adminTok := e.seed(t, "root@x.io", models.RoleAdmin)

	resp := e.do(t, http.MethodGet, "/api/auth/user", victimTok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = e.do(t, http.MethodDelete, "/api/admin/users/"+victim.ID, adminTok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// the still-unexpired token no longer works
	resp = e.do(t, http.MethodGet, "/api/auth/user", victimTok, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestListUsers_PaginationPayload(t *testing.T) {
	e := newTestEnv(t)
	for i := 0; i < 25; i++ {
		e.seed(t, fmt.Sprintf("user%02d@x.io", i), models.RoleUser)
	}
	_, modTok := e.seed(t, "mod@x.io", models.RoleModerator)

	resp := e.do(t, http.MethodGet, "/api/admin/users?page=2&limit=10", modTok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[struct {
		Users      []models.PublicUser `json:"users"`
		Pagination services.Pagination `json:"pagination"`
	}](t, resp)

	assert.Len(t, body.Users, 10)
	assert.Equal(t, 2, body.Pagination.CurrentPage)
	assert.Equal(t, 3, body.Pagination.TotalPages)
	assert.Equal(t, 26, body.Pagination.TotalUsers) // 25 seeded + the moderator
	assert.True(t, body.Pagination.HasNext)
	assert.True(t, body.Pagination.HasPrev)
}

func TestUpdateProfileAndLogout(t *testing.T) {
	e := newTestEnv(t)
	_, tok := e.seed(t, "ada@x.io", models.RoleUser)

	resp := e.do(t, http.MethodPut, "/api/auth/profile", tok, map[string]string{
		"phone": "05551234567", "bio": "systems programmer",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	u := decode[models.PublicUser](t, resp)
	assert.Equal(t, "05551234567", u.Phone)
	assert.Equal(t, "systems programmer", u.Bio)

	// invalid phone
	resp = e.do(t, http.MethodPut, "/api/auth/profile", tok, map[string]string{"phone": "123"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// logout clears the cookie and always succeeds
	resp = e.do(t, http.MethodPost, "/api/auth/logout", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	c := sessionCookie(resp)
	require.NotNil(t, c)
	assert.Empty(t, c.Value)
	assert.Less(t, c.MaxAge, 0)
}

func TestHealth(t *testing.T) {
	e := newTestEnv(t)
	resp := e.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
