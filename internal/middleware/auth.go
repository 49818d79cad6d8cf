package middleware

import (
	"errors"
	"net/http"

	"github.com/baharkarakas/accounts-backend/internal/api/httpx"
	"github.com/baharkarakas/accounts-backend/internal/auth"
	repo "github.com/baharkarakas/accounts-backend/internal/repository"
)

// SessionCookie is the name of the HTTP-only cookie carrying the session
// token.
const SessionCookie = "token"

// Gate authenticates requests: cookie, token, then a live account lookup so
// a deleted user's still-valid token stops working immediately.
type Gate struct {
	tm    *auth.TokenManager
	users repo.Users
}

func NewGate(tm *auth.TokenManager, users repo.Users) *Gate {
	return &Gate{tm: tm, users: users}
}

func (g *Gate) resolve(r *http.Request) (Identity, error) {
	c, err := r.Cookie(SessionCookie)
	if err != nil || c.Value == "" {
		return Identity{}, errors.New("no token, authorization denied")
	}
	claims, err := g.tm.Verify(c.Value)
	if err != nil {
		return Identity{}, errors.New("token is not valid")
	}
	u, err := g.users.GetByID(r.Context(), claims.UserID)
	if err != nil {
		return Identity{}, errors.New("user not found")
	}
	return Identity{UserID: u.ID, Role: u.Role}, nil
}

// Authenticate rejects the request with 401 unless a valid session resolves
// to an existing account.
func (g *Gate) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := g.resolve(r)
		if err != nil {
			httpx.WriteError(w, http.StatusUnauthorized, "unauthenticated", err.Error(), nil)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

// Optional attaches an identity when a valid session is present and lets the
// request through anonymously otherwise. Registration uses it: an admin
// session unlocks the role field.
func (g *Gate) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, err := g.resolve(r); err == nil {
			r = r.WithContext(WithIdentity(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}
