package middleware

import (
	"net/http"

	"github.com/baharkarakas/accounts-backend/internal/api/httpx"
	"github.com/baharkarakas/accounts-backend/internal/models"
)

// RequireAnyOf allows the request only when the authenticated identity's role
// is in the given set. Fails closed: no identity means 401 even if the gate
// should have run first.
func RequireAnyOf(roles ...models.Role) func(http.Handler) http.Handler {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFrom(r.Context())
			if !ok {
				httpx.WriteError(w, http.StatusUnauthorized, "unauthenticated", "authentication required", nil)
				return
			}
			if _, ok := allowed[id.Role]; !ok {
				httpx.WriteError(w, http.StatusForbidden, "forbidden", "access denied, insufficient permissions", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
