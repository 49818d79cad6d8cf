package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/baharkarakas/accounts-backend/internal/api/handlers"
	"github.com/baharkarakas/accounts-backend/internal/config"
	"github.com/baharkarakas/accounts-backend/internal/metrics"
	"github.com/baharkarakas/accounts-backend/internal/middleware"
	"github.com/baharkarakas/accounts-backend/internal/models"
)

type RouterDeps struct {
	Cfg   config.Config
	Gate  *middleware.Gate
	Auth  *handlers.AuthHandler
	Admin *handlers.AdminHandler
	// UploadDir is served read-only at /uploads/.
	UploadDir string
}

func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recover, middleware.HTTPMetrics, middleware.RateLimit(d.Cfg.RateRPS))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{d.Cfg.CORSOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Handle("/metrics", metrics.Handler())
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(d.UploadDir))))

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(d.Gate.Optional).Post("/register", d.Auth.Register)
			r.Post("/login", d.Auth.Login)
			r.Post("/logout", d.Auth.Logout)

			r.Group(func(r chi.Router) {
				r.Use(d.Gate.Authenticate)
				r.Get("/user", d.Auth.Me)
				r.Put("/profile", d.Auth.UpdateProfile)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(d.Gate.Authenticate)

			// read access for moderators and admins
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAnyOf(models.RoleModerator, models.RoleAdmin))
				r.Get("/users", d.Admin.ListUsers)
				r.Get("/users/{id}", d.Admin.GetUser)
				r.Get("/stats", d.Admin.Stats)
			})

			// write operations are admin only
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAnyOf(models.RoleAdmin))
				r.Put("/users/{id}/role", d.Admin.UpdateUserRole)
				r.Delete("/users/{id}", d.Admin.DeleteUser)
			})
		})
	})

	return r
}
