package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/baharkarakas/accounts-backend/internal/api/httpx"
	"github.com/baharkarakas/accounts-backend/internal/auth"
	"github.com/baharkarakas/accounts-backend/internal/metrics"
	"github.com/baharkarakas/accounts-backend/internal/middleware"
	"github.com/baharkarakas/accounts-backend/internal/models"
	"github.com/baharkarakas/accounts-backend/internal/services"
	"github.com/baharkarakas/accounts-backend/internal/storage"
)

type AuthHandler struct {
	svc   *services.AccountService
	tm    *auth.TokenManager
	blobs storage.BlobStore
	ttl   time.Duration
}

func NewAuthHandler(svc *services.AccountService, tm *auth.TokenManager, blobs storage.BlobStore, ttl time.Duration) *AuthHandler {
	return &AuthHandler{svc: svc, tm: tm, blobs: blobs, ttl: ttl}
}

func (h *AuthHandler) setSession(w http.ResponseWriter, userID string) error {
	tok, err := h.tm.Issue(userID)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    tok,
		Path:     "/",
		MaxAge:   int(h.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func clearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid request body", nil)
		return
	}

	var callerRole models.Role
	if id, ok := middleware.IdentityFrom(r.Context()); ok {
		callerRole = id.Role
	}

	u, err := h.svc.Register(r.Context(), services.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	}, callerRole)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if err := h.setSession(w, u.ID); err != nil {
		writeServiceError(w, err)
		return
	}
	metrics.RegistrationsTotal.Inc()
	httpx.WriteJSON(w, http.StatusCreated, u.Public())
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid request body", nil)
		return
	}
	u, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("failed").Inc()
		writeServiceError(w, err)
		return
	}
	if err := h.setSession(w, u.ID); err != nil {
		writeServiceError(w, err)
		return
	}
	metrics.LoginsTotal.WithLabelValues("ok").Inc()
	httpx.WriteJSON(w, http.StatusOK, u.Public())
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthenticated", "authentication required", nil)
		return
	}
	u, err := h.svc.Get(r.Context(), id.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, u.Public())
}

// UpdateProfile accepts multipart form data (phone, bio, picture file) or a
// plain JSON body with phone/bio. Only fields present in the request are
// applied.
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthenticated", "authentication required", nil)
		return
	}

	var upd services.ProfileUpdate
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(storage.MaxUploadSize + 1<<19); err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid multipart body", nil)
			return
		}
		if vals, ok := r.MultipartForm.Value["phone"]; ok && len(vals) > 0 {
			upd.Phone = &vals[0]
		}
		if vals, ok := r.MultipartForm.Value["bio"]; ok && len(vals) > 0 {
			upd.Bio = &vals[0]
		}
		file, header, err := r.FormFile("picture")
		switch {
		case err == nil:
			defer file.Close()
			path, err := h.blobs.Save(file, header)
			if err != nil {
				writeServiceError(w, err)
				return
			}
			upd.Picture = &path
		case errors.Is(err, http.ErrMissingFile):
			// no upload, leave picture unchanged
		default:
			httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid picture upload", nil)
			return
		}
	} else {
		var req struct {
			Phone *string `json:"phone"`
			Bio   *string `json:"bio"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid request body", nil)
			return
		}
		upd.Phone = req.Phone
		upd.Bio = req.Bio
	}

	u, err := h.svc.UpdateProfile(r.Context(), id.UserID, upd)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, u.Public())
}

// Logout clears the session cookie unconditionally.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	clearSession(w)
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "User logged out"})
}
