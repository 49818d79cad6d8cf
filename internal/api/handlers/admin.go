package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/baharkarakas/accounts-backend/internal/api/httpx"
	"github.com/baharkarakas/accounts-backend/internal/middleware"
	"github.com/baharkarakas/accounts-backend/internal/models"
	"github.com/baharkarakas/accounts-backend/internal/services"
	"github.com/go-chi/chi/v5"
)

type AdminHandler struct {
	svc *services.AdminService
}

func NewAdminHandler(svc *services.AdminService) *AdminHandler {
	return &AdminHandler{svc: svc}
}

func queryInt(r *http.Request, key string, def int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 10)

	users, pagination, err := h.svc.List(r.Context(), page, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	out := make([]models.PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"users":      out,
		"pagination": pagination,
	})
}

func (h *AdminHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, u.Public())
}

type roleReq struct {
	Role string `json:"role"`
}

func (h *AdminHandler) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthenticated", "authentication required", nil)
		return
	}

	var req roleReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid request body", nil)
		return
	}
	// Role membership is checked here, at the boundary, and nowhere else.
	role, err := models.ParseRole(req.Role)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	u, err := h.svc.UpdateRole(r.Context(), id.UserID, chi.URLParam(r, "id"), role)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "User role updated successfully",
		"user":    u.Public(),
	})
}

func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthenticated", "authentication required", nil)
		return
	}

	if err := h.svc.Delete(r.Context(), id.UserID, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "User deleted successfully"})
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Stats(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, st)
}
