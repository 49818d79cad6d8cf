package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/baharkarakas/accounts-backend/internal/api/httpx"
	"github.com/baharkarakas/accounts-backend/internal/models"
	"github.com/baharkarakas/accounts-backend/internal/services"
	"github.com/baharkarakas/accounts-backend/internal/storage"
)

// writeServiceError maps the service taxonomy onto HTTP. Unknown errors are
// logged and reported as a plain 500 without internals.
func writeServiceError(w http.ResponseWriter, err error) {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		httpx.WriteError(w, http.StatusBadRequest, "validation_error", ve.Msg, nil)
	case errors.Is(err, models.ErrInvalidRole):
		httpx.WriteError(w, http.StatusBadRequest, "invalid_role", "Invalid role specified", nil)
	case errors.Is(err, services.ErrRoleNotAllowed):
		httpx.WriteError(w, http.StatusBadRequest, "invalid_role", "Only admins can assign roles", nil)
	case errors.Is(err, services.ErrDuplicateAccount):
		httpx.WriteError(w, http.StatusBadRequest, "duplicate_account", "User already exists", nil)
	case errors.Is(err, services.ErrInvalidCredentials):
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid credentials", nil)
	case errors.Is(err, services.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, "not_found", "User not found", nil)
	case errors.Is(err, services.ErrSelfDemotion):
		httpx.WriteError(w, http.StatusBadRequest, "self_demotion_forbidden", "Cannot change your own admin role", nil)
	case errors.Is(err, services.ErrSelfDelete):
		httpx.WriteError(w, http.StatusBadRequest, "self_delete_forbidden", "Cannot delete your own account", nil)
	case errors.Is(err, storage.ErrFileTooLarge):
		httpx.WriteError(w, http.StatusBadRequest, "file_too_large", "File too large. Max size is 5MB.", nil)
	case errors.Is(err, storage.ErrBadFileType):
		httpx.WriteError(w, http.StatusBadRequest, "bad_file_type", "Only image files are allowed!", nil)
	default:
		slog.Error("request failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "Server error", nil)
	}
}
