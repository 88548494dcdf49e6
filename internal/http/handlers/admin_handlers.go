package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/arashmdn/student-portal/internal/domain"
	"github.com/arashmdn/student-portal/internal/guard"
	mw "github.com/arashmdn/student-portal/internal/http/middleware"
	"github.com/arashmdn/student-portal/internal/http/response"
)

// AdminLogin authenticates an admin by password only. The lockout guard
// runs first: a locked client identity is refused before any credential
// check, even if the password is correct.
func (h *Handlers) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req domain.AdminLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteError(w, http.StatusBadRequest, "Invalid JSON format", response.CodeInvalidInput)
		return
	}
	if req.Password == "" {
		response.WriteError(w, http.StatusUnprocessableEntity, "رمز عبور الزامی است", response.CodeInvalidInput)
		return
	}

	identity := guard.Identity(mw.ClientIP(r), r.UserAgent())

	status, err := h.lockout.Check(r.Context(), identity)
	if err != nil {
		response.FromError(w, r, &domain.StorageError{Err: err})
		return
	}
	if !status.Allowed {
		remaining := int64((status.Remaining + time.Second - 1) / time.Second)
		response.FromError(w, r, &domain.LockedError{RemainingSeconds: remaining})
		return
	}

	token, _, err := h.authService.AdminLogin(r.Context(), req.Password, mw.ClientIP(r))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			if gerr := h.lockout.RecordFailure(r.Context(), identity); gerr != nil {
				response.FromError(w, r, &domain.StorageError{Err: gerr})
				return
			}
		}
		response.FromError(w, r, err)
		return
	}

	if err := h.lockout.RecordSuccess(r.Context(), identity); err != nil {
		response.FromError(w, r, &domain.StorageError{Err: err})
		return
	}

	writeJSON(w, http.StatusOK, token)
}
