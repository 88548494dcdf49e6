package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/arashmdn/student-portal/internal/domain"
	mw "github.com/arashmdn/student-portal/internal/http/middleware"
	"github.com/arashmdn/student-portal/internal/http/response"
	"github.com/arashmdn/student-portal/pkg/digits"
)

// Register handles new student registration.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteError(w, http.StatusBadRequest, "Invalid JSON format", response.CodeInvalidInput)
		return
	}

	user, err := h.authService.Register(r.Context(), &req, mw.ClientIP(r))
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, domain.RegisterResponse{
		Message:       "ثبت‌نام با موفقیت انجام شد",
		UserID:        user.ID,
		StudentNumber: user.StudentNumber,
		Role:          user.Role,
	})
}

// Login authenticates with national code + student number and returns a
// bearer token. The body may be a JSON LoginRequest or an OAuth2-style
// form with username (national code) and password (student number).
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	nationalCode, password, ok := readLoginCredentials(w, r)
	if !ok {
		return
	}

	// boundary pre-checks so malformed credentials never hit storage
	nationalCode = digits.Normalize(nationalCode)
	password = digits.Normalize(password)
	if !digits.IsASCIIDigits(nationalCode) || len(nationalCode) != domain.NationalCodeLength {
		response.WriteError(w, http.StatusUnprocessableEntity, "کد ملی باید شامل ۱۰ رقم باشد.", response.CodeInvalidInput)
		return
	}
	if !digits.IsASCIIDigits(password) || len(password) != domain.StudentNumberLength {
		response.WriteError(w, http.StatusUnprocessableEntity, "شماره دانشجویی باید شامل ۹ رقم باشد.", response.CodeInvalidInput)
		return
	}

	token, _, err := h.authService.Login(r.Context(), nationalCode, password, mw.ClientIP(r))
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, token)
}

func readLoginCredentials(w http.ResponseWriter, r *http.Request) (nationalCode, password string, ok bool) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req domain.LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.WriteError(w, http.StatusBadRequest, "Invalid JSON format", response.CodeInvalidInput)
			return "", "", false
		}
		return req.NationalCode, req.Password, true
	}

	if err := r.ParseForm(); err != nil {
		response.WriteError(w, http.StatusBadRequest, "Invalid form data", response.CodeInvalidInput)
		return "", "", false
	}
	return r.PostFormValue("username"), r.PostFormValue("password"), true
}

// Me returns the authenticated user's public info. The claims were
// verified by the auth middleware; only the subject lookup remains.
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := mw.ClaimsFromContext(r.Context())
	if !ok {
		response.WriteError(w, http.StatusUnauthorized, "توکن نامعتبر یا منقضی شده است", response.CodeInvalidToken)
		return
	}

	user, err := h.authService.CurrentUser(r.Context(), claims.Subject)
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, user.ToUserInfo())
}

// CheckStudentNumber reports whether a student number is free to register.
func (h *Handlers) CheckStudentNumber(w http.ResponseWriter, r *http.Request) {
	studentNumber := chi.URLParam(r, "studentNumber")

	available, err := h.authService.IsStudentNumberAvailable(r.Context(), studentNumber)
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"available": available})
}
