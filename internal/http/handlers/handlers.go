package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/arashmdn/student-portal/internal/guard"
	mw "github.com/arashmdn/student-portal/internal/http/middleware"
	"github.com/arashmdn/student-portal/internal/platform/auth"
	"github.com/arashmdn/student-portal/internal/service"
	"github.com/arashmdn/student-portal/pkg/logger"
)

type Handlers struct {
	authService service.AuthService
	lockout     guard.LockoutGuard
	tokens      *auth.TokenService
}

func New(authService service.AuthService, lockout guard.LockoutGuard, tokens *auth.TokenService) *Handlers {
	return &Handlers{
		authService: authService,
		lockout:     lockout,
		tokens:      tokens,
	}
}

// Mount attaches all portal routes to the router.
func (h *Handlers) Mount(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Get("/check/{studentNumber}", h.CheckStudentNumber)

		r.Group(func(r chi.Router) {
			r.Use(mw.RequireAuth(h.tokens, ""))
			r.Get("/me", h.Me)
		})
	})

	r.Post("/admin/login", h.AdminLogin)
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}
