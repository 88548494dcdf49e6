package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/arashmdn/student-portal/internal/http/response"
	"github.com/arashmdn/student-portal/internal/platform/auth"
	"github.com/arashmdn/student-portal/pkg/logger"
)

type claimsKey struct{}

// ClaimsFromContext returns the verified token claims stored by RequireAuth.
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*auth.Claims)
	return claims, ok
}

// RequireAuth verifies the bearer token and, when requiredRole is set,
// refuses callers without that role. Admins pass every role gate.
func RequireAuth(tokens *auth.TokenService, requiredRole string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				response.WriteError(w, http.StatusUnauthorized, "Missing or invalid authorization header", response.CodeUnauthorized)
				return
			}

			claims, err := tokens.Verify(strings.TrimPrefix(authHeader, "Bearer "))
			if err != nil {
				response.WriteError(w, http.StatusUnauthorized, "توکن نامعتبر یا منقضی شده است", response.CodeInvalidToken)
				return
			}

			if requiredRole != "" && claims.Role != requiredRole && claims.Role != "admin" {
				response.WriteError(w, http.StatusForbidden, "شما دسترسی لازم را ندارید", response.CodeForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), logger.UserIDKey, claims.UserID)
			ctx = context.WithValue(ctx, claimsKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
