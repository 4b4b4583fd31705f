package family

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/FACorreiaa/casa-gastos/pkg/httpx"
	"github.com/FACorreiaa/casa-gastos/pkg/interceptors"
)

// ScopeResolver maps an authenticated user to their family scope.
type ScopeResolver interface {
	ResolveScope(ctx context.Context, userID uuid.UUID) (Scope, error)
}

// RequireScope rejects requests from users without a family and stores the
// resolved Scope in the request context. It must run after JWTAuth.
func RequireScope(resolver ScopeResolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := interceptors.UserID(r.Context())
			if err != nil {
				httpx.HandleServiceError(w, err, logger)
				return
			}

			scope, err := resolver.ResolveScope(r.Context(), userID)
			if err != nil {
				httpx.HandleServiceError(w, err, logger)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithScope(r.Context(), scope)))
		})
	}
}
