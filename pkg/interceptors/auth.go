// Package interceptors provides the HTTP middleware that authenticates,
// rate limits and scopes API requests.
package interceptors

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/FACorreiaa/casa-gastos/internal/domain"
	"github.com/FACorreiaa/casa-gastos/pkg/httpx"
)

type contextKey string

const userIDKey contextKey = "userID"

// Claims are the access token claims. Sub is the user id.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// TokenValidator checks HS256 access tokens signed with the auth provider secret.
type TokenValidator struct {
	secret []byte
}

// NewTokenValidator creates a validator for secret.
func NewTokenValidator(secret []byte) *TokenValidator {
	return &TokenValidator{secret: secret}
}

// Validate parses the token and returns its claims.
func (v *TokenValidator) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: token inválido ou expirado", domain.ErrUnauthenticated)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, fmt.Errorf("%w: token inválido", domain.ErrUnauthenticated)
	}
	return claims, nil
}

// Sign issues an access token for userID. Used by tests and local tooling;
// production tokens come from the auth provider.
func (v *TokenValidator) Sign(userID uuid.UUID, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role: "authenticated",
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

// JWTAuth validates Bearer tokens and puts the user id into the request context.
func JWTAuth(v *TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Warn("auth: missing token", slog.String("path", r.URL.Path))
				httpx.WriteError(w, http.StatusUnauthorized, "token de autenticação não fornecido")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				logger.Warn("auth: invalid token format", slog.String("path", r.URL.Path))
				httpx.WriteError(w, http.StatusUnauthorized, "formato de token inválido")
				return
			}

			claims, err := v.Validate(parts[1])
			if err != nil {
				logger.Warn("auth: rejected token",
					slog.String("path", r.URL.Path),
					slog.Any("error", err),
				)
				httpx.WriteError(w, http.StatusUnauthorized, err.Error())
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), claims.Subject)))
		})
	}
}

// WithUserID returns a context carrying the authenticated user id.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// GetUserIDFromContext returns the authenticated user id, if any.
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(userIDKey).(string)
	return v, ok
}

// UserID returns the authenticated user id as a UUID.
func UserID(ctx context.Context) (uuid.UUID, error) {
	s, ok := GetUserIDFromContext(ctx)
	if !ok || s == "" {
		return uuid.Nil, domain.ErrUnauthenticated
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid user id", domain.ErrUnauthenticated)
	}
	return id, nil
}
