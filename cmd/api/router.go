package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/FACorreiaa/casa-gastos/internal/domain/family"
	"github.com/FACorreiaa/casa-gastos/pkg/httpx"
	"github.com/FACorreiaa/casa-gastos/pkg/interceptors"
	"github.com/FACorreiaa/casa-gastos/pkg/observability"
)

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(d *Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.LoggerMiddleware(d.Logger))
	r.Use(observability.TracingMiddleware)
	r.Use(d.Metrics.Middleware)
	r.Use(middleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   d.Config.Server.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}).Handler)

	// Operational endpoints
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/readyz", readyzHandler(d.Ready))
	if d.Config.Observability.MetricsEnabled {
		r.Handle("/metrics", d.Metrics.Handler())
	}

	limiter := interceptors.NewRateLimiter(float64(d.Config.Server.RateLimitPerSecond), d.Config.Server.RateLimitBurst)

	r.Group(func(r chi.Router) {
		r.Use(limiter.Middleware)
		r.Use(interceptors.JWTAuth(d.Tokens, d.Logger))

		// profile and family work before the user belongs to a household
		d.FamilyHandler.RegisterRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(family.RequireScope(d.FamilyService, d.Logger))

			d.CategoryHandler.RegisterRoutes(r)
			d.TransactionHandler.RegisterRoutes(r)
			d.ImportHandler.RegisterRoutes(r)
		})
	})

	return r
}

func readyzHandler(p Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if p != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := p.Ping(ctx); err != nil {
				httpx.WriteError(w, http.StatusServiceUnavailable, "database unavailable")
				return
			}
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
