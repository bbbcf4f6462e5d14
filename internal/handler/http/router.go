package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/storefront/internal/auth"
	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/internal/upload"
	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/middleware"
)

// RouterConfig holds everything NewRouter mounts.
type RouterConfig struct {
	Service  string
	Reviews  *service.ReviewService
	Images   *service.ImageService
	Health   *health.Handler
	Verifier auth.TokenVerifier
	// Extract defaults to the bearer header, then the "token" cookie.
	Extract      auth.Extractor
	UploadLimits upload.Limits
	// Media serves stored image bytes under /media when set.
	Media     MediaReader
	CORS      middleware.CORSConfig
	RateLimit middleware.RateLimitConfig
	Logger    *slog.Logger
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Tracing(cfg.Service))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.PrometheusMetrics(cfg.Service))
	r.Use(middleware.CORS(cfg.CORS))
	if cfg.RateLimit.RPS > 0 {
		r.Use(middleware.RateLimit(cfg.RateLimit, logger))
	}

	// Health check endpoints
	r.Get("/health/live", cfg.Health.Liveness)
	r.Get("/health/ready", cfg.Health.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	if cfg.Media != nil {
		r.Get("/media/*", NewMediaHandler(cfg.Media).Serve)
	}

	authenticate := auth.Authenticate(cfg.Verifier, cfg.Extract, logger)
	reviewHandler := NewReviewHandler(cfg.Reviews, logger)
	imageHandler := NewImageHandler(cfg.Images, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Get("/products/{productId}/reviews", reviewHandler.ListReviews)
		r.Get("/products/{productId}/images", imageHandler.ListImages)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Get("/auth/me", Me)

			r.With(auth.RequireRole(auth.RoleCustomer)).
				Post("/products/{productId}/reviews", reviewHandler.CreateReview)

			r.Group(func(r chi.Router) {
				r.Use(auth.RequireRole(auth.RoleAdmin))

				r.Delete("/reviews/{id}", reviewHandler.DeleteReview)
				r.With(upload.Guard(cfg.UploadLimits, logger)).
					Post("/products/{productId}/images", imageHandler.UploadImages)
			})
		})
	})

	return r
}
