package transport

import (
	"time"

	"github.com/extmarket/review-exchange/internal/transport/handler"
	transportMiddleware "github.com/extmarket/review-exchange/internal/transport/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func NewRouter(
	allocationHandler *handler.AllocationHandler,
	reviewHandler *handler.ReviewHandler,
	profileHandler *handler.ProfileHandler,
	healthHandler *handler.HealthHandler,
	log *zap.Logger,
) *chi.Mux {
	router := chi.NewRouter()

	// Recovery first so panics in the other middleware are caught too
	router.Use(transportMiddleware.Recovery(log))
	router.Use(middleware.RequestID)
	router.Use(transportMiddleware.Logging(log))

	// Store calls are bounded per request; allocation cycles get headroom
	router.Use(transportMiddleware.Timeout(5*time.Second, log))
	router.Use(transportMiddleware.Metrics)

	router.Handle("/metrics", promhttp.Handler())

	router.Route("/allocation", func(r chi.Router) {
		r.Post("/run", allocationHandler.RunCycle)
	})

	router.Route("/review", func(r chi.Router) {
		r.Post("/submit", reviewHandler.SubmitReview)
	})

	router.Get("/profile", profileHandler.GetProfile)

	router.Get("/health", healthHandler.HealthCheck)
	return router
}
