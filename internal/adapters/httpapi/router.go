package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/district-compass/school-search-api/internal/platform/metrics"
)

// NewRouter constructs the API HTTP router.
//
// /healthz and /metrics stay outside the v1 group so infra probes and the
// scraper never need the API token.
func NewRouter(s *Server, log *slog.Logger, apiToken string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(log))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Use(NewAuthMiddleware(apiToken))

		r.Get("/districts", s.handleSearchDistricts)
		r.Get("/schools", s.handleSearchSchools)
		r.Get("/queries/recent", s.handleRecentQueries)
		r.Get("/map/config", s.handleMapConfig)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.handleCreateSession)
			r.Route("/{sessionID}", func(r chi.Router) {
				r.Get("/", s.handleGetSession)
				r.Delete("/", s.handleDeleteSession)
				r.Put("/district-input", s.handlePutDistrictInput)
				r.Put("/school-input", s.handlePutSchoolInput)
				r.Put("/district-selection", s.handlePutDistrictSelection)
				r.Put("/school-selection", s.handlePutSchoolSelection)
			})
		})
	})

	return r
}

func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"requestId", middleware.GetReqID(r.Context()),
			)
		})
	}
}
