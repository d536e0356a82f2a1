package api

import (
	"context"
	"io"
	"net/http"
	"time"

	"findvax-notifier/internal/common/errors"
	"findvax-notifier/internal/common/logger"
	createsubscription "findvax-notifier/internal/workers/subscription/create-subscription"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	corslib "github.com/rs/cors"
)

// maxBodyBytes caps intake request bodies.
const maxBodyBytes = 64 << 10

// ReadinessCheck reports whether backing services are reachable.
type ReadinessCheck func(ctx context.Context) error

// RouterDeps are the handlers the HTTP server exposes. A nil Broadcaster
// leaves the admin route unmounted.
type RouterDeps struct {
	Intake      Intake
	Broadcaster Broadcaster
	Ready       ReadinessCheck
	Logger      logger.Logger
}

type server struct {
	deps RouterDeps
}

// NewRouter builds the HTTP surface of the worker manager.
func NewRouter(deps RouterDeps) *chi.Mux {
	s := &server{deps: deps}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.health)
	r.Get("/ready", s.ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Put("/subscriptions", s.subscribe)
	r.Post("/subscriptions", s.subscribe)

	if deps.Broadcaster != nil {
		c := corslib.New(corslib.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodOptions, http.MethodPut},
			AllowedHeaders: []string{"Content-Type", "X-Amz-Date", "Authorization", "X-Api-Key", "X-Amz-Security-Token"},
		})
		r.Route("/admin", func(r chi.Router) {
			r.Use(c.Handler)
			r.Put("/megaphone", s.megaphone)
		})
	}

	return r
}

func (s *server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *server) ready(w http.ResponseWriter, r *http.Request) {
	if s.deps.Ready != nil {
		if err := s.deps.Ready(r.Context()); err != nil {
			s.deps.Logger.WithError(err).Warn("readiness check failed", nil)
			writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{"status": "not ready"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ready"})
}

func (s *server) subscribe(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		s.deps.Logger.WithError(err).Warn("failed to read request body", nil)
		s.writeError(w, errors.NewRequestInvalidError(createsubscription.MsgInvalidBody))
		return
	}

	if _, err := s.deps.Intake.HandleRequest(r.Context(), string(body)); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *server) megaphone(w http.ResponseWriter, r *http.Request) {
	if _, err := s.deps.Broadcaster.Broadcast(r.Context(), r.URL.Query().Get("state")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *server) writeError(w http.ResponseWriter, err error) {
	resp := Failure(err, nil, s.deps.Logger)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.StatusCode)
	_, _ = w.Write([]byte(resp.Body))
}
