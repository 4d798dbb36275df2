package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pavelanni/interviewprep/internal/challenge"
	"github.com/pavelanni/interviewprep/internal/evaluation"
	"github.com/pavelanni/interviewprep/internal/model"
	"github.com/pavelanni/interviewprep/internal/store"
)

// Config holds HTTP-layer settings.
type Config struct {
	// RateLimit is the number of AI scoring requests allowed per IP per
	// minute. Zero disables the limit.
	RateLimit int
	// MaxBodyBytes caps JSON request bodies.
	MaxBodyBytes int64
	// MaxUploadBytes caps challenge file uploads.
	MaxUploadBytes int64
	// MetricsHandler serves /metrics. Nil uses the default registry.
	MetricsHandler http.Handler
}

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	store      *store.Store
	engine     *evaluation.Engine
	challenges *challenge.Service
	config     Config
}

// New creates a new Handler.
func New(s *store.Store, engine *evaluation.Engine, challenges *challenge.Service, cfg Config) *Handler {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 1 << 20
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10 << 20
	}
	if cfg.MetricsHandler == nil {
		cfg.MetricsHandler = promhttp.Handler()
	}
	return &Handler{store: s, engine: engine, challenges: challenges, config: cfg}
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/healthz", h.handleHealth)
	r.Method(http.MethodGet, "/metrics", h.config.MetricsHandler)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", h.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(h.requireAuth)
			r.Post("/auth/logout", h.handleLogout)

			r.Group(func(r chi.Router) {
				if h.config.RateLimit > 0 {
					r.Use(httprate.Limit(h.config.RateLimit, time.Minute,
						httprate.WithKeyFuncs(httprate.KeyByIP),
						httprate.WithLimitHandler(h.handleRateLimited),
					))
				}
				r.Post("/evaluate", h.handleEvaluate)
				r.Post("/insights", h.handleInsights)
				r.Post("/interviews/{id}/responses", h.handleAddResponse)
				r.Post("/interviews/{id}/complete", h.handleCompleteInterview)
			})

			r.Post("/interviews", h.handleStartInterview)
			r.Get("/interviews/{id}", h.handleGetInterview)

			r.Get("/challenges/today", h.handleTodayChallenge)
			r.Get("/challenges/streak", h.handleStreak)
			r.Get("/challenges/leaderboard", h.handleLeaderboard)
			r.Post("/challenges/{id}/submit", h.handleSubmitChallenge)
			r.Get("/challenges/{id}/attempts", h.handleAttempts)

			r.Route("/admin", func(r chi.Router) {
				r.Use(requireRole(model.UserRoleAdmin))
				r.Get("/users", h.handleListUsers)
				r.Post("/users", h.handleCreateUser)
				r.Post("/users/{id}/toggle", h.handleToggleUser)
				r.Get("/challenges", h.handleListChallenges)
				r.Post("/challenges", h.handleCreateChallenge)
				r.Post("/challenges/import", h.handleImportChallenges)
			})
		})
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		h.internalError(w, r, "database ping failed", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "ok",
		"provider": h.engine.ProviderName(),
	})
}
