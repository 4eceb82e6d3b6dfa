// Package gateway provides the HTTP API server fronting the CMS backend.
// Every read goes through the tag-indexed cache and every mutation runs its
// invalidation before the response leaves, so two requests back to back
// never see a list that predates the mutation between them.
package gateway

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/tourwise/cms-client/internal/ratelimit"
	"github.com/tourwise/cms-client/internal/response"
	"github.com/tourwise/cms-client/internal/validate"
	"github.com/tourwise/cms-client/pkg/client"
	"github.com/tourwise/cms-client/pkg/dashboard"
	"github.com/tourwise/cms-client/pkg/logging"
	"github.com/tourwise/cms-client/pkg/relay"
	"github.com/tourwise/cms-client/pkg/resources"
	"github.com/tourwise/cms-client/pkg/session"
)

// Config holds the server dependencies.
type Config struct {
	API      *resources.API
	Client   *client.Client
	Relay    *relay.Relay
	Resolver session.Resolver

	// Limiter bounds mutations per caller. A default limiter is created
	// when nil.
	Limiter *ratelimit.KeyedLimiter

	// Stats aggregates the dashboard figures. Defaults when nil.
	Stats *dashboard.Aggregator

	// AllowedOrigins for CORS. Empty disables cross-origin access.
	AllowedOrigins []string

	// CSRFCookieName is the anti-forgery cookie echoed to browsers on the
	// warm-up endpoint (default "tw_csrf").
	CSRFCookieName string
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	api       *resources.API
	client    *client.Client
	relay     *relay.Relay
	resolver  session.Resolver
	limiter   *ratelimit.KeyedLimiter
	stats     *dashboard.Aggregator
	validator *validate.Validator
	router    *chi.Mux
	logger    zerolog.Logger

	origins    []string
	csrfCookie string
}

// NewServer creates an HTTP server with all routes configured.
func NewServer(cfg Config) (*Server, error) {
	if cfg.API == nil {
		return nil, fmt.Errorf("resource API is required")
	}
	if cfg.Client == nil {
		return nil, fmt.Errorf("backend client is required")
	}
	if cfg.Relay == nil {
		return nil, fmt.Errorf("stream relay is required")
	}
	if cfg.Resolver == nil {
		return nil, fmt.Errorf("session resolver is required")
	}
	if cfg.Limiter == nil {
		cfg.Limiter = ratelimit.New(10, 20)
	}
	if cfg.Stats == nil {
		cfg.Stats = dashboard.New(dashboard.DefaultConfig())
	}
	if cfg.CSRFCookieName == "" {
		cfg.CSRFCookieName = "tw_csrf"
	}

	s := &Server{
		api:        cfg.API,
		client:     cfg.Client,
		relay:      cfg.Relay,
		resolver:   cfg.Resolver,
		limiter:    cfg.Limiter,
		stats:      cfg.Stats,
		validator:  validate.New(),
		router:     chi.NewRouter(),
		logger:     logging.NewLogger("gateway"),
		origins:    cfg.AllowedOrigins,
		csrfCookie: cfg.CSRFCookieName,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(requestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)

	if len(s.origins) > 0 {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.origins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-CSRF-Token"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealthCheck)
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/csrf", s.handleCSRF)

		// Public reads and visitor writes. A session is attached when the
		// cookie verifies, otherwise the caller stays anonymous.
		r.Group(func(r chi.Router) {
			r.Use(s.optionalSession)

			r.Get("/posts", s.handleListPosts)
			r.Get("/posts/{idOrSlug}", s.handleGetPost)
			r.Get("/hotels", s.handleListHotels)
			r.Get("/hotels/{idOrSlug}", s.handleGetHotel)
			r.Get("/tags", s.handleListTags)
			r.Get("/tags/{idOrSlug}", s.handleGetTag)
			r.Get("/events", s.handleListEvents)
			r.Get("/events/{idOrSlug}", s.handleGetEvent)
			r.Get("/activities", s.handleListActivities)
			r.Get("/activities/{idOrSlug}", s.handleGetActivity)
			r.Get("/regions", s.handleListRegions)
			r.Get("/regions/{idOrSlug}", s.handleGetRegion)
			r.Get("/hero-slides", s.handleListHeroSlides)
			r.Get("/content/{type}/{id}/comments", s.handleListContentComments)

			// Visitor submissions, rate limited by IP.
			r.With(s.mutationLimit).Post("/comments", s.handleCreateComment)
			r.With(s.mutationLimit).Post("/views", s.handleRecordView)
		})

		// Editorial endpoints require a verified session.
		r.Group(func(r chi.Router) {
			r.Use(s.requireSession)

			r.Get("/dashboard/stats", s.handleDashboardStats)

			r.Get("/comments", s.handleListComments)
			r.Get("/comments/pending-count", s.handlePendingCount)
			r.Get("/views", s.handleListViews)

			r.Get("/notifications", s.handleListNotifications)
			r.Get("/notifications/unread-count", s.handleUnreadCount)
			r.Get("/notifications/stream", s.handleNotificationStream)

			r.Group(func(r chi.Router) {
				r.Use(s.mutationLimit)

				r.Post("/posts", s.handleCreatePost)
				r.Put("/posts/{id}", s.handleUpdatePost)
				r.Delete("/posts/{id}", s.handleDeletePost)
				r.Post("/posts/{id}/publish", s.handlePublishPost)
				r.Post("/posts/{id}/unpublish", s.handleUnpublishPost)

				r.Post("/comments/{id}/approve", s.handleApproveComment)
				r.Post("/comments/{id}/reject", s.handleRejectComment)
				r.Post("/comments/{id}/spam", s.handleSpamComment)
				r.Delete("/comments/{id}", s.handleDeleteComment)
				r.Post("/comments/batch-approve", s.handleBatchApproveComments)
				r.Post("/comments/batch-delete", s.handleBatchDeleteComments)

				r.Post("/hotels", s.handleCreateHotel)
				r.Put("/hotels/{id}", s.handleUpdateHotel)
				r.Delete("/hotels/{id}", s.handleDeleteHotel)

				r.Post("/tags", s.handleCreateTag)
				r.Put("/tags/{id}", s.handleUpdateTag)
				r.Delete("/tags/{id}", s.handleDeleteTag)

				r.Post("/events", s.handleCreateEvent)
				r.Put("/events/{id}", s.handleUpdateEvent)
				r.Delete("/events/{id}", s.handleDeleteEvent)

				r.Post("/activities", s.handleCreateActivity)
				r.Put("/activities/{id}", s.handleUpdateActivity)
				r.Delete("/activities/{id}", s.handleDeleteActivity)

				r.Post("/regions", s.handleCreateRegion)
				r.Put("/regions/{id}", s.handleUpdateRegion)
				r.Delete("/regions/{id}", s.handleDeleteRegion)

				r.Post("/hero-slides", s.handleCreateHeroSlide)
				r.Put("/hero-slides/{id}", s.handleUpdateHeroSlide)
				r.Delete("/hero-slides/{id}", s.handleDeleteHeroSlide)
				r.Put("/hero-slides/{id}/display-order", s.handleSetDisplayOrder)

				r.Post("/notifications/{id}/read", s.handleMarkNotificationRead)
				r.Post("/notifications/read-all", s.handleMarkAllNotificationsRead)
			})
		})
	})
}

// handleHealthCheck returns server health status.
func (s *Server) handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]string{
		"status": "healthy",
	})
}

// handleCSRF primes the anti-forgery token against the backend and echoes it
// to the browser, so the admin UI's first mutation is already armed.
func (s *Server) handleCSRF(w http.ResponseWriter, r *http.Request) {
	token, err := s.client.PrimeCSRF(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("Anti-forgery warm-up failed")
		response.BadGateway(w, "Backend unavailable")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.csrfCookie,
		Value:    token,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	})
	response.NoContent(w)
}

// handleDashboardStats assembles the dashboard summary. Partial figures are
// fine; only a total probe failure turns into an error.
func (s *Server) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.stats.Collect(r.Context(), dashboard.StandardProbes(s.api, sessionToken(r.Context())))
	if err != nil {
		s.logger.Error().Err(err).Msg("Every dashboard probe failed")
		response.BadGateway(w, "Dashboard unavailable")
		return
	}

	response.Success(w, stats)
}

// handleNotificationStream hands the connection to the relay. While the
// stream is open the unread-count entry counts as subscribed, so pushed
// invalidations refetch it immediately instead of waiting for the next read.
func (s *Server) handleNotificationStream(w http.ResponseWriter, r *http.Request) {
	release := s.api.Notifications.SubscribeUnreadCount(sessionToken(r.Context()))
	defer release()

	s.relay.ServeHTTP(w, r)
}

// requestLogger logs one line per request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("Request handled")
	})
}
