package rest

import (
	"context"
	"net/http"

	"template-backend/application/ports"
	"template-backend/infrastructure/webservice"
	"template-backend/interfaces/http/rest/handlers"
	"template-backend/interfaces/http/rest/middleware"
	"template-backend/pkg/auth"
	"template-backend/pkg/common"
	"template-backend/pkg/observability"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Dependencies are the components the router serves
type Dependencies struct {
	Households  handlers.HouseholdService
	Individuals handlers.IndividualService
	Sync        handlers.Syncer
	Preferences ports.Preferences
	Converter   *webservice.ConverterFactory
	Logger      *zap.Logger

	// Health reports component state for /health
	Health func(ctx context.Context) map[string]string
	// Ready fails while a dependency (the database) is unreachable
	Ready func(ctx context.Context) error

	// Optional
	Metrics     *observability.Metrics
	Validator   *auth.JWTValidator
	RateLimiter *auth.RateLimiter
	CORSOrigins []string
}

// Router creates and configures the HTTP router
type Router struct {
	deps Dependencies
}

// NewRouter creates a new router instance
func NewRouter(deps Dependencies) *Router {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Router{deps: deps}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.deps.Logger))
	if rt.deps.Metrics != nil {
		router.Use(middleware.Metrics(rt.deps.Metrics))
	}

	if len(rt.deps.CORSOrigins) > 0 {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   rt.deps.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		rt.respond(w, r, http.StatusNotFound, "route not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		rt.respond(w, r, http.StatusMethodNotAllowed, "method not allowed")
	})

	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	if rt.deps.Metrics != nil {
		router.Handle("/metrics", rt.deps.Metrics.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		if rt.deps.Validator != nil {
			r.Use(middleware.Authenticate(rt.deps.Validator, rt.deps.RateLimiter, rt.deps.Converter, rt.deps.Logger))
		}

		r.Route("/households", func(r chi.Router) {
			h := handlers.NewHouseholdHandler(rt.deps.Households, rt.deps.Converter, rt.deps.Logger)
			r.Get("/", h.List)
			r.Post("/", h.Create)
			r.Get("/{householdID}", h.Get)
			r.Put("/{householdID}", h.Update)
			r.Delete("/{householdID}", h.Delete)
			r.Get("/{householdID}/members", h.Members)
		})

		r.Route("/individuals", func(r chi.Router) {
			h := handlers.NewIndividualHandler(rt.deps.Individuals, rt.deps.Converter, rt.deps.Logger)
			r.Get("/", h.List)
			r.Post("/", h.Create)
			r.Get("/{individualID}", h.Get)
			r.Put("/{individualID}", h.Update)
			r.Delete("/{individualID}", h.Delete)
		})

		if rt.deps.Preferences != nil {
			r.Route("/preferences", func(r chi.Router) {
				h := handlers.NewPreferencesHandler(rt.deps.Preferences, rt.deps.Converter, rt.deps.Logger)
				r.Get("/", h.List)
				r.Get("/{key}", h.Get)
				r.Put("/{key}", h.Put)
				r.Delete("/{key}", h.Delete)
			})
		}

		sync := handlers.NewSyncHandler(rt.deps.Sync, rt.deps.Converter, rt.deps.Logger)
		if rt.deps.Validator != nil {
			r.With(middleware.RequireRole(rt.deps.Converter, "admin")).Post("/sync", sync.Sync)
		} else {
			r.Post("/sync", sync.Sync)
		}
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "healthy"}
	if rt.deps.Health != nil {
		for k, v := range rt.deps.Health(r.Context()) {
			status[k] = v
		}
	}
	_ = rt.deps.Converter.WriteResponse(w, http.StatusOK, status)
}

// readinessCheck fails with 503 while a dependency is unreachable
func (rt *Router) readinessCheck(w http.ResponseWriter, r *http.Request) {
	if rt.deps.Ready != nil {
		if err := rt.deps.Ready(r.Context()); err != nil {
			rt.deps.Logger.Warn("Readiness check failed", zap.Error(err))
			rt.respond(w, r, http.StatusServiceUnavailable, "not ready")
			return
		}
	}
	_ = rt.deps.Converter.WriteResponse(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (rt *Router) respond(w http.ResponseWriter, r *http.Request, status int, message string) {
	body := common.NewMessageResponse(status, message, chimiddleware.GetReqID(r.Context()))
	_ = rt.deps.Converter.WriteResponse(w, status, body)
}
