package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	"sportsregistration/internal/delivery/http/controllers"
	"sportsregistration/internal/delivery/http/middleware"
	"sportsregistration/internal/domain"
	"sportsregistration/internal/metrics"
)

// RouterDeps holds everything NewRouter wires into the route tree.
type RouterDeps struct {
	Logger                 *slog.Logger
	Verifier               domain.TokenVerifier
	AuthController         *controllers.AuthController
	EventController        *controllers.EventController
	RegistrationController *controllers.RegistrationController
	LoginLimiter           *middleware.RateLimiter
	AllowedOrigins         []string
}

// NewRouter initializes the HTTP router with all application routes
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging(deps.Logger))
	r.Use(chimw.Recoverer)
	r.Use(metrics.HTTPMiddleware)
	r.Use(middleware.CORS(deps.AllowedOrigins))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	// Swagger
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	// Auth
	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", deps.AuthController.SignUp)
		r.Group(func(r chi.Router) {
			if deps.LoginLimiter != nil {
				r.Use(deps.LoginLimiter.Middleware)
			}
			r.Post("/login/{role}", deps.AuthController.Login)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(deps.Verifier, deps.Logger))

		r.Get("/events", deps.EventController.ListEvents)
		r.Get("/events/{eventID}", deps.EventController.GetEvent)
		r.Post("/events/{eventID}/register", deps.RegistrationController.Register)
		r.Get("/user/registered-events", deps.RegistrationController.ListRegisteredEvents)

		r.Route("/admin/events", func(r chi.Router) {
			r.Use(middleware.RequireRole(domain.RoleAdmin))
			r.Get("/", deps.EventController.ListAllEvents)
			r.Post("/", deps.EventController.CreateEvent)
			r.Put("/{eventID}", deps.EventController.UpdateEvent)
			r.Delete("/{eventID}", deps.EventController.DeleteEvent)
			r.Get("/{eventID}/registrations", deps.RegistrationController.ListEventRegistrations)
		})
	})

	return r
}
