package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/isdelr/taskapi/internal/api/handlers"
	"github.com/isdelr/taskapi/internal/auth"
	"github.com/isdelr/taskapi/internal/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"
)

// Dependencies are the collaborators the router wires into handlers.
type Dependencies struct {
	AllowedOrigins []string
	Guard          *auth.Guard
	DB             handlers.Pinger
	Users          services.UserServiceProvider
	Tasks          services.TaskServiceProvider
	Events         services.EventServiceProvider
}

// NewRouter creates and configures a new Chi router.
func NewRouter(deps Dependencies) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(hlog.NewHandler(log.Logger))
	r.Use(requestIDLogger)
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Stringer("url", r.URL).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("Request handled")
	}))
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	userHandler := handlers.NewUserHandler(deps.Users)
	taskHandler := handlers.NewTaskHandler(deps.Tasks)
	eventHandler := handlers.NewEventHandler(deps.Events)
	healthHandler := handlers.NewHealthHandler(deps.DB)
	requireAuth := deps.Guard.Middleware(handlers.WriteError)

	r.Get("/", healthHandler.Root)
	r.Get("/healthz", healthHandler.Healthz)

	// API versioning
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/token", userHandler.Login)

		r.Route("/users", func(r chi.Router) {
			r.Post("/", userHandler.Register)
			r.With(requireAuth).Get("/me", userHandler.GetMe)
			r.With(requireAuth).Delete("/me", userHandler.DeleteMe)
		})

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", taskHandler.GetAll)
			r.With(requireAuth).Post("/", taskHandler.Create)
			r.With(requireAuth).Get("/user", taskHandler.GetMine)
			r.With(requireAuth).Get("/user/", taskHandler.GetMine)
			r.Route("/{task_id}", func(r chi.Router) {
				r.Get("/", taskHandler.Get)
				r.With(requireAuth).Put("/", taskHandler.Update)
				r.With(requireAuth).Delete("/", taskHandler.Delete)
				r.With(requireAuth).Patch("/complete", taskHandler.Complete)
			})
		})

		r.With(requireAuth).Get("/events", eventHandler.GetRecent)
		r.With(requireAuth).Get("/events/", eventHandler.GetRecent)
	})

	return r
}

// requestIDLogger tags the request logger with chi's request id.
func requestIDLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := middleware.GetReqID(r.Context()); id != "" {
			logger := zerolog.Ctx(r.Context())
			logger.UpdateContext(func(c zerolog.Context) zerolog.Context {
				return c.Str("request_id", id)
			})
		}
		next.ServeHTTP(w, r)
	})
}
