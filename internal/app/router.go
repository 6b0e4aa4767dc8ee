package app

import (
	"net/http"
	"todoTracker/internal/config"
	"todoTracker/internal/handlers"
	"todoTracker/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

func NewRouter(h *handlers.TaskHandler, cfg config.ServerConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.Recover)
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}
	r.Use(middleware.RateLimit(cfg.RateLimitRPM))

	r.Get("/health", h.HealthCheck)

	// HTML-интерфейс
	r.Get("/", h.Index)
	r.Post("/tasks", h.CreateTaskForm)
	r.Post("/tasks/{id}/complete", h.CompleteTaskForm)
	r.Post("/tasks/{id}/delete", h.DeleteTaskForm)

	r.Route("/api/tasks", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         300,
		}))

		r.Get("/", h.ListTasks)           // GET /api/tasks?from=&to=
		r.Post("/", h.PostTask)           // POST /api/tasks
		r.Get("/upcoming", h.UpcomingWeek) // GET /api/tasks/upcoming?from=

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetTaskByID)            // GET /api/tasks/{id}
			r.Delete("/", h.DeleteTask)          // DELETE /api/tasks/{id}
			r.Post("/complete", h.CompleteTask) // POST /api/tasks/{id}/complete
		})
	})

	return r
}
