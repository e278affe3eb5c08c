package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"scenesmith/internal/http/handlers"
	"scenesmith/internal/middleware"
)

func NewRouter(app *handlers.App) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		middleware.CORS(app.Config.CORSOrigins),
		middleware.RateLimit(app.Config.RateLimitPerMin, time.Minute),
		middleware.Logger(app.Logger),
		chimw.Recoverer,
	)

	r.Get("/v1/healthz", app.Health)

	r.Route("/v1/generation", func(r chi.Router) {
		r.Post("/jobs", app.CreateJobs)
		r.Get("/jobs", app.ListJobs)
		r.Post("/jobs/cancel", app.CancelJobs)
		r.Get("/jobs/{job_id}/images", app.JobImages)
		r.Get("/jobs/{job_id}/download", app.JobDownload)
		r.Post("/pause", app.PauseGeneration)
		r.Post("/resume", app.ResumeGeneration)
		r.Post("/dismiss-error", app.DismissGenerationError)
		r.Get("/status", app.QueueStatus)
	})

	return r
}
