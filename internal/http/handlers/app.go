// Package handlers implements the JSON API surface. Handlers never touch
// queue internals directly; they go through the repositories and the
// QueueControl interface so the worker goroutine stays the single writer of
// queue state.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"scenesmith/internal/domain"
	"scenesmith/internal/infra"
)

// QueueControl is the slice of the queue processor the API needs.
type QueueControl interface {
	Kick()
	Pause()
	Resume()
	DismissError()
	Snapshot() (domain.QueueStatus, *domain.BatchTiming)
}

// AssetReader resolves a stored image key to its raw bytes.
type AssetReader interface {
	Read(key string) ([]byte, error)
}

type App struct {
	Config   *infra.Config
	Logger   zerolog.Logger
	Jobs     domain.JobRepository
	Sources  domain.PromptSourceRepository
	Images   domain.ImageRepository
	Settings domain.SettingsProvider
	Queue    QueueControl
	Assets   AssetReader
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, slug, message string) {
	a.json(w, code, map[string]string{"error": slug, "message": message})
}
