package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"scenesmith/internal/domain"
	"scenesmith/pkg/zip"
)

// JobImages lists the persisted images of one job.
func (a *App) JobImages(w http.ResponseWriter, r *http.Request) {
	job, ok := a.loadJob(w, r)
	if !ok {
		return
	}
	items, err := a.Images.ListByJob(r.Context(), job.ID)
	if err != nil {
		a.Logger.Error().Err(err).Str("job_id", job.ID).Msg("api: list job images failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to list images")
		return
	}
	if items == nil {
		items = []domain.GeneratedImage{}
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

// JobDownload streams a zip archive of a job's images. Images whose file is
// missing on disk are skipped rather than failing the whole archive.
func (a *App) JobDownload(w http.ResponseWriter, r *http.Request) {
	job, ok := a.loadJob(w, r)
	if !ok {
		return
	}
	items, err := a.Images.ListByJob(r.Context(), job.ID)
	if err != nil {
		a.Logger.Error().Err(err).Str("job_id", job.ID).Msg("api: list job images failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to list images")
		return
	}
	if len(items) == 0 {
		a.error(w, http.StatusNotFound, "not_found", "job has no images")
		return
	}

	assets := make([]zip.Asset, 0, len(items))
	for _, item := range items {
		data, err := a.Assets.Read(item.FilePath)
		if err != nil {
			a.Logger.Warn().Err(err).Str("job_id", job.ID).Str("key", item.FilePath).Msg("api: image file missing")
			continue
		}
		assets = append(assets, zip.Asset{
			Filename: fmt.Sprintf("image-%03d", item.ImageIndex+1),
			MIME:     item.MIME,
			Data:     data,
		})
	}
	if len(assets) == 0 {
		a.error(w, http.StatusNotFound, "not_found", "no image files available")
		return
	}

	archive := zip.ArchiveAssets(assets)
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=job-%s.zip", job.ID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}

func (a *App) loadJob(w http.ResponseWriter, r *http.Request) (*domain.Job, bool) {
	jobID := chi.URLParam(r, "job_id")
	if jobID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "job_id required")
		return nil, false
	}
	job, err := a.Jobs.GetByID(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "job not found")
			return nil, false
		}
		a.Logger.Error().Err(err).Str("job_id", jobID).Msg("api: load job failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load job")
		return nil, false
	}
	return job, true
}
