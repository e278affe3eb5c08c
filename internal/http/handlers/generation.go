package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"scenesmith/internal/domain"
)

type createJobsRequest struct {
	ProjectID string   `json:"project_id"`
	SceneIDs  []string `json:"scene_ids"`
	Count     int      `json:"count"`
}

// CreateJobs enqueues generation work for a project. With a flat count and no
// scene selection it creates one project-wide job; a scene selection creates
// one job per scene, collapsed into a single project-wide job when every
// scene asks for the same number of images.
func (a *App) CreateJobs(w http.ResponseWriter, r *http.Request) {
	var req createJobsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.ProjectID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "project_id required")
		return
	}
	if req.Count < 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "count must not be negative")
		return
	}

	key, err := a.Settings.APIKey(r.Context())
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to read settings")
		return
	}
	if key == "" && !a.Config.AllowSynthetic {
		a.error(w, http.StatusPreconditionFailed, "no_api_key", domain.ErrNoAPIKey.Error())
		return
	}

	if _, err := a.Sources.GenerationContext(r.Context(), req.ProjectID, nil); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "project not found")
			return
		}
		a.error(w, http.StatusInternalServerError, "internal", "failed to load project")
		return
	}

	jobs, err := a.planJobs(r, req)
	if err != nil {
		if errors.Is(err, domain.ErrNothingToGenerate) {
			a.error(w, http.StatusUnprocessableEntity, "nothing_to_generate", domain.ErrNothingToGenerate.Error())
			return
		}
		a.error(w, http.StatusInternalServerError, "internal", "failed to load scenes")
		return
	}

	created := make([]domain.Job, 0, len(jobs))
	for _, job := range jobs {
		if err := a.Jobs.Create(r.Context(), job); err != nil {
			a.Logger.Error().Err(err).Str("project_id", req.ProjectID).Msg("api: create job failed")
			a.error(w, http.StatusInternalServerError, "internal", "failed to create job")
			return
		}
		created = append(created, *job)
	}

	a.Queue.Kick()
	a.json(w, http.StatusAccepted, map[string]any{"jobs": created})
}

// planJobs turns a create request into pending job records. A flat count with
// no scene selection yields a single project-wide job; otherwise the selected
// scenes (all scenes when unselected) each contribute their image count, with
// a flat count overriding per-scene counts.
func (a *App) planJobs(r *http.Request, req createJobsRequest) ([]*domain.Job, error) {
	if len(req.SceneIDs) == 0 && req.Count > 0 {
		return []*domain.Job{newJob(req.ProjectID, nil, req.Count)}, nil
	}

	scenes, err := a.Sources.ListScenes(r.Context(), req.ProjectID, req.SceneIDs)
	if err != nil {
		return nil, err
	}

	type planned struct {
		sceneID string
		count   int
	}
	var plan []planned
	for _, scene := range scenes {
		count := scene.ImageCount
		if req.Count > 0 {
			count = req.Count
		}
		if count <= 0 {
			continue
		}
		plan = append(plan, planned{sceneID: scene.ID, count: count})
	}
	if len(plan) == 0 {
		return nil, domain.ErrNothingToGenerate
	}

	uniform := true
	for _, p := range plan[1:] {
		if p.count != plan[0].count {
			uniform = false
			break
		}
	}
	if uniform {
		total := 0
		for _, p := range plan {
			total += p.count
		}
		return []*domain.Job{newJob(req.ProjectID, nil, total)}, nil
	}

	jobs := make([]*domain.Job, 0, len(plan))
	for _, p := range plan {
		sceneID := p.sceneID
		jobs = append(jobs, newJob(req.ProjectID, &sceneID, p.count))
	}
	return jobs, nil
}

func newJob(projectID string, sceneID *string, total int) *domain.Job {
	return &domain.Job{
		ID:             uuid.NewString(),
		ProjectID:      projectID,
		ProjectSceneID: sceneID,
		Status:         domain.JobStatusPending,
		TotalCount:     total,
	}
}

// ListJobs is the UI polling endpoint: jobs plus the queue and batch-timing
// snapshots in one payload. scope=active (default) returns pending/running
// jobs, scope=all returns a project's full history.
func (a *App) ListJobs(w http.ResponseWriter, r *http.Request) {
	projectID := r.URL.Query().Get("project_id")
	scope := r.URL.Query().Get("scope")
	if scope == "" {
		scope = "active"
	}

	var jobs []domain.Job
	var err error
	switch scope {
	case "active":
		jobs, err = a.Jobs.ListActive(r.Context(), projectID)
	case "all":
		if projectID == "" {
			a.error(w, http.StatusBadRequest, "bad_request", "project_id required for scope=all")
			return
		}
		jobs, err = a.Jobs.ListByProject(r.Context(), projectID)
	default:
		a.error(w, http.StatusBadRequest, "bad_request", "scope must be active or all")
		return
	}
	if err != nil {
		a.Logger.Error().Err(err).Msg("api: list jobs failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to list jobs")
		return
	}
	if jobs == nil {
		jobs = []domain.Job{}
	}

	queue, timing := a.Queue.Snapshot()
	a.json(w, http.StatusOK, map[string]any{
		"jobs":         jobs,
		"batch_timing": timing,
		"queue":        queue,
	})
}

type cancelJobsRequest struct {
	IDs []string `json:"ids"`
}

// CancelJobs marks the listed jobs cancelled. Jobs already terminal are left
// alone; cancelling them again is not an error. The worker notices a
// cancelled running job at its next image boundary.
func (a *App) CancelJobs(w http.ResponseWriter, r *http.Request) {
	var req cancelJobsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if len(req.IDs) == 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "ids required")
		return
	}
	if err := a.Jobs.MarkCancelled(r.Context(), req.IDs); err != nil {
		a.Logger.Error().Err(err).Msg("api: cancel jobs failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to cancel jobs")
		return
	}
	a.Queue.Kick()
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) PauseGeneration(w http.ResponseWriter, r *http.Request) {
	a.Queue.Pause()
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) ResumeGeneration(w http.ResponseWriter, r *http.Request) {
	a.Queue.Resume()
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) DismissGenerationError(w http.ResponseWriter, r *http.Request) {
	a.Queue.DismissError()
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}

// QueueStatus is the lightweight status-only read for frequent polling.
func (a *App) QueueStatus(w http.ResponseWriter, r *http.Request) {
	pending, err := a.Jobs.CountPending(r.Context())
	if err != nil {
		a.Logger.Error().Err(err).Msg("api: count pending failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to read queue")
		return
	}
	queue, _ := a.Queue.Snapshot()
	var stopped any
	if queue.QueueStopped != "" {
		stopped = queue.QueueStopped
	}
	a.json(w, http.StatusOK, map[string]any{
		"queue_length":  pending,
		"processing":    queue.Processing,
		"queue_stopped": stopped,
	})
}
