package repo

import (
	"context"
	"fmt"

	"scenesmith/internal/domain"
	"scenesmith/internal/infra"
	"scenesmith/internal/sqlinline"
)

// JobRepositoryPG implements domain.JobRepository over PostgreSQL. Every
// mutation is a single guarded UPDATE so readers never observe a skipped
// status transition or a completed_count above total_count.
type JobRepositoryPG struct {
	sql infra.SQLExecutor
}

func NewJobRepository(sql infra.SQLExecutor) *JobRepositoryPG {
	return &JobRepositoryPG{sql: sql}
}

func (r *JobRepositoryPG) Create(ctx context.Context, job *domain.Job) error {
	row := r.sql.QueryRow(ctx, sqlinline.QInsertJob, job.ID, job.ProjectID, job.ProjectSceneID, job.TotalCount)
	if err := row.Scan(&job.CreatedAt, &job.UpdatedAt); err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	job.Status = domain.JobStatusPending
	job.CompletedCount = 0
	return nil
}

func (r *JobRepositoryPG) GetByID(ctx context.Context, jobID string) (*domain.Job, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QSelectJob, jobID)
	job, err := scanJob(row)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return job, nil
}

func (r *JobRepositoryPG) NextPending(ctx context.Context) (*domain.Job, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QSelectNextPending)
	job, err := scanJob(row)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return job, nil
}

func (r *JobRepositoryPG) MarkRunning(ctx context.Context, jobID string) error {
	_, err := r.sql.Exec(ctx, sqlinline.QMarkJobRunning, jobID)
	return err
}

func (r *JobRepositoryPG) IncrementCompleted(ctx context.Context, jobID string) error {
	tag, err := r.sql.Exec(ctx, sqlinline.QIncrementJobCompleted, jobID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("increment job %s: not running or already full", jobID)
	}
	return nil
}

func (r *JobRepositoryPG) MarkCompleted(ctx context.Context, jobID string) error {
	_, err := r.sql.Exec(ctx, sqlinline.QMarkJobCompleted, jobID)
	return err
}

func (r *JobRepositoryPG) MarkFailed(ctx context.Context, jobID string, message string) error {
	_, err := r.sql.Exec(ctx, sqlinline.QMarkJobFailed, jobID, message)
	return err
}

func (r *JobRepositoryPG) MarkCancelled(ctx context.Context, jobIDs []string) error {
	if len(jobIDs) == 0 {
		return nil
	}
	_, err := r.sql.Exec(ctx, sqlinline.QMarkJobsCancelled, jobIDs)
	return err
}

func (r *JobRepositoryPG) RequeueRunning(ctx context.Context) (int, error) {
	tag, err := r.sql.Exec(ctx, sqlinline.QRequeueRunningJobs)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (r *JobRepositoryPG) ListActive(ctx context.Context, projectID string) ([]domain.Job, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListActiveJobs, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectJobs(rows)
}

func (r *JobRepositoryPG) ListByProject(ctx context.Context, projectID string) ([]domain.Job, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListProjectJobs, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectJobs(rows)
}

func (r *JobRepositoryPG) CountPending(ctx context.Context) (int, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QCountPendingJobs)
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*domain.Job, error) {
	var job domain.Job
	if err := row.Scan(
		&job.ID,
		&job.ProjectID,
		&job.ProjectSceneID,
		&job.Status,
		&job.TotalCount,
		&job.CompletedCount,
		&job.ErrorMessage,
		&job.CreatedAt,
		&job.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &job, nil
}

type jobRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func collectJobs(rows jobRows) ([]domain.Job, error) {
	var jobs []domain.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

var _ domain.JobRepository = (*JobRepositoryPG)(nil)
