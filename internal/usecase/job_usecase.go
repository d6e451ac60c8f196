package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"

	"skillbridge/internal/domain/job"
	"skillbridge/internal/repository"
)

const maxJobListLimit = 100

type JobListParams struct {
	Limit  int
	Offset int
}

type JobUsecase interface {
	ListJobs(ctx context.Context, params JobListParams) ([]job.Job, error)
	GetJob(ctx context.Context, id int64) (job.Job, error)
}

type Jobs struct {
	repo   repository.JobRepository
	logger *log.Logger
}

func NewJobUsecase(repo repository.JobRepository, logger *log.Logger) *Jobs {
	if logger == nil {
		logger = log.Default()
	}
	return &Jobs{repo: repo, logger: logger}
}

func (u *Jobs) ListJobs(ctx context.Context, params JobListParams) ([]job.Job, error) {
	if u == nil || u.repo == nil {
		return nil, ErrInternal
	}
	limit := params.Limit
	if limit == 0 {
		limit = 20
	}
	if limit < 0 || limit > maxJobListLimit || params.Offset < 0 {
		return nil, ErrInvalidInput
	}

	jobs, err := u.repo.ListJobs(ctx, limit, params.Offset)
	if err != nil {
		u.logger.Printf("usecase=jobs op=list status=error err=%v", err)
		return nil, fmt.Errorf("%w: list jobs: %w", ErrInternal, err)
	}
	return jobs, nil
}

func (u *Jobs) GetJob(ctx context.Context, id int64) (job.Job, error) {
	if u == nil || u.repo == nil {
		return job.Job{}, ErrInternal
	}
	if id <= 0 {
		return job.Job{}, ErrJobNotFound
	}

	j, err := u.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return job.Job{}, ErrJobNotFound
		}
		u.logger.Printf("usecase=jobs op=get status=error job_id=%d err=%v", id, err)
		return job.Job{}, fmt.Errorf("%w: get job %d: %w", ErrInternal, id, err)
	}
	return j, nil
}
