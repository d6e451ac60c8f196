package repository

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"

	"skillbridge/internal/domain/job"
)

//go:embed catalog/default_jobs.json
var defaultCatalogJSON []byte

type catalogFile struct {
	Jobs []job.Job `json:"jobs"`
}

// MemoryJobRepository serves a fixed catalog held in memory.
type MemoryJobRepository struct {
	byID map[int64]job.Job
	ids  []int64
}

func NewMemoryJobRepository(jobs []job.Job) (*MemoryJobRepository, error) {
	r := &MemoryJobRepository{byID: make(map[int64]job.Job, len(jobs))}
	for _, j := range jobs {
		if j.ID <= 0 {
			return nil, fmt.Errorf("invalid job id %d", j.ID)
		}
		if _, dup := r.byID[j.ID]; dup {
			return nil, fmt.Errorf("duplicate job id %d", j.ID)
		}
		r.byID[j.ID] = cloneJob(j)
		r.ids = append(r.ids, j.ID)
	}
	sort.Slice(r.ids, func(a, b int) bool { return r.ids[a] < r.ids[b] })
	return r, nil
}

// NewDefaultJobRepository returns the catalog embedded in the binary.
func NewDefaultJobRepository() (*MemoryJobRepository, error) {
	jobs, err := DefaultCatalog()
	if err != nil {
		return nil, err
	}
	return NewMemoryJobRepository(jobs)
}

// DefaultCatalog returns the jobs embedded in the binary.
func DefaultCatalog() ([]job.Job, error) {
	return ParseCatalog(defaultCatalogJSON)
}

// ParseCatalog reads a catalog document of the form {"jobs": [...]}.
func ParseCatalog(data []byte) ([]job.Job, error) {
	var f catalogFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return f.Jobs, nil
}

func (r *MemoryJobRepository) FindByID(ctx context.Context, id int64) (job.Job, error) {
	if err := ctx.Err(); err != nil {
		return job.Job{}, err
	}
	if r == nil {
		return job.Job{}, ErrJobNotFound
	}
	j, ok := r.byID[id]
	if !ok {
		return job.Job{}, ErrJobNotFound
	}
	return cloneJob(j), nil
}

func (r *MemoryJobRepository) ListJobs(ctx context.Context, limit, offset int) ([]job.Job, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r == nil {
		return []job.Job{}, nil
	}
	limit, offset = clampPage(limit, offset)

	out := make([]job.Job, 0, limit)
	for i := offset; i < len(r.ids) && len(out) < limit; i++ {
		out = append(out, cloneJob(r.byID[r.ids[i]]))
	}
	return out, nil
}

func cloneJob(j job.Job) job.Job {
	skills := make([]string, len(j.Skills))
	copy(skills, j.Skills)
	j.Skills = skills
	return j
}
