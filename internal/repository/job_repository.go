package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"skillbridge/internal/database"
	"skillbridge/internal/domain/job"

	"github.com/jackc/pgx/v5"
)

var (
	ErrJobNotFound = errors.New("job not found")
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// JobRepository is the read-only job catalog.
type JobRepository interface {
	FindByID(ctx context.Context, id int64) (job.Job, error)
	ListJobs(ctx context.Context, limit, offset int) ([]job.Job, error)
}

type dialect struct {
	findJob   string
	listJobs  string
	findSkill string
	// skillsIn renders the query for the skills of several jobs.
	skillsIn func(n int) string
}

var postgresDialect = dialect{
	findJob:   `SELECT id, COALESCE(role, ''), COALESCE(description, ''), COALESCE(source_url, '') FROM jobs WHERE id = $1`,
	listJobs:  `SELECT id, COALESCE(role, ''), COALESCE(description, ''), COALESCE(source_url, '') FROM jobs ORDER BY id LIMIT $1 OFFSET $2`,
	findSkill: `SELECT job_id, skill_name FROM job_skills WHERE job_id = $1 ORDER BY position, skill_name`,
	skillsIn: func(int) string {
		return `SELECT job_id, skill_name FROM job_skills WHERE job_id = ANY($1) ORDER BY job_id, position, skill_name`
	},
}

var sqliteDialect = dialect{
	findJob:   `SELECT id, COALESCE(role, ''), COALESCE(description, ''), COALESCE(source_url, '') FROM jobs WHERE id = ?`,
	listJobs:  `SELECT id, COALESCE(role, ''), COALESCE(description, ''), COALESCE(source_url, '') FROM jobs ORDER BY id LIMIT ? OFFSET ?`,
	findSkill: `SELECT job_id, skill_name FROM job_skills WHERE job_id = ? ORDER BY position, skill_name`,
	skillsIn: func(n int) string {
		return `SELECT job_id, skill_name FROM job_skills WHERE job_id IN (` +
			strings.TrimSuffix(strings.Repeat("?,", n), ",") +
			`) ORDER BY job_id, position, skill_name`
	},
}

// SQLJobRepository reads the catalog from the jobs and job_skills tables.
type SQLJobRepository struct {
	db       database.DB
	dialect  dialect
	arrayArg bool
}

func NewPostgresJobRepository(db database.DB) *SQLJobRepository {
	return &SQLJobRepository{db: db, dialect: postgresDialect, arrayArg: true}
}

func NewSQLiteJobRepository(db database.DB) *SQLJobRepository {
	return &SQLJobRepository{db: db, dialect: sqliteDialect}
}

func (r *SQLJobRepository) FindByID(ctx context.Context, id int64) (job.Job, error) {
	if r == nil || r.db == nil {
		return job.Job{}, database.ErrNilDB
	}
	if id <= 0 {
		return job.Job{}, ErrJobNotFound
	}

	var j job.Job
	row := r.db.QueryRow(ctx, r.dialect.findJob, id)
	if err := row.Scan(&j.ID, &j.Role, &j.Description, &j.SourceURL); err != nil {
		if errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows) {
			return job.Job{}, ErrJobNotFound
		}
		return job.Job{}, err
	}

	rows, err := r.db.Query(ctx, r.dialect.findSkill, id)
	if err != nil {
		return job.Job{}, err
	}
	defer rows.Close()

	j.Skills = make([]string, 0)
	for rows.Next() {
		var jobID int64
		var name string
		if err := rows.Scan(&jobID, &name); err != nil {
			return job.Job{}, err
		}
		j.Skills = append(j.Skills, name)
	}
	if err := rows.Err(); err != nil {
		return job.Job{}, err
	}

	return j, nil
}

func (r *SQLJobRepository) ListJobs(ctx context.Context, limit, offset int) ([]job.Job, error) {
	if r == nil || r.db == nil {
		return nil, database.ErrNilDB
	}
	limit, offset = clampPage(limit, offset)

	rows, err := r.db.Query(ctx, r.dialect.listJobs, limit, offset)
	if err != nil {
		return nil, err
	}

	out := make([]job.Job, 0, limit)
	index := make(map[int64]int, limit)
	for rows.Next() {
		var j job.Job
		if err := rows.Scan(&j.ID, &j.Role, &j.Description, &j.SourceURL); err != nil {
			rows.Close()
			return nil, err
		}
		j.Skills = make([]string, 0)
		index[j.ID] = len(out)
		out = append(out, j)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	ids := make([]int64, 0, len(out))
	for _, j := range out {
		ids = append(ids, j.ID)
	}
	var args []any
	if r.arrayArg {
		args = []any{ids}
	} else {
		args = make([]any, 0, len(ids))
		for _, id := range ids {
			args = append(args, id)
		}
	}

	srows, err := r.db.Query(ctx, r.dialect.skillsIn(len(ids)), args...)
	if err != nil {
		return nil, err
	}
	defer srows.Close()

	for srows.Next() {
		var jobID int64
		var name string
		if err := srows.Scan(&jobID, &name); err != nil {
			return nil, err
		}
		if i, ok := index[jobID]; ok {
			out[i].Skills = append(out[i].Skills, name)
		}
	}
	if err := srows.Err(); err != nil {
		return nil, err
	}

	return out, nil
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
