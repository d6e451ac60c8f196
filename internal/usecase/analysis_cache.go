package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"skillbridge/internal/domain/job"
)

type ResultCache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}

type analysisCacheKeyInput struct {
	JobID       int64    `json:"job_id"`
	Role        string   `json:"role"`
	Description string   `json:"description"`
	Skills      []string `json:"skills"`
	Resume      string   `json:"resume"`
}

// AnalysisCacheKey covers the job's content as well as its id, so jobs
// fetched from a URL (id 0) never collide and catalog edits invalidate.
func AnalysisCacheKey(j job.Job, raw string) string {
	resume := sha256.Sum256([]byte(raw))
	in := analysisCacheKeyInput{
		JobID:       j.ID,
		Role:        j.Role,
		Description: j.Description,
		Skills:      j.Skills,
		Resume:      hex.EncodeToString(resume[:]),
	}

	b, _ := json.Marshal(in)
	sum := sha256.Sum256(b)
	return "analysis:result:" + hex.EncodeToString(sum[:])
}
