package dto

import "skillbridge/internal/domain/job"

type JobResponse struct {
	ID          int64    `json:"id"`
	Role        string   `json:"role"`
	Description string   `json:"description"`
	Skills      []string `json:"skills"`
	SourceURL   string   `json:"sourceUrl,omitempty"`
}

type JobListResponse struct {
	Items  []JobResponse `json:"items"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

func NewJobResponse(j job.Job) JobResponse {
	skills := j.Skills
	if skills == nil {
		skills = []string{}
	}
	return JobResponse{
		ID:          j.ID,
		Role:        j.Role,
		Description: j.Description,
		Skills:      skills,
		SourceURL:   j.SourceURL,
	}
}
