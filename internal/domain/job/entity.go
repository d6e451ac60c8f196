package job

import "strings"

// Job is a catalog entry. Skills keeps the order the catalog declares.
type Job struct {
	ID          int64    `json:"id"`
	Role        string   `json:"role"`
	Description string   `json:"description"`
	Skills      []string `json:"skills"`
	SourceURL   string   `json:"sourceUrl,omitempty"`
}

// MatchText is the text the résumé is compared against: the description
// followed by the declared skills.
func (j Job) MatchText() string {
	parts := make([]string, 0, len(j.Skills)+1)
	if d := strings.TrimSpace(j.Description); d != "" {
		parts = append(parts, d)
	}
	parts = append(parts, j.Skills...)
	return strings.Join(parts, " ")
}

type Summary struct {
	ID         int64  `json:"id"`
	Role       string `json:"role"`
	SkillCount int    `json:"skillCount"`
}

func (j Job) Summary() Summary {
	return Summary{ID: j.ID, Role: j.Role, SkillCount: len(j.Skills)}
}
