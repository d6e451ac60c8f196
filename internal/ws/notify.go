package ws

import (
	"context"
	"encoding/json"
	"time"

	"skillbridge/internal/usecase"
)

const EventAnalysisCompleted = "analysis_completed"

type AnalysisCompletedEvent struct {
	Type       string  `json:"type"`
	AnalysisID string  `json:"analysisId"`
	JobID      int64   `json:"jobId"`
	Role       string  `json:"role"`
	MatchScore float64 `json:"matchScore"`
	SkillMatch float64 `json:"skillMatch"`
	Missing    int     `json:"missingSkills"`
	Timestamp  string  `json:"timestamp"`
}

// Notifier publishes analysis events on a Hub.
type Notifier struct {
	hub *Hub
}

func NewNotifier(hub *Hub) *Notifier {
	return &Notifier{hub: hub}
}

func (n *Notifier) AnalysisCompleted(_ context.Context, evt usecase.AnalysisEvent) {
	if n == nil || n.hub == nil {
		return
	}
	at := evt.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	b, err := json.Marshal(AnalysisCompletedEvent{
		Type:       EventAnalysisCompleted,
		AnalysisID: evt.AnalysisID,
		JobID:      evt.JobID,
		Role:       evt.Role,
		MatchScore: evt.MatchScore,
		SkillMatch: evt.SkillMatch,
		Missing:    evt.Missing,
		Timestamp:  at.Format(time.RFC3339),
	})
	if err != nil {
		n.hub.logger.Printf("WS encode error | error=%v", err)
		return
	}
	n.hub.Broadcast(b)
}
