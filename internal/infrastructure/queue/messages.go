package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"skillbridge/internal/usecase"

	"github.com/go-playground/validator/v10"
)

const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Failure codes carried by failed updates.
const (
	CodeInvalidRequest  = "invalid_request"
	CodeJobNotFound     = "job_not_found"
	CodeDownloadFailed  = "download_failed"
	CodeExtractionError = "extraction_error"
	CodeEmptyDocument   = "empty_document"
	CodeInternal        = "internal"
)

var validate = validator.New()

// AnalysisRequest asks the worker to analyze a stored résumé against a
// catalog job.
type AnalysisRequest struct {
	RequestID string `json:"requestId" validate:"required,uuid4"`
	JobID     int64  `json:"jobId" validate:"required,gt=0"`
	ObjectKey string `json:"objectKey" validate:"required"`
	Filename  string `json:"filename" validate:"required"`
}

func (r *AnalysisRequest) Validate() error {
	return validate.Struct(r)
}

// DecodeRequest parses and validates a request body.
func DecodeRequest(body []byte) (AnalysisRequest, error) {
	var req AnalysisRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return AnalysisRequest{}, fmt.Errorf("decode analysis request: %w", err)
	}
	if err := req.Validate(); err != nil {
		return req, fmt.Errorf("validate analysis request: %w", err)
	}
	return req, nil
}

type UpdateError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// AnalysisUpdate is published on the updates exchange under
// analysis.<requestId>.
type AnalysisUpdate struct {
	RequestID string                  `json:"requestId"`
	Status    string                  `json:"status"`
	Result    *usecase.AnalysisResult `json:"result,omitempty"`
	Error     *UpdateError            `json:"error,omitempty"`
	Timestamp time.Time               `json:"timestamp"`
}

func RoutingKey(requestID string) string {
	return "analysis." + requestID
}

// Message is one delivery from the request queue.
type Message interface {
	Body() []byte
	Ack() error
	// Reject drops the message without requeueing it.
	Reject() error
}
