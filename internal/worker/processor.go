package worker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"skillbridge/internal/extract"
	"skillbridge/internal/infrastructure/queue"
	"skillbridge/internal/usecase"
)

var ErrInvalidRequest = errors.New("invalid analysis request")

type Analyzer interface {
	Analyze(ctx context.Context, in usecase.AnalysisInput) (usecase.AnalysisResult, error)
}

type ObjectStore interface {
	DownloadToTemp(ctx context.Context, key, filename, dir string) (string, error)
}

type UpdatePublisher interface {
	PublishUpdate(ctx context.Context, update queue.AnalysisUpdate) error
}

type ProcessorDeps struct {
	Analyzer  Analyzer
	Store     ObjectStore
	Publisher UpdatePublisher
	TempDir   string
	// Timeout bounds one request from download to result.
	Timeout time.Duration
	Logger  *log.Logger
}

// Processor turns queued analysis requests into published updates. Every
// request gets exactly one terminal update, completed or failed; nothing is
// retried.
type Processor struct {
	deps   ProcessorDeps
	logger *log.Logger
}

func NewProcessor(deps ProcessorDeps) *Processor {
	logger := deps.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Processor{deps: deps, logger: logger}
}

// Handle processes one message body. Only a malformed request is returned
// as an error; pipeline failures are published instead.
func (p *Processor) Handle(ctx context.Context, body []byte) error {
	req, err := queue.DecodeRequest(body)
	if err != nil {
		p.logger.Printf("worker=analysis status=rejected err=%v", err)
		if req.RequestID != "" {
			p.publish(ctx, failed(req.RequestID, queue.CodeInvalidRequest, err.Error()))
		}
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	if p.deps.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.deps.Timeout)
		defer cancel()
	}

	start := time.Now()
	p.publish(ctx, queue.AnalysisUpdate{RequestID: req.RequestID, Status: queue.StatusProcessing})

	path, err := p.deps.Store.DownloadToTemp(ctx, req.ObjectKey, req.Filename, p.deps.TempDir)
	if err != nil {
		p.logger.Printf("worker=analysis status=failed request_id=%s stage=download key=%s err=%v", req.RequestID, req.ObjectKey, err)
		p.publish(ctx, failed(req.RequestID, queue.CodeDownloadFailed, "resume could not be downloaded"))
		return nil
	}
	defer func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			p.logger.Printf("worker=analysis request_id=%s cleanup_err=%v", req.RequestID, err)
		}
	}()

	res, err := p.deps.Analyzer.Analyze(ctx, usecase.AnalysisInput{
		JobID:    req.JobID,
		Path:     path,
		Filename: req.Filename,
	})
	if err != nil {
		code, msg := classify(err)
		p.logger.Printf("worker=analysis status=failed request_id=%s job_id=%d code=%s err=%v", req.RequestID, req.JobID, code, err)
		p.publish(ctx, failed(req.RequestID, code, msg))
		return nil
	}

	p.publish(ctx, queue.AnalysisUpdate{RequestID: req.RequestID, Status: queue.StatusCompleted, Result: &res})
	p.logger.Printf("worker=analysis status=completed request_id=%s job_id=%d duration=%s", req.RequestID, req.JobID, time.Since(start))
	return nil
}

// Consume feeds messages into pool until msgs closes or ctx ends, then
// waits for in-flight requests.
func (p *Processor) Consume(ctx context.Context, msgs <-chan queue.Message, pool *Pool) {
	results := pool.Run(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for r := range results {
			if r.Err != nil {
				p.logger.Printf("worker=analysis ack_err=%v", r.Err)
			}
		}
	}()

	for msg := range msgs {
		msg := msg
		ok := pool.Submit(ctx, func(ctx context.Context) error {
			if err := p.Handle(ctx, msg.Body()); err != nil {
				return msg.Reject()
			}
			return msg.Ack()
		})
		if !ok {
			break
		}
	}
	pool.Close()
	<-done
}

func (p *Processor) publish(ctx context.Context, u queue.AnalysisUpdate) {
	if p.deps.Publisher == nil {
		return
	}
	if u.Timestamp.IsZero() {
		u.Timestamp = time.Now().UTC()
	}
	// Terminal updates must go out even when the request deadline passed.
	pubCtx := context.WithoutCancel(ctx)
	if err := p.deps.Publisher.PublishUpdate(pubCtx, u); err != nil {
		p.logger.Printf("worker=analysis request_id=%s status=%s publish_err=%v", u.RequestID, u.Status, err)
	}
}

func failed(requestID, code, msg string) queue.AnalysisUpdate {
	return queue.AnalysisUpdate{
		RequestID: requestID,
		Status:    queue.StatusFailed,
		Error:     &queue.UpdateError{Code: code, Message: msg},
	}
}

func classify(err error) (code, msg string) {
	var xe *extract.ExtractionError
	switch {
	case errors.Is(err, usecase.ErrJobNotFound):
		return queue.CodeJobNotFound, "job not found"
	case errors.Is(err, usecase.ErrEmptyDocument):
		return queue.CodeEmptyDocument, "resume contains no text"
	case errors.As(err, &xe):
		return queue.CodeExtractionError, xe.Reason()
	default:
		return queue.CodeInternal, "analysis failed"
	}
}
