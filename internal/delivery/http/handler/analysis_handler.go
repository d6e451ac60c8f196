package handler

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"skillbridge/internal/delivery/http/dto"
	"skillbridge/internal/delivery/http/middleware"
	"skillbridge/internal/extract"
	"skillbridge/internal/pkg/response"
	"skillbridge/internal/usecase"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

var validate = validator.New()

type AnalysisHandler struct {
	uc        usecase.AnalysisUsecase
	uploadDir string
	maxBytes  int64
}

func NewAnalysisHandler(uc usecase.AnalysisUsecase, uploadDir string, maxBytes int64) *AnalysisHandler {
	if uploadDir == "" {
		uploadDir = os.TempDir()
	}
	return &AnalysisHandler{uc: uc, uploadDir: uploadDir, maxBytes: maxBytes}
}

func (h *AnalysisHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Post("/analyze", h.Analyze)
}

// Analyze accepts a multipart form with a "resume" file and a "jobId" field.
func (h *AnalysisHandler) Analyze(c fiber.Ctx) error {
	if h == nil || h.uc == nil {
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, nil)
	}

	jobID, err := strconv.ParseInt(strings.TrimSpace(c.FormValue("jobId")), 10, 64)
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "jobId must be a positive integer", nil, err)
	}

	fh, err := c.FormFile("resume")
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "resume file is required", nil, err)
	}

	req := dto.AnalyzeRequest{JobID: jobID, Filename: filepath.Base(fh.Filename), Size: fh.Size}
	if err := validate.Struct(req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}
	if h.maxBytes > 0 && req.Size > h.maxBytes {
		return middleware.NewAppError(fiber.StatusRequestEntityTooLarge, "resume file is too large", nil, nil)
	}
	middleware.Annotate(c, "job_id", req.JobID)

	kind, filename, err := uploadKind(req.Filename, fh.Header.Get(fiber.HeaderContentType))
	if err != nil {
		return mapAnalysisUsecaseError(err)
	}
	middleware.Annotate(c, "kind", kind)
	req.Filename = filename

	path := filepath.Join(h.uploadDir, "resume-"+uuid.NewString()+kind.Ext())
	if err := c.SaveFile(fh, path); err != nil {
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
	defer os.Remove(path)

	res, err := h.uc.Analyze(c.Context(), usecase.AnalysisInput{
		JobID:    req.JobID,
		Path:     path,
		Filename: req.Filename,
	})
	if err != nil {
		return mapAnalysisUsecaseError(err)
	}
	middleware.Annotate(c, "analysis_id", res.AnalysisID)
	middleware.Annotate(c, "cached", res.Cached)

	return response.Success(c, fiber.StatusOK, response.MessageOK, res)
}

// uploadKind trusts the file name first and falls back to the part's
// Content-Type, so "resume" sent as application/pdf is accepted as
// "resume.pdf".
func uploadKind(filename, contentType string) (extract.Kind, string, error) {
	kind, err := extract.KindFromName(filename)
	if err == nil {
		return kind, filename, nil
	}
	if k, ctErr := extract.KindFromContentType(contentType); ctErr == nil {
		return k, filename + k.Ext(), nil
	}
	return extract.KindUnknown, "", err
}

func mapAnalysisUsecaseError(err error) error {
	if err == nil {
		return nil
	}

	var xe *extract.ExtractionError
	switch {
	case errors.Is(err, usecase.ErrJobNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Job not found", nil, err)
	case errors.As(err, &xe):
		return middleware.NewAppError(fiber.StatusBadRequest, "Could not extract text: "+xe.Reason(), nil, err)
	case errors.Is(err, usecase.ErrEmptyDocument):
		return middleware.NewAppError(fiber.StatusBadRequest, "Document contains no text", nil, err)
	case errors.Is(err, usecase.ErrInternal):
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
