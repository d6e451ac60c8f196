package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"

	"skillbridge/internal/delivery/http/middleware"
	"skillbridge/internal/domain/job"
	"skillbridge/internal/extract"
	"skillbridge/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type semanticResponse struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type fakeAnalysis struct {
	res     usecase.AnalysisResult
	err     error
	got     usecase.AnalysisInput
	content string
}

func (f *fakeAnalysis) Analyze(_ context.Context, in usecase.AnalysisInput) (usecase.AnalysisResult, error) {
	f.got = in
	b, err := os.ReadFile(in.Path)
	if err == nil {
		f.content = string(b)
	}
	return f.res, f.err
}

func (f *fakeAnalysis) AnalyzeAgainst(context.Context, job.Job, string, string) (usecase.AnalysisResult, error) {
	return f.res, f.err
}

type fakeJobs struct {
	jobs   []job.Job
	err    error
	params usecase.JobListParams
}

func (f *fakeJobs) ListJobs(_ context.Context, p usecase.JobListParams) ([]job.Job, error) {
	f.params = p
	return f.jobs, f.err
}

func (f *fakeJobs) GetJob(_ context.Context, id int64) (job.Job, error) {
	for _, j := range f.jobs {
		if j.ID == id {
			return j, nil
		}
	}
	return job.Job{}, usecase.ErrJobNotFound
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func newTestApp(t *testing.T, register func(r fiber.Router)) *fiber.App {
	t.Helper()
	app := fiber.New(fiber.Config{})
	app.Use(middleware.NewErrorMiddleware(log.New(io.Discard, "", 0)).Middleware())
	register(app)
	return app
}

func multipartBody(t *testing.T, jobID, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if jobID != "" {
		require.NoError(t, w.WriteField("jobId", jobID))
	}
	if filename != "" {
		fw, err := w.CreateFormFile("resume", filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func doRequest(t *testing.T, app *fiber.App, req *http.Request) (int, semanticResponse) {
	t.Helper()
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var sr semanticResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&sr))
	return resp.StatusCode, sr
}

func postAnalyze(t *testing.T, app *fiber.App, jobID, filename, content string) (int, semanticResponse) {
	t.Helper()
	body, ct := multipartBody(t, jobID, filename, content)
	req := httptest.NewRequest(http.MethodPost, "/analyze", body)
	req.Header.Set("Content-Type", ct)
	return doRequest(t, app, req)
}

func TestAnalysisHandler_Success(t *testing.T) {
	uc := &fakeAnalysis{res: usecase.AnalysisResult{
		AnalysisID:    "a-1",
		JobID:         7,
		Role:          "Mobile Developer",
		MatchScore:    31.25,
		SkillMatch:    50,
		MatchedSkills: []string{"python", "sql"},
		MissingSkills: []string{"docker", "react"},
	}}
	dir := t.TempDir()
	h := NewAnalysisHandler(uc, dir, 1<<20)
	app := newTestApp(t, h.RegisterRoutes)

	status, sr := postAnalyze(t, app, "7", "cv.TXT", "Python and SQL")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "ok", sr.Message)

	var res usecase.AnalysisResult
	require.NoError(t, json.Unmarshal(sr.Data, &res))
	assert.Equal(t, 50.0, res.SkillMatch)
	assert.Equal(t, []string{"docker", "react"}, res.MissingSkills)

	assert.Equal(t, int64(7), uc.got.JobID)
	assert.Equal(t, "cv.TXT", uc.got.Filename)
	assert.Equal(t, "Python and SQL", uc.content)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "uploaded file must be removed after analysis")
}

func TestAnalysisHandler_KindFromPartContentType(t *testing.T) {
	uc := &fakeAnalysis{res: usecase.AnalysisResult{AnalysisID: "a-2", JobID: 3}}
	app := newTestApp(t, NewAnalysisHandler(uc, t.TempDir(), 1<<20).RegisterRoutes)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("jobId", "3"))
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="resume"; filename="resume"`)
	hdr.Set("Content-Type", "application/pdf")
	part, err := w.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/analyze", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	status, _ := doRequest(t, app, req)

	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "resume.pdf", uc.got.Filename)
	assert.Equal(t, ".pdf", filepath.Ext(uc.got.Path))
}

func TestAnalysisHandler_RejectsBadInput(t *testing.T) {
	uc := &fakeAnalysis{}
	h := NewAnalysisHandler(uc, t.TempDir(), 16)
	app := newTestApp(t, h.RegisterRoutes)

	tests := []struct {
		name     string
		jobID    string
		filename string
		content  string
		status   int
	}{
		{name: "missing job id", filename: "cv.txt", content: "x", status: fiber.StatusBadRequest},
		{name: "non numeric job id", jobID: "abc", filename: "cv.txt", content: "x", status: fiber.StatusBadRequest},
		{name: "zero job id", jobID: "0", filename: "cv.txt", content: "x", status: fiber.StatusBadRequest},
		{name: "missing file", jobID: "1", status: fiber.StatusBadRequest},
		{name: "unsupported extension", jobID: "1", filename: "cv.png", content: "x", status: fiber.StatusBadRequest},
		{name: "too large", jobID: "1", filename: "cv.txt", content: "this is more than sixteen bytes", status: fiber.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, sr := postAnalyze(t, app, tt.jobID, tt.filename, tt.content)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.status, sr.Status)
		})
	}
	assert.Zero(t, uc.got.JobID, "usecase must not run for rejected input")
}

func TestAnalysisHandler_MapsUsecaseErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{name: "unknown job", err: usecase.ErrJobNotFound, status: fiber.StatusNotFound, message: "Job not found"},
		{name: "empty document", err: usecase.ErrEmptyDocument, status: fiber.StatusBadRequest, message: "Document contains no text"},
		{
			name:    "extraction failure",
			err:     &extract.ExtractionError{Kind: extract.KindPDF, Op: "read", Err: extract.ErrEncryptedDocument},
			status:  fiber.StatusBadRequest,
			message: "Could not extract text: document is encrypted",
		},
		{
			name:    "internal failure hides cause",
			err:     fmt.Errorf("%w: db down at 10.0.0.3", usecase.ErrInternal),
			status:  fiber.StatusInternalServerError,
			message: "internal server error",
		},
		{name: "unexpected error", err: errors.New("boom"), status: fiber.StatusInternalServerError, message: "internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAnalysisHandler(&fakeAnalysis{err: tt.err}, t.TempDir(), 0)
			app := newTestApp(t, h.RegisterRoutes)

			status, sr := postAnalyze(t, app, "3", "cv.pdf", "%PDF-1.4")
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.message, sr.Message)
			assert.NotContains(t, string(sr.Data), "10.0.0.3")
		})
	}
}

func TestJobsHandler_List(t *testing.T) {
	uc := &fakeJobs{jobs: []job.Job{
		{ID: 1, Role: "Python Developer", Skills: []string{"Python"}},
		{ID: 2, Role: "Frontend Developer"},
	}}
	app := newTestApp(t, NewJobsHandler(uc).RegisterRoutes)

	status, sr := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/jobs?limit=5&offset=1", nil))
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, usecase.JobListParams{Limit: 5, Offset: 1}, uc.params)

	var out struct {
		Items []struct {
			ID     int64    `json:"id"`
			Skills []string `json:"skills"`
		} `json:"items"`
		Limit int `json:"limit"`
	}
	require.NoError(t, json.Unmarshal(sr.Data, &out))
	require.Len(t, out.Items, 2)
	assert.Equal(t, 5, out.Limit)
	assert.NotNil(t, out.Items[1].Skills)
}

func TestJobsHandler_ListErrors(t *testing.T) {
	app := newTestApp(t, NewJobsHandler(&fakeJobs{err: usecase.ErrInvalidInput}).RegisterRoutes)

	status, _ := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/jobs?limit=x", nil))
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = doRequest(t, app, httptest.NewRequest(http.MethodGet, "/jobs?limit=500", nil))
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestJobsHandler_Get(t *testing.T) {
	uc := &fakeJobs{jobs: []job.Job{{ID: 4, Role: "DevOps Engineer", Skills: []string{"Docker"}}}}
	app := newTestApp(t, NewJobsHandler(uc).RegisterRoutes)

	status, sr := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/jobs/4", nil))
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(sr.Data), "DevOps Engineer")

	status, sr = doRequest(t, app, httptest.NewRequest(http.MethodGet, "/jobs/99", nil))
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "Job not found", sr.Message)

	status, _ = doRequest(t, app, httptest.NewRequest(http.MethodGet, "/jobs/abc", nil))
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestHealthHandler(t *testing.T) {
	ok := pingFunc(func(context.Context) error { return nil })
	down := pingFunc(func(context.Context) error { return errors.New("connection refused") })

	h := NewHealthHandler(map[string]Pinger{"database": ok, "cache": nil}, func() int { return 2 })
	app := newTestApp(t, h.RegisterRoutes)
	status, sr := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(sr.Data), `"wsClients":2`)
	assert.NotContains(t, string(sr.Data), "cache")

	h = NewHealthHandler(map[string]Pinger{"database": down}, nil)
	app = newTestApp(t, h.RegisterRoutes)
	status, sr = doRequest(t, app, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, fiber.StatusServiceUnavailable, status)
	assert.Contains(t, string(sr.Data), "degraded")
}
