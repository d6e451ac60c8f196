package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"skillbridge/internal/config"
	"skillbridge/internal/ws"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	var cfg config.Config
	cfg.App.AppName = "skillbridge-test"
	cfg.App.UploadDir = t.TempDir()
	cfg.App.MaxUploadBytes = 1 << 20
	cfg.Analysis.SummaryLength = 40
	return cfg
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	cfg := testConfig(t)
	logger := log.New(io.Discard, "", 0)
	hub := ws.NewHub(logger)

	c, err := NewContainer(context.Background(), cfg, Options{Logger: logger, Notifier: ws.NewNotifier(hub)})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	return New(cfg, c, hub)
}

func TestListenAddr(t *testing.T) {
	addr, err := ListenAddr("8080")
	require.NoError(t, err)
	assert.Equal(t, ":8080", addr)

	addr, err = ListenAddr(" :9000 ")
	require.NoError(t, err)
	assert.Equal(t, ":9000", addr)

	_, err = ListenAddr("  ")
	assert.Error(t, err)
}

func TestContainer_EmbeddedCatalog(t *testing.T) {
	c, err := NewContainer(context.Background(), testConfig(t), Options{Logger: log.New(io.Discard, "", 0)})
	require.NoError(t, err)
	defer c.Close()

	assert.Nil(t, c.DB)
	assert.False(t, c.Cache.Available())
	assert.Greater(t, c.Taxonomy.Len(), 0)

	j, err := c.JobList.GetJob(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Python Developer", j.Role)
}

func TestContainer_CatalogFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.Database.CatalogPath = filepath.Join(t.TempDir(), "jobs.json")
	require.NoError(t, os.WriteFile(cfg.Database.CatalogPath,
		[]byte(`{"jobs":[{"id":40,"role":"QA Engineer","skills":["Selenium","Python"]}]}`), 0o600))

	c, err := NewContainer(context.Background(), cfg, Options{Logger: log.New(io.Discard, "", 0)})
	require.NoError(t, err)
	defer c.Close()

	j, err := c.JobList.GetJob(context.Background(), 40)
	require.NoError(t, err)
	assert.Equal(t, "QA Engineer", j.Role)

	_, err = c.JobList.GetJob(context.Background(), 1)
	assert.Error(t, err)
}

func TestContainer_BadTaxonomyPath(t *testing.T) {
	cfg := testConfig(t)
	cfg.Analysis.TaxonomyPath = "/nonexistent/taxonomy.yaml"
	_, err := NewContainer(context.Background(), cfg, Options{Logger: log.New(io.Discard, "", 0)})
	assert.Error(t, err)
}

func TestApp_AnalyzeEndToEnd(t *testing.T) {
	a := newTestApp(t)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	require.NoError(t, w.WriteField("jobId", "1"))
	fw, err := w.CreateFormFile("resume", "resume.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte("Backend engineer with Python, Flask and SQL. Uses Git daily."))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp, err := a.Fiber.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	var env struct {
		Status int `json:"status"`
		Data   struct {
			Role          string   `json:"role"`
			MatchScore    float64  `json:"matchScore"`
			MatchedSkills []string `json:"matchedSkills"`
			Summary       string   `json:"summary"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	assert.Equal(t, "Python Developer", env.Data.Role)
	assert.Subset(t, env.Data.MatchedSkills, []string{"python", "flask", "sql", "git"})
	assert.Greater(t, env.Data.MatchScore, 0.0)
	assert.Equal(t, 43, len([]rune(env.Data.Summary)))
}

func TestApp_RoutesMounted(t *testing.T) {
	a := newTestApp(t)

	for path, want := range map[string]int{
		"/health":          http.StatusOK,
		"/api/v1/jobs":     http.StatusOK,
		"/api/v1/jobs/2":   http.StatusOK,
		"/api/v1/jobs/404": http.StatusNotFound,
	} {
		resp, err := a.Fiber.Test(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoError(t, err, path)
		_ = resp.Body.Close()
		assert.Equal(t, want, resp.StatusCode, path)
	}
}
