package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"skillbridge/internal/app"
	"skillbridge/internal/config"
	"skillbridge/internal/domain/job"
	"skillbridge/internal/domain/recommendation"
	"skillbridge/internal/domain/skill"
	"skillbridge/internal/extract"
	"skillbridge/internal/nlp"
	"skillbridge/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckTarget(t *testing.T) {
	tests := []struct {
		name    string
		id      int64
		url     string
		all     bool
		wantErr string
	}{
		{name: "job id", id: 3},
		{name: "url", url: "https://example.com/job"},
		{name: "all", all: true},
		{name: "nothing", wantErr: "must be provided"},
		{name: "id and url", id: 1, url: "https://example.com", wantErr: "mutually exclusive"},
		{name: "url and all", url: "https://example.com", all: true, wantErr: "mutually exclusive"},
		{name: "negative id", id: -2, wantErr: "positive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkTarget(tt.id, tt.url, tt.all)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestWriteJSON_SingleAndRanked(t *testing.T) {
	res := []usecase.AnalysisResult{{JobID: 2, Role: "Data Analyst", MatchScore: 41.5}}

	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, res, false))
	var single map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &single))
	assert.Equal(t, "Data Analyst", single["role"])

	buf.Reset()
	require.NoError(t, writeJSON(&buf, res, true))
	var ranked rankedOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &ranked))
	require.Len(t, ranked.Results, 1)
	assert.NotEmpty(t, ranked.GeneratedAt)
}

func TestPrintJobs(t *testing.T) {
	var buf bytes.Buffer
	printJobs(&buf, []job.Job{{ID: 7, Role: "Mobile Developer", Skills: []string{"Swift", "Kotlin"}}})
	assert.Contains(t, buf.String(), "Mobile Developer")
	assert.Contains(t, buf.String(), "Swift, Kotlin")
}

func TestPrintSkills(t *testing.T) {
	n := nlp.NewNormalizer()
	tax, err := skill.DefaultTaxonomy(n)
	require.NoError(t, err)
	rec, err := recommendation.DefaultEngine()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, printSkills(&buf, tax, rec, []string{"K8s", "hadoop"}))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Regexp(t, `^kubernetes\s+curated\s+k8s$`, lines[0])
	assert.Regexp(t, `^hadoop\s+generic\s*$`, lines[1])

	buf.Reset()
	err = printSkills(&buf, tax, rec, []string{"python", "cobol"})
	require.EqualError(t, err, "unknown skills: cobol")
	assert.Contains(t, buf.String(), "python")

	buf.Reset()
	require.NoError(t, printSkills(&buf, tax, rec, nil))
	assert.Len(t, strings.Split(strings.TrimSpace(buf.String()), "\n"), tax.Len())
}

func TestObjectKeyAndContentType(t *testing.T) {
	key := objectKey("My CV.PDF")
	assert.Regexp(t, `^resumes/[0-9a-f-]{36}\.pdf$`, key)

	assert.Equal(t, "application/pdf", contentType(extract.KindPDF))
	assert.Contains(t, contentType(extract.KindText), "text/plain")
}

func TestRankAll_OrdersByMatchScore(t *testing.T) {
	var cfg config.Config
	cfg.App.MaxUploadBytes = 1 << 20

	ctx := context.Background()
	c, err := app.NewContainer(ctx, cfg, app.Options{Logger: log.New(io.Discard, "", 0)})
	require.NoError(t, err)
	defer c.Close()

	path := filepath.Join(t.TempDir(), "resume.txt")
	require.NoError(t, os.WriteFile(path, []byte("Python developer. Built REST APIs with Flask and SQL, deployed with Docker."), 0o600))

	results, err := rankAll(ctx, c, path, 3)
	require.NoError(t, err)

	jobs, err := catalog(ctx, c)
	require.NoError(t, err)
	require.Len(t, results, len(jobs))
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].MatchScore, results[i].MatchScore)
	}

	var python *usecase.AnalysisResult
	for i := range results {
		if results[i].JobID == 1 {
			python = &results[i]
		}
	}
	require.NotNil(t, python)
	assert.Contains(t, python.MatchedSkills, "python")
	assert.Contains(t, python.MatchedSkills, "flask")
}
