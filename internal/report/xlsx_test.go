package report

import (
	"bytes"
	"path/filepath"
	"testing"

	"skillbridge/internal/domain/recommendation"
	"skillbridge/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleResult() usecase.AnalysisResult {
	return usecase.AnalysisResult{
		JobID:           7,
		Role:            "Mobile Engineer",
		MatchScore:      42.5,
		SkillMatch:      50,
		ExtractedSkills: []string{"python", "react native", "sql"},
		MatchedSkills:   []string{"python", "sql"},
		MissingSkills:   []string{"react", "docker"},
		Recommendations: []recommendation.Recommendation{
			{Skill: "docker", Priority: 1, Resources: []recommendation.Resource{
				{Title: "Docker Docs", URL: "https://docs.docker.com/get-started/", Type: "documentation"},
			}},
			{Skill: "react", Priority: 2, Resources: []recommendation.Resource{
				{Title: "Search fundamentals of react", URL: "https://www.google.com/search?q=fundamentals+of+react", Type: "search"},
			}},
		},
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, []usecase.AnalysisResult{sampleResult()}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetSummary, SheetSkills, SheetRecommendations}, f.GetSheetList())

	rows, err := f.GetRows(SheetSummary)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"7", "Mobile Engineer", "42.5", "50", "2", "2", "python, react native, sql"}, rows[1])

	rows, err = f.GetRows(SheetSkills)
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, []string{"7", "Mobile Engineer", "python", "matched"}, rows[1])
	assert.Equal(t, []string{"7", "Mobile Engineer", "docker", "missing"}, rows[4])

	rows, err = f.GetRows(SheetRecommendations)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "docker", rows[1][1])
	assert.Equal(t, "react", rows[2][1])

	ok, target, err := f.GetCellHyperLink(SheetRecommendations, "F2")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "https://docs.docker.com/get-started/", target)
}

func TestSaveXLSX_AddsExtension(t *testing.T) {
	path, err := SaveXLSX(filepath.Join(t.TempDir(), "report"), []usecase.AnalysisResult{sampleResult()})
	require.NoError(t, err)
	assert.Equal(t, ".xlsx", filepath.Ext(path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Contains(t, f.GetSheetList(), SheetSkills)
}
