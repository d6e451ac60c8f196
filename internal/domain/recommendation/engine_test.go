package recommendation

import (
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecommend_OneEntryPerSkillSorted(t *testing.T) {
	e := NewEngine(map[string][]Resource{
		"docker": {{Title: "Docker docs", URL: "https://docs.docker.com/get-started/", Type: "docs"}},
	})

	got := e.Recommend([]string{"react", "docker"})

	require.Len(t, got, 2)
	assert.Equal(t, "docker", got[0].Skill)
	assert.Equal(t, PriorityCurated, got[0].Priority)
	assert.Equal(t, "Docker docs", got[0].Resources[0].Title)

	assert.Equal(t, "react", got[1].Skill)
	assert.Equal(t, PriorityFallback, got[1].Priority)
	require.Len(t, got[1].Resources, 1)
	assert.Equal(t, "Search fundamentals of react", got[1].Resources[0].Title)
	assert.Equal(t, TypeSearch, got[1].Resources[0].Type)
	assert.Equal(t, "https://www.google.com/search?q=fundamentals+of+react", got[1].Resources[0].URL)
}

func TestRecommend_CountMatchesDistinctMissing(t *testing.T) {
	e, err := DefaultEngine()
	require.NoError(t, err)

	missing := []string{"kotlin", "python", "ci/cd", "c++", "aws", "figma"}
	got := e.Recommend(missing)

	require.Len(t, got, len(missing))
	skills := make([]string, 0, len(got))
	for _, r := range got {
		skills = append(skills, r.Skill)
		assert.NotEmpty(t, r.Resources, r.Skill)
	}
	assert.True(t, sort.StringsAreSorted(skills))
	assert.ElementsMatch(t, missing, skills)
}

func TestRecommend_CollapsesDuplicatesAndBlanks(t *testing.T) {
	got := NewEngine(nil).Recommend([]string{"Go", "go", " ", "GO "})

	require.Len(t, got, 1)
	assert.Equal(t, "go", got[0].Skill)
}

func TestRecommend_EscapesFallbackQuery(t *testing.T) {
	got := NewEngine(nil).Recommend([]string{"c++"})

	require.Len(t, got, 1)
	assert.True(t, strings.HasSuffix(got[0].Resources[0].URL, "fundamentals+of+c%2B%2B"))
}

func TestRecommend_NilEngineFallsBack(t *testing.T) {
	var e *Engine
	got := e.Recommend([]string{"docker"})

	require.Len(t, got, 1)
	assert.Equal(t, PriorityFallback, got[0].Priority)
	assert.False(t, e.HasCurated("docker"))
}

func TestRecommend_ResultsDoNotAliasTable(t *testing.T) {
	e := NewEngine(map[string][]Resource{"git": {{Title: "Pro Git", URL: "https://git-scm.com/book/en/v2", Type: "book"}}})

	got := e.Recommend([]string{"git"})
	got[0].Resources[0].Title = "mutated"

	assert.Equal(t, "Pro Git", e.Recommend([]string{"git"})[0].Resources[0].Title)
}

func TestDefaultEngine_CuratedEntries(t *testing.T) {
	e, err := DefaultEngine()
	require.NoError(t, err)

	for _, s := range []string{"python", "react", "docker", "kubernetes", "aws", "sql", "node.js", "spring boot", "figma"} {
		assert.True(t, e.HasCurated(s), s)
	}
	for _, r := range e.Recommend([]string{"python", "docker"}) {
		for _, res := range r.Resources {
			assert.True(t, strings.HasPrefix(res.URL, "https://"), res.URL)
			assert.NotEmpty(t, res.Title)
			assert.NotEmpty(t, res.Type)
		}
	}
}

func TestLoadEngine_InvalidYAML(t *testing.T) {
	_, err := LoadEngine([]byte("resources: [::"))
	assert.Error(t, err)
}
