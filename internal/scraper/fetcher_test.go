package scraper

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"skillbridge/internal/domain/skill"
	"skillbridge/internal/nlp"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var richPosting = `<html><head><title>Careers | Acme</title><script>var tracking = "kubernetes";</script></head>
<body>
<nav>Home Jobs About Terraform</nav>
<h1>Senior Backend Engineer</h1>
<div class="job-description">
<p>We are looking for a backend engineer to build APIs in Python and PostgreSQL.</p>
<p>You will deploy services with Docker on AWS and keep our CI/CD pipelines healthy.</p>
<p>Experience with Redis caching and REST API design is a strong plus for this role.</p>
</div>
<footer>Copyright Acme. Built with React.</footer>
</body></html>`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/jobs/rich", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(richPosting))
	})
	mux.HandleFunc("/jobs/thin", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><head><title>Loading</title></head><body><div id="app"></div></body></html>`))
	})
	mux.HandleFunc("/jobs/gone", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func quietFetcher(headless bool) *JobPageFetcher {
	return NewJobPageFetcher(FetcherOptions{Headless: headless, Timeout: 5 * time.Second, Logger: log.New(io.Discard, "", 0)})
}

func TestJobPageFetcher_StaticPage(t *testing.T) {
	server := newTestServer(t)
	f := quietFetcher(false)

	p, err := f.Fetch(context.Background(), server.URL+"/jobs/rich")
	require.NoError(t, err)
	assert.Equal(t, "Senior Backend Engineer", p.Title)
	assert.Contains(t, p.Description, "Python and PostgreSQL")
	assert.NotContains(t, p.Description, "tracking")
	assert.NotContains(t, p.Description, "Terraform")
	assert.NotContains(t, p.Description, "Copyright")
	assert.False(t, p.Headless)
}

func TestJobPageFetcher_FetchJobDerivesSkills(t *testing.T) {
	server := newTestServer(t)
	tax, err := skill.DefaultTaxonomy(nlp.NewNormalizer())
	require.NoError(t, err)

	j, err := quietFetcher(false).FetchJob(context.Background(), server.URL+"/jobs/rich", skill.NewExtractor(tax))
	require.NoError(t, err)
	assert.Equal(t, int64(0), j.ID)
	assert.Equal(t, "Senior Backend Engineer", j.Role)
	assert.Equal(t, server.URL+"/jobs/rich", j.SourceURL)
	for _, s := range []string{"python", "postgresql", "docker", "aws", "ci/cd", "redis", "rest api"} {
		assert.Contains(t, j.Skills, s)
	}
	assert.NotContains(t, j.Skills, "kubernetes")
	assert.NotContains(t, j.Skills, "terraform")
}

func TestJobPageFetcher_ThinPageWithoutHeadless(t *testing.T) {
	server := newTestServer(t)

	_, err := quietFetcher(false).Fetch(context.Background(), server.URL+"/jobs/thin")
	assert.ErrorIs(t, err, ErrEmptyPosting)
}

func TestJobPageFetcher_HeadlessFallback(t *testing.T) {
	server := newTestServer(t)
	f := quietFetcher(true)
	var rendered string
	f.render = func(_ context.Context, pageURL string, _ time.Duration) (string, error) {
		rendered = pageURL
		return richPosting, nil
	}

	p, err := f.Fetch(context.Background(), server.URL+"/jobs/thin")
	require.NoError(t, err)
	assert.Equal(t, server.URL+"/jobs/thin", rendered)
	assert.True(t, p.Headless)
	assert.Equal(t, "Senior Backend Engineer", p.Title)
}

func TestJobPageFetcher_HeadlessFailure(t *testing.T) {
	server := newTestServer(t)
	f := quietFetcher(true)
	f.render = func(context.Context, string, time.Duration) (string, error) {
		return "", errors.New("chrome not installed")
	}

	_, err := f.Fetch(context.Background(), server.URL+"/jobs/gone")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "chrome not installed"))
}

func TestJobPageFetcher_HTTPError(t *testing.T) {
	server := newTestServer(t)

	_, err := quietFetcher(false).Fetch(context.Background(), server.URL+"/jobs/gone")
	assert.Error(t, err)
}

func TestJobPageFetcher_InvalidURL(t *testing.T) {
	f := quietFetcher(false)
	for _, u := range []string{"", "ftp://example.com/job", "not a url", "https://"} {
		_, err := f.Fetch(context.Background(), u)
		assert.ErrorIs(t, err, ErrInvalidURL, u)
	}
}

func TestHostFromURL(t *testing.T) {
	assert.Equal(t, "127.0.0.1", hostFromURL("http://127.0.0.1:8080/x"))
	assert.Equal(t, "example.com", hostFromURL("https://example.com/jobs"))
	assert.Equal(t, "", hostFromURL("::"))
}
