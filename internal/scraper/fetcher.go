package scraper

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/url"
	"regexp"
	"strings"
	"time"

	"skillbridge/internal/domain/job"
	"skillbridge/internal/domain/skill"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
)

const (
	defaultTimeout = 25 * time.Second
	// Postings shorter than this after extraction are assumed to be
	// rendered client side.
	minPostingChars = 200
	maxPostingChars = 20000
)

var (
	ErrInvalidURL   = errors.New("invalid posting url")
	ErrEmptyPosting = errors.New("posting has no readable text")
)

// Posting is the readable content of a job posting page.
type Posting struct {
	URL         string
	Title       string
	Description string
	Headless    bool
}

type SkillFinder interface {
	Extract(raw string) skill.Set
}

type FetcherOptions struct {
	// Headless enables the chromedp fallback for pages whose static HTML
	// carries too little text.
	Headless bool
	Timeout  time.Duration
	Logger   *log.Logger
}

// JobPageFetcher imports an ad hoc job from a posting URL.
type JobPageFetcher struct {
	headless bool
	timeout  time.Duration
	logger   *log.Logger
	render   func(ctx context.Context, pageURL string, timeout time.Duration) (string, error)
}

func NewJobPageFetcher(opts FetcherOptions) *JobPageFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &JobPageFetcher{
		headless: opts.Headless,
		timeout:  opts.Timeout,
		logger:   opts.Logger,
		render:   renderHeadless,
	}
}

// Fetch downloads pageURL with colly and falls back to a headless browser
// when enabled and the static page is too thin.
func (f *JobPageFetcher) Fetch(ctx context.Context, pageURL string) (Posting, error) {
	if f == nil {
		return Posting{}, fmt.Errorf("nil fetcher")
	}
	pageURL = strings.TrimSpace(pageURL)
	u, err := url.Parse(pageURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Posting{}, fmt.Errorf("%w: %q", ErrInvalidURL, pageURL)
	}

	p, err := f.fetchStatic(ctx, pageURL)
	if err == nil && len(p.Description) >= minPostingChars {
		return p, nil
	}
	if !f.headless {
		if err != nil {
			return Posting{}, err
		}
		if strings.TrimSpace(p.Description) == "" {
			return Posting{}, ErrEmptyPosting
		}
		return p, nil
	}

	f.logger.Printf("[Fetch] static page too thin, rendering headless url=%s static_err=%v", pageURL, err)
	html, herr := f.render(ctx, pageURL, f.timeout)
	if herr != nil {
		if err != nil {
			return Posting{}, fmt.Errorf("static: %v; headless: %w", err, herr)
		}
		return Posting{}, herr
	}
	hp, perr := parsePosting(pageURL, html)
	if perr != nil {
		return Posting{}, perr
	}
	hp.Headless = true
	if strings.TrimSpace(hp.Description) == "" {
		return Posting{}, ErrEmptyPosting
	}
	return hp, nil
}

// FetchJob turns a posting into a Job whose required skills are the
// taxonomy skills mentioned in it.
func (f *JobPageFetcher) FetchJob(ctx context.Context, pageURL string, skills SkillFinder) (job.Job, error) {
	p, err := f.Fetch(ctx, pageURL)
	if err != nil {
		return job.Job{}, err
	}
	required := []string{}
	if skills != nil {
		required = skills.Extract(p.Title + "\n" + p.Description).Sorted()
	}
	return job.Job{
		Role:        p.Title,
		Description: p.Description,
		Skills:      required,
		SourceURL:   p.URL,
	}, nil
}

func (f *JobPageFetcher) fetchStatic(ctx context.Context, pageURL string) (Posting, error) {
	allowed := hostFromURL(pageURL)
	var c *colly.Collector
	if allowed == "" {
		c = colly.NewCollector()
	} else {
		c = colly.NewCollector(colly.AllowedDomains(allowed))
	}
	c.SetRequestTimeout(f.timeout)

	var body []byte
	var reqErr error

	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
			return
		}
		for k, v := range httpHeaders() {
			r.Headers.Set(k, v)
		}
	})

	c.OnResponse(func(r *colly.Response) {
		body = r.Body
	})

	c.OnError(func(r *colly.Response, err error) {
		reqErr = err
	})

	if err := ctx.Err(); err != nil {
		return Posting{}, err
	}
	if err := c.Visit(pageURL); err != nil {
		return Posting{}, err
	}
	c.Wait()
	if reqErr != nil {
		return Posting{}, reqErr
	}
	if err := ctx.Err(); err != nil {
		return Posting{}, err
	}
	return parsePosting(pageURL, string(body))
}

var (
	noiseSelectors = []string{
		"script", "style", "noscript", "iframe", "svg",
		"header", "footer", "nav", "aside",
		".cookie-banner", "[role=navigation]", "[role=banner]", "[role=contentinfo]",
	}
	contentSelectors = []string{
		".job-description", "#job-description", "[data-testid='job-description']",
		".job-details", ".posting-content", "main", "article", "#content", ".content",
	}
	spaceRe = regexp.MustCompile(`\s+`)
)

func parsePosting(pageURL, html string) (Posting, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Posting{}, fmt.Errorf("parse html: %w", err)
	}

	title := strings.TrimSpace(doc.Find("h1").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	if title == "" {
		title, _ = doc.Find("meta[property='og:title']").Attr("content")
	}

	doc.Find(strings.Join(noiseSelectors, ", ")).Remove()

	var content *goquery.Selection
	for _, sel := range contentSelectors {
		if s := doc.Find(sel); s.Length() > 0 {
			content = s.First()
			break
		}
	}
	if content == nil {
		content = doc.Find("body")
	}

	text := strings.TrimSpace(spaceRe.ReplaceAllString(content.Text(), " "))
	if r := []rune(text); len(r) > maxPostingChars {
		text = string(r[:maxPostingChars])
	}

	return Posting{
		URL:         pageURL,
		Title:       spaceRe.ReplaceAllString(strings.TrimSpace(title), " "),
		Description: text,
	}, nil
}

func httpHeaders() map[string]string {
	return map[string]string{
		"User-Agent":      "SkillBridgeFetcher/0.1",
		"Accept-Language": "en-US,en;q=0.9",
	}
}

func hostFromURL(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	host := u.Host
	if host == "" {
		return ""
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return host
}
