package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"runtime/debug"
	"strings"
	"time"
	"unicode/utf8"

	"skillbridge/internal/domain/job"
	"skillbridge/internal/domain/matching"
	"skillbridge/internal/domain/recommendation"
	"skillbridge/internal/domain/skill"
	"skillbridge/internal/extract"
	"skillbridge/internal/nlp"
	"skillbridge/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultSummaryLength = 500
	summaryMarker        = "..."
)

type AnalysisInput struct {
	JobID    int64
	Path     string
	Filename string
}

type AnalysisResult struct {
	AnalysisID         string                          `json:"analysisId"`
	JobID              int64                           `json:"jobId"`
	Role               string                          `json:"role"`
	MatchScore         float64                         `json:"matchScore"`
	SkillMatch         float64                         `json:"skillMatch"`
	ExtractedSkills    []string                        `json:"extractedSkills"`
	MatchedSkills      []string                        `json:"matchedSkills"`
	MissingSkills      []string                        `json:"missingSkills"`
	UnrecognizedSkills []string                        `json:"unrecognizedSkills,omitempty"`
	Recommendations    []recommendation.Recommendation `json:"recommendations"`
	Summary            string                          `json:"summary"`
	Cached             bool                            `json:"cached"`
}

type AnalysisEvent struct {
	AnalysisID string
	JobID      int64
	Role       string
	MatchScore float64
	SkillMatch float64
	Missing    int
	At         time.Time
}

type DocumentExtractor interface {
	Extract(ctx context.Context, path string, kind extract.Kind) (string, error)
}

// TextNormalizer turns text into the tokens shared by skill extraction and
// similarity scoring.
type TextNormalizer interface {
	Analyze(text string) []nlp.Token
}

type AnalysisNotifier interface {
	AnalysisCompleted(ctx context.Context, evt AnalysisEvent)
}

type AnalysisUsecase interface {
	Analyze(ctx context.Context, in AnalysisInput) (AnalysisResult, error)
	AnalyzeAgainst(ctx context.Context, j job.Job, path, filename string) (AnalysisResult, error)
}

// AnalysisDeps wires the pipeline. Jobs, Extractor, Normalizer, Skills,
// Gaps and Recommender are required; the rest are optional.
type AnalysisDeps struct {
	Jobs          repository.JobRepository
	Extractor     DocumentExtractor
	Normalizer    TextNormalizer
	Skills        *skill.Extractor
	Gaps          *matching.GapAnalyzer
	Recommender   *recommendation.Engine
	Cache         ResultCache
	CacheTTL      time.Duration
	Notifier      AnalysisNotifier
	Logger        *log.Logger
	SummaryLength int
}

type Analysis struct {
	deps   AnalysisDeps
	logger *log.Logger
}

func NewAnalysisUsecase(deps AnalysisDeps) *Analysis {
	logger := deps.Logger
	if logger == nil {
		logger = log.Default()
	}
	if deps.SummaryLength <= 0 {
		deps.SummaryLength = DefaultSummaryLength
	}
	return &Analysis{deps: deps, logger: logger}
}

// Analyze looks the job up first so an unknown id never pays for
// extraction.
func (u *Analysis) Analyze(ctx context.Context, in AnalysisInput) (AnalysisResult, error) {
	if u == nil || u.deps.Jobs == nil {
		return AnalysisResult{}, fmt.Errorf("%w: analysis usecase not configured", ErrInternal)
	}
	if in.JobID <= 0 {
		return AnalysisResult{}, ErrJobNotFound
	}

	j, err := u.deps.Jobs.FindByID(ctx, in.JobID)
	if err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return AnalysisResult{}, ErrJobNotFound
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return AnalysisResult{}, ctxErr
		}
		u.logger.Printf("pipeline=analysis status=error stage=job_lookup job_id=%d err=%v", in.JobID, err)
		return AnalysisResult{}, fmt.Errorf("%w: find job %d: %w", ErrInternal, in.JobID, err)
	}

	return u.AnalyzeAgainst(ctx, j, in.Path, in.Filename)
}

// AnalyzeAgainst runs the pipeline for a job that does not have to come
// from the catalog, such as one fetched from a posting URL.
func (u *Analysis) AnalyzeAgainst(ctx context.Context, j job.Job, path, filename string) (AnalysisResult, error) {
	if u == nil || u.deps.Extractor == nil {
		return AnalysisResult{}, fmt.Errorf("%w: analysis usecase not configured", ErrInternal)
	}

	kind, err := extract.KindFromName(filename)
	if err != nil {
		return AnalysisResult{}, err
	}

	raw, err := u.deps.Extractor.Extract(ctx, path, kind)
	if err != nil {
		var xe *extract.ExtractionError
		if errors.As(err, &xe) {
			u.logger.Printf("pipeline=analysis status=rejected stage=extract job_id=%d kind=%s err=%v", j.ID, kind, err)
			return AnalysisResult{}, err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return AnalysisResult{}, ctxErr
		}
		u.logger.Printf("pipeline=analysis status=error stage=extract job_id=%d err=%v", j.ID, err)
		return AnalysisResult{}, fmt.Errorf("%w: extract: %w", ErrInternal, err)
	}

	return u.AnalyzeText(ctx, j, raw)
}

// AnalyzeText scores already extracted résumé text against j.
func (u *Analysis) AnalyzeText(ctx context.Context, j job.Job, raw string) (AnalysisResult, error) {
	if u == nil || u.deps.Normalizer == nil || u.deps.Skills == nil || u.deps.Gaps == nil {
		return AnalysisResult{}, fmt.Errorf("%w: analysis usecase not configured", ErrInternal)
	}
	if strings.TrimSpace(raw) == "" {
		return AnalysisResult{}, ErrEmptyDocument
	}

	start := time.Now()
	key := AnalysisCacheKey(j, raw)
	if cached, ok := u.cachedResult(ctx, key); ok {
		cached.AnalysisID = uuid.NewString()
		cached.Cached = true
		u.logger.Printf("pipeline=analysis status=ok cache=hit job_id=%d duration=%s", j.ID, time.Since(start))
		u.notify(ctx, cached)
		return cached, nil
	}

	var (
		doc   nlp.Document
		found skill.Set
		score float64
	)
	err := guard(func() error {
		doc = nlp.NewDocument(raw, u.deps.Normalizer)
		return nil
	})()
	if err == nil {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(guard(func() error {
			found = u.deps.Skills.ExtractDocument(doc)
			return gctx.Err()
		}))
		g.Go(guard(func() error {
			target := nlp.Terms(u.deps.Normalizer.Analyze(j.MatchText()))
			score = matching.Similarity(doc.Tokens(), target)
			return gctx.Err()
		}))
		err = g.Wait()
	}
	if err != nil {
		if errors.Is(err, ErrInternal) {
			u.logger.Printf("pipeline=analysis status=error stage=score job_id=%d err=%v", j.ID, err)
		}
		return AnalysisResult{}, err
	}

	gap := u.deps.Gaps.Detect(found, j.Skills)
	recs := u.deps.Recommender.Recommend(gap.Missing)

	res := AnalysisResult{
		AnalysisID:         uuid.NewString(),
		JobID:              j.ID,
		Role:               j.Role,
		MatchScore:         round2(score * 100),
		SkillMatch:         round2(gap.MatchPercentage),
		ExtractedSkills:    found.Sorted(),
		MatchedSkills:      gap.Matched,
		MissingSkills:      gap.Missing,
		UnrecognizedSkills: gap.Unrecognized,
		Recommendations:    recs,
		Summary:            summarize(raw, u.deps.SummaryLength),
	}

	u.storeResult(ctx, key, res)
	u.logger.Printf(
		"pipeline=analysis status=ok cache=miss job_id=%d extracted=%d matched=%d missing=%d match_score=%.2f duration=%s",
		j.ID, len(res.ExtractedSkills), len(res.MatchedSkills), len(res.MissingSkills), res.MatchScore, time.Since(start),
	)
	u.notify(ctx, res)
	return res, nil
}

func (u *Analysis) cachedResult(ctx context.Context, key string) (AnalysisResult, bool) {
	if u.deps.Cache == nil {
		return AnalysisResult{}, false
	}
	var res AnalysisResult
	hit, err := u.deps.Cache.GetJSON(ctx, key, &res)
	if err != nil {
		u.logger.Printf("pipeline=analysis cache=error op=get key=%s err=%v", key, err)
		return AnalysisResult{}, false
	}
	return res, hit
}

func (u *Analysis) storeResult(ctx context.Context, key string, res AnalysisResult) {
	if u.deps.Cache == nil {
		return
	}
	if err := u.deps.Cache.SetJSON(ctx, key, res, u.deps.CacheTTL); err != nil {
		u.logger.Printf("pipeline=analysis cache=error op=set key=%s err=%v", key, err)
	}
}

func (u *Analysis) notify(ctx context.Context, res AnalysisResult) {
	if u.deps.Notifier == nil {
		return
	}
	u.deps.Notifier.AnalysisCompleted(ctx, AnalysisEvent{
		AnalysisID: res.AnalysisID,
		JobID:      res.JobID,
		Role:       res.Role,
		MatchScore: res.MatchScore,
		SkillMatch: res.SkillMatch,
		Missing:    len(res.MissingSkills),
		At:         time.Now().UTC(),
	})
}

// guard turns a panic inside a pipeline stage into ErrInternal.
func guard(fn func() error) func() error {
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%w: panic: %v\n%s", ErrInternal, r, debug.Stack())
			}
		}()
		return fn()
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func summarize(raw string, n int) string {
	if n <= 0 || utf8.RuneCountInString(raw) <= n {
		return raw + summaryMarker
	}
	runes := []rune(raw)
	return string(runes[:n]) + summaryMarker
}
