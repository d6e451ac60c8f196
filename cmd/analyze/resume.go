package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"skillbridge/internal/app"
	"skillbridge/internal/config"
	"skillbridge/internal/domain/job"
	"skillbridge/internal/extract"
	"skillbridge/internal/report"
	"skillbridge/internal/scraper"
	"skillbridge/internal/usecase"
	"skillbridge/internal/worker"

	"github.com/spf13/cobra"
)

var resumeCmd = &cobra.Command{
	Use:   "resume <path>",
	Short: "Analyze a résumé file (pdf, docx or txt)",
	Args:  cobra.ExactArgs(1),
	RunE:  runResume,
}

var (
	jobID      int64
	jobURL     string
	allJobs    bool
	headless   bool
	xlsxPath   string
	noCache    bool
	rankWorker int
)

func init() {
	resumeCmd.Flags().Int64VarP(&jobID, "job", "j", 0, "Catalog job id to match against")
	resumeCmd.Flags().StringVarP(&jobURL, "job-url", "u", "", "Job posting URL to match against")
	resumeCmd.Flags().BoolVarP(&allJobs, "all", "a", false, "Rank the résumé against every catalog job")
	resumeCmd.Flags().BoolVar(&headless, "headless", false, "Render thin posting pages with a headless browser")
	resumeCmd.Flags().StringVarP(&xlsxPath, "xlsx", "x", "", "Also write an xlsx report to this path")
	resumeCmd.Flags().BoolVar(&noCache, "no-cache", false, "Do not read or write the result cache")
	resumeCmd.Flags().IntVar(&rankWorker, "workers", 4, "Concurrent analyses when ranking with --all")

	rootCmd.AddCommand(resumeCmd)
}

func runResume(cmd *cobra.Command, args []string) error {
	if err := checkTarget(jobID, jobURL, allJobs); err != nil {
		return err
	}

	cfg, err := config.LoadCLI()
	if err != nil {
		return err
	}
	logger := log.New(cmd.ErrOrStderr(), "", log.LstdFlags)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	c, err := app.NewContainer(ctx, cfg, app.Options{Logger: logger, SkipCache: noCache})
	if err != nil {
		return err
	}
	defer c.Close()

	path := args[0]
	var results []usecase.AnalysisResult
	switch {
	case allJobs:
		results, err = rankAll(ctx, c, path, rankWorker)
	case jobURL != "":
		var res usecase.AnalysisResult
		res, err = analyzeURL(ctx, c, path, logger)
		results = []usecase.AnalysisResult{res}
	default:
		var res usecase.AnalysisResult
		res, err = c.Analysis.Analyze(ctx, usecase.AnalysisInput{JobID: jobID, Path: path, Filename: filepath.Base(path)})
		results = []usecase.AnalysisResult{res}
	}
	if err != nil {
		return err
	}

	if err := writeJSON(cmd.OutOrStdout(), results, allJobs); err != nil {
		return err
	}
	if xlsxPath != "" {
		out, err := report.SaveXLSX(xlsxPath, results)
		if err != nil {
			return fmt.Errorf("write xlsx report: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Report written to %s\n", out)
	}
	return nil
}

func checkTarget(id int64, url string, all bool) error {
	n := 0
	if id != 0 {
		n++
	}
	if url != "" {
		n++
	}
	if all {
		n++
	}
	switch {
	case n == 0:
		return fmt.Errorf("one of --job, --job-url or --all must be provided")
	case n > 1:
		return fmt.Errorf("--job, --job-url and --all are mutually exclusive")
	case id < 0:
		return fmt.Errorf("--job must be a positive id")
	}
	return nil
}

func analyzeURL(ctx context.Context, c *app.Container, path string, logger *log.Logger) (usecase.AnalysisResult, error) {
	f := scraper.NewJobPageFetcher(scraper.FetcherOptions{
		Headless: headless,
		Timeout:  c.Config.App.RequestTimeout,
		Logger:   logger,
	})
	j, err := f.FetchJob(ctx, jobURL, c.Skills)
	if err != nil {
		return usecase.AnalysisResult{}, err
	}
	return c.Analysis.AnalyzeAgainst(ctx, j, path, filepath.Base(path))
}

// rankAll extracts the résumé once and scores it against every catalog job
// on a worker pool. Results are ordered by match score, best first.
func rankAll(ctx context.Context, c *app.Container, path string, workers int) ([]usecase.AnalysisResult, error) {
	kind, err := extract.KindFromName(path)
	if err != nil {
		return nil, err
	}
	raw, err := c.Extractor.Extract(ctx, path, kind)
	if err != nil {
		return nil, err
	}

	jobs, err := catalog(ctx, c)
	if err != nil {
		return nil, err
	}

	pool := worker.NewPool(workers, len(jobs))
	results := pool.Run(ctx)

	var (
		mu  sync.Mutex
		out = make([]usecase.AnalysisResult, 0, len(jobs))
	)
	for _, j := range jobs {
		j := j
		pool.Submit(ctx, func(ctx context.Context) error {
			res, err := c.Analysis.AnalyzeText(ctx, j, raw)
			if err != nil {
				return fmt.Errorf("job %d: %w", j.ID, err)
			}
			mu.Lock()
			out = append(out, res)
			mu.Unlock()
			return nil
		})
	}
	pool.Close()

	var firstErr error
	for r := range results {
		if r.Err != nil && firstErr == nil {
			firstErr = r.Err
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}

	sort.SliceStable(out, func(a, b int) bool {
		if out[a].MatchScore != out[b].MatchScore {
			return out[a].MatchScore > out[b].MatchScore
		}
		return out[a].JobID < out[b].JobID
	})
	return out, nil
}

const catalogPage = 100

func catalog(ctx context.Context, c *app.Container) ([]job.Job, error) {
	var all []job.Job
	for offset := 0; ; offset += catalogPage {
		page, err := c.JobList.ListJobs(ctx, usecase.JobListParams{Limit: catalogPage, Offset: offset})
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < catalogPage {
			return all, nil
		}
	}
}

type rankedOutput struct {
	GeneratedAt string                   `json:"generatedAt"`
	Results     []usecase.AnalysisResult `json:"results"`
}

func writeJSON(w io.Writer, results []usecase.AnalysisResult, ranked bool) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if ranked {
		return enc.Encode(rankedOutput{GeneratedAt: time.Now().UTC().Format(time.RFC3339), Results: results})
	}
	if len(results) == 0 {
		return enc.Encode(nil)
	}
	return enc.Encode(results[0])
}
