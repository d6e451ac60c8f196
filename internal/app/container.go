package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"skillbridge/internal/config"
	"skillbridge/internal/database"
	dbpostgres "skillbridge/internal/database/postgres"
	dbsqlite "skillbridge/internal/database/sqlite"
	"skillbridge/internal/domain/matching"
	"skillbridge/internal/domain/recommendation"
	"skillbridge/internal/domain/skill"
	"skillbridge/internal/extract"
	"skillbridge/internal/infrastructure/cache"
	"skillbridge/internal/nlp"
	"skillbridge/internal/repository"
	"skillbridge/internal/usecase"
)

const connectTimeout = 10 * time.Second

// Options tunes what NewContainer builds beyond the core pipeline.
type Options struct {
	Logger *log.Logger
	// Notifier receives analysis-completed events. Optional.
	Notifier usecase.AnalysisNotifier
	// SkipCache leaves the result cache out even when REDIS_ADDR is set.
	SkipCache bool
}

// Container owns the long-lived dependencies shared by the server, the
// worker and the CLI.
type Container struct {
	Config config.Config
	Logger *log.Logger

	DB    database.DB
	Cache *cache.Redis

	Jobs        repository.JobRepository
	Extractor   *extract.Extractor
	Normalizer  *nlp.Normalizer
	Taxonomy    *skill.Taxonomy
	Skills      *skill.Extractor
	Recommender *recommendation.Engine

	Analysis *usecase.Analysis
	JobList  *usecase.Jobs
}

func NewContainer(ctx context.Context, cfg config.Config, opts Options) (*Container, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	c := &Container{Config: cfg, Logger: logger}

	if err := c.openCatalog(ctx); err != nil {
		return nil, err
	}

	c.Normalizer = nlp.NewNormalizer()
	tax, err := loadTaxonomy(cfg.Analysis.TaxonomyPath, c.Normalizer)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	c.Taxonomy = tax
	c.Skills = skill.NewExtractor(tax)

	rec, err := loadRecommender(cfg.Analysis.ResourcesPath)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	c.Recommender = rec

	c.Extractor = extract.NewExtractor(int64(cfg.App.MaxUploadBytes))
	deps := usecase.AnalysisDeps{
		Jobs:          c.Jobs,
		Extractor:     c.Extractor,
		Normalizer:    c.Normalizer,
		Skills:        c.Skills,
		Gaps:          matching.NewGapAnalyzer(tax),
		Recommender:   rec,
		CacheTTL:      cfg.Redis.TTL,
		Notifier:      opts.Notifier,
		Logger:        logger,
		SummaryLength: cfg.Analysis.SummaryLength,
	}
	if !opts.SkipCache {
		c.Cache = cache.NewRedis(cfg.Redis, logger)
		if c.Cache.Available() {
			deps.Cache = c.Cache
		}
	}

	c.Analysis = usecase.NewAnalysisUsecase(deps)
	c.JobList = usecase.NewJobUsecase(c.Jobs, logger)

	logger.Printf("container=ready catalog=%s taxonomy_skills=%d cache=%t", catalogName(cfg.Database.Driver), tax.Len(), deps.Cache != nil)
	return c, nil
}

func (c *Container) openCatalog(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	switch c.Config.Database.Driver {
	case config.DriverPostgres:
		db, err := dbpostgres.Connect(ctx, c.Config.Database)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		c.DB = db
		c.Jobs = repository.NewPostgresJobRepository(db)
	case config.DriverSQLite:
		db, err := dbsqlite.Open(ctx, c.Config.Database.SQLitePath, true)
		if err != nil {
			return fmt.Errorf("open sqlite: %w", err)
		}
		c.DB = db
		c.Jobs = repository.NewSQLiteJobRepository(db)
	default:
		repo, err := memoryCatalog(c.Config.Database.CatalogPath)
		if err != nil {
			return err
		}
		c.Jobs = repo
	}
	return nil
}

func memoryCatalog(path string) (*repository.MemoryJobRepository, error) {
	if path == "" {
		return repository.NewDefaultJobRepository()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	jobs, err := repository.ParseCatalog(b)
	if err != nil {
		return nil, err
	}
	return repository.NewMemoryJobRepository(jobs)
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	var firstErr error
	if c.Cache != nil {
		if err := c.Cache.Close(); err != nil {
			firstErr = err
		}
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func loadTaxonomy(path string, n skill.TextNormalizer) (*skill.Taxonomy, error) {
	if path == "" {
		return skill.DefaultTaxonomy(n)
	}
	return skill.LoadTaxonomyFile(path, n)
}

func loadRecommender(path string) (*recommendation.Engine, error) {
	if path == "" {
		return recommendation.DefaultEngine()
	}
	return recommendation.LoadEngineFile(path)
}

func catalogName(driver string) string {
	if driver == config.DriverMemory {
		return "embedded"
	}
	return driver
}
