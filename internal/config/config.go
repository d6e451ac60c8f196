package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Analysis AnalysisConfig
	Storage  StorageConfig
	Queue    QueueConfig
}

type AppConfig struct {
	AppName        string
	Environment    string
	HTTPPort       string
	RequestTimeout time.Duration
	UploadDir      string
	MaxUploadBytes int
}

// DatabaseConfig selects the job catalog backend. An empty Driver uses the
// embedded catalog.
type DatabaseConfig struct {
	Driver     string
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string
	SQLitePath string
	// CatalogPath replaces the embedded catalog when Driver is empty.
	CatalogPath string

	ConnectTimeout        time.Duration
	PoolMaxConns          int32
	PoolMinConns          int32
	PoolMaxConnLifetime   time.Duration
	PoolMaxConnIdleTime   time.Duration
	PoolHealthCheckPeriod time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

type AnalysisConfig struct {
	TaxonomyPath  string
	ResourcesPath string
	SummaryLength int
}

type StorageConfig struct {
	Endpoint  string
	AccountID string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
}

type QueueConfig struct {
	URL          string
	RequestQueue string
	Exchange     string
	Workers      int
	// RateLimit caps analyses started per second by the worker. 0 means no
	// limit.
	RateLimit int
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = ""
)

var errMissingRequiredEnv = errors.New("missing required environment variables")
var errInvalidEnv = errors.New("invalid environment variables")

func Load() (Config, error) {
	return load(nil)
}

// LoadCLI is Load for command-line tools, where APP_NAME and APP_ENV are
// optional.
func LoadCLI() (Config, error) {
	return load(map[string]string{
		"APP_NAME": "skillbridge-cli",
		"APP_ENV":  "local",
	})
}

func load(defaults map[string]string) (Config, error) {
	cfg := Config{}

	var missing []string
	var invalid []string
	req := func(key string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			v = defaults[key]
		}
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}
	opt := func(key string) string {
		return strings.TrimSpace(os.Getenv(key))
	}
	optInt := func(key string, def int) int {
		raw := opt(key)
		if raw == "" {
			return def
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			invalid = append(invalid, key)
			return def
		}
		return v
	}
	optSeconds := func(key string, def time.Duration) time.Duration {
		raw := opt(key)
		if raw == "" {
			return def
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			invalid = append(invalid, key)
			return def
		}
		return time.Duration(v) * time.Second
	}

	cfg.App = AppConfig{
		AppName:        req("APP_NAME"),
		Environment:    req("APP_ENV"),
		HTTPPort:       opt("HTTP_PORT"),
		RequestTimeout: optSeconds("HTTP_REQUEST_TIMEOUT", 30*time.Second),
		UploadDir:      opt("UPLOAD_DIR"),
		MaxUploadBytes: optInt("MAX_UPLOAD_BYTES", 10<<20),
	}
	if cfg.App.HTTPPort == "" {
		cfg.App.HTTPPort = "8080"
	}
	if cfg.App.UploadDir == "" {
		cfg.App.UploadDir = os.TempDir()
	}

	cfg.Database = DatabaseConfig{
		Driver:     strings.ToLower(opt("DB_DRIVER")),
		DBHost:     opt("DB_HOST"),
		DBPort:     opt("DB_PORT"),
		DBName:     opt("DB_NAME"),
		DBUser:     opt("DB_USER"),
		DBPassword: opt("DB_PASSWORD"),
		DBSSLMode:  opt("DB_SSL_MODE"),
		SQLitePath: opt("SQLITE_PATH"),

		CatalogPath: opt("CATALOG_PATH"),

		ConnectTimeout:        optSeconds("DB_CONNECT_TIMEOUT", 5*time.Second),
		PoolMaxConns:          int32(optInt("DB_POOL_MAX_CONNS", 0)),
		PoolMinConns:          int32(optInt("DB_POOL_MIN_CONNS", 0)),
		PoolMaxConnLifetime:   optSeconds("DB_POOL_MAX_CONN_LIFETIME", 0),
		PoolMaxConnIdleTime:   optSeconds("DB_POOL_MAX_CONN_IDLE_TIME", 0),
		PoolHealthCheckPeriod: optSeconds("DB_POOL_HEALTH_CHECK_PERIOD", 0),
	}
	switch cfg.Database.Driver {
	case DriverPostgres:
		for _, key := range []string{"DB_HOST", "DB_PORT", "DB_NAME", "DB_USER"} {
			req(key)
		}
		if cfg.Database.DBSSLMode == "" {
			cfg.Database.DBSSLMode = "disable"
		}
	case DriverSQLite:
		cfg.Database.SQLitePath = req("SQLITE_PATH")
	case DriverMemory:
	default:
		invalid = append(invalid, "DB_DRIVER")
	}

	cfg.Redis = RedisConfig{
		Addr:     opt("REDIS_ADDR"),
		Password: opt("REDIS_PASSWORD"),
		DB:       optInt("REDIS_DB", 0),
		TTL:      optSeconds("REDIS_TTL", 600*time.Second),
	}

	cfg.Analysis = AnalysisConfig{
		TaxonomyPath:  opt("TAXONOMY_PATH"),
		ResourcesPath: opt("RESOURCES_PATH"),
		SummaryLength: optInt("SUMMARY_LENGTH", 500),
	}

	cfg.Storage = StorageConfig{
		Endpoint:  opt("STORAGE_ENDPOINT"),
		AccountID: opt("R2_ACCOUNT_ID"),
		Region:    opt("STORAGE_REGION"),
		Bucket:    opt("STORAGE_BUCKET"),
		AccessKey: opt("STORAGE_ACCESS_KEY"),
		SecretKey: opt("STORAGE_SECRET_KEY"),
	}
	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "auto"
	}

	cfg.Queue = QueueConfig{
		URL:          opt("RABBITMQ_URL"),
		RequestQueue: opt("ANALYSIS_QUEUE"),
		Exchange:     opt("ANALYSIS_EXCHANGE"),
		Workers:      optInt("ANALYSIS_WORKERS", 4),
		RateLimit:    optInt("WORKER_RATE_LIMIT", 0),
	}
	if cfg.Queue.RequestQueue == "" {
		cfg.Queue.RequestQueue = "analysis_requests"
	}
	if cfg.Queue.Exchange == "" {
		cfg.Queue.Exchange = "analysis_updates"
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errMissingRequiredEnv, strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errInvalidEnv, strings.Join(invalid, ", "))
	}

	return cfg, nil
}

// RequireStorage reports the storage and queue settings the worker cannot run without.
func (c Config) RequireStorage() error {
	var missing []string
	if c.Storage.Bucket == "" {
		missing = append(missing, "STORAGE_BUCKET")
	}
	if c.Storage.AccessKey == "" {
		missing = append(missing, "STORAGE_ACCESS_KEY")
	}
	if c.Storage.SecretKey == "" {
		missing = append(missing, "STORAGE_SECRET_KEY")
	}
	if c.Storage.Endpoint == "" && c.Storage.AccountID == "" {
		missing = append(missing, "STORAGE_ENDPOINT")
	}
	if c.Queue.URL == "" {
		missing = append(missing, "RABBITMQ_URL")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", errMissingRequiredEnv, strings.Join(missing, ", "))
	}
	return nil
}
