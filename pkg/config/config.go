package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	LogLevel   string
	Server     ServerConfig
	Backend    BackendConfig
	Dashboard  DashboardConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	NATS       NATSConfig
	CloudWatch CloudWatchConfig
	S3         S3Config
	Dynamo     DynamoConfig
	Reports    ReportsConfig
	Security   SecurityConfig
	RateLimit  RateLimitConfig
}

type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// BackendConfig points at the uptime monitor that serves /health and /api/history.
type BackendConfig struct {
	BaseURL            string
	Timeout            time.Duration
	StatusPollInterval time.Duration
}

type DashboardConfig struct {
	AlertLimit     int
	HighlightTTL   time.Duration
	SessionIdleTTL time.Duration
	SitesFile      string
}

type DatabaseConfig struct {
	Enabled         bool
	Host            string
	Port            string
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
	TTL      time.Duration
	PoolSize int
}

type NATSConfig struct {
	Enabled bool
	URL     string
}

type CloudWatchConfig struct {
	MetricsEnabled  bool
	LogsEnabled     bool
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string

	MetricsNamespace         string
	MetricsDimensions        map[string]string
	MetricsBufferSize        int
	MetricsFlushInterval     time.Duration
	MetricsStorageResolution int32

	LogGroupName      string
	LogStreamName     string
	LogsBufferSize    int
	LogsFlushInterval time.Duration
}

type S3Config struct {
	Enabled         bool
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
	KeyPrefix       string
	URLMode         string
	PresignedTTL    time.Duration
}

type DynamoConfig struct {
	Enabled         bool
	TableReports    string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	StrongReads     bool
}

type ReportsConfig struct {
	RetentionDays        int
	MetadataFallbackToS3 bool
}

type SecurityConfig struct {
	AllowedOrigins []string
	AuthEnabled    bool
	AuthToken      string
}

type RateLimitConfig struct {
	Enabled bool
	RPS     float64
	Burst   int
}

// env collects parse errors so Load can report every bad variable at once.
type env struct {
	errs []error
}

func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	e := &env{}

	cfg := &Config{
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "8080"),
			ReadTimeout:     e.duration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    e.duration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:     e.duration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: e.duration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Backend: BackendConfig{
			BaseURL:            strings.TrimRight(getEnv("BACKEND_BASE_URL", "http://localhost:5000"), "/"),
			Timeout:            e.duration("BACKEND_TIMEOUT", 0),
			StatusPollInterval: e.duration("STATUS_POLL_INTERVAL", 30*time.Second),
		},
		Dashboard: DashboardConfig{
			AlertLimit:     e.integer("DASHBOARD_ALERT_LIMIT", 30),
			HighlightTTL:   e.duration("DASHBOARD_HIGHLIGHT_TTL", 3*time.Second),
			SessionIdleTTL: e.duration("DASHBOARD_SESSION_IDLE_TTL", 2*time.Hour),
			SitesFile:      getEnv("DASHBOARD_SITES_FILE", ""),
		},
		Database: DatabaseConfig{
			Enabled:         getEnvBool("DB_ENABLED", false),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			Database:        getEnv("DB_NAME", "uptime"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:    e.integer("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    e.integer("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: 5 * time.Minute,
			ConnMaxIdleTime: 10 * time.Minute,
		},
		Redis: RedisConfig{
			Enabled:  getEnvBool("REDIS_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       e.integer("REDIS_DB", 0),
			TTL:      e.duration("REDIS_HISTORY_TTL", time.Minute),
			PoolSize: e.integer("REDIS_POOL_SIZE", 10),
		},
		NATS: NATSConfig{
			Enabled: getEnvBool("NATS_ENABLED", false),
			URL:     getEnv("NATS_URL", "nats://localhost:4222"),
		},
		CloudWatch: CloudWatchConfig{
			MetricsEnabled:           getEnvBool("CLOUDWATCH_METRICS_ENABLED", false),
			LogsEnabled:              getEnvBool("CLOUDWATCH_LOGS_ENABLED", false),
			Region:                   getEnv("CLOUDWATCH_REGION", "us-east-1"),
			Endpoint:                 getEnv("CLOUDWATCH_ENDPOINT", ""),
			AccessKeyID:              getEnv("CLOUDWATCH_ACCESS_KEY_ID", ""),
			SecretAccessKey:          getEnv("CLOUDWATCH_SECRET_ACCESS_KEY", ""),
			MetricsNamespace:         getEnv("CLOUDWATCH_METRICS_NAMESPACE", "UptimeDashboard"),
			MetricsDimensions:        e.keyValues("CLOUDWATCH_METRICS_DIMENSIONS"),
			MetricsBufferSize:        e.integer("CLOUDWATCH_METRICS_BUFFER_SIZE", 100),
			MetricsFlushInterval:     e.duration("CLOUDWATCH_METRICS_FLUSH_INTERVAL", 10*time.Second),
			MetricsStorageResolution: int32(e.integer("CLOUDWATCH_METRICS_STORAGE_RESOLUTION", 60)),
			LogGroupName:             getEnv("CLOUDWATCH_LOG_GROUP", "/uptime-dashboard/api"),
			LogStreamName:            getEnv("CLOUDWATCH_LOG_STREAM", hostname()),
			LogsBufferSize:           e.integer("CLOUDWATCH_LOGS_BUFFER_SIZE", 50),
			LogsFlushInterval:        e.duration("CLOUDWATCH_LOGS_FLUSH_INTERVAL", 5*time.Second),
		},
		S3: S3Config{
			Enabled:         getEnvBool("S3_ENABLED", false),
			Bucket:          getEnv("S3_BUCKET", ""),
			Region:          getEnv("S3_REGION", "us-east-1"),
			Endpoint:        getEnv("S3_ENDPOINT", ""),
			AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
			UsePathStyle:    getEnvBool("S3_USE_PATH_STYLE", false),
			KeyPrefix:       getEnv("S3_KEY_PREFIX", "reports"),
			URLMode:         getEnv("S3_URL_MODE", "presigned"),
			PresignedTTL:    e.duration("S3_PRESIGNED_TTL", 15*time.Minute),
		},
		Dynamo: DynamoConfig{
			Enabled:         getEnvBool("DYNAMODB_ENABLED", false),
			TableReports:    getEnv("DYNAMODB_TABLE_REPORTS", "dashboard_reports"),
			Region:          getEnv("DYNAMODB_REGION", "us-east-1"),
			Endpoint:        getEnv("DYNAMODB_ENDPOINT", ""),
			AccessKeyID:     getEnv("DYNAMODB_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("DYNAMODB_SECRET_ACCESS_KEY", ""),
			StrongReads:     getEnvBool("DYNAMODB_STRONG_READS", false),
		},
		Reports: ReportsConfig{
			RetentionDays:        e.integer("REPORTS_RETENTION_DAYS", 30),
			MetadataFallbackToS3: getEnvBool("REPORTS_METADATA_FALLBACK_TO_S3", true),
		},
		Security: SecurityConfig{
			AllowedOrigins: splitCSV(getEnv("ALLOWED_ORIGINS", "http://localhost:8080,http://127.0.0.1:8080")),
			AuthEnabled:    getEnvBool("AUTH_ENABLED", false),
			AuthToken:      strings.TrimSpace(getEnv("AUTH_BEARER_TOKEN", "")),
		},
		RateLimit: RateLimitConfig{
			Enabled: getEnvBool("RATE_LIMIT_ENABLED", true),
			RPS:     e.float("RATE_LIMIT_RPS", 20),
			Burst:   e.integer("RATE_LIMIT_BURST", 40),
		},
	}

	if err := errors.Join(e.errs...); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field requirements.
func (c *Config) Validate() error {
	var errs []error
	if c.Backend.BaseURL == "" {
		errs = append(errs, fmt.Errorf("BACKEND_BASE_URL is required"))
	}
	if c.Backend.Timeout < 0 {
		errs = append(errs, fmt.Errorf("BACKEND_TIMEOUT must not be negative"))
	}
	if c.Backend.StatusPollInterval <= 0 {
		errs = append(errs, fmt.Errorf("STATUS_POLL_INTERVAL must be positive"))
	}
	if c.Dashboard.AlertLimit <= 0 {
		errs = append(errs, fmt.Errorf("DASHBOARD_ALERT_LIMIT must be positive"))
	}
	if c.Security.AuthEnabled && c.Security.AuthToken == "" {
		errs = append(errs, fmt.Errorf("AUTH_BEARER_TOKEN is required when AUTH_ENABLED=true"))
	}
	if c.S3.Enabled && c.S3.Bucket == "" {
		errs = append(errs, fmt.Errorf("S3_BUCKET is required when S3_ENABLED=true"))
	}
	if c.Dynamo.Enabled && !c.S3.Enabled {
		errs = append(errs, fmt.Errorf("DYNAMODB_ENABLED requires S3_ENABLED"))
	}
	if c.RateLimit.Enabled && c.RateLimit.RPS <= 0 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_RPS must be positive"))
	}
	return errors.Join(errs...)
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}

	return parsed
}

func (e *env) integer(key string, defaultValue int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("invalid %s: %w", key, err))
		return defaultValue
	}
	return parsed
}

func (e *env) float(key string, defaultValue float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("invalid %s: %w", key, err))
		return defaultValue
	}
	return parsed
}

func (e *env) duration(key string, defaultValue time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("invalid %s: %w", key, err))
		return defaultValue
	}
	return parsed
}

// keyValues parses "k1=v1,k2=v2".
func (e *env) keyValues(key string) map[string]string {
	out := make(map[string]string)
	for _, pair := range splitCSV(os.Getenv(key)) {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || k == "" {
			e.errs = append(e.errs, fmt.Errorf("invalid %s: %q is not key=value", key, pair))
			continue
		}
		out[k] = v
	}
	return out
}

func splitCSV(raw string) []string {
	items := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

func hostname() string {
	name, err := os.Hostname()
	if err != nil || name == "" {
		return "uptime-dashboard"
	}
	return name
}
