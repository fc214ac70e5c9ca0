// internal/pkg/config/config.go
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	// Application
	App AppConfig

	// Sync layer
	Sync SyncConfig

	// Backend variants
	Raw        RawConfig
	KeyValue   KeyValueConfig
	GitContent GitContentConfig
	S3         S3Config

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Secrets
	Secrets SecretsConfig

	// Security
	Security SecurityConfig

	// Server
	Server ServerConfig
}

// AppConfig holds application-specific configuration
type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Version     string
	LogLevel    string
	LogFormat   string // json, text
	Debug       bool
}

// SyncConfig selects and tunes the storage backend.
type SyncConfig struct {
	// BackendKind is one of: raw, keyvalue, gitcontent, s3, pgdoc, none
	BackendKind  string
	CallTimeout  time.Duration
	CacheEnabled bool
	CacheSlot    string
	FallbackURL  string
}

// RawConfig holds the read-only raw URL backend configuration
type RawConfig struct {
	URL string
}

// KeyValueConfig holds the hosted key/value bin configuration
type KeyValueConfig struct {
	Endpoint  string
	AccessKey string
}

// GitContentConfig holds the git contents-API backend configuration
type GitContentConfig struct {
	URL           string
	Branch        string
	Token         string
	CommitMessage string
}

// S3Config holds the object-store backend configuration
type S3Config struct {
	Bucket          string
	Key             string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string // For MinIO in development
	UsePathStyle    bool   // For MinIO compatibility
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host              string
	Port              string
	User              string
	Password          string
	Name              string
	SSLMode           string
	Slot              string
	MaxConnections    int32
	MinConnections    int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
	ConnectTimeout    time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host            string
	Port            string
	Password        string
	DB              int
	MaxRetries      int
	MinRetryBackoff time.Duration
	MaxRetryBackoff time.Duration
	DialTimeout     time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	PoolSize        int
	MinIdleConns    int
	PoolTimeout     time.Duration
}

// SecretsConfig points at an external secrets store holding backend
// credentials. Empty name disables the lookup.
type SecretsConfig struct {
	Name   string
	Region string
}

// SecurityConfig holds security configuration
type SecurityConfig struct {
	RateLimitRequests int
	RateLimitDuration time.Duration
	AllowedOrigins    []string
	RequestIDHeader   string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	MaxHeaderBytes  int
	GracefulTimeout time.Duration
}

// Load loads configuration from environment variables
func Load(logger *slog.Logger) (*Config, error) {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	// Load .env file in development
	if env == "development" || env == "local" {
		if err := godotenv.Load(); err != nil {
			logger.Warn("no .env file found, using environment variables",
				slog.String("error", err.Error()))
		} else {
			logger.Info(".env file loaded successfully")
		}
	}

	// Initialize viper
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.SetTypeByDefaultValue(true)

	// Set defaults
	setDefaults()

	// Build config struct
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "stockpile-api"),
			Environment: env,
			Version:     getEnv("APP_VERSION", "dev"),
			LogLevel:    getEnv("LOG_LEVEL", "debug"),
			LogFormat:   getEnv("LOG_FORMAT", "json"),
			Debug:       getBoolEnv("APP_DEBUG", env == "development"),
		},
		Sync: SyncConfig{
			BackendKind:  getEnv("SYNC_BACKEND", "none"),
			CallTimeout:  getDurationEnv("SYNC_CALL_TIMEOUT", 10*time.Second),
			CacheEnabled: getBoolEnv("SYNC_CACHE_ENABLED", true),
			CacheSlot:    getEnv("SYNC_CACHE_SLOT", "default"),
			FallbackURL:  getEnv("SYNC_FALLBACK_URL", ""),
		},
		Raw: RawConfig{
			URL: getEnv("RAW_URL", ""),
		},
		KeyValue: KeyValueConfig{
			Endpoint:  getEnv("KEYVALUE_ENDPOINT", ""),
			AccessKey: getEnv("KEYVALUE_ACCESS_KEY", ""),
		},
		GitContent: GitContentConfig{
			URL:           getEnv("GITCONTENT_URL", ""),
			Branch:        getEnv("GITCONTENT_BRANCH", "main"),
			Token:         getEnv("GITCONTENT_TOKEN", ""),
			CommitMessage: getEnv("GITCONTENT_COMMIT_MESSAGE", "update stock records"),
		},
		S3: S3Config{
			Bucket:          getEnv("AWS_S3_BUCKET", "stockpile-data"),
			Key:             getEnv("AWS_S3_KEY", "stock.json"),
			Region:          getEnv("AWS_REGION", "us-east-1"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			Endpoint:        getEnv("AWS_S3_ENDPOINT", ""),
			UsePathStyle:    getBoolEnv("AWS_S3_PATH_STYLE", env == "development"),
		},
		Database: DatabaseConfig{
			Host:              getEnv("DB_HOST", "localhost"),
			Port:              getEnv("DB_PORT", "5432"),
			User:              getEnv("DB_USER", "stockpile"),
			Password:          getEnv("DB_PASSWORD", ""),
			Name:              getEnv("DB_NAME", "stockpile"),
			SSLMode:           getEnv("DB_SSL_MODE", "disable"),
			Slot:              getEnv("DB_DOCUMENT_SLOT", "default"),
			MaxConnections:    int32(getIntEnv("DB_MAX_CONNECTIONS", 10)),
			MinConnections:    int32(getIntEnv("DB_MIN_CONNECTIONS", 2)),
			MaxConnLifetime:   getDurationEnv("DB_CONNECTION_LIFETIME", time.Hour),
			MaxConnIdleTime:   getDurationEnv("DB_IDLE_TIME", 30*time.Minute),
			HealthCheckPeriod: getDurationEnv("DB_HEALTH_CHECK_PERIOD", time.Minute),
			ConnectTimeout:    getDurationEnv("DB_CONNECT_TIMEOUT", 10*time.Second),
		},
		Redis: RedisConfig{
			Host:            getEnv("REDIS_HOST", "localhost"),
			Port:            getEnv("REDIS_PORT", "6379"),
			Password:        getEnv("REDIS_PASSWORD", ""),
			DB:              getIntEnv("REDIS_DB", 0),
			MaxRetries:      getIntEnv("REDIS_MAX_RETRIES", 3),
			MinRetryBackoff: getDurationEnv("REDIS_MIN_RETRY_BACKOFF", 8*time.Millisecond),
			MaxRetryBackoff: getDurationEnv("REDIS_MAX_RETRY_BACKOFF", 512*time.Millisecond),
			DialTimeout:     getDurationEnv("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:     getDurationEnv("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout:    getDurationEnv("REDIS_WRITE_TIMEOUT", 3*time.Second),
			PoolSize:        getIntEnv("REDIS_POOL_SIZE", 10),
			MinIdleConns:    getIntEnv("REDIS_MIN_IDLE_CONNS", 2),
			PoolTimeout:     getDurationEnv("REDIS_POOL_TIMEOUT", 4*time.Second),
		},
		Secrets: SecretsConfig{
			Name:   getEnv("SECRETS_NAME", ""),
			Region: getEnv("SECRETS_REGION", getEnv("AWS_REGION", "us-east-1")),
		},
		Security: SecurityConfig{
			RateLimitRequests: getIntEnv("RATE_LIMIT_REQUESTS", 100),
			RateLimitDuration: getDurationEnv("RATE_LIMIT_DURATION", time.Minute),
			AllowedOrigins:    getSliceEnv("ALLOWED_ORIGINS", []string{"*"}),
			RequestIDHeader:   getEnv("REQUEST_ID_HEADER", "X-Request-ID"),
		},
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnv("SERVER_PORT", "8080"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getDurationEnv("SERVER_IDLE_TIMEOUT", 60*time.Second),
			MaxHeaderBytes:  getIntEnv("SERVER_MAX_HEADER_BYTES", 1<<20), // 1 MB
			GracefulTimeout: getDurationEnv("SERVER_GRACEFUL_TIMEOUT", 30*time.Second),
		},
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Sync.CallTimeout <= 0 {
		return fmt.Errorf("sync call timeout must be positive")
	}
	if c.Security.RateLimitRequests <= 0 {
		return fmt.Errorf("rate limit requests must be positive")
	}

	switch c.Sync.BackendKind {
	case "none":
	case "raw":
		if c.Raw.URL == "" {
			return fmt.Errorf("RAW_URL is required for the raw backend")
		}
	case "keyvalue":
		if c.KeyValue.Endpoint == "" {
			return fmt.Errorf("KEYVALUE_ENDPOINT is required for the keyvalue backend")
		}
	case "gitcontent":
		if c.GitContent.URL == "" {
			return fmt.Errorf("GITCONTENT_URL is required for the gitcontent backend")
		}
	case "s3":
		if c.S3.Bucket == "" || c.S3.Key == "" {
			return fmt.Errorf("AWS_S3_BUCKET and AWS_S3_KEY are required for the s3 backend")
		}
	case "pgdoc":
		if c.Database.Host == "" || c.Database.Name == "" {
			return fmt.Errorf("DB_HOST and DB_NAME are required for the pgdoc backend")
		}
	default:
		return fmt.Errorf("unknown sync backend %q", c.Sync.BackendKind)
	}

	return nil
}

// GetDatabaseURL returns the formatted database connection string
func (c *Config) GetDatabaseURL() string {
	return fmt.Sprintf(
		"postgresql://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the formatted server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

// GetRedisAddress returns the formatted Redis address
func (c *Config) GetRedisAddress() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// IsProduction returns true if running in production
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// IsDevelopment returns true if running in development
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development" || c.App.Environment == "local"
}

// Helper functions

func setDefaults() {
	viper.SetDefault("app.name", "stockpile-api")
	viper.SetDefault("app.environment", "development")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "json")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		b, err := strconv.ParseBool(value)
		if err == nil {
			return b
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		i, err := strconv.Atoi(value)
		if err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return defaultValue
}

func getSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}
