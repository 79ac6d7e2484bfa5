package config

import (
	"fmt"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	// Environment
	Environment string `mapstructure:"ENV"`

	Database DatabaseConfig
	Cache    CacheConfig
	Queue    QueueConfig
	Storage  StorageConfig
	Refinery RefineryConfig
	Metrics  MetricsConfig
}

// DatabaseConfig holds PostgreSQL connection settings for run tracking
type DatabaseConfig struct {
	Host            string `mapstructure:"DB_HOST"`
	Port            int    `mapstructure:"DB_PORT"`
	User            string `mapstructure:"DB_USER"`
	Password        string `mapstructure:"DB_PASSWORD"`
	Database        string `mapstructure:"DB_NAME"`
	SSLMode         string `mapstructure:"DB_SSLMODE"`
	LogLevel        string `mapstructure:"DB_LOG_LEVEL"`
	MaxConnections  int    `mapstructure:"DB_MAX_CONNECTIONS"`
	MinConnections  int    `mapstructure:"DB_MIN_CONNECTIONS"`
	MaxConnLifetime int    `mapstructure:"DB_MAX_CONN_LIFETIME_MINUTES"`
	MaxConnIdleTime int    `mapstructure:"DB_MAX_CONN_IDLE_MINUTES"`
}

// CacheConfig holds Redis settings for the clean-text cache
type CacheConfig struct {
	Enabled      bool   `mapstructure:"CLEAN_CACHE_ENABLED"`
	TTLHours     int    `mapstructure:"CLEAN_CACHE_TTL_HOURS"`
	Host         string `mapstructure:"REDIS_HOST"`
	Port         int    `mapstructure:"REDIS_PORT"`
	Password     string `mapstructure:"REDIS_PASSWORD"`
	DB           int    `mapstructure:"REDIS_DB"`
	DialTimeout  int    `mapstructure:"REDIS_DIAL_TIMEOUT"`
	ReadTimeout  int    `mapstructure:"REDIS_READ_TIMEOUT"`
	WriteTimeout int    `mapstructure:"REDIS_WRITE_TIMEOUT"`
	PoolSize     int    `mapstructure:"REDIS_POOL_SIZE"`
	MinIdleConns int    `mapstructure:"REDIS_MIN_IDLE_CONNS"`
}

// QueueConfig holds asynq settings; the queue shares the Redis server with the cache
type QueueConfig struct {
	RedisHost      string
	RedisPort      int
	RedisPassword  string
	RedisDB        int
	DialTimeout    int
	ReadTimeout    int
	WriteTimeout   int
	Concurrency    int  `mapstructure:"WORKER_CONCURRENCY"`
	MaxRetries     int  `mapstructure:"WORKER_MAX_RETRIES"`
	StrictPriority bool `mapstructure:"WORKER_STRICT_PRIORITY"`
}

// StorageConfig holds local run storage settings
type StorageConfig struct {
	BasePath      string `mapstructure:"STORAGE_BASE_PATH"`
	MaxFileSizeMB int64  `mapstructure:"MAX_FILE_SIZE_MB"`
}

// RefineryConfig selects the cleaning refinery and its stopword corpus
type RefineryConfig struct {
	Version           string `mapstructure:"REFINERY_VERSION"`
	Workers           int    `mapstructure:"REFINERY_WORKERS"`
	StopwordsLanguage string `mapstructure:"STOPWORDS_LANGUAGE"`
	StopwordsDir      string `mapstructure:"STOPWORDS_DIR"`
}

// MetricsConfig holds the Prometheus endpoint settings
type MetricsConfig struct {
	Port int `mapstructure:"METRICS_PORT"`
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Load .env file if exists
	if err := godotenv.Load(".env"); err != nil {
		if err := godotenv.Load("../.env"); err != nil {
			slog.Debug("no .env file found, using environment variables only")
		}
	}

	v := viper.New()
	setDefaults(v)

	// Bind environment variables
	v.AutomaticEnv()

	config := &Config{
		Environment: v.GetString("ENV"),
	}

	config.Database = DatabaseConfig{
		Host:            v.GetString("DB_HOST"),
		Port:            v.GetInt("DB_PORT"),
		User:            v.GetString("DB_USER"),
		Password:        v.GetString("DB_PASSWORD"),
		Database:        v.GetString("DB_NAME"),
		SSLMode:         v.GetString("DB_SSLMODE"),
		LogLevel:        v.GetString("DB_LOG_LEVEL"),
		MaxConnections:  v.GetInt("DB_MAX_CONNECTIONS"),
		MinConnections:  v.GetInt("DB_MIN_CONNECTIONS"),
		MaxConnLifetime: v.GetInt("DB_MAX_CONN_LIFETIME_MINUTES"),
		MaxConnIdleTime: v.GetInt("DB_MAX_CONN_IDLE_MINUTES"),
	}

	config.Cache = CacheConfig{
		Enabled:      v.GetBool("CLEAN_CACHE_ENABLED"),
		TTLHours:     v.GetInt("CLEAN_CACHE_TTL_HOURS"),
		Host:         v.GetString("REDIS_HOST"),
		Port:         v.GetInt("REDIS_PORT"),
		Password:     v.GetString("REDIS_PASSWORD"),
		DB:           v.GetInt("REDIS_DB"),
		DialTimeout:  v.GetInt("REDIS_DIAL_TIMEOUT"),
		ReadTimeout:  v.GetInt("REDIS_READ_TIMEOUT"),
		WriteTimeout: v.GetInt("REDIS_WRITE_TIMEOUT"),
		PoolSize:     v.GetInt("REDIS_POOL_SIZE"),
		MinIdleConns: v.GetInt("REDIS_MIN_IDLE_CONNS"),
	}

	config.Queue = QueueConfig{
		RedisHost:      config.Cache.Host,
		RedisPort:      config.Cache.Port,
		RedisPassword:  config.Cache.Password,
		RedisDB:        config.Cache.DB,
		DialTimeout:    config.Cache.DialTimeout,
		ReadTimeout:    config.Cache.ReadTimeout,
		WriteTimeout:   config.Cache.WriteTimeout,
		Concurrency:    v.GetInt("WORKER_CONCURRENCY"),
		MaxRetries:     v.GetInt("WORKER_MAX_RETRIES"),
		StrictPriority: v.GetBool("WORKER_STRICT_PRIORITY"),
	}

	config.Storage = StorageConfig{
		BasePath:      v.GetString("STORAGE_BASE_PATH"),
		MaxFileSizeMB: v.GetInt64("MAX_FILE_SIZE_MB"),
	}

	config.Refinery = RefineryConfig{
		Version:           v.GetString("REFINERY_VERSION"),
		Workers:           v.GetInt("REFINERY_WORKERS"),
		StopwordsLanguage: v.GetString("STOPWORDS_LANGUAGE"),
		StopwordsDir:      v.GetString("STOPWORDS_DIR"),
	}

	config.Metrics = MetricsConfig{
		Port: v.GetInt("METRICS_PORT"),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", "development")

	// Database defaults
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_NAME", "textprep")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_LOG_LEVEL", "silent")
	v.SetDefault("DB_MAX_CONNECTIONS", 10)
	v.SetDefault("DB_MIN_CONNECTIONS", 2)
	v.SetDefault("DB_MAX_CONN_LIFETIME_MINUTES", 30)
	v.SetDefault("DB_MAX_CONN_IDLE_MINUTES", 5)

	// Redis defaults
	v.SetDefault("CLEAN_CACHE_ENABLED", false)
	v.SetDefault("CLEAN_CACHE_TTL_HOURS", 24*7)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_DIAL_TIMEOUT", 5)
	v.SetDefault("REDIS_READ_TIMEOUT", 3)
	v.SetDefault("REDIS_WRITE_TIMEOUT", 3)
	v.SetDefault("REDIS_POOL_SIZE", 10)
	v.SetDefault("REDIS_MIN_IDLE_CONNS", 2)

	// Worker defaults
	v.SetDefault("WORKER_CONCURRENCY", 4)
	v.SetDefault("WORKER_MAX_RETRIES", 3)
	v.SetDefault("WORKER_STRICT_PRIORITY", false)

	// Storage defaults
	v.SetDefault("STORAGE_BASE_PATH", "/tmp/textprep")
	v.SetDefault("MAX_FILE_SIZE_MB", 500)

	// Refinery defaults
	v.SetDefault("REFINERY_VERSION", "v1")
	v.SetDefault("REFINERY_WORKERS", 0) // 0 = one worker per CPU
	v.SetDefault("STOPWORDS_LANGUAGE", "english")
	v.SetDefault("STOPWORDS_DIR", "")

	v.SetDefault("METRICS_PORT", 9090)
}

// Validate checks settings that every command depends on
func (c *Config) Validate() error {
	if c.Refinery.Version == "" {
		return fmt.Errorf("REFINERY_VERSION must not be empty")
	}
	if c.Refinery.Workers < 0 {
		return fmt.Errorf("REFINERY_WORKERS must be >= 0, got %d", c.Refinery.Workers)
	}
	if c.Storage.MaxFileSizeMB < 0 {
		return fmt.Errorf("MAX_FILE_SIZE_MB must be >= 0, got %d", c.Storage.MaxFileSizeMB)
	}
	if c.Queue.Concurrency <= 0 {
		return fmt.Errorf("WORKER_CONCURRENCY must be > 0, got %d", c.Queue.Concurrency)
	}
	return nil
}

// RequireDatabase validates the settings needed by commands that track runs in PostgreSQL
func (c *Config) RequireDatabase() error {
	if c.Database.User == "" {
		return fmt.Errorf("DB_USER is required")
	}
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	return nil
}

// GetDatabaseURL constructs the PostgreSQL connection string
func (c *Config) GetDatabaseURL() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host, c.Database.Port, c.Database.User, c.Database.Password,
		c.Database.Database, c.Database.SSLMode)
}

// GetRedisURL constructs the Redis address
func (c *Config) GetRedisURL() string {
	return fmt.Sprintf("%s:%d", c.Cache.Host, c.Cache.Port)
}

// MaxFileSizeBytes converts the configured limit to bytes (0 = unlimited)
func (c *Config) MaxFileSizeBytes() int64 {
	return c.Storage.MaxFileSizeMB * 1024 * 1024
}

// IsProduction returns true if running in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// IsDevelopment returns true if running in development
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// LogConfig logs the configuration (hiding sensitive data)
func (c *Config) LogConfig(logger *slog.Logger) {
	logger.Info("configuration loaded",
		slog.String("environment", c.Environment),
		slog.String("database", fmt.Sprintf("%s:%d/%s", c.Database.Host, c.Database.Port, c.Database.Database)),
		slog.String("redis", c.GetRedisURL()),
		slog.Bool("clean_cache", c.Cache.Enabled),
		slog.String("refinery", c.Refinery.Version),
		slog.Int("refinery_workers", c.Refinery.Workers),
		slog.String("stopwords_language", c.Refinery.StopwordsLanguage),
		slog.Int("worker_concurrency", c.Queue.Concurrency),
		slog.String("storage", c.Storage.BasePath),
	)

	// Check credentials without revealing them
	if c.Database.Password != "" {
		logger.Info("database password", slog.String("status", "[CONFIGURED]"))
	} else {
		logger.Info("database password", slog.String("status", "[NOT SET]"))
	}
}
