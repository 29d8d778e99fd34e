package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"walksocr/internal/domain"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	DB      DBConfig
	S3      S3Config
	OCR     OCRConfig
	Retry   RetryConfig
	Schema  SchemaConfig
	Queue   QueueConfig
	Webhook WebhookConfig
	Email   EmailConfig
	CORS    CORSConfig
	Log     LogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// S3Config holds AWS S3 settings.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// OCRConfig holds vision model settings.
type OCRConfig struct {
	APIKey      string `mapstructure:"api_key"`
	Model       string `mapstructure:"model"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
}

// RetryConfig holds per-document retry policy settings.
type RetryConfig struct {
	MaxRetries    int     `mapstructure:"max_retries"`
	BaseDelaySecs float64 `mapstructure:"base_delay_secs"`
	MaxDelaySecs  float64 `mapstructure:"max_delay_secs"`
	Strategy      string  `mapstructure:"strategy"`
}

// SchemaConfig holds per-kind minimum-required-field overrides. A value of -1
// means "use the built-in default".
type SchemaConfig struct {
	MinRequiredRG      int `mapstructure:"min_required_rg"`
	MinRequiredCNPJ    int `mapstructure:"min_required_cnpj"`
	MinRequiredAddress int `mapstructure:"min_required_address"`
}

// Overrides returns the configured overrides keyed by document kind.
func (s *SchemaConfig) Overrides() map[domain.DocumentKind]int {
	out := make(map[domain.DocumentKind]int)
	if s.MinRequiredRG >= 0 {
		out[domain.KindRG] = s.MinRequiredRG
	}
	if s.MinRequiredCNPJ >= 0 {
		out[domain.KindCNPJ] = s.MinRequiredCNPJ
	}
	if s.MinRequiredAddress >= 0 {
		out[domain.KindAddress] = s.MinRequiredAddress
	}
	return out
}

// QueueConfig holds task queue worker settings.
type QueueConfig struct {
	PollIntervalSecs int `mapstructure:"poll_interval_secs"`
	Concurrency      int `mapstructure:"concurrency"`
}

// WebhookConfig holds result webhook delivery settings.
type WebhookConfig struct {
	TimeoutSecs int `mapstructure:"timeout_secs"`
	MaxRetries  int `mapstructure:"max_retries"`
}

// EmailConfig holds email delivery settings.
type EmailConfig struct {
	Provider      string `mapstructure:"provider"`
	Region        string `mapstructure:"region"`
	FromAddress   string `mapstructure:"from_address"`
	FromName      string `mapstructure:"from_name"`
	ReviewAddress string `mapstructure:"review_address"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from environment variables with the WALKSOCR_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("WALKSOCR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "walksocr")
	v.SetDefault("db.password", "walksocr_secret")
	v.SetDefault("db.name", "walksocr_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// S3 defaults
	v.SetDefault("s3.region", "sa-east-1")
	v.SetDefault("s3.bucket", "walksocr-documents")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.max_file_size_mb", 10)
	v.SetDefault("s3.presign_expiry", 3600)

	// OCR defaults
	v.SetDefault("ocr.api_key", "")
	v.SetDefault("ocr.model", "qwen/qwen2.5-vl-32b-instruct:free")
	v.SetDefault("ocr.timeout_secs", 30)

	// Retry defaults
	v.SetDefault("retry.max_retries", 3)
	v.SetDefault("retry.base_delay_secs", 2.0)
	v.SetDefault("retry.max_delay_secs", 30.0)
	v.SetDefault("retry.strategy", "exponential_backoff")

	// Schema defaults (-1 keeps the built-in minimums)
	v.SetDefault("schema.min_required_rg", -1)
	v.SetDefault("schema.min_required_cnpj", -1)
	v.SetDefault("schema.min_required_address", -1)

	// Queue defaults
	v.SetDefault("queue.poll_interval_secs", 5)
	v.SetDefault("queue.concurrency", 4)

	// Webhook defaults
	v.SetDefault("webhook.timeout_secs", 30)
	v.SetDefault("webhook.max_retries", 3)

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "sa-east-1")
	v.SetDefault("email.from_address", "noreply@walksbank.com.br")
	v.SetDefault("email.from_name", "WalksBank OCR")
	v.SetDefault("email.review_address", "")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                 "WALKSOCR_SERVER_PORT",
		"server.read_timeout":         "WALKSOCR_SERVER_READ_TIMEOUT",
		"server.write_timeout":        "WALKSOCR_SERVER_WRITE_TIMEOUT",
		"server.environment":          "WALKSOCR_SERVER_ENVIRONMENT",
		"db.host":                     "WALKSOCR_DB_HOST",
		"db.port":                     "WALKSOCR_DB_PORT",
		"db.user":                     "WALKSOCR_DB_USER",
		"db.password":                 "WALKSOCR_DB_PASSWORD",
		"db.name":                     "WALKSOCR_DB_NAME",
		"db.sslmode":                  "WALKSOCR_DB_SSLMODE",
		"db.max_open":                 "WALKSOCR_DB_MAX_OPEN",
		"db.max_idle":                 "WALKSOCR_DB_MAX_IDLE",
		"s3.region":                   "WALKSOCR_S3_REGION",
		"s3.bucket":                   "WALKSOCR_S3_BUCKET",
		"s3.endpoint":                 "WALKSOCR_S3_ENDPOINT",
		"s3.access_key":               "WALKSOCR_S3_ACCESS_KEY",
		"s3.secret_key":               "WALKSOCR_S3_SECRET_KEY",
		"s3.max_file_size_mb":         "WALKSOCR_S3_MAX_FILE_SIZE_MB",
		"s3.presign_expiry":           "WALKSOCR_S3_PRESIGN_EXPIRY",
		"ocr.api_key":                 "WALKSOCR_OCR_API_KEY",
		"ocr.model":                   "WALKSOCR_OCR_MODEL",
		"ocr.timeout_secs":            "WALKSOCR_OCR_TIMEOUT_SECS",
		"retry.max_retries":           "WALKSOCR_RETRY_MAX_RETRIES",
		"retry.base_delay_secs":       "WALKSOCR_RETRY_BASE_DELAY_SECS",
		"retry.max_delay_secs":        "WALKSOCR_RETRY_MAX_DELAY_SECS",
		"retry.strategy":              "WALKSOCR_RETRY_STRATEGY",
		"schema.min_required_rg":      "WALKSOCR_SCHEMA_MIN_REQUIRED_RG",
		"schema.min_required_cnpj":    "WALKSOCR_SCHEMA_MIN_REQUIRED_CNPJ",
		"schema.min_required_address": "WALKSOCR_SCHEMA_MIN_REQUIRED_ADDRESS",
		"queue.poll_interval_secs":    "WALKSOCR_QUEUE_POLL_INTERVAL_SECS",
		"queue.concurrency":           "WALKSOCR_QUEUE_CONCURRENCY",
		"webhook.timeout_secs":        "WALKSOCR_WEBHOOK_TIMEOUT_SECS",
		"webhook.max_retries":         "WALKSOCR_WEBHOOK_MAX_RETRIES",
		"email.provider":              "WALKSOCR_EMAIL_PROVIDER",
		"email.region":                "WALKSOCR_EMAIL_REGION",
		"email.from_address":          "WALKSOCR_EMAIL_FROM_ADDRESS",
		"email.from_name":             "WALKSOCR_EMAIL_FROM_NAME",
		"email.review_address":        "WALKSOCR_EMAIL_REVIEW_ADDRESS",
		"cors.allowed_origins":        "WALKSOCR_CORS_ALLOWED_ORIGINS",
		"log.level":                   "WALKSOCR_LOG_LEVEL",
		"log.format":                  "WALKSOCR_LOG_FORMAT",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if WALKSOCR_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("WALKSOCR_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		MaxFileSizeMB: v.GetInt64("s3.max_file_size_mb"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.OCR = OCRConfig{
		APIKey:      v.GetString("ocr.api_key"),
		Model:       v.GetString("ocr.model"),
		TimeoutSecs: v.GetInt("ocr.timeout_secs"),
	}
	cfg.Retry = RetryConfig{
		MaxRetries:    v.GetInt("retry.max_retries"),
		BaseDelaySecs: v.GetFloat64("retry.base_delay_secs"),
		MaxDelaySecs:  v.GetFloat64("retry.max_delay_secs"),
		Strategy:      v.GetString("retry.strategy"),
	}
	cfg.Schema = SchemaConfig{
		MinRequiredRG:      v.GetInt("schema.min_required_rg"),
		MinRequiredCNPJ:    v.GetInt("schema.min_required_cnpj"),
		MinRequiredAddress: v.GetInt("schema.min_required_address"),
	}
	cfg.Queue = QueueConfig{
		PollIntervalSecs: v.GetInt("queue.poll_interval_secs"),
		Concurrency:      v.GetInt("queue.concurrency"),
	}
	cfg.Webhook = WebhookConfig{
		TimeoutSecs: v.GetInt("webhook.timeout_secs"),
		MaxRetries:  v.GetInt("webhook.max_retries"),
	}
	cfg.Email = EmailConfig{
		Provider:      v.GetString("email.provider"),
		Region:        v.GetString("email.region"),
		FromAddress:   v.GetString("email.from_address"),
		FromName:      v.GetString("email.from_name"),
		ReviewAddress: v.GetString("email.review_address"),
	}
	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}

	return cfg, nil
}
