package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Store        StoreConfig
	Postgres     PostgresConfig
	SQLite       SQLiteConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Scanner      ScannerConfig
	Storage      StorageConfig
	Notification NotificationConfig
	Event        EventConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
	BodyLimitBytes        int
}

// StoreConfig selects the document store backend.
type StoreConfig struct {
	Driver string // "postgres" | "sqlite"
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	MigrationsDir  string
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// SQLiteConfig points at the single-device database file.
type SQLiteConfig struct {
	Path string
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level  string
	Format string
	Output string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	AdminCode             string
	AdminCodeHash         string
	BcryptCost            int
	GoogleClientID        string
}

// ScannerConfig tunes the check-in console.
type ScannerConfig struct {
	ScanIntervalMillis   int
	RecoveryDelayMillis  int
	SuccessHoldMillis    int
	FrameBuffer          int
	LockTTLSeconds       int
	ResolveTimeoutMillis int
}

// StorageConfig configures the image host used for registration photos.
type StorageConfig struct {
	Driver         string // "local" | "s3"
	LocalDir       string
	PublicBaseURL  string
	S3Bucket       string
	S3Region       string
	S3AccessKey    string
	S3SecretKey    string
	MaxUploadBytes int64
}

// NotificationConfig holds stub notification endpoints.
type NotificationConfig struct {
	EmailFrom  string
	WebhookURL string
}

// EventConfig locates the event catalog.
type EventConfig struct {
	CatalogPath string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "sanskruthi-fest-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
			BodyLimitBytes:        getEnvAsInt("HTTP_BODY_LIMIT_BYTES", 8*1024*1024),
		},
		Store: StoreConfig{
			Driver: strings.ToLower(getEnv("STORE_DRIVER", "postgres")),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			MigrationsDir:  getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		SQLite: SQLiteConfig{
			Path: getEnv("SQLITE_PATH", "fest.db"),
		},
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", true),
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
			Output: getEnv("LOG_OUTPUT", "stdout"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 12*60),
			AdminCode:             os.Getenv("AUTH_ADMIN_CODE"),
			AdminCodeHash:         os.Getenv("AUTH_ADMIN_CODE_HASH"),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
			GoogleClientID:        os.Getenv("AUTH_GOOGLE_CLIENT_ID"),
		},
		Scanner: ScannerConfig{
			ScanIntervalMillis:   getEnvAsInt("SCANNER_INTERVAL_MS", 200),
			RecoveryDelayMillis:  getEnvAsInt("SCANNER_RECOVERY_DELAY_MS", 1000),
			SuccessHoldMillis:    getEnvAsInt("SCANNER_SUCCESS_HOLD_MS", 2000),
			FrameBuffer:          getEnvAsInt("SCANNER_FRAME_BUFFER", 4),
			LockTTLSeconds:       getEnvAsInt("SCANNER_LOCK_TTL_SECONDS", 10),
			ResolveTimeoutMillis: getEnvAsInt("SCANNER_RESOLVE_TIMEOUT_MS", 5000),
		},
		Storage: StorageConfig{
			Driver:         strings.ToLower(getEnv("STORAGE_DRIVER", "local")),
			LocalDir:       getEnv("STORAGE_LOCAL_DIR", "uploads"),
			PublicBaseURL:  getEnv("STORAGE_PUBLIC_BASE_URL", "http://localhost:8080/uploads"),
			S3Bucket:       os.Getenv("STORAGE_S3_BUCKET"),
			S3Region:       os.Getenv("STORAGE_S3_REGION"),
			S3AccessKey:    os.Getenv("AWS_ACCESS_KEY_ID"),
			S3SecretKey:    os.Getenv("AWS_SECRET_ACCESS_KEY"),
			MaxUploadBytes: int64(getEnvAsInt("STORAGE_MAX_UPLOAD_BYTES", 5*1024*1024)),
		},
		Notification: NotificationConfig{
			EmailFrom:  getEnv("NOTIFY_EMAIL_FROM", "noreply@sanskruthi.in"),
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
		Event: EventConfig{
			CatalogPath: os.Getenv("EVENT_CATALOG_PATH"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects combinations the service cannot start with.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("invalid STORE_DRIVER %q", c.Store.Driver)
	}
	switch c.Storage.Driver {
	case "local":
	case "s3":
		if c.Storage.S3Bucket == "" || c.Storage.S3Region == "" {
			return fmt.Errorf("STORAGE_S3_BUCKET and STORAGE_S3_REGION required for s3 storage")
		}
	default:
		return fmt.Errorf("invalid STORAGE_DRIVER %q", c.Storage.Driver)
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// ScanInterval is the pause after a frame without a readable code.
func (s ScannerConfig) ScanInterval() time.Duration {
	return millis(s.ScanIntervalMillis)
}

// RecoveryDelay is how long scanning stays paused after an unknown code.
func (s ScannerConfig) RecoveryDelay() time.Duration {
	return millis(s.RecoveryDelayMillis)
}

// SuccessHold keeps the success message on screen before scanning resumes.
func (s ScannerConfig) SuccessHold() time.Duration {
	return millis(s.SuccessHoldMillis)
}

// ResolveTimeout bounds one registration lookup; it defaults to five seconds.
func (s ScannerConfig) ResolveTimeout() time.Duration {
	if s.ResolveTimeoutMillis <= 0 {
		return 5 * time.Second
	}
	return millis(s.ResolveTimeoutMillis)
}

// LockTTL bounds how long a per-identity check-in lock may be held.
func (s ScannerConfig) LockTTL() time.Duration {
	if s.LockTTLSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(s.LockTTLSeconds) * time.Second
}

func millis(v int) time.Duration {
	if v <= 0 {
		return 0
	}
	return time.Duration(v) * time.Millisecond
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
