package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// AuthConfig holds settings for verifying bearer identities issued by the platform's auth service.
type AuthConfig struct {
	JWTSecret string
	Issuer    string
}

// RedisConfig is optional; an empty Addr disables share-link attempt limiting.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RabbitMQConfig is optional; an empty URI makes notifications log-only.
type RabbitMQConfig struct {
	URI      string
	Exchange string
}

// WatermarkConfig controls rendering and the lifecycle of temporary renditions.
type WatermarkConfig struct {
	// ContentURLTTL is the lifetime of pointers to unmodified content.
	ContentURLTTL time.Duration
	// ArtifactURLTTL is the lifetime of pointers to rendered artifacts; always shorter than ContentURLTTL.
	ArtifactURLTTL time.Duration
	RenderTimeout  time.Duration
	MaxRenderBytes int64
	Retention      time.Duration
	SweepInterval  time.Duration
	SweepBatchSize int
	OverlayOpacity float64
}

// ShareConfig controls share-link URLs and redemption throttling.
type ShareConfig struct {
	BaseURL       string
	MaxAttempts   int
	AttemptWindow time.Duration
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level    slog.Level
	Format   string
	Location *time.Location
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost string
	Port    string

	// ProxyHeader names the header carrying the client IP when running behind a trusted proxy.
	ProxyHeader string
	// TrustedProxies lists the proxy IPs or CIDRs whose forwarding headers are honoured.
	TrustedProxies []string
	// CountryHeader names the edge header carrying the client country. Empty disables country
	// resolution, which makes country allow-lists refuse every request.
	CountryHeader string

	Database  DatabaseConfig
	MinIO     MinIOConfig
	Auth      AuthConfig
	Redis     RedisConfig
	RabbitMQ  RabbitMQConfig
	Watermark WatermarkConfig
	Share     ShareConfig
	Log       LogConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	cfg := &AppConfig{
		AppHost: getEnv("APP_HOST", "localhost:8080"),
		Port:    getEnv("PORT", "8080"),

		ProxyHeader:    getEnv("PROXY_HEADER", ""),
		TrustedProxies: getEnvList("TRUSTED_PROXIES"),
		CountryHeader:  getEnv("COUNTRY_HEADER", ""),

		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
			Issuer:    getEnv("JWT_ISSUER", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		RabbitMQ: RabbitMQConfig{
			URI:      getEnv("RABBITMQ_URI", ""),
			Exchange: getEnv("RABBITMQ_EXCHANGE", "dataroom.notifications"),
		},
		Watermark: WatermarkConfig{
			ContentURLTTL:  getEnvDuration("CONTENT_URL_TTL", 15*time.Minute),
			ArtifactURLTTL: getEnvDuration("ARTIFACT_URL_TTL", 5*time.Minute),
			RenderTimeout:  getEnvDuration("RENDER_TIMEOUT", 20*time.Second),
			MaxRenderBytes: int64(getEnvInt("MAX_RENDER_BYTES", 50<<20)),
			Retention:      getEnvDuration("ARTIFACT_RETENTION", 30*time.Minute),
			SweepInterval:  getEnvDuration("ARTIFACT_SWEEP_INTERVAL", time.Minute),
			SweepBatchSize: getEnvInt("ARTIFACT_SWEEP_BATCH", 100),
			OverlayOpacity: getEnvFloat("WATERMARK_OPACITY", 0.15),
		},
		Share: ShareConfig{
			BaseURL:       strings.TrimRight(getEnv("SHARE_BASE_URL", "http://localhost:8080"), "/"),
			MaxAttempts:   getEnvInt("SHARE_MAX_ATTEMPTS", 10),
			AttemptWindow: getEnvDuration("SHARE_ATTEMPT_WINDOW", time.Minute),
		},
		Log: LogConfig{
			Level:    parseLevel(getEnv("LOG_LEVEL", "info")),
			Format:   getEnv("LOG_FORMAT", "json"),
			Location: loadLocation(getEnv("APP_TIMEZONE", "UTC")),
		},
	}
	cfg.Watermark.normalize()
	// Country headers are honoured only behind a trusted proxy.
	if cfg.ProxyHeader == "" || len(cfg.TrustedProxies) == 0 {
		cfg.CountryHeader = ""
	}
	return cfg
}

// normalize keeps rendered pointers strictly shorter-lived than content pointers
// and never lets deletion happen before the pointer expires.
func (w *WatermarkConfig) normalize() {
	if w.ContentURLTTL <= 0 {
		w.ContentURLTTL = 15 * time.Minute
	}
	if w.ArtifactURLTTL <= 0 || w.ArtifactURLTTL >= w.ContentURLTTL {
		w.ArtifactURLTTL = w.ContentURLTTL / 2
	}
	if w.Retention < w.ArtifactURLTTL {
		w.Retention = w.ArtifactURLTTL
	}
	if w.RenderTimeout <= 0 {
		w.RenderTimeout = 20 * time.Second
	}
	if w.OverlayOpacity <= 0 || w.OverlayOpacity > 1 {
		w.OverlayOpacity = 0.15
	}
	if w.SweepBatchSize <= 0 {
		w.SweepBatchSize = 100
	}
	if w.SweepInterval <= 0 {
		w.SweepInterval = time.Minute
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvList splits a comma separated variable, dropping blanks.
func getEnvList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return def
}

// getEnvDuration accepts Go duration strings ("90s", "5m").
func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func loadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}
