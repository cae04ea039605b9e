package internal

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env          string
	LogLevel     string
	Port         uint16
	BaseURL      string
	Backend      string // "firestore" or "memory"
	StoreTZ      string // IANA zone collection slots are interpreted in
	CORSOrigins  string
	Firebase     FirebaseConfig
	Storage      StorageConfig
	Connectivity ConnectivityConfig
	NATS         NATSConfig
	Sentry       SentryConfig
	Admin        AdminConfig
}

// FirebaseConfig holds the project used for Firestore and Firebase Auth.
type FirebaseConfig struct {
	ProjectID       string
	CredentialsFile string // Optional; application default credentials otherwise
	EmulatorHost    string // FIRESTORE_EMULATOR_HOST, read by the client library
}

// ConnectivityConfig controls the backend reachability monitor.
type ConnectivityConfig struct {
	ProbeURL     string
	Interval     time.Duration
	ProbeTimeout time.Duration
}

// NATSConfig holds the event bus connection. Events are dropped when URL is empty.
type NATSConfig struct {
	URL           string
	SubjectPrefix string
}

// SentryConfig holds configuration for Sentry error tracking
type SentryConfig struct {
	DSN              string
	Enabled          bool
	Environment      string
	Release          string
	SampleRate       float64
	TracesSampleRate float64
	Debug            bool
}

// AdminConfig lists users granted the admin role when their token carries
// no role claim. Used with the memory backend and for bootstrapping.
type AdminConfig struct {
	UIDs []string
}

type StorageConfig struct {
	Provider           string // "local", "r2" or "gcs"
	LocalPath          string
	LocalURL           string
	R2AccountID        string
	R2AccessKeyID      string
	R2SecretKey        string
	R2BucketName       string
	R2PublicURL        string
	GCSBucket          string
	GCSPublicURL       string
	GCSCredentialsFile string
}

func NewConfig() (*Config, error) {
	// Try to load .env from current directory, then walk up to find it (max 2 levels)
	err := godotenv.Load()
	if err != nil {
		dir, _ := os.Getwd()
		found := false
		for i := 0; i < 2; i++ {
			dir = filepath.Join(dir, "..")
			if err := godotenv.Load(filepath.Join(dir, ".env")); err == nil {
				found = true
				break
			}
		}
		if !found {
			slog.Default().Warn("Warning: .env file not found, using environment variables and defaults")
		}
	}

	cfg := &Config{
		Env:         getEnv("ENV", "dev"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Port:        getEnvInt("PORT", 3000),
		BaseURL:     getEnv("BASE_URL", "http://localhost:3000"),
		Backend:     getEnv("BACKEND", "memory"),
		StoreTZ:     getEnv("STORE_TIMEZONE", "UTC"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
		Firebase: FirebaseConfig{
			ProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
			CredentialsFile: getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
			EmulatorHost:    getEnv("FIRESTORE_EMULATOR_HOST", ""),
		},
		Storage: StorageConfig{
			Provider:           getEnv("STORAGE_PROVIDER", "local"),
			LocalPath:          getEnv("LOCAL_STORAGE_PATH", "./data/uploads"),
			LocalURL:           getEnv("LOCAL_STORAGE_URL", "/uploads"),
			R2AccountID:        getEnv("R2_ACCOUNT_ID", ""),
			R2AccessKeyID:      getEnv("R2_ACCESS_KEY_ID", ""),
			R2SecretKey:        getEnv("R2_SECRET_ACCESS_KEY", ""),
			R2BucketName:       getEnv("R2_BUCKET_NAME", ""),
			R2PublicURL:        getEnv("R2_PUBLIC_URL", ""),
			GCSBucket:          getEnv("GCS_BUCKET", ""),
			GCSPublicURL:       getEnv("GCS_PUBLIC_URL", ""),
			GCSCredentialsFile: getEnv("GCS_CREDENTIALS_FILE", ""),
		},
		Connectivity: ConnectivityConfig{
			ProbeURL:     getEnv("CONNECTIVITY_PROBE_URL", "https://firestore.googleapis.com/"),
			Interval:     getEnvDuration("CONNECTIVITY_INTERVAL", 15*time.Second),
			ProbeTimeout: getEnvDuration("CONNECTIVITY_PROBE_TIMEOUT", 5*time.Second),
		},
		NATS: NATSConfig{
			URL:           getEnv("NATS_URL", ""),
			SubjectPrefix: getEnv("NATS_SUBJECT_PREFIX", "pantry"),
		},
		Sentry: SentryConfig{
			DSN:              getEnv("SENTRY_DSN", ""),
			Enabled:          getEnvBool("SENTRY_ENABLED", false), // Disabled by default for development
			Environment:      getEnv("SENTRY_ENVIRONMENT", "development"),
			Release:          getEnv("SENTRY_RELEASE", ""),
			SampleRate:       getEnvFloat("SENTRY_SAMPLE_RATE", 1.0),
			TracesSampleRate: getEnvFloat("SENTRY_TRACES_SAMPLE_RATE", 0.0),
			Debug:            getEnvBool("SENTRY_DEBUG", false),
		},
		Admin: AdminConfig{
			UIDs: getEnvList("ADMIN_UIDS"),
		},
	}

	// Validate env
	validEnv := cfg.Env == "dev" || cfg.Env == "prod"
	if !validEnv {
		slog.Default().Warn("Invalid environment. Using default: prod", slog.String("env", cfg.Env))
		cfg.Env = "prod"
	}

	// Validate log level
	if _, ok := ParseLogLevel(cfg.LogLevel); !ok {
		slog.Default().Warn("Invalid log level. Using default: info", slog.String("value", cfg.LogLevel))
		cfg.LogLevel = "info"
	}

	if _, err := time.LoadLocation(cfg.StoreTZ); err != nil {
		return nil, fmt.Errorf("STORE_TIMEZONE %q: %w", cfg.StoreTZ, err)
	}

	switch cfg.Backend {
	case "memory":
		if cfg.Env == "prod" {
			return nil, fmt.Errorf("BACKEND=memory is not allowed in production")
		}
	case "firestore":
		if cfg.Firebase.ProjectID == "" {
			return nil, fmt.Errorf("FIREBASE_PROJECT_ID required when BACKEND=firestore")
		}
	default:
		return nil, fmt.Errorf("unknown BACKEND %q (want firestore or memory)", cfg.Backend)
	}

	// Validate storage configuration in production
	if cfg.Env == "prod" {
		switch cfg.Storage.Provider {
		case "r2":
			if cfg.Storage.R2AccountID == "" {
				return nil, fmt.Errorf("R2_ACCOUNT_ID required when using R2 storage in production")
			}
			if cfg.Storage.R2AccessKeyID == "" || cfg.Storage.R2SecretKey == "" {
				return nil, fmt.Errorf("R2 credentials required when using R2 storage in production")
			}
			if cfg.Storage.R2BucketName == "" {
				return nil, fmt.Errorf("R2_BUCKET_NAME required when using R2 storage in production")
			}
		case "gcs":
			if cfg.Storage.GCSBucket == "" {
				return nil, fmt.Errorf("GCS_BUCKET required when using GCS storage in production")
			}
		}
	}

	return cfg, nil
}

// Location returns the store time zone. NewConfig has already validated it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.StoreTZ)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue uint16) uint16 {
	if value := os.Getenv(key); value != "" {
		var intValue uint16
		if _, err := fmt.Sscanf(value, "%d", &intValue); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		var floatValue float64
		if _, err := fmt.Sscanf(value, "%f", &floatValue); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
