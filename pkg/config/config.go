package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port             string
	AppURL           string
	JWTSecret        string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration

	// DatabaseURL selects Postgres when set; otherwise the local
	// SQLite file at SQLitePath is used.
	DatabaseURL string
	SQLitePath  string

	// TrackingDomain is the domain forwarding aliases are minted on.
	TrackingDomain string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURI  string

	IMAPTimeout  time.Duration
	FetchWorkers int
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	accessExpiry := 15 * time.Minute
	if exp := os.Getenv("JWT_ACCESS_EXPIRY"); exp != "" {
		if parsed, err := time.ParseDuration(exp); err == nil {
			accessExpiry = parsed
		}
	}

	refreshExpiry := 168 * time.Hour // 7 days
	if exp := os.Getenv("JWT_REFRESH_EXPIRY"); exp != "" {
		if parsed, err := time.ParseDuration(exp); err == nil {
			refreshExpiry = parsed
		}
	}

	imapTimeout := 30 * time.Second
	if t := os.Getenv("IMAP_TIMEOUT"); t != "" {
		if parsed, err := time.ParseDuration(t); err == nil {
			imapTimeout = parsed
		}
	}

	fetchWorkers := 4
	if w := os.Getenv("FETCH_WORKERS"); w != "" {
		if parsed, err := strconv.Atoi(w); err == nil && parsed > 0 {
			fetchWorkers = parsed
		}
	}

	return &Config{
		Port:               getEnv("PORT", "8080"),
		AppURL:             getEnv("APP_URL", "http://localhost:3000"),
		JWTSecret:          getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		JWTAccessExpiry:    accessExpiry,
		JWTRefreshExpiry:   refreshExpiry,
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		SQLitePath:         getEnv("SQLITE_PATH", "data/jobtrail.db"),
		TrackingDomain:     getEnv("TRACKING_DOMAIN", "track.jobtrail.app"),
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURI:  getEnv("GOOGLE_REDIRECT_URI", "http://localhost:8080/api/mailbox/forwarding/google/callback"),
		IMAPTimeout:        imapTimeout,
		FetchWorkers:       fetchWorkers,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
