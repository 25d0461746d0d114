package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StorageProviderGCS    = "gcs"
	StorageProviderMemory = "memory"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL    string
	Port           string
	IsProduction   bool
	EnableDBCheck  bool
	MigrationsPath string
	RequestTimeout time.Duration

	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string
	// Refresh Token Config
	RefreshTokenExpiryDuration time.Duration
	RefreshTokenCookieName     string
	RefreshTokenCookiePath     string

	// External OAuth Providers
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	FrontendBaseURL    string
	CORSAllowedOrigins []string

	DefaultCurrency string
	AutosaveDelay   time.Duration

	// Email
	EmailEnabled bool
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string
	SMTPFromName string

	// Receipt storage
	StorageProvider   string
	GCSBucket         string
	GCSCredentialJSON string
	GCSPublicBaseURL  string

	RedisURL      string
	RateLimit     string
	PosthogAPIKey string
	PosthogHost   string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("MIGRATIONS_PATH", "file://migrations")
	viper.SetDefault("REQUEST_TIMEOUT", "15s")
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("JWT_EXPIRY_DURATION", "1h")
	viper.SetDefault("JWT_ISSUER", "expenseflow")
	viper.SetDefault("REFRESH_TOKEN_EXPIRY_DURATION", "168h")
	viper.SetDefault("REFRESH_TOKEN_COOKIE_NAME", "rtid")
	viper.SetDefault("REFRESH_TOKEN_COOKIE_PATH", "/api/v1/auth")
	viper.SetDefault("GOOGLE_CLIENT_ID", "")
	viper.SetDefault("GOOGLE_CLIENT_SECRET", "")
	viper.SetDefault("GOOGLE_REDIRECT_URL", "")
	viper.SetDefault("FRONTEND_BASE_URL", "http://localhost:3000")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "")
	viper.SetDefault("DEFAULT_CURRENCY", "BDT")
	viper.SetDefault("AUTOSAVE_DELAY", "30s")
	viper.SetDefault("EMAIL_ENABLED", false)
	viper.SetDefault("SMTP_HOST", "")
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("SMTP_USER", "")
	viper.SetDefault("SMTP_PASSWORD", "")
	viper.SetDefault("SMTP_FROM", "")
	viper.SetDefault("SMTP_FROM_NAME", "ExpenseFlow")
	viper.SetDefault("STORAGE_PROVIDER", StorageProviderMemory)
	viper.SetDefault("GCS_BUCKET", "")
	viper.SetDefault("GCS_CREDENTIALS_JSON", "")
	viper.SetDefault("GCS_PUBLIC_BASE_URL", "")
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("RATE_LIMIT", "100-M")
	viper.SetDefault("POSTHOG_API_KEY", "")
	viper.SetDefault("POSTHOG_HOST", "https://us.i.posthog.com")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "a-very-secret-key-should-be-longer-and-random" // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")
	if cfg.JWTIssuer == "" {
		cfg.JWTIssuer = "expenseflow"
		log.Printf("Warning: JWT_ISSUER not set. Defaulting to %s.\n", cfg.JWTIssuer)
	}

	cfg.JWTExpiryDuration = durationOr("JWT_EXPIRY_DURATION", time.Hour)
	cfg.RefreshTokenExpiryDuration = durationOr("REFRESH_TOKEN_EXPIRY_DURATION", 7*24*time.Hour)
	cfg.RequestTimeout = durationOr("REQUEST_TIMEOUT", 15*time.Second)
	cfg.AutosaveDelay = durationOr("AUTOSAVE_DELAY", 30*time.Second)

	cfg.RefreshTokenCookieName = stringOr("REFRESH_TOKEN_COOKIE_NAME", "rtid")
	cfg.RefreshTokenCookiePath = stringOr("REFRESH_TOKEN_COOKIE_PATH", "/api/v1/auth")
	cfg.MigrationsPath = stringOr("MIGRATIONS_PATH", "file://migrations")
	cfg.DefaultCurrency = strings.ToUpper(stringOr("DEFAULT_CURRENCY", "BDT"))

	cfg.GoogleClientID = viper.GetString("GOOGLE_CLIENT_ID")
	cfg.GoogleClientSecret = viper.GetString("GOOGLE_CLIENT_SECRET")
	cfg.GoogleRedirectURL = viper.GetString("GOOGLE_REDIRECT_URL")
	cfg.FrontendBaseURL = viper.GetString("FRONTEND_BASE_URL")

	// Log warnings for missing critical OAuth ENV variables
	if cfg.GoogleClientID == "" {
		log.Println("Warning: GOOGLE_CLIENT_ID not set. Google OAuth will not function.")
	}
	if cfg.GoogleClientSecret == "" {
		log.Println("Warning: GOOGLE_CLIENT_SECRET not set. Google OAuth will not function.")
	}

	cfg.CORSAllowedOrigins = splitList(viper.GetString("CORS_ALLOWED_ORIGINS"))
	if len(cfg.CORSAllowedOrigins) == 0 && cfg.FrontendBaseURL != "" {
		cfg.CORSAllowedOrigins = []string{cfg.FrontendBaseURL}
	}

	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")

	cfg.EmailEnabled = viper.GetBool("EMAIL_ENABLED")
	cfg.SMTPHost = viper.GetString("SMTP_HOST")
	cfg.SMTPPort = viper.GetInt("SMTP_PORT")
	cfg.SMTPUser = viper.GetString("SMTP_USER")
	cfg.SMTPPassword = viper.GetString("SMTP_PASSWORD")
	cfg.SMTPFrom = viper.GetString("SMTP_FROM")
	cfg.SMTPFromName = viper.GetString("SMTP_FROM_NAME")
	if cfg.EmailEnabled && cfg.SMTPHost == "" {
		log.Println("Warning: EMAIL_ENABLED is set but SMTP_HOST is empty. Emails will not be delivered.")
		cfg.EmailEnabled = false
	}

	cfg.StorageProvider = strings.ToLower(viper.GetString("STORAGE_PROVIDER"))
	cfg.GCSBucket = viper.GetString("GCS_BUCKET")
	cfg.GCSCredentialJSON = viper.GetString("GCS_CREDENTIALS_JSON")
	cfg.GCSPublicBaseURL = viper.GetString("GCS_PUBLIC_BASE_URL")
	switch cfg.StorageProvider {
	case StorageProviderGCS:
		if cfg.GCSBucket == "" {
			log.Println("Warning: STORAGE_PROVIDER=gcs but GCS_BUCKET not set. Falling back to in-memory storage.")
			cfg.StorageProvider = StorageProviderMemory
		}
	case StorageProviderMemory:
	default:
		log.Printf("Warning: Unknown STORAGE_PROVIDER ('%s'). Defaulting to %s.\n", cfg.StorageProvider, StorageProviderMemory)
		cfg.StorageProvider = StorageProviderMemory
	}

	cfg.RedisURL = viper.GetString("REDIS_URL")
	cfg.RateLimit = stringOr("RATE_LIMIT", "100-M")
	cfg.PosthogAPIKey = viper.GetString("POSTHOG_API_KEY")
	cfg.PosthogHost = viper.GetString("POSTHOG_HOST")

	return cfg, nil
}

func durationOr(key string, fallback time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, fallback.String())
		}
		return fallback
	}
	return d
}

func stringOr(key, fallback string) string {
	if v := strings.TrimSpace(viper.GetString(key)); v != "" {
		return v
	}
	log.Printf("Warning: %s not set. Defaulting to %s.\n", key, fallback)
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// CLIConfig configures the terminal client.
type CLIConfig struct {
	ServerURL     string
	APIKey        string
	AccessToken   string
	Timeout       time.Duration
	AutosaveDelay time.Duration
}

// LoadCLIConfig reads the EXPENSEFLOW_* variables used by the terminal client.
func LoadCLIConfig() CLIConfig {
	_ = godotenv.Load()

	viper.SetDefault("EXPENSEFLOW_URL", "http://localhost:8080")
	viper.SetDefault("EXPENSEFLOW_API_KEY", "")
	viper.SetDefault("EXPENSEFLOW_TOKEN", "")
	viper.SetDefault("EXPENSEFLOW_TIMEOUT", "30s")
	viper.SetDefault("AUTOSAVE_DELAY", "30s")
	viper.AutomaticEnv()

	return CLIConfig{
		ServerURL:     strings.TrimRight(strings.TrimSpace(viper.GetString("EXPENSEFLOW_URL")), "/"),
		APIKey:        strings.TrimSpace(viper.GetString("EXPENSEFLOW_API_KEY")),
		AccessToken:   strings.TrimSpace(viper.GetString("EXPENSEFLOW_TOKEN")),
		Timeout:       durationOr("EXPENSEFLOW_TIMEOUT", 30*time.Second),
		AutosaveDelay: durationOr("AUTOSAVE_DELAY", 30*time.Second),
	}
}
