package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultLeadWebhookURL receives leads when LEAD_WEBHOOK_URL is not set
	DefaultLeadWebhookURL = "https://mosxchrbiscixlqozfdx.supabase.co/functions/v1/webhook-lead/formulario-da-maven-estudio"
	// AutomationWebhookURL is the n8n automation endpoint that mirrors every lead
	AutomationWebhookURL = "https://n8n.mavenestudio.com.br/webhook/maven-estudio-formulario"
)

type Config struct {
	ServerPort  string
	Environment string
	AppURL      string
	// Database
	DBPath           string
	TursoDatabaseURL string
	TursoAuthToken   string
	// Lead intake
	LeadWebhookURL       string
	AutomationWebhookURL string
	LeadTimeout          time.Duration
	LeadNotifyEmail      string
	// Language
	DefaultLanguage string
	// Wizard sessions
	RedisURL   string
	SessionTTL time.Duration
	// Analytics
	MetaPixelID string
	// Email (Resend)
	ResendAPIKey  string
	EmailFrom     string
	EmailFromName string
	EmailTestMode bool // When true, emails are logged instead of sent
	// Telegram alerts
	TelegramBotToken string
	TelegramChatID   string
	// Cloudflare Turnstile
	TurnstileSiteKey   string
	TurnstileSecretKey string
	// Cloudflare R2 Storage
	UploadDir         string
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicURL       string
	// Admin
	AdminUser         string
	AdminPasswordHash string
}

func Load() *Config {
	// Load .env file (ignore error if not present - use system env vars)
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("No .env file found, using system environment variables")
	}

	environment := getEnv("ENVIRONMENT", "development")
	adminHash := getEnv("ADMIN_PASSWORD_HASH", "")

	if adminHash == "" && environment == "production" {
		log.Warn().Msg("ADMIN_PASSWORD_HASH is not set; admin routes are disabled. Generate one with: leadctl hash-password")
	}

	return &Config{
		ServerPort:           getEnv("SERVER_PORT", "8080"),
		Environment:          environment,
		AppURL:               strings.TrimSuffix(getEnv("APP_URL", "http://localhost:8080"), "/"),
		DBPath:               getEnv("DB_PATH", "db/app.db"),
		TursoDatabaseURL:     getEnv("TURSO_DATABASE_URL", ""),
		TursoAuthToken:       getEnv("TURSO_AUTH_TOKEN", ""),
		LeadWebhookURL:       getEnv("LEAD_WEBHOOK_URL", DefaultLeadWebhookURL),
		AutomationWebhookURL: AutomationWebhookURL,
		LeadTimeout:          getEnvDuration("LEAD_TIMEOUT", 15*time.Second),
		LeadNotifyEmail:      getEnv("LEAD_NOTIFY_EMAIL", ""),
		DefaultLanguage:      getEnv("DEFAULT_LANGUAGE", "pt"),
		RedisURL:             getEnv("REDIS_URL", ""),
		SessionTTL:           getEnvDuration("SESSION_TTL", 30*time.Minute),
		MetaPixelID:          getEnv("META_PIXEL_ID", ""),
		ResendAPIKey:         getEnv("RESEND_API_KEY", ""),
		EmailFrom:            getEnv("EMAIL_FROM", "contato@mavenestudio.com.br"),
		EmailFromName:        getEnv("EMAIL_FROM_NAME", "Maven Estúdio"),
		EmailTestMode:        getEnvBool("EMAIL_TEST_MODE", true), // Default true for safety
		TelegramBotToken:     getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:       getEnv("TELEGRAM_CHAT_ID", ""),
		TurnstileSiteKey:     getEnv("TURNSTILE_SITE_KEY", ""),
		TurnstileSecretKey:   getEnv("TURNSTILE_SECRET_KEY", ""),
		UploadDir:            getEnv("UPLOAD_DIR", "data/storage"),
		R2AccountID:          getEnv("R2_ACCOUNT_ID", ""),
		R2AccessKeyID:        getEnv("R2_ACCESS_KEY_ID", ""),
		R2SecretAccessKey:    getEnv("R2_SECRET_ACCESS_KEY", ""),
		R2BucketName:         getEnv("R2_BUCKET_NAME", ""),
		R2PublicURL:          getEnv("R2_PUBLIC_URL", ""),
		AdminUser:            getEnv("ADMIN_USER", "admin"),
		AdminPasswordHash:    adminHash,
	}
}

// IsProduction reports whether the server runs with production settings
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// AdminEnabled reports whether the admin area can authenticate anyone
func (c *Config) AdminEnabled() bool {
	return c.AdminUser != "" && c.AdminPasswordHash != ""
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		log.Debug().Str("key", key).Str("default", defaultValue).Msg("Using default value")
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	// Accept common boolean representations
	switch strings.ToLower(value) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		return defaultValue
	}
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		log.Warn().Str("key", key).Str("value", value).Msg("Invalid duration, using default")
		return defaultValue
	}
	return d
}
