package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type NetSuiteConfig struct {
	AccountID      string
	BaseURL        string
	ConsumerKey    string
	ConsumerSecret string
	TokenID        string
	TokenSecret    string
	DealerCategory string
}

type SyncConfig struct {
	POPolicy      string // "create-only" or "upsert"
	POCommitEvery int
	LockEnabled   bool
	LockTTL       time.Duration
	Schedules     map[string]string // sync type -> cron expression, empty disables
	AlertEmails   []string
}

type EmailConfig struct {
	Provider       string // "sendgrid", "ses", "smtp"
	From           string
	SendGridAPIKey string
	SendGridURL    string
	SESRegion      string
	SESAccessKey   string
	SESSecretKey   string
	SMTPHost       string
	SMTPPort       int
	SMTPUser       string
	SMTPPassword   string
}

type TeamsConfig struct {
	Webhooks map[string]string // category -> incoming webhook URL
}

type AuthConfig struct {
	OTPTTL              time.Duration
	SessionTTL          time.Duration
	InternalEmailDomain string
}

type Config struct {
	Port        string
	Environment string
	AppId       string
	JWTSecret   string
	SkipAuth    bool
	LogLevel    string

	DBDriver       string
	DatabaseURL    string
	DBMaxOpenConns int
	DBMaxIdleConns int

	MongoURI string
	MongoDB  string

	RedisAddress  string
	RedisPassword string
	RedisDB       int

	DefaultPhoneRegion string

	NetSuite NetSuiteConfig
	Sync     SyncConfig
	Email    EmailConfig
	Teams    TeamsConfig
	Auth     AuthConfig
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	} else {
		log.Println("Loaded .env file successfully")
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		AppId:       getEnv("APP_ID", "supplier-portal"),
		JWTSecret:   getEnv("JWT_SECRET", "secret"),
		SkipAuth:    getEnv("SKIP_AUTH", "false") == "true",
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		DBDriver:       getEnv("DB_DRIVER", "postgres"),
		DatabaseURL:    getEnv("DATABASE_URL", "host=localhost port=5432 user=portal password=portal dbname=portal sslmode=disable"),
		DBMaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),

		MongoURI: getEnv("MONGO_URI", ""),
		MongoDB:  getEnv("MONGO_DB", "supplier-portal"),

		RedisAddress:  getEnv("REDIS_ADDRESS", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		DefaultPhoneRegion: getEnv("DEFAULT_PHONE_REGION", "US"),

		NetSuite: NetSuiteConfig{
			AccountID:      getEnv("NETSUITE_ACCOUNT_ID", ""),
			BaseURL:        getEnv("NETSUITE_BASE_URL", ""),
			ConsumerKey:    getEnv("NETSUITE_CONSUMER_KEY", ""),
			ConsumerSecret: getEnv("NETSUITE_CONSUMER_SECRET", ""),
			TokenID:        getEnv("NETSUITE_TOKEN_ID", ""),
			TokenSecret:    getEnv("NETSUITE_TOKEN_SECRET", ""),
			DealerCategory: getEnv("NETSUITE_DEALER_CATEGORY", "2"),
		},

		Sync: SyncConfig{
			POPolicy:      getEnv("SYNC_PO_POLICY", "create-only"),
			POCommitEvery: getEnvInt("SYNC_PO_COMMIT_EVERY", 50),
			LockEnabled:   getEnv("SYNC_LOCK_ENABLED", "false") == "true",
			LockTTL:       getEnvDuration("SYNC_LOCK_TTL", 30*time.Minute),
			AlertEmails:   getEnvList("SYNC_ALERT_EMAILS"),
			Schedules: map[string]string{
				"vendors":         getEnv("SYNC_SCHEDULE_VENDORS", ""),
				"dealers":         getEnv("SYNC_SCHEDULE_DEALERS", ""),
				"buyers":          getEnv("SYNC_SCHEDULE_BUYERS", ""),
				"purchase_orders": getEnv("SYNC_SCHEDULE_PURCHASE_ORDERS", ""),
				"items":           getEnv("SYNC_SCHEDULE_ITEMS", ""),
			},
		},

		Email: EmailConfig{
			Provider:       strings.ToLower(getEnv("EMAIL_PROVIDER", "smtp")),
			From:           getEnv("EMAIL_FROM", "no-reply@localhost"),
			SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),
			SendGridURL:    getEnv("SENDGRID_URL", "https://api.sendgrid.com/v3/mail/send"),
			SESRegion:      getEnv("SES_REGION", "us-east-1"),
			SESAccessKey:   getEnv("SES_ACCESS_KEY", ""),
			SESSecretKey:   getEnv("SES_SECRET_KEY", ""),
			SMTPHost:       getEnv("SMTP_HOST", ""),
			SMTPPort:       getEnvInt("SMTP_PORT", 25),
			SMTPUser:       getEnv("SMTP_USER", ""),
			SMTPPassword:   getEnv("SMTP_PASSWORD", ""),
		},

		Teams: TeamsConfig{
			Webhooks: map[string]string{
				"stock":           getEnv("TEAMS_WEBHOOK_STOCK", ""),
				"purchase_orders": getEnv("TEAMS_WEBHOOK_PURCHASE_ORDERS", ""),
				"sync":            getEnv("TEAMS_WEBHOOK_SYNC", ""),
				"invoices":        getEnv("TEAMS_WEBHOOK_INVOICES", ""),
			},
		},

		Auth: AuthConfig{
			OTPTTL:              getEnvDuration("OTP_TTL", 10*time.Minute),
			SessionTTL:          getEnvDuration("SESSION_TTL", 12*time.Hour),
			InternalEmailDomain: strings.ToLower(getEnv("INTERNAL_EMAIL_DOMAIN", "")),
		},
	}, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		log.Printf("Invalid integer for %s: %q, using %d", key, value, fallback)
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		log.Printf("Invalid duration for %s: %q, using %s", key, value, fallback)
		return fallback
	}
	return d
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
