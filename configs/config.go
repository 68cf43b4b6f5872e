package config

import (
	"os"
	"strconv"
	"time"
)

type R2 struct {
	AccountID  string
	AccessKey  string
	SecretKey  string
	BucketName string
	PublicBase string
}

type Gemini struct {
	APIKey   string
	Model    string
	Endpoint string
	Timeout  time.Duration
}

type Telegram struct {
	BotToken string
	ChatID   string
}

type Config struct {
	ListenAddr            string
	PostgresURI           string
	RedisURI              string
	RegistryCSVURL        string
	GoogleCredentialsFile string
	PostsSpreadsheetID    string
	PostsSheetName        string
	MediaRootFolderID     string
	TenantBaseDomain      string
	TriggerToken          string
	TriggerIdentity       string
	FleetSchedule         string
	BatchSize             int
	ImageCap              int
	RateLimitMax          int
	RateLimitWindow       time.Duration
	Gemini                Gemini
	R2                    R2
	Telegram              Telegram
}

func LoadConfig() *Config {
	return &Config{
		ListenAddr:            getEnv("LISTEN_ADDR", ":3000"),
		PostgresURI:           getEnv("POSTGRES_URI", ""),
		RedisURI:              getEnv("REDIS_URI", "127.0.0.1:6379"),
		RegistryCSVURL:        getEnv("REGISTRY_CSV_URL", ""),
		GoogleCredentialsFile: getEnv("GOOGLE_CREDENTIALS_FILE", "credentials.json"),
		PostsSpreadsheetID:    getEnv("POSTS_SPREADSHEET_ID", ""),
		PostsSheetName:        getEnv("POSTS_SHEET_NAME", "latest_posts"),
		MediaRootFolderID:     getEnv("MEDIA_ROOT_FOLDER_ID", ""),
		TenantBaseDomain:      getEnv("TENANT_BASE_DOMAIN", "craftsites.app"),
		TriggerToken:          getEnv("TRIGGER_TOKEN", ""),
		TriggerIdentity:       getEnv("TRIGGER_IDENTITY", ""),
		FleetSchedule:         getEnv("FLEET_SCHEDULE", "@daily"),
		BatchSize:             getEnvInt("BATCH_SIZE", 5),
		ImageCap:              getEnvInt("IMAGE_CAP", 10),
		RateLimitMax:          getEnvInt("RATE_LIMIT_MAX", 5),
		RateLimitWindow:       getEnvDuration("RATE_LIMIT_WINDOW", 60*time.Second),
		Gemini: Gemini{
			APIKey:   getEnv("GEMINI_API_KEY", ""),
			Model:    getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
			Endpoint: getEnv("GEMINI_ENDPOINT", "https://generativelanguage.googleapis.com"),
			Timeout:  getEnvDuration("GEMINI_TIMEOUT", 120*time.Second),
		},
		R2: R2{
			AccountID:  getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:  getEnv("R2_ACCESS_KEY", ""),
			SecretKey:  getEnv("R2_SECRET_KEY", ""),
			BucketName: getEnv("R2_BUCKET_NAME", ""),
			PublicBase: getEnv("R2_PUBLIC_BASE", ""),
		},
		Telegram: Telegram{
			BotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
			ChatID:   getEnv("TELEGRAM_CHAT_ID", ""),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
