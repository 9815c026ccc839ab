package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr     string
	MySQLDSN string

	NewsBaseURL  string
	NewsAPIKey   string
	NewsCountry  string
	NewsCategory string
	NewsPageSize int
	HTTPTimeout  time.Duration

	LLMBaseURL string
	LLMAPIKey  string
	LLMModel   string
	LLMTimeout time.Duration

	CMSServiceDomain string
	CMSAPIKey        string

	AuthBaseURL string
	AuthAnonKey string

	CronSecret string

	AmazonTag string
	RakutenID string

	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOSecure    bool
	MinIOBucket    string

	DashboardURL string
}

func Load() Config {
	_ = godotenv.Load()

	return Config{
		Addr:     getenv("ADDR", ":8080"),
		MySQLDSN: getenv("MYSQL_DSN", "autoblog:autoblog@tcp(127.0.0.1:3306)/autoblog?charset=utf8mb4&parseTime=True&loc=Local"),

		NewsBaseURL:  getenv("NEWSAPI_BASE_URL", "https://newsapi.org/v2"),
		NewsAPIKey:   getenv("NEWSAPI_KEY", ""),
		NewsCountry:  getenv("NEWS_COUNTRY", "jp"),
		NewsCategory: getenv("NEWS_CATEGORY", "technology"),
		NewsPageSize: getenvInt("NEWS_PAGE_SIZE", 10),
		HTTPTimeout:  time.Duration(getenvInt("HTTP_TIMEOUT_SECONDS", 20)) * time.Second,

		LLMBaseURL: getenv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		LLMAPIKey:  getenv("OPENAI_API_KEY", ""),
		LLMModel:   getenv("OPENAI_MODEL", "gpt-4"),
		LLMTimeout: time.Duration(getenvInt("OPENAI_TIMEOUT_SECONDS", 60)) * time.Second,

		CMSServiceDomain: getenv("MICROCMS_SERVICE_DOMAIN", ""),
		CMSAPIKey:        getenv("MICROCMS_API_KEY", ""),

		AuthBaseURL: getenv("SUPABASE_URL", ""),
		AuthAnonKey: getenv("SUPABASE_ANON_KEY", ""),

		CronSecret: getenv("CRON_SECRET", ""),

		AmazonTag: getenv("AFFILIATE_AMAZON_TAG", ""),
		RakutenID: getenv("AFFILIATE_RAKUTEN_ID", ""),

		MinIOEndpoint:  getenv("MINIO_ENDPOINT", ""),
		MinIOAccessKey: getenv("MINIO_ACCESS_KEY", "minioadmin"),
		MinIOSecretKey: getenv("MINIO_SECRET_KEY", "minioadmin"),
		MinIOSecure:    getenvBool("MINIO_SECURE", false),
		MinIOBucket:    getenv("MINIO_BUCKET", "autoblog"),

		DashboardURL: getenv("DASHBOARD_URL", "/dashboard"),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}
