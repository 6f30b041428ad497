package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	App     AppConfig
	API     APIConfig
	Auth    AuthConfig
	Redis   RedisConfig
	Journal JournalConfig
	Sales   SalesConfig
}

type AppConfig struct {
	Env               string
	LogLevel          string
	HTTPPort          string
	GRPCPort          string
	RateLimit         string
	PrometheusEnabled bool
	CORSOrigins       []string
}

type APIConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

type AuthConfig struct {
	JWTSecret string
	JWTTTL    time.Duration
}

type JournalConfig struct {
	DSN string
}

type SalesConfig struct {
	TaxRate decimal.Decimal
}

func LoadConfig() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))

	taxRate, err := decimal.NewFromString(getEnv("TAX_RATE", "0"))
	if err != nil || taxRate.IsNegative() {
		log.Printf("Invalid TAX_RATE, using 0")
		taxRate = decimal.Zero
	}

	return Config{
		App: AppConfig{
			Env:               getEnv("APP_ENV", "development"),
			LogLevel:          getEnv("LOG_LEVEL", "info"),
			HTTPPort:          getEnv("HTTP_PORT", "8080"),
			GRPCPort:          getEnv("GRPC_PORT", "50061"),
			RateLimit:         getEnv("RATE_LIMIT", "120-M"),
			PrometheusEnabled: getBool("PROMETHEUS_ENABLED", true),
			CORSOrigins:       splitList(getEnv("CORS_ORIGINS", "*")),
		},
		API: APIConfig{
			BaseURL: getEnv("API_BASE_URL", "http://localhost:3000"),
			Token:   getEnv("API_TOKEN", ""),
			Timeout: getDuration("API_TIMEOUT", 15*time.Second),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", "change-me"),
			JWTTTL:    getDuration("JWT_TTL", 12*time.Hour),
		},
		Redis: RedisConfig{
			Enabled:  getBool("REDIS_ENABLED", true),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Journal: JournalConfig{
			DSN: getEnv("JOURNAL_DSN", ""),
		},
		Sales: SalesConfig{
			TaxRate: taxRate,
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(getEnv(key, strconv.FormatBool(defaultValue)))
	if err != nil {
		return defaultValue
	}
	return v
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	v, err := time.ParseDuration(getEnv(key, ""))
	if err != nil || v <= 0 {
		return defaultValue
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
