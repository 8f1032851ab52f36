package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                      string
	DatabaseURL               string
	DebugSQL                  bool
	JWTSecret                 string
	TokenTTL                  time.Duration
	SessionIdleTimeout        time.Duration
	RedisAddr                 string
	RedisPassword             string
	RedisDB                   int
	PromotionCacheTTL         time.Duration
	PromotionEnforceStartDate bool
	LowStockThreshold         int
	LogLevel                  string
	Location                  *time.Location
	SeedAdminEmail            string
	SeedAdminPassword         string
}

// Load reads .env (when present) and then the process environment.
// The returned bool is false when no .env file was found.
func Load() (Config, bool) {
	envFileFound := godotenv.Load() == nil

	loc, err := time.LoadLocation(getEnv("TIMEZONE", "Asia/Jakarta"))
	if err != nil {
		// Fallback to UTC+7 if timezone data not available
		loc = time.FixedZone("WIB", 7*60*60)
	}

	cfg := Config{
		Port:                      getEnv("PORT", "3000"),
		DatabaseURL:               databaseURL(),
		DebugSQL:                  getBool("DEBUG_SQL", false),
		JWTSecret:                 strings.TrimSpace(os.Getenv("JWT_SECRET")),
		TokenTTL:                  time.Duration(getInt("JWT_TTL_HOURS", 24)) * time.Hour,
		SessionIdleTimeout:        time.Duration(getInt("SESSION_IDLE_MINUTES", 5)) * time.Minute,
		RedisAddr:                 os.Getenv("REDIS_ADDR"),
		RedisPassword:             os.Getenv("REDIS_PASSWORD"),
		RedisDB:                   getInt("REDIS_DB", 0),
		PromotionCacheTTL:         time.Duration(getInt("PROMOTION_CACHE_TTL_SECONDS", 30)) * time.Second,
		PromotionEnforceStartDate: getBool("PROMOTION_ENFORCE_START_DATE", false),
		LowStockThreshold:         getInt("LOW_STOCK_THRESHOLD", 10),
		LogLevel:                  getEnv("LOG_LEVEL", "info"),
		Location:                  loc,
		SeedAdminEmail:            getEnv("SEED_ADMIN_EMAIL", "admin@example.com"),
		SeedAdminPassword:         os.Getenv("SEED_ADMIN_PASSWORD"),
	}

	return cfg, envFileFound
}

func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}

func databaseURL() string {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return dsn
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=%s",
		getEnv("DB_HOST", "127.0.0.1"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		getEnv("DB_PORT", "5432"),
		getEnv("TIMEZONE", "Asia/Jakarta"),
	)
}

func getEnv(key string, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}

func getInt(key string, fallback int) int {
	val, err := strconv.Atoi(os.Getenv(key))
	if err != nil || val < 0 {
		return fallback
	}
	return val
}

func getBool(key string, fallback bool) bool {
	val, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return val
}
