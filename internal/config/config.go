package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port              string
	AllowedOrigin     string
	AppEnv            string
	LogLevel          string
	DatabaseURL       string
	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	SnapshotKey       string
	SessionSecret     string
	SessionTTLMinutes int
	DemoUserType      string
	DemoUserID        int64
	DefaultLanguage   string
}

// Load reads the environment, after merging an optional .env file from the
// working directory. Variables already set win over the file.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return fromEnv(), nil
}

func fromEnv() Config {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	sessionTTL, err := strconv.Atoi(getEnv("SESSION_TTL_MINUTES", "720"))
	if err != nil || sessionTTL < 1 {
		sessionTTL = 720
	}
	demoUserID, err := strconv.ParseInt(getEnv("DEMO_USER_ID", "1"), 10, 64)
	if err != nil || demoUserID < 1 {
		demoUserID = 1
	}

	cfg := Config{
		Port:              getEnv("PORT", "8080"),
		AllowedOrigin:     getEnv("ALLOWED_ORIGIN", "http://127.0.0.1:3000"),
		AppEnv:            strings.ToLower(getEnv("APP_ENV", "development")),
		LogLevel:          strings.ToLower(getEnv("LOG_LEVEL", "info")),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		RedisDB:           redisDB,
		SnapshotKey:       getEnv("SNAPSHOT_KEY", "rawbazaar:snapshot"),
		SessionSecret:     strings.TrimSpace(os.Getenv("SESSION_SECRET")),
		SessionTTLMinutes: sessionTTL,
		DemoUserType:      strings.ToLower(getEnv("DEMO_USER_TYPE", "vendor")),
		DemoUserID:        demoUserID,
		DefaultLanguage:   strings.ToLower(getEnv("DEFAULT_LANGUAGE", "hi")),
	}

	return cfg
}

func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}

func (c Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key string, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}
