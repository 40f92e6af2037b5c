package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"profile-report/internal/shared/telemetry"
)

const devJWTSecret = "dev-secret"

// Config holds application configuration.
type Config struct {
	Port                  string
	Env                   string
	LogLevel              string
	CORSAllowOrigin       []string
	DatabaseURL           string
	AutoMigrate           bool
	OpenAIAPIKey          string
	OpenAIBaseURL         string
	OpenAITimeout         time.Duration
	ReportModel           string
	GeneralModel          string
	JWTSecret             string
	GenerateRatePerMinute int
	// DevSeedUser, in dev without a database, seeds the in-memory
	// repositories so this user can generate a report.
	DevSeedUser string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")

	if env == "production" && dbURL == "" {
		telemetry.Error("config.missing", map[string]any{"key": "DATABASE_URL", "env": env})
	}

	secret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if secret == "" {
		if env == "production" {
			telemetry.Error("config.missing", map[string]any{"key": "JWT_SECRET", "env": env})
		} else {
			secret = devJWTSecret
		}
	}

	return Config{
		Port:                  getEnv("PORT", "8080"),
		Env:                   env,
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		CORSAllowOrigin:       splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		DatabaseURL:           dbURL,
		AutoMigrate:           getBool("AUTO_MIGRATE", false),
		OpenAIAPIKey:          getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:         getEnv("OPENAI_BASE_URL", ""),
		OpenAITimeout:         time.Duration(getInt("OPENAI_TIMEOUT_SECONDS", 0)) * time.Second,
		ReportModel:           getEnv("AI_MODEL_4o", "gpt-4"),
		GeneralModel:          getEnv("AI_MODEL", "gpt-4o"),
		JWTSecret:             secret,
		GenerateRatePerMinute: getInt("GENERATE_RATE_PER_MINUTE", 2),
		DevSeedUser:           strings.TrimSpace(os.Getenv("DEV_SEED_USER")),
	}
}

// IsDevLike reports whether the environment tolerates missing infrastructure.
func (c Config) IsDevLike() bool {
	switch c.Env {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseBool(raw)
	if err != nil {
		telemetry.Warn("config.invalid", map[string]any{"key": key, "value": raw})
		return def
	}
	return val
}

func getInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		telemetry.Warn("config.invalid", map[string]any{"key": key, "value": raw})
		return def
	}
	return val
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}
