package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DatabaseURL string
	JWTSecret   string

	GeminiAPIKey string
	GeminiModel  string

	PlaidClientID string
	PlaidSecret   string
	PlaidEnv      string

	JobSigningKey string
	LocalCron     bool

	DiscordBotToken  string
	DiscordChannelID string

	DemoMode    bool
	CORSOrigins []string

	InsightRetentionMonths int
	BudgetAlertThreshold   int
}

func Load() (Config, error) {
	// Load .env file if present
	_ = godotenv.Load()

	cfg := Config{
		Port:             getEnv("PORT", "8080"),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		JWTSecret:        getEnv("JWT_SECRET", ""),
		GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
		GeminiModel:      getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		PlaidClientID:    getEnv("PLAID_CLIENT_ID", ""),
		PlaidSecret:      getEnv("PLAID_SECRET", ""),
		PlaidEnv:         getEnv("PLAID_ENV", "sandbox"),
		JobSigningKey:    getEnv("JOB_SIGNING_KEY", ""),
		DiscordBotToken:  getEnv("DISCORD_BOT_TOKEN", ""),
		DiscordChannelID: getEnv("DISCORD_CHANNEL_ID", ""),
		CORSOrigins:      splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
	}

	var err error
	if cfg.LocalCron, err = getBool("JOBS_LOCAL_CRON", false); err != nil {
		return Config{}, err
	}
	if cfg.DemoMode, err = getBool("DEMO_MODE", false); err != nil {
		return Config{}, err
	}
	if cfg.InsightRetentionMonths, err = getInt("INSIGHT_RETENTION_MONTHS", 24); err != nil {
		return Config{}, err
	}
	if cfg.BudgetAlertThreshold, err = getInt("BUDGET_ALERT_THRESHOLD", 80); err != nil {
		return Config{}, err
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.PlaidEnv != "sandbox" && cfg.PlaidEnv != "production" {
		return Config{}, fmt.Errorf("invalid PLAID_ENV %q", cfg.PlaidEnv)
	}

	return cfg, nil
}

// PlaidEnabled reports whether bank linking credentials are present.
func (c Config) PlaidEnabled() bool {
	return c.PlaidClientID != "" && c.PlaidSecret != ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getBool(key string, fallback bool) (bool, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getInt(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
