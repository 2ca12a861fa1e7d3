package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/wealth")
	t.Setenv("JWT_SECRET", "secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "9090")
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "gemini-2.0-flash", cfg.GeminiModel)
	assert.Equal(t, "sandbox", cfg.PlaidEnv)
	assert.Equal(t, 24, cfg.InsightRetentionMonths)
	assert.Equal(t, 80, cfg.BudgetAlertThreshold)
	assert.False(t, cfg.LocalCron)
	assert.False(t, cfg.PlaidEnabled())
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("JOBS_LOCAL_CRON", "true")
	t.Setenv("BUDGET_ALERT_THRESHOLD", "90")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("PLAID_CLIENT_ID", "id")
	t.Setenv("PLAID_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.LocalCron)
	assert.Equal(t, 90, cfg.BudgetAlertThreshold)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.True(t, cfg.PlaidEnabled())
}

func TestLoadMissingRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "secret")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")

	t.Setenv("DATABASE_URL", "postgres://localhost/wealth")
	t.Setenv("JWT_SECRET", "")
	_, err = Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoadInvalidValues(t *testing.T) {
	setRequired(t)
	t.Setenv("DEMO_MODE", "maybe")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("DEMO_MODE", "")
	t.Setenv("PLAID_ENV", "development")
	_, err = Load()
	require.Error(t, err)
}
