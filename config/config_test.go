package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	assert.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.GinMode)
	assert.Contains(t, cfg.Server.AllowedOrigins, "https://trimwise.co")

	assert.Equal(t, 5, cfg.Intake.SubmissionQuota)
	assert.Equal(t, 60, cfg.Intake.QuotaWindowSeconds)
	assert.Equal(t, int64(10*1024*1024), cfg.Intake.MaxAttachmentBytes)
	assert.Equal(t, 10.0, cfg.Intake.GeneralRatePerSecond)
	assert.Equal(t, 20, cfg.Intake.GeneralBurst)

	assert.Equal(t, 10, cfg.Relay.TimeoutSeconds)
	assert.Equal(t, "leads@trimwise.co", cfg.Relay.FromEmail)
	assert.Empty(t, cfg.Relay.SendGridAPIKey)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "trimwise-api", cfg.Observability.ServiceName)
	assert.False(t, cfg.Profiling.Enabled)
}

func TestLoad_OverridesFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SUBMISSION_QUOTA", "3")
	t.Setenv("QUOTA_WINDOW_SECONDS", "30")
	t.Setenv("APP_ENV", "development")

	cfg, err := Load()
	assert.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 3, cfg.Intake.SubmissionQuota)
	assert.Equal(t, 30, cfg.Intake.QuotaWindowSeconds)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_RejectsInvalidQuota(t *testing.T) {
	t.Setenv("SUBMISSION_QUOTA", "0")

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "SUBMISSION_QUOTA")
}

func TestLoad_SendGridRequiresInbox(t *testing.T) {
	t.Setenv("SENDGRID_API_KEY", "SG.test-key")

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "RELAY_INBOX_EMAIL")

	t.Setenv("RELAY_INBOX_EMAIL", "sales@trimwise.co")
	cfg, err := Load()
	assert.NoError(t, err)
	assert.Equal(t, "sales@trimwise.co", cfg.Relay.LeadInboxEmail)
}
