package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "/aws/cloudtrail", cfg.LogGroup)
	assert.Equal(t, 24*time.Hour, cfg.Lookback)
	assert.Equal(t, 1000, cfg.RecordLimit)
	assert.Equal(t, 100, cfg.Policy.HighVolumeThreshold)
	assert.Equal(t, []string{"iam", "kms", "secretsmanager"}, cfg.Policy.SensitiveServices)
	assert.Equal(t, []string{"ap-east-1", "me-south-1"}, cfg.Policy.UnusualRegions)
	assert.Equal(t, 24*time.Hour, cfg.Policy.Window)
	assert.Equal(t, "8080", cfg.APIPort)
	assert.True(t, cfg.NotifyRetry.EnableCircuitBreaker)
	assert.Equal(t, 3, cfg.NotifyRetry.MaxRetries)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("AUDIT_LOG_GROUP", "/org/trail")
	t.Setenv("LOOKBACK_WINDOW", "6h")
	t.Setenv("LOG_RECORD_LIMIT", "500")
	t.Setenv("HIGH_VOLUME_THRESHOLD", "20")
	t.Setenv("SENSITIVE_SERVICES", "iam, sts ,, kms")
	t.Setenv("UNUSUAL_REGIONS", "af-south-1")
	t.Setenv("NOTIFY_SNS_TOPIC_ARN", "arn:aws:sns:us-east-1:123456789012:ExposedKeys")
	t.Setenv("NOTIFY_CIRCUIT_BREAKER_ENABLED", "false")
	t.Setenv("NOTIFY_RETRY_MAX_ATTEMPTS", "0")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "/org/trail", cfg.LogGroup)
	assert.Equal(t, 6*time.Hour, cfg.Lookback)
	assert.Equal(t, 500, cfg.RecordLimit)
	assert.Equal(t, 20, cfg.Policy.HighVolumeThreshold)
	assert.Equal(t, []string{"iam", "sts", "kms"}, cfg.Policy.SensitiveServices)
	assert.Equal(t, []string{"af-south-1"}, cfg.Policy.UnusualRegions)
	assert.Equal(t, 6*time.Hour, cfg.Policy.Window)
	assert.True(t, cfg.HasNotifier())
	assert.False(t, cfg.NotifyRetry.EnableCircuitBreaker)
	assert.Equal(t, 0, cfg.NotifyRetry.MaxRetries)
}

func TestFromEnv_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"non numeric limit", "LOG_RECORD_LIMIT", "lots"},
		{"zero limit", "LOG_RECORD_LIMIT", "0"},
		{"bad lookback", "LOOKBACK_WINDOW", "yesterday"},
		{"negative lookback", "LOOKBACK_WINDOW", "-1h"},
		{"negative threshold", "HIGH_VOLUME_THRESHOLD", "-5"},
		{"bad retry interval", "NOTIFY_RETRY_INITIAL_INTERVAL", "soon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}

func TestHasNotifier(t *testing.T) {
	assert.False(t, (&Config{}).HasNotifier())
	assert.True(t, (&Config{SlackBotToken: "xoxb-1"}).HasNotifier())
	assert.True(t, (&Config{NATSURL: "nats://localhost:4222"}).HasNotifier())
}
