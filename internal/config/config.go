package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/hive-corporation/keyguard/internal/core/domain"
)

// Config holds all configuration for keyguard.
type Config struct {
	LogLevel string

	// Audit log retrieval
	LogGroup    string
	Lookback    time.Duration
	RecordLimit int

	// Classification thresholds
	Policy domain.ClassifierPolicy

	// Notification channels (each optional, SNS is the primary one)
	SNSTopicARN       string
	SlackBotToken     string
	SlackChannel      string
	SlackMentionTeam  string
	SlackAPIURL       string
	NATSURL           string
	NATSSubject       string
	NotifyHTTPTimeout time.Duration
	NotifyRetry       RetryConfig

	// Incident archive (optional)
	DatabaseURL string

	// REST API
	APIPort      string
	APIAuthToken string
}

// RetryConfig controls the resilient client used by HTTP notifiers.
type RetryConfig struct {
	EnableCircuitBreaker bool
	MaxFailures          uint32
	CircuitTimeout       time.Duration
	MaxRetries           int
	InitialInterval      time.Duration
	MaxInterval          time.Duration
}

// Load reads configuration from an optional .env file and environment variables.
func Load() (*Config, error) {
	// .env is optional; real deployments set variables on the function
	_ = godotenv.Load()

	return FromEnv()
}

// FromEnv builds a Config from environment variables only.
func FromEnv() (*Config, error) {
	policy := domain.DefaultClassifierPolicy()

	lookback, err := getEnvDuration("LOOKBACK_WINDOW", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	recordLimit, err := getEnvInt("LOG_RECORD_LIMIT", 1000)
	if err != nil {
		return nil, err
	}
	highVolume, err := getEnvInt("HIGH_VOLUME_THRESHOLD", policy.HighVolumeThreshold)
	if err != nil {
		return nil, err
	}
	httpTimeout, err := getEnvDuration("NOTIFY_HTTP_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	retry, err := loadRetryConfig()
	if err != nil {
		return nil, err
	}

	policy.HighVolumeThreshold = highVolume
	policy.SensitiveServices = getEnvList("SENSITIVE_SERVICES", policy.SensitiveServices)
	policy.UnusualRegions = getEnvList("UNUSUAL_REGIONS", policy.UnusualRegions)
	policy.Window = lookback

	cfg := &Config{
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogGroup:          getEnv("AUDIT_LOG_GROUP", "/aws/cloudtrail"),
		Lookback:          lookback,
		RecordLimit:       recordLimit,
		Policy:            policy,
		SNSTopicARN:       os.Getenv("NOTIFY_SNS_TOPIC_ARN"),
		SlackBotToken:     os.Getenv("SLACK_BOT_TOKEN"),
		SlackChannel:      getEnv("SLACK_CHANNEL_SECURITY", "#security-alerts"),
		SlackMentionTeam:  getEnv("SLACK_MENTION_TEAM", "@security-team"),
		SlackAPIURL:       getEnv("SLACK_API_URL", "https://slack.com/api/chat.postMessage"),
		NATSURL:           os.Getenv("NATS_URL"),
		NATSSubject:       getEnv("NATS_SUBJECT", "security.exposed_keys"),
		NotifyHTTPTimeout: httpTimeout,
		NotifyRetry:       retry,
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		APIPort:           getEnv("REST_API_PORT", "8080"),
		APIAuthToken:      os.Getenv("REST_API_AUTH_TOKEN"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the responder cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.LogGroup) == "" {
		errs = append(errs, errors.New("AUDIT_LOG_GROUP must not be empty"))
	}
	if c.Lookback <= 0 {
		errs = append(errs, errors.New("LOOKBACK_WINDOW must be positive"))
	}
	if c.RecordLimit <= 0 {
		errs = append(errs, errors.New("LOG_RECORD_LIMIT must be positive"))
	}
	if c.Policy.HighVolumeThreshold < 0 {
		errs = append(errs, errors.New("HIGH_VOLUME_THRESHOLD must not be negative"))
	}
	return errors.Join(errs...)
}

// HasNotifier reports whether at least one notification channel is configured.
func (c *Config) HasNotifier() bool {
	return c.SNSTopicARN != "" || c.SlackBotToken != "" || c.NATSURL != ""
}

func loadRetryConfig() (RetryConfig, error) {
	maxFailures, err := getEnvInt("NOTIFY_CIRCUIT_BREAKER_MAX_FAILURES", 5)
	if err != nil {
		return RetryConfig{}, err
	}
	circuitTimeout, err := getEnvDuration("NOTIFY_CIRCUIT_BREAKER_TIMEOUT", 30*time.Second)
	if err != nil {
		return RetryConfig{}, err
	}
	maxRetries, err := getEnvInt("NOTIFY_RETRY_MAX_ATTEMPTS", 3)
	if err != nil {
		return RetryConfig{}, err
	}
	initial, err := getEnvDuration("NOTIFY_RETRY_INITIAL_INTERVAL", 500*time.Millisecond)
	if err != nil {
		return RetryConfig{}, err
	}
	maxInterval, err := getEnvDuration("NOTIFY_RETRY_MAX_INTERVAL", 5*time.Second)
	if err != nil {
		return RetryConfig{}, err
	}

	return RetryConfig{
		EnableCircuitBreaker: getEnvBool("NOTIFY_CIRCUIT_BREAKER_ENABLED", true),
		MaxFailures:          uint32(max(maxFailures, 1)),
		CircuitTimeout:       circuitTimeout,
		MaxRetries:           max(maxRetries, 0),
		InitialInterval:      initial,
		MaxInterval:          maxInterval,
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue, nil
	}
	intVal, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, val, err)
	}
	return intVal, nil
}

func getEnvBool(key string, defaultValue bool) bool {
	if val := os.Getenv(key); val != "" {
		if boolVal, err := strconv.ParseBool(val); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, val, err)
	}
	return d, nil
}

// getEnvList reads a comma-separated list, dropping empty items.
func getEnvList(key string, defaultValue []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}
	var items []string
	for _, item := range strings.Split(val, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
