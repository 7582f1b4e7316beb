package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration
//
//nolint:govet // Field alignment optimization would reduce readability
type Config struct {
	Server        ServerConfig
	Intake        IntakeConfig
	Relay         RelayConfig
	Storage       StorageConfig
	Logging       LoggingConfig
	Observability ObservabilityConfig
	Profiling     ProfilingConfig
}

type ServerConfig struct {
	Port           string
	GinMode        string
	AppEnv         string
	BaseURL        string
	AllowedOrigins []string
}

// IntakeConfig controls the lead intake endpoint limits.
type IntakeConfig struct {
	// SubmissionQuota is the number of lead submissions allowed per client
	// network origin within one quota window.
	SubmissionQuota    int
	QuotaWindowSeconds int

	// GeneralRatePerSecond/GeneralBurst configure the token-bucket limiter on
	// the read-only routes (catalog, health).
	GeneralRatePerSecond float64
	GeneralBurst         int

	// MaxAttachmentBytes is the bill attachment ceiling. The HTTP body limit
	// adds headroom on top of this for the multipart field overhead.
	MaxAttachmentBytes int64
}

// RelayConfig configures downstream lead delivery. Email is used when a
// SendGrid key is present, the webhook when a URL is present; both may be
// active at once. With neither configured, accepted leads are logged only.
type RelayConfig struct {
	SendGridAPIKey string
	FromEmail      string
	FromName       string
	LeadInboxEmail string
	LeadInboxName  string

	WebhookURL    string
	WebhookSecret string

	TimeoutSeconds int
}

type StorageConfig struct {
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	Endpoint        string
	Region          string
}

type LoggingConfig struct {
	Level string
	Dir   string
}

type ObservabilityConfig struct {
	CollectorEndpoint string
	ServiceName       string
	ServiceNamespace  string
	ServiceVersion    string
	ServiceInstanceID string
}

type ProfilingConfig struct {
	Enabled               bool
	Endpoint              string
	AppName               string
	SampleTypes           string
	UploadIntervalSeconds int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("BASE_URL", "https://trimwise.co")
	v.SetDefault("ALLOWED_CORS_ORIGINS", "https://trimwise.co,https://www.trimwise.co")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_DIR", "/app/logs")

	v.SetDefault("SUBMISSION_QUOTA", 5)
	v.SetDefault("QUOTA_WINDOW_SECONDS", 60)
	v.SetDefault("GENERAL_RATE_PER_SECOND", 10.0)
	v.SetDefault("GENERAL_RATE_BURST", 20)
	v.SetDefault("MAX_ATTACHMENT_BYTES", 10*1024*1024)

	v.SetDefault("RELAY_FROM_EMAIL", "leads@trimwise.co")
	v.SetDefault("RELAY_FROM_NAME", "TrimWise Leads")
	v.SetDefault("RELAY_INBOX_NAME", "TrimWise Sales")
	v.SetDefault("RELAY_TIMEOUT_SECONDS", 10)

	v.SetDefault("STORAGE_REGION", "us-east-1")

	v.SetDefault("O11Y_EXPORTER_ENDPOINT", "") // OTLP over HTTP, tracing disabled when empty
	v.SetDefault("O11Y_SERVICE_NAME", "trimwise-api")
	v.SetDefault("O11Y_SERVICE_NAMESPACE", "trimwise")
	v.SetDefault("O11Y_SERVICE_VERSION", "1.0.0")
	v.SetDefault("O11Y_PROFILING_ENABLED", false)
	v.SetDefault("O11Y_PROFILING_APP_NAME", "trimwise-api")
	v.SetDefault("O11Y_PROFILING_SAMPLE_TYPES", "cpu,alloc_space,alloc_objects,goroutines,mutex,block")
	v.SetDefault("O11Y_PROFILING_UPLOAD_INTERVAL_SECONDS", 15)

	// Automatically read environment variables
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read from .env file if it exists
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("..")
	_ = v.ReadInConfig() //nolint:errcheck // Ignore error if .env file doesn't exist

	// Parse allowed CORS origins (comma-separated)
	allowedOrigins := []string{}
	originsStr := v.GetString("ALLOWED_CORS_ORIGINS")
	if originsStr != "" {
		for _, origin := range strings.Split(originsStr, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins = append(allowedOrigins, origin)
			}
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetString("PORT"),
			GinMode:        v.GetString("GIN_MODE"),
			AppEnv:         v.GetString("APP_ENV"),
			BaseURL:        v.GetString("BASE_URL"),
			AllowedOrigins: allowedOrigins,
		},
		Intake: IntakeConfig{
			SubmissionQuota:      v.GetInt("SUBMISSION_QUOTA"),
			QuotaWindowSeconds:   v.GetInt("QUOTA_WINDOW_SECONDS"),
			GeneralRatePerSecond: v.GetFloat64("GENERAL_RATE_PER_SECOND"),
			GeneralBurst:         v.GetInt("GENERAL_RATE_BURST"),
			MaxAttachmentBytes:   v.GetInt64("MAX_ATTACHMENT_BYTES"),
		},
		Relay: RelayConfig{
			SendGridAPIKey: v.GetString("SENDGRID_API_KEY"),
			FromEmail:      v.GetString("RELAY_FROM_EMAIL"),
			FromName:       v.GetString("RELAY_FROM_NAME"),
			LeadInboxEmail: v.GetString("RELAY_INBOX_EMAIL"),
			LeadInboxName:  v.GetString("RELAY_INBOX_NAME"),
			WebhookURL:     v.GetString("RELAY_WEBHOOK_URL"),
			WebhookSecret:  v.GetString("RELAY_WEBHOOK_SECRET"),
			TimeoutSeconds: v.GetInt("RELAY_TIMEOUT_SECONDS"),
		},
		Storage: StorageConfig{
			AccessKeyID:     v.GetString("STORAGE_ACCESS_KEY_ID"),
			SecretAccessKey: v.GetString("STORAGE_SECRET_ACCESS_KEY"),
			BucketName:      v.GetString("STORAGE_BUCKET"),
			Endpoint:        v.GetString("STORAGE_ENDPOINT"),
			Region:          v.GetString("STORAGE_REGION"),
		},
		Logging: LoggingConfig{
			Level: v.GetString("LOG_LEVEL"),
			Dir:   v.GetString("LOG_DIR"),
		},
		Observability: ObservabilityConfig{
			CollectorEndpoint: v.GetString("O11Y_EXPORTER_ENDPOINT"),
			ServiceName:       v.GetString("O11Y_SERVICE_NAME"),
			ServiceNamespace:  v.GetString("O11Y_SERVICE_NAMESPACE"),
			ServiceVersion:    v.GetString("O11Y_SERVICE_VERSION"),
			ServiceInstanceID: v.GetString("O11Y_SERVICE_INSTANCE_ID"),
		},
		Profiling: ProfilingConfig{
			Enabled:               v.GetBool("O11Y_PROFILING_ENABLED"),
			Endpoint:              v.GetString("O11Y_PROFILING_ENDPOINT"),
			AppName:               v.GetString("O11Y_PROFILING_APP_NAME"),
			SampleTypes:           v.GetString("O11Y_PROFILING_SAMPLE_TYPES"),
			UploadIntervalSeconds: v.GetInt("O11Y_PROFILING_UPLOAD_INTERVAL_SECONDS"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Intake.SubmissionQuota <= 0 {
		return fmt.Errorf("SUBMISSION_QUOTA must be positive")
	}
	if c.Intake.QuotaWindowSeconds <= 0 {
		return fmt.Errorf("QUOTA_WINDOW_SECONDS must be positive")
	}
	if c.Intake.MaxAttachmentBytes <= 0 {
		return fmt.Errorf("MAX_ATTACHMENT_BYTES must be positive")
	}
	if c.Relay.SendGridAPIKey != "" && c.Relay.LeadInboxEmail == "" {
		return fmt.Errorf("RELAY_INBOX_EMAIL is required when SENDGRID_API_KEY is set")
	}
	return nil
}

// IsDevelopment returns true when running in the development environment
func (c *Config) IsDevelopment() bool {
	return c.Server.AppEnv == "development"
}
