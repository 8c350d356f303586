package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultCalendarID is the public booking calendar used when no override is set.
	DefaultCalendarID = "ox4vzVu2ifBgvyV2FUUs"
	// DefaultChatWebhookURL is the automation webhook behind the chat widget.
	DefaultChatWebhookURL = "https://hoh.app.n8n.cloud/webhook/d079e4d9-a3e9-4054-8b50-f0222c75e880"
)

// Config holds application configuration
type Config struct {
	Port        string
	Env         string
	LogLevel    string
	LogFormat   string
	SiteBaseURL string

	// LeadConnector calendar (free-slots proxy)
	LeadConnectorAPIKey     string
	LeadConnectorVersion    string
	LeadConnectorCalendarID string
	LeadConnectorBaseURL    string
	LeadConnectorTimezone   string

	// Contact submission proxy; empty means submissions are simulated.
	ContactSubmissionURL string

	ChatWebhookURL  string
	UpstreamTimeout time.Duration

	CORSAllowedOrigins []string
	RateLimitPerMinute int
	RateLimitBurst     int

	// Optional Redis for a shared rate limit window
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// SendGrid office notifications
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	OfficeNotifyEmail string

	SessionTTL            time.Duration
	SuccessBannerDuration time.Duration
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   strings.ToLower(getEnv("LOG_FORMAT", "json")),
		SiteBaseURL: strings.TrimRight(getEnv("SITE_BASE_URL", "https://harborofhealthhomecare.com"), "/"),

		LeadConnectorAPIKey:     getEnv("LEADCONNECTOR_API_KEY", ""),
		LeadConnectorVersion:    getEnv("LEADCONNECTOR_VERSION", "2021-07-28"),
		LeadConnectorCalendarID: getEnv("LEADCONNECTOR_CALENDAR_ID", DefaultCalendarID),
		LeadConnectorBaseURL:    getEnv("LEADCONNECTOR_BASE_URL", "https://services.leadconnectorhq.com"),
		LeadConnectorTimezone:   getEnv("LEADCONNECTOR_TIMEZONE", "America/Edmonton"),

		ContactSubmissionURL: strings.TrimSpace(getEnv("CONTACT_SUBMISSION_URL", "")),

		ChatWebhookURL:  strings.TrimSpace(getEnvAllowEmpty("CHAT_WEBHOOK_URL", DefaultChatWebhookURL)),
		UpstreamTimeout: getEnvAsDuration("UPSTREAM_TIMEOUT", 15*time.Second),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS"),
		RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 60),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 20),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Harbor of Health Website"),
		OfficeNotifyEmail: getEnv("OFFICE_NOTIFY_EMAIL", ""),

		SessionTTL:            getEnvAsDuration("SESSION_TTL", 30*time.Minute),
		SuccessBannerDuration: getEnvAsDuration("SUCCESS_BANNER_DURATION", 5*time.Second),
	}
}

// IsProduction reports whether the service runs with ENV=production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAllowEmpty is getEnv for keys where an explicit empty value means
// "disabled" rather than "use the default".
func getEnvAllowEmpty(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma separated variable, dropping blanks.
func getEnvAsList(key string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
