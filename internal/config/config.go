// Package config loads runtime settings from the environment and an optional
// .env file.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultPort          = "8080"
	DefaultSiteName      = "Stratalace"
	DefaultServiceName   = "stratalace-site"
	DefaultSubmitTimeout = 15 * time.Second
)

type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Site      SiteConfig
	CMS       CMSConfig
	CRM       CRMConfig
	Notify    NotifyConfig
	AI        AIConfig
	Leads     LeadsConfig
	PDF       PDFConfig
	Telemetry TelemetryConfig
}

type ServerConfig struct {
	Addr string
}

type LogConfig struct {
	Level string
	Debug bool
}

type SiteConfig struct {
	Name          string
	URL           string
	AnalyticsID   string
	SchedulingURL string
}

// CMSConfig is read for parity with deployments that carry it; content is
// embedded, so nothing consumes it yet.
type CMSConfig struct {
	APIURL string
	Token  string
}

type CRMConfig struct {
	APIURL string
	APIKey string
}

type NotifyConfig struct {
	ChatWebhookURL string
	Email          string
}

type AIConfig struct {
	AnthropicAPIKey string
}

// LeadsConfig controls where the contact wizard sends completed leads. An
// empty Endpoint means the in-process intake service handles them.
type LeadsConfig struct {
	Endpoint      string
	SubmitTimeout time.Duration
}

type PDFConfig struct {
	ChromePath string
}

type TelemetryConfig struct {
	OTLPEndpoint string
	ServiceName  string
}

// Load reads .env when present, then the process environment. Variables
// already set in the environment win over .env entries.
func Load() (*Config, error) {
	_ = godotenv.Load()

	timeout := DefaultSubmitTimeout
	if raw := strings.TrimSpace(os.Getenv("SUBMIT_TIMEOUT")); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("SUBMIT_TIMEOUT: %w", err)
		}
		if parsed <= 0 {
			return nil, fmt.Errorf("SUBMIT_TIMEOUT must be positive, got %s", raw)
		}
		timeout = parsed
	}

	addr := strings.TrimSpace(os.Getenv("ADDR"))
	if addr == "" {
		addr = ":" + getEnvOrDefault("PORT", DefaultPort)
	}

	cfg := &Config{
		Server: ServerConfig{Addr: addr},
		Log: LogConfig{
			Level: getEnvOrDefault("LOG_LEVEL", "info"),
			Debug: parseBool(os.Getenv("DEBUG")),
		},
		Site: SiteConfig{
			Name:          getEnvOrDefault("SITE_NAME", DefaultSiteName),
			URL:           strings.TrimRight(os.Getenv("SITE_URL"), "/"),
			AnalyticsID:   os.Getenv("ANALYTICS_ID"),
			SchedulingURL: os.Getenv("SCHEDULING_URL"),
		},
		CMS: CMSConfig{
			APIURL: os.Getenv("CMS_API_URL"),
			Token:  os.Getenv("CMS_API_TOKEN"),
		},
		CRM: CRMConfig{
			APIURL: os.Getenv("CRM_API_URL"),
			APIKey: os.Getenv("CRM_API_KEY"),
		},
		Notify: NotifyConfig{
			ChatWebhookURL: os.Getenv("CHAT_WEBHOOK_URL"),
			Email:          os.Getenv("NOTIFY_EMAIL"),
		},
		AI: AIConfig{
			AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		},
		Leads: LeadsConfig{
			Endpoint:      strings.TrimSpace(os.Getenv("LEAD_ENDPOINT")),
			SubmitTimeout: timeout,
		},
		PDF: PDFConfig{
			ChromePath: os.Getenv("CHROME_PATH"),
		},
		Telemetry: TelemetryConfig{
			OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
			ServiceName:  getEnvOrDefault("SERVICE_NAME", DefaultServiceName),
		},
	}
	return cfg, nil
}

// EffectiveLevel is the log level after applying DEBUG.
func (c LogConfig) EffectiveLevel() string {
	if c.Debug {
		return "debug"
	}
	return c.Level
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
