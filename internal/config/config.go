// Package config loads and validates scraper configuration via Viper.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Scraper ScraperConfig
	HTTP    HTTPConfig
	DB      DBConfig
	Server  ServerConfig
}

// ScraperConfig holds the run defaults that jobs may override.
type ScraperConfig struct {
	MaxComments   int
	ScrapeReplies bool
	Delay         time.Duration
	ExportFormat  string
	UserAgent     string
}

// HTTPConfig configures the API transport client.
type HTTPConfig struct {
	Client  string
	Timeout time.Duration
}

// DBConfig enables the optional Postgres run-history store.
type DBConfig struct {
	DSN   string
	Table string
}

// ServerConfig controls the optional ops listener.
type ServerConfig struct {
	MetricsAddr string
}

// Load constructs a Config by reading from Viper. The settings file
// keys are flat (max_comments, scrape_replies, ...) to match the
// documented settings format; service-only knobs are namespaced.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		Scraper: ScraperConfig{
			MaxComments:   v.GetInt("max_comments"),
			ScrapeReplies: v.GetBool("scrape_replies"),
			Delay:         time.Duration(v.GetFloat64("delay_between_requests") * float64(time.Second)),
			ExportFormat:  v.GetString("export_format"),
			UserAgent:     v.GetString("user_agent"),
		},
		HTTP: HTTPConfig{
			Client:  v.GetString("http.client"),
			Timeout: time.Duration(v.GetInt("request_timeout")) * time.Second,
		},
		DB: DBConfig{
			DSN:   v.GetString("db.dsn"),
			Table: v.GetString("db.table"),
		},
		Server: ServerConfig{
			MetricsAddr: v.GetString("server.metrics_addr"),
		},
	}
	return cfg, cfg.Validate()
}

// Validate checks for obviously bad configuration combinations.
func (c Config) Validate() error {
	if c.Scraper.MaxComments < 1 {
		return fmt.Errorf("max_comments must be >= 1")
	}
	if c.Scraper.Delay < 0 {
		return fmt.Errorf("delay_between_requests must be >= 0")
	}
	if c.Scraper.UserAgent == "" {
		return fmt.Errorf("user_agent must be set")
	}
	if c.HTTP.Timeout <= 0 {
		return fmt.Errorf("request_timeout must be > 0")
	}
	switch c.HTTP.Client {
	case "", "resty", "colly":
	default:
		return fmt.Errorf("http.client must be resty or colly, got %q", c.HTTP.Client)
	}
	return nil
}
