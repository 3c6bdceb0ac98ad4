// Package config is responsible for initializing the application's
// configuration. It uses the Viper library to read settings from a
// JSON settings file and environment variables, providing a unified
// configuration system.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// DefaultUserAgent is sent when the settings file does not provide one.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0 Safari/537.36"

// InitConfig sets Viper defaults and environment bindings, then merges
// the settings file on top when a path is given. Call once at startup.
func InitConfig(settingsPath string) error {
	// --- Set Defaults ---
	viper.SetDefault("max_comments", 100)
	viper.SetDefault("scrape_replies", true)
	viper.SetDefault("request_timeout", 10)
	viper.SetDefault("delay_between_requests", 0.75)
	viper.SetDefault("user_agent", DefaultUserAgent)
	viper.SetDefault("export_format", "json")

	viper.SetDefault("http.client", "resty")
	viper.SetDefault("db.table", "scrape_runs")

	// --- Environment Variables ---
	viper.SetEnvPrefix("TIKTOK") // e.g., TIKTOK_MAX_COMMENTS=500
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// --- Read Settings File ---
	if settingsPath == "" {
		return nil
	}
	viper.SetConfigFile(settingsPath)
	viper.SetConfigType("json")
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("read settings file %s: %w", settingsPath, err)
	}
	return nil
}
