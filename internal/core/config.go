// Package core contains the worktally domain: the entity registry with its
// cascades, hierarchical time aggregation, the single active timer, the
// filter and sort engine behind the task table, task lifecycle and ordering,
// and the Workspace facade that serializes access to all of it.
package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/valter-silva-au/worktally/pkg/models"
)

// ConfigFileName is the name of the YAML config file in the base directory.
const ConfigFileName = ".tallyconfig"

// ConfigurationManager loads and validates .tallyconfig.
type ConfigurationManager interface {
	LoadConfig() (*models.Config, error)
	ValidateConfig(cfg *models.Config) error
}

// viperConfigManager implements ConfigurationManager using Viper for
// reading YAML configuration files.
type viperConfigManager struct {
	// basePath is the root directory where .tallyconfig resides.
	basePath string
}

// NewConfigurationManager creates a new ConfigurationManager that reads
// configuration files relative to basePath.
func NewConfigurationManager(basePath string) ConfigurationManager {
	return &viperConfigManager{basePath: basePath}
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *models.Config {
	return &models.Config{
		SeedFile: "tally.yaml",
		EventLog: ".tally_events.jsonl",
		Tick:     time.Second,
		HTTP:     models.HTTPConfig{Addr: "127.0.0.1:8787"},
		Alerts: models.AlertConfig{
			TimerHours:    8,
			DueToday:      true,
			UrgentUnowned: true,
		},
	}
}

// LoadConfig reads .tallyconfig from the base path using Viper. If the file
// does not exist, defaults are returned.
func (cm *viperConfigManager) LoadConfig() (*models.Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigName(ConfigFileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(cm.basePath)

	// Set Viper defaults so missing keys fall back gracefully.
	v.SetDefault("actor", cfg.Actor)
	v.SetDefault("seed_file", cfg.SeedFile)
	v.SetDefault("event_log", cfg.EventLog)
	v.SetDefault("tick", cfg.Tick.String())
	v.SetDefault("http.addr", cfg.HTTP.Addr)
	v.SetDefault("alerts.timer_hours", cfg.Alerts.TimerHours)
	v.SetDefault("alerts.due_today", cfg.Alerts.DueToday)
	v.SetDefault("alerts.urgent_unassigned", cfg.Alerts.UrgentUnowned)
	v.SetDefault("notifications.enabled", cfg.Notifications.Enabled)
	v.SetDefault("notifications.slack.webhook_url", cfg.Notifications.Slack.WebhookURL)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading %s: %w", ConfigFileName, err)
	}

	cfg.Actor = v.GetString("actor")
	cfg.SeedFile = v.GetString("seed_file")
	cfg.EventLog = v.GetString("event_log")
	cfg.Tick = v.GetDuration("tick")
	cfg.HTTP.Addr = v.GetString("http.addr")
	cfg.Alerts.TimerHours = v.GetInt("alerts.timer_hours")
	cfg.Alerts.DueToday = v.GetBool("alerts.due_today")
	cfg.Alerts.UrgentUnowned = v.GetBool("alerts.urgent_unassigned")
	cfg.Notifications.Enabled = v.GetBool("notifications.enabled")
	cfg.Notifications.Slack.WebhookURL = v.GetString("notifications.slack.webhook_url")

	return cfg, nil
}

// ValidateConfig checks cfg for invalid values and reports every problem at once.
func (cm *viperConfigManager) ValidateConfig(cfg *models.Config) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	var errs []string

	if cfg.Tick <= 0 {
		errs = append(errs, fmt.Sprintf("tick must be positive, got %s", cfg.Tick))
	}
	if strings.TrimSpace(cfg.HTTP.Addr) == "" {
		errs = append(errs, "http.addr must not be empty")
	}
	if strings.TrimSpace(cfg.SeedFile) == "" {
		errs = append(errs, "seed_file must not be empty")
	}
	if cfg.Alerts.TimerHours < 0 {
		errs = append(errs, fmt.Sprintf("alerts.timer_hours must be non-negative, got %d", cfg.Alerts.TimerHours))
	}
	if cfg.Notifications.Enabled && cfg.Notifications.Slack.WebhookURL == "" {
		errs = append(errs, "notifications.slack.webhook_url is required when notifications are enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
