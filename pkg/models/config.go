package models

import "time"

// Config holds settings read from .tallyconfig via Viper.
type Config struct {
	Actor         string              `yaml:"actor" mapstructure:"actor"`
	SeedFile      string              `yaml:"seed_file" mapstructure:"seed_file"`
	EventLog      string              `yaml:"event_log" mapstructure:"event_log"`
	Tick          time.Duration       `yaml:"tick" mapstructure:"tick"`
	HTTP          HTTPConfig          `yaml:"http" mapstructure:"http"`
	Alerts        AlertConfig         `yaml:"alerts" mapstructure:"alerts"`
	Notifications NotificationsConfig `yaml:"notifications" mapstructure:"notifications"`
}

// HTTPConfig controls the JSON API server.
type HTTPConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
}

// AlertConfig holds alert thresholds.
type AlertConfig struct {
	TimerHours    int  `yaml:"timer_hours" mapstructure:"timer_hours"`
	DueToday      bool `yaml:"due_today" mapstructure:"due_today"`
	UrgentUnowned bool `yaml:"urgent_unassigned" mapstructure:"urgent_unassigned"`
}

// NotificationsConfig controls where alerts are delivered.
type NotificationsConfig struct {
	Enabled bool        `yaml:"enabled" mapstructure:"enabled"`
	Slack   SlackConfig `yaml:"slack" mapstructure:"slack"`
}

// SlackConfig holds the incoming webhook used for alert summaries.
type SlackConfig struct {
	WebhookURL string `yaml:"webhook_url" mapstructure:"webhook_url"`
}
