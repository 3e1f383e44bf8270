package core

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/valter-silva-au/worktally/pkg/models"
)

// --- Helper ---

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// --- LoadConfig tests ---

func TestLoadConfig_Defaults_WhenNoFile(t *testing.T) {
	dir := t.TempDir()
	cm := NewConfigurationManager(dir)

	cfg, err := cm.LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.SeedFile != "tally.yaml" {
		t.Errorf("SeedFile = %q, want %q", cfg.SeedFile, "tally.yaml")
	}
	if cfg.EventLog != ".tally_events.jsonl" {
		t.Errorf("EventLog = %q, want %q", cfg.EventLog, ".tally_events.jsonl")
	}
	if cfg.Tick != time.Second {
		t.Errorf("Tick = %s, want 1s", cfg.Tick)
	}
	if cfg.HTTP.Addr != "127.0.0.1:8787" {
		t.Errorf("HTTP.Addr = %q, want %q", cfg.HTTP.Addr, "127.0.0.1:8787")
	}
	if cfg.Alerts.TimerHours != 8 {
		t.Errorf("Alerts.TimerHours = %d, want 8", cfg.Alerts.TimerHours)
	}
	if cfg.Actor != "" {
		t.Errorf("Actor = %q, want empty", cfg.Actor)
	}
}

func TestLoadConfig_ReadsTallyconfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".tallyconfig.yaml", `
actor: U-1
seed_file: team.yaml
event_log: events.jsonl
tick: 250ms
http:
  addr: "0.0.0.0:9000"
alerts:
  timer_hours: 4
  due_today: false
notifications:
  enabled: true
  slack:
    webhook_url: "https://hooks.slack.example/T000"
`)

	cm := NewConfigurationManager(dir)
	cfg, err := cm.LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Actor != "U-1" {
		t.Errorf("Actor = %q, want %q", cfg.Actor, "U-1")
	}
	if cfg.SeedFile != "team.yaml" {
		t.Errorf("SeedFile = %q, want %q", cfg.SeedFile, "team.yaml")
	}
	if cfg.EventLog != "events.jsonl" {
		t.Errorf("EventLog = %q, want %q", cfg.EventLog, "events.jsonl")
	}
	if cfg.Tick != 250*time.Millisecond {
		t.Errorf("Tick = %s, want 250ms", cfg.Tick)
	}
	if cfg.HTTP.Addr != "0.0.0.0:9000" {
		t.Errorf("HTTP.Addr = %q, want %q", cfg.HTTP.Addr, "0.0.0.0:9000")
	}
	if cfg.Alerts.TimerHours != 4 {
		t.Errorf("Alerts.TimerHours = %d, want 4", cfg.Alerts.TimerHours)
	}
	if cfg.Alerts.DueToday {
		t.Error("Alerts.DueToday = true, want false")
	}
	if !cfg.Alerts.UrgentUnowned {
		t.Error("Alerts.UrgentUnowned = false, want default true")
	}
	if !cfg.Notifications.Enabled {
		t.Error("Notifications.Enabled = false, want true")
	}
	if cfg.Notifications.Slack.WebhookURL != "https://hooks.slack.example/T000" {
		t.Errorf("WebhookURL = %q", cfg.Notifications.Slack.WebhookURL)
	}
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".tallyconfig.yaml", "http: [unclosed\n")

	cm := NewConfigurationManager(dir)
	if _, err := cm.LoadConfig(); err == nil {
		t.Fatal("expected error for malformed config, got nil")
	}
}

// --- ValidateConfig tests ---

func TestValidateConfig(t *testing.T) {
	cm := NewConfigurationManager(t.TempDir())

	tests := []struct {
		name    string
		mutate  func(c *models.Config)
		wantErr string
	}{
		{name: "defaults are valid"},
		{
			name:    "zero tick",
			mutate:  func(c *models.Config) { c.Tick = 0 },
			wantErr: "tick must be positive",
		},
		{
			name:    "empty addr",
			mutate:  func(c *models.Config) { c.HTTP.Addr = " " },
			wantErr: "http.addr must not be empty",
		},
		{
			name:    "empty seed file",
			mutate:  func(c *models.Config) { c.SeedFile = "" },
			wantErr: "seed_file must not be empty",
		},
		{
			name:    "negative timer hours",
			mutate:  func(c *models.Config) { c.Alerts.TimerHours = -1 },
			wantErr: "alerts.timer_hours must be non-negative",
		},
		{
			name:    "notifications without webhook",
			mutate:  func(c *models.Config) { c.Notifications.Enabled = true },
			wantErr: "webhook_url is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			if tt.mutate != nil {
				tt.mutate(cfg)
			}
			err := cm.ValidateConfig(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidateConfig_Nil(t *testing.T) {
	cm := NewConfigurationManager(t.TempDir())
	if err := cm.ValidateConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
}
