package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/valter-silva-au/worktally/pkg/models"
	"pgregory.net/rapid"
)

// =============================================================================
// Generators
// =============================================================================

type tallyconfigValues struct {
	Actor      string
	SeedFile   string
	EventLog   string
	Tick       time.Duration
	Addr       string
	TimerHours int
	DueToday   bool
	Urgent     bool
	Notify     bool
	WebhookURL string
}

func genTallyconfigValues(t *rapid.T) tallyconfigValues {
	v := tallyconfigValues{
		Actor:      rapid.StringMatching(`U-[0-9]{1,3}`).Draw(t, "actor"),
		SeedFile:   rapid.StringMatching(`[a-z]{1,12}\.yaml`).Draw(t, "seedFile"),
		EventLog:   rapid.StringMatching(`[a-z]{1,12}\.jsonl`).Draw(t, "eventLog"),
		Tick:       time.Duration(rapid.IntRange(1, 5000).Draw(t, "tickMillis")) * time.Millisecond,
		Addr:       fmt.Sprintf("127.0.0.1:%d", rapid.IntRange(1024, 65535).Draw(t, "port")),
		TimerHours: rapid.IntRange(0, 48).Draw(t, "timerHours"),
		DueToday:   rapid.Bool().Draw(t, "dueToday"),
		Urgent:     rapid.Bool().Draw(t, "urgent"),
		Notify:     rapid.Bool().Draw(t, "notify"),
	}
	if v.Notify {
		v.WebhookURL = "https://hooks.example.com/" + rapid.StringMatching(`[a-z0-9]{1,16}`).Draw(t, "hook")
	}
	return v
}

// mustWriteTallyconfig writes a .tallyconfig.yaml file with the given values.
func mustWriteTallyconfig(t *testing.T, dir string, v tallyconfigValues) {
	t.Helper()
	content := fmt.Sprintf(`actor: "%s"
seed_file: "%s"
event_log: "%s"
tick: "%s"
http:
  addr: "%s"
alerts:
  timer_hours: %d
  due_today: %v
  urgent_unassigned: %v
notifications:
  enabled: %v
  slack:
    webhook_url: "%s"
`, v.Actor, v.SeedFile, v.EventLog, v.Tick, v.Addr,
		v.TimerHours, v.DueToday, v.Urgent, v.Notify, v.WebhookURL)

	path := filepath.Join(dir, ".tallyconfig.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write .tallyconfig.yaml: %v", err)
	}
}

// =============================================================================
// Properties
// =============================================================================

// Every key written to .tallyconfig is read back unchanged and the result
// passes validation.
func TestProperty_ConfigRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		want := genTallyconfigValues(rt)
		dir := t.TempDir()
		mustWriteTallyconfig(t, dir, want)

		cm := NewConfigurationManager(dir)
		cfg, err := cm.LoadConfig()
		if err != nil {
			rt.Fatalf("LoadConfig failed: %v", err)
		}

		if cfg.Actor != want.Actor {
			rt.Errorf("Actor: got %q, want %q", cfg.Actor, want.Actor)
		}
		if cfg.SeedFile != want.SeedFile {
			rt.Errorf("SeedFile: got %q, want %q", cfg.SeedFile, want.SeedFile)
		}
		if cfg.EventLog != want.EventLog {
			rt.Errorf("EventLog: got %q, want %q", cfg.EventLog, want.EventLog)
		}
		if cfg.Tick != want.Tick {
			rt.Errorf("Tick: got %s, want %s", cfg.Tick, want.Tick)
		}
		if cfg.HTTP.Addr != want.Addr {
			rt.Errorf("HTTP.Addr: got %q, want %q", cfg.HTTP.Addr, want.Addr)
		}
		if cfg.Alerts.TimerHours != want.TimerHours {
			rt.Errorf("Alerts.TimerHours: got %d, want %d", cfg.Alerts.TimerHours, want.TimerHours)
		}
		if cfg.Alerts.DueToday != want.DueToday {
			rt.Errorf("Alerts.DueToday: got %v, want %v", cfg.Alerts.DueToday, want.DueToday)
		}
		if cfg.Alerts.UrgentUnowned != want.Urgent {
			rt.Errorf("Alerts.UrgentUnowned: got %v, want %v", cfg.Alerts.UrgentUnowned, want.Urgent)
		}
		if cfg.Notifications.Enabled != want.Notify {
			rt.Errorf("Notifications.Enabled: got %v, want %v", cfg.Notifications.Enabled, want.Notify)
		}
		if cfg.Notifications.Slack.WebhookURL != want.WebhookURL {
			rt.Errorf("Slack.WebhookURL: got %q, want %q", cfg.Notifications.Slack.WebhookURL, want.WebhookURL)
		}

		if err := cm.ValidateConfig(cfg); err != nil {
			rt.Errorf("ValidateConfig rejected a valid config: %v", err)
		}
	})
}

// A non-positive tick is always rejected and named in the error.
func TestProperty_ValidateConfigRejectsNonPositiveTick(t *testing.T) {
	cm := NewConfigurationManager(t.TempDir())
	rapid.Check(t, func(rt *rapid.T) {
		cfg := DefaultConfig()
		cfg.Tick = -time.Duration(rapid.IntRange(0, 10000).Draw(rt, "negMillis")) * time.Millisecond

		err := cm.ValidateConfig(cfg)
		if err == nil {
			rt.Fatalf("expected error for tick %s", cfg.Tick)
		}
		if !strings.Contains(err.Error(), "tick must be positive") {
			rt.Errorf("error %q does not mention tick", err)
		}
	})
}

// Enabling notifications without a webhook is always a validation error.
func TestProperty_ValidateConfigRequiresWebhook(t *testing.T) {
	cm := NewConfigurationManager(t.TempDir())
	rapid.Check(t, func(rt *rapid.T) {
		cfg := DefaultConfig()
		cfg.Notifications = models.NotificationsConfig{Enabled: true}
		cfg.Alerts.TimerHours = rapid.IntRange(0, 48).Draw(rt, "timerHours")

		err := cm.ValidateConfig(cfg)
		if err == nil || !strings.Contains(err.Error(), "webhook_url") {
			rt.Fatalf("expected webhook_url error, got %v", err)
		}
	})
}
