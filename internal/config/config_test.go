package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
http:
  addr: ":8088"
  gatekeeper: "hunter2"
  debug: true
mqtt:
  enabled: true
  broker: "tcp://192.168.1.200:1883"
  heartbeat: "15m"
ntp:
  server: "fi.pool.ntp.org"
  utc_offset: "2h"
  resync_interval: "1h"
gpio:
  enabled: true
  chip: "gpiochip4"
  day_pin: 12
  night_pin: 18
  pwm_period: "5ms"
database:
  path: "/var/lib/nightlight/state.db"
log:
  level: "debug"
  colors: true
tick_interval: "500ms"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.HTTP.Addr != ":8088" || cfg.HTTP.Gatekeeper != "hunter2" || !cfg.HTTP.Debug {
		t.Errorf("http: got %+v", cfg.HTTP)
	}
	if !cfg.MQTT.Enabled || cfg.MQTT.Broker != "tcp://192.168.1.200:1883" {
		t.Errorf("mqtt: got %+v", cfg.MQTT)
	}
	if cfg.MQTT.Heartbeat.Duration() != 15*time.Minute {
		t.Errorf("heartbeat: got %v, want 15m", cfg.MQTT.Heartbeat.Duration())
	}
	if cfg.NTP.Server != "fi.pool.ntp.org" || cfg.NTP.UTCOffset.Duration() != 2*time.Hour {
		t.Errorf("ntp: got %+v", cfg.NTP)
	}
	if cfg.GPIO.Chip != "gpiochip4" || cfg.GPIO.DayPin != 12 || cfg.GPIO.NightPin != 18 {
		t.Errorf("gpio: got %+v", cfg.GPIO)
	}
	if cfg.GPIO.PWMPeriod.Duration() != 5*time.Millisecond {
		t.Errorf("pwm_period: got %v", cfg.GPIO.PWMPeriod.Duration())
	}
	if cfg.Database.Path != "/var/lib/nightlight/state.db" {
		t.Errorf("database path: got %q", cfg.Database.Path)
	}
	if cfg.Log.Level != "debug" || !cfg.Log.Colors {
		t.Errorf("log: got %+v", cfg.Log)
	}
	if cfg.TickInterval.Duration() != 500*time.Millisecond {
		t.Errorf("tick_interval: got %v", cfg.TickInterval.Duration())
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
http:
  gatekeeper: "secret"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("default addr: got %q", cfg.HTTP.Addr)
	}
	if cfg.NTP.Server != "pool.ntp.org" {
		t.Errorf("default ntp server: got %q", cfg.NTP.Server)
	}
	if cfg.NTP.ResyncInterval.Duration() != 6*time.Hour {
		t.Errorf("default resync: got %v", cfg.NTP.ResyncInterval.Duration())
	}
	if cfg.GPIO.Chip != "gpiochip0" || cfg.GPIO.DayPin != 13 || cfg.GPIO.NightPin != 19 {
		t.Errorf("default gpio: got %+v", cfg.GPIO)
	}
	if cfg.TickInterval.Duration() != time.Second {
		t.Errorf("default tick: got %v", cfg.TickInterval.Duration())
	}
	if cfg.Database.Path != "./nightlight.sqlite" {
		t.Errorf("default db path: got %q", cfg.Database.Path)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("default log level: got %q", cfg.Log.Level)
	}
}

func TestLoadExpandsEnvVars(t *testing.T) {
	t.Setenv("NIGHTLIGHT_SECRET", "swordfish")
	path := writeConfig(t, `
http:
  gatekeeper: "${NIGHTLIGHT_SECRET}"
mqtt:
  broker: "${NIGHTLIGHT_BROKER:tcp://localhost:1883}"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.Gatekeeper != "swordfish" {
		t.Errorf("gatekeeper: got %q, want swordfish", cfg.HTTP.Gatekeeper)
	}
	if cfg.MQTT.Broker != "tcp://localhost:1883" {
		t.Errorf("broker default: got %q", cfg.MQTT.Broker)
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	path := writeConfig(t, "tick_interval: \"soon\"\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unparseable duration")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.HTTP.Addr != ":8080" || cfg.TickInterval.Duration() != time.Second {
		t.Errorf("Default: got %+v", cfg)
	}
}
