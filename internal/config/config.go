// Package config loads the nightlightd YAML configuration.
package config

import (
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the daemon configuration.
type Config struct {
	HTTP            HTTPConfig     `yaml:"http"`
	MQTT            MQTTConfig     `yaml:"mqtt"`
	NTP             NTPConfig      `yaml:"ntp"`
	GPIO            GPIOConfig     `yaml:"gpio"`
	Database        DatabaseConfig `yaml:"database"`
	Log             LogConfig      `yaml:"log"`
	TickInterval    Duration       `yaml:"tick_interval"`    // Alarm evaluation interval
	ShutdownTimeout Duration       `yaml:"shutdown_timeout"` // Graceful stop budget
}

// HTTPConfig contains web server settings.
type HTTPConfig struct {
	Addr       string `yaml:"addr"`
	Gatekeeper string `yaml:"gatekeeper"` // Shared secret for schedule submission
	Debug      bool   `yaml:"debug"`      // Enables the raw PWM override page
}

// MQTTConfig contains MQTT publishing settings.
type MQTTConfig struct {
	Enabled   bool     `yaml:"enabled"`
	Broker    string   `yaml:"broker"`
	Heartbeat Duration `yaml:"heartbeat"` // 0 disables heartbeats
}

// NTPConfig contains clock synchronization settings.
type NTPConfig struct {
	Server         string   `yaml:"server"`
	UTCOffset      Duration `yaml:"utc_offset"`      // Base offset before DST
	ResyncInterval Duration `yaml:"resync_interval"` // Periodic resync cadence
}

// GPIOConfig contains PWM output settings.
type GPIOConfig struct {
	Enabled   bool     `yaml:"enabled"` // false drives a logging no-op instead of hardware
	Chip      string   `yaml:"chip"`
	DayPin    int      `yaml:"day_pin"`
	NightPin  int      `yaml:"night_pin"`
	PWMPeriod Duration `yaml:"pwm_period"`
}

// DatabaseConfig contains persistence settings.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Colors bool   `yaml:"colors"`
}

// Duration is a wrapper around time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Load reads and parses the configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables
	expanded := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

// Default returns a configuration with all defaults applied, for running
// without a config file.
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	return &cfg
}

func applyDefaults(cfg *Config) {
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8080"
	}

	if cfg.NTP.Server == "" {
		cfg.NTP.Server = "pool.ntp.org"
	}
	if cfg.NTP.ResyncInterval == 0 {
		cfg.NTP.ResyncInterval = Duration(6 * time.Hour)
	}

	if cfg.GPIO.Chip == "" {
		cfg.GPIO.Chip = "gpiochip0"
	}
	if cfg.GPIO.DayPin == 0 {
		cfg.GPIO.DayPin = 13
	}
	if cfg.GPIO.NightPin == 0 {
		cfg.GPIO.NightPin = 19
	}
	if cfg.GPIO.PWMPeriod == 0 {
		cfg.GPIO.PWMPeriod = Duration(10 * time.Millisecond)
	}

	if cfg.Database.Path == "" {
		cfg.Database.Path = "./nightlight.sqlite"
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	if cfg.TickInterval == 0 {
		cfg.TickInterval = Duration(time.Second)
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = Duration(5 * time.Second)
	}
}

// expandEnvVars expands environment variables in the format ${VAR} or ${VAR:default}
func expandEnvVars(input string) string {
	re := regexp.MustCompile(`\$\{([^}:]+)(?::([^}]*))?\}`)
	return re.ReplaceAllStringFunc(input, func(match string) string {
		parts := re.FindStringSubmatch(match)
		name := parts[1]
		def := parts[2]
		if v, ok := os.LookupEnv(strings.TrimSpace(name)); ok {
			return v
		}
		return def
	})
}
