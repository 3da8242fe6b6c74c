package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/service/sound"
)

// Config holds clock preferences and connection parameters shared by the binaries.
type Config struct {
	// TimeZone is the IANA zone the clock displays.
	TimeZone string `yaml:"time_zone"`
	// Use24Hour selects 24-hour display at startup.
	Use24Hour bool `yaml:"use_24_hour"`
	// SnoozeDelay is the pause between a snooze and the re-arm.
	SnoozeDelay time.Duration `yaml:"snooze_delay"`
	// AlertInterval is how often the alert is replayed while sounding.
	AlertInterval time.Duration `yaml:"alert_interval"`
	// TickInterval is the wall-clock sampling period.
	TickInterval time.Duration `yaml:"tick_interval"`
	// ServerAddress is the gRPC control API address.
	ServerAddress string `yaml:"server_addr"`
	// HTTPAddress is the browser UI and metrics address; empty disables HTTP.
	HTTPAddress string `yaml:"http_addr"`
	// AllowedOrigins lists extra origins allowed to call the HTTP API.
	AllowedOrigins []string `yaml:"allowed_origins"`
	// Timeout is the duration for network operations and RPC calls.
	Timeout time.Duration `yaml:"timeout"`
	// Sound configures the alert sound.
	Sound Sound `yaml:"sound"`
	// Log configures logging.
	Log Log `yaml:"log"`
}

// Sound configures alert playback.
type Sound struct {
	// Mode is one of auto, command, bell, off.
	Mode string `yaml:"mode"`
	// File is the sound played in command mode.
	File string `yaml:"file"`
}

// Log configures the logger.
type Log struct {
	// Level is a zap level name.
	Level string `yaml:"level"`
	// File receives logs while the terminal UI is running.
	File string `yaml:"file"`
	// MaxSizeMB triggers rotation of File.
	MaxSizeMB int `yaml:"max_size_mb"`
	// MaxBackups is the number of rotated files kept.
	MaxBackups int `yaml:"max_backups"`
}

const (
	// DefaultConfigFilename is the default filename for settings.
	DefaultConfigFilename = "alarm-clock-settings.yaml"

	// DefaultServerAddress is the default gRPC control address.
	DefaultServerAddress = "127.0.0.1:50551"

	// DefaultHTTPAddress is the default browser UI address.
	DefaultHTTPAddress = "127.0.0.1:8080"

	// DefaultLogFilename receives logs while the terminal UI runs.
	DefaultLogFilename = "alarm-clock.log"

	// DefaultTimeZone is used when none is configured.
	DefaultTimeZone = "UTC"

	// DefaultTimeout is the default duration for network operations.
	DefaultTimeout = 5 * time.Second

	// DefaultSnoozeDelay is the default pause before a snoozed alarm re-arms.
	DefaultSnoozeDelay = 2 * time.Second

	// DefaultAlertInterval is the default alert replay period.
	DefaultAlertInterval = time.Second

	// DefaultTickInterval is the default sampling period.
	DefaultTickInterval = time.Second

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errServerSocketRequired is returned when server address is missing.
	errServerSocketRequired = errors.New("server address must be provided")
	// errUnknownLogLevel is returned for a level ParseLogLevel rejects.
	errUnknownLogLevel = errors.New("unknown log level")
)

// Default returns settings usable without a configuration file.
func Default() *Config {
	cfg := &Config{
		ServerAddress: DefaultServerAddress,
		HTTPAddress:   DefaultHTTPAddress,
	}

	// Defaults always validate.
	_ = Validate(cfg) //nolint:errcheck // See above.

	return cfg
}

// Load reads configuration from the provided path and validates essential fields.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	cfg := Config{
		ServerAddress: DefaultServerAddress,
	}

	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadOrDefault loads the file, falling back to Default when it does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}

	return cfg, err
}

// Save writes settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings and fills in defaults.
// Unusable clock settings are reported as domain.ErrConfiguration.
//
//nolint:cyclop // Flat list of independent checks.
func Validate(settings *Config) error {
	if settings.ServerAddress == "" {
		return errServerSocketRequired
	}

	if _, err := net.ResolveTCPAddr("tcp", settings.ServerAddress); err != nil {
		return fmt.Errorf("invalid server socket: %w", err)
	}

	if settings.HTTPAddress != "" {
		if _, err := net.ResolveTCPAddr("tcp", settings.HTTPAddress); err != nil {
			return fmt.Errorf("invalid http socket: %w", err)
		}
	}

	for _, origin := range settings.AllowedOrigins {
		if _, err := url.ParseRequestURI(origin); err != nil {
			return fmt.Errorf("invalid allowed origin %q: %w", origin, err)
		}
	}

	if settings.TimeZone == "" {
		settings.TimeZone = DefaultTimeZone
	}

	if _, err := time.LoadLocation(settings.TimeZone); err != nil {
		return fmt.Errorf("time zone %q: %w: %w", settings.TimeZone, domain.ErrConfiguration, err)
	}

	// Set default durations if not specified.
	if settings.Timeout <= 0 {
		settings.Timeout = DefaultTimeout
	}

	if settings.SnoozeDelay <= 0 {
		settings.SnoozeDelay = DefaultSnoozeDelay
	}

	if settings.AlertInterval <= 0 {
		settings.AlertInterval = DefaultAlertInterval
	}

	if settings.TickInterval <= 0 {
		settings.TickInterval = DefaultTickInterval
	}

	if _, err := sound.ParseMode(settings.Sound.Mode); err != nil {
		return fmt.Errorf("sound: %w: %w", domain.ErrConfiguration, err)
	}

	if settings.Log.Level != "" {
		if _, ok := logger.ParseLogLevel(settings.Log.Level); !ok {
			return fmt.Errorf("log level %q: %w: %w", settings.Log.Level, domain.ErrConfiguration, errUnknownLogLevel)
		}
	}

	if settings.Log.File == "" {
		settings.Log.File = DefaultLogFilename
	}

	return nil
}
