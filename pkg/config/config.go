// Package config provides YAML-based configuration loading for s-talk.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// DefaultRecvBufferBytes bounds one received datagram; longer ones are truncated.
const DefaultRecvBufferBytes = 2048

// Config is the root application configuration.
type Config struct {
	// Log holds logging configuration
	Log LogConfig `mapstructure:"log"`

	// Relay holds transport and queue options
	Relay RelayConfig `mapstructure:"relay"`

	Console ConsoleConfig `mapstructure:"console"`

	Report ReportConfig `mapstructure:"report"`
}

// LogConfig defines logger settings.
type LogConfig struct {
	// Level: debug, info, warn, error
	Level string `mapstructure:"level"`
	// Format: console or json
	Format string `mapstructure:"format"`
	// Outputs: list of outputs: stdout, stderr, or file paths
	Outputs []string `mapstructure:"outputs"`

	// Rotation controls file rotation when writing to files
	Rotation RotationConfig `mapstructure:"rotation"`
	// Development toggles development-friendly logging options
	Development bool `mapstructure:"development"`
}

// RotationConfig controls log file rotation for file outputs.
type RotationConfig struct {
	Enable     bool   `mapstructure:"enable"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// Default returns a Config populated with sensible defaults.
// Logs go to stderr so they never interleave with chat lines on stdout.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:   "warn",
			Format:  "console",
			Outputs: []string{"stderr"},
			Rotation: RotationConfig{
				Enable:     false,
				Filename:   "logs/s-talk.log",
				MaxSizeMB:  50,
				MaxBackups: 3,
				MaxAgeDays: 28,
				Compress:   true,
			},
		},
		Relay: RelayConfig{
			Transport:       "udp",
			RecvBufferBytes: DefaultRecvBufferBytes,
		},
		Console: ConsoleConfig{RewriteEcho: true},
		Report:  ReportConfig{Format: "json"},
	}
}

// Load reads configuration from the provided path (if non-empty),
// otherwise it searches common locations and supports environment overrides.
// Environment variables use the prefix S_TALK and `.`/`-` are replaced with `_`.
// Example: S_TALK_LOG_LEVEL=debug
func Load(path string) (*Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("S_TALK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// seed defaults for viper so env-only configs work
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
	v.SetDefault("log.outputs", cfg.Log.Outputs)
	v.SetDefault("log.development", cfg.Log.Development)
	v.SetDefault("log.rotation.enable", cfg.Log.Rotation.Enable)
	v.SetDefault("log.rotation.filename", cfg.Log.Rotation.Filename)
	v.SetDefault("log.rotation.max_size_mb", cfg.Log.Rotation.MaxSizeMB)
	v.SetDefault("log.rotation.max_backups", cfg.Log.Rotation.MaxBackups)
	v.SetDefault("log.rotation.max_age_days", cfg.Log.Rotation.MaxAgeDays)
	v.SetDefault("log.rotation.compress", cfg.Log.Rotation.Compress)
	v.SetDefault("relay.transport", cfg.Relay.Transport)
	v.SetDefault("relay.recv_buffer_bytes", cfg.Relay.RecvBufferBytes)
	v.SetDefault("relay.outbound_capacity", cfg.Relay.OutboundCapacity)
	v.SetDefault("relay.inbound_capacity", cfg.Relay.InboundCapacity)
	v.SetDefault("relay.send_rate_bytes", cfg.Relay.SendRateBytes)
	v.SetDefault("console.rewrite_echo", cfg.Console.RewriteEcho)
	v.SetDefault("console.color", cfg.Console.Color)
	v.SetDefault("report.path", cfg.Report.Path)
	v.SetDefault("report.format", cfg.Report.Format)

	// Choose config file
	if path == "" {
		if envPath := os.Getenv("S_TALK_CONFIG"); envPath != "" {
			path = envPath
		}
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("s-talk")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".s-talk"))
		}
	}

	// Read config file if present; if not found, continue with defaults/env
	if err := v.ReadInConfig(); err != nil {
		var viperConfigFileNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &viperConfigFileNotFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	lvl := strings.ToLower(strings.TrimSpace(c.Log.Level))
	switch lvl {
	case "debug", "info", "warn", "warning", "error":
		// ok
	default:
		return fmt.Errorf("invalid log.level: %q", c.Log.Level)
	}

	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if len(c.Log.Outputs) == 0 {
		c.Log.Outputs = []string{"stderr"}
	}

	c.Relay.Transport = strings.ToLower(strings.TrimSpace(c.Relay.Transport))
	switch c.Relay.Transport {
	case "":
		c.Relay.Transport = "udp"
	case "udp", "mem":
	default:
		return fmt.Errorf("invalid relay.transport: %q", c.Relay.Transport)
	}
	if c.Relay.RecvBufferBytes <= 0 {
		c.Relay.RecvBufferBytes = DefaultRecvBufferBytes
	}
	if c.Relay.RecvBufferBytes > 65535 {
		return fmt.Errorf("relay.recv_buffer_bytes too large: %d", c.Relay.RecvBufferBytes)
	}
	if c.Relay.OutboundCapacity < 0 || c.Relay.InboundCapacity < 0 {
		return errors.New("relay queue capacities must be >= 0")
	}
	if c.Relay.SendRateBytes < 0 {
		return fmt.Errorf("invalid relay.send_rate_bytes: %d", c.Relay.SendRateBytes)
	}

	c.Report.Format = strings.ToLower(strings.TrimSpace(c.Report.Format))
	switch c.Report.Format {
	case "":
		c.Report.Format = "json"
	case "json", "cbor", "proto":
	default:
		return fmt.Errorf("invalid report.format: %q", c.Report.Format)
	}
	return nil
}

// MustLoad is a convenience that panics on error.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}
