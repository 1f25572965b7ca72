// Package config manages hypershell configuration
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/hyperion/hypershell/pkg/paths"
)

// EnvPrefix prefixes environment overrides, e.g. HYPERSHELL_BACKEND_PORT
const EnvPrefix = "HYPERSHELL"

// Config holds the hypershell configuration
type Config struct {
	Mode        string           `mapstructure:"mode"`
	ResourceDir string           `mapstructure:"resource_dir"`
	Backend     BackendConfig    `mapstructure:"backend"`
	Supervisor  SupervisorConfig `mapstructure:"supervisor"`
	Log         LogConfig        `mapstructure:"log"`
	Metrics     MetricsConfig    `mapstructure:"metrics"`
}

// BackendConfig holds how the backend server is reached
type BackendConfig struct {
	Host string `mapstructure:"host"`
	// Port 0 means: HTTP_PORT from the backend's env file, else 7095
	Port           int           `mapstructure:"port"`
	StartupTimeout time.Duration `mapstructure:"startup_timeout"`
}

// SupervisorConfig holds process supervision settings
type SupervisorConfig struct {
	GracePeriod time.Duration `mapstructure:"grace_period"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MetricsConfig holds the optional Prometheus endpoint
type MetricsConfig struct {
	// Listen is the address for /metrics; empty disables the endpoint
	Listen string `mapstructure:"listen"`
}

// NewViper returns a viper instance with defaults, search paths and env overrides applied
func NewViper() *viper.Viper {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME/.hypershell")
	v.AddConfigPath(".")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("mode", paths.ModePackaged.String())
	v.SetDefault("resource_dir", "")
	v.SetDefault("backend.host", "localhost")
	v.SetDefault("backend.port", 0)
	v.SetDefault("backend.startup_timeout", 30*time.Second)
	v.SetDefault("supervisor.grace_period", 10*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("metrics.listen", "")

	return v
}

// Load loads configuration from configFile, or from the search paths when configFile is empty
func Load(configFile string) (*Config, error) {
	return LoadViper(NewViper(), configFile)
}

// LoadViper loads configuration through v, which may carry bound flags
func LoadViper(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	// Read config file (ignore if not found - use defaults)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the configuration for values the host cannot act on
func (c *Config) Validate() error {
	if _, err := paths.ParseMode(c.Mode); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Backend.Port < 0 || c.Backend.Port > 65535 {
		return fmt.Errorf("invalid config: backend.port %d out of range", c.Backend.Port)
	}
	if c.Backend.StartupTimeout <= 0 {
		return fmt.Errorf("invalid config: backend.startup_timeout must be positive")
	}
	if c.Supervisor.GracePeriod <= 0 {
		return fmt.Errorf("invalid config: supervisor.grace_period must be positive")
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid config: log.format %q must be text or json", c.Log.Format)
	}
	return nil
}

// RunMode returns the parsed mode
func (c *Config) RunMode() paths.Mode {
	mode, err := paths.ParseMode(c.Mode)
	if err != nil {
		return paths.ModePackaged
	}
	return mode
}

// ResourceDirProvider returns the configured resource directory, or the executable's
// directory when none is set
func (c *Config) ResourceDirProvider() paths.ResourceDirProvider {
	if c.ResourceDir != "" {
		return paths.StaticResourceDir(c.ResourceDir)
	}
	return paths.ExecutableResourceDir{}
}

// NewLogger builds a slog logger writing to w in the configured format and level
func (l LogConfig) NewLogger(w io.Writer) *slog.Logger {
	level, err := parseLevel(l.Level)
	if err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return level, fmt.Errorf("log.level %q: %w", s, err)
	}
	return level, nil
}

// dumpView is the YAML shape of Config; durations render as strings like "30s"
type dumpView struct {
	Mode        string `yaml:"mode"`
	ResourceDir string `yaml:"resource_dir"`
	Backend     struct {
		Host           string `yaml:"host"`
		Port           int    `yaml:"port"`
		StartupTimeout string `yaml:"startup_timeout"`
	} `yaml:"backend"`
	Supervisor struct {
		GracePeriod string `yaml:"grace_period"`
	} `yaml:"supervisor"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Metrics struct {
		Listen string `yaml:"listen"`
	} `yaml:"metrics"`
}

// Dump renders the effective configuration as YAML
func (c *Config) Dump() (string, error) {
	var view dumpView
	view.Mode = c.Mode
	view.ResourceDir = c.ResourceDir
	view.Backend.Host = c.Backend.Host
	view.Backend.Port = c.Backend.Port
	view.Backend.StartupTimeout = c.Backend.StartupTimeout.String()
	view.Supervisor.GracePeriod = c.Supervisor.GracePeriod.String()
	view.Log.Level = c.Log.Level
	view.Log.Format = c.Log.Format
	view.Metrics.Listen = c.Metrics.Listen

	out, err := yaml.Marshal(&view)
	if err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}
	return string(out), nil
}
