// Package config manages configuration for the runadapt CLI and adapters.
// It uses Viper for unified configuration management from files and environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os/user"
	"strings"
	"time"

	"github.com/runvoy/runadapt/internal/constants"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config represents the configuration of the adapters and the CLI.
// It supports loading from a YAML file and environment variables.
type Config struct {
	Mode     string `mapstructure:"mode" yaml:"mode" validate:"omitempty,oneof=development production cli"`
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`

	// Server adapter
	Host        string `mapstructure:"host" yaml:"host"`
	Port        int    `mapstructure:"port" yaml:"port" validate:"gte=0,lte=65535"`
	MetricsPath string `mapstructure:"metrics_path" yaml:"metrics_path" validate:"omitempty,startswith=/"`

	// Adapter limits
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout" validate:"gte=0"`
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes" yaml:"max_body_bytes" validate:"gte=0"`

	// Database connection parameters, surfaced through the capability query only.
	DBKind string `mapstructure:"db_kind" yaml:"db_kind"`
	DBHost string `mapstructure:"db_host" yaml:"db_host"`
	DBPort int    `mapstructure:"db_port" yaml:"db_port" validate:"gte=0,lte=65535"`
}

var validate = validator.New()

// keys lists every configuration key; each is bound to RUNADAPT_<KEY>.
var keys = []string{
	"mode",
	"log_level",
	"host",
	"port",
	"metrics_path",
	"request_timeout",
	"max_body_bytes",
	"db_kind",
	"db_host",
	"db_port",
}

// NewViper returns a Viper instance with defaults and environment bindings
// but no config file.
func NewViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvVars(v)

	return v
}

// Load loads the configuration using Viper.
// When path is empty ~/.runadapt/config.yaml is read if it exists; an explicit
// path must exist. Environment variables take precedence over file values.
func Load(path string) (*Config, error) {
	v, err := Open(path)
	if err != nil {
		return nil, err
	}

	return Unmarshal(v)
}

// Open returns a Viper instance over the config file at path, resolved the
// same way as Load, and the environment. Pair it with NewAccessor to read
// values that may change while the process runs.
func Open(path string) (*viper.Viper, error) {
	v := NewViper()
	if err := loadConfigFile(v, path); err != nil {
		return nil, err
	}
	return v, nil
}

// Unmarshal decodes and validates the configuration held by v.
func Unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	cfg.Mode = strings.ToLower(strings.TrimSpace(cfg.Mode))
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// GetLogLevel returns the slog.Level from the string configuration.
// Defaults to INFO if the level string is invalid.
func (c *Config) GetLogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Environment returns the configured execution mode.
func (c *Config) Environment() constants.Environment {
	return constants.ParseEnvironment(c.Mode)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", string(constants.Production))
	v.SetDefault("log_level", "INFO")
	v.SetDefault("host", constants.DefaultHost)
	v.SetDefault("port", constants.DefaultPort)
	v.SetDefault("metrics_path", "")
	v.SetDefault("request_timeout", constants.DefaultRequestTimeout.String())
	v.SetDefault("max_body_bytes", constants.DefaultMaxBodyBytes)
	v.SetDefault("db_kind", "none")
	v.SetDefault("db_host", "")
	v.SetDefault("db_port", 0)
}

func bindEnvVars(v *viper.Viper) {
	for _, key := range keys {
		_ = v.BindEnv(key, constants.EnvPrefix+"_"+strings.ToUpper(key))
	}
}

func loadConfigFile(v *viper.Viper, path string) error {
	explicit := path != ""
	if !explicit {
		currentUser, err := user.Current()
		if err != nil {
			// No home directory, as on Lambda: environment only.
			return nil
		}
		path = constants.ConfigFilePath(currentUser.HomeDir)
	}

	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !explicit && (errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)) {
			return nil
		}
		return fmt.Errorf("error loading config file: %w", err)
	}

	return nil
}
