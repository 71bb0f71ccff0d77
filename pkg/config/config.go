// Package config provides configuration loading and validation for utcban.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"

	"github.com/Sumatoshi-tech/utcban/pkg/rules"
)

// Sentinel validation errors.
var (
	ErrInvalidWorkers  = errors.New("lint workers must not be negative")
	ErrInvalidFileSize = errors.New("invalid max file size")
	ErrUnknownCode     = errors.New("unknown rule code")
	ErrInvalidFormat   = errors.New("invalid output format")
	ErrInvalidColor    = errors.New("invalid color mode")
)

// Output formats.
const (
	FormatText  = "text"
	FormatJSON  = "json"
	FormatTable = "table"
)

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Default configuration values.
const (
	defaultWorkers     = 0
	defaultMaxFileSize = "1MB"
	defaultLogLevel    = "warn"
	defaultLogFormat   = "text"
)

// EnvPrefix is the prefix of environment variables overriding configuration keys.
const EnvPrefix = "UTCBAN"

// Config holds all configuration for utcban.
type Config struct {
	Lint    LintConfig    `mapstructure:"lint"`
	Output  OutputConfig  `mapstructure:"output"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// LintConfig selects which files are checked and which diagnostics are kept.
type LintConfig struct {
	MaxFileSize string   `mapstructure:"max_file_size"`
	Select      []string `mapstructure:"select"`
	Ignore      []string `mapstructure:"ignore"`
	Exclude     []string `mapstructure:"exclude"`
	Workers     int      `mapstructure:"workers"`
}

// OutputConfig holds reporting configuration.
type OutputConfig struct {
	Format string `mapstructure:"format"`
	Color  string `mapstructure:"color"`
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MaxFileSizeBytes returns the parsed max file size; zero means unlimited.
func (c LintConfig) MaxFileSizeBytes() (uint64, error) {
	trimmed := strings.TrimSpace(c.MaxFileSize)
	if trimmed == "" || trimmed == "0" {
		return 0, nil
	}

	size, err := humanize.ParseBytes(trimmed)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", ErrInvalidFileSize, c.MaxFileSize, err)
	}

	return size, nil
}

// LoadConfig loads configuration from file and environment variables.
// With an empty configPath, .utcban.yaml is looked up in the working directory
// and the home directory; a missing file is not an error.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(".utcban")
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("$HOME")
	}

	viperCfg.SetEnvPrefix(EnvPrefix)
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var config Config

	unmarshalErr := viperCfg.Unmarshal(&config)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	validateErr := config.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return &config, nil
}

// setDefaults sets default configuration values.
func setDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("lint.workers", defaultWorkers)
	viperCfg.SetDefault("lint.select", []string{})
	viperCfg.SetDefault("lint.ignore", []string{})
	viperCfg.SetDefault("lint.exclude", []string{".git", "__pycache__", ".tox", ".venv", "venv"})
	viperCfg.SetDefault("lint.max_file_size", defaultMaxFileSize)

	viperCfg.SetDefault("output.format", FormatText)
	viperCfg.SetDefault("output.color", ColorAuto)

	viperCfg.SetDefault("logging.level", defaultLogLevel)
	viperCfg.SetDefault("logging.format", defaultLogFormat)
}

// Validate checks the configuration for values the linter cannot work with.
func (c *Config) Validate() error {
	if c.Lint.Workers < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidWorkers, c.Lint.Workers)
	}

	_, sizeErr := c.Lint.MaxFileSizeBytes()
	if sizeErr != nil {
		return sizeErr
	}

	for _, code := range slices.Concat(c.Lint.Select, c.Lint.Ignore) {
		if !rules.KnownCode(strings.TrimSpace(code)) {
			return fmt.Errorf("%w: %q (known: %s)", ErrUnknownCode, code, strings.Join(rules.Codes(), ", "))
		}
	}

	if !slices.Contains([]string{FormatText, FormatJSON, FormatTable}, c.Output.Format) {
		return fmt.Errorf("%w: %q", ErrInvalidFormat, c.Output.Format)
	}

	if !slices.Contains([]string{ColorAuto, ColorAlways, ColorNever}, c.Output.Color) {
		return fmt.Errorf("%w: %q", ErrInvalidColor, c.Output.Color)
	}

	return nil
}
