/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: config.go
Description: Configuration for irprobe. Values come from defaults, an optional config
file (YAML, TOML or JSON), IRPROBE_ environment variables and command-line flags bound
through viper, in increasing order of precedence.
*/

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kleascm/irprobe/pkg/inference"
	"github.com/kleascm/irprobe/pkg/logging"
	"github.com/kleascm/irprobe/pkg/pronto"
	"github.com/kleascm/irprobe/pkg/reporting"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides, e.g. IRPROBE_ANALYSIS_MARGIN
const EnvPrefix = "IRPROBE"

// Config is the complete irprobe configuration
type Config struct {
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Pronto   ProntoConfig   `mapstructure:"pronto"`
	Report   ReportConfig   `mapstructure:"report"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Server   ServerConfig   `mapstructure:"server"`
}

// AnalysisConfig controls protocol inference
type AnalysisConfig struct {
	Margin       int    `mapstructure:"margin"`
	Name         string `mapstructure:"name"`
	GenerateCode bool   `mapstructure:"generate_code"`
}

// ProntoConfig controls Pronto conversion
type ProntoConfig struct {
	Hertz    int `mapstructure:"hertz"`
	EndSpace int `mapstructure:"end_space"`
}

// ReportConfig controls report output
type ReportConfig struct {
	Format  string `mapstructure:"format"`
	Color   bool   `mapstructure:"color"`
	Output  string `mapstructure:"output"`
	SaveDir string `mapstructure:"save_dir"`
}

// LoggingConfig controls the logger
type LoggingConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Dir      string `mapstructure:"dir"`
	MaxFiles int    `mapstructure:"max_files"`
	Caller   bool   `mapstructure:"caller"`
}

// ServerConfig controls the HTTP service
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
}

// SetDefaults registers every key with its default value
func SetDefaults(v *viper.Viper) {
	v.SetDefault("analysis.margin", inference.DefaultMargin)
	v.SetDefault("analysis.name", "")
	v.SetDefault("analysis.generate_code", false)

	v.SetDefault("pronto.hertz", pronto.DefaultHertz)
	v.SetDefault("pronto.end_space", pronto.DefaultEndSpace)

	v.SetDefault("report.format", string(reporting.FormatText))
	v.SetDefault("report.color", true)
	v.SetDefault("report.output", "")
	v.SetDefault("report.save_dir", "")

	v.SetDefault("logging.level", string(logging.LogLevelWarning))
	v.SetDefault("logging.format", string(logging.LogFormatCustom))
	v.SetDefault("logging.dir", "")
	v.SetDefault("logging.max_files", 10)
	v.SetDefault("logging.caller", false)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
	v.SetDefault("server.max_body_bytes", 1<<20)
}

// Load reads the optional config file named by the "config" key, applies environment
// overrides and returns the validated configuration
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	if configFile := v.GetString("config"); configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks value ranges and enumerations
func (c *Config) Validate() error {
	if c.Analysis.Margin < 0 {
		return fmt.Errorf("analysis.margin must not be negative: %w", inference.ErrInvalidMargin)
	}
	if c.Pronto.Hertz <= 0 {
		return fmt.Errorf("pronto.hertz must be positive")
	}
	if c.Pronto.EndSpace <= 0 {
		return fmt.Errorf("pronto.end_space must be positive")
	}
	if _, err := reporting.ParseFormat(c.Report.Format); err != nil {
		return fmt.Errorf("report.format: %w", err)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server.read_timeout must be positive")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("server.max_body_bytes must be positive")
	}
	return c.LoggerConfig().Validate()
}

// LoggerConfig converts the logging section for logging.NewLogger
func (c *Config) LoggerConfig() *logging.LoggerConfig {
	return &logging.LoggerConfig{
		Level:     logging.LogLevel(c.Logging.Level),
		Format:    logging.LogFormat(c.Logging.Format),
		OutputDir: c.Logging.Dir,
		MaxFiles:  c.Logging.MaxFiles,
		Timestamp: true,
		Caller:    c.Logging.Caller,
		Colors:    c.Report.Color,
	}
}

// ProntoOptions converts the pronto section for pronto.Convert
func (c *Config) ProntoOptions() pronto.Options {
	return pronto.Options{
		Hertz:    c.Pronto.Hertz,
		EndSpace: c.Pronto.EndSpace,
	}
}
