// Package config provides configuration management for the bitonic sort
// engine: run topology defaults, the timing repository dialect, the run
// report artifact store, and logging, all overridable via file or env var.
package config

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Run     RunConfig     `mapstructure:"run"`
	Timing  TimingConfig  `mapstructure:"timing"`
	Report  ReportConfig  `mapstructure:"report"`
	APM     APMConfig     `mapstructure:"apm"`
	Log     LogConfig     `mapstructure:"log"`
}

// RunConfig holds run settings. The run command takes its topology from the
// required positional p q s arguments and reads only Bound from here.
type RunConfig struct {
	Processes int    `mapstructure:"processes"` // P, must be a power of two
	Elements  int    `mapstructure:"elements"`  // N per rank
	BatchSize int    `mapstructure:"batch_size"`
	Bound     int64  `mapstructure:"bound"` // exclusive upper bound for generated values
	Validate  bool   `mapstructure:"validate"`
}

// TimingConfig holds the timing-repository connection configuration, one of
// sqlite, postgres or mysql.
type TimingConfig struct {
	Type     string `mapstructure:"type"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	MaxConns int    `mapstructure:"max_conns"`
}

// ReportConfig holds the run-report artifact store configuration.
type ReportConfig struct {
	Type      string `mapstructure:"type"` // cos or local
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	SecretID  string `mapstructure:"secret_id"`
	SecretKey string `mapstructure:"secret_key"`
	Domain    string `mapstructure:"domain"`
	Scheme    string `mapstructure:"scheme"`
	LocalPath string `mapstructure:"local_path"`
}

// APMConfig holds APM callback configuration for run-completion reporting.
type APMConfig struct {
	URL     string `mapstructure:"url"`
	Enabled bool   `mapstructure:"enabled"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"` // json or text
}

// Load reads configuration from the specified file path, falling back to
// defaults and environment variable overrides when no file is present.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/bitonicsort")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			fmt.Println("Config file not found, using defaults")
		} else if os.IsNotExist(err) {
			fmt.Printf("Config file %s not found, using defaults\n", configPath)
		} else {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix("BITONICSORT")
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadFromReader loads configuration from raw bytes (useful for testing).
func LoadFromReader(configType string, content []byte) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType(configType)
	if err := v.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("run.processes", 4)
	v.SetDefault("run.elements", 1024)
	v.SetDefault("run.batch_size", 64)
	v.SetDefault("run.bound", 1<<30)
	v.SetDefault("run.validate", true)

	v.SetDefault("timing.type", "sqlite")
	v.SetDefault("timing.database", "./bitonicsort.db")
	v.SetDefault("timing.max_conns", 10)

	v.SetDefault("report.type", "local")
	v.SetDefault("report.local_path", "./reports")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.output_path", "./logs")
	v.SetDefault("log.format", "text")
}

// Validate validates the configuration, independent of the per-run
// topology checks performed by engine.Params.Validate.
func (c *Config) Validate() error {
	switch c.Timing.Type {
	case "sqlite", "postgres", "mysql":
	default:
		return fmt.Errorf("unsupported timing backend: %s", c.Timing.Type)
	}

	switch c.Report.Type {
	case "local", "cos":
	default:
		return fmt.Errorf("unsupported report storage type: %s", c.Report.Type)
	}

	if c.Run.Processes < 1 {
		return fmt.Errorf("run.processes must be at least 1")
	}

	return nil
}
