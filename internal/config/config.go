package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Score         ScoreConfig         `mapstructure:"score"`
	Observability ObservabilityConfig `mapstructure:"observability"`
	Log           LogConfig           `mapstructure:"log"`
}

type ScoreConfig struct {
	// Proc is the scoring procedure used when the command line names none.
	Proc string `mapstructure:"proc"`
}

type ObservabilityConfig struct {
	// OTLPEndpoint enables trace export when set (e.g. "localhost:4317").
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	SampleRate   float64 `mapstructure:"sample_rate"`
	Environment  string  `mapstructure:"environment"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Default returns the configuration used when no config file is given.
func Default() *Config {
	return &Config{
		Observability: ObservabilityConfig{SampleRate: 1.0, Environment: "development"},
		Log:           LogConfig{Level: "info", Format: "text"},
	}
}

// Validate checks configuration for issues and returns warnings.
func (c *Config) Validate() []string {
	var warnings []string

	if c.Observability.SampleRate < 0 || c.Observability.SampleRate > 1.0 {
		warnings = append(warnings, fmt.Sprintf("observability sample_rate %.2f is outside [0.0, 1.0]", c.Observability.SampleRate))
	}

	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		warnings = append(warnings, fmt.Sprintf("log level %q is not one of debug, info, warn, error", c.Log.Level))
	}

	return warnings
}

// Load reads configuration from file and environment. An empty path yields
// the defaults with environment overrides applied.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TALLY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := Default()
	v.SetDefault("score.proc", defaults.Score.Proc)
	v.SetDefault("observability.sample_rate", defaults.Observability.SampleRate)
	v.SetDefault("observability.environment", defaults.Observability.Environment)
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.format", defaults.Log.Format)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	// Validate configuration and print warnings
	if warnings := cfg.Validate(); len(warnings) > 0 {
		for _, warning := range warnings {
			fmt.Fprintf(os.Stderr, "Warning: %s\n", warning)
		}
	}

	return &cfg, nil
}
