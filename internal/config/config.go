package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	Source   SourceConfig   `mapstructure:"source"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Output   OutputConfig   `mapstructure:"output"`
	Server   ServerConfig   `mapstructure:"server"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// SourceConfig holds settings for the upstream population API
type SourceConfig struct {
	APIBaseURL     string        `mapstructure:"api_base_url"`
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelayBase time.Duration `mapstructure:"retry_delay_base"`
	RawDataDir     string        `mapstructure:"raw_data_dir"`
	UseCache       bool          `mapstructure:"use_cache"`
}

// AnalysisConfig holds analysis selection parameters
type AnalysisConfig struct {
	Countries     []string `mapstructure:"countries"`
	StartYear     int      `mapstructure:"start_year"`
	EndYear       int      `mapstructure:"end_year"`
	ForecastYears int      `mapstructure:"forecast_years"`
}

// StorageConfig holds database persistence configuration
type StorageConfig struct {
	DBPath string `mapstructure:"db_path"`
}

// OutputConfig holds directories for generated artifacts
type OutputConfig struct {
	FiguresDir string `mapstructure:"figures_dir"`
	ReportsDir string `mapstructure:"reports_dir"`
	ExportDir  string `mapstructure:"export_dir"`
}

// ServerConfig holds the proxy API server configuration
type ServerConfig struct {
	ListenAddr string `mapstructure:"listen_addr"`
}

// TelegramConfig holds Telegram notification configuration
type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
	Enabled  bool   `mapstructure:"enabled"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)
	setDefaults(v)

	// Enable environment variable override
	v.SetEnvPrefix("POPULYTICS")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options.
// The defaults reproduce a full analysis of five European countries over
// the range the source API covers reliably.
func setDefaults(v *viper.Viper) {
	v.SetDefault("source.api_base_url", "https://countriesnow.space/api/v0.1")
	v.SetDefault("source.timeout", "30s")
	v.SetDefault("source.max_retries", 3)
	v.SetDefault("source.retry_delay_base", "1s")
	v.SetDefault("source.raw_data_dir", "data/raw")
	v.SetDefault("source.use_cache", true)

	v.SetDefault("analysis.countries", []string{"Ukraine", "Poland", "Germany", "France", "United Kingdom"})
	v.SetDefault("analysis.start_year", 1960)
	v.SetDefault("analysis.end_year", 2018)
	v.SetDefault("analysis.forecast_years", 5)

	v.SetDefault("storage.db_path", "data/processed/population.db")

	v.SetDefault("output.figures_dir", "output/figures")
	v.SetDefault("output.reports_dir", "output/reports")
	v.SetDefault("output.export_dir", "output/export")

	v.SetDefault("server.listen_addr", ":5000")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	if c.Source.APIBaseURL == "" {
		return fmt.Errorf("source.api_base_url is required")
	}
	if c.Source.Timeout < time.Second {
		return fmt.Errorf("source.timeout must be at least 1 second")
	}
	if c.Source.MaxRetries < 1 {
		return fmt.Errorf("source.max_retries must be at least 1")
	}

	if len(c.Analysis.Countries) == 0 {
		return fmt.Errorf("analysis.countries must contain at least one country")
	}
	if c.Analysis.StartYear > c.Analysis.EndYear {
		return fmt.Errorf("analysis.start_year must not exceed analysis.end_year")
	}
	if c.Analysis.ForecastYears < 1 {
		return fmt.Errorf("analysis.forecast_years must be at least 1")
	}

	if c.Storage.DBPath == "" {
		return fmt.Errorf("storage.db_path is required")
	}

	if c.Output.FiguresDir == "" || c.Output.ReportsDir == "" || c.Output.ExportDir == "" {
		return fmt.Errorf("output directories must all be set")
	}

	if c.Server.ListenAddr == "" {
		return fmt.Errorf("server.listen_addr is required")
	}

	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
		}
		if c.Telegram.ChatID == "" {
			return fmt.Errorf("telegram.chat_id is required when telegram is enabled")
		}
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	return nil
}
