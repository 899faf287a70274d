// Package config loads and validates archiver configuration via Viper.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ligain/ycrawler/internal/archive"
)

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Crawler    CrawlerConfig    `mapstructure:"crawler"`
	HTTP       HTTPConfig       `mapstructure:"http"`
	Downloader DownloaderConfig `mapstructure:"downloader"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

// CrawlerConfig governs the discovery role.
type CrawlerConfig struct {
	BaseURL         string `mapstructure:"base_url"`
	OutputDir       string `mapstructure:"output_dir"`
	IntervalSeconds int    `mapstructure:"interval_seconds"`
	QueueCapacity   int    `mapstructure:"queue_capacity"`
}

// HTTPConfig configures fetch retry and timeout behavior.
type HTTPConfig struct {
	UserAgent           string `mapstructure:"user_agent"`
	Accept              string `mapstructure:"accept"`
	MaxRetries          int    `mapstructure:"max_retries"`
	RetryDelaySeconds   int    `mapstructure:"retry_delay_seconds"`
	FetchTimeoutSeconds int    `mapstructure:"fetch_timeout_seconds"`
}

// DownloaderConfig governs the persistence role.
type DownloaderConfig struct {
	EmptyQueueSleepSeconds int `mapstructure:"empty_queue_sleep_seconds"`
	// WriteWorkers bounds the file-writing pool; 0 means one per CPU.
	WriteWorkers int `mapstructure:"write_workers"`
}

// LoggingConfig toggles zap development features and the log file.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	File        string `mapstructure:"file"`
}

// MetricsConfig controls the optional Prometheus endpoint; an empty addr
// disables it.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// Load builds a Config from the provided Viper instance, which may already
// carry bound CLI flags and a config file.
func Load(v *viper.Viper) (Config, error) {
	setDefaults(v)

	v.SetEnvPrefix("CRAWLER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file := v.ConfigFileUsed(); file != "" {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("crawler.base_url", "https://news.ycombinator.com")
	v.SetDefault("crawler.output_dir", ".")
	v.SetDefault("crawler.interval_seconds", 30)
	v.SetDefault("crawler.queue_capacity", 3)
	v.SetDefault("http.user_agent", "")
	v.SetDefault("http.accept", "")
	v.SetDefault("http.max_retries", 5)
	v.SetDefault("http.retry_delay_seconds", 2)
	v.SetDefault("http.fetch_timeout_seconds", 30)
	v.SetDefault("downloader.empty_queue_sleep_seconds", 1)
	v.SetDefault("downloader.write_workers", 0)
	v.SetDefault("logging.development", false)
	v.SetDefault("logging.file", "ycrawler.log")
	v.SetDefault("metrics.addr", "")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Crawler.BaseURL == "" {
		return fmt.Errorf("crawler.base_url must be set")
	}
	if _, err := url.Parse(c.Crawler.BaseURL); err != nil {
		return fmt.Errorf("crawler.base_url is invalid: %w", err)
	}
	if c.Crawler.OutputDir == "" {
		return fmt.Errorf("crawler.output_dir must be set")
	}
	if c.Crawler.IntervalSeconds <= 0 {
		return fmt.Errorf("crawler.interval_seconds must be > 0")
	}
	if c.Crawler.QueueCapacity <= 0 {
		return fmt.Errorf("crawler.queue_capacity must be > 0")
	}
	if c.HTTP.MaxRetries <= 0 {
		return fmt.Errorf("http.max_retries must be > 0")
	}
	if c.HTTP.RetryDelaySeconds <= 0 {
		return fmt.Errorf("http.retry_delay_seconds must be > 0")
	}
	if c.HTTP.FetchTimeoutSeconds <= 0 {
		return fmt.Errorf("http.fetch_timeout_seconds must be > 0")
	}
	if c.Downloader.EmptyQueueSleepSeconds <= 0 {
		return fmt.Errorf("downloader.empty_queue_sleep_seconds must be > 0")
	}
	if c.Downloader.WriteWorkers < 0 {
		return fmt.Errorf("downloader.write_workers must be >= 0")
	}
	return nil
}

// Interval converts the poll interval into a duration.
func (c Config) Interval() time.Duration {
	return time.Duration(c.Crawler.IntervalSeconds) * time.Second
}

// FetchTimeout converts the overall fetch budget into a duration.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.HTTP.FetchTimeoutSeconds) * time.Second
}

// EmptyQueueSleep converts the downloader idle pause into a duration.
func (c Config) EmptyQueueSleep() time.Duration {
	return time.Duration(c.Downloader.EmptyQueueSleepSeconds) * time.Second
}

// RetryPolicy bundles the retry knobs for the fetcher.
func (c Config) RetryPolicy() archive.RetryPolicy {
	return archive.RetryPolicy{
		MaxAttempts: c.HTTP.MaxRetries,
		Delay:       time.Duration(c.HTTP.RetryDelaySeconds) * time.Second,
	}
}
