package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "https://news.ycombinator.com", cfg.Crawler.BaseURL)
	assert.Equal(t, ".", cfg.Crawler.OutputDir)
	assert.Equal(t, 30, cfg.Crawler.IntervalSeconds)
	assert.Equal(t, 3, cfg.Crawler.QueueCapacity)
	assert.Equal(t, 5, cfg.HTTP.MaxRetries)
	assert.Equal(t, 2, cfg.HTTP.RetryDelaySeconds)
	assert.Equal(t, 30, cfg.HTTP.FetchTimeoutSeconds)
	assert.Equal(t, 1, cfg.Downloader.EmptyQueueSleepSeconds)
	assert.Equal(t, 0, cfg.Downloader.WriteWorkers)
	assert.Equal(t, "ycrawler.log", cfg.Logging.File)
	assert.False(t, cfg.Logging.Development)
	assert.Empty(t, cfg.Metrics.Addr)
}

func TestLoadWithFileOverrides(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	configYAML := `
crawler:
  base_url: https://hn.example
  output_dir: /tmp/archive
  interval_seconds: 10
  queue_capacity: 5
http:
  max_retries: 2
  retry_delay_seconds: 1
  fetch_timeout_seconds: 15
downloader:
  empty_queue_sleep_seconds: 3
  write_workers: 4
logging:
  development: true
  file: ""
metrics:
  addr: ":9102"
`
	require.NoError(t, os.WriteFile(path, []byte(configYAML), 0o600))

	v := viper.New()
	v.SetConfigFile(path)
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "https://hn.example", cfg.Crawler.BaseURL)
	assert.Equal(t, "/tmp/archive", cfg.Crawler.OutputDir)
	assert.Equal(t, 5, cfg.Crawler.QueueCapacity)
	assert.Equal(t, 2, cfg.HTTP.MaxRetries)
	assert.Equal(t, 4, cfg.Downloader.WriteWorkers)
	assert.True(t, cfg.Logging.Development)
	assert.Empty(t, cfg.Logging.File)
	assert.Equal(t, ":9102", cfg.Metrics.Addr)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("CRAWLER_CRAWLER_QUEUE_CAPACITY", "7")
	t.Setenv("CRAWLER_HTTP_MAX_RETRIES", "9")

	cfg, err := Load(viper.New())
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Crawler.QueueCapacity)
	assert.Equal(t, 9, cfg.HTTP.MaxRetries)
}

func TestLoadValidationFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		key     string
		value   any
		wantErr string
	}{
		{"empty base url", "crawler.base_url", "", "crawler.base_url must be set"},
		{"empty output dir", "crawler.output_dir", "", "crawler.output_dir must be set"},
		{"zero interval", "crawler.interval_seconds", 0, "crawler.interval_seconds must be > 0"},
		{"zero queue capacity", "crawler.queue_capacity", 0, "crawler.queue_capacity must be > 0"},
		{"zero retries", "http.max_retries", 0, "http.max_retries must be > 0"},
		{"zero retry delay", "http.retry_delay_seconds", 0, "http.retry_delay_seconds must be > 0"},
		{"zero fetch timeout", "http.fetch_timeout_seconds", 0, "http.fetch_timeout_seconds must be > 0"},
		{"zero idle sleep", "downloader.empty_queue_sleep_seconds", 0, "downloader.empty_queue_sleep_seconds must be > 0"},
		{"negative write workers", "downloader.write_workers", -1, "downloader.write_workers must be >= 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			v := viper.New()
			v.Set(tt.key, tt.value)
			_, err := Load(v)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadMissingConfigFile(t *testing.T) {
	t.Parallel()

	v := viper.New()
	v.SetConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := Load(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestDurationHelpers(t *testing.T) {
	t.Parallel()

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.Interval())
	assert.Equal(t, 30*time.Second, cfg.FetchTimeout())
	assert.Equal(t, time.Second, cfg.EmptyQueueSleep())

	policy := cfg.RetryPolicy()
	assert.Equal(t, 5, policy.MaxAttempts)
	assert.Equal(t, 2*time.Second, policy.Delay)
}
