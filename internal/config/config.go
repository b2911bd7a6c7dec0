// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load(ctx) layers defaults, optional file, and environment variables.
// - External errors must be wrapped via this package's error helpers.
package config

import "time"

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DatabasePath is the SQLite database file path.
	DatabasePath string `koanf:"database_path"`

	// MediaDir is the directory where downloaded clips are stored.
	MediaDir string `koanf:"media_dir"`

	// TopN caps the number of scored swings retained per date.
	TopN int `koanf:"top_n"`

	// StatsAPIBase is the play-by-play feed base URL.
	StatsAPIBase string `koanf:"stats_api_base"`

	// VideoPageBase is the video hosting page base URL.
	VideoPageBase string `koanf:"video_page_base"`

	// DownloadAttempts bounds download retries per clip.
	DownloadAttempts int `koanf:"download_attempts"`

	// DownloadBackoff is the fixed wait between download attempts.
	DownloadBackoff time.Duration `koanf:"download_backoff"`

	// HTTPTimeout applies to outbound resolver and downloader requests.
	HTTPTimeout time.Duration `koanf:"http_timeout"`

	// JobBatchSize sets how many bulk records are applied per commit.
	JobBatchSize int `koanf:"job_batch_size"`

	// BulkSourcePath points at the CSV export consumed by the patch job.
	BulkSourcePath string `koanf:"bulk_source_path"`

	// PrewarmSchedule is a cron expression for the daily cache pre-warm.
	// Empty disables the scheduler.
	PrewarmSchedule string `koanf:"prewarm_schedule"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		Addr:             ":8080",
		DatabasePath:     "data/swordfinder.db",
		MediaDir:         "static/videos",
		TopN:             5,
		StatsAPIBase:     "https://statsapi.mlb.com",
		VideoPageBase:    "https://baseballsavant.mlb.com",
		DownloadAttempts: 3,
		DownloadBackoff:  2 * time.Second,
		HTTPTimeout:      15 * time.Second,
		JobBatchSize:     1000,
		BulkSourcePath:   "",
		PrewarmSchedule:  "",
	}
}
