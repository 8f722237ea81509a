package config

import (
	"os"
	"strconv"
	"time"
)

// LoadFromEnv loads configuration from environment variables
// Environment variables override file and default values
func LoadFromEnv(cfg *Config) {
	// Storage configuration
	if backend := os.Getenv("FOCUSDAY_STORAGE"); backend != "" {
		cfg.Storage.Backend = backend
	}

	if dataDir := os.Getenv("FOCUSDAY_DATA_DIR"); dataDir != "" {
		cfg.Storage.Dir = dataDir
	}

	if dbPath := os.Getenv("FOCUSDAY_DB_PATH"); dbPath != "" {
		cfg.Storage.DBPath = dbPath
	}

	// Tracker configuration
	if pollInterval := os.Getenv("FOCUSDAY_POLL_INTERVAL"); pollInterval != "" {
		if interval, ok := parseDuration(pollInterval); ok {
			if interval >= cfg.Tracker.MinPollInterval && interval <= cfg.Tracker.MaxPollInterval {
				cfg.Tracker.PollInterval = interval
			}
		}
	}

	if minSession := os.Getenv("FOCUSDAY_MIN_SESSION"); minSession != "" {
		if d, ok := parseDuration(minSession); ok {
			cfg.Tracker.MinSessionDuration = d
		}
	}

	// Retention configuration
	if days := os.Getenv("FOCUSDAY_RETENTION_DAYS"); days != "" {
		if n, err := strconv.Atoi(days); err == nil && n > 0 {
			cfg.Retention.DaysToKeep = n
		}
	}

	// Daemon configuration
	if pidFile := os.Getenv("FOCUSDAY_PID_FILE"); pidFile != "" {
		cfg.Daemon.PIDFile = pidFile
	}

	// Report configuration
	if timeZone := os.Getenv("FOCUSDAY_TIMEZONE"); timeZone != "" {
		cfg.Report.TimeZone = timeZone
	}

	// Web configuration
	if webHost := os.Getenv("FOCUSDAY_WEB_HOST"); webHost != "" {
		cfg.Web.Host = webHost
	}

	if webPort := os.Getenv("FOCUSDAY_WEB_PORT"); webPort != "" {
		if port, err := strconv.Atoi(webPort); err == nil && port > 0 && port <= 65535 {
			cfg.Web.Port = port
		}
	}

	// Logging configuration
	if level := os.Getenv("FOCUSDAY_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}

	if logFile := os.Getenv("FOCUSDAY_LOG_FILE"); logFile != "" {
		cfg.Log.File = logFile
	}

	// Metrics configuration
	if endpoint := os.Getenv("FOCUSDAY_OTLP_ENDPOINT"); endpoint != "" {
		cfg.Metrics.Endpoint = endpoint
	}
}

// parseDuration accepts Go durations ("1500ms") or bare seconds ("2").
func parseDuration(v string) (time.Duration, bool) {
	if seconds, err := strconv.Atoi(v); err == nil {
		if seconds < 0 {
			return 0, false
		}
		return time.Duration(seconds) * time.Second, true
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return 0, false
	}
	return d, true
}

// New creates a Config from defaults, the config file when present, and the environment
func New(path string) (*Config, error) {
	cfg := Default()
	if err := LoadFile(cfg, path); err != nil {
		return nil, err
	}
	LoadFromEnv(cfg)
	return cfg, nil
}
