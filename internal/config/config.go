package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	appName = "focusday"

	BackendFiles  = "files"
	BackendSQLite = "sqlite"
)

// Config holds all application configuration
type Config struct {
	// Storage configuration
	Storage StorageConfig `yaml:"storage"`

	// Tracker configuration
	Tracker TrackerConfig `yaml:"tracker"`

	// Classifier overrides
	Classifier ClassifierConfig `yaml:"classifier"`

	// Retention configuration
	Retention RetentionConfig `yaml:"retention"`

	// Daemon configuration
	Daemon DaemonConfig `yaml:"daemon"`

	// Report configuration
	Report ReportConfig `yaml:"report"`

	// Web server configuration
	Web WebConfig `yaml:"web"`

	// Logging configuration
	Log LogConfig `yaml:"log"`

	// Metrics configuration
	Metrics MetricsConfig `yaml:"metrics"`
}

// StorageConfig selects where day records live
type StorageConfig struct {
	Backend string `yaml:"backend"` // "files" or "sqlite"
	Dir     string `yaml:"dir"`     // Directory holding one JSON file per day
	DBPath  string `yaml:"db_path"` // SQLite file for the sqlite backend
}

// TrackerConfig holds sampling behavior configuration
type TrackerConfig struct {
	PollInterval       time.Duration `yaml:"poll_interval"`        // How often to sample the focused window
	MinPollInterval    time.Duration `yaml:"-"`                    // Minimum allowed poll interval
	MaxPollInterval    time.Duration `yaml:"-"`                    // Maximum allowed poll interval
	MinSessionDuration time.Duration `yaml:"min_session_duration"` // Shorter sessions are discarded as noise
}

// Rule maps a case-insensitive substring to a label
type Rule struct {
	Match string `yaml:"match"`
	Label string `yaml:"label"`
}

// ClassifierConfig extends the built-in classification tables
type ClassifierConfig struct {
	UnknownApp string   `yaml:"unknown_app"`
	NoTitle    string   `yaml:"no_title"`
	Apps       []Rule   `yaml:"apps"`
	Sites      []Rule   `yaml:"sites"`
	Browsers   []string `yaml:"browsers"`
}

// RetentionConfig controls deletion of old day records
type RetentionConfig struct {
	DaysToKeep    int           `yaml:"days_to_keep"`
	SweepInterval time.Duration `yaml:"sweep_interval"` // 0 disables periodic sweeps
}

// DaemonConfig holds daemon process configuration
type DaemonConfig struct {
	PIDFile string `yaml:"pid_file"` // Path to PID file for daemon management
}

// ReportConfig holds report generation configuration
type ReportConfig struct {
	TimeZone    string `yaml:"time_zone"`    // IANA name used for every date computation
	SummaryDays int    `yaml:"summary_days"` // Default window for summaries
}

// WebConfig holds web server configuration
type WebConfig struct {
	Host string `yaml:"host"` // Host to bind web server to
	Port int    `yaml:"port"` // Port for web server
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"` // Used in daemon mode
}

// MetricsConfig holds the optional OTLP exporter configuration
type MetricsConfig struct {
	Endpoint string `yaml:"otlp_endpoint"` // Empty disables export
	Insecure bool   `yaml:"insecure"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend: BackendFiles,
			Dir:     "", // Empty means use default ~/.local/share/focusday/activity-data
			DBPath:  "", // Empty means use default ~/.local/share/focusday/focusday.db
		},
		Tracker: TrackerConfig{
			PollInterval:       1 * time.Second,
			MinPollInterval:    500 * time.Millisecond,
			MaxPollInterval:    10 * time.Second,
			MinSessionDuration: 2 * time.Second,
		},
		Classifier: ClassifierConfig{
			UnknownApp: "Unknown",
			NoTitle:    "No title",
		},
		Retention: RetentionConfig{
			DaysToKeep:    30,
			SweepInterval: 24 * time.Hour,
		},
		Daemon: DaemonConfig{
			PIDFile: fmt.Sprintf("/tmp/%s-%d.pid", appName, os.Getuid()),
		},
		Report: ReportConfig{
			TimeZone:    "Local",
			SummaryDays: 7,
		},
		Web: WebConfig{
			Host: "localhost",
			Port: 10000 + os.Getuid()%50000, // Per-user default port
		},
		Log: LogConfig{
			Level: "info",
			File:  fmt.Sprintf("/tmp/%s-%d.log", appName, os.Getuid()),
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendFiles, BackendSQLite:
	default:
		return fmt.Errorf("storage backend must be %q or %q, got %q", BackendFiles, BackendSQLite, c.Storage.Backend)
	}

	if c.Tracker.PollInterval < c.Tracker.MinPollInterval {
		return fmt.Errorf("poll interval (%v) cannot be less than minimum (%v)",
			c.Tracker.PollInterval, c.Tracker.MinPollInterval)
	}

	if c.Tracker.PollInterval > c.Tracker.MaxPollInterval {
		return fmt.Errorf("poll interval (%v) cannot be greater than maximum (%v)",
			c.Tracker.PollInterval, c.Tracker.MaxPollInterval)
	}

	if c.Tracker.MinSessionDuration < 0 {
		return fmt.Errorf("minimum session duration cannot be negative")
	}

	if c.Retention.DaysToKeep < 1 {
		return fmt.Errorf("retention must keep at least 1 day, got %d", c.Retention.DaysToKeep)
	}

	if c.Retention.SweepInterval < 0 {
		return fmt.Errorf("sweep interval cannot be negative")
	}

	if _, err := c.Location(); err != nil {
		return err
	}

	if c.Report.SummaryDays < 1 {
		return fmt.Errorf("summary window must be at least 1 day, got %d", c.Report.SummaryDays)
	}

	if c.Web.Port < 1 || c.Web.Port > 65535 {
		return fmt.Errorf("web port must be between 1 and 65535, got %d", c.Web.Port)
	}

	if c.Web.Host == "" {
		return fmt.Errorf("web host cannot be empty")
	}

	if c.Daemon.PIDFile == "" {
		return fmt.Errorf("PID file path cannot be empty")
	}

	for _, r := range append(append([]Rule{}, c.Classifier.Apps...), c.Classifier.Sites...) {
		if r.Match == "" || r.Label == "" {
			return fmt.Errorf("classifier rule needs both match and label, got %+v", r)
		}
	}

	return nil
}

// Location resolves the configured time zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Report.TimeZone == "" || c.Report.TimeZone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Report.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid time zone %q: %w", c.Report.TimeZone, err)
	}
	return loc, nil
}

// SetPollInterval sets the poll interval with validation
func (c *Config) SetPollInterval(interval time.Duration) error {
	if interval < c.Tracker.MinPollInterval {
		return fmt.Errorf("poll interval cannot be less than %v", c.Tracker.MinPollInterval)
	}
	if interval > c.Tracker.MaxPollInterval {
		return fmt.Errorf("poll interval cannot be greater than %v", c.Tracker.MaxPollInterval)
	}
	c.Tracker.PollInterval = interval
	return nil
}

// SetWebPort sets the web server port with validation
func (c *Config) SetWebPort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", port)
	}
	c.Web.Port = port
	return nil
}

// DataDir returns the directory holding day records, creating it if needed.
func (c *Config) DataDir() (string, error) {
	dir := c.Storage.Dir
	if dir == "" {
		base, err := defaultDataHome()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(base, "activity-data")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}
	return dir, nil
}

// DBPath returns the sqlite file path, creating its directory if needed.
func (c *Config) DBPath() (string, error) {
	path := c.Storage.DBPath
	if path == "" {
		base, err := defaultDataHome()
		if err != nil {
			return "", err
		}
		path = filepath.Join(base, appName+".db")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create database directory: %w", err)
	}
	return path, nil
}

// defaultDataHome respects XDG_DATA_HOME, falling back to ~/.local/share.
func defaultDataHome() (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, appName), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", appName), nil
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf(`Configuration:
  Storage:
    Backend: %s
    Dir: %s
    DB Path: %s
  Tracker:
    Poll Interval: %v
    Min Session: %v
  Retention:
    Days To Keep: %d
    Sweep Interval: %v
  Daemon:
    PID File: %s
  Report:
    Time Zone: %s
    Summary Days: %d
  Web:
    Host: %s
    Port: %d
  Log:
    Level: %s
    File: %s
  Metrics:
    OTLP Endpoint: %s`,
		c.Storage.Backend,
		c.Storage.Dir,
		c.Storage.DBPath,
		c.Tracker.PollInterval,
		c.Tracker.MinSessionDuration,
		c.Retention.DaysToKeep,
		c.Retention.SweepInterval,
		c.Daemon.PIDFile,
		c.Report.TimeZone,
		c.Report.SummaryDays,
		c.Web.Host,
		c.Web.Port,
		c.Log.Level,
		c.Log.File,
		c.Metrics.Endpoint,
	)
}
