package config_test

import (
	"fmt"
	"time"

	"github.com/actionsum/focusday/internal/config"
)

// Example of creating a default configuration
func ExampleDefault() {
	cfg := config.Default()
	fmt.Println("Poll Interval:", cfg.Tracker.PollInterval)
	fmt.Println("Min Session:", cfg.Tracker.MinSessionDuration)
	fmt.Println("Backend:", cfg.Storage.Backend)
	// Output:
	// Poll Interval: 1s
	// Min Session: 2s
	// Backend: files
}

// Example of setting poll interval with validation
func ExampleConfig_SetPollInterval() {
	cfg := config.Default()

	if err := cfg.SetPollInterval(2 * time.Second); err != nil {
		fmt.Println("Error:", err)
	} else {
		fmt.Println("Poll interval set to:", cfg.Tracker.PollInterval)
	}

	if err := cfg.SetPollInterval(100 * time.Millisecond); err != nil {
		fmt.Println("Error:", err)
	}

	// Output:
	// Poll interval set to: 2s
	// Error: poll interval cannot be less than 500ms
}

// Example of validating configuration
func ExampleConfig_Validate() {
	cfg := config.Default()

	if err := cfg.Validate(); err != nil {
		fmt.Println("Invalid config:", err)
	} else {
		fmt.Println("Configuration is valid")
	}

	cfg.Storage.Backend = "mysql"
	if err := cfg.Validate(); err != nil {
		fmt.Println("Invalid config:", err)
	}

	// Output:
	// Configuration is valid
	// Invalid config: storage backend must be "files" or "sqlite", got "mysql"
}

// Example of resolving the reporting time zone
func ExampleConfig_Location() {
	cfg := config.Default()
	cfg.Report.TimeZone = "America/Sao_Paulo"

	loc, err := cfg.Location()
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Println("Location:", loc)

	// Output:
	// Location: America/Sao_Paulo
}
