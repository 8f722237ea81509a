package models

import "time"

// Report is a rollup rendered for the report command.
type Report struct {
	Rollup
	GeneratedAt time.Time `json:"generatedAt"`
}
