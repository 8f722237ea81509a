package models

import "time"

// DayRecordRow stores a DayRecord document in the sqlite backend.
type DayRecordRow struct {
	Date      string    `gorm:"primaryKey;size:10"`
	Payload   string    `gorm:"not null"` // DayRecord JSON
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (DayRecordRow) TableName() string {
	return "day_records"
}

// QuarantinedRecord keeps a payload that no longer decodes, so a fresh
// record can start without losing the bytes.
type QuarantinedRecord struct {
	ID            uint      `gorm:"primaryKey"`
	Date          string    `gorm:"not null;index;size:10"`
	Payload       string    `gorm:"not null"`
	QuarantinedAt time.Time `gorm:"not null"`
}

func (QuarantinedRecord) TableName() string {
	return "quarantined_day_records"
}
