package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/actionsum/focusday/internal/clock"
	"github.com/actionsum/focusday/internal/models"
	"github.com/actionsum/focusday/internal/store"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"gorm.io/gorm"
)

// Repository is the sqlite implementation of store.Store
type Repository struct {
	db     *DB
	loc    *time.Location
	clock  clock.Clock
	logger *zap.Logger
}

// NewRepository creates a new repository instance
func NewRepository(db *DB, loc *time.Location, clk clock.Clock, logger *zap.Logger) *Repository {
	return &Repository{db: db, loc: loc, clock: clk, logger: logger}
}

// Open connects to dbPath and migrates the schema
func Open(dbPath string, loc *time.Location, clk clock.Clock, logger *zap.Logger) (*Repository, error) {
	db, err := Connect(dbPath)
	if err != nil {
		return nil, err
	}
	if err := db.Initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return NewRepository(db, loc, clk, logger), nil
}

// Append adds a session to its date's record inside one transaction
func (r *Repository) Append(ctx context.Context, session models.Session) error {
	date := session.Date
	if date == "" {
		date = models.FormatDate(r.clock.Now(), r.loc)
	}
	if !store.ValidDate(date) {
		return &store.Error{Op: "append", Kind: store.KindInvalid, Date: date, Err: fmt.Errorf("malformed date")}
	}

	session.Date = ""
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec, err := r.loadRecord(tx, date)
		if err != nil {
			return err
		}
		rec.Sessions = append(rec.Sessions, session)

		payload, err := json.MarshalIndent(rec, "", "  ")
		if err != nil {
			return errors.Wrap(err, "failed to encode day record")
		}
		row := models.DayRecordRow{Date: date, Payload: string(payload)}
		if err := tx.Save(&row).Error; err != nil {
			return errors.Wrap(err, "failed to save day record")
		}
		return nil
	})
	if err != nil {
		r.logger.Error("failed to save session",
			zap.String("date", date),
			zap.String("app", session.App),
			zap.Error(err))
		return &store.Error{Op: "append", Kind: store.KindWrite, Date: date, Err: err}
	}
	return nil
}

// loadRecord returns the decoded record for date, or an empty one.
// A payload that fails to decode is moved to quarantined_day_records first.
func (r *Repository) loadRecord(tx *gorm.DB, date string) (models.DayRecord, error) {
	var row models.DayRecordRow
	result := tx.Where("date = ?", date).Limit(1).Find(&row)
	if result.Error != nil {
		return models.DayRecord{}, errors.Wrap(result.Error, "failed to load day record")
	}
	if result.RowsAffected == 0 {
		return models.NewDayRecord(date), nil
	}

	rec, err := decodeRow(row)
	if err != nil {
		bad := models.QuarantinedRecord{Date: date, Payload: row.Payload, QuarantinedAt: r.clock.Now()}
		if qerr := tx.Create(&bad).Error; qerr != nil {
			return models.DayRecord{}, errors.Wrap(qerr, "failed to quarantine corrupt day record")
		}
		r.logger.Warn("quarantined corrupt day record", zap.String("date", date), zap.Error(err))
		return models.NewDayRecord(date), nil
	}
	return rec, nil
}

func decodeRow(row models.DayRecordRow) (models.DayRecord, error) {
	var rec models.DayRecord
	if err := json.Unmarshal([]byte(row.Payload), &rec); err != nil {
		return models.DayRecord{}, err
	}
	rec.Date = row.Date
	if rec.Sessions == nil {
		rec.Sessions = []models.Session{}
	}
	return rec, nil
}

// Quarantined returns payloads set aside for date, oldest first.
func (r *Repository) Quarantined(ctx context.Context, date string) ([]models.QuarantinedRecord, error) {
	var rows []models.QuarantinedRecord
	if err := r.db.WithContext(ctx).Where("date = ?", date).Order("id").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list quarantined records")
	}
	return rows, nil
}

// ReadDay returns the record for date; see store.Store
func (r *Repository) ReadDay(ctx context.Context, date string) (models.DayRecord, error) {
	if !store.ValidDate(date) {
		return models.NewDayRecord(date), &store.Error{Op: "read", Kind: store.KindInvalid, Date: date, Err: fmt.Errorf("malformed date")}
	}

	var row models.DayRecordRow
	result := r.db.WithContext(ctx).Where("date = ?", date).Limit(1).Find(&row)
	if result.Error != nil {
		r.logger.Warn("unreadable day record, using empty record", zap.String("date", date), zap.Error(result.Error))
		return models.NewDayRecord(date), &store.Error{Op: "read", Kind: store.KindRead, Date: date, Err: result.Error}
	}
	if result.RowsAffected == 0 {
		return models.NewDayRecord(date), nil
	}

	rec, err := decodeRow(row)
	if err != nil {
		r.logger.Warn("corrupt day record, using empty record", zap.String("date", date), zap.Error(err))
		return models.NewDayRecord(date), &store.Error{Op: "read", Kind: store.KindCorrupt, Date: date, Err: err}
	}
	for i := range rec.Sessions {
		rec.Sessions[i].Date = date
	}
	return rec, nil
}

// ListDates returns every stored date, most recent first
func (r *Repository) ListDates(ctx context.Context) ([]string, error) {
	dates := []string{}
	result := r.db.WithContext(ctx).Model(&models.DayRecordRow{}).
		Order("date DESC").
		Pluck("date", &dates)
	if result.Error != nil {
		return []string{}, &store.Error{Op: "list", Kind: store.KindRead, Err: errors.Wrap(result.Error, "failed to list dates")}
	}
	return dates, nil
}

// DeleteOlderThan hard deletes records dated before cutoff
func (r *Repository) DeleteOlderThan(ctx context.Context, cutoff string) (int, error) {
	if !store.ValidDate(cutoff) {
		return 0, &store.Error{Op: "delete", Kind: store.KindInvalid, Date: cutoff, Err: fmt.Errorf("malformed cutoff")}
	}

	result := r.db.WithContext(ctx).Where("date < ?", cutoff).Delete(&models.DayRecordRow{})
	if result.Error != nil {
		return 0, &store.Error{Op: "delete", Kind: store.KindDelete, Date: cutoff, Err: errors.Wrap(result.Error, "failed to delete old records")}
	}
	return int(result.RowsAffected), nil
}

// RecordError inserts a new error log into the database
func (r *Repository) RecordError(ctx context.Context, at time.Time, source string, cause error) error {
	entry := &models.ErrorLog{
		Timestamp: at,
		Source:    source,
		ErrorMsg:  cause.Error(),
	}
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return errors.Wrap(err, "failed to insert error log")
	}
	return nil
}

// RecentErrors returns up to limit error logs, newest first
func (r *Repository) RecentErrors(ctx context.Context, limit int) ([]models.ErrorLog, error) {
	var logs []models.ErrorLog
	result := r.db.WithContext(ctx).Order("timestamp DESC").Limit(limit).Find(&logs)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query error logs")
	}
	return logs, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

var (
	_ store.Store         = (*Repository)(nil)
	_ store.ErrorRecorder = (*Repository)(nil)
)
