package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/actionsum/focusday/internal/clock"
	"github.com/actionsum/focusday/internal/models"
)

const recordExt = ".json"

// FileStore keeps one JSON document per date in a directory.
type FileStore struct {
	dir    string
	loc    *time.Location
	clock  clock.Clock
	logger *zap.Logger
	mu     sync.Mutex
}

// NewFileStore creates dir if needed.
func NewFileStore(dir string, loc *time.Location, clk clock.Clock, logger *zap.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(err, "failed to create data directory")
	}
	return &FileStore{dir: dir, loc: loc, clock: clk, logger: logger}, nil
}

// Dir returns the record directory.
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) path(date string) string {
	return filepath.Join(s.dir, date+recordExt)
}

// Append loads the record, appends s and atomically replaces the file.
func (s *FileStore) Append(ctx context.Context, session models.Session) error {
	date, err := resolveDate(session, s.clock.Now(), s.loc)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.read(date)
	if err != nil {
		if KindOf(err) != KindCorrupt {
			return &Error{Op: "append", Kind: KindRead, Date: date, Err: err}
		}
		// Keep the unreadable file for inspection and start the day over
		if qerr := s.quarantine(date); qerr != nil {
			return &Error{Op: "append", Kind: KindWrite, Date: date, Err: qerr}
		}
		rec = models.NewDayRecord(date)
	}

	session.Date = ""
	rec.Sessions = append(rec.Sessions, session)

	if err := s.write(rec); err != nil {
		s.logger.Error("failed to save session",
			zap.String("date", date),
			zap.String("app", session.App),
			zap.Error(err))
		return &Error{Op: "append", Kind: KindWrite, Date: date, Err: err}
	}

	s.logger.Debug("session saved",
		zap.String("date", date),
		zap.String("app", session.App),
		zap.Int64("duration", session.Duration))
	return nil
}

// ReadDay returns the record for date; see Store.
func (s *FileStore) ReadDay(ctx context.Context, date string) (models.DayRecord, error) {
	if !ValidDate(date) {
		return models.NewDayRecord(date), &Error{Op: "read", Kind: KindInvalid, Date: date, Err: fmt.Errorf("malformed date")}
	}

	rec, err := s.read(date)
	if err != nil {
		s.logger.Warn("unreadable day record, using empty record",
			zap.String("date", date),
			zap.Error(err))
		return models.NewDayRecord(date), err
	}
	return rec, nil
}

func (s *FileStore) read(date string) (models.DayRecord, error) {
	data, err := os.ReadFile(s.path(date))
	if err != nil {
		if os.IsNotExist(err) {
			return models.NewDayRecord(date), nil
		}
		return models.DayRecord{}, &Error{Op: "read", Kind: KindRead, Date: date, Err: err}
	}

	var rec models.DayRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return models.DayRecord{}, &Error{Op: "read", Kind: KindCorrupt, Date: date, Err: err}
	}
	return normalize(rec, date), nil
}

// normalize pins every session to the record date.
func normalize(rec models.DayRecord, date string) models.DayRecord {
	rec.Date = date
	if rec.Sessions == nil {
		rec.Sessions = []models.Session{}
	}
	for i := range rec.Sessions {
		rec.Sessions[i].Date = date
	}
	return rec
}

// write replaces the record file via rename so readers never see partial data.
func (s *FileStore) write(rec models.DayRecord) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode day record")
	}

	tmp, err := os.CreateTemp(s.dir, "."+rec.Date+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "failed to create temp file")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "failed to write temp file")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Wrap(err, "failed to sync temp file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "failed to close temp file")
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return errors.Wrap(err, "failed to set record permissions")
	}
	if err := os.Rename(tmpName, s.path(rec.Date)); err != nil {
		return errors.Wrap(err, "failed to replace day record")
	}
	return nil
}

func (s *FileStore) quarantine(date string) error {
	target := fmt.Sprintf("%s.corrupt-%d", s.path(date), s.clock.Now().Unix())
	if err := os.Rename(s.path(date), target); err != nil {
		return errors.Wrap(err, "failed to move corrupt record aside")
	}
	s.logger.Warn("moved corrupt day record aside",
		zap.String("date", date),
		zap.String("path", target))
	return nil
}

// ListDates returns record dates in reverse lexicographic order.
func (s *FileStore) ListDates(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return []string{}, &Error{Op: "list", Kind: KindRead, Err: err}
	}

	dates := make([]string, 0, len(entries))
	for _, e := range entries {
		if date, ok := dateFromName(e.Name()); ok && !e.IsDir() {
			dates = append(dates, date)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	return dates, nil
}

func dateFromName(name string) (string, bool) {
	if !strings.HasSuffix(name, recordExt) {
		return "", false
	}
	date := strings.TrimSuffix(name, recordExt)
	return date, ValidDate(date)
}

// DeleteOlderThan removes records dated strictly before cutoff.
func (s *FileStore) DeleteOlderThan(ctx context.Context, cutoff string) (int, error) {
	if !ValidDate(cutoff) {
		return 0, &Error{Op: "delete", Kind: KindInvalid, Date: cutoff, Err: fmt.Errorf("malformed cutoff")}
	}

	dates, err := s.ListDates(ctx)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := 0
	for _, date := range dates {
		if date >= cutoff {
			continue
		}
		if err := os.Remove(s.path(date)); err != nil && !os.IsNotExist(err) {
			return deleted, &Error{Op: "delete", Kind: KindDelete, Date: date, Err: err}
		}
		deleted++
	}
	return deleted, nil
}

func (s *FileStore) Close() error {
	return nil
}

var _ Store = (*FileStore)(nil)
