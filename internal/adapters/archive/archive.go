// Package archive persists per-month snapshots of the store state.
//
// The archive for the in-progress month is rewritten on every accepted
// mutation and doubles as a crash-recovery mirror. Once a rollover
// moves the store into a new month the superseded key is never written
// again, so past periods are safe to read as immutable history.
package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/osfanbuff63/pkw-tracking-bot/internal/adapters/storage"
	"github.com/osfanbuff63/pkw-tracking-bot/internal/domain/model"
	"github.com/osfanbuff63/pkw-tracking-bot/pkg/metrics"
)

// DirName is the directory all archived periods live under, relative
// to the archive base directory.
const DirName = "database_archive"

// Period keys one calendar month of competition.
type Period struct {
	Year  int
	Month time.Month
}

// PeriodOf returns the period the instant falls in.
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

// String renders the period for logs and errors, e.g. "2023-06".
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// Manager reads and writes archived snapshots under a base directory.
type Manager struct {
	baseDir  string
	filename string
}

// NewManager creates an archive manager. Archived documents carry the
// same filename as the live database file they snapshot.
func NewManager(baseDir, filename string) *Manager {
	return &Manager{baseDir: baseDir, filename: filename}
}

// Path returns the archive file location for a period:
// <base>/database_archive/<year>/<month>/<filename>.
func (m *Manager) Path(period Period) string {
	return filepath.Join(
		m.baseDir,
		DirName,
		strconv.Itoa(period.Year),
		strconv.Itoa(int(period.Month)),
		m.filename,
	)
}

// Backup writes the snapshot under the period's key, creating the
// period directory if needed. The write is atomic so a concurrent
// reader of a past period never observes a torn document.
func (m *Manager) Backup(ctx context.Context, snap *model.Snapshot, period Period) error {
	data, err := storage.EncodeSnapshot(snap)
	if err != nil {
		return fmt.Errorf("archive %s: %w", period, err)
	}
	if err := storage.WriteFileAtomic(m.Path(period), data); err != nil {
		return fmt.Errorf("archive %s: %w", period, err)
	}
	metrics.RecordArchiveWrite()
	return nil
}

// Load reads the archived snapshot for a past period. It returns
// ErrNotFound when no activity was ever recorded for that period.
func (m *Manager) Load(ctx context.Context, period Period) (*model.Snapshot, error) {
	data, err := os.ReadFile(m.Path(period))
	if err != nil {
		if os.IsNotExist(err) {
			metrics.RecordArchiveMiss()
			return nil, fmt.Errorf("%w: %s", ErrNotFound, period)
		}
		return nil, fmt.Errorf("read archive %s: %w", period, err)
	}
	snap, err := storage.DecodeSnapshot(data)
	if err != nil {
		return nil, fmt.Errorf("archive %s: %w", period, err)
	}
	metrics.RecordArchiveLoad()
	return snap, nil
}
