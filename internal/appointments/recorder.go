package appointments

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/wolfman30/clinic-tools/pkg/logging"
)

// Recorder appends appointments to a single spreadsheet on disk.
//
// All writes go through one mutex so concurrent tool calls in this process
// cannot overwrite each other's rows. Other processes writing the same file
// are not coordinated.
type Recorder struct {
	path       string
	now        func() time.Time
	createTemp func(dir, pattern string) (*os.File, error)
	logger     *logging.Logger

	mu sync.Mutex
}

// Option customises a Recorder.
type Option func(*Recorder)

// WithClock overrides the time source used for the Queued At column.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRecorder returns a recorder for the workbook at path.
func NewRecorder(path string, logger *logging.Logger, opts ...Option) *Recorder {
	if logger == nil {
		logger = logging.Default()
	}
	r := &Recorder{path: path, now: time.Now, createTemp: os.CreateTemp, logger: logger}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Path returns the absolute path of the log, falling back to the configured
// value if it cannot be resolved.
func (r *Recorder) Path() string {
	abs, err := filepath.Abs(r.path)
	if err != nil {
		return r.path
	}
	return abs
}

// Record appends one row and persists the workbook before returning.
func (r *Recorder) Record(ctx context.Context, appt Appointment) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := r.open()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	rows, err := f.GetRows(sheet)
	if err != nil {
		return "", fmt.Errorf("%w: read rows: %v", ErrPersistence, err)
	}
	next := len(rows) + 1
	if next < 2 {
		// An empty sheet still gets its header before the first record.
		if err := writeHeader(f, sheet); err != nil {
			return "", fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		next = 2
	}

	cell, err := excelize.CoordinatesToCellName(1, next)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	row := appt.row(r.now())
	if err := f.SetSheetRow(sheet, cell, &row); err != nil {
		return "", fmt.Errorf("%w: append row: %v", ErrPersistence, err)
	}
	if err := applyColumnWidths(f, sheet); err != nil {
		return "", fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if err := r.save(f); err != nil {
		return "", fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	path := r.Path()
	r.logger.Info("appointment saved", "path", path, "row", next)
	return path, nil
}

// open loads the workbook, creating it with the header when absent.
func (r *Recorder) open() (*excelize.File, error) {
	if _, err := os.Stat(r.path); err == nil {
		f, err := excelize.OpenFile(r.path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", r.path, err)
		}
		return f, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("stat %s: %w", r.path, err)
	}

	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return nil, fmt.Errorf("create directory: %w", err)
	}
	f := excelize.NewFile()
	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if err := writeHeader(f, sheet); err != nil {
		f.Close()
		return nil, err
	}
	r.logger.Info("appointment log created", "path", r.path)
	return f, nil
}

// save writes to a temp file beside the log and renames it into place so a
// failed write never truncates existing rows.
func (r *Recorder) save(f *excelize.File) error {
	dir := filepath.Dir(r.path)
	tmp, err := r.createTemp(dir, ".appointments-*.xlsx")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("chmod workbook: %w", err)
	}

	if _, err := f.WriteTo(tmp); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("write workbook: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("sync workbook: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close workbook: %w", err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		cleanup()
		return fmt.Errorf("replace workbook: %w", err)
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string) error {
	header := make([]any, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(Header), 1)
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	return nil
}

func applyColumnWidths(f *excelize.File, sheet string) error {
	for i, width := range columnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return fmt.Errorf("column width %s: %w", col, err)
		}
	}
	return nil
}
