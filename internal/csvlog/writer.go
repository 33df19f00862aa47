// Package csvlog persists snapshots to an append-only CSV file.
package csvlog

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hostpulse/hostpulse/internal/model"
)

var header = []string{"timestamp", "cpu_percent", "memory_percent", "disk_percent", "top_processes"}

// Writer appends snapshots to a CSV log. No file handle is held between
// rows: every append opens, writes one row and closes, all under one lock
// shared with header initialization, so rows are never interleaved.
type Writer struct {
	Path string

	mu          sync.Mutex
	initialized bool
}

func New(path string) *Writer { return &Writer{Path: path} }

// EnsureHeader creates the log file and writes the column header. It runs at
// most once per Writer lifetime; later calls are no-ops.
func (w *Writer) EnsureHeader() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ensureHeaderLocked()
}

func (w *Writer) ensureHeaderLocked() error {
	if w.initialized {
		return nil
	}
	if err := w.writeRecord(header, os.O_CREATE|os.O_WRONLY|os.O_TRUNC); err != nil {
		return fmt.Errorf("init log %s: %w", w.Path, err)
	}
	w.initialized = true
	return nil
}

// Append writes one snapshot row, initializing the header first if needed.
func (w *Writer) Append(s model.Snapshot) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.ensureHeaderLocked(); err != nil {
		return err
	}
	if err := w.writeRecord(Row(s), os.O_CREATE|os.O_WRONLY|os.O_APPEND); err != nil {
		return fmt.Errorf("append to log %s: %w", w.Path, err)
	}
	return nil
}

func (w *Writer) writeRecord(record []string, flags int) error {
	f, err := os.OpenFile(w.Path, flags, 0o644)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(f)
	writeErr := cw.Write(record)
	cw.Flush()
	if writeErr == nil {
		writeErr = cw.Error()
	}
	closeErr := f.Close()
	if writeErr != nil {
		return writeErr
	}
	return closeErr
}

// Row renders one snapshot as CSV fields. Percentages carry exactly one
// decimal digit; the process summary is a single field the csv writer quotes
// as needed.
func Row(s model.Snapshot) []string {
	return []string{
		s.Timestamp.Format(model.TimeLayout),
		strconv.FormatFloat(s.CPUPercent, 'f', 1, 64),
		strconv.FormatFloat(s.MemoryPercent, 'f', 1, 64),
		strconv.FormatFloat(s.DiskPercent, 'f', 1, 64),
		s.Summary(),
	}
}

// ParsedRow holds the values recovered from one data row.
type ParsedRow struct {
	Timestamp     time.Time
	CPUPercent    float64
	MemoryPercent float64
	DiskPercent   float64
	ProcessNames  []string
}

// ParseRow reverses Row for a single data record.
func ParseRow(fields []string) (ParsedRow, error) {
	if len(fields) != len(header) {
		return ParsedRow{}, fmt.Errorf("row has %d fields, want %d", len(fields), len(header))
	}
	ts, err := time.ParseInLocation(model.TimeLayout, fields[0], time.Local)
	if err != nil {
		return ParsedRow{}, fmt.Errorf("parse timestamp %q: %w", fields[0], err)
	}
	pcts := make([]float64, 3)
	for i, raw := range fields[1:4] {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return ParsedRow{}, fmt.Errorf("parse %s %q: %w", header[i+1], raw, err)
		}
		pcts[i] = v
	}
	return ParsedRow{
		Timestamp:     ts,
		CPUPercent:    pcts[0],
		MemoryPercent: pcts[1],
		DiskPercent:   pcts[2],
		ProcessNames:  processNames(fields[4]),
	}, nil
}

// processNames extracts the ordered process names from a summary field.
func processNames(summary string) []string {
	if summary == "" {
		return nil
	}
	entries := strings.Split(summary, model.ProcessDelimiter)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if i := strings.Index(e, "[pid="); i >= 0 {
			names = append(names, e[:i])
		}
	}
	return names
}
