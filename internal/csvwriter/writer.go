// Package csvwriter writes delimited reports that appear at their final path
// only once complete.
package csvwriter

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Writer is a CSV writer backed by a temporary file that Close renames into place.
type Writer struct {
	path   string
	file   *os.File
	writer *csv.Writer
	logger *zap.Logger
	rows   int
	closed bool
}

// NewWriter creates a new CSV writer for filePath.
func NewWriter(filePath string, logger *zap.Logger) (*Writer, error) {
	file, err := os.CreateTemp(filepath.Dir(filePath), filepath.Base(filePath)+".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create CSV file: %w", err)
	}
	if err := file.Chmod(0644); err != nil {
		file.Close()
		os.Remove(file.Name())
		return nil, fmt.Errorf("failed to set CSV file mode: %w", err)
	}

	return &Writer{
		path:   filePath,
		file:   file,
		writer: csv.NewWriter(file),
		logger: logger,
	}, nil
}

// Write writes a record to the CSV file.
func (w *Writer) Write(record []string) error {
	if err := w.writer.Write(record); err != nil {
		return fmt.Errorf("failed to write record to CSV: %w", err)
	}
	w.rows++
	return nil
}

// Close flushes buffered data and moves the file to its final path.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	w.writer.Flush()
	if err := w.writer.Error(); err != nil {
		w.discard()
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	if err := w.file.Close(); err != nil {
		os.Remove(w.file.Name())
		return fmt.Errorf("failed to close CSV file: %w", err)
	}
	if err := os.Rename(w.file.Name(), w.path); err != nil {
		os.Remove(w.file.Name())
		return fmt.Errorf("failed to move CSV into place: %w", err)
	}
	w.logger.Debug("CSV written", zap.String("path", w.path), zap.Int("records", w.rows))
	return nil
}

// Abort drops everything written so far. The final path is left untouched.
func (w *Writer) Abort() {
	if w.closed {
		return
	}
	w.closed = true
	w.discard()
}

func (w *Writer) discard() {
	w.file.Close()
	if err := os.Remove(w.file.Name()); err != nil {
		w.logger.Warn("Failed to remove temporary CSV", zap.String("path", w.file.Name()), zap.Error(err))
	}
}
