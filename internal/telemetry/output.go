package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
)

// OutputManager writes windowed telemetry and the final match summary
// to CSV, the way the teacher's OutputManager does for telemetry.csv —
// a nil *OutputManager is valid and every method becomes a no-op, so
// callers can skip output entirely by passing an empty directory.
type OutputManager struct {
	dir           string
	telemetryFile *os.File
	headerWritten bool
}

// NewOutputManager creates the output directory and opens telemetry.csv.
// Returns (nil, nil) if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("telemetry: create output dir: %w", err)
	}
	f, err := os.Create(filepath.Join(dir, "telemetry.csv"))
	if err != nil {
		return nil, fmt.Errorf("telemetry: create telemetry.csv: %w", err)
	}
	return &OutputManager{dir: dir, telemetryFile: f}, nil
}

// WriteWindow appends one Collector.Flush's worth of rows to telemetry.csv.
func (om *OutputManager) WriteWindow(stats []WindowStats) error {
	if om == nil || len(stats) == 0 {
		return nil
	}
	if !om.headerWritten {
		if err := gocsv.Marshal(stats, om.telemetryFile); err != nil {
			return fmt.Errorf("telemetry: write window: %w", err)
		}
		om.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(stats, om.telemetryFile); err != nil {
		return fmt.Errorf("telemetry: write window: %w", err)
	}
	return nil
}

// WriteSummary writes the final per-colony match summary to summary.csv.
func (om *OutputManager) WriteSummary(summary []Summary) error {
	if om == nil || len(summary) == 0 {
		return nil
	}
	f, err := os.Create(filepath.Join(om.dir, "summary.csv"))
	if err != nil {
		return fmt.Errorf("telemetry: create summary.csv: %w", err)
	}
	defer f.Close()
	if err := gocsv.Marshal(summary, f); err != nil {
		return fmt.Errorf("telemetry: write summary: %w", err)
	}
	return nil
}

// Close flushes and closes telemetry.csv.
func (om *OutputManager) Close() error {
	if om == nil || om.telemetryFile == nil {
		return nil
	}
	return om.telemetryFile.Close()
}
