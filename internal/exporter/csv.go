package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/matias199305/sick-sensors-visualization/internal/scandata"
)

// CSVWriter provides CSV export functionality.
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance.
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	return &CSVWriter{logger: logger.With(slog.String("component", "csv_writer"))}
}

// WriteMetadata writes the per-scan metadata table to path.
func (w *CSVWriter) WriteMetadata(path string, table scandata.MetadataTable) error {
	return w.write(path, scandata.MetadataHeaders(), table.Records())
}

// WriteSummary writes the coordinate table with its summary columns to
// path. NaN padding cells of ragged tables render as empty cells.
func (w *CSVWriter) WriteSummary(path string, table scandata.SummaryTable) error {
	return w.write(path, table.Headers(), table.Records())
}

func (w *CSVWriter) write(path string, headers []string, records [][]string) error {
	w.logger.Info("writing CSV file",
		slog.String("path", path),
		slog.Int("record_count", len(records)))

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("failed to write CSV header row: %w", err)
	}
	for _, record := range records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV data row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV file: %w", err)
	}
	return file.Sync()
}
