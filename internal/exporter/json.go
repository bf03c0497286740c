package exporter

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/matias199305/sick-sensors-visualization/internal/scandata"
)

// JSONWriter provides JSON export functionality.
type JSONWriter struct {
	logger *slog.Logger
}

// NewJSONWriter creates a new JSON writer instance.
func NewJSONWriter(logger *slog.Logger) *JSONWriter {
	return &JSONWriter{logger: logger.With(slog.String("component", "json_writer"))}
}

// jsonDocument is the on-disk JSON layout with generation metadata.
type jsonDocument struct {
	Format      string                 `json:"format"`
	GeneratedAt string                 `json:"generated_at"`
	Title       string                 `json:"title,omitempty"`
	Metadata    []scandata.MetadataRow `json:"metadata"`
	Summary     summaryDocument        `json:"summary"`
}

type summaryDocument struct {
	Headers []string     `json:"headers"`
	Ragged  bool         `json:"ragged"`
	Rows    [][]*float64 `json:"rows"`
}

// Write writes one file's processed tables to path. Missing cells
// (NaN) serialize as null.
func (w *JSONWriter) Write(path, title string, metadata scandata.MetadataTable, summary scandata.SummaryTable) error {
	w.logger.Info("writing JSON file",
		slog.String("path", path),
		slog.Int("scan_count", len(metadata.Rows)))

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	doc := jsonDocument{
		Format:      "sick_scan_summary_v1",
		GeneratedAt: time.Now().Format(time.RFC3339),
		Title:       title,
		Metadata:    metadata.Rows,
		Summary: summaryDocument{
			Headers: summary.Headers(),
			Ragged:  summary.Ragged(),
			Rows:    SummaryRows(summary),
		},
	}
	if doc.Metadata == nil {
		doc.Metadata = []scandata.MetadataRow{}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create JSON file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode JSON document: %w", err)
	}
	return nil
}

// SummaryRows renders a summary table as JSON-safe rows: every cell is
// a *float64 where nil marks a missing (NaN) value.
func SummaryRows(summary scandata.SummaryTable) [][]*float64 {
	rows := make([][]*float64, summary.RowCount())
	for row := 0; row < summary.RowCount(); row++ {
		cells := make([]*float64, 0, len(summary.Columns)+4)
		for col := range summary.Columns {
			cells = append(cells, jsonCell(summary.Cell(col, row)))
		}
		cells = append(cells,
			jsonCell(summary.MeanX[row]),
			jsonCell(summary.MedianX[row]),
			jsonCell(summary.MeanY[row]),
			jsonCell(summary.MedianY[row]),
		)
		rows[row] = cells
	}
	return rows
}

func jsonCell(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}
