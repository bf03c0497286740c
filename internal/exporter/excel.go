package exporter

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/matias199305/sick-sensors-visualization/internal/scandata"
)

const (
	metadataSheet = "Metadata"
	summarySheet  = "Summary"
)

// ExcelWriter exports processed scan results as an Excel workbook with
// one metadata sheet and one summary sheet.
type ExcelWriter struct {
	logger *slog.Logger
}

// NewExcelWriter creates a new workbook writer instance.
func NewExcelWriter(logger *slog.Logger) *ExcelWriter {
	return &ExcelWriter{logger: logger.With(slog.String("component", "excel_writer"))}
}

// Write writes the workbook to path. Missing cells of ragged tables
// stay empty in the sheet.
func (w *ExcelWriter) Write(path string, metadata scandata.MetadataTable, summary scandata.SummaryTable) error {
	w.logger.Info("writing Excel workbook",
		slog.String("path", path),
		slog.Int("scan_count", len(metadata.Rows)))

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName(f.GetSheetName(0), metadataSheet)
	if err := w.writeMetadataSheet(f, metadata); err != nil {
		return err
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}
	if err := w.writeSummarySheet(f, summary); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func (w *ExcelWriter) writeMetadataSheet(f *excelize.File, metadata scandata.MetadataTable) error {
	if err := setRow(f, metadataSheet, 1, toCells(scandata.MetadataHeaders())); err != nil {
		return err
	}
	for i, row := range metadata.Rows {
		cells := []interface{}{row.DateTime, row.Height, row.Gab, row.Angle, row.FixedPointHeight}
		if err := setRow(f, metadataSheet, i+2, cells); err != nil {
			return err
		}
	}
	return nil
}

func (w *ExcelWriter) writeSummarySheet(f *excelize.File, summary scandata.SummaryTable) error {
	if err := setRow(f, summarySheet, 1, toCells(summary.Headers())); err != nil {
		return err
	}
	for row := 0; row < summary.RowCount(); row++ {
		cells := make([]interface{}, 0, len(summary.Columns)+4)
		for col := range summary.Columns {
			cells = append(cells, excelCell(summary.Cell(col, row)))
		}
		cells = append(cells,
			excelCell(summary.MeanX[row]),
			excelCell(summary.MedianX[row]),
			excelCell(summary.MeanY[row]),
			excelCell(summary.MedianY[row]),
		)
		if err := setRow(f, summarySheet, row+2, cells); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, rowNumber int, cells []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNumber)
	if err != nil {
		return fmt.Errorf("failed to resolve cell coordinates: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("failed to write sheet row: %w", err)
	}
	return nil
}

func toCells(headers []string) []interface{} {
	cells := make([]interface{}, len(headers))
	for i, h := range headers {
		cells[i] = h
	}
	return cells
}

// excelCell maps NaN padding to an empty cell.
func excelCell(v float64) interface{} {
	if math.IsNaN(v) {
		return nil
	}
	return v
}
