// Command scanparse processes SICK scan dumps headlessly: it parses
// each input file, computes the coordinate summary, and writes the
// results as CSV, JSON, or an Excel workbook.
//
// Usage:
//
//	scanparse -out results -format csv file1.txt file2.txt
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/matias199305/sick-sensors-visualization/internal/config"
	"github.com/matias199305/sick-sensors-visualization/internal/exporter"
	"github.com/matias199305/sick-sensors-visualization/internal/services"
)

func main() {
	outDir := flag.String("out", "results", "output directory")
	format := flag.String("format", "csv", "output format: csv, json, or xlsx")
	rejectRagged := flag.Bool("reject-ragged", false, "fail files whose blocks disagree on coordinate length")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: scanparse [-out dir] [-format csv|json|xlsx] file...")
		os.Exit(2)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := run(logger, *outDir, *format, *rejectRagged, flag.Args()); err != nil {
		logger.Error("scanparse failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(logger *slog.Logger, outDir, format string, rejectRagged bool, files []string) error {
	switch format {
	case "csv", "json", "xlsx":
	default:
		return fmt.Errorf("unknown format %q", format)
	}

	svc := services.NewScanService(
		config.UploadConfig{RejectRagged: rejectRagged},
		logger, nil, nil)

	ctx := context.Background()
	failures := 0
	for _, path := range files {
		if err := processFile(ctx, logger, svc, outDir, format, path); err != nil {
			// One bad file must not stop the rest of the batch.
			logger.Error("file failed",
				slog.String("file", path),
				slog.String("error", err.Error()))
			failures++
		}
	}
	if failures > 0 {
		return fmt.Errorf("%d of %d files failed", failures, len(files))
	}
	return nil
}

func processFile(ctx context.Context, logger *slog.Logger, svc *services.ScanService, outDir, format, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer file.Close()

	result := svc.ProcessFile(ctx, filepath.Base(path), file)
	if result.Err != nil {
		return result.Err
	}

	logger.Info("file processed",
		slog.String("file", path),
		slog.String("title", result.Title),
		slog.Int("blocks", result.Blocks),
		slog.Int("points", result.Summary.RowCount()))

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	switch format {
	case "csv":
		w := exporter.NewCSVWriter(logger)
		if err := w.WriteMetadata(filepath.Join(outDir, stem+"_metadata.csv"), result.Metadata); err != nil {
			return err
		}
		return w.WriteSummary(filepath.Join(outDir, stem+"_summary.csv"), result.Summary)
	case "json":
		w := exporter.NewJSONWriter(logger)
		return w.Write(filepath.Join(outDir, stem+".json"), result.Title, result.Metadata, result.Summary)
	default:
		w := exporter.NewExcelWriter(logger)
		return w.Write(filepath.Join(outDir, stem+".xlsx"), result.Metadata, result.Summary)
	}
}
