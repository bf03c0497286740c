package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/matias199305/sick-sensors-visualization/internal/config"
	"github.com/matias199305/sick-sensors-visualization/internal/infrastructure"
	"github.com/matias199305/sick-sensors-visualization/internal/scandata"
)

// Upload is one file handed over by the transport layer.
type Upload struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// FileResult is the outcome of processing one uploaded file. Err is set
// when the file failed; a failed file publishes no tables.
type FileResult struct {
	Filename string
	Title    string
	Blocks   int
	Metadata scandata.MetadataTable
	Summary  scandata.SummaryTable
	Err      error
}

// ProgressNotifier receives batch progress events, e.g. for a WebSocket
// hub. Implementations must not block.
type ProgressNotifier interface {
	BatchStarted(batchID string, fileCount int)
	FileProcessed(batchID, filename string, blocks int, err error)
	BatchFinished(batchID string)
}

// ScanService runs the parse-then-summarize pipeline for uploaded scan
// files.
type ScanService struct {
	logger       *slog.Logger
	metrics      *infrastructure.Metrics
	notifier     ProgressNotifier
	tempDir      string
	maxFiles     int
	rejectRagged bool
}

// NewScanService creates the scan processing service. notifier may be
// nil when no progress consumer exists (the CLI).
func NewScanService(cfg config.UploadConfig, logger *slog.Logger, metrics *infrastructure.Metrics, notifier ProgressNotifier) *ScanService {
	return &ScanService{
		logger:       logger.With(slog.String("component", "scan_service")),
		metrics:      metrics,
		notifier:     notifier,
		tempDir:      cfg.TempDir,
		maxFiles:     cfg.MaxFiles,
		rejectRagged: cfg.RejectRagged,
	}
}

// ProcessBatch runs every upload through the pipeline sequentially.
// One file's failure is recorded in its FileResult and never aborts the
// siblings; callers always get exactly one result per upload, in order.
// Only batch-level problems (empty batch, file count over the limit)
// return an error.
func (s *ScanService) ProcessBatch(ctx context.Context, uploads []Upload) ([]FileResult, error) {
	if len(uploads) == 0 {
		return nil, ErrEmptyBatch
	}
	if s.maxFiles > 0 && len(uploads) > s.maxFiles {
		return nil, fmt.Errorf("%w: got %d, limit is %d", ErrTooManyFiles, len(uploads), s.maxFiles)
	}

	batchID := uuid.New().String()
	s.logger.InfoContext(ctx, "processing scan batch",
		slog.String("batch_id", batchID),
		slog.Int("file_count", len(uploads)))

	if s.notifier != nil {
		s.notifier.BatchStarted(batchID, len(uploads))
	}

	results := make([]FileResult, 0, len(uploads))
	for _, upload := range uploads {
		result := s.ProcessFile(ctx, upload.Filename, upload.Content)
		if result.Err != nil {
			s.logger.ErrorContext(ctx, "scan file failed",
				slog.String("batch_id", batchID),
				slog.String("filename", upload.Filename),
				slog.String("error", result.Err.Error()))
			if s.metrics != nil {
				s.metrics.FilesProcessed.WithLabelValues("error").Inc()
			}
		} else {
			s.logger.InfoContext(ctx, "scan file processed",
				slog.String("batch_id", batchID),
				slog.String("filename", upload.Filename),
				slog.Int("blocks", result.Blocks))
			if s.metrics != nil {
				s.metrics.FilesProcessed.WithLabelValues("ok").Inc()
				s.metrics.BlocksParsed.Add(float64(result.Blocks))
			}
		}
		if s.notifier != nil {
			s.notifier.FileProcessed(batchID, upload.Filename, result.Blocks, result.Err)
		}
		results = append(results, result)
	}

	if s.notifier != nil {
		s.notifier.BatchFinished(batchID)
	}
	return results, nil
}

// ProcessFile spools one file's bytes to temporary storage, parses it,
// and summarizes its coordinate table. The temporary file is removed on
// every path, success or failure.
func (s *ScanService) ProcessFile(ctx context.Context, filename string, content io.Reader) FileResult {
	result := FileResult{
		Filename: filename,
		Title:    DeriveTitle(filename),
	}

	tmp, err := os.CreateTemp(s.tempDir, "sickscan-*.txt")
	if err != nil {
		result.Err = fmt.Errorf("create temp file: %w", err)
		return result
	}
	defer func() {
		tmp.Close()
		if err := os.Remove(tmp.Name()); err != nil {
			s.logger.WarnContext(ctx, "failed to remove temp file",
				slog.String("path", tmp.Name()),
				slog.String("error", err.Error()))
		}
	}()

	if _, err := io.Copy(tmp, content); err != nil {
		result.Err = fmt.Errorf("spool upload %s: %w", filename, err)
		return result
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		result.Err = fmt.Errorf("rewind temp file: %w", err)
		return result
	}

	blocks, err := scandata.Parse(tmp)
	if err != nil {
		result.Err = fmt.Errorf("parse %s: %w", filename, err)
		return result
	}

	metadata, coords := scandata.BuildTables(blocks)
	if s.rejectRagged {
		if err := coords.CheckAligned(); err != nil {
			result.Err = fmt.Errorf("validate %s: %w", filename, err)
			return result
		}
	}

	result.Blocks = len(blocks)
	result.Metadata = metadata
	result.Summary = scandata.Summarize(coords)
	return result
}
