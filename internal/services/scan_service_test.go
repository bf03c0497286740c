package services

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matias199305/sick-sensors-visualization/internal/config"
	"github.com/matias199305/sick-sensors-visualization/internal/scandata"
)

const validDump = `2025-05-26T14:58:59;10.0;2.0;0.0;1.5
SCAN
X;;1.0;2.0
Y;;3.0;4.0
`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(t *testing.T, rejectRagged bool, notifier ProgressNotifier) (*ScanService, string) {
	t.Helper()
	tempDir := t.TempDir()
	cfg := config.UploadConfig{TempDir: tempDir, RejectRagged: rejectRagged}
	return NewScanService(cfg, testLogger(), nil, notifier), tempDir
}

type recordingNotifier struct {
	started  int
	files    []string
	failures int
	finished int
}

func (n *recordingNotifier) BatchStarted(batchID string, fileCount int) { n.started = fileCount }
func (n *recordingNotifier) FileProcessed(batchID, filename string, blocks int, err error) {
	n.files = append(n.files, filename)
	if err != nil {
		n.failures++
	}
}
func (n *recordingNotifier) BatchFinished(batchID string) { n.finished++ }

func TestProcessFile_ValidDump(t *testing.T) {
	svc, tempDir := newTestService(t, false, nil)

	result := svc.ProcessFile(context.Background(), "scan.txt", strings.NewReader(validDump))
	require.NoError(t, result.Err)

	assert.Equal(t, 1, result.Blocks)
	require.Len(t, result.Metadata.Rows, 1)
	assert.Equal(t, "2025-05-26T14:58:59", result.Metadata.Rows[0].DateTime)
	assert.Equal(t, []float64{1.0, 2.0}, result.Summary.MeanX)

	// Temp spool must be released once the tables are derived.
	entries, err := os.ReadDir(tempDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestProcessFile_ParseFailureReleasesTempFile(t *testing.T) {
	svc, tempDir := newTestService(t, false, nil)

	bad := "2025-05-26T14:58:59;ten;2.0;0.0;1.5\nSCAN\nX;;1.0\nY;;2.0\n"
	result := svc.ProcessFile(context.Background(), "bad.txt", strings.NewReader(bad))
	require.Error(t, result.Err)

	var formatErr *scandata.FormatError
	assert.ErrorAs(t, result.Err, &formatErr)
	assert.Empty(t, result.Metadata.Rows, "no partial tables for a failed file")

	entries, err := os.ReadDir(tempDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "temp file must be released on the failure path too")
}

func TestProcessBatch_FailureDoesNotAbortSiblings(t *testing.T) {
	notifier := &recordingNotifier{}
	svc, _ := newTestService(t, false, notifier)

	uploads := []Upload{
		{Filename: "good.txt", Content: strings.NewReader(validDump)},
		{Filename: "truncated.txt", Content: strings.NewReader("2025-05-26T14:58:59;1;2;3;4\n")},
		{Filename: "also_good.txt", Content: strings.NewReader(validDump)},
	}

	results, err := svc.ProcessBatch(context.Background(), uploads)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.NoError(t, results[0].Err)
	var truncErr *scandata.TruncatedBlockError
	assert.ErrorAs(t, results[1].Err, &truncErr)
	assert.NoError(t, results[2].Err, "a failed file must not affect siblings")

	assert.Equal(t, 3, notifier.started)
	assert.Equal(t, []string{"good.txt", "truncated.txt", "also_good.txt"}, notifier.files)
	assert.Equal(t, 1, notifier.failures)
	assert.Equal(t, 1, notifier.finished)
}

func TestProcessBatch_Limits(t *testing.T) {
	t.Run("empty batch", func(t *testing.T) {
		svc, _ := newTestService(t, false, nil)
		_, err := svc.ProcessBatch(context.Background(), nil)
		assert.ErrorIs(t, err, ErrEmptyBatch)
	})

	t.Run("file count over the limit", func(t *testing.T) {
		cfg := config.UploadConfig{TempDir: t.TempDir(), MaxFiles: 1}
		svc := NewScanService(cfg, testLogger(), nil, nil)

		uploads := []Upload{
			{Filename: "a.txt", Content: strings.NewReader(validDump)},
			{Filename: "b.txt", Content: strings.NewReader(validDump)},
		}
		_, err := svc.ProcessBatch(context.Background(), uploads)
		assert.ErrorIs(t, err, ErrTooManyFiles)
	})
}

func TestProcessFile_RaggedPolicy(t *testing.T) {
	ragged := "2025-05-26T14:58:59;1;2;3;4\nSCAN\nX;;1.0;2.0\nY;;3.0;4.0\n" +
		"2025-05-26T14:59:59;1;2;3;4\nSCAN\nX;;5.0\nY;;6.0\n"

	t.Run("default pads with missing cells", func(t *testing.T) {
		svc, _ := newTestService(t, false, nil)
		result := svc.ProcessFile(context.Background(), "ragged.txt", strings.NewReader(ragged))
		require.NoError(t, result.Err)
		assert.True(t, result.Summary.Ragged())
	})

	t.Run("strict mode rejects", func(t *testing.T) {
		svc, _ := newTestService(t, true, nil)
		result := svc.ProcessFile(context.Background(), "ragged.txt", strings.NewReader(ragged))
		require.Error(t, result.Err)

		var raggedErr *scandata.RaggedTableError
		assert.ErrorAs(t, result.Err, &raggedErr)
	})
}

func TestDeriveTitle(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     string
	}{
		{
			name:     "conventional instrument filename",
			filename: "scan_26_05_2025_14_58_59_pico3.txt",
			want:     "Pico 3 - 26/05/2025 14:58",
		},
		{
			name:     "minute gets zero padded",
			filename: "scan_26_05_2025_14_5_59_pico1.txt",
			want:     "Pico 1 - 26/05/2025 14:05",
		},
		{
			name:     "too few tokens falls back to stem",
			filename: "measurement.txt",
			want:     "measurement",
		},
		{
			name:     "path and extension stripped",
			filename: "/uploads/scan_01_02_2025_09_07_00_pico2.dat",
			want:     "Pico 2 - 01/02/2025 09:07",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveTitle(tt.filename))
		})
	}
}
