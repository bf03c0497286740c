package exporter

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/matias199305/sick-sensors-visualization/internal/scandata"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testTables(t *testing.T) (scandata.MetadataTable, scandata.SummaryTable) {
	t.Helper()
	dump := "2025-05-26T14:58:59;10.0;2.0;0.0;1.5\nSCAN\nX;;1.0;2.0\nY;;3.0;4.0\n"
	blocks, err := scandata.Parse(strings.NewReader(dump))
	require.NoError(t, err)
	meta, coords := scandata.BuildTables(blocks)
	return meta, scandata.Summarize(coords)
}

func TestCSVWriter_RoundTrip(t *testing.T) {
	meta, summary := testTables(t)
	dir := t.TempDir()
	w := NewCSVWriter(testLogger())

	metaPath := filepath.Join(dir, "out", "metadata.csv")
	require.NoError(t, w.WriteMetadata(metaPath, meta))

	file, err := os.Open(metaPath)
	require.NoError(t, err)
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"DateTime", "Height", "Gab", "Angle", "FixedPointHeight"}, records[0])
	assert.Equal(t, []string{"2025-05-26T14:58:59", "10", "2", "0", "1.5"}, records[1])

	summaryPath := filepath.Join(dir, "out", "summary.csv")
	require.NoError(t, w.WriteSummary(summaryPath, summary))

	sFile, err := os.Open(summaryPath)
	require.NoError(t, err)
	defer sFile.Close()

	sRecords, err := csv.NewReader(sFile).ReadAll()
	require.NoError(t, err)
	require.Len(t, sRecords, 3)
	assert.Equal(t, []string{"x_0", "y_0", "mean_x", "median_x", "mean_y", "median_y"}, sRecords[0])
	assert.Equal(t, []string{"1", "3", "1", "1", "3", "3"}, sRecords[1])
}

func TestJSONWriter_NaNBecomesNull(t *testing.T) {
	blocks := []scandata.ScanBlock{
		{Timestamp: "2025-05-26T14:58:59", X: []float64{1, 2}, Y: []float64{3, 4}},
		{Timestamp: "2025-05-26T14:59:59", X: []float64{5}, Y: []float64{6}},
	}
	meta, coords := scandata.BuildTables(blocks)
	summary := scandata.Summarize(coords)
	require.True(t, summary.Ragged())

	path := filepath.Join(t.TempDir(), "summary.json")
	w := NewJSONWriter(testLogger())
	require.NoError(t, w.Write(path, "Pico 1", meta, summary))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc struct {
		Format  string `json:"format"`
		Title   string `json:"title"`
		Summary struct {
			Ragged bool         `json:"ragged"`
			Rows   [][]*float64 `json:"rows"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "sick_scan_summary_v1", doc.Format)
	assert.Equal(t, "Pico 1", doc.Title)
	assert.True(t, doc.Summary.Ragged)
	require.Len(t, doc.Summary.Rows, 2)

	// Second row: block 1 contributed no cell, serialized as null.
	secondRow := doc.Summary.Rows[1]
	assert.Nil(t, secondRow[2], "missing x_1 cell must be null")
	require.NotNil(t, secondRow[0])
	assert.Equal(t, 2.0, *secondRow[0])
}

func TestExcelWriter_Workbook(t *testing.T) {
	meta, summary := testTables(t)
	path := filepath.Join(t.TempDir(), "scan.xlsx")

	w := NewExcelWriter(testLogger())
	require.NoError(t, w.Write(path, meta, summary))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{"Metadata", "Summary"}, f.GetSheetList())

	metaRows, err := f.GetRows("Metadata")
	require.NoError(t, err)
	require.Len(t, metaRows, 2)
	assert.Equal(t, "2025-05-26T14:58:59", metaRows[1][0])

	summaryRows, err := f.GetRows("Summary")
	require.NoError(t, err)
	require.Len(t, summaryRows, 3)
	assert.Equal(t, "x_0", summaryRows[0][0])
}
