package scandata

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTables_Scenario(t *testing.T) {
	blocks, err := Parse(strings.NewReader(validDump))
	require.NoError(t, err)

	meta, coords := BuildTables(blocks)

	require.Len(t, meta.Rows, 1)
	assert.Equal(t, MetadataRow{
		DateTime:         "2025-05-26T14:58:59",
		Height:           10.0,
		Gab:              2.0,
		Angle:            0.0,
		FixedPointHeight: 1.5,
	}, meta.Rows[0])

	require.Len(t, coords.Columns, 2)
	assert.Equal(t, "x_0", coords.Columns[0].Name())
	assert.Equal(t, "y_0", coords.Columns[1].Name())
	assert.Equal(t, []float64{1.0, 2.0}, coords.Columns[0].Values)
	assert.Equal(t, []float64{3.0, 4.0}, coords.Columns[1].Values)
	assert.Equal(t, 2, coords.RowCount())
	assert.False(t, coords.Ragged())
}

func TestBuildTables_ColumnIdentityPreservesBlockIndex(t *testing.T) {
	blocks := []ScanBlock{
		{Timestamp: "2025-05-26T14:58:59", X: []float64{1}, Y: []float64{2}},
		{Timestamp: "2025-05-26T14:59:59", X: []float64{3}, Y: []float64{4}},
	}
	_, coords := BuildTables(blocks)

	require.Len(t, coords.Columns, 4)
	assert.Equal(t, Column{Axis: AxisX, Block: 1, Values: []float64{3}}, coords.Columns[2])
	assert.Equal(t, "x_1", coords.Columns[2].Name())
	assert.Equal(t, "y_1", coords.Columns[3].Name())
}

func TestBuildTables_RaggedPadding(t *testing.T) {
	blocks := []ScanBlock{
		{Timestamp: "2025-05-26T14:58:59", X: []float64{1, 2, 3}, Y: []float64{4, 5, 6}},
		{Timestamp: "2025-05-26T14:59:59", X: []float64{7}, Y: []float64{8}},
	}
	_, coords := BuildTables(blocks)

	assert.True(t, coords.Ragged())
	assert.Equal(t, 3, coords.RowCount())

	// Missing cells are explicit NaN, never a silent misalignment.
	assert.Equal(t, 7.0, coords.Cell(2, 0))
	assert.True(t, math.IsNaN(coords.Cell(2, 1)))
	assert.True(t, math.IsNaN(coords.Cell(2, 2)))

	var raggedErr *RaggedTableError
	err := coords.CheckAligned()
	require.ErrorAs(t, err, &raggedErr)
	assert.Equal(t, 1, raggedErr.Block)
	assert.Equal(t, 1, raggedErr.Got)
	assert.Equal(t, 3, raggedErr.Want)
}

func TestCheckAligned_Empty(t *testing.T) {
	_, coords := BuildTables(nil)
	assert.NoError(t, coords.CheckAligned())
	assert.Zero(t, coords.RowCount())
}

func TestMetadataTable_Records(t *testing.T) {
	meta := MetadataTable{Rows: []MetadataRow{{
		DateTime: "2025-05-26T14:58:59", Height: 10, Gab: 2, Angle: 0.5, FixedPointHeight: 1.5,
	}}}
	records := meta.Records()
	require.Len(t, records, 1)
	assert.Equal(t, []string{"2025-05-26T14:58:59", "10", "2", "0.5", "1.5"}, records[0])
	assert.Len(t, MetadataHeaders(), len(records[0]))
}
