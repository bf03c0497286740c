package scandata

import (
	"fmt"
	"math"
	"strconv"
)

// MetadataRow is one MetadataTable row: the five scalar fields of a
// single scan block.
type MetadataRow struct {
	DateTime         string  `json:"DateTime"`
	Height           float64 `json:"Height"`
	Gab              float64 `json:"Gab"`
	Angle            float64 `json:"Angle"`
	FixedPointHeight float64 `json:"FixedPointHeight"`
}

// MetadataTable holds one row per scan block in discovery order. There
// is no primary key beyond the positional index.
type MetadataTable struct {
	Rows []MetadataRow `json:"rows"`
}

// MetadataHeaders returns the column headers in table order. "Gab" is
// the instrument's historical spelling and is preserved on the wire.
func MetadataHeaders() []string {
	return []string{"DateTime", "Height", "Gab", "Angle", "FixedPointHeight"}
}

// Records renders the table as string cells for CSV-style consumers.
func (t MetadataTable) Records() [][]string {
	records := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		records[i] = []string{
			row.DateTime,
			formatCell(row.Height),
			formatCell(row.Gab),
			formatCell(row.Angle),
			formatCell(row.FixedPointHeight),
		}
	}
	return records
}

// Column is one coordinate column. Its identity is structural: the axis
// tag plus the contributing block's index. Consumers that need the
// conventional column label should use Name.
type Column struct {
	Axis   Axis      `json:"axis"`
	Block  int       `json:"block"`
	Values []float64 `json:"-"`
}

// Name renders the conventional column label, e.g. "x_0" or "y_3".
func (c Column) Name() string {
	return fmt.Sprintf("%s_%d", c.Axis, c.Block)
}

// CoordinateTable holds one column pair per scan block, in discovery
// order. When blocks contribute unequal-length arrays the shorter
// columns are padded with NaN cells so rows never silently misalign;
// Ragged reports whether any padding happened.
type CoordinateTable struct {
	Columns []Column
	rows    int
	ragged  bool
}

// RowCount returns the number of rows, i.e. the longest contributed
// coordinate array.
func (t CoordinateTable) RowCount() int { return t.rows }

// Ragged reports whether any column needed NaN padding.
func (t CoordinateTable) Ragged() bool { return t.ragged }

// Cell returns the value at (column, row). Padding cells are NaN.
func (t CoordinateTable) Cell(col, row int) float64 {
	values := t.Columns[col].Values
	if row >= len(values) {
		return math.NaN()
	}
	return values[row]
}

// BuildTables materializes the metadata and coordinate tables from a
// block sequence. Block order is preserved in both.
func BuildTables(blocks []ScanBlock) (MetadataTable, CoordinateTable) {
	meta := MetadataTable{Rows: make([]MetadataRow, len(blocks))}
	coords := CoordinateTable{Columns: make([]Column, 0, 2*len(blocks))}

	for i, block := range blocks {
		meta.Rows[i] = MetadataRow{
			DateTime:         block.Timestamp,
			Height:           block.Height,
			Gab:              block.Gap,
			Angle:            block.Angle,
			FixedPointHeight: block.FixedPointHeight,
		}
		coords.Columns = append(coords.Columns,
			Column{Axis: AxisX, Block: i, Values: block.X},
			Column{Axis: AxisY, Block: i, Values: block.Y},
		)
		if len(block.X) > coords.rows {
			coords.rows = len(block.X)
		}
		if len(block.Y) > coords.rows {
			coords.rows = len(block.Y)
		}
	}

	for _, col := range coords.Columns {
		if len(col.Values) < coords.rows {
			coords.ragged = true
			break
		}
	}
	return meta, coords
}

// CheckAligned returns a *RaggedTableError naming the first column that
// disagrees with the table's row count. Used by strict-mode callers
// that reject ragged files instead of accepting NaN padding.
func (t CoordinateTable) CheckAligned() error {
	for _, col := range t.Columns {
		if len(col.Values) != t.rows {
			return &RaggedTableError{Block: col.Block, Got: len(col.Values), Want: t.rows}
		}
	}
	return nil
}

// formatCell renders a float cell; NaN padding becomes an empty cell so
// missing values stay visibly missing in exports.
func formatCell(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
