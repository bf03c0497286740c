package scandata

import (
	"math"
	"sort"
)

// SummaryTable is a CoordinateTable plus four derived columns: row-wise
// mean and median over all X columns and all Y columns. It is derived
// on demand and never persisted independently of its source.
type SummaryTable struct {
	CoordinateTable
	MeanX   []float64
	MedianX []float64
	MeanY   []float64
	MedianY []float64
}

// SummaryColumnNames lists the derived columns in output order.
func SummaryColumnNames() []string {
	return []string{"mean_x", "median_x", "mean_y", "median_y"}
}

// Summarize computes per-row mean and median across every X column and
// every Y column of the table. Columns are selected by their structural
// axis tag, not by name. NaN padding cells of ragged tables are ignored;
// a row with no present cells for an axis (or an axis with zero columns)
// yields NaN, never an error. The input table is not mutated.
func Summarize(t CoordinateTable) SummaryTable {
	s := SummaryTable{
		CoordinateTable: t,
		MeanX:           make([]float64, t.rows),
		MedianX:         make([]float64, t.rows),
		MeanY:           make([]float64, t.rows),
		MedianY:         make([]float64, t.rows),
	}

	cells := make([]float64, 0, len(t.Columns))
	for row := 0; row < t.rows; row++ {
		s.MeanX[row], s.MedianX[row] = aggregateRow(t, AxisX, row, cells)
		s.MeanY[row], s.MedianY[row] = aggregateRow(t, AxisY, row, cells)
	}
	return s
}

// aggregateRow collects the present cells of one axis at one row index
// and returns their arithmetic mean and statistical median.
func aggregateRow(t CoordinateTable, axis Axis, row int, scratch []float64) (mean, median float64) {
	cells := scratch[:0]
	for col := range t.Columns {
		if t.Columns[col].Axis != axis {
			continue
		}
		if v := t.Cell(col, row); !math.IsNaN(v) {
			cells = append(cells, v)
		}
	}
	if len(cells) == 0 {
		return math.NaN(), math.NaN()
	}

	var sum float64
	for _, v := range cells {
		sum += v
	}
	mean = sum / float64(len(cells))

	sort.Float64s(cells)
	mid := len(cells) / 2
	if len(cells)%2 == 1 {
		median = cells[mid]
	} else {
		median = (cells[mid-1] + cells[mid]) / 2
	}
	return mean, median
}

// Headers returns the full column header row: one x_i/y_i pair per
// block followed by the four summary columns.
func (s SummaryTable) Headers() []string {
	headers := make([]string, 0, len(s.Columns)+4)
	for _, col := range s.Columns {
		headers = append(headers, col.Name())
	}
	return append(headers, SummaryColumnNames()...)
}

// Records renders the table as string cells for CSV-style consumers;
// NaN cells render empty.
func (s SummaryTable) Records() [][]string {
	records := make([][]string, s.rows)
	for row := 0; row < s.rows; row++ {
		cells := make([]string, 0, len(s.Columns)+4)
		for col := range s.Columns {
			cells = append(cells, formatCell(s.Cell(col, row)))
		}
		cells = append(cells,
			formatCell(s.MeanX[row]),
			formatCell(s.MedianX[row]),
			formatCell(s.MeanY[row]),
			formatCell(s.MedianY[row]),
		)
		records[row] = cells
	}
	return records
}
