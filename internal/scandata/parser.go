package scandata

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

const (
	// fieldDelimiter separates cells on every instrument line.
	fieldDelimiter = ";"
	// metadataFieldCount is the exact cell count of a block-start line.
	metadataFieldCount = 5
	// coordinatePrefixCells is the row tag plus the empty leading column
	// that precede the numeric cells of an X or Y row.
	coordinatePrefixCells = 2

	// maxLineBytes bounds a single coordinate row. Long-range scans
	// produce wide rows that overflow bufio.Scanner's default buffer.
	maxLineBytes = 4 * 1024 * 1024
)

// timestampPattern matches the ISO-8601 style prefix the instrument
// stamps on every metadata line, e.g. 2025-05-26T14:58:59. Trailing
// content after the seconds field is tolerated.
var timestampPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}`)

// scalarFields names metadata cells 2-5 in order, using the
// instrument's historical header spelling for the gap column.
var scalarFields = [...]string{"Height", "Gab", "Angle", "FixedPointHeight"}

// Parse walks a line-oriented scan dump and returns every complete scan
// block in discovery order. Blank lines and non-conforming lines outside
// a block (the file's header row included) are skipped silently; that is
// how header exclusion works, there is no special casing.
//
// Parsing the same byte stream always yields the same block sequence.
// The first malformed or truncated block aborts the whole parse with a
// *FormatError or *TruncatedBlockError; no partial block is returned.
func Parse(r io.Reader) ([]ScanBlock, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var blocks []ScanBlock
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}

		cells := splitCells(text)
		if len(cells) != metadataFieldCount || !timestampPattern.MatchString(cells[0]) {
			// Header row or stray content, not an error.
			continue
		}

		block := ScanBlock{Timestamp: cells[0]}
		startLine := line
		for i, dst := range []*float64{&block.Height, &block.Gap, &block.Angle, &block.FixedPointHeight} {
			v, err := strconv.ParseFloat(cells[i+1], 64)
			if err != nil {
				return nil, &FormatError{Line: line, Field: scalarFields[i], Value: cells[i+1], Err: err}
			}
			*dst = v
		}

		// The marker line ("SCAN") is consumed without validating its
		// content; only its presence matters.
		if !sc.Scan() {
			return nil, truncated(sc, startLine, "marker line")
		}
		line++

		var err error
		block.X, line, err = parseCoordinateRow(sc, line, startLine, AxisX)
		if err != nil {
			return nil, err
		}
		block.Y, line, err = parseCoordinateRow(sc, line, startLine, AxisY)
		if err != nil {
			return nil, err
		}

		blocks = append(blocks, block)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read scan stream: %w", err)
	}
	return blocks, nil
}

// parseCoordinateRow consumes the next line as a coordinate row: the row
// tag and the empty leading column are dropped, every remaining cell
// must parse as a float.
func parseCoordinateRow(sc *bufio.Scanner, line, startLine int, axis Axis) ([]float64, int, error) {
	if !sc.Scan() {
		return nil, line, truncated(sc, startLine, strings.ToUpper(axis.String())+" row")
	}
	line++

	cells := splitCells(strings.TrimSpace(sc.Text()))
	if len(cells) <= coordinatePrefixCells {
		// A bare "X;;" row carries zero points. Valid, just empty.
		return nil, line, nil
	}
	cells = cells[coordinatePrefixCells:]

	values := make([]float64, len(cells))
	for i, cell := range cells {
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return nil, line, &FormatError{
				Line:  line,
				Field: strings.ToUpper(axis.String()) + " row",
				Value: cell,
				Err:   err,
			}
		}
		values[i] = v
	}
	return values, line, nil
}

// truncated wraps end-of-input mid-block, preserving a read error from
// the underlying stream when one caused the early stop.
func truncated(sc *bufio.Scanner, startLine int, missing string) error {
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read scan stream: %w", err)
	}
	return &TruncatedBlockError{Line: startLine, Missing: missing}
}

// splitCells splits an instrument line on the field delimiter and trims
// surrounding whitespace from every cell.
func splitCells(line string) []string {
	cells := strings.Split(line, fieldDelimiter)
	for i, cell := range cells {
		cells[i] = strings.TrimSpace(cell)
	}
	return cells
}
