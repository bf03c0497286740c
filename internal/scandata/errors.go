package scandata

import "fmt"

// FormatError reports a recognized block whose scalar or coordinate cell
// failed numeric parsing. It aborts the current file's parse.
type FormatError struct {
	Line  int    // 1-based line number of the offending line
	Field string // metadata field name or coordinate row label
	Value string // the raw cell that failed to parse
	Err   error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("line %d: field %s: cannot parse %q: %v", e.Line, e.Field, e.Value, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// TruncatedBlockError reports end-of-input while a block-start line was
// still waiting for its marker, X row, or Y row. No partial block is
// ever emitted for a truncated tail.
type TruncatedBlockError struct {
	Line    int    // line number of the block-start that was cut short
	Missing string // which part of the block the stream ended before
}

func (e *TruncatedBlockError) Error() string {
	return fmt.Sprintf("line %d: scan block truncated: missing %s", e.Line, e.Missing)
}

// RaggedTableError reports blocks within one file that contribute
// unequal-length coordinate arrays. It is only returned when table
// construction runs in strict mode; the default policy pads short
// columns with explicit NaN cells instead.
type RaggedTableError struct {
	Block int // index of the first block that disagrees
	Got   int
	Want  int
}

func (e *RaggedTableError) Error() string {
	return fmt.Sprintf("scan block %d: ragged coordinate table: got %d points, want %d", e.Block, e.Got, e.Want)
}
