// Package scandata turns raw SICK scan dumps into tabular data.
// It consolidates block parsing, table construction, and statistical
// summarization into a cohesive package that handles the complete data
// lifecycle from text ingestion to plot-ready statistics.
//
// # Architecture
//
// The package is organized into three main components:
//
// 1. Parser: walks the line-oriented dump and extracts scan blocks
// 2. Tables: reshape blocks into metadata and coordinate tables
// 3. Summarizer: appends row-wise mean/median columns per axis
//
// # Input format
//
// The instrument writes repeating four-line units:
//
//	<timestamp>;<height>;<gap>;<angle>;<fixedPointHeight>
//	SCAN
//	X;;<x0>;<x1>;...;<xN>
//	Y;;<y0>;<y1>;...;<yN>
//
// Blank lines and anything that does not look like a metadata line
// (including the file's header row) are skipped.
//
// # Data Flow
//
// The typical data flow through this package:
//
//	Text stream → Parse → []ScanBlock → BuildTables → (MetadataTable, CoordinateTable) → Summarize → SummaryTable
//
// # Error Handling
//
// Parsing failures carry positional context as typed errors:
//
//	- FormatError: a recognized block's scalar or coordinate cell failed numeric parsing
//	- TruncatedBlockError: the stream ended mid-block
//	- RaggedTableError: blocks in one file disagree on coordinate length (strict mode)
package scandata
