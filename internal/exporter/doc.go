// Package exporter writes processed scan results to disk in the
// formats the instrument operators consume: CSV, JSON, and Excel
// workbooks.
package exporter
