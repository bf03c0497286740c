// Package services contains the business orchestration between the
// HTTP transport and the scandata core: spooling uploads to temporary
// storage, running the parse/summarize pipeline per file, and reporting
// batch progress.
package services
