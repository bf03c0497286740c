package http

import (
	"context"

	"github.com/matias199305/sick-sensors-visualization/internal/services"
)

// ScanServiceInterface defines what the scan handler needs from the
// service layer.
type ScanServiceInterface interface {
	ProcessBatch(ctx context.Context, uploads []services.Upload) ([]services.FileResult, error)
}
