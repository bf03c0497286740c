package http

import (
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "github.com/matias199305/sick-sensors-visualization/internal/errors"
	"github.com/matias199305/sick-sensors-visualization/internal/exporter"
	"github.com/matias199305/sick-sensors-visualization/internal/scandata"
	"github.com/matias199305/sick-sensors-visualization/internal/services"
)

// uploadFieldName is the multipart form field carrying the scan files.
const uploadFieldName = "files"

// ScanHandler handles scan upload HTTP requests.
type ScanHandler struct {
	service      ScanServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	maxFileSize  int64
	maxFiles     int
}

// NewScanHandler creates a new scan handler.
func NewScanHandler(service ScanServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler, maxFileSize int64, maxFiles int) *ScanHandler {
	return &ScanHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "scan_handler")),
		errorHandler: errorHandler,
		maxFileSize:  maxFileSize,
		maxFiles:     maxFiles,
	}
}

// Routes returns the scan routes.
func (h *ScanHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Post("/", h.UploadScans)
	return r
}

// fileResponse is the per-file payload of an upload response. A failed
// file carries Error and no tables.
type fileResponse struct {
	Filename string                 `json:"filename"`
	Title    string                 `json:"title"`
	Success  bool                   `json:"success"`
	Blocks   int                    `json:"blocks,omitempty"`
	Metadata []scandata.MetadataRow `json:"metadata,omitempty"`
	Summary  *summaryResponse       `json:"summary,omitempty"`
	Error    *fileError             `json:"error,omitempty"`
}

type summaryResponse struct {
	Headers []string     `json:"headers"`
	Ragged  bool         `json:"ragged"`
	Rows    [][]*float64 `json:"rows"`
}

type fileError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// UploadScans handles POST /api/scans: a multipart batch of scan files.
// Each file is parsed and summarized independently; per-file failures
// are reported inline and never fail the batch.
func (h *ScanHandler) UploadScans(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize*int64(h.maxFiles))
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.errorHandler.HandleError(w, r, apierrors.ErrPayloadTooLarge)
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation(uploadFieldName, "Request is not a valid multipart upload"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File[uploadFieldName]
	for _, header := range files {
		if header.Size > h.maxFileSize {
			h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
				http.StatusRequestEntityTooLarge,
				"PAYLOAD_TOO_LARGE",
				fmt.Sprintf("File %q exceeds the size limit", header.Filename),
				map[string]interface{}{"filename": header.Filename, "size": header.Size, "limit": h.maxFileSize},
			))
			return
		}
	}

	h.logger.InfoContext(r.Context(), "processing scan upload",
		slog.String("request_id", reqID),
		slog.Int("file_count", len(files)))

	uploads, closeAll, err := openUploads(files)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	defer closeAll()

	results, err := h.service.ProcessBatch(r.Context(), uploads)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyBatch):
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation(uploadFieldName, "At least one scan file is required"))
		case errors.Is(err, services.ErrTooManyFiles):
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation(uploadFieldName, err.Error()))
		default:
			h.errorHandler.HandleError(w, r, err)
		}
		return
	}

	responses := make([]fileResponse, len(results))
	succeeded := 0
	for i, result := range results {
		responses[i] = toFileResponse(result)
		if result.Err == nil {
			succeeded++
		}
	}

	render.JSON(w, r, map[string]interface{}{
		"status":    "success",
		"data":      responses,
		"count":     len(responses),
		"succeeded": succeeded,
	})
}

// openUploads opens every multipart file and returns the uploads plus a
// single closer for all of them.
func openUploads(files []*multipart.FileHeader) ([]services.Upload, func(), error) {
	uploads := make([]services.Upload, 0, len(files))
	var open []multipart.File

	closeAll := func() {
		for _, f := range open {
			f.Close()
		}
	}

	for _, header := range files {
		file, err := header.Open()
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("open uploaded file %s: %w", header.Filename, err)
		}
		open = append(open, file)
		uploads = append(uploads, services.Upload{
			Filename: header.Filename,
			Size:     header.Size,
			Content:  file,
		})
	}
	return uploads, closeAll, nil
}

// toFileResponse maps a service result onto the wire shape.
func toFileResponse(result services.FileResult) fileResponse {
	resp := fileResponse{
		Filename: result.Filename,
		Title:    result.Title,
		Success:  result.Err == nil,
	}
	if result.Err != nil {
		resp.Error = &fileError{
			Code:    errorCode(result.Err),
			Message: result.Err.Error(),
		}
		return resp
	}

	resp.Blocks = result.Blocks
	resp.Metadata = result.Metadata.Rows
	if resp.Metadata == nil {
		resp.Metadata = []scandata.MetadataRow{}
	}
	resp.Summary = &summaryResponse{
		Headers: result.Summary.Headers(),
		Ragged:  result.Summary.Ragged(),
		Rows:    exporter.SummaryRows(result.Summary),
	}
	return resp
}

// errorCode classifies a per-file failure for the presentation layer.
func errorCode(err error) string {
	var formatErr *scandata.FormatError
	var truncErr *scandata.TruncatedBlockError
	var raggedErr *scandata.RaggedTableError
	switch {
	case errors.As(err, &formatErr):
		return "FORMAT_ERROR"
	case errors.As(err, &truncErr):
		return "TRUNCATED_BLOCK"
	case errors.As(err, &raggedErr):
		return "RAGGED_TABLE"
	default:
		return "PROCESSING_FAILED"
	}
}
