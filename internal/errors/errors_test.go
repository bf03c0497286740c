package errors

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError_Error(t *testing.T) {
	err := New(http.StatusBadRequest, "INVALID_REQUEST", "bad input")
	assert.Equal(t, "bad input", err.Error())
	assert.Equal(t, http.StatusBadRequest, err.StatusCode)
}

func TestErrUnprocessableFile(t *testing.T) {
	cause := fmt.Errorf("line 3: field Height: cannot parse \"ten\"")
	err := ErrUnprocessableFile("scan_01.txt", cause)

	assert.Equal(t, http.StatusUnprocessableEntity, err.StatusCode)
	assert.Equal(t, "UNPROCESSABLE_FILE", err.ErrorCode)
	assert.Contains(t, err.Message, "scan_01.txt")
	assert.Equal(t, cause.Error(), err.Details)
}

func TestErrorHandler_RendersEnvelope(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewErrorHandler(logger)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/scans", nil)
	h.HandleError(w, r, ErrValidation("files", "at least one file is required"))

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var envelope struct {
		Success bool `json:"success"`
		Error   struct {
			ErrorCode string `json:"error_code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.False(t, envelope.Success)
	assert.Equal(t, "VALIDATION_FAILED", envelope.Error.ErrorCode)
}

func TestErrorHandler_UnknownErrorBecomesInternal(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewErrorHandler(logger)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/scans", nil)
	h.HandleError(w, r, fmt.Errorf("disk exploded"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
