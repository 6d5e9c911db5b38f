package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreReadFailedError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("deadline exceeded")
	err := NewStoreReadFailedError("placements", cause)

	assert.Equal(t, ErrCodeStoreReadFailed, err.Code)
	assert.True(t, err.Retryable)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "placements", err.Metadata["collection"])
}

func TestAsStandardError_ThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", NewAuthRequiredError("createBooking"))

	stdErr, ok := AsStandardError(wrapped)
	require.True(t, ok)
	assert.Equal(t, ErrCodeAuthRequired, stdErr.Code)
	assert.True(t, HasCode(wrapped, ErrCodeAuthRequired))
	assert.False(t, HasCode(fmt.Errorf("plain"), ErrCodeAuthRequired))
}

func TestConvertToBPMNError(t *testing.T) {
	tests := []struct {
		name      string
		err       *StandardError
		wantCode  string
		wantRetry int
	}{
		{"retryable read", NewStoreReadFailedError("prof", fmt.Errorf("x")), "STORE_READ_FAILED", 3},
		{"business error", NewInvalidStatusTransitionError("completed", "pending"), "INVALID_STATUS_TRANSITION", 0},
		{"unmapped code", NewContextStoreFailedError(fmt.Errorf("x")), "CONTEXT_STORE_FAILED", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bpmn := ConvertToBPMNError(tt.err)
			assert.Equal(t, tt.wantCode, bpmn.Code)
			assert.Equal(t, tt.wantRetry, bpmn.Retries)
			assert.Equal(t, string(tt.err.Code), bpmn.ToErrorVariables()["originalErrorCode"])
		})
	}
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, HTTPStatus(ErrCodeDocumentNotFound))
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(ErrCodeAuthRequired))
	assert.Equal(t, http.StatusConflict, HTTPStatus(ErrCodeInvalidStatusTransition))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(ErrCodePayloadValidationFailed))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(ErrCodeStoreReadFailed))
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "DATABASE", GetErrorCategory(ErrCodeStoreReadFailed))
	assert.Equal(t, "AUTH", GetErrorCategory(ErrCodeAuthRequired))
	assert.Equal(t, "BOOKING", GetErrorCategory(ErrCodeInvalidStatusTransition))
	assert.Equal(t, "CHAT", GetErrorCategory(ErrCodeContextStoreFailed))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodePayloadValidationFailed))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternal))
}

func TestNormalize_PlainError(t *testing.T) {
	stdErr := Normalize(fmt.Errorf("boom"))
	assert.Equal(t, ErrCodeInternal, stdErr.Code)
	assert.Equal(t, "boom", stdErr.Details)
}
