// Package errors provides the structured error type shared by the chat API, the repository
// and the workflow job workers.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeStoreReadFailed  ErrorCode = "STORE_READ_FAILED"
	ErrCodeStoreWriteFailed ErrorCode = "STORE_WRITE_FAILED"
	ErrCodeStoreUnavailable ErrorCode = "STORE_UNAVAILABLE"
	ErrCodeDocumentNotFound ErrorCode = "DOCUMENT_NOT_FOUND"

	ErrCodeAuthRequired ErrorCode = "AUTH_REQUIRED"

	ErrCodeInvalidBookingStatus     ErrorCode = "INVALID_BOOKING_STATUS"
	ErrCodeInvalidStatusTransition  ErrorCode = "INVALID_STATUS_TRANSITION"
	ErrCodePayloadValidationFailed  ErrorCode = "PAYLOAD_VALIDATION_FAILED"
	ErrCodeInvalidQueryOperator     ErrorCode = "INVALID_QUERY_OPERATOR"
	ErrCodeContextStoreFailed       ErrorCode = "CONTEXT_STORE_FAILED"
	ErrCodeAnalyticsWriteFailed     ErrorCode = "ANALYTICS_WRITE_FAILED"
	ErrCodeNotificationSendFailed   ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeResponseGenerationFailed ErrorCode = "RESPONSE_GENERATION_FAILED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying store or transport error.
func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata attaches a key to the error's metadata and returns the error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewStoreReadFailedError wraps a document store read failure.
func NewStoreReadFailedError(collection string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStoreReadFailed,
		Message:   "Document store read failed",
		Details:   fmt.Sprintf("collection: %s, error: %s", collection, err.Error()),
		Retryable: true,
		Metadata:  map[string]interface{}{"collection": collection},
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewStoreWriteFailedError wraps a document store write failure.
func NewStoreWriteFailedError(collection string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStoreWriteFailed,
		Message:   "Document store write failed",
		Details:   fmt.Sprintf("collection: %s, error: %s", collection, err.Error()),
		Retryable: true,
		Metadata:  map[string]interface{}{"collection": collection},
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewStoreUnavailableError is returned when a backend cannot be reached at startup.
func NewStoreUnavailableError(backend string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStoreUnavailable,
		Message:   "Document store unavailable",
		Details:   fmt.Sprintf("backend: %s, error: %s", backend, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewDocumentNotFoundError creates a non-retryable lookup error.
func NewDocumentNotFoundError(collection, id string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDocumentNotFound,
		Message:   "Document not found",
		Details:   fmt.Sprintf("collection: %s, id: %s", collection, id),
		Retryable: false,
		Metadata:  map[string]interface{}{"collection": collection, "id": id},
		Timestamp: time.Now().UTC(),
	}
}

// NewAuthRequiredError is returned for operations that need a signed-in user.
func NewAuthRequiredError(operation string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAuthRequired,
		Message:   "User must be signed in",
		Details:   fmt.Sprintf("operation: %s", operation),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidBookingStatusError rejects an unknown booking status.
func NewInvalidBookingStatusError(status string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidBookingStatus,
		Message:   "Unknown booking status",
		Details:   fmt.Sprintf("status: %s", status),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidStatusTransitionError rejects a disallowed booking status change.
func NewInvalidStatusTransitionError(from, to string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidStatusTransition,
		Message:   "Booking status transition not allowed",
		Details:   fmt.Sprintf("from: %s, to: %s", from, to),
		Retryable: false,
		Metadata:  map[string]interface{}{"from": from, "to": to},
		Timestamp: time.Now().UTC(),
	}
}

// NewPayloadValidationFailedError creates a non-retryable validation error.
func NewPayloadValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodePayloadValidationFailed,
		Message:   "Payload validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidQueryOperatorError reports a query the backend cannot express.
func NewInvalidQueryOperatorError(collection string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidQueryOperator,
		Message:   "Unsupported query operator",
		Details:   fmt.Sprintf("collection: %s, error: %s", collection, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewContextStoreFailedError wraps a conversation context backend failure.
func NewContextStoreFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeContextStoreFailed,
		Message:   "Conversation context store error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewAnalyticsWriteFailedError wraps an analytics sink failure.
func NewAnalyticsWriteFailedError(sink string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAnalyticsWriteFailed,
		Message:   "Analytics write failed",
		Details:   fmt.Sprintf("sink: %s, error: %s", sink, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewNotificationSendFailedError creates a retryable notification send error.
func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("channel: %s, error: %s", channel, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewResponseGenerationFailedError wraps a failure inside an intent handler.
func NewResponseGenerationFailedError(intent string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeResponseGenerationFailed,
		Message:   "Response generation failed",
		Details:   fmt.Sprintf("intent: %s, error: %s", intent, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// ==========================
// 4. Error Conversion
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeStoreReadFailed:          "STORE_READ_FAILED",
	ErrCodeStoreWriteFailed:         "STORE_WRITE_FAILED",
	ErrCodeStoreUnavailable:         "STORE_UNAVAILABLE",
	ErrCodeDocumentNotFound:         "DOCUMENT_NOT_FOUND",
	ErrCodeAuthRequired:             "AUTH_REQUIRED",
	ErrCodeInvalidBookingStatus:     "INVALID_BOOKING_STATUS",
	ErrCodeInvalidStatusTransition:  "INVALID_STATUS_TRANSITION",
	ErrCodePayloadValidationFailed:  "PAYLOAD_VALIDATION_FAILED",
	ErrCodeNotificationSendFailed:   "NOTIFICATION_SEND_FAILED",
	ErrCodeResponseGenerationFailed: "RESPONSE_GENERATION_FAILED",
}

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeStoreReadFailed,
		ErrCodeStoreWriteFailed,
		ErrCodeNotificationSendFailed:
		return 3

	case ErrCodeStoreUnavailable,
		ErrCodeContextStoreFailed,
		ErrCodeResponseGenerationFailed:
		return 2

	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// HTTPStatus maps an error code onto the API response status.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeDocumentNotFound:
		return http.StatusNotFound
	case ErrCodeAuthRequired:
		return http.StatusUnauthorized
	case ErrCodeInvalidBookingStatus, ErrCodePayloadValidationFailed, ErrCodeInvalidQueryOperator:
		return http.StatusBadRequest
	case ErrCodeInvalidStatusTransition:
		return http.StatusConflict
	case ErrCodeStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// AsStandardError finds a StandardError in err's chain.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code ErrorCode) bool {
	stdErr, ok := AsStandardError(err)
	return ok && stdErr.Code == code
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "AUTH"):
		return "AUTH"
	case strings.HasPrefix(codeStr, "STORE") || strings.Contains(codeStr, "DOCUMENT") || strings.Contains(codeStr, "QUERY"):
		return "DATABASE"
	case strings.Contains(codeStr, "BOOKING") || strings.Contains(codeStr, "TRANSITION"):
		return "BOOKING"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "CONTEXT") || strings.Contains(codeStr, "RESPONSE"):
		return "CHAT"
	case strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
