// Package errors provides the notifier's error taxonomy and its mapping onto
// HTTP responses and BPMN job errors.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aws/smithy-go"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Client errors.
	ErrCodeRequestInvalid ErrorCode = "REQUEST_INVALID"

	// Dependency errors.
	ErrCodeSnapshotLoadFailed       ErrorCode = "SNAPSHOT_LOAD_FAILED"
	ErrCodeSubscriptionWriteFailed  ErrorCode = "SUBSCRIPTION_WRITE_FAILED"
	ErrCodeSubscriptionQueryFailed  ErrorCode = "SUBSCRIPTION_QUERY_FAILED"
	ErrCodeSubscriptionDeleteFailed ErrorCode = "SUBSCRIPTION_DELETE_FAILED"
	ErrCodeNotificationSendFailed   ErrorCode = "NOTIFICATION_SEND_FAILED"

	// Integration errors.
	ErrCodeUnknownTrigger ErrorCode = "UNKNOWN_TRIGGER"
	ErrCodeRunInProgress  ErrorCode = "RUN_IN_PROGRESS"
)

const genericErrorMessage = "Something went wrong! Unable to get error details."

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Unwrap exposes the dependency error, if any.
func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata attaches a key/value pair for structured logging.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = map[string]interface{}{}
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
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ConvertToBPMNError maps a StandardError onto the workflow error contract.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	return &BPMNError{
		Code:    string(stdErr.Code),
		Message: stdErr.Message,
		Details: stdErr.Details,
		ErrorVariables: map[string]interface{}{
			"errorCategory": GetErrorCategory(stdErr.Code),
			"timestamp":     stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 3. Error Constructors
// ==========================

// NewRequestInvalidError creates a client error whose message is returned verbatim.
func NewRequestInvalidError(message string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRequestInvalid,
		Message:   message,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSnapshotLoadFailedError wraps an object storage read or decode failure.
func NewSnapshotLoadFailedError(key string, err error) *StandardError {
	return dependencyError(ErrCodeSnapshotLoadFailed, "Snapshot load failed", fmt.Sprintf("key: %s", key), err)
}

// NewSubscriptionWriteFailedError wraps a document store put failure.
func NewSubscriptionWriteFailedError(err error) *StandardError {
	return dependencyError(ErrCodeSubscriptionWriteFailed, "Subscription write failed", "", err)
}

// NewSubscriptionQueryFailedError wraps a pending subscription lookup failure.
func NewSubscriptionQueryFailedError(locationID string, err error) *StandardError {
	return dependencyError(ErrCodeSubscriptionQueryFailed, "Subscription query failed", fmt.Sprintf("location: %s", locationID), err)
}

// NewSubscriptionDeleteFailedError wraps a pending subscription delete failure.
func NewSubscriptionDeleteFailedError(locationID string, err error) *StandardError {
	return dependencyError(ErrCodeSubscriptionDeleteFailed, "Subscription delete failed", fmt.Sprintf("location: %s", locationID), err)
}

// NewNotificationSendFailedError wraps an SMS gateway failure.
func NewNotificationSendFailedError(recipient string, err error) *StandardError {
	return dependencyError(ErrCodeNotificationSendFailed, "Notification delivery failed", fmt.Sprintf("recipient: %s", recipient), err)
}

// NewUnknownTriggerError reports an event shape no entry point understands.
func NewUnknownTriggerError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnknownTrigger,
		Message:   "Unknown trigger! I dunno how to handle this!",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRunInProgressError reports that another run holds the region lock.
func NewRunInProgressError(region string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRunInProgress,
		Message:   "Notification run already in progress",
		Details:   fmt.Sprintf("region: %s", region),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func dependencyError(code ErrorCode, message, details string, err error) *StandardError {
	if err != nil {
		if details == "" {
			details = err.Error()
		} else {
			details = fmt.Sprintf("%s, error: %s", details, err.Error())
		}
	}
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// ==========================
// 4. Classification
// ==========================

// AsStandardError extracts the first StandardError in err's chain.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// Normalize always returns a StandardError, wrapping unknown errors.
func Normalize(err error) *StandardError {
	if stdErr, ok := AsStandardError(err); ok {
		return stdErr
	}
	return &StandardError{
		Code:      "INTERNAL_ERROR",
		Message:   "Unexpected error",
		Details:   err.Error(),
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// IsValidation reports whether err is a client (validation) error.
func IsValidation(err error) bool {
	stdErr, ok := AsStandardError(err)
	return ok && stdErr.Code == ErrCodeRequestInvalid
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	stdErr, ok := AsStandardError(err)
	return ok && stdErr.Code == code
}

// HTTPStatus maps err to a response status code.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if IsValidation(err) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// ResponseMessage renders the caller-visible message for err. Validation and
// unknown trigger errors are literal; other errors prefer the AWS API error
// code.
func ResponseMessage(err error) string {
	if err == nil {
		return genericErrorMessage
	}
	if stdErr, ok := AsStandardError(err); ok && (stdErr.Code == ErrCodeRequestInvalid || stdErr.Code == ErrCodeUnknownTrigger) {
		return stdErr.Message
	}

	var apiErr smithy.APIError
	if stderrors.As(err, &apiErr) && apiErr.ErrorCode() != "" {
		return fmt.Sprintf("Function execution error: %s: %s", apiErr.ErrorCode(), apiErr.ErrorMessage())
	}

	if stdErr, ok := AsStandardError(err); ok {
		return fmt.Sprintf("Function execution error: %s: %s", stdErr.Code, stdErr.Message)
	}

	if msg := err.Error(); msg != "" {
		return fmt.Sprintf("Function execution error: %s", msg)
	}
	return genericErrorMessage
}

// GetErrorCategory groups codes for dashboards and job variables.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case code == ErrCodeRequestInvalid:
		return "VALIDATION"
	case strings.Contains(codeStr, "SNAPSHOT"):
		return "STORAGE"
	case strings.Contains(codeStr, "SUBSCRIPTION"):
		return "DATABASE"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case code == ErrCodeUnknownTrigger || code == ErrCodeRunInProgress:
		return "INTEGRATION"
	default:
		return "OTHER"
	}
}

// LogFields returns the structured fields every error log line carries.
func LogFields(err error) map[string]interface{} {
	stdErr := Normalize(err)
	fields := map[string]interface{}{
		"errorCode":     string(stdErr.Code),
		"errorCategory": GetErrorCategory(stdErr.Code),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
	}
	for k, v := range stdErr.Metadata {
		fields[k] = v
	}
	var apiErr smithy.APIError
	if stderrors.As(err, &apiErr) {
		fields["awsErrorCode"] = apiErr.ErrorCode()
		fields["awsErrorMessage"] = apiErr.ErrorMessage()
	}
	return fields
}
