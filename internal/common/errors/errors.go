// Package errors provides standardized error handling for the chat API and
// the BPMN workers that sit next to it.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInvalidMessage   ErrorCode = "INVALID_MESSAGE"
	ErrCodeInvalidSession   ErrorCode = "INVALID_SESSION"
	ErrCodeParseError       ErrorCode = "PARSE_ERROR"
	ErrCodeMethodNotAllowed ErrorCode = "METHOD_NOT_ALLOWED"
	ErrCodeRateLimited      ErrorCode = "RATE_LIMITED"
	ErrCodeInternal         ErrorCode = "INTERNAL_ERROR"
	ErrCodeInputValidation  ErrorCode = "INPUT_VALIDATION_FAILED"

	ErrCodeInvalidJSONUISchema ErrorCode = "INVALID_JSON_UI_SCHEMA"
	ErrCodeActionNotAllowed    ErrorCode = "ACTION_NOT_ALLOWED"

	ErrCodeAgentInvocationFailed ErrorCode = "AGENT_INVOCATION_FAILED"
	ErrCodeLLMTimeout            ErrorCode = "LLM_TIMEOUT"
	ErrCodeLLMAuthFailed         ErrorCode = "LLM_AUTH_FAILED"

	ErrCodeMenuItemNotFound  ErrorCode = "MENU_ITEM_NOT_FOUND"
	ErrCodeMenuLoadFailed    ErrorCode = "MENU_LOAD_FAILED"
	ErrCodeSearchQueryFailed ErrorCode = "SEARCH_QUERY_FAILED"

	ErrCodeHistoryStoreFailed ErrorCode = "HISTORY_STORE_FAILED"

	ErrCodeOrderValidationFailed ErrorCode = "ORDER_VALIDATION_FAILED"
	ErrCodeOrderNotFound         ErrorCode = "ORDER_NOT_FOUND"
	ErrCodeDatabaseInsertFailed  ErrorCode = "DATABASE_INSERT_FAILED"
	ErrCodeDatabaseQueryFailed   ErrorCode = "DATABASE_QUERY_FAILED"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"

	ErrCodeWorkflowUnavailable ErrorCode = "WORKFLOW_ENGINE_UNAVAILABLE"
	ErrCodeWorkflowTimeout     ErrorCode = "WORKFLOW_ENGINE_TIMEOUT"
	ErrCodeWorkflowRejected    ErrorCode = "WORKFLOW_COMMAND_REJECTED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// WithMetadata attaches a key/value pair and returns the same error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

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

func newError(code ErrorCode, message, details string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidMessageError is returned when the chat message is missing or not a string.
func NewInvalidMessageError(details string) *StandardError {
	return newError(ErrCodeInvalidMessage, "Message is required and must be a string.", details, false)
}

// NewInvalidSessionError is returned when the session id is missing or not a string.
func NewInvalidSessionError(details string) *StandardError {
	return newError(ErrCodeInvalidSession, "Session ID is required.", details, false)
}

// NewParseError is returned for request bodies that are not valid JSON.
func NewParseError(err error) *StandardError {
	return newError(ErrCodeParseError, "Invalid request body.", err.Error(), false)
}

// NewMethodNotAllowedError names the only method the route accepts.
func NewMethodNotAllowedError(allowed string) *StandardError {
	return newError(ErrCodeMethodNotAllowed, fmt.Sprintf("This endpoint only accepts %s requests", allowed), "", false)
}

// NewRateLimitedError carries the suggested wait in its metadata.
func NewRateLimitedError(scope string, retryAfter time.Duration) *StandardError {
	return newError(ErrCodeRateLimited, "Too many requests. Please wait a moment.", fmt.Sprintf("scope: %s", scope), true).
		WithMetadata("retryAfterMs", retryAfter.Milliseconds())
}

// NewInternalError wraps anything unexpected.
func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Something went wrong. Please try again.", err.Error(), false)
}

// NewInputValidationError reports job variables that do not match a
// worker's input schema.
func NewInputValidationError(issues []string) *StandardError {
	return newError(ErrCodeInputValidation, "Input validation failed", strings.Join(issues, "; "), false).
		WithMetadata("issues", issues)
}

// NewInvalidJSONUISchemaError summarizes validator issues.
func NewInvalidJSONUISchemaError(issues []string) *StandardError {
	return newError(ErrCodeInvalidJSONUISchema, "JSON UI payload failed validation", strings.Join(issues, "; "), false).
		WithMetadata("issueCount", len(issues)).
		WithMetadata("issues", issues)
}

// NewActionNotAllowedError is returned for cta actions outside the allow-list.
func NewActionNotAllowedError(action string) *StandardError {
	return newError(ErrCodeActionNotAllowed, "Action is not allowed", fmt.Sprintf("action: %s", action), false)
}

// NewAgentInvocationFailedError creates a retryable agent error.
func NewAgentInvocationFailedError(err error) *StandardError {
	return newError(ErrCodeAgentInvocationFailed, "Agent invocation failed", err.Error(), true)
}

// NewLLMTimeoutError creates a retryable LLM timeout error.
func NewLLMTimeoutError(timeout time.Duration) *StandardError {
	return newError(ErrCodeLLMTimeout, "LLM call timed out", fmt.Sprintf("LLM call exceeded %s timeout", timeout), true)
}

// NewLLMAuthFailedError is returned when the model provider rejects the API key.
func NewLLMAuthFailedError(err error) *StandardError {
	return newError(ErrCodeLLMAuthFailed, "LLM API_KEY rejected or missing", err.Error(), false)
}

// NewMenuItemNotFoundError creates a non-retryable lookup error.
func NewMenuItemNotFoundError(id int) *StandardError {
	return newError(ErrCodeMenuItemNotFound, "Food item not found", fmt.Sprintf("foodId: %d", id), false)
}

// NewMenuLoadFailedError is returned when the dataset cannot be read.
func NewMenuLoadFailedError(source string, err error) *StandardError {
	return newError(ErrCodeMenuLoadFailed, "Menu dataset could not be loaded", fmt.Sprintf("source: %s, error: %s", source, err.Error()), true)
}

// NewSearchQueryFailedError creates a retryable search query error.
func NewSearchQueryFailedError(backend string, err error) *StandardError {
	return newError(ErrCodeSearchQueryFailed, "Menu search failed", fmt.Sprintf("backend: %s, error: %s", backend, err.Error()), true)
}

// NewHistoryStoreFailedError creates a retryable conversation store error.
func NewHistoryStoreFailedError(op string, err error) *StandardError {
	return newError(ErrCodeHistoryStoreFailed, "Conversation history unavailable", fmt.Sprintf("op: %s, error: %s", op, err.Error()), true)
}

// NewOrderValidationFailedError creates a non-retryable order validation error.
func NewOrderValidationFailedError(details string) *StandardError {
	return newError(ErrCodeOrderValidationFailed, "Order data validation failed", details, false)
}

func NewOrderNotFoundError(id string) *StandardError {
	return newError(ErrCodeOrderNotFound, "Order not found", fmt.Sprintf("orderId: %s", id), false)
}

// NewDatabaseInsertFailedError creates a retryable database insert error.
func NewDatabaseInsertFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseInsertFailed, "Database insert operation failed", err.Error(), true)
}

// NewDatabaseQueryFailedError creates a retryable read error.
func NewDatabaseQueryFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseQueryFailed, "Database query failed", err.Error(), true)
}

// NewNotificationSendFailedError creates a retryable notification send error.
func NewNotificationSendFailedError(notificationType string, err error) *StandardError {
	return newError(ErrCodeNotificationSendFailed, "Notification delivery failed", fmt.Sprintf("type: %s, error: %s", notificationType, err.Error()), true)
}

// NewWorkflowUnavailableError is returned when the zeebe gateway cannot be reached.
func NewWorkflowUnavailableError(operation string, err error) *StandardError {
	return newError(ErrCodeWorkflowUnavailable, "Workflow engine unavailable", fmt.Sprintf("operation: %s, error: %s", operation, err.Error()), true)
}

func NewWorkflowTimeoutError(operation string, err error) *StandardError {
	return newError(ErrCodeWorkflowTimeout, "Workflow engine timed out", fmt.Sprintf("operation: %s, error: %s", operation, err.Error()), true)
}

// NewWorkflowRejectedError covers commands the broker refused outright.
func NewWorkflowRejectedError(operation string, err error) *StandardError {
	return newError(ErrCodeWorkflowRejected, "Workflow command rejected", fmt.Sprintf("operation: %s, error: %s", operation, err.Error()), false)
}

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeAgentInvocationFailed,
		ErrCodeSearchQueryFailed,
		ErrCodeHistoryStoreFailed,
		ErrCodeDatabaseInsertFailed,
		ErrCodeDatabaseQueryFailed,
		ErrCodeNotificationSendFailed,
		ErrCodeMenuLoadFailed,
		ErrCodeWorkflowUnavailable:
		return 3
	case ErrCodeLLMTimeout, ErrCodeWorkflowTimeout:
		return 1
	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      string(stdErr.Code),
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

// HTTPStatus maps a code onto the status the chat API responds with.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeInvalidMessage, ErrCodeInvalidSession, ErrCodeParseError, ErrCodeInputValidation,
		ErrCodeInvalidJSONUISchema, ErrCodeActionNotAllowed, ErrCodeOrderValidationFailed:
		return http.StatusBadRequest
	case ErrCodeMenuItemNotFound, ErrCodeOrderNotFound:
		return http.StatusNotFound
	case ErrCodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case ErrCodeLLMTimeout, ErrCodeWorkflowTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeAgentInvocationFailed, ErrCodeSearchQueryFailed, ErrCodeNotificationSendFailed,
		ErrCodeWorkflowUnavailable, ErrCodeWorkflowRejected:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// AsStandardError unwraps err into a StandardError, wrapping unknown errors
// as INTERNAL_ERROR.
func AsStandardError(err error) *StandardError {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr
	}
	return NewInternalError(err)
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "JSON_UI") || strings.Contains(codeStr, "ACTION"):
		return "UI"
	case strings.Contains(codeStr, "AGENT") || strings.Contains(codeStr, "LLM"):
		return "AI"
	case strings.Contains(codeStr, "MENU") || strings.Contains(codeStr, "SEARCH"):
		return "MENU"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "HISTORY"):
		return "STORAGE"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "WORKFLOW"):
		return "WORKFLOW"
	case strings.Contains(codeStr, "RATE"):
		return "THROTTLE"
	case strings.Contains(codeStr, "ORDER"):
		return "ORDER"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "PARSE") || strings.Contains(codeStr, "METHOD") ||
		strings.Contains(codeStr, "INPUT"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
