package errors

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code     ErrorCode
		expected int
	}{
		{ErrCodeInvalidMessage, http.StatusBadRequest},
		{ErrCodeInvalidSession, http.StatusBadRequest},
		{ErrCodeParseError, http.StatusBadRequest},
		{ErrCodeOrderValidationFailed, http.StatusBadRequest},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
		{ErrCodeMenuItemNotFound, http.StatusNotFound},
		{ErrCodeOrderNotFound, http.StatusNotFound},
		{ErrCodeMethodNotAllowed, http.StatusMethodNotAllowed},
		{ErrCodeLLMTimeout, http.StatusGatewayTimeout},
		{ErrCodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.expected, HTTPStatus(tt.code))
		})
	}
}

func TestNewRateLimitedError_CarriesRetryAfter(t *testing.T) {
	err := NewRateLimitedError("session", 1500*time.Millisecond)

	assert.Equal(t, ErrCodeRateLimited, err.Code)
	assert.True(t, err.Retryable)
	assert.EqualValues(t, 1500, err.Metadata["retryAfterMs"])
}

func TestNewMethodNotAllowedError(t *testing.T) {
	err := NewMethodNotAllowedError("POST")
	assert.Equal(t, "This endpoint only accepts POST requests", err.Message)
	assert.False(t, err.Retryable)
}

func TestAsStandardError(t *testing.T) {
	original := NewMenuItemNotFoundError(42)
	wrapped := fmt.Errorf("lookup: %w", original)

	assert.Same(t, original, AsStandardError(wrapped))

	plain := AsStandardError(fmt.Errorf("boom"))
	assert.Equal(t, ErrCodeInternal, plain.Code)
	assert.Equal(t, "boom", plain.Details)
}

func TestConvertToBPMNError(t *testing.T) {
	tests := []struct {
		name            string
		err             *StandardError
		expectedRetries int
	}{
		{name: "retryable agent failure", err: NewAgentInvocationFailedError(fmt.Errorf("503")), expectedRetries: 3},
		{name: "timeout retries once", err: NewLLMTimeoutError(5 * time.Second), expectedRetries: 1},
		{name: "validation never retries", err: NewInvalidJSONUISchemaError([]string{"root: bad"}), expectedRetries: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bpmn := ConvertToBPMNError(tt.err)
			require.NotNil(t, bpmn)
			assert.Equal(t, string(tt.err.Code), bpmn.Code)
			assert.Equal(t, tt.expectedRetries, bpmn.Retries)

			vars := bpmn.ToErrorVariables()
			assert.Equal(t, string(tt.err.Code), vars["originalErrorCode"])
			assert.Equal(t, tt.err.Message, vars["errorMessage"])
		})
	}
}

func TestNewInvalidJSONUISchemaError(t *testing.T) {
	err := NewInvalidJSONUISchemaError([]string{"root: depth", "root.children: count"})

	assert.Equal(t, "root: depth; root.children: count", err.Details)
	assert.Equal(t, 2, err.Metadata["issueCount"])
	assert.Equal(t, "UI", GetErrorCategory(err.Code))
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "AI", GetErrorCategory(ErrCodeLLMTimeout))
	assert.Equal(t, "MENU", GetErrorCategory(ErrCodeMenuItemNotFound))
	assert.Equal(t, "STORAGE", GetErrorCategory(ErrCodeHistoryStoreFailed))
	assert.Equal(t, "THROTTLE", GetErrorCategory(ErrCodeRateLimited))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeInvalidMessage))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeMethodNotAllowed))
	assert.Equal(t, "ORDER", GetErrorCategory(ErrCodeOrderValidationFailed))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeInputValidation))
	assert.Equal(t, "WORKFLOW", GetErrorCategory(ErrCodeWorkflowUnavailable))
	assert.Equal(t, "WORKFLOW", GetErrorCategory(ErrCodeWorkflowRejected))
	assert.True(t, IsRetryableErrorCode(ErrCodeNotificationSendFailed))
	assert.True(t, IsRetryableErrorCode(ErrCodeWorkflowUnavailable))
	assert.False(t, IsRetryableErrorCode(ErrCodeWorkflowRejected))
	assert.False(t, IsRetryableErrorCode(ErrCodeOrderValidationFailed))
}
