// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Document generation errors
const (
	ErrCodeTemplateNotFound            ErrorCode = "TEMPLATE_NOT_FOUND"
	ErrCodeTemplateNotApplicable       ErrorCode = "TEMPLATE_NOT_APPLICABLE"
	ErrCodeMissingRequiredField        ErrorCode = "MISSING_REQUIRED_FIELD"
	ErrCodePlaceholderValidationFailed ErrorCode = "PLACEHOLDER_VALIDATION_FAILED"
	ErrCodeUnknownPlaceholderSource    ErrorCode = "UNKNOWN_PLACEHOLDER_SOURCE"
	ErrCodeRenderFailed                ErrorCode = "RENDER_ERROR"
	ErrCodeExportFailed                ErrorCode = "EXPORT_ERROR"
	ErrCodeInvalidRequest              ErrorCode = "INVALID_REQUEST"
	ErrCodeGenerationCancelled         ErrorCode = "GENERATION_CANCELLED"
)

// Infrastructure errors
const (
	ErrCodeAuditWriteFailed              ErrorCode = "AUDIT_WRITE_FAILED"
	ErrCodeLegalSourceUnavailable        ErrorCode = "LEGAL_SOURCE_UNAVAILABLE"
	ErrCodeDatabaseConnectionFailed      ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeElasticsearchConnectionFailed ErrorCode = "ELASTICSEARCH_CONNECTION_FAILED"
	ErrCodeCacheUnavailable              ErrorCode = "CACHE_UNAVAILABLE"
	ErrCodeNotificationSendFailed        ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeInternal                      ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Stage     string                 `json:"stage,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	if e.Stage != "" {
		return fmt.Sprintf("StandardError[%s@%s]: %s", e.Code, e.Stage, e.Message)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
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

var codeMessages = map[ErrorCode]string{
	ErrCodeTemplateNotFound:              "Template not found in catalog",
	ErrCodeTemplateNotApplicable:         "Template not applicable to company profile",
	ErrCodeMissingRequiredField:          "Required placeholder has no value",
	ErrCodePlaceholderValidationFailed:   "Placeholder value violates its validation bounds",
	ErrCodeUnknownPlaceholderSource:      "Placeholder source has no provider",
	ErrCodeRenderFailed:                  "Document rendering failed",
	ErrCodeExportFailed:                  "Document export failed",
	ErrCodeInvalidRequest:                "Generation request is invalid",
	ErrCodeGenerationCancelled:           "Document generation was cancelled",
	ErrCodeAuditWriteFailed:              "Audit trail write failed",
	ErrCodeLegalSourceUnavailable:        "Legal article source unavailable",
	ErrCodeDatabaseConnectionFailed:      "Database connection error",
	ErrCodeElasticsearchConnectionFailed: "Elasticsearch connection error",
	ErrCodeCacheUnavailable:              "Document cache unavailable",
	ErrCodeNotificationSendFailed:        "Notification delivery failed",
	ErrCodeInternal:                      "Internal error",
}

// New builds a StandardError for code; retryability follows GetRetryCount.
func New(code ErrorCode, details string) *StandardError {
	msg, ok := codeMessages[code]
	if !ok {
		msg = string(code)
	}
	return &StandardError{
		Code:      code,
		Message:   msg,
		Details:   details,
		Retryable: IsRetryableErrorCode(code),
		Timestamp: time.Now().UTC(),
	}
}

// NewStageError tags a StandardError with the pipeline stage that produced it.
func NewStageError(code ErrorCode, stage string, err error) *StandardError {
	details := ""
	if err != nil {
		details = err.Error()
	}
	e := New(code, details)
	e.Stage = stage
	return e
}

// NewTemplateNotFoundError creates a non-retryable template error.
func NewTemplateNotFoundError(templateID string) *StandardError {
	return New(ErrCodeTemplateNotFound, fmt.Sprintf("templateId: %s", templateID))
}

// NewInvalidRequestError creates a non-retryable input validation error.
func NewInvalidRequestError(details string) *StandardError {
	return New(ErrCodeInvalidRequest, details)
}

// NewAuditWriteFailedError creates a retryable audit persistence error.
func NewAuditWriteFailedError(err error) *StandardError {
	return New(ErrCodeAuditWriteFailed, err.Error())
}

// NewNotificationSendFailedError creates a retryable notification send error.
func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return New(ErrCodeNotificationSendFailed, fmt.Sprintf("channel: %s, error: %s", channel, err.Error()))
}

func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "EXTERNAL_SERVICE_ERROR",
		Message:   fmt.Sprintf("External service '%s' error", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewTimeoutError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "TIMEOUT_ERROR",
		Message:   fmt.Sprintf("Service '%s' timeout", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeAuditWriteFailed,
		ErrCodeLegalSourceUnavailable,
		ErrCodeDatabaseConnectionFailed,
		ErrCodeElasticsearchConnectionFailed,
		ErrCodeNotificationSendFailed,
		"EXTERNAL_SERVICE_ERROR":
		return 3

	case ErrCodeCacheUnavailable, "TIMEOUT_ERROR":
		return 2

	default:
		return 0 // business errors
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"errorCategory":     GetErrorCategory(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	if stdErr.Stage != "" {
		vars["failedStage"] = stdErr.Stage
	}

	return &BPMNError{
		Code:           string(stdErr.Code),
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "TEMPLATE"):
		return "TEMPLATE"
	case strings.Contains(codeStr, "PLACEHOLDER") || strings.Contains(codeStr, "REQUIRED_FIELD"):
		return "DATA"
	case codeStr == string(ErrCodeRenderFailed) || codeStr == string(ErrCodeExportFailed):
		return "OUTPUT"
	case strings.Contains(codeStr, "AUDIT") || strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "CACHE"):
		return "STORAGE"
	case strings.Contains(codeStr, "ELASTICSEARCH") || strings.Contains(codeStr, "LEGAL"):
		return "SEARCH"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
