// internal/common/errors/errors.go
package errors

import (
	"fmt"
	"strings"
	"time"
)

type ErrorCode string

const (
	// Input
	ErrCodeParseError        ErrorCode = "PARSE_ERROR"
	ErrCodeInvalidQuery      ErrorCode = "INVALID_QUERY"
	ErrCodeCallerIDRequired  ErrorCode = "CALLER_ID_REQUIRED"
	ErrCodeValidationFailed  ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidToolArgs   ErrorCode = "INVALID_TOOL_ARGUMENTS"
	ErrCodeUnknownTool       ErrorCode = "UNKNOWN_TOOL"
	ErrCodeUnsupportedIntent ErrorCode = "UNSUPPORTED_INTENT"

	// User store
	ErrCodeUserNotFound             ErrorCode = "USER_NOT_FOUND"
	ErrCodeDuplicateUser            ErrorCode = "DUPLICATE_USER"
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeQueryTimeout             ErrorCode = "QUERY_TIMEOUT"

	// Policy index
	ErrCodeElasticsearchConnectionFailed ErrorCode = "ELASTICSEARCH_CONNECTION_FAILED"
	ErrCodeSearchQueryFailed             ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeSearchTimeout                 ErrorCode = "SEARCH_TIMEOUT"
	ErrCodeIndexNotFound                 ErrorCode = "INDEX_NOT_FOUND"

	// Language model
	ErrCodeLLMUnavailable     ErrorCode = "LLM_UNAVAILABLE"
	ErrCodeLLMTimeout         ErrorCode = "LLM_TIMEOUT"
	ErrCodeEmbeddingFailed    ErrorCode = "EMBEDDING_FAILED"
	ErrCodeIntentClassifyFail ErrorCode = "INTENT_CLASSIFICATION_FAILED"

	// Tool server
	ErrCodeToolConnectionFailed ErrorCode = "TOOL_CONNECTION_FAILED"
	ErrCodeToolExecutionFailed  ErrorCode = "TOOL_EXECUTION_FAILED"

	// Workflow engine
	ErrCodeWorkflowEngineUnavailable ErrorCode = "WORKFLOW_ENGINE_UNAVAILABLE"
	ErrCodeWorkflowTimeout           ErrorCode = "WORKFLOW_TIMEOUT"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeInternal               ErrorCode = "INTERNAL_ERROR"
)

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

func NewParseError(err error) *StandardError {
	return newError(ErrCodeParseError, "Job variables could not be parsed", err.Error(), false)
}

func NewInvalidQueryError(details string) *StandardError {
	return newError(ErrCodeInvalidQuery, "Empty query provided.", details, false)
}

func NewCallerIDRequiredError() *StandardError {
	return newError(ErrCodeCallerIDRequired, "User ID is required.", "", false)
}

func NewValidationFailedError(details string) *StandardError {
	return newError(ErrCodeValidationFailed, "Request validation failed", details, false)
}

func NewInvalidToolArgumentsError(tool, details string) *StandardError {
	return newError(ErrCodeInvalidToolArgs, fmt.Sprintf("Invalid arguments for tool '%s'", tool), details, false)
}

func NewUnknownToolError(tool string) *StandardError {
	return newError(ErrCodeUnknownTool, "Tool is not in the catalog", fmt.Sprintf("tool: %s", tool), false)
}

func NewUserNotFoundError(identifier string) *StandardError {
	return newError(ErrCodeUserNotFound, "User not found", fmt.Sprintf("identifier: %s", identifier), false)
}

func NewDuplicateUserError(username string) *StandardError {
	return newError(ErrCodeDuplicateUser, "User already exists", fmt.Sprintf("username: %s", username), false)
}

func NewDatabaseConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseConnectionFailed, "Database connection error", err.Error(), true)
}

func NewQueryExecutionFailedError(operation string, err error) *StandardError {
	return newError(ErrCodeQueryExecutionFailed, "Database query execution error",
		fmt.Sprintf("operation: %s, error: %s", operation, err.Error()), true)
}

func NewQueryTimeoutError(operation string) *StandardError {
	return newError(ErrCodeQueryTimeout, "Database query timeout", fmt.Sprintf("operation: %s", operation), true)
}

func NewSearchQueryFailedError(index string, err error) *StandardError {
	return newError(ErrCodeSearchQueryFailed, "Policy search error",
		fmt.Sprintf("index: %s, error: %s", index, err.Error()), true)
}

func NewSearchTimeoutError(index string) *StandardError {
	return newError(ErrCodeSearchTimeout, "Policy search timeout", fmt.Sprintf("index: %s", index), true)
}

func NewIndexNotFoundError(index string) *StandardError {
	return newError(ErrCodeIndexNotFound, "Policy index not found", fmt.Sprintf("index: %s", index), false)
}

func NewLLMUnavailableError(err error) *StandardError {
	return newError(ErrCodeLLMUnavailable, "Language model request failed", err.Error(), true)
}

func NewLLMTimeoutError(err error) *StandardError {
	return newError(ErrCodeLLMTimeout, "Language model timeout", err.Error(), true)
}

func NewToolExecutionFailedError(tool string, err error) *StandardError {
	return newError(ErrCodeToolExecutionFailed, fmt.Sprintf("Tool '%s' failed", tool), err.Error(), true)
}

func NewWorkflowEngineError(err error) *StandardError {
	return newError(ErrCodeWorkflowEngineUnavailable, "Workflow engine unavailable", err.Error(), true)
}

func NewWorkflowTimeoutError(err error) *StandardError {
	return newError(ErrCodeWorkflowTimeout, "Workflow engine timeout", err.Error(), true)
}

func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return newError(ErrCodeNotificationSendFailed, fmt.Sprintf("Failed to publish to %s", channel), err.Error(), true)
}

func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", err.Error(), false)
}

var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeParseError:                    "PARSE_ERROR",
	ErrCodeInvalidQuery:                  "INVALID_QUERY",
	ErrCodeCallerIDRequired:              "CALLER_ID_REQUIRED",
	ErrCodeValidationFailed:              "VALIDATION_FAILED",
	ErrCodeInvalidToolArgs:               "INVALID_TOOL_ARGUMENTS",
	ErrCodeUnknownTool:                   "UNKNOWN_TOOL",
	ErrCodeUnsupportedIntent:             "UNSUPPORTED_INTENT",
	ErrCodeUserNotFound:                  "USER_NOT_FOUND",
	ErrCodeDuplicateUser:                 "DUPLICATE_USER",
	ErrCodeDatabaseConnectionFailed:      "DATABASE_CONNECTION_FAILED",
	ErrCodeQueryExecutionFailed:          "QUERY_EXECUTION_FAILED",
	ErrCodeQueryTimeout:                  "QUERY_TIMEOUT",
	ErrCodeElasticsearchConnectionFailed: "ELASTICSEARCH_CONNECTION_FAILED",
	ErrCodeSearchQueryFailed:             "SEARCH_QUERY_FAILED",
	ErrCodeSearchTimeout:                 "SEARCH_TIMEOUT",
	ErrCodeIndexNotFound:                 "INDEX_NOT_FOUND",
	ErrCodeLLMUnavailable:                "LLM_UNAVAILABLE",
	ErrCodeLLMTimeout:                    "LLM_TIMEOUT",
	ErrCodeEmbeddingFailed:               "EMBEDDING_FAILED",
	ErrCodeIntentClassifyFail:            "INTENT_CLASSIFICATION_FAILED",
	ErrCodeToolConnectionFailed:          "TOOL_CONNECTION_FAILED",
	ErrCodeToolExecutionFailed:           "TOOL_EXECUTION_FAILED",
	ErrCodeWorkflowEngineUnavailable:     "WORKFLOW_ENGINE_UNAVAILABLE",
	ErrCodeWorkflowTimeout:               "WORKFLOW_TIMEOUT",
	ErrCodeNotificationSendFailed:        "NOTIFICATION_SEND_FAILED",
}

func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeElasticsearchConnectionFailed,
		ErrCodeSearchQueryFailed,
		ErrCodeToolConnectionFailed,
		ErrCodeNotificationSendFailed,
		ErrCodeEmbeddingFailed,
		ErrCodeLLMUnavailable,
		ErrCodeWorkflowEngineUnavailable:
		return 3

	case ErrCodeQueryTimeout,
		ErrCodeSearchTimeout,
		ErrCodeToolExecutionFailed,
		ErrCodeWorkflowTimeout:
		return 2

	case ErrCodeLLMTimeout:
		return 1

	default:
		return 0
	}
}

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

func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "ELASTICSEARCH") || strings.Contains(codeStr, "SEARCH") || strings.Contains(codeStr, "INDEX"):
		return "POLICY_INDEX"
	case strings.Contains(codeStr, "USER") || strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY_"):
		return "USER_STORE"
	case strings.Contains(codeStr, "TOOL"):
		return "TOOL"
	case strings.Contains(codeStr, "LLM") || strings.Contains(codeStr, "EMBEDDING") || strings.Contains(codeStr, "INTENT"):
		return "AI"
	case strings.Contains(codeStr, "WORKFLOW"):
		return "WORKFLOW"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION") ||
		strings.Contains(codeStr, "PARSE") || strings.Contains(codeStr, "REQUIRED"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
