package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeValidationRequired is used when a required field is missing
	ErrCodeValidationRequired = "ERR_VALIDATION_REQUIRED"
	// ErrCodeValidationFormat is used when a field has invalid format
	ErrCodeValidationFormat = "ERR_VALIDATION_FORMAT"
)

// Authentication error codes
const (
	// ErrCodeUnauthorized is used when authentication is required but missing/invalid
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	// ErrCodeForbidden is used when the caller lacks access
	ErrCodeForbidden = "ERR_FORBIDDEN"
	// ErrCodeTokenExpired is used when the auth token has expired
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	// ErrCodeTokenInvalid is used when the auth token is invalid
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
	// ErrCodeGenerationInProgress is used when another run holds the engagement lock
	ErrCodeGenerationInProgress = "ERR_GENERATION_IN_PROGRESS"
)

// Business rule error codes
const (
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeBusinessRule is used for generic business rule violations
	ErrCodeBusinessRule = "ERR_BUSINESS_RULE"
	// ErrCodeEngagementCancelled is used when generating for a cancelled engagement
	ErrCodeEngagementCancelled = "ERR_ENGAGEMENT_CANCELLED"
	// ErrCodeUnbalancedVoucher is used when voucher debits and credits differ
	ErrCodeUnbalancedVoucher = "ERR_UNBALANCED_VOUCHER"
	// ErrCodeLedgerNotConfigured is used when a voucher type or account mapping is missing
	ErrCodeLedgerNotConfigured = "ERR_LEDGER_NOT_CONFIGURED"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
	// ErrCodePayloadTooLarge is used when the body exceeds http.max_body_size
	ErrCodePayloadTooLarge = "ERR_PAYLOAD_TOO_LARGE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeValidationRequired: http.StatusBadRequest,
	ErrCodeValidationFormat:   http.StatusBadRequest,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,

	ErrCodeNotFound:             http.StatusNotFound,
	ErrCodeAlreadyExists:        http.StatusConflict,
	ErrCodeConflict:             http.StatusConflict,
	ErrCodeGenerationInProgress: http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState:        http.StatusUnprocessableEntity,
	ErrCodeBusinessRule:        http.StatusUnprocessableEntity,
	ErrCodeEngagementCancelled: http.StatusUnprocessableEntity,
	ErrCodeUnbalancedVoucher:   http.StatusUnprocessableEntity,
	ErrCodeLedgerNotConfigured: http.StatusUnprocessableEntity,

	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,

	ErrCodePayloadTooLarge: http.StatusRequestEntityTooLarge,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to the standardized API codes
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":      ErrCodeNotFound,
	"ALREADY_EXISTS": ErrCodeAlreadyExists,
	"INVALID_INPUT":  ErrCodeInvalidInput,
	"INVALID_STATE":  ErrCodeInvalidState,
	"FORBIDDEN":      ErrCodeForbidden,
	"INTERNAL_ERROR": ErrCodeInternal,

	"INVALID_AS_OF":          ErrCodeValidationFormat,
	"INVALID_STATUS":         ErrCodeValidationFormat,
	"INVALID_GRANULARITY":    ErrCodeValidationFormat,
	"INVALID_AMOUNT":         ErrCodeValidationFormat,
	"INVALID_ENTRY":          ErrCodeValidationFormat,
	"INVALID_ACCOUNT_TYPE":   ErrCodeValidationFormat,
	"INVALID_VOUCHER_TYPE":   ErrCodeValidationFormat,
	"INVALID_ACCOUNT":        ErrCodeValidationRequired,
	"INVALID_ACCOUNT_CODE":   ErrCodeValidationRequired,
	"INVALID_VOUCHER_NUMBER": ErrCodeValidationRequired,
	"INVALID_INVOICE_NUMBER": ErrCodeValidationRequired,
	"INVALID_CUSTOMER":       ErrCodeValidationRequired,
	"INVALID_SERVICE":        ErrCodeValidationRequired,

	"GENERATION_IN_PROGRESS":  ErrCodeGenerationInProgress,
	"ENGAGEMENT_CANCELLED":    ErrCodeEngagementCancelled,
	"UNBALANCED_VOUCHER":      ErrCodeUnbalancedVoucher,
	"VOUCHER_TYPE_MISSING":    ErrCodeLedgerNotConfigured,
	"RECEIPT_ACCOUNT_MISSING": ErrCodeLedgerNotConfigured,
	"INCOME_ACCOUNT_UNMAPPED": ErrCodeLedgerNotConfigured,
	"NO_VALID_PRICE":          ErrCodeBusinessRule,
}

// NormalizeErrorCode converts a domain error code to the standardized format
// If the code is already in the new format or unknown, returns it as-is
func NormalizeErrorCode(code string) string {
	if newCode, ok := DomainErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
