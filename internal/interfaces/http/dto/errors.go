package dto

import "net/http"

// Error code constants
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
)

// Edition error codes
const (
	// ErrCodeResequenceInProgress is used when another trigger holds the
	// product's numbering lock
	ErrCodeResequenceInProgress = "ERR_RESEQUENCE_IN_PROGRESS"
	// ErrCodeRevokeUnassigned is used when revoking an item without a number
	ErrCodeRevokeUnassigned = "ERR_REVOKE_UNASSIGNED"
	// ErrCodeNoEditionNumber is used for certificate operations on an
	// unnumbered item
	ErrCodeNoEditionNumber = "ERR_NO_EDITION_NUMBER"
	// ErrCodeAmbiguousMatch is used when order reconciliation was refused
	ErrCodeAmbiguousMatch = "ERR_AMBIGUOUS_MATCH"
)

// Upstream error codes
const (
	// ErrCodeUpstreamAuth is used when an upstream rejected our credentials
	ErrCodeUpstreamAuth = "ERR_UPSTREAM_AUTH"
	// ErrCodeUpstreamUnavailable is used when an upstream is unreachable
	ErrCodeUpstreamUnavailable = "ERR_UPSTREAM_UNAVAILABLE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:     http.StatusInternalServerError,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeNotFound:     http.StatusNotFound,
	ErrCodeConflict:     http.StatusConflict,

	ErrCodeResequenceInProgress: http.StatusConflict,
	ErrCodeRevokeUnassigned:     http.StatusUnprocessableEntity,
	ErrCodeNoEditionNumber:      http.StatusUnprocessableEntity,
	ErrCodeAmbiguousMatch:       http.StatusUnprocessableEntity,

	ErrCodeUpstreamAuth:        http.StatusBadGateway,
	ErrCodeUpstreamUnavailable: http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status code for an error code, defaulting
// to 500 for unknown codes
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// legacyErrorCodeMapping maps domain error codes to API error codes
var legacyErrorCodeMapping = map[string]string{
	"INVALID_INPUT": ErrCodeInvalidInput,
}

// NormalizeErrorCode converts a domain error code to the API format; codes
// already in the API format pass through unchanged
func NormalizeErrorCode(code string) string {
	if apiCode, ok := legacyErrorCodeMapping[code]; ok {
		return apiCode
	}
	return code
}
