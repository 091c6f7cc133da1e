package dto

import (
	"net/http"
	"strings"
)

// Codes produced by the HTTP layer itself. Domain errors keep their own code
// (EVENT_FULL, PROMO_CODE_INVALID, ...) so clients can key on it.
const (
	ErrCodeInternal        = "INTERNAL_ERROR"
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeInvalidInput    = "INVALID_INPUT"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeForbidden       = "FORBIDDEN"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeAlreadyExists   = "ALREADY_EXISTS"
	ErrCodeInvalidState    = "INVALID_STATE"
	ErrCodeRateLimited     = "RATE_LIMITED"
	ErrCodePayloadTooLarge = "PAYLOAD_TOO_LARGE"
)

// Token error codes
const (
	ErrCodeTokenExpired = "TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "INVALID_TOKEN"
	ErrCodeTokenRevoked = "TOKEN_REVOKED"
)

// ErrorCodeHTTPStatus maps exact error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal: http.StatusInternalServerError,

	// Auth
	ErrCodeUnauthorized:        http.StatusUnauthorized,
	"INVALID_CREDENTIALS":      http.StatusUnauthorized,
	"INVALID_PASSWORD":         http.StatusUnauthorized,
	ErrCodeTokenExpired:        http.StatusUnauthorized,
	ErrCodeTokenInvalid:        http.StatusUnauthorized,
	ErrCodeTokenRevoked:        http.StatusUnauthorized,
	ErrCodeForbidden:           http.StatusForbidden,
	"INSUFFICIENT_PERMISSIONS": http.StatusForbidden,

	// Input
	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidState: http.StatusBadRequest,

	// Unavailable integrations
	"PAYMENTS_DISABLED":    http.StatusServiceUnavailable,
	"OAUTH_NOT_CONFIGURED": http.StatusServiceUnavailable,

	ErrCodeRateLimited:     http.StatusTooManyRequests,
	ErrCodePayloadTooLarge: http.StatusRequestEntityTooLarge,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Exact matches win, then NOT_FOUND, ALREADY_EXISTS and INVALID_ families
// resolve by suffix or prefix. Anything else is a 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	switch {
	case code == ErrCodeNotFound || strings.HasSuffix(code, "_"+ErrCodeNotFound):
		return http.StatusNotFound
	case code == ErrCodeAlreadyExists || strings.HasSuffix(code, "_"+ErrCodeAlreadyExists):
		return http.StatusBadRequest
	case strings.HasPrefix(code, "INVALID_"):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// DomainHTTPStatus is GetHTTPStatus for codes carried by domain errors.
// Unmapped rule violations (EVENT_FULL, CANNOT_DELETE) are 400.
func DomainHTTPStatus(code string) int {
	status := GetHTTPStatus(code)
	if status == http.StatusInternalServerError && code != ErrCodeInternal {
		return http.StatusBadRequest
	}
	return status
}
