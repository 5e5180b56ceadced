package dto

import (
	"errors"
	"net/http"

	"github.com/halo/backend/internal/domain/shared"
)

// Interface-level error codes. Domain errors carry their own codes
// (see internal/domain/circle/errors.go); the constants here cover
// failures that originate in the HTTP layer itself.
const (
	ErrCodeInternal     = "INTERNAL_ERROR"
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeConflict     = "CONFLICT"
	ErrCodeRateLimited  = "RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// Interface errors
	ErrCodeInternal:     http.StatusInternalServerError,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeNotFound:     http.StatusNotFound,
	ErrCodeConflict:     http.StatusConflict,
	ErrCodeRateLimited:  http.StatusTooManyRequests,

	// Lookups -> 404 Not Found
	"CIRCLE_NOT_FOUND": http.StatusNotFound,

	// Duplicates and races -> 409 Conflict
	"ALREADY_EXISTS":         http.StatusConflict,
	"ALREADY_MEMBER":         http.StatusConflict,
	"CIRCLE_FULL":            http.StatusConflict,
	"DUPLICATE_CONTRIBUTION": http.StatusConflict,
	"CONCURRENCY_CONFLICT":   http.StatusConflict,
	"DUPLICATE_IDENTITY":     http.StatusConflict,

	// Business rule violations -> 422 Unprocessable Entity
	"CIRCLE_NOT_FORMING":      http.StatusUnprocessableEntity,
	"CIRCLE_NOT_ACTIVE":       http.StatusUnprocessableEntity,
	"INVALID_STATE":           http.StatusUnprocessableEntity,
	"TOO_MANY_ACTIVE_CIRCLES": http.StatusUnprocessableEntity,
	"INSUFFICIENT_BALANCE":    http.StatusUnprocessableEntity,

	// Access control
	"IDENTITY_NOT_VERIFIED": http.StatusForbidden,
	"NOT_MEMBER":            http.StatusForbidden,

	// Input errors -> 400 Bad Request
	"INVALID_INPUT": http.StatusBadRequest,

	// Engine faults -> 500 Internal Server Error
	"NO_RECIPIENT":        http.StatusInternalServerError,
	"INTEGRITY_VIOLATION": http.StatusInternalServerError,

	// Upstream gateway -> 502 Bad Gateway
	"GATEWAY_UNAVAILABLE": http.StatusBadGateway,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// FromError converts any error into an error response, mapping domain
// errors to their code and everything else to INTERNAL_ERROR.
func FromError(err error, requestID string) (int, Response) {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		status := GetHTTPStatus(domainErr.Code)
		return status, NewErrorResponseWithRequestID(domainErr.Code, domainErr.Message, requestID)
	}
	return http.StatusInternalServerError, NewErrorResponseWithRequestID(ErrCodeInternal, "An internal error occurred", requestID)
}
