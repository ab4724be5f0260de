package common

import (
	"net/http"

	apperrors "template-backend/pkg/errors"
)

// ErrorResponse is the body of every failed API call
type ErrorResponse struct {
	Error ErrorInfo `json:"error"`
}

// ErrorInfo contains error details
type ErrorInfo struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	RequestID string                 `json:"request_id,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// StandardErrorCodes defines common error codes
var StandardErrorCodes = struct {
	ValidationError    string
	NotFound           string
	Unauthorized       string
	Forbidden          string
	Conflict           string
	InternalError      string
	TooManyRequests    string
	ServiceUnavailable string
	BadGateway         string
}{
	ValidationError:    "VALIDATION_ERROR",
	NotFound:           "NOT_FOUND",
	Unauthorized:       "UNAUTHORIZED",
	Forbidden:          "FORBIDDEN",
	Conflict:           "CONFLICT",
	InternalError:      "INTERNAL_ERROR",
	TooManyRequests:    "TOO_MANY_REQUESTS",
	ServiceUnavailable: "SERVICE_UNAVAILABLE",
	BadGateway:         "BAD_GATEWAY",
}

// CodeForStatus picks the error code reported for an HTTP status
func CodeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return StandardErrorCodes.ValidationError
	case http.StatusNotFound:
		return StandardErrorCodes.NotFound
	case http.StatusUnauthorized:
		return StandardErrorCodes.Unauthorized
	case http.StatusForbidden:
		return StandardErrorCodes.Forbidden
	case http.StatusConflict:
		return StandardErrorCodes.Conflict
	case http.StatusTooManyRequests:
		return StandardErrorCodes.TooManyRequests
	case http.StatusServiceUnavailable:
		return StandardErrorCodes.ServiceUnavailable
	case http.StatusBadGateway:
		return StandardErrorCodes.BadGateway
	}
	return StandardErrorCodes.InternalError
}

// NewErrorResponse builds the response body for err. Internal failures
// never leak their cause to the caller.
func NewErrorResponse(err error, requestID string) (int, *ErrorResponse) {
	status := apperrors.StatusOf(err)
	info := ErrorInfo{
		Code:      CodeForStatus(status),
		Message:   "internal server error",
		RequestID: requestID,
	}

	if appErr := apperrors.GetAppError(err); appErr != nil && status < http.StatusInternalServerError {
		info.Message = appErr.Message
		info.Details = appErr.Details
		if appErr.Code != "" {
			info.Code = appErr.Code
		}
	} else if appErr != nil && status != http.StatusInternalServerError {
		info.Message = appErr.Message
	}

	return status, &ErrorResponse{Error: info}
}

// NewMessageResponse builds an error body from a plain status and message
func NewMessageResponse(status int, message, requestID string) *ErrorResponse {
	return &ErrorResponse{Error: ErrorInfo{
		Code:      CodeForStatus(status),
		Message:   message,
		RequestID: requestID,
	}}
}
