package errors

import "net/http"

// ErrorDetail is the error object embedded in API error responses.
type ErrorDetail struct {
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ErrorResponse is the uniform JSON error body returned by the control API.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// NewErrorResponse builds the API error body from an error chain. The
// response carries the hint rather than the raw cause so internal error
// text never leaks to callers.
func NewErrorResponse(err error) *ErrorResponse {
	message := Hint(err)
	if message == "" {
		message = err.Error()
	}

	return &ErrorResponse{
		Error: ErrorDetail{
			Message: message,
			Details: Details(err),
		},
	}
}

// HTTPStatusFromErr maps a classified error to an HTTP status code.
func HTTPStatusFromErr(err error) int {
	switch {
	case IsValidation(err):
		return http.StatusBadRequest
	case IsNotFound(err):
		return http.StatusNotFound
	case IsAlreadyExists(err):
		return http.StatusConflict
	case IsPermissionDenied(err):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
