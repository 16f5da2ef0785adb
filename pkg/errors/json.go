package errors

import (
	"context"
	"errors"
	"net/http"
)

// Response is the JSON body of an API error. The wrapped cause chain is
// left out so internal paths and upstream messages do not leak to callers.
type Response struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ToResponse converts err to a Response. Returns nil if err is nil.
// Errors without a code report ErrCodeInternal and a generic message.
func ToResponse(err error) *Response {
	if err == nil {
		return nil
	}
	code := GetCode(err)
	if code == "" {
		return &Response{Code: string(ErrCodeInternal), Message: "internal error"}
	}
	return &Response{Code: string(code), Message: UserMessage(err)}
}

// HTTPStatus maps an error to an HTTP status code:
// *_NOT_FOUND is 404, INVALID_* is 400, TIMEOUT and deadline expiry are 504,
// NETWORK_ERROR is 502 and everything else is 500.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case IsNotFound(err):
		return http.StatusNotFound
	case IsInvalid(err):
		return http.StatusBadRequest
	case GetCode(err) == ErrCodeTimeout, errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case GetCode(err) == ErrCodeNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
