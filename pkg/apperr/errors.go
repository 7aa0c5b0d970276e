// Package apperr defines the error kinds shared by the order, inventory and
// payment services and how they surface over HTTP.
package apperr

import (
	"encoding/json"
	"errors"
	"net/http"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrInsufficientQuantity = errors.New("insufficient quantity")
	ErrPaymentFailed        = errors.New("payment failed")
	ErrUpstreamUnavailable  = errors.New("upstream unavailable")
	ErrInvalidRequest       = errors.New("invalid request")
	ErrInternal             = errors.New("internal error")
)

// Error carries a machine readable code and an HTTP status alongside the
// kind sentinel and the underlying cause.
type Error struct {
	Code    string
	Message string
	Status  int
	Kind    error
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

// WithStatus returns a copy of e answered with a different HTTP status.
func (e *Error) WithStatus(status int) *Error {
	c := *e
	c.Status = status
	return &c
}

func New(kind error, code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Status: statusOf(kind), Kind: kind, Cause: cause}
}

func NotFound(code, message string) *Error {
	return New(ErrNotFound, code, message, nil)
}

func InsufficientQuantity(message string) *Error {
	return New(ErrInsufficientQuantity, "INSUFFICIENT_QUANTITY", message, nil)
}

// PaymentFailed wraps the reason a payment attempt did not succeed.
func PaymentFailed(cause error) *Error {
	return New(ErrPaymentFailed, "PAYMENT_FAILED", "payment failed", cause)
}

func Upstream(message string, cause error) *Error {
	return New(ErrUpstreamUnavailable, "UPSTREAM_UNAVAILABLE", message, cause)
}

func Invalid(message string) *Error {
	return New(ErrInvalidRequest, "INVALID_REQUEST", message, nil)
}

func Internal(message string, cause error) *Error {
	return New(ErrInternal, "INTERNAL_ERROR", message, cause)
}

func statusOf(kind error) int {
	switch kind {
	case ErrNotFound:
		return http.StatusNotFound
	case ErrInsufficientQuantity:
		return http.StatusConflict
	case ErrInvalidRequest:
		return http.StatusBadRequest
	case ErrUpstreamUnavailable:
		return http.StatusServiceUnavailable
	case ErrPaymentFailed:
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}

// From normalises any error into an *Error. Bare sentinels get a default
// code; anything unrecognised becomes an internal error.
func From(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return New(ErrNotFound, "NOT_FOUND", "resource not found", err)
	case errors.Is(err, ErrInsufficientQuantity):
		return New(ErrInsufficientQuantity, "INSUFFICIENT_QUANTITY", "insufficient quantity", err)
	case errors.Is(err, ErrInvalidRequest):
		return New(ErrInvalidRequest, "INVALID_REQUEST", "invalid request", err)
	case errors.Is(err, ErrUpstreamUnavailable):
		return Upstream("upstream unavailable", err)
	case errors.Is(err, ErrPaymentFailed):
		return PaymentFailed(err)
	default:
		return Internal("internal error", err)
	}
}

// Body is the JSON shape of an error response.
type Body struct {
	ErrorCode    string `json:"errorCode"`
	ErrorMessage string `json:"errorMessage"`
}

// Write renders err as a JSON error response. Causes are not exposed.
func Write(w http.ResponseWriter, err error) {
	ae := From(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(ae.Status)
	_ = json.NewEncoder(w).Encode(Body{ErrorCode: ae.Code, ErrorMessage: ae.Message})
}
