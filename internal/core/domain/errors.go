package domain

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrAuth       = errors.New("authentication rejected")
	ErrNotFound   = errors.New("entity not found")
	ErrValidation = errors.New("validation failed")
	ErrNetwork    = errors.New("network failure")
	ErrServer     = errors.New("server error")
)

// APIError describes a failed call to the upstream REST service. It matches
// exactly one of the sentinel kinds above via errors.Is.
type APIError struct {
	Op      string
	Method  string
	URL     string
	Status  int    // 0 when the request never got a response
	Message string // message supplied by the server, if any
	Kind    error
	Err     error
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s %s %s", e.Op, e.Method, e.URL)
	if e.Status != 0 {
		msg += fmt.Sprintf(": status %d", e.Status)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *APIError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// KindForStatus maps a non-2xx upstream status to its error kind.
func KindForStatus(status int) error {
	switch status {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnauthorized:
		return ErrAuth
	default:
		return ErrServer
	}
}

// UserMessage returns the text shown to the user for err: the server's own
// message when it supplied one, fallback otherwise.
func UserMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
