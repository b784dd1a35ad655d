// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package api

import (
	"fmt"
	"net/http"

	"github.com/juju/errors"
)

// APIError is returned for every non-2xx platform response. It carries
// the status code and the parsed JSON error body so callers can
// distinguish absent resources from credential failures.
type APIError struct {
	StatusCode int
	Method     string
	Path       string
	// Message is the "message" field of the error body, when present.
	Message string
	// Body is the full parsed error body.
	Body map[string]interface{}
}

// Error is part of the error interface.
func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: %s (%d)", e.Method, e.Path, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
}

// IsNotFound reports whether err is a platform 404. Callers use this as
// a "does not exist yet" signal on delete-if-present paths.
func IsNotFound(err error) bool {
	apiErr, ok := errors.Cause(err).(*APIError)
	return ok && apiErr.StatusCode == http.StatusNotFound
}

// IsUnauthorized reports whether err is a platform 401, meaning the
// presented credential was rejected.
func IsUnauthorized(err error) bool {
	apiErr, ok := errors.Cause(err).(*APIError)
	return ok && apiErr.StatusCode == http.StatusUnauthorized
}

// ErrorMessage returns the platform error message carried by err, or
// the empty string when err is not an *APIError.
func ErrorMessage(err error) string {
	if apiErr, ok := errors.Cause(err).(*APIError); ok {
		return apiErr.Message
	}
	return ""
}
