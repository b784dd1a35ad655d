// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package validation holds the pre-flight checks run before a
// migration workflow is allowed to touch either instance.
package validation

import "context"

// Status is the outcome of one validation.
type Status string

const (
	Passed  Status = "PASSED"
	Failed  Status = "FAILED"
	Skipped Status = "SKIPPED"
)

// Response reports the outcome of one validation. It is never mutated
// after creation.
type Response struct {
	Name    string
	Message string
	Status  Status
}

// Validator is one pre-flight check. Implementations must not mutate
// either instance.
type Validator interface {
	Validate(ctx context.Context) Response
}

// RunAll invokes every validator in order and collects the responses.
func RunAll(ctx context.Context, validators []Validator) []Response {
	responses := make([]Response, 0, len(validators))
	for _, v := range validators {
		responses = append(responses, v.Validate(ctx))
	}
	return responses
}

// AllPassed reports whether no response failed. Skipped validations do
// not count as failures.
func AllPassed(responses []Response) bool {
	for _, r := range responses {
		if r.Status == Failed {
			return false
		}
	}
	return true
}
