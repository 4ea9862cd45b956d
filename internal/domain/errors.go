package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// ValidationError reports missing or malformed caller input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ConfigurationError reports a missing credential or setting.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string { return e.Message }

// UpstreamError is a failed call to the model or publish service.
type UpstreamError struct {
	Status  int
	Message string
	Err     error
}

func (e *UpstreamError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("upstream error (%d): %s", e.Status, e.Message)
	}
	return "upstream error: " + e.Message
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// HTTPStatus is the status to forward to callers: the upstream's own
// 4xx/5xx when known, 502 otherwise.
func (e *UpstreamError) HTTPStatus() int {
	if e.Status >= 400 && e.Status <= 599 {
		return e.Status
	}
	return http.StatusBadGateway
}

// EmptyResultError means the model produced no usable text after every stage.
type EmptyResultError struct {
	FinishReason string
}

func (e *EmptyResultError) Error() string { return "Empty response from model" }

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsConfiguration(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}

// AsUpstream extracts an *UpstreamError from err's chain.
func AsUpstream(err error) (*UpstreamError, bool) {
	var target *UpstreamError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// AsEmptyResult extracts an *EmptyResultError from err's chain.
func AsEmptyResult(err error) (*EmptyResultError, bool) {
	var target *EmptyResultError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}
