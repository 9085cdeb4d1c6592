// Copyright (c) 2026 Voltora Energy. All rights reserved.
// Author: platform@voltora.energy

/*
Package apperr defines the centralized error handling framework for the
Voltora storefront client platform.

It provides a rich error type that bridges the gap between low-level
transport/storage errors and the high-level outcomes surfaced to callers
(page actions, gateway responses).

Architecture:

  - AppError: A struct containing a machine-readable ErrorCode and user-friendly messages.
  - Taxonomy: Local validation, missing login, expired session, remote validation,
    transport failure, and not-found are first-class kinds.
  - Mapping: Explicit mapping from AppError to standard HTTP Status Codes.

Every error that leaves a domain client should be wrapped as an [AppError] to
ensure callers can branch on the kind rather than on string matching.
*/
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// # Error Codes

const (
	// CodeValidation flags malformed or missing input caught before any
	// network call. Never the result of a server round trip.
	CodeValidation = "VALIDATION_ERROR"

	// CodeLoginRequired flags an operation that needs a session which does
	// not exist. Callers typically redirect to login with a return path.
	CodeLoginRequired = "LOGIN_REQUIRED"

	// CodeSessionExpired flags a server-side rejection of an existing token.
	// Raising it always coincides with local session teardown.
	CodeSessionExpired = "SESSION_EXPIRED"

	// CodeRemote flags a generic non-2xx backend response that is neither a
	// validation failure nor an authentication rejection.
	CodeRemote = "REMOTE_ERROR"

	// CodeRemoteValidation flags a server-side field validation failure,
	// flattened into a single human-readable message.
	CodeRemoteValidation = "REMOTE_VALIDATION"

	// CodeTransport flags an unreachable network, a timeout, or a response
	// body that could not be decoded.
	CodeTransport = "TRANSPORT_ERROR"

	// CodeNotFound flags a missing resource. Only consulted where the caller
	// needs idempotent-delete semantics.
	CodeNotFound = "NOT_FOUND"

	// CodeContract flags a backend response that violates the API contract
	// (e.g. a verification endpoint returning success without a token).
	CodeContract = "CONTRACT_VIOLATION"

	// CodeInternal flags an unexpected failure inside this layer.
	CodeInternal = "INTERNAL_ERROR"
)

// AppError is the canonical error type for the storefront client layer.
//
// It carries a machine-readable code, a client-safe message, the HTTP status
// observed on the wire (when one exists), and an optional slice of
// field-level validation errors.
//
// # Security
//
// The Cause field is for logging only and is never rendered to end users to
// avoid leaking transport internals.
type AppError struct {
	// Code is a machine-readable error identifier (e.g. "LOGIN_REQUIRED").
	Code string `json:"code"`
	// Message is a human-readable description safe to show to the user.
	Message string `json:"error"`
	// HTTPStatus is the upstream HTTP status that produced this error, or 0
	// when the error never reached the network.
	HTTPStatus int `json:"-"`
	// Cause is the underlying error, used for logging only.
	Cause error `json:"-"`
	// Details holds per-field validation errors.
	Details []FieldError `json:"details,omitempty"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	// Field is the JSON field name that failed validation.
	Field string `json:"field"`
	// Message is the human-readable description of the failure.
	Message string `json:"message"`
}

// Error implements the error interface. It returns the client-safe message.
func (e *AppError) Error() string { return e.Message }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// Is reports whether target is an [*AppError] with the same Code. This lets
// callers use [errors.Is] against constructor results without comparing
// message text.
func (e *AppError) Is(target error) bool {
	var other *AppError
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

// # Local Errors (no network involved)

// ValidationError creates a pre-dispatch validation failure with optional
// per-field details.
func ValidationError(msg string, details ...FieldError) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

// LoginRequired creates an error for operations attempted without a session.
func LoginRequired(operation string) *AppError {
	return &AppError{
		Code:       CodeLoginRequired,
		Message:    fmt.Sprintf("Please log in to %s", operation),
		HTTPStatus: http.StatusUnauthorized,
	}
}

// # Remote Errors (produced by a server response)

// SessionExpired creates the distinguished error raised after a 401 response
// has torn the local session down.
func SessionExpired() *AppError {
	return &AppError{
		Code:       CodeSessionExpired,
		Message:    "Your session has expired. Please log in again.",
		HTTPStatus: http.StatusUnauthorized,
	}
}

// RemoteValidation creates a server-side validation failure. The message is
// the flattened form of the backend's field errors; the details preserve the
// per-field structure.
func RemoteValidation(status int, msg string, details ...FieldError) *AppError {
	return &AppError{
		Code:       CodeRemoteValidation,
		Message:    msg,
		HTTPStatus: status,
		Details:    details,
	}
}

// NotFound creates a 404 [AppError] for a named resource.
func NotFound(resource string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    resource + " not found",
		HTTPStatus: http.StatusNotFound,
	}
}

// Remote creates a generic non-2xx failure that is neither a validation
// response nor an authentication rejection.
func Remote(status int, msg string) *AppError {
	if msg == "" {
		msg = fmt.Sprintf("Request failed with status %d", status)
	}
	return &AppError{
		Code:       CodeRemote,
		Message:    msg,
		HTTPStatus: status,
	}
}

// # Transport & Contract Errors

// Transport wraps a network-level failure (unreachable host, timeout,
// malformed body).
func Transport(cause error) *AppError {
	return &AppError{
		Code:    CodeTransport,
		Message: "Could not reach the store. Please try again.",
		Cause:   cause,
	}
}

// Contract flags a successful-looking response that violates the backend API
// contract. These are never swallowed.
func Contract(msg string) *AppError {
	return &AppError{
		Code:       CodeContract,
		Message:    msg,
		HTTPStatus: http.StatusBadGateway,
	}
}

// Internal creates an [AppError] wrapping an unexpected failure inside this
// layer. The cause is stored for logging but never shown to end users.
func Internal(cause error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "An unexpected error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// # Helpers

// IsAppError reports whether err (or any error in its chain) is an [*AppError].
func IsAppError(err error) bool {
	var ae *AppError
	return errors.As(err, &ae)
}

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// CodeOf returns the machine code of err, or CodeInternal when err carries no
// [*AppError] in its chain.
func CodeOf(err error) string {
	if ae := As(err); ae != nil {
		return ae.Code
	}
	return CodeInternal
}

// FlattenFields joins per-field messages into one human-readable sentence,
// preserving field order. The backend's structured errors are always
// preferred over its generic message when both are present.
func FlattenFields(details []FieldError) string {
	if len(details) == 0 {
		return ""
	}
	parts := make([]string, 0, len(details))
	for _, detail := range details {
		parts = append(parts, fmt.Sprintf("%s: %s", detail.Field, detail.Message))
	}
	return strings.Join(parts, "; ")
}
