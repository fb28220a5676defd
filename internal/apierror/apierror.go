// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskForge Contributors

// Package apierror defines the closed failure taxonomy of the request
// admission layer and the single normalizer that turns any error into
// the uniform wire response.
//
// Every rejected request, regardless of which operation raised the
// failure, renders as:
//
//	{"success": false, "error": {"message": ..., "code": ..., "details": [...]}}
//
// Only code, message, and the optional details vary. No component
// downstream of the normalizer writes its own error response.
package apierror

import (
	"fmt"
	"net/http"
)

// Code is the stable machine-readable kind of a failure, fit for
// client-side branching.
type Code string

// The closed taxonomy. Adding a case here requires updating Status and
// the normalizer's classification table.
const (
	// CodeValidation: a schema rule was violated; the caller can fix
	// the input and resubmit. Carries field-level details.
	CodeValidation Code = "VALIDATION_ERROR"

	// CodeInvalidID: a reference (path or payload identifier) is
	// malformed.
	CodeInvalidID Code = "INVALID_ID"

	// CodeDuplicateKey: a uniqueness conflict, e.g. registering an
	// identity that already exists. The message names the field.
	CodeDuplicateKey Code = "DUPLICATE_KEY"

	// CodeInvalidToken: the session token is malformed or its
	// signature does not verify; also used for rejected credentials,
	// since the caller's remedy is identical (authenticate again).
	CodeInvalidToken Code = "INVALID_TOKEN"

	// CodeTokenExpired: the token was valid once but its expiry has
	// elapsed; the caller should re-login.
	CodeTokenExpired Code = "TOKEN_EXPIRED"

	// CodeInternal: everything unclassified. The response carries a
	// generic message; detail stays in the log.
	CodeInternal Code = "INTERNAL_ERROR"
)

// Status returns the HTTP status for a taxonomy code. The switch is
// exhaustive over the closed set; unknown codes fall through to 500 so
// a miswired constructor can never leak a success status.
func (c Code) Status() int {
	switch c {
	case CodeValidation, CodeInvalidID:
		return http.StatusBadRequest
	case CodeDuplicateKey:
		return http.StatusConflict
	case CodeInvalidToken, CodeTokenExpired:
		return http.StatusUnauthorized
	case CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// FieldDetail is one field-level entry in a validation failure.
type FieldDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the tagged variant carried between classification and
// rendering. Exactly one is produced per failing request.
type Error struct {
	Code    Code
	Message string
	Details []FieldDetail
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *Error) Unwrap() error {
	return e.cause
}

// Validation tags a set of field violations.
func Validation(details []FieldDetail) *Error {
	return &Error{
		Code:    CodeValidation,
		Message: "request validation failed",
		Details: details,
	}
}

// InvalidID tags a malformed identifier; what names the reference,
// e.g. "account id".
func InvalidID(what string) *Error {
	return &Error{
		Code:    CodeInvalidID,
		Message: "invalid " + what,
	}
}

// Duplicate tags a uniqueness conflict on the named field.
func Duplicate(field string) *Error {
	return &Error{
		Code:    CodeDuplicateKey,
		Message: fmt.Sprintf("%s is already taken", field),
	}
}

// InvalidToken tags a malformed or forged session token.
func InvalidToken(cause error) *Error {
	return &Error{
		Code:    CodeInvalidToken,
		Message: "invalid session token",
		cause:   cause,
	}
}

// Unauthorized tags a rejected credential check. It shares the
// INVALID_TOKEN code because the taxonomy is closed and the caller's
// remedy is the same, but the message stays credential-specific.
func Unauthorized(message string) *Error {
	return &Error{
		Code:    CodeInvalidToken,
		Message: message,
	}
}

// TokenExpired tags a stale session token, distinct from InvalidToken
// so the client can prompt a re-login instead of treating it as an
// attack.
func TokenExpired(cause error) *Error {
	return &Error{
		Code:    CodeTokenExpired,
		Message: "session token has expired",
		cause:   cause,
	}
}

// Internal tags an unclassified failure. The cause is logged, never
// rendered outside development mode.
func Internal(cause error) *Error {
	return &Error{
		Code:    CodeInternal,
		Message: "internal server error",
		cause:   cause,
	}
}
